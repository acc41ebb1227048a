package cmd

import (
	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/api"
	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/clierr"
)

const passwdFallback = "No se pudo cambiar la contraseña."

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the login password",
	Long:  `Asks for the current password and the new one twice, then changes it on the server.`,
	Args:  cobra.NoArgs,
	RunE:  runPasswd,
}

func init() {
	rootCmd.AddCommand(passwdCmd)
}

func runPasswd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	b, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	var change api.PasswordChange
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Contraseña actual: ", &change.Actual},
		{"Nueva contraseña: ", &change.Nueva},
		{"Repetir nueva contraseña: ", &change.Repetir},
	} {
		if *f.dst, err = readSecret(f.prompt); err != nil {
			return err
		}
	}
	if change.Nueva == "" || change.Nueva != change.Repetir {
		return clierr.New(clierr.Validation, "Las contraseñas nuevas no coinciden.")
	}

	res, err := b.api.ChangePassword(ctx, change)
	if err == nil {
		err = res.Err(passwdFallback)
	}
	b.log.Mutation("passwd", "", board.OutcomeOf(err), "")
	if err != nil {
		return err
	}
	return reportMutation("", "passwd", "Contraseña actualizada.")
}
