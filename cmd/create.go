package cmd

import (
	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/date"
)

var createCmd = &cobra.Command{
	Use:     "create DATE",
	Aliases: []string{"add", "new"},
	Short:   "Create a task",
	Long: `Creates a task on DATE (YYYY-MM-DD). The form starts as an ENSAYO with no
schedule; set fields with --set field=value and the convenience flags. The
password is asked before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	addFormFlags(createCmd)
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	day, err := date.Parse(args[0])
	if err != nil {
		return clierr.Newf(clierr.InvalidDate, "invalid date %q (expected YYYY-MM-DD)", args[0])
	}

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

	m := b.modal()
	m.OpenNew(day)
	if err := applyFormFlags(cmd, m); err != nil {
		return err
	}
	if err := m.Save(ctx); err != nil {
		return err
	}
	return reportMutation("", "create", "Tarea creada el %s", day.DMY())
}
