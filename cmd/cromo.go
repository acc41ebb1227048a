package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/modal"
	"github.com/telecontrol-mt/calendario/internal/output"
)

var cromoCmd = &cobra.Command{
	Use:   "cromo LADO",
	Short: "Show the CROMO information of a lado",
	Long: `Queries the CROMO records of a lado and prints them with their document
folders as file:// links.`,
	Args: cobra.ExactArgs(1),
	RunE: runCromo,
}

func init() {
	rootCmd.AddCommand(cromoCmd)
}

func runCromo(cmd *cobra.Command, args []string) error {
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

	v, err := modal.LoadCromo(ctx, b.api, args[0])
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, v)
	}
	output.CromoTable(os.Stdout, v)
	return nil
}
