package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/output"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the activity log",
	Long:  `Shows the most recent reschedules, edits, creations, copies and password changes with their outcome.`,
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntP("limit", "n", 20, "number of entries") //nolint:mnd // default page
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	n, _ := cmd.Flags().GetInt("limit")
	entries, err := board.ReadLog(cfg.Dir(), n)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		if entries == nil {
			entries = []board.LogEntry{}
		}
		return output.JSON(os.Stdout, entries)
	}
	output.LogTable(os.Stdout, entries)
	return nil
}
