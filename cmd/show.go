package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/output"
)

const defaultWidth = 80

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long: `Displays every field of a task as the detail view shows it, including the
zone and locality resolved from the UT, and the comment rendered as markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
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

	ev, err := b.task(ctx, event.ID(args[0]))
	if err != nil {
		return err
	}

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, ev)
	}
	if format == output.FormatCompact {
		output.EventCompact(os.Stdout, []*event.Event{ev})
		return nil
	}

	m := b.modal()
	m.LookupZone(ctx, m.OpenRead(ev))
	output.EventDetail(os.Stdout, m.View(), terminalWidth())
	return nil
}

// terminalWidth is the stdout width, or defaultWidth when stdout is not a
// terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd()) //nolint:gosec // file descriptors fit in int
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}
