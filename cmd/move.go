package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/calendar"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/output"
)

var moveCmd = &cobra.Command{
	Use:   "move ID DATE",
	Short: "Reschedule a task to another day",
	Long: `Moves a task to DATE (YYYY-MM-DD). The password is asked before the server
is contacted; cancelling the prompt leaves the task where it was. Absences
cannot be moved.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // id and date
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	id := event.ID(args[0])
	to, err := date.Parse(args[1])
	if err != nil {
		return clierr.Newf(clierr.InvalidDate, "invalid date %q (expected YYYY-MM-DD)", args[1])
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

	if err := b.loadAll(ctx); err != nil {
		return err
	}
	mv, err := b.cal.Move(id, to)
	switch {
	case errors.Is(err, calendar.ErrUnknownEvent):
		return clierr.Newf(clierr.EventNotFound, "tarea %s no encontrada", id)
	case err != nil:
		return clierr.Wrap(clierr.Validation, err.Error(), err)
	}

	if err := b.reschedule().Drop(ctx, mv); err != nil {
		return err
	}
	return reportMutation(id, "reschedule", "Tarea %s movida al %s", id, to.DMY())
}

// reportMutation prints the result of a successful mutation.
func reportMutation(id event.ID, action, format string, args ...any) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.MutationResult{ID: id.String(), Action: action, OK: true})
	}
	output.Messagef(os.Stdout, format, args...)
	return nil
}
