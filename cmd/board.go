package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/config"
	"github.com/telecontrol-mt/calendario/internal/output"
	"github.com/telecontrol-mt/calendario/internal/watcher"
)

var flagWatch bool

var boardCmd = &cobra.Command{
	Use:     "board",
	Aliases: []string{"summary"},
	Short:   "Show the yearly overview",
	Long: `Displays a summary of one year: executed ensayo counter, task counts per
estado and per task kind.

Use --watch to keep the display live-updating. The overview is fetched again
every tui.refresh_interval and whenever the configuration file changes.
Press Ctrl+C to stop.`,
	RunE: runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "live-update the overview")
	boardCmd.Flags().Int("year", 0, "year to summarize (default: current year)")
}

func runBoard(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		year = time.Now().Year()
	}

	ctx := cmd.Context()
	b, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { b.Close() }()

	if err := renderBoard(ctx, b, year); err != nil {
		return err
	}

	if !flagWatch {
		return nil
	}

	return watchBoard(ctx, &b, year)
}

func renderBoard(ctx context.Context, b *backend, year int) error {
	raw, err := b.rawTasks(ctx)
	if err != nil {
		return err
	}
	summary := board.Summary(raw, year)

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, summary)
	}
	if format == output.FormatCompact {
		output.OverviewCompact(os.Stdout, summary)
		return nil
	}

	output.OverviewTable(os.Stdout, summary)
	return nil
}

// watchBoard re-renders on every refresh tick and reconnects when the
// config file changes. *bp is replaced on reconnect.
func watchBoard(ctx context.Context, bp **backend, year int) error {
	cfg := (*bp).cfg
	redraw := make(chan struct{}, 1)
	w, err := watcher.New(cfg.Dir(), []string{config.ConfigFileName}, func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()
	go w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	interval := cfg.RefreshDuration()
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-redraw:
			if err := reconnect(ctx, bp); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: reloading config: %v\n", err)
			}
		}
		clearScreen()
		if err := renderBoard(ctx, *bp, year); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering overview: %v\n", err)
		}
	}
}

// reconnect reloads the config and swaps in a backend built from it.
func reconnect(ctx context.Context, bp **backend) error {
	fresh, err := config.Load((*bp).cfg.Dir())
	if err != nil {
		return err
	}
	nb, err := connect(ctx, fresh)
	if err != nil {
		return err
	}
	(*bp).Close()
	*bp = nb
	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
