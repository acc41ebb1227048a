package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/config"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/output"
	"github.com/telecontrol-mt/calendario/internal/store"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists tasks with the configured type filters, optional search, month and
estado filters, sorting, grouping and output format control. --offline reads
the snapshot of the last successful fetch instead of the server.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringSlice("type", nil, "show only these task kinds (default: checked config filters)")
	listCmd.Flags().StringP("search", "s", "", "search tasks by UT or ajuste (case-insensitive)")
	listCmd.Flags().String("month", "", "only tasks in this month (YYYY-MM)")
	listCmd.Flags().String("estado", "", "only tasks with this estado")
	listCmd.Flags().String("sort", "fecha", "sort field ("+strings.Join(board.SortFields(), ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	listCmd.Flags().Bool("by-day", false, "print results under one header per day")
	listCmd.Flags().Bool("offline", false, "read the local snapshot instead of the server")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	types, _ := cmd.Flags().GetStringSlice("type")
	search, _ := cmd.Flags().GetString("search")
	month, _ := cmd.Flags().GetString("month")
	estado, _ := cmd.Flags().GetString("estado")
	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")
	groupBy, _ := cmd.Flags().GetString("group-by")
	offline, _ := cmd.Flags().GetBool("offline")
	byDay, _ := cmd.Flags().GetBool("by-day")

	if byDay && groupBy != "" {
		return clierr.New(clierr.InvalidInput, "--by-day and --group-by cannot be combined")
	}
	if groupBy != "" && !slices.Contains(board.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidInput, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(board.ValidGroupByFields(), ", "))
	}
	if !slices.Contains(board.SortFields(), sortBy) {
		return clierr.Newf(clierr.InvalidInput, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(board.SortFields(), ", "))
	}
	if month != "" {
		if _, err := date.Parse(month + "-01"); err != nil {
			return clierr.Newf(clierr.InvalidDate, "invalid --month %q (expected YYYY-MM)", month)
		}
	}

	filter := board.FilterOptions{
		Types:  cfg.Filters,
		Query:  search,
		Month:  month,
		Estado: estado,
	}
	if len(types) > 0 {
		filter.Types = board.OnlyTypes(typeUniverse(cfg, types), types)
	}

	opts := board.ListOptions{
		Filter:  filter,
		SortBy:  sortBy,
		Reverse: reverse,
		Limit:   limit,
	}

	ctx := cmd.Context()
	var raw []*event.Event
	if offline {
		raw, err = offlineTasks(ctx, cfg)
	} else {
		raw, err = onlineTasks(ctx, cfg)
	}
	if err != nil {
		return err
	}

	tasks := board.List(raw, opts)
	if groupBy != "" {
		return outputGroupedList(tasks, groupBy)
	}
	if byDay {
		return outputDayList(tasks)
	}
	return outputEventList(tasks)
}

// typeUniverse is the configured filters plus any extra requested kind.
func typeUniverse(cfg *config.Config, requested []string) []board.TypeFilter {
	all := slices.Clone(cfg.Filters)
	for _, r := range requested {
		if !hasFilter(all, r) {
			all = append(all, board.TypeFilter{Value: r})
		}
	}
	return all
}

func onlineTasks(ctx context.Context, cfg *config.Config) ([]*event.Event, error) {
	b, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.rawTasks(ctx)
}

func offlineTasks(ctx context.Context, cfg *config.Config) ([]*event.Event, error) {
	st, err := store.Open(ctx, cfg.CachePath())
	if err != nil {
		return nil, err
	}
	defer st.Close()

	tasks, fetchedAt, err := st.Load(ctx, event.KindTask)
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil, clierr.New(clierr.InvalidInput, "no offline snapshot yet (run 'calendario list' once online)")
	}
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Offline snapshot from %s\n", humanize.Time(fetchedAt))
	return tasks, nil
}

func outputGroupedList(tasks []*event.Event, groupBy string) error {
	grouped := board.GroupBy(tasks, groupBy)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, grouped)
	}
	output.GroupedTable(os.Stdout, grouped)
	return nil
}

func outputDayList(tasks []*event.Event) error {
	days := board.GroupByDay(tasks)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, days)
	}
	output.DayAgenda(os.Stdout, days)
	return nil
}

func outputEventList(events []*event.Event) error {
	format := outputFormat()
	if format == output.FormatJSON {
		if events == nil {
			events = []*event.Event{}
		}
		return output.JSON(os.Stdout, events)
	}
	if format == output.FormatCompact {
		output.EventCompact(os.Stdout, events)
		return nil
	}

	output.EventTable(os.Stdout, events)
	return nil
}
