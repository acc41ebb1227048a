package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/clip"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/output"
)

var ensayosCmd = &cobra.Command{
	Use:   "ensayos",
	Short: "Count and list the ENSAYO tasks of a year",
	Long: `Lists the ENSAYO tasks of a year filtered by estado (ejecutado, programado,
suspendido or todos), sorted by date. --count prints only the number of
executed ensayos, as the counter badge shows it. --copy puts the listing on the
clipboard as TSV; --format prints it as tsv or html instead of a table.`,
	RunE: runEnsayos,
}

func init() {
	ensayosCmd.Flags().Int("year", 0, "year to list (default: current year)")
	ensayosCmd.Flags().String("estado", "ejecutado", "ejecutado, programado, suspendido or todos")
	ensayosCmd.Flags().Bool("count", false, "print only the executed ensayo counter")
	ensayosCmd.Flags().Bool("copy", false, "copy the listing to the clipboard as TSV")
	ensayosCmd.Flags().String("format", "", "print the listing as tsv or html")
	ensayosCmd.Flags().Bool("offline", false, "read the local snapshot instead of the server")
	rootCmd.AddCommand(ensayosCmd)
}

func runEnsayos(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		year = time.Now().Year()
	}
	estado, _ := cmd.Flags().GetString("estado")
	filter, err := board.ParseListFilter(estado)
	if err != nil {
		return clierr.Wrap(clierr.InvalidInput, err.Error(), err)
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "" && format != "tsv" && format != "html" {
		return clierr.Newf(clierr.InvalidInput, "invalid --format %q; valid: tsv, html", format)
	}
	countOnly, _ := cmd.Flags().GetBool("count")
	copyRows, _ := cmd.Flags().GetBool("copy")
	offline, _ := cmd.Flags().GetBool("offline")

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

	if countOnly {
		n := board.EnsayoCount(raw, year)
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, map[string]int{"year": year, "ensayos_ejecutados": n})
		}
		fmt.Fprintln(os.Stdout, board.CounterLabel(year, n))
		return nil
	}

	rows := board.Listing(raw, year, filter)
	if copyRows && len(rows) > 0 {
		m, err := clip.New(clip.WithTerminal(os.Stderr)).Copy(rows.TSV())
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, clip.Label(m))
	}

	switch format {
	case "tsv":
		fmt.Fprintln(os.Stdout, rows.TSV())
		return nil
	case "html":
		fmt.Fprintln(os.Stdout, rows.HTML())
		return nil
	}

	if outputFormat() == output.FormatJSON {
		if rows == nil {
			rows = board.Rows{}
		}
		return output.JSON(os.Stdout, rows)
	}
	if len(rows) == 0 {
		output.Messagef(os.Stdout, "%s", board.EmptyListing(year, filter))
		return nil
	}
	title := board.ListingTitle(year, len(rows))
	if outputFormat() == output.FormatCompact {
		output.ListingCompact(os.Stdout, title, rows)
		return nil
	}
	output.ListingTable(os.Stdout, title, rows)
	return nil
}
