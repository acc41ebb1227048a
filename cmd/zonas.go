package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/output"
)

var zonasCmd = &cobra.Command{
	Use:     "zonas [ZONA]",
	Aliases: []string{"zones"},
	Short:   "List zone codes and their partidos",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runZonas,
}

func init() {
	rootCmd.AddCommand(zonasCmd)
}

func runZonas(_ *cobra.Command, args []string) error {
	codes := catalog.ZoneCodes()
	if len(args) == 1 {
		code := strings.ToUpper(strings.TrimSpace(args[0]))
		if catalog.Localities(code) == nil {
			return clierr.Newf(clierr.InvalidInput, "zona desconocida %q; válidas: %s",
				args[0], strings.Join(codes, ", "))
		}
		codes = []string{code}
	}

	if outputFormat() == output.FormatJSON {
		m := make(map[string][]string, len(codes))
		for _, c := range codes {
			m[c] = catalog.Localities(c)
		}
		return output.JSON(os.Stdout, m)
	}
	output.ZoneTable(os.Stdout, codes)
	return nil
}
