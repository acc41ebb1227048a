package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/config"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/output"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify the configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Long: `Sets a writable configuration value. "filters" takes the comma-separated
list of task kinds to show; every configured kind not listed is hidden.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func configAccessors() map[string]configAccessor {
	accessors := serverConfigAccessors()
	addBehaviorConfigAccessors(accessors)
	return accessors
}

func serverConfigAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"server.url": {
			get:      func(c *config.Config) any { return c.Server.URL },
			set:      func(c *config.Config, v string) error { c.Server.URL = strings.TrimRight(v, "/"); return nil },
			writable: true,
		},
		"server.username": {
			get:      func(c *config.Config) any { return c.Server.Username },
			set:      func(c *config.Config, v string) error { c.Server.Username = v; return nil },
			writable: true,
		},
		"server.timeout": {
			get: func(c *config.Config) any { return c.Server.Timeout },
			set: func(c *config.Config, v string) error {
				if _, err := time.ParseDuration(v); v != "" && err != nil {
					return clierr.Newf(clierr.InvalidInput, "invalid server.timeout %q: %v", v, err)
				}
				c.Server.Timeout = v
				return nil
			},
			writable: true,
		},
		"cache.enabled": {
			get: func(c *config.Config) any { return c.Cache.Enabled },
			set: func(c *config.Config, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return clierr.Newf(clierr.InvalidInput, "invalid cache.enabled %q: must be true or false", v)
				}
				c.Cache.Enabled = b
				return nil
			},
			writable: true,
		},
		"cache.file": {
			get:      func(c *config.Config) any { return c.Cache.File },
			set:      func(c *config.Config, v string) error { c.Cache.File = v; return nil },
			writable: true,
		},
	}
}

func addBehaviorConfigAccessors(accessors map[string]configAccessor) {
	accessors["filters"] = configAccessor{
		get: func(c *config.Config) any { return c.Filters },
		set: func(c *config.Config, v string) error {
			var values []string
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s == "" {
					continue
				}
				if !hasFilter(c.Filters, s) {
					return clierr.Newf(clierr.InvalidInput,
						"unknown filter %q; allowed: %s", s, strings.Join(c.FilterValues(), ", "))
				}
				values = append(values, s)
			}
			c.Filters = board.OnlyTypes(c.Filters, values)
			return nil
		},
		writable: true,
	}
	accessors["calendar.refetch_after_move"] = configAccessor{
		get: func(c *config.Config) any { return c.RefetchAfterMove() },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput,
					"invalid calendar.refetch_after_move %q: must be true or false", v)
			}
			c.SetRefetchAfterMove(b)
			return nil
		},
		writable: true,
	}
	accessors["calendar.year_range"] = configAccessor{
		get: func(c *config.Config) any { return c.Calendar.YearRange },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput,
					"invalid calendar.year_range %q: must be an integer", v)
			}
			c.Calendar.YearRange = n
			return nil // validation handles range check
		},
		writable: true,
	}
	accessors["gate.policy"] = configAccessor{
		get: func(c *config.Config) any { return c.Gate.Policy },
		set: func(c *config.Config, v string) error {
			if _, err := gate.ParsePolicy(v); err != nil {
				return clierr.Wrap(clierr.InvalidInput, err.Error(), err)
			}
			c.Gate.Policy = v
			return nil
		},
		writable: true,
	}
	accessors["tui.refresh_interval"] = configAccessor{
		get: func(c *config.Config) any { return c.TUI.RefreshInterval },
		set: func(c *config.Config, v string) error {
			if _, err := time.ParseDuration(v); v != "" && err != nil {
				return clierr.Newf(clierr.InvalidInput,
					"invalid tui.refresh_interval %q: %v", v, err)
			}
			c.TUI.RefreshInterval = v
			return nil
		},
		writable: true,
	}
}

func hasFilter(filters []board.TypeFilter, v string) bool {
	for _, f := range filters {
		if textfmt.Normalize(f.Value) == textfmt.Normalize(v) {
			return true
		}
	}
	return false
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"server.url",
		"server.username",
		"server.timeout",
		"filters",
		"calendar.refetch_after_move",
		"calendar.year_range",
		"gate.policy",
		"cache.enabled",
		"cache.file",
		"tui.refresh_interval",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-28s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return clierr.Wrap(clierr.InvalidInput, err.Error(), err)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []board.TypeFilter:
		if len(v) == 0 {
			return "--"
		}
		parts := make([]string, len(v))
		for i, f := range v {
			mark := " "
			if f.Checked {
				mark = "x"
			}
			parts[i] = fmt.Sprintf("[%s]%s", mark, f.Value)
		}
		return strings.Join(parts, " ")
	case string:
		if v == "" {
			return "--"
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
