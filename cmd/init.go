package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/config"
	"github.com/telecontrol-mt/calendario/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file",
	Long: `Creates config.yml in the configuration directory (--dir, or the per-user
config directory) pointing at the given backend server.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("server", config.DefaultServerURL, "backend base URL")
	initCmd.Flags().String("username", "", "login username (leave empty when the server needs no login)")
	initCmd.Flags().String("gate-policy", config.DefaultGatePolicy, "password prompt policy (fail-fast, replace)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir, err := config.ResolveDir(flagDir)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(dir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.InvalidInput, "config already initialized in %s", dir).
			WithDetails(map[string]any{"dir": dir})
	}

	server, _ := cmd.Flags().GetString("server")
	cfg, err := config.Init(dir, server)
	if err != nil {
		return clierr.Wrap(clierr.InvalidInput, err.Error(), err)
	}

	username, _ := cmd.Flags().GetString("username")
	policy, _ := cmd.Flags().GetString("gate-policy")
	if username != "" || policy != cfg.Gate.Policy {
		cfg.Server.Username = username
		cfg.Gate.Policy = policy
		if err := cfg.Validate(); err != nil {
			return clierr.Wrap(clierr.InvalidInput, err.Error(), err)
		}
		if err := cfg.Save(); err != nil {
			return err
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":   "initialized",
			"dir":      dir,
			"config":   cfg.ConfigPath(),
			"server":   cfg.Server.URL,
			"username": cfg.Server.Username,
			"cache":    cfg.CachePath(),
		})
	}

	output.Messagef(os.Stdout, "Initialized calendario in %s", dir)
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Server:  %s", cfg.Server.URL)
	output.Messagef(os.Stdout, "  Cache:   %s", cfg.CachePath())
	if cfg.Server.Username == "" {
		output.Messagef(os.Stdout, "  Hint:    set a login user with: calendario config set server.username NAME")
	}
	return nil
}
