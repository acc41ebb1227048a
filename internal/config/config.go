package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/filelock"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
	lockName = ".config.lock"
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no config found (run 'calendario init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the client configuration.
type Config struct {
	Version  int                `yaml:"version"`
	Server   ServerConfig       `yaml:"server"`
	Filters  []board.TypeFilter `yaml:"filters"`
	Calendar CalendarConfig     `yaml:"calendar"`
	Gate     GateConfig         `yaml:"gate"`
	Cache    CacheConfig        `yaml:"cache"`
	TUI      TUIConfig          `yaml:"tui,omitempty"`

	// dir is the absolute path to the config directory (not serialized).
	dir string `yaml:"-"`
}

// ServerConfig locates the backend.
type ServerConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
}

// CalendarConfig holds calendar behavior.
type CalendarConfig struct {
	// RefetchAfterMove reloads every source after a successful reschedule.
	// Unset means true.
	RefetchAfterMove *bool `yaml:"refetch_after_move,omitempty"`
	YearRange        int   `yaml:"year_range"`
}

// GateConfig holds the password prompt policy.
type GateConfig struct {
	Policy string `yaml:"policy"`
}

// CacheConfig holds the offline snapshot settings.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file,omitempty"`
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	RefreshInterval string `yaml:"refresh_interval,omitempty"`
}

// Dir returns the absolute path to the config directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the config directory path.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// CachePath returns the absolute path to the snapshot database.
func (c *Config) CachePath() string {
	f := c.Cache.File
	if f == "" {
		f = DefaultCacheFile
	}
	if filepath.IsAbs(f) {
		return f
	}
	return filepath.Join(c.dir, f)
}

// NewDefault creates a Config with default values.
func NewDefault(serverURL string) *Config {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return &Config{
		Version:  CurrentVersion,
		Server:   ServerConfig{URL: serverURL, Timeout: DefaultTimeout},
		Filters:  slices.Clone(DefaultFilters),
		Calendar: CalendarConfig{RefetchAfterMove: boolPtr(true), YearRange: DefaultYearRange},
		Gate:     GateConfig{Policy: DefaultGatePolicy},
		Cache:    CacheConfig{Enabled: true, File: DefaultCacheFile},
		TUI:      TUIConfig{RefreshInterval: DefaultRefreshInterval},
	}
}

// RefetchAfterMove reports whether a successful reschedule reloads the
// sources.
func (c *Config) RefetchAfterMove() bool {
	return c.Calendar.RefetchAfterMove == nil || *c.Calendar.RefetchAfterMove
}

// SetRefetchAfterMove stores the refetch flag.
func (c *Config) SetRefetchAfterMove(v bool) {
	c.Calendar.RefetchAfterMove = boolPtr(v)
}

// TimeoutDuration parses server.timeout. Empty or unparseable means none.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// RefreshDuration parses tui.refresh_interval. Zero disables the timer.
func (c *Config) RefreshDuration() time.Duration {
	if c.TUI.RefreshInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.TUI.RefreshInterval)
	if err != nil {
		return 0
	}
	return d
}

// GatePolicy returns the parsed gate policy.
func (c *Config) GatePolicy() gate.Policy {
	p, err := gate.ParsePolicy(c.Gate.Policy)
	if err != nil {
		return gate.FailFast
	}
	return p
}

// FilterValues returns the configured filter values in order.
func (c *Config) FilterValues() []string {
	out := make([]string, len(c.Filters))
	for i, f := range c.Filters {
		out[i] = f.Value
	}
	return out
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateFilters(); err != nil {
		return err
	}
	if c.Calendar.YearRange < 1 {
		return fmt.Errorf("%w: calendar.year_range must be >= 1", ErrInvalid)
	}
	if _, err := gate.ParsePolicy(c.Gate.Policy); err != nil {
		return fmt.Errorf("%w: gate.policy: %w", ErrInvalid, err)
	}
	if c.TUI.RefreshInterval != "" {
		d, err := time.ParseDuration(c.TUI.RefreshInterval)
		if err != nil {
			return fmt.Errorf("%w: invalid tui.refresh_interval %q: %w", ErrInvalid, c.TUI.RefreshInterval, err)
		}
		if d < 0 {
			return fmt.Errorf("%w: tui.refresh_interval must be >= 0", ErrInvalid)
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: server.url %q must be an http(s) URL", ErrInvalid, c.Server.URL)
	}
	if c.Server.Timeout != "" {
		if _, err := time.ParseDuration(c.Server.Timeout); err != nil {
			return fmt.Errorf("%w: invalid server.timeout %q: %w", ErrInvalid, c.Server.Timeout, err)
		}
	}
	return nil
}

func (c *Config) validateFilters() error {
	seen := make(map[string]bool, len(c.Filters))
	for i, f := range c.Filters {
		if strings.TrimSpace(f.Value) == "" {
			return fmt.Errorf("%w: filters[%d].value is required", ErrInvalid, i)
		}
		key := textfmt.Normalize(f.Value)
		if seen[key] {
			return fmt.Errorf("%w: duplicate filter %q", ErrInvalid, f.Value)
		}
		seen[key] = true
	}
	return nil
}

// DefaultDir returns the per-user config directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// ResolveDir returns override when set, otherwise DefaultDir.
func ResolveDir(override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	return DefaultDir()
}

// Init creates the config directory and a default config file. An
// existing config is left untouched and returned.
func Init(dir, serverURL string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if cfg, err := Load(absDir); err == nil {
		return cfg, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	cfg := NewDefault(serverURL)
	cfg.SetDir(absDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to its config file under the directory lock.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return filelock.With(filepath.Join(c.dir, lockName), func() error {
		tmp := c.ConfigPath() + ".tmp"
		if err := os.WriteFile(tmp, data, fileMode); err != nil {
			return err
		}
		return os.Rename(tmp, c.ConfigPath())
	})
}

// Load reads, migrates and validates the config in dir.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = absDir

	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
