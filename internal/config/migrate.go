package config

import "fmt"

// migrate upgrades a config from its version to CurrentVersion, one
// version at a time. Configs newer than this binary are rejected.
func migrate(cfg *Config) error {
	if cfg.Version == CurrentVersion {
		return nil
	}
	if cfg.Version > CurrentVersion {
		return fmt.Errorf(
			"%w: config version %d is newer than supported version %d (upgrade calendario)",
			ErrInvalid, cfg.Version, CurrentVersion,
		)
	}
	if cfg.Version < 1 {
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}

	for cfg.Version < CurrentVersion {
		fn, ok := migrations[cfg.Version]
		if !ok {
			return fmt.Errorf("%w: no migration path from version %d", ErrInvalid, cfg.Version)
		}
		if err := fn(cfg); err != nil {
			return fmt.Errorf("migrating config from v%d: %w", cfg.Version, err)
		}
	}
	return nil
}

// migrations maps each version to the function that moves it one forward.
// Each function must bump cfg.Version.
var migrations = map[int]func(*Config) error{
	1: migrateV1ToV2,
	2: migrateV2ToV3,
}

// migrateV1ToV2 adds the gate policy and the snapshot cache, and fills a
// missing year range and filter list.
func migrateV1ToV2(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.Gate.Policy == "" {
		cfg.Gate.Policy = DefaultGatePolicy
	}
	if cfg.Cache.File == "" {
		cfg.Cache = CacheConfig{Enabled: true, File: DefaultCacheFile}
	}
	if cfg.Calendar.YearRange == 0 {
		cfg.Calendar.YearRange = DefaultYearRange
	}
	if len(cfg.Filters) == 0 {
		cfg.Filters = append(cfg.Filters, DefaultFilters...)
	}
	cfg.Version = 2
	return nil
}

// migrateV2ToV3 adds the TUI auto-refresh interval.
func migrateV2ToV3(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.TUI.RefreshInterval == "" {
		cfg.TUI.RefreshInterval = DefaultRefreshInterval
	}
	cfg.Version = 3
	return nil
}
