// Package config handles the client configuration: backend server, type
// filters, calendar behavior, password gate policy and the snapshot cache.
package config

import "github.com/telecontrol-mt/calendario/internal/board"

const (
	// AppName names the configuration directory.
	AppName = "calendario"
	// ConfigFileName is the name of the config file within the config directory.
	ConfigFileName = "config.yml"
	// DefaultServerURL is the backend used by a fresh config.
	DefaultServerURL = "http://localhost:5000"
	// DefaultTimeout bounds each backend request.
	DefaultTimeout = "30s"
	// DefaultYearRange is how many years around today the calendar reaches.
	DefaultYearRange = 5
	// DefaultGatePolicy rejects a second password prompt while one is open.
	DefaultGatePolicy = "fail-fast"
	// DefaultCacheFile is the snapshot database, relative to the config directory.
	DefaultCacheFile = "cache.db"
	// DefaultRefreshInterval is how often the TUI refetches on its own.
	DefaultRefreshInterval = "5m"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3
)

// DefaultFilters are the task kinds offered in the filter bar, all shown.
var DefaultFilters = []board.TypeFilter{
	{Value: "ENSAYO", Checked: true},
	{Value: "AJUSTE", Checked: true},
	{Value: "FUNCION", Checked: true},
	{Value: "EVENTOS", Checked: true},
	{Value: "ACTUALIZAR", Checked: true},
}

func boolPtr(v bool) *bool { return &v }
