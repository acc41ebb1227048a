// Package output formats CLI output as table, JSON, compact lines, or the
// TSV and HTML exports of the ensayo listing.
package output

import (
	"os"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto uses the default format (table).
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTable outputs a human-readable table.
	FormatTable
	// FormatCompact outputs one line per record.
	FormatCompact
)

// EnvFormat names the environment variable that picks a default format.
const EnvFormat = "CALENDARIO_OUTPUT"

// Detect returns the format chosen by flags, then by CALENDARIO_OUTPUT.
// Default is table.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	if compactFlag {
		return FormatCompact
	}
	if tableFlag {
		return FormatTable
	}

	switch os.Getenv(EnvFormat) {
	case "json":
		return FormatJSON
	case "compact", "oneline":
		return FormatCompact
	case "table":
		return FormatTable
	}
	return FormatTable
}
