// Package board provides collection operations on calendar events:
// filtering, sorting, grouping, the yearly ENSAYO counter and listing, and
// the activity log.
package board

import (
	"strings"

	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// TypeFilter is one task-type toggle.
type TypeFilter struct {
	Value   string `yaml:"value" json:"value"`
	Checked bool   `yaml:"checked" json:"checked"`
}

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Types  []TypeFilter
	Query  string // case-insensitive substring of UT or ajuste
	Month  string // YYYY-MM, empty for all
	Estado string
}

// Checked returns the values of the checked toggles.
func (o FilterOptions) Checked() []string {
	var out []string
	for _, t := range o.Types {
		if t.Checked {
			out = append(out, t.Value)
		}
	}
	return out
}

// Filter returns tasks matching all specified criteria (AND logic).
func Filter(events []*event.Event, opts FilterOptions) []*event.Event {
	result := make([]*event.Event, 0, len(events))
	for _, e := range events {
		if matchesFilter(e, opts) {
			result = append(result, e)
		}
	}
	return result
}

func matchesFilter(e *event.Event, opts FilterOptions) bool {
	if !AllowedByTypes(e.TaskLabel(), opts.Types) {
		return false
	}
	if !MatchesSearch(e, opts.Query) {
		return false
	}
	if opts.Month != "" && !strings.HasPrefix(e.Day(), opts.Month) {
		return false
	}
	if opts.Estado != "" && textfmt.Normalize(e.Props.Estado.Trim()) != textfmt.Normalize(opts.Estado) {
		return false
	}
	return true
}

// AllowedByTypes reports whether a task label passes the type toggles: some
// checked value and the label, both normalized, contain one another. An
// empty checked value passes every label. With nothing checked no task
// passes.
func AllowedByTypes(label string, types []TypeFilter) bool {
	for _, t := range types {
		if t.Checked && (textfmt.Contains(label, t.Value) || textfmt.Contains(t.Value, label)) {
			return true
		}
	}
	return false
}

// MatchesSearch reports whether q is empty or a case-insensitive substring
// of the task's UT or ajuste.
func MatchesSearch(e *event.Event, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Props.UT.String()), q) ||
		strings.Contains(strings.ToLower(e.Props.Ajuste.String()), q)
}

// Toggle flips the toggle whose value matches v, ignoring case and
// diacritics. It reports whether one was found.
func Toggle(types []TypeFilter, v string) bool {
	n := textfmt.Normalize(v)
	for i := range types {
		if textfmt.Normalize(types[i].Value) == n {
			types[i].Checked = !types[i].Checked
			return true
		}
	}
	return false
}

// OnlyTypes returns toggles where exactly the given values are checked.
func OnlyTypes(all []TypeFilter, values []string) []TypeFilter {
	out := make([]TypeFilter, len(all))
	for i, t := range all {
		out[i] = TypeFilter{Value: t.Value}
		for _, v := range values {
			if textfmt.Normalize(v) == textfmt.Normalize(t.Value) {
				out[i].Checked = true
			}
		}
	}
	return out
}
