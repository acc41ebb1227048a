package board

import (
	"sort"

	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// DayGroup is the events of one calendar day.
type DayGroup struct {
	Day    string         `json:"day"`
	Events []*event.Event `json:"events"`
}

// GroupByDay buckets events by ISO start day, days ascending, keeping the
// input order inside each day.
func GroupByDay(events []*event.Event) []DayGroup {
	byDay := make(map[string][]*event.Event)
	for _, e := range events {
		byDay[e.Day()] = append(byDay[e.Day()], e)
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]DayGroup, 0, len(days))
	for _, d := range days {
		out = append(out, DayGroup{Day: d, Events: byDay[d]})
	}
	return out
}

// StatusCount is the number of tasks in one status.
type StatusCount struct {
	Estado string `json:"estado"`
	Count  int    `json:"count"`
}

// GroupSummary is one group within a grouped view.
type GroupSummary struct {
	Key     string        `json:"key"`
	Estados []StatusCount `json:"estados"`
	Total   int           `json:"total"`
}

// GroupBy groups tasks by the specified field and counts statuses per group.
func GroupBy(events []*event.Event, field string) []GroupSummary {
	groups := make(map[string][]*event.Event)
	for _, e := range events {
		key := groupKey(e, field)
		groups[key] = append(groups[key], e)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]GroupSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, GroupSummary{Key: k, Estados: countEstados(groups[k]), Total: len(groups[k])})
	}
	return out
}

func groupKey(e *event.Event, field string) string {
	var v string
	switch field {
	case "tipo":
		v = e.Props.Tipo.Trim()
	case fieldTarea:
		v = e.TaskLabel()
	case "responsable":
		v = e.Props.Responsable.Trim()
	case "lugar":
		v = e.Props.Lugar.Trim()
	case fieldEstado:
		v = e.Props.Estado.Trim()
	default:
		return "(todos)"
	}
	if v == "" {
		return "(sin dato)"
	}
	return textfmt.Normalize(v)
}

func countEstados(events []*event.Event) []StatusCount {
	counts := make(map[string]int)
	for _, e := range events {
		counts[textfmt.Normalize(e.Props.Estado.Trim())]++
	}
	out := make([]StatusCount, 0, len(catalog.Estados))
	for _, s := range catalog.Estados {
		out = append(out, StatusCount{Estado: s, Count: counts[s]})
	}
	return out
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{"tipo", fieldTarea, "responsable", "lugar", fieldEstado}
}
