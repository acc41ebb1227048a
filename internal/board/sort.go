package board

import (
	"sort"
	"strings"

	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

const (
	fieldFecha  = "fecha"
	fieldEstado = "estado"
	fieldTarea  = "tarea"
)

// SortFields lists the valid --sort values.
func SortFields() []string {
	return []string{fieldFecha, "ut", fieldEstado, fieldTarea, "orden"}
}

// Sort sorts events by the given field. Status uses the lifecycle order,
// not the alphabet. Ties keep their order.
func Sort(events []*event.Event, field string, reverse bool) {
	sort.SliceStable(events, func(i, j int) bool {
		if reverse {
			return compareEvents(events[j], events[i], field)
		}
		return compareEvents(events[i], events[j], field)
	})
}

// SortByDate sorts events ascending by ISO start day.
func SortByDate(events []*event.Event) {
	Sort(events, fieldFecha, false)
}

func compareEvents(a, b *event.Event, field string) bool {
	switch field {
	case "ut":
		return a.Props.UT.Trim() < b.Props.UT.Trim()
	case fieldEstado:
		return estadoIndex(a) < estadoIndex(b)
	case fieldTarea:
		return textfmt.Normalize(a.TaskLabel()) < textfmt.Normalize(b.TaskLabel())
	case "orden":
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Title < b.Title
	default:
		return a.Day() < b.Day()
	}
}

func estadoIndex(e *event.Event) int {
	s := textfmt.Normalize(strings.TrimSpace(e.Props.Estado.String()))
	for i, v := range catalog.Estados {
		if v == s {
			return i
		}
	}
	return len(catalog.Estados)
}
