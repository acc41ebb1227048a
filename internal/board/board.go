package board

import (
	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// ListOptions controls how tasks are listed.
type ListOptions struct {
	Filter  FilterOptions
	SortBy  string
	Reverse bool
	Limit   int
}

// List applies filters, sorting and the limit to a task collection. The
// input slice is not modified.
func List(events []*event.Event, opts ListOptions) []*event.Event {
	tasks := Filter(events, opts.Filter)

	sortField := opts.SortBy
	if sortField == "" {
		sortField = fieldFecha
	}
	Sort(tasks, sortField, opts.Reverse)

	if opts.Limit > 0 && len(tasks) > opts.Limit {
		tasks = tasks[:opts.Limit]
	}
	return tasks
}

// TareaCount holds a count for a task kind.
type TareaCount struct {
	Tarea string `json:"tarea"`
	Count int    `json:"count"`
}

// Overview is the aggregate view of one year.
type Overview struct {
	Year       int           `json:"year"`
	TotalTasks int           `json:"total_tasks"`
	Ensayos    int           `json:"ensayos_ejecutados"`
	Estados    []StatusCount `json:"estados"`
	Tareas     []TareaCount  `json:"tareas"`
}

// Summary computes the overview of year from the raw task cache.
func Summary(events []*event.Event, year int) Overview {
	var inYear []*event.Event
	for _, e := range events {
		if e.Year() == year {
			inYear = append(inYear, e)
		}
	}

	tareaMap := make(map[string]int, len(catalog.Tareas))
	var other int
	for _, e := range inYear {
		key := textfmt.Normalize(e.TaskLabel())
		known := false
		for _, t := range catalog.Tareas {
			if textfmt.Normalize(t) == key {
				tareaMap[t]++
				known = true
				break
			}
		}
		if !known {
			other++
		}
	}
	tareas := make([]TareaCount, 0, len(catalog.Tareas)+1)
	for _, t := range catalog.Tareas {
		tareas = append(tareas, TareaCount{Tarea: t, Count: tareaMap[t]})
	}
	if other > 0 {
		tareas = append(tareas, TareaCount{Tarea: "OTRAS", Count: other})
	}

	return Overview{
		Year:       year,
		TotalTasks: len(inYear),
		Ensayos:    EnsayoCount(inYear, year),
		Estados:    countEstados(inYear),
		Tareas:     tareas,
	}
}
