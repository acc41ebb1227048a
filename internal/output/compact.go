package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// EventCompact renders events one line per record.
func EventCompact(w io.Writer, events []*event.Event) {
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "No hay eventos.")
		return
	}
	for _, e := range events {
		fmt.Fprintln(w, formatEventLine(e))
	}
}

// DayAgenda renders events under one header per day.
func DayAgenda(w io.Writer, groups []board.DayGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(os.Stderr, "No hay eventos.")
		return
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, titleStyle.Render(dayHeader(g.Day)))
		for _, e := range g.Events {
			fmt.Fprintln(w, "  "+formatEventLine(e))
		}
	}
}

func dayHeader(day string) string {
	d, err := date.Parse(day)
	if err != nil {
		return day
	}
	return d.DMY()
}

// OverviewCompact renders the yearly summary in compact format.
func OverviewCompact(w io.Writer, s board.Overview) {
	fmt.Fprintf(w, "%d: %d tareas, %d ensayos ejecutados\n", s.Year, s.TotalTasks, s.Ensayos)

	parts := make([]string, 0, len(s.Estados))
	for _, sc := range s.Estados {
		parts = append(parts, sc.Estado+"="+strconv.Itoa(sc.Count))
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, "  Estados: "+strings.Join(parts, " "))
	}
	parts = parts[:0]
	for _, tc := range s.Tareas {
		parts = append(parts, tc.Tarea+"="+strconv.Itoa(tc.Count))
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, "  Tareas: "+strings.Join(parts, " "))
	}
}

// ListingCompact renders the ensayo listing one row per line.
func ListingCompact(w io.Writer, title string, rows board.Rows) {
	fmt.Fprintln(w, title)
	for _, r := range rows {
		line := "#" + r.ID.String() + " " + textfmt.ISOToDMY(r.Fecha) + " " + textfmt.Terminal(r.UT)
		if r.Lado != "" {
			line += " lado:" + textfmt.Terminal(r.Lado)
		}
		if r.Marca != "" || r.Modelo != "" {
			line += " (" + strings.TrimSpace(textfmt.Terminal(r.Marca+" "+r.Modelo)) + ")"
		}
		fmt.Fprintln(w, line)
	}
}

// formatEventLine builds the one-line representation of a record.
func formatEventLine(e *event.Event) string {
	if e.KindOf() != event.KindTask {
		return e.Day() + " [" + string(e.KindOf()) + "] " + textfmt.Terminal(e.Title)
	}
	p := e.Props
	line := "#" + e.ID.String() + " " + e.Day() + " [" + textfmt.Dash(p.Estado.Trim()) + "] " +
		textfmt.Terminal(e.TaskLabel())
	if ut := p.UT.Trim(); ut != "" {
		line += " " + textfmt.Terminal(ut)
	}
	if tipo := p.Tipo.Trim(); tipo != "" {
		line += " (" + textfmt.Terminal(tipo) + ")"
	}
	if !textfmt.IsEmptySchedule(p.Horario.String()) {
		line += " " + p.Horario.Trim()
	}
	if r := p.Responsable.Trim(); r != "" {
		line += " @" + textfmt.Terminal(r)
	}
	return line
}
