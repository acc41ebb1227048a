package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/modal"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true)

	// Estado colors aligned with the TUI badges.
	estadoStyles = map[string]lipgloss.Style{
		catalog.EstadoProgramado:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		catalog.EstadoEjecutado:    lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		catalog.EstadoReprogramado: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		catalog.EstadoSuspendido:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}

	kindStyles = map[event.Kind]lipgloss.Style{
		event.KindAbsence: lipgloss.NewStyle().Foreground(lipgloss.Color("175")),
		event.KindHoliday: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}

	noColor bool
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	titleStyle = lipgloss.NewStyle()
	estadoStyles = map[string]lipgloss.Style{}
	kindStyles = map[event.Kind]lipgloss.Style{}
	noColor = true
}

const (
	maxTareaW = 14
	maxUTW    = 14
	maxRespW  = 20
	zoneWidth = 6
)

// EventTable renders events as a table, one row per record.
func EventTable(w io.Writer, events []*event.Event) {
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "No hay eventos.")
		return
	}

	const pad = 2
	idW, tareaW, tipoW, utW, estadoW, respW := 4, 7, 6, 4, 8, 13
	for _, e := range events {
		idW = max(idW, lipgloss.Width(e.ID.String())+pad)
		tareaW = max(tareaW, min(lipgloss.Width(e.TaskLabel())+pad, maxTareaW))
		tipoW = max(tipoW, lipgloss.Width(e.Props.Tipo.Trim())+pad)
		utW = max(utW, min(lipgloss.Width(e.Props.UT.Trim())+pad, maxUTW))
		estadoW = max(estadoW, lipgloss.Width(e.Props.Estado.Trim())+pad)
		respW = max(respW, min(lipgloss.Width(e.Props.Responsable.Trim())+pad, maxRespW))
	}

	header := fmt.Sprintf("%-*s %-10s %-*s %-*s %-*s %-*s %-*s %s",
		idW, "ID", "FECHA", tareaW, "TAREA", tipoW, "TIPO", utW, "UT",
		estadoW, "ESTADO", respW, "RESPONSABLE", "HORARIO")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, e := range events {
		if e.KindOf() != event.KindTask {
			label := fmt.Sprintf("%s (%s)", textfmt.Terminal(e.Title), e.KindOf())
			st, ok := kindStyles[e.KindOf()]
			if ok {
				label = st.Render(label)
			}
			row := fmt.Sprintf("%s %-10s %s", padRight(dimStyle.Render("--"), idW), e.Day(), label)
			fmt.Fprintln(w, strings.TrimRight(row, " "))
			continue
		}
		p := e.Props
		row := fmt.Sprintf("%s %-10s %s %s %s %s %s %s",
			padRight(e.ID.String(), idW),
			e.Day(),
			padRight(truncate(textfmt.Terminal(e.TaskLabel()), tareaW-1), tareaW),
			padRight(orDash(p.Tipo.Trim()), tipoW),
			padRight(orDash(truncate(textfmt.Terminal(p.UT.Trim()), utW-1)), utW),
			padRight(styledEstado(p.Estado.Trim()), estadoW),
			padRight(orDash(truncate(textfmt.Terminal(p.Responsable.Trim()), respW-1)), respW),
			scheduleCell(p.Horario.String()))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// EventDetail renders the read-only detail of a task with the same fields
// as the TUI dialog. The comment is rendered as markdown.
func EventDetail(w io.Writer, v modal.View, width int) {
	line := "Tarea"
	for _, b := range v.Badges {
		line += " [" + b.Text + "]"
	}
	fmt.Fprintln(w, titleStyle.Render(line))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(line)))

	var comment string
	for _, f := range v.Fields {
		if f.Hidden {
			continue
		}
		if f.Key == modal.KeyComentario {
			comment = f.Value
			continue
		}
		value := f.Value
		if f.Key == modal.KeyEstado {
			value = styledEstado(value)
		}
		printField(w, f.Label, value)
	}
	if comment != "" && comment != textfmt.Placeholder {
		fmt.Fprintln(w)
		fmt.Fprintln(w, Markdown(comment, width))
	}
}

// OverviewTable renders the yearly summary.
func OverviewTable(w io.Writer, s board.Overview) {
	fmt.Fprintln(w, titleStyle.Render(board.CounterLabel(s.Year, s.Ensayos)))
	fmt.Fprintf(w, "Total: %d tareas\n\n", s.TotalTasks)

	const colW = 16
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", colW, "ESTADO", "CANT")))
	for _, sc := range s.Estados {
		fmt.Fprintf(w, "%s %6d\n", padRight(styledEstado(sc.Estado), colW), sc.Count)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", colW, "TAREA", "CANT")))
	for _, tc := range s.Tareas {
		fmt.Fprintf(w, "%-*s %6d\n", colW, tc.Tarea, tc.Count)
	}
}

// GroupedTable renders per-group estado breakdowns.
func GroupedTable(w io.Writer, groups []board.GroupSummary) {
	if len(groups) == 0 {
		fmt.Fprintln(os.Stderr, "No hay grupos.")
		return
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d)", textfmt.Terminal(g.Key), g.Total)))
		for _, sc := range g.Estados {
			if sc.Count == 0 {
				continue
			}
			const groupEstadoW = 16
			fmt.Fprintf(w, "  %s %d\n", padRight(styledEstado(sc.Estado), groupEstadoW), sc.Count)
		}
	}
}

// ListingTable renders the ensayo listing under its title.
func ListingTable(w io.Writer, title string, rows board.Rows) {
	fmt.Fprintln(w, titleStyle.Render(title))

	cols := board.ListingColumns
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c) + 2 //nolint:mnd // column gap
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = row.Cells()
		for i, v := range cells[r] {
			cells[r][i] = textfmt.Terminal(v)
			widths[i] = max(widths[i], lipgloss.Width(cells[r][i])+2) //nolint:mnd // column gap
		}
	}

	var b strings.Builder
	for i, c := range cols {
		b.WriteString(padRight(c, widths[i]))
	}
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(b.String(), " ")))
	for _, rc := range cells {
		b.Reset()
		for i, v := range rc {
			if v == "" {
				v = "-"
			}
			b.WriteString(padRight(v, widths[i]))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// CromoColumns are the headers of the CROMO table.
var CromoColumns = []string{"UT", "Cuenta", "Lado", "Clase", "Celda", "Conexión"}

// CromoTable renders the CROMO rows of one lado, each followed by its
// folder when present.
func CromoTable(w io.Writer, v modal.CromoView) {
	fmt.Fprintln(w, titleStyle.Render("Información CROMO "+v.Lado))

	widths := make([]int, len(CromoColumns))
	for i, c := range CromoColumns {
		widths[i] = lipgloss.Width(c) + 2 //nolint:mnd // column gap
	}
	cells := make([][]string, len(v.Rows))
	for r, row := range v.Rows {
		cells[r] = []string{row.UT, row.Cuenta, row.Lado, row.Clase, row.Celda, row.Conexion}
		for i, c := range cells[r] {
			widths[i] = max(widths[i], lipgloss.Width(c)+2) //nolint:mnd // column gap
		}
	}

	var b strings.Builder
	for i, c := range CromoColumns {
		b.WriteString(padRight(c, widths[i]))
	}
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(b.String(), " ")))
	for r, rc := range cells {
		b.Reset()
		for i, c := range rc {
			b.WriteString(padRight(orDash(c), widths[i]))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
		if row := v.Rows[r]; row.Carpeta != "" {
			fmt.Fprintln(w, dimStyle.Render("  📁 "+row.Carpeta+"  "+row.FolderURL))
		}
	}
}

// LogTable renders activity log entries, newest last.
func LogTable(w io.Writer, entries []board.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "Sin actividad registrada.")
		return
	}
	for _, e := range entries {
		id := e.TaskID.String()
		if id == "" {
			id = "--"
		}
		line := fmt.Sprintf("%s  %-10s %-8s #%s", e.Timestamp.Local().Format("2006-01-02 15:04"), e.Action, e.Outcome, id)
		if e.Detail != "" {
			line += "  " + textfmt.Terminal(e.Detail)
		}
		fmt.Fprintln(w, line)
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-15s %s\n", label+":", value)
}

func scheduleCell(v string) string {
	if textfmt.IsEmptySchedule(v) {
		return dimStyle.Render("--")
	}
	return strings.TrimSpace(v)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width || width < 2 { //nolint:mnd // room for the ellipsis
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func orDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}

func styledEstado(s string) string {
	if st, ok := estadoStyles[strings.ToUpper(s)]; ok {
		return st.Render(s)
	}
	return s
}

// ZoneTable renders the given zone codes with their partidos.
func ZoneTable(w io.Writer, codes []string) {
	fmt.Fprintln(w, headerStyle.Render(padRight("Zona", zoneWidth)+"Partidos"))
	for _, code := range codes {
		fmt.Fprintln(w, padRight(code, zoneWidth)+strings.Join(catalog.Localities(code), ", "))
	}
}
