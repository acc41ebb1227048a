package board

import (
	"fmt"
	"strings"

	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// ListFilter is the status selector of the ENSAYO listing.
type ListFilter string

// Listing filters. Todos skips the status check.
const (
	ListEjecutado  ListFilter = catalog.EstadoEjecutado
	ListProgramado ListFilter = catalog.EstadoProgramado
	ListSuspendido ListFilter = catalog.EstadoSuspendido
	ListTodos      ListFilter = "TODOS"
)

// ListFilters is the selector order.
var ListFilters = []ListFilter{ListEjecutado, ListProgramado, ListSuspendido, ListTodos}

var listFilterLabels = map[ListFilter]string{
	ListEjecutado:  "Ejecutados",
	ListProgramado: "Programados",
	ListSuspendido: "Suspendidos",
	ListTodos:      "Todos",
}

// Label is the button text of the filter.
func (f ListFilter) Label() string {
	if l, ok := listFilterLabels[f]; ok {
		return l
	}
	return string(f)
}

// ParseListFilter accepts a filter name or label, ignoring case and
// diacritics. Empty means EJECUTADO.
func ParseListFilter(s string) (ListFilter, error) {
	n := textfmt.Normalize(strings.TrimSpace(s))
	if n == "" {
		return ListEjecutado, nil
	}
	for _, f := range ListFilters {
		if n == string(f) || n == textfmt.Normalize(f.Label()) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown listing filter %q (valid: EJECUTADO, PROGRAMADO, SUSPENDIDO, TODOS)", s)
}

// EnsayoCount counts the ENSAYO tasks of year whose status is EJECUTADO.
func EnsayoCount(events []*event.Event, year int) int {
	n := 0
	for _, e := range events {
		if e.Year() == year && event.CountsAsEnsayo(e) {
			n++
		}
	}
	return n
}

// CounterLabel renders the yearly counter badge.
func CounterLabel(year, n int) string {
	return fmt.Sprintf("📊 Interruptores en %d: %d", year, n)
}

// Row is one line of the ENSAYO listing.
type Row struct {
	ID     event.ID `json:"id"`
	Fecha  string   `json:"fecha"`
	UT     string   `json:"ut"`
	Lado   string   `json:"lado"`
	Cuenta string   `json:"cuenta"`
	Marca  string   `json:"marca"`
	Modelo string   `json:"modelo"`
	Ajuste string   `json:"ajuste"`
	Estado string   `json:"estado"`
}

// Cells returns the rendered columns in header order.
func (r Row) Cells() []string {
	return []string{textfmt.ISOToDMY(r.Fecha), r.UT, r.Lado, r.Cuenta, r.Marca, r.Modelo, r.Ajuste}
}

// Rows is an ENSAYO listing.
type Rows []Row

// ListingColumns is the header of the listing table and of its export.
var ListingColumns = []string{"Fecha", "UT", "Lado", "Cuenta", "Marca", "Modelo", "Ajuste"}

// Listing returns the ENSAYO tasks of year that pass the filter, sorted by
// date ascending.
func Listing(events []*event.Event, year int, f ListFilter) Rows {
	matched := make([]*event.Event, 0, len(events))
	for _, e := range events {
		if e.Year() != year || !event.IsEnsayo(e) {
			continue
		}
		if f != ListTodos && textfmt.Normalize(e.Props.Estado.Trim()) != string(f) {
			continue
		}
		matched = append(matched, e)
	}
	SortByDate(matched)

	rows := make(Rows, 0, len(matched))
	for _, e := range matched {
		p := e.Props
		rows = append(rows, Row{
			ID:     e.ID,
			Fecha:  e.Day(),
			UT:     p.UT.Trim(),
			Lado:   p.Lado.Trim(),
			Cuenta: p.Cuenta.Trim(),
			Marca:  p.Marca.Trim(),
			Modelo: p.Modelo.Trim(),
			Ajuste: p.Ajuste.Trim(),
			Estado: p.Estado.Trim(),
		})
	}
	return rows
}

// ListingTitle is the heading of the listing.
func ListingTitle(year, n int) string {
	return fmt.Sprintf("Interruptores ensayados en %d Total: %d", year, n)
}

// EmptyListing is the text shown when the listing has no rows.
func EmptyListing(year int, f ListFilter) string {
	if f == ListTodos {
		return fmt.Sprintf("No hay ENSAYOS en %d.", year)
	}
	return fmt.Sprintf("No hay ENSAYOS con estado %s en %d.", f, year)
}

// TSV renders the header and the rows tab-separated, one line each.
func (rs Rows) TSV() string {
	lines := make([]string, 0, len(rs)+1)
	lines = append(lines, strings.Join(ListingColumns, "\t"))
	for _, r := range rs {
		cells := r.Cells()
		for i, c := range cells {
			cells[i] = strings.NewReplacer("\t", " ", "\n", " ").Replace(c)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n")
}

// HTML renders the rows as an escaped HTML table.
func (rs Rows) HTML() string {
	var b strings.Builder
	b.WriteString("<table>\n<thead><tr>")
	for _, c := range ListingColumns {
		b.WriteString("<th>" + textfmt.EscapeHTML(c) + "</th>")
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, r := range rs {
		b.WriteString("<tr>")
		for _, c := range r.Cells() {
			b.WriteString("<td>" + textfmt.EscapeHTML(c) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return b.String()
}
