package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// listingRows are the ENSAYO rows of the visible year from the raw cache.
func (a *App) listingRows() board.Rows {
	return board.Listing(a.sess.Raw(), a.sess.VisibleYear(), a.listFilter)
}

func (a *App) handleListingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := a.listingRows()
	a.status = ""
	switch {
	case key.Matches(msg, listKeys.Back):
		a.view = viewCalendar
	case key.Matches(msg, listKeys.Ejecutado):
		a.setListFilter(board.ListEjecutado)
	case key.Matches(msg, listKeys.Programado):
		a.setListFilter(board.ListProgramado)
	case key.Matches(msg, listKeys.Suspendido):
		a.setListFilter(board.ListSuspendido)
	case key.Matches(msg, listKeys.Todos):
		a.setListFilter(board.ListTodos)
	case key.Matches(msg, listKeys.Up):
		if a.listRow > 0 {
			a.listRow--
		}
	case key.Matches(msg, listKeys.Down):
		if a.listRow < len(rows)-1 {
			a.listRow++
		}
	case key.Matches(msg, listKeys.Copy):
		if len(rows) > 0 {
			a.copy(rows.TSV())
		}
	case key.Matches(msg, listKeys.Open):
		if a.listRow >= len(rows) {
			return a, nil
		}
		l, err := a.modal.OpenFromCache(rows[a.listRow].ID)
		if err != nil {
			a.err = err
			return a, nil
		}
		a.enterModal(viewListing)
		return a, a.zoneCmd(l)
	}
	return a, nil
}

func (a *App) setListFilter(f board.ListFilter) {
	a.listFilter = f
	a.listRow = 0
}

func (a *App) viewListing() string {
	year := a.sess.VisibleYear()
	rows := a.listingRows()

	var b strings.Builder
	b.WriteString(titleStyle.Render(board.ListingTitle(year, len(rows))) + "\n")

	var tabs []string
	for _, f := range board.ListFilters {
		t := " " + f.Label() + " "
		if f == a.listFilter {
			t = monthTitleStyle.Render(t)
		} else {
			t = weekdayHeaderStyle.Render(t)
		}
		tabs = append(tabs, t)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n")

	if len(rows) == 0 {
		b.WriteString(dimStyle.Render(board.EmptyListing(year, a.listFilter)) + "\n")
	} else {
		cols := board.ListingColumns
		widths := make([]int, len(cols))
		cells := make([][]string, len(rows))
		for i, c := range cols {
			widths[i] = lipgloss.Width(c) + 2 //nolint:mnd // column gap
		}
		for r, row := range rows {
			cells[r] = row.Cells()
			for i, c := range cells[r] {
				c = textfmt.Terminal(c)
				if c == "" {
					c = "-"
				}
				cells[r][i] = c
				widths[i] = max(widths[i], lipgloss.Width(c)+2) //nolint:mnd // column gap
			}
		}

		var head strings.Builder
		for i, c := range cols {
			head.WriteString(padRight(c, widths[i]))
		}
		b.WriteString(labelStyle.Render(truncate(strings.TrimRight(head.String(), " "), a.width)) + "\n")

		visible := max(a.height-8, 1) //nolint:mnd // title, tabs, header and status lines
		start := 0
		if a.listRow >= visible {
			start = a.listRow - visible + 1
		}
		for r := start; r < len(cells) && r < start+visible; r++ {
			var line strings.Builder
			for i, c := range cells[r] {
				line.WriteString(padRight(c, widths[i]))
			}
			text := truncate(strings.TrimRight(line.String(), " "), a.width)
			if r == a.listRow {
				text = selectedStyle.Render(text)
			}
			b.WriteString(text + "\n")
		}
	}

	b.WriteString("\n")
	switch {
	case a.err != nil:
		b.WriteString(errorStyle.Render(truncate(clierr.Notice(a.err), a.width)))
	case a.status != "":
		b.WriteString(noticeStyle.Render(a.status))
	default:
		b.WriteString(dimStyle.Render(helpLine(listKeys.Ejecutado, listKeys.Programado, listKeys.Suspendido,
			listKeys.Todos, listKeys.Open, listKeys.Copy, listKeys.Back)))
	}
	return b.String()
}
