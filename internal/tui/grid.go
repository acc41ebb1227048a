package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/reschedule"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

var (
	weekdays   = []string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"}
	monthNames = []string{"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio", "Julio",
		"Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"}

	fetchAge = []humanize.RelTimeMagnitude{
		{D: 5 * time.Second, Format: "recién", DivBy: time.Second},
		{D: time.Minute, Format: "%s %d s", DivBy: time.Second},
		{D: time.Hour, Format: "%s %d min", DivBy: time.Minute},
		{D: humanize.Day, Format: "%s %d h", DivBy: time.Hour},
		{D: math.MaxInt64, Format: "%s %d días", DivBy: humanize.Day},
	}
)

func (a *App) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.grab != nil {
		return a.handleDragKey(msg)
	}
	a.status = ""

	switch {
	case key.Matches(msg, calKeys.Quit):
		return a, tea.Quit
	case key.Matches(msg, calKeys.Left):
		a.moveCursor(-1)
	case key.Matches(msg, calKeys.Right):
		a.moveCursor(1)
	case key.Matches(msg, calKeys.Up):
		a.moveCursor(-7) //nolint:mnd // one week
	case key.Matches(msg, calKeys.Down):
		a.moveCursor(7) //nolint:mnd // one week
	case key.Matches(msg, calKeys.NextEvent):
		a.stepSelection(1)
	case key.Matches(msg, calKeys.PrevEvent):
		a.stepSelection(-1)
	case key.Matches(msg, calKeys.PrevMonth):
		a.cal.PrevMonth()
		a.syncCursor()
	case key.Matches(msg, calKeys.NextMonth):
		a.cal.NextMonth()
		a.syncCursor()
	case key.Matches(msg, calKeys.PrevYear):
		a.cal.PrevYear()
		a.syncCursor()
	case key.Matches(msg, calKeys.NextYear):
		a.cal.NextYear()
		a.syncCursor()
	case key.Matches(msg, calKeys.Today):
		a.cal.Today()
		a.syncCursor()
	case key.Matches(msg, calKeys.Details):
		return a, a.openDetails(a.selectedEvent())
	case key.Matches(msg, calKeys.New):
		a.modal.OpenNew(a.cursor)
		a.enterModal(viewCalendar)
	case key.Matches(msg, calKeys.Grab):
		a.startGrab()
	case key.Matches(msg, calKeys.Search):
		a.search.SetValue(a.query)
		a.search.CursorEnd()
		a.view = viewSearch
		return a, a.search.Focus()
	case key.Matches(msg, calKeys.ClearSearch):
		if a.query != "" {
			a.query = ""
			return a, a.loadCmd()
		}
	case key.Matches(msg, calKeys.Refresh):
		a.err = nil
		return a, a.loadCmd()
	case key.Matches(msg, calKeys.Listing):
		a.listRow = 0
		a.view = viewListing
	default:
		return a.handleFilterKey(msg)
	}
	return a, nil
}

// handleFilterKey toggles the type filter numbered by the key and reloads.
func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return a, nil
	}
	i := int(s[0] - '1')
	if i >= len(a.filters) || !board.Toggle(a.filters, a.filters[i].Value) {
		return a, nil
	}
	return a, a.loadCmd()
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.query = strings.TrimSpace(a.search.Value())
		a.search.Blur()
		a.view = viewCalendar
		a.gotoMatch = a.query != ""
		return a, a.loadCmd()
	case keyEsc:
		a.search.Blur()
		a.view = viewCalendar
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a *App) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, dragKeyMap.Abort):
		a.grab = nil
		a.status = "Movimiento cancelado."
	case key.Matches(msg, dragKeyMap.Drop):
		return a.drop()
	case key.Matches(msg, calKeys.Left):
		a.moveCursor(-1)
	case key.Matches(msg, calKeys.Right):
		a.moveCursor(1)
	case key.Matches(msg, calKeys.Up):
		a.moveCursor(-7) //nolint:mnd // one week
	case key.Matches(msg, calKeys.Down):
		a.moveCursor(7) //nolint:mnd // one week
	case key.Matches(msg, calKeys.PrevMonth):
		a.cal.PrevMonth()
		a.syncCursor()
	case key.Matches(msg, calKeys.NextMonth):
		a.cal.NextMonth()
		a.syncCursor()
	}
	return a, nil
}

func (a *App) startGrab() {
	ev := a.selectedEvent()
	if ev == nil {
		return
	}
	if ev.KindOf() == event.KindHoliday {
		return
	}
	d, err := ev.Date()
	if err != nil {
		a.err = err
		return
	}
	a.err = nil
	a.grab = &grab{
		id:      ev.ID,
		title:   textfmt.Terminal(event.Summary(ev)[0]),
		from:    d,
		absence: ev.IsAbsence(),
	}
}

// drop moves the grabbed event to the cursor day and confirms it in the
// background. Dropping on the original day is a no-op.
func (a *App) drop() (tea.Model, tea.Cmd) {
	g := a.grab
	a.grab = nil
	if g.from.Same(a.cursor) {
		return a, nil
	}
	// Absences carry no id and snap back before any lookup.
	if g.absence {
		a.err = clierr.New(clierr.Validation, reschedule.MsgAbsence)
		return a, nil
	}
	mv, err := a.cal.Move(g.id, a.cursor)
	if err != nil {
		a.err = err
		return a, nil
	}
	ctx, mover := a.ctx, a.mover
	return a, func() tea.Msg {
		return droppedMsg{err: mover.Drop(ctx, mv)}
	}
}

func (a *App) finishDrop(err error) (tea.Model, tea.Cmd) {
	switch {
	case err == nil:
		a.err = nil
		a.status = "✅ Fecha actualizada."
	case clierr.Is(err, clierr.Canceled):
		a.status = "Movimiento revertido."
	default:
		a.err = err
	}
	a.clampSelection()
	return a, a.refetchCmd()
}

// openDetails opens the READ dialog and starts its zone lookup.
func (a *App) openDetails(ev *event.Event) tea.Cmd {
	if ev == nil || ev.KindOf() != event.KindTask {
		return nil
	}
	l := a.modal.OpenRead(ev)
	a.enterModal(viewCalendar)
	return a.zoneCmd(l)
}

func (a *App) moveCursor(days int) {
	a.cursor = a.cursor.AddDays(days)
	if !a.cal.InMonth(a.cursor) {
		a.cal.GotoDate(a.cursor)
		if !a.cal.InMonth(a.cursor) {
			a.cursor = a.cal.Date()
		}
	}
	a.selIdx = 0
}

// syncCursor moves the cursor to the visible date after a jump.
func (a *App) syncCursor() {
	a.cursor = a.cal.Date()
	a.selIdx = 0
}

// dayEvents are the selectable events of a day: absences and tasks.
func (a *App) dayEvents(d date.Date) []*event.Event {
	var out []*event.Event
	for _, e := range a.cal.EventsOn(d.String()) {
		if e.KindOf() != event.KindHoliday {
			out = append(out, e)
		}
	}
	return out
}

func (a *App) holidays(d date.Date) []*event.Event {
	var out []*event.Event
	for _, e := range a.cal.EventsOn(d.String()) {
		if e.KindOf() == event.KindHoliday {
			out = append(out, e)
		}
	}
	return out
}

func (a *App) selectedEvent() *event.Event {
	evs := a.dayEvents(a.cursor)
	if a.selIdx < 0 || a.selIdx >= len(evs) {
		return nil
	}
	return evs[a.selIdx]
}

func (a *App) stepSelection(delta int) {
	n := len(a.dayEvents(a.cursor))
	if n == 0 {
		a.selIdx = 0
		return
	}
	a.selIdx = ((a.selIdx+delta)%n + n) % n
}

func (a *App) clampSelection() {
	n := len(a.dayEvents(a.cursor))
	if a.selIdx >= n {
		a.selIdx = max(n-1, 0)
	}
}

// --- Rendering ---

func (a *App) viewCalendar() string {
	weeks := a.cal.MonthGrid()
	colW := max(a.width/len(weekdays), 8) //nolint:mnd // narrowest usable cell
	cellH := minCellLines
	if len(weeks) > 0 {
		cellH = max((a.height-calendarChrome)/len(weeks)-2, minCellLines) //nolint:mnd // cell borders
	}

	vis := a.cal.Date()
	title := monthTitleStyle.Render(fmt.Sprintf("%s %d", monthNames[vis.Month()-1], vis.Year()))

	heads := make([]string, len(weekdays))
	for i, w := range weekdays {
		heads[i] = weekdayHeaderStyle.Width(colW).Render(w)
	}
	rows := []string{title, lipgloss.JoinHorizontal(lipgloss.Top, heads...)}

	for _, week := range weeks {
		cells := make([]string, len(week))
		for i, d := range week {
			cells[i] = a.renderDay(d, colW, cellH)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if h := a.height - 2; h > 0 { //nolint:mnd // status lines
		grid = fitHeight(grid, h)
	}
	return lipgloss.JoinVertical(lipgloss.Left, grid, a.renderStatusBar())
}

func (a *App) renderDay(d date.Date, colW, h int) string {
	inner := max(colW-2, 4) //nolint:mnd // cell borders
	isCursor := d.Same(a.cursor)

	num := fmt.Sprintf("%2d", d.Day())
	switch {
	case !a.cal.InMonth(d):
		num = outsideDayStyle.Render(num)
	case d.Same(date.FromTime(a.now())):
		num = todayNumberStyle.Render(num)
	}
	head := num
	for _, hol := range a.holidays(d) {
		head += " " + holidayStyle.Render(truncate(textfmt.Terminal(hol.Title), inner-3)) //nolint:mnd // day number
	}
	lines := []string{truncate(head, inner)}

	evs := a.dayEvents(d)
	room := h - 1
	for i, e := range evs {
		if room <= 0 {
			break
		}
		if room == 1 && i < len(evs)-1 {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("+%d más", len(evs)-i)))
			break
		}
		lines = append(lines, a.renderEventLine(e, inner, isCursor && i == a.selIdx))
		room--
	}

	style := dayStyle
	switch {
	case isCursor && a.grab != nil:
		style = dropTargetStyle
	case isCursor:
		style = cursorDayStyle
	}
	return style.Width(inner).Height(h).Render(fitHeight(strings.Join(lines, "\n"), h))
}

func (a *App) renderEventLine(e *event.Event, width int, selected bool) string {
	var text string
	var st lipgloss.Style
	if e.KindOf() == event.KindAbsence {
		text = textfmt.Terminal(e.Title)
		st = absenceStyle
	} else {
		text = textfmt.Terminal(event.Summary(e)[0])
		st = taskStyle(e.TaskLabel())
	}
	if a.grab != nil && e.ID == a.grab.id {
		text = "✥ " + text
		st = grabbedStyle
	}
	text = truncate(text, width)
	if selected && a.view == viewCalendar {
		return selectedStyle.Render(padRight(text, width))
	}
	return st.Render(text)
}

func (a *App) renderStatusBar() string {
	year := a.sess.VisibleYear()
	counter := counterStyle.Render(board.CounterLabel(year, board.EnsayoCount(a.sess.Raw(), year)))

	var filt strings.Builder
	for i, f := range a.filters {
		mark := "[ ]"
		if f.Checked {
			mark = "[x]"
		}
		fmt.Fprintf(&filt, " %d%s%s", i+1, mark, f.Value)
	}

	info := filt.String()
	if a.query != "" {
		info += fmt.Sprintf("  🔍 %q", a.query)
	}
	switch {
	case a.loading:
		info += "  cargando..."
	case !a.fetchedAt.IsZero():
		info += "  actualizado " + humanize.CustomRelTime(a.fetchedAt, a.now(), "hace", "en", fetchAge)
	}
	line1 := counter + statusBarStyle.Render(truncate(info, max(a.width-lipgloss.Width(counter), 4))) //nolint:mnd // min width

	var line2 string
	switch {
	case a.view == viewSearch:
		line2 = a.search.View()
	case a.err != nil:
		line2 = errorStyle.Render(truncate(clierr.Notice(a.err), a.width))
	case a.grab != nil:
		line2 = noticeStyle.Render(truncate(fmt.Sprintf("Moviendo %s: elegí el día  %s",
			a.grab.title, helpLine(dragKeyMap.Drop, dragKeyMap.Abort)), a.width))
	case len(a.alerts) > 0:
		msgs := make([]string, len(a.alerts))
		for i, al := range a.alerts {
			msgs[i] = al.Message
		}
		line2 = errorStyle.Render(truncate("❌ "+strings.Join(msgs, " · "), a.width))
	case a.status != "":
		line2 = noticeStyle.Render(truncate(a.status, a.width))
	default:
		line2 = dimStyle.Render(truncate(helpLine(calKeys.Details, calKeys.New, calKeys.Grab, calKeys.Search,
			calKeys.PrevMonth, calKeys.PrevYear, calKeys.Today, calKeys.Refresh, calKeys.Listing, calKeys.Quit), a.width))
	}
	return line1 + "\n" + line2
}
