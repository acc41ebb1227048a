package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/modal"
	"github.com/telecontrol-mt/calendario/internal/output"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

const (
	maxDialogWidth = 100
	fieldLabelW    = 16
)

// enterModal shows the dialog; closing it returns to from.
func (a *App) enterModal(from view) {
	a.view = viewModal
	a.returnTo = from
	a.fieldIdx = 0
	a.editing = ""
	a.err = nil
	a.focusFirstField()
}

func (a *App) leaveModal() {
	a.modal.Close()
	a.editing = ""
	a.view = a.returnTo
	a.clampSelection()
}

func (a *App) zoneCmd(l *modal.Lookup) tea.Cmd {
	if l == nil {
		return nil
	}
	ctx, m := a.ctx, a.modal
	return func() tea.Msg {
		return zoneMsg{res: m.Resolve(ctx, l)}
	}
}

func (a *App) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.modal.Mode() == modal.Closed {
		a.view = a.returnTo
		return a, nil
	}
	if a.editing != "" {
		return a.handleInputKey(msg)
	}
	if a.modal.View().Busy {
		return a, nil
	}
	switch a.modal.Mode() {
	case modal.Read:
		return a.handleReadKey(msg)
	case modal.Edit, modal.Duplicate:
		return a.handleFormKey(msg)
	case modal.Closed:
	}
	return a, nil
}

func (a *App) handleReadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, modalKeyMap.Close):
		a.leaveModal()
	case key.Matches(msg, modalKeyMap.Edit):
		if err := a.modal.Edit(); err != nil {
			a.err = err
		}
		a.fieldIdx = 0
		a.focusFirstField()
	case key.Matches(msg, modalKeyMap.Duplicate):
		if err := a.modal.OpenDuplicate(nil); err != nil {
			a.err = err
		}
		a.fieldIdx = 0
	case key.Matches(msg, modalKeyMap.CopyUT):
		a.copyField(modal.KeyUT)
	case key.Matches(msg, modalKeyMap.CopyAjuste):
		a.copyField(modal.KeyAjuste)
	case key.Matches(msg, modalKeyMap.Cromo):
		return a, a.cromoCmd()
	}
	return a, nil
}

func (a *App) copyField(k string) {
	v, ok := a.modal.CopyValue(k)
	if !ok {
		return
	}
	a.copy(v)
}

func (a *App) cromoCmd() tea.Cmd {
	lado, ok := a.modal.Lado()
	if !ok {
		a.err = clierr.New(clierr.Validation, modal.MsgCromoNoLado)
		return nil
	}
	ctx, f := a.ctx, a.cromo
	return func() tea.Msg {
		v, err := modal.LoadCromo(ctx, f, lado)
		return cromoMsg{view: v, err: err}
	}
}

func (a *App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := a.modal.View().Fields
	switch {
	case key.Matches(msg, modalKeyMap.Close):
		if a.modal.Mode() == modal.Duplicate {
			a.leaveModal()
			return a, nil
		}
		l := a.modal.Cancel()
		if a.modal.Mode() == modal.Closed {
			a.view = a.returnTo
		}
		return a, a.zoneCmd(l)
	case key.Matches(msg, modalKeyMap.Save):
		return a.submit()
	case key.Matches(msg, modalKeyMap.Next):
		a.stepField(fields, 1)
	case key.Matches(msg, modalKeyMap.Prev):
		a.stepField(fields, -1)
	case key.Matches(msg, modalKeyMap.CycleNext):
		a.cycleField(fields, 1)
	case key.Matches(msg, modalKeyMap.CyclePrev):
		a.cycleField(fields, -1)
	case key.Matches(msg, modalKeyMap.Input):
		return a, a.startInput(fields)
	}
	return a, nil
}

func focusable(f modal.Field) bool {
	return f.Editable && !f.Disabled && !f.Hidden
}

func (a *App) focusFirstField() {
	fields := a.modal.View().Fields
	for i, f := range fields {
		if focusable(f) {
			a.fieldIdx = i
			return
		}
	}
}

func (a *App) stepField(fields []modal.Field, delta int) {
	n := len(fields)
	for i := 1; i <= n; i++ {
		j := ((a.fieldIdx+delta*i)%n + n) % n
		if focusable(fields[j]) {
			a.fieldIdx = j
			return
		}
	}
}

func (a *App) focusedField(fields []modal.Field) (modal.Field, bool) {
	if a.fieldIdx < 0 || a.fieldIdx >= len(fields) || !focusable(fields[a.fieldIdx]) {
		return modal.Field{}, false
	}
	return fields[a.fieldIdx], true
}

func (a *App) cycleField(fields []modal.Field, delta int) {
	f, ok := a.focusedField(fields)
	if !ok || (f.Kind != modal.FieldSelect && f.Kind != modal.FieldBool) {
		return
	}
	a.setErr(a.modal.Cycle(f.Key, delta))
}

// startInput opens the inline editor for the focused field. Selects and
// toggles advance instead.
func (a *App) startInput(fields []modal.Field) tea.Cmd {
	f, ok := a.focusedField(fields)
	if !ok {
		return nil
	}
	switch f.Kind {
	case modal.FieldSelect, modal.FieldBool:
		a.setErr(a.modal.Cycle(f.Key, 1))
		return nil
	case modal.FieldMultiline:
		a.editing = f.Key
		a.area.SetValue(f.Value)
		return a.area.Focus()
	case modal.FieldText, modal.FieldDate, modal.FieldTime:
	}
	a.editing = f.Key
	a.input.SetValue(f.Value)
	a.input.CursorEnd()
	return a.input.Focus()
}

// handleInputKey drives the inline editor. Single-line fields commit on
// enter; the comment commits on ctrl+s. Escape discards.
func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	multiline := a.area.Focused()
	switch msg.String() {
	case keyEsc:
		a.stopInput()
		return a, nil
	case "enter":
		if !multiline {
			a.setErr(a.modal.Set(a.editing, a.input.Value()))
			a.stopInput()
			return a, nil
		}
	case "ctrl+s":
		if multiline {
			a.setErr(a.modal.Set(a.editing, a.area.Value()))
			a.stopInput()
			return a, nil
		}
	}
	var cmd tea.Cmd
	if multiline {
		a.area, cmd = a.area.Update(msg)
	} else {
		a.input, cmd = a.input.Update(msg)
	}
	return a, cmd
}

func (a *App) stopInput() {
	a.editing = ""
	a.input.Blur()
	a.area.Blur()
}

func (a *App) setErr(err error) {
	a.err = err
}

// submit collects the form and runs the password and network phases in
// the background.
func (a *App) submit() (tea.Model, tea.Cmd) {
	var (
		sub *modal.Submission
		err error
	)
	if a.modal.Mode() == modal.Duplicate {
		sub, err = a.modal.BeginDuplicate()
	} else {
		sub, err = a.modal.BeginSave()
	}
	if err != nil {
		if a.modal.Notice() == "" {
			a.err = err
		}
		return a, nil
	}
	a.err = nil
	ctx, m := a.ctx, a.modal
	return a, func() tea.Msg {
		return savedMsg{out: m.Submit(ctx, sub)}
	}
}

func (a *App) finishSubmit(out modal.Outcome) (tea.Model, tea.Cmd) {
	err := a.modal.Finish(out)
	if a.view == viewModal && a.modal.Mode() == modal.Closed {
		a.view = a.returnTo
		a.editing = ""
		if err == nil {
			a.status = "✅ Guardado."
		}
	}
	a.clampSelection()
	return a, a.refetchCmd()
}

// --- Rendering ---

func (a *App) dialogWidth() int {
	return min(max(a.width-4, 40), maxDialogWidth) //nolint:mnd // screen margin, narrowest dialog
}

func (a *App) viewModal() string {
	v := a.modal.View()
	w := a.dialogWidth()
	inner := w - 2*dialogPadX - 2 //nolint:mnd // borders

	var b strings.Builder
	head := titleStyle.Render(v.Title)
	for _, bg := range v.Badges {
		head += " " + badgeStyle(bg.Kind).Render(bg.Text)
	}
	b.WriteString(head + "\n\n")

	var comment string
	for i, f := range v.Fields {
		if f.Hidden {
			continue
		}
		if v.Mode == modal.Read && f.Key == modal.KeyComentario {
			comment = f.Value
			continue
		}
		b.WriteString(a.renderField(f, i, v.Mode, inner) + "\n")
		if a.editing == f.Key {
			if f.Kind == modal.FieldMultiline {
				b.WriteString(a.area.View() + "\n")
			} else {
				b.WriteString(strings.Repeat(" ", fieldLabelW+2) + a.input.View() + "\n") //nolint:mnd // cursor column
			}
		}
	}
	if v.Mode == modal.Read {
		b.WriteString("\n" + labelStyle.Render("Comentarios:") + "\n")
		if comment == "" || comment == textfmt.Placeholder {
			b.WriteString(dimStyle.Render(textfmt.Placeholder) + "\n")
		} else {
			b.WriteString(output.Markdown(comment, inner) + "\n")
		}
	}
	if v.Note != "" {
		b.WriteString("\n" + dimStyle.Render(lipgloss.NewStyle().Width(inner).Render(v.Note)) + "\n")
	}
	if v.Notice != "" {
		b.WriteString("\n" + errorStyle.Render(v.Notice) + "\n")
	}
	if v.Busy {
		b.WriteString("\n" + noticeStyle.Render("Guardando...") + "\n")
	}
	b.WriteString("\n" + dimStyle.Render(a.modalHelp(v)))

	dialog := dialogStyle.Width(w - 2).Render(b.String()) //nolint:mnd // border width
	var status string
	if a.err != nil {
		status = errorStyle.Render(truncate(clierr.Notice(a.err), a.width))
	} else if a.status != "" {
		status = noticeStyle.Render(truncate(a.status, a.width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, dialog, status)
}

func (a *App) renderField(f modal.Field, idx int, mode modal.Mode, width int) string {
	label := labelStyle.Render(padRight(f.Label+":", fieldLabelW))
	value := f.Value
	switch {
	case f.Kind == modal.FieldSelect || f.Kind == modal.FieldBool:
		if mode != modal.Read {
			value = "‹ " + value + " ›"
		}
	case f.Kind == modal.FieldMultiline && mode != modal.Read:
		value = strings.ReplaceAll(value, "\n", " ⏎ ")
	}
	value = truncate(textfmt.Terminal(value), max(width-fieldLabelW-4, 8)) //nolint:mnd // marker and margin
	switch {
	case f.Disabled:
		value = dimStyle.Render(value)
	case f.Mono:
		value = monoStyle.Render(value)
	}
	if f.Copyable {
		value += dimStyle.Render(" ⧉")
	}
	if f.Action == modal.ActionCromo {
		value += dimStyle.Render("  [x] CROMO")
	}

	marker := "  "
	if mode != modal.Read && idx == a.fieldIdx && a.editing == "" {
		marker = focusStyle.Render("› ")
		label = focusStyle.Render(padRight(f.Label+":", fieldLabelW))
	}
	return marker + label + value
}

func (a *App) modalHelp(v modal.View) string {
	if a.editing != "" {
		if a.area.Focused() {
			return "ctrl+s:aplicar  esc:descartar"
		}
		return "enter:aplicar  esc:descartar"
	}
	switch v.Mode {
	case modal.Read:
		return helpLine(modalKeyMap.Edit, modalKeyMap.Duplicate, modalKeyMap.CopyUT,
			modalKeyMap.CopyAjuste, modalKeyMap.Cromo, modalKeyMap.Close)
	case modal.Edit, modal.Duplicate:
		return helpLine(modalKeyMap.Next, modalKeyMap.CycleNext, modalKeyMap.Input,
			modalKeyMap.Save, modalKeyMap.Close)
	case modal.Closed:
	}
	return ""
}
