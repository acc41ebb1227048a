package tui

import "github.com/charmbracelet/bubbles/key"

type calendarKeys struct {
	Left, Right, Up, Down key.Binding
	NextEvent, PrevEvent  key.Binding
	PrevMonth, NextMonth  key.Binding
	PrevYear, NextYear    key.Binding
	Today                 key.Binding
	Details               key.Binding
	New                   key.Binding
	Grab                  key.Binding
	Search                key.Binding
	ClearSearch           key.Binding
	Refresh               key.Binding
	Listing               key.Binding
	Quit                  key.Binding
}

var calKeys = calendarKeys{
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "día")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "día")),
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "semana")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "semana")),
	NextEvent:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "evento")),
	PrevEvent:   key.NewBinding(key.WithKeys("shift+tab")),
	PrevMonth:   key.NewBinding(key.WithKeys("["), key.WithHelp("[ ]", "mes")),
	NextMonth:   key.NewBinding(key.WithKeys("]")),
	PrevYear:    key.NewBinding(key.WithKeys("{"), key.WithHelp("{ }", "año")),
	NextYear:    key.NewBinding(key.WithKeys("}")),
	Today:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "hoy")),
	Details:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detalles")),
	New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nueva")),
	Grab:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mover")),
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar")),
	ClearSearch: key.NewBinding(key.WithKeys("backspace")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recargar")),
	Listing:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "ensayos")),
	Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "salir")),
}

type dragKeys struct {
	Drop, Abort key.Binding
}

var dragKeyMap = dragKeys{
	Drop:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "soltar")),
	Abort: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
}

type modalKeys struct {
	Edit, Duplicate, CopyUT, CopyAjuste, Cromo key.Binding
	Close, Save                                key.Binding
	Next, Prev, CycleNext, CyclePrev, Input    key.Binding
}

var modalKeyMap = modalKeys{
	Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editar")),
	Duplicate:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "duplicar")),
	CopyUT:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "copiar UT")),
	CopyAjuste: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "copiar ajuste")),
	Cromo:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "CROMO")),
	Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cerrar")),
	Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "guardar")),
	Next:       key.NewBinding(key.WithKeys("down", "tab"), key.WithHelp("↓/tab", "campo")),
	Prev:       key.NewBinding(key.WithKeys("up", "shift+tab")),
	CycleNext:  key.NewBinding(key.WithKeys("right"), key.WithHelp("←/→", "opción")),
	CyclePrev:  key.NewBinding(key.WithKeys("left")),
	Input:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "escribir")),
}

type listingKeys struct {
	Ejecutado, Programado, Suspendido, Todos key.Binding
	Up, Down, Open, Copy, Back               key.Binding
}

var listKeys = listingKeys{
	Ejecutado:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "ejecutados")),
	Programado: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "programados")),
	Suspendido: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "suspendidos")),
	Todos:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "todos")),
	Up:         key.NewBinding(key.WithKeys("up", "k")),
	Down:       key.NewBinding(key.WithKeys("down", "j")),
	Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detalle")),
	Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copiar")),
	Back:       key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "volver")),
}

// helpLine renders the help text of the given bindings.
func helpLine(bindings ...key.Binding) string {
	var out string
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if out != "" {
			out += "  "
		}
		out += h.Key + ":" + h.Desc
	}
	return out
}
