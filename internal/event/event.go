// Package event defines the calendar records served by the backend:
// tasks, absences and holidays, plus the payload used to create and edit
// tasks.
package event

import (
	"slices"
	"strings"

	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// Kind classifies a calendar record.
type Kind string

// Record kinds.
const (
	KindTask    Kind = "tarea"
	KindAbsence Kind = "ausencia"
	KindHoliday Kind = "feriado"
)

// Class names the backend attaches to overlays.
const (
	ClassAbsence = "evento-ausente"
	ClassHoliday = "fc-holiday"

	DisplayBackground = "background"
)

// Event is one calendar record as served by the backend.
type Event struct {
	ID         ID       `json:"id,omitempty"`
	Title      string   `json:"title"`
	Start      string   `json:"start"`
	AllDay     bool     `json:"allDay,omitempty"`
	Display    string   `json:"display,omitempty"`
	Order      string   `json:"order,omitempty"`
	ClassNames []string `json:"classNames,omitempty"`
	Props      Props    `json:"extendedProps"`
	Kind       Kind     `json:"kind,omitempty"`
}

// Props is the extended-properties bag of a task.
type Props struct {
	IDTarea      ID   `json:"id_tarea,omitempty"`
	Fecha        Text `json:"fecha,omitempty"`
	Tarea        Text `json:"tarea,omitempty"`
	Tipo         Text `json:"tipo"`
	UT           Text `json:"ut"`
	Ajuste       Text `json:"ajuste"`
	Lugar        Text `json:"lugar"`
	Marca        Text `json:"marca"`
	Modelo       Text `json:"modelo"`
	Pedido       Text `json:"pedido"`
	Responsable  Text `json:"responsable"`
	Lado         Text `json:"lado"`
	Cuenta       Text `json:"cuenta"`
	TxZona       Flag `json:"tx_zona"`
	RxZona       Flag `json:"rx_zona"`
	TxProtection Flag `json:"tx_protection"`
	RxProtection Flag `json:"rx_protection"`
	Horario      Text `json:"horario"`
	Comentario   Text `json:"comentario"`
	Estado       Text `json:"estado"`
	Zona         Text `json:"zona"`
	Partido      Text `json:"partido"`
	LockedBy     Text `json:"locked_by,omitempty"`
}

// KindOf returns the record kind, deriving it from the class names and
// display mode when the fetcher did not stamp one.
func (e *Event) KindOf() Kind {
	switch {
	case e.Kind != "":
		return e.Kind
	case slices.Contains(e.ClassNames, ClassAbsence):
		return KindAbsence
	case e.Display == DisplayBackground || slices.Contains(e.ClassNames, ClassHoliday):
		return KindHoliday
	default:
		return KindTask
	}
}

// IsAbsence reports whether the record is a non-movable absence.
func (e *Event) IsAbsence() bool { return e.KindOf() == KindAbsence }

// Day returns the first ten characters of Start, the ISO calendar day.
func (e *Event) Day() string {
	if len(e.Start) > len("2006-01-02") {
		return e.Start[:len("2006-01-02")]
	}
	return e.Start
}

// Date parses the record's start day.
func (e *Event) Date() (date.Date, error) {
	return date.Parse(e.Day())
}

// Year returns the year of the start day, or 0 when it does not parse.
func (e *Event) Year() int {
	d, err := e.Date()
	if err != nil {
		return 0
	}
	return d.Year()
}

// TaskLabel is the task kind label, falling back to the stored tarea.
func (e *Event) TaskLabel() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Props.Tarea.String()
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	c := *e
	c.ClassNames = slices.Clone(e.ClassNames)
	return &c
}

// IsEnsayo reports whether the task label contains ENSAYO, ignoring case
// and diacritics.
func IsEnsayo(e *Event) bool {
	return strings.Contains(textfmt.Normalize(e.TaskLabel()), "ENSAYO")
}

// IsExecuted reports whether the status is exactly EJECUTADO, ignoring case
// and diacritics.
func IsExecuted(e *Event) bool {
	return textfmt.Normalize(strings.TrimSpace(e.Props.Estado.String())) == catalog.EstadoEjecutado
}

// CountsAsEnsayo reports whether the record counts toward the yearly
// ENSAYO completion counter.
func CountsAsEnsayo(e *Event) bool {
	return IsEnsayo(e) && IsExecuted(e)
}

// Find returns the event with the given id, or nil.
func Find(events []*Event, id ID) *Event {
	if id == "" {
		return nil
	}
	for _, e := range events {
		if e.ID == id {
			return e
		}
	}
	return nil
}
