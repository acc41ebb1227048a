package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

const taskJSON = `{
  "id": 42,
  "title": "ENSAYO",
  "start": "2024-03-01",
  "allDay": true,
  "order": "000",
  "classNames": ["evento-ensayo"],
  "extendedProps": {
    "id_tarea": 42, "fecha": "2024-03-01 00:00:00", "tarea": "ENSAYO",
    "tipo": "RECONECTADOR", "ut": 12345, "ajuste": "AJ-7", "lugar": "CDSJ",
    "marca": "ABB", "modelo": "OVR3", "pedido": null, "responsable": "Gómez",
    "lado": "L-1", "cuenta": "C9", "tx_zona": 1, "rx_zona": 0,
    "tx_protection": "Sí", "rx_protection": null,
    "horario": "9:00-17:00", "comentario": "", "estado": "EJECUTADO",
    "locked_by": null
  }
}`

func decodeTask(t *testing.T) *Event {
	t.Helper()
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(taskJSON), &ev))
	return &ev
}

func TestDecodeBackendRow(t *testing.T) {
	ev := decodeTask(t)

	assert.Equal(t, ID("42"), ev.ID)
	assert.Equal(t, Text("12345"), ev.Props.UT)
	assert.Equal(t, Text(""), ev.Props.Pedido)
	assert.True(t, bool(ev.Props.TxZona))
	assert.False(t, bool(ev.Props.RxZona))
	assert.True(t, bool(ev.Props.TxProtection))
	assert.False(t, bool(ev.Props.RxProtection))
	assert.Equal(t, KindTask, ev.KindOf())
	assert.Equal(t, 2024, ev.Year())
}

func TestIDMarshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
		D ID `json:"d,omitempty"`
	}{A: "17", B: "x-1", C: ""})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":17,"b":"x-1","c":null}`, string(b))
}

func TestKindOf(t *testing.T) {
	abs := &Event{Title: "Ausente: Pérez", ClassNames: []string{ClassAbsence}}
	hol := &Event{Title: "Navidad", Display: DisplayBackground}
	assert.Equal(t, KindAbsence, abs.KindOf())
	assert.True(t, abs.IsAbsence())
	assert.Equal(t, KindHoliday, hol.KindOf())

	stamped := &Event{Kind: KindAbsence}
	assert.Equal(t, KindAbsence, stamped.KindOf())
}

func TestCounterEligibility(t *testing.T) {
	ev := decodeTask(t)
	assert.True(t, CountsAsEnsayo(ev))

	ev.Title = "Ensayo de función"
	ev.Props.Estado = "ejecutado"
	assert.True(t, CountsAsEnsayo(ev))

	ev.Props.Estado = "PROGRAMADO"
	assert.False(t, CountsAsEnsayo(ev))

	ev.Title = "AJUSTE"
	ev.Props.Estado = "EJECUTADO"
	assert.False(t, CountsAsEnsayo(ev))
}

func TestBadges(t *testing.T) {
	assert.Equal(t, BadgeSuccess, TaskBadge("ensayo"))
	assert.Equal(t, BadgeInfo, TaskBadge("AJUSTE"))
	assert.Equal(t, BadgeWarn, TaskBadge("EVENTOS"))
	assert.Equal(t, BadgeNeutral, TaskBadge("FUNCIÓN"))
	assert.Equal(t, BadgeDanger, StatusBadge("SUSPENDIDO"))
	assert.Equal(t, BadgeNeutral, StatusBadge("REPROGRAMADO"))
	assert.Equal(t, "evento-funcionalidad", Class("Función"))
}

func TestSummary(t *testing.T) {
	ev := decodeTask(t)
	assert.Equal(t, []string{"✅ ENSAYO - 12345", "ABB - OVR3", "⏰ 9:00-17:00"}, Summary(ev))

	ev.Props.Horario = Text(textfmt.NoSchedule)
	ev.Props.Marca = ""
	ev.Props.Estado = ""
	assert.Equal(t, []string{"ENSAYO - 12345", "OVR3"}, Summary(ev))

	abs := &Event{Title: "Ausente: Pérez", ClassNames: []string{ClassAbsence}}
	assert.Equal(t, []string{"Ausente: Pérez"}, Summary(abs))
}

func TestPayloadFromEvent(t *testing.T) {
	ev := decodeTask(t)
	ev.Props.Horario = ""
	p := PayloadFromEvent(ev)

	assert.Equal(t, "2024-03-01", p.Fecha)
	assert.Equal(t, "12345", p.UT)
	assert.Equal(t, textfmt.NoSchedule, p.Horario)
	assert.True(t, p.TxZona)
	assert.False(t, p.IsEdit())

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "id_tarea")
}

func TestPayloadSet(t *testing.T) {
	var p Payload
	require.NoError(t, p.Set("UT", " 77 "))
	require.NoError(t, p.Set("rx_zona", "sí"))
	assert.Equal(t, "77", p.UT)
	assert.True(t, p.RxZona)

	err := p.Set("zona", "1CA")
	assert.True(t, clierr.Is(err, clierr.InvalidInput))

	k, v, err := ParseAssignment("estado=EJECUTADO")
	require.NoError(t, err)
	assert.Equal(t, "estado", k)
	assert.Equal(t, "EJECUTADO", v)

	_, _, err = ParseAssignment("estado")
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	a := &Event{ID: "1"}
	b := &Event{ID: "2"}
	assert.Same(t, b, Find([]*Event{a, b}, "2"))
	assert.Nil(t, Find([]*Event{a, b}, "3"))
	assert.Nil(t, Find([]*Event{{}}, ""))
}
