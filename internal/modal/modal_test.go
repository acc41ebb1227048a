package modal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecontrol-mt/calendario/internal/api"
	"github.com/telecontrol-mt/calendario/internal/calendar"
	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/session"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

type fakeBackend struct {
	mu      sync.Mutex
	created []event.Payload
	edited  []event.Payload
	res     api.Result
	err     error
	loc     *api.Location
	locErr  error
	lookups int
	cromo   []api.CromoItem
	cromoEr error
}

func (f *fakeBackend) CreateTask(_ context.Context, p event.Payload) (api.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	return f.res, f.err
}

func (f *fakeBackend) EditTask(_ context.Context, p event.Payload) (api.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, p)
	return f.res, f.err
}

func (f *fakeBackend) LookupLocation(_ context.Context, _, _ string) (*api.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.loc, f.locErr
}

func (f *fakeBackend) Cromo(_ context.Context, _ string) ([]api.CromoItem, error) {
	return f.cromo, f.cromoEr
}

type harness struct {
	cal     *calendar.Model
	backend *fakeBackend
	modal   *Modal
	prompts []string
}

// newHarness answers every password prompt with answer, or cancels it.
func newHarness(t *testing.T, answer string, cancel bool) *harness {
	t.Helper()
	h := &harness{backend: &fakeBackend{res: api.Result{Success: true}}}
	today := func() date.Date { return date.New(2024, time.March, 1) }
	h.cal = calendar.New(calendar.WithToday(today))

	var g *gate.Gate
	g = gate.New(gate.WithNotify(func(p gate.Prompt) {
		h.prompts = append(h.prompts, p.Message)
		go func() {
			if cancel {
				g.Cancel()
				return
			}
			g.Confirm(answer)
		}()
	}))
	h.modal = New(session.New(h.cal, g), h.backend, WithToday(today))
	return h
}

func sampleTask() *event.Event {
	return &event.Event{
		ID:    "42",
		Title: "ENSAYO",
		Start: "2024-03-05",
		Props: event.Props{
			Tipo:       "INTERRUPTOR",
			UT:         "U100",
			Marca:      "SCHNEIDER",
			Modelo:     "MiCOM P116",
			Lugar:      "CDSJ",
			Lado:       "L-7",
			Ajuste:     "I>=200A",
			TxZona:     true,
			Horario:    "8:00-12:30",
			Estado:     "PROGRAMADO",
			Zona:       "NORTE",
			Partido:    "PILAR",
			Comentario: "revisar **relé**",
		},
	}
}

func fieldByKey(t *testing.T, fields []Field, key string) Field {
	t.Helper()
	for _, f := range fields {
		if f.Key == key {
			return f
		}
	}
	t.Fatalf("field %q not found", key)
	return Field{}
}

func TestReadIsIdempotent(t *testing.T) {
	h := newHarness(t, "x", false)
	ev := sampleTask()

	h.modal.OpenRead(ev)
	first := h.modal.View()
	h.modal.OpenRead(ev)
	second := h.modal.View()

	assert.Equal(t, first, second)
	assert.Equal(t, Read, second.Mode)
}

func TestReadFields(t *testing.T) {
	h := newHarness(t, "x", false)
	ev := sampleTask()
	ev.Props.Horario = ""
	ev.Props.Pedido = "   "
	ev.Props.Tipo = "otro"

	require.Nil(t, h.modal.OpenRead(ev))
	v := h.modal.View()

	assert.Equal(t, "Detalles", v.Title)
	assert.Equal(t, textfmt.NoSchedule, fieldByKey(t, v.Fields, KeyHorario).Value)
	assert.Equal(t, textfmt.Placeholder, fieldByKey(t, v.Fields, KeyPedido).Value)
	assert.Equal(t, "Sí", fieldByKey(t, v.Fields, KeyTxZona).Value)
	assert.Equal(t, "No", fieldByKey(t, v.Fields, KeyRxZona).Value)
	assert.Equal(t, "NORTE", fieldByKey(t, v.Fields, KeyZona).Value)

	ut := fieldByKey(t, v.Fields, KeyUT)
	assert.True(t, ut.Copyable)
	aj := fieldByKey(t, v.Fields, KeyAjuste)
	assert.True(t, aj.Copyable)
	assert.True(t, aj.Mono)
	assert.Equal(t, ActionCromo, fieldByKey(t, v.Fields, KeyLado).Action)

	require.Len(t, v.Badges, 3)
	assert.Equal(t, BadgeView{Text: "OTRO", Kind: event.BadgeOutline}, v.Badges[0])
	assert.Equal(t, "ENSAYO", v.Badges[1].Text)
	assert.Equal(t, event.BadgeSuccess, v.Badges[1].Kind)
}

func TestReadSanitizesValues(t *testing.T) {
	h := newHarness(t, "x", false)
	ev := sampleTask()
	ev.Props.Responsable = "Ana\x1b[31m roja\x07"
	ev.Props.Lado = "-"

	h.modal.OpenRead(ev)
	v := h.modal.View()
	assert.Equal(t, "Ana roja", fieldByKey(t, v.Fields, KeyResponsable).Value)
	assert.Empty(t, fieldByKey(t, v.Fields, KeyLado).Action)

	_, ok := h.modal.Lado()
	assert.False(t, ok)
}

func TestBackgroundEventsOpenNothing(t *testing.T) {
	h := newHarness(t, "x", false)
	h.modal.OpenRead(&event.Event{ID: "f", Kind: event.KindHoliday})
	h.modal.OpenRead(&event.Event{ID: "a", ClassNames: []string{event.ClassAbsence}})
	assert.Equal(t, Closed, h.modal.Mode())
}

func TestCopyValue(t *testing.T) {
	h := newHarness(t, "x", false)
	h.modal.OpenRead(sampleTask())

	v, ok := h.modal.CopyValue(KeyUT)
	assert.True(t, ok)
	assert.Equal(t, "U100", v)
	v, ok = h.modal.CopyValue(KeyAjuste)
	assert.True(t, ok)
	assert.Equal(t, "I>=200A", v)
	_, ok = h.modal.CopyValue(KeyLado)
	assert.False(t, ok)
}

func TestEditFormStartsFromRecord(t *testing.T) {
	h := newHarness(t, "x", false)
	h.modal.OpenEdit(sampleTask())
	v := h.modal.View()

	assert.Equal(t, Edit, v.Mode)
	assert.Equal(t, "SCHNEIDER", fieldByKey(t, v.Fields, KeyMarca).Value)
	assert.Equal(t, "MiCOM P116", fieldByKey(t, v.Fields, KeyModelo).Value)
	assert.Equal(t, "08:00", fieldByKey(t, v.Fields, KeyHorarioStart).Value)
	assert.Equal(t, "12:30", fieldByKey(t, v.Fields, KeyHorarioEnd).Value)
	assert.Equal(t, "Sí", fieldByKey(t, v.Fields, KeyObrador).Value)

	lugar := fieldByKey(t, v.Fields, KeyLugar)
	assert.Equal(t, FieldSelect, lugar.Kind)
	assert.Equal(t, "CDSJ", lugar.Value)
	assert.Equal(t, catalog.Obradores, lugar.Options)
}

func TestObradorNeedsExactMatch(t *testing.T) {
	h := newHarness(t, "x", false)
	ev := sampleTask()
	ev.Props.Lugar = "cdsj norte"
	h.modal.OpenEdit(ev)
	v := h.modal.View()

	assert.Equal(t, "No", fieldByKey(t, v.Fields, KeyObrador).Value)
	lugar := fieldByKey(t, v.Fields, KeyLugar)
	assert.Equal(t, FieldText, lugar.Kind)
	assert.Equal(t, "cdsj norte", lugar.Value)
}

func TestCascade(t *testing.T) {
	h := newHarness(t, "x", false)
	h.modal.OpenEdit(sampleTask())
	value := func(key string) string { return fieldByKey(t, h.modal.View().Fields, key).Value }

	require.NoError(t, h.modal.Set(KeyTipo, "seccionalizador"))
	assert.Equal(t, "SCHNEIDER", value(KeyMarca), "stored brand is kept when offered")
	assert.Equal(t, "T200P", value(KeyModelo))

	require.NoError(t, h.modal.Set(KeyTipo, "RECONECTADOR"))
	assert.Equal(t, "ABB", value(KeyMarca))
	assert.Equal(t, "OVR3", value(KeyModelo))

	require.NoError(t, h.modal.Set(KeyMarca, "ENTEC"))
	assert.Equal(t, "RECONECTADOR", value(KeyTipo), "brand never cascades upward")
	assert.Equal(t, "ETR300-R-600", value(KeyModelo))

	require.NoError(t, h.modal.Set(KeyTipo, "SBC"))
	assert.Equal(t, catalog.Brands(catalog.TypeSeccionalizador),
		fieldByKey(t, h.modal.View().Fields, KeyMarca).Options)

	err := h.modal.Set(KeyMarca, "NOPE")
	assert.True(t, clierr.Is(err, clierr.InvalidInput))
}

func TestCycleWraps(t *testing.T) {
	h := newHarness(t, "x", false)
	h.modal.OpenEdit(sampleTask())

	require.NoError(t, h.modal.Cycle(KeyEstado, -1))
	assert.Equal(t, catalog.EstadoSuspendido, fieldByKey(t, h.modal.View().Fields, KeyEstado).Value)
	require.NoError(t, h.modal.Cycle(KeyRxZona, 1))
	assert.Equal(t, "Sí", fieldByKey(t, h.modal.View().Fields, KeyRxZona).Value)
}

func TestScheduleToggleDisablesTimes(t *testing.T) {
	h := newHarness(t, "x", false)
	h.modal.OpenEdit(sampleTask())
	require.NoError(t, h.modal.Set(KeyHorarioNone, "sí"))

	v := h.modal.View()
	assert.True(t, fieldByKey(t, v.Fields, KeyHorarioStart).Disabled)
	assert.True(t, fieldByKey(t, v.Fields, KeyHorarioEnd).Disabled)

	err := h.modal.Set(KeyHorarioStart, "25:00")
	assert.True(t, clierr.Is(err, clierr.InvalidInput))
}

func TestSaveEditCarriesIdentityAndZone(t *testing.T) {
	h := newHarness(t, "clave", false)
	h.modal.OpenEdit(sampleTask())

	require.NoError(t, h.modal.Set(KeyRxProtection, "X"))
	require.NoError(t, h.modal.Set(KeyObrador, "no"))
	require.NoError(t, h.modal.Set(KeyLugar, "  Playa Norte "))
	require.Error(t, h.modal.Set(KeyHorarioStart, "9:5"))
	require.NoError(t, h.modal.Set(KeyHorarioStart, "9:05"))
	require.NoError(t, h.modal.Set(KeyEstado, "ejecutado"))

	require.NoError(t, h.modal.Save(context.Background()))

	require.Len(t, h.backend.edited, 1)
	assert.Empty(t, h.backend.created)
	p := h.backend.edited[0]
	assert.Equal(t, event.ID("42"), p.IDTarea)
	assert.Equal(t, "NORTE", p.Zona)
	assert.Equal(t, "PILAR", p.Partido)
	assert.Equal(t, "clave", p.Clave)
	assert.True(t, p.TxZona)
	assert.True(t, p.RxProtection)
	assert.False(t, p.RxZona)
	assert.Equal(t, "Playa Norte", p.Lugar)
	assert.Equal(t, "09:05-12:30", p.Horario)
	assert.Equal(t, "EJECUTADO", p.Estado)
	assert.Equal(t, []string{PromptSave}, h.prompts)

	assert.Equal(t, Closed, h.modal.Mode())
	assert.True(t, h.cal.TakeRefetch())
}

func TestSaveNewRecordCreates(t *testing.T) {
	h := newHarness(t, "clave", false)
	h.modal.OpenNew(date.New(2024, time.May, 2))
	require.NoError(t, h.modal.Set(KeyUT, "U9"))
	require.NoError(t, h.modal.Set(KeyHorarioNone, "true"))

	require.NoError(t, h.modal.Save(context.Background()))

	require.Len(t, h.backend.created, 1)
	p := h.backend.created[0]
	assert.Empty(t, p.IDTarea)
	assert.Empty(t, p.Zona)
	assert.Empty(t, p.Partido)
	assert.Equal(t, "2024-05-02", p.Fecha)
	assert.Equal(t, "ENSAYO", p.Tarea)
	assert.Equal(t, textfmt.NoSchedule, p.Horario)
	assert.Equal(t, []string{PromptCreate}, h.prompts)
}

func TestSaveCanceledAtGateIssuesNoRequest(t *testing.T) {
	h := newHarness(t, "", true)
	h.modal.OpenEdit(sampleTask())

	err := h.modal.Save(context.Background())
	assert.True(t, clierr.Is(err, clierr.Canceled))
	assert.Empty(t, h.backend.edited)
	assert.Equal(t, Edit, h.modal.Mode())
	assert.Empty(t, h.modal.Notice())
	assert.False(t, h.cal.TakeRefetch())
}

func TestSaveFailureKeepsFormOpen(t *testing.T) {
	h := newHarness(t, "clave", false)
	h.backend.res = api.Result{Message: "Contraseña incorrecta."}
	h.modal.OpenEdit(sampleTask())

	err := h.modal.Save(context.Background())
	assert.True(t, clierr.Is(err, clierr.ServerRejected))
	assert.Equal(t, Edit, h.modal.Mode())
	assert.Equal(t, "❌ Contraseña incorrecta.", h.modal.Notice())

	h.backend.res = api.Result{}
	require.Error(t, h.modal.Save(context.Background()))
	assert.Equal(t, "❌ "+MsgSaveFallback, h.modal.Notice())

	h.backend.err = errors.New("dial tcp: refused")
	require.Error(t, h.modal.Save(context.Background()))
	assert.Equal(t, "❌ "+MsgSaveNetwork, h.modal.Notice())
	assert.False(t, h.cal.TakeRefetch())
}

func TestSaveBusyRejectsSecondSubmission(t *testing.T) {
	h := newHarness(t, "clave", false)
	h.modal.OpenEdit(sampleTask())

	sub, err := h.modal.BeginSave()
	require.NoError(t, err)
	_, err = h.modal.BeginSave()
	assert.True(t, clierr.Is(err, clierr.Validation))
	assert.True(t, h.modal.View().Busy)

	require.NoError(t, h.modal.Finish(h.modal.Submit(context.Background(), sub)))
}

func TestStaleOutcomeIsIgnored(t *testing.T) {
	h := newHarness(t, "clave", false)
	h.modal.OpenEdit(sampleTask())
	sub, err := h.modal.BeginSave()
	require.NoError(t, err)

	other := sampleTask()
	other.ID = "43"
	h.modal.OpenRead(other)

	require.NoError(t, h.modal.Finish(h.modal.Submit(context.Background(), sub)))
	assert.Equal(t, Read, h.modal.Mode())
	assert.Equal(t, event.ID("43"), h.modal.Event().ID)
}

func TestCancelReloadsStoredRecord(t *testing.T) {
	h := newHarness(t, "x", false)
	ev := sampleTask()
	h.modal.OpenRead(ev)
	require.NoError(t, h.modal.Edit())
	require.NoError(t, h.modal.Set(KeyUT, "CAMBIADO"))

	h.modal.Cancel()
	assert.Equal(t, Read, h.modal.Mode())
	assert.Equal(t, "U100", fieldByKey(t, h.modal.View().Fields, KeyUT).Value)

	require.NoError(t, h.modal.Edit())
	assert.Equal(t, "U100", fieldByKey(t, h.modal.View().Fields, KeyUT).Value)
}

func TestSetOutsideEditFails(t *testing.T) {
	h := newHarness(t, "x", false)
	h.modal.OpenRead(sampleTask())
	assert.True(t, clierr.Is(h.modal.Set(KeyUT, "x"), clierr.Validation))
}

func TestDuplicateCopiesEveryField(t *testing.T) {
	h := newHarness(t, "clave", false)
	src := &event.Event{
		ID:    "7",
		Title: "ENSAYO",
		Start: "2024-03-05",
		Props: event.Props{UT: "X1", Tipo: "INTERRUPTOR", Horario: "", Estado: "EJECUTADO", Zona: "Z", Partido: "P"},
	}

	require.NoError(t, h.modal.OpenDuplicate(src))
	v := h.modal.View()
	assert.Equal(t, "📄 Duplicar tarea", v.Title)
	assert.Equal(t, "2024-03-05", fieldByKey(t, v.Fields, KeyDupFecha).Value)
	assert.Equal(t, catalog.EstadoProgramado, fieldByKey(t, v.Fields, KeyDupEstado).Value)

	require.NoError(t, h.modal.Set(KeyDupFecha, "2024-03-20"))
	require.NoError(t, h.modal.Duplicate(context.Background()))

	require.Len(t, h.backend.created, 1)
	p := h.backend.created[0]
	assert.Equal(t, "X1", p.UT)
	assert.Equal(t, "INTERRUPTOR", p.Tipo)
	assert.Equal(t, "SIN HORARIO", p.Horario)
	assert.Equal(t, "2024-03-20", p.Fecha)
	assert.Equal(t, "PROGRAMADO", p.Estado)
	assert.Equal(t, "Z", p.Zona)
	assert.Equal(t, "P", p.Partido)
	assert.Empty(t, p.IDTarea)
	assert.Equal(t, []string{PromptDuplicate}, h.prompts)
	assert.Equal(t, Closed, h.modal.Mode())
	assert.True(t, h.cal.TakeRefetch())
}

func TestDuplicateRequiresDate(t *testing.T) {
	h := newHarness(t, "clave", false)
	require.NoError(t, h.modal.OpenDuplicate(sampleTask()))
	require.NoError(t, h.modal.Set(KeyDupFecha, ""))

	err := h.modal.Duplicate(context.Background())
	assert.True(t, clierr.Is(err, clierr.Validation))
	assert.Equal(t, MsgPickDate, err.Error())
	assert.Empty(t, h.prompts)
	assert.Empty(t, h.backend.created)
	assert.Equal(t, Duplicate, h.modal.Mode())
}

func TestDuplicateFailureKeepsForm(t *testing.T) {
	h := newHarness(t, "clave", false)
	h.backend.err = errors.New("timeout")
	require.NoError(t, h.modal.OpenDuplicate(sampleTask()))

	require.Error(t, h.modal.Duplicate(context.Background()))
	assert.Equal(t, Duplicate, h.modal.Mode())
	assert.Equal(t, "❌ "+MsgDupNetwork, h.modal.Notice())
}

func TestDuplicateWithoutSource(t *testing.T) {
	h := newHarness(t, "clave", false)
	err := h.modal.OpenDuplicate(nil)
	assert.True(t, clierr.Is(err, clierr.Validation))
	assert.Equal(t, MsgNoDuplicate, err.Error())

	h.modal.OpenRead(sampleTask())
	require.NoError(t, h.modal.OpenDuplicate(nil), "falls back to the record last shown")
}

func TestZoneLookupAppliesToSameRendering(t *testing.T) {
	h := newHarness(t, "x", false)
	h.backend.loc = &api.Location{AreaEmpresa: "NORTE", Poblacion: "PILAR", Distrito: "PILAR"}

	first := h.modal.OpenRead(sampleTask())
	require.NotNil(t, first)
	assert.Equal(t, "...", fieldByKey(t, h.modal.View().Fields, KeyZona).Value)

	res := h.modal.Resolve(context.Background(), first)
	second := sampleTask()
	second.ID = "43"
	next := h.modal.OpenRead(second)
	require.NotNil(t, next)

	assert.False(t, h.modal.ApplyZone(res), "stale lookup is dropped")
	assert.Equal(t, "...", fieldByKey(t, h.modal.View().Fields, KeyZona).Value)

	require.True(t, h.modal.LookupZone(context.Background(), next))
	v := h.modal.View()
	assert.Equal(t, "NORTE - PILAR", fieldByKey(t, v.Fields, KeyZona).Value)
	assert.Equal(t, "PILAR", fieldByKey(t, v.Fields, KeyLocalidad).Value)
}

func TestZoneLookupFailureShowsDash(t *testing.T) {
	h := newHarness(t, "x", false)
	h.backend.locErr = errors.New("boom")

	l := h.modal.OpenRead(sampleTask())
	require.True(t, h.modal.LookupZone(context.Background(), l))
	v := h.modal.View()
	assert.Equal(t, textfmt.Placeholder, fieldByKey(t, v.Fields, KeyZona).Value)
	assert.Equal(t, textfmt.Placeholder, fieldByKey(t, v.Fields, KeyLocalidad).Value)

	h.backend.locErr = nil
	l = h.modal.OpenRead(sampleTask())
	require.True(t, h.modal.LookupZone(context.Background(), l))
	assert.Equal(t, textfmt.Placeholder, fieldByKey(t, h.modal.View().Fields, KeyZona).Value)
}

func TestZoneLookupSkipsOtherTypes(t *testing.T) {
	h := newHarness(t, "x", false)
	ev := sampleTask()
	ev.Props.UT = ""
	assert.Nil(t, h.modal.OpenRead(ev))
	assert.Zero(t, h.backend.lookups)
}

func TestOpenFromCache(t *testing.T) {
	h := newHarness(t, "x", false)
	_, err := h.modal.OpenFromCache("42")
	assert.True(t, clierr.Is(err, clierr.Validation))
	assert.Equal(t, MsgNotFound, err.Error())

	h.modal.sess.SetRaw([]*event.Event{sampleTask()})
	_, err = h.modal.OpenFromCache("42")
	require.NoError(t, err)
	assert.Equal(t, Read, h.modal.Mode())
}

func TestLoadCromo(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}

	_, err := LoadCromo(ctx, b, " - ")
	assert.Equal(t, MsgCromoNoLado, err.Error())

	_, err = LoadCromo(ctx, b, "L-7")
	assert.Equal(t, MsgCromoEmpty, err.Error())

	b.cromoEr = clierr.New(clierr.ServerRejected, "Falta 'lado'")
	_, err = LoadCromo(ctx, b, "L-7")
	assert.Equal(t, "Falta 'lado'", err.Error())

	b.cromoEr = errors.New("reset")
	_, err = LoadCromo(ctx, b, "L-7")
	assert.True(t, clierr.Is(err, clierr.Transport))
	assert.Equal(t, MsgCromoTransport, err.Error())

	b.cromoEr = nil
	b.cromo = []api.CromoItem{
		{UT: "101", Lado: "L-7", Carpeta: `\\srv\cromo\101`},
		{UT: "102", Lado: "L-7"},
	}
	v, err := LoadCromo(ctx, b, "L-7")
	require.NoError(t, err)
	require.Len(t, v.Rows, 2)
	assert.True(t, v.HasFolder)
	assert.Equal(t, textfmt.UNCToFileURL(`\\srv\cromo\101`), v.Rows[0].FolderURL)
	assert.Empty(t, v.Rows[1].FolderURL)

	var o Overlay
	o.Show(v, nil)
	assert.True(t, o.Visible())
	o.Close()
	assert.False(t, o.Visible())
}
