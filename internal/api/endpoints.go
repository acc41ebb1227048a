package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/event"
)

// Tasks fetches every task record.
func (c *Client) Tasks(ctx context.Context) ([]*event.Event, error) {
	return c.events(ctx, "/api/tareas", event.KindTask)
}

// Absences fetches the absence overlays.
func (c *Client) Absences(ctx context.Context) ([]*event.Event, error) {
	return c.events(ctx, "/api/ausencias", event.KindAbsence)
}

// Holidays fetches the holiday bands.
func (c *Client) Holidays(ctx context.Context) ([]*event.Event, error) {
	return c.events(ctx, "/api/feriados", event.KindHoliday)
}

func (c *Client) events(ctx context.Context, path string, kind event.Kind) ([]*event.Event, error) {
	var out []*event.Event
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	for _, e := range out {
		e.Kind = kind
	}
	return out, nil
}

// DateUpdate is the body of a reschedule.
type DateUpdate struct {
	ID    event.ID `json:"id"`
	Fecha string   `json:"fecha"`
	Clave string   `json:"clave"`
}

// UpdateDate moves a task to a new day.
func (c *Client) UpdateDate(ctx context.Context, u DateUpdate) (Result, error) {
	return c.postResult(ctx, "/api/update_fecha", u)
}

// CreateTask creates a task from the payload.
func (c *Client) CreateTask(ctx context.Context, p event.Payload) (Result, error) {
	p.IDTarea = ""
	return c.postResult(ctx, "/api/crear_tarea", p)
}

// EditTask overwrites the task named by p.IDTarea.
func (c *Client) EditTask(ctx context.Context, p event.Payload) (Result, error) {
	if !p.IsEdit() {
		return Result{}, clierr.New(clierr.InvalidInput, "edit requires a task id")
	}
	return c.postResult(ctx, "/api/editar_tarea", p)
}

// Location is the zone and locality resolved for an equipment UT.
type Location struct {
	AreaEmpresa event.Text `json:"area_empresa"`
	Poblacion   event.Text `json:"poblacion"`
	Distrito    event.Text `json:"distrito"`
}

// Zone joins area and population with " - ", skipping blanks.
func (l *Location) Zone() string {
	parts := make([]string, 0, 2) //nolint:mnd // area, population
	for _, v := range []string{l.AreaEmpresa.Trim(), l.Poblacion.Trim()} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " - ")
}

type locationResponse struct {
	Result
	Item *Location `json:"item"`
}

// LookupLocation resolves zone and locality by UT and equipment type. It
// returns nil without error when the backend knows no such UT.
func (c *Client) LookupLocation(ctx context.Context, ut, tipo string) (*Location, error) {
	q := url.Values{"ut": {ut}, "tipo": {tipo}}
	var res locationResponse
	if err := c.getEnvelope(ctx, "/api/ubicacion_lookup", q, &res, ""); err != nil {
		return nil, err
	}
	return res.Item, nil
}

// CromoItem is one technical-info row of a side identifier.
type CromoItem struct {
	UT       event.Text `json:"UT"`
	Cuenta   event.Text `json:"Cuenta"`
	Lado     event.Text `json:"Lado"`
	Clase    event.Text `json:"Clase"`
	Celda    event.Text `json:"Celda"`
	Conexion event.Text `json:"Conexion"`
	Carpeta  event.Text `json:"Carpeta"`
}

type cromoResponse struct {
	Result
	Items []CromoItem `json:"items"`
}

// Cromo fetches the technical info rows of a side identifier.
func (c *Client) Cromo(ctx context.Context, lado string) ([]CromoItem, error) {
	var res cromoResponse
	q := url.Values{"lado": {lado}}
	if err := c.getEnvelope(ctx, "/api/cromo", q, &res, "Error."); err != nil {
		return nil, err
	}
	return res.Items, nil
}

type enveloped interface {
	envelope() *Result
}

func (r *Result) envelope() *Result { return r }

// getEnvelope decodes a {success, message, ...} GET response. The body is
// decoded regardless of status so that the server message is kept;
// fallback replaces a missing message.
func (c *Client) getEnvelope(ctx context.Context, path string, q url.Values, out enveloped, fallback string) error {
	status, body, err := c.get(ctx, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return transportErr(path, err)
	}
	res := out.envelope()
	if status < 200 || status > 299 {
		res.Success = false
	}
	if fallback == "" {
		fallback = path + ": sin datos"
	}
	return res.Err(fallback)
}

// PasswordChange is the body of a password change.
type PasswordChange struct {
	Actual  string `json:"actual"`
	Nueva   string `json:"nueva"`
	Repetir string `json:"repetir"`
}

// ChangePassword changes the operator's login password.
func (c *Client) ChangePassword(ctx context.Context, p PasswordChange) (Result, error) {
	return c.postResult(ctx, "/api/cambiar_clave", p)
}

var loginMessages = map[int]string{
	http.StatusUnauthorized: "Usuario o contraseña inválidos.",
	http.StatusForbidden:    "Cuenta deshabilitada.",
	http.StatusLocked:       "Cuenta bloqueada temporalmente. Intente más tarde.",
}

// Login opens a session with the form login. The session cookie lives in
// the client's jar for the rest of the process.
func (c *Client) Login(ctx context.Context, username, password string, remember bool) error {
	form := url.Values{"username": {username}, "password": {password}}
	if remember {
		form.Set("remember", "1")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(loginPath, nil),
		strings.NewReader(form.Encode()))
	if err != nil {
		return transportErr(loginPath, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportErr(loginPath, err)
	}
	defer resp.Body.Close()

	if msg, ok := loginMessages[resp.StatusCode]; ok {
		return clierr.New(clierr.ServerRejected, msg)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return clierr.Newf(clierr.Transport, "%s: HTTP %d", loginPath, resp.StatusCode)
	}
	if resp.Request != nil && resp.Request.URL.Path == loginPath {
		return clierr.New(clierr.ServerRejected, "Usuario o contraseña inválidos.")
	}
	return nil
}
