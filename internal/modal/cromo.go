package modal

import (
	"context"
	"strings"
	"sync"

	"github.com/telecontrol-mt/calendario/internal/api"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// CROMO messages.
const (
	MsgCromoNoLado    = "No hay lado para buscar."
	MsgCromoEmpty     = "No se encontró información de CROMO."
	MsgCromoTransport = "Error al obtener datos de CROMO."
)

// CromoFetcher fetches technical info by side identifier.
type CromoFetcher interface {
	Cromo(ctx context.Context, lado string) ([]api.CromoItem, error)
}

// CromoRow is one rendered CROMO row. FolderURL is empty when the row
// has no folder.
type CromoRow struct {
	UT        string
	Cuenta    string
	Lado      string
	Clase     string
	Celda     string
	Conexion  string
	Carpeta   string
	FolderURL string
}

// CromoView is the content of the CROMO overlay.
type CromoView struct {
	Lado      string
	Rows      []CromoRow
	HasFolder bool
}

// LoadCromo fetches and renders the CROMO rows of lado.
func LoadCromo(ctx context.Context, f CromoFetcher, lado string) (CromoView, error) {
	lado = strings.TrimSpace(lado)
	if lado == "" || lado == noValue {
		return CromoView{}, clierr.New(clierr.Validation, MsgCromoNoLado)
	}
	items, err := f.Cromo(ctx, lado)
	switch {
	case clierr.Is(err, clierr.ServerRejected), clierr.Is(err, clierr.Unauthenticated):
		return CromoView{}, err
	case err != nil:
		return CromoView{}, clierr.Wrap(clierr.Transport, MsgCromoTransport, err)
	case len(items) == 0:
		return CromoView{}, clierr.New(clierr.Validation, MsgCromoEmpty)
	}

	v := CromoView{Lado: lado, Rows: make([]CromoRow, 0, len(items))}
	for _, it := range items {
		row := CromoRow{
			UT:       textfmt.Terminal(it.UT.Trim()),
			Cuenta:   textfmt.Terminal(it.Cuenta.Trim()),
			Lado:     textfmt.Terminal(it.Lado.Trim()),
			Clase:    textfmt.Terminal(it.Clase.Trim()),
			Celda:    textfmt.Terminal(it.Celda.Trim()),
			Conexion: textfmt.Terminal(it.Conexion.Trim()),
			Carpeta:  textfmt.Terminal(it.Carpeta.Trim()),
		}
		if row.Carpeta != "" {
			row.FolderURL = textfmt.UNCToFileURL(row.Carpeta)
			v.HasFolder = true
		}
		v.Rows = append(v.Rows, row)
	}
	return v, nil
}

// Overlay is the CROMO dialog. It is independent of the detail modal.
type Overlay struct {
	mu      sync.Mutex
	visible bool
	view    CromoView
	err     error
}

// Show opens the overlay with a loaded view or the error to display.
func (o *Overlay) Show(v CromoView, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = true
	o.view = v
	o.err = err
}

// Close hides the overlay.
func (o *Overlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = false
	o.view = CromoView{}
	o.err = nil
}

// Visible reports whether the overlay is shown.
func (o *Overlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// View returns the overlay content and its error, if any.
func (o *Overlay) View() (CromoView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view, o.err
}
