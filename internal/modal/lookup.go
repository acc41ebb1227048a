package modal

import (
	"context"
	"strings"

	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// Lookup is a pending zone/locality resolution for one READ rendering.
type Lookup struct {
	Gen  uint64
	UT   string
	Tipo string
}

// ZoneResult is a resolved lookup, tagged with the rendering it belongs to.
type ZoneResult struct {
	Gen      uint64
	Zone     string
	Locality string
}

func (m *Modal) lookupLocked() *Lookup {
	if m.mode != Read || !isLookupCandidate(m.ev) {
		return nil
	}
	return &Lookup{
		Gen:  m.gen,
		UT:   m.ev.Props.UT.Trim(),
		Tipo: strings.ToUpper(m.ev.Props.Tipo.Trim()),
	}
}

// Resolve queries the backend for l. Failures and unknown UTs resolve to
// the placeholder dash. It does not touch the modal and may run on any
// goroutine.
func (m *Modal) Resolve(ctx context.Context, l *Lookup) ZoneResult {
	res := ZoneResult{Gen: l.Gen, Zone: textfmt.Placeholder, Locality: textfmt.Placeholder}
	loc, err := m.backend.LookupLocation(ctx, l.UT, l.Tipo)
	if err != nil || loc == nil {
		return res
	}
	res.Zone = textfmt.Dash(loc.Zone())
	res.Locality = textfmt.Dash(loc.Distrito.String())
	return res
}

// ApplyZone stores a resolved lookup. Results for an earlier rendering are
// dropped; it reports whether res was applied.
func (m *Modal) ApplyZone(res ZoneResult) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Read || res.Gen != m.gen {
		return false
	}
	m.zone, m.locality = res.Zone, res.Locality
	return true
}

// LookupZone resolves and applies l in one call.
func (m *Modal) LookupZone(ctx context.Context, l *Lookup) bool {
	if l == nil {
		return false
	}
	return m.ApplyZone(m.Resolve(ctx, l))
}
