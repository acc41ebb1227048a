// Package gate implements the password prompt that guards every mutating
// flow. One request can be pending at a time; the UI answers it with
// Confirm or Cancel.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/telecontrol-mt/calendario/internal/clierr"
)

// DefaultMessage is shown when a caller supplies no prompt text.
const DefaultMessage = "Ingrese la contraseña:"

var (
	// ErrCanceled is returned when the operator dismisses the prompt.
	ErrCanceled = errors.New("contraseña cancelada")
	// ErrBusy is returned under FailFast when a prompt is already open.
	ErrBusy = errors.New("ya hay una solicitud de contraseña pendiente")
)

// Policy decides what a second Ask does while one is pending.
type Policy string

// Policies.
const (
	// FailFast rejects the second request with ErrBusy.
	FailFast Policy = "fail-fast"
	// Replace overwrites the slot. The first caller is never resolved and
	// only returns when its own context ends.
	Replace Policy = "replace"
)

// ParsePolicy maps a config value to a Policy. Empty means FailFast.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FailFast, nil
	case FailFast, Replace:
		return p, nil
	default:
		return "", fmt.Errorf("unknown gate policy %q (valid: %s, %s)", s, FailFast, Replace)
	}
}

// Prompt describes an open request.
type Prompt struct {
	ID      uint64
	Message string
}

type answer struct {
	value    string
	canceled bool
}

type request struct {
	prompt Prompt
	reply  chan answer
}

// Gate is the single password prompt of a session. The zero value is not
// usable; create one with New.
type Gate struct {
	mu      sync.Mutex
	policy  Policy
	pending *request
	seq     uint64
	notify  func(Prompt)
}

// Option customizes a Gate.
type Option func(*Gate)

// WithPolicy sets the second-request policy.
func WithPolicy(p Policy) Option {
	return func(g *Gate) { g.policy = p }
}

// WithNotify registers a callback run whenever a prompt opens. It is
// called without the gate lock held.
func WithNotify(fn func(Prompt)) Option {
	return func(g *Gate) { g.notify = fn }
}

// New creates a Gate.
func New(opts ...Option) *Gate {
	g := &Gate{policy: FailFast}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the configured policy.
func (g *Gate) Policy() Policy {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.policy
}

// SetPolicy changes the policy for later requests. A pending request is
// left open.
func (g *Gate) SetPolicy(p Policy) {
	g.mu.Lock()
	g.policy = p
	g.mu.Unlock()
}

// SetNotify replaces the open-prompt callback.
func (g *Gate) SetNotify(fn func(Prompt)) {
	g.mu.Lock()
	g.notify = fn
	g.mu.Unlock()
}

// Ask opens the prompt and blocks until it is confirmed, canceled or ctx
// ends. A confirmed value may be empty.
func (g *Gate) Ask(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		message = DefaultMessage
	}

	g.mu.Lock()
	if g.pending != nil && g.policy != Replace {
		g.mu.Unlock()
		return "", ErrBusy
	}
	g.seq++
	req := &request{
		prompt: Prompt{ID: g.seq, Message: message},
		reply:  make(chan answer, 1),
	}
	g.pending = req
	notify := g.notify
	g.mu.Unlock()

	if notify != nil {
		notify(req.prompt)
	}

	select {
	case a := <-req.reply:
		if a.canceled {
			return "", ErrCanceled
		}
		return a.value, nil
	case <-ctx.Done():
		g.mu.Lock()
		if g.pending == req {
			g.pending = nil
		}
		g.mu.Unlock()
		return "", ctx.Err()
	}
}

// Confirm resolves the pending request with value. It reports whether a
// request was pending.
func (g *Gate) Confirm(value string) bool {
	return g.resolve(answer{value: value})
}

// Cancel resolves the pending request as canceled. It reports whether a
// request was pending.
func (g *Gate) Cancel() bool {
	return g.resolve(answer{canceled: true})
}

func (g *Gate) resolve(a answer) bool {
	g.mu.Lock()
	req := g.pending
	g.pending = nil
	g.mu.Unlock()
	if req == nil {
		return false
	}
	req.reply <- a
	return true
}

// Pending returns the open prompt, if any.
func (g *Gate) Pending() (Prompt, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Prompt{}, false
	}
	return g.pending.prompt, true
}

// Aborted reports whether an Ask outcome means the flow must stop without
// any network effect: cancel, busy, context end or an empty password.
func Aborted(password string, err error) bool {
	return err != nil || password == ""
}

// AbortError maps an aborted Ask outcome to a Canceled error that keeps
// the cause.
func AbortError(err error) error {
	switch {
	case err == nil:
		return clierr.New(clierr.Canceled, "Operación cancelada: contraseña vacía.")
	case errors.Is(err, ErrBusy):
		return clierr.Wrap(clierr.Canceled, ErrBusy.Error(), err)
	default:
		return clierr.Wrap(clierr.Canceled, "Operación cancelada.", err)
	}
}
