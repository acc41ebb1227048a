// Package clip copies text to the clipboard. The system clipboard is
// tried first; terminals without one get an OSC52 escape sequence.
package clip

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
)

// Method names how a copy reached the clipboard.
type Method string

// Copy methods.
const (
	System Method = "system"
	OSC52  Method = "osc52"
)

// ErrEmpty is returned when there is nothing to copy.
var ErrEmpty = errors.New("nada para copiar")

// Clipboard writes to the system clipboard with an OSC52 fallback.
type Clipboard struct {
	write func(string) error
	term  io.Writer
}

// Option customizes a Clipboard.
type Option func(*Clipboard)

// WithWriter replaces the system clipboard writer.
func WithWriter(fn func(string) error) Option {
	return func(c *Clipboard) { c.write = fn }
}

// WithTerminal sets where the OSC52 sequence is written.
func WithTerminal(w io.Writer) Option {
	return func(c *Clipboard) { c.term = w }
}

// New returns a Clipboard writing OSC52 to stderr. Platforms without a
// clipboard utility skip straight to OSC52.
func New(opts ...Option) *Clipboard {
	c := &Clipboard{term: os.Stderr}
	if !clipboard.Unsupported {
		c.write = clipboard.WriteAll
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy puts text on the clipboard and reports which method was used.
func (c *Clipboard) Copy(text string) (Method, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	if c.write != nil {
		if err := c.write(text); err == nil {
			return System, nil
		}
	}
	if c.term == nil {
		return "", errors.New("sin portapapeles disponible")
	}
	termenv.NewOutput(c.term).Copy(text)
	return OSC52, nil
}

// Label is the operator message for a successful copy.
func Label(m Method) string {
	if m == OSC52 {
		return "📋 Copiado (terminal)"
	}
	return "📋 Copiado"
}
