package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	value string
	err   error
}

// askAsync starts Ask in a goroutine and waits until the prompt is open.
func askAsync(t *testing.T, ctx context.Context, g *Gate, opened chan Prompt, msg string) <-chan outcome {
	t.Helper()
	done := make(chan outcome, 1)
	go func() {
		v, err := g.Ask(ctx, msg)
		done <- outcome{v, err}
	}()
	select {
	case <-opened:
	case <-time.After(time.Second):
		t.Fatal("prompt never opened")
	}
	return done
}

func newGate(p Policy) (*Gate, chan Prompt) {
	opened := make(chan Prompt, 4)
	return New(WithPolicy(p), WithNotify(func(pr Prompt) { opened <- pr })), opened
}

func TestConfirmResolvesValue(t *testing.T) {
	g, opened := newGate(FailFast)
	done := askAsync(t, context.Background(), g, opened, "")

	p, ok := g.Pending()
	require.True(t, ok)
	assert.Equal(t, DefaultMessage, p.Message)

	assert.True(t, g.Confirm("secreto"))
	out := <-done
	require.NoError(t, out.err)
	assert.Equal(t, "secreto", out.value)

	_, ok = g.Pending()
	assert.False(t, ok)
	assert.False(t, g.Confirm("again"), "confirm with nothing pending is a no-op")
}

func TestCancelResolvesCanceled(t *testing.T) {
	g, opened := newGate(FailFast)
	done := askAsync(t, context.Background(), g, opened, "Ingrese la contraseña para guardar cambios:")

	assert.True(t, g.Cancel())
	out := <-done
	assert.ErrorIs(t, out.err, ErrCanceled)
	assert.False(t, g.Cancel())
}

func TestFailFastRejectsSecondRequest(t *testing.T) {
	g, opened := newGate(FailFast)
	first := askAsync(t, context.Background(), g, opened, "uno")

	_, err := g.Ask(context.Background(), "dos")
	assert.ErrorIs(t, err, ErrBusy)

	g.Confirm("x")
	out := <-first
	require.NoError(t, out.err)
	assert.Equal(t, "x", out.value)
}

func TestReplaceOrphansFirstCaller(t *testing.T) {
	g, opened := newGate(Replace)
	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()

	first := askAsync(t, ctx1, g, opened, "uno")
	second := askAsync(t, context.Background(), g, opened, "dos")

	p, _ := g.Pending()
	assert.Equal(t, "dos", p.Message)

	g.Confirm("clave")
	out := <-second
	require.NoError(t, out.err)
	assert.Equal(t, "clave", out.value)

	select {
	case <-first:
		t.Fatal("first caller must stay unresolved")
	case <-time.After(50 * time.Millisecond):
	}

	cancel1()
	out = <-first
	assert.ErrorIs(t, out.err, context.Canceled)
}

func TestSetPolicyAppliesToLaterRequests(t *testing.T) {
	g, opened := newGate(FailFast)
	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()
	first := askAsync(t, ctx1, g, opened, "uno")

	g.SetPolicy(Replace)
	assert.Equal(t, Replace, g.Policy())
	second := askAsync(t, context.Background(), g, opened, "dos")

	p, _ := g.Pending()
	assert.Equal(t, "dos", p.Message)
	g.Confirm("clave")
	out := <-second
	require.NoError(t, out.err)

	select {
	case <-first:
		t.Fatal("first caller must stay unresolved")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestContextEndClearsSlot(t *testing.T) {
	g, opened := newGate(FailFast)
	ctx, cancel := context.WithCancel(context.Background())
	done := askAsync(t, ctx, g, opened, "")
	cancel()

	out := <-done
	assert.True(t, errors.Is(out.err, context.Canceled))
	_, ok := g.Pending()
	assert.False(t, ok)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, FailFast, p)

	p, err = ParsePolicy(" Replace ")
	require.NoError(t, err)
	assert.Equal(t, Replace, p)

	_, err = ParsePolicy("queue")
	assert.Error(t, err)
}

func TestAborted(t *testing.T) {
	assert.True(t, Aborted("", nil))
	assert.True(t, Aborted("x", ErrCanceled))
	assert.False(t, Aborted("x", nil))
}
