package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeFollowsWrapChain(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("saving: %w", Wrap(Transport, "❌ Error de red al guardar.", cause))

	assert.Equal(t, Transport, Code(err))
	assert.True(t, Is(err, Transport))
	assert.False(t, Is(err, ServerRejected))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "", Code(cause))
	assert.False(t, Is(nil, Transport))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, New(InternalError, "boom").ExitCode())
	assert.Equal(t, 1, New(Validation, "no").ExitCode())
}

func TestWithDetails(t *testing.T) {
	e := Newf(EventNotFound, "no existe %s", "7").WithDetails(map[string]any{"id": "7"})
	assert.Equal(t, "no existe 7", e.Error())
	assert.Equal(t, "7", e.Details["id"])
}
