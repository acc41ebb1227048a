package filelock

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".lock")
	unlock, err := Lock(path)
	require.NoError(t, err)
	require.NoError(t, unlock())
	assert.FileExists(t, path)
}

func TestWithSerializesWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = With(path, func() error {
				mu.Lock()
				inside++
				maxSeen = max(maxSeen, inside)
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestWithReturnsCallbackError(t *testing.T) {
	boom := errors.New("boom")
	err := With(filepath.Join(t.TempDir(), ".lock"), func() error { return boom })
	assert.ErrorIs(t, err, boom)
}
