// Package filelock serializes writers of the config file and the activity
// log across calendario processes with an advisory lock file.
package filelock

import (
	"os"
	"path/filepath"
)

const (
	lockFileMode = 0o600
	lockDirMode  = 0o750
)

// Lock takes an exclusive advisory lock on path, creating the file and
// its directory when missing. It blocks until the lock is free. Call the
// returned function to release it.
func Lock(path string) (unlock func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(path), lockDirMode); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted source
	if err != nil {
		return nil, err
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() error {
		unlockErr := unlockFile(f)
		if closeErr := f.Close(); unlockErr == nil {
			return closeErr
		}
		return unlockErr
	}, nil
}

// With runs fn while holding the lock on path.
func With(path string, fn func() error) (err error) {
	unlock, err := Lock(path)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := unlock(); err == nil {
			err = uerr
		}
	}()
	return fn()
}
