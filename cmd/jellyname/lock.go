package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Nomadcxx/jellyname/internal/paths"
)

var errLocked = errors.New("another jellyname process is modifying the library")

// acquireLock takes the process lock guarding library renames and the
// watcher. The returned func releases it.
func acquireLock() (func(), error) {
	path, err := paths.LockPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get lock path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create lock dir: %w", err)
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", errLocked, lock.Path())
	}
	return func() { _ = lock.Unlock() }, nil
}
