package backup

import (
	"sync"

	"github.com/thoreinstein/keyconfig/internal/errors"
)

// backupOnce tracks per-file snapshot state within a session.
// This prevents redundant snapshots when one command writes several times.
var (
	backupOnce  = make(map[string]*sync.Once)
	backupMutex sync.Mutex
)

// EnsureBackedUp snapshots the settings file at path before its first
// modification in this process. Later calls for the same path are no-ops.
// A settings file that does not exist yet needs no snapshot and returns nil.
//
// Failed or skipped snapshots are forgotten so the next call tries again.
func EnsureBackedUp(mgr *Manager, path string) error {
	backupMutex.Lock()
	once, exists := backupOnce[path]
	if !exists {
		once = &sync.Once{}
		backupOnce[path] = once
	}
	backupMutex.Unlock()

	var backupErr error
	once.Do(func() {
		_, backupErr = mgr.Snapshot(path)
		if backupErr != nil {
			backupMutex.Lock()
			delete(backupOnce, path)
			backupMutex.Unlock()
		}
	})

	if errors.Is(backupErr, ErrNothingToBackUp) {
		return nil
	}

	if backupErr != nil {
		return errors.Wrapf(backupErr, "backing up %s", path)
	}
	return nil
}

// ResetBackupState forgets which files were snapshotted. Commands run
// in-process by tests call it between runs.
func ResetBackupState() {
	backupMutex.Lock()
	defer backupMutex.Unlock()
	backupOnce = make(map[string]*sync.Once)
}
