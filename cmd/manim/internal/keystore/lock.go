// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package keystore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// FileLock provides advisory file locking so two concurrent launcher
// processes cannot both regenerate key material. A racing reader is already
// safe (the store write is atomic); the lock closes the writer/writer race.
//
// # Thread Safety
//
// FileLock is NOT safe for concurrent use. Each goroutine should have its
// own instance.
//
// # Platform Support
//
// Uses flock(2). Advisory only: other processes can ignore it.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a lock handle beside the given store path
// ({store}.lock). The lock is not yet acquired.
func NewFileLock(storePath string) *FileLock {
	return &FileLock{path: storePath + ".lock"}
}

// Acquire attempts to take the exclusive lock without blocking.
//
// # Outputs
//
//   - error: ErrLockHeld if another process holds it, or the underlying
//     failure opening or locking the file.
func (l *FileLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("opening lock file: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if err == unix.EWOULDBLOCK {
			return ErrLockHeld
		}
		return fmt.Errorf("flock: %w", err)
	}

	// PID and timestamp are for debugging a stuck lock; failures here are
	// non-fatal.
	_ = file.Truncate(0)
	_, _ = file.Seek(0, 0)
	_, _ = fmt.Fprintf(file, "pid=%d\ntime=%s\n", os.Getpid(), time.Now().Format(time.RFC3339))

	l.file = file
	return nil
}

// Release frees the lock and removes the lock file. Safe to call multiple
// times or on an unacquired lock.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil
	_ = os.Remove(l.path)
	return err
}
