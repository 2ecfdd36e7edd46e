// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage checks filesystem access before files are read or
// written, mapping EACCES to ErrPermission.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrPermission is returned when a directory or file cannot be accessed.
var ErrPermission = errors.New("permission denied")

// CheckReadable reports ErrPermission when path cannot be opened for reading.
func CheckReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("%s: %w", filepath.Base(path), ErrPermission)
		}
		return err
	}
	return f.Close()
}

// CheckWritableDir reports ErrPermission when no file can be created in dir.
func CheckWritableDir(dir string) error {
	f, err := os.CreateTemp(dir, ".tetra-probe-*")
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("%s: %w", dir, ErrPermission)
		}
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
