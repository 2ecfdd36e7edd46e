// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/tetra-pdf/internal/storage"
)

// DefaultFileName is the output name offered when the user has not chosen one.
const DefaultFileName = "merged_document.pdf"

const maxBackupAttempts = 999

// ErrNoFreeName is returned when every candidate backup name is taken.
var ErrNoFreeName = errors.New("no free output file name")

// DefaultOutputDir returns ~/Desktop when it exists, otherwise the home
// directory, otherwise the working directory.
func DefaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return home
}

// DefaultOutputPath returns dir/merged_document.pdf, using DefaultOutputDir
// when dir is empty.
func DefaultOutputPath(dir string) string {
	if dir == "" {
		dir = DefaultOutputDir()
	}
	return filepath.Join(dir, DefaultFileName)
}

// EnsurePDFExt appends ".pdf" unless path already ends in it (any case).
func EnsurePDFExt(path string) string {
	path = strings.TrimSpace(path)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return path
	}
	return path + ".pdf"
}

// ValidateOutputPath creates the parent directory of path if needed and
// checks that the directory, and the file if it exists, are writable.
func ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := storage.CheckWritableDir(dir); err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}

	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return fmt.Errorf("output path is a directory: %s", path)
		}
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("file not writable: %s: %w", path, storage.ErrPermission)
		}
		f.Close()
	}
	return nil
}

// BackupPath returns path when nothing exists there. Otherwise it returns
// "<base>_<YYYYMMDD_HHMMSS><ext>", falling back to "<base>_001<ext>" through
// "<base>_999<ext>" when the timestamped name is also taken.
func BackupPath(path string, now time.Time) (string, error) {
	if !exists(path) {
		return path, nil
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	candidate := filepath.Join(dir, fmt.Sprintf("%s_%s%s", base, now.Format("20060102_150405"), ext))
	if !exists(candidate) {
		return candidate, nil
	}
	for i := 1; i <= maxBackupAttempts; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%03d%s", base, i, ext))
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", path, ErrNoFreeName)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
