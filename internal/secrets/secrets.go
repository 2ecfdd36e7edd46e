// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads PDF passwords from a directory of plain-text files.
// Each file holds one password: "pdf-password" is the default for every
// encrypted document and "<name>.password" applies to the PDF whose base
// name (without extension) is <name>.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultKey names the file holding the fallback password.
	DefaultKey = "pdf-password"

	passwordSuffix = ".password"
)

// Passwords maps secret file names to their trimmed contents.
type Passwords map[string]string

// Load reads all files in dir and returns their trimmed contents keyed by
// file name. A missing directory is not an error; Load returns an empty set.
// Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (Passwords, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Passwords{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	p := make(Passwords)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if name != DefaultKey && !strings.HasSuffix(name, passwordSuffix) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			p[name] = value
		}
	}
	return p, nil
}

// For returns the password to use for the PDF at path: the per-file
// password when present, otherwise the default, otherwise "".
func (p Passwords) For(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if v, ok := p[stem+passwordSuffix]; ok {
		return v
	}
	return p[DefaultKey]
}

// Keys returns the loaded secret names, for startup diagnostics.
func (p Passwords) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}
