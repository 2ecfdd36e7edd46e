// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package picker lists local directories for the file picker screen.
package picker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/tetra-pdf/internal/pdfinfo"
	"github.com/pdiddy/tetra-pdf/internal/storage"
)

// ErrPermission is returned when a directory cannot be listed.
var ErrPermission = storage.ErrPermission

// Item is one row of a directory listing.
type Item struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// HumanSize returns the formatted size for files and "" for directories.
func (i Item) HumanSize() string {
	if i.IsDir {
		return ""
	}
	return pdfinfo.FormatSize(i.Size)
}

// Listing is the content of one directory as shown by the picker.
type Listing struct {
	Dir    string
	Parent string // empty at the filesystem root
	Items  []Item
}

// Files returns only the PDF rows.
func (l Listing) Files() []Item {
	var files []Item
	for _, it := range l.Items {
		if !it.IsDir {
			files = append(files, it)
		}
	}
	return files
}

// List returns subdirectories and PDF files of dir, directories first,
// each group sorted case-insensitively by name. Hidden entries are skipped.
func List(dir string) (Listing, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Listing{}, fmt.Errorf("resolving %s: %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return Listing{}, fmt.Errorf("%s: %w", abs, ErrPermission)
		}
		return Listing{}, fmt.Errorf("listing %s: %w", abs, err)
	}

	l := Listing{Dir: abs}
	if parent := filepath.Dir(abs); parent != abs {
		l.Parent = parent
	}

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		isDir := info.IsDir()
		if !isDir && !pdfinfo.HasPDFExt(name) {
			continue
		}
		l.Items = append(l.Items, Item{
			Name:    name,
			Path:    filepath.Join(abs, name),
			IsDir:   isDir,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(l.Items, func(i, j int) bool {
		a, b := l.Items[i], l.Items[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return l, nil
}

// StartDir returns dir when it is an existing directory, otherwise the
// user's home directory, otherwise ".".
func StartDir(dir string) string {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
