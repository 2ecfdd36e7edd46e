// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection maintains the ordered list of PDFs chosen for merging.
// Every mutation returns a types.Response for the UI status banner and
// notifies subscribers with a copy of the new list.
package selection

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/tetra-pdf/internal/pdfinfo"
	"github.com/pdiddy/tetra-pdf/pkg/types"
)

// Inspector reads metadata for a candidate file. *pdfinfo.Reader
// implements it.
type Inspector interface {
	Inspect(ctx context.Context, path string) (types.FileEntry, error)
}

// Observer receives the selection after each change.
type Observer func(entries []types.FileEntry)

// Selection is the ordered, duplicate-free list of selected PDFs. It is safe
// for concurrent use.
type Selection struct {
	mu        sync.Mutex
	entries   []types.FileEntry
	inspector Inspector
	observers map[int]Observer
	nextID    int
	logger    *zap.Logger
}

// New creates an empty Selection.
func New(inspector Inspector, logger *zap.Logger) *Selection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selection{
		inspector: inspector,
		observers: make(map[int]Observer),
		logger:    logger,
	}
}

// Subscribe registers fn and returns a function that unregisters it.
func (s *Selection) Subscribe(fn Observer) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Add inspects each path and appends the valid, not yet selected ones in
// the given order.
func (s *Selection) Add(ctx context.Context, paths ...string) types.Response {
	if len(paths) == 0 {
		return errorf("No files provided")
	}

	var added, invalid []string
	for _, p := range paths {
		entry, err := s.inspector.Inspect(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return types.Response{Status: types.StatusCancelled, Message: "Selection cancelled"}
			}
			invalid = append(invalid, fmt.Sprintf("%s (%s)", displayName(p), pdfinfo.Reason(err)))
			s.logger.Info("rejected file", zap.String("path", p), zap.Error(err))
			continue
		}

		s.mu.Lock()
		dup := s.indexOf(entry.Path) >= 0
		if !dup {
			s.entries = append(s.entries, entry)
		}
		s.mu.Unlock()

		if dup {
			invalid = append(invalid, fmt.Sprintf("%s (already added)", entry.Name))
			continue
		}
		added = append(added, entry.Name)
	}

	if len(added) > 0 {
		s.notify()
	}

	switch {
	case len(added) > 0 && len(invalid) == 0:
		return successf("Added %d files", len(added))
	case len(added) > 0:
		return successf("Added %d files; skipped %d invalid: %s",
			len(added), len(invalid), strings.Join(invalid, ", "))
	default:
		return errorf("No valid files added: %s", strings.Join(invalid, ", "))
	}
}

// Remove deselects the entry at index.
func (s *Selection) Remove(index int) types.Response {
	s.mu.Lock()
	if index < 0 || index >= len(s.entries) {
		s.mu.Unlock()
		return errorf("Invalid index")
	}
	removed := s.entries[index]
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	s.mu.Unlock()

	s.notify()
	return successf("Removed %s", removed.Name)
}

// Clear deselects everything.
func (s *Selection) Clear() types.Response {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = nil
	s.mu.Unlock()

	s.notify()
	return successf("Cleared %d files", n)
}

// Move relocates the entry at from to position to, shifting the others.
func (s *Selection) Move(from, to int) types.Response {
	s.mu.Lock()
	n := len(s.entries)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		return errorf("Invalid indices")
	}
	e := s.entries[from]
	s.entries = append(s.entries[:from], s.entries[from+1:]...)
	s.entries = append(s.entries[:to], append([]types.FileEntry{e}, s.entries[to:]...)...)
	s.mu.Unlock()

	s.notify()
	return successf("Reordered files")
}

// Entries returns a copy of the selection.
func (s *Selection) Entries() []types.FileEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.FileEntry(nil), s.entries...)
}

// Entry returns the entry at index.
func (s *Selection) Entry(index int) (types.FileEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return types.FileEntry{}, false
	}
	return s.entries[index], true
}

// Paths returns the selected paths in merge order.
func (s *Selection) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, len(s.entries))
	for i, e := range s.entries {
		paths[i] = e.Path
	}
	return paths
}

// Count returns the number of selected files.
func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// TotalPages returns the sum of the selected files' page counts.
func (s *Selection) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, e := range s.entries {
		total += e.PageCount
	}
	return total
}

// indexOf must be called with s.mu held.
func (s *Selection) indexOf(path string) int {
	for i, e := range s.entries {
		if e.Path == path {
			return i
		}
	}
	return -1
}

func (s *Selection) notify() {
	s.mu.Lock()
	snapshot := append([]types.FileEntry(nil), s.entries...)
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		s.call(fn, snapshot)
	}
}

func (s *Selection) call(fn Observer, entries []types.FileEntry) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("selection observer panicked", zap.Any("panic", r))
		}
	}()
	fn(append([]types.FileEntry(nil), entries...))
}

func displayName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

func successf(format string, args ...any) types.Response {
	return types.Response{Status: types.StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

func errorf(format string, args ...any) types.Response {
	return types.Response{Status: types.StatusError, Message: fmt.Sprintf(format, args...)}
}
