// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfinfo reads the metadata shown for each selected PDF: display
// name, size and page count. Validation and page counting are delegated to
// pdfcpu; page text for the viewer comes from ledongthuc/pdf.
package pdfinfo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/pdiddy/tetra-pdf/internal/secrets"
	"github.com/pdiddy/tetra-pdf/internal/storage"
	"github.com/pdiddy/tetra-pdf/pkg/types"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrNotPDF     = errors.New("not a PDF")
	ErrCorrupt    = errors.New("corrupted")
	ErrEncrypted  = errors.New("encrypted")
	ErrPermission = storage.ErrPermission
	ErrPageRange  = errors.New("page out of range")
)

var disableConfigDir sync.Once

// NewConfiguration returns a pdfcpu configuration for the given validation
// mode and user password. pdfcpu's on-disk config directory is disabled so
// runs never write under the user's config dir.
func NewConfiguration(mode types.ValidationMode, password string) *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if mode == types.ValidationStrict {
		conf.ValidationMode = model.ValidationStrict
	}
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}
	return conf
}

// Reader inspects PDF files.
type Reader struct {
	validation types.ValidationMode
	passwords  secrets.Passwords
	cache      *Cache
	logger     *zap.Logger
}

// NewReader creates a Reader. passwords and cache may be nil.
func NewReader(cfg types.PDFConfig, passwords secrets.Passwords, cache *Cache, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		validation: cfg.Validation,
		passwords:  passwords,
		cache:      cache,
		logger:     logger,
	}
}

// Configuration returns the pdfcpu configuration to use for the file at path.
func (r *Reader) Configuration(path string) *model.Configuration {
	return NewConfiguration(r.validation, r.passwords.For(path))
}

// Password returns the configured password for path, or "".
func (r *Reader) Password(path string) string {
	return r.passwords.For(path)
}

// Inspect stats and validates the PDF at path and returns its metadata.
// Errors wrap one of ErrNotFound, ErrNotPDF, ErrCorrupt, ErrEncrypted or
// ErrPermission.
func (r *Reader) Inspect(ctx context.Context, path string) (types.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return types.FileEntry{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return types.FileEntry{}, fmt.Errorf("resolving %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return types.FileEntry{}, fmt.Errorf("%s: %w", filepath.Base(abs), classifyOSError(err))
	}
	if info.IsDir() || !HasPDFExt(abs) {
		return types.FileEntry{}, fmt.Errorf("%s: %w", filepath.Base(abs), ErrNotPDF)
	}
	if err := storage.CheckReadable(abs); err != nil {
		return types.FileEntry{}, classifyOSError(err)
	}

	entry := types.FileEntry{
		Path:    abs,
		Name:    filepath.Base(abs),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	if n, ok := r.cache.Get(abs, entry.Size, entry.ModTime); ok {
		entry.PageCount = n
		r.logger.Debug("page count from cache", zap.String("file", abs), zap.Int("pages", n))
		return entry, nil
	}

	n, err := r.pageCount(abs)
	if err != nil {
		return types.FileEntry{}, fmt.Errorf("%s: %w", entry.Name, err)
	}
	entry.PageCount = n

	if err := r.cache.Put(abs, entry.Size, entry.ModTime, n); err != nil {
		r.logger.Warn("caching page count", zap.String("file", abs), zap.Error(err))
	}
	r.logger.Debug("inspected", zap.String("file", abs), zap.Int("pages", n), zap.Int64("size", entry.Size))
	return entry, nil
}

// PageCount validates the PDF at path and returns its page count.
func (r *Reader) PageCount(path string) (int, error) {
	return r.pageCount(path)
}

func (r *Reader) pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, classifyOSError(err)
	}
	defer f.Close()

	conf := r.Configuration(path)
	if err := api.Validate(f, conf); err != nil {
		return 0, classifyPDFError(err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewinding: %w", err)
	}
	n, err := api.PageCount(f, conf)
	if err != nil {
		return 0, classifyPDFError(err)
	}
	return n, nil
}

// HasPDFExt reports whether path ends in .pdf, ignoring case.
func HasPDFExt(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Reason returns the short label used in selection messages for err.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrNotPDF):
		return "not a PDF"
	case errors.Is(err, ErrEncrypted):
		return "encrypted"
	case errors.Is(err, ErrPermission):
		return "permission denied"
	case errors.Is(err, ErrCorrupt):
		return "corrupted"
	default:
		return "unreadable"
	}
}

func classifyOSError(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermission, err)
	default:
		return err
	}
}

// pdfcpu reports password problems as plain errors.
func classifyPDFError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") {
		return fmt.Errorf("%w: %v", ErrEncrypted, err)
	}
	return fmt.Errorf("%w: %v", ErrCorrupt, err)
}

// FormatSize renders a byte count as "12.3 KB" using 1024 steps.
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}
