// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge concatenates selected PDFs, in selection order, into one
// output document using pdfcpu's merge routine. Output is written to a
// temporary file beside the target and renamed into place only after the
// page count has been verified, so a failed merge leaves no output file.
package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/pdiddy/tetra-pdf/internal/pdfinfo"
	"github.com/pdiddy/tetra-pdf/pkg/types"
)

var (
	// ErrNoInputs is returned when Merge is called with an empty selection.
	ErrNoInputs = errors.New("no files selected")

	// ErrPageMismatch is returned when the merged document does not have
	// the expected number of pages.
	ErrPageMismatch = errors.New("merged page count mismatch")

	// ErrOutputIsInput is returned when the output path names an input.
	ErrOutputIsInput = errors.New("output path is one of the inputs")
)

// PDFReader is the part of *pdfinfo.Reader the merger needs.
type PDFReader interface {
	PageCount(path string) (int, error)
	Configuration(path string) *model.Configuration
}

// Merger merges PDF files.
type Merger struct {
	reader PDFReader
	cfg    types.MergeConfig
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Merger.
func New(reader PDFReader, cfg types.MergeConfig, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{reader: reader, cfg: cfg, logger: logger, now: time.Now}
}

// Merge writes the pages of inputs, in order, to output. When output
// exists and overwriting is disabled, a timestamped sibling is used; the
// returned result carries the path actually written.
func (m *Merger) Merge(ctx context.Context, inputs []string, output string) (types.MergeResult, error) {
	result := types.MergeResult{
		ID:        uuid.NewString(),
		Inputs:    append([]string(nil), inputs...),
		StartedAt: m.now(),
	}

	out, expected, err := m.prepare(ctx, inputs, output)
	if err != nil {
		return m.fail(result, err)
	}
	result.OutputPath = out

	tmp, err := tempPath(filepath.Dir(out))
	if err != nil {
		return m.fail(result, err)
	}
	defer os.Remove(tmp)

	if len(inputs) == 1 {
		err = copyFile(inputs[0], tmp)
	} else {
		err = api.MergeCreateFile(inputs, tmp, m.cfg.DividerPage, m.reader.Configuration(inputs[0]))
	}
	if err != nil {
		return m.fail(result, fmt.Errorf("merging: %w", err))
	}

	got, err := m.reader.PageCount(tmp)
	if err != nil {
		return m.fail(result, fmt.Errorf("reading merged output: %w", err))
	}
	if got != expected {
		return m.fail(result, fmt.Errorf("%w: got %d pages, want %d", ErrPageMismatch, got, expected))
	}

	if err := os.Rename(tmp, out); err != nil {
		return m.fail(result, fmt.Errorf("writing %s: %w", out, err))
	}

	info, err := os.Stat(out)
	if err == nil {
		result.Size = info.Size()
	}
	result.PageCount = got
	result.Success = true
	result.FinishedAt = m.now()
	result.Message = fmt.Sprintf("Merged %d PDFs to %s", len(inputs), filepath.Base(out))

	m.logger.Info("merge complete",
		zap.String("id", result.ID),
		zap.String("output", out),
		zap.Int("inputs", len(inputs)),
		zap.Int("pages", got),
		zap.Duration("took", result.Duration()))
	return result, nil
}

// prepare validates inputs and the output location and returns the final
// output path and the expected page count.
func (m *Merger) prepare(ctx context.Context, inputs []string, output string) (string, int, error) {
	if len(inputs) == 0 {
		return "", 0, ErrNoInputs
	}

	out, err := filepath.Abs(EnsurePDFExt(output))
	if err != nil {
		return "", 0, fmt.Errorf("resolving output path: %w", err)
	}

	expected := 0
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		abs, err := filepath.Abs(in)
		if err != nil {
			return "", 0, fmt.Errorf("resolving %s: %w", in, err)
		}
		if abs == out {
			return "", 0, fmt.Errorf("%s: %w", filepath.Base(in), ErrOutputIsInput)
		}
		n, err := m.reader.PageCount(in)
		if err != nil {
			return "", 0, fmt.Errorf("%s: %w", filepath.Base(in), err)
		}
		expected += n
	}
	if m.cfg.DividerPage && len(inputs) > 1 {
		expected += len(inputs) - 1
	}

	if err := ValidateOutputPath(out); err != nil {
		return "", 0, err
	}
	if !m.cfg.Overwrite {
		if out, err = BackupPath(out, m.now()); err != nil {
			return "", 0, err
		}
	}
	return out, expected, nil
}

func (m *Merger) fail(result types.MergeResult, err error) (types.MergeResult, error) {
	result.Success = false
	result.FinishedAt = m.now()
	result.Message = fmt.Sprintf("Merge failed: %v", err)
	m.logger.Warn("merge failed", zap.String("id", result.ID), zap.Error(err))
	return result, err
}

// Decrypt writes a decrypted copy of in to out using password.
func Decrypt(ctx context.Context, in, out, password string, mode types.ValidationMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if out == "" {
		return errors.New("output path required")
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	conf := pdfinfo.NewConfiguration(mode, password)
	if err := api.DecryptFile(in, out, conf); err != nil {
		return fmt.Errorf("decrypting %s: %w", filepath.Base(in), err)
	}
	return nil
}

// tempPath returns an unused file name in dir without leaving the file
// behind, since pdfcpu creates its output itself.
func tempPath(dir string) (string, error) {
	f, err := os.CreateTemp(dir, ".tetra-merge-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temporary output: %w", err)
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		return "", err
	}
	return name, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
