// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfinfo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Preview is the viewer's rendition of one page: its extracted plain text.
type Preview struct {
	Name      string `json:"name"`
	Page      int    `json:"page"`
	PageCount int    `json:"page_count"`
	Text      string `json:"text"`
}

// HasNext reports whether a following page exists.
func (p Preview) HasNext() bool { return p.Page < p.PageCount }

// HasPrev reports whether a preceding page exists.
func (p Preview) HasPrev() bool { return p.Page > 1 }

// Preview extracts the text of page (1-based) from the PDF at path.
func (r *Reader) Preview(ctx context.Context, path string, page int) (prev Preview, err error) {
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Preview{}, classifyOSError(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Preview{}, fmt.Errorf("stat %s: %w", path, err)
	}

	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s: %w: %v", filepath.Base(path), ErrCorrupt, rec)
		}
	}()

	rd, err := pdf.NewReaderEncrypted(f, info.Size(), oncePassword(r.Password(path)))
	if err != nil {
		return Preview{}, fmt.Errorf("%s: %w", filepath.Base(path), classifyPDFError(err))
	}

	n := rd.NumPage()
	if page < 1 || page > n {
		return Preview{}, fmt.Errorf("page %d of %d: %w", page, n, ErrPageRange)
	}

	prev = Preview{Name: filepath.Base(path), Page: page, PageCount: n}
	p := rd.Page(page)
	if p.V.IsNull() {
		return prev, nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		r.logger.Sugar().Debugw("text extraction failed", "file", path, "page", page, "error", err)
		return prev, nil
	}
	prev.Text = strings.TrimSpace(text)
	return prev, nil
}

// oncePassword yields password once and then "", which makes the reader
// give up instead of retrying the same wrong password.
func oncePassword(password string) func() string {
	used := false
	return func() string {
		if used {
			return ""
		}
		used = true
		return password
	}
}
