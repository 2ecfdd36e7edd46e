// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package thumbnail draws the document icons shown next to selected files.
// Shapes are drawn on an oversampled canvas and scaled down with
// golang.org/x/image/draw; labels are drawn at the final size with
// basicfont so they stay crisp.
package thumbnail

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pdiddy/tetra-pdf/pkg/types"
)

const (
	// MinWidth is the smallest icon that still fits its labels.
	MinWidth = 48
	// DefaultWidth is used when callers pass 0.
	DefaultWidth = 96

	oversample = 4
)

var (
	paperColor  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	borderColor = color.RGBA{0x34, 0x36, 0x49, 0xff}
	foldColor   = color.RGBA{0xd5, 0xd8, 0xe4, 0xff}
	bandColor   = color.RGBA{0x2d, 0x5f, 0x91, 0xff}
	lineColor   = color.RGBA{0xb4, 0xb8, 0xc8, 0xff}
	textColor   = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Render returns a width × (4/3·width) icon for entry: a page with a folded
// corner, ruled lines, and a band showing the page count.
func Render(entry types.FileEntry, width int) *image.RGBA {
	if width <= 0 {
		width = DefaultWidth
	}
	if width < MinWidth {
		width = MinWidth
	}
	height := width * 4 / 3

	big := image.NewRGBA(image.Rect(0, 0, width*oversample, height*oversample))
	drawPage(big)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), big, big.Bounds(), draw.Over, nil)

	band := bandRect(dst.Bounds())
	label(dst, pageLabel(entry.PageCount), band)
	label(dst, "PDF", image.Rect(0, height/6, width, height/6+basicfont.Face7x13.Height))
	return dst
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encoding thumbnail: %w", err)
	}
	return nil
}

func pageLabel(n int) string {
	if n == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}

func drawPage(img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	margin := w / 12
	border := max(w/48, 1)
	fold := w / 4

	page := image.Rect(margin, margin/2, w-margin, h-margin/2)
	fill(img, page, borderColor)
	inner := page.Inset(border)
	fill(img, inner, paperColor)

	// Folded corner: clear the top-right triangle, then shade the flap.
	for y := 0; y < fold; y++ {
		for x := inner.Max.X - fold + y; x < page.Max.X; x++ {
			img.Set(x, page.Min.Y+y, color.Transparent)
		}
		for x := inner.Max.X - fold; x < inner.Max.X-fold+y; x++ {
			img.Set(x, page.Min.Y+y, foldColor)
		}
	}

	// Ruled "text" lines between the fold and the band.
	band := bandRect(b)
	lineH := max(h/80, 1)
	for y := page.Min.Y + fold + h/16; y+lineH < band.Min.Y-h/32; y += h / 16 {
		fill(img, image.Rect(inner.Min.X+w/10, y, inner.Max.X-w/10, y+lineH), lineColor)
	}

	fill(img, image.Rect(inner.Min.X, band.Min.Y, inner.Max.X, band.Max.Y), bandColor)
}

// bandRect is the page-count band, in the coordinates of r.
func bandRect(r image.Rectangle) image.Rectangle {
	h := r.Dy()
	return image.Rect(r.Min.X, r.Max.Y-h/4, r.Max.X, r.Max.Y-h/12)
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// label centers s inside r using the 7x13 bitmap face.
func label(img *image.RGBA, s string, r image.Rectangle) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(textColor), Face: face}
	if r.Min.Y < img.Bounds().Dy()/2 {
		d.Src = image.NewUniform(borderColor)
	}
	width := d.MeasureString(s).Ceil()
	x := r.Min.X + (r.Dx()-width)/2
	y := r.Min.Y + (r.Dy()+face.Ascent-face.Descent)/2
	d.Dot = fixed.P(max(x, 0), y)
	d.DrawString(s)
}
