// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

// ErrClosed is returned when a closed surface is read.
var ErrClosed = errors.New("surface: closed")

// ImageSurface is a CPU-based surface backed by an *image.NRGBA.
//
// This is the default surface implementation and the one registered under
// the "image" backend name.
//
// Example:
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Clear(color.White)
//	s.Context().DrawImage(logo, 10, 10)
//
//	img := s.Snapshot()
type ImageSurface struct {
	width  int
	height int
	img    *image.NRGBA
	ctx    *imageContext

	// closed tracks if Close has been called
	closed bool
}

// NewImageSurface creates a new CPU-based surface with the given dimensions.
// Negative dimensions are treated as zero; zero-sized surfaces are valid.
func NewImageSurface(width, height int) *ImageSurface {
	width = max(width, 0)
	height = max(height, 0)
	return NewImageSurfaceFromImage(image.NewNRGBA(image.Rect(0, 0, width, height)))
}

// NewImageSurfaceFromImage creates a surface backed by an existing image.
// The surface will render into the provided image directly.
func NewImageSurfaceFromImage(img *image.NRGBA) *ImageSurface {
	bounds := img.Bounds()
	s := &ImageSurface{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		img:    img,
	}
	s.ctx = &imageContext{s: s}
	return s
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.width
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.height
}

// Context returns the surface's 2D context.
func (s *ImageSurface) Context() Context {
	return s.ctx
}

// Clear fills the entire surface with the given color.
func (s *ImageSurface) Clear(c color.Color) {
	if s.closed {
		return
	}
	draw.Draw(s.img, s.img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// Snapshot returns a copy of the surface contents.
func (s *ImageSurface) Snapshot() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	if s.closed {
		return out
	}
	copyRows(out, out.Rect, s.img, s.img.Rect.Min)
	return out
}

// DataURL encodes the surface as a PNG data URL.
func (s *ImageSurface) DataURL() (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Image returns the underlying image.
func (s *ImageSurface) Image() *image.NRGBA {
	return s.img
}

// Close releases resources. The backing image is dropped.
func (s *ImageSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.img = image.NewNRGBA(image.Rectangle{})
	return nil
}

// imageContext is the Context of an ImageSurface.
type imageContext struct {
	s *ImageSurface
}

func (c *imageContext) Surface() Surface {
	return c.s
}

func (c *imageContext) GetImageData(r image.Rectangle) (*image.NRGBA, error) {
	if c.s.closed {
		return nil, ErrClosed
	}
	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	clip := r.Intersect(c.s.img.Rect)
	if clip.Empty() {
		return out, nil
	}
	copyRows(out, clip.Sub(r.Min), c.s.img, clip.Min)
	return out, nil
}

func (c *imageContext) PutImageData(img *image.NRGBA, dx, dy int) {
	if c.s.closed {
		return
	}
	dst := img.Rect.Sub(img.Rect.Min).Add(image.Pt(dx, dy))
	clip := dst.Intersect(c.s.img.Rect)
	if clip.Empty() {
		return
	}
	srcMin := clip.Min.Sub(image.Pt(dx, dy)).Add(img.Rect.Min)
	copyRows(c.s.img, clip, img, srcMin)
}

func (c *imageContext) DrawImage(img image.Image, dx, dy int) {
	if c.s.closed {
		return
	}
	b := img.Bounds()
	draw.Draw(c.s.img, b.Sub(b.Min).Add(image.Pt(dx, dy)), img, b.Min, draw.Over)
}

// copyRows copies raw pixel rows from src starting at sp into dst rectangle r.
// Raw copying keeps non-premultiplied values exact, which draw.Draw does not
// guarantee for translucent NRGBA pixels.
func copyRows(dst *image.NRGBA, r image.Rectangle, src *image.NRGBA, sp image.Point) {
	n := r.Dx() * 4
	if n == 0 {
		return
	}
	for y := 0; y < r.Dy(); y++ {
		d := dst.PixOffset(r.Min.X, r.Min.Y+y)
		s := src.PixOffset(sp.X, sp.Y+y)
		copy(dst.Pix[d:d+n], src.Pix[s:s+n])
	}
}
