// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
)

// Surface is a canvas-like raster target.
//
// A Surface owns a width x height grid of non-premultiplied RGBA pixels and
// hands out a 2D Context for reading and writing them.
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, or external synchronization must be used.
//
// Example usage:
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	ctx := s.Context()
//	ctx.DrawImage(photo, 0, 0)
//	pixels, err := ctx.GetImageData(image.Rect(0, 0, s.Width(), s.Height()))
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Context returns the surface's 2D drawing context.
	// Repeated calls return the same context.
	Context() Context

	// Close releases all resources associated with the surface.
	// After Close, the surface must not be used.
	// Close is idempotent; multiple calls are safe.
	Close() error
}

// Context is the 2D drawing context of a Surface.
type Context interface {
	// Surface returns the surface this context draws to.
	Surface() Surface

	// GetImageData returns a copy of the pixels in r.
	// Pixels of r outside the surface read as transparent black.
	GetImageData(r image.Rectangle) (*image.NRGBA, error)

	// PutImageData writes img with its top-left corner at (dx, dy),
	// replacing destination pixels without compositing. Pixels falling
	// outside the surface are dropped.
	PutImageData(img *image.NRGBA, dx, dy int)

	// DrawImage composites img over the surface with its top-left corner
	// at (dx, dy).
	DrawImage(img image.Image, dx, dy int)
}

// Exporter is an optional interface for surfaces that can serialize their
// contents into a URL a loader can read back (the toDataURL analogue).
type Exporter interface {
	Surface

	// DataURL encodes the surface as a "data:image/png;base64,..." URL.
	DataURL() (string, error)
}

// Snapshotter is an optional interface for surfaces that can return their
// whole contents without going through a Context.
type Snapshotter interface {
	Surface

	// Snapshot returns a copy of the surface contents.
	Snapshot() *image.NRGBA
}
