// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the canvas-like raster surface abstraction used
// by imagepipe.
//
// A Surface is a fixed-size grid of non-premultiplied RGBA pixels. Pixels are
// read and written through its 2D Context, which mirrors the small subset of
// the HTML canvas API that image sampling needs:
//
//   - GetImageData: read a rectangle of raw pixels
//   - PutImageData: write raw pixels at an offset, without compositing
//   - DrawImage: composite a decoded image at an offset
//
// Surfaces that can serialize themselves implement Exporter (a PNG data URL,
// the toDataURL analogue).
//
// # Surface Types
//
//   - ImageSurface: CPU-based surface backed by *image.NRGBA
//
// # Registry
//
// Backends register a factory under a name and priority; Allocate picks a
// named backend or the best available one:
//
//	surface.Register("tracking", 20, func(opts surface.Options) (surface.Surface, error) {
//	    return newTrackingSurface(opts.Width, opts.Height), nil
//	}, nil)
//
//	s, err := surface.Allocate("", 800, 600)
//
// # Usage
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	ctx := s.Context()
//	ctx.DrawImage(photo, 0, 0)
//	pixels, err := ctx.GetImageData(image.Rect(0, 0, 800, 600))
//
// # References
//
//   - Canvas 2D: https://html.spec.whatwg.org/multipage/canvas.html
//   - Cairo: https://cairographics.org/manual/cairo-Image-Surfaces.html
package surface
