// Package imagepipe adapts images to sampling pipes and renders pipes back
// to pixels.
//
// # Overview
//
// A sampling pipe is a lazily evaluated function from real (x, y)
// coordinates to a color, together with a declared width and height.
// imagepipe builds such pipes from every common image representation and
// rasterizes them into buffers, surfaces and image elements at any size.
//
// # Quick Start
//
//	import "github.com/gogpu/imagepipe"
//
//	// Build a bilinear pipe from a decoded image
//	p, err := imagepipe.NewImagePipe(img)
//	if err != nil {
//	    return err
//	}
//
//	// Sample between pixels
//	c := p.Get(12.5, 7.25)
//
//	// Resample to a thumbnail and save it
//	thumb, err := imagepipe.RasterizeSize(p, 64, 64)
//	if err != nil {
//	    return err
//	}
//	err = imagepipe.EncodeFile("thumb.png", thumb)
//
// # Sources
//
// NewImagePipe accepts a *PixelBuffer, an image.Image, a Decodable such as
// *Image, a surface.Surface or its surface.Context, an existing pipe, or an
// ElementContainer wrapping any of these. Every source is first normalized
// into a canonical *PixelBuffer of non-premultiplied RGBA bytes. URL
// sources are loaded with LoadImagePipe or CreateImagePipe, which block
// until the configured Loader succeeds or fails.
//
// # Sampling
//
// Lookups outside [0,W)x[0,H) return the out-of-bounds color (WithOOB,
// transparent by default). Nearest mode floors coordinates to the
// containing texel. Bilinear mode blends the four surrounding texels, each
// of which is independently subject to the out-of-bounds color, so edges
// fade toward it rather than clamping.
//
// # Rendering
//
// Rasterize resamples a pipe to its native size, RasterizeSize to any size.
// Render writes into a Target (buffer, surface, context or image sink) at a
// Placement. Destination pixel (x, y) takes the sample at
// (round(x/dw*sw)+0.499, round(y/dh*sh)+0.499). A Renderer created with
// WithWorkers splits rows across goroutines.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Integer coordinates address the top-left corner of a texel
package imagepipe
