package imagepipe

import (
	"context"
	"image"
	"sync"

	"github.com/gogpu/imagepipe/surface"
)

// Decodable is a decode-capable image handle: it knows its natural size once
// loaded and can draw itself onto a surface.
type Decodable interface {
	// NaturalSize returns the decoded image size, or (0, 0) if nothing has
	// loaded yet.
	NaturalSize() (width, height int)

	// DrawTo composites the image onto ctx with its top-left corner at
	// (dx, dy).
	DrawTo(ctx surface.Context, dx, dy int) error
}

// ImageSink is a render target that accepts new content as a URL and loads
// it asynchronously.
type ImageSink interface {
	// SetSource assigns src and starts loading it. The returned channel
	// receives exactly one value: nil once the content has loaded, or the
	// load error.
	SetSource(ctx context.Context, src string) <-chan error
}

// ElementContainer wraps one of the supported source or target values.
// Containers are unwrapped transparently.
type ElementContainer interface {
	Element() any
}

// Image is an image element: a URL-addressed, asynchronously loaded image
// that can serve both as a Decodable source and as an ImageSink target.
//
// Assigning a new source while a previous load is pending supersedes it:
// the older SetSource channel receives ErrSuperseded and its result is
// discarded.
//
// Thread safety: Image is safe for concurrent use.
type Image struct {
	loader Loader

	mu      sync.Mutex
	src     string
	img     image.Image
	loadGen uint64
}

// Compile-time interface checks.
var (
	_ Decodable = (*Image)(nil)
	_ ImageSink = (*Image)(nil)
)

// NewImage creates an empty image element that resolves sources with
// loader. A nil loader means DefaultLoader.
func NewImage(loader Loader) *Image {
	if loader == nil {
		loader = DefaultLoader
	}
	return &Image{loader: loader}
}

// NewImageFrom creates an image element that is already loaded with img.
func NewImageFrom(img image.Image) *Image {
	return &Image{loader: DefaultLoader, img: img}
}

// Src returns the most recently assigned source URL.
func (i *Image) Src() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.src
}

// Complete reports whether the current content has finished loading.
func (i *Image) Complete() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.img != nil
}

// Decoded returns the decoded content, or nil if nothing has loaded.
func (i *Image) Decoded() image.Image {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.img
}

// NaturalSize returns the decoded size, or (0, 0) before the first load.
func (i *Image) NaturalSize() (width, height int) {
	img := i.Decoded()
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// DrawTo draws the decoded content onto ctx.
// Returns ErrNotLoaded if nothing has loaded yet.
func (i *Image) DrawTo(ctx surface.Context, dx, dy int) error {
	img := i.Decoded()
	if img == nil {
		return ErrNotLoaded
	}
	ctx.DrawImage(img, dx, dy)
	return nil
}

// SetSource assigns src and loads it in the background. Previously loaded
// content stays visible until the new load succeeds. A loader that reports
// no error but returns no image fails the load with ErrNotLoaded.
func (i *Image) SetSource(ctx context.Context, src string) <-chan error {
	i.mu.Lock()
	i.loadGen++
	gen := i.loadGen
	i.src = src
	i.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		img, err := i.loader.Load(ctx, src)

		i.mu.Lock()
		defer i.mu.Unlock()

		switch {
		case gen != i.loadGen:
			done <- ErrSuperseded
		case err != nil:
			done <- err
		case img == nil:
			done <- ErrNotLoaded
		default:
			i.img = img
			done <- nil
		}
	}()
	return done
}

// decodedImage adapts an already decoded image.Image to Decodable.
type decodedImage struct {
	img image.Image
}

func (d decodedImage) NaturalSize() (width, height int) {
	b := d.img.Bounds()
	return b.Dx(), b.Dy()
}

func (d decodedImage) Decoded() image.Image { return d.img }

func (d decodedImage) DrawTo(ctx surface.Context, dx, dy int) error {
	ctx.DrawImage(d.img, dx, dy)
	return nil
}
