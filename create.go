package imagepipe

import (
	"context"
	"errors"
)

// NewImagePipe creates a sampling pipe from any synchronous source: a
// *PixelBuffer, an existing pipe, a surface or its context, a Decodable, an
// image.Image, an ElementContainer or a Source built with the *Source
// constructors.
//
// URL sources return ErrAsyncSource; use LoadImagePipe or CreateImagePipe.
// Unsupported values return *InvalidSourceError.
//
// Example:
//
//	p, err := imagepipe.NewImagePipe(buf, imagepipe.WithNearest(true))
//	if err != nil {
//	    return err
//	}
//	c := p.Get(10.5, 3.25)
func NewImagePipe(src any, opts ...Option) (*Pipe, error) {
	s, err := SourceOf(src)
	if err != nil {
		return nil, err
	}
	return newPipe(s, resolveOptions(opts))
}

// LoadImagePipe loads rawURL with the configured Loader and creates a pipe
// from the decoded image. It blocks until the load completes, fails, or ctx
// is done. Load failures are reported as *SourceLoadError.
func LoadImagePipe(ctx context.Context, rawURL string, opts ...Option) (*Pipe, error) {
	return loadPipe(ctx, rawURL, resolveOptions(opts))
}

// CreateImagePipe is the single polymorphic entry point. URL sources are
// loaded as by LoadImagePipe; every other source is handled synchronously
// as by NewImagePipe, without consulting ctx.
func CreateImagePipe(ctx context.Context, src any, opts ...Option) (*Pipe, error) {
	s, err := SourceOf(src)
	if err != nil {
		return nil, err
	}
	o := resolveOptions(opts)
	if u, ok := s.(urlSource); ok {
		return loadPipe(ctx, u.url, o)
	}
	return newPipe(s, o)
}

func newPipe(s Source, o Options) (*Pipe, error) {
	buf, err := normalize(s, o)
	if err != nil {
		return nil, err
	}
	return buildPipe(buf, o), nil
}

// loadPipe resolves rawURL through an Image element, then recurses through
// the Decodable path.
func loadPipe(ctx context.Context, rawURL string, o Options) (*Pipe, error) {
	Logger().Info("imagepipe: loading source", "url", rawURL)

	img := NewImage(o.Loader)
	select {
	case err := <-img.SetSource(ctx, rawURL):
		if err != nil {
			return nil, &SourceLoadError{URL: rawURL, Err: err}
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p, err := newPipe(DecodableSource(img), o)
	if err != nil {
		if errors.Is(err, ErrNotLoaded) {
			return nil, &SourceLoadError{URL: rawURL, Err: err}
		}
		return nil, err
	}
	return p, nil
}
