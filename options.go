package imagepipe

// Options is the sampling configuration used when building a pipe from a
// source.
type Options struct {
	// OOB is returned for every lookup outside the source bounds.
	// Default: Transparent.
	OOB RGBA

	// Nearest disables interpolation: coordinates are floored to the
	// containing texel. Default: false (bilinear).
	Nearest bool

	// Loader resolves URL sources. Default: DefaultLoader.
	Loader Loader

	// Backend names the surface registry backend used for intermediate
	// surfaces. Default: "" (best available).
	Backend string
}

// Option configures pipe creation.
// Use functional options to customize sampling behavior.
//
// Example:
//
//	// Bilinear sampling with a transparent border (defaults)
//	p, err := imagepipe.NewImagePipe(img)
//
//	// Nearest-neighbor sampling with an opaque magenta border
//	p, err := imagepipe.NewImagePipe(img,
//	    imagepipe.WithNearest(true),
//	    imagepipe.WithOOB(imagepipe.Hex("#ff00ff")))
type Option func(*Options)

// defaultOptions returns the default sampling configuration.
func defaultOptions() Options {
	return Options{
		OOB:     Transparent,
		Nearest: false,
		Loader:  DefaultLoader,
	}
}

// resolveOptions applies opts over the defaults.
func resolveOptions(opts []Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.Loader == nil {
		o.Loader = DefaultLoader
	}
	return o
}

// WithOOB sets the color returned for coordinates outside the source.
func WithOOB(c RGBA) Option {
	return func(o *Options) {
		o.OOB = c
	}
}

// WithNearest selects nearest-neighbor (true) or bilinear (false) sampling.
func WithNearest(nearest bool) Option {
	return func(o *Options) {
		o.Nearest = nearest
	}
}

// WithLoader sets the loader used to resolve URL sources.
func WithLoader(l Loader) Option {
	return func(o *Options) {
		o.Loader = l
	}
}

// WithBackend selects the surface backend for intermediate surfaces.
func WithBackend(name string) Option {
	return func(o *Options) {
		o.Backend = name
	}
}

// renderOptions holds Renderer configuration.
type renderOptions struct {
	workers int
	backend string
}

// RenderOption configures a Renderer.
type RenderOption func(*renderOptions)

// WithWorkers splits rasterization rows across n goroutines.
// n <= 1 keeps rendering on the calling goroutine; n < 0 uses GOMAXPROCS.
func WithWorkers(n int) RenderOption {
	return func(o *renderOptions) {
		o.workers = n
	}
}

// WithRenderBackend selects the surface backend for surfaces the renderer
// allocates.
func WithRenderBackend(name string) RenderOption {
	return func(o *renderOptions) {
		o.backend = name
	}
}
