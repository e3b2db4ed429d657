package imagepipe

import (
	"image"
	"net/url"
	"reflect"
	"strings"

	"github.com/gogpu/imagepipe/surface"
)

// SourceKind identifies the representation held by a Source.
type SourceKind uint8

const (
	// SourceInvalid is never produced by SourceOf; it is the zero value.
	SourceInvalid SourceKind = iota

	// SourceBuffer is a canonical *PixelBuffer.
	SourceBuffer

	// SourceContext is the 2D context of a raster surface.
	SourceContext

	// SourceSurface is a raster surface.
	SourceSurface

	// SourceDecodable is a decode-capable image handle (including plain
	// image.Image values).
	SourceDecodable

	// SourcePipe is an existing sampling pipe.
	SourcePipe

	// SourceContainer wraps another source value.
	SourceContainer

	// SourceURL is a URL that must be loaded first.
	SourceURL
)

// String returns a string representation of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceBuffer:
		return "Buffer"
	case SourceContext:
		return "Context"
	case SourceSurface:
		return "Surface"
	case SourceDecodable:
		return "Decodable"
	case SourcePipe:
		return "Pipe"
	case SourceContainer:
		return "Container"
	case SourceURL:
		return "URL"
	default:
		return "Invalid"
	}
}

// Source is one of the supported input representations. It is a closed
// set: values are created with the *Source constructors or SourceOf.
type Source interface {
	Kind() SourceKind
	isSource()
}

type (
	bufferSource struct{ buf *PixelBuffer }

	contextSource struct {
		ctx   surface.Context
		owned surface.Surface // intermediate surface to close after reading
	}

	surfaceSource struct {
		surf  surface.Surface
		owned bool
	}

	decodableSource struct{ d Decodable }
	pipeSource      struct{ p Sampler }
	containerSource struct{ c ElementContainer }
	urlSource       struct{ url string }
)

func (bufferSource) Kind() SourceKind    { return SourceBuffer }
func (contextSource) Kind() SourceKind   { return SourceContext }
func (surfaceSource) Kind() SourceKind   { return SourceSurface }
func (decodableSource) Kind() SourceKind { return SourceDecodable }
func (pipeSource) Kind() SourceKind      { return SourcePipe }
func (containerSource) Kind() SourceKind { return SourceContainer }
func (urlSource) Kind() SourceKind       { return SourceURL }

func (bufferSource) isSource()    {}
func (contextSource) isSource()   {}
func (surfaceSource) isSource()   {}
func (decodableSource) isSource() {}
func (pipeSource) isSource()      {}
func (containerSource) isSource() {}
func (urlSource) isSource()       {}

// BufferSource wraps a canonical pixel buffer.
func BufferSource(b *PixelBuffer) Source { return bufferSource{buf: b} }

// ContextSource wraps a surface's 2D context.
func ContextSource(c surface.Context) Source { return contextSource{ctx: c} }

// SurfaceSource wraps a raster surface.
func SurfaceSource(s surface.Surface) Source { return surfaceSource{surf: s} }

// DecodableSource wraps a decode-capable image handle.
func DecodableSource(d Decodable) Source { return decodableSource{d: d} }

// ImageSource wraps an already decoded image.
func ImageSource(img image.Image) Source { return decodableSource{d: decodedImage{img: img}} }

// PipeSource wraps an existing sampling pipe; it is rasterized at its own
// size before sampling.
func PipeSource(p Sampler) Source { return pipeSource{p: p} }

// ContainerSource wraps an element container.
func ContainerSource(c ElementContainer) Source { return containerSource{c: c} }

// URLSource wraps a URL to be loaded.
func URLSource(rawURL string) Source { return urlSource{url: rawURL} }

// SourceOf classifies v as a Source. Checks run in a fixed order: Source,
// *PixelBuffer, Sampler, surface.Context, surface.Surface, Decodable,
// image.Image, ElementContainer, string and *url.URL. Any other value,
// including nil, yields an *InvalidSourceError.
func SourceOf(v any) (Source, error) {
	if isNil(v) {
		return nil, &InvalidSourceError{Value: v, Reason: "nil source"}
	}
	switch s := v.(type) {
	case Source:
		return s, nil
	case *PixelBuffer:
		return bufferSource{buf: s}, nil
	case Sampler:
		return pipeSource{p: s}, nil
	case surface.Context:
		return contextSource{ctx: s}, nil
	case surface.Surface:
		return surfaceSource{surf: s}, nil
	case Decodable:
		return decodableSource{d: s}, nil
	case image.Image:
		return ImageSource(s), nil
	case ElementContainer:
		return containerSource{c: s}, nil
	case string:
		return urlSource{url: s}, nil
	case *url.URL:
		return urlSource{url: s.String()}, nil
	default:
		return nil, &InvalidSourceError{Value: v}
	}
}

// maxNormalizeSteps bounds the stage loop so container cycles terminate.
const maxNormalizeSteps = 16

// normalize turns src into a canonical pixel buffer by walking the stage
// chain container -> pipe/decodable -> surface -> context -> buffer.
// URL sources are rejected with ErrAsyncSource.
func normalize(src Source, o Options) (*PixelBuffer, error) {
	log := Logger()
	origin := src

	for range maxNormalizeSteps {
		if src == nil || isNil(handle(src)) {
			return nil, &InvalidSourceError{Value: src, Reason: "nil " + kindName(src)}
		}
		log.Debug("imagepipe: normalize", "stage", src.Kind())

		switch s := src.(type) {
		case bufferSource:
			return s.buf, nil

		case contextSource:
			if s.owned == nil {
				return readContext(s.ctx)
			}
			var buf *PixelBuffer
			var err error
			if snap, ok := s.owned.(surface.Snapshotter); ok {
				buf = FromNRGBA(snap.Snapshot())
			} else {
				buf, err = readContext(s.ctx)
			}
			closeSurface(s.owned)
			return buf, err

		case surfaceSource:
			next := contextSource{ctx: s.surf.Context()}
			if s.owned {
				next.owned = s.surf
			}
			src = next

		case decodableSource:
			surf, err := drawDecodable(s.d, o.Backend)
			if err != nil {
				return nil, err
			}
			src = surfaceSource{surf: surf, owned: true}

		case pipeSource:
			src = bufferSource{buf: Rasterize(s.p)}

		case containerSource:
			next, err := SourceOf(s.c.Element())
			if err != nil {
				return nil, err
			}
			src = next

		case urlSource:
			return nil, ErrAsyncSource

		default:
			return nil, &InvalidSourceError{Value: src}
		}
	}

	return nil, &InvalidSourceError{Value: origin, Reason: "too many nested containers"}
}

// handle returns the value wrapped by a stage, for nil checks.
func handle(src Source) any {
	switch s := src.(type) {
	case bufferSource:
		return s.buf
	case contextSource:
		return s.ctx
	case surfaceSource:
		return s.surf
	case decodableSource:
		if d, ok := s.d.(decodedImage); ok {
			return d.img
		}
		return s.d
	case pipeSource:
		return s.p
	case containerSource:
		return s.c
	default:
		return src
	}
}

func kindName(src Source) string {
	if src == nil {
		return "source"
	}
	return strings.ToLower(src.Kind().String())
}

// isNil reports whether v is nil or an interface holding a nil pointer,
// map, slice, func or channel.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// readContext reads the full extent of the context's surface.
func readContext(ctx surface.Context) (*PixelBuffer, error) {
	surf := ctx.Surface()
	w, h := surf.Width(), surf.Height()

	img, err := ctx.GetImageData(image.Rect(0, 0, w, h))
	if err != nil {
		return nil, err
	}

	// GetImageData returns a fresh copy; adopt it when already canonical.
	if img.Rect == image.Rect(0, 0, w, h) && img.Stride == w*4 && len(img.Pix) == w*h*4 {
		return PixelBufferFromBytes(w, h, img.Pix)
	}
	return FromNRGBA(img), nil
}

// rawDecodable is a Decodable that exposes its decoded pixels. Those are
// copied onto the intermediate surface verbatim instead of composited, so
// translucent texels survive normalization unchanged.
type rawDecodable interface {
	Decodable
	Decoded() image.Image
}

// drawDecodable draws d onto a freshly allocated surface of its natural size.
func drawDecodable(d Decodable, backend string) (surface.Surface, error) {
	if r, ok := d.(rawDecodable); ok {
		img := r.Decoded()
		if img == nil {
			return nil, ErrNotLoaded
		}
		b := img.Bounds()
		surf, err := allocateIntermediate(backend, b.Dx(), b.Dy())
		if err != nil {
			return nil, err
		}
		nrgba, ok := img.(*image.NRGBA)
		if !ok {
			nrgba = FromImage(img).NRGBA()
		}
		surf.Context().PutImageData(nrgba, 0, 0)
		return surf, nil
	}

	w, h := d.NaturalSize()
	surf, err := allocateIntermediate(backend, w, h)
	if err != nil {
		return nil, err
	}
	if err := d.DrawTo(surf.Context(), 0, 0); err != nil {
		closeSurface(surf)
		return nil, err
	}
	return surf, nil
}

func allocateIntermediate(backend string, w, h int) (surface.Surface, error) {
	surf, err := surface.Allocate(backend, w, h)
	if err != nil {
		return nil, err
	}
	Logger().Debug("imagepipe: intermediate surface", "width", w, "height", h, "backend", backend)
	return surf, nil
}

// closeSurface releases an intermediate surface, logging failures.
func closeSurface(s surface.Surface) {
	if err := s.Close(); err != nil {
		Logger().Warn("imagepipe: close intermediate surface", "err", err)
	}
}
