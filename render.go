package imagepipe

import (
	"context"
	"fmt"
	"math"

	"github.com/gogpu/imagepipe/internal/parallel"
	"github.com/gogpu/imagepipe/surface"
)

// sampleBias moves each sample point into the interior of its source texel
// so floor-based lookups never land on a cell boundary.
const sampleBias = 0.499

// maxTargetDepth bounds element container unwrapping in TargetOf.
const maxTargetDepth = 16

// TargetKind identifies the representation held by a Target.
type TargetKind uint8

const (
	// TargetInvalid is the zero value.
	TargetInvalid TargetKind = iota

	// TargetBuffer writes into a *PixelBuffer.
	TargetBuffer

	// TargetSurface writes into a raster surface.
	TargetSurface

	// TargetContext writes through a surface's 2D context.
	TargetContext

	// TargetImage assigns rendered content to an ImageSink.
	TargetImage
)

// String returns a string representation of the target kind.
func (k TargetKind) String() string {
	switch k {
	case TargetBuffer:
		return "Buffer"
	case TargetSurface:
		return "Surface"
	case TargetContext:
		return "Context"
	case TargetImage:
		return "Image"
	default:
		return "Invalid"
	}
}

// Target is a render destination. It is a closed set created with the
// *Target constructors or TargetOf.
type Target interface {
	Kind() TargetKind
	isTarget()
}

type (
	bufferTarget  struct{ buf *PixelBuffer }
	surfaceTarget struct{ surf surface.Surface }
	contextTarget struct{ ctx surface.Context }
	imageTarget   struct{ sink ImageSink }
)

func (bufferTarget) Kind() TargetKind  { return TargetBuffer }
func (surfaceTarget) Kind() TargetKind { return TargetSurface }
func (contextTarget) Kind() TargetKind { return TargetContext }
func (imageTarget) Kind() TargetKind   { return TargetImage }

func (bufferTarget) isTarget()  {}
func (surfaceTarget) isTarget() {}
func (contextTarget) isTarget() {}
func (imageTarget) isTarget()   {}

// BufferTarget renders into buf.
func BufferTarget(buf *PixelBuffer) Target { return bufferTarget{buf: buf} }

// SurfaceTarget renders into s.
func SurfaceTarget(s surface.Surface) Target { return surfaceTarget{surf: s} }

// ContextTarget renders through ctx.
func ContextTarget(ctx surface.Context) Target { return contextTarget{ctx: ctx} }

// ImageTarget renders into an image sink such as *Image.
func ImageTarget(sink ImageSink) Target { return imageTarget{sink: sink} }

// TargetOf classifies v as a Target: Target, *PixelBuffer, surface.Context,
// surface.Surface, ImageSink or ElementContainer (unwrapped). Other values
// yield an *InvalidTargetError.
func TargetOf(v any) (Target, error) {
	for range maxTargetDepth {
		if isNil(v) {
			return nil, &InvalidTargetError{Value: v}
		}
		switch t := v.(type) {
		case Target:
			return t, nil
		case *PixelBuffer:
			return bufferTarget{buf: t}, nil
		case surface.Context:
			return contextTarget{ctx: t}, nil
		case surface.Surface:
			return surfaceTarget{surf: t}, nil
		case ImageSink:
			return imageTarget{sink: t}, nil
		case ElementContainer:
			v = t.Element()
		default:
			return nil, &InvalidTargetError{Value: v}
		}
	}
	return nil, &InvalidTargetError{Value: v}
}

// Placement positions rendered output inside a target.
//
// (DX, DY) is the top-left destination corner and DW x DH the destination
// size the pipe is rescaled to. A zero DW or DH means the pipe's native size
// for surface, context and image targets, and the buffer's own size for
// buffer targets.
type Placement struct {
	DX, DY int
	DW, DH int
}

// Renderer rasterizes pipes into targets.
//
// A Renderer created with WithWorkers splits rows across a worker pool;
// it must be closed with Close when no longer needed.
//
// Thread safety: Renderer methods are safe for concurrent use.
type Renderer struct {
	backend string
	pool    *parallel.WorkerPool
}

// defaultRenderer backs the package-level rendering functions.
var defaultRenderer = &Renderer{}

// NewRenderer creates a renderer with the given options.
// Without WithWorkers it renders on the calling goroutine.
func NewRenderer(opts ...RenderOption) *Renderer {
	var o renderOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	r := &Renderer{backend: o.backend}
	switch {
	case o.workers < 0:
		r.pool = parallel.NewWorkerPool(0)
	case o.workers > 1:
		r.pool = parallel.NewWorkerPool(o.workers)
	}
	return r
}

// Close stops the renderer's worker pool, if any.
// Rendering after Close still works but runs sequentially.
func (r *Renderer) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Workers returns the number of rasterization goroutines, 1 for a
// sequential renderer.
func (r *Renderer) Workers() int {
	if r.pool == nil {
		return 1
	}
	return r.pool.Workers()
}

// Rasterize renders p into a new buffer of its native size.
func (r *Renderer) Rasterize(p Sampler) *PixelBuffer {
	dst := mustPixelBuffer(p.Width(), p.Height())
	r.rasterizeInto(p, dst)
	return dst
}

// RasterizeSize renders p rescaled to width x height.
// Returns ErrInvalidDimensions for negative sizes.
func (r *Renderer) RasterizeSize(p Sampler, width, height int) (*PixelBuffer, error) {
	dst, err := NewPixelBuffer(width, height)
	if err != nil {
		return nil, err
	}
	r.rasterizeInto(p, dst)
	return dst, nil
}

// RenderSurface renders p into a newly allocated surface of its native size.
// The caller owns the surface and must close it.
func (r *Renderer) RenderSurface(p Sampler) (surface.Surface, error) {
	surf, err := surface.Allocate(r.backend, p.Width(), p.Height())
	if err != nil {
		return nil, err
	}
	surf.Context().PutImageData(r.Rasterize(p).NRGBA(), 0, 0)
	return surf, nil
}

// Render draws p into target according to at.
//
// Buffer, surface and context targets complete synchronously. Image sink
// targets block until the sink has loaded the rendered content, the load
// fails (*SinkLoadError), or ctx is done.
func (r *Renderer) Render(ctx context.Context, p Sampler, target Target, at Placement) error {
	if at.DW < 0 || at.DH < 0 {
		return ErrInvalidDimensions
	}

	if target == nil || isNil(targetHandle(target)) {
		return &InvalidTargetError{Value: target}
	}
	Logger().Debug("imagepipe: render", "target", target.Kind(), "placement", at)

	switch t := target.(type) {
	case bufferTarget:
		r.renderBuffer(p, t.buf, at)
		return nil
	case surfaceTarget:
		r.renderContext(p, t.surf.Context(), at)
		return nil
	case contextTarget:
		r.renderContext(p, t.ctx, at)
		return nil
	case imageTarget:
		return r.renderImage(ctx, p, t.sink, at)
	default:
		return &InvalidTargetError{Value: target}
	}
}

// targetHandle returns the value wrapped by a target, for nil checks.
func targetHandle(target Target) any {
	switch t := target.(type) {
	case bufferTarget:
		return t.buf
	case surfaceTarget:
		return t.surf
	case contextTarget:
		return t.ctx
	case imageTarget:
		return t.sink
	default:
		return target
	}
}

// renderBuffer fills dst directly when the placement covers it exactly and
// otherwise copies an intermediate rendering in, clipped.
func (r *Renderer) renderBuffer(p Sampler, dst *PixelBuffer, at Placement) {
	dw, dh := at.DW, at.DH
	if dw == 0 {
		dw = dst.Width()
	}
	if dh == 0 {
		dh = dst.Height()
	}

	if at.DX == 0 && at.DY == 0 && dw == dst.Width() && dh == dst.Height() {
		r.rasterizeInto(p, dst)
		return
	}

	tmp := mustPixelBuffer(dw, dh)
	r.rasterizeInto(p, tmp)
	tmp.CopyTo(dst, at.DX, at.DY)
}

// renderContext renders into an intermediate buffer and writes it through ctx.
func (r *Renderer) renderContext(p Sampler, ctx surface.Context, at Placement) {
	dw, dh := at.DW, at.DH
	if dw == 0 {
		dw = p.Width()
	}
	if dh == 0 {
		dh = p.Height()
	}

	tmp := mustPixelBuffer(dw, dh)
	r.rasterizeInto(p, tmp)
	ctx.PutImageData(tmp.NRGBA(), at.DX, at.DY)
}

// renderImage renders onto an intermediate surface large enough for the
// placement, exports it and hands the result to sink.
func (r *Renderer) renderImage(ctx context.Context, p Sampler, sink ImageSink, at Placement) error {
	dw, dh := at.DW, at.DH
	if dw == 0 {
		dw = p.Width()
	}
	if dh == 0 {
		dh = p.Height()
	}

	surf, err := surface.Allocate(r.backend, max(at.DX+dw, 0), max(at.DY+dh, 0))
	if err != nil {
		return err
	}
	defer closeSurface(surf)

	r.renderContext(p, surf.Context(), Placement{DX: at.DX, DY: at.DY, DW: dw, DH: dh})

	exp, ok := surf.(surface.Exporter)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotExportable, surf)
	}
	src, err := exp.DataURL()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotExportable, err)
	}

	select {
	case err := <-sink.SetSource(ctx, src):
		if err != nil {
			return &SinkLoadError{Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rasterizeInto is the rendering primitive: it resamples p to dst's size.
// Destination pixel (x, y) takes the sample at
// (round(x/dw*sw)+bias, round(y/dh*sh)+bias).
func (r *Renderer) rasterizeInto(p Sampler, dst *PixelBuffer) {
	dw, dh := dst.Width(), dst.Height()
	if dw == 0 || dh == 0 {
		return
	}
	sw, sh := float64(p.Width()), float64(p.Height())

	rows := func(start, end int) {
		for y := start; y < end; y++ {
			py := roundHalfUp(float64(y)/float64(dh)*sh) + sampleBias
			row := dst.data[y*dw*4 : (y+1)*dw*4]
			for x := range dw {
				px := roundHalfUp(float64(x)/float64(dw)*sw) + sampleBias
				c := p.Get(px, py).Bytes()
				copy(row[x*4:x*4+4], c[:])
			}
		}
	}

	if r.pool == nil || !r.pool.IsRunning() || dh < 2 {
		rows(0, dh)
		return
	}

	bands := parallel.Bands(dh, r.pool.Workers())
	work := make([]func(), len(bands))
	for i, b := range bands {
		work[i] = func() { rows(b.Start, b.End) }
	}
	r.pool.ExecuteAll(work)
}

// Rasterize renders p into a new buffer of its native size.
func Rasterize(p Sampler) *PixelBuffer {
	return defaultRenderer.Rasterize(p)
}

// RasterizeSize renders p rescaled to width x height.
func RasterizeSize(p Sampler, width, height int) (*PixelBuffer, error) {
	return defaultRenderer.RasterizeSize(p, width, height)
}

// RenderSurface renders p into a newly allocated surface of its native size.
func RenderSurface(p Sampler) (surface.Surface, error) {
	return defaultRenderer.RenderSurface(p)
}

// Render draws p into target according to at. See Renderer.Render.
func Render(ctx context.Context, p Sampler, target Target, at Placement) error {
	return defaultRenderer.Render(ctx, p, target, at)
}

// roundHalfUp rounds v to the nearest integer, with halves rounding up.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
