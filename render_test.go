package imagepipe

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/imagepipe/surface"
)

func mustPipe(t *testing.T, src any, opts ...Option) *Pipe {
	t.Helper()
	p, err := NewImagePipe(src, opts...)
	require.NoError(t, err)
	return p
}

func TestRasterize_NearestRoundTrip(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {2, 2}, {7, 5}, {49, 3}, {13, 31}}
	for _, size := range sizes {
		pb := patternBuffer(size.w, size.h)
		p := mustPipe(t, pb, WithNearest(true))

		got := Rasterize(p)
		assert.True(t, pb.Equal(got), "%dx%d round trip differs", size.w, size.h)
	}
}

func TestRasterize_UniformStaysUniform(t *testing.T) {
	c := RGBAFromBytes(10, 200, 30, 180)
	sources := []struct{ w, h int }{{1, 1}, {3, 2}, {5, 5}, {16, 9}}
	targets := []struct{ w, h int }{{1, 1}, {4, 7}, {10, 3}, {33, 17}}

	for _, src := range sources {
		pb := mustPixelBuffer(src.w, src.h)
		pb.Clear(c)

		for _, nearest := range []bool{true, false} {
			// Edge samples reach past the source, so the border color must
			// match for the output to stay uniform.
			p := mustPipe(t, pb, WithNearest(nearest), WithOOB(c))

			for _, dst := range targets {
				out, err := RasterizeSize(p, dst.w, dst.h)
				require.NoError(t, err)
				for y := range dst.h {
					for x := range dst.w {
						require.Equal(t, c.Bytes(), out.GetPixel(x, y).Bytes(),
							"%dx%d -> %dx%d nearest=%v at (%d,%d)", src.w, src.h, dst.w, dst.h, nearest, x, y)
					}
				}
			}
		}
	}
}

func TestRasterizeSize_RoundsHalfUp(t *testing.T) {
	pb := mustPixelBuffer(2, 1)
	pb.SetPixel(0, 0, Red)
	pb.SetPixel(1, 0, Blue)
	oob := RGBAFromBytes(9, 9, 9, 9)
	p := mustPipe(t, pb, WithNearest(true), WithOOB(oob))

	// px = round(x/4*2) = 0, 1 (0.5 rounds up), 1, 2 (past the edge).
	out, err := RasterizeSize(p, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, Red, out.GetPixel(0, 0))
	assert.Equal(t, Blue, out.GetPixel(1, 0))
	assert.Equal(t, Blue, out.GetPixel(2, 0))
	assert.Equal(t, oob.Bytes(), out.GetPixel(3, 0).Bytes())
}

func TestRasterizeSize_Downscale(t *testing.T) {
	pb := mustPixelBuffer(4, 1)
	for x, c := range []RGBA{Red, Green, Blue, White} {
		pb.SetPixel(x, 0, c)
	}
	p := mustPipe(t, pb, WithNearest(true))

	out, err := RasterizeSize(p, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, Red, out.GetPixel(0, 0))
	assert.Equal(t, Blue, out.GetPixel(1, 0))
}

func TestRasterizeSize_Dimensions(t *testing.T) {
	p := mustPipe(t, patternBuffer(3, 3))

	_, err := RasterizeSize(p, -1, 3)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	out, err := RasterizeSize(p, 0, 0)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())

	// Zero-extent pipes rasterize to nothing at native size and to the
	// border color when scaled up.
	empty := mustPipe(t, mustPixelBuffer(0, 0), WithOOB(Red))
	assert.True(t, Rasterize(empty).IsEmpty())
	out, err = RasterizeSize(empty, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, Red, out.GetPixel(1, 1))
}

func TestRenderer_ParallelMatchesSequential(t *testing.T) {
	p := mustPipe(t, patternBuffer(37, 23))

	r := NewRenderer(WithWorkers(4))
	defer r.Close()
	assert.Equal(t, 4, r.Workers())

	want, err := RasterizeSize(p, 50, 31)
	require.NoError(t, err)
	got, err := r.RasterizeSize(p, 50, 31)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	r.Close()
	got, err = r.RasterizeSize(p, 50, 31)
	require.NoError(t, err)
	assert.True(t, want.Equal(got), "closed renderer should fall back to sequential")
}

func TestNewRenderer_Workers(t *testing.T) {
	seq := NewRenderer()
	defer seq.Close()
	assert.Equal(t, 1, seq.Workers())

	one := NewRenderer(WithWorkers(1))
	defer one.Close()
	assert.Equal(t, 1, one.Workers())

	all := NewRenderer(WithWorkers(-1))
	defer all.Close()
	assert.GreaterOrEqual(t, all.Workers(), 1)
}

func TestRender_BufferTarget(t *testing.T) {
	ctx := context.Background()
	p := mustPipe(t, patternBuffer(3, 2))

	t.Run("default placement fills buffer", func(t *testing.T) {
		dst := mustPixelBuffer(5, 4)
		require.NoError(t, Render(ctx, p, BufferTarget(dst), Placement{}))

		want, err := RasterizeSize(p, 5, 4)
		require.NoError(t, err)
		assert.True(t, want.Equal(dst))
	})

	t.Run("offset is clipped", func(t *testing.T) {
		one := mustPixelBuffer(1, 1)
		one.Clear(Red)
		// Upscaled samples past the edge use the border color.
		rp := mustPipe(t, one, WithNearest(true), WithOOB(Red))

		dst := mustPixelBuffer(3, 3)
		dst.Clear(Blue)
		require.NoError(t, Render(ctx, rp, BufferTarget(dst), Placement{DX: 1, DY: 1, DW: 1, DH: 1}))

		for y := range 3 {
			for x := range 3 {
				want := Blue
				if x == 1 && y == 1 {
					want = Red
				}
				assert.Equal(t, want, dst.GetPixel(x, y), "(%d,%d)", x, y)
			}
		}

		// Partially outside the buffer: only the overlap is written.
		require.NoError(t, Render(ctx, rp, BufferTarget(dst), Placement{DX: 2, DY: -1, DW: 2, DH: 2}))
		assert.Equal(t, Red, dst.GetPixel(2, 0))
		assert.Equal(t, Blue, dst.GetPixel(2, 1))
		assert.Equal(t, Blue, dst.GetPixel(0, 0))
	})
}

func TestRender_SurfaceAndContextTargets(t *testing.T) {
	ctx := context.Background()
	pb := rgbwBuffer()
	p := mustPipe(t, pb, WithNearest(true))

	tests := []struct {
		name   string
		target func(s *surface.ImageSurface) Target
	}{
		{"surface", func(s *surface.ImageSurface) Target { return SurfaceTarget(s) }},
		{"context", func(s *surface.ImageSurface) Target { return ContextTarget(s.Context()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := surface.NewImageSurface(4, 4)
			defer s.Close()

			// Zero DW/DH means the pipe's native 2x2 size.
			require.NoError(t, Render(ctx, p, tt.target(s), Placement{DX: 2, DY: 2}))

			got := FromNRGBA(s.Snapshot())
			assert.Equal(t, Transparent, got.GetPixel(0, 0))
			assert.Equal(t, Red, got.GetPixel(2, 2))
			assert.Equal(t, Green, got.GetPixel(3, 2))
			assert.Equal(t, Blue, got.GetPixel(2, 3))
			assert.Equal(t, White, got.GetPixel(3, 3))
		})
	}
}

func TestRenderSurface(t *testing.T) {
	pb := patternBuffer(6, 4)
	p := mustPipe(t, pb, WithNearest(true))

	s, err := RenderSurface(p)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.Equal(t, 6, s.Width())
	assert.Equal(t, 4, s.Height())

	img, err := s.Context().GetImageData(image.Rect(0, 0, 6, 4))
	require.NoError(t, err)
	assert.True(t, pb.Equal(FromNRGBA(img)))
}

func TestRender_ImageTarget(t *testing.T) {
	ctx := context.Background()
	pb := rgbwBuffer()
	p := mustPipe(t, pb, WithNearest(true))

	img := NewImage(nil)
	require.NoError(t, Render(ctx, p, ImageTarget(img), Placement{}))

	require.True(t, img.Complete())
	assert.Contains(t, img.Src(), "data:image/png;base64,")
	w, h := img.NaturalSize()
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)

	// The sink is a valid source again.
	back := Rasterize(mustPipe(t, img, WithNearest(true)))
	assert.True(t, pb.Equal(back))
}

func TestRender_ImageTargetPlacement(t *testing.T) {
	ctx := context.Background()
	one := mustPixelBuffer(1, 1)
	one.Clear(Red)
	p := mustPipe(t, one, WithNearest(true))

	img := NewImage(nil)
	require.NoError(t, Render(ctx, p, ImageTarget(img), Placement{DX: 1, DY: 1, DW: 2, DH: 2}))

	w, h := img.NaturalSize()
	assert.Equal(t, 3, w)
	assert.Equal(t, 3, h)
}

// fakeSink reports a fixed load result, or never reports when block is set.
type fakeSink struct {
	err   error
	block bool
	src   string
}

func (s *fakeSink) SetSource(ctx context.Context, src string) <-chan error {
	s.src = src
	ch := make(chan error, 1)
	if !s.block {
		ch <- s.err
	}
	return ch
}

func TestRender_ImageTargetErrors(t *testing.T) {
	p := mustPipe(t, rgbwBuffer())

	t.Run("sink load failure", func(t *testing.T) {
		cause := errors.New("decode failed")
		err := Render(context.Background(), p, ImageTarget(&fakeSink{err: cause}), Placement{})

		var sinkErr *SinkLoadError
		require.ErrorAs(t, err, &sinkErr)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("context done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		sink := &fakeSink{block: true}
		err := Render(ctx, p, ImageTarget(sink), Placement{})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotEmpty(t, sink.src)
	})
}

// plainSurface hides ImageSurface's DataURL method.
type plainSurface struct {
	s *surface.ImageSurface
}

func (p plainSurface) Width() int                { return p.s.Width() }
func (p plainSurface) Height() int               { return p.s.Height() }
func (p plainSurface) Context() surface.Context { return p.s.Context() }
func (p plainSurface) Close() error              { return p.s.Close() }

func TestRender_ImageTargetNotExportable(t *testing.T) {
	surface.Register("plain-test", 0, func(opts surface.Options) (surface.Surface, error) {
		return plainSurface{s: surface.NewImageSurface(opts.Width, opts.Height)}, nil
	}, nil)
	t.Cleanup(func() { surface.Unregister("plain-test") })

	r := NewRenderer(WithRenderBackend("plain-test"))
	defer r.Close()

	p := mustPipe(t, rgbwBuffer())
	err := r.Render(context.Background(), p, ImageTarget(NewImage(nil)), Placement{})
	assert.ErrorIs(t, err, ErrNotExportable)
}

func TestRender_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	p := mustPipe(t, rgbwBuffer())

	var targetErr *InvalidTargetError
	assert.ErrorAs(t, Render(ctx, p, nil, Placement{}), &targetErr)
	assert.ErrorAs(t, Render(ctx, p, BufferTarget(nil), Placement{}), &targetErr)

	nilTargets := []Target{
		SurfaceTarget(nil),
		SurfaceTarget((*surface.ImageSurface)(nil)),
		ContextTarget(nil),
		ImageTarget(nil),
		ImageTarget((*Image)(nil)),
	}
	for _, target := range nilTargets {
		require.NotPanics(t, func() {
			assert.ErrorAs(t, Render(ctx, p, target, Placement{}), &targetErr, "%v", target.Kind())
		})
	}
	for _, v := range []any{(*Image)(nil), (*surface.ImageSurface)(nil), container{el: (*PixelBuffer)(nil)}} {
		_, err := TargetOf(v)
		assert.ErrorAs(t, err, &targetErr, "%T", v)
	}
	assert.ErrorIs(t, Render(ctx, p, BufferTarget(mustPixelBuffer(1, 1)), Placement{DW: -1}), ErrInvalidDimensions)
}

// container is a test ElementContainer.
type container struct {
	el any
}

func (c container) Element() any { return c.el }

func TestTargetOf(t *testing.T) {
	s := surface.NewImageSurface(1, 1)
	defer s.Close()

	tests := []struct {
		name string
		v    any
		want TargetKind
	}{
		{"buffer", mustPixelBuffer(1, 1), TargetBuffer},
		{"surface", s, TargetSurface},
		{"context", s.Context(), TargetContext},
		{"image", NewImage(nil), TargetImage},
		{"target", BufferTarget(mustPixelBuffer(1, 1)), TargetBuffer},
		{"container", container{el: container{el: s}}, TargetSurface},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TargetOf(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Kind())
			assert.Equal(t, tt.want.String(), got.Kind().String())
		})
	}

	var targetErr *InvalidTargetError
	for _, v := range []any{nil, 42, "out.png", (*PixelBuffer)(nil), container{el: 3.5}} {
		_, err := TargetOf(v)
		assert.ErrorAs(t, err, &targetErr, "%T", v)
	}
}
