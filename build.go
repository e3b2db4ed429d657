package imagepipe

import "github.com/gogpu/imagepipe/pipe2d"

// Pipe is a sampling pipe over colors: a width x height domain and a total
// function from real coordinates to RGBA.
type Pipe = pipe2d.Pipe[RGBA]

// Sampler is anything that can be rasterized: a sized color function.
// *Pipe implements Sampler.
type Sampler interface {
	Width() int
	Height() int
	Get(x, y float64) RGBA
}

var _ Sampler = (*Pipe)(nil)

// buildPipe wraps buf in a sampling pipe configured by o.
//
// The raw lookup returns the texel containing (x, y) when it lies inside
// [0,W)x[0,H) and o.OOB otherwise. Nearest mode floors coordinates before the
// lookup; bilinear mode blends the four surrounding texels, each of which is
// independently subject to the out-of-bounds color.
func buildPipe(buf *PixelBuffer, o Options) *Pipe {
	w, h := buf.Width(), buf.Height()
	fw, fh := float64(w), float64(h)
	data := buf.Data()
	oob := o.OOB

	raw := pipe2d.New(w, h, func(x, y float64) RGBA {
		// Written so that NaN fails the test.
		if !(x >= 0 && x < fw && y >= 0 && y < fh) {
			return oob
		}
		i := (int(y)*w + int(x)) * 4
		return rgbaFromSlice(data[i : i+4])
	})

	if o.Nearest {
		return raw.FloorCoordinates()
	}
	return raw.Interpolate(interpolateRGBA)
}

// interpolateRGBA blends horizontally along the top and bottom rows, then
// vertically between the two results.
func interpolateRGBA(tl, tr, bl, br RGBA, fx, fy float64) RGBA {
	top := tl.Blend(tr, fx)
	bottom := bl.Blend(br, fx)
	return top.Blend(bottom, fy)
}
