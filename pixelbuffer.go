package imagepipe

import (
	"bytes"
	"image"
	"image/color"
)

// PixelBuffer is the canonical raw pixel representation: a rectangular,
// row-major buffer of non-premultiplied RGBA bytes, 4 bytes per pixel.
//
// The byte length of Data is always Width*Height*4, and channel c of pixel
// (x, y) lives at index (y*Width+x)*4 + c. Zero-sized buffers are valid.
//
// A PixelBuffer handed to NewImagePipe is referenced, not copied, by the
// resulting pipe and must not be modified afterwards.
type PixelBuffer struct {
	width  int
	height int
	data   []uint8
}

// NewPixelBuffer creates a zeroed (transparent black) buffer with the given
// dimensions. Returns ErrInvalidDimensions if either dimension is negative.
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	if width < 0 || height < 0 {
		return nil, ErrInvalidDimensions
	}
	return &PixelBuffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}, nil
}

// PixelBufferFromBytes wraps existing RGBA data without copying.
// Returns ErrInvalidDimensions for negative dimensions and ErrDataSize if
// len(data) is not exactly width*height*4.
func PixelBufferFromBytes(width, height int, data []uint8) (*PixelBuffer, error) {
	if width < 0 || height < 0 {
		return nil, ErrInvalidDimensions
	}
	if len(data) != width*height*4 {
		return nil, ErrDataSize
	}
	return &PixelBuffer{width: width, height: height, data: data}, nil
}

// mustPixelBuffer is NewPixelBuffer for callers that already clamped sizes.
func mustPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		width:  max(width, 0),
		height: max(height, 0),
		data:   make([]uint8, max(width, 0)*max(height, 0)*4),
	}
}

// Width returns the width of the buffer.
func (p *PixelBuffer) Width() int {
	return p.width
}

// Height returns the height of the buffer.
func (p *PixelBuffer) Height() int {
	return p.height
}

// Data returns the raw pixel data (RGBA format).
func (p *PixelBuffer) Data() []uint8 {
	return p.data
}

// IsEmpty reports whether the buffer has no pixels.
func (p *PixelBuffer) IsEmpty() bool {
	return p.width == 0 || p.height == 0
}

// PixelOffset returns the byte offset of pixel (x, y), or -1 if the
// coordinates are outside the buffer.
func (p *PixelBuffer) PixelOffset(x, y int) int {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return -1
	}
	return (y*p.width + x) * 4
}

// SetPixel sets the color of a single pixel.
// Out-of-bounds coordinates are ignored.
func (p *PixelBuffer) SetPixel(x, y int, c RGBA) {
	i := p.PixelOffset(x, y)
	if i < 0 {
		return
	}
	b := c.Bytes()
	copy(p.data[i:i+4], b[:])
}

// GetPixel returns the color of a single pixel.
// Out-of-bounds coordinates return Transparent.
func (p *PixelBuffer) GetPixel(x, y int) RGBA {
	i := p.PixelOffset(x, y)
	if i < 0 {
		return Transparent
	}
	return rgbaFromSlice(p.data[i:])
}

// Clear fills the entire buffer with a color.
func (p *PixelBuffer) Clear(c RGBA) {
	b := c.Bytes()
	for i := 0; i < len(p.data); i += 4 {
		copy(p.data[i:i+4], b[:])
	}
}

// Clone returns a deep copy of the buffer.
func (p *PixelBuffer) Clone() *PixelBuffer {
	data := make([]uint8, len(p.data))
	copy(data, p.data)
	return &PixelBuffer{width: p.width, height: p.height, data: data}
}

// Equal reports whether both buffers have the same size and bytes.
func (p *PixelBuffer) Equal(other *PixelBuffer) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.width == other.width && p.height == other.height && bytes.Equal(p.data, other.data)
}

// CopyTo copies the buffer into dst with its top-left corner at (dx, dy).
// Pixels falling outside dst are dropped.
func (p *PixelBuffer) CopyTo(dst *PixelBuffer, dx, dy int) {
	r := image.Rect(dx, dy, dx+p.width, dy+p.height).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	n := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := ((y-dy)*p.width + (r.Min.X - dx)) * 4
		dstOff := (y*dst.width + r.Min.X) * 4
		copy(dst.data[dstOff:dstOff+n], p.data[src:src+n])
	}
}

// NRGBA returns an *image.NRGBA sharing the buffer's memory.
func (p *PixelBuffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.data,
		Stride: p.width * 4,
		Rect:   image.Rect(0, 0, p.width, p.height),
	}
}

// FromNRGBA copies an *image.NRGBA into a new buffer, honoring its stride and
// bounds origin.
func FromNRGBA(img *image.NRGBA) *PixelBuffer {
	bounds := img.Bounds()
	pb := mustPixelBuffer(bounds.Dx(), bounds.Dy())
	rowBytes := pb.width * 4
	if rowBytes == 0 {
		return pb
	}
	for y := range pb.height {
		src := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(pb.data[y*rowBytes:(y+1)*rowBytes], img.Pix[src:src+rowBytes])
	}
	return pb
}

// FromImage creates a pixel buffer from an image.
func FromImage(img image.Image) *PixelBuffer {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return FromNRGBA(nrgba)
	}
	if pb, ok := img.(*PixelBuffer); ok {
		return pb.Clone()
	}

	bounds := img.Bounds()
	pb := mustPixelBuffer(bounds.Dx(), bounds.Dy())
	for y := 0; y < pb.height; y++ {
		for x := 0; x < pb.width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := (y*pb.width + x) * 4
			pb.data[i+0] = c.R
			pb.data[i+1] = c.G
			pb.data[i+2] = c.B
			pb.data[i+3] = c.A
		}
	}
	return pb
}

// At implements the image.Image interface.
func (p *PixelBuffer) At(x, y int) color.Color {
	i := p.PixelOffset(x, y)
	if i < 0 {
		return color.NRGBA{}
	}
	return color.NRGBA{R: p.data[i], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// Bounds implements the image.Image interface.
func (p *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *PixelBuffer) ColorModel() color.Model {
	return color.NRGBAModel
}
