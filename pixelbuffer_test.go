package imagepipe

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPixelBuffer(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantLen int
		wantErr error
	}{
		{"regular", 3, 2, 24, nil},
		{"zero width", 0, 5, 0, nil},
		{"zero both", 0, 0, 0, nil},
		{"negative width", -1, 2, 0, ErrInvalidDimensions},
		{"negative height", 2, -1, 0, ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb, err := NewPixelBuffer(tt.w, tt.h)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, pb.Data(), tt.wantLen)
			assert.Equal(t, tt.wantLen == 0, pb.IsEmpty())
		})
	}
}

func TestPixelBufferFromBytes(t *testing.T) {
	data := []uint8{1, 2, 3, 4, 5, 6, 7, 8}
	pb, err := PixelBufferFromBytes(2, 1, data)
	require.NoError(t, err)

	// Wraps without copying.
	data[4] = 99
	assert.Equal(t, [4]uint8{99, 6, 7, 8}, pb.GetPixel(1, 0).Bytes())

	_, err = PixelBufferFromBytes(2, 2, data)
	assert.ErrorIs(t, err, ErrDataSize)
	_, err = PixelBufferFromBytes(-2, 1, data)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestPixelBuffer_SetGetPixel(t *testing.T) {
	pb := mustPixelBuffer(4, 3)
	c := RGBAFromBytes(10, 20, 30, 40)
	pb.SetPixel(2, 1, c)

	i := (1*4 + 2) * 4
	assert.Equal(t, []uint8{10, 20, 30, 40}, pb.Data()[i:i+4])
	assert.Equal(t, c, pb.GetPixel(2, 1))
}

func TestPixelBuffer_OutOfBounds(t *testing.T) {
	pb := mustPixelBuffer(2, 2)
	pb.Clear(Red)
	original := pb.Clone()

	oob := []struct{ x, y int }{
		{-1, 0}, {2, 0}, {0, -1}, {0, 2}, {-100, -100}, {100, 100},
	}
	for _, c := range oob {
		pb.SetPixel(c.x, c.y, Blue)
		assert.Equal(t, Transparent, pb.GetPixel(c.x, c.y), "(%d, %d)", c.x, c.y)
		assert.Equal(t, -1, pb.PixelOffset(c.x, c.y), "(%d, %d)", c.x, c.y)
	}

	assert.Equal(t, original.Data(), pb.Data(), "out-of-bounds write modified data")
}

func TestPixelBuffer_CloneEqual(t *testing.T) {
	pb := mustPixelBuffer(3, 3)
	pb.Clear(Green)

	clone := pb.Clone()
	require.True(t, pb.Equal(clone))

	clone.SetPixel(0, 0, Red)
	assert.False(t, pb.Equal(clone), "clone shares memory")
	assert.Equal(t, Green, pb.GetPixel(0, 0))

	assert.False(t, pb.Equal(mustPixelBuffer(3, 2)))
}

func TestPixelBuffer_CopyTo(t *testing.T) {
	src := mustPixelBuffer(2, 2)
	src.Clear(Red)

	dst := mustPixelBuffer(3, 3)
	dst.Clear(Blue)

	// Partially outside: only (2,2) is covered.
	src.CopyTo(dst, 2, 2)

	for y := range 3 {
		for x := range 3 {
			want := Blue
			if x == 2 && y == 2 {
				want = Red
			}
			assert.Equal(t, want, dst.GetPixel(x, y), "(%d, %d)", x, y)
		}
	}

	// Fully outside: no-op.
	src.CopyTo(dst, -5, -5)
	assert.Equal(t, Blue, dst.GetPixel(0, 0))
}

func TestPixelBuffer_NRGBAView(t *testing.T) {
	pb := mustPixelBuffer(2, 2)
	img := pb.NRGBA()
	img.SetNRGBA(1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	assert.Equal(t, [4]uint8{1, 2, 3, 4}, pb.GetPixel(1, 1).Bytes())
}

func TestFromNRGBA_SubImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(2, 3, color.NRGBA{R: 200, A: 255})

	sub, ok := img.SubImage(image.Rect(1, 2, 3, 4)).(*image.NRGBA)
	require.True(t, ok)

	pb := FromNRGBA(sub)
	assert.Equal(t, 2, pb.Width())
	assert.Equal(t, 2, pb.Height())
	assert.Equal(t, [4]uint8{200, 0, 0, 255}, pb.GetPixel(1, 1).Bytes())

	empty := FromNRGBA(image.NewNRGBA(image.Rect(0, 0, 0, 3)))
	assert.True(t, empty.IsEmpty())
}

func TestFromImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(1, 0, color.Gray{Y: 128})

	pb := FromImage(gray)
	assert.Equal(t, [4]uint8{128, 128, 128, 255}, pb.GetPixel(1, 0).Bytes())

	// A PixelBuffer source is cloned.
	clone := FromImage(pb)
	clone.SetPixel(0, 0, Red)
	assert.NotEqual(t, Red, pb.GetPixel(0, 0))
}

func TestPixelBuffer_ImageInterface(t *testing.T) {
	pb := mustPixelBuffer(2, 2)
	pb.SetPixel(0, 1, RGBAFromBytes(255, 0, 0, 128))

	assert.Equal(t, image.Rect(0, 0, 2, 2), pb.Bounds())
	assert.Equal(t, color.NRGBAModel, pb.ColorModel())
	assert.Equal(t, color.NRGBA{R: 255, A: 128}, pb.At(0, 1))
	assert.Equal(t, color.NRGBA{}, pb.At(5, 5))
}
