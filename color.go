package imagepipe

import (
	"image/color"
	"math"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1], where 1 corresponds to the stored
// byte value 255. Components are not premultiplied.
//
// RGBA is an immutable value: every operation returns a new color.
type RGBA struct {
	R, G, B, A float64
}

// Verify at compile time that RGBA implements color.Color.
var _ color.Color = RGBA{}

// RGBAFromBytes creates a color from 8-bit channel values.
func RGBAFromBytes(r, g, b, a uint8) RGBA {
	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

// rgbaFromSlice reads a color from the first four bytes of p.
func rgbaFromSlice(p []uint8) RGBA {
	return RGBAFromBytes(p[0], p[1], p[2], p[3])
}

// Bytes returns the color as four 8-bit channel values in R, G, B, A order.
// Channels are clamped to [0, 255] and rounded to the nearest integer, so
// RGBAFromBytes(...).Bytes() is lossless.
func (c RGBA) Bytes() [4]uint8 {
	return [4]uint8{toByte(c.R), toByte(c.G), toByte(c.B), toByte(c.A)}
}

// RGBA implements the color.Color interface.
// Returns alpha-premultiplied components in the range [0, 65535].
func (c RGBA) RGBA() (r, g, b, a uint32) {
	nc := c.NRGBA()
	return nc.RGBA()
}

// NRGBA converts the color to a non-premultiplied color.NRGBA.
func (c RGBA) NRGBA() color.NRGBA {
	p := c.Bytes()
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	nc, _ := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBAFromBytes(nc.R, nc.G, nc.B, nc.A)
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// RGBA2 creates a color from RGBA components.
func RGBA2(r, g, b, a float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with an optional
// leading '#'. Unrecognized lengths yield opaque black.
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32
	a = 255

	switch len(hex) {
	case 3: // RGB
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4: // RGBA
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6: // RRGGBB
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
	case 8: // RRGGBBAA
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
		parseHex(hex[6:8], &a)
	default:
		return RGBA{R: 0, G: 0, B: 0, A: 1}
	}

	//nolint:gosec // G115: parseHex never exceeds 0xff per component
	return RGBAFromBytes(uint8(r), uint8(g), uint8(b), uint8(a))
}

// parseHex is a helper for hex parsing
func parseHex(s string, val *uint32) {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return
		}
	}
}

// Blend linearly interpolates between c and other.
// Each channel is computed as c*(1-t) + other*t, so t=0 yields c and t=1
// yields other exactly. t is not clamped.
func (c RGBA) Blend(other RGBA, t float64) RGBA {
	s := 1 - t
	return RGBA{
		R: c.R*s + other.R*t,
		G: c.G*s + other.G*t,
		B: c.B*s + other.B*t,
		A: c.A*s + other.A*t,
	}
}

// toByte converts a [0, 1] channel to a rounded, clamped byte.
func toByte(v float64) uint8 {
	v = math.Round(v * 255)
	if !(v > 0) { // also catches NaN
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Transparent = RGBA2(0, 0, 0, 0)
)
