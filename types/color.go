package types

import (
	"fmt"
	"math"
)

// An 8-bit per channel RGB color. Color implements the image/color.Color
// interface so frames can be handed to the standard image encoders.
type Color struct {
	R, G, B uint8
}

var (
	White   = Color{255, 255, 255}
	Black   = Color{0, 0, 0}
	Magenta = Color{255, 0, 255}
)

// Define a color.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b}
}

// Implements image/color.Color. The returned values are alpha-premultiplied
// 16-bit channels; alpha is always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Scale each channel by the matching component of factors. Results are
// clamped to the [0, 255] range.
func (c Color) Modulate(factors Vec3) Color {
	return Color{
		clampChannel(float64(c.R) * factors[0]),
		clampChannel(float64(c.G) * factors[1]),
		clampChannel(float64(c.B) * factors[2]),
	}
}

// Linearly blend c with other: t == 0 yields c and t == 1 yields other.
func (c Color) Lerp(other Color, t float64) Color {
	if t <= 0 {
		return c
	} else if t >= 1 {
		return other
	}
	return Color{
		clampChannel(float64(c.R)*(1-t) + float64(other.R)*t),
		clampChannel(float64(c.G)*(1-t) + float64(other.G)*t),
		clampChannel(float64(c.B)*(1-t) + float64(other.B)*t),
	}
}

// Convert to a vector with each channel mapped to [0, 1].
func (c Color) Vec3() Vec3 {
	return Vec3{float64(c.R) / 255.0, float64(c.G) / 255.0, float64(c.B) / 255.0}
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Calculate the unweighted per-channel mean of a set of colors.
func AverageColors(colors ...Color) Color {
	if len(colors) == 0 {
		return Black
	}

	var r, g, b uint32
	for _, c := range colors {
		r += uint32(c.R)
		g += uint32(c.G)
		b += uint32(c.B)
	}
	n := uint32(len(colors))
	return Color{uint8(r / n), uint8(g / n), uint8(b / n)}
}

// Create a color from a vector whose components are in the [0, 1] range.
func ColorFromVec3(v Vec3) Color {
	return Color{
		clampChannel(v[0] * 255.0),
		clampChannel(v[1] * 255.0),
		clampChannel(v[2] * 255.0),
	}
}

func clampChannel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	} else if v >= 255 {
		return 255
	}
	return uint8(v)
}
