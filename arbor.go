package arbor

import (
	"image/color"
	"math"
)

// Logical drawing space. Every layout targets this fixed unit space; the
// renderer maps it into a letterboxed viewport of the same aspect ratio, so
// compiled buffers stay valid when the canvas is resized.
const (
	LogicalWidth  = 1600.0
	LogicalHeight = 900.0
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when vertex data is handed to the GPU.
type Color struct {
	R, G, B, A float64
}

// Some colors used by layouts and the error surface.
var (
	ColorBlack       = Color{0, 0, 0, 1}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorTransparent = Color{}
	ColorErrorText   = Color{1, 0, 0, 1}
)

// toRGBA converts c to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

// premultiplied returns the color as premultiplied float32 components.
func (c Color) premultiplied() (r, g, b, a float32) {
	aa := clamp01(c.A)
	return float32(clamp01(c.R) * aa), float32(clamp01(c.G) * aa), float32(clamp01(c.B) * aa), float32(aa)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Vec2 is a 2D vector used for positions, offsets and sizes in drawing space.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. For viewports the origin is the top-left
// pixel with Y increasing downward; for drawing-space bounds Y increases upward
// and (X, Y) is the bottom-left corner.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// ContainsRect reports whether other lies entirely within r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
