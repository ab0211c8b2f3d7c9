package arbor

import "math"

// Primitive identifies the geometric kind of a DrawCommand.
type Primitive uint8

const (
	PrimitiveAAQuad      Primitive = iota // axis-aligned rectangle
	PrimitiveRotatedQuad                  // rectangle rotated about its centre
	PrimitiveCircle                       // full circle
	PrimitiveCircleSlice                  // pie wedge
	PrimitiveRingSlice                    // annulus sector
	PrimitiveEllipsoid                    // axis-aligned ellipse, optionally rotated
)

var primitiveNames = [...]string{"aa-quad", "rotated-quad", "circle", "circle-slice", "ring-slice", "ellipsoid"}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "unknown"
}

// Style selects how a primitive is painted.
type Style uint8

const (
	StyleFill       Style = iota // interior only
	StyleStroke                  // outline only
	StyleFillStroke              // interior, then outline on top
)

var styleNames = [...]string{"fill", "stroke", "fill-stroke"}

func (s Style) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return "unknown"
}

func (s Style) fills() bool   { return s == StyleFill || s == StyleFillStroke }
func (s Style) strokes() bool { return s == StyleStroke || s == StyleFillStroke }

// DrawCommand is one immutable shape to render, in drawing-space units.
//
// Field usage per primitive:
//
//	AAQuad:      X, Y = bottom-left corner; Width, Height
//	RotatedQuad: X, Y = centre; Width, Height; Rotation
//	Circle:      X, Y = centre; Radius
//	CircleSlice: X, Y = centre; Radius; Start, End
//	RingSlice:   X, Y = centre; InnerRadius, Radius; Start, End
//	Ellipsoid:   X, Y = centre; Radius (x), RadiusY (y); Rotation
//
// Angles are radians, counter-clockwise from +X. A slice spans Start..End.
type DrawCommand struct {
	Primitive Primitive
	Style     Style

	X, Y          float64
	Width, Height float64
	Rotation      float64
	Radius        float64
	RadiusY       float64
	InnerRadius   float64
	Start, End    float64

	Fill Color
	Line Color

	// Node is the originating tree node, or NoNode for decoration.
	Node NodeID
}

// Pickable reports whether the command takes part in hit-testing.
func (c *DrawCommand) Pickable() bool {
	return c.Node != NoNode
}

// Center returns the command's centre in drawing space.
func (c *DrawCommand) Center() Vec2 {
	if c.Primitive == PrimitiveAAQuad {
		return Vec2{c.X + c.Width/2, c.Y + c.Height/2}
	}
	return Vec2{c.X, c.Y}
}

// Extent returns the width and height of the shape's unrotated bounding box.
func (c *DrawCommand) Extent() (w, h float64) {
	switch c.Primitive {
	case PrimitiveAAQuad, PrimitiveRotatedQuad:
		return c.Width, c.Height
	case PrimitiveEllipsoid:
		return 2 * c.Radius, 2 * c.RadiusY
	default:
		return 2 * c.Radius, 2 * c.Radius
	}
}

// Bounds returns the axis-aligned bound of the unrotated shape.
func (c *DrawCommand) Bounds() Rect {
	if c.Primitive == PrimitiveAAQuad {
		return Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
	}
	w, h := c.Extent()
	return Rect{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}
}

// NewAAQuad returns an axis-aligned quad with its bottom-left corner at (x, y).
func NewAAQuad(node NodeID, style Style, x, y, w, h float64, fill, line Color) DrawCommand {
	return DrawCommand{Primitive: PrimitiveAAQuad, Style: style, X: x, Y: y, Width: w, Height: h, Fill: fill, Line: line, Node: node}
}

// NewRotatedQuad returns a quad of size w×h centred at (cx, cy) rotated by rot.
func NewRotatedQuad(node NodeID, style Style, cx, cy, w, h, rot float64, fill, line Color) DrawCommand {
	return DrawCommand{Primitive: PrimitiveRotatedQuad, Style: style, X: cx, Y: cy, Width: w, Height: h, Rotation: rot, Fill: fill, Line: line, Node: node}
}

// NewCircle returns a circle centred at (cx, cy).
func NewCircle(node NodeID, style Style, cx, cy, r float64, fill, line Color) DrawCommand {
	return DrawCommand{Primitive: PrimitiveCircle, Style: style, X: cx, Y: cy, Radius: r, Start: 0, End: 2 * math.Pi, Fill: fill, Line: line, Node: node}
}

// NewCircleSlice returns a pie wedge spanning start..end radians.
func NewCircleSlice(node NodeID, style Style, cx, cy, r, start, end float64, fill, line Color) DrawCommand {
	return DrawCommand{Primitive: PrimitiveCircleSlice, Style: style, X: cx, Y: cy, Radius: r, Start: start, End: end, Fill: fill, Line: line, Node: node}
}

// NewRingSlice returns an annulus sector between inner and outer radius.
func NewRingSlice(node NodeID, style Style, cx, cy, inner, outer, start, end float64, fill, line Color) DrawCommand {
	return DrawCommand{Primitive: PrimitiveRingSlice, Style: style, X: cx, Y: cy, InnerRadius: inner, Radius: outer, Start: start, End: end, Fill: fill, Line: line, Node: node}
}

// NewEllipsoid returns an ellipse with radii rx, ry rotated by rot.
func NewEllipsoid(node NodeID, style Style, cx, cy, rx, ry, rot float64, fill, line Color) DrawCommand {
	return DrawCommand{Primitive: PrimitiveEllipsoid, Style: style, X: cx, Y: cy, Radius: rx, RadiusY: ry, Rotation: rot, Fill: fill, Line: line, Node: node}
}

// FindCommand returns the index of the first command drawn for id, or -1.
func FindCommand(cmds []DrawCommand, id NodeID) int {
	if id == NoNode {
		return -1
	}
	for i := range cmds {
		if cmds[i].Node == id {
			return i
		}
	}
	return -1
}
