package arbor

import "math"

// Pick returns the index of the topmost pickable command containing p, a
// point in drawing space. Commands are scanned in reverse paint order.
// Decorative commands (Node == NoNode) are never returned and do not occlude
// the commands beneath them.
func Pick(cmds []DrawCommand, p Vec2) (int, bool) {
	for i := len(cmds) - 1; i >= 0; i-- {
		c := &cmds[i]
		if !c.Pickable() {
			continue
		}
		if c.Contains(p) {
			return i, true
		}
	}
	return -1, false
}

// PickNode resolves p to the originating node of the topmost command
// containing it. Returns nil when nothing is hit or the command's node is not
// part of t.
func PickNode(t *Tree, cmds []DrawCommand, p Vec2) *Node {
	if t == nil {
		return nil
	}
	i, ok := Pick(cmds, p)
	if !ok {
		return nil
	}
	return t.Node(cmds[i].Node)
}

// Contains reports whether the drawing-space point p lies inside the shape.
// Edges count as inside. The test covers the shape's area regardless of
// style, so stroked outlines are picked by their interior as well.
func (c *DrawCommand) Contains(p Vec2) bool {
	switch c.Primitive {
	case PrimitiveAAQuad:
		return c.Bounds().Contains(p.X, p.Y)

	case PrimitiveRotatedQuad:
		lx, ly := c.local(p)
		return math.Abs(lx) <= c.Width/2 && math.Abs(ly) <= c.Height/2

	case PrimitiveCircle:
		return c.Radius > 0 && normDist(p.X-c.X, p.Y-c.Y, c.Radius, c.Radius) <= 1

	case PrimitiveCircleSlice:
		dx, dy := p.X-c.X, p.Y-c.Y
		return c.Radius > 0 && normDist(dx, dy, c.Radius, c.Radius) <= 1 &&
			angleInSpan(math.Atan2(dy, dx), c.Start, c.End)

	case PrimitiveRingSlice:
		dx, dy := p.X-c.X, p.Y-c.Y
		d := math.Hypot(dx, dy)
		return c.Radius > 0 && d <= c.Radius && d >= c.InnerRadius &&
			angleInSpan(math.Atan2(dy, dx), c.Start, c.End)

	case PrimitiveEllipsoid:
		lx, ly := c.local(p)
		return c.Radius > 0 && c.RadiusY > 0 && normDist(lx, ly, c.Radius, c.RadiusY) <= 1
	}
	return false
}

// local maps p into the shape's unrotated frame centred on (X, Y).
func (c *DrawCommand) local(p Vec2) (float64, float64) {
	dx, dy := p.X-c.X, p.Y-c.Y
	if c.Rotation == 0 {
		return dx, dy
	}
	sin, cos := math.Sincos(-c.Rotation)
	return cos*dx - sin*dy, sin*dx + cos*dy
}

// normDist returns the squared normalized distance of (dx, dy) for an
// ellipse with radii rx, ry; ≤ 1 means inside.
func normDist(dx, dy, rx, ry float64) float64 {
	nx, ny := dx/rx, dy/ry
	return nx*nx + ny*ny
}

// angleInSpan reports whether angle a lies on the counter-clockwise arc from
// start to end. Spans of 2π or more cover the full circle.
func angleInSpan(a, start, end float64) bool {
	span := end - start
	if span < 0 {
		start, span = end, -span
	}
	if span >= 2*math.Pi {
		return true
	}
	d := math.Mod(a-start, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d <= span+1e-12
}
