package arbor

import (
	"github.com/chewxy/math32"
)

// Tessellation constants, in drawing units.
const (
	// CircleSegments is the number of segments used for a full turn. Slices
	// use a proportional share, never fewer than two.
	CircleSegments = 64
	// LineWidth is the width of stroked outlines.
	LineWidth = 1.5
	// maxMiter limits the miter length at sharp corners, in line widths.
	maxMiter = 4
)

// Topology is the primitive assembly used to draw a Geometry.
type Topology uint8

const (
	TopologyTriangleStrip Topology = iota
	TopologyTriangleFan
	TopologyTriangles
)

var topologyNames = [...]string{"strip", "fan", "triangles"}

func (t Topology) String() string {
	if int(t) < len(topologyNames) {
		return topologyNames[t]
	}
	return "unknown"
}

// Geometry is the CPU-side vertex data for one draw call.
type Geometry struct {
	// Positions holds x, y pairs in device units: drawing units divided by
	// half the logical canvas size.
	Positions []float32
	// Colors holds premultiplied r, g, b, a per vertex.
	Colors []float32
	// Locals holds u, v pairs in the shape's own [-1, 1] frame. Nil unless
	// Shader needs it.
	Locals []float32

	Topology Topology
	Count    int
	Shader   ShaderKind
	// Source is the index of the DrawCommand this geometry was built from.
	Source int
}

// CompileOptions selects optional shader paths in the geometry compiler.
type CompileOptions struct {
	// CircleShaders draws filled circles and ellipses as a single quad with
	// the SDF circle shader.
	CircleShaders bool
	// Gradients draws other fills with the gradient shader.
	Gradients bool
}

// Tessellate compiles cmd, the index-th command of a scene, into one or two
// geometries: the fill (when the style fills) followed by the outline (when
// it strokes). Degenerate shapes produce no geometry.
func Tessellate(cmd *DrawCommand, index int, opts CompileOptions) []Geometry {
	var out []Geometry
	if cmd.Style.fills() {
		if g, ok := tessellateFill(cmd, opts); ok {
			g.Source = index
			out = append(out, g)
		}
	}
	if cmd.Style.strokes() {
		if g, ok := tessellateStroke(cmd); ok {
			g.Source = index
			out = append(out, g)
		}
	}
	return out
}

func tessellateFill(cmd *DrawCommand, opts CompileOptions) (Geometry, bool) {
	shader := ShaderFlat
	if opts.Gradients {
		shader = ShaderGradient
	}

	switch cmd.Primitive {
	case PrimitiveAAQuad, PrimitiveRotatedQuad:
		if !(cmd.Width > 0) || !(cmd.Height > 0) {
			return Geometry{}, false
		}
		return buildGeometry(cmd, quadCorners(cmd), TopologyTriangleStrip, cmd.Fill, shader), true

	case PrimitiveCircle, PrimitiveEllipsoid:
		w, h := cmd.Extent()
		if !(w > 0) || !(h > 0) {
			return Geometry{}, false
		}
		if opts.CircleShaders {
			return buildGeometry(cmd, quadCorners(cmd), TopologyTriangleStrip, cmd.Fill, ShaderCircle), true
		}
		pts := []Vec2{cmd.Center()}
		pts = append(pts, closedArc(cmd, w/2, h/2, 0, 2*math32.Pi)...)
		return buildGeometry(cmd, pts, TopologyTriangleFan, cmd.Fill, shader), true

	case PrimitiveCircleSlice:
		if !(cmd.Radius > 0) {
			return Geometry{}, false
		}
		start, end := sliceSpan(cmd)
		pts := []Vec2{cmd.Center()}
		pts = append(pts, closedArc(cmd, cmd.Radius, cmd.Radius, start, end)...)
		return buildGeometry(cmd, pts, TopologyTriangleFan, cmd.Fill, shader), true

	case PrimitiveRingSlice:
		if !(cmd.Radius > 0) || cmd.InnerRadius >= cmd.Radius {
			return Geometry{}, false
		}
		start, end := sliceSpan(cmd)
		outer := closedArc(cmd, cmd.Radius, cmd.Radius, start, end)
		inner := closedArc(cmd, cmd.InnerRadius, cmd.InnerRadius, start, end)
		pts := make([]Vec2, 0, 2*len(outer))
		for i := range outer {
			pts = append(pts, outer[i], inner[i])
		}
		return buildGeometry(cmd, pts, TopologyTriangleStrip, cmd.Fill, shader), true
	}
	return Geometry{}, false
}

func tessellateStroke(cmd *DrawCommand) (Geometry, bool) {
	path := outlinePath(cmd)
	if len(path) < 2 {
		return Geometry{}, false
	}
	return buildGeometry(cmd, strokeStrip(path, LineWidth), TopologyTriangleStrip, cmd.Line, ShaderFlat), true
}

// outlinePath returns the closed outline of cmd in drawing space, without
// repeating the first point.
func outlinePath(cmd *DrawCommand) []Vec2 {
	switch cmd.Primitive {
	case PrimitiveAAQuad, PrimitiveRotatedQuad:
		if !(cmd.Width > 0) || !(cmd.Height > 0) {
			return nil
		}
		c := quadCorners(cmd) // TR, TL, BR, BL
		return []Vec2{c[0], c[1], c[3], c[2]}

	case PrimitiveCircle, PrimitiveEllipsoid:
		w, h := cmd.Extent()
		if !(w > 0) || !(h > 0) {
			return nil
		}
		ring := closedArc(cmd, w/2, h/2, 0, 2*math32.Pi)
		return ring[:len(ring)-1]

	case PrimitiveCircleSlice:
		if !(cmd.Radius > 0) {
			return nil
		}
		start, end := sliceSpan(cmd)
		arc := closedArc(cmd, cmd.Radius, cmd.Radius, start, end)
		if end-start >= 2*math32.Pi {
			return arc[:len(arc)-1]
		}
		return append([]Vec2{cmd.Center()}, arc...)

	case PrimitiveRingSlice:
		if !(cmd.Radius > 0) || cmd.InnerRadius >= cmd.Radius {
			return nil
		}
		start, end := sliceSpan(cmd)
		outer := closedArc(cmd, cmd.Radius, cmd.Radius, start, end)
		inner := closedArc(cmd, cmd.InnerRadius, cmd.InnerRadius, start, end)
		path := make([]Vec2, 0, len(outer)+len(inner))
		path = append(path, outer...)
		for i := len(inner) - 1; i >= 0; i-- {
			path = append(path, inner[i])
		}
		return path
	}
	return nil
}

// quadCorners returns the four corners of a quad-shaped command in strip
// order: top-right, top-left, bottom-right, bottom-left. Circles and
// ellipses yield their rotated bounding quad.
func quadCorners(cmd *DrawCommand) []Vec2 {
	w, h := cmd.Extent()
	hw, hh := float32(w/2), float32(h/2)
	local := [4][2]float32{{hw, hh}, {-hw, hh}, {hw, -hh}, {-hw, -hh}}

	ctr := cmd.Center()
	rot := float32(cmd.Rotation)
	if cmd.Primitive == PrimitiveAAQuad || cmd.Primitive == PrimitiveCircle {
		rot = 0
	}
	sin, cos := math32.Sincos(rot)
	out := make([]Vec2, 4)
	for i, p := range local {
		x := cos*p[0] - sin*p[1]
		y := sin*p[0] + cos*p[1]
		out[i] = Vec2{ctr.X + float64(x), ctr.Y + float64(y)}
	}
	return out
}

// sliceSpan returns the slice angles ordered so that start <= end, with
// spans beyond a full turn clamped to one.
func sliceSpan(cmd *DrawCommand) (float32, float32) {
	start, end := float32(cmd.Start), float32(cmd.End)
	if end < start {
		start, end = end, start
	}
	if end-start > 2*math32.Pi {
		end = start + 2*math32.Pi
	}
	return start, end
}

// arcSegments returns the number of segments for a span of the given angle.
func arcSegments(span float32) int {
	n := int(math32.Ceil(CircleSegments * span / (2 * math32.Pi)))
	if n < 2 {
		n = 2
	}
	return n
}

// closedArc samples an elliptical arc around cmd's centre from start to end
// inclusive, applying cmd's rotation for ellipsoids.
func closedArc(cmd *DrawCommand, rx, ry float64, start, end float32) []Vec2 {
	n := arcSegments(end - start)
	ctr := cmd.Center()
	var rs, rc float32 = 0, 1
	if cmd.Primitive == PrimitiveEllipsoid {
		rs, rc = math32.Sincos(float32(cmd.Rotation))
	}
	out := make([]Vec2, n+1)
	step := (end - start) / float32(n)
	for i := 0; i <= n; i++ {
		a := start + step*float32(i)
		if i == n {
			a = end
		}
		s, c := math32.Sincos(a)
		x := c * float32(rx)
		y := s * float32(ry)
		out[i] = Vec2{ctr.X + float64(rc*x-rs*y), ctr.Y + float64(rs*x+rc*y)}
	}
	return out
}

// strokeStrip builds a closed mitered band of width lw centred on path as a
// triangle strip of outer/inner vertex pairs, repeating the first pair.
func strokeStrip(path []Vec2, lw float64) []Vec2 {
	n := len(path)
	half := float32(lw / 2)
	out := make([]Vec2, 0, 2*(n+1))
	for i := 0; i <= n; i++ {
		cur := path[i%n]
		prev := path[(i-1+n)%n]
		next := path[(i+1)%n]
		nx, ny := miter(prev, cur, next, half)
		out = append(out,
			Vec2{cur.X + float64(nx), cur.Y + float64(ny)},
			Vec2{cur.X - float64(nx), cur.Y - float64(ny)},
		)
	}
	return out
}

// miter returns the offset from cur to the outer edge of a band of half
// width half around the corner prev→cur→next.
func miter(prev, cur, next Vec2, half float32) (float32, float32) {
	n1x, n1y := edgeNormal(prev, cur)
	n2x, n2y := edgeNormal(cur, next)
	mx, my := n1x+n2x, n1y+n2y
	l := math32.Hypot(mx, my)
	if l < 1e-6 {
		return n1x * half, n1y * half
	}
	mx, my = mx/l, my/l
	d := mx*n1x + my*n1y
	if d < 1/float32(maxMiter) {
		d = 1 / float32(maxMiter)
	}
	return mx * half / d, my * half / d
}

// edgeNormal returns the unit left normal of the edge a→b, or zero for a
// degenerate edge.
func edgeNormal(a, b Vec2) (float32, float32) {
	dx, dy := float32(b.X-a.X), float32(b.Y-a.Y)
	l := math32.Hypot(dx, dy)
	if l < 1e-9 {
		return 0, 0
	}
	return -dy / l, dx / l
}

// buildGeometry converts drawing-space points into device-unit buffers with
// a uniform color, adding local coordinates when shader needs them.
func buildGeometry(cmd *DrawCommand, pts []Vec2, topo Topology, col Color, shader ShaderKind) Geometry {
	g := Geometry{
		Positions: make([]float32, 0, 2*len(pts)),
		Colors:    make([]float32, 0, 4*len(pts)),
		Topology:  topo,
		Count:     len(pts),
		Shader:    shader,
	}
	r, gg, b, a := col.premultiplied()
	for _, p := range pts {
		g.Positions = append(g.Positions, float32(p.X/(LogicalWidth/2)), float32(p.Y/(LogicalHeight/2)))
		g.Colors = append(g.Colors, r, gg, b, a)
	}
	if shader.needsLocals() {
		g.Locals = localCoords(cmd, pts)
	}
	return g
}

// localCoords maps pts into cmd's unrotated frame normalized by its half
// extents, so the bounding box spans [-1, 1] on both axes.
func localCoords(cmd *DrawCommand, pts []Vec2) []float32 {
	w, h := cmd.Extent()
	hw, hh := float32(w/2), float32(h/2)
	if hw <= 0 {
		hw = 1
	}
	if hh <= 0 {
		hh = 1
	}
	ctr := cmd.Center()
	rot := float32(0)
	if cmd.Primitive == PrimitiveRotatedQuad || cmd.Primitive == PrimitiveEllipsoid {
		rot = float32(cmd.Rotation)
	}
	sin, cos := math32.Sincos(-rot)
	out := make([]float32, 0, 2*len(pts))
	for _, p := range pts {
		dx, dy := float32(p.X-ctr.X), float32(p.Y-ctr.Y)
		out = append(out, (cos*dx-sin*dy)/hw, (sin*dx+cos*dy)/hh)
	}
	return out
}
