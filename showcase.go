package arbor

import "math"

// Showcase is a demonstration layout that draws every primitive in every
// style on a grid. It works without a tree; when one is given, commands are
// tagged with its nodes in pre-order so they can be picked and selected.
type Showcase struct{}

func (Showcase) Name() string { return "Showcase" }

func (Showcase) Options() []OptionSpec { return nil }

// Layout implements Layout. t and p may be nil.
func (Showcase) Layout(t *Tree, p *Palette) ([]DrawCommand, error) {
	if p == nil {
		var err error
		if p, err = NewGradientPalette(5, DefaultGradientStops); err != nil {
			return nil, err
		}
	}
	var ids []NodeID
	if t != nil {
		t.Walk(func(n *Node, _ Metrics) { ids = append(ids, n.ID) })
	}
	next := 0
	tag := func() NodeID {
		if next >= len(ids) {
			return NoNode
		}
		id := ids[next]
		next++
		return id
	}

	const (
		cell = 220.0
		r    = 80.0
	)
	styles := [...]Style{StyleFill, StyleStroke, StyleFillStroke}
	prims := [...]Primitive{PrimitiveAAQuad, PrimitiveRotatedQuad, PrimitiveCircle, PrimitiveCircleSlice, PrimitiveRingSlice, PrimitiveEllipsoid}

	// Decorative backdrop behind the grid.
	w := cell * float64(len(prims))
	h := cell * float64(len(styles))
	cmds := []DrawCommand{NewAAQuad(NoNode, StyleFill, -w/2, -h/2, w, h, Color{0.1, 0.1, 0.12, 1}, ColorTransparent)}

	for row, st := range styles {
		cy := h/2 - cell/2 - float64(row)*cell
		for col, pr := range prims {
			cx := -w/2 + cell/2 + float64(col)*cell
			fill := p.Color(len(prims)-1, col, row == 1)
			line := ColorWhite
			var c DrawCommand
			switch pr {
			case PrimitiveAAQuad:
				c = NewAAQuad(tag(), st, cx-r, cy-r, 2*r, 2*r, fill, line)
			case PrimitiveRotatedQuad:
				c = NewRotatedQuad(tag(), st, cx, cy, 2*r, r, math.Pi/6, fill, line)
			case PrimitiveCircle:
				c = NewCircle(tag(), st, cx, cy, r, fill, line)
			case PrimitiveCircleSlice:
				c = NewCircleSlice(tag(), st, cx, cy, r, math.Pi/8, 3*math.Pi/2, fill, line)
			case PrimitiveRingSlice:
				c = NewRingSlice(tag(), st, cx, cy, r/2, r, -math.Pi/4, math.Pi, fill, line)
			case PrimitiveEllipsoid:
				c = NewEllipsoid(tag(), st, cx, cy, r, r/2, math.Pi/8, fill, line)
			}
			cmds = append(cmds, c)
		}
	}
	return cmds, nil
}
