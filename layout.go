package arbor

import (
	"fmt"
	"math"
)

// Layout turns a tree into an ordered DrawCommand sequence. Implementations
// must be pure: deterministic, no GPU access and no mutation of the tree, so
// they can run on a Worker goroutine. A layout's settings are fields of the
// layout value; changing a setting means running a new value.
type Layout interface {
	// Name is a short human-readable identifier.
	Name() string
	// Options describes the settings this layout recognizes.
	Options() []OptionSpec
	// Layout produces the draw commands for t colored with p.
	Layout(t *Tree, p *Palette) ([]DrawCommand, error)
}

// OptionKind is the widget kind a UI shell should use for an option.
type OptionKind uint8

const (
	OptionToggle OptionKind = iota // boolean
	OptionSlider                   // number in [Min, Max]
)

// OptionSpec describes one layout setting.
type OptionSpec struct {
	Key      string
	Label    string
	Kind     OptionKind
	Default  float64 // 0 or 1 for toggles
	Min, Max float64
}

// Treemap settings bounds.
const (
	TreemapMinOffset   = 0.0
	TreemapMaxOffset   = 25.0
	TreemapDefaultSize = 600.0
)

var (
	treemapLineSelected   = Color{0, 0, 0, 1}
	treemapLineUnselected = Color{0.3, 0.3, 0.3, 1}
)

// orientation is per-run layout scratch.
type orientation uint8

const (
	horizontal orientation = iota
	vertical
)

// Treemap is the nested (slice-and-dice) treemap layout. Every node becomes a
// rectangle nested inside its parent's; the split axis alternates by depth.
type Treemap struct {
	// Outline draws every rectangle with a border.
	Outline bool
	// Offset is the padding between siblings as a percentage in [0, 25].
	Offset float64
}

// NewTreemap returns a Treemap with offset clamped to its valid range.
func NewTreemap(outline bool, offset float64) Treemap {
	if math.IsNaN(offset) {
		offset = TreemapMinOffset
	}
	return Treemap{Outline: outline, Offset: math.Max(TreemapMinOffset, math.Min(TreemapMaxOffset, offset))}
}

func (Treemap) Name() string { return "Simple Tree Map" }

func (Treemap) Options() []OptionSpec {
	return []OptionSpec{
		{Key: "outline", Label: "Draw outlines", Kind: OptionToggle, Default: 1, Max: 1},
		{Key: "offset", Label: "Offset", Kind: OptionSlider, Default: 0, Min: TreemapMinOffset, Max: TreemapMaxOffset},
	}
}

// treemapRun holds the state of one layout invocation.
type treemapRun struct {
	tm      Treemap
	tree    *Tree
	palette *Palette
	orient  map[NodeID]orientation
	cmds    []DrawCommand
}

// Layout implements Layout.
func (tm Treemap) Layout(t *Tree, p *Palette) ([]DrawCommand, error) {
	if t == nil || t.Root() == nil {
		return nil, &LayoutError{Layout: tm.Name(), Node: NoNode, Err: fmt.Errorf("%w: nil tree", ErrInvalidTree)}
	}
	if p == nil {
		return nil, &LayoutError{Layout: tm.Name(), Node: NoNode, Err: fmt.Errorf("%w: nil palette", ErrInvalidTree)}
	}
	tm = NewTreemap(tm.Outline, tm.Offset)
	r := &treemapRun{
		tm:      tm,
		tree:    t,
		palette: p,
		orient:  make(map[NodeID]orientation, t.Len()),
		cmds:    make([]DrawCommand, 0, t.Len()),
	}
	r.orientNodes(t.Root(), horizontal)

	half := TreemapDefaultSize / 2
	root := Rect{X: -half, Y: -half, Width: TreemapDefaultSize, Height: TreemapDefaultSize}
	if err := r.draw(t.Root(), root, false); err != nil {
		return nil, err
	}
	return r.cmds, nil
}

// orientNodes assigns o to n and alternates it for each level below.
func (r *treemapRun) orientNodes(n *Node, o orientation) {
	r.orient[n.ID] = o
	next := vertical
	if o == vertical {
		next = horizontal
	}
	for _, c := range n.Children {
		r.orientNodes(c, next)
	}
}

// draw emits n and recurses into its children. b is n's bound with (X, Y)
// at the bottom-left corner.
func (r *treemapRun) draw(n *Node, b Rect, selected bool) error {
	m, ok := r.tree.Metrics(n.ID)
	if !ok || m.SubtreeSize < 1 {
		return &LayoutError{Layout: r.tm.Name(), Node: n.ID, Err: fmt.Errorf("%w: subtree size", ErrMissingAttribute)}
	}

	selected = selected || n.Selected
	fill := r.palette.Color(m.MaxDepth, m.Depth, selected)
	line := treemapLineUnselected
	if selected {
		line = treemapLineSelected
	}
	if r.tm.Outline {
		r.cmds = append(r.cmds, NewAAQuad(n.ID, StyleFillStroke, b.X, b.Y, b.Width, b.Height, fill, line))
	} else {
		r.cmds = append(r.cmds, NewAAQuad(n.ID, StyleFill, b.X, b.Y, b.Width, b.Height, fill, ColorTransparent))
	}

	count := len(n.Children)
	if count == 0 {
		return nil
	}
	// Every child owns at least itself, so a node with children always has
	// a positive denominator; keep the guard for malformed metrics.
	denom := float64(m.SubtreeSize - 1)
	if denom <= 0 {
		return &LayoutError{Layout: r.tm.Name(), Node: n.ID, Err: fmt.Errorf("%w: subtree size %d with %d children", ErrMissingAttribute, m.SubtreeSize, count)}
	}

	gaps := float64(count + 1)
	gap := math.Min(b.Width/100*r.tm.Offset/gaps, b.Height/100*r.tm.Offset/gaps)
	o := r.orient[n.ID]
	var free float64
	if o == horizontal {
		free = b.Width - gaps*gap
	} else {
		free = b.Height - gaps*gap
	}

	left, right := b.X, b.X+b.Width
	bottom, top := b.Y, b.Y+b.Height
	done := 0
	for i, c := range n.Children {
		cm, ok := r.tree.Metrics(c.ID)
		if !ok {
			return &LayoutError{Layout: r.tm.Name(), Node: c.ID, Err: fmt.Errorf("%w: subtree size", ErrMissingAttribute)}
		}
		lead := gap * float64(i+1)
		start := free * float64(done) / denom
		end := free * float64(done+cm.SubtreeSize) / denom
		if i == count-1 {
			end = free
		}

		var cb Rect
		if o == horizontal {
			cb = Rect{X: left + lead + start, Y: bottom + gap, Width: end - start, Height: (top - gap) - (bottom + gap)}
		} else {
			ct := top - lead - start
			cbot := top - lead - end
			cb = Rect{X: left + gap, Y: cbot, Width: (right - gap) - (left + gap), Height: ct - cbot}
		}
		done += cm.SubtreeSize

		if err := r.draw(c, cb, selected); err != nil {
			return err
		}
	}
	return nil
}
