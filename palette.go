package arbor

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette maps (maxDepth, depth) to a color for the normal and the selected
// state. Rows are indexed by the subtree's maximum depth and columns by the
// node's own depth, so a branch is shaded across its own depth range.
type Palette struct {
	Normal   [][]Color
	Selected [][]Color
}

// Color returns the palette entry for a node. Indices outside the table are
// clamped to the nearest entry; an empty palette yields opaque white.
func (p *Palette) Color(maxDepth, depth int, selected bool) Color {
	table := p.Normal
	if selected {
		table = p.Selected
	}
	if len(table) == 0 {
		return ColorWhite
	}
	row := table[clampIndex(maxDepth, len(table))]
	if len(row) == 0 {
		return ColorWhite
	}
	return row[clampIndex(depth, len(row))]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// GradientStops are the endpoint colors of a gradient palette.
type GradientStops struct {
	From, To                 Color
	SelectedFrom, SelectedTo Color
}

// DefaultGradientStops is a blue-to-green ramp with an orange selection ramp.
var DefaultGradientStops = GradientStops{
	From:         Color{0.12, 0.24, 0.55, 1},
	To:           Color{0.55, 0.85, 0.55, 1},
	SelectedFrom: Color{0.75, 0.25, 0.05, 1},
	SelectedTo:   Color{1.0, 0.85, 0.35, 1},
}

// NewGradientPalette builds a palette for trees up to maxDepth deep. Row m
// blends From→To in HCL space over depths 0..m so the deepest node of every
// branch reaches the To color.
func NewGradientPalette(maxDepth int, stops GradientStops) (*Palette, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("arbor: palette: negative max depth %d", maxDepth)
	}
	p := &Palette{
		Normal:   gradientTable(maxDepth, stops.From, stops.To),
		Selected: gradientTable(maxDepth, stops.SelectedFrom, stops.SelectedTo),
	}
	return p, nil
}

func gradientTable(maxDepth int, from, to Color) [][]Color {
	a := toColorful(from)
	b := toColorful(to)
	table := make([][]Color, maxDepth+1)
	for m := 0; m <= maxDepth; m++ {
		row := make([]Color, m+1)
		for d := 0; d <= m; d++ {
			t := 0.0
			if m > 0 {
				t = float64(d) / float64(m)
			}
			c := a.BlendHcl(b, t).Clamped()
			row[d] = Color{R: c.R, G: c.G, B: c.B, A: from.A + (to.A-from.A)*t}
		}
		table[m] = row
	}
	return table
}

func toColorful(c Color) colorful.Color {
	return colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (Color, error) {
	alpha := 1.0
	if len(s) == 9 {
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return Color{}, fmt.Errorf("arbor: parse color %q: %w", s, err)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("arbor: parse color %q: %w", s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}
