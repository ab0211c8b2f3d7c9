package arbor

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Font wraps Ebitengine's text/v2 for the overlay text: tooltips, the HUD
// and the error surface.
type Font struct {
	face *text.GoTextFace
	lh   float64 // cached line height
}

// LoadFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadFont(ttfData []byte, size float64) (*Font, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("arbor: failed to parse TTF data: %w", err)
	}
	face := &text.GoTextFace{
		Source: source,
		Size:   size,
	}
	m := face.Metrics()
	return &Font{face: face, lh: m.HAscent + m.HDescent + m.HLineGap}, nil
}

var (
	defaultFontOnce sync.Once
	defaultFont     *Font
	defaultFontErr  error
)

// DefaultFont returns the Go Regular face at 14px, loaded once.
func DefaultFont() (*Font, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = LoadFont(goregular.TTF, 14)
	})
	return defaultFont, defaultFontErr
}

// MeasureString returns the width and height of the rendered text.
func (f *Font) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the vertical distance between baselines.
func (f *Font) LineHeight() float64 {
	return f.lh
}

// labelPadding is the margin around text drawn with a background.
const labelPadding = 4

// DrawLabel draws s with its top-left corner at (x, y) in screen pixels. A
// background with non-zero alpha is filled behind the text first.
func (f *Font) DrawLabel(dst *ebiten.Image, s string, x, y float64, fg, bg Color) {
	if s == "" {
		return
	}
	if bg.A > 0 {
		w, h := f.MeasureString(s)
		r := image.Rect(int(x-labelPadding), int(y-labelPadding), int(x+w+labelPadding+0.5), int(y+h+labelPadding+0.5))
		dst.SubImage(r).(*ebiten.Image).Fill(bg.toRGBA())
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.Scale(
		float32(fg.R*fg.A),
		float32(fg.G*fg.A),
		float32(fg.B*fg.A),
		float32(fg.A),
	)
	op.LineSpacing = f.lh
	text.Draw(dst, s, f.face, op)
}
