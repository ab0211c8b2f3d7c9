package arbor

import "testing"

func TestDefaultFont(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatalf("DefaultFont: %v", err)
	}
	if f.LineHeight() <= 0 {
		t.Errorf("LineHeight = %f, want > 0", f.LineHeight())
	}
	w1, h1 := f.MeasureString("a")
	w2, _ := f.MeasureString("abcdef")
	if w1 <= 0 || h1 <= 0 || w2 <= w1 {
		t.Errorf("MeasureString widths %f, %f and height %f", w1, w2, h1)
	}
	_, h3 := f.MeasureString("a\nb")
	if h3 <= h1 {
		t.Errorf("two lines measure %f tall, one line %f", h3, h1)
	}
	if again, _ := DefaultFont(); again != f {
		t.Error("DefaultFont loaded twice")
	}
}

func TestLoadFontInvalid(t *testing.T) {
	if _, err := LoadFont([]byte("not a font"), 12); err == nil {
		t.Error("expected error for invalid font data")
	}
}
