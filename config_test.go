package arbor

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arbor.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[window]
title = "forest"
width = 800

[treemap]
offset = 5.5

[controls]
zoom_step = 0.25
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Title != "forest" || cfg.Window.Width != 800 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Window.Height != DefaultConfig().Window.Height {
		t.Errorf("Height = %d, want default", cfg.Window.Height)
	}
	if cfg.Controls.ZoomStep != 0.25 {
		t.Errorf("ZoomStep = %f, want 0.25", cfg.Controls.ZoomStep)
	}
	if cfg.Controls.PanStep != DefaultControls().PanStep {
		t.Errorf("PanStep = %f, want default", cfg.Controls.PanStep)
	}
	tm := cfg.TreemapLayout()
	if tm.Offset != 5.5 || !tm.Outline {
		t.Errorf("TreemapLayout() = %+v", tm)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, "[window]\ncolour = \"red\"\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("err = %v, want unknown key", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Width = 0
	cfg.Palette.To = "blue"
	cfg.Treemap.Offset = 40
	cfg.Controls.FocusFill = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	if !errors.Is(err, ErrInvalidCanvasSize) {
		t.Errorf("err does not wrap ErrInvalidCanvasSize: %v", err)
	}
	for _, want := range []string{"palette.to", "treemap.offset", "controls.focus_fill"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("err %q missing %q", err, want)
		}
	}
}

func TestConfigRendererOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Background = "#ff000080"
	cfg.Renderer.CircleShaders = true
	cfg.Renderer.Debug = true

	o := cfg.RendererOptions()
	if !o.CircleShaders || o.Gradients || !o.GroupShaders || !o.Debug {
		t.Errorf("RendererOptions() = %+v", o)
	}
	if o.ClearColor.R != 1 || o.ClearColor.G != 0 || !approxEqual(o.ClearColor.A, 128.0/255, 1e-9) {
		t.Errorf("ClearColor = %+v", o.ClearColor)
	}
}

func TestConfigEncodeRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.HUD = true
	cfg.Treemap.Offset = 3
	data, err := cfg.Encode()
	if err != nil {
		t.Fatal(err)
	}
	back, err := LoadConfig(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("LoadConfig(encoded): %v", err)
	}
	if back != cfg {
		t.Errorf("round trip = %+v, want %+v", back, cfg)
	}
}

func TestConfigGradientStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Palette.From = "#000000"
	cfg.Palette.To = "#ffffff"
	s, err := cfg.GradientStops()
	if err != nil {
		t.Fatal(err)
	}
	if s.From != ColorBlack || s.To != ColorWhite {
		t.Errorf("stops = %+v", s)
	}

	cfg.Palette.SelectedTo = "nope"
	if _, err := cfg.GradientStops(); err == nil {
		t.Error("expected error for bad selected_to")
	}
}

func TestValidateRejectsBadSteps(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Controls)
		key    string
	}{
		{"nan rotate", func(c *Controls) { c.RotateStep = math.NaN() }, "controls.rotate_step"},
		{"zero rotate", func(c *Controls) { c.RotateStep = 0 }, "controls.rotate_step"},
		{"negative pan", func(c *Controls) { c.PanStep = -5 }, "controls.pan_step"},
		{"infinite pan", func(c *Controls) { c.PanStep = math.Inf(1) }, "controls.pan_step"},
		{"infinite zoom normalization", func(c *Controls) { c.ZoomNormalization = math.Inf(1) }, "controls.zoom_normalization"},
		{"nan drag threshold", func(c *Controls) { c.DragThreshold = math.NaN() }, "controls.drag_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg.Controls)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Validate() = %v, want error naming %s", err, tt.key)
			}
		})
	}
}

func TestValidateErrorOrderIsStable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Palette.From = "x"
	cfg.Palette.To = "y"
	cfg.Palette.SelectedFrom = "z"
	cfg.Palette.SelectedTo = "w"

	first := cfg.Validate().Error()
	for i := 0; i < 20; i++ {
		if got := cfg.Validate().Error(); got != first {
			t.Fatalf("run %d: %q, want %q", i, got, first)
		}
	}
	keys := []string{"palette.from", "palette.to", "palette.selected_from", "palette.selected_to"}
	last := -1
	for _, k := range keys {
		i := strings.Index(first, k+":")
		if i <= last {
			t.Fatalf("%s out of order in %q", k, first)
		}
		last = i
	}
}
