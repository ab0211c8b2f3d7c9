package arbor

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration of a View, stored as TOML.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Treemap  TreemapConfig  `toml:"treemap"`
	Palette  PaletteConfig  `toml:"palette"`
	Controls Controls       `toml:"controls"`
}

// WindowConfig sizes the desktop window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	// Background is the letterbox and clear color as #rrggbb[aa].
	Background string `toml:"background"`
	HUD        bool   `toml:"hud"`
	// ScreenshotDir is where Screenshot and script steps write PNGs.
	ScreenshotDir string `toml:"screenshot_dir"`
}

// RendererConfig maps onto RendererOptions.
type RendererConfig struct {
	CircleShaders bool `toml:"circle_shaders"`
	Gradients     bool `toml:"gradients"`
	GroupShaders  bool `toml:"group_shaders"`
	Debug         bool `toml:"debug"`
}

// TreemapConfig holds the treemap layout settings.
type TreemapConfig struct {
	Outline bool    `toml:"outline"`
	Offset  float64 `toml:"offset"`
}

// PaletteConfig holds the gradient endpoints as #rrggbb[aa] strings.
type PaletteConfig struct {
	From         string `toml:"from"`
	To           string `toml:"to"`
	SelectedFrom string `toml:"selected_from"`
	SelectedTo   string `toml:"selected_to"`
}

// Controls holds the interaction constants.
type Controls struct {
	// RotateStep is the Q/E rotation in degrees.
	RotateStep float64 `toml:"rotate_step"`
	// PanStep is the W/A/S/D pan in pixels.
	PanStep float64 `toml:"pan_step"`
	// ZoomStep is the R/F zoom delta: R scales by 1+ZoomStep, F by 1-ZoomStep.
	ZoomStep float64 `toml:"zoom_step"`
	// ZoomNormalization divides wheel deltas into zoom factors.
	ZoomNormalization float64 `toml:"zoom_normalization"`
	// RotationNormalization divides wheel deltas into degrees while dragging.
	RotationNormalization float64 `toml:"rotation_normalization"`
	// FocusFill is the fraction of the viewport a clicked node is zoomed to.
	FocusFill float64 `toml:"focus_fill"`
	// DragThreshold is the pointer travel in pixels that turns a press into
	// a drag.
	DragThreshold float64 `toml:"drag_threshold"`
}

// DefaultControls returns the stock interaction constants.
func DefaultControls() Controls {
	return Controls{
		RotateStep:            1,
		PanStep:               5,
		ZoomStep:              0.1,
		ZoomNormalization:     40,
		RotationNormalization: 10,
		FocusFill:             0.5,
		DragThreshold:         4,
	}
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:         "arbor",
			Width:         1280,
			Height:        720,
			Background:    "#000000",
			ScreenshotDir: "screenshots",
		},
		Renderer: RendererConfig{GroupShaders: true},
		Treemap:  TreemapConfig{Outline: true, Offset: 0},
		Palette: PaletteConfig{
			From:         "#1f3b73",
			To:           "#9be3ff",
			SelectedFrom: "#7a1f1f",
			SelectedTo:   "#ffd27a",
		},
		Controls: DefaultControls(),
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig and validates it.
// Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("arbor: config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("arbor: config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("arbor: config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("arbor: config %s: %w", path, err)
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d: %w", c.Window.Width, c.Window.Height, ErrInvalidCanvasSize))
	}
	if _, err := ParseHexColor(c.Window.Background); err != nil {
		errs = append(errs, fmt.Errorf("window.background: %w", err))
	}
	if math.IsNaN(c.Treemap.Offset) || c.Treemap.Offset < TreemapMinOffset || c.Treemap.Offset > TreemapMaxOffset {
		errs = append(errs, fmt.Errorf("treemap.offset %g outside [%g, %g]", c.Treemap.Offset, TreemapMinOffset, TreemapMaxOffset))
	}
	for _, f := range []struct{ key, value string }{
		{"palette.from", c.Palette.From},
		{"palette.to", c.Palette.To},
		{"palette.selected_from", c.Palette.SelectedFrom},
		{"palette.selected_to", c.Palette.SelectedTo},
	} {
		if _, err := ParseHexColor(f.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.key, err))
		}
	}
	ctl := c.Controls
	for _, f := range []struct {
		key   string
		value float64
	}{
		{"controls.rotate_step", ctl.RotateStep},
		{"controls.pan_step", ctl.PanStep},
		{"controls.zoom_normalization", ctl.ZoomNormalization},
		{"controls.rotation_normalization", ctl.RotationNormalization},
	} {
		if !positiveFinite(f.value) {
			errs = append(errs, fmt.Errorf("%s %g must be positive and finite", f.key, f.value))
		}
	}
	if !(ctl.ZoomStep > 0) || ctl.ZoomStep >= 1 {
		errs = append(errs, fmt.Errorf("controls.zoom_step %g outside (0, 1)", ctl.ZoomStep))
	}
	if !(ctl.FocusFill > 0) || ctl.FocusFill > 1 {
		errs = append(errs, fmt.Errorf("controls.focus_fill %g outside (0, 1]", ctl.FocusFill))
	}
	if !(ctl.DragThreshold >= 0) || math.IsInf(ctl.DragThreshold, 1) {
		errs = append(errs, fmt.Errorf("controls.drag_threshold %g must be finite and not negative", ctl.DragThreshold))
	}
	return errors.Join(errs...)
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

// RendererOptions converts the renderer section and window background.
func (c Config) RendererOptions() RendererOptions {
	bg, err := ParseHexColor(c.Window.Background)
	if err != nil {
		bg = ColorBlack
	}
	return RendererOptions{
		CompileOptions: CompileOptions{
			CircleShaders: c.Renderer.CircleShaders,
			Gradients:     c.Renderer.Gradients,
		},
		GroupShaders: c.Renderer.GroupShaders,
		ClearColor:   bg,
		Debug:        c.Renderer.Debug,
	}
}

// GradientStops parses the palette section.
func (c Config) GradientStops() (GradientStops, error) {
	var s GradientStops
	var err error
	if s.From, err = ParseHexColor(c.Palette.From); err != nil {
		return s, err
	}
	if s.To, err = ParseHexColor(c.Palette.To); err != nil {
		return s, err
	}
	if s.SelectedFrom, err = ParseHexColor(c.Palette.SelectedFrom); err != nil {
		return s, err
	}
	if s.SelectedTo, err = ParseHexColor(c.Palette.SelectedTo); err != nil {
		return s, err
	}
	return s, nil
}

// TreemapLayout returns the configured treemap layout.
func (c Config) TreemapLayout() Treemap {
	return NewTreemap(c.Treemap.Outline, c.Treemap.Offset)
}
