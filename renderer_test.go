package arbor

import (
	"errors"
	"strings"
	"testing"
)

func newTestRenderer(t *testing.T, opts RendererOptions) (*Renderer, *fakeDevice) {
	t.Helper()
	dev := newFakeDevice()
	r := NewRenderer(opts)
	if err := r.Init(dev); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r, dev
}

func TestRendererInitCompilesEveryShader(t *testing.T) {
	r, dev := newTestRenderer(t, RendererOptions{})
	if !r.Initialized() {
		t.Fatal("Initialized = false after Init")
	}
	if len(dev.programs) != int(numShaderKinds) {
		t.Errorf("compiled %d programs, want %d", len(dev.programs), numShaderKinds)
	}
	r.Close()
	if len(dev.programs) != 0 {
		t.Errorf("%d programs leaked after Close", len(dev.programs))
	}
	if r.Initialized() {
		t.Error("Initialized = true after Close")
	}
}

func TestRendererInitNilDevice(t *testing.T) {
	r := NewRenderer(RendererOptions{})
	err := r.Init(nil)
	var ie *InitError
	if !errors.As(err, &ie) || ie.Stage != "device" {
		t.Fatalf("err = %v, want device-stage *InitError", err)
	}
	if !errors.Is(err, ErrContextUnavailable) {
		t.Errorf("err = %v, want ErrContextUnavailable", err)
	}
	if err := r.SetScene(nil); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("SetScene before Init err = %v", err)
	}
	if err := r.Render(nil); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Render before Init err = %v", err)
	}
}

func TestRendererInitCompileFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.failCompile = true
	dev.failProgram = ShaderGradient
	r := NewRenderer(RendererOptions{})

	err := r.Init(dev)
	var ie *InitError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *InitError", err)
	}
	if ie.Stage != "compile" || ie.Kind != ShaderGradient {
		t.Errorf("InitError = %+v", ie)
	}
	if !errors.Is(err, ErrShaderCompile) || !errors.Is(err, errFakeCompile) {
		t.Errorf("err = %v, want ErrShaderCompile wrapping the device error", err)
	}
	if !strings.Contains(err.Error(), "gradient") {
		t.Errorf("message %q does not name the shader", err.Error())
	}
	if len(dev.programs) != 0 {
		t.Errorf("%d programs leaked after failed init", len(dev.programs))
	}
	if r.Initialized() {
		t.Error("renderer initialized after compile failure")
	}
}

func TestRendererResize(t *testing.T) {
	r, dev := newTestRenderer(t, RendererOptions{})
	if err := r.Resize(2000, 900); err != nil {
		t.Fatal(err)
	}
	want := Rect{X: 200, Y: 0, Width: 1600, Height: 900}
	if r.Viewport() != want {
		t.Errorf("Viewport = %+v, want %+v", r.Viewport(), want)
	}
	// Narrow canvas letterboxes top and bottom instead.
	if err := r.Resize(800, 900); err != nil {
		t.Fatal(err)
	}
	if vp := r.Viewport(); vp.X != 0 || vp.Width != 800 || !approxEqual(vp.Y, 225, 1e-9) {
		t.Errorf("Viewport = %+v", vp)
	}

	for _, sz := range [][2]float64{{0, 100}, {100, -5}} {
		if err := r.Resize(sz[0], sz[1]); !errors.Is(err, ErrInvalidCanvasSize) {
			t.Errorf("Resize(%v) err = %v", sz, err)
		}
	}
	// A rejected resize keeps the last good viewport.
	if vp := r.Viewport(); vp.Width != 800 {
		t.Errorf("Viewport changed by invalid resize: %+v", vp)
	}

	if err := r.Render(nil); err != nil {
		t.Fatal(err)
	}
	if dev.viewport != r.Viewport() {
		t.Errorf("device viewport = %+v, want %+v", dev.viewport, r.Viewport())
	}
}

func TestRendererReleasesBeforeInstall(t *testing.T) {
	r, dev := newTestRenderer(t, RendererOptions{})
	scene := []DrawCommand{
		NewAAQuad(1, StyleFillStroke, 0, 0, 10, 10, ColorWhite, ColorBlack),
		NewCircle(2, StyleFill, 0, 0, 5, ColorWhite, ColorBlack),
	}
	if err := r.SetScene(scene); err != nil {
		t.Fatal(err)
	}
	// 3 geometries × (position + color)
	if r.LiveBuffers() != 6 || len(dev.buffers) != 6 {
		t.Fatalf("live = %d/%d, want 6", r.LiveBuffers(), len(dev.buffers))
	}
	firstGen := r.Stats().Generation

	dev.calls = dev.calls[:0]
	if err := r.SetScene(scene[:1]); err != nil {
		t.Fatal(err)
	}
	if r.LiveBuffers() != 4 || len(dev.buffers) != 4 {
		t.Errorf("live = %d/%d after second scene, want 4", r.LiveBuffers(), len(dev.buffers))
	}
	if r.Stats().Generation != firstGen+1 {
		t.Errorf("Generation = %d, want %d", r.Stats().Generation, firstGen+1)
	}
	// Every delete of the old generation precedes the first allocation of
	// the new one.
	sawNew := false
	for _, c := range dev.calls {
		if strings.HasPrefix(c, "new") {
			sawNew = true
		} else if sawNew {
			t.Fatalf("call order %v: delete after new", dev.calls)
		}
	}

	r.Release()
	if r.LiveBuffers() != 0 || len(dev.buffers) != 0 {
		t.Errorf("live = %d/%d after Release", r.LiveBuffers(), len(dev.buffers))
	}
}

func TestRendererUploadFailureLeaksNothing(t *testing.T) {
	r, dev := newTestRenderer(t, RendererOptions{})
	dev.failBufferAfter = 3
	scene := []DrawCommand{
		NewAAQuad(1, StyleFill, 0, 0, 10, 10, ColorWhite, ColorBlack),
		NewAAQuad(2, StyleFill, 0, 0, 10, 10, ColorWhite, ColorBlack),
	}
	if err := r.SetScene(scene); err == nil {
		t.Fatal("expected upload error")
	}
	if r.LiveBuffers() != 0 || len(dev.buffers) != 0 {
		t.Errorf("live = %d/%d after failed upload", r.LiveBuffers(), len(dev.buffers))
	}
	if r.Stats().Buffers != 0 {
		t.Error("failed scene left buffers installed")
	}
}

func TestRendererRenderPass(t *testing.T) {
	r, dev := newTestRenderer(t, RendererOptions{CompileOptions: CompileOptions{Gradients: true}})
	scene := []DrawCommand{
		NewAAQuad(1, StyleFillStroke, 0, 0, 10, 10, ColorWhite, ColorBlack),
		NewCircle(2, StyleFill, 0, 0, 5, ColorWhite, ColorBlack),
	}
	if err := r.SetScene(scene); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(NewCamera()); err != nil {
		t.Fatal(err)
	}
	if dev.clears != 1 {
		t.Errorf("clears = %d, want 1", dev.clears)
	}
	wantPrograms := []ShaderKind{ShaderGradient, ShaderFlat, ShaderGradient}
	if len(dev.draws) != len(wantPrograms) {
		t.Fatalf("draws = %d, want %d", len(dev.draws), len(wantPrograms))
	}
	for i, d := range dev.draws {
		if d.program != wantPrograms[i] {
			t.Errorf("draw %d program = %v, want %v", i, d.program, wantPrograms[i])
		}
		if (d.local != 0) != wantPrograms[i].needsLocals() {
			t.Errorf("draw %d local buffer = %d", i, d.local)
		}
	}
	s := r.Stats()
	if s.DrawCalls != 3 || s.Commands != 2 || s.Buffers != 3 {
		t.Errorf("Stats = %+v", s)
	}
	// default bind, then gradient, flat, gradient
	if s.ShaderSwitches != 3 {
		t.Errorf("ShaderSwitches = %d, want 3", s.ShaderSwitches)
	}
	// each bind re-uploads the matrices
	if dev.matrices != len(dev.used) {
		t.Errorf("matrices set %d times for %d binds", dev.matrices, len(dev.used))
	}

	// The next frame starts again from the default program.
	dev.resetFrame()
	if err := r.Render(NewCamera()); err != nil {
		t.Fatal(err)
	}
	if len(dev.used) == 0 || dev.used[0] != ShaderFlat {
		t.Errorf("frame did not start with the default program: %v", dev.used)
	}
}

func TestRendererSkipsRedundantSwitches(t *testing.T) {
	r, dev := newTestRenderer(t, RendererOptions{})
	var scene []DrawCommand
	for i := 0; i < 5; i++ {
		scene = append(scene, NewAAQuad(NodeID(i), StyleFillStroke, float64(i)*20, 0, 10, 10, ColorWhite, ColorBlack))
	}
	if err := r.SetScene(scene); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(nil); err != nil {
		t.Fatal(err)
	}
	if got := r.Stats().ShaderSwitches; got != 0 {
		t.Errorf("ShaderSwitches = %d for an all-flat scene, want 0", got)
	}
	if len(dev.used) != 1 {
		t.Errorf("UseProgram called %d times, want 1", len(dev.used))
	}
}

func TestGroupShadersKeepsOverlapOrder(t *testing.T) {
	opts := RendererOptions{CompileOptions: CompileOptions{Gradients: true}, GroupShaders: true}

	// Disjoint shapes: fills (gradient) and strokes (flat) may regroup.
	var disjoint []DrawCommand
	for i := 0; i < 4; i++ {
		disjoint = append(disjoint, NewAAQuad(NodeID(i), StyleFillStroke, float64(i)*100, 0, 10, 10, ColorWhite, ColorBlack))
	}
	r, _ := newTestRenderer(t, opts)
	if err := r.SetScene(disjoint); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(nil); err != nil {
		t.Fatal(err)
	}
	if runs := countShaderRuns(r.buffers); runs >= 8 {
		t.Errorf("grouping left %d runs for 8 buffers", runs)
	}
	if got := r.Stats().DrawCalls; got != 8 {
		t.Errorf("DrawCalls = %d, want 8", got)
	}

	// Nested shapes overlap, so paint order must survive untouched.
	nested := []DrawCommand{
		NewAAQuad(0, StyleFillStroke, 0, 0, 100, 100, ColorWhite, ColorBlack),
		NewAAQuad(1, StyleFillStroke, 10, 10, 50, 50, ColorWhite, ColorBlack),
	}
	r2, _ := newTestRenderer(t, opts)
	if err := r2.SetScene(nested); err != nil {
		t.Fatal(err)
	}
	want := []struct {
		source int
		shader ShaderKind
	}{{0, ShaderGradient}, {0, ShaderFlat}, {1, ShaderGradient}, {1, ShaderFlat}}
	for i, b := range r2.buffers {
		if b.source != want[i].source || b.shader != want[i].shader {
			t.Errorf("buffer %d = %d/%v, want %d/%v", i, b.source, b.shader, want[i].source, want[i].shader)
		}
	}
}

func TestCountShaderRuns(t *testing.T) {
	bufs := []compiledBuffer{{shader: ShaderFlat}, {shader: ShaderFlat}, {shader: ShaderCircle}, {shader: ShaderFlat}}
	if got := countShaderRuns(bufs); got != 3 {
		t.Errorf("countShaderRuns = %d, want 3", got)
	}
	if countShaderRuns(nil) != 0 {
		t.Error("countShaderRuns(nil) != 0")
	}
}
