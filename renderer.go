package arbor

import (
	"fmt"
	"time"
)

// RendererOptions configures a Renderer.
type RendererOptions struct {
	CompileOptions
	// GroupShaders reorders buffers into same-shader runs where doing so
	// cannot change the image, reducing program switches.
	GroupShaders bool
	// ClearColor fills the canvas before every frame.
	ClearColor Color
	// Debug logs per-frame stats at debug level.
	Debug bool
}

// compiledBuffer is one uploaded Geometry.
type compiledBuffer struct {
	position, color, local BufferHandle
	topology               Topology
	count                  int
	shader                 ShaderKind
	source                 int
	bounds                 Rect // device units, for grouping
}

// RenderStats reports the renderer's counters.
type RenderStats struct {
	// Per last frame.
	DrawCalls      int
	ShaderSwitches int
	Vertices       int
	// Current scene.
	Commands   int
	Buffers    int
	Generation uint64
}

// Renderer owns a Device, the compiled shader programs and the GPU buffers
// of the current scene, and draws that scene under a Camera each frame.
//
// A Renderer must be used from a single goroutine. SetScene is never called
// while Render runs, so every frame draws exactly one generation.
type Renderer struct {
	opts    RendererOptions
	dev     Device
	shaders shaderManager

	viewport         Rect
	canvasW, canvasH float64

	buffers    []compiledBuffer
	commands   int
	generation uint64
	live       int

	stats RenderStats
	debug debugStats
}

// NewRenderer returns an uninitialized renderer.
func NewRenderer(opts RendererOptions) *Renderer {
	return &Renderer{opts: opts}
}

// Options returns the renderer's options.
func (r *Renderer) Options() RendererOptions { return r.opts }

// Init binds the renderer to dev and compiles every shader program. A
// failure is fatal: it is returned as an *InitError and the renderer stays
// unusable.
func (r *Renderer) Init(dev Device) error {
	if err := r.shaders.init(dev); err != nil {
		Logger().Error("renderer init failed", "err", err)
		return err
	}
	r.dev = dev
	if r.canvasW == 0 || r.canvasH == 0 {
		r.viewport = Rect{Width: LogicalWidth, Height: LogicalHeight}
	}
	Logger().Info("renderer initialized", "circleShaders", r.opts.CircleShaders, "gradients", r.opts.Gradients)
	return nil
}

// Initialized reports whether Init succeeded and Close has not been called.
func (r *Renderer) Initialized() bool {
	return r.dev != nil && r.shaders.state != shaderUninitialized
}

// Resize recomputes the letterboxed viewport for a canvas of w×h pixels.
// Compiled buffers stay valid. Non-positive sizes are rejected and the
// previous viewport is kept.
func (r *Renderer) Resize(w, h float64) error {
	vp, err := Letterbox(w, h)
	if err != nil {
		return fmt.Errorf("arbor: resize %gx%g: %w", w, h, err)
	}
	if w != r.canvasW || h != r.canvasH {
		Logger().Debug("viewport", "canvas", fmt.Sprintf("%gx%g", w, h), "x", vp.X, "y", vp.Y, "w", vp.Width, "h", vp.Height)
	}
	r.canvasW, r.canvasH = w, h
	r.viewport = vp
	return nil
}

// Viewport returns the current letterboxed viewport in canvas pixels.
func (r *Renderer) Viewport() Rect { return r.viewport }

// SetScene compiles cmds into a new buffer generation. Every buffer of the
// previous generation is released before the first new one is allocated.
// On failure the partial generation is released, the scene is left empty
// and the error is returned.
func (r *Renderer) SetScene(cmds []DrawCommand) error {
	if !r.Initialized() {
		return ErrNotInitialized
	}
	start := time.Now()

	geoms := make([]Geometry, 0, len(cmds))
	for i := range cmds {
		geoms = append(geoms, Tessellate(&cmds[i], i, r.opts.CompileOptions)...)
	}
	tessellated := time.Since(start)

	r.Release()
	r.generation++

	bufs := make([]compiledBuffer, 0, len(geoms))
	for i := range geoms {
		b, err := r.upload(&geoms[i])
		if err != nil {
			r.buffers = bufs
			r.Release()
			return fmt.Errorf("arbor: scene generation %d: command %d: %w", r.generation, geoms[i].Source, err)
		}
		bufs = append(bufs, b)
	}
	if r.opts.GroupShaders {
		bufs = groupByShader(bufs)
	}
	r.buffers = bufs
	r.commands = len(cmds)

	r.debug.tessellateTime = tessellated
	r.debug.uploadTime = time.Since(start) - tessellated
	Logger().Debug("scene installed", "generation", r.generation, "commands", len(cmds), "buffers", len(bufs), "live", r.live)
	return nil
}

func (r *Renderer) upload(g *Geometry) (compiledBuffer, error) {
	b := compiledBuffer{
		topology: g.Topology,
		count:    g.Count,
		shader:   g.Shader,
		source:   g.Source,
		bounds:   positionBounds(g.Positions),
	}
	var err error
	if b.position, err = r.newBuffer(g.Positions); err != nil {
		return b, err
	}
	if b.color, err = r.newBuffer(g.Colors); err != nil {
		r.deleteBuffer(&b.position)
		return b, err
	}
	if g.Shader.needsLocals() && len(g.Locals) > 0 {
		if b.local, err = r.newBuffer(g.Locals); err != nil {
			r.deleteBuffer(&b.position)
			r.deleteBuffer(&b.color)
			return b, err
		}
	}
	return b, nil
}

func (r *Renderer) newBuffer(data []float32) (BufferHandle, error) {
	h, err := r.dev.NewBuffer(data)
	if err != nil {
		return 0, err
	}
	r.live++
	return h, nil
}

func (r *Renderer) deleteBuffer(h *BufferHandle) {
	if *h == 0 {
		return
	}
	r.dev.DeleteBuffer(*h)
	*h = 0
	r.live--
}

// Release frees every buffer of the current scene. The programs stay
// compiled.
func (r *Renderer) Release() {
	if r.dev == nil {
		r.buffers = nil
		return
	}
	for i := range r.buffers {
		b := &r.buffers[i]
		r.deleteBuffer(&b.position)
		r.deleteBuffer(&b.color)
		r.deleteBuffer(&b.local)
	}
	r.buffers = nil
	r.commands = 0
}

// Close releases the scene and every shader program. The renderer cannot be
// used afterwards.
func (r *Renderer) Close() {
	r.Release()
	r.shaders.release()
	r.dev = nil
}

// Render draws the current scene under cam: clear, bind the default program
// with the camera matrices, then draw every buffer in paint order,
// switching programs only when a buffer needs a different one.
func (r *Renderer) Render(cam *Camera) error {
	if !r.Initialized() {
		return ErrNotInitialized
	}
	if cam == nil {
		cam = NewCamera()
	}
	start := time.Now()

	r.dev.SetViewport(r.viewport)
	r.dev.Clear(r.opts.ClearColor)
	r.shaders.bindDefault(cam.Projection(), cam.ModelView())

	draws, verts := 0, 0
	for i := range r.buffers {
		b := &r.buffers[i]
		r.shaders.use(b.shader)
		r.dev.BindAttrib(AttribPosition, b.position, 2)
		r.dev.BindAttrib(AttribColor, b.color, 4)
		if b.local != 0 {
			r.dev.BindAttrib(AttribLocal, b.local, 2)
		} else {
			r.dev.BindAttrib(AttribLocal, 0, 0)
		}
		if err := r.dev.Draw(b.topology, b.count); err != nil {
			return fmt.Errorf("arbor: render command %d: %w", b.source, err)
		}
		draws++
		verts += b.count
	}

	r.stats = RenderStats{
		DrawCalls:      draws,
		ShaderSwitches: r.shaders.switches,
		Vertices:       verts,
		Commands:       r.commands,
		Buffers:        len(r.buffers),
		Generation:     r.generation,
	}
	if r.opts.Debug {
		r.debug.renderTime = time.Since(start)
		r.debugLog()
	}
	return nil
}

// Stats returns the counters of the last frame and the current scene.
func (r *Renderer) Stats() RenderStats {
	s := r.stats
	s.Commands = r.commands
	s.Buffers = len(r.buffers)
	s.Generation = r.generation
	return s
}

// LiveBuffers returns the number of device buffers the renderer currently
// owns.
func (r *Renderer) LiveBuffers() int { return r.live }

// groupWindow bounds how far back groupByShader looks for a run to join.
const groupWindow = 64

// groupByShader stably moves each buffer back to the end of the nearest
// earlier run of the same shader, provided it overlaps none of the buffers
// it would jump over. Non-overlapping buffers commute, so the image is
// unchanged.
func groupByShader(bufs []compiledBuffer) []compiledBuffer {
	out := make([]compiledBuffer, 0, len(bufs))
	for _, b := range bufs {
		at := len(out)
		for k := len(out) - 1; k >= 0 && len(out)-k <= groupWindow; k-- {
			if out[k].shader == b.shader {
				at = k + 1
				break
			}
			if rectsOverlap(out[k].bounds, b.bounds) {
				break
			}
		}
		out = append(out, compiledBuffer{})
		copy(out[at+1:], out[at:])
		out[at] = b
	}
	return out
}

// positionBounds returns the bounding rectangle of x, y pairs.
func positionBounds(pos []float32) Rect {
	if len(pos) < 2 {
		return Rect{}
	}
	minX, minY := pos[0], pos[1]
	maxX, maxY := minX, minY
	for i := 2; i+1 < len(pos); i += 2 {
		minX = min(minX, pos[i])
		maxX = max(maxX, pos[i])
		minY = min(minY, pos[i+1])
		maxY = max(maxY, pos[i+1])
	}
	return Rect{X: float64(minX), Y: float64(minY), Width: float64(maxX - minX), Height: float64(maxY - minY)}
}

// rectsOverlap reports whether a and b share any point, edges included.
func rectsOverlap(a, b Rect) bool {
	return a.X <= b.X+b.Width && b.X <= a.X+a.Width &&
		a.Y <= b.Y+b.Height && b.Y <= a.Y+a.Height
}
