package arbor

import (
	"fmt"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// View is an interactive visualization of one tree. It implements
// ebiten.Game: layouts run on a Worker, the Renderer draws the newest
// resolved scene under the Camera, and pointer and keyboard input drive the
// camera and the selection.
//
// All methods except SetTree must be called from the game goroutine.
type View struct {
	cfg      Config
	stops    GradientStops
	tree     *Tree
	layout   Layout
	palette  *Palette
	camera   *Camera
	worker   *Worker
	renderer *Renderer
	device   Device

	commands   []DrawCommand
	sceneDirty bool
	layoutErr  error
	// sceneTree is the tree commands were laid out from. It lags tree
	// until the layout requested after a SetTree resolves.
	sceneTree     *Tree
	requestedTree *Tree
	pendingFocus  NodeID

	initDone bool
	initErr  error

	canvasW, canvasH float64

	pointer     pointerState
	tooltip     tooltip
	injectQueue []syntheticEvent
	script      *Script

	screenshotQueue []string
	// ScreenshotDir is where Screenshot writes PNGs.
	ScreenshotDir string

	font *Font

	pendingMu   sync.Mutex
	pendingTree *Tree

	// OnSelect, when set, is called after a click selects a node.
	OnSelect func(n *Node)
	// OnLayout, when set, is called with every layout result the view
	// accepts or rejects.
	OnLayout func(res Result)
	// ExitWhenScriptDone ends the game loop once the attached script has
	// run every step.
	ExitWhenScriptDone bool
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithLayout replaces the treemap configured in Config.
func WithLayout(l Layout) ViewOption {
	return func(v *View) { v.layout = l }
}

// WithDevice replaces the default EbitenDevice.
func WithDevice(d Device) ViewOption {
	return func(v *View) { v.device = d }
}

// NewView validates cfg and returns a view of t. t may be nil for layouts
// that draw without a tree. The first layout is requested immediately.
func NewView(t *Tree, cfg Config, opts ...ViewOption) (*View, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stops, err := cfg.GradientStops()
	if err != nil {
		return nil, err
	}
	v := &View{
		cfg:           cfg,
		stops:         stops,
		tree:          t,
		layout:        cfg.TreemapLayout(),
		camera:        NewCamera(),
		worker:        NewWorker(),
		renderer:      NewRenderer(cfg.RendererOptions()),
		canvasW:       float64(cfg.Window.Width),
		canvasH:       float64(cfg.Window.Height),
		ScreenshotDir: cfg.Window.ScreenshotDir,
		pendingFocus:  NoNode,
	}
	for _, o := range opts {
		o(v)
	}
	if err := v.Relayout(); err != nil {
		return nil, err
	}
	return v, nil
}

// Camera returns the view's camera.
func (v *View) Camera() *Camera { return v.camera }

// Renderer returns the view's renderer.
func (v *View) Renderer() *Renderer { return v.renderer }

// Tree returns the tree currently shown.
func (v *View) Tree() *Tree { return v.tree }

// Commands returns the installed draw commands. The slice must not be
// modified.
func (v *View) Commands() []DrawCommand { return v.commands }

// LayoutErr returns the error of the last rejected layout, or nil.
func (v *View) LayoutErr() error { return v.layoutErr }

// InitErr returns the fatal renderer initialization error, or nil.
func (v *View) InitErr() error { return v.initErr }

// Worker returns the layout worker.
func (v *View) Worker() *Worker { return v.worker }

// CanvasSize returns the canvas size in pixels.
func (v *View) CanvasSize() (w, h float64) { return v.canvasW, v.canvasH }

// SetTree replaces the tree on the next Update. Safe to call from any
// goroutine.
func (v *View) SetTree(t *Tree) {
	v.pendingMu.Lock()
	v.pendingTree = t
	v.pendingMu.Unlock()
}

// SetLayout switches to l and relayouts.
func (v *View) SetLayout(l Layout) error {
	v.layout = l
	return v.Relayout()
}

// ActiveLayout returns the active layout.
func (v *View) ActiveLayout() Layout { return v.layout }

// Relayout requests a new layout of the current tree with a palette sized
// for it. The previous scene stays on screen until the result arrives.
func (v *View) Relayout() error {
	depth := 0
	if v.tree != nil {
		depth = v.tree.MaxDepth()
	}
	p, err := NewGradientPalette(depth, v.stops)
	if err != nil {
		return err
	}
	v.palette = p
	if _, err := v.worker.Request(v.tree, v.layout, p); err != nil {
		return err
	}
	v.requestedTree = v.tree
	return nil
}

// sceneStale reports whether the installed commands were laid out from a
// tree other than the current one.
func (v *View) sceneStale() bool { return v.sceneTree != v.tree }

// Select marks the node as selected, relayouts and focuses the camera on
// it. Unknown IDs are ignored.
func (v *View) Select(id NodeID) *Node {
	if v.tree == nil {
		return nil
	}
	n := v.tree.Node(id)
	if n == nil {
		return nil
	}
	v.tree.Select(id)
	if err := v.Relayout(); err != nil {
		Logger().Warn("relayout after select", "err", err)
	}
	v.Focus(id)
	if v.OnSelect != nil {
		v.OnSelect(n)
	}
	return n
}

// Focus centres the camera on the first command of the node. Selection does
// not move geometry, so the installed commands are used. While the scene
// belongs to a replaced tree the focus waits for the next layout.
func (v *View) Focus(id NodeID) {
	if v.sceneStale() {
		v.pendingFocus = id
		return
	}
	i := FindCommand(v.commands, id)
	if i < 0 {
		return
	}
	v.camera.FocusCommand(&v.commands[i], v.cfg.Controls.FocusFill)
}

// PickScreen resolves a canvas pixel to the topmost node drawn there. The
// node comes from the tree the drawn scene was laid out from, which differs
// from Tree for the frames between SetTree and the next resolved layout.
func (v *View) PickScreen(sx, sy float64) *Node {
	p := v.camera.TransformPoint(sx, sy, v.canvasW, v.canvasH)
	return PickNode(v.sceneTree, v.commands, p)
}

// Update implements ebiten.Game.
func (v *View) Update() error {
	v.installPendingTree()
	if v.script != nil {
		v.script.step(v)
		if v.script.Done() && v.ExitWhenScriptDone && len(v.screenshotQueue) == 0 {
			return ebiten.Termination
		}
	}
	v.processInput()
	v.pollLayout()
	return nil
}

func (v *View) installPendingTree() {
	v.pendingMu.Lock()
	t := v.pendingTree
	v.pendingTree = nil
	v.pendingMu.Unlock()
	if t == nil {
		return
	}
	v.tree = t
	v.tooltip = tooltip{}
	if err := v.Relayout(); err != nil {
		Logger().Warn("relayout after tree change", "err", err)
	}
	Logger().Info("tree replaced", "nodes", t.Len(), "depth", t.MaxDepth())
}

// pollLayout installs the latest layout result if one has resolved. A
// failed layout keeps the previous commands.
func (v *View) pollLayout() {
	res, ok := v.worker.Poll()
	if !ok {
		return
	}
	if v.OnLayout != nil {
		v.OnLayout(res)
	}
	if res.Err != nil {
		v.layoutErr = res.Err
		return
	}
	v.layoutErr = nil
	v.commands = res.Commands
	v.sceneTree = v.requestedTree
	v.sceneDirty = true
	if id := v.pendingFocus; id != NoNode && !v.sceneStale() {
		v.pendingFocus = NoNode
		v.Focus(id)
	}
}

// Draw implements ebiten.Game.
func (v *View) Draw(screen *ebiten.Image) {
	if !v.initDone {
		v.initRenderer()
	}
	if v.initErr != nil {
		v.drawErrorSurface(screen)
		v.flushScreenshots(screen)
		return
	}
	if ed, ok := v.device.(*EbitenDevice); ok {
		ed.SetTarget(screen)
	}

	b := screen.Bounds()
	if err := v.renderer.Resize(float64(b.Dx()), float64(b.Dy())); err != nil {
		return
	}
	if v.sceneDirty {
		if err := v.renderer.SetScene(v.commands); err != nil {
			Logger().Error("install scene", "err", err)
		}
		v.sceneDirty = false
	}
	if err := v.renderer.Render(v.camera); err != nil {
		Logger().Error("render", "err", err)
	}

	v.drawTooltip(screen)
	if v.cfg.Window.HUD {
		v.drawHUD(screen)
	}
	v.flushScreenshots(screen)
}

// initRenderer initializes the renderer once. A failure is permanent.
func (v *View) initRenderer() {
	v.initDone = true
	if v.device == nil {
		v.device = NewEbitenDevice()
	}
	if err := v.renderer.Init(v.device); err != nil {
		v.initErr = err
		return
	}
	v.sceneDirty = true
}

// Layout implements ebiten.Game. The canvas always matches the window.
func (v *View) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(outsideWidth, 1), max(outsideHeight, 1)
	v.canvasW, v.canvasH = float64(w), float64(h)
	return w, h
}

// Close releases the renderer and stops the worker.
func (v *View) Close() {
	v.worker.Close()
	v.renderer.Close()
}

func (v *View) overlayFont() *Font {
	if v.font == nil {
		f, err := DefaultFont()
		if err != nil {
			Logger().Error("load font", "err", err)
			return nil
		}
		v.font = f
	}
	return v.font
}

// drawErrorSurface replaces the scene with the initialization error.
func (v *View) drawErrorSurface(screen *ebiten.Image) {
	screen.Fill(ColorBlack.toRGBA())
	f := v.overlayFont()
	if f == nil {
		return
	}
	msg := fmt.Sprintf("Unable to initialize the renderer.\n%v", v.initErr)
	w, h := f.MeasureString(msg)
	b := screen.Bounds()
	x := math.Max(8, (float64(b.Dx())-w)/2)
	y := math.Max(8, (float64(b.Dy())-h)/2)
	f.DrawLabel(screen, msg, x, y, ColorErrorText, ColorTransparent)
}

// tooltip is the hover label.
type tooltip struct {
	active bool
	node   NodeID
	label  string
	x, y   float64
}

var tooltipBackground = Color{0, 0, 0, 0.75}

// tooltipOffset places the label below and right of the pointer.
const tooltipOffset = 14

func (v *View) drawTooltip(screen *ebiten.Image) {
	if !v.tooltip.active || v.tooltip.label == "" {
		return
	}
	f := v.overlayFont()
	if f == nil {
		return
	}
	f.DrawLabel(screen, v.tooltip.label, v.tooltip.x+tooltipOffset, v.tooltip.y+tooltipOffset, ColorWhite, tooltipBackground)
}

// Run opens a window and runs v until it is closed.
func Run(v *View) error {
	ebiten.SetWindowTitle(v.cfg.Window.Title)
	ebiten.SetWindowSize(v.cfg.Window.Width, v.cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	defer v.Close()
	return ebiten.RunGame(v)
}
