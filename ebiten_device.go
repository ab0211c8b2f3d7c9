package arbor

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenDevice implements Device on Ebitengine. Programs are Kage shaders,
// buffers are owned float32 arrays, and the uploaded matrices are applied to
// positions on the CPU when a draw call is assembled.
//
// Call SetTarget with the frame's screen image before rendering.
type EbitenDevice struct {
	target *ebiten.Image

	buffers  map[BufferHandle][]float32
	programs map[ProgramHandle]*ebiten.Shader
	nextID   uint32

	program   *ebiten.Shader
	transform Affine // projection · modelView
	viewport  Rect

	attribs     [numAttribSlots]BufferHandle
	attribSizes [numAttribSlots]int

	// Scratch reused across draw calls.
	verts []ebiten.Vertex
	inds  []uint32
}

// NewEbitenDevice returns a device with no target.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{
		buffers:   make(map[BufferHandle][]float32),
		programs:  make(map[ProgramHandle]*ebiten.Shader),
		transform: IdentityAffine,
	}
}

// SetTarget sets the image subsequent Clear and Draw calls write to.
func (d *EbitenDevice) SetTarget(img *ebiten.Image) {
	d.target = img
}

// Target returns the current target image.
func (d *EbitenDevice) Target() *ebiten.Image {
	return d.target
}

func (d *EbitenDevice) handle() uint32 {
	d.nextID++
	return d.nextID
}

func (d *EbitenDevice) NewBuffer(data []float32) (BufferHandle, error) {
	h := BufferHandle(d.handle())
	d.buffers[h] = append([]float32(nil), data...)
	return h, nil
}

func (d *EbitenDevice) DeleteBuffer(h BufferHandle) {
	delete(d.buffers, h)
}

func (d *EbitenDevice) NewProgram(kind ShaderKind, src []byte) (ProgramHandle, error) {
	s, err := ebiten.NewShader(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrShaderCompile, kind, err)
	}
	h := ProgramHandle(d.handle())
	d.programs[h] = s
	return h, nil
}

func (d *EbitenDevice) DeleteProgram(h ProgramHandle) {
	if s, ok := d.programs[h]; ok {
		if d.program == s {
			d.program = nil
		}
		s.Deallocate()
		delete(d.programs, h)
	}
}

func (d *EbitenDevice) UseProgram(h ProgramHandle) {
	d.program = d.programs[h]
}

func (d *EbitenDevice) SetMatrices(projection, modelView Affine) {
	d.transform = projection.Mul(modelView)
}

func (d *EbitenDevice) BindAttrib(slot AttribSlot, buf BufferHandle, size int) {
	if slot >= numAttribSlots {
		return
	}
	d.attribs[slot] = buf
	d.attribSizes[slot] = size
}

func (d *EbitenDevice) SetViewport(vp Rect) {
	d.viewport = vp
}

func (d *EbitenDevice) Clear(c Color) {
	if d.target == nil {
		return
	}
	d.target.Fill(c.toRGBA())
}

// Draw assembles count vertices from the bound attributes into screen space
// and submits them as one DrawTrianglesShader32 call clipped to the viewport.
func (d *EbitenDevice) Draw(topology Topology, count int) error {
	if d.target == nil {
		return fmt.Errorf("arbor: draw: %w", ErrContextUnavailable)
	}
	if d.program == nil {
		return fmt.Errorf("arbor: draw: %w", ErrNotInitialized)
	}
	pos := d.attribute(AttribPosition, 2, count)
	col := d.attribute(AttribColor, 4, count)
	if pos == nil || col == nil {
		return fmt.Errorf("arbor: draw: %w: position/color buffer shorter than %d vertices", ErrMissingAttribute, count)
	}
	local := d.attribute(AttribLocal, 2, count)

	d.verts = d.verts[:0]
	for i := 0; i < count; i++ {
		nx, ny := d.transform.Apply(float64(pos[2*i]), float64(pos[2*i+1]))
		sx, sy := ndcToScreen(d.viewport, nx, ny)
		v := ebiten.Vertex{
			DstX:   float32(sx),
			DstY:   float32(sy),
			ColorR: col[4*i],
			ColorG: col[4*i+1],
			ColorB: col[4*i+2],
			ColorA: col[4*i+3],
		}
		if local != nil {
			v.Custom0 = local[2*i]
			v.Custom1 = local[2*i+1]
		}
		d.verts = append(d.verts, v)
	}
	d.inds = triangleIndices(d.inds[:0], topology, count)
	if len(d.inds) == 0 {
		return nil
	}

	dst := d.target
	if d.viewport.Width > 0 && d.viewport.Height > 0 {
		r := image.Rect(int(d.viewport.X), int(d.viewport.Y),
			int(d.viewport.X+d.viewport.Width+0.5), int(d.viewport.Y+d.viewport.Height+0.5))
		dst = d.target.SubImage(r).(*ebiten.Image)
	}

	var op ebiten.DrawTrianglesShaderOptions
	op.AntiAlias = true
	dst.DrawTrianglesShader32(d.verts, d.inds, d.program, &op)
	return nil
}

// attribute returns the data bound to slot when it holds at least count
// vertices of the expected size, or nil.
func (d *EbitenDevice) attribute(slot AttribSlot, size, count int) []float32 {
	h := d.attribs[slot]
	if h == 0 || d.attribSizes[slot] != size {
		return nil
	}
	data := d.buffers[h]
	if len(data) < size*count {
		return nil
	}
	return data
}

// LiveBuffers returns the number of buffers not yet deleted.
func (d *EbitenDevice) LiveBuffers() int {
	return len(d.buffers)
}
