package arbor

// BufferHandle identifies a vertex buffer owned by a Device. Zero is never a
// valid handle.
type BufferHandle uint32

// ProgramHandle identifies a compiled shader program owned by a Device. Zero
// is never a valid handle.
type ProgramHandle uint32

// AttribSlot is a vertex attribute binding point.
type AttribSlot uint8

const (
	AttribPosition AttribSlot = iota // vec2, device units
	AttribColor                      // vec4, premultiplied
	AttribLocal                      // vec2, shape-local [-1, 1]
	numAttribSlots
)

// Device is the GPU context boundary. Every piece of GPU state the renderer
// touches goes through these calls, so state transitions are explicit and a
// recording implementation can stand in for the GPU in tests.
//
// Devices are used from the interactive goroutine only.
type Device interface {
	// NewBuffer uploads data into a new buffer.
	NewBuffer(data []float32) (BufferHandle, error)
	// DeleteBuffer frees a buffer. Deleting an unknown handle is a no-op.
	DeleteBuffer(BufferHandle)

	// NewProgram compiles and links the source for kind. Failures wrap
	// ErrShaderCompile.
	NewProgram(kind ShaderKind, src []byte) (ProgramHandle, error)
	// DeleteProgram frees a program.
	DeleteProgram(ProgramHandle)
	// UseProgram makes p the current program.
	UseProgram(p ProgramHandle)
	// SetMatrices uploads the projection and model-view uniforms of the
	// current program.
	SetMatrices(projection, modelView Affine)

	// BindAttrib attaches buf to slot with size components per vertex.
	BindAttrib(slot AttribSlot, buf BufferHandle, size int)
	// SetViewport sets the pixel rectangle normalized device coordinates map
	// into. Drawing is clipped to it.
	SetViewport(vp Rect)
	// Clear fills the whole canvas with c.
	Clear(c Color)
	// Draw issues one draw call over the first count vertices of the bound
	// attributes.
	Draw(topology Topology, count int) error
}

// triangleIndices expands a topology into a triangle list over count
// vertices, appending to dst.
func triangleIndices(dst []uint32, topology Topology, count int) []uint32 {
	switch topology {
	case TopologyTriangleStrip:
		for i := 0; i+2 < count; i++ {
			if i%2 == 0 {
				dst = append(dst, uint32(i), uint32(i+1), uint32(i+2))
			} else {
				dst = append(dst, uint32(i+1), uint32(i), uint32(i+2))
			}
		}
	case TopologyTriangleFan:
		for i := 1; i+1 < count; i++ {
			dst = append(dst, 0, uint32(i), uint32(i+1))
		}
	case TopologyTriangles:
		for i := 0; i+2 < count; i += 3 {
			dst = append(dst, uint32(i), uint32(i+1), uint32(i+2))
		}
	}
	return dst
}
