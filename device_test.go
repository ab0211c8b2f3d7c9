package arbor

import (
	"errors"
	"fmt"
)

// fakeDevice records every call so tests can assert on GPU resource
// lifetime and state changes without a GPU.
type fakeDevice struct {
	nextBuffer  BufferHandle
	nextProgram ProgramHandle
	buffers     map[BufferHandle]int // handle -> float count
	programs    map[ProgramHandle]ShaderKind

	failProgram ShaderKind // kind whose compile fails, if failCompile
	failCompile bool
	failBufferAfter int // NewBuffer fails once this many buffers exist; 0 disables

	calls    []string
	used     []ShaderKind // program kind per UseProgram
	draws    []fakeDraw
	bound    [numAttribSlots]BufferHandle
	viewport Rect
	clears   int
	matrices int
}

type fakeDraw struct {
	topology Topology
	count    int
	program  ShaderKind
	position BufferHandle
	local    BufferHandle
}

var errFakeCompile = errors.New("fake: syntax error")

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		buffers:  make(map[BufferHandle]int),
		programs: make(map[ProgramHandle]ShaderKind),
	}
}

func (d *fakeDevice) NewBuffer(data []float32) (BufferHandle, error) {
	if d.failBufferAfter > 0 && len(d.buffers) >= d.failBufferAfter {
		return 0, errors.New("fake: out of memory")
	}
	d.nextBuffer++
	d.buffers[d.nextBuffer] = len(data)
	d.calls = append(d.calls, fmt.Sprintf("new %d", d.nextBuffer))
	return d.nextBuffer, nil
}

func (d *fakeDevice) DeleteBuffer(h BufferHandle) {
	if _, ok := d.buffers[h]; !ok {
		panic(fmt.Sprintf("fake: delete of unknown buffer %d", h))
	}
	delete(d.buffers, h)
	d.calls = append(d.calls, fmt.Sprintf("delete %d", h))
}

func (d *fakeDevice) NewProgram(kind ShaderKind, src []byte) (ProgramHandle, error) {
	if len(src) == 0 {
		return 0, errors.New("fake: empty source")
	}
	if d.failCompile && kind == d.failProgram {
		return 0, errFakeCompile
	}
	d.nextProgram++
	d.programs[d.nextProgram] = kind
	return d.nextProgram, nil
}

func (d *fakeDevice) DeleteProgram(p ProgramHandle) {
	delete(d.programs, p)
}

func (d *fakeDevice) UseProgram(p ProgramHandle) {
	d.used = append(d.used, d.programs[p])
}

func (d *fakeDevice) SetMatrices(projection, modelView Affine) {
	d.matrices++
}

func (d *fakeDevice) BindAttrib(slot AttribSlot, buf BufferHandle, size int) {
	if buf != 0 {
		if _, ok := d.buffers[buf]; !ok {
			panic(fmt.Sprintf("fake: bind of deleted buffer %d", buf))
		}
	}
	d.bound[slot] = buf
}

func (d *fakeDevice) SetViewport(vp Rect) { d.viewport = vp }

func (d *fakeDevice) Clear(c Color) { d.clears++ }

func (d *fakeDevice) Draw(topology Topology, count int) error {
	kind := ShaderFlat
	if len(d.used) > 0 {
		kind = d.used[len(d.used)-1]
	}
	d.draws = append(d.draws, fakeDraw{
		topology: topology,
		count:    count,
		program:  kind,
		position: d.bound[AttribPosition],
		local:    d.bound[AttribLocal],
	})
	return nil
}

// resetFrame clears per-frame records.
func (d *fakeDevice) resetFrame() {
	d.used = d.used[:0]
	d.draws = d.draws[:0]
	d.clears = 0
	d.matrices = 0
}
