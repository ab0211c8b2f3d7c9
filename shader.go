package arbor

import (
	"errors"
	"fmt"
)

// ShaderKind selects the fragment program a geometry is drawn with.
type ShaderKind uint8

const (
	// ShaderFlat draws the interpolated vertex color. It is the default
	// program bound at the start of every frame.
	ShaderFlat ShaderKind = iota
	// ShaderGradient shades fills vertically across the shape's local frame.
	ShaderGradient
	// ShaderCircle cuts an anti-aliased ellipse out of its bounding quad.
	ShaderCircle
	numShaderKinds
)

var shaderNames = [...]string{"flat", "gradient", "circle"}

func (k ShaderKind) String() string {
	if int(k) < len(shaderNames) {
		return shaderNames[k]
	}
	return "unknown"
}

// needsLocals reports whether the program reads the local attribute.
func (k ShaderKind) needsLocals() bool { return k != ShaderFlat }

// --- Kage shader sources ---
// Vertex colors arrive premultiplied. The local attribute travels in
// custom.xy.

const flatShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4, custom vec4) vec4 {
	return color
}
`

const gradientShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4, custom vec4) vec4 {
	t := clamp(custom.y*0.5+0.5, 0, 1)
	rgb := min(color.rgb*mix(0.75, 1.15, t), vec3(color.a))
	return vec4(rgb, color.a)
}
`

const circleShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4, custom vec4) vec4 {
	d := length(custom.xy)
	w := max(fwidth(d), 0.0001)
	return color * (1 - smoothstep(1-w, 1, d))
}
`

var shaderSources = [numShaderKinds]string{
	ShaderFlat:     flatShaderSrc,
	ShaderGradient: gradientShaderSrc,
	ShaderCircle:   circleShaderSrc,
}

type shaderState uint8

const (
	shaderUninitialized shaderState = iota
	shaderInitialized               // default program bound
	shaderActive                    // a non-default program bound
)

// shaderManager owns the compiled programs of one device and tracks which
// one is bound. Programs are compiled once in init and live until release.
type shaderManager struct {
	dev      Device
	programs [numShaderKinds]ProgramHandle
	state    shaderState
	current  ShaderKind

	projection, modelView Affine

	// switches counts program binds after the per-frame default bind.
	switches int
}

// init compiles every program. On failure the programs compiled so far are
// freed and an *InitError is returned; the manager stays uninitialized.
func (m *shaderManager) init(dev Device) error {
	if dev == nil {
		return &InitError{Stage: "device", Err: ErrContextUnavailable}
	}
	m.dev = dev
	for k := ShaderKind(0); k < numShaderKinds; k++ {
		p, err := dev.NewProgram(k, []byte(shaderSources[k]))
		if err != nil {
			m.release()
			if !errors.Is(err, ErrShaderCompile) {
				err = fmt.Errorf("%w: %w", ErrShaderCompile, err)
			}
			return &InitError{Stage: "compile", Kind: k, Err: err}
		}
		m.programs[k] = p
		Logger().Debug("shader compiled", "kind", k, "program", p)
	}
	m.state = shaderInitialized
	m.current = ShaderFlat
	return nil
}

// bindDefault binds the default program with the given matrices. Called at
// the start of every frame pass.
func (m *shaderManager) bindDefault(projection, modelView Affine) {
	if m.state == shaderUninitialized {
		return
	}
	m.projection, m.modelView = projection, modelView
	m.bind(ShaderFlat)
	m.state = shaderInitialized
	m.switches = 0
}

// use makes kind current, binding it and rebinding the matrices only when it
// differs from the current program. Reports whether a switch happened.
func (m *shaderManager) use(kind ShaderKind) bool {
	if m.state == shaderUninitialized || kind == m.current || kind >= numShaderKinds {
		return false
	}
	m.bind(kind)
	m.state = shaderActive
	if kind == ShaderFlat {
		m.state = shaderInitialized
	}
	m.switches++
	return true
}

func (m *shaderManager) bind(kind ShaderKind) {
	m.dev.UseProgram(m.programs[kind])
	m.dev.SetMatrices(m.projection, m.modelView)
	m.current = kind
}

// release frees every compiled program and returns to the uninitialized
// state.
func (m *shaderManager) release() {
	if m.dev != nil {
		for k, p := range m.programs {
			if p != 0 {
				m.dev.DeleteProgram(p)
				m.programs[k] = 0
			}
		}
	}
	m.state = shaderUninitialized
	m.current = ShaderFlat
}
