package arbor

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	// ErrContextUnavailable reports that no GPU device could be obtained.
	ErrContextUnavailable = errors.New("arbor: GPU context unavailable")
	// ErrShaderCompile reports a shader program that failed to compile or link.
	ErrShaderCompile = errors.New("arbor: shader compilation failed")
	// ErrNotInitialized is returned by renderer operations issued before Init
	// succeeded or after Close.
	ErrNotInitialized = errors.New("arbor: renderer not initialized")
	// ErrInvalidTree reports a malformed tree (nil root, cycle, duplicate or
	// negative identifier).
	ErrInvalidTree = errors.New("arbor: invalid tree")
	// ErrMissingAttribute reports a node lacking a numeric attribute that the
	// active layout requires.
	ErrMissingAttribute = errors.New("arbor: missing node attribute")
	// ErrInvalidCanvasSize reports a zero or negative canvas dimension.
	ErrInvalidCanvasSize = errors.New("arbor: invalid canvas size")
	// ErrWorkerClosed is returned by Worker operations after Close.
	ErrWorkerClosed = errors.New("arbor: layout worker closed")
)

// InitError is a fatal initialization failure. Rendering for the view that
// produced it falls back to a static error surface and is not retried.
type InitError struct {
	Stage string // "device" or "compile"
	Kind  ShaderKind
	Err   error
}

func (e *InitError) Error() string {
	if e.Stage == "device" {
		return fmt.Sprintf("arbor: init: %v", e.Err)
	}
	return fmt.Sprintf("arbor: init %s shader (%s): %v", e.Kind, e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// LayoutError wraps a failure of a layout run. The caller keeps its last good
// DrawCommand set.
type LayoutError struct {
	Layout string
	Node   NodeID // offending node, or NoNode
	Err    error
}

func (e *LayoutError) Error() string {
	if e.Node != NoNode {
		return fmt.Sprintf("arbor: layout %q: node %d: %v", e.Layout, e.Node, e.Err)
	}
	return fmt.Sprintf("arbor: layout %q: %v", e.Layout, e.Err)
}

func (e *LayoutError) Unwrap() error { return e.Err }
