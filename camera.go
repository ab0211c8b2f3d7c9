package arbor

import "math"

// Scale limits. A single ScaleBy call never shrinks by more than
// MinScaleFactor, and the accumulated scale stays within [MinScale, MaxScale].
const (
	MinScaleFactor = 0.1
	MinScale       = 1e-3
	MaxScale       = 1e4
)

// Camera holds the view transform: translation, rotation and uniform scale.
//
// The forward (render) chain applied to a drawing-space point p is
//
//	screen = viewport(project(Scale · Rotate · (p + Translation)))
//
// and TransformPoint undoes it in exactly the reverse order: remove the
// letterbox offset, undo scale, undo rotation, undo translation. ModelView
// builds the matrix the renderer uploads from the same three steps.
type Camera struct {
	// X and Y are the translation in drawing units.
	X, Y float64
	// Rotation is the rotation in radians (counter-clockwise).
	Rotation float64
	// Scale is the zoom factor (1 = identity). Always positive.
	Scale float64
}

// NewCamera returns a camera with the identity transform.
func NewCamera() *Camera {
	return &Camera{Scale: 1}
}

// ResetTransformations restores the identity transform.
func (c *Camera) ResetTransformations() {
	*c = Camera{Scale: 1}
}

// ResetTranslation clears only the translation.
func (c *Camera) ResetTranslation() {
	c.X, c.Y = 0, 0
}

// Translate pans by a pixel delta (dx right, dy down) on a canvas of the
// given size so that content follows the pointer under any rotation or scale.
func (c *Camera) Translate(dx, dy, canvasW, canvasH float64) {
	vp := safeLetterbox(canvasW, canvasH)
	// pixels → camera-space drawing units
	ux := dx / vp.Width * LogicalWidth
	uy := -dy / vp.Height * LogicalHeight
	// undo scale and rotation to get a drawing-space delta
	s := c.scaleOrOne()
	sin, cos := math.Sincos(-c.Rotation)
	c.X += (cos*ux - sin*uy) / s
	c.Y += (sin*ux + cos*uy) / s
}

// Rotate adds dTheta radians to the rotation.
func (c *Camera) Rotate(dTheta float64) {
	if math.IsNaN(dTheta) || math.IsInf(dTheta, 0) {
		return
	}
	c.Rotation = math.Mod(c.Rotation+dTheta, 2*math.Pi)
}

// ScaleBy multiplies the zoom by factor. Factors below MinScaleFactor (zero,
// negative and NaN included) are clamped to it, and the result is clamped to
// [MinScale, MaxScale], so the transform never degenerates or inverts.
func (c *Camera) ScaleBy(factor float64) {
	if !(factor >= MinScaleFactor) {
		factor = MinScaleFactor
	}
	c.Scale = clampScale(c.scaleOrOne() * factor)
}

func clampScale(s float64) float64 {
	if math.IsInf(s, 1) {
		return MaxScale
	}
	return math.Max(MinScale, math.Min(MaxScale, s))
}

func (c *Camera) scaleOrOne() float64 {
	if !(c.Scale > 0) {
		return 1
	}
	return c.Scale
}

// View returns the drawing-space view matrix Scale · Rotate · Translate.
func (c *Camera) View() Affine {
	s := c.scaleOrOne()
	return scaleAffine(s, s).Mul(rotateAffine(c.Rotation)).Mul(translateAffine(c.X, c.Y))
}

// Projection returns the matrix from drawing units to normalized device
// coordinates.
func (c *Camera) Projection() Affine {
	return projectionAffine
}

// ModelView returns the matrix applied to compiled buffer positions before
// Projection. Buffers are stored pre-scaled to device units, so it first maps
// them back to drawing units and then applies View.
func (c *Camera) ModelView() Affine {
	return c.View().Mul(unprojectionAffine)
}

// Project converts a drawing-space point to screen pixels on a canvas of
// the given size.
func (c *Camera) Project(p Vec2, canvasW, canvasH float64) Vec2 {
	vp := safeLetterbox(canvasW, canvasH)
	nx, ny := projectionAffine.Mul(c.View()).Apply(p.X, p.Y)
	sx, sy := ndcToScreen(vp, nx, ny)
	return Vec2{sx, sy}
}

// TransformPoint converts a screen pixel on a canvas of the given size into
// drawing space. It is the exact inverse of Project.
func (c *Camera) TransformPoint(screenX, screenY, canvasW, canvasH float64) Vec2 {
	vp := safeLetterbox(canvasW, canvasH)

	// remove the letterbox offset and normalize
	nx, ny := screenToNDC(vp, screenX, screenY)
	x, y := unprojectionAffine.Apply(nx, ny)

	// undo scale
	s := c.scaleOrOne()
	x /= s
	y /= s

	// undo rotation
	sin, cos := math.Sincos(-c.Rotation)
	x, y = cos*x-sin*y, sin*x+cos*y

	// undo translation
	return Vec2{x - c.X, y - c.Y}
}

// FocusCommand centres the camera on cmd and sets the scale so that its
// larger extent spans fill (0, 1] of the viewport. Rotation is kept.
func (c *Camera) FocusCommand(cmd *DrawCommand, fill float64) {
	if cmd == nil {
		return
	}
	if !(fill > 0) || fill > 1 {
		fill = 1
	}
	c.ResetTranslation()
	center := cmd.Center()
	c.X -= center.X
	c.Y -= center.Y

	w, h := cmd.Extent()
	if !(w > 0) && !(h > 0) {
		return
	}
	s := math.Inf(1)
	if w > 0 {
		s = math.Min(s, LogicalWidth/w)
	}
	if h > 0 {
		s = math.Min(s, LogicalHeight/h)
	}
	c.Scale = clampScale(s * fill)
}
