package arbor

import "math"

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// translateAffine returns a translation by (x, y).
func translateAffine(x, y float64) Affine {
	return Affine{1, 0, 0, 1, x, y}
}

// rotateAffine returns a counter-clockwise rotation by theta radians.
func rotateAffine(theta float64) Affine {
	sin, cos := math.Sincos(theta)
	return Affine{cos, sin, -sin, cos, 0, 0}
}

// scaleAffine returns a scale by (sx, sy).
func scaleAffine(sx, sy float64) Affine {
	return Affine{sx, 0, 0, sy, 0, 0}
}

// Mul returns p * c, i.e. c applied first.
func (p Affine) Mul(c Affine) Affine {
	return Affine{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// Invert returns the inverse matrix. Returns the identity matrix if m is
// singular (determinant ≈ 0).
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// projectionAffine maps drawing units to normalized device coordinates.
var projectionAffine = scaleAffine(2/LogicalWidth, 2/LogicalHeight)

// unprojectionAffine maps normalized device coordinates back to drawing units.
var unprojectionAffine = scaleAffine(LogicalWidth/2, LogicalHeight/2)

// Letterbox returns the largest rectangle with the logical aspect ratio that
// fits centred inside a canvas of the given pixel size. The remainder is left
// as equal margins on either the top/bottom or the left/right.
func Letterbox(canvasW, canvasH float64) (Rect, error) {
	if !(canvasW > 0) || !(canvasH > 0) || math.IsInf(canvasW, 0) || math.IsInf(canvasH, 0) {
		return Rect{}, ErrInvalidCanvasSize
	}
	s := math.Min(canvasW/LogicalWidth, canvasH/LogicalHeight)
	w := LogicalWidth * s
	h := LogicalHeight * s
	return Rect{X: (canvasW - w) / 2, Y: (canvasH - h) / 2, Width: w, Height: h}, nil
}

// safeLetterbox clamps non-positive canvas sizes to one pixel so the result
// can always be used as a divisor.
func safeLetterbox(canvasW, canvasH float64) Rect {
	if !(canvasW >= 1) || math.IsInf(canvasW, 0) {
		canvasW = 1
	}
	if !(canvasH >= 1) || math.IsInf(canvasH, 0) {
		canvasH = 1
	}
	vp, _ := Letterbox(canvasW, canvasH)
	return vp
}

// ndcToScreen maps normalized device coordinates into viewport pixels.
// NDC Y points up; screen Y points down.
func ndcToScreen(vp Rect, nx, ny float64) (float64, float64) {
	return vp.X + (nx+1)/2*vp.Width, vp.Y + (1-ny)/2*vp.Height
}

// screenToNDC is the inverse of ndcToScreen.
func screenToNDC(vp Rect, sx, sy float64) (float64, float64) {
	return (sx-vp.X)/vp.Width*2 - 1, 1 - (sy-vp.Y)/vp.Height*2
}
