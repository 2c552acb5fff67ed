// Package visibility decides which projected lights and edges are exported.
//
// Lights must be inside the viewport and, with a camera, in front of it.
// Edges are decided by their first vertex only, so an edge that starts on
// screen is kept whole even when it leaves the frame.
package visibility

import "math"

// PlaneEpsilon is the tolerance of OnPlane used by the exporter.
const PlaneEpsilon = 1e-4

// IsFrontFacing reports whether a view-space depth lies in front of the camera.
func IsFrontFacing(z float64) bool {
	return z > 0
}

// IsInsideViewport reports whether pixel (x, y) lies within the image grown by
// margin pixels on every side. A negative margin disables the test.
func IsInsideViewport(x, y, margin float64, width, height int) bool {
	if margin < 0 {
		return true
	}
	return x >= -margin && x <= float64(width)+margin &&
		y >= -margin && y <= float64(height)+margin
}

// OnPlane reports whether both endpoint depths lie within eps of z = 0. It
// restricts flat exports to geometry drawn on the XY plane.
func OnPlane(z1, z2, eps float64) bool {
	return math.Abs(z1) < eps && math.Abs(z2) < eps
}

// Filter applies the export visibility policy.
type Filter struct {
	Width, Height int
	// Margin grows the viewport in pixels; negative keeps everything.
	Margin float64
	// Projective enables the front-facing test.
	Projective bool
}

// Visible reports whether a point at pixel (x, y) with depth z is exported.
func (f Filter) Visible(x, y, z float64) bool {
	if f.Projective && !IsFrontFacing(z) {
		return false
	}
	return IsInsideViewport(x, y, f.Margin, f.Width, f.Height)
}
