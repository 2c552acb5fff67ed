// Package projection maps world-space geometry into the renderer's 2D pixel
// space and computes the normal angles attached to exported edges.
//
// Two coordinate spaces are involved:
//
//   - normalized view space: X and Y in [0,1] across the image, Y up, plus a
//     depth Z that is positive in front of the camera;
//   - pixel space: what the renderer reads, origin at the top-left, Y down.
package projection

import (
	gomath "math"

	"github.com/sreevatsank1999/zenphoton/internal/scene"
	"github.com/sreevatsank1999/zenphoton/pkg/math"
)

// Resolution is the output image size in pixels.
type Resolution struct {
	Width, Height int
}

// Aspect returns width / height.
func (r Resolution) Aspect() float64 {
	return float64(r.Width) / float64(r.Height)
}

// ScreenPoint is a point in normalized view space.
type ScreenPoint struct {
	X, Y float64
	// Z is the depth in front of the camera. Z <= 0 means the point is behind
	// it and must be treated as invisible.
	Z float64
}

// Pixel converts the point to pixel space (Y inverted).
func (p ScreenPoint) Pixel(r Resolution) math.Vec2 {
	return math.Vec2{
		X: p.X * float64(r.Width),
		Y: float64(r.Height) - p.Y*float64(r.Height),
	}
}

// Projector maps world points to normalized view space.
type Projector interface {
	Project(world math.Vec3) ScreenPoint
	// Projective reports whether depth is meaningful. Flat projectors skip
	// the front-facing test.
	Projective() bool
	Resolution() Resolution
}

// PixelOf projects a world point straight to pixel space.
func PixelOf(p Projector, world math.Vec3) math.Vec2 {
	return p.Project(world).Pixel(p.Resolution())
}

// CameraProjector projects through a scene camera.
type CameraProjector struct {
	res        Resolution
	view       math.Mat4
	ortho      bool
	orthoScale float64
	tanHalfFOV float64
	shiftX     float64
	shiftY     float64
}

// NewCameraProjector builds a projector for cam rendering at res.
func NewCameraProjector(cam scene.Camera, res Resolution) *CameraProjector {
	return &CameraProjector{
		res:        res,
		view:       cam.ViewMatrix(),
		ortho:      cam.Type == scene.Orthographic,
		orthoScale: cam.OrthoScale,
		tanHalfFOV: gomath.Tan(cam.FOV / 2),
		shiftX:     cam.ShiftX,
		shiftY:     cam.ShiftY,
	}
}

// Projective implements Projector.
func (c *CameraProjector) Projective() bool { return true }

// Resolution implements Projector.
func (c *CameraProjector) Resolution() Resolution { return c.res }

// Project implements Projector.
//
// The visible frame at depth z spans the larger image axis by ortho_scale
// (orthographic) or 2·z·tan(fov/2) (perspective); the other axis follows the
// aspect ratio. Shift moves the frame centre by a fraction of the larger axis.
func (c *CameraProjector) Project(world math.Vec3) ScreenPoint {
	local := c.view.TransformPoint(world)
	z := -local.Z

	var half float64
	if c.ortho {
		half = c.orthoScale / 2
	} else {
		half = gomath.Abs(z) * c.tanHalfFOV
	}

	halfW, halfH := half, half
	if aspect := c.res.Aspect(); aspect >= 1 {
		halfH = half / aspect
	} else {
		halfW = half * aspect
	}

	cx := c.shiftX * 2 * half
	cy := c.shiftY * 2 * half
	return ScreenPoint{
		X: (local.X - cx + halfW) / (2 * halfW),
		Y: (local.Y - cy + halfH) / (2 * halfH),
		Z: z,
	}
}

// FlatProjector is the 2D mode: world X and Y are measured in image widths,
// so (1, 0) is the bottom-right corner of the image and depth is ignored.
type FlatProjector struct {
	res Resolution
}

// NewFlatProjector builds a flat projector for res.
func NewFlatProjector(res Resolution) *FlatProjector {
	return &FlatProjector{res: res}
}

// Projective implements Projector.
func (f *FlatProjector) Projective() bool { return false }

// Resolution implements Projector.
func (f *FlatProjector) Resolution() Resolution { return f.res }

// Project implements Projector. Z is always 1.
func (f *FlatProjector) Project(world math.Vec3) ScreenPoint {
	return ScreenPoint{
		X: world.X,
		Y: world.Y * f.res.Aspect(),
		Z: 1,
	}
}
