package projection

import (
	"fmt"
	gomath "math"

	"github.com/sreevatsank1999/zenphoton/pkg/math"
)

// NormalMode selects how the second normal angle of an edge is written.
type NormalMode string

const (
	// NormalDelta writes the second angle relative to the first.
	NormalDelta NormalMode = "delta"
	// NormalAbsolute writes the second angle as is.
	NormalAbsolute NormalMode = "absolute"
)

// ParseNormalMode validates a normal mode name. Empty selects NormalDelta.
func ParseNormalMode(s string) (NormalMode, error) {
	switch NormalMode(s) {
	case "", NormalDelta:
		return NormalDelta, nil
	case NormalAbsolute:
		return NormalAbsolute, nil
	}
	return "", fmt.Errorf("unknown normal mode %q", s)
}

// NormalizeAngle wraps degrees into (-180, 180].
func NormalizeAngle(deg float64) float64 {
	deg = gomath.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	}
	if deg <= -180 {
		deg += 360
	}
	return deg
}

// VectorAngle returns the signed angle of a pixel-space direction against
// (1, 0), in degrees. Inverted normals point the other way. Degenerate
// directions yield 0.
func VectorAngle(d math.Vec2, invert bool) float64 {
	if !d.IsFinite() || d.Length() == 0 {
		return 0
	}
	deg := gomath.Atan2(d.Y, d.X) * 180 / gomath.Pi
	if invert {
		deg += 180
	}
	return NormalizeAngle(deg)
}

// NormalAngle projects a world vertex and the tip of its unit normal and
// returns the angle between them in pixel space.
func NormalAngle(p Projector, vertex, normal math.Vec3, invert bool) float64 {
	if normal.IsZero() {
		return 0
	}
	base := PixelOf(p, vertex)
	tip := PixelOf(p, vertex.Add(normal.Normalize()))
	return VectorAngle(tip.Sub(base), invert)
}

// SecondAngle returns the value written for an edge's second normal.
func SecondAngle(first, second float64, mode NormalMode) float64 {
	if mode == NormalAbsolute {
		return second
	}
	return NormalizeAngle(second - first)
}

// WorldNormal carries an object-space normal into world space.
func WorldNormal(model math.Mat4, n math.Vec3) math.Vec3 {
	if n.IsZero() {
		return n
	}
	return model.NormalMatrix().TransformDirection(n).Normalize()
}

// StrokeNormals returns a normal angle for every point of a pixel-space
// polyline. Interior points bend towards 2p - prev - next; endpoints and
// points on a straight run use the perpendicular of the adjacent segment.
func StrokeNormals(points []math.Vec2, invert bool) []float64 {
	angles := make([]float64, len(points))
	if len(points) < 2 {
		return angles
	}
	last := len(points) - 1
	for i, p := range points {
		var n math.Vec2
		switch i {
		case 0:
			n = points[1].Sub(p).Perp()
		case last:
			n = p.Sub(points[i-1]).Perp()
		default:
			n = p.Scale(2).Sub(points[i-1]).Sub(points[i+1])
			if n.Length() < 1e-9 {
				n = points[i+1].Sub(points[i-1]).Perp()
			}
		}
		angles[i] = VectorAngle(n, invert)
	}
	return angles
}
