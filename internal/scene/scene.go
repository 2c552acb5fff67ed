// Package scene holds the editor scene snapshot that drives an export.
//
// A snapshot is a plain value: the host tool (or a script) writes it once per
// export and the exporter only reads it.
package scene

import (
	"fmt"
	gomath "math"

	"github.com/sreevatsank1999/zenphoton/pkg/math"
)

// ProjectionType selects how the camera maps depth.
type ProjectionType string

// Camera projection types.
const (
	Orthographic ProjectionType = "ortho"
	Perspective  ProjectionType = "persp"
)

// LampType is the kind of lamp.
type LampType string

// Lamp types.
const (
	PointLamp LampType = "point"
	SpotLamp  LampType = "spot"
)

// Transform places an object in the world.
type Transform struct {
	Location [3]float64 `yaml:"location" json:"location" toml:"location"`
	// Rotation holds Euler angles in radians, applied X, then Y, then Z.
	Rotation [3]float64 `yaml:"rotation" json:"rotation" toml:"rotation"`
	// Quaternion (w, x, y, z) overrides Rotation when set.
	Quaternion *[4]float64 `yaml:"quaternion,omitempty" json:"quaternion,omitempty" toml:"quaternion,omitempty"`
	// Scale defaults to (1, 1, 1) when left at zero.
	Scale [3]float64 `yaml:"scale" json:"scale" toml:"scale"`
}

// RotationMatrix returns the rotation part of the transform.
func (t Transform) RotationMatrix() math.Mat4 {
	if q := t.Quaternion; q != nil {
		return math.Quat{W: q[0], X: q[1], Y: q[2], Z: q[3]}.ToMat4()
	}
	return math.RotateEulerXYZ(t.Rotation[0], t.Rotation[1], t.Rotation[2])
}

// Matrix returns the object-to-world matrix T * R * S.
func (t Transform) Matrix() math.Mat4 {
	s := t.Scale
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}
	return math.Translate(t.Location[0], t.Location[1], t.Location[2]).
		Mul(t.RotationMatrix()).
		Mul(math.Scale(s[0], s[1], s[2]))
}

// Camera is the scene camera. It looks down its local -Z axis with +Y up.
type Camera struct {
	Transform `yaml:",inline"`

	Type ProjectionType `yaml:"type" json:"type" toml:"type"`
	// OrthoScale is the width of the view along the larger image axis.
	OrthoScale float64 `yaml:"ortho_scale" json:"ortho_scale" toml:"ortho_scale"`
	// FOV is the field of view along the larger image axis, in radians.
	FOV float64 `yaml:"fov" json:"fov" toml:"fov"`
	// Shift offsets the view, in fractions of the larger image axis.
	ShiftX float64 `yaml:"shift_x" json:"shift_x" toml:"shift_x"`
	ShiftY float64 `yaml:"shift_y" json:"shift_y" toml:"shift_y"`
	// Target, when set, aims the camera at a point and overrides the rotation.
	Target *[3]float64 `yaml:"target,omitempty" json:"target,omitempty" toml:"target,omitempty"`
}

// ViewMatrix returns the world-to-camera matrix.
func (c Camera) ViewMatrix() math.Mat4 {
	if c.Target != nil {
		return math.LookAt(math.V3(c.Location), math.V3(*c.Target), math.Vec3{Y: 1})
	}
	// Cameras ignore scale.
	world := math.Translate(c.Location[0], c.Location[1], c.Location[2]).Mul(c.RotationMatrix())
	return world.Inverse()
}

// Validate checks that the camera sees a non-empty area: a positive ortho
// scale, or a field of view in (0, pi). Flat exports ignore the camera and
// need not call it.
func (c Camera) Validate() error {
	if c.Type == Orthographic {
		if !(c.OrthoScale > 0) || gomath.IsInf(c.OrthoScale, 0) {
			return fmt.Errorf("%w: ortho_scale %v", ErrCameraView, c.OrthoScale)
		}
		return nil
	}
	if !(c.FOV > 0 && c.FOV < gomath.Pi) {
		return fmt.Errorf("%w: fov %v", ErrCameraView, c.FOV)
	}
	return nil
}

// Mesh is a wireframe: vertices joined by edges.
type Mesh struct {
	Name      string `yaml:"name" json:"name" toml:"name"`
	Transform `yaml:",inline"`

	Vertices [][3]float64 `yaml:"vertices" json:"vertices" toml:"vertices"`
	// Normals are per-vertex, in object space. Optional.
	Normals  [][3]float64 `yaml:"normals,omitempty" json:"normals,omitempty" toml:"normals,omitempty"`
	Edges    [][2]int     `yaml:"edges" json:"edges" toml:"edges"`
	Material int          `yaml:"material" json:"material" toml:"material"`
	Hidden   bool         `yaml:"hidden,omitempty" json:"hidden,omitempty" toml:"hidden,omitempty"`
}

// Normal returns the object-space normal of vertex i, or the zero vector when
// the mesh carries no normals.
func (m *Mesh) Normal(i int) math.Vec3 {
	if i < 0 || i >= len(m.Normals) {
		return math.Vec3{}
	}
	return math.V3(m.Normals[i])
}

// Lamp is a light source.
type Lamp struct {
	Name      string `yaml:"name" json:"name" toml:"name"`
	Transform `yaml:",inline"`

	Type   LampType `yaml:"type" json:"type" toml:"type"`
	Energy float64  `yaml:"energy" json:"energy" toml:"energy"`
	// Color is linear RGB in [0,1]. Black or grey means white light.
	Color [3]float64 `yaml:"color" json:"color" toml:"color"`
	// ConeHalfAngle is the spot cone half-angle in degrees.
	ConeHalfAngle float64 `yaml:"cone_half_angle" json:"cone_half_angle" toml:"cone_half_angle"`

	DistanceStart float64 `yaml:"distance_start" json:"distance_start" toml:"distance_start"`
	DistanceEnd   float64 `yaml:"distance_end" json:"distance_end" toml:"distance_end"`

	Spectral      bool    `yaml:"spectral" json:"spectral" toml:"spectral"`
	SpectralStart float64 `yaml:"spectral_start" json:"spectral_start" toml:"spectral_start"`
	SpectralEnd   float64 `yaml:"spectral_end" json:"spectral_end" toml:"spectral_end"`

	Hidden bool `yaml:"hidden,omitempty" json:"hidden,omitempty" toml:"hidden,omitempty"`
}

// Material describes how rays interact with a surface.
type Material struct {
	Name         string  `yaml:"name" json:"name" toml:"name"`
	Diffuse      float64 `yaml:"diffuse" json:"diffuse" toml:"diffuse"`
	Transmission float64 `yaml:"transmission" json:"transmission" toml:"transmission"`
	Specular     float64 `yaml:"specular" json:"specular" toml:"specular"`
}

// Stroke is a contour polyline in renderer pixel space (origin top-left).
type Stroke struct {
	Material int          `yaml:"material" json:"material" toml:"material"`
	Points   [][2]float64 `yaml:"points" json:"points" toml:"points"`
}

// Scene is the snapshot of one frame.
type Scene struct {
	Camera    Camera     `yaml:"camera" json:"camera" toml:"camera"`
	Meshes    []Mesh     `yaml:"meshes" json:"meshes" toml:"meshes"`
	Lamps     []Lamp     `yaml:"lamps" json:"lamps" toml:"lamps"`
	Materials []Material `yaml:"materials" json:"materials" toml:"materials"`
	Strokes   []Stroke   `yaml:"strokes,omitempty" json:"strokes,omitempty" toml:"strokes,omitempty"`
}

// ApplyLampDefaults fills lamp fields left at zero with the exporter defaults:
// a full visible spectral band.
func (s *Scene) ApplyLampDefaults() {
	for i := range s.Lamps {
		l := &s.Lamps[i]
		if l.Type == "" {
			l.Type = PointLamp
		}
		if l.SpectralStart == 0 && l.SpectralEnd == 0 {
			l.SpectralStart, l.SpectralEnd = 400, 700
		}
	}
	if s.Camera.Type == "" {
		s.Camera.Type = Perspective
	}
}
