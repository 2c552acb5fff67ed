// Package hqz implements the JSON scene format consumed by the HQZ 2D
// light-transport renderer.
//
// A scene file is a single JSON object. Lights, objects and materials are
// arrays of positional tuples rather than objects, so every record type in
// this package marshals itself as a JSON array in a fixed order.
package hqz

import (
	"errors"
	"fmt"
)

// Format errors.
var (
	ErrSchemaMismatch        = errors.New("scene schema mismatch")
	ErrTooManyMaterials      = errors.New("too many materials for legacy format")
	ErrUnknownMaterialFormat = errors.New("unknown material format")
)

// LegacyMaterialSlots is the fixed material count of the legacy format.
const LegacyMaterialSlots = 5

// FullCircle is the default polar and ray angle range, in degrees.
var FullCircle = Range{0, 360}

// Range is a [start, end] pair, serialized as a two-element array.
type Range [2]float64

// Scene is the content of one exported frame.
type Scene struct {
	Resolution [2]int
	Viewport   [4]float64
	Exposure   float64
	Gamma      float64
	Rays       uint32
	TimeLimit  float64 // omitted when zero
	Seed       uint32
	Lights     []Light
	Objects    []Edge
	Materials  []Material
}

// Color is a light color: either a single wavelength or a spectral band.
// Exactly one representation is serialized.
type Color struct {
	Wavelength float64
	Band       *Range
}

// Wavelength returns a single-wavelength color. 0 means white light.
func Wavelength(nm float64) Color {
	return Color{Wavelength: nm}
}

// SpectralBand returns a [start, end] band color.
func SpectralBand(start, end float64) Color {
	return Color{Band: &Range{start, end}}
}

// IsBand reports whether the color is a spectral band.
func (c Color) IsBand() bool {
	return c.Band != nil
}

// String returns a human-readable color description.
func (c Color) String() string {
	if c.Band != nil {
		return fmt.Sprintf("%g-%gnm", c.Band[0], c.Band[1])
	}
	if c.Wavelength == 0 {
		return "white"
	}
	return fmt.Sprintf("%gnm", c.Wavelength)
}

// Light is one light source:
//
//	[power, x, y, [polar angle], [polar distance], [ray angle], color]
type Light struct {
	Power         float64
	X, Y          float64
	PolarAngle    Range
	PolarDistance Range
	RayAngle      Range
	Color         Color
}

// Edge is one line segment:
//
//	[material, x, y, dx, dy]
//	[material, x, y, angle, dx, dy, dangle]  (with normals)
//
// Normal angles are either both set or both nil, and must agree across every
// edge of a scene.
type Edge struct {
	Material    uint32
	X, Y        float64
	Normal      *float64
	DX, DY      float64
	NormalDelta *float64
}

// HasNormals reports whether the edge carries normal angles.
func (e Edge) HasNormals() bool {
	return e.Normal != nil && e.NormalDelta != nil
}

// Material is a weighted set of outcomes for a ray hitting an object:
//
//	[[diffuse, "d"], [transmission, "t"], [specular, "r"]]
//
// The weights should not sum to more than 1; the remainder is absorbed.
type Material struct {
	Diffuse      float64
	Transmission float64
	Specular     float64
}

// Absorption returns the share of rays absorbed by the material.
func (m Material) Absorption() float64 {
	return 1 - m.Diffuse - m.Transmission - m.Specular
}

// MaterialFormat selects how the materials array is laid out.
type MaterialFormat string

// Material formats.
const (
	// MaterialsList writes one entry per material.
	MaterialsList MaterialFormat = "list"
	// MaterialsLegacy always writes LegacyMaterialSlots entries.
	MaterialsLegacy MaterialFormat = "legacy"
)

// ParseMaterialFormat validates a material format name. An empty name
// selects MaterialsList.
func ParseMaterialFormat(s string) (MaterialFormat, error) {
	switch MaterialFormat(s) {
	case "", MaterialsList:
		return MaterialsList, nil
	case MaterialsLegacy:
		return MaterialsLegacy, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMaterialFormat, s)
	}
}

// Layout returns the materials as they should appear in a file of the given
// format. Legacy layouts are zero-padded to LegacyMaterialSlots.
func (f MaterialFormat) Layout(mats []Material) ([]Material, error) {
	switch f {
	case "", MaterialsList:
		return mats, nil
	case MaterialsLegacy:
		if len(mats) > LegacyMaterialSlots {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooManyMaterials, len(mats), LegacyMaterialSlots)
		}
		out := make([]Material, LegacyMaterialSlots)
		copy(out, mats)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterialFormat, string(f))
	}
}

// Capacity returns the number of material slots a format can address, or -1
// when the count is unbounded.
func (f MaterialFormat) Capacity() int {
	if f == MaterialsLegacy {
		return LegacyMaterialSlots
	}
	return -1
}
