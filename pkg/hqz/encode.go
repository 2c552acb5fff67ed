package hqz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Options control scene serialization.
type Options struct {
	// Compact strips every insignificant whitespace character.
	Compact bool
	// Materials selects the materials array layout.
	Materials MaterialFormat
}

// Indent is the indentation used for pretty output.
const Indent = "    "

// file is the on-disk layout. Field order is the key order in the output.
type file struct {
	Resolution [2]int     `json:"resolution"`
	Viewport   [4]decimal `json:"viewport"`
	Exposure   decimal    `json:"exposure"`
	Gamma      decimal    `json:"gamma"`
	Rays       uint32     `json:"rays"`
	TimeLimit  *decimal   `json:"timelimit,omitempty"`
	Seed       uint32     `json:"seed"`
	Lights     []Light    `json:"lights"`
	Objects    []Edge     `json:"objects"`
	Materials  []Material `json:"materials"`
}

// Marshal serializes a scene.
//
// Numbers are written in plain decimal notation with the shortest precision
// that round-trips. Non-finite numbers, edges whose normal fields disagree
// and material layouts the format cannot hold are reported as errors.
func Marshal(s *Scene, opts Options) ([]byte, error) {
	if err := CheckNormals(s.Objects); err != nil {
		return nil, err
	}
	mats, err := opts.Materials.Layout(s.Materials)
	if err != nil {
		return nil, err
	}

	f := file{
		Resolution: s.Resolution,
		Exposure:   decimal(s.Exposure),
		Gamma:      decimal(s.Gamma),
		Rays:       s.Rays,
		Seed:       s.Seed,
		Lights:     orEmpty(s.Lights),
		Objects:    orEmpty(s.Objects),
		Materials:  orEmpty(mats),
	}
	for i, v := range s.Viewport {
		f.Viewport[i] = decimal(v)
	}
	if s.TimeLimit != 0 {
		tl := decimal(s.TimeLimit)
		f.TimeLimit = &tl
	}

	data, err := json.Marshal(&f)
	if err != nil {
		return nil, err
	}
	if opts.Compact {
		return data, nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", Indent); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Unmarshal parses a scene file. Both 7-element lights and the older
// 6-element form without a ray angle range are accepted.
func Unmarshal(data []byte) (*Scene, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	s := &Scene{
		Resolution: f.Resolution,
		Exposure:   float64(f.Exposure),
		Gamma:      float64(f.Gamma),
		Rays:       f.Rays,
		Seed:       f.Seed,
		Lights:     f.Lights,
		Objects:    f.Objects,
		Materials:  f.Materials,
	}
	for i, v := range f.Viewport {
		s.Viewport[i] = float64(v)
	}
	if f.TimeLimit != nil {
		s.TimeLimit = float64(*f.TimeLimit)
	}
	if err := CheckNormals(s.Objects); err != nil {
		return nil, err
	}
	return s, nil
}

// CheckNormals verifies that either every edge carries normal angles or none
// does.
func CheckNormals(edges []Edge) error {
	for i, e := range edges {
		if (e.Normal == nil) != (e.NormalDelta == nil) {
			return fmt.Errorf("%w: edge %d has a partial normal", ErrSchemaMismatch, i)
		}
		if i > 0 && e.HasNormals() != edges[0].HasNormals() {
			return fmt.Errorf("%w: edge %d normal arity differs from edge 0", ErrSchemaMismatch, i)
		}
	}
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// decimal is a float64 that never marshals in exponent notation.
type decimal float64

// MarshalJSON implements json.Marshaler.
func (d decimal) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: non-finite number %v", ErrSchemaMismatch, f)
	}
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// MarshalJSON implements json.Marshaler.
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]decimal{decimal(r[0]), decimal(r[1])})
}

// MarshalJSON implements json.Marshaler.
func (c Color) MarshalJSON() ([]byte, error) {
	if c.Band != nil {
		return c.Band.MarshalJSON()
	}
	return decimal(c.Wavelength).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Color) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var r Range
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		*c = Color{Band: &r}
		return nil
	}
	var nm float64
	if err := json.Unmarshal(data, &nm); err != nil {
		return err
	}
	*c = Color{Wavelength: nm}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Light) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{
		decimal(l.Power),
		decimal(l.X),
		decimal(l.Y),
		l.PolarAngle,
		l.PolarDistance,
		l.RayAngle,
		l.Color,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Light) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 6 && len(parts) != 7 {
		return fmt.Errorf("%w: light has %d fields", ErrSchemaMismatch, len(parts))
	}
	out := Light{RayAngle: FullCircle}
	targets := []any{&out.Power, &out.X, &out.Y, &out.PolarAngle, &out.PolarDistance}
	if len(parts) == 7 {
		targets = append(targets, &out.RayAngle)
	}
	targets = append(targets, &out.Color)
	for i, t := range targets {
		if err := json.Unmarshal(parts[i], t); err != nil {
			return fmt.Errorf("light field %d: %w", i, err)
		}
	}
	*l = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Edge) MarshalJSON() ([]byte, error) {
	if (e.Normal == nil) != (e.NormalDelta == nil) {
		return nil, fmt.Errorf("%w: edge has a partial normal", ErrSchemaMismatch)
	}
	if e.HasNormals() {
		return json.Marshal([]any{
			e.Material,
			decimal(e.X),
			decimal(e.Y),
			decimal(*e.Normal),
			decimal(e.DX),
			decimal(e.DY),
			decimal(*e.NormalDelta),
		})
	}
	return json.Marshal([]any{
		e.Material,
		decimal(e.X),
		decimal(e.Y),
		decimal(e.DX),
		decimal(e.DY),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch len(v) {
	case 5:
		*e = Edge{Material: uint32(v[0]), X: v[1], Y: v[2], DX: v[3], DY: v[4]}
	case 7:
		n, nd := v[3], v[6]
		*e = Edge{Material: uint32(v[0]), X: v[1], Y: v[2], Normal: &n, DX: v[4], DY: v[5], NormalDelta: &nd}
	default:
		return fmt.Errorf("%w: object has %d fields", ErrSchemaMismatch, len(v))
	}
	return nil
}

// Outcome tags used in material entries.
const (
	OutcomeDiffuse      = "d"
	OutcomeTransmission = "t"
	OutcomeReflection   = "r"
)

// MarshalJSON implements json.Marshaler.
func (m Material) MarshalJSON() ([]byte, error) {
	return json.Marshal([3][2]any{
		{decimal(m.Diffuse), OutcomeDiffuse},
		{decimal(m.Transmission), OutcomeTransmission},
		{decimal(m.Specular), OutcomeReflection},
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Material) UnmarshalJSON(data []byte) error {
	var outcomes [][2]json.RawMessage
	if err := json.Unmarshal(data, &outcomes); err != nil {
		return err
	}
	var out Material
	for i, o := range outcomes {
		var weight float64
		var tag string
		if err := json.Unmarshal(o[0], &weight); err != nil {
			return fmt.Errorf("material outcome %d: %w", i, err)
		}
		if err := json.Unmarshal(o[1], &tag); err != nil {
			return fmt.Errorf("material outcome %d: %w", i, err)
		}
		switch tag {
		case OutcomeDiffuse:
			out.Diffuse += weight
		case OutcomeTransmission:
			out.Transmission += weight
		case OutcomeReflection:
			out.Specular += weight
		default:
			return fmt.Errorf("%w: unknown material outcome %q", ErrSchemaMismatch, tag)
		}
	}
	*m = out
	return nil
}
