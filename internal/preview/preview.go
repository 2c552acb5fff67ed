// Package preview rasterizes an exported scene as a wireframe PNG, to check
// framing and normals before spending render time.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	gomath "math"

	"github.com/gogpu/gg"

	"github.com/sreevatsank1999/zenphoton/pkg/hqz"
	"github.com/sreevatsank1999/zenphoton/pkg/spectrum"
)

// ErrEmptyResolution is returned for scenes without a drawable size.
var ErrEmptyResolution = errors.New("scene resolution is empty")

// Options control the drawing.
type Options struct {
	// Scale multiplies the scene resolution. Zero means 1.
	Scale float64
	// NormalLength is the length of normal ticks in output pixels. Zero
	// disables them.
	NormalLength float64
	// LightRadius is the radius of light markers in output pixels.
	LightRadius float64
}

// DefaultOptions returns the options used by the exporter.
func DefaultOptions() Options {
	return Options{Scale: 0.5, NormalLength: 8, LightRadius: 6}
}

// Draw renders s into a new image.
func Draw(s *hqz.Scene, opts Options) (image.Image, error) {
	dc, err := draw(s, opts)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// Render renders s and returns it PNG-encoded.
func Render(s *hqz.Scene, opts Options) ([]byte, error) {
	dc, err := draw(s, opts)
	if err != nil {
		return nil, err
	}
	defer dc.Close()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding preview: %w", err)
	}
	return buf.Bytes(), nil
}

func draw(s *hqz.Scene, opts Options) (*gg.Context, error) {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	w := int(gomath.Round(float64(s.Resolution[0]) * scale))
	h := int(gomath.Round(float64(s.Resolution[1]) * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyResolution, s.Resolution[0], s.Resolution[1])
	}

	dc := gg.NewContext(w, h)
	dc.ClearWithColor(gg.Black)

	// Objects
	dc.SetLineWidth(1)
	for _, e := range s.Objects {
		x1, y1 := e.X*scale, e.Y*scale
		x2, y2 := (e.X+e.DX)*scale, (e.Y+e.DY)*scale
		dc.SetRGB(materialShade(s.Materials, e.Material))
		dc.DrawLine(x1, y1, x2, y2)
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, err
		}
		if opts.NormalLength > 0 && e.HasNormals() {
			drawNormals(dc, e, x1, y1, x2, y2, opts.NormalLength)
			if err := dc.Stroke(); err != nil {
				dc.Close()
				return nil, err
			}
		}
	}

	// Lights
	for _, l := range s.Lights {
		dc.SetRGB(lightColor(l.Color))
		dc.DrawCircle(l.X*scale, l.Y*scale, opts.LightRadius)
		if err := dc.Fill(); err != nil {
			dc.Close()
			return nil, err
		}
	}
	if err := dc.FlushGPU(); err != nil {
		dc.Close()
		return nil, err
	}
	return dc, nil
}

// drawNormals adds ticks at both ends of an edge. The second angle is
// treated as a delta from the first.
func drawNormals(dc *gg.Context, e hqz.Edge, x1, y1, x2, y2, length float64) {
	dc.SetRGB(0.2, 0.6, 1)
	a1 := *e.Normal * gomath.Pi / 180
	a2 := (*e.Normal + *e.NormalDelta) * gomath.Pi / 180
	dc.DrawLine(x1, y1, x1+gomath.Cos(a1)*length, y1+gomath.Sin(a1)*length)
	dc.DrawLine(x2, y2, x2+gomath.Cos(a2)*length, y2+gomath.Sin(a2)*length)
}

// materialShade maps a material to a grey level: brighter for more
// interaction, so absorbers stay dim.
func materialShade(mats []hqz.Material, id uint32) (r, g, b float64) {
	if int(id) >= len(mats) {
		return 0.5, 0.5, 0.5
	}
	m := mats[id]
	v := 0.35 + 0.65*gomath.Min(1, m.Diffuse+m.Transmission+m.Specular)
	return v, v, v
}

func lightColor(c hqz.Color) (r, g, b float64) {
	if c.IsBand() {
		return spectrum.BandToRGB(c.Band[0], c.Band[1])
	}
	return spectrum.WavelengthToRGB(c.Wavelength)
}
