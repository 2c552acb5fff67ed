// Package spectrum maps editor colors onto the visible wavelengths understood
// by the HQZ renderer.
//
// The renderer describes light color either as a single wavelength in
// nanometres or as a [start, end] band. A wavelength of 0 means white light
// covering the whole visible spectrum.
package spectrum

import (
	"math"

	"github.com/sreevatsank1999/zenphoton/pkg/hqz"
)

// Visible range covered by HueToWavelength.
const (
	MinWavelength = 400.0
	MaxWavelength = 700.0
)

// White is the renderer's wavelength value for full-spectrum light.
const White = 0.0

// HueToWavelength approximates the wavelength of a hue/saturation color.
//
// The hue is shifted so that red lands near 700nm and violet near 400nm:
//
//	wavelength = frac(0.7 - hue) * 300 + 400
//
// Achromatic colors (saturation 0) return White.
func HueToWavelength(hue, saturation float64) float64 {
	if saturation == 0 {
		return White
	}
	v := 0.7 - hue
	return (v-math.Floor(v))*(MaxWavelength-MinWavelength) + MinWavelength
}

// RGBToHSV converts an RGB color with components in [0,1] to hue, saturation
// and value, each in [0,1].
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	v = maxc
	if maxc == minc {
		return 0, 0, v
	}
	d := maxc - minc
	s = d / maxc
	rc := (maxc - r) / d
	gc := (maxc - g) / d
	bc := (maxc - b) / d
	switch {
	case r == maxc:
		h = bc - gc
	case g == maxc:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}
	h = h / 6
	h -= math.Floor(h)
	return h, s, v
}

// RGBToWavelength converts an RGB lamp color to a wavelength. Components are
// clamped to [0,1] first.
func RGBToWavelength(rgb [3]float64) float64 {
	h, s, _ := RGBToHSV(clamp01(rgb[0]), clamp01(rgb[1]), clamp01(rgb[2]))
	return HueToWavelength(h, s)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// LampColor resolves a lamp's renderer color. Spectral lamps emit the
// [start, end] band; others emit the wavelength of their RGB color.
func LampColor(rgb [3]float64, spectral bool, start, end float64) hqz.Color {
	if spectral {
		return hqz.SpectralBand(start, end)
	}
	return hqz.Wavelength(RGBToWavelength(rgb))
}

// WavelengthToRGB returns an approximate display color for a wavelength, used
// for previews. White (0) and out-of-range values map to white.
func WavelengthToRGB(nm float64) (r, g, b float64) {
	switch {
	case nm < 380 || nm > 780:
		return 1, 1, 1
	case nm < 440:
		r, b = -(nm-440)/(440-380), 1
	case nm < 490:
		g, b = (nm-440)/(490-440), 1
	case nm < 510:
		g, b = 1, -(nm-510)/(510-490)
	case nm < 580:
		r, g = (nm-510)/(580-510), 1
	case nm < 645:
		r, g = 1, -(nm-645)/(645-580)
	default:
		r = 1
	}
	return r, g, b
}

// BandToRGB averages the display color of a [start, end] band.
func BandToRGB(start, end float64) (r, g, b float64) {
	if end < start {
		start, end = end, start
	}
	const steps = 16
	for i := 0; i < steps; i++ {
		nm := start + (end-start)*(float64(i)+0.5)/steps
		cr, cg, cb := WavelengthToRGB(nm)
		r += cr
		g += cg
		b += cb
	}
	return r / steps, g / steps, b / steps
}
