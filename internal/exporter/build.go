package exporter

import (
	"github.com/sreevatsank1999/zenphoton/internal/projection"
	"github.com/sreevatsank1999/zenphoton/internal/scene"
	"github.com/sreevatsank1999/zenphoton/internal/visibility"
	"github.com/sreevatsank1999/zenphoton/pkg/hqz"
	"github.com/sreevatsank1999/zenphoton/pkg/math"
	"github.com/sreevatsank1999/zenphoton/pkg/spectrum"
)

type buildStats struct {
	culled int
}

// frameBuilder collects the records of one frame.
type frameBuilder struct {
	proj    projection.Projector
	filter  visibility.Filter
	normals bool
	invert  bool
	mode    projection.NormalMode
	flat    bool
	checkZ  bool
	stats   buildStats
}

// build projects one frame into a renderer scene.
func (e *Exporter) build(p *plan, f frameInput) (*hqz.Scene, buildStats) {
	cfg := e.cfg

	var proj projection.Projector
	if p.flat {
		proj = projection.NewFlatProjector(p.res)
	} else {
		proj = projection.NewCameraProjector(f.scene.Camera, p.res)
	}

	b := &frameBuilder{
		proj: proj,
		filter: visibility.Filter{
			Width:      p.res.Width,
			Height:     p.res.Height,
			Margin:     cfg.Render.Margin,
			Projective: proj.Projective(),
		},
		normals: cfg.Normals.Export,
		invert:  cfg.Normals.Invert,
		mode:    p.normalMode,
		flat:    p.flat,
		checkZ:  cfg.Geometry.CheckZ,
	}

	seed := cfg.Render.Seed
	if cfg.Render.SeedFromFrame && f.number >= 0 {
		seed = uint32(f.number)
	}

	out := &hqz.Scene{
		Resolution: [2]int{p.res.Width, p.res.Height},
		Viewport:   [4]float64{0, 0, float64(p.res.Width), float64(p.res.Height)},
		Exposure:   cfg.Render.Exposure,
		Gamma:      cfg.Render.Gamma,
		Rays:       cfg.Render.Rays,
		TimeLimit:  cfg.Render.TimeLimit,
		Seed:       seed,
		Materials:  f.materials,
	}

	for i := range f.scene.Lamps {
		if l, ok := b.light(&f.scene.Lamps[i]); ok {
			out.Lights = append(out.Lights, l)
		}
	}
	for i := range f.scene.Meshes {
		m := &f.scene.Meshes[i]
		if e.meshSelected(p, m) {
			out.Objects = append(out.Objects, b.meshEdges(m)...)
		}
	}
	for _, st := range f.strokes {
		out.Objects = append(out.Objects, b.strokeEdges(st)...)
	}
	return out, b.stats
}

// spotAxis is the emission axis of a lamp in its local space.
var spotAxis = math.Vec3{Z: -1}

func (b *frameBuilder) light(l *scene.Lamp) (hqz.Light, bool) {
	if l.Hidden {
		return hqz.Light{}, false
	}
	world := l.Matrix().Translation()
	sp := b.proj.Project(world)
	px := sp.Pixel(b.proj.Resolution())
	if !b.filter.Visible(px.X, px.Y, sp.Z) {
		b.stats.culled++
		return hqz.Light{}, false
	}

	angles := hqz.FullCircle
	if l.Type == scene.SpotLamp {
		axis := l.RotationMatrix().TransformDirection(spotAxis)
		dir := projection.NormalAngle(b.proj, world, axis, false)
		angles = hqz.Range{dir - l.ConeHalfAngle, dir + l.ConeHalfAngle}
	}

	return hqz.Light{
		Power:         l.Energy,
		X:             px.X,
		Y:             px.Y,
		PolarAngle:    angles,
		PolarDistance: hqz.Range{l.DistanceStart, l.DistanceEnd},
		RayAngle:      angles,
		Color:         spectrum.LampColor(l.Color, l.Spectral, l.SpectralStart, l.SpectralEnd),
	}, true
}

func (b *frameBuilder) meshEdges(m *scene.Mesh) []hqz.Edge {
	model := m.Matrix()
	res := b.proj.Resolution()
	var edges []hqz.Edge

	for _, ed := range m.Edges {
		w1 := model.TransformPoint(math.V3(m.Vertices[ed[0]]))
		w2 := model.TransformPoint(math.V3(m.Vertices[ed[1]]))
		if b.flat && b.checkZ && !visibility.OnPlane(w1.Z, w2.Z, visibility.PlaneEpsilon) {
			continue
		}

		s1 := b.proj.Project(w1)
		p1 := s1.Pixel(res)
		if !b.filter.Visible(p1.X, p1.Y, s1.Z) {
			b.stats.culled++
			continue
		}
		p2 := b.proj.Project(w2).Pixel(res)
		// The second vertex sits on the camera plane and has no image.
		if !p2.IsFinite() {
			b.stats.culled++
			continue
		}
		delta := p2.Sub(p1)

		edge := hqz.Edge{
			Material: uint32(m.Material),
			X:        p1.X,
			Y:        p1.Y,
			DX:       delta.X,
			DY:       delta.Y,
		}
		if b.normals {
			var a1, a2 float64
			if len(m.Normals) > 0 {
				a1 = projection.NormalAngle(b.proj, w1, projection.WorldNormal(model, m.Normal(ed[0])), b.invert)
				a2 = projection.NormalAngle(b.proj, w2, projection.WorldNormal(model, m.Normal(ed[1])), b.invert)
			} else {
				// No vertex normals: both ends face the edge's perpendicular.
				a1 = projection.VectorAngle(delta.Perp(), b.invert)
				a2 = a1
			}
			edge.Normal, edge.NormalDelta = angles(a1, projection.SecondAngle(a1, a2, b.mode))
		}
		edges = append(edges, edge)
	}
	return edges
}

func (b *frameBuilder) strokeEdges(st scene.Stroke) []hqz.Edge {
	pts := make([]math.Vec2, len(st.Points))
	for i, pt := range st.Points {
		pts[i] = math.Vec2{X: pt[0], Y: pt[1]}
	}

	var normals []float64
	if b.normals {
		normals = projection.StrokeNormals(pts, b.invert)
	}

	var edges []hqz.Edge
	for i := 0; i+1 < len(pts); i++ {
		p1, p2 := pts[i], pts[i+1]
		if !visibility.IsInsideViewport(p1.X, p1.Y, b.filter.Margin, b.filter.Width, b.filter.Height) {
			b.stats.culled++
			continue
		}
		edge := hqz.Edge{
			Material: uint32(st.Material),
			X:        p1.X,
			Y:        p1.Y,
			DX:       p2.X - p1.X,
			DY:       p2.Y - p1.Y,
		}
		if b.normals {
			edge.Normal, edge.NormalDelta = angles(normals[i], projection.SecondAngle(normals[i], normals[i+1], b.mode))
		}
		edges = append(edges, edge)
	}
	return edges
}

func angles(first, second float64) (*float64, *float64) {
	return &first, &second
}
