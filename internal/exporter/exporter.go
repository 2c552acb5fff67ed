// Package exporter turns scene snapshots into HQZ scene files, one per
// frame, followed by a batch script that renders them.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sreevatsank1999/zenphoton/internal/batch"
	"github.com/sreevatsank1999/zenphoton/internal/config"
	"github.com/sreevatsank1999/zenphoton/internal/fsutil"
	"github.com/sreevatsank1999/zenphoton/internal/logger"
	"github.com/sreevatsank1999/zenphoton/internal/preview"
	"github.com/sreevatsank1999/zenphoton/internal/projection"
	"github.com/sreevatsank1999/zenphoton/internal/scene"
	"github.com/sreevatsank1999/zenphoton/pkg/hqz"
)

// Errors returned by Run. Both are wrapped with detail.
var (
	// ErrConfiguration means nothing was written: the settings or the
	// snapshot are unusable.
	ErrConfiguration = errors.New("invalid export configuration")
	// ErrIO means a directory or file could not be written. Frames written
	// before the failure are intact.
	ErrIO = errors.New("export write failed")
)

// Option customizes an Exporter.
type Option func(*Exporter)

// WithStrokes sets the producer of contour strokes. Without one, strokes
// stored in the snapshot are used.
func WithStrokes(p scene.StrokeProducer) Option {
	return func(e *Exporter) { e.strokes = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) { e.log = l }
}

// Exporter runs exports for one configuration.
type Exporter struct {
	cfg      *config.Config
	provider scene.Provider
	strokes  scene.StrokeProducer
	log      *zap.Logger
}

// New creates an Exporter. cfg is read, never modified.
func New(cfg *config.Config, provider scene.Provider, opts ...Option) *Exporter {
	e := &Exporter{
		cfg:      cfg,
		provider: provider,
		log:      logger.Named("exporter"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FrameResult describes one written frame.
type FrameResult struct {
	Frame   int
	Path    string
	Preview string
	Lights  int
	Edges   int
	Culled  int
}

// Result describes a run.
type Result struct {
	RunID  string
	Frames []FrameResult
	Script string
}

// Files returns the scene files written, in frame order.
func (r *Result) Files() []string {
	out := make([]string, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = f.Path
	}
	return out
}

// Run validates the whole export, then writes every frame and the batch
// script. Cancellation is checked between frames.
func (e *Exporter) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	log := e.log.With(zap.String("run_id", res.RunID))

	p, err := e.plan()
	if err != nil {
		return res, err
	}
	log.Info("export started",
		zap.Int("frames", len(p.frames)),
		zap.String("directory", p.dir),
		zap.String("mode", e.cfg.Geometry.Mode))

	if err := fsutil.EnsureDir(p.dir); err != nil {
		return res, fmt.Errorf("%w: creating %s: %v", ErrIO, p.dir, err)
	}

	for _, f := range p.frames {
		if err := ctx.Err(); err != nil {
			log.Warn("export cancelled", zap.Int("written", len(res.Frames)))
			return res, err
		}
		fr, err := e.writeFrame(p, f)
		if err != nil {
			log.Error("frame failed", zap.Int("frame", f.number), zap.Error(err))
			return res, err
		}
		res.Frames = append(res.Frames, fr)
		log.Info("frame written",
			zap.Int("frame", fr.Frame),
			zap.String("path", fr.Path),
			zap.Int("lights", fr.Lights),
			zap.Int("edges", fr.Edges),
			zap.Int("culled", fr.Culled))
	}

	if e.cfg.Batch.Enabled {
		path, err := e.writeScript(p)
		if err != nil {
			return res, err
		}
		res.Script = path
		log.Info("batch script written", zap.String("path", path))
	}

	log.Info("export finished",
		zap.Int("frames", len(res.Frames)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (e *Exporter) writeFrame(p *plan, f frameInput) (FrameResult, error) {
	out, stats := e.build(p, f)

	data, err := hqz.Marshal(out, hqz.Options{Compact: e.cfg.Output.Compact, Materials: p.materials})
	if err != nil {
		return FrameResult{}, fmt.Errorf("frame %d: %w", f.number, err)
	}

	fr := FrameResult{
		Frame:  f.number,
		Path:   batch.FramePath(p.dir, p.base, f.number, ".json"),
		Lights: len(out.Lights),
		Edges:  len(out.Objects),
		Culled: stats.culled,
	}
	if err := fsutil.WriteFileAtomic(fr.Path, data, 0644); err != nil {
		return fr, fmt.Errorf("%w: frame %d: %v", ErrIO, f.number, err)
	}

	if e.cfg.Output.Preview {
		png, err := preview.Render(out, preview.DefaultOptions())
		if err != nil {
			return fr, fmt.Errorf("frame %d preview: %w", f.number, err)
		}
		fr.Preview = batch.FramePath(p.dir, p.base, f.number, "_preview.png")
		if err := fsutil.WriteFileAtomic(fr.Preview, png, 0644); err != nil {
			return fr, fmt.Errorf("%w: frame %d preview: %v", ErrIO, f.number, err)
		}
	}
	return fr, nil
}

func (e *Exporter) writeScript(p *plan) (string, error) {
	frames := make([]int, len(p.frames))
	for i, f := range p.frames {
		frames[i] = f.number
	}
	script, err := batch.Generate(batch.Options{
		Frames:       frames,
		Renderer:     e.cfg.Batch.Renderer,
		RendererArgs: p.rendererArgs,
		Directory:    p.dir,
		Base:         p.base,
		SkipExisting: e.cfg.Batch.SkipExisting,
		Flavor:       p.flavor,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	var perm os.FileMode = 0644
	if p.flavor == batch.POSIX {
		perm = 0755
	}
	path := filepath.Join(p.dir, p.flavor.ScriptName())
	if err := fsutil.WriteFileAtomic(path, []byte(script), perm); err != nil {
		return "", fmt.Errorf("%w: batch script: %v", ErrIO, err)
	}
	return path, nil
}

// plan is a validated export: every input resolved before anything is
// written.
type plan struct {
	dir          string
	base         string
	res          projection.Resolution
	flat         bool
	normalMode   projection.NormalMode
	materials    hqz.MaterialFormat
	flavor       batch.Flavor
	rendererArgs []string
	objects      map[string]bool
	frames       []frameInput
}

type frameInput struct {
	number    int
	scene     *scene.Scene
	strokes   []scene.Stroke
	materials []hqz.Material
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func (e *Exporter) plan() (*plan, error) {
	cfg := e.cfg
	p := &plan{
		dir:  cfg.Output.Directory,
		base: cfg.Output.File,
		res:  projection.Resolution{Width: cfg.Render.Width, Height: cfg.Render.Height},
	}

	if strings.TrimSpace(p.dir) == "" {
		return nil, configErr("output directory is empty")
	}
	if info, err := os.Stat(p.dir); err == nil && !info.IsDir() {
		return nil, configErr("output directory %s is a file", p.dir)
	}
	if strings.TrimSpace(p.base) == "" {
		return nil, configErr("output file name is empty")
	}
	if strings.ContainsAny(p.base, `/\`) {
		return nil, configErr("output file name %q contains a path separator", p.base)
	}
	if p.res.Width <= 0 || p.res.Height <= 0 {
		return nil, configErr("resolution %dx%d", p.res.Width, p.res.Height)
	}

	switch cfg.Geometry.Mode {
	case "", config.ModeProjective:
	case config.ModeFlat:
		p.flat = true
	default:
		return nil, configErr("unknown geometry mode %q", cfg.Geometry.Mode)
	}

	var err error
	if p.normalMode, err = projection.ParseNormalMode(cfg.Normals.Mode); err != nil {
		return nil, configErr("%v", err)
	}
	if p.materials, err = hqz.ParseMaterialFormat(cfg.Output.MaterialFormat); err != nil {
		return nil, configErr("%v", err)
	}

	if cfg.Batch.Enabled {
		if strings.TrimSpace(cfg.Batch.Renderer) == "" {
			return nil, configErr("renderer path is empty")
		}
		if p.flavor, err = batch.ParseFlavor(cfg.Batch.Flavor); err != nil {
			return nil, configErr("%v", err)
		}
		if p.rendererArgs, err = batch.ParseArgs(cfg.Batch.RendererArgs); err != nil {
			return nil, configErr("%v", err)
		}
	}

	if len(cfg.Geometry.Objects) > 0 {
		p.objects = make(map[string]bool, len(cfg.Geometry.Objects))
		for _, name := range cfg.Geometry.Objects {
			p.objects[name] = true
		}
	}

	frames := cfg.Frames.List()
	if len(frames) == 0 {
		return nil, configErr("empty frame range %d-%d", cfg.Frames.Start, cfg.Frames.End)
	}
	if e.provider == nil {
		return nil, configErr("no scene provider")
	}
	for _, n := range frames {
		f, err := e.loadFrame(p, n)
		if err != nil {
			return nil, err
		}
		p.frames = append(p.frames, f)
	}
	return p, nil
}

// loadFrame fetches and checks one frame's inputs.
func (e *Exporter) loadFrame(p *plan, n int) (frameInput, error) {
	sc, err := e.provider.SceneAt(n)
	if err != nil {
		return frameInput{}, configErr("frame %d: %v", n, err)
	}
	if err := sc.Validate(); err != nil {
		return frameInput{}, configErr("frame %d: %v", n, err)
	}
	if !p.flat {
		if err := sc.Camera.Validate(); err != nil {
			return frameInput{}, configErr("frame %d: %v", n, err)
		}
	}

	f := frameInput{number: n, scene: sc}
	if e.cfg.Geometry.Strokes {
		if e.strokes != nil {
			if f.strokes, err = e.strokes.Strokes(n); err != nil {
				return frameInput{}, configErr("frame %d strokes: %v", n, err)
			}
		} else {
			f.strokes = sc.Strokes
		}
		for i, st := range f.strokes {
			if len(st.Points) < 2 {
				return frameInput{}, configErr("frame %d stroke %d: %v", n, i, scene.ErrEmptyStroke)
			}
		}
	}

	f.materials = e.resolveMaterials(sc)
	laid, err := p.materials.Layout(f.materials)
	if err != nil {
		return frameInput{}, configErr("frame %d: %v", n, err)
	}
	for _, ref := range e.materialRefs(p, sc, f.strokes) {
		if ref < 0 || ref >= len(laid) {
			return frameInput{}, configErr("frame %d: material %d out of range (%d materials)", n, ref, len(laid))
		}
	}
	return f, nil
}

// DefaultMaterial is exported when neither the snapshot nor the
// configuration defines any material.
var DefaultMaterial = hqz.Material{Diffuse: 0.3, Transmission: 0.3, Specular: 0.3}

// resolveMaterials picks the snapshot's materials, then the configured ones,
// then DefaultMaterial.
func (e *Exporter) resolveMaterials(sc *scene.Scene) []hqz.Material {
	src := sc.Materials
	if len(src) == 0 {
		src = e.cfg.Materials
	}
	if len(src) == 0 {
		return []hqz.Material{DefaultMaterial}
	}
	out := make([]hqz.Material, len(src))
	for i, m := range src {
		out[i] = hqz.Material{Diffuse: m.Diffuse, Transmission: m.Transmission, Specular: m.Specular}
	}
	return out
}

func (e *Exporter) materialRefs(p *plan, sc *scene.Scene, strokes []scene.Stroke) []int {
	var refs []int
	for _, m := range sc.Meshes {
		if e.meshSelected(p, &m) {
			refs = append(refs, m.Material)
		}
	}
	for _, st := range strokes {
		refs = append(refs, st.Material)
	}
	return refs
}

func (e *Exporter) meshSelected(p *plan, m *scene.Mesh) bool {
	if m.Hidden {
		return false
	}
	return p.objects == nil || p.objects[m.Name]
}
