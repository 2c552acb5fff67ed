package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Snapshot errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")
	ErrBadFrameKey       = errors.New("frame key is not an integer")
	ErrVertexIndex       = errors.New("edge references a missing vertex")
	ErrNormalCount       = errors.New("normal count does not match vertex count")
	ErrEmptyStroke       = errors.New("stroke has fewer than two points")
	ErrCameraView        = errors.New("camera has no view size")
)

// Provider returns the scene for a frame.
type Provider interface {
	SceneAt(frame int) (*Scene, error)
}

// StrokeProducer returns contour strokes extracted for a frame. Strokes are
// consumed as extra geometry, after mesh edges.
type StrokeProducer interface {
	Strokes(frame int) ([]Stroke, error)
}

// Document is a snapshot file: a base scene plus optional per-frame scenes.
// A frame entry replaces the base scene entirely for that frame.
type Document struct {
	Scene  Scene            `yaml:"scene" json:"scene" toml:"scene"`
	Frames map[string]Scene `yaml:"frames,omitempty" json:"frames,omitempty" toml:"frames,omitempty"`

	frames map[int]*Scene
}

// Load reads a snapshot document. The format is chosen by extension:
// .yaml/.yml, .json or .toml.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode parses snapshot data in the format named by ext.
func Decode(data []byte, ext string) (*Document, error) {
	doc := &Document{}
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, doc)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(doc)
	case ".toml":
		err = toml.Unmarshal(data, doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if err := doc.index(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) index() error {
	d.frames = make(map[int]*Scene, len(d.Frames))
	for key, sc := range d.Frames {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrBadFrameKey, key)
		}
		d.frames[n] = &sc
	}
	return nil
}

// FrameNumbers returns the frames that have their own scene, in order.
func (d *Document) FrameNumbers() []int {
	out := make([]int, 0, len(d.frames))
	for n := range d.frames {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// SceneAt returns a copy of the scene for frame, with lamp defaults applied.
func (d *Document) SceneAt(frame int) (*Scene, error) {
	src := &d.Scene
	if sc, ok := d.frames[frame]; ok {
		src = sc
	}
	sc := src.clone()
	sc.ApplyLampDefaults()
	return sc, nil
}

// Strokes returns the strokes stored for frame.
func (d *Document) Strokes(frame int) ([]Stroke, error) {
	sc, err := d.SceneAt(frame)
	if err != nil {
		return nil, err
	}
	return sc.Strokes, nil
}

// clone copies the scene's top-level slices so callers may modify the result.
func (s *Scene) clone() *Scene {
	out := *s
	out.Meshes = append([]Mesh(nil), s.Meshes...)
	out.Lamps = append([]Lamp(nil), s.Lamps...)
	out.Materials = append([]Material(nil), s.Materials...)
	out.Strokes = append([]Stroke(nil), s.Strokes...)
	return &out
}

// Validate checks the scene's internal references.
func (s *Scene) Validate() error {
	for _, m := range s.Meshes {
		if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
			return fmt.Errorf("mesh %q: %w (%d normals, %d vertices)", m.Name, ErrNormalCount, len(m.Normals), len(m.Vertices))
		}
		for i, e := range m.Edges {
			for _, v := range e {
				if v < 0 || v >= len(m.Vertices) {
					return fmt.Errorf("mesh %q edge %d: %w (%d)", m.Name, i, ErrVertexIndex, v)
				}
			}
		}
	}
	for i, st := range s.Strokes {
		if len(st.Points) < 2 {
			return fmt.Errorf("stroke %d: %w", i, ErrEmptyStroke)
		}
	}
	return nil
}
