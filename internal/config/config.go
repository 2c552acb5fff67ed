// Package config handles export configuration loading and management.
package config

import "github.com/sreevatsank1999/zenphoton/internal/scene"

// Config holds all export settings.
type Config struct {
	Input     InputConfig      `yaml:"input" toml:"input"`
	Render    RenderConfig     `yaml:"render" toml:"render"`
	Frames    FramesConfig     `yaml:"frames" toml:"frames"`
	Normals   NormalsConfig    `yaml:"normals" toml:"normals"`
	Geometry  GeometryConfig   `yaml:"geometry" toml:"geometry"`
	Output    OutputConfig     `yaml:"output" toml:"output"`
	Batch     BatchConfig      `yaml:"batch" toml:"batch"`
	Materials []scene.Material `yaml:"materials" toml:"materials"` // Used when the snapshot has none
	Logging   LoggingConfig    `yaml:"logging" toml:"logging"`
}

// InputConfig holds the snapshot source.
type InputConfig struct {
	Scene string `yaml:"scene" toml:"scene"` // Snapshot document (.yaml, .json, .toml)
}

// RenderConfig holds the renderer settings copied into every scene file.
type RenderConfig struct {
	Width         int     `yaml:"width" toml:"width"`
	Height        int     `yaml:"height" toml:"height"`
	Exposure      float64 `yaml:"exposure" toml:"exposure"`
	Gamma         float64 `yaml:"gamma" toml:"gamma"`
	Rays          uint32  `yaml:"rays" toml:"rays"`
	Seed          uint32  `yaml:"seed" toml:"seed"`
	SeedFromFrame bool    `yaml:"seed_from_frame" toml:"seed_from_frame"`
	TimeLimit     float64 `yaml:"time_limit" toml:"time_limit"` // Seconds, 0 for none
	Margin        float64 `yaml:"margin" toml:"margin"`         // Culling margin in pixels, negative keeps all
}

// FramesConfig selects the exported frames.
type FramesConfig struct {
	Current   int  `yaml:"current" toml:"current"`
	Animation bool `yaml:"animation" toml:"animation"` // Export [start, end] instead of current
	Start     int  `yaml:"start" toml:"start"`
	End       int  `yaml:"end" toml:"end"`
}

// List returns the exported frame numbers in order.
func (f FramesConfig) List() []int {
	if !f.Animation {
		return []int{f.Current}
	}
	var frames []int
	for i := f.Start; i <= f.End; i++ {
		frames = append(frames, i)
	}
	return frames
}

// NormalsConfig holds normal-angle export settings.
type NormalsConfig struct {
	Export bool   `yaml:"export" toml:"export"`
	Invert bool   `yaml:"invert" toml:"invert"`
	Mode   string `yaml:"mode" toml:"mode"` // delta or absolute
}

// GeometryConfig holds projection and edge selection settings.
type GeometryConfig struct {
	Mode    string   `yaml:"mode" toml:"mode"`       // projective or flat
	CheckZ  bool     `yaml:"check_z" toml:"check_z"` // Flat mode: keep only edges on z = 0
	Strokes bool     `yaml:"strokes" toml:"strokes"` // Export contour strokes
	Objects []string `yaml:"objects" toml:"objects"` // Mesh names to export, empty for all
}

// Geometry modes.
const (
	ModeProjective = "projective"
	ModeFlat       = "flat"
)

// OutputConfig holds output file settings.
type OutputConfig struct {
	Directory      string `yaml:"directory" toml:"directory"`
	File           string `yaml:"file" toml:"file"` // Base name, frames add _0000.json
	Compact        bool   `yaml:"compact" toml:"compact"`
	MaterialFormat string `yaml:"material_format" toml:"material_format"` // list or legacy
	Preview        bool   `yaml:"preview" toml:"preview"`                 // Also write a wireframe PNG per frame
}

// BatchConfig holds batch script settings.
type BatchConfig struct {
	Enabled      bool   `yaml:"enabled" toml:"enabled"`
	SkipExisting bool   `yaml:"skip_existing" toml:"skip_existing"`
	Renderer     string `yaml:"renderer" toml:"renderer"`
	RendererArgs string `yaml:"renderer_args" toml:"renderer_args"` // Shell-quoted extra arguments
	Flavor       string `yaml:"flavor" toml:"flavor"`               // posix or windows, empty for host
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:    1980,
			Height:   1080,
			Exposure: 0.5,
			Gamma:    2.2,
			Rays:     100000,
		},
		Frames: FramesConfig{
			Start: 0,
			End:   5,
		},
		Normals: NormalsConfig{
			Export: true,
			Mode:   "delta",
		},
		Geometry: GeometryConfig{
			Mode:    ModeProjective,
			CheckZ:  true,
			Strokes: true,
		},
		Output: OutputConfig{
			Directory:      "render",
			File:           "scene",
			MaterialFormat: "list",
		},
		Batch: BatchConfig{
			Enabled:  true,
			Renderer: "hqz",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
