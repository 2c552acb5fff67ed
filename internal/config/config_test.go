package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"

	"github.com/sreevatsank1999/zenphoton/internal/scene"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test render defaults
	if cfg.Render.Width != 1980 {
		t.Errorf("expected width 1980, got %d", cfg.Render.Width)
	}
	if cfg.Render.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Render.Height)
	}
	if cfg.Render.Exposure != 0.5 {
		t.Errorf("expected exposure 0.5, got %f", cfg.Render.Exposure)
	}
	if cfg.Render.Gamma != 2.2 {
		t.Errorf("expected gamma 2.2, got %f", cfg.Render.Gamma)
	}
	if cfg.Render.Rays != 100000 {
		t.Errorf("expected 100000 rays, got %d", cfg.Render.Rays)
	}
	if cfg.Render.TimeLimit != 0 {
		t.Errorf("expected no time limit, got %f", cfg.Render.TimeLimit)
	}

	// Test frame defaults
	if cfg.Frames.Animation {
		t.Error("expected animation to be false by default")
	}
	if cfg.Frames.Start != 0 || cfg.Frames.End != 5 {
		t.Errorf("expected frames 0-5, got %d-%d", cfg.Frames.Start, cfg.Frames.End)
	}

	// Test normals and geometry defaults
	if !cfg.Normals.Export {
		t.Error("expected normals export to be true by default")
	}
	if cfg.Normals.Invert {
		t.Error("expected normals invert to be false by default")
	}
	if cfg.Geometry.Mode != ModeProjective {
		t.Errorf("expected projective mode, got %s", cfg.Geometry.Mode)
	}
	if !cfg.Geometry.CheckZ {
		t.Error("expected check_z to be true by default")
	}

	// Test output defaults
	if cfg.Output.MaterialFormat != "list" {
		t.Errorf("expected list material format, got %s", cfg.Output.MaterialFormat)
	}
	if !cfg.Batch.Enabled {
		t.Error("expected batch to be enabled by default")
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestFramesList(t *testing.T) {
	tests := []struct {
		name   string
		frames FramesConfig
		want   []int
	}{
		{"current", FramesConfig{Current: 7, Start: 0, End: 5}, []int{7}},
		{"range", FramesConfig{Animation: true, Start: 2, End: 4}, []int{2, 3, 4}},
		{"single range", FramesConfig{Animation: true, Start: 3, End: 3}, []int{3}},
		{"empty range", FramesConfig{Animation: true, Start: 5, End: 4}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frames.List(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hqzexport.yaml")

	yamlContent := `
input:
  scene: "shot.yaml"

render:
  width: 640
  height: 480
  exposure: 0.8
  rays: 5000
  seed_from_frame: true
  time_limit: 30
  margin: 10

frames:
  animation: true
  start: 10
  end: 20

normals:
  invert: true
  mode: absolute

output:
  directory: "out"
  file: "shot"
  compact: true
  material_format: legacy

batch:
  skip_existing: true
  renderer: "/opt/hqz/hqz"
  renderer_args: "--threads 4"

materials:
  - name: mirror
    specular: 0.9

logging:
  level: "debug"
  log_file: "export.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Input.Scene != "shot.yaml" {
		t.Errorf("expected scene shot.yaml, got %s", cfg.Input.Scene)
	}
	if cfg.Render.Width != 640 || cfg.Render.Height != 480 {
		t.Errorf("expected 640x480, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.Gamma != 2.2 {
		t.Errorf("expected gamma to keep its default, got %f", cfg.Render.Gamma)
	}
	if !cfg.Render.SeedFromFrame {
		t.Error("expected seed_from_frame to be true")
	}
	if cfg.Render.Margin != 10 {
		t.Errorf("expected margin 10, got %f", cfg.Render.Margin)
	}
	if !reflect.DeepEqual(cfg.Frames.List(), []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}) {
		t.Errorf("unexpected frames %v", cfg.Frames.List())
	}
	if !cfg.Normals.Invert || cfg.Normals.Mode != "absolute" {
		t.Errorf("unexpected normals %+v", cfg.Normals)
	}
	if !cfg.Normals.Export {
		t.Error("expected normals export to keep its default")
	}
	if cfg.Output.MaterialFormat != "legacy" || !cfg.Output.Compact {
		t.Errorf("unexpected output %+v", cfg.Output)
	}
	if cfg.Batch.Renderer != "/opt/hqz/hqz" || !cfg.Batch.SkipExisting {
		t.Errorf("unexpected batch %+v", cfg.Batch)
	}
	want := []scene.Material{{Name: "mirror", Specular: 0.9}}
	if !reflect.DeepEqual(cfg.Materials, want) {
		t.Errorf("expected materials %v, got %v", want, cfg.Materials)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "export.log" {
		t.Errorf("expected log file 'export.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromTOMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hqzexport.toml")

	tomlContent := `
[render]
width = 800
seed = 42

[geometry]
mode = "flat"
check_z = false

[[materials]]
name = "glass"
transmission = 0.9
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Render.Width != 800 {
		t.Errorf("expected width 800, got %d", cfg.Render.Width)
	}
	if cfg.Render.Height != 1080 {
		t.Errorf("expected height to keep its default, got %d", cfg.Render.Height)
	}
	if cfg.Render.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Render.Seed)
	}
	if cfg.Geometry.Mode != ModeFlat || cfg.Geometry.CheckZ {
		t.Errorf("unexpected geometry %+v", cfg.Geometry)
	}
	if len(cfg.Materials) != 1 || cfg.Materials[0].Transmission != 0.9 {
		t.Errorf("unexpected materials %v", cfg.Materials)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
render:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create hqzexport.toml in current directory
	configPath := filepath.Join(tmpDir, "hqzexport.toml")
	if err := os.WriteFile(configPath, []byte("[render]\nwidth = 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if !strings.HasSuffix(path, "hqzexport.toml") {
		t.Errorf("expected to find hqzexport.toml in current directory, got %q", path)
	}
}

func TestExpandPaths(t *testing.T) {
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg := Default()
	cfg.Output.Directory = "~/renders"
	cfg.Input.Scene = "/abs/scene.yaml"
	if err := cfg.expandPaths(); err != nil {
		t.Fatalf("expandPaths: %v", err)
	}
	if cfg.Output.Directory != filepath.Join(home, "renders") {
		t.Errorf("expected %s, got %s", filepath.Join(home, "renders"), cfg.Output.Directory)
	}
	if cfg.Input.Scene != "/abs/scene.yaml" {
		t.Errorf("absolute path changed to %s", cfg.Input.Scene)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "output flags",
			setup: func() {
				*flagOut = "/tmp/renders"
				*flagFile = "shot"
			},
			verify: func(cfg *Config) {
				if cfg.Output.Directory != "/tmp/renders" || cfg.Output.File != "shot" {
					t.Errorf("unexpected output %+v", cfg.Output)
				}
			},
			teardown: func() {
				*flagOut = ""
				*flagFile = ""
			},
		},
		{
			name: "frame flag disables animation",
			setup: func() {
				*flagAnimation = true
				*flagFrame = 7
			},
			verify: func(cfg *Config) {
				if cfg.Frames.Animation {
					t.Error("expected a single frame export")
				}
				if got := cfg.Frames.List(); !reflect.DeepEqual(got, []int{7}) {
					t.Errorf("expected frame 7, got %v", got)
				}
			},
			teardown: func() {
				*flagAnimation = false
				*flagFrame = -1
			},
		},
		{
			name: "range flags",
			setup: func() {
				*flagAnimation = true
				*flagStart = 2
				*flagEnd = 4
			},
			verify: func(cfg *Config) {
				if got := cfg.Frames.List(); !reflect.DeepEqual(got, []int{2, 3, 4}) {
					t.Errorf("expected frames 2-4, got %v", got)
				}
			},
			teardown: func() {
				*flagAnimation = false
				*flagStart = -1
				*flagEnd = -1
			},
		},
		{
			name: "switches",
			setup: func() {
				*flagFlat = true
				*flagCompact = true
				*flagPreview = true
				*flagNoBatch = true
			},
			verify: func(cfg *Config) {
				if cfg.Geometry.Mode != ModeFlat {
					t.Errorf("expected flat mode, got %s", cfg.Geometry.Mode)
				}
				if !cfg.Output.Compact || !cfg.Output.Preview {
					t.Errorf("unexpected output %+v", cfg.Output)
				}
				if cfg.Batch.Enabled {
					t.Error("expected batch to be disabled")
				}
			},
			teardown: func() {
				*flagFlat = false
				*flagCompact = false
				*flagPreview = false
				*flagNoBatch = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Render.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Render.Width)
				}
				if cfg.Render.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Render.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
render:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Render.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Render.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Render.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Render.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{"saved.yaml", "saved.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := Default()
			cfg.Render.Seed = 9
			cfg.Batch.Flavor = "windows"
			cfg.Materials = []scene.Material{{Name: "wall", Diffuse: 0.5}}
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo: %v", err)
			}

			loaded := Default()
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("loading saved config: %v", err)
			}
			if loaded.Render != cfg.Render {
				t.Errorf("render mismatch: saved %+v, loaded %+v", cfg.Render, loaded.Render)
			}
			if loaded.Batch != cfg.Batch {
				t.Errorf("batch mismatch: saved %+v, loaded %+v", cfg.Batch, loaded.Batch)
			}
			if loaded.Output != cfg.Output {
				t.Errorf("output mismatch: saved %+v, loaded %+v", cfg.Output, loaded.Output)
			}
			if !reflect.DeepEqual(loaded.Materials, cfg.Materials) {
				t.Errorf("materials mismatch: saved %v, loaded %v", cfg.Materials, loaded.Materials)
			}
		})
	}
}
