package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagScene     = flag.String("scene", "", "Scene snapshot document")
	flagOut       = flag.String("out", "", "Output directory")
	flagFile      = flag.String("file", "", "Output file base name")
	flagRenderer  = flag.String("renderer", "", "Renderer executable for the batch script")
	flagWidth     = flag.Int("width", 0, "Image width")
	flagHeight    = flag.Int("height", 0, "Image height")
	flagFrame     = flag.Int("frame", -1, "Export a single frame")
	flagStart     = flag.Int("start", -1, "First frame of an animation export")
	flagEnd       = flag.Int("end", -1, "Last frame of an animation export")
	flagAnimation = flag.Bool("animation", false, "Export the frame range instead of the current frame")
	flagFlat      = flag.Bool("flat", false, "Use the flat 2D projection")
	flagCompact   = flag.Bool("compact", false, "Write compact JSON")
	flagPreview   = flag.Bool("preview", false, "Write a wireframe PNG per frame")
	flagNoBatch   = flag.Bool("no-batch", false, "Do not write the batch script")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScene != "" {
		cfg.Input.Scene = *flagScene
	}
	if *flagOut != "" {
		cfg.Output.Directory = *flagOut
	}
	if *flagFile != "" {
		cfg.Output.File = *flagFile
	}
	if *flagRenderer != "" {
		cfg.Batch.Renderer = *flagRenderer
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagStart >= 0 {
		cfg.Frames.Start = *flagStart
	}
	if *flagEnd >= 0 {
		cfg.Frames.End = *flagEnd
	}
	if *flagAnimation {
		cfg.Frames.Animation = true
	}
	// A single frame wins over -animation.
	if *flagFrame >= 0 {
		cfg.Frames.Current = *flagFrame
		cfg.Frames.Animation = false
	}
	if *flagFlat {
		cfg.Geometry.Mode = ModeFlat
	}
	if *flagCompact {
		cfg.Output.Compact = true
	}
	if *flagPreview {
		cfg.Output.Preview = true
	}
	if *flagNoBatch {
		cfg.Batch.Enabled = false
	}
}
