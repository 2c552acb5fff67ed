// hqzexport converts scene snapshots into HQZ renderer scene files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sreevatsank1999/zenphoton/internal/batch"
	"github.com/sreevatsank1999/zenphoton/internal/config"
	"github.com/sreevatsank1999/zenphoton/internal/exporter"
	"github.com/sreevatsank1999/zenphoton/internal/fsutil"
	"github.com/sreevatsank1999/zenphoton/internal/logger"
	"github.com/sreevatsank1999/zenphoton/internal/preview"
	"github.com/sreevatsank1999/zenphoton/internal/scene"
	"github.com/sreevatsank1999/zenphoton/internal/watch"
	"github.com/sreevatsank1999/zenphoton/pkg/hqz"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}
	command, args := args[0], args[1:]

	switch command {
	case "help", "-h", "--help":
		printUsage()
		return
	case "init":
		cmdInit(args)
		return
	case "preview":
		cmdPreview(args)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var runErr error
	switch command {
	case "export":
		runErr = cmdExport(ctx, cfg, args)
	case "batch":
		runErr = cmdBatch(cfg)
	case "watch":
		runErr = cmdWatch(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if runErr != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(runErr))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hqzexport - export scene snapshots to HQZ renderer scenes

Usage:
  hqzexport [flags] <command> [args]

Commands:
  export [scene]               Export the configured frames and the batch script
  batch                        Write only the batch script for the configured frames
  watch [scene]                Export, then export again whenever the scene changes
  preview <file.json> [out]    Draw a wireframe PNG of an exported scene
  init [config.yaml]           Write a default config file
  help                         Show this help

Flags:`)
	flag.PrintDefaults()
	fmt.Println(`
Examples:
  hqzexport -scene shot.yaml export
  hqzexport -animation -start 1 -end 120 -out renders export shot.yaml
  hqzexport -config hqzexport.toml watch
  hqzexport preview renders/scene_0001.json`)
}

// sceneArg resolves the snapshot path from the command line or the config.
func sceneArg(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.Scene == "" {
		return "", errors.New("no scene given: pass a path or set input.scene")
	}
	return cfg.Input.Scene, nil
}

func runExport(ctx context.Context, cfg *config.Config, path string) (*exporter.Result, error) {
	doc, err := scene.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", exporter.ErrConfiguration, err)
	}
	return exporter.New(cfg, doc, exporter.WithStrokes(doc)).Run(ctx)
}

func cmdExport(ctx context.Context, cfg *config.Config, args []string) error {
	path, err := sceneArg(cfg, args)
	if err != nil {
		return err
	}
	res, err := runExport(ctx, cfg, path)
	if err != nil {
		return err
	}

	for _, f := range res.Frames {
		fmt.Printf("%s  lights=%d edges=%d culled=%d\n", f.Path, f.Lights, f.Edges, f.Culled)
	}
	if res.Script != "" {
		fmt.Printf("%s\n", res.Script)
	}
	return nil
}

func cmdBatch(cfg *config.Config) error {
	flavor, err := batch.ParseFlavor(cfg.Batch.Flavor)
	if err != nil {
		return err
	}
	rendererArgs, err := batch.ParseArgs(cfg.Batch.RendererArgs)
	if err != nil {
		return err
	}
	script, err := batch.Generate(batch.Options{
		Frames:       cfg.Frames.List(),
		Renderer:     cfg.Batch.Renderer,
		RendererArgs: rendererArgs,
		Directory:    cfg.Output.Directory,
		Base:         cfg.Output.File,
		SkipExisting: cfg.Batch.SkipExisting,
		Flavor:       flavor,
	})
	if err != nil {
		return err
	}

	if err := fsutil.EnsureDir(cfg.Output.Directory); err != nil {
		return err
	}
	var perm os.FileMode = 0644
	if flavor == batch.POSIX {
		perm = 0755
	}
	path := filepath.Join(cfg.Output.Directory, flavor.ScriptName())
	if err := fsutil.WriteFileAtomic(path, []byte(script), perm); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func cmdWatch(ctx context.Context, cfg *config.Config, args []string) error {
	path, err := sceneArg(cfg, args)
	if err != nil {
		return err
	}

	export := func(ctx context.Context) error {
		res, err := runExport(ctx, cfg, path)
		if err != nil {
			return err
		}
		fmt.Printf("exported %d frame(s)\n", len(res.Frames))
		return nil
	}
	// A broken snapshot is reported but does not stop watching.
	if err := export(ctx); err != nil {
		logger.Error("initial export failed", zap.Error(err))
	}
	return watch.New(path).Run(ctx, export)
}

func cmdPreview(args []string) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	scale := fs.Float64("scale", 0.5, "Output scale relative to the scene resolution")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hqzexport preview [-scale s] <file.json> [out.png]")
		os.Exit(1)
	}
	in := fs.Arg(0)
	out := strings.TrimSuffix(in, filepath.Ext(in)) + "_preview.png"
	if fs.NArg() > 1 {
		out = fs.Arg(1)
	}

	data, err := os.ReadFile(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	s, err := hqz.Unmarshal(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", in, err)
		os.Exit(1)
	}

	opts := preview.DefaultOptions()
	opts.Scale = *scale
	png, err := preview.Render(s, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := fsutil.WriteFileAtomic(out, png, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

func cmdInit(args []string) {
	path := "hqzexport.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if fsutil.Exists(path) {
		fmt.Fprintf(os.Stderr, "Error: %s already exists\n", path)
		os.Exit(1)
	}
	if err := config.Default().SaveTo(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
