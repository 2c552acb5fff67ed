// Package batch generates the shell script that renders every exported frame.
package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"

	"github.com/mattn/go-shellwords"
)

// Flavor is the script dialect.
type Flavor string

const (
	POSIX   Flavor = "posix"
	Windows Flavor = "windows"
)

// Errors
var (
	ErrUnknownFlavor = errors.New("unknown script flavor")
	ErrNoRenderer    = errors.New("renderer path is empty")
	ErrRendererArgs  = errors.New("invalid renderer arguments")
)

// HostFlavor returns the flavor matching the running operating system.
func HostFlavor() Flavor {
	if runtime.GOOS == "windows" {
		return Windows
	}
	return POSIX
}

// ParseFlavor validates a flavor name. Empty selects HostFlavor.
func ParseFlavor(s string) (Flavor, error) {
	switch Flavor(strings.ToLower(s)) {
	case "":
		return HostFlavor(), nil
	case POSIX, "sh", "bash":
		return POSIX, nil
	case Windows, "bat", "cmd":
		return Windows, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFlavor, s)
}

// ScriptName returns the script file name for a flavor.
func (f Flavor) ScriptName() string {
	if f == Windows {
		return "batch.bat"
	}
	return "batch.sh"
}

// FrameName returns "<base>_<frame:04d><ext>".
func FrameName(base string, frame int, ext string) string {
	return fmt.Sprintf("%s_%04d%s", base, frame, ext)
}

// FramePath joins dir with FrameName.
func FramePath(dir, base string, frame int, ext string) string {
	return filepath.Join(dir, FrameName(base, frame, ext))
}

// ParseArgs splits extra renderer arguments with shell quoting rules.
func ParseArgs(s string) ([]string, error) {
	args, err := shellwords.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererArgs, err)
	}
	return args, nil
}

// Options configures Generate.
type Options struct {
	Frames       []int
	Renderer     string
	RendererArgs []string
	Directory    string
	Base         string
	SkipExisting bool
	Flavor       Flavor
}

type job struct {
	// Image is the quoted output path.
	Image   string
	Command string
}

type data struct {
	SkipExisting bool
	Jobs         []job
}

var posixTemplate = template.Must(template.New("posix").Parse(`#!/bin/bash

{{range .Jobs -}}
{{if $.SkipExisting -}}
if [ -f {{.Image}} ]; then
    echo "ignoring existing file "{{.Image}}
else
    echo "rendering image "{{.Image}}
    {{.Command}}
fi
{{else -}}
{{.Command}}
{{end -}}
{{end -}}
`))

var windowsTemplate = template.Must(template.New("windows").Parse(`@echo off
{{range .Jobs -}}
{{if $.SkipExisting -}}
if exist {{.Image}} (
    echo ignoring existing file {{.Image}}
) else (
    echo rendering image {{.Image}}
    {{.Command}}
)
{{else -}}
{{.Command}}
{{end -}}
{{end -}}
`))

// Generate returns the script text rendering opts.Frames in order.
func Generate(opts Options) (string, error) {
	if opts.Renderer == "" {
		return "", ErrNoRenderer
	}
	var tmpl *template.Template
	var quote func(string) string
	switch opts.Flavor {
	case POSIX:
		tmpl, quote = posixTemplate, posixQuote
	case Windows:
		tmpl, quote = windowsTemplate, windowsQuote
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFlavor, opts.Flavor)
	}

	d := data{SkipExisting: opts.SkipExisting}
	for _, frame := range opts.Frames {
		scene := FramePath(opts.Directory, opts.Base, frame, ".json")
		image := FramePath(opts.Directory, opts.Base, frame, ".png")

		words := make([]string, 0, len(opts.RendererArgs)+3)
		words = append(words, quote(opts.Renderer))
		for _, a := range opts.RendererArgs {
			words = append(words, quote(a))
		}
		words = append(words, quote(scene), quote(image))

		d.Jobs = append(d.Jobs, job{
			Image:   quote(image),
			Command: strings.Join(words, " "),
		})
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, d); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// posixQuote wraps s in double quotes, escaping the characters bash still
// expands inside them.
func posixQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")
	return `"` + r.Replace(s) + `"`
}

// windowsQuote wraps s in double quotes for cmd.exe. Percent signs are
// doubled so batch files do not expand them as variables.
func windowsQuote(s string) string {
	r := strings.NewReplacer(`"`, `""`, `%`, `%%`)
	return `"` + r.Replace(s) + `"`
}
