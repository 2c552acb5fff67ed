package batch

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameName(t *testing.T) {
	assert.Equal(t, "scene_0007.json", FrameName("scene", 7, ".json"))
	assert.Equal(t, "scene_0123.png", FrameName("scene", 123, ".png"))
	assert.Equal(t, "scene_12345.png", FrameName("scene", 12345, ".png"))
	assert.Equal(t, filepath.Join("out", "s_0000.json"), FramePath("out", "s", 0, ".json"))
}

func TestParseFlavor(t *testing.T) {
	tests := []struct {
		in   string
		want Flavor
	}{
		{"posix", POSIX},
		{"bash", POSIX},
		{"Windows", Windows},
		{"bat", Windows},
	}
	for _, tt := range tests {
		got, err := ParseFlavor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	got, err := ParseFlavor("")
	require.NoError(t, err)
	if runtime.GOOS == "windows" {
		assert.Equal(t, Windows, got)
	} else {
		assert.Equal(t, POSIX, got)
	}

	_, err = ParseFlavor("fish")
	assert.ErrorIs(t, err, ErrUnknownFlavor)
}

func TestScriptName(t *testing.T) {
	assert.Equal(t, "batch.sh", POSIX.ScriptName())
	assert.Equal(t, "batch.bat", Windows.ScriptName())
}

func TestGeneratePOSIX(t *testing.T) {
	script, err := Generate(Options{
		Frames:    []int{2, 3, 4},
		Renderer:  "/usr/local/bin/hqz",
		Directory: "out",
		Base:      "scene",
		Flavor:    POSIX,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(script, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "#!/bin/bash", lines[0])
	assert.Equal(t, `"/usr/local/bin/hqz" "out/scene_0002.json" "out/scene_0002.png"`, filepath.ToSlash(lines[2]))
	assert.Contains(t, lines[3], "scene_0003.json")
	assert.Contains(t, lines[4], "scene_0004.png")
	assert.NotContains(t, script, "if [")
}

func TestGenerateSkipExistingPOSIX(t *testing.T) {
	script, err := Generate(Options{
		Frames:       []int{1, 2},
		Renderer:     "hqz",
		Directory:    "out",
		Base:         "s",
		SkipExisting: true,
		Flavor:       POSIX,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(script, "if [ -f "))
	assert.Equal(t, 2, strings.Count(script, "\nfi\n"))
	assert.Equal(t, 2, strings.Count(script, "ignoring existing file"))
	assert.Equal(t, 2, strings.Count(script, "rendering image"))
	// Exactly one invocation per frame, inside the else branch.
	assert.Equal(t, 2, strings.Count(script, `"hqz" `))

	first := strings.Index(script, "s_0001.png")
	second := strings.Index(script, "s_0002.png")
	assert.Less(t, first, second)
}

func TestGenerateSkipExistingWindows(t *testing.T) {
	script, err := Generate(Options{
		Frames:       []int{5},
		Renderer:     `C:\hqz\hqz.exe`,
		Directory:    "out",
		Base:         "s",
		SkipExisting: true,
		Flavor:       Windows,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(script, "@echo off\n"))
	assert.Equal(t, 1, strings.Count(script, "if exist "))
	assert.Contains(t, script, ") else (")
	assert.Contains(t, script, "echo ignoring existing file")
	assert.Contains(t, script, "echo rendering image")
	assert.Equal(t, 1, strings.Count(script, `"C:\hqz\hqz.exe" `))
	assert.NotContains(t, script, "#!/bin/bash")
}

func TestGenerateEscapesImagePaths(t *testing.T) {
	image := filepath.Join("100%", "s_0001.png")
	script, err := Generate(Options{
		Frames:       []int{1},
		Renderer:     "hqz",
		Directory:    "100%",
		Base:         "s",
		SkipExisting: true,
		Flavor:       Windows,
	})
	require.NoError(t, err)
	escaped := `"` + strings.ReplaceAll(image, "%", "%%") + `"`
	assert.Contains(t, script, "if exist "+escaped+" (")
	assert.Contains(t, script, "echo ignoring existing file "+escaped)
	assert.Equal(t, 5, strings.Count(script, "100%%"))
	assert.Equal(t, 10, strings.Count(script, "%"))

	image = filepath.Join("$HOME", "s_0001.png")
	script, err = Generate(Options{
		Frames:       []int{1},
		Renderer:     "hqz",
		Directory:    "$HOME",
		Base:         "s",
		SkipExisting: true,
		Flavor:       POSIX,
	})
	require.NoError(t, err)
	escaped = `"` + strings.ReplaceAll(image, "$", `\$`) + `"`
	assert.Contains(t, script, "if [ -f "+escaped+" ]; then")
	assert.Contains(t, script, `echo "rendering image "`+escaped)
	assert.Equal(t, 5, strings.Count(script, `\$HOME`))
	assert.Equal(t, 5, strings.Count(script, "$HOME"))
}

func TestGenerateRendererArgs(t *testing.T) {
	args, err := ParseArgs(`--threads 4 --label "two words"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"--threads", "4", "--label", "two words"}, args)

	script, err := Generate(Options{
		Frames:       []int{0},
		Renderer:     "hqz",
		RendererArgs: args,
		Base:         "s",
		Flavor:       POSIX,
	})
	require.NoError(t, err)
	assert.Contains(t, script, `"hqz" "--threads" "4" "--label" "two words" "s_0000.json" "s_0000.png"`)
}

func TestParseArgsError(t *testing.T) {
	_, err := ParseArgs(`--label "unterminated`)
	assert.ErrorIs(t, err, ErrRendererArgs)
}

func TestGenerateErrors(t *testing.T) {
	_, err := Generate(Options{Frames: []int{1}, Flavor: POSIX})
	assert.ErrorIs(t, err, ErrNoRenderer)

	_, err = Generate(Options{Frames: []int{1}, Renderer: "hqz", Flavor: "zsh"})
	assert.ErrorIs(t, err, ErrUnknownFlavor)
}

func TestPOSIXQuote(t *testing.T) {
	assert.Equal(t, `"a \"b\" \$HOME"`, posixQuote(`a "b" $HOME`))
	assert.Equal(t, `"say ""hi"""`, windowsQuote(`say "hi"`))
	assert.Equal(t, `"C:\out\100%%\%%TEMP%%"`, windowsQuote(`C:\out\100%\%TEMP%`))
}
