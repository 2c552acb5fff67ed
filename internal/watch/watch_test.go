package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRunCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scene: {}\n"), 0644))

	w := New(path)
	w.Debounce = 20 * time.Millisecond
	w.Log = zaptest.NewLogger(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			calls <- struct{}{}
			return errors.New("logged, not fatal")
		})
	}()

	// Keep touching the file until the watcher is up and reports it.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644))
wait:
	for {
		select {
		case <-calls:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("scene: {}\n"), 0644))
		case <-deadline:
			t.Fatal("no call after writing the watched file")
		}
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "scene.yaml"))
	w.Log = zaptest.NewLogger(t)
	err := w.Run(context.Background(), func(context.Context) error { return nil })
	require.Error(t, err)
}
