// Package fsutil holds the file helpers used when writing exports.
package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates dir and any missing parents. It is a no-op when dir
// already exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory and renames it into place. Readers see either the old file or the
// complete new one. If the write fails, path is preserved.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
