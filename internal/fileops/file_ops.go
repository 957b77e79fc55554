// Where: internal/fileops/file_ops.go
// What: Shared filesystem operations for environment rendering.
// Why: Keep directory creation and file modes consistent across writers.
package fileops

import (
	"io/fs"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// WriteFile writes content to path with mode, creating parent directories.
// An existing directory at path is replaced.
func WriteFile(path string, content []byte, mode fs.FileMode) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return err
	}
	return os.Chmod(path, mode)
}
