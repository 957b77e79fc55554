// Where: internal/resources/provider.go
// What: Access to bundled plugin files by logical path.
// Why: Let registration read templates and patches without depending on the real filesystem.
package resources

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Provider lists and reads bundled files. Paths are slash-separated and relative
// to the bundle root.
type Provider interface {
	// Glob returns the regular files matching pattern, sorted. A missing directory
	// yields no matches.
	Glob(pattern string) ([]string, error)
	// ReadText returns the file content as a string.
	ReadText(name string) (string, error)
	// Sub returns the subtree rooted at dir.
	Sub(dir string) (fs.FS, error)
}

// FSProvider implements Provider on top of an fs.FS.
type FSProvider struct {
	fsys fs.FS
}

// New wraps fsys, typically an embed.FS or an fstest.MapFS.
func New(fsys fs.FS) *FSProvider {
	return &FSProvider{fsys: fsys}
}

// Dir serves files from a directory on disk.
func Dir(root string) *FSProvider {
	return New(os.DirFS(root))
}

func (p *FSProvider) Glob(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(p.fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	files := make([]string, 0, len(matches))
	for _, match := range matches {
		if strings.HasPrefix(path.Base(match), ".") {
			continue
		}
		files = append(files, match)
	}
	return files, nil
}

func (p *FSProvider) ReadText(name string) (string, error) {
	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

func (p *FSProvider) Sub(dir string) (fs.FS, error) {
	sub, err := fs.Sub(p.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	return sub, nil
}
