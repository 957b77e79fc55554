// Where: internal/env/render.go
// What: Render template roots into the project environment directory.
// Why: Turn registered template targets and patches into files under <root>/env.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/poruru-code/tutor-newrelic/internal/config"
	"github.com/poruru-code/tutor-newrelic/internal/fileops"
	"github.com/poruru-code/tutor-newrelic/internal/hooks"
	xlog "github.com/poruru-code/tutor-newrelic/internal/log"
	"github.com/poruru-code/tutor-newrelic/internal/meta"
	"github.com/poruru-code/tutor-newrelic/internal/render"
)

// IgnorePatterns lists template paths that are never rendered.
var IgnorePatterns = []string{
	"**/partials/**",
	"**/.git/**",
	"**/__pycache__/**",
	"**/*.pyc",
	"**/.DS_Store",
	"**/*.swp",
}

var binaryExtensions = map[string]bool{
	".ico":   true,
	".jpg":   true,
	".jpeg":  true,
	".png":   true,
	".ttf":   true,
	".woff":  true,
	".woff2": true,
}

// Root returns the rendered environment directory under a project root.
func Root(root string) string {
	return filepath.Join(root, meta.EnvDir)
}

// Renderer writes every template target of every template root.
type Renderer struct {
	reg    *hooks.Registry
	engine *render.Engine
	logger zerolog.Logger
}

// NewRenderer binds the registry's templates and patches to a resolved configuration.
func NewRenderer(reg *hooks.Registry, cfg config.Config) *Renderer {
	return &Renderer{
		reg:    reg,
		engine: render.New(cfg, reg.PatchesByName()),
		logger: xlog.WithComponent("env"),
	}
}

// Engine exposes the engine so jobs and images render with the same patches.
func (r *Renderer) Engine() *render.Engine {
	return r.engine
}

// Save renders into <root>/env and returns the written paths relative to it.
// A target source missing from a root is skipped.
func (r *Renderer) Save(root string) ([]string, error) {
	base := Root(root)
	var written []string
	for _, target := range r.reg.TemplateTargets.Items() {
		for _, tr := range r.reg.TemplateRoots.Items() {
			files, err := r.renderTarget(tr, target, base)
			if err != nil {
				return written, err
			}
			written = append(written, files...)
		}
	}
	return written, nil
}

func (r *Renderer) renderTarget(tr hooks.TemplateRoot, target hooks.TemplateTarget, base string) ([]string, error) {
	source := path.Clean(target.Source)
	if _, err := fs.Stat(tr.FS, source); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s in %s: %w", source, tr.Name, err)
	}

	var written []string
	err := fs.WalkDir(tr.FS, source, func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || Ignored(name) {
			return nil
		}
		rel := path.Join(target.Destination, name)
		if err := r.renderFile(tr.FS, name, filepath.Join(base, filepath.FromSlash(rel))); err != nil {
			return err
		}
		r.logger.Debug().Str("root", tr.Name).Str("file", rel).Msg("rendered")
		written = append(written, rel)
		return nil
	})
	return written, err
}

func (r *Renderer) renderFile(fsys fs.FS, name, dst string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read template %s: %w", name, err)
	}
	if !binaryExtensions[strings.ToLower(path.Ext(name))] {
		out, err := r.engine.Render(name, string(data))
		if err != nil {
			return err
		}
		data = []byte(out)
	}
	mode := fs.FileMode(0o644)
	if path.Ext(name) == ".sh" {
		mode = 0o755
	}
	return fileops.WriteFile(dst, data, mode)
}

// Ignored reports whether a template path matches IgnorePatterns.
func Ignored(name string) bool {
	for _, pattern := range IgnorePatterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
