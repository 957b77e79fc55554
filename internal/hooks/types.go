// Where: internal/hooks/types.go
// What: Contribution types accepted by the extension points.
// Why: Give every extension point a typed payload instead of loose tuples.
package hooks

import "io/fs"

// Setting is a configuration key with its default, generated, or override value.
type Setting struct {
	Name  string
	Value any
}

// InitTask is a script run once during environment initialization for a service.
type InitTask struct {
	Service string
	Script  string
}

// ImageBuild describes an image built from a directory of the rendered environment.
// Path is relative to the environment root; Tag may reference settings.
type ImageBuild struct {
	Name string
	Path []string
	Tag  string
	Args []string
}

// ImageRef describes an image pulled from or pushed to a registry.
type ImageRef struct {
	Name string
	Tag  string
}

// TemplateRoot is a filesystem searched for template sources.
type TemplateRoot struct {
	Name string
	FS   fs.FS
}

// TemplateTarget maps a source path inside every template root to a destination
// directory relative to the rendered environment.
type TemplateTarget struct {
	Source      string
	Destination string
}

// Patch is a named fragment injected wherever a template calls patch with Name.
type Patch struct {
	Name    string
	Content string
}
