// Where: internal/render/engine.go
// What: Template engine for settings, environment files, and init tasks.
// Why: Share one function set so every rendered artifact resolves settings the same way.
package render

import (
	"bytes"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Engine renders text/template sources against a settings map.
// Settings are reachable as fields ({{ .K8S_NAMESPACE }}) and as bare
// functions ({{ K8S_NAMESPACE }}); sprig functions and patch are also available.
type Engine struct {
	config  map[string]any
	patches map[string][]string
	funcs   template.FuncMap
}

// New creates an engine. patches maps a patch name to its contents in order.
func New(config map[string]any, patches map[string][]string) *Engine {
	e := &Engine{
		config:  config,
		patches: patches,
	}
	funcs := sprig.TxtFuncMap()
	for key, value := range config {
		if !identifier.MatchString(key) {
			continue
		}
		value := value
		funcs[key] = func() any { return value }
	}
	funcs["patch"] = e.patch
	e.funcs = funcs
	return e
}

// Config returns the settings the engine renders against.
func (e *Engine) Config() map[string]any {
	return e.config
}

// Render renders text. Sources without actions are returned unchanged.
func (e *Engine) Render(name, text string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New(name).Funcs(e.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, e.config); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderValue renders every string nested in value, leaving other scalars untouched.
// Maps with string keys and slices come back as map[string]any and []any.
func (e *Engine) RenderValue(name string, value any) (any, error) {
	switch v := value.(type) {
	case string:
		return e.Render(name, v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			rendered, err := e.RenderValue(name, item)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			rendered, err := e.RenderValue(name, item)
			if err != nil {
				return nil, err
			}
			out[key] = rendered
		}
		return out, nil
	default:
		return e.renderReflect(name, value)
	}
}

// renderReflect handles named map and slice types such as config.Config,
// returning them as map[string]any and []any.
func (e *Engine) renderReflect(name string, value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		plain := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			plain[iter.Key().String()] = iter.Value().Interface()
		}
		return e.RenderValue(name, plain)
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8:
		plain := make([]any, rv.Len())
		for i := range plain {
			plain[i] = rv.Index(i).Interface()
		}
		return e.RenderValue(name, plain)
	default:
		return value, nil
	}
}

func (e *Engine) patch(name string) (string, error) {
	contents := e.patches[name]
	rendered := make([]string, 0, len(contents))
	for _, content := range contents {
		out, err := e.Render("patch:"+name, content)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, out)
	}
	return strings.Join(rendered, "\n"), nil
}
