// Where: internal/env/render_test.go
// What: Tests for environment rendering.
// Why: Verify target mapping, patches, ignore rules, binaries, and script modes.
package env

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/poruru-code/tutor-newrelic/internal/config"
	"github.com/poruru-code/tutor-newrelic/internal/hooks"
)

func newTestRegistry() *hooks.Registry {
	reg := hooks.New()
	reg.TemplateRoots.AddItem(hooks.TemplateRoot{Name: "test", FS: fstest.MapFS{
		"newrelic/build/newrelic/Dockerfile":      {Data: []byte("FROM alpine:{{ .ALPINE }}\n")},
		"newrelic/apps/newrelic/settings.yml":     {Data: []byte("name: {{ NEWRELIC_NAME }}\n{{ patch \"newrelic-settings\" }}\n")},
		"newrelic/apps/newrelic/run.sh":           {Data: []byte("#!/bin/sh\necho {{ NEWRELIC_NAME }}\n")},
		"newrelic/apps/newrelic/logo.png":         {Data: []byte("{{ not a template")},
		"newrelic/apps/partials/snippet.yml":      {Data: []byte("{{ broken")},
		"newrelic/apps/newrelic/cache.pyc":        {Data: []byte{0x00}},
		"newrelic/unrelated/ignored-by-target.md": {Data: []byte("x")},
	}})
	reg.TemplateTargets.AddItems(
		hooks.TemplateTarget{Source: "newrelic/build", Destination: "plugins"},
		hooks.TemplateTarget{Source: "newrelic/apps", Destination: "plugins"},
		hooks.TemplateTarget{Source: "missing/source", Destination: "plugins"},
	)
	reg.Patches.AddItem(hooks.Patch{Name: "newrelic-settings", Content: "period: {{ NEWRELIC_MONITORING_PERIOD }}"})
	return reg
}

func TestSaveRendersTargets(t *testing.T) {
	root := t.TempDir()
	cfg := config.Config{
		"ALPINE":                     "3.20",
		"NEWRELIC_NAME":              "openedx",
		"NEWRELIC_MONITORING_PERIOD": "EVERY_5_MINUTES",
	}

	written, err := NewRenderer(newTestRegistry(), cfg).Save(root)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	sort.Strings(written)
	want := []string{
		"plugins/newrelic/apps/newrelic/logo.png",
		"plugins/newrelic/apps/newrelic/run.sh",
		"plugins/newrelic/apps/newrelic/settings.yml",
		"plugins/newrelic/build/newrelic/Dockerfile",
	}
	if diff := cmp.Diff(want, written); diff != "" {
		t.Fatalf("written mismatch (-want +got):\n%s", diff)
	}

	base := Root(root)
	assertFile(t, filepath.Join(base, "plugins/newrelic/build/newrelic/Dockerfile"), "FROM alpine:3.20\n")
	assertFile(t, filepath.Join(base, "plugins/newrelic/apps/newrelic/settings.yml"), "name: openedx\nperiod: EVERY_5_MINUTES\n")
	assertFile(t, filepath.Join(base, "plugins/newrelic/apps/newrelic/logo.png"), "{{ not a template")

	info, err := os.Stat(filepath.Join(base, "plugins/newrelic/apps/newrelic/run.sh"))
	if err != nil {
		t.Fatalf("stat script: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable script, got %v", info.Mode().Perm())
	}
}

func TestSaveFailsOnTemplateError(t *testing.T) {
	reg := hooks.New()
	reg.TemplateRoots.AddItem(hooks.TemplateRoot{Name: "test", FS: fstest.MapFS{
		"newrelic/apps/bad.yml": {Data: []byte("{{ UNDEFINED_SETTING }}")},
	}})
	reg.TemplateTargets.AddItem(hooks.TemplateTarget{Source: "newrelic/apps", Destination: "plugins"})

	if _, err := NewRenderer(reg, config.Config{}).Save(t.TempDir()); err == nil {
		t.Fatalf("expected render error")
	}
}

func TestIgnored(t *testing.T) {
	cases := map[string]bool{
		"newrelic/apps/partials/x.yml":   true,
		".git/config":                    true,
		"newrelic/apps/__pycache__/a.py": true,
		"newrelic/apps/a.pyc":            true,
		"newrelic/apps/.DS_Store":        true,
		"newrelic/apps/settings.yml":     false,
	}
	for name, want := range cases {
		if got := Ignored(name); got != want {
			t.Errorf("Ignored(%q) = %v, want %v", name, got, want)
		}
	}
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(data) != want {
		t.Fatalf("unexpected content in %s: %q", path, data)
	}
}
