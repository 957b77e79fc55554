// Where: internal/plugin/register_test.go
// What: Tests for plugin registration.
// Why: Ensure every contribution lands on the registry and file failures leave nothing behind.
package plugin

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/poruru-code/tutor-newrelic/assets"
	"github.com/poruru-code/tutor-newrelic/internal/config"
	"github.com/poruru-code/tutor-newrelic/internal/env"
	"github.com/poruru-code/tutor-newrelic/internal/hooks"
	"github.com/poruru-code/tutor-newrelic/internal/resources"
)

// deniedFS fails to read one file while still listing it.
type deniedFS struct {
	fstest.MapFS
	denied string
}

func (d deniedFS) Open(name string) (fs.File, error) {
	if name == d.denied {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return d.MapFS.Open(name)
}

func (d deniedFS) ReadFile(name string) ([]byte, error) {
	if name == d.denied {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return d.MapFS.ReadFile(name)
}

func registerFS(t *testing.T, fsys fs.FS) (*hooks.Registry, error) {
	t.Helper()
	reg := hooks.New()
	return reg, Register(reg, resources.New(fsys))
}

func TestDefaultSettingsAreUniqueAndPrefixed(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range DefaultSettings() {
		if !strings.HasPrefix(s.Name, "NEWRELIC_") {
			t.Fatalf("setting %s is not prefixed", s.Name)
		}
		if seen[s.Name] {
			t.Fatalf("duplicate setting %s", s.Name)
		}
		seen[s.Name] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 settings, got %d", len(seen))
	}
}

func TestRegisterDeclaresDefaultsInOrder(t *testing.T) {
	reg, err := registerFS(t, fstest.MapFS{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	var names []string
	for _, s := range reg.ConfigDefaults.Items() {
		names = append(names, s.Name)
	}
	want := []string{
		"NEWRELIC_VERSION",
		"NEWRELIC_NAME",
		"NEWRELIC_API_KEY",
		"NEWRELIC_ACCOUNT_ID",
		"NEWRELIC_REGION_CODE",
		"NEWRELIC_MONITORING_PERIOD",
		"NEWRELIC_MONITORING_LOCATION",
		"NEWRELIC_SYNTHETICS_MONITORS",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("default settings mismatch (-want +got):\n%s", diff)
	}
	if got := reg.ConfigDefaults.Items()[1].Value; got != "{{ K8S_NAMESPACE }}" {
		t.Fatalf("unexpected NEWRELIC_NAME default: %v", got)
	}
}

func TestRegisterEmptyListsAddNothing(t *testing.T) {
	reg, err := registerFS(t, fstest.MapFS{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	counts := map[string]int{
		"unique":    reg.ConfigUnique.Len(),
		"overrides": reg.ConfigOverrides.Len(),
		"init":      reg.InitTasks.Len(),
		"build":     reg.ImagesBuild.Len(),
		"pull":      reg.ImagesPull.Len(),
		"push":      reg.ImagesPush.Len(),
	}
	for name, count := range counts {
		if count != 0 {
			t.Fatalf("expected no %s items, got %d", name, count)
		}
	}
	if reg.Commands.Len() != 1 {
		t.Fatalf("expected one command group, got %d", reg.Commands.Len())
	}
}

func TestRegisterLoadsPatchesByBaseName(t *testing.T) {
	reg, err := registerFS(t, fstest.MapFS{
		"patches/a.txt":        {Data: []byte("alpha")},
		"patches/b.txt":        {Data: []byte("beta")},
		"patches/nested/c.txt": {Data: []byte("ignored")},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	want := []hooks.Patch{{Name: "a.txt", Content: "alpha"}, {Name: "b.txt", Content: "beta"}}
	if diff := cmp.Diff(want, reg.Patches.Items()); diff != "" {
		t.Fatalf("patches mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterWithoutPatchesDir(t *testing.T) {
	reg, err := registerFS(t, fstest.MapFS{"templates/newrelic/apps/x": {Data: []byte("x")}})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Patches.Len() != 0 {
		t.Fatalf("expected no patches, got %d", reg.Patches.Len())
	}
}

func TestRegisterUnreadablePatchFails(t *testing.T) {
	fsys := deniedFS{
		MapFS: fstest.MapFS{
			"patches/a.txt": {Data: []byte("alpha")},
			"patches/b.txt": {Data: []byte("beta")},
		},
		denied: "patches/b.txt",
	}
	reg, err := registerFS(t, fsys)
	if err == nil {
		t.Fatal("expected error for unreadable patch")
	}
	if !strings.Contains(err.Error(), "patches/b.txt") {
		t.Fatalf("expected failing path in error, got %v", err)
	}
	if reg.Patches.Len() != 0 {
		t.Fatalf("expected no patches after failure, got %d", reg.Patches.Len())
	}
}

func TestRegisterTemplateTargetsAlwaysPresent(t *testing.T) {
	for name, fsys := range map[string]fs.FS{
		"empty":   fstest.MapFS{},
		"bundled": assets.FS,
	} {
		t.Run(name, func(t *testing.T) {
			reg, err := registerFS(t, fsys)
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			want := []hooks.TemplateTarget{
				{Source: "newrelic/build", Destination: "plugins"},
				{Source: "newrelic/apps", Destination: "plugins"},
			}
			if diff := cmp.Diff(want, reg.TemplateTargets.Items()); diff != "" {
				t.Fatalf("targets mismatch (-want +got):\n%s", diff)
			}
			if reg.TemplateRoots.Len() != 1 || reg.TemplateRoots.Items()[0].Name != "newrelic" {
				t.Fatalf("unexpected template roots: %v", reg.TemplateRoots.Items())
			}
		})
	}
}

func TestLoadInitTasksReadsTemplates(t *testing.T) {
	res := resources.New(fstest.MapFS{
		"templates/newrelic/tasks/lms/init.sh": {Data: []byte("echo lms")},
	})
	tasks, err := loadInitTasks(res, []initTaskTemplate{
		{service: "lms", path: []string{"newrelic", "tasks", "lms", "init.sh"}},
	})
	if err != nil {
		t.Fatalf("load init tasks: %v", err)
	}
	if diff := cmp.Diff([]hooks.InitTask{{Service: "lms", Script: "echo lms"}}, tasks); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInitTasksMissingTemplateFails(t *testing.T) {
	res := resources.New(fstest.MapFS{
		"templates/newrelic/tasks/lms/init.sh": {Data: []byte("echo lms")},
	})
	tasks, err := loadInitTasks(res, []initTaskTemplate{
		{service: "lms", path: []string{"newrelic", "tasks", "lms", "init.sh"}},
		{service: "cms", path: []string{"newrelic", "tasks", "cms", "init.sh"}},
	})
	if err == nil {
		t.Fatal("expected error for missing template")
	}
	if tasks != nil {
		t.Fatalf("expected no tasks, got %v", tasks)
	}
}

func TestBundledAssetsRender(t *testing.T) {
	reg, err := registerFS(t, assets.FS)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	var patchNames []string
	for _, p := range reg.Patches.Items() {
		patchNames = append(patchNames, p.Name)
	}
	wantPatches := []string{"k8s-jobs", "local-docker-compose-jobs-services", "openedx-common-settings"}
	if diff := cmp.Diff(wantPatches, patchNames); diff != "" {
		t.Fatalf("patch names mismatch (-want +got):\n%s", diff)
	}

	user := config.Config{
		"K8S_NAMESPACE": "prod",
		"NEWRELIC_SYNTHETICS_MONITORS": []any{
			map[string]any{"recipient": "ops@example.com", "urls": []any{"https://lms.example.com/heartbeat"}},
		},
	}
	cfg, err := config.Resolve(config.Defaults(reg), user, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	root := t.TempDir()
	if _, err := env.NewRenderer(reg, cfg).Save(root); err != nil {
		t.Fatalf("render env: %v", err)
	}

	settings, err := os.ReadFile(filepath.Join(root, "env", "plugins", "newrelic", "apps", "newrelic", "settings.yml"))
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	for _, want := range []string{`name: "prod"`, `region: "US"`, `- recipient: "ops@example.com"`, `- "https://lms.example.com/heartbeat"`} {
		if !strings.Contains(string(settings), want) {
			t.Fatalf("expected %q in settings:\n%s", want, settings)
		}
	}

	script := filepath.Join(root, "env", "plugins", "newrelic", "apps", "newrelic", "synthetics.sh")
	info, err := os.Stat(script)
	if err != nil {
		t.Fatalf("stat script: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable script, got %v", info.Mode())
	}
	if _, err := os.Stat(filepath.Join(root, "env", "plugins", "newrelic", "build", "newrelic", "Dockerfile")); err != nil {
		t.Fatalf("expected rendered Dockerfile: %v", err)
	}
}

func TestJobPatchesUseRenderedDockerfileImage(t *testing.T) {
	reg, err := registerFS(t, assets.FS)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	cfg, err := config.Resolve(config.Defaults(reg), config.Config{}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	engine := env.NewRenderer(reg, cfg).Engine()
	image := "image: docker.io/newrelic-job:" + cfg["NEWRELIC_VERSION"].(string)

	for _, p := range reg.Patches.Items() {
		if p.Name == "openedx-common-settings" {
			continue
		}
		out, err := engine.Render(p.Name, p.Content)
		if err != nil {
			t.Fatalf("render %s: %v", p.Name, err)
		}
		if !strings.Contains(out, image) {
			t.Fatalf("%s does not reference %q:\n%s", p.Name, image, out)
		}
		if strings.Contains(out, "overhangio/") {
			t.Fatalf("%s references an image no build produces:\n%s", p.Name, out)
		}
	}

	compose := reg.Patches.Items()[1]
	if compose.Name != "local-docker-compose-jobs-services" {
		t.Fatalf("unexpected patch order: %s", compose.Name)
	}
	// The build context is relative to env/local.
	if !strings.Contains(compose.Content, "context: ../plugins/newrelic/build/newrelic") {
		t.Fatalf("compose job does not build the rendered Dockerfile:\n%s", compose.Content)
	}
}
