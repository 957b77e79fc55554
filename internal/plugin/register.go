// Where: internal/plugin/register.go
// What: New Relic plugin registrations.
// Why: Declare settings, templates, patches, and commands through the host registry.
package plugin

import (
	"fmt"
	"path"

	"github.com/poruru-code/tutor-newrelic/internal/hooks"
	xlog "github.com/poruru-code/tutor-newrelic/internal/log"
	"github.com/poruru-code/tutor-newrelic/internal/meta"
	"github.com/poruru-code/tutor-newrelic/internal/newrelic"
	"github.com/poruru-code/tutor-newrelic/internal/resources"
)

// DefaultSettings returns the NEWRELIC_ settings and their defaults in declaration order.
func DefaultSettings() []hooks.Setting {
	return []hooks.Setting{
		{Name: newrelic.KeyVersion, Value: meta.Version},
		{Name: newrelic.KeyName, Value: "{{ K8S_NAMESPACE }}"},
		{Name: newrelic.KeyAPIKey, Value: ""},
		{Name: newrelic.KeyAccountID, Value: ""},
		{Name: newrelic.KeyRegionCode, Value: ""},
		{Name: newrelic.KeyMonitoringPeriod, Value: "EVERY_5_MINUTES"},
		{Name: newrelic.KeyMonitoringLocation, Value: "US_EAST_1"},
		// Each item is {recipient: email, urls: [url, ...]}.
		{Name: newrelic.KeySyntheticsMonitors, Value: []any{}},
	}
}

// TemplateTargets maps template sources to their environment destination.
var TemplateTargets = []hooks.TemplateTarget{
	{Source: path.Join(meta.PluginName, "build"), Destination: "plugins"},
	{Source: path.Join(meta.PluginName, "apps"), Destination: "plugins"},
}

// initTaskTemplate points at a script under templates/ run by the <service>-job container.
type initTaskTemplate struct {
	service string
	path    []string
}

var (
	uniqueSettings   []hooks.Setting
	overrideSettings []hooks.Setting
	initTasks        []initTaskTemplate
	imagesBuild      []hooks.ImageBuild
	imagesPull       []hooks.ImageRef
	imagesPush       []hooks.ImageRef
)

// Register declares every plugin contribution on reg, reading bundled files from res.
// A failed read aborts registration; the failing kind gets no items.
func Register(reg *hooks.Registry, res resources.Provider) error {
	logger := xlog.WithComponent("plugin")

	reg.ConfigDefaults.AddItems(DefaultSettings()...)
	reg.ConfigUnique.AddItems(uniqueSettings...)
	reg.ConfigOverrides.AddItems(overrideSettings...)

	tasks, err := loadInitTasks(res, initTasks)
	if err != nil {
		return fmt.Errorf("load init tasks: %w", err)
	}
	reg.InitTasks.AddItems(tasks...)

	reg.ImagesBuild.AddItems(imagesBuild...)
	reg.ImagesPull.AddItems(imagesPull...)
	reg.ImagesPush.AddItems(imagesPush...)

	templates, err := res.Sub("templates")
	if err != nil {
		return err
	}
	reg.TemplateRoots.AddItem(hooks.TemplateRoot{Name: meta.PluginName, FS: templates})
	reg.TemplateTargets.AddItems(TemplateTargets...)

	patches, err := loadPatches(res)
	if err != nil {
		return fmt.Errorf("load patches: %w", err)
	}
	reg.Patches.AddItems(patches...)

	reg.Commands.AddItem(&Commands{})

	logger.Debug().
		Int("settings", reg.ConfigDefaults.Len()).
		Int("init_tasks", len(tasks)).
		Int("patches", len(patches)).
		Msg("plugin registered")
	return nil
}

func loadInitTasks(res resources.Provider, templates []initTaskTemplate) ([]hooks.InitTask, error) {
	tasks := make([]hooks.InitTask, 0, len(templates))
	for _, tpl := range templates {
		script, err := res.ReadText(path.Join(append([]string{"templates"}, tpl.path...)...))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, hooks.InitTask{Service: tpl.service, Script: script})
	}
	return tasks, nil
}

// loadPatches reads every file directly under patches/, keyed by its base name.
func loadPatches(res resources.Provider) ([]hooks.Patch, error) {
	files, err := res.Glob("patches/*")
	if err != nil {
		return nil, err
	}
	patches := make([]hooks.Patch, 0, len(files))
	for _, file := range files {
		content, err := res.ReadText(file)
		if err != nil {
			return nil, err
		}
		patches = append(patches, hooks.Patch{Name: path.Base(file), Content: content})
	}
	return patches, nil
}
