// Where: internal/hooks/registry.go
// What: Extension point registry shared by the host and its plugins.
// Why: Pass registrations explicitly instead of mutating package globals.
package hooks

// Extension point names.
const (
	ConfigDefaults     = "CONFIG_DEFAULTS"
	ConfigUnique       = "CONFIG_UNIQUE"
	ConfigOverrides    = "CONFIG_OVERRIDES"
	CLIDoInitTasks     = "CLI_DO_INIT_TASKS"
	ImagesBuild        = "IMAGES_BUILD"
	ImagesPull         = "IMAGES_PULL"
	ImagesPush         = "IMAGES_PUSH"
	EnvTemplateRoots   = "ENV_TEMPLATE_ROOTS"
	EnvTemplateTargets = "ENV_TEMPLATE_TARGETS"
	EnvPatches         = "ENV_PATCHES"
	CLICommands        = "CLI_COMMANDS"
)

// Registry holds every extension point. The zero value is not usable; call New.
type Registry struct {
	ConfigDefaults  *Filter[Setting]
	ConfigUnique    *Filter[Setting]
	ConfigOverrides *Filter[Setting]
	InitTasks       *Filter[InitTask]
	ImagesBuild     *Filter[ImageBuild]
	ImagesPull      *Filter[ImageRef]
	ImagesPush      *Filter[ImageRef]
	TemplateRoots   *Filter[TemplateRoot]
	TemplateTargets *Filter[TemplateTarget]
	Patches         *Filter[Patch]
	Commands        *Filter[any]
}

// Point summarizes an extension point for listing.
type Point struct {
	Name  string
	Count int
}

// New creates a registry with every extension point empty.
func New() *Registry {
	return &Registry{
		ConfigDefaults:  NewFilter[Setting](ConfigDefaults),
		ConfigUnique:    NewFilter[Setting](ConfigUnique),
		ConfigOverrides: NewFilter[Setting](ConfigOverrides),
		InitTasks:       NewFilter[InitTask](CLIDoInitTasks),
		ImagesBuild:     NewFilter[ImageBuild](ImagesBuild),
		ImagesPull:      NewFilter[ImageRef](ImagesPull),
		ImagesPush:      NewFilter[ImageRef](ImagesPush),
		TemplateRoots:   NewFilter[TemplateRoot](EnvTemplateRoots),
		TemplateTargets: NewFilter[TemplateTarget](EnvTemplateTargets),
		Patches:         NewFilter[Patch](EnvPatches),
		Commands:        NewFilter[any](CLICommands),
	}
}

// Points lists the extension points in a fixed order with their contribution counts.
func (r *Registry) Points() []Point {
	return []Point{
		{Name: r.ConfigDefaults.Name(), Count: r.ConfigDefaults.Len()},
		{Name: r.ConfigUnique.Name(), Count: r.ConfigUnique.Len()},
		{Name: r.ConfigOverrides.Name(), Count: r.ConfigOverrides.Len()},
		{Name: r.InitTasks.Name(), Count: r.InitTasks.Len()},
		{Name: r.ImagesBuild.Name(), Count: r.ImagesBuild.Len()},
		{Name: r.ImagesPull.Name(), Count: r.ImagesPull.Len()},
		{Name: r.ImagesPush.Name(), Count: r.ImagesPush.Len()},
		{Name: r.TemplateRoots.Name(), Count: r.TemplateRoots.Len()},
		{Name: r.TemplateTargets.Name(), Count: r.TemplateTargets.Len()},
		{Name: r.Patches.Name(), Count: r.Patches.Len()},
		{Name: r.Commands.Name(), Count: r.Commands.Len()},
	}
}

// PatchesByName groups patch contents by name, keeping registration order.
func (r *Registry) PatchesByName() map[string][]string {
	out := map[string][]string{}
	for _, p := range r.Patches.Items() {
		out[p.Name] = append(out[p.Name], p.Content)
	}
	return out
}
