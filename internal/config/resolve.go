// Where: internal/config/resolve.go
// What: Merge defaults, overrides, user values, unique values, and environment overrides.
// Why: Produce the single settings map every rendering phase consumes.
package config

import (
	"reflect"

	"github.com/poruru-code/tutor-newrelic/internal/envutil"
	"github.com/poruru-code/tutor-newrelic/internal/hooks"
	"github.com/poruru-code/tutor-newrelic/internal/render"
)

const maxRenderPasses = 4

// CoreDefaults are the host settings plugin templates may reference.
var CoreDefaults = []hooks.Setting{
	{Name: "K8S_NAMESPACE", Value: "openedx"},
	{Name: "LOCAL_PROJECT_NAME", Value: "tutor_local"},
	{Name: "DOCKER_REGISTRY", Value: "docker.io/"},
	{Name: "LMS_HOST", Value: "www.myopenedx.com"},
	{Name: "CMS_HOST", Value: "studio.www.myopenedx.com"},
	{Name: "ENABLE_HTTPS", Value: false},
}

// Defaults merges core defaults, CONFIG_DEFAULTS, then CONFIG_OVERRIDES.
// A later contribution with the same name replaces an earlier one.
func Defaults(reg *hooks.Registry) Config {
	cfg := Config{}
	for _, s := range CoreDefaults {
		cfg[s.Name] = s.Value
	}
	for _, s := range reg.ConfigDefaults.Items() {
		cfg[s.Name] = s.Value
	}
	for _, s := range reg.ConfigOverrides.Items() {
		cfg[s.Name] = s.Value
	}
	return cfg
}

// LoadUserWithUnique loads the user configuration and fills in every CONFIG_UNIQUE
// setting it lacks, rendering the generated value. The returned map is what
// "config save" persists.
func LoadUserWithUnique(root string, reg *hooks.Registry) (Config, error) {
	user, err := LoadUser(root)
	if err != nil {
		return nil, err
	}
	if err := fillUnique(user, Defaults(reg), reg); err != nil {
		return nil, err
	}
	return user, nil
}

// Load resolves the complete rendered configuration for root.
func Load(root string, reg *hooks.Registry, environ []string) (Config, error) {
	user, err := LoadUserWithUnique(root, reg)
	if err != nil {
		return nil, err
	}
	return Resolve(Defaults(reg), user, environ)
}

// Resolve layers user values over defaults, applies TUTOR_<KEY> environment
// overrides for known keys, and renders every value.
func Resolve(defaults, user Config, environ []string) (Config, error) {
	merged := Config{}
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range user {
		merged[key] = value
	}
	for key := range merged {
		if raw, ok := envutil.Lookup(environ, envutil.HostEnvKey(key)); ok {
			merged[key] = ParseValue(raw)
		}
	}
	return Render(merged)
}

// Render renders string values against the configuration until they stop changing,
// so settings may reference settings that are themselves templated.
func Render(cfg Config) (Config, error) {
	current := cfg
	for pass := 0; pass < maxRenderPasses; pass++ {
		engine := render.New(current, nil)
		next := make(Config, len(current))
		for key, value := range current {
			rendered, err := engine.RenderValue(key, value)
			if err != nil {
				return nil, err
			}
			next[key] = rendered
		}
		if reflect.DeepEqual(next, current) {
			return next, nil
		}
		current = next
	}
	return current, nil
}

func fillUnique(user, defaults Config, reg *hooks.Registry) error {
	for _, s := range reg.ConfigUnique.Items() {
		if _, ok := user[s.Name]; ok {
			continue
		}
		context := Config{}
		for key, value := range defaults {
			context[key] = value
		}
		for key, value := range user {
			context[key] = value
		}
		rendered, err := render.New(context, nil).RenderValue(s.Name, s.Value)
		if err != nil {
			return err
		}
		user[s.Name] = rendered
	}
	return nil
}
