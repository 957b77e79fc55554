// Where: internal/meta/meta.go
// What: Plugin and host metadata constants.
// Why: Keep names, prefixes, and the release version in one place.
package meta

const (
	// Plugin Identity
	PluginName    = "newrelic"
	SettingPrefix = "NEWRELIC_"
	// Version tracks the Open edX release line the plugin targets.
	Version = "18.0.0"

	// Host Identity
	AppName   = "tutor-newrelic"
	EnvPrefix = "TUTOR"

	// Directory Layout
	ConfigFile = "config.yml"
	EnvDir     = "env"
	DataDir    = ".local/share/tutor"
)
