// Where: internal/app/plugins_cmd.go
// What: plugins hooks and version commands.
// Why: Make registrations visible for debugging plugin loading.
package app

import (
	"fmt"

	"github.com/poruru-code/tutor-newrelic/internal/version"
)

type PluginsCmd struct {
	Hooks PluginsHooksCmd `cmd:"" help:"List extension points and contribution counts"`
}

type PluginsHooksCmd struct{}

func (c *PluginsHooksCmd) Run(rt *Context) error {
	rt.Console.Header("🔌", "Extension points")
	for _, p := range rt.Registry.Points() {
		rt.Console.Item(p.Name, p.Count)
	}
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(rt *Context) error {
	_, err := fmt.Fprintln(rt.Out, version.String())
	return err
}
