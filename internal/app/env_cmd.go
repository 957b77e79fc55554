// Where: internal/app/env_cmd.go
// What: env render command.
// Why: Re-render templates after plugin or config changes without touching config.yml.
package app

import (
	"github.com/poruru-code/tutor-newrelic/internal/env"
)

type EnvCmd struct {
	Render EnvRenderCmd `cmd:"" help:"Render every template target"`
}

type EnvRenderCmd struct{}

func (c *EnvRenderCmd) Run(rt *Context) error {
	cfg, err := rt.Config()
	if err != nil {
		return err
	}
	if err := rt.SaveEnv(cfg); err != nil {
		return err
	}
	rt.Console.Success("Environment rendered in " + env.Root(rt.Root))
	return nil
}
