// Where: internal/app/do_cmd.go
// What: do init command.
// Why: Run registered init tasks inside compose job containers.
package app

import (
	"fmt"

	"github.com/poruru-code/tutor-newrelic/internal/env"
	"github.com/poruru-code/tutor-newrelic/internal/jobs"
)

type DoCmd struct {
	Init DoInitCmd `cmd:"" help:"Run every registered init task"`
}

type DoInitCmd struct {
	Limit string `short:"l" help:"Only run init tasks of this service"`
}

func (c *DoInitCmd) Run(rt *Context) error {
	cfg, err := rt.Config()
	if err != nil {
		return err
	}
	runner := &jobs.Runner{
		Registry:    rt.Registry,
		Engine:      rt.Renderer(cfg).Engine(),
		Commands:    rt.Runner,
		EnvRoot:     env.Root(rt.Root),
		ProjectName: cfg.String("LOCAL_PROJECT_NAME"),
	}
	ran, err := runner.Init(rt.Ctx, c.Limit)
	if err != nil {
		return err
	}
	if ran == 0 {
		rt.Console.Info("No init task to run")
		return nil
	}
	rt.Console.Success(fmt.Sprintf("%d init task(s) completed", ran))
	return nil
}
