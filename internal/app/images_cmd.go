// Where: internal/app/images_cmd.go
// What: images build/pull/push/list commands.
// Why: Drive registered image descriptors through docker.
package app

import (
	"strings"

	"github.com/poruru-code/tutor-newrelic/internal/env"
	"github.com/poruru-code/tutor-newrelic/internal/images"
)

type ImagesCmd struct {
	Build ImagesBuildCmd `cmd:"" help:"Build images"`
	Pull  ImagesPullCmd  `cmd:"" help:"Pull images"`
	Push  ImagesPushCmd  `cmd:"" help:"Push images"`
	List  ImagesListCmd  `cmd:"" help:"List registered images"`
}

type ImagesBuildCmd struct {
	Names    []string `arg:"" optional:"" help:"Image names or \"all\" (default: all)"`
	NoCache  bool     `name:"no-cache" help:"Do not use the build cache"`
	BuildArg []string `name:"build-arg" sep:"none" help:"Extra --build-arg values"`
}

func (c *ImagesBuildCmd) Run(rt *Context) error {
	m, err := rt.imageManager(false)
	if err != nil {
		return err
	}
	opts := images.BuildOptions{NoCache: c.NoCache}
	for _, arg := range c.BuildArg {
		opts.Args = append(opts.Args, "--build-arg", arg)
	}
	if err := m.Build(rt.Ctx, c.Names, opts); err != nil {
		return err
	}
	rt.Console.Success("Images built")
	return nil
}

type ImagesPullCmd struct {
	Names []string `arg:"" optional:"" help:"Image names or \"all\" (default: all)"`
}

func (c *ImagesPullCmd) Run(rt *Context) error {
	m, err := rt.imageManager(true)
	if err != nil {
		return err
	}
	if err := m.Pull(rt.Ctx, c.Names); err != nil {
		return err
	}
	rt.Console.Success("Images pulled")
	return nil
}

type ImagesPushCmd struct {
	Names []string `arg:"" optional:"" help:"Image names or \"all\" (default: all)"`
}

func (c *ImagesPushCmd) Run(rt *Context) error {
	m, err := rt.imageManager(false)
	if err != nil {
		return err
	}
	if err := m.Push(rt.Ctx, c.Names); err != nil {
		return err
	}
	rt.Console.Success("Images pushed")
	return nil
}

type ImagesListCmd struct{}

func (c *ImagesListCmd) Run(rt *Context) error {
	build, pull, push := images.Names(rt.Registry)
	rt.Console.Header("🐳", "Images")
	rt.Console.Item("build", joinOrNone(build))
	rt.Console.Item("pull", joinOrNone(pull))
	rt.Console.Item("push", joinOrNone(push))
	return nil
}

func (c *Context) imageManager(withDocker bool) (*images.Manager, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	m := &images.Manager{
		Registry: c.Registry,
		Engine:   c.Renderer(cfg).Engine(),
		Runner:   c.Runner,
		EnvRoot:  env.Root(c.Root),
	}
	if withDocker {
		if m.Docker, err = c.Docker(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
