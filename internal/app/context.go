// Where: internal/app/context.go
// What: Per-invocation command context bound into every command's Run method.
// Why: Give host and plugin commands the same access to config, registry, and I/O.
package app

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/poruru-code/tutor-newrelic/internal/compose"
	"github.com/poruru-code/tutor-newrelic/internal/config"
	"github.com/poruru-code/tutor-newrelic/internal/env"
	"github.com/poruru-code/tutor-newrelic/internal/hooks"
	"github.com/poruru-code/tutor-newrelic/internal/interaction"
	xlog "github.com/poruru-code/tutor-newrelic/internal/log"
	"github.com/poruru-code/tutor-newrelic/internal/ui"
)

// Context is bound by kong and passed to every command's Run method.
type Context struct {
	Ctx              context.Context
	Root             string
	Out              io.Writer
	Console          *ui.Console
	Registry         *hooks.Registry
	Prompter         interaction.Prompter
	Runner           compose.CommandRunner
	NewRelicEndpoint string
	Logger           zerolog.Logger

	newDocker func() (compose.DockerClient, error)
	environ   func() []string
}

func newContext(root string, out io.Writer, deps Dependencies) *Context {
	rt := &Context{
		Ctx:              context.Background(),
		Root:             root,
		Out:              out,
		Console:          ui.New(out),
		Registry:         deps.Registry,
		Prompter:         deps.Prompter,
		Runner:           deps.Runner,
		NewRelicEndpoint: deps.NewRelicEndpoint,
		Logger:           xlog.WithComponent("cli"),
		newDocker:        deps.NewDocker,
		environ:          deps.Environ,
	}
	if rt.Prompter == nil {
		rt.Prompter = interaction.HuhPrompter{}
	}
	if rt.Runner == nil {
		rt.Runner = compose.ExecRunner{Stdout: out}
	}
	if rt.newDocker == nil {
		rt.newDocker = compose.NewDockerClient
	}
	if rt.environ == nil {
		rt.environ = os.Environ
	}
	return rt
}

// Config resolves the full rendered configuration.
func (c *Context) Config() (config.Config, error) {
	return config.Load(c.Root, c.Registry, c.environ())
}

// Environ returns the process environment used for TUTOR_ overrides.
func (c *Context) Environ() []string {
	return c.environ()
}

// Docker constructs a Docker SDK client on demand.
func (c *Context) Docker() (compose.DockerClient, error) {
	return c.newDocker()
}

// Renderer binds the registry to a resolved configuration.
func (c *Context) Renderer(cfg config.Config) *env.Renderer {
	return env.NewRenderer(c.Registry, cfg)
}

// SaveEnv renders the environment for cfg and reports the file count.
func (c *Context) SaveEnv(cfg config.Config) error {
	written, err := c.Renderer(cfg).Save(c.Root)
	if err != nil {
		return err
	}
	c.Logger.Debug().Int("files", len(written)).Str("root", env.Root(c.Root)).Msg("environment rendered")
	return nil
}
