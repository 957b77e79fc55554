// Where: cmd/tutor-newrelic/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"io"
	"os"
	"sync"

	"github.com/poruru-code/tutor-newrelic/assets"
	"github.com/poruru-code/tutor-newrelic/internal/app"
	"github.com/poruru-code/tutor-newrelic/internal/compose"
	"github.com/poruru-code/tutor-newrelic/internal/hooks"
	"github.com/poruru-code/tutor-newrelic/internal/interaction"
	"github.com/poruru-code/tutor-newrelic/internal/plugin"
	"github.com/poruru-code/tutor-newrelic/internal/resources"
)

var (
	newDockerClient                    = compose.NewDockerClient
	bundle          resources.Provider = resources.New(assets.FS)
)

// buildDependencies registers the plugin and constructs runtime dependencies.
// The Docker client is created on first use; the returned closer releases it.
func buildDependencies() (app.Dependencies, io.Closer, error) {
	reg := hooks.New()
	if err := plugin.Register(reg, bundle); err != nil {
		return app.Dependencies{}, nil, err
	}

	docker := &lazyDocker{}
	deps := app.Dependencies{
		Out:       os.Stdout,
		Registry:  reg,
		Prompter:  interaction.HuhPrompter{},
		Runner:    compose.ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr},
		NewDocker: docker.get,
		Environ:   os.Environ,
	}
	return deps, docker, nil
}

type lazyDocker struct {
	once   sync.Once
	client compose.DockerClient
	err    error
}

func (l *lazyDocker) get() (compose.DockerClient, error) {
	l.once.Do(func() {
		l.client, l.err = newDockerClient()
	})
	return l.client, l.err
}

// Close releases the Docker client if one was created.
func (l *lazyDocker) Close() error {
	if closer, ok := l.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
