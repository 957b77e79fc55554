// Where: internal/jobs/init.go
// What: Run registered init tasks as docker compose jobs.
// Why: Consume CLI_DO_INIT_TASKS the way the local deployment runs one-off jobs.
package jobs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/poruru-code/tutor-newrelic/internal/compose"
	"github.com/poruru-code/tutor-newrelic/internal/hooks"
	xlog "github.com/poruru-code/tutor-newrelic/internal/log"
	"github.com/poruru-code/tutor-newrelic/internal/render"
)

// Runner executes init tasks through docker compose.
type Runner struct {
	Registry    *hooks.Registry
	Engine      *render.Engine
	Commands    compose.CommandRunner
	EnvRoot     string
	ProjectName string
	logger      zerolog.Logger
}

// Init runs every registered init task in registration order. When limit is set,
// only tasks for that service run. It returns the number of tasks executed.
func (r *Runner) Init(ctx context.Context, limit string) (int, error) {
	r.logger = xlog.WithComponent("jobs")
	ran := 0
	for _, task := range r.Registry.InitTasks.Items() {
		if limit != "" && task.Service != limit {
			continue
		}
		script, err := r.Engine.Render("init:"+task.Service, task.Script)
		if err != nil {
			return ran, err
		}
		r.logger.Debug().Str("service", task.Service).Msg("running init task")
		if err := r.RunJob(ctx, task.Service, script); err != nil {
			return ran, fmt.Errorf("init task for %s: %w", task.Service, err)
		}
		ran++
	}
	return ran, nil
}

// RunJob runs script inside the <service>-job container.
func (r *Runner) RunJob(ctx context.Context, service, script string) error {
	return r.Commands.Run(ctx, r.EnvRoot, "docker", r.composeArgs(service, script)...)
}

func (r *Runner) composeArgs(service, script string) []string {
	local := filepath.Join(r.EnvRoot, "local")
	return []string{
		"compose",
		"-f", filepath.Join(local, "docker-compose.yml"),
		"-f", filepath.Join(local, "docker-compose.jobs.yml"),
		"--project-name", r.ProjectName,
		"run", "--rm", service + "-job",
		"sh", "-e", "-c", script,
	}
}
