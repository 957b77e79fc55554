// Where: internal/images/images.go
// What: Build, pull, and push the images registered by plugins.
// Why: Give IMAGES_BUILD, IMAGES_PULL, and IMAGES_PUSH contributions a consumer.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/jsonmessage"
	"golang.org/x/sync/errgroup"

	"github.com/poruru-code/tutor-newrelic/internal/compose"
	"github.com/poruru-code/tutor-newrelic/internal/hooks"
	"github.com/poruru-code/tutor-newrelic/internal/render"
)

// All selects every registered image.
const All = "all"

const maxParallelPulls = 4

// ErrUnknownImage is returned when a requested name matches no registered image.
var ErrUnknownImage = errors.New("unknown image")

// BuildOptions tunes docker build invocations.
type BuildOptions struct {
	NoCache bool
	Args    []string
}

// Manager resolves registered images against the configuration and drives docker.
type Manager struct {
	Registry *hooks.Registry
	Engine   *render.Engine
	Docker   compose.DockerClient
	Runner   compose.CommandRunner
	EnvRoot  string
}

// Build runs docker build for the selected images. The context directory is the
// image path under the rendered environment.
func (m *Manager) Build(ctx context.Context, names []string, opts BuildOptions) error {
	selected, err := selectImages(m.Registry.ImagesBuild.Items(), names, func(b hooks.ImageBuild) string { return b.Name })
	if err != nil {
		return err
	}
	for _, img := range selected {
		tag, err := m.resolveTag(img.Name, img.Tag)
		if err != nil {
			return err
		}
		args := []string{"build", "-t", tag}
		if opts.NoCache {
			args = append(args, "--no-cache")
		}
		args = append(args, img.Args...)
		args = append(args, opts.Args...)
		args = append(args, filepath.Join(append([]string{m.EnvRoot}, img.Path...)...))
		if err := m.Runner.Run(ctx, m.EnvRoot, "docker", args...); err != nil {
			return fmt.Errorf("build %s: %w", img.Name, err)
		}
	}
	return nil
}

// Pull pulls the selected images concurrently.
func (m *Manager) Pull(ctx context.Context, names []string) error {
	selected, err := selectImages(m.Registry.ImagesPull.Items(), names, func(r hooks.ImageRef) string { return r.Name })
	if err != nil {
		return err
	}
	tags := make([]string, len(selected))
	for i, img := range selected {
		if tags[i], err = m.resolveTag(img.Name, img.Tag); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelPulls)
	for i, tag := range tags {
		tag := tag
		name := selected[i].Name
		g.Go(func() error {
			rc, err := m.Docker.ImagePull(gctx, tag, image.PullOptions{})
			if err != nil {
				return fmt.Errorf("pull %s: %w", name, err)
			}
			defer rc.Close()
			if err := jsonmessage.DisplayJSONMessagesStream(rc, io.Discard, 0, false, nil); err != nil {
				return fmt.Errorf("pull %s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Push pushes the selected images one at a time through the docker CLI, which
// resolves registry credentials from the user's docker config.
func (m *Manager) Push(ctx context.Context, names []string) error {
	selected, err := selectImages(m.Registry.ImagesPush.Items(), names, func(r hooks.ImageRef) string { return r.Name })
	if err != nil {
		return err
	}
	for _, img := range selected {
		tag, err := m.resolveTag(img.Name, img.Tag)
		if err != nil {
			return err
		}
		if err := m.Runner.Run(ctx, m.EnvRoot, "docker", "push", tag); err != nil {
			return fmt.Errorf("push %s: %w", img.Name, err)
		}
	}
	return nil
}

// Names lists the registered image names of each extension point.
func Names(reg *hooks.Registry) (build, pull, push []string) {
	for _, b := range reg.ImagesBuild.Items() {
		build = append(build, b.Name)
	}
	for _, r := range reg.ImagesPull.Items() {
		pull = append(pull, r.Name)
	}
	for _, r := range reg.ImagesPush.Items() {
		push = append(push, r.Name)
	}
	return build, pull, push
}

func (m *Manager) resolveTag(name, raw string) (string, error) {
	tag, err := m.Engine.Render("image:"+name, raw)
	if err != nil {
		return "", err
	}
	named, err := reference.ParseNormalizedNamed(tag)
	if err != nil {
		return "", fmt.Errorf("invalid tag %q for image %s: %w", tag, name, err)
	}
	return reference.TagNameOnly(named).String(), nil
}

// selectImages keeps registration order. No names, or "all", selects everything.
func selectImages[T any](items []T, names []string, nameOf func(T) string) ([]T, error) {
	if len(names) == 0 {
		return items, nil
	}
	for _, n := range names {
		if n == All {
			return items, nil
		}
	}
	var selected []T
	for _, n := range names {
		found := false
		for _, item := range items {
			if nameOf(item) == n {
				selected = append(selected, item)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownImage, n)
		}
	}
	return selected, nil
}
