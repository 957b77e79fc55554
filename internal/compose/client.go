// Where: internal/compose/client.go
// What: Docker client constructor.
// Why: Centralize Docker SDK initialization.
package compose

import (
	"context"
	"io"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

// DockerClient defines the subset of Docker SDK methods used by the CLI.
// This interface enables mocking the Docker client in tests.
type DockerClient interface {
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
}

// NewDockerClient constructs a Docker SDK client using environment defaults.
func NewDockerClient() (DockerClient, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}
