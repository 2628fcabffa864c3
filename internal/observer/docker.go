package observer

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// DockerClient is the part of the docker API client the observers use.
type DockerClient interface {
	ContainerList(ctx context.Context, options types.ContainerListOptions) ([]types.Container, error)
	Ping(ctx context.Context) (types.Ping, error)
	Close() error
}

// DockerDialer opens a client for a docker host. An empty host means the
// environment default (DOCKER_HOST or the local socket).
type DockerDialer func(host string) (DockerClient, error)

// NewDockerDialer returns a dialer backed by the docker API client.
func NewDockerDialer() DockerDialer {
	return func(host string) (DockerClient, error) {
		opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
		if host != "" {
			opts = append(opts, client.WithHost(host))
		}
		cli, err := client.NewClientWithOpts(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create docker client for %q: %w", host, err)
		}
		return cli, nil
	}
}

// DockerObserver lists racectl containers on docker hosts.
type DockerObserver struct {
	dial DockerDialer
}

// NewDockerObserver creates an observer using dial to reach hosts.
func NewDockerObserver(dial DockerDialer) *DockerObserver {
	return &DockerObserver{dial: dial}
}

// Containers lists every container labelled with DeploymentLabel on host,
// stopped ones included, keyed by container name.
func (d *DockerObserver) Containers(ctx context.Context, host string) (map[string]ContainerInfo, error) {
	cli, err := d.dial(host)
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	containers, err := cli.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", DeploymentLabel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers on %s: %w", displayHost(host), err)
	}

	result := make(map[string]ContainerInfo, len(containers))
	for _, c := range containers {
		if len(c.Names) == 0 {
			continue
		}
		result[strings.TrimPrefix(c.Names[0], "/")] = ContainerInfo{
			State:          c.State,
			Status:         c.Status,
			DeploymentName: c.Labels[DeploymentLabel],
		}
	}
	return result, nil
}

// Ping checks that the daemon on host answers.
func (d *DockerObserver) Ping(ctx context.Context, host string) error {
	cli, err := d.dial(host)
	if err != nil {
		return err
	}
	defer cli.Close()

	if _, err := cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon on %s is unreachable: %w", displayHost(host), err)
	}
	return nil
}

func displayHost(host string) string {
	if host == "" {
		return "the local host"
	}
	return host
}
