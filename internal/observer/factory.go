package observer

import (
	"context"
	"fmt"

	"racectl/internal/config"
	"racectl/internal/deployment"
)

// ForEnvironment creates the observer matching an environment's provider.
func ForEnvironment(ctx context.Context, env *deployment.Environment, cfg config.Config, docker *DockerObserver) (EnvironmentObserver, error) {
	switch env.Provider {
	case deployment.ProviderLocal:
		return NewLocalObserver(docker, cfg.Docker.Host), nil
	case deployment.ProviderAWS:
		return LoadAWSObserver(ctx, env, cfg.AWS, cfg.Docker.Port, cfg.MaxParallel, docker)
	default:
		return nil, fmt.Errorf("environment %s: unsupported provider %q", env.Name, env.Provider)
	}
}
