package observer

import (
	"context"

	"racectl/internal/deployment"
)

// LocalHostName is the host name reported for the local docker daemon.
const LocalHostName = "localhost"

// LocalObserver observes a local environment: a single docker daemon
// serving every role.
type LocalObserver struct {
	docker *DockerObserver
	host   string
}

// NewLocalObserver creates an observer for the docker daemon at host; an
// empty host uses DOCKER_HOST or the local socket.
func NewLocalObserver(docker *DockerObserver, host string) *LocalObserver {
	return &LocalObserver{docker: docker, host: host}
}

func (o *LocalObserver) Resources(ctx context.Context, env *deployment.Environment) (*Resources, error) {
	return &Resources{
		Daemons: map[string]error{LocalHostName: o.docker.Ping(ctx, o.host)},
	}, nil
}

// RuntimeInfo reports the local host once under every requested role.
func (o *LocalObserver) RuntimeInfo(ctx context.Context, env *deployment.Environment, roles []string) (RuntimeInfo, error) {
	containers, err := o.docker.Containers(ctx, o.host)
	if err != nil {
		return nil, err
	}

	info := make(RuntimeInfo, len(roles))
	for _, role := range roles {
		info[role] = []InstanceRuntimeInfo{{
			PublicDNS:  LocalHostName,
			PublicIP:   "127.0.0.1",
			PrivateDNS: LocalHostName,
			PrivateIP:  "127.0.0.1",
			Tags:       map[string]string{TagEnvironment: env.Name, TagRole: role},
			Containers: containers,
		}}
	}
	return info, nil
}
