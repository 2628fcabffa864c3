package observer

import (
	"context"
	"sort"

	"racectl/internal/deployment"
)

// Tags placed on cloud resources belonging to an environment.
const (
	TagEnvironment = "racectl:environment"
	TagRole        = "racectl:role"
)

// DeploymentLabel is the docker label naming the deployment a container
// belongs to.
const DeploymentLabel = "racectl.deployment"

// ContainerInfo is the observed state of one container.
type ContainerInfo struct {
	State          string
	Status         string
	DeploymentName string
}

// InstanceRuntimeInfo describes one host and the containers on it.
type InstanceRuntimeInfo struct {
	PublicDNS  string
	PublicIP   string
	PrivateDNS string
	PrivateIP  string
	Tags       map[string]string
	Containers map[string]ContainerInfo
	// Unreachable is set when the host exists but its containers could
	// not be listed.
	Unreachable string
}

// RuntimeInfo maps an instance bucket key such as "linux-x86_64" to the
// hosts serving it.
type RuntimeInfo map[string][]InstanceRuntimeInfo

// SortByPublicDNS orders every role's hosts by public DNS name, the order
// manifests are paired with.
func (ri RuntimeInfo) SortByPublicDNS() {
	for _, hosts := range ri {
		sort.SliceStable(hosts, func(i, j int) bool {
			return hosts[i].PublicDNS < hosts[j].PublicDNS
		})
	}
}

// Resources holds the raw provider state of an environment's resources,
// keyed by resource name.
type Resources struct {
	Stacks    map[string]string
	Instances map[string]string
	Volumes   map[string]string
	// Daemons maps a docker host to the error of pinging it, nil when
	// reachable.
	Daemons map[string]error
}

// EnvironmentObserver observes the hosts of an environment.
type EnvironmentObserver interface {
	Resources(ctx context.Context, env *deployment.Environment) (*Resources, error)
	RuntimeInfo(ctx context.Context, env *deployment.Environment, roles []string) (RuntimeInfo, error)
}
