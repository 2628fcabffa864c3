package collector

import (
	"fmt"
	"maps"
	"slices"

	"racectl/internal/deployment"
	"racectl/internal/observer"
	"racectl/internal/status"
	"racectl/internal/topology"
)

// Resource group names of the environment report.
const (
	GroupStacks    = "stacks"
	GroupInstances = "instances"
	GroupVolumes   = "volumes"
	GroupDocker    = "docker"
)

// ServicesRole is the container report role holding auxiliary services.
const ServicesRole = "services"

// HostName is the report key of the i-th host of a role.
func HostName(i int) string {
	return fmt.Sprintf("host-%d", i)
}

// BuildEnvironmentReport classifies the cloud resources of an environment.
// An aws environment always expects its stack; other groups are only shown
// when something was observed.
func BuildEnvironmentReport(env *deployment.Environment, res *observer.Resources) *status.Report {
	groups := map[string]*status.Report{}

	stacks := map[string]*status.Report{}
	for name, raw := range res.Stacks {
		stacks[name] = status.Leaf(status.ClassifyStack(raw), raw)
	}
	if env.Provider == deployment.ProviderAWS {
		stacks = status.PadMissing(stacks, []string{env.Name}, status.ComponentNotPresent)
	}
	addGroup(groups, GroupStacks, stacks)

	instances := map[string]*status.Report{}
	for id, raw := range res.Instances {
		instances[id] = status.Leaf(status.ClassifyInstance(raw), raw)
	}
	addGroup(groups, GroupInstances, instances)

	volumes := map[string]*status.Report{}
	for id, raw := range res.Volumes {
		volumes[id] = status.Leaf(status.ClassifyVolume(raw), raw)
	}
	addGroup(groups, GroupVolumes, volumes)

	daemons := map[string]*status.Report{}
	for host, err := range res.Daemons {
		if err != nil {
			daemons[host] = status.Leaf(status.ComponentNotReady, err.Error())
			continue
		}
		daemons[host] = status.Leaf(status.ComponentReady, "")
	}
	addGroup(groups, GroupDocker, daemons)

	return status.Aggregate(status.ErrorDominant, groups)
}

func addGroup(groups map[string]*status.Report, name string, children map[string]*status.Report) {
	if len(children) == 0 {
		return
	}
	groups[name] = status.Aggregate(status.ErrorDominant, children)
}

// hostBuilder builds the report of one observed host from its manifest.
type hostBuilder func(host observer.InstanceRuntimeInfo, m topology.Manifest) *status.Report

// buildHostTree zips every non-empty manifest of every role with the sorted
// observed hosts of that role. Manifests without a host get a synthetic down
// leaf and unreachable hosts get the unreachable leaf.
func buildHostTree(rule status.Rule, dist *topology.Distribution, info observer.RuntimeInfo, unreachable status.Value, build hostBuilder) map[string]*status.Report {
	roles := map[string]*status.Report{}
	for _, bucket := range dist.Buckets {
		hosts := info[bucket.Bucket]
		children := map[string]*status.Report{}
		for i, m := range bucket.Manifests {
			if m.Empty() {
				continue
			}
			name := HostName(i)
			switch {
			case i >= len(hosts):
				children[name] = status.Leaf(status.Down(rule), status.ReasonNotObserved)
			case hosts[i].Unreachable != "":
				children[name] = status.Leaf(unreachable, hosts[i].Unreachable)
			default:
				r := build(hosts[i], m)
				r.Reason = hosts[i].PublicDNS
				children[name] = r
			}
		}
		if len(children) > 0 {
			roles[bucket.Bucket] = status.Aggregate(rule, children)
		}
	}
	return roles
}

// containerOf returns the container of a persona or service if it belongs to
// the deployment.
func containerOf(containers map[string]observer.ContainerInfo, deploymentName, name string) (observer.ContainerInfo, bool) {
	c, ok := containers[name]
	if !ok || c.DeploymentName != deploymentName {
		return observer.ContainerInfo{}, false
	}
	return c, true
}

// clashOf reports a container that holds the name of a persona or service
// but belongs to another deployment. It is an ERROR leaf: the name has to be
// freed before the deployment can start.
func clashOf(containers map[string]observer.ContainerInfo, deploymentName, name string) (*status.Report, bool) {
	c, ok := containers[name]
	if !ok || c.DeploymentName == deploymentName {
		return nil, false
	}
	if c.DeploymentName == "" {
		return status.Leaf(status.ComponentError, "name taken by a container not managed by racectl"), true
	}
	return status.Leaf(status.ComponentError, fmt.Sprintf("name taken by deployment %s", c.DeploymentName)), true
}

func classify(c observer.ContainerInfo) status.ContainerStatus {
	return status.ClassifyContainer(c.State, c.Status)
}

// BuildContainerReport builds the container tree of a deployment: every
// persona of every manifest on its paired host plus the auxiliary services.
func BuildContainerReport(deploymentName string, dist *topology.Distribution, services []string, info observer.RuntimeInfo) *status.Report {
	roles := buildHostTree(status.ErrorDominant, dist, info, status.ComponentError,
		func(host observer.InstanceRuntimeInfo, m topology.Manifest) *status.Report {
			children := map[string]*status.Report{}
			for _, persona := range m.Personas() {
				if c, ok := containerOf(host.Containers, deploymentName, persona); ok {
					children[persona] = status.Leaf(classify(c).Component(), c.Status)
				} else if clash, ok := clashOf(host.Containers, deploymentName, persona); ok {
					children[persona] = clash
				}
			}
			children = status.PadMissing(children, m.Personas(), status.ComponentNotPresent)
			return status.Aggregate(status.ErrorDominant, children)
		})

	if len(services) > 0 {
		children := map[string]*status.Report{}
		for _, svc := range services {
			if c, ok := findService(info, deploymentName, svc); ok {
				children[svc] = status.Leaf(classify(c).Component(), c.Status)
			} else if clash, ok := findServiceClash(info, deploymentName, svc); ok {
				children[svc] = clash
			}
		}
		children = status.PadMissing(children, services, status.ComponentNotPresent)
		roles[ServicesRole] = status.Aggregate(status.ErrorDominant, children)
	}

	return status.Aggregate(status.ErrorDominant, roles)
}

// findService looks for a service container on any observed host.
func findService(info observer.RuntimeInfo, deploymentName, service string) (observer.ContainerInfo, bool) {
	for _, hosts := range info {
		for _, h := range hosts {
			if c, ok := containerOf(h.Containers, deploymentName, service); ok {
				return c, true
			}
		}
	}
	return observer.ContainerInfo{}, false
}

func findServiceClash(info observer.RuntimeInfo, deploymentName, service string) (*status.Report, bool) {
	for _, bucket := range slices.Sorted(maps.Keys(info)) {
		for _, h := range info[bucket] {
			if clash, ok := clashOf(h.Containers, deploymentName, service); ok {
				return clash, true
			}
		}
	}
	return nil, false
}

// BuildServiceReport builds the service tree. It returns nil when the
// deployment manages no services.
func BuildServiceReport(deploymentName string, services []string, info observer.RuntimeInfo) *status.Report {
	if len(services) == 0 {
		return nil
	}
	children := map[string]*status.Report{}
	for _, svc := range services {
		c, ok := findService(info, deploymentName, svc)
		if !ok {
			children[svc] = status.Leaf(status.ServiceNotRunning, status.ReasonNotObserved)
			continue
		}
		children[svc] = status.Leaf(status.ServiceFromContainer(classify(c)), c.Status)
	}
	return status.Aggregate(status.RunningMajority, children)
}

// BuildNodeReport builds the persona liveness tree. A persona whose
// container is not running is NOT_REPORTING whatever its last report said.
func BuildNodeReport(deploymentName string, dist *topology.Distribution, info observer.RuntimeInfo, personas map[string]observer.PersonaStatus) *status.Report {
	return BuildFacetReport(FacetDaemon, deploymentName, dist, info, personas)
}

// BuildFacetReport builds the tree of one persona facet in the same shape as
// the node report.
func BuildFacetReport(facet Facet, deploymentName string, dist *topology.Distribution, info observer.RuntimeInfo, personas map[string]observer.PersonaStatus) *status.Report {
	roles := buildHostTree(status.RunningMajority, dist, info, status.ParentUnknown,
		func(host observer.InstanceRuntimeInfo, m topology.Manifest) *status.Report {
			children := map[string]*status.Report{}
			for _, persona := range m.Personas() {
				ps, ok := personas[persona]
				if !ok {
					ps = observer.NotReporting()
				}
				reason := ""
				if c, ok := containerOf(host.Containers, deploymentName, persona); !ok || classify(c) != status.ContainerRunning {
					ps = observer.NotReporting()
					reason = "container not running"
				}
				children[persona] = status.Leaf(facet.Value(ps), reason)
			}
			return status.Aggregate(status.RunningMajority, children)
		})
	return status.Aggregate(status.RunningMajority, roles)
}
