package deployment

import "racectl/internal/topology"

// LocalCapacity is the per-role persona capacity of the local docker host.
const LocalCapacity = 256

// LocalTopology is the host topology of a local environment: one docker
// host per linux and android bucket, no GPU hosts.
func LocalTopology() topology.Topology {
	var topo topology.Topology
	for _, ib := range topology.InstanceBuckets() {
		if ib.GPU {
			continue
		}
		class := topology.HostClass{InstanceBucket: ib, Hosts: 1, ClientsPerHost: LocalCapacity}
		if ib.Platform == topology.PlatformLinux {
			class.ServersPerHost = LocalCapacity
		}
		topo.HostClasses = append(topo.HostClasses, class)
	}
	return topo
}
