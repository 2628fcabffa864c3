// Package topology decides which RACE persona runs on which host instance.
//
// Required persona counts are grouped into buckets by platform, GPU, CPU
// architecture and role. Host classes describe how many personas of each
// role one host of an instance bucket can carry. Distribute bin-packs the
// personas greedily into an ordered list of manifests per instance bucket;
// the order is significant because status collection later pairs the n-th
// observed host (sorted by public DNS name) with the n-th manifest.
package topology

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformAndroid Platform = "android"
)

type Arch string

const (
	ArchX86_64 Arch = "x86_64"
	ArchArm64  Arch = "arm64"
)

type Role string

const (
	RoleClient Role = "client"
	RoleServer Role = "server"
)

// InstanceBucket identifies a kind of host instance.
type InstanceBucket struct {
	Platform Platform `yaml:"platform" json:"platform"`
	GPU      bool     `yaml:"gpu,omitempty" json:"gpu,omitempty"`
	Arch     Arch     `yaml:"arch" json:"arch"`
}

// String renders keys such as "linux-x86_64", "linux-gpu-arm64" and
// "android-arm64".
func (b InstanceBucket) String() string {
	parts := []string{string(b.Platform)}
	if b.GPU {
		parts = append(parts, "gpu")
	}
	parts = append(parts, string(b.Arch))
	return strings.Join(parts, "-")
}

// Bucket identifies a kind of persona.
type Bucket struct {
	InstanceBucket `yaml:",inline"`
	Role           Role `yaml:"role" json:"role"`
}

func (b Bucket) String() string {
	return b.InstanceBucket.String() + "-" + string(b.Role)
}

// canonicalInstanceBuckets fixes the iteration order used for persona
// numbering and distribution output.
var canonicalInstanceBuckets = []InstanceBucket{
	{Platform: PlatformLinux, Arch: ArchX86_64},
	{Platform: PlatformLinux, Arch: ArchArm64},
	{Platform: PlatformLinux, GPU: true, Arch: ArchX86_64},
	{Platform: PlatformLinux, GPU: true, Arch: ArchArm64},
	{Platform: PlatformAndroid, Arch: ArchX86_64},
	{Platform: PlatformAndroid, Arch: ArchArm64},
}

// InstanceBuckets returns every supported instance bucket in canonical order.
func InstanceBuckets() []InstanceBucket {
	out := make([]InstanceBucket, len(canonicalInstanceBuckets))
	copy(out, canonicalInstanceBuckets)
	return out
}

// ParseInstanceBucket is the inverse of InstanceBucket.String.
func ParseInstanceBucket(s string) (InstanceBucket, error) {
	for _, b := range canonicalInstanceBuckets {
		if b.String() == s {
			return b, nil
		}
	}
	return InstanceBucket{}, fmt.Errorf("unknown instance bucket %q", s)
}

// NodeCount is the number of personas required in one bucket. Bootstrap is
// how many of those clients join after stand-up rather than at genesis.
type NodeCount struct {
	Bucket    `yaml:",inline"`
	Count     int `yaml:"count" json:"count"`
	Bootstrap int `yaml:"bootstrap,omitempty" json:"bootstrap,omitempty"`
}

// Requirements is the persona demand of one deployment.
type Requirements struct {
	Nodes []NodeCount `yaml:"nodes" json:"nodes"`
	// Colocate lets linux non-GPU clients and servers share a host.
	Colocate bool `yaml:"colocate,omitempty" json:"colocate,omitempty"`
}

// Count returns the required persona count for a bucket.
func (r Requirements) Count(b Bucket) int {
	total := 0
	for _, n := range r.Nodes {
		if n.Bucket == b {
			total += n.Count
		}
	}
	return total
}

func (r Requirements) bootstrapCount(b Bucket) int {
	total := 0
	for _, n := range r.Nodes {
		if n.Bucket == b {
			total += n.Bootstrap
		}
	}
	return total
}

// Validate checks counts are sane before any distribution is attempted.
func (r Requirements) Validate() error {
	for _, n := range r.Nodes {
		if !supported(n.InstanceBucket) {
			return fmt.Errorf("unsupported node bucket %s", n.Bucket)
		}
		if n.Role != RoleClient && n.Role != RoleServer {
			return fmt.Errorf("node bucket %s: unknown role %q", n.Bucket, n.Role)
		}
		if n.Count < 0 {
			return fmt.Errorf("node bucket %s: negative count %d", n.Bucket, n.Count)
		}
		if n.Bootstrap < 0 || n.Bootstrap > n.Count {
			return fmt.Errorf("node bucket %s: bootstrap count %d out of range", n.Bucket, n.Bootstrap)
		}
		if n.Bootstrap > 0 && n.Role != RoleClient {
			return fmt.Errorf("node bucket %s: only clients can bootstrap", n.Bucket)
		}
		if n.Platform == PlatformAndroid && n.Role == RoleServer && n.Count > 0 {
			return fmt.Errorf("node bucket %s: android servers are not supported", n.Bucket)
		}
	}
	return nil
}

func supported(b InstanceBucket) bool {
	for _, c := range canonicalInstanceBuckets {
		if c == b {
			return true
		}
	}
	return false
}

// HostClass describes the hosts available for one instance bucket.
type HostClass struct {
	InstanceBucket `yaml:",inline"`
	// Hosts is the number of hosts provisioned; zero means as many as needed.
	Hosts          int `yaml:"hosts,omitempty" json:"hosts,omitempty"`
	ClientsPerHost int `yaml:"clientsPerHost" json:"clientsPerHost"`
	ServersPerHost int `yaml:"serversPerHost,omitempty" json:"serversPerHost,omitempty"`
}

// Topology is the host capacity of an environment.
type Topology struct {
	HostClasses []HostClass `yaml:"hostClasses" json:"hostClasses"`
}

// Class returns the host class serving an instance bucket.
func (t Topology) Class(b InstanceBucket) (HostClass, bool) {
	for _, c := range t.HostClasses {
		if c.InstanceBucket == b {
			return c, true
		}
	}
	return HostClass{}, false
}

// Default per-host capacities used when no explicit topology is supplied.
const (
	DefaultLinuxClientsPerHost   = 4
	DefaultLinuxServersPerHost   = 4
	DefaultGPUClientsPerHost     = 1
	DefaultGPUServersPerHost     = 1
	DefaultAndroidClientsPerHost = 2
)

// DefaultTopology derives auto-sized host classes for every instance bucket
// the requirements touch.
func DefaultTopology(req Requirements) Topology {
	var topo Topology
	for _, ib := range canonicalInstanceBuckets {
		if req.Count(Bucket{InstanceBucket: ib, Role: RoleClient})+req.Count(Bucket{InstanceBucket: ib, Role: RoleServer}) == 0 {
			continue
		}
		class := HostClass{InstanceBucket: ib}
		switch {
		case ib.Platform == PlatformAndroid:
			class.ClientsPerHost = DefaultAndroidClientsPerHost
		case ib.GPU:
			class.ClientsPerHost = DefaultGPUClientsPerHost
			class.ServersPerHost = DefaultGPUServersPerHost
		default:
			class.ClientsPerHost = DefaultLinuxClientsPerHost
			class.ServersPerHost = DefaultLinuxServersPerHost
		}
		topo.HostClasses = append(topo.HostClasses, class)
	}
	return topo
}
