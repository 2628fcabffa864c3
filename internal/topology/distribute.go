package topology

import "fmt"

// Manifest is the set of personas assigned to one host instance.
type Manifest struct {
	AndroidClients  []string `yaml:"androidClients,omitempty" json:"androidClients,omitempty"`
	LinuxGPUClients []string `yaml:"linuxGpuClients,omitempty" json:"linuxGpuClients,omitempty"`
	LinuxGPUServers []string `yaml:"linuxGpuServers,omitempty" json:"linuxGpuServers,omitempty"`
	LinuxClients    []string `yaml:"linuxClients,omitempty" json:"linuxClients,omitempty"`
	LinuxServers    []string `yaml:"linuxServers,omitempty" json:"linuxServers,omitempty"`
}

func (m *Manifest) add(b Bucket, personas []string) {
	if len(personas) == 0 {
		return
	}
	switch {
	case b.Platform == PlatformAndroid:
		m.AndroidClients = append(m.AndroidClients, personas...)
	case b.GPU && b.Role == RoleClient:
		m.LinuxGPUClients = append(m.LinuxGPUClients, personas...)
	case b.GPU:
		m.LinuxGPUServers = append(m.LinuxGPUServers, personas...)
	case b.Role == RoleClient:
		m.LinuxClients = append(m.LinuxClients, personas...)
	default:
		m.LinuxServers = append(m.LinuxServers, personas...)
	}
}

// Personas lists every persona of the manifest, clients first.
func (m Manifest) Personas() []string {
	var out []string
	out = append(out, m.AndroidClients...)
	out = append(out, m.LinuxGPUClients...)
	out = append(out, m.LinuxClients...)
	out = append(out, m.LinuxGPUServers...)
	out = append(out, m.LinuxServers...)
	return out
}

// Empty reports whether no persona is assigned.
func (m Manifest) Empty() bool {
	return len(m.Personas()) == 0
}

// BucketManifests is the ordered manifest list of one instance bucket.
type BucketManifests struct {
	Bucket    string     `yaml:"bucket" json:"bucket"`
	Manifests []Manifest `yaml:"manifests" json:"manifests"`
}

// Distribution is the persona-to-host assignment of a deployment.
type Distribution struct {
	Colocated bool              `yaml:"colocated,omitempty" json:"colocated,omitempty"`
	Buckets   []BucketManifests `yaml:"buckets" json:"buckets"`
}

// Manifests returns the manifests of an instance bucket key.
func (d *Distribution) Manifests(bucket string) []Manifest {
	for _, b := range d.Buckets {
		if b.Bucket == bucket {
			return b.Manifests
		}
	}
	return nil
}

// Roles returns the instance bucket keys in distribution order.
func (d *Distribution) Roles() []string {
	roles := make([]string, 0, len(d.Buckets))
	for _, b := range d.Buckets {
		roles = append(roles, b.Bucket)
	}
	return roles
}

// HostOf returns the instance bucket and manifest index a persona was
// assigned to.
func (d *Distribution) HostOf(persona string) (string, int, bool) {
	for _, b := range d.Buckets {
		for i, m := range b.Manifests {
			for _, p := range m.Personas() {
				if p == persona {
					return b.Bucket, i, true
				}
			}
		}
	}
	return "", 0, false
}

// Check verifies that every persona bucket fits into the host classes of t.
func (t Topology) Check(req Requirements) error {
	for _, ib := range canonicalInstanceBuckets {
		clientBucket := Bucket{InstanceBucket: ib, Role: RoleClient}
		serverBucket := Bucket{InstanceBucket: ib, Role: RoleServer}
		clients := req.Count(clientBucket)
		servers := req.Count(serverBucket)
		if clients+servers == 0 {
			continue
		}

		class, ok := t.Class(ib)
		if !ok {
			b := clientBucket
			if clients == 0 {
				b = serverBucket
			}
			return &CapacityError{Bucket: b, Required: clients + servers, Detail: "no host class for " + ib.String()}
		}

		if clients > 0 && class.ClientsPerHost <= 0 {
			return &CapacityError{Bucket: clientBucket, Required: clients, Detail: "hosts carry no clients"}
		}
		if servers > 0 && class.ServersPerHost <= 0 {
			return &CapacityError{Bucket: serverBucket, Required: servers, Detail: "hosts carry no servers"}
		}
		if class.Hosts == 0 {
			continue
		}

		if colocates(req, ib) {
			if avail := class.Hosts * class.ClientsPerHost; clients > avail {
				return &CapacityError{Bucket: clientBucket, Required: clients, Available: avail}
			}
			if avail := class.Hosts * class.ServersPerHost; servers > avail {
				return &CapacityError{Bucket: serverBucket, Required: servers, Available: avail}
			}
			continue
		}

		clientHosts := hostsFor(clients, class.ClientsPerHost)
		serverHosts := hostsFor(servers, class.ServersPerHost)
		if clientHosts+serverHosts <= class.Hosts {
			continue
		}
		// Blame the role that claims more hosts.
		if clientHosts > serverHosts {
			avail := max(class.Hosts-serverHosts, 0) * class.ClientsPerHost
			return &CapacityError{Bucket: clientBucket, Required: clients, Available: avail,
				Detail: fmt.Sprintf("%d hosts reserved for servers", serverHosts)}
		}
		avail := max(class.Hosts-clientHosts, 0) * class.ServersPerHost
		return &CapacityError{Bucket: serverBucket, Required: servers, Available: avail,
			Detail: fmt.Sprintf("%d hosts reserved for clients", clientHosts)}
	}
	return nil
}

// CheckCompatible checks a user supplied topology file against the
// requirements and names the environment and file on failure.
func CheckCompatible(environment, file string, req Requirements, t Topology) error {
	if err := t.Check(req); err != nil {
		if ce, ok := err.(*CapacityError); ok {
			ce.Environment = environment
			ce.File = file
		}
		return err
	}
	return nil
}

// Distribute assigns every required persona to exactly one host manifest.
// The result depends only on req and t.
func Distribute(req Requirements, t Topology) (*Distribution, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := t.Check(req); err != nil {
		return nil, err
	}

	personas := Personas(req)
	dist := &Distribution{Colocated: req.Colocate}
	for _, ib := range canonicalInstanceBuckets {
		class, ok := t.Class(ib)
		clients := personas.Bucket(Bucket{InstanceBucket: ib, Role: RoleClient})
		servers := personas.Bucket(Bucket{InstanceBucket: ib, Role: RoleServer})
		if len(clients)+len(servers) == 0 && (!ok || class.Hosts == 0) {
			continue
		}

		var manifests []Manifest
		if colocates(req, ib) {
			manifests = packColocated(ib, clients, servers, class)
		} else {
			manifests = append(pack(Bucket{InstanceBucket: ib, Role: RoleClient}, clients, class.ClientsPerHost),
				pack(Bucket{InstanceBucket: ib, Role: RoleServer}, servers, class.ServersPerHost)...)
		}
		// Provisioned but unused hosts still get a manifest so host and
		// manifest lists pair one to one.
		for len(manifests) < class.Hosts {
			manifests = append(manifests, Manifest{})
		}
		dist.Buckets = append(dist.Buckets, BucketManifests{Bucket: ib.String(), Manifests: manifests})
	}
	return dist, nil
}

func colocates(req Requirements, ib InstanceBucket) bool {
	return req.Colocate && ib.Platform == PlatformLinux && !ib.GPU
}

func hostsFor(personas, perHost int) int {
	if personas == 0 {
		return 0
	}
	return (personas + perHost - 1) / perHost
}

func pack(b Bucket, personas []string, perHost int) []Manifest {
	var manifests []Manifest
	for start := 0; start < len(personas); start += perHost {
		end := min(start+perHost, len(personas))
		var m Manifest
		m.add(b, personas[start:end])
		manifests = append(manifests, m)
	}
	return manifests
}

func packColocated(ib InstanceBucket, clients, servers []string, class HostClass) []Manifest {
	hosts := max(hostsFor(len(clients), class.ClientsPerHost), hostsFor(len(servers), class.ServersPerHost))
	manifests := make([]Manifest, hosts)
	for i := range manifests {
		manifests[i].add(Bucket{InstanceBucket: ib, Role: RoleClient}, window(clients, i, class.ClientsPerHost))
		manifests[i].add(Bucket{InstanceBucket: ib, Role: RoleServer}, window(servers, i, class.ServersPerHost))
	}
	return manifests
}

func window(items []string, i, size int) []string {
	if size <= 0 {
		return nil
	}
	start := i * size
	if start >= len(items) {
		return nil
	}
	return items[start:min(start+size, len(items))]
}
