package topology

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	linuxX86   = InstanceBucket{Platform: PlatformLinux, Arch: ArchX86_64}
	linuxGPU   = InstanceBucket{Platform: PlatformLinux, GPU: true, Arch: ArchX86_64}
	androidArm = InstanceBucket{Platform: PlatformAndroid, Arch: ArchArm64}
)

func nodes(ib InstanceBucket, role Role, count int) NodeCount {
	return NodeCount{Bucket: Bucket{InstanceBucket: ib, Role: role}, Count: count}
}

func TestInstanceBucketString(t *testing.T) {
	assert.Equal(t, "linux-x86_64", linuxX86.String())
	assert.Equal(t, "linux-gpu-x86_64", linuxGPU.String())
	assert.Equal(t, "android-arm64", androidArm.String())
	assert.Equal(t, "linux-gpu-x86_64-server", Bucket{InstanceBucket: linuxGPU, Role: RoleServer}.String())

	for _, ib := range InstanceBuckets() {
		parsed, err := ParseInstanceBucket(ib.String())
		require.NoError(t, err)
		assert.Equal(t, ib, parsed)
	}
	_, err := ParseInstanceBucket("windows-x86_64")
	assert.Error(t, err)
}

func TestPersonas(t *testing.T) {
	req := Requirements{Nodes: []NodeCount{
		nodes(androidArm, RoleClient, 1),
		nodes(linuxX86, RoleClient, 2),
		nodes(linuxX86, RoleServer, 2),
		{Bucket: Bucket{InstanceBucket: linuxGPU, Role: RoleClient}, Count: 2, Bootstrap: 1},
	}}

	set := Personas(req)

	assert.Equal(t, []string{"race-client-00001", "race-client-00002"}, set.Bucket(Bucket{InstanceBucket: linuxX86, Role: RoleClient}))
	assert.Equal(t, []string{"race-client-00003", "race-client-00004"}, set.Bucket(Bucket{InstanceBucket: linuxGPU, Role: RoleClient}))
	assert.Equal(t, []string{"race-client-00005"}, set.Bucket(Bucket{InstanceBucket: androidArm, Role: RoleClient}))
	assert.Equal(t, []string{"race-server-00001", "race-server-00002"}, set.Servers)
	assert.Equal(t, []string{"race-client-00001", "race-client-00002", "race-client-00003", "race-client-00005"}, set.Genesis)
	assert.Equal(t, []string{"race-client-00004"}, set.Bootstrap)
	assert.Len(t, set.All(), 7)
}

func TestDistribute_SeparateClientAndServerHosts(t *testing.T) {
	req := Requirements{Nodes: []NodeCount{
		nodes(linuxX86, RoleClient, 5),
		nodes(linuxX86, RoleServer, 3),
	}}

	dist, err := Distribute(req, DefaultTopology(req))
	require.NoError(t, err)

	want := &Distribution{Buckets: []BucketManifests{{
		Bucket: "linux-x86_64",
		Manifests: []Manifest{
			{LinuxClients: []string{"race-client-00001", "race-client-00002", "race-client-00003", "race-client-00004"}},
			{LinuxClients: []string{"race-client-00005"}},
			{LinuxServers: []string{"race-server-00001", "race-server-00002", "race-server-00003"}},
		},
	}}}
	if diff := cmp.Diff(want, dist); diff != "" {
		t.Errorf("Distribute() mismatch (-want +got):\n%s", diff)
	}
}

func TestDistribute_Colocated(t *testing.T) {
	req := Requirements{Colocate: true, Nodes: []NodeCount{
		nodes(linuxX86, RoleClient, 5),
		nodes(linuxX86, RoleServer, 3),
	}}

	dist, err := Distribute(req, DefaultTopology(req))
	require.NoError(t, err)

	manifests := dist.Manifests("linux-x86_64")
	require.Len(t, manifests, 2)
	assert.Equal(t, []string{"race-client-00001", "race-client-00002", "race-client-00003", "race-client-00004"}, manifests[0].LinuxClients)
	assert.Equal(t, []string{"race-server-00001", "race-server-00002", "race-server-00003"}, manifests[0].LinuxServers)
	assert.Equal(t, []string{"race-client-00005"}, manifests[1].LinuxClients)
	assert.Empty(t, manifests[1].LinuxServers)
	assert.True(t, dist.Colocated)
}

func TestDistribute_ColocationNeverAppliesToGPU(t *testing.T) {
	req := Requirements{Colocate: true, Nodes: []NodeCount{
		nodes(linuxGPU, RoleClient, 1),
		nodes(linuxGPU, RoleServer, 1),
	}}

	dist, err := Distribute(req, DefaultTopology(req))
	require.NoError(t, err)

	manifests := dist.Manifests("linux-gpu-x86_64")
	require.Len(t, manifests, 2)
	assert.Equal(t, []string{"race-client-00001"}, manifests[0].LinuxGPUClients)
	assert.Equal(t, []string{"race-server-00001"}, manifests[1].LinuxGPUServers)
}

func TestDistribute_EveryPersonaExactlyOnce(t *testing.T) {
	req := Requirements{Nodes: []NodeCount{
		nodes(linuxX86, RoleClient, 9),
		nodes(linuxX86, RoleServer, 7),
		nodes(linuxGPU, RoleClient, 3),
		nodes(androidArm, RoleClient, 5),
	}}
	topo := DefaultTopology(req)

	dist, err := Distribute(req, topo)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, b := range dist.Buckets {
		ib, err := ParseInstanceBucket(b.Bucket)
		require.NoError(t, err)
		class, ok := topo.Class(ib)
		require.True(t, ok)
		for _, m := range b.Manifests {
			clients := len(m.AndroidClients) + len(m.LinuxGPUClients) + len(m.LinuxClients)
			servers := len(m.LinuxGPUServers) + len(m.LinuxServers)
			assert.LessOrEqual(t, clients, class.ClientsPerHost)
			assert.LessOrEqual(t, servers, class.ServersPerHost)
			for _, p := range m.Personas() {
				seen[p]++
			}
		}
	}
	for _, p := range Personas(req).All() {
		assert.Equal(t, 1, seen[p], p)
	}
	assert.Len(t, seen, 24)

	again, err := Distribute(req, topo)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(dist, again))
}

func TestDistribute_ExplicitHostsArePadded(t *testing.T) {
	req := Requirements{Nodes: []NodeCount{nodes(androidArm, RoleClient, 1)}}
	topo := Topology{HostClasses: []HostClass{
		{InstanceBucket: androidArm, Hosts: 3, ClientsPerHost: 2},
		{InstanceBucket: linuxX86, Hosts: 1, ClientsPerHost: 2, ServersPerHost: 2},
	}}

	dist, err := Distribute(req, topo)
	require.NoError(t, err)

	assert.Equal(t, []string{"linux-x86_64", "android-arm64"}, dist.Roles())
	require.Len(t, dist.Manifests("android-arm64"), 3)
	assert.False(t, dist.Manifests("android-arm64")[0].Empty())
	assert.True(t, dist.Manifests("android-arm64")[2].Empty())
	require.Len(t, dist.Manifests("linux-x86_64"), 1)

	role, idx, ok := dist.HostOf("race-client-00001")
	assert.True(t, ok)
	assert.Equal(t, "android-arm64", role)
	assert.Equal(t, 0, idx)
	_, _, ok = dist.HostOf("race-client-00009")
	assert.False(t, ok)
}

func TestCheckCompatible(t *testing.T) {
	tests := []struct {
		name       string
		req        Requirements
		topo       Topology
		wantBucket string
		wantAvail  int
	}{
		{
			name: "fits",
			req:  Requirements{Nodes: []NodeCount{nodes(linuxX86, RoleClient, 4), nodes(linuxX86, RoleServer, 2)}},
			topo: Topology{HostClasses: []HostClass{{InstanceBucket: linuxX86, Hosts: 3, ClientsPerHost: 2, ServersPerHost: 2}}},
		},
		{
			name:       "too few hosts for clients",
			req:        Requirements{Nodes: []NodeCount{nodes(linuxX86, RoleClient, 5), nodes(linuxX86, RoleServer, 2)}},
			topo:       Topology{HostClasses: []HostClass{{InstanceBucket: linuxX86, Hosts: 3, ClientsPerHost: 2, ServersPerHost: 2}}},
			wantBucket: "linux-x86_64-client",
			wantAvail:  4,
		},
		{
			name:       "too few hosts for servers",
			req:        Requirements{Nodes: []NodeCount{nodes(linuxX86, RoleClient, 2), nodes(linuxX86, RoleServer, 5)}},
			topo:       Topology{HostClasses: []HostClass{{InstanceBucket: linuxX86, Hosts: 3, ClientsPerHost: 2, ServersPerHost: 2}}},
			wantBucket: "linux-x86_64-server",
			wantAvail:  4,
		},
		{
			name:       "colocated capacity",
			req:        Requirements{Colocate: true, Nodes: []NodeCount{nodes(linuxX86, RoleClient, 6), nodes(linuxX86, RoleServer, 1)}},
			topo:       Topology{HostClasses: []HostClass{{InstanceBucket: linuxX86, Hosts: 2, ClientsPerHost: 2, ServersPerHost: 1}}},
			wantBucket: "linux-x86_64-client",
			wantAvail:  4,
		},
		{
			name:       "missing host class",
			req:        Requirements{Nodes: []NodeCount{nodes(linuxGPU, RoleServer, 1)}},
			topo:       Topology{},
			wantBucket: "linux-gpu-x86_64-server",
		},
		{
			name:       "hosts carry no servers",
			req:        Requirements{Nodes: []NodeCount{nodes(linuxX86, RoleServer, 1)}},
			topo:       Topology{HostClasses: []HostClass{{InstanceBucket: linuxX86, ClientsPerHost: 2}}},
			wantBucket: "linux-x86_64-server",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCompatible("env-a", "topology.yaml", tt.req, tt.topo)
			if tt.wantBucket == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIncompatible))
			var ce *CapacityError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.wantBucket, ce.Bucket.String())
			assert.Equal(t, tt.wantAvail, ce.Available)
			assert.Contains(t, err.Error(), "env-a")
			assert.Contains(t, err.Error(), "topology.yaml")

			_, err = Distribute(tt.req, tt.topo)
			assert.True(t, errors.Is(err, ErrIncompatible))
		})
	}
}

func TestRequirementsValidate(t *testing.T) {
	tests := []struct {
		name string
		n    NodeCount
	}{
		{"negative", nodes(linuxX86, RoleClient, -1)},
		{"android server", nodes(androidArm, RoleServer, 1)},
		{"bad role", nodes(linuxX86, Role("peer"), 1)},
		{"bootstrap server", NodeCount{Bucket: Bucket{InstanceBucket: linuxX86, Role: RoleServer}, Count: 2, Bootstrap: 1}},
		{"bootstrap above count", NodeCount{Bucket: Bucket{InstanceBucket: linuxX86, Role: RoleClient}, Count: 1, Bootstrap: 2}},
		{"unsupported bucket", nodes(InstanceBucket{Platform: "windows", Arch: ArchX86_64}, RoleClient, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Requirements{Nodes: []NodeCount{tt.n}}
			assert.Error(t, req.Validate())
			_, err := Distribute(req, DefaultTopology(req))
			assert.Error(t, err)
		})
	}
}

func TestDistributionRoundTrip(t *testing.T) {
	req := Requirements{Colocate: true, Nodes: []NodeCount{
		nodes(linuxX86, RoleClient, 6),
		nodes(linuxX86, RoleServer, 2),
		nodes(linuxGPU, RoleServer, 1),
		nodes(androidArm, RoleClient, 3),
	}}
	topo := DefaultTopology(req)
	topo.HostClasses = append(topo.HostClasses, HostClass{InstanceBucket: InstanceBucket{Platform: PlatformLinux, Arch: ArchArm64}, Hosts: 1, ClientsPerHost: 1})
	dist, err := Distribute(req, topo)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "deployments", "d1", DistributionFileName)
	require.NoError(t, SaveDistribution(path, dist))

	loaded, err := LoadDistribution(path)
	require.NoError(t, err)
	if diff := cmp.Diff(dist, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestLoadTopology(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
hostClasses:
  - platform: linux
    arch: x86_64
    hosts: 2
    clientsPerHost: 3
    serversPerHost: 1
  - platform: android
    arch: arm64
    clientsPerHost: 2
`), 0644))

	topo, err := LoadTopology(path)
	require.NoError(t, err)
	require.Len(t, topo.HostClasses, 2)
	assert.Equal(t, HostClass{InstanceBucket: linuxX86, Hosts: 2, ClientsPerHost: 3, ServersPerHost: 1}, topo.HostClasses[0])
	assert.Equal(t, androidArm, topo.HostClasses[1].InstanceBucket)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("hostClasses:\n  - platform: solaris\n    arch: sparc\n"), 0644))
	_, err = LoadTopology(bad)
	assert.Error(t, err)

	_, err = LoadTopology(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestBootstrapAssignments(t *testing.T) {
	t.Run("no bootstrap", func(t *testing.T) {
		got, err := BootstrapAssignments([]string{"g1"}, nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("no genesis", func(t *testing.T) {
		_, err := BootstrapAssignments(nil, []string{"b1"})
		assert.ErrorIs(t, err, ErrNoGenesis)
	})

	t.Run("single genesis verifies itself", func(t *testing.T) {
		got, err := BootstrapAssignments([]string{"g1"}, []string{"b1", "b2", "b3"})
		require.NoError(t, err)
		for _, a := range got {
			assert.Equal(t, "g1", a.Introducer)
			assert.Equal(t, "g1", a.Verifier)
		}
	})

	t.Run("many genesis", func(t *testing.T) {
		for genesisCount := 2; genesisCount <= 5; genesisCount++ {
			for bootstrapCount := 1; bootstrapCount <= 11; bootstrapCount++ {
				genesis := make([]string, genesisCount)
				for i := range genesis {
					genesis[i] = PersonaName(RoleClient, i+1)
				}
				bootstrap := make([]string, bootstrapCount)
				for i := range bootstrap {
					bootstrap[i] = PersonaName(RoleClient, genesisCount+i+1)
				}

				got, err := BootstrapAssignments(genesis, bootstrap)
				require.NoError(t, err)
				require.Len(t, got, bootstrapCount)
				for i, a := range got {
					assert.Equal(t, bootstrap[i], a.Bootstrap)
					assert.Contains(t, genesis, a.Introducer)
					assert.Contains(t, genesis, a.Verifier)
					assert.NotEqual(t, a.Introducer, a.Verifier)
				}
			}
		}
	})
}
