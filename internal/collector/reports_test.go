package collector

import (
	"errors"
	"testing"

	"racectl/internal/deployment"
	"racectl/internal/observer"
	"racectl/internal/status"
	"racectl/internal/topology"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	c1 = "race-client-00001"
	c2 = "race-client-00002"
	c3 = "race-client-00003"
	c4 = "race-client-00004"
	s1 = "race-server-00001"
)

func testDistribution() *topology.Distribution {
	return &topology.Distribution{Buckets: []topology.BucketManifests{
		{Bucket: "linux-x86_64", Manifests: []topology.Manifest{
			{LinuxClients: []string{c1, c2}, LinuxServers: []string{s1}},
			{LinuxClients: []string{c3}},
			{},
		}},
		{Bucket: "android-x86_64", Manifests: []topology.Manifest{
			{AndroidClients: []string{c4}},
		}},
	}}
}

func running(dep string) observer.ContainerInfo {
	return observer.ContainerInfo{State: "running", Status: "Up 5 minutes", DeploymentName: dep}
}

func exited(dep string) observer.ContainerInfo {
	return observer.ContainerInfo{State: "exited", Status: "Exited (137) 1 minute ago", DeploymentName: dep}
}

func testRuntimeInfo() observer.RuntimeInfo {
	return observer.RuntimeInfo{
		"linux-x86_64": {
			{PublicDNS: "a.example", Containers: map[string]observer.ContainerInfo{
				c1: running("alpha"), c2: running("alpha"), s1: running("alpha"), "fileserver": running("alpha"),
			}},
			{PublicDNS: "b.example", Containers: map[string]observer.ContainerInfo{c3: exited("alpha")}},
		},
		"android-x86_64": nil,
	}
}

func allRunning(personas ...string) map[string]observer.PersonaStatus {
	out := map[string]observer.PersonaStatus{}
	for _, p := range personas {
		out[p] = observer.PersonaStatus{
			Daemon:    status.DaemonRunning,
			App:       status.AppInstalled,
			Race:      status.RaceRunning,
			Artifacts: status.ArtifactsDownloaded,
			Configs:   status.ConfigsExtracted,
			Etc:       status.EtcReady,
		}
	}
	return out
}

func TestBuildContainerReport(t *testing.T) {
	r := BuildContainerReport("alpha", testDistribution(), []string{"fileserver", "registry"}, testRuntimeInfo())

	assert.Equal(t, status.ComponentReady, r.Find("linux-x86_64", "host-0").Status)
	assert.Equal(t, "a.example", r.Find("linux-x86_64", "host-0").Reason)
	assert.Equal(t, status.ComponentReady, r.Find("linux-x86_64", "host-0", s1).Status)
	assert.Equal(t, status.ComponentNotReady, r.Find("linux-x86_64", "host-1", c3).Status)
	assert.Equal(t, "Exited (137) 1 minute ago", r.Find("linux-x86_64", "host-1", c3).Reason)
	assert.Nil(t, r.Find("linux-x86_64", "host-2"), "hosts with empty manifests are not reported")

	android := r.Find("android-x86_64")
	require.NotNil(t, android)
	assert.Equal(t, status.ComponentNotPresent, android.Status)
	assert.Equal(t, status.ReasonNotObserved, android.Find("host-0").Reason)

	services := r.Find(ServicesRole)
	assert.Equal(t, status.ComponentReady, services.Find("fileserver").Status)
	assert.Equal(t, status.ComponentNotPresent, services.Find("registry").Status)
	assert.Equal(t, status.ComponentNotReady, services.Status)

	assert.Equal(t, status.ComponentNotReady, r.Status)
	assert.Equal(t, []string{"android-x86_64", "host-0"}, r.Offending(status.ComponentReady))
}

func TestBuildContainerReport_MissingRoleIsFullyDown(t *testing.T) {
	dist := &topology.Distribution{Buckets: []topology.BucketManifests{
		{Bucket: "linux-x86_64", Manifests: []topology.Manifest{
			{LinuxClients: []string{c1}},
			{LinuxClients: []string{c2}},
			{LinuxClients: []string{c3}},
		}},
	}}

	containers := BuildContainerReport("alpha", dist, nil, observer.RuntimeInfo{})
	role := containers.Find("linux-x86_64")
	require.NotNil(t, role)
	assert.Len(t, role.Children, 3)
	for _, name := range role.Names() {
		assert.Equal(t, status.ComponentNotPresent, role.Children[name].Status)
		assert.Equal(t, status.ReasonNotObserved, role.Children[name].Reason)
	}
	assert.Equal(t, status.ComponentNotPresent, role.Status)
	assert.Equal(t, status.ComponentNotPresent, containers.Status)

	nodes := BuildNodeReport("alpha", dist, observer.RuntimeInfo{}, nil)
	assert.Len(t, nodes.Find("linux-x86_64").Children, 3)
	assert.Equal(t, status.ParentAllDown, nodes.Find("linux-x86_64").Status)
	assert.Equal(t, status.ParentAllDown, nodes.Status)
}

func TestBuildContainerReport_NameTakenByOtherDeployment(t *testing.T) {
	info := observer.RuntimeInfo{
		"linux-x86_64": {{PublicDNS: "a.example", Containers: map[string]observer.ContainerInfo{
			c1:           running("beta"),
			c2:           {State: "exited", Status: "Exited (0)"},
			"fileserver": running("beta"),
		}}},
	}
	dist := &topology.Distribution{Buckets: []topology.BucketManifests{
		{Bucket: "linux-x86_64", Manifests: []topology.Manifest{{LinuxClients: []string{c1, c2, c3}}}},
	}}

	r := BuildContainerReport("alpha", dist, []string{"fileserver"}, info)
	assert.Equal(t, status.ComponentError, r.Status)

	clash := r.Find("linux-x86_64", "host-0", c1)
	require.NotNil(t, clash)
	assert.Equal(t, status.ComponentError, clash.Status)
	assert.Equal(t, "name taken by deployment beta", clash.Reason)

	unmanaged := r.Find("linux-x86_64", "host-0", c2)
	assert.Equal(t, status.ComponentError, unmanaged.Status)
	assert.Contains(t, unmanaged.Reason, "not managed by racectl")

	assert.Equal(t, status.ComponentNotPresent, r.Find("linux-x86_64", "host-0", c3).Status)
	assert.Equal(t, "name taken by deployment beta", r.Find(ServicesRole, "fileserver").Reason)

	nodes := BuildNodeReport("alpha", dist, info, allRunning(c1))
	assert.Equal(t, status.DaemonNotReporting, nodes.Find("linux-x86_64", "host-0", c1).Status)
}

func TestBuildNodeReport(t *testing.T) {
	personas := allRunning(c1, c2, c3, c4)
	personas[s1] = observer.PersonaStatus{Daemon: status.DaemonNotRunning}

	r := BuildNodeReport("alpha", testDistribution(), testRuntimeInfo(), personas)

	host0 := r.Find("linux-x86_64", "host-0")
	assert.Equal(t, status.DaemonRunning, host0.Find(c1).Status)
	assert.Equal(t, status.DaemonNotRunning, host0.Find(s1).Status)
	assert.Equal(t, status.ParentSomeRunning, host0.Status)

	c3Leaf := r.Find("linux-x86_64", "host-1", c3)
	assert.Equal(t, status.DaemonNotReporting, c3Leaf.Status, "container exited")
	assert.Equal(t, "container not running", c3Leaf.Reason)

	assert.Equal(t, status.ParentAllDown, r.Find("android-x86_64", "host-0").Status)
	assert.Equal(t, status.ParentSomeRunning, r.Status)
}

func TestBuildFacetReport(t *testing.T) {
	personas := allRunning(c1, c2, s1)
	ps := personas[c2]
	ps.Configs = status.ConfigsDownloaded
	personas[c2] = ps

	r := BuildFacetReport(FacetConfigs, "alpha", testDistribution(), testRuntimeInfo(), personas)
	assert.Equal(t, status.ConfigsExtracted, r.Find("linux-x86_64", "host-0", c1).Status)
	assert.Equal(t, status.ConfigsDownloaded, r.Find("linux-x86_64", "host-0", c2).Status)
	assert.Equal(t, status.ConfigsNotReporting, r.Find("linux-x86_64", "host-1", c3).Status)
	assert.Equal(t, status.ParentSomeRunning, r.Find("linux-x86_64", "host-0").Status)
}

func TestBuildReports_UnreachableHost(t *testing.T) {
	info := testRuntimeInfo()
	info["linux-x86_64"][1] = observer.InstanceRuntimeInfo{PublicDNS: "b.example", Unreachable: "connection refused"}

	containers := BuildContainerReport("alpha", testDistribution(), nil, info)
	leaf := containers.Find("linux-x86_64", "host-1")
	assert.True(t, leaf.IsLeaf())
	assert.Equal(t, status.ComponentError, leaf.Status)
	assert.Equal(t, "connection refused", leaf.Reason)
	assert.Equal(t, status.ComponentError, containers.Status)

	nodes := BuildNodeReport("alpha", testDistribution(), info, allRunning(c1, c2, c3, s1))
	assert.Equal(t, status.ParentUnknown, nodes.Find("linux-x86_64", "host-1").Status)
}

func TestBuildServiceReport(t *testing.T) {
	assert.Nil(t, BuildServiceReport("alpha", nil, testRuntimeInfo()))

	info := testRuntimeInfo()
	info["linux-x86_64"][1].Containers["registry"] = observer.ContainerInfo{
		State: "running", Status: "Up 1 minute (health: starting)", DeploymentName: "alpha",
	}
	r := BuildServiceReport("alpha", []string{"fileserver", "registry", "dns"}, info)
	assert.Equal(t, status.ServiceRunning, r.Find("fileserver").Status)
	assert.Equal(t, status.ServiceStarting, r.Find("registry").Status)
	assert.Equal(t, status.ServiceNotRunning, r.Find("dns").Status)
	assert.Equal(t, status.ParentSomeRunning, r.Status)
}

func TestBuildEnvironmentReport(t *testing.T) {
	aws := &deployment.Environment{Name: "prod", Provider: deployment.ProviderAWS}
	local := &deployment.Environment{Name: "laptop", Provider: deployment.ProviderLocal}

	tests := []struct {
		name      string
		env       *deployment.Environment
		res       *observer.Resources
		wantValue status.Value
		wantState status.EnvironmentState
		wantPaths [][]string
	}{
		{
			name:      "unprovisioned aws environment",
			env:       aws,
			res:       &observer.Resources{},
			wantValue: status.ComponentNotPresent,
			wantState: status.EnvironmentUnprovisioned,
			wantPaths: [][]string{{GroupStacks, "prod"}},
		},
		{
			name: "provisioned aws environment",
			env:  aws,
			res: &observer.Resources{
				Stacks:    map[string]string{"prod": "CREATE_COMPLETE"},
				Instances: map[string]string{"i-1": "running", "i-2": "running"},
				Volumes:   map[string]string{"vol-1": "in-use"},
				Daemons:   map[string]error{"a.example": nil},
			},
			wantValue: status.ComponentReady,
			wantState: status.EnvironmentProvisioned,
			wantPaths: [][]string{{GroupInstances, "i-2"}, {GroupDocker, "a.example"}},
		},
		{
			name: "stack being created",
			env:  aws,
			res: &observer.Resources{
				Stacks:    map[string]string{"prod": "CREATE_IN_PROGRESS"},
				Instances: map[string]string{"i-1": "pending"},
			},
			wantValue: status.ComponentNotReady,
			wantState: status.EnvironmentPartiallyProvisioned,
		},
		{
			name: "failed stack",
			env:  aws,
			res: &observer.Resources{
				Stacks:    map[string]string{"prod": "CREATE_FAILED"},
				Instances: map[string]string{"i-1": "running"},
			},
			wantValue: status.ComponentError,
			wantState: status.EnvironmentError,
		},
		{
			name:      "local daemon up",
			env:       local,
			res:       &observer.Resources{Daemons: map[string]error{observer.LocalHostName: nil}},
			wantValue: status.ComponentReady,
			wantState: status.EnvironmentProvisioned,
		},
		{
			name:      "local daemon down",
			env:       local,
			res:       &observer.Resources{Daemons: map[string]error{observer.LocalHostName: errors.New("refused")}},
			wantValue: status.ComponentNotReady,
			wantState: status.EnvironmentPartiallyProvisioned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BuildEnvironmentReport(tt.env, tt.res)
			assert.Equal(t, tt.wantValue, r.Status)
			assert.Equal(t, tt.wantState, status.DeriveEnvironmentState(r))
			for _, path := range tt.wantPaths {
				assert.NotNil(t, r.Find(path...), path)
			}
		})
	}

	r := BuildEnvironmentReport(local, &observer.Resources{Daemons: map[string]error{observer.LocalHostName: errors.New("refused")}})
	assert.Nil(t, r.Find(GroupStacks), "local environments have no stack")
	assert.Equal(t, "refused", r.Find(GroupDocker, observer.LocalHostName).Reason)
}

func TestParseFacet(t *testing.T) {
	for _, f := range append([]Facet{FacetDaemon}, Facets...) {
		got, err := ParseFacet(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFacet("kernel")
	assert.Error(t, err)
}
