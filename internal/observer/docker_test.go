package observer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"racectl/internal/deployment"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocker serves canned containers per host.
type fakeDocker struct {
	mu         sync.Mutex
	containers map[string][]types.Container
	down       map[string]bool
	dialed     []string
	options    []types.ContainerListOptions
	closed     int
}

type fakeClient struct {
	f    *fakeDocker
	host string
}

func (f *fakeDocker) dial(host string) (DockerClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialed = append(f.dialed, host)
	if host == "bad://" {
		return nil, errors.New("unsupported protocol")
	}
	return &fakeClient{f: f, host: host}, nil
}

func (c *fakeClient) ContainerList(ctx context.Context, options types.ContainerListOptions) ([]types.Container, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.options = append(c.f.options, options)
	if c.f.down[c.host] {
		return nil, errors.New("connection refused")
	}
	return c.f.containers[c.host], nil
}

func (c *fakeClient) Ping(ctx context.Context) (types.Ping, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	if c.f.down[c.host] {
		return types.Ping{}, errors.New("connection refused")
	}
	return types.Ping{APIVersion: "1.44"}, nil
}

func (c *fakeClient) Close() error {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.closed++
	return nil
}

func container(name, state, status, dep string) types.Container {
	return types.Container{
		Names:  []string{"/" + name},
		State:  state,
		Status: status,
		Labels: map[string]string{DeploymentLabel: dep},
	}
}

func TestDockerObserver_Containers(t *testing.T) {
	fake := &fakeDocker{containers: map[string][]types.Container{
		"": {
			container("race-client-00001", "running", "Up 2 minutes", "alpha"),
			container("race-server-00001", "exited", "Exited (1) 3 seconds ago", "alpha"),
			{Names: nil, State: "running"},
		},
	}}
	obs := NewDockerObserver(fake.dial)

	got, err := obs.Containers(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]ContainerInfo{
		"race-client-00001": {State: "running", Status: "Up 2 minutes", DeploymentName: "alpha"},
		"race-server-00001": {State: "exited", Status: "Exited (1) 3 seconds ago", DeploymentName: "alpha"},
	}, got)

	require.Len(t, fake.options, 1)
	assert.True(t, fake.options[0].All, "stopped containers are listed too")
	assert.Equal(t, []string{DeploymentLabel}, fake.options[0].Filters.Get("label"))
	assert.Equal(t, 1, fake.closed)
}

func TestDockerObserver_Errors(t *testing.T) {
	fake := &fakeDocker{down: map[string]bool{"tcp://h:2375": true}}
	obs := NewDockerObserver(fake.dial)
	ctx := context.Background()

	_, err := obs.Containers(ctx, "tcp://h:2375")
	assert.ErrorContains(t, err, "tcp://h:2375")
	assert.ErrorContains(t, obs.Ping(ctx, "tcp://h:2375"), "unreachable")
	assert.NoError(t, obs.Ping(ctx, "tcp://other:2375"))

	_, err = obs.Containers(ctx, "bad://")
	assert.Error(t, err)
	assert.Equal(t, 3, fake.closed, "every dialed client is closed")
}

func TestNewDockerDialer(t *testing.T) {
	cli, err := NewDockerDialer()("tcp://127.0.0.1:2375")
	require.NoError(t, err)
	assert.NoError(t, cli.Close())
}

func TestLocalObserver(t *testing.T) {
	fake := &fakeDocker{containers: map[string][]types.Container{
		"unix:///run/docker.sock": {container("race-client-00001", "running", "Up", "alpha")},
	}}
	obs := NewLocalObserver(NewDockerObserver(fake.dial), "unix:///run/docker.sock")
	env := &deployment.Environment{Name: "laptop", Provider: deployment.ProviderLocal}
	ctx := context.Background()

	res, err := obs.Resources(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, map[string]error{LocalHostName: nil}, res.Daemons)
	assert.Empty(t, res.Stacks)

	info, err := obs.RuntimeInfo(ctx, env, []string{"linux-x86_64", "android-x86_64"})
	require.NoError(t, err)
	require.Len(t, info, 2)
	for role, hosts := range info {
		require.Len(t, hosts, 1, role)
		assert.Equal(t, LocalHostName, hosts[0].PublicDNS)
		assert.Equal(t, role, hosts[0].Tags[TagRole])
		assert.Contains(t, hosts[0].Containers, "race-client-00001")
	}

	fake.down = map[string]bool{"unix:///run/docker.sock": true}
	res, err = obs.Resources(ctx, env)
	require.NoError(t, err)
	assert.Error(t, res.Daemons[LocalHostName])
	_, err = obs.RuntimeInfo(ctx, env, []string{"linux-x86_64"})
	assert.Error(t, err)
}

func TestRuntimeInfoSortByPublicDNS(t *testing.T) {
	info := RuntimeInfo{
		"linux-x86_64":  {{PublicDNS: "c.example"}, {PublicDNS: "a.example"}, {PublicDNS: "b.example"}},
		"android-arm64": {{PublicDNS: "z"}, {PublicDNS: "y"}},
	}
	info.SortByPublicDNS()
	assert.Equal(t, "a.example", info["linux-x86_64"][0].PublicDNS)
	assert.Equal(t, "c.example", info["linux-x86_64"][2].PublicDNS)
	assert.Equal(t, "y", info["android-arm64"][0].PublicDNS)
}
