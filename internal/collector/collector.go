package collector

import (
	"context"
	"fmt"
	"time"

	"racectl/internal/deployment"
	"racectl/internal/observer"
	"racectl/internal/status"
	"racectl/internal/topology"
	"racectl/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// ObserverFactory returns the observer for an environment's provider.
type ObserverFactory func(ctx context.Context, env *deployment.Environment) (observer.EnvironmentObserver, error)

// Config holds the collaborators of a Collector.
type Config struct {
	Observers   ObserverFactory
	Nodes       observer.NodeObserver
	MaxParallel int
	Now         func() time.Time
}

// Collector fetches observations and builds status snapshots.
type Collector struct {
	observers   ObserverFactory
	nodes       observer.NodeObserver
	maxParallel int
	now         func() time.Time
}

// New creates a collector from cfg.
func New(cfg Config) *Collector {
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Collector{
		observers:   cfg.Observers,
		nodes:       cfg.Nodes,
		maxParallel: cfg.MaxParallel,
		now:         cfg.Now,
	}
}

// Target is everything needed to know what a deployment should look like.
type Target struct {
	Environment  *deployment.Environment
	Deployment   *deployment.Deployment
	Distribution *topology.Distribution
}

// Snapshot is one collection round. Services is nil when the deployment
// manages no auxiliary services.
type Snapshot struct {
	Deployment       string
	Environment      *status.Report
	EnvironmentState status.EnvironmentState
	Containers       *status.Report
	Nodes            *status.Report
	Services         *status.Report
	Facets           map[Facet]*status.Report
	State            status.DeploymentState
	CollectedAt      time.Time
}

// EnvironmentReport fetches and classifies the resources of env.
func (c *Collector) EnvironmentReport(ctx context.Context, env *deployment.Environment) (*status.Report, error) {
	obs, err := c.observers(ctx, env)
	if err != nil {
		return nil, err
	}
	res, err := obs.Resources(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("environment %s: %w", env.Name, err)
	}
	return BuildEnvironmentReport(env, res), nil
}

// Collect runs one concurrent fetch for target and assembles every report.
func (c *Collector) Collect(ctx context.Context, target Target) (*Snapshot, error) {
	env := target.Environment
	dep := target.Deployment
	obs, err := c.observers(ctx, env)
	if err != nil {
		return nil, err
	}

	personas := personasOf(target.Distribution)

	var (
		resources *observer.Resources
		info      observer.RuntimeInfo
		statuses  map[string]observer.PersonaStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxParallel)
	g.Go(func() error {
		var err error
		resources, err = obs.Resources(gctx, env)
		if err != nil {
			return fmt.Errorf("environment %s: %w", env.Name, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		info, err = obs.RuntimeInfo(gctx, env, target.Distribution.Roles())
		if err != nil {
			return fmt.Errorf("runtime info of %s: %w", env.Name, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		statuses, err = c.nodes.PersonaStatuses(gctx, dep.Name(), personas)
		if err != nil {
			return fmt.Errorf("persona status of %s: %w", dep.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	info.SortByPublicDNS()

	snap := Build(target, resources, info, statuses)
	snap.CollectedAt = c.now()
	logging.Debug("Collector", "Deployment %s: containers=%s nodes=%s state=%s",
		dep.Name(), snap.Containers.Status, snap.Nodes.Status, snap.State)
	return snap, nil
}

// Build assembles a snapshot from fetched observations. It performs no I/O.
func Build(target Target, res *observer.Resources, info observer.RuntimeInfo, personas map[string]observer.PersonaStatus) *Snapshot {
	name := target.Deployment.Name()
	services := target.Deployment.Settings.Services
	dist := target.Distribution

	snap := &Snapshot{
		Deployment:  name,
		Environment: BuildEnvironmentReport(target.Environment, res),
		Containers:  BuildContainerReport(name, dist, services, info),
		Nodes:       BuildNodeReport(name, dist, info, personas),
		Services:    BuildServiceReport(name, services, info),
		Facets:      make(map[Facet]*status.Report, len(Facets)),
	}
	for _, f := range Facets {
		snap.Facets[f] = BuildFacetReport(f, name, dist, info, personas)
	}
	snap.EnvironmentState = status.DeriveEnvironmentState(snap.Environment)
	snap.State = status.DeriveDeploymentState(snap.Containers, snap.Nodes)
	return snap
}

func personasOf(dist *topology.Distribution) []string {
	var out []string
	for _, b := range dist.Buckets {
		for _, m := range b.Manifests {
			out = append(out, m.Personas()...)
		}
	}
	return out
}
