package deployment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"racectl/internal/config"
	"racectl/internal/topology"
	"racectl/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	entityEnvironments = "environments"
	entityDeployments  = "deployments"
)

var (
	ErrEnvironmentNotFound = errors.New("environment not found")
	ErrDeploymentNotFound  = errors.New("deployment not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrIncompatible        = errors.New("record was created by an incompatible racectl version")
	ErrEnvironmentInUse    = errors.New("environment has deployments")
)

// Store persists environments and deployments.
type Store struct {
	storage     *config.Storage
	toolVersion string
	now         func() time.Time
}

// NewStore creates a store over storage for a tool running toolVersion.
func NewStore(storage *config.Storage, toolVersion string) *Store {
	return &Store{storage: storage, toolVersion: toolVersion, now: time.Now}
}

// ToolVersion is the version stamped on new records.
func (s *Store) ToolVersion() string {
	return s.toolVersion
}

// SaveEnvironment registers or replaces an environment.
func (s *Store) SaveEnvironment(env *Environment) error {
	if err := config.ValidateEntityName(env.Name, "environment"); err != nil {
		return config.FormatValidationError("environment", env.Name, err)
	}
	if err := config.ValidateOneOf("provider", string(env.Provider), Providers); err != nil {
		return config.FormatValidationError("environment", env.Name, err)
	}
	if env.RacectlVersion == "" {
		env.RacectlVersion = s.toolVersion
	}
	if env.CreatedTime.IsZero() {
		env.CreatedTime = s.now().UTC()
	}
	return s.save(entityEnvironments, env.Name, env)
}

// LoadEnvironment loads an environment by name.
func (s *Store) LoadEnvironment(name string) (*Environment, error) {
	var env Environment
	if err := s.load(entityEnvironments, name, &env); err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return nil, fmt.Errorf("environment %q: %w", name, ErrEnvironmentNotFound)
		}
		return nil, err
	}
	return &env, nil
}

// ListEnvironments lists environments annotated with version compatibility.
func (s *Store) ListEnvironments() ([]Listing, error) {
	names, err := s.storage.List(entityEnvironments)
	if err != nil {
		return nil, err
	}
	listings := make([]Listing, 0, len(names))
	for _, name := range names {
		env, err := s.LoadEnvironment(name)
		if err != nil {
			logging.Warn("Store", "Skipping unreadable environment %s: %v", name, err)
			continue
		}
		listings = append(listings, Listing{
			Name:           env.Name,
			RacectlVersion: env.RacectlVersion,
			Compatible:     Compatible(s.toolVersion, env.RacectlVersion),
		})
	}
	return listings, nil
}

// RemoveEnvironment deletes an environment record. Environments still
// referenced by a deployment are kept.
func (s *Store) RemoveEnvironment(name string) error {
	deployments, err := s.ListDeployments()
	if err != nil {
		return err
	}
	for _, d := range deployments {
		if d.Environment == name {
			return fmt.Errorf("environment %q is used by deployment %q: %w", name, d.Name, ErrEnvironmentInUse)
		}
	}
	if err := s.storage.Delete(entityEnvironments, name); err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return fmt.Errorf("environment %q: %w", name, ErrEnvironmentNotFound)
		}
		return err
	}
	return nil
}

// Create validates settings, computes and stores the node distribution, and
// saves a new deployment record.
func (s *Store) Create(settings Settings) (*Deployment, error) {
	if err := config.ValidateEntityName(settings.Name, "deployment"); err != nil {
		return nil, config.FormatValidationError("deployment", settings.Name, err)
	}
	if s.storage.Exists(entityDeployments, settings.Name) {
		return nil, fmt.Errorf("deployment %q: %w", settings.Name, ErrAlreadyExists)
	}

	env, err := s.LoadEnvironment(settings.Environment)
	if err != nil {
		return nil, err
	}
	if !Compatible(s.toolVersion, env.RacectlVersion) {
		return nil, fmt.Errorf("environment %q (version %s): %w", env.Name, env.RacectlVersion, ErrIncompatible)
	}

	if env.Provider == ProviderLocal {
		// Every persona of a local environment shares the one docker host.
		settings.Requirements.Colocate = true
	}
	if err := settings.Requirements.Validate(); err != nil {
		return nil, config.FormatValidationError("deployment", settings.Name, err)
	}

	topo, err := s.topologyFor(env, settings)
	if err != nil {
		return nil, err
	}
	dist, err := topology.Distribute(settings.Requirements, topo)
	if err != nil {
		return nil, fmt.Errorf("deployment %q: %w", settings.Name, err)
	}

	settings.RacectlVersion = s.toolVersion
	settings.CreatedTime = s.now().UTC()
	d := &Deployment{Settings: settings}

	if err := topology.SaveDistribution(s.DistributionPath(settings.Name), dist); err != nil {
		return nil, err
	}
	if err := s.save(entityDeployments, settings.Name, d); err != nil {
		return nil, err
	}

	logging.Info("Store", "Created deployment %s on environment %s with %d personas",
		settings.Name, env.Name, len(topology.Personas(settings.Requirements).All()))
	return d, nil
}

func (s *Store) topologyFor(env *Environment, settings Settings) (topology.Topology, error) {
	if settings.TopologyFile != "" {
		topo, err := topology.LoadTopology(settings.TopologyFile)
		if err != nil {
			return topology.Topology{}, err
		}
		if err := topology.CheckCompatible(env.Name, settings.TopologyFile, settings.Requirements, topo); err != nil {
			return topology.Topology{}, err
		}
		return topo, nil
	}
	if len(env.Topology.HostClasses) > 0 {
		if err := topology.CheckCompatible(env.Name, "", settings.Requirements, env.Topology); err != nil {
			return topology.Topology{}, err
		}
		return env.Topology, nil
	}
	return topology.DefaultTopology(settings.Requirements), nil
}

// LoadDeployment loads a deployment by name.
func (s *Store) LoadDeployment(name string) (*Deployment, error) {
	var d Deployment
	if err := s.load(entityDeployments, name, &d); err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return nil, fmt.Errorf("deployment %q: %w", name, ErrDeploymentNotFound)
		}
		return nil, err
	}
	return &d, nil
}

// LoadCompatibleDeployment loads a deployment and refuses records created by
// an incompatible tool version.
func (s *Store) LoadCompatibleDeployment(name string) (*Deployment, error) {
	d, err := s.LoadDeployment(name)
	if err != nil {
		return nil, err
	}
	if !Compatible(s.toolVersion, d.Settings.RacectlVersion) {
		return nil, fmt.Errorf("deployment %q (version %s, running %s): %w",
			name, d.Settings.RacectlVersion, s.toolVersion, ErrIncompatible)
	}
	return d, nil
}

// ListDeployments lists deployments annotated with version compatibility.
func (s *Store) ListDeployments() ([]Listing, error) {
	names, err := s.storage.List(entityDeployments)
	if err != nil {
		return nil, err
	}
	listings := make([]Listing, 0, len(names))
	for _, name := range names {
		d, err := s.LoadDeployment(name)
		if err != nil {
			logging.Warn("Store", "Skipping unreadable deployment %s: %v", name, err)
			continue
		}
		listings = append(listings, Listing{
			Name:           d.Settings.Name,
			Environment:    d.Settings.Environment,
			RacectlVersion: d.Settings.RacectlVersion,
			Compatible:     Compatible(s.toolVersion, d.Settings.RacectlVersion),
		})
	}
	return listings, nil
}

// UpdateMetadata applies fn to the stored metadata of a deployment and saves
// the result.
func (s *Store) UpdateMetadata(name string, fn func(*Metadata)) (*Deployment, error) {
	d, err := s.LoadDeployment(name)
	if err != nil {
		return nil, err
	}
	fn(&d.Metadata)
	if err := s.save(entityDeployments, name, d); err != nil {
		return nil, err
	}
	return d, nil
}

// RemoveDeployment deletes a deployment record and its directory. A
// deployment with an active operation is kept.
func (s *Store) RemoveDeployment(name string) error {
	if holder, ok := s.ActiveOperation(name); ok {
		return fmt.Errorf("deployment %q: %w", name, &LockedError{Deployment: name, Holder: holder})
	}
	if err := s.storage.Delete(entityDeployments, name); err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return fmt.Errorf("deployment %q: %w", name, ErrDeploymentNotFound)
		}
		return err
	}
	if err := os.RemoveAll(s.storage.EntityDir(entityDeployments, name)); err != nil {
		return fmt.Errorf("failed to remove files of deployment %q: %w", name, err)
	}
	logging.Info("Store", "Removed deployment %s", name)
	return nil
}

// DeploymentDir is the directory holding the files that accompany a
// deployment record.
func (s *Store) DeploymentDir(name string) string {
	return s.storage.EntityDir(entityDeployments, name)
}

// DistributionPath is where the node distribution of a deployment is kept.
func (s *Store) DistributionPath(name string) string {
	return filepath.Join(s.DeploymentDir(name), topology.DistributionFileName)
}

// LoadDistribution reads the node distribution of a deployment.
func (s *Store) LoadDistribution(name string) (*topology.Distribution, error) {
	return topology.LoadDistribution(s.DistributionPath(name))
}

func (s *Store) save(entityType, name string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", entityType, name, err)
	}
	return s.storage.Save(entityType, name, data)
}

func (s *Store) load(entityType, name string, v interface{}) error {
	data, err := s.storage.Load(entityType, name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s/%s: %w", entityType, name, err)
	}
	return nil
}
