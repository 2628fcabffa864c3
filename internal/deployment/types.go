package deployment

import (
	"time"

	"racectl/internal/topology"
)

// Provider is the kind of infrastructure backing an environment.
type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderAWS   Provider = "aws"
)

// Providers lists the supported providers.
var Providers = []string{string(ProviderLocal), string(ProviderAWS)}

// Environment is a registered host environment.
type Environment struct {
	Name           string            `yaml:"name" json:"name"`
	Provider       Provider          `yaml:"provider" json:"provider"`
	RacectlVersion string            `yaml:"racectlVersion" json:"racectlVersion"`
	Region         string            `yaml:"region,omitempty" json:"region,omitempty"`
	Topology       topology.Topology `yaml:"topology" json:"topology"`
	CreatedTime    time.Time         `yaml:"createdTime" json:"createdTime"`
}

// Settings is the configuration of a deployment. It does not change after
// creation.
type Settings struct {
	Name           string                `yaml:"name" json:"name"`
	Environment    string                `yaml:"environment" json:"environment"`
	RacectlVersion string                `yaml:"racectlVersion" json:"racectlVersion"`
	Requirements   topology.Requirements `yaml:"requirements" json:"requirements"`
	TopologyFile   string                `yaml:"topologyFile,omitempty" json:"topologyFile,omitempty"`
	// Services are the auxiliary service containers managed with the
	// personas.
	Services []string `yaml:"services,omitempty" json:"services,omitempty"`
	// ArtifactsDir and ConfigsDir are handed to remote actions unparsed.
	ArtifactsDir string    `yaml:"artifactsDir,omitempty" json:"artifactsDir,omitempty"`
	ConfigsDir   string    `yaml:"configsDir,omitempty" json:"configsDir,omitempty"`
	Registry     string    `yaml:"registry,omitempty" json:"registry,omitempty"`
	CreatedTime  time.Time `yaml:"createdTime" json:"createdTime"`
}

// Metadata records the last lifecycle operations of a deployment.
type Metadata struct {
	LastUpTime      *time.Time `yaml:"lastUpTime,omitempty" json:"lastUpTime,omitempty"`
	LastUpCommand   string     `yaml:"lastUpCommand,omitempty" json:"lastUpCommand,omitempty"`
	LastDownTime    *time.Time `yaml:"lastDownTime,omitempty" json:"lastDownTime,omitempty"`
	LastDownCommand string     `yaml:"lastDownCommand,omitempty" json:"lastDownCommand,omitempty"`
	LastOperationID string     `yaml:"lastOperationId,omitempty" json:"lastOperationId,omitempty"`
}

// Deployment is a stored deployment record.
type Deployment struct {
	Settings Settings `yaml:"settings" json:"settings"`
	Metadata Metadata `yaml:"metadata" json:"metadata"`
}

// Name is shorthand for Settings.Name.
func (d *Deployment) Name() string {
	return d.Settings.Name
}

// Listing is one row of a record listing.
type Listing struct {
	Name           string `yaml:"name" json:"name"`
	Environment    string `yaml:"environment,omitempty" json:"environment,omitempty"`
	RacectlVersion string `yaml:"racectlVersion" json:"racectlVersion"`
	Compatible     bool   `yaml:"compatible" json:"compatible"`
}
