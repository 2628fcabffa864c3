package config

import "time"

// Config is the top-level configuration structure for racectl.
type Config struct {
	// DataDir holds environment and deployment records. Empty means the
	// configuration directory.
	DataDir string `yaml:"dataDir,omitempty"`

	// PollInterval is the fixed sleep between convergence polls.
	PollInterval time.Duration `yaml:"pollInterval,omitempty"`

	// MaxParallel bounds concurrent status fetches.
	MaxParallel int `yaml:"maxParallel,omitempty"`

	Timeouts TimeoutConfig `yaml:"timeouts,omitempty"`
	Runner   RunnerConfig  `yaml:"runner,omitempty"`
	Docker   DockerConfig  `yaml:"docker,omitempty"`
	AWS      AWSConfig     `yaml:"aws,omitempty"`

	// Registry is the container registry personas are pulled from.
	Registry string `yaml:"registry,omitempty"`

	// Services lists the auxiliary service containers every new deployment
	// manages besides its personas.
	Services []string `yaml:"services,omitempty"`
}

// TimeoutConfig holds the default timeouts of lifecycle operations.
type TimeoutConfig struct {
	Up      time.Duration `yaml:"up,omitempty"`
	Down    time.Duration `yaml:"down,omitempty"`
	Configs time.Duration `yaml:"configs,omitempty"`
	Action  time.Duration `yaml:"action,omitempty"`
}

// Runner action names.
const (
	ActionUp             = "up"
	ActionDown           = "down"
	ActionPushConfigs    = "push-configs"
	ActionPublishConfigs = "publish-configs"
)

// RunnerConfig defines how remote actions are executed.
type RunnerConfig struct {
	Shell       string            `yaml:"shell,omitempty"`
	PlaybookDir string            `yaml:"playbookDir,omitempty"`
	Commands    map[string]string `yaml:"commands,omitempty"`
}

// DockerConfig defines how docker daemons are reached.
type DockerConfig struct {
	// Host overrides DOCKER_HOST for local environments.
	Host string `yaml:"host,omitempty"`
	// Port is the daemon TCP port on remote hosts.
	Port int `yaml:"port,omitempty"`
}

// AWSConfig selects the shared aws configuration profile and default region
// of AWS environments.
type AWSConfig struct {
	Profile string `yaml:"profile,omitempty"`
	Region  string `yaml:"region,omitempty"`
}
