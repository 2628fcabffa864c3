package config

import "time"

const (
	DefaultPollInterval   = 5 * time.Second
	DefaultMaxParallel    = 16
	DefaultUpTimeout      = 10 * time.Minute
	DefaultDownTimeout    = 10 * time.Minute
	DefaultConfigsTimeout = 5 * time.Minute
	DefaultActionTimeout  = 30 * time.Minute
	DefaultDockerPort     = 2375
)

// GetDefaultConfig returns the default configuration for racectl.
func GetDefaultConfig() Config {
	return Config{
		PollInterval: DefaultPollInterval,
		MaxParallel:  DefaultMaxParallel,
		Timeouts: TimeoutConfig{
			Up:      DefaultUpTimeout,
			Down:    DefaultDownTimeout,
			Configs: DefaultConfigsTimeout,
			Action:  DefaultActionTimeout,
		},
		Runner: RunnerConfig{
			Shell:       "/bin/sh",
			PlaybookDir: "/usr/share/racectl/playbooks",
			Commands: map[string]string{
				ActionUp:             playbookCommand("deployment-up"),
				ActionDown:           playbookCommand("deployment-down"),
				ActionPushConfigs:    playbookCommand("push-configs"),
				ActionPublishConfigs: playbookCommand("publish-configs"),
			},
		},
		Docker: DockerConfig{Port: DefaultDockerPort},
	}
}

func playbookCommand(playbook string) string {
	return "ansible-playbook {{ .playbookDir }}/" + playbook + ".yml --extra-vars {{ toJson .vars | squote }}"
}
