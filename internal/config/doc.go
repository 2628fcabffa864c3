// Package config provides configuration management for racectl.
//
// Configuration is loaded from a single directory. The default directory is
// ~/.config/racectl, overridable with the --config-path flag.
//
// # Configuration Directory
//
// The configuration directory contains:
//   - config.yaml (main configuration file)
//
// Environment and deployment records live under the data directory, which
// defaults to the configuration directory and can be moved with dataDir.
//
// # Main Configuration
//
// config.yaml is decoded over GetDefaultConfig, so a missing file or a
// partial file both yield usable settings:
//
//	dataDir: /var/lib/racectl
//	pollInterval: 5s
//	maxParallel: 16
//	timeouts:
//	  up: 10m
//	  down: 10m
//	  configs: 5m
//	  action: 30m
//	runner:
//	  shell: /bin/sh
//	  commands:
//	    up: ansible-playbook {{ .playbookDir }}/deployment-up.yml --extra-vars {{ toJson .vars | squote }}
//	docker:
//	  port: 2375
//	aws:
//	  profile: race
//	  region: us-east-1
//	registry: ghcr.io/example/race
//	services:
//	  - redis
//	  - file-server
//
// Runner commands are Go text templates with the sprig function library.
//
// # Entity Storage
//
// Storage persists one YAML document per entity in a type-specific
// subdirectory ({dataDir}/{entityType}/{name}.yaml). Names are sanitized
// before they are used as file names. Load and Delete of a missing entity
// return an error matching ErrNotFound.
//
// # Validation
//
// Config.Validate collects every problem into Problems rather than stopping
// at the first one. The CLI prints Problems.Report when loading fails.
package config
