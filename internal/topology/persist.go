package topology

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DistributionFileName is the name of the persisted distribution inside a
// deployment directory.
const DistributionFileName = "node-distribution.yaml"

// SaveDistribution writes d to path, creating parent directories.
func SaveDistribution(path string, d *Distribution) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal distribution: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write distribution %s: %w", path, err)
	}
	return nil
}

// LoadDistribution reads a distribution written by SaveDistribution.
func LoadDistribution(path string) (*Distribution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read distribution %s: %w", path, err)
	}
	var d Distribution
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse distribution %s: %w", path, err)
	}
	return &d, nil
}

// LoadTopology reads a user supplied topology file.
func LoadTopology(path string) (Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Topology{}, fmt.Errorf("failed to read topology %s: %w", path, err)
	}
	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Topology{}, fmt.Errorf("failed to parse topology %s: %w", path, err)
	}
	for _, c := range t.HostClasses {
		if !supported(c.InstanceBucket) {
			return Topology{}, fmt.Errorf("topology %s: unsupported host class %s", path, c.InstanceBucket)
		}
		if c.Hosts < 0 || c.ClientsPerHost < 0 || c.ServersPerHost < 0 {
			return Topology{}, fmt.Errorf("topology %s: negative capacity in host class %s", path, c.InstanceBucket)
		}
	}
	return t, nil
}
