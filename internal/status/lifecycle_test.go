package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDeploymentState(t *testing.T) {
	tests := []struct {
		name       string
		containers ComponentStatus
		nodes      ParentStatus
		want       DeploymentState
	}{
		{"down", ComponentNotPresent, ParentAllDown, DeploymentDown},
		{"up", ComponentReady, ParentAllRunning, DeploymentUp},
		{"containers up daemons starting", ComponentReady, ParentSomeRunning, DeploymentPartiallyUp},
		{"some containers", ComponentNotReady, ParentSomeRunning, DeploymentPartiallyUp},
		{"error wins", ComponentError, ParentAllRunning, DeploymentError},
		{"nothing known", ComponentUnknown, ParentUnknown, DeploymentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveDeploymentState(Leaf(tt.containers, ""), Leaf(tt.nodes, ""))
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, DeploymentUnknown, DeriveDeploymentState(nil, nil))
}

func TestDeriveEnvironmentState(t *testing.T) {
	tests := map[ComponentStatus]EnvironmentState{
		ComponentReady:      EnvironmentProvisioned,
		ComponentNotPresent: EnvironmentUnprovisioned,
		ComponentNotReady:   EnvironmentPartiallyProvisioned,
		ComponentError:      EnvironmentError,
		ComponentUnknown:    EnvironmentUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, DeriveEnvironmentState(Leaf(in, "")), in.String())
	}
	assert.Equal(t, EnvironmentUnknown, DeriveEnvironmentState(nil))
}
