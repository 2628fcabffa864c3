package status

// DeploymentState is the coarse lifecycle state shown for a deployment.
type DeploymentState string

const (
	DeploymentUnknown     DeploymentState = "UNKNOWN"
	DeploymentDown        DeploymentState = "DOWN"
	DeploymentPartiallyUp DeploymentState = "PARTIALLY_UP"
	DeploymentUp          DeploymentState = "UP"
	DeploymentError       DeploymentState = "ERROR"
)

func (s DeploymentState) String() string { return string(s) }

// DeriveDeploymentState combines the container tree (error-dominant) and the
// node tree (running-majority) of a deployment.
func DeriveDeploymentState(containers, nodes *Report) DeploymentState {
	if containers == nil || nodes == nil {
		return DeploymentUnknown
	}
	c := AsComponent(containers.Status)
	switch {
	case c == ComponentError:
		return DeploymentError
	case c == ComponentNotPresent && nodes.Status == ParentAllDown:
		return DeploymentDown
	case c == ComponentReady && nodes.Status == ParentAllRunning:
		return DeploymentUp
	case c == ComponentUnknown && nodes.Status == ParentUnknown:
		return DeploymentUnknown
	default:
		return DeploymentPartiallyUp
	}
}

// EnvironmentState is the coarse provisioning state of a host environment.
type EnvironmentState string

const (
	EnvironmentUnknown              EnvironmentState = "UNKNOWN"
	EnvironmentUnprovisioned        EnvironmentState = "UNPROVISIONED"
	EnvironmentPartiallyProvisioned EnvironmentState = "PARTIALLY_PROVISIONED"
	EnvironmentProvisioned          EnvironmentState = "PROVISIONED"
	EnvironmentError                EnvironmentState = "ERROR"
)

func (s EnvironmentState) String() string { return string(s) }

// DeriveEnvironmentState maps an environment's error-dominant aggregate.
func DeriveEnvironmentState(env *Report) EnvironmentState {
	if env == nil {
		return EnvironmentUnknown
	}
	switch AsComponent(env.Status) {
	case ComponentReady:
		return EnvironmentProvisioned
	case ComponentNotPresent:
		return EnvironmentUnprovisioned
	case ComponentNotReady:
		return EnvironmentPartiallyProvisioned
	case ComponentError:
		return EnvironmentError
	default:
		return EnvironmentUnknown
	}
}
