package status

import "strings"

var stackStates = map[string]ComponentStatus{
	"CREATE_COMPLETE":    ComponentReady,
	"CREATE_IN_PROGRESS": ComponentNotReady,
	"DELETE_IN_PROGRESS": ComponentNotReady,
	"CREATE_FAILED":      ComponentError,
	"DELETE_FAILED":      ComponentError,
	"DELETE_COMPLETE":    ComponentNotPresent,
}

// ClassifyStack maps a CloudFormation stack status. Rollback, update, import
// and review states are deliberately UNKNOWN.
func ClassifyStack(raw string) ComponentStatus {
	if s, ok := stackStates[raw]; ok {
		return s
	}
	return ComponentUnknown
}

var instanceStates = map[string]ComponentStatus{
	"pending":       ComponentNotReady,
	"running":       ComponentReady,
	"shutting-down": ComponentNotReady,
	"stopping":      ComponentNotReady,
	"stopped":       ComponentNotReady,
	"terminated":    ComponentNotPresent,
}

// ClassifyInstance maps an EC2 instance state name.
func ClassifyInstance(raw string) ComponentStatus {
	if s, ok := instanceStates[raw]; ok {
		return s
	}
	return ComponentUnknown
}

var volumeStates = map[string]ComponentStatus{
	"creating":  ComponentNotReady,
	"available": ComponentReady,
	"in-use":    ComponentReady,
	"deleting":  ComponentNotReady,
	"deleted":   ComponentNotPresent,
	"error":     ComponentError,
}

// ClassifyVolume maps an EBS volume state.
func ClassifyVolume(raw string) ComponentStatus {
	if s, ok := volumeStates[raw]; ok {
		return s
	}
	return ComponentUnknown
}

var containerStates = map[string]ContainerStatus{
	"created":    ContainerStarting,
	"restarting": ContainerStarting,
	"running":    ContainerRunning,
	"removing":   ContainerExited,
	"exited":     ContainerExited,
	"paused":     ContainerUnhealthy,
	"dead":       ContainerUnhealthy,
}

// ClassifyContainer maps a docker container state and its human status
// text. A running container whose health check is failing or still starting
// is reported as such.
func ClassifyContainer(state, statusText string) ContainerStatus {
	s, ok := containerStates[strings.ToLower(state)]
	if !ok {
		return ContainerUnknown
	}
	if s == ContainerRunning {
		switch {
		case strings.Contains(statusText, "(unhealthy)"):
			return ContainerUnhealthy
		case strings.Contains(statusText, "(health: starting)"):
			return ContainerStarting
		}
	}
	return s
}
