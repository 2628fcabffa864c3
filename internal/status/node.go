package status

// ContainerStatus is the observed state of one container.
type ContainerStatus string

const (
	ContainerUnknown    ContainerStatus = "UNKNOWN"
	ContainerNotPresent ContainerStatus = "NOT_PRESENT"
	ContainerStarting   ContainerStatus = "STARTING"
	ContainerRunning    ContainerStatus = "RUNNING"
	ContainerExited     ContainerStatus = "EXITED"
	ContainerUnhealthy  ContainerStatus = "UNHEALTHY"
)

func (s ContainerStatus) String() string { return string(s) }

func (s ContainerStatus) Level() Level {
	switch s {
	case ContainerRunning:
		return LevelUp
	case ContainerNotPresent, ContainerExited:
		return LevelDown
	default:
		return LevelDegraded
	}
}

// Component maps a container observation onto the component vocabulary.
func (s ContainerStatus) Component() ComponentStatus {
	switch s {
	case ContainerRunning:
		return ComponentReady
	case ContainerNotPresent:
		return ComponentNotPresent
	case ContainerStarting, ContainerExited:
		return ComponentNotReady
	case ContainerUnhealthy:
		return ComponentError
	default:
		return ComponentUnknown
	}
}

// DaemonStatus is the liveness of the RACE daemon on a node.
type DaemonStatus string

const (
	DaemonUnknown      DaemonStatus = "UNKNOWN"
	DaemonNotReporting DaemonStatus = "NOT_REPORTING"
	DaemonNotRunning   DaemonStatus = "NOT_RUNNING"
	DaemonRunning      DaemonStatus = "RUNNING"
	DaemonError        DaemonStatus = "ERROR"
)

var daemonStatuses = []DaemonStatus{DaemonUnknown, DaemonNotReporting, DaemonNotRunning, DaemonRunning, DaemonError}

func (s DaemonStatus) String() string { return string(s) }

func (s DaemonStatus) Level() Level {
	switch s {
	case DaemonRunning:
		return LevelUp
	case DaemonNotReporting, DaemonNotRunning:
		return LevelDown
	default:
		return LevelDegraded
	}
}

func ParseDaemonStatus(s string) DaemonStatus { return parseEnum(s, daemonStatuses, DaemonUnknown) }

// AppStatus is whether the RACE app is installed on a node.
type AppStatus string

const (
	AppUnknown      AppStatus = "UNKNOWN"
	AppNotReporting AppStatus = "NOT_REPORTING"
	AppNotInstalled AppStatus = "NOT_INSTALLED"
	AppInstalled    AppStatus = "INSTALLED"
	AppError        AppStatus = "ERROR"
)

var appStatuses = []AppStatus{AppUnknown, AppNotReporting, AppNotInstalled, AppInstalled, AppError}

func (s AppStatus) String() string { return string(s) }

func (s AppStatus) Level() Level {
	switch s {
	case AppInstalled:
		return LevelUp
	case AppNotReporting, AppNotInstalled:
		return LevelDown
	default:
		return LevelDegraded
	}
}

func ParseAppStatus(s string) AppStatus { return parseEnum(s, appStatuses, AppUnknown) }

// RaceStatus is the run state of the RACE app on a node.
type RaceStatus string

const (
	RaceUnknown        RaceStatus = "UNKNOWN"
	RaceNotReporting   RaceStatus = "NOT_REPORTING"
	RaceNotInitialized RaceStatus = "NOT_INITIALIZED"
	RaceInitializing   RaceStatus = "INITIALIZING"
	RaceRunning        RaceStatus = "RUNNING"
	RaceStopped        RaceStatus = "STOPPED"
	RaceFailed         RaceStatus = "FAILED"
)

var raceStatuses = []RaceStatus{
	RaceUnknown, RaceNotReporting, RaceNotInitialized, RaceInitializing, RaceRunning, RaceStopped, RaceFailed,
}

func (s RaceStatus) String() string { return string(s) }

func (s RaceStatus) Level() Level {
	switch s {
	case RaceRunning:
		return LevelUp
	case RaceNotReporting, RaceNotInitialized, RaceStopped:
		return LevelDown
	default:
		return LevelDegraded
	}
}

func ParseRaceStatus(s string) RaceStatus { return parseEnum(s, raceStatuses, RaceUnknown) }

// ArtifactsStatus is whether plugin artifacts have reached a node.
type ArtifactsStatus string

const (
	ArtifactsUnknown      ArtifactsStatus = "UNKNOWN"
	ArtifactsNotReporting ArtifactsStatus = "NOT_REPORTING"
	ArtifactsNone         ArtifactsStatus = "NONE"
	ArtifactsDownloaded   ArtifactsStatus = "DOWNLOADED"
	ArtifactsError        ArtifactsStatus = "ERROR"
)

var artifactsStatuses = []ArtifactsStatus{
	ArtifactsUnknown, ArtifactsNotReporting, ArtifactsNone, ArtifactsDownloaded, ArtifactsError,
}

func (s ArtifactsStatus) String() string { return string(s) }

func (s ArtifactsStatus) Level() Level {
	switch s {
	case ArtifactsDownloaded:
		return LevelUp
	case ArtifactsNotReporting, ArtifactsNone:
		return LevelDown
	default:
		return LevelDegraded
	}
}

func ParseArtifactsStatus(s string) ArtifactsStatus {
	return parseEnum(s, artifactsStatuses, ArtifactsUnknown)
}

// ConfigsStatus tracks delivery of network configs to a node.
type ConfigsStatus string

const (
	ConfigsUnknown      ConfigsStatus = "UNKNOWN"
	ConfigsNotReporting ConfigsStatus = "NOT_REPORTING"
	ConfigsNone         ConfigsStatus = "NONE"
	ConfigsDownloaded   ConfigsStatus = "DOWNLOADED"
	ConfigsExtracted    ConfigsStatus = "EXTRACTED"
	ConfigsError        ConfigsStatus = "ERROR"
)

var configsStatuses = []ConfigsStatus{
	ConfigsUnknown, ConfigsNotReporting, ConfigsNone, ConfigsDownloaded, ConfigsExtracted, ConfigsError,
}

func (s ConfigsStatus) String() string { return string(s) }

func (s ConfigsStatus) Level() Level {
	switch s {
	case ConfigsExtracted:
		return LevelUp
	case ConfigsNotReporting, ConfigsNone:
		return LevelDown
	default:
		return LevelDegraded
	}
}

func ParseConfigsStatus(s string) ConfigsStatus { return parseEnum(s, configsStatuses, ConfigsUnknown) }

// EtcStatus is whether a node's etc files are in place.
type EtcStatus string

const (
	EtcUnknown      EtcStatus = "UNKNOWN"
	EtcNotReporting EtcStatus = "NOT_REPORTING"
	EtcMissing      EtcStatus = "MISSING"
	EtcReady        EtcStatus = "READY"
	EtcError        EtcStatus = "ERROR"
)

var etcStatuses = []EtcStatus{EtcUnknown, EtcNotReporting, EtcMissing, EtcReady, EtcError}

func (s EtcStatus) String() string { return string(s) }

func (s EtcStatus) Level() Level {
	switch s {
	case EtcReady:
		return LevelUp
	case EtcNotReporting, EtcMissing:
		return LevelDown
	default:
		return LevelDegraded
	}
}

func ParseEtcStatus(s string) EtcStatus { return parseEnum(s, etcStatuses, EtcUnknown) }

// ServiceStatus is the state of an auxiliary service such as the file
// server or the registry mirror.
type ServiceStatus string

const (
	ServiceUnknown    ServiceStatus = "UNKNOWN"
	ServiceNotRunning ServiceStatus = "NOT_RUNNING"
	ServiceStarting   ServiceStatus = "STARTING"
	ServiceRunning    ServiceStatus = "RUNNING"
	ServiceUnhealthy  ServiceStatus = "UNHEALTHY"
)

func (s ServiceStatus) String() string { return string(s) }

func (s ServiceStatus) Level() Level {
	switch s {
	case ServiceRunning:
		return LevelUp
	case ServiceNotRunning:
		return LevelDown
	default:
		return LevelDegraded
	}
}

// ServiceFromContainer derives a service status from its container.
func ServiceFromContainer(c ContainerStatus) ServiceStatus {
	switch c {
	case ContainerRunning:
		return ServiceRunning
	case ContainerNotPresent, ContainerExited:
		return ServiceNotRunning
	case ContainerStarting:
		return ServiceStarting
	case ContainerUnhealthy:
		return ServiceUnhealthy
	default:
		return ServiceUnknown
	}
}

// ParentStatus is the aggregate vocabulary one or more levels above leaves.
type ParentStatus string

const (
	ParentUnknown     ParentStatus = "UNKNOWN"
	ParentAllDown     ParentStatus = "ALL_DOWN"
	ParentSomeRunning ParentStatus = "SOME_RUNNING"
	ParentAllRunning  ParentStatus = "ALL_RUNNING"
)

func (s ParentStatus) String() string { return string(s) }

func (s ParentStatus) Level() Level {
	switch s {
	case ParentAllRunning:
		return LevelUp
	case ParentAllDown:
		return LevelDown
	default:
		return LevelDegraded
	}
}
