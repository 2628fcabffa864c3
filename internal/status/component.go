package status

// ComponentStatus is the vocabulary for cloud resources and containers.
type ComponentStatus string

const (
	ComponentUnknown    ComponentStatus = "UNKNOWN"
	ComponentNotPresent ComponentStatus = "NOT_PRESENT"
	ComponentNotReady   ComponentStatus = "NOT_READY"
	ComponentReady      ComponentStatus = "READY"
	ComponentError      ComponentStatus = "ERROR"
)

var componentStatuses = []ComponentStatus{
	ComponentUnknown, ComponentNotPresent, ComponentNotReady, ComponentReady, ComponentError,
}

func (s ComponentStatus) String() string { return string(s) }

func (s ComponentStatus) Level() Level {
	switch s {
	case ComponentReady:
		return LevelUp
	case ComponentNotPresent:
		return LevelDown
	default:
		return LevelDegraded
	}
}

// ParseComponentStatus returns ComponentUnknown for anything unrecognized.
func ParseComponentStatus(s string) ComponentStatus {
	return parseEnum(s, componentStatuses, ComponentUnknown)
}

// Componenter is implemented by vocabularies with a direct ComponentStatus
// equivalent.
type Componenter interface {
	Component() ComponentStatus
}

// AsComponent converts any Value to a ComponentStatus. Values without a
// direct equivalent are mapped through their Level.
func AsComponent(v Value) ComponentStatus {
	switch c := v.(type) {
	case ComponentStatus:
		return c
	case Componenter:
		return c.Component()
	}
	if v == nil {
		return ComponentUnknown
	}
	switch v.Level() {
	case LevelUp:
		return ComponentReady
	case LevelDown:
		return ComponentNotPresent
	default:
		return ComponentNotReady
	}
}
