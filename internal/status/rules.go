package status

// Rule combines the statuses of a parent's children into the parent's status.
// Implementations are commutative and associative over the multiset of child
// statuses.
type Rule interface {
	Name() string
	Combine(children []Value) Value
}

var (
	// ErrorDominant is the consensus rule for cloud resource and container
	// trees.
	ErrorDominant Rule = errorDominant{}

	// RunningMajority is the consensus rule for node, service and facet trees.
	RunningMajority Rule = runningMajority{}
)

type errorDominant struct{}

func (errorDominant) Name() string { return "error-dominant" }

func (errorDominant) Combine(children []Value) Value {
	if len(children) == 0 {
		return ComponentUnknown
	}

	first := AsComponent(children[0])
	same := true
	var anyError, anyPresence bool
	for _, child := range children {
		c := AsComponent(child)
		if c != first {
			same = false
		}
		switch c {
		case ComponentError:
			anyError = true
		case ComponentReady, ComponentNotReady:
			anyPresence = true
		}
	}

	switch {
	case same:
		return first
	case anyError:
		return ComponentError
	case anyPresence:
		return ComponentNotReady
	default:
		return ComponentUnknown
	}
}

type runningMajority struct{}

func (runningMajority) Name() string { return "running-majority" }

func (runningMajority) Combine(children []Value) Value {
	if len(children) == 0 {
		return ParentUnknown
	}

	allUp, allDown := true, true
	for _, child := range children {
		level := LevelDegraded
		if child != nil {
			level = child.Level()
		}
		if level != LevelUp {
			allUp = false
		}
		if level != LevelDown {
			allDown = false
		}
	}

	switch {
	case allUp:
		return ParentAllRunning
	case allDown:
		return ParentAllDown
	default:
		return ParentSomeRunning
	}
}

// Down returns the fully-down value a rule's subtree uses for synthetic
// children.
func Down(rule Rule) Value {
	if rule == ErrorDominant {
		return ComponentNotPresent
	}
	return ParentAllDown
}
