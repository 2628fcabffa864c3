package orchestrator

import (
	"racectl/internal/collector"
	"racectl/internal/status"
)

// Status trees an expectation can name.
const (
	TreeEnvironment = "environment"
	TreeContainers  = "containers"
	TreeNodes       = "nodes"
	TreeServices    = "services"
)

// Expectation requires one status tree of a snapshot to report Want. Facet
// trees are named by their facet.
type Expectation struct {
	Tree string
	Want status.Value
}

func (e Expectation) report(s *collector.Snapshot) *status.Report {
	switch e.Tree {
	case TreeEnvironment:
		return s.Environment
	case TreeContainers:
		return s.Containers
	case TreeNodes:
		return s.Nodes
	case TreeServices:
		return s.Services
	default:
		return s.Facets[collector.Facet(e.Tree)]
	}
}

// unmet describes the first expectation a snapshot does not satisfy.
type unmet struct {
	Component []string
	Got       string
	Want      string
}

// check returns nil when every expectation holds. A missing services tree
// means the deployment has no services and is skipped; any other missing
// tree is unmet.
func check(s *collector.Snapshot, want []Expectation) *unmet {
	for _, e := range want {
		r := e.report(s)
		if r == nil {
			if e.Tree == TreeServices {
				continue
			}
			return &unmet{Component: []string{e.Tree}, Got: "missing", Want: e.Want.String()}
		}
		if r.Status == e.Want {
			continue
		}
		got := "UNKNOWN"
		if r.Status != nil {
			got = r.Status.String()
		}
		u := &unmet{Component: append([]string{e.Tree}, r.Offending(e.Want)...), Got: got, Want: e.Want.String()}
		if leaf := r.Find(u.Component[1:]...); leaf != nil && leaf != r && leaf.Status != nil {
			u.Got = leaf.Status.String()
			if leaf.Reason != "" {
				u.Got += " (" + leaf.Reason + ")"
			}
		}
		return u
	}
	return nil
}

var (
	// upPreconditions: the environment is ready and nothing is running yet.
	upPreconditions = []Expectation{
		{Tree: TreeEnvironment, Want: status.ComponentReady},
		{Tree: TreeContainers, Want: status.ComponentNotPresent},
	}

	upPostconditions = []Expectation{
		{Tree: TreeContainers, Want: status.ComponentReady},
		{Tree: TreeNodes, Want: status.ParentAllRunning},
		{Tree: TreeServices, Want: status.ParentAllRunning},
	}

	configsPostconditions = []Expectation{
		{Tree: string(collector.FacetConfigs), Want: status.ParentAllRunning},
	}

	// downPreconditions: every app is stopped, uninitialized or silent.
	downPreconditions = []Expectation{
		{Tree: string(collector.FacetRace), Want: status.ParentAllDown},
	}

	downPostconditions = []Expectation{
		{Tree: TreeContainers, Want: status.ComponentNotPresent},
		{Tree: TreeNodes, Want: status.ParentAllDown},
		{Tree: TreeServices, Want: status.ParentAllDown},
	}
)
