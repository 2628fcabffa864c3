package status

import (
	"encoding/json"
	"sort"
)

// ReasonNotObserved marks synthetic children standing in for expected but
// unobserved hosts or containers.
const ReasonNotObserved = "not observed"

// Report is one node of a status tree. Leaves carry an observed Status and
// no children; parents carry the Status their Rule derived from Children.
type Report struct {
	Status   Value
	Children map[string]*Report
	Reason   string
}

// Leaf builds a report from a direct observation.
func Leaf(v Value, reason string) *Report {
	return &Report{Status: v, Reason: reason}
}

// Aggregate builds a parent report whose Status is rule applied to the
// children. The map is copied so later changes by the caller do not leak in.
func Aggregate(rule Rule, children map[string]*Report) *Report {
	copied := make(map[string]*Report, len(children))
	values := make([]Value, 0, len(children))
	for name, child := range children {
		if child == nil {
			continue
		}
		copied[name] = child
		values = append(values, child.Status)
	}
	return &Report{Status: rule.Combine(values), Children: copied}
}

// PadMissing returns a copy of children with a synthetic down leaf for every
// expected name that was not observed.
func PadMissing(children map[string]*Report, expected []string, down Value) map[string]*Report {
	padded := make(map[string]*Report, len(children)+len(expected))
	for name, child := range children {
		padded[name] = child
	}
	for _, name := range expected {
		if _, ok := padded[name]; !ok {
			padded[name] = Leaf(down, ReasonNotObserved)
		}
	}
	return padded
}

// IsLeaf reports whether r has no children.
func (r *Report) IsLeaf() bool {
	return len(r.Children) == 0
}

// Names returns the child names in sorted order.
func (r *Report) Names() []string {
	names := make([]string, 0, len(r.Children))
	for name := range r.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Find walks down the tree along path and returns nil if any segment is
// missing.
func (r *Report) Find(path ...string) *Report {
	cur := r
	for _, name := range path {
		if cur == nil {
			return nil
		}
		cur = cur.Children[name]
	}
	return cur
}

// Walk visits r and every descendant depth-first in sorted child order.
func (r *Report) Walk(fn func(path []string, node *Report) error) error {
	return r.walk(nil, fn)
}

func (r *Report) walk(path []string, fn func([]string, *Report) error) error {
	if err := fn(path, r); err != nil {
		return err
	}
	for _, name := range r.Names() {
		childPath := append(append([]string(nil), path...), name)
		if err := r.Children[name].walk(childPath, fn); err != nil {
			return err
		}
	}
	return nil
}

// Offending returns the path to the first (in sorted order) descendant that
// keeps r from reporting want, descending as long as the child itself
// differs from want. It returns nil when r already reports want.
//
// Children from a different vocabulary match a fully up or fully down want
// by Level, so a RUNNING daemon leaf does not offend an ALL_RUNNING target.
func (r *Report) Offending(want Value) []string {
	if r == nil || matches(r.Status, want) {
		return nil
	}
	var path []string
	cur := r
	for !cur.IsLeaf() {
		next := ""
		for _, name := range cur.Names() {
			if !matches(cur.Children[name].Status, want) {
				next = name
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		cur = cur.Children[next]
	}
	return path
}

func matches(v, want Value) bool {
	if v == want {
		return true
	}
	if v == nil || want == nil {
		return false
	}
	level := want.Level()
	return level != LevelDegraded && v.Level() == level
}

type reportView struct {
	Status   string                `json:"status" yaml:"status"`
	Reason   string                `json:"reason,omitempty" yaml:"reason,omitempty"`
	Children map[string]reportView `json:"children,omitempty" yaml:"children,omitempty"`
}

func (r *Report) view() reportView {
	v := reportView{Reason: r.Reason}
	if r.Status != nil {
		v.Status = r.Status.String()
	}
	if len(r.Children) > 0 {
		v.Children = make(map[string]reportView, len(r.Children))
		for name, child := range r.Children {
			v.Children[name] = child.view()
		}
	}
	return v
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

func (r *Report) MarshalYAML() (interface{}, error) {
	return r.view(), nil
}
