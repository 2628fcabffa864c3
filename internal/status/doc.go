// Package status holds the status vocabularies observed for a RACE network
// and the engine that rolls leaf observations up into parent verdicts.
//
// Every leaf and parent vocabulary implements Value, which maps the
// domain-specific value onto a three-valued Level (down, degraded, up). The
// two combination rules work over that normalized lattice:
//
//   - ErrorDominant (cloud resources, containers) yields a ComponentStatus:
//     identical children pass their value through, any ERROR wins, any sign
//     of presence collapses to NOT_READY, and a mix of UNKNOWN/NOT_PRESENT is
//     UNKNOWN.
//   - RunningMajority (nodes, services, node facets) yields a ParentStatus:
//     all up is ALL_RUNNING, all down is ALL_DOWN, anything else is
//     SOME_RUNNING.
//
// Reports are immutable trees. A new observation round builds a new tree;
// nothing in this package mutates a Report after Aggregate or Leaf returns
// it. Classification functions are total: unrecognized provider strings map
// to UNKNOWN rather than failing.
package status
