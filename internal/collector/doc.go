// Package collector gathers live observations of a deployment and its host
// environment and assembles them into status report trees.
//
// A collection round performs one concurrent fetch from the environment
// observer (cloud resources, per-host containers) and the node observer
// (persona self-reports), then builds the trees synchronously:
//
//	environment  stacks/instances/volumes/docker -> resource   (error-dominant)
//	containers   role -> host -> persona, services -> service  (error-dominant)
//	nodes        role -> host -> persona liveness              (running-majority)
//	services     service                                       (running-majority)
//	facets       role -> host -> persona app/race/...          (running-majority)
//
// Hosts are paired with distribution manifests by index after sorting the
// observed instances of a role by public DNS name. Hosts that were expected
// but not observed appear as synthetic fully-down leaves.
package collector
