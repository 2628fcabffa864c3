// Package observer fetches live state from the infrastructure behind an
// environment.
//
// Observers only report raw provider vocabulary (stack and instance states,
// docker container states, daemon status files). Classification into status
// values and tree assembly happen in the collector. Every fetch that fans out
// over hosts or personas does so with bounded parallelism.
//
// Implementations:
//   - LocalObserver: one docker daemon reached through DOCKER_HOST or the
//     configured host.
//   - AWSObserver: CloudFormation, EC2 and EBS state through the AWS SDK,
//     and the docker daemon of every running instance over TCP.
//   - StatusDirObserver: per-persona status files reported by the RACE
//     daemons.
package observer
