// Package orchestrator sequences the lifecycle transitions of a deployment.
//
// Up and Down follow the same state machine:
//
//  1. Preconditions are checked against a fresh status snapshot. Force turns
//     every precondition into a no-op.
//  2. The operation is recorded in the deployment metadata, force or not.
//  3. The remote action is dispatched once through the runner.
//  4. Status is polled until the postcondition holds or the timeout elapses.
//     The first poll is immediate; later polls wait a fixed interval.
//  5. After a successful Up, configs are pushed and, unless disabled,
//     published and polled until every node reports them extracted.
//
// A failed or timed-out transition is never rolled back: whatever was
// started stays up for inspection. Transitions on one deployment are
// serialized by the deployment's active-operation marker; different
// deployments proceed independently.
//
// # Errors
//
// Failures are reported as *PreconditionError, *RemoteActionError and
// *ConvergenceTimeoutError, which match ErrPrecondition, ErrRemoteAction and
// ErrConvergenceTimeout with errors.Is. Each names the deployment and the
// action being attempted.
package orchestrator
