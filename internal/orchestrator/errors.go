package orchestrator

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrPrecondition is matched by PreconditionError.
	ErrPrecondition = errors.New("precondition failed")
	// ErrRemoteAction is matched by RemoteActionError.
	ErrRemoteAction = errors.New("remote action failed")
	// ErrConvergenceTimeout is matched by ConvergenceTimeoutError.
	ErrConvergenceTimeout = errors.New("timed out waiting for convergence")
)

// PreconditionError reports observed state that forbids a transition.
type PreconditionError struct {
	Deployment string
	Action     string
	// Component is the path of the first offending component, starting
	// with the status tree it belongs to.
	Component []string
	Got       string
	Want      string
	// Err is set when the status could not be observed at all.
	Err error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot %s deployment %s: failed to check preconditions: %v", e.Action, e.Deployment, e.Err)
	}
	return fmt.Sprintf("cannot %s deployment %s: %s is %s, expected %s (use --force to skip this check)",
		e.Action, e.Deployment, strings.Join(e.Component, "/"), e.Got, e.Want)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// RemoteActionError reports a failed remote action. Metadata recorded
// before the action is kept.
type RemoteActionError struct {
	Deployment string
	Action     string
	// RemoteAction is the runner action that failed, which differs from
	// Action for the config steps of up.
	RemoteAction string
	Err          error
}

func (e *RemoteActionError) Error() string {
	return fmt.Sprintf("%s of deployment %s failed: %s: %v", e.Action, e.Deployment, e.RemoteAction, e.Err)
}

func (e *RemoteActionError) Unwrap() error {
	return e.Err
}

func (e *RemoteActionError) Is(target error) bool {
	return target == ErrRemoteAction
}

// ConvergenceTimeoutError reports a poll that never reached its target.
// The last observed state is left as-is.
type ConvergenceTimeoutError struct {
	Deployment string
	Action     string
	Timeout    time.Duration
	Polls      int
	// Component, Got and Want describe the first unmet expectation of the
	// last successful poll.
	Component []string
	Got       string
	Want      string
	// LastErr is the error of the last poll if it failed.
	LastErr error
}

func (e *ConvergenceTimeoutError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s of deployment %s did not converge within %s (%d polls)", e.Action, e.Deployment, e.Timeout, e.Polls)
	if len(e.Component) > 0 {
		fmt.Fprintf(&b, ": %s is %s, expected %s", strings.Join(e.Component, "/"), e.Got, e.Want)
	}
	if e.LastErr != nil {
		fmt.Fprintf(&b, " (last poll failed: %v)", e.LastErr)
	}
	return b.String()
}

func (e *ConvergenceTimeoutError) Unwrap() error {
	return e.LastErr
}

func (e *ConvergenceTimeoutError) Is(target error) bool {
	return target == ErrConvergenceTimeout
}

// IsPrecondition reports whether err is or wraps a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsRemoteAction reports whether err is or wraps a RemoteActionError.
func IsRemoteAction(err error) bool {
	var re *RemoteActionError
	return errors.As(err, &re)
}

// IsConvergenceTimeout reports whether err is or wraps a
// ConvergenceTimeoutError.
func IsConvergenceTimeout(err error) bool {
	var te *ConvergenceTimeoutError
	return errors.As(err, &te)
}
