package topology

import (
	"errors"
	"fmt"
)

// ErrIncompatible is matched by every CapacityError.
var ErrIncompatible = errors.New("topology incompatible")

// CapacityError reports a bucket whose host capacity cannot carry the
// required personas.
type CapacityError struct {
	Environment string
	File        string
	Bucket      Bucket
	Required    int
	Available   int
	Detail      string
}

func (e *CapacityError) Error() string {
	msg := fmt.Sprintf("bucket %s needs %d personas but only %d fit", e.Bucket, e.Required, e.Available)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	switch {
	case e.Environment != "" && e.File != "":
		return fmt.Sprintf("topology %s is incompatible with environment %s: %s", e.File, e.Environment, msg)
	case e.Environment != "":
		return fmt.Sprintf("topology is incompatible with environment %s: %s", e.Environment, msg)
	default:
		return "topology is incompatible: " + msg
	}
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrIncompatible
}
