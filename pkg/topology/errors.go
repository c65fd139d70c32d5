package topology

import (
	"errors"
	"fmt"
)

// Rejection reason codes surfaced to the authoring layer.
const (
	ReasonWouldCreateCycle            = "WOULD_CREATE_CYCLE"
	ReasonIllegalCircumventAttachment = "ILLEGAL_CIRCUMVENT_ATTACHMENT"
	ReasonNodeNotFound                = "NODE_NOT_FOUND"
)

// Common sentinel errors
var (
	ErrWouldCreateCycle            = errors.New("edge would create a cycle")
	ErrIllegalCircumventAttachment = errors.New("illegal circumvent attachment")
	ErrNodeNotFound                = errors.New("node not found")
)

// LinkError is a reason-coded rejection of a proposed edge mutation. The
// caller must surface it and must not apply the mutation.
type LinkError struct {
	SourceID string
	TargetID string
	Reason   string
	Cause    error
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s -> %s rejected (%s): %v", e.SourceID, e.TargetID, e.Reason, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *LinkError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *LinkError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ReasonOf extracts the reason code from a link rejection, or "" when err is
// not one.
func ReasonOf(err error) string {
	var le *LinkError
	if errors.As(err, &le) {
		return le.Reason
	}
	return ""
}

func rejection(sourceID, targetID, reason string, cause error) error {
	return &LinkError{SourceID: sourceID, TargetID: targetID, Reason: reason, Cause: cause}
}
