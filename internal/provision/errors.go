// Package provision creates application accounts: an identity in the backend
// plus the profile row that gives it a role. Two variants exist. Accounts runs
// with the restricted key and signs in as the new identity so the profile
// write passes the owner policy. Members runs with the privileged key and
// rolls the identity back when the profile cannot be written.
package provision

import (
	"errors"
	"fmt"
)

// Stage names the step of a provisioning run that failed.
type Stage string

const (
	StageConfig       Stage = "config"
	StageIdentity     Stage = "identity"
	StageIdentifier   Stage = "identifier"
	StageSession      Stage = "session"
	StageProfileRead  Stage = "profile_read"
	StageProfileWrite Stage = "profile_write"
)

var (
	ErrMissingIdentifier   = errors.New("sign-up returned no user id")
	ErrNoPrivilegedBackend = errors.New("privileged backend is not configured")
	ErrInvalidRequest      = errors.New("invalid provisioning request")
)

// Error is a terminal provisioning failure.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provision failed at %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(stage Stage, err error) *Error {
	return &Error{Stage: stage, Err: err}
}

// StageOf returns the failing stage of err, or "" when err is not a provisioning error.
func StageOf(err error) Stage {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}
