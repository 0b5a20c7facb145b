package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyClockedIn surfaces the duplicate-open-entry guard: a second
	// clock-in raced this one and won.
	ErrAlreadyClockedIn = errors.New("already clocked in")

	// ErrAlreadyClockedOut means the open entry was closed by a concurrent
	// request between read and write.
	ErrAlreadyClockedOut = errors.New("already clocked out")

	// ErrConsentDenied hard-blocks every clock action for an employee who
	// declined location tracking.
	ErrConsentDenied = errors.New("location tracking declined; please see your manager to clock in")

	// ErrConsentRequired suspends the toggle until the employee answers the
	// consent prompt.
	ErrConsentRequired = errors.New("location tracking consent required before clocking in")
)

// ValidationError is a malformed or missing input (bad PIN format, missing
// required location, disabled channel).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError is an identifier that matches nothing (unknown employee,
// no pending request, PIN with no active match).
type NotFoundError struct {
	Resource string
	Detail   string
}

func (e *NotFoundError) Error() string {
	if e.Detail == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Detail)
}

// PolicyViolation is a denial on a strict channel. The configured radius and
// measured distance are surfaced verbatim to the caller.
type PolicyViolation struct {
	Channel        Channel
	RadiusMeters   float64
	DistanceMeters float64
}

func (e *PolicyViolation) Error() string {
	return fmt.Sprintf("clock-in denied: %.0f m from the shop exceeds the %.0f m radius for the %s channel",
		e.DistanceMeters, e.RadiusMeters, e.Channel)
}

// ExternalServiceFailure is a retryable failure of the backing store or a
// required device service. No partial state is exposed.
type ExternalServiceFailure struct {
	Op  string
	Err error
}

func (e *ExternalServiceFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ExternalServiceFailure) Unwrap() error {
	return e.Err
}

func storeFailure(op string, err error) error {
	return &ExternalServiceFailure{Op: op, Err: err}
}
