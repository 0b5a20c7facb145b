package attendance

import (
	"context"

	"shopcrew.com/shopcrew/core"
)

// CheckConsent evaluates the tri-state location-tracking consent flag before
// any channel-specific policy runs.
//
//   - Denied blocks every clock action regardless of channel.
//   - Unset suspends actions on shared devices until the prompt is answered;
//     the personal-device app collects consent at install time, so the GPS
//     channel passes through.
//   - Granted has no effect.
func CheckConsent(state core.ConsentState, channel Channel) error {
	switch state {
	case core.ConsentDenied:
		return ErrConsentDenied
	case core.ConsentGranted:
		return nil
	}
	// unset (or anything unrecognised from older rows)
	if channel.SharedDevice() {
		return ErrConsentRequired
	}
	return nil
}

// ResolveConsent persists the employee's answer to the consent prompt,
// stamped with the policy version it was given against.
func (s *ClockService) ResolveConsent(ctx context.Context, employeeID uint, granted bool, policyVersion string) error {
	state := core.ConsentDenied
	if granted {
		state = core.ConsentGranted
	}
	if err := s.Store.UpdateEmployeeConsent(ctx, employeeID, state, policyVersion, s.now()); err != nil {
		return storeFailure("update consent", err)
	}
	return nil
}
