package attendance

import (
	"shopcrew.com/shopcrew/core"
)

// Channel is the method used to initiate a clock action.
type Channel string

const (
	// ChannelTag is a fixed NFC/QR tag mounted at the shop.
	ChannelTag Channel = "tag"
	// ChannelCode is a rotating code displayed on the shop screen.
	ChannelCode Channel = "code"
	// ChannelTerminal is the shared terminal with staff PIN entry.
	ChannelTerminal Channel = "terminal"
	// ChannelGPS is the employee's personal device reporting its position.
	ChannelGPS Channel = "gps"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelTag, ChannelCode, ChannelTerminal, ChannelGPS:
		return true
	}
	return false
}

// SharedDevice reports whether the channel runs on shop-owned hardware. The
// consent prompt is only raised on shared devices; a personal device implies
// the employee installed the app themselves.
func (c Channel) SharedDevice() bool {
	return c == ChannelTerminal || c == ChannelTag || c == ChannelCode
}

// RequiresLocation reports whether a missing fix is fatal for the channel.
func (c Channel) RequiresLocation() bool {
	return c == ChannelGPS
}

type Decision int

const (
	Allow Decision = iota
	Deny
	FlagForReview
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case FlagForReview:
		return "flag-for-review"
	}
	return "unknown"
}

// ReviewDistanceMeters is the GPS distance beyond which a clock-in is flagged
// for after-the-fact review.
const ReviewDistanceMeters = 100.0

// ChannelPolicy decides admission for one channel. distance is nil when no
// fix was acquired. Adding a channel means adding a policy here; the toggle
// core never branches on channel identity.
type ChannelPolicy interface {
	Evaluate(distance *float64, shop *core.Shop) Decision
}

// premisesPolicy covers channels physically bound to the shop: a fixed tag,
// a displayed code, the shared terminal. These enforce the hard geofence.
type premisesPolicy struct{}

func (premisesPolicy) Evaluate(distance *float64, shop *core.Shop) Decision {
	if distance == nil {
		// best-effort channel without a fix proceeds; the channel itself
		// proves presence well enough
		return Allow
	}
	if *distance > shop.Radius() {
		return Deny
	}
	return Allow
}

// gpsPolicy covers the personal-device channel. A personal device cannot be
// trusted like fixed hardware, so it never denies; distant clock-ins are
// flagged for human review instead.
type gpsPolicy struct{}

func (gpsPolicy) Evaluate(distance *float64, shop *core.Shop) Decision {
	if distance == nil {
		// callers enforce RequiresLocation before evaluation
		return Allow
	}
	if *distance > ReviewDistanceMeters {
		return FlagForReview
	}
	return Allow
}

var channelPolicies = map[Channel]ChannelPolicy{
	ChannelTag:      premisesPolicy{},
	ChannelCode:     premisesPolicy{},
	ChannelTerminal: premisesPolicy{},
	ChannelGPS:      gpsPolicy{},
}

// EvaluateAdmission applies the channel's policy to the measured distance.
// Unknown channels deny.
func EvaluateAdmission(channel Channel, distance *float64, shop *core.Shop) Decision {
	policy, ok := channelPolicies[channel]
	if !ok {
		return Deny
	}
	return policy.Evaluate(distance, shop)
}
