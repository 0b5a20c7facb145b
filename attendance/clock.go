package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"

	"shopcrew.com/shopcrew/core"
	"shopcrew.com/shopcrew/geo"
	"shopcrew.com/shopcrew/utils"
)

// ToggleAction names which half of the toggle ran.
type ToggleAction string

const (
	ActionClockIn  ToggleAction = "clock-in"
	ActionClockOut ToggleAction = "clock-out"
)

// ToggleOptions carries the per-request inputs of a clock action.
type ToggleOptions struct {
	// Coordinates is the position already captured by the client, if any.
	Coordinates *geo.Coordinates
	// Provider acquires a position when Coordinates is nil. Acquisition is
	// time-boxed; failure is fatal only on channels that require location.
	Provider geo.LocationProvider
}

// ToggleResult reports what the toggle did.
type ToggleResult struct {
	Action          ToggleAction     `json:"action"`
	Entry           *core.ClockEntry `json:"entry"`
	Message         string           `json:"message"`
	ReviewRequested bool             `json:"reviewRequested"`
}

// AuditNotifier receives best-effort security-audit events. Implementations
// must be safe for concurrent use; failures are logged and swallowed.
type AuditNotifier interface {
	SecurityEvent(message string) error
}

// ClockService is the per-(employee, shop) clock-in/clock-out toggle state
// machine. It owns admission policy evaluation, consent gating, and the
// handoff to the remote approval workflow.
type ClockService struct {
	Store     Store
	Geocoder  *geo.Geocoder
	Approvals *ApprovalWorkflow
	Audit     AuditNotifier
	Logger    *logrus.Logger

	// Locker optionally serializes toggles per (employee, shop) across
	// service instances. The store's open-entry guard remains the authority;
	// the lock just avoids burning a round trip on the common duplicate-tap
	// case. Nil when redis is not configured.
	Locker *redislock.Client

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *ClockService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Toggle is the single public clock operation: it detects whether the
// employee is on or off duty at the shop and runs the matching transition.
func (s *ClockService) Toggle(ctx context.Context, employeeID, shopID uint, channel Channel, opts ToggleOptions) (*ToggleResult, error) {
	if !channel.Valid() {
		return nil, &ValidationError{Field: "channel", Message: fmt.Sprintf("unknown channel %q", channel)}
	}

	employee, err := s.Store.Employee(ctx, employeeID)
	if err != nil {
		return nil, storeFailure("read employee", err)
	}
	if employee == nil || !employee.Active {
		return nil, &NotFoundError{Resource: "employee"}
	}

	shop, err := s.Store.Shop(ctx, shopID)
	if err != nil {
		return nil, storeFailure("read shop", err)
	}
	if shop == nil {
		return nil, &NotFoundError{Resource: "shop"}
	}
	if !shop.ChannelEnabled(string(channel)) {
		return nil, &ValidationError{Field: "channel", Message: fmt.Sprintf("the %s channel is disabled for this shop", channel)}
	}

	if err := CheckConsent(employee.LocationConsent, channel); err != nil {
		return nil, err
	}

	if s.Locker != nil {
		lock, lockErr := s.Locker.Obtain(ctx, toggleLockKey(employeeID, shopID), 10*time.Second, nil)
		if lockErr == nil {
			defer lock.Release(context.WithoutCancel(ctx))
		} else if lockErr == redislock.ErrNotObtained {
			return nil, storeFailure("toggle", errors.New("another clock action is in progress"))
		}
		// any other lock error degrades to the store guard
	}

	open, err := s.Store.OpenEntry(ctx, employeeID, shopID)
	if err != nil {
		return nil, storeFailure("read open entry", err)
	}

	if open == nil {
		return s.clockIn(ctx, employee, shop, channel, opts)
	}
	return s.clockOut(ctx, open, channel, opts)
}

func (s *ClockService) clockIn(ctx context.Context, employee *core.Employee, shop *core.Shop, channel Channel, opts ToggleOptions) (*ToggleResult, error) {
	coords, err := s.acquireLocation(ctx, channel.RequiresLocation(), opts)
	if err != nil {
		return nil, err
	}

	var distance *float64
	if coords != nil {
		distance = utils.Ptr(geo.DistanceMeters(coords.Latitude, coords.Longitude, shop.Latitude, shop.Longitude))
	}

	decision := EvaluateAdmission(channel, distance, shop)
	if decision == Deny {
		violation := &PolicyViolation{
			Channel:        channel,
			RadiusMeters:   shop.Radius(),
			DistanceMeters: *distance,
		}
		s.notifyAudit(fmt.Sprintf("clock-in denied for employee %d at shop %d: %s",
			employee.EmployeeId, shop.ShopId, violation.Error()))
		return nil, violation
	}

	now := s.now()
	entry := &core.ClockEntry{
		EmployeeId:     employee.EmployeeId,
		ShopId:         shop.ShopId,
		ClockInTime:    now,
		ClockInChannel: string(channel),
	}
	if coords != nil {
		entry.ClockInLat = utils.Ptr(coords.Latitude)
		entry.ClockInLon = utils.Ptr(coords.Longitude)
		entry.ClockInPlace = utils.Ptr(s.Geocoder.PlaceName(ctx, coords.Latitude, coords.Longitude))
	}

	if err := s.Store.InsertEntry(ctx, entry); err != nil {
		if err == core.ErrOpenEntryExists {
			return nil, ErrAlreadyClockedIn
		}
		return nil, storeFailure("insert entry", err)
	}

	result := &ToggleResult{
		Action:  ActionClockIn,
		Entry:   entry,
		Message: fmt.Sprintf("Clocked in via %s", channel),
	}

	if decision == FlagForReview && distance != nil {
		created, reviewErr := s.Approvals.RequestReview(ctx, entry, *coords, *distance)
		if reviewErr != nil {
			// the clock-in already stands; the missing governance record is
			// logged and reported, never unwound
			s.logError("clockIn", reviewErr)
			s.notifyAudit(fmt.Sprintf("failed to enqueue review for entry %s: %v", entry.Id, reviewErr))
		}
		result.ReviewRequested = created
		if created {
			result.Message = fmt.Sprintf("Clocked in via %s; remote location flagged for review (%.0f m from shop)", channel, *distance)
			s.notifyAudit(fmt.Sprintf("remote clock-in flagged for review: employee %d at shop %d, %.0f m away",
				employee.EmployeeId, shop.ShopId, *distance))
		}
	}

	return result, nil
}

func (s *ClockService) clockOut(ctx context.Context, open *core.ClockEntry, channel Channel, opts ToggleOptions) (*ToggleResult, error) {
	// best-effort on every channel here: a failed fix never blocks leaving
	coords, _ := s.acquireLocation(ctx, false, opts)

	now := s.now()
	hours := RoundHours(now.Sub(open.ClockInTime))

	fields := core.CloseFields{
		ClockOutTime:    now,
		ClockOutChannel: string(channel),
		HoursWorked:     hours,
	}
	if coords != nil {
		fields.ClockOutLat = utils.Ptr(coords.Latitude)
		fields.ClockOutLon = utils.Ptr(coords.Longitude)
	}

	if err := s.Store.CloseEntry(ctx, open.Id, fields); err != nil {
		if err == core.ErrEntryAlreadyClosed {
			return nil, ErrAlreadyClockedOut
		}
		return nil, storeFailure("close entry", err)
	}

	open.ClockOutTime = &fields.ClockOutTime
	open.ClockOutChannel = utils.Ptr(fields.ClockOutChannel)
	open.ClockOutLat = fields.ClockOutLat
	open.ClockOutLon = fields.ClockOutLon
	open.HoursWorked = utils.Ptr(hours)

	return &ToggleResult{
		Action:  ActionClockOut,
		Entry:   open,
		Message: fmt.Sprintf("Clocked out — %.2f hours", hours),
	}, nil
}

// acquireLocation resolves coordinates for the action. When required, a
// missing fix is fatal; otherwise the action degrades silently.
func (s *ClockService) acquireLocation(ctx context.Context, required bool, opts ToggleOptions) (*geo.Coordinates, error) {
	coords := opts.Coordinates
	if coords == nil && opts.Provider != nil {
		acquireCtx, cancel := context.WithTimeout(ctx, geo.AcquireTimeout)
		acquired, err := opts.Provider.Acquire(acquireCtx)
		cancel()
		if err != nil {
			s.logError("acquireLocation", err)
		} else {
			coords = acquired
		}
	}

	if coords == nil && required {
		return nil, &ValidationError{Field: "location", Message: "a device location is required for this channel"}
	}
	return coords, nil
}

// RoundHours converts an elapsed duration to hours rounded to two decimals.
func RoundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

// notifyAudit emits a security-audit event without ever blocking or failing
// the primary action.
func (s *ClockService) notifyAudit(message string) {
	if s.Audit == nil {
		return
	}
	go func() {
		if err := s.Audit.SecurityEvent(message); err != nil {
			s.logError("notifyAudit", err)
		}
	}()
}

func (s *ClockService) logError(funcName string, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithFields(logrus.Fields{
		"module":   "attendance",
		"funcName": funcName,
	}).Warn(err.Error())
}

func toggleLockKey(employeeID, shopID uint) string {
	return fmt.Sprintf("clock-toggle:%d:%d", employeeID, shopID)
}
