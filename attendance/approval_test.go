package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcrew.com/shopcrew/core"
	"shopcrew.com/shopcrew/utils"
)

func setupReviewedClockIn(t *testing.T, store *fakeStore, svc *ClockService) *core.RemoteApprovalRequest {
	t.Helper()

	result, err := svc.Toggle(context.Background(), 1, 10, ChannelGPS, ToggleOptions{
		Coordinates: coordsAtDistance(5000),
	})
	require.NoError(t, err)
	require.True(t, result.ReviewRequested)

	for _, req := range store.requests {
		return req
	}
	t.Fatal("no request created")
	return nil
}

func TestRejectForceClosesOpenEntry(t *testing.T) {
	store := newFakeStore()
	seedEmployee(store, 1, 10, core.ConsentGranted)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, start)
	req := setupReviewedClockIn(t, store, svc)

	// owner rejects 90 minutes in
	rejectedAt := start.Add(90 * time.Minute)
	svc.Approvals.Now = func() time.Time { return rejectedAt }

	reason := utils.Ptr("Not authorized")
	updated, err := svc.Approvals.Reject(context.Background(), req.Id, "owner", reason)
	require.NoError(t, err)
	assert.Equal(t, core.ApprovalRejected, updated.Status)
	require.NotNil(t, updated.RejectionReason)
	assert.Equal(t, "Not authorized", *updated.RejectionReason)

	// the entry is closed at the rejection instant, not before or after
	open, _ := store.OpenEntry(context.Background(), 1, 10)
	assert.Nil(t, open)

	entry := store.entries[req.ClockEntryId]
	require.NotNil(t, entry.ClockOutTime)
	assert.Equal(t, rejectedAt, *entry.ClockOutTime)
	require.NotNil(t, entry.HoursWorked)
	assert.Equal(t, 1.50, *entry.HoursWorked)
}

func TestRejectAfterManualClockOutLeavesEntryAlone(t *testing.T) {
	store := newFakeStore()
	seedEmployee(store, 1, 10, core.ConsentGranted)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, start)
	req := setupReviewedClockIn(t, store, svc)

	// employee clocks out themselves first
	svc.Now = func() time.Time { return start.Add(time.Hour) }
	_, err := svc.Toggle(context.Background(), 1, 10, ChannelGPS, ToggleOptions{
		Coordinates: coordsAtDistance(5000),
	})
	require.NoError(t, err)

	svc.Approvals.Now = func() time.Time { return start.Add(3 * time.Hour) }
	_, err = svc.Approvals.Reject(context.Background(), req.Id, "owner", nil)
	require.NoError(t, err)

	// hours stay at the employee's own clock-out
	entry := store.entries[req.ClockEntryId]
	assert.Equal(t, 1.00, *entry.HoursWorked)
}

func TestApproveKeepsEntryOpen(t *testing.T) {
	store := newFakeStore()
	seedEmployee(store, 1, 10, core.ConsentGranted)
	svc := newTestService(store, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	req := setupReviewedClockIn(t, store, svc)

	updated, err := svc.Approvals.Approve(context.Background(), req.Id, "owner")
	require.NoError(t, err)
	assert.Equal(t, core.ApprovalApproved, updated.Status)
	require.NotNil(t, updated.Reviewer)
	assert.Equal(t, "owner", *updated.Reviewer)

	// approval never touches the attendance record
	open, _ := store.OpenEntry(context.Background(), 1, 10)
	require.NotNil(t, open)
	assert.Nil(t, open.ClockOutTime)
	assert.Equal(t, 1, store.entryCount())
}

func TestDecisionOnNonPendingRequest(t *testing.T) {
	store := newFakeStore()
	seedEmployee(store, 1, 10, core.ConsentGranted)
	svc := newTestService(store, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	req := setupReviewedClockIn(t, store, svc)

	_, err := svc.Approvals.Approve(context.Background(), req.Id, "owner")
	require.NoError(t, err)

	// a second decision finds no pending request
	_, err = svc.Approvals.Reject(context.Background(), req.Id, "owner", nil)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPendingListsOldestFirstPerShop(t *testing.T) {
	store := newFakeStore()
	seedEmployee(store, 1, 10, core.ConsentGranted)
	svc := newTestService(store, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	setupReviewedClockIn(t, store, svc)

	reqs, err := svc.Approvals.Pending(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)

	other, err := svc.Approvals.Pending(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStandingApprovalMatchesDay(t *testing.T) {
	monday := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	approval := core.StandingApproval{
		EmployeeId: 1,
		ShopId:     10,
		Weekdays:   "1,3,5",
		ValidFrom:  utils.MustParseDate("2026-02-01"),
		ValidTo:    utils.MustParseDate("2026-04-01"),
		Active:     true,
	}

	assert.True(t, approval.MatchesDay(monday))
	assert.False(t, approval.MatchesDay(monday.AddDate(0, 0, 1)), "Tuesday not covered")
	assert.False(t, approval.MatchesDay(monday.AddDate(0, 2, 0)), "outside date range")

	approval.Active = false
	assert.False(t, approval.MatchesDay(monday))
}
