package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shopcrew.com/shopcrew/core"
)

// fakeStore is the in-memory Store used by the service tests.
type fakeStore struct {
	employees map[uint]*core.Employee
	shops     map[uint]*core.Shop
	entries   map[string]*core.ClockEntry
	requests  map[string]*core.RemoteApprovalRequest
	standing  []core.StandingApproval

	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: make(map[uint]*core.Employee),
		shops:     make(map[uint]*core.Shop),
		entries:   make(map[string]*core.ClockEntry),
		requests:  make(map[string]*core.RemoteApprovalRequest),
	}
}

func (f *fakeStore) Employee(ctx context.Context, id uint) (*core.Employee, error) {
	return f.employees[id], nil
}

func (f *fakeStore) EmployeeByPin(ctx context.Context, shopID uint, pin string) (*core.Employee, error) {
	for _, emp := range f.employees {
		if emp.ShopId == shopID && emp.StaffPin == pin && emp.Active {
			return emp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateEmployeeConsent(ctx context.Context, employeeID uint, state core.ConsentState, policyVersion string, at time.Time) error {
	if emp, ok := f.employees[employeeID]; ok {
		emp.LocationConsent = state
		emp.ConsentAt = &at
		emp.ConsentPolicyVersion = &policyVersion
	}
	return nil
}

func (f *fakeStore) Shop(ctx context.Context, id uint) (*core.Shop, error) {
	return f.shops[id], nil
}

func (f *fakeStore) OpenEntry(ctx context.Context, employeeID, shopID uint) (*core.ClockEntry, error) {
	for _, e := range f.entries {
		if e.EmployeeId == employeeID && e.ShopId == shopID && e.ClockOutTime == nil {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertEntry(ctx context.Context, entry *core.ClockEntry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if open, _ := f.OpenEntry(ctx, entry.EmployeeId, entry.ShopId); open != nil {
		return core.ErrOpenEntryExists
	}
	if entry.Id == "" {
		entry.Id = uuid.NewString()
	}
	f.entries[entry.Id] = entry
	return nil
}

func (f *fakeStore) CloseEntry(ctx context.Context, entryID string, fields core.CloseFields) error {
	entry, ok := f.entries[entryID]
	if !ok || entry.ClockOutTime != nil {
		return core.ErrEntryAlreadyClosed
	}
	entry.ClockOutTime = &fields.ClockOutTime
	entry.ClockOutChannel = &fields.ClockOutChannel
	entry.ClockOutLat = fields.ClockOutLat
	entry.ClockOutLon = fields.ClockOutLon
	hours := fields.HoursWorked
	entry.HoursWorked = &hours
	return nil
}

func (f *fakeStore) ClosedEntries(ctx context.Context, employeeID, shopID uint, from, to time.Time) ([]core.ClockEntry, error) {
	var out []core.ClockEntry
	for _, e := range f.entries {
		if e.EmployeeId == employeeID && e.ShopId == shopID && e.ClockOutTime != nil &&
			!e.ClockInTime.Before(from) && e.ClockInTime.Before(to) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertApprovalRequest(ctx context.Context, req *core.RemoteApprovalRequest) error {
	if req.Id == "" {
		req.Id = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = core.ApprovalPending
	}
	f.requests[req.Id] = req
	return nil
}

func (f *fakeStore) ApprovalRequest(ctx context.Context, id string) (*core.RemoteApprovalRequest, error) {
	return f.requests[id], nil
}

func (f *fakeStore) UpdateApprovalStatus(ctx context.Context, id string, status core.ApprovalStatus, reviewer string, reason *string, at time.Time) (bool, error) {
	req, ok := f.requests[id]
	if !ok || req.Status != core.ApprovalPending {
		return false, nil
	}
	req.Status = status
	req.Reviewer = &reviewer
	req.RejectionReason = reason
	req.ReviewedAt = &at
	return true, nil
}

func (f *fakeStore) PendingApprovalRequests(ctx context.Context, shopID uint) ([]core.RemoteApprovalRequest, error) {
	var out []core.RemoteApprovalRequest
	for _, r := range f.requests {
		if r.ShopId == shopID && r.Status == core.ApprovalPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ActiveStandingApprovals(ctx context.Context, employeeID, shopID uint, at time.Time) ([]core.StandingApproval, error) {
	var out []core.StandingApproval
	for _, sa := range f.standing {
		if sa.EmployeeId == employeeID && sa.ShopId == shopID && sa.MatchesDay(at) {
			out = append(out, sa)
		}
	}
	return out, nil
}

func (f *fakeStore) pendingCount() int {
	n := 0
	for _, r := range f.requests {
		if r.Status == core.ApprovalPending {
			n++
		}
	}
	return n
}

func (f *fakeStore) entryCount() int {
	return len(f.entries)
}
