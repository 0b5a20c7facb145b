package attendance

import (
	"context"
	"time"

	"shopcrew.com/shopcrew/core"
)

// Store abstracts the backing store operations the attendance core consumes.
// The gorm implementation is GormStore; tests inject an in-memory fake.
type Store interface {
	Employee(ctx context.Context, id uint) (*core.Employee, error)
	EmployeeByPin(ctx context.Context, shopID uint, pin string) (*core.Employee, error)
	UpdateEmployeeConsent(ctx context.Context, employeeID uint, state core.ConsentState, policyVersion string, at time.Time) error
	Shop(ctx context.Context, id uint) (*core.Shop, error)

	OpenEntry(ctx context.Context, employeeID, shopID uint) (*core.ClockEntry, error)
	InsertEntry(ctx context.Context, entry *core.ClockEntry) error
	CloseEntry(ctx context.Context, entryID string, fields core.CloseFields) error
	ClosedEntries(ctx context.Context, employeeID, shopID uint, from, to time.Time) ([]core.ClockEntry, error)

	InsertApprovalRequest(ctx context.Context, req *core.RemoteApprovalRequest) error
	ApprovalRequest(ctx context.Context, id string) (*core.RemoteApprovalRequest, error)
	UpdateApprovalStatus(ctx context.Context, id string, status core.ApprovalStatus, reviewer string, reason *string, at time.Time) (bool, error)
	PendingApprovalRequests(ctx context.Context, shopID uint) ([]core.RemoteApprovalRequest, error)
	ActiveStandingApprovals(ctx context.Context, employeeID, shopID uint, at time.Time) ([]core.StandingApproval, error)
}

// GormStore implements Store over the shared DatabaseManager.
type GormStore struct {
	DM *core.DatabaseManager
}

func NewGormStore(dm *core.DatabaseManager) *GormStore {
	return &GormStore{DM: dm}
}

func (s *GormStore) Employee(ctx context.Context, id uint) (*core.Employee, error) {
	return core.FindEmployeeByID(s.DM.DB.WithContext(ctx), id)
}

func (s *GormStore) EmployeeByPin(ctx context.Context, shopID uint, pin string) (*core.Employee, error) {
	return core.FindEmployeeByPin(s.DM.DB.WithContext(ctx), shopID, pin)
}

func (s *GormStore) UpdateEmployeeConsent(ctx context.Context, employeeID uint, state core.ConsentState, policyVersion string, at time.Time) error {
	return core.UpdateEmployeeConsent(s.DM.DB.WithContext(ctx), employeeID, state, policyVersion, at)
}

func (s *GormStore) Shop(ctx context.Context, id uint) (*core.Shop, error) {
	return core.FindShopByID(s.DM.DB.WithContext(ctx), id)
}

func (s *GormStore) OpenEntry(ctx context.Context, employeeID, shopID uint) (*core.ClockEntry, error) {
	return core.FindOpenEntry(s.DM.DB.WithContext(ctx), employeeID, shopID)
}

func (s *GormStore) InsertEntry(ctx context.Context, entry *core.ClockEntry) error {
	return core.InsertClockEntry(s.DM.DB.WithContext(ctx), entry)
}

func (s *GormStore) CloseEntry(ctx context.Context, entryID string, fields core.CloseFields) error {
	return core.CloseClockEntry(s.DM.DB.WithContext(ctx), entryID, fields)
}

func (s *GormStore) ClosedEntries(ctx context.Context, employeeID, shopID uint, from, to time.Time) ([]core.ClockEntry, error) {
	return core.FindClosedEntries(s.DM.DB.WithContext(ctx), employeeID, shopID, from, to)
}

func (s *GormStore) InsertApprovalRequest(ctx context.Context, req *core.RemoteApprovalRequest) error {
	return core.InsertApprovalRequest(s.DM.DB.WithContext(ctx), req)
}

func (s *GormStore) ApprovalRequest(ctx context.Context, id string) (*core.RemoteApprovalRequest, error) {
	return core.FindApprovalRequestByID(s.DM.DB.WithContext(ctx), id)
}

func (s *GormStore) UpdateApprovalStatus(ctx context.Context, id string, status core.ApprovalStatus, reviewer string, reason *string, at time.Time) (bool, error) {
	return core.UpdateApprovalStatus(s.DM.DB.WithContext(ctx), id, status, reviewer, reason, at)
}

func (s *GormStore) PendingApprovalRequests(ctx context.Context, shopID uint) ([]core.RemoteApprovalRequest, error) {
	return core.FindPendingApprovalRequests(s.DM.DB.WithContext(ctx), shopID)
}

func (s *GormStore) ActiveStandingApprovals(ctx context.Context, employeeID, shopID uint, at time.Time) ([]core.StandingApproval, error) {
	return core.FindActiveStandingApprovals(s.DM.DB.WithContext(ctx), employeeID, shopID, at)
}
