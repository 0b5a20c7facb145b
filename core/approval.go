package core

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shopcrew.com/shopcrew/utils"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// RemoteApprovalRequest is the governance record created when a GPS clock-in
// lands outside the review threshold. Requests are never deleted; the table
// is the audit trail for remote work.
type RemoteApprovalRequest struct {
	Id               string `gorm:"primaryKey;size:36"`
	EmployeeId       uint   `gorm:"index"`
	ShopId           uint   `gorm:"index"`
	ClockEntryId     string `gorm:"size:36;index"`
	RequestedAt      time.Time
	Latitude         float64
	Longitude        float64
	DistanceFromShop float64
	Status           ApprovalStatus `gorm:"size:16;default:pending;index"`
	Reviewer         *string        `gorm:"size:64"`
	RejectionReason  *string        `gorm:"size:256"`
	ReviewedAt       *time.Time
	CreatedAt        time.Time
}

func InsertApprovalRequest(db *gorm.DB, req *RemoteApprovalRequest) error {
	if req.Id == "" {
		req.Id = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = ApprovalPending
	}
	return db.Create(req).Error
}

func FindApprovalRequestByID(db *gorm.DB, id string) (*RemoteApprovalRequest, error) {
	var req RemoteApprovalRequest
	result := db.First(&req, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &req, nil
}

// UpdateApprovalStatus records a reviewer decision. Only pending requests can
// transition; a second decision matches zero rows.
func UpdateApprovalStatus(db *gorm.DB, id string, status ApprovalStatus, reviewer string, reason *string, at time.Time) (bool, error) {
	result := db.Model(&RemoteApprovalRequest{}).
		Where("id = ? AND status = ?", id, ApprovalPending).
		Updates(map[string]interface{}{
			"status":           status,
			"reviewer":         reviewer,
			"rejection_reason": reason,
			"reviewed_at":      at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func FindPendingApprovalRequests(db *gorm.DB, shopID uint) ([]RemoteApprovalRequest, error) {
	var reqs []RemoteApprovalRequest
	err := db.Where("shop_id = ? AND status = ?", shopID, ApprovalPending).
		Order("requested_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// StandingApproval is a recurring exception that lets matching remote
// clock-ins stand without per-instance review.
type StandingApproval struct {
	Id         uint   `gorm:"primaryKey;autoIncrement"`
	EmployeeId uint   `gorm:"index"`
	ShopId     uint   `gorm:"index"`
	Weekdays   string `gorm:"size:32"` // comma-separated time.Weekday numbers, e.g. "1,2,3"
	ValidFrom  time.Time
	ValidTo    time.Time
	Active     bool `gorm:"default:true"`
	CreatedAt  time.Time
}

// MatchesDay reports whether the approval covers the given instant.
func (sa *StandingApproval) MatchesDay(at time.Time) bool {
	if !sa.Active {
		return false
	}
	day := at.Truncate(24 * time.Hour)
	if day.Before(sa.ValidFrom.Truncate(24*time.Hour)) || day.After(sa.ValidTo.Truncate(24*time.Hour)) {
		return false
	}
	want := int(at.Weekday())
	for _, part := range strings.Split(sa.Weekdays, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil && n == want {
			return true
		}
	}
	return false
}

// FindActiveStandingApprovals returns the approvals that cover the given
// instant for an employee at a shop.
func FindActiveStandingApprovals(db *gorm.DB, employeeID, shopID uint, at time.Time) ([]StandingApproval, error) {
	var approvals []StandingApproval
	err := db.Where("employee_id = ? AND shop_id = ? AND active = ?", employeeID, shopID, true).
		Where("DATE(valid_from) <= DATE(?) AND DATE(valid_to) >= DATE(?)", at, at).
		Find(&approvals).Error
	if err != nil {
		return nil, err
	}
	return utils.Filter(approvals, func(sa StandingApproval) bool {
		return sa.MatchesDay(at)
	}), nil
}

func InsertStandingApproval(db *gorm.DB, approval *StandingApproval) error {
	return db.Create(approval).Error
}
