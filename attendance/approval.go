package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"shopcrew.com/shopcrew/core"
	"shopcrew.com/shopcrew/geo"
	"shopcrew.com/shopcrew/utils"
)

// ReviewNotifier tells reviewers about a newly queued request. Best-effort;
// failures never reach the toggle flow.
type ReviewNotifier interface {
	ReviewRequested(req *core.RemoteApprovalRequest) error
}

// ApprovalWorkflow manages the human-review queue created when a remote
// clock-in lands outside the review threshold. The clock-in itself has
// already succeeded by the time a request exists; the queue is governance,
// not a gate.
type ApprovalWorkflow struct {
	Store    Store
	Notifier ReviewNotifier
	Logger   *logrus.Logger

	Now func() time.Time
}

func (w *ApprovalWorkflow) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// RequestReview queues a request for the entry unless a standing approval
// covers the current weekday and date, in which case the clock-in stands
// unreviewed. Returns whether a request was created.
func (w *ApprovalWorkflow) RequestReview(ctx context.Context, entry *core.ClockEntry, coords geo.Coordinates, distance float64) (bool, error) {
	standing, err := w.Store.ActiveStandingApprovals(ctx, entry.EmployeeId, entry.ShopId, w.now())
	if err != nil {
		return false, storeFailure("read standing approvals", err)
	}
	if len(standing) > 0 {
		return false, nil
	}

	req := &core.RemoteApprovalRequest{
		EmployeeId:       entry.EmployeeId,
		ShopId:           entry.ShopId,
		ClockEntryId:     entry.Id,
		RequestedAt:      w.now(),
		Latitude:         coords.Latitude,
		Longitude:        coords.Longitude,
		DistanceFromShop: distance,
	}
	if err := w.Store.InsertApprovalRequest(ctx, req); err != nil {
		return false, storeFailure("insert approval request", err)
	}

	w.notifyReviewers(req)
	return true, nil
}

// Approve records the reviewer's acceptance. The entry created at clock-in
// time stays the single source of truth; approval only flips the request's
// status.
func (w *ApprovalWorkflow) Approve(ctx context.Context, requestID, reviewer string) (*core.RemoteApprovalRequest, error) {
	return w.decide(ctx, requestID, core.ApprovalApproved, reviewer, nil)
}

// Reject records the reviewer's refusal and, when the employee still has an
// open entry, force-closes it at the current instant. The compensating close
// bounds the unreviewed session; hours already logged are kept.
func (w *ApprovalWorkflow) Reject(ctx context.Context, requestID, reviewer string, reason *string) (*core.RemoteApprovalRequest, error) {
	req, err := w.decide(ctx, requestID, core.ApprovalRejected, reviewer, reason)
	if err != nil {
		return nil, err
	}

	open, err := w.Store.OpenEntry(ctx, req.EmployeeId, req.ShopId)
	if err != nil {
		return nil, storeFailure("read open entry", err)
	}
	if open != nil {
		now := w.now()
		fields := core.CloseFields{
			ClockOutTime:    now,
			ClockOutChannel: "remote-review",
			HoursWorked:     RoundHours(now.Sub(open.ClockInTime)),
		}
		if err := w.Store.CloseEntry(ctx, open.Id, fields); err != nil && err != core.ErrEntryAlreadyClosed {
			return nil, storeFailure("force close entry", err)
		}
	}

	return req, nil
}

func (w *ApprovalWorkflow) decide(ctx context.Context, requestID string, status core.ApprovalStatus, reviewer string, reason *string) (*core.RemoteApprovalRequest, error) {
	updated, err := w.Store.UpdateApprovalStatus(ctx, requestID, status, reviewer, reason, w.now())
	if err != nil {
		return nil, storeFailure("update approval status", err)
	}
	if !updated {
		return nil, &NotFoundError{Resource: "pending approval request", Detail: requestID}
	}

	req, err := w.Store.ApprovalRequest(ctx, requestID)
	if err != nil {
		return nil, storeFailure("read approval request", err)
	}
	if req == nil {
		return nil, &NotFoundError{Resource: "approval request", Detail: requestID}
	}
	return req, nil
}

// Pending lists the shop's open review queue, oldest first.
func (w *ApprovalWorkflow) Pending(ctx context.Context, shopID uint) ([]core.RemoteApprovalRequest, error) {
	reqs, err := w.Store.PendingApprovalRequests(ctx, shopID)
	if err != nil {
		return nil, storeFailure("read pending requests", err)
	}
	return reqs, nil
}

func (w *ApprovalWorkflow) notifyReviewers(req *core.RemoteApprovalRequest) {
	if w.Notifier == nil {
		return
	}
	snapshot := utils.Ptr(*req)
	go func() {
		if err := w.Notifier.ReviewRequested(snapshot); err != nil && w.Logger != nil {
			w.Logger.WithFields(logrus.Fields{
				"module":   "attendance",
				"funcName": "notifyReviewers",
			}).Warn(fmt.Sprintf("review notification failed: %v", err))
		}
	}()
}
