package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shopcrew.com/shopcrew/attendance"
	"shopcrew.com/shopcrew/core"
	"shopcrew.com/shopcrew/security"
	"shopcrew.com/shopcrew/web/common"
)

// Handler bundles the services the attendance routes need.
type Handler struct {
	DM        *core.DatabaseManager
	Store     attendance.Store
	Clock     *attendance.ClockService
	Approvals *attendance.ApprovalWorkflow
	Verifier  *security.OwnerPinVerifier
	Logger    *logrus.Logger
}

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var validation *attendance.ValidationError
	var notFound *attendance.NotFoundError
	var violation *attendance.PolicyViolation
	var external *attendance.ExternalServiceFailure

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(validation.Error()))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, common.NewErrorResponse(notFound.Error()))
	case errors.As(err, &violation):
		c.JSON(http.StatusForbidden, common.NewErrorResponse(violation.Error()))
	case errors.Is(err, attendance.ErrConsentDenied):
		c.JSON(http.StatusForbidden, common.NewErrorResponse(err.Error()))
	case errors.Is(err, attendance.ErrConsentRequired):
		c.JSON(http.StatusConflict, common.NewErrorResponse(err.Error()))
	case errors.Is(err, attendance.ErrAlreadyClockedIn), errors.Is(err, attendance.ErrAlreadyClockedOut):
		c.JSON(http.StatusConflict, common.NewErrorResponse(err.Error()))
	case errors.As(err, &external):
		// retryable; no partial state was written
		c.JSON(http.StatusServiceUnavailable, common.NewErrorResponse("temporarily unavailable, please retry"))
	default:
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
	}
}
