package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcrew.com/shopcrew/payroll"
	"shopcrew.com/shopcrew/web/common"
)

// PendingApprovalsHandler handles GET /api/shops/:shopId/approvals/pending.
func (h *Handler) PendingApprovalsHandler(c *gin.Context) {
	shopID, err := shopIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	reqs, err := h.Approvals.Pending(c.Request.Context(), shopID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(reqs, int64(len(reqs))))
}

type decisionRequest struct {
	Reviewer string  `json:"reviewer" binding:"required"`
	Reason   *string `json:"reason"`
}

// ApproveRequestHandler handles POST /api/shops/:shopId/approvals/:requestId/approve.
func (h *Handler) ApproveRequestHandler(c *gin.Context) {
	var body decisionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	req, err := h.Approvals.Approve(c.Request.Context(), c.Param("requestId"), body.Reviewer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(req))
}

// RejectRequestHandler handles POST /api/shops/:shopId/approvals/:requestId/reject.
// Rejection force-closes any still-open entry for the employee.
func (h *Handler) RejectRequestHandler(c *gin.Context) {
	var body decisionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	req, err := h.Approvals.Reject(c.Request.Context(), c.Param("requestId"), body.Reviewer, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(req))
}

// ExportApprovalsHandler handles GET /api/shops/:shopId/approvals/export,
// streaming the pending queue as an XLSX workbook.
func (h *Handler) ExportApprovalsHandler(c *gin.Context) {
	shopID, err := shopIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	reqs, err := h.Approvals.Pending(c.Request.Context(), shopID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="remote-approvals.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := payroll.ExportReviewAudit(c.Writer, reqs); err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
	}
}
