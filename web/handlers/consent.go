package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcrew.com/shopcrew/web/common"
)

type consentRequest struct {
	Granted       *bool  `json:"granted" binding:"required"`
	PolicyVersion string `json:"policyVersion" binding:"required"`
}

// ResolveConsentHandler handles POST /api/shops/:shopId/employees/:employeeId/consent,
// answering the location-tracking prompt that suspends terminal clock actions.
func (h *Handler) ResolveConsentHandler(c *gin.Context) {
	employeeID, err := employeeIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	var body consentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	if err := h.Clock.ResolveConsent(c.Request.Context(), employeeID, *body.Granted, body.PolicyVersion); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"resolved": true}))
}

// ConsentStateHandler handles GET /api/shops/:shopId/employees/:employeeId/consent,
// feeding the prompt the clock screens raise when consent is unset.
func (h *Handler) ConsentStateHandler(c *gin.Context) {
	employeeID, err := employeeIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	employee, err := h.Store.Employee(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if employee == nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("employee not found"))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"state":         employee.LocationConsent,
		"policyVersion": employee.ConsentPolicyVersion,
		"consentAt":     employee.ConsentAt,
	}))
}
