package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shopcrew.com/shopcrew/core"
	"shopcrew.com/shopcrew/utils"
	"shopcrew.com/shopcrew/web/common"
)

type standingApprovalRequest struct {
	EmployeeID uint            `json:"employeeId" binding:"required"`
	Weekdays   []int           `json:"weekdays" binding:"required,min=1,dive,min=0,max=6"`
	ValidFrom  common.DateOnly `json:"validFrom" binding:"required"`
	ValidTo    common.DateOnly `json:"validTo" binding:"required"`
}

// CreateStandingApprovalHandler handles POST /api/shops/:shopId/standing-approvals.
// A standing approval lets matching remote clock-ins stand without joining the
// review queue; weekdays use 0 (Sunday) through 6 (Saturday).
func (h *Handler) CreateStandingApprovalHandler(c *gin.Context) {
	shopID, err := shopIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	var body standingApprovalRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}
	if body.ValidTo.Before(body.ValidFrom.Time) {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("validTo must not be before validFrom"))
		return
	}

	approval := &core.StandingApproval{
		EmployeeId: body.EmployeeID,
		ShopId:     shopID,
		Weekdays:   strings.Join(utils.Map(body.Weekdays, strconv.Itoa), ","),
		ValidFrom:  body.ValidFrom.Time,
		ValidTo:    body.ValidTo.Time,
		Active:     true,
	}
	if err := core.InsertStandingApproval(h.DM.DB.WithContext(c.Request.Context()), approval); err != nil {
		c.JSON(http.StatusServiceUnavailable, common.NewErrorResponse("temporarily unavailable, please retry"))
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(approval))
}
