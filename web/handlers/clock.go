package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopcrew.com/shopcrew/attendance"
	"shopcrew.com/shopcrew/geo"
	"shopcrew.com/shopcrew/web/common"
)

// ClockRequest is one toggle action. Either employeeId (tag/code/gps, where
// the device knows who it belongs to) or pin (shared terminal) identifies
// the employee.
type ClockRequest struct {
	EmployeeID uint     `json:"employeeId"`
	Pin        string   `json:"pin"`
	Channel    string   `json:"channel" binding:"required,oneof=tag code terminal gps"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// ClockToggleHandler handles POST /api/shops/:shopId/clock.
func (h *Handler) ClockToggleHandler(c *gin.Context) {
	shopID, err := shopIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	var req ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	employeeID := req.EmployeeID
	if req.Pin != "" {
		employee, lookupErr := h.Store.EmployeeByPin(c.Request.Context(), shopID, req.Pin)
		if lookupErr != nil {
			respondError(c, lookupErr)
			return
		}
		if employee == nil {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("PIN matches no active employee"))
			return
		}
		employeeID = employee.EmployeeId
	}
	if employeeID == 0 {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("employeeId or pin is required"))
		return
	}

	opts := attendance.ToggleOptions{}
	if req.Latitude != nil && req.Longitude != nil {
		opts.Coordinates = &geo.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	result, err := h.Clock.Toggle(c.Request.Context(), employeeID, shopID, attendance.Channel(req.Channel), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(result))
}

func shopIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("shopId"), 10, 32)
	if err != nil {
		return 0, &attendance.ValidationError{Field: "shopId", Message: "must be a positive integer"}
	}
	return uint(id), nil
}

func employeeIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("employeeId"), 10, 32)
	if err != nil {
		return 0, &attendance.ValidationError{Field: "employeeId", Message: "must be a positive integer"}
	}
	return uint(id), nil
}
