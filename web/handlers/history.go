package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopcrew.com/shopcrew/payroll"
	"shopcrew.com/shopcrew/web/common"
)

// HistoryHandler handles GET /api/shops/:shopId/employees/:employeeId/entries
// — the staff-visible list of completed shifts in a date range.
func (h *Handler) HistoryHandler(c *gin.Context) {
	shopID, err := shopIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}
	employeeID, err := employeeIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	from, to, err := dateRangeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	entries, err := h.Store.ClosedEntries(c.Request.Context(), employeeID, shopID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(entries, int64(len(entries))))
}

// PayrollSummaryHandler handles GET /api/shops/:shopId/employees/:employeeId/payroll,
// the aggregation feed for the payroll screens.
func (h *Handler) PayrollSummaryHandler(c *gin.Context) {
	shopID, err := shopIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}
	employeeID, err := employeeIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	from, to, err := dateRangeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	summary, err := payroll.Summarize(c.Request.Context(), h.Store, employeeID, shopID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(summary))
}

// dateRangeQuery parses from/to query params, defaulting to the last 14 days.
func dateRangeQuery(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -14)
	to := now

	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// inclusive end date
		to = t.AddDate(0, 0, 1)
	}
	return from, to, nil
}
