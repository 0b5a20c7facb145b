package payroll

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"shopcrew.com/shopcrew/core"
)

// ExportReviewAudit writes the remote-approval audit trail to an XLSX sheet
// for the owner review screen's download button.
func ExportReviewAudit(w io.Writer, requests []core.RemoteApprovalRequest) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Remote Approvals"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Request ID", "Employee ID", "Requested At", "Distance (m)", "Status", "Reviewer", "Reason", "Reviewed At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, req := range requests {
		values := []interface{}{
			req.Id,
			req.EmployeeId,
			req.RequestedAt.Format("2006-01-02 15:04"),
			req.DistanceFromShop,
			string(req.Status),
			deref(req.Reviewer),
			deref(req.RejectionReason),
			"",
		}
		if req.ReviewedAt != nil {
			values[7] = req.ReviewedAt.Format("2006-01-02 15:04")
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f.Write(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
