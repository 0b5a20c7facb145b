package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"shopcrew.com/shopcrew/attendance"
	"shopcrew.com/shopcrew/core"
)

// EmployeeSummary is one payroll line: total hours and pay for an employee
// over a date range. Hours come straight off closed clock entries; open
// entries never count.
type EmployeeSummary struct {
	EmployeeId uint            `json:"employeeId"`
	Name       string          `json:"name"`
	Entries    int             `json:"entries"`
	TotalHours decimal.Decimal `json:"totalHours"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	TotalPay   decimal.Decimal `json:"totalPay"`
}

// Summarize aggregates an employee's closed entries over [from, to): sum of
// hours times the hourly rate, kept in decimal to avoid float drift on money.
func Summarize(ctx context.Context, store attendance.Store, employeeID, shopID uint, from, to time.Time) (*EmployeeSummary, error) {
	employee, err := store.Employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, &attendance.NotFoundError{Resource: "employee"}
	}

	entries, err := store.ClosedEntries(ctx, employeeID, shopID, from, to)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, entry := range entries {
		if entry.HoursWorked != nil {
			total = total.Add(decimal.NewFromFloat(*entry.HoursWorked))
		}
	}

	rate := decimal.NewFromFloat(employee.HourlyRate)
	return &EmployeeSummary{
		EmployeeId: employeeID,
		Name:       displayName(employee),
		Entries:    len(entries),
		TotalHours: total,
		HourlyRate: rate,
		TotalPay:   total.Mul(rate).Round(2),
	}, nil
}

func displayName(e *core.Employee) string {
	if e.PreferredName != "" {
		return e.PreferredName
	}
	return e.FirstName + " " + e.Surname
}
