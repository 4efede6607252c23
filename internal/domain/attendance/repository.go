package attendance

import (
	"context"
	"time"
)

// RecordRepository reads raw attendance and leave data. Attendance record-keeping itself lives elsewhere;
// payroll only reads. All methods include companyID to prevent cross-company data access.
type RecordRepository interface {
	// ListDailyRecords returns the employee's attendance rows with from <= date <= to.
	ListDailyRecords(ctx context.Context, employeeID, companyID string, from, to time.Time) ([]DailyRecord, error)

	// ListPaidLeaveDays returns each calendar day covered by an approved, paid leave request.
	ListPaidLeaveDays(ctx context.Context, employeeID, companyID string, from, to time.Time) ([]time.Time, error)

	// ListHolidays returns company holidays in the range.
	ListHolidays(ctx context.Context, companyID string, from, to time.Time) ([]time.Time, error)
}
