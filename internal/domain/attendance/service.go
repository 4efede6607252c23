package attendance

import "context"

// Source is the attendance aggregate consumed by payslip composition.
type Source interface {
	GetMonthlyAggregate(ctx context.Context, employeeID, companyID string, month, year int) (MonthlyAggregate, error)
}
