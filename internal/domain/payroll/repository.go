package payroll

import (
	"context"
	"time"
)

// RunRepository persists payroll runs.
type RunRepository interface {
	// Create returns ErrRunAlreadyExists when (company, month, year) is taken.
	Create(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetByID(ctx context.Context, id string) (PayrollRun, error)

	// TransitionStatus is a compare-and-set on status; ErrRunStatusChanged when the row is no longer in from.
	TransitionStatus(ctx context.Context, id string, from, to RunStatus) error

	// SaveOutcome writes status, counters, totals, failure details and processing metadata.
	SaveOutcome(ctx context.Context, run PayrollRun) error
	Lock(ctx context.Context, id, lockedBy string, at time.Time) error

	// FailStale moves runs stuck in processing since before olderThan to failed and returns them.
	FailStale(ctx context.Context, olderThan time.Time, reason EmployeeFailure) ([]PayrollRun, error)
}

// PayslipRepository persists payslips. Financial columns are write-once.
type PayslipRepository interface {
	// Create returns ErrPayslipAlreadyExists when the employee already has a payslip in the run.
	Create(ctx context.Context, p Payslip) (Payslip, error)
	GetByID(ctx context.Context, id string) (Payslip, error)
	GetByEmployeeAndRun(ctx context.Context, employeeID, runID string) (Payslip, error)
	ListByEmployee(ctx context.Context, employeeID, companyID string, year *int) ([]Payslip, error)
	ListByRun(ctx context.Context, runID string) ([]Payslip, error)

	// SumYearToDate sums payslips of months before month in the same calendar year.
	SumYearToDate(ctx context.Context, employeeID, companyID string, month, year int) (YearToDate, error)

	UpdateStatus(ctx context.Context, id string, from, to PayslipStatus) error
}
