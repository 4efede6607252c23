package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LoanService defines loan lifecycle and payroll deduction bookkeeping.
type LoanService interface {
	CalculateEMI(principal, annualRatePercent decimal.Decimal, tenureMonths int) decimal.Decimal
	GenerateRepaymentSchedule(principal, annualRatePercent decimal.Decimal, tenureMonths int, startDate time.Time) []ScheduleEntry

	CreateLoan(ctx context.Context, req CreateLoanRequest) (Loan, error)
	GetLoan(ctx context.Context, id, companyID string) (Loan, error)
	GetRepaymentSchedule(ctx context.Context, id, companyID string) ([]ScheduleEntry, error)
	ListActiveLoans(ctx context.Context, employeeID, companyID string) ([]Loan, error)
	UpdateLoanStatus(ctx context.Context, id, companyID string, status Status) (Loan, error)

	// RecordDeduction books the scheduled installment for the period. It joins the caller's transaction if there is one.
	RecordDeduction(ctx context.Context, req DeductionRequest) (Deduction, error)
}
