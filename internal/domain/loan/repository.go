package loan

import "context"

// LoanRepository defines persistence for loans and their deduction ledger.
type LoanRepository interface {
	Create(ctx context.Context, l Loan) (Loan, error)
	GetByID(ctx context.Context, id, companyID string) (Loan, error)

	// GetForUpdate loads the loan and locks its row for the rest of the surrounding transaction.
	GetForUpdate(ctx context.Context, id string) (Loan, error)

	ListActiveByEmployee(ctx context.Context, employeeID, companyID string) ([]Loan, error)

	// UpdateBalances persists outstanding/paid totals, status and closedAt.
	UpdateBalances(ctx context.Context, l Loan) error
	UpdateStatus(ctx context.Context, id, companyID string, from, to Status) error

	DeductionExists(ctx context.Context, loanID string, month, year int) (bool, error)
	// CreateDeduction returns ErrDeductionConflict when (loan, month, year) already exists.
	CreateDeduction(ctx context.Context, d Deduction) (Deduction, error)
	ListDeductions(ctx context.Context, loanID string) ([]Deduction, error)
}
