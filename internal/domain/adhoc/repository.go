package adhoc

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ItemRepository defines persistence for variable pay, arrears and reimbursement items.
type ItemRepository interface {
	Create(ctx context.Context, item Item) (Item, error)
	GetByID(ctx context.Context, id string) (Item, error)

	// ListApproved returns items in status approved for the employee and period.
	ListApproved(ctx context.Context, employeeID, companyID string, month, year int) ([]Item, error)

	// UpdateStatus moves an item from one status to another; ErrInvalidTransition when the row is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to Status, reason *string) error
	Approve(ctx context.Context, id string, from Status, amount decimal.Decimal, approvedBy string, at time.Time) error

	// MarkProcessed flips approved items to processed and returns how many rows changed.
	MarkProcessed(ctx context.Context, ids []string, payrollRunID, payslipID string, at time.Time) (int64, error)
}
