package adhoc

import "context"

// AdHocService manages the lifecycle of ad hoc items and their consumption by payslips.
type AdHocService interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (Item, error)
	GetItem(ctx context.Context, id string) (Item, error)
	Submit(ctx context.Context, id string) (Item, error)
	Approve(ctx context.Context, id string, req ApproveItemRequest) (Item, error)
	Reject(ctx context.Context, id string, req RejectItemRequest) (Item, error)
	Cancel(ctx context.Context, id string) (Item, error)

	// GetApprovedTotals aggregates approved items for the period. Processed items never appear.
	GetApprovedTotals(ctx context.Context, employeeID, companyID string, month, year int) (Totals, error)

	// MarkProcessed consumes items exactly once; ErrItemAlreadyProcessed when any of them is no longer approved.
	MarkProcessed(ctx context.Context, ids []string, payrollRunID, payslipID string) error
}
