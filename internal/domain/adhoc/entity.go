package adhoc

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType enum
type ItemType string

const (
	ItemTypeVariablePay   ItemType = "variable_pay"
	ItemTypeArrears       ItemType = "arrears"
	ItemTypeReimbursement ItemType = "reimbursement"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeVariablePay, ItemTypeArrears, ItemTypeReimbursement:
		return true
	}
	return false
}

// Status enum
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusProcessed Status = "processed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Final reports whether no further transition is possible.
func (s Status) Final() bool {
	return s == StatusProcessed || s == StatusRejected || s == StatusCancelled
}

// Item is a VariablePay, Arrears or Reimbursement record. Once processed it
// belongs to exactly one payroll run and payslip. ApprovedAmount is nil until approval.
type Item struct {
	ID             string
	Type           ItemType
	EmployeeID     string
	CompanyID      string
	Month          int
	Year           int
	Description    string
	ClaimedAmount  decimal.Decimal
	ApprovedAmount *decimal.Decimal
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	Status         Status
	ApprovedBy     *string
	ApprovedAt     *time.Time
	RejectedReason *string
	PayrollRunID   *string
	PayslipID      *string
	ProcessedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PayableAmount is the approved amount, falling back to the claim.
func (i Item) PayableAmount() decimal.Decimal {
	if i.ApprovedAmount != nil {
		return *i.ApprovedAmount
	}
	return i.ClaimedAmount
}

// Totals aggregates approved items for one employee and period.
// Breakdown maps are keyed by item ID.
type Totals struct {
	VariablePay            decimal.Decimal
	Arrears                decimal.Decimal
	Reimbursement          decimal.Decimal
	VariablePayBreakdown   map[string]decimal.Decimal
	ArrearsBreakdown       map[string]decimal.Decimal
	ReimbursementBreakdown map[string]decimal.Decimal
	ItemIDs                []string
}

func NewTotals() Totals {
	return Totals{
		VariablePay:            decimal.Zero,
		Arrears:                decimal.Zero,
		Reimbursement:          decimal.Zero,
		VariablePayBreakdown:   map[string]decimal.Decimal{},
		ArrearsBreakdown:       map[string]decimal.Decimal{},
		ReimbursementBreakdown: map[string]decimal.Decimal{},
	}
}

// Add folds one approved item into the totals.
func (t *Totals) Add(item Item) {
	amount := item.PayableAmount()
	switch item.Type {
	case ItemTypeVariablePay:
		t.VariablePay = t.VariablePay.Add(amount)
		t.VariablePayBreakdown[item.ID] = amount
	case ItemTypeArrears:
		t.Arrears = t.Arrears.Add(amount)
		t.ArrearsBreakdown[item.ID] = amount
	case ItemTypeReimbursement:
		t.Reimbursement = t.Reimbursement.Add(amount)
		t.ReimbursementBreakdown[item.ID] = amount
	default:
		return
	}
	t.ItemIDs = append(t.ItemIDs, item.ID)
}

// Total is the sum across all three types.
func (t Totals) Total() decimal.Decimal {
	return t.VariablePay.Add(t.Arrears).Add(t.Reimbursement)
}
