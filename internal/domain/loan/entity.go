package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enum
type Status string

const (
	StatusActive    Status = "active"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
	StatusSuspended Status = "suspended"
)

// CanTransitionTo reports whether an explicit status change is allowed.
// closed is only reached through deduction bookkeeping.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusSuspended || next == StatusCancelled
	case StatusSuspended:
		return next == StatusActive || next == StatusCancelled
	}
	return false
}

// ScheduleEntry is one month of a repayment schedule. Month is 1-based.
type ScheduleEntry struct {
	Month              int             `json:"month"`
	PaymentDate        time.Time       `json:"payment_date"`
	EMI                decimal.Decimal `json:"emi"`
	PrincipalComponent decimal.Decimal `json:"principal_component"`
	InterestComponent  decimal.Decimal `json:"interest_component"`
	Outstanding        decimal.Decimal `json:"outstanding"`
}

// Loan - employee loan repaid through payroll.
// OutstandingPrincipal never increases while the loan is active.
type Loan struct {
	ID                   string
	EmployeeID           string
	CompanyID            string
	PrincipalAmount      decimal.Decimal
	AnnualInterestRate   decimal.Decimal
	TenureMonths         int
	EMI                  decimal.Decimal
	StartDate            time.Time
	DeductionStartMonth  int
	DeductionStartYear   int
	Schedule             []ScheduleEntry
	OutstandingPrincipal decimal.Decimal
	InstallmentsPaid     int
	TotalAmountPaid      decimal.Decimal
	TotalInterestPaid    decimal.Decimal
	Status               Status
	ClosedAt             *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DeductionStarted reports whether deductions are due for the given period.
func (l Loan) DeductionStarted(month, year int) bool {
	return year*12+month >= l.DeductionStartYear*12+l.DeductionStartMonth
}

// ScheduledEntry returns the installment due in the given period: the first unpaid schedule
// entry, once the deduction start period has been reached. Months without a deduction
// (suspension, a failed payslip) push the remaining installments back instead of dropping them.
func (l Loan) ScheduledEntry(month, year int) (ScheduleEntry, bool) {
	if !l.DeductionStarted(month, year) || l.InstallmentsPaid < 0 || l.InstallmentsPaid >= len(l.Schedule) {
		return ScheduleEntry{}, false
	}
	return l.Schedule[l.InstallmentsPaid], true
}

// Deduction - append-only ledger row, one per (LoanID, Month, Year)
type Deduction struct {
	ID                 string
	LoanID             string
	EmployeeID         string
	CompanyID          string
	PayrollRunID       string
	PayslipID          string
	Month              int
	Year               int
	EMI                decimal.Decimal
	PrincipalComponent decimal.Decimal
	InterestComponent  decimal.Decimal
	OutstandingAfter   decimal.Decimal
	CreatedAt          time.Time
}

// DeductionRequest identifies the period and payroll artefacts a deduction is booked against.
type DeductionRequest struct {
	LoanID       string
	EmployeeID   string
	CompanyID    string
	PayrollRunID string
	PayslipID    string
	Month        int
	Year         int
}
