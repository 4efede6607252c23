package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft      RunStatus = "draft"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
	RunStatusLocked     RunStatus = "locked"
)

// CanTransitionTo encodes draft -> processing -> completed|failed, failed -> processing
// and completed -> locked. locked is terminal.
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	switch s {
	case RunStatusDraft, RunStatusFailed:
		return next == RunStatusProcessing
	case RunStatusProcessing:
		return next == RunStatusCompleted || next == RunStatusFailed
	case RunStatusCompleted:
		return next == RunStatusLocked
	}
	return false
}

// RunTotals are summed from the payslips of a run.
type RunTotals struct {
	GrossSalary           decimal.Decimal `json:"gross_salary"`
	TotalDeductions       decimal.Decimal `json:"total_deductions"`
	NetSalary             decimal.Decimal `json:"net_salary"`
	IncomeTax             decimal.Decimal `json:"income_tax"`
	EmployerContributions decimal.Decimal `json:"employer_contributions"`
}

func ZeroTotals() RunTotals {
	return RunTotals{
		GrossSalary:           decimal.Zero,
		TotalDeductions:       decimal.Zero,
		NetSalary:             decimal.Zero,
		IncomeTax:             decimal.Zero,
		EmployerContributions: decimal.Zero,
	}
}

// Add folds one payslip into the totals.
func (t RunTotals) Add(p Payslip) RunTotals {
	return RunTotals{
		GrossSalary:           t.GrossSalary.Add(p.FinalGrossSalary),
		TotalDeductions:       t.TotalDeductions.Add(p.TotalDeductions),
		NetSalary:             t.NetSalary.Add(p.NetSalary),
		IncomeTax:             t.IncomeTax.Add(p.IncomeTax),
		EmployerContributions: t.EmployerContributions.Add(p.SocialSecurityEmployer).Add(p.HealthInsuranceEmployer),
	}
}

// EmployeeFailure records why one employee got no payslip in a run.
type EmployeeFailure struct {
	EmployeeID string `json:"employee_id"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
}

// PayrollRun - company batch for one month. Immutable once locked.
type PayrollRun struct {
	ID                 string
	CompanyID          string
	Month              int
	Year               int
	FinancialYear      string
	Status             RunStatus
	TotalEmployees     int
	ProcessedEmployees int
	FailedEmployees    int
	Totals             RunTotals
	FailureDetails     []EmployeeFailure
	ProcessedBy        *string
	ProcessedAt        *time.Time
	LockedBy           *string
	LockedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PayslipStatus enum
type PayslipStatus string

const (
	PayslipStatusGenerated  PayslipStatus = "generated"
	PayslipStatusApproved   PayslipStatus = "approved"
	PayslipStatusSent       PayslipStatus = "sent"
	PayslipStatusDownloaded PayslipStatus = "downloaded"
)

// Next returns the only status a payslip may move to from s.
func (s PayslipStatus) Next() (PayslipStatus, bool) {
	switch s {
	case PayslipStatusGenerated:
		return PayslipStatusApproved, true
	case PayslipStatusApproved:
		return PayslipStatusSent, true
	case PayslipStatusSent:
		return PayslipStatusDownloaded, true
	}
	return "", false
}

// YearToDate sums payslips of the same employee and calendar year up to and including the current month.
type YearToDate struct {
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	IncomeTax       decimal.Decimal `json:"income_tax"`
}

func (y YearToDate) Add(p Payslip) YearToDate {
	return YearToDate{
		GrossSalary:     y.GrossSalary.Add(p.FinalGrossSalary),
		TotalDeductions: y.TotalDeductions.Add(p.TotalDeductions),
		NetSalary:       y.NetSalary.Add(p.NetSalary),
		IncomeTax:       y.IncomeTax.Add(p.IncomeTax),
	}
}

// Payslip - immutable financial snapshot of one employee in one run.
// Only Status changes after creation.
type Payslip struct {
	ID                  string
	PayslipNumber       string
	EmployeeID          string
	CompanyID           string
	PayrollRunID        string
	Month               int
	Year                int
	FinancialYear       string
	EmployeeStructureID string
	CTC                 decimal.Decimal
	BasicSalary         decimal.Decimal
	GrossSalary         decimal.Decimal
	EarningsBreakdown   map[string]decimal.Decimal
	DeductionsBreakdown map[string]decimal.Decimal

	WorkingDays     int
	PresentDays     int
	AbsentDays      int
	LeaveDays       int
	LossOfPayDays   int
	ProRataFactor   decimal.Decimal
	LossOfPayAmount decimal.Decimal

	VariablePayTotal       decimal.Decimal
	ArrearsTotal           decimal.Decimal
	ReimbursementTotal     decimal.Decimal
	VariablePayBreakdown   map[string]decimal.Decimal
	ArrearsBreakdown       map[string]decimal.Decimal
	ReimbursementBreakdown map[string]decimal.Decimal

	FinalGrossSalary        decimal.Decimal
	TaxableIncome           decimal.Decimal
	IncomeTax               decimal.Decimal
	LocalTax                decimal.Decimal
	SocialSecurityEmployee  decimal.Decimal
	SocialSecurityEmployer  decimal.Decimal
	HealthInsuranceEmployee decimal.Decimal
	HealthInsuranceEmployer decimal.Decimal
	ExemptionsBreakdown     map[string]decimal.Decimal

	LoanDeductionTotal      decimal.Decimal
	LoanDeductionsBreakdown map[string]decimal.Decimal
	TotalDeductions         decimal.Decimal
	NetSalary               decimal.Decimal

	YTD       YearToDate
	Status    PayslipStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmployeeResult is the outcome of one employee in a run: a payslip or the error that prevented it.
type EmployeeResult struct {
	EmployeeID string
	Payslip    *Payslip
	Err        error
}

// RunSummary is returned by ProcessPayrollRun.
type RunSummary struct {
	RunID     string
	Status    RunStatus
	Total     int
	Processed int
	Failed    int
	Totals    RunTotals
	Failures  []EmployeeFailure
}
