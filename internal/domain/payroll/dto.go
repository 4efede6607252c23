package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type CreatePayrollRunRequest struct {
	CompanyID string `json:"-"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
}

func (r *CreatePayrollRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "is required"})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "is invalid"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ProcessPayrollRunRequest struct {
	ProcessedBy string `json:"processed_by"`
}

type LockPayrollRunRequest struct {
	LockedBy string `json:"locked_by"`
}

type UpdatePayslipStatusRequest struct {
	Status string `json:"status"`
}

type PayrollRunResponse struct {
	ID                 string            `json:"id"`
	CompanyID          string            `json:"company_id"`
	Month              int               `json:"month"`
	Year               int               `json:"year"`
	FinancialYear      string            `json:"financial_year"`
	Status             string            `json:"status"`
	TotalEmployees     int               `json:"total_employees"`
	ProcessedEmployees int               `json:"processed_employees"`
	FailedEmployees    int               `json:"failed_employees"`
	Totals             RunTotals         `json:"totals"`
	FailureDetails     []EmployeeFailure `json:"failure_details,omitempty"`
	ProcessedBy        *string           `json:"processed_by,omitempty"`
	ProcessedAt        *string           `json:"processed_at,omitempty"`
	LockedBy           *string           `json:"locked_by,omitempty"`
	LockedAt           *string           `json:"locked_at,omitempty"`
}

func ToRunResponse(r PayrollRun) PayrollRunResponse {
	return PayrollRunResponse{
		ID:                 r.ID,
		CompanyID:          r.CompanyID,
		Month:              r.Month,
		Year:               r.Year,
		FinancialYear:      r.FinancialYear,
		Status:             string(r.Status),
		TotalEmployees:     r.TotalEmployees,
		ProcessedEmployees: r.ProcessedEmployees,
		FailedEmployees:    r.FailedEmployees,
		Totals:             r.Totals,
		FailureDetails:     r.FailureDetails,
		ProcessedBy:        r.ProcessedBy,
		ProcessedAt:        formatTime(r.ProcessedAt),
		LockedBy:           r.LockedBy,
		LockedAt:           formatTime(r.LockedAt),
	}
}

type RunSummaryResponse struct {
	RunID     string            `json:"run_id"`
	Status    string            `json:"status"`
	Total     int               `json:"total_employees"`
	Processed int               `json:"processed_employees"`
	Failed    int               `json:"failed_employees"`
	Totals    RunTotals         `json:"totals"`
	Failures  []EmployeeFailure `json:"failures,omitempty"`
}

func ToSummaryResponse(s RunSummary) RunSummaryResponse {
	return RunSummaryResponse{
		RunID:     s.RunID,
		Status:    string(s.Status),
		Total:     s.Total,
		Processed: s.Processed,
		Failed:    s.Failed,
		Totals:    s.Totals,
		Failures:  s.Failures,
	}
}

// ========== PAYSLIP DTOs ==========

type PayslipResponse struct {
	ID                      string                     `json:"id"`
	PayslipNumber           string                     `json:"payslip_number"`
	EmployeeID              string                     `json:"employee_id"`
	PayrollRunID            string                     `json:"payroll_run_id"`
	Month                   int                        `json:"month"`
	Year                    int                        `json:"year"`
	FinancialYear           string                     `json:"financial_year"`
	BasicSalary             decimal.Decimal            `json:"basic_salary"`
	GrossSalary             decimal.Decimal            `json:"gross_salary"`
	EarningsBreakdown       map[string]decimal.Decimal `json:"earnings_breakdown"`
	DeductionsBreakdown     map[string]decimal.Decimal `json:"deductions_breakdown"`
	WorkingDays             int                        `json:"working_days"`
	PresentDays             int                        `json:"present_days"`
	AbsentDays              int                        `json:"absent_days"`
	LeaveDays               int                        `json:"leave_days"`
	LossOfPayDays           int                        `json:"loss_of_pay_days"`
	LossOfPayAmount         decimal.Decimal            `json:"loss_of_pay_amount"`
	VariablePayTotal        decimal.Decimal            `json:"variable_pay_total"`
	ArrearsTotal            decimal.Decimal            `json:"arrears_total"`
	ReimbursementTotal      decimal.Decimal            `json:"reimbursement_total"`
	VariablePayBreakdown    map[string]decimal.Decimal `json:"variable_pay_breakdown,omitempty"`
	ArrearsBreakdown        map[string]decimal.Decimal `json:"arrears_breakdown,omitempty"`
	ReimbursementBreakdown  map[string]decimal.Decimal `json:"reimbursement_breakdown,omitempty"`
	FinalGrossSalary        decimal.Decimal            `json:"final_gross_salary"`
	TaxableIncome           decimal.Decimal            `json:"taxable_income"`
	IncomeTax               decimal.Decimal            `json:"income_tax"`
	LocalTax                decimal.Decimal            `json:"local_tax"`
	SocialSecurityEmployee  decimal.Decimal            `json:"social_security_employee"`
	SocialSecurityEmployer  decimal.Decimal            `json:"social_security_employer"`
	HealthInsuranceEmployee decimal.Decimal            `json:"health_insurance_employee"`
	HealthInsuranceEmployer decimal.Decimal            `json:"health_insurance_employer"`
	ExemptionsBreakdown     map[string]decimal.Decimal `json:"exemptions_breakdown,omitempty"`
	LoanDeductionTotal      decimal.Decimal            `json:"loan_deduction_total"`
	LoanDeductionsBreakdown map[string]decimal.Decimal `json:"loan_deductions_breakdown,omitempty"`
	TotalDeductions         decimal.Decimal            `json:"total_deductions"`
	NetSalary               decimal.Decimal            `json:"net_salary"`
	YTD                     YearToDate                 `json:"ytd"`
	Status                  string                     `json:"status"`
}

func ToPayslipResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:                      p.ID,
		PayslipNumber:           p.PayslipNumber,
		EmployeeID:              p.EmployeeID,
		PayrollRunID:            p.PayrollRunID,
		Month:                   p.Month,
		Year:                    p.Year,
		FinancialYear:           p.FinancialYear,
		BasicSalary:             p.BasicSalary,
		GrossSalary:             p.GrossSalary,
		EarningsBreakdown:       p.EarningsBreakdown,
		DeductionsBreakdown:     p.DeductionsBreakdown,
		WorkingDays:             p.WorkingDays,
		PresentDays:             p.PresentDays,
		AbsentDays:              p.AbsentDays,
		LeaveDays:               p.LeaveDays,
		LossOfPayDays:           p.LossOfPayDays,
		LossOfPayAmount:         p.LossOfPayAmount,
		VariablePayTotal:        p.VariablePayTotal,
		ArrearsTotal:            p.ArrearsTotal,
		ReimbursementTotal:      p.ReimbursementTotal,
		VariablePayBreakdown:    p.VariablePayBreakdown,
		ArrearsBreakdown:        p.ArrearsBreakdown,
		ReimbursementBreakdown:  p.ReimbursementBreakdown,
		FinalGrossSalary:        p.FinalGrossSalary,
		TaxableIncome:           p.TaxableIncome,
		IncomeTax:               p.IncomeTax,
		LocalTax:                p.LocalTax,
		SocialSecurityEmployee:  p.SocialSecurityEmployee,
		SocialSecurityEmployer:  p.SocialSecurityEmployer,
		HealthInsuranceEmployee: p.HealthInsuranceEmployee,
		HealthInsuranceEmployer: p.HealthInsuranceEmployer,
		ExemptionsBreakdown:     p.ExemptionsBreakdown,
		LoanDeductionTotal:      p.LoanDeductionTotal,
		LoanDeductionsBreakdown: p.LoanDeductionsBreakdown,
		TotalDeductions:         p.TotalDeductions,
		NetSalary:               p.NetSalary,
		YTD:                     p.YTD,
		Status:                  string(p.Status),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
