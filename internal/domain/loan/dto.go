package loan

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateLoanRequest struct {
	CompanyID           string          `json:"-"`
	EmployeeID          string          `json:"employee_id"`
	PrincipalAmount     decimal.Decimal `json:"principal_amount"`
	AnnualInterestRate  decimal.Decimal `json:"annual_interest_rate"`
	TenureMonths        int             `json:"tenure_months"`
	StartDate           string          `json:"start_date"`
	DeductionStartMonth int             `json:"deduction_start_month"`
	DeductionStartYear  int             `json:"deduction_start_year"`
}

func (r *CreateLoanRequest) Validate() (time.Time, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "is required")
	}
	if !r.PrincipalAmount.IsPositive() {
		errs.Add("principal_amount", "must be positive")
	}
	if r.AnnualInterestRate.IsNegative() {
		errs.Add("annual_interest_rate", "must be non-negative")
	}
	if r.TenureMonths <= 0 {
		errs.Add("tenure_months", "must be positive")
	}
	startDate, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs.Add("start_date", "must be YYYY-MM-DD")
	}
	if r.DeductionStartMonth == 0 && r.DeductionStartYear == 0 && ok {
		r.DeductionStartMonth = int(startDate.Month())
		r.DeductionStartYear = startDate.Year()
	}
	if !validator.IsValidMonth(r.DeductionStartMonth) {
		errs.Add("deduction_start_month", "must be between 1 and 12")
	}
	if ok && r.DeductionStartYear*12+r.DeductionStartMonth < startDate.Year()*12+int(startDate.Month()) {
		errs.Add("deduction_start_month", "must not be before the loan start date")
	}

	return startDate, errs.Err()
}

type UpdateLoanStatusRequest struct {
	Status string `json:"status"`
}

type LoanResponse struct {
	ID                   string          `json:"id"`
	EmployeeID           string          `json:"employee_id"`
	CompanyID            string          `json:"company_id"`
	PrincipalAmount      decimal.Decimal `json:"principal_amount"`
	AnnualInterestRate   decimal.Decimal `json:"annual_interest_rate"`
	TenureMonths         int             `json:"tenure_months"`
	EMI                  decimal.Decimal `json:"emi"`
	StartDate            string          `json:"start_date"`
	DeductionStartMonth  int             `json:"deduction_start_month"`
	DeductionStartYear   int             `json:"deduction_start_year"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	InstallmentsPaid     int             `json:"installments_paid"`
	TotalAmountPaid      decimal.Decimal `json:"total_amount_paid"`
	TotalInterestPaid    decimal.Decimal `json:"total_interest_paid"`
	Status               string          `json:"status"`
}

func ToResponse(l Loan) LoanResponse {
	return LoanResponse{
		ID:                   l.ID,
		EmployeeID:           l.EmployeeID,
		CompanyID:            l.CompanyID,
		PrincipalAmount:      l.PrincipalAmount,
		AnnualInterestRate:   l.AnnualInterestRate,
		TenureMonths:         l.TenureMonths,
		EMI:                  l.EMI,
		StartDate:            l.StartDate.Format("2006-01-02"),
		DeductionStartMonth:  l.DeductionStartMonth,
		DeductionStartYear:   l.DeductionStartYear,
		OutstandingPrincipal: l.OutstandingPrincipal,
		InstallmentsPaid:     l.InstallmentsPaid,
		TotalAmountPaid:      l.TotalAmountPaid,
		TotalInterestPaid:    l.TotalInterestPaid,
		Status:               string(l.Status),
	}
}
