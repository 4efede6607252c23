package adhoc

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateItemRequest struct {
	CompanyID     string          `json:"-"`
	Type          string          `json:"type"`
	EmployeeID    string          `json:"employee_id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Description   string          `json:"description"`
	ClaimedAmount decimal.Decimal `json:"claimed_amount"`
	PeriodStart   *string         `json:"period_start,omitempty"`
	PeriodEnd     *string         `json:"period_end,omitempty"`
}

// Validate checks the request and returns the parsed arrears period, if any.
func (r CreateItemRequest) Validate() (start, end *time.Time, err error) {
	var errs validator.ValidationErrors

	if !ItemType(r.Type).Valid() {
		errs.Add("type", "must be one of variable_pay, arrears, reimbursement")
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "is required")
	}
	if !validator.IsValidMonth(r.Month) {
		errs.Add("month", "must be between 1 and 12")
	}
	if !validator.IsValidYear(r.Year) {
		errs.Add("year", "is invalid")
	}
	if !r.ClaimedAmount.IsPositive() {
		errs.Add("claimed_amount", "must be positive")
	}

	start = parseOptionalDate(r.PeriodStart, "period_start", &errs)
	end = parseOptionalDate(r.PeriodEnd, "period_end", &errs)
	if ItemType(r.Type) == ItemTypeArrears && (start == nil || end == nil) {
		errs.Add("period", "period_start and period_end are required for arrears")
	}
	if err := errs.Err(); err != nil {
		return nil, nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, ErrInvalidPeriod
	}
	return start, end, nil
}

func parseOptionalDate(s *string, field string, errs *validator.ValidationErrors) *time.Time {
	if s == nil || validator.IsEmpty(*s) {
		return nil
	}
	d, ok := validator.IsValidDate(*s)
	if !ok {
		errs.Add(field, "must be YYYY-MM-DD")
		return nil
	}
	return &d
}

type ApproveItemRequest struct {
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
	ApprovedBy     string          `json:"approved_by"`
}

type RejectItemRequest struct {
	Reason string `json:"reason"`
}

type ItemResponse struct {
	ID             string           `json:"id"`
	Type           string           `json:"type"`
	EmployeeID     string           `json:"employee_id"`
	CompanyID      string           `json:"company_id"`
	Month          int              `json:"month"`
	Year           int              `json:"year"`
	Description    string           `json:"description"`
	ClaimedAmount  decimal.Decimal  `json:"claimed_amount"`
	ApprovedAmount *decimal.Decimal `json:"approved_amount,omitempty"`
	Status         string           `json:"status"`
	PayrollRunID   *string          `json:"payroll_run_id,omitempty"`
	PayslipID      *string          `json:"payslip_id,omitempty"`
}

func ToResponse(i Item) ItemResponse {
	return ItemResponse{
		ID:             i.ID,
		Type:           string(i.Type),
		EmployeeID:     i.EmployeeID,
		CompanyID:      i.CompanyID,
		Month:          i.Month,
		Year:           i.Year,
		Description:    i.Description,
		ClaimedAmount:  i.ClaimedAmount,
		ApprovedAmount: i.ApprovedAmount,
		Status:         string(i.Status),
		PayrollRunID:   i.PayrollRunID,
		PayslipID:      i.PayslipID,
	}
}
