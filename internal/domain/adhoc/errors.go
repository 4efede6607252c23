package adhoc

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrItemNotFound         = apperror.New(apperror.KindNotFound, "ad hoc item not found")
	ErrItemAlreadyProcessed = apperror.New(apperror.KindValidation, "ad hoc item already processed")
	ErrInvalidTransition    = apperror.New(apperror.KindValidation, "invalid ad hoc item status transition")
	ErrApprovedExceedsClaim = apperror.New(apperror.KindValidation, "approved amount exceeds claimed amount")
	ErrInvalidPeriod        = apperror.New(apperror.KindValidation, "period end is before period start")
)
