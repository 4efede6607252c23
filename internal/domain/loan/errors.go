package loan

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrLoanNotFound            = apperror.New(apperror.KindNotFound, "loan not found")
	ErrLoanNotActive           = apperror.New(apperror.KindValidation, "loan is not active")
	ErrDeductionAlreadyExists  = apperror.New(apperror.KindValidation, "loan deduction already recorded for this period")
	ErrDeductionConflict       = apperror.New(apperror.KindConflict, "concurrent loan deduction for this period")
	ErrPeriodOutsideSchedule   = apperror.New(apperror.KindValidation, "deduction period is outside the loan tenure")
	ErrInvalidStatusTransition = apperror.New(apperror.KindValidation, "invalid loan status transition")
)
