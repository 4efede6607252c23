package payroll

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrRunNotFound          = apperror.New(apperror.KindNotFound, "payroll run not found")
	ErrRunAlreadyExists     = apperror.New(apperror.KindConflict, "payroll run already exists for this period")
	ErrRunLocked            = apperror.New(apperror.KindValidation, "payroll run is locked")
	ErrRunAlreadyCompleted  = apperror.New(apperror.KindValidation, "payroll run already completed")
	ErrRunAlreadyProcessing = apperror.New(apperror.KindConflict, "payroll run is already being processed")
	ErrRunNotCompleted      = apperror.New(apperror.KindValidation, "only completed payroll runs can be locked")
	ErrRunStatusChanged     = apperror.New(apperror.KindConflict, "payroll run status changed concurrently")
	ErrInvalidPeriod        = apperror.New(apperror.KindValidation, "invalid payroll period")
	ErrPeriodMismatch       = apperror.New(apperror.KindValidation, "period does not match the payroll run")

	ErrPayslipNotFound         = apperror.New(apperror.KindNotFound, "payslip not found")
	ErrPayslipAlreadyExists    = apperror.New(apperror.KindConflict, "payslip already exists for this employee and run")
	ErrInvalidStatusTransition = apperror.New(apperror.KindValidation, "invalid payslip status transition")
)
