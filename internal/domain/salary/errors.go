package salary

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrActiveStructureNotFound = apperror.New(apperror.KindNotFound, "no active salary structure for employee")
	ErrStructureNotFound       = apperror.New(apperror.KindNotFound, "salary structure not found")
	ErrInvalidComponent        = apperror.New(apperror.KindValidation, "invalid salary component")
	ErrInvalidCTC              = apperror.New(apperror.KindValidation, "ctc must be positive")
)
