package tax

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrConfigurationNotFound = apperror.New(apperror.KindNotFound, "tax configuration not found")
	ErrConfigurationExists   = apperror.New(apperror.KindConflict, "tax configuration already exists for this financial year")
	ErrInvalidExemptionType  = apperror.New(apperror.KindValidation, "invalid exemption policy")
)
