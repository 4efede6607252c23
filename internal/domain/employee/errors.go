package employee

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrEmployeeNotFound  = apperror.New(apperror.KindNotFound, "employee not found")
	ErrEmployeeNotActive = apperror.New(apperror.KindValidation, "employee is not active")
)
