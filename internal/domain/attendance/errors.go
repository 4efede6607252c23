package attendance

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrInvalidPeriod = apperror.New(apperror.KindValidation, "invalid attendance period")
)
