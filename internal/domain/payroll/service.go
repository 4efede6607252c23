package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
)

// GeneratePayslipRequest identifies one employee in one run. A nil TaxConfig is resolved
// from the run's financial year.
type GeneratePayslipRequest struct {
	EmployeeID string
	RunID      string
	CompanyID  string
	Month      int
	Year       int
	TaxConfig  *tax.Configuration
}

// PayrollService defines payroll run orchestration and payslip access.
type PayrollService interface {
	CreatePayrollRun(ctx context.Context, req CreatePayrollRunRequest) (PayrollRun, error)
	ProcessPayrollRun(ctx context.Context, runID, processedBy string) (RunSummary, error)
	LockPayrollRun(ctx context.Context, runID, lockedBy string) (PayrollRun, error)
	GetPayrollRun(ctx context.Context, runID string) (PayrollRun, error)

	GeneratePayslipForEmployee(ctx context.Context, req GeneratePayslipRequest) (Payslip, error)
	GetPayslip(ctx context.Context, id string) (Payslip, error)
	ListPayslipsByEmployee(ctx context.Context, employeeID, companyID string, year *int) ([]Payslip, error)
	ListPayslipsByRun(ctx context.Context, runID string) ([]Payslip, error)
	UpdatePayslipStatus(ctx context.Context, id string, status PayslipStatus) (Payslip, error)
}
