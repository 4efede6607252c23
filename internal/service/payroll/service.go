package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
)

// Options tunes run processing.
type Options struct {
	// Workers bounds concurrent employees; keep it at or below the DB pool size.
	Workers         int
	EmployeeTimeout time.Duration
	FYStartMonth    int
	// Progress is optional.
	Progress payroll.ProgressPublisher
}

type PayrollServiceImpl struct {
	runRepo      payroll.RunRepository
	payslipRepo  payroll.PayslipRepository
	employeeRepo employee.EmployeeRepository
	taxService   tax.TaxService
	composer     *Composer
	opts         Options
}

func NewPayrollService(
	runRepo payroll.RunRepository,
	payslipRepo payroll.PayslipRepository,
	employeeRepo employee.EmployeeRepository,
	taxService tax.TaxService,
	composer *Composer,
	opts Options,
) payroll.PayrollService {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.FYStartMonth == 0 {
		opts.FYStartMonth = 4
	}
	if opts.Progress == nil {
		opts.Progress = discardProgress{}
	}
	return &PayrollServiceImpl{
		runRepo:      runRepo,
		payslipRepo:  payslipRepo,
		employeeRepo: employeeRepo,
		taxService:   taxService,
		composer:     composer,
		opts:         opts,
	}
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) CreatePayrollRun(ctx context.Context, req payroll.CreatePayrollRunRequest) (payroll.PayrollRun, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRun{}, err
	}

	run, err := s.runRepo.Create(ctx, payroll.PayrollRun{
		CompanyID:     req.CompanyID,
		Month:         req.Month,
		Year:          req.Year,
		FinancialYear: payroll.FinancialYearLabel(req.Month, req.Year, s.opts.FYStartMonth),
		Status:        payroll.RunStatusDraft,
		Totals:        payroll.ZeroTotals(),
	})
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return run, nil
}

func (s *PayrollServiceImpl) GetPayrollRun(ctx context.Context, runID string) (payroll.PayrollRun, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

func (s *PayrollServiceImpl) LockPayrollRun(ctx context.Context, runID, lockedBy string) (payroll.PayrollRun, error) {
	run, err := s.GetPayrollRun(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	if run.Status == payroll.RunStatusLocked {
		return payroll.PayrollRun{}, payroll.ErrRunLocked
	}
	if run.Status != payroll.RunStatusCompleted {
		return payroll.PayrollRun{}, payroll.ErrRunNotCompleted
	}

	now := time.Now()
	if err := s.runRepo.Lock(ctx, run.ID, lockedBy, now); err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to lock payroll run: %w", err)
	}

	run.Status = payroll.RunStatusLocked
	run.LockedBy = &lockedBy
	run.LockedAt = &now
	return run, nil
}

// ========== PAYSLIPS ==========

// GeneratePayslipForEmployee composes a single payslip outside a batch. Run counters are
// left to ProcessPayrollRun, so only runs that will still be processed accept payslips.
func (s *PayrollServiceImpl) GeneratePayslipForEmployee(ctx context.Context, req payroll.GeneratePayslipRequest) (payroll.Payslip, error) {
	run, err := s.GetPayrollRun(ctx, req.RunID)
	if err != nil {
		return payroll.Payslip{}, err
	}
	if run.CompanyID != req.CompanyID {
		return payroll.Payslip{}, payroll.ErrRunNotFound
	}
	if run.Month != req.Month || run.Year != req.Year {
		return payroll.Payslip{}, payroll.ErrPeriodMismatch
	}
	switch run.Status {
	case payroll.RunStatusLocked:
		return payroll.Payslip{}, payroll.ErrRunLocked
	case payroll.RunStatusCompleted:
		return payroll.Payslip{}, payroll.ErrRunAlreadyCompleted
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, req.CompanyID)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if emp.EmploymentStatus != employee.EmploymentStatusActive {
		return payroll.Payslip{}, employee.ErrEmployeeNotActive
	}

	cfg := req.TaxConfig
	if cfg == nil {
		resolved, err := s.taxService.GetConfiguration(ctx, run.CompanyID, run.FinancialYear)
		if err != nil {
			return payroll.Payslip{}, err
		}
		cfg = &resolved
	}

	return s.composer.Compose(ctx, ComposeInput{
		EmployeeID:    req.EmployeeID,
		CompanyID:     run.CompanyID,
		RunID:         run.ID,
		Month:         run.Month,
		Year:          run.Year,
		FinancialYear: run.FinancialYear,
		TaxConfig:     *cfg,
	})
}

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.Payslip, error) {
	p, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return p, nil
}

func (s *PayrollServiceImpl) ListPayslipsByEmployee(ctx context.Context, employeeID, companyID string, year *int) ([]payroll.Payslip, error) {
	payslips, err := s.payslipRepo.ListByEmployee(ctx, employeeID, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	return payslips, nil
}

func (s *PayrollServiceImpl) ListPayslipsByRun(ctx context.Context, runID string) ([]payroll.Payslip, error) {
	if _, err := s.GetPayrollRun(ctx, runID); err != nil {
		return nil, err
	}
	payslips, err := s.payslipRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	return payslips, nil
}

// UpdatePayslipStatus only moves one step forward: generated, approved, sent, downloaded.
func (s *PayrollServiceImpl) UpdatePayslipStatus(ctx context.Context, id string, status payroll.PayslipStatus) (payroll.Payslip, error) {
	p, err := s.GetPayslip(ctx, id)
	if err != nil {
		return payroll.Payslip{}, err
	}

	next, ok := p.Status.Next()
	if !ok || next != status {
		return payroll.Payslip{}, payroll.ErrInvalidStatusTransition
	}
	if err := s.payslipRepo.UpdateStatus(ctx, id, p.Status, status); err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to update payslip status: %w", err)
	}

	p.Status = status
	return p, nil
}

type discardProgress struct{}

func (discardProgress) Publish(string, string, any) {}

func failureOf(employeeID string, err error) payroll.EmployeeFailure {
	return payroll.EmployeeFailure{
		EmployeeID: employeeID,
		Kind:       string(apperror.KindOf(err)),
		Reason:     err.Error(),
	}
}
