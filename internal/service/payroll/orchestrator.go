package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"golang.org/x/sync/errgroup"
)

// ProcessPayrollRun moves the run to processing, composes every active employee through a
// bounded worker pool and records the outcome. A failure scoped to one employee is counted;
// a failure that blocks the whole run, such as a missing tax configuration, marks the run
// failed and is returned.
func (s *PayrollServiceImpl) ProcessPayrollRun(ctx context.Context, runID, processedBy string) (payroll.RunSummary, error) {
	run, err := s.GetPayrollRun(ctx, runID)
	if err != nil {
		return payroll.RunSummary{}, err
	}

	switch run.Status {
	case payroll.RunStatusLocked:
		return payroll.RunSummary{}, payroll.ErrRunLocked
	case payroll.RunStatusCompleted:
		return payroll.RunSummary{}, payroll.ErrRunAlreadyCompleted
	case payroll.RunStatusProcessing:
		return payroll.RunSummary{}, payroll.ErrRunAlreadyProcessing
	}

	if err := s.runRepo.TransitionStatus(ctx, run.ID, run.Status, payroll.RunStatusProcessing); err != nil {
		return payroll.RunSummary{}, fmt.Errorf("failed to start payroll run: %w", err)
	}
	run.Status = payroll.RunStatusProcessing

	slog.InfoContext(ctx, "payroll run started",
		"run_id", run.ID, "company_id", run.CompanyID, "month", run.Month, "year", run.Year)

	summary, err := s.processRun(ctx, run, processedBy)
	if err != nil {
		s.markFailed(ctx, run, processedBy, err)
		return payroll.RunSummary{}, err
	}

	slog.InfoContext(ctx, "payroll run completed",
		"run_id", run.ID, "company_id", run.CompanyID,
		"processed", summary.Processed, "failed", summary.Failed, "net_total", summary.Totals.NetSalary.String())

	return summary, nil
}

func (s *PayrollServiceImpl) processRun(ctx context.Context, run payroll.PayrollRun, processedBy string) (payroll.RunSummary, error) {
	cfg, err := s.taxService.GetConfiguration(ctx, run.CompanyID, run.FinancialYear)
	if err != nil {
		return payroll.RunSummary{}, err
	}

	employeeIDs, err := s.employeeRepo.ListActive(ctx, run.CompanyID)
	if err != nil {
		return payroll.RunSummary{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	results := make([]payroll.EmployeeResult, len(employeeIDs))

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, employeeID := range employeeIDs {
		g.Go(func() error {
			results[i] = s.processEmployee(ctx, run, cfg, employeeID)
			s.publishEmployee(run.ID, results[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return payroll.RunSummary{}, fmt.Errorf("payroll run interrupted: %w", err)
	}

	totals := payroll.ZeroTotals()
	var failures []payroll.EmployeeFailure
	processed := 0
	for _, r := range results {
		if r.Err != nil {
			failures = append(failures, failureOf(r.EmployeeID, r.Err))
			continue
		}
		processed++
		totals = totals.Add(*r.Payslip)
	}

	now := time.Now()
	run.Status = payroll.RunStatusCompleted
	run.TotalEmployees = len(employeeIDs)
	run.ProcessedEmployees = processed
	run.FailedEmployees = len(failures)
	run.Totals = totals
	run.FailureDetails = failures
	run.ProcessedBy = &processedBy
	run.ProcessedAt = &now

	if err := s.runRepo.SaveOutcome(ctx, run); err != nil {
		return payroll.RunSummary{}, fmt.Errorf("failed to save payroll run outcome: %w", err)
	}

	summary := payroll.RunSummary{
		RunID:     run.ID,
		Status:    run.Status,
		Total:     run.TotalEmployees,
		Processed: processed,
		Failed:    len(failures),
		Totals:    totals,
		Failures:  failures,
	}
	s.opts.Progress.Publish(run.ID, payroll.EventRunCompleted, payroll.ToSummaryResponse(summary))
	return summary, nil
}

func (s *PayrollServiceImpl) publishEmployee(runID string, r payroll.EmployeeResult) {
	if r.Err != nil {
		f := failureOf(r.EmployeeID, r.Err)
		s.opts.Progress.Publish(runID, payroll.EventEmployeeFailed, payroll.EmployeeProgress{
			EmployeeID: r.EmployeeID,
			Kind:       f.Kind,
			Reason:     f.Reason,
		})
		return
	}
	s.opts.Progress.Publish(runID, payroll.EventEmployeeProcessed, payroll.EmployeeProgress{
		EmployeeID: r.EmployeeID,
		NetSalary:  r.Payslip.NetSalary.String(),
	})
}

// processEmployee reuses a payslip committed by an earlier attempt so a retried run never
// consumes ad hoc items or loan installments twice.
func (s *PayrollServiceImpl) processEmployee(ctx context.Context, run payroll.PayrollRun, cfg tax.Configuration, employeeID string) payroll.EmployeeResult {
	existing, err := s.payslipRepo.GetByEmployeeAndRun(ctx, employeeID, run.ID)
	if err == nil {
		return payroll.EmployeeResult{EmployeeID: employeeID, Payslip: &existing}
	}
	if !errors.Is(err, payroll.ErrPayslipNotFound) {
		return payroll.EmployeeResult{EmployeeID: employeeID, Err: err}
	}

	employeeCtx := ctx
	if s.opts.EmployeeTimeout > 0 {
		var cancel context.CancelFunc
		employeeCtx, cancel = context.WithTimeout(ctx, s.opts.EmployeeTimeout)
		defer cancel()
	}

	p, err := s.composer.Compose(employeeCtx, ComposeInput{
		EmployeeID:    employeeID,
		CompanyID:     run.CompanyID,
		RunID:         run.ID,
		Month:         run.Month,
		Year:          run.Year,
		FinancialYear: run.FinancialYear,
		TaxConfig:     cfg,
	})
	if err != nil {
		slog.ErrorContext(ctx, "payslip generation failed",
			"run_id", run.ID, "company_id", run.CompanyID, "employee_id", employeeID, "error", err)
		return payroll.EmployeeResult{EmployeeID: employeeID, Err: err}
	}

	return payroll.EmployeeResult{EmployeeID: employeeID, Payslip: &p}
}

// markFailed records the run-level failure even if ctx was cancelled.
func (s *PayrollServiceImpl) markFailed(ctx context.Context, run payroll.PayrollRun, processedBy string, cause error) {
	ctx = context.WithoutCancel(ctx)
	now := time.Now()

	run.Status = payroll.RunStatusFailed
	run.FailureDetails = []payroll.EmployeeFailure{failureOf("", cause)}
	run.ProcessedBy = &processedBy
	run.ProcessedAt = &now

	if err := s.runRepo.SaveOutcome(ctx, run); err != nil {
		slog.ErrorContext(ctx, "failed to mark payroll run failed", "run_id", run.ID, "error", err)
		return
	}
	slog.ErrorContext(ctx, "payroll run failed", "run_id", run.ID, "company_id", run.CompanyID, "error", cause)
	s.opts.Progress.Publish(run.ID, payroll.EventRunFailed, run.FailureDetails[0])
}
