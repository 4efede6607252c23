package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
)

// PayrollJobs holds background maintenance for payroll runs.
type PayrollJobs struct {
	runRepo    payroll.RunRepository
	staleAfter time.Duration
	interval   time.Duration
	now        func() time.Time
}

func NewPayrollJobs(runRepo payroll.RunRepository, staleAfter, interval time.Duration) *PayrollJobs {
	return &PayrollJobs{
		runRepo:    runRepo,
		staleAfter: staleAfter,
		interval:   interval,
		now:        time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("fail_stale_payroll_runs", j.interval, j.FailStaleRuns)
}

// FailStaleRuns releases runs whose processing was abandoned, e.g. by a crashed
// instance, so they can be processed again.
func (j *PayrollJobs) FailStaleRuns(ctx context.Context) error {
	cutoff := j.now().Add(-j.staleAfter)
	reason := payroll.EmployeeFailure{
		Kind:   string(apperror.KindInternal),
		Reason: fmt.Sprintf("processing abandoned for more than %s", j.staleAfter),
	}

	runs, err := j.runRepo.FailStale(ctx, cutoff, reason)
	if err != nil {
		return fmt.Errorf("failed to release stale payroll runs: %w", err)
	}

	for _, run := range runs {
		slog.WarnContext(ctx, "Cron: stale payroll run marked failed",
			"run_id", run.ID, "company_id", run.CompanyID, "month", run.Month, "year", run.Year)
	}
	return nil
}
