package cron

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/testkit/payrollfakes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollJobs_FailStaleRuns(t *testing.T) {
	store := payrollfakes.NewStore()
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	store.Runs["stale"] = payroll.PayrollRun{ID: "stale", CompanyID: "company-1", Month: 6, Year: 2024, Status: payroll.RunStatusProcessing, UpdatedAt: now.Add(-3 * time.Hour)}
	store.Runs["fresh"] = payroll.PayrollRun{ID: "fresh", CompanyID: "company-1", Month: 5, Year: 2024, Status: payroll.RunStatusProcessing, UpdatedAt: now.Add(-10 * time.Minute)}
	store.Runs["done"] = payroll.PayrollRun{ID: "done", CompanyID: "company-1", Month: 4, Year: 2024, Status: payroll.RunStatusCompleted, UpdatedAt: now.Add(-48 * time.Hour)}

	jobs := NewPayrollJobs(store.RunRepository(), 2*time.Hour, time.Minute)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.FailStaleRuns(context.Background()))

	assert.Equal(t, payroll.RunStatusFailed, store.Runs["stale"].Status)
	require.Len(t, store.Runs["stale"].FailureDetails, 1)
	assert.Equal(t, "INTERNAL", store.Runs["stale"].FailureDetails[0].Kind)
	assert.Equal(t, payroll.RunStatusProcessing, store.Runs["fresh"].Status)
	assert.Equal(t, payroll.RunStatusCompleted, store.Runs["done"].Status)

	// A released run can be picked up again.
	require.NoError(t, store.RunRepository().TransitionStatus(context.Background(), "stale", payroll.RunStatusFailed, payroll.RunStatusProcessing))
}

func TestScheduler_StartRunsEachJobAndStops(t *testing.T) {
	s := NewScheduler()
	calls := make(chan string, 8)
	s.AddJob("first", time.Hour, func(ctx context.Context) error {
		calls <- "first"
		return nil
	})
	s.AddJob("second", time.Hour, func(ctx context.Context) error {
		calls <- "second"
		return assert.AnError
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Wait()

	// Each loop runs its job once on start before observing cancellation.
	require.Len(t, calls, 2)
	assert.ElementsMatch(t, []string{"first", "second"}, []string{<-calls, <-calls})
}
