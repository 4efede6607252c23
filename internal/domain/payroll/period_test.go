package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinancialYearLabel(t *testing.T) {
	assert.Equal(t, "2024-2025", FinancialYearLabel(4, 2024, 4))
	assert.Equal(t, "2024-2025", FinancialYearLabel(3, 2025, 4))
	assert.Equal(t, "2023-2024", FinancialYearLabel(1, 2024, 4))
	assert.Equal(t, "2024", FinancialYearLabel(7, 2024, 1))
}

func TestRunStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, RunStatusDraft.CanTransitionTo(RunStatusProcessing))
	assert.True(t, RunStatusFailed.CanTransitionTo(RunStatusProcessing))
	assert.True(t, RunStatusProcessing.CanTransitionTo(RunStatusCompleted))
	assert.True(t, RunStatusProcessing.CanTransitionTo(RunStatusFailed))
	assert.True(t, RunStatusCompleted.CanTransitionTo(RunStatusLocked))

	assert.False(t, RunStatusProcessing.CanTransitionTo(RunStatusProcessing))
	assert.False(t, RunStatusCompleted.CanTransitionTo(RunStatusProcessing))
	assert.False(t, RunStatusLocked.CanTransitionTo(RunStatusProcessing))
	assert.False(t, RunStatusDraft.CanTransitionTo(RunStatusLocked))
}

func TestPayslipStatus_Next(t *testing.T) {
	next, ok := PayslipStatusGenerated.Next()
	assert.True(t, ok)
	assert.Equal(t, PayslipStatusApproved, next)

	next, _ = PayslipStatusSent.Next()
	assert.Equal(t, PayslipStatusDownloaded, next)

	_, ok = PayslipStatusDownloaded.Next()
	assert.False(t, ok)
}
