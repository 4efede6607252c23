package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/adhoc"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollRunRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, setup.TruncatePayrollTables(ctx))
	_, companyID := setup.SeedEmployee(ctx, t)

	repo := postgresql.NewPayrollRunRepository(setup.DB)

	run, err := repo.Create(ctx, payroll.PayrollRun{
		CompanyID:     companyID,
		Month:         6,
		Year:          2024,
		FinancialYear: "2024-2025",
		Status:        payroll.RunStatusDraft,
		Totals:        payroll.ZeroTotals(),
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, payroll.PayrollRun{
		CompanyID:     companyID,
		Month:         6,
		Year:          2024,
		FinancialYear: "2024-2025",
		Status:        payroll.RunStatusDraft,
		Totals:        payroll.ZeroTotals(),
	})
	assert.ErrorIs(t, err, payroll.ErrRunAlreadyExists)

	t.Run("only one concurrent transition wins", func(t *testing.T) {
		var wg sync.WaitGroup
		results := make([]error, 4)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = repo.TransitionStatus(ctx, run.ID, payroll.RunStatusDraft, payroll.RunStatusProcessing)
			}(i)
		}
		wg.Wait()

		won := 0
		for _, err := range results {
			if err == nil {
				won++
				continue
			}
			assert.ErrorIs(t, err, payroll.ErrRunStatusChanged)
		}
		assert.Equal(t, 1, won)
	})

	t.Run("outcome round trip", func(t *testing.T) {
		now := time.Now()
		by := "admin-1"
		run.Status = payroll.RunStatusCompleted
		run.TotalEmployees = 2
		run.ProcessedEmployees = 1
		run.FailedEmployees = 1
		run.Totals.NetSalary = decimal.NewFromInt(45292)
		run.FailureDetails = []payroll.EmployeeFailure{{EmployeeID: "e-2", Kind: "NOT_FOUND", Reason: "no active salary structure"}}
		run.ProcessedBy = &by
		run.ProcessedAt = &now
		require.NoError(t, repo.SaveOutcome(ctx, run))

		stored, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, payroll.RunStatusCompleted, stored.Status)
		assert.True(t, decimal.NewFromInt(45292).Equal(stored.Totals.NetSalary))
		require.Len(t, stored.FailureDetails, 1)
		assert.Equal(t, "e-2", stored.FailureDetails[0].EmployeeID)

		require.NoError(t, repo.Lock(ctx, run.ID, by, now))
		assert.ErrorIs(t, repo.Lock(ctx, run.ID, by, now), payroll.ErrRunStatusChanged)
	})
}

func TestPayrollRunRepository_FailStale(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, setup.TruncatePayrollTables(ctx))
	_, companyID := setup.SeedEmployee(ctx, t)

	repo := postgresql.NewPayrollRunRepository(setup.DB)
	run, err := repo.Create(ctx, payroll.PayrollRun{
		CompanyID:     companyID,
		Month:         7,
		Year:          2024,
		FinancialYear: "2024-2025",
		Status:        payroll.RunStatusDraft,
		Totals:        payroll.ZeroTotals(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.TransitionStatus(ctx, run.ID, payroll.RunStatusDraft, payroll.RunStatusProcessing))

	reason := payroll.EmployeeFailure{Kind: "INTERNAL", Reason: "processing abandoned"}

	failed, err := repo.FailStale(ctx, time.Now().Add(-time.Hour), reason)
	require.NoError(t, err)
	assert.Empty(t, failed)

	failed, err = repo.FailStale(ctx, time.Now().Add(time.Minute), reason)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, run.ID, failed[0].ID)

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusFailed, got.Status)
	require.Len(t, got.FailureDetails, 1)
	assert.Equal(t, "processing abandoned", got.FailureDetails[0].Reason)
}

func TestLoanRepository_DeductionUniqueness(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, setup.TruncatePayrollTables(ctx))
	employeeID, companyID := setup.SeedEmployee(ctx, t)

	loans := postgresql.NewLoanRepository(setup.DB)
	runs := postgresql.NewPayrollRunRepository(setup.DB)

	l, err := loans.Create(ctx, loan.Loan{
		EmployeeID:           employeeID,
		CompanyID:            companyID,
		PrincipalAmount:      decimal.NewFromInt(12000),
		AnnualInterestRate:   decimal.Zero,
		TenureMonths:         12,
		EMI:                  decimal.NewFromInt(1000),
		StartDate:            time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		DeductionStartMonth:  6,
		DeductionStartYear:   2024,
		Schedule:             []loan.ScheduleEntry{{Month: 1, EMI: decimal.NewFromInt(1000)}},
		OutstandingPrincipal: decimal.NewFromInt(12000),
		TotalAmountPaid:      decimal.Zero,
		TotalInterestPaid:    decimal.Zero,
		Status:               loan.StatusActive,
	})
	require.NoError(t, err)

	locked, err := loans.GetForUpdate(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, locked.Schedule, 1)
	assert.True(t, decimal.NewFromInt(1000).Equal(locked.Schedule[0].EMI))

	run, err := runs.Create(ctx, payroll.PayrollRun{
		CompanyID: companyID, Month: 6, Year: 2024, FinancialYear: "2024-2025",
		Status: payroll.RunStatusDraft, Totals: payroll.ZeroTotals(),
	})
	require.NoError(t, err)
	payslipID := seedPayslip(ctx, t, setup, run, employeeID)

	deduction := loan.Deduction{
		LoanID: l.ID, EmployeeID: employeeID, CompanyID: companyID,
		PayrollRunID: run.ID, PayslipID: payslipID, Month: 6, Year: 2024,
		EMI: decimal.NewFromInt(1000), PrincipalComponent: decimal.NewFromInt(1000),
		InterestComponent: decimal.Zero, OutstandingAfter: decimal.NewFromInt(11000),
	}
	_, err = loans.CreateDeduction(ctx, deduction)
	require.NoError(t, err)

	_, err = loans.CreateDeduction(ctx, deduction)
	assert.ErrorIs(t, err, loan.ErrDeductionConflict)

	exists, err := loans.DeductionExists(ctx, l.ID, 6, 2024)
	require.NoError(t, err)
	assert.True(t, exists)

	locked.OutstandingPrincipal = decimal.NewFromInt(11000)
	locked.InstallmentsPaid = 1
	locked.TotalAmountPaid = decimal.NewFromInt(1000)
	require.NoError(t, loans.UpdateBalances(ctx, locked))

	reloaded, err := loans.GetByID(ctx, l.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.InstallmentsPaid)
	assert.True(t, decimal.NewFromInt(11000).Equal(reloaded.OutstandingPrincipal))
}

func TestAdHocItemRepository_MarkProcessedOnce(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, setup.TruncatePayrollTables(ctx))
	employeeID, companyID := setup.SeedEmployee(ctx, t)

	items := postgresql.NewAdHocItemRepository(setup.DB)
	runs := postgresql.NewPayrollRunRepository(setup.DB)

	item, err := items.Create(ctx, adhoc.Item{
		Type: adhoc.ItemTypeVariablePay, EmployeeID: employeeID, CompanyID: companyID,
		Month: 6, Year: 2024, Description: "bonus", ClaimedAmount: decimal.NewFromInt(6000),
		Status: adhoc.StatusDraft,
	})
	require.NoError(t, err)
	require.NoError(t, items.Approve(ctx, item.ID, adhoc.StatusDraft, decimal.NewFromInt(5000), "manager-1", time.Now()))

	approved, err := items.ListApproved(ctx, employeeID, companyID, 6, 2024)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.True(t, decimal.NewFromInt(5000).Equal(approved[0].PayableAmount()))

	run, err := runs.Create(ctx, payroll.PayrollRun{
		CompanyID: companyID, Month: 6, Year: 2024, FinancialYear: "2024-2025",
		Status: payroll.RunStatusDraft, Totals: payroll.ZeroTotals(),
	})
	require.NoError(t, err)
	payslipID := seedPayslip(ctx, t, setup, run, employeeID)

	affected, err := items.MarkProcessed(ctx, []string{item.ID}, run.ID, payslipID, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = items.MarkProcessed(ctx, []string{item.ID}, run.ID, payslipID, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestTaxConfigurationRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, setup.TruncatePayrollTables(ctx))
	_, companyID := setup.SeedEmployee(ctx, t)

	repo := postgresql.NewTaxConfigurationRepository(setup.DB)
	upper := decimal.NewFromInt(250000)
	cfg := tax.Configuration{
		CompanyID:     companyID,
		Country:       "IN",
		FinancialYear: "2024-2025",
		IncomeTaxSlabs: []tax.Slab{
			{From: decimal.Zero, To: &upper, Rate: decimal.Zero},
			{From: upper, Rate: decimal.NewFromInt(5)},
		},
		SocialSecurity:   tax.Contribution{EmployeeRate: decimal.NewFromInt(12), EmployerRate: decimal.NewFromInt(12), Cap: decimal.NewFromInt(15000)},
		HousingExemption: &tax.HousingExemptionRules{Type: tax.PolicyActualRent},
		IsActive:         true,
	}

	_, err := repo.Create(ctx, cfg)
	require.NoError(t, err)
	_, err = repo.Create(ctx, cfg)
	assert.ErrorIs(t, err, tax.ErrConfigurationExists)

	stored, err := repo.GetActive(ctx, companyID, "IN", "2024-2025")
	require.NoError(t, err)
	require.Len(t, stored.IncomeTaxSlabs, 2)
	require.NotNil(t, stored.IncomeTaxSlabs[0].To)
	assert.True(t, upper.Equal(*stored.IncomeTaxSlabs[0].To))
	assert.Nil(t, stored.IncomeTaxSlabs[1].To)
	require.NotNil(t, stored.HousingExemption)
	assert.Nil(t, stored.TravelExemption)

	_, err = repo.GetActive(ctx, companyID, "IN", "2030-2031")
	assert.True(t, errors.Is(err, tax.ErrConfigurationNotFound))
}

// seedPayslip inserts a minimal payslip so ledger rows have something to reference.
func seedPayslip(ctx context.Context, t *testing.T, setup *TestDatabaseSetup, run payroll.PayrollRun, employeeID string) string {
	t.Helper()
	var structureID string
	err := setup.DB.QueryRow(ctx,
		`SELECT id FROM employee_salary_structures WHERE employee_id = $1 LIMIT 1`, employeeID,
	).Scan(&structureID)
	if err != nil {
		t.Skipf("employee has no salary structure in test database: %v", err)
	}

	p, err := postgresql.NewPayslipRepository(setup.DB).Create(ctx, payroll.Payslip{
		PayslipNumber:       "PS-TEST-" + run.ID[:8],
		EmployeeID:          employeeID,
		CompanyID:           run.CompanyID,
		PayrollRunID:        run.ID,
		Month:               run.Month,
		Year:                run.Year,
		FinancialYear:       run.FinancialYear,
		EmployeeStructureID: structureID,
		Status:              payroll.PayslipStatusGenerated,
	})
	require.NoError(t, err)
	return p.ID
}
