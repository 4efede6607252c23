package payroll

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayslipNumber(t *testing.T) {
	first := PayslipNumber("PS", "company-1", "employee-1", 2024, 6)
	assert.Equal(t, first, PayslipNumber("PS", "company-1", "employee-1", 2024, 6))
	assert.Regexp(t, regexp.MustCompile(`^PS-202406-[0-9A-F]{12}$`), first)

	assert.NotEqual(t, first, PayslipNumber("PS", "company-1", "employee-2", 2024, 6))
	assert.NotEqual(t, first, PayslipNumber("PS", "company-1", "employee-1", 2024, 7))
	assert.NotEqual(t, first, PayslipNumber("PS", "company-2", "employee-1", 2024, 6))
}

func TestGeneratePayslipForEmployee(t *testing.T) {
	ctx := context.Background()
	request := func(runID string) payroll.GeneratePayslipRequest {
		return payroll.GeneratePayslipRequest{
			EmployeeID: "employee-1",
			RunID:      runID,
			CompanyID:  testCompanyID,
			Month:      6,
			Year:       2024,
		}
	}

	t.Run("resolves the tax configuration", func(t *testing.T) {
		f := newFixture(t)
		f.seedTaxConfig(t)
		run := f.createRun(t, 6, 2024)

		p, err := f.svc.GeneratePayslipForEmployee(ctx, request(run.ID))
		require.NoError(t, err)
		assert.True(t, d("45292").Equal(p.NetSalary))
		assert.Equal(t, testFY, p.FinancialYear)

		stored, err := f.svc.GetPayrollRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, payroll.RunStatusDraft, stored.Status)
		assert.Zero(t, stored.ProcessedEmployees)

		t.Run("a later run reuses the payslip", func(t *testing.T) {
			summary, err := f.svc.ProcessPayrollRun(ctx, run.ID, "admin-1")
			require.NoError(t, err)
			assert.Equal(t, 3, summary.Processed)
			assert.Len(t, f.store.Payslips, 3)
		})
	})

	t.Run("explicit tax configuration", func(t *testing.T) {
		f := newFixture(t)
		run := f.createRun(t, 6, 2024)
		cfg := testTaxConfig()
		cfg.LocalTaxSlabs = []tax.FlatSlab{{From: d("0"), Amount: d("0")}}

		req := request(run.ID)
		req.TaxConfig = &cfg
		p, err := f.svc.GeneratePayslipForEmployee(ctx, req)
		require.NoError(t, err)
		assert.True(t, p.LocalTax.IsZero())
		assert.True(t, d("45492").Equal(p.NetSalary))
	})

	t.Run("missing tax configuration", func(t *testing.T) {
		f := newFixture(t)
		run := f.createRun(t, 6, 2024)

		_, err := f.svc.GeneratePayslipForEmployee(ctx, request(run.ID))
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("period mismatch", func(t *testing.T) {
		f := newFixture(t)
		f.seedTaxConfig(t)
		run := f.createRun(t, 6, 2024)

		req := request(run.ID)
		req.Month = 7
		_, err := f.svc.GeneratePayslipForEmployee(ctx, req)
		assert.ErrorIs(t, err, payroll.ErrPeriodMismatch)
	})

	t.Run("run of another company", func(t *testing.T) {
		f := newFixture(t)
		f.seedTaxConfig(t)
		run := f.createRun(t, 6, 2024)

		req := request(run.ID)
		req.CompanyID = "company-2"
		_, err := f.svc.GeneratePayslipForEmployee(ctx, req)
		assert.ErrorIs(t, err, payroll.ErrRunNotFound)
	})

	t.Run("unknown employee", func(t *testing.T) {
		f := newFixture(t)
		f.seedTaxConfig(t)
		run := f.createRun(t, 6, 2024)

		req := request(run.ID)
		req.EmployeeID = "nobody"
		_, err := f.svc.GeneratePayslipForEmployee(ctx, req)
		assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	})

	t.Run("completed and locked runs", func(t *testing.T) {
		f := newFixture(t)
		f.seedTaxConfig(t)
		f.store.Employees["employee-4"] = employee.Employee{
			ID:               "employee-4",
			CompanyID:        testCompanyID,
			EmploymentStatus: employee.EmploymentStatusActive,
		}
		f.store.FailResolve["employee-4"] = errors.New("structure not ready")
		run := f.createRun(t, 6, 2024)

		summary, err := f.svc.ProcessPayrollRun(ctx, run.ID, "admin-1")
		require.NoError(t, err)
		require.Equal(t, 3, summary.Processed)
		delete(f.store.FailResolve, "employee-4")

		req := request(run.ID)
		req.EmployeeID = "employee-4"
		_, err = f.svc.GeneratePayslipForEmployee(ctx, req)
		assert.ErrorIs(t, err, payroll.ErrRunAlreadyCompleted)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

		locked, err := f.svc.LockPayrollRun(ctx, run.ID, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, 3, locked.ProcessedEmployees)
		assert.True(t, d("135876").Equal(locked.Totals.NetSalary))
		slips, err := f.svc.ListPayslipsByRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Len(t, slips, 3)

		_, err = f.svc.GeneratePayslipForEmployee(ctx, req)
		assert.ErrorIs(t, err, payroll.ErrRunLocked)
	})

	t.Run("resigned employee", func(t *testing.T) {
		f := newFixture(t)
		f.seedTaxConfig(t)
		run := f.createRun(t, 6, 2024)

		req := request(run.ID)
		req.EmployeeID = "employee-resigned"
		_, err := f.svc.GeneratePayslipForEmployee(ctx, req)
		assert.ErrorIs(t, err, employee.ErrEmployeeNotActive)
	})
}

func TestUpdatePayslipStatus(t *testing.T) {
	f := newFixture(t)
	f.seedTaxConfig(t)
	ctx := context.Background()
	run := f.createRun(t, 6, 2024)
	_, err := f.svc.ProcessPayrollRun(ctx, run.ID, "admin-1")
	require.NoError(t, err)

	p, ok := f.payslipFor("employee-1", run.ID)
	require.True(t, ok)

	_, err = f.svc.UpdatePayslipStatus(ctx, p.ID, payroll.PayslipStatusSent)
	assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)

	for _, next := range []payroll.PayslipStatus{
		payroll.PayslipStatusApproved,
		payroll.PayslipStatusSent,
		payroll.PayslipStatusDownloaded,
	} {
		updated, err := f.svc.UpdatePayslipStatus(ctx, p.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = f.svc.UpdatePayslipStatus(ctx, p.ID, payroll.PayslipStatusGenerated)
	assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)

	stored, err := f.svc.GetPayslip(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayslipStatusDownloaded, stored.Status)
	assert.True(t, d("45292").Equal(stored.NetSalary))

	_, err = f.svc.GetPayslip(ctx, "missing")
	assert.ErrorIs(t, err, payroll.ErrPayslipNotFound)

	_, err = f.svc.ListPayslipsByRun(ctx, "missing")
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}
