package loan

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/payroll-engine/internal/testkit/payrollfakes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID  = "company-1"
	testEmployeeID = "employee-1"
)

func newTestLoanService(t *testing.T) (*payrollfakes.Store, loan.LoanService, loan.Loan) {
	t.Helper()
	store := payrollfakes.NewStore()
	svc := NewLoanService(store.Transactor(), store.LoanRepository())

	created, err := svc.CreateLoan(context.Background(), loan.CreateLoanRequest{
		CompanyID:          testCompanyID,
		EmployeeID:         testEmployeeID,
		PrincipalAmount:    d("120000"),
		AnnualInterestRate: d("12"),
		TenureMonths:       12,
		StartDate:          "2024-01-15",
	})
	require.NoError(t, err)
	return store, svc, created
}

func deductionFor(l loan.Loan, month, year int) loan.DeductionRequest {
	return loan.DeductionRequest{
		LoanID:       l.ID,
		EmployeeID:   l.EmployeeID,
		CompanyID:    l.CompanyID,
		PayrollRunID: "run-1",
		PayslipID:    "payslip-1",
		Month:        month,
		Year:         year,
	}
}

func TestLoanService_CreateLoan(t *testing.T) {
	_, _, created := newTestLoanService(t)

	assert.Equal(t, loan.StatusActive, created.Status)
	assert.True(t, created.OutstandingPrincipal.Equal(d("120000")))
	assert.Len(t, created.Schedule, 12)
	assert.Equal(t, 1, created.DeductionStartMonth, "deduction start defaults to the start date")
	assert.Equal(t, 2024, created.DeductionStartYear)
}

func TestLoanService_CreateLoan_Validation(t *testing.T) {
	store := payrollfakes.NewStore()
	svc := NewLoanService(store.Transactor(), store.LoanRepository())

	_, err := svc.CreateLoan(context.Background(), loan.CreateLoanRequest{
		CompanyID:          testCompanyID,
		EmployeeID:         testEmployeeID,
		PrincipalAmount:    d("0"),
		AnnualInterestRate: d("-1"),
		TenureMonths:       0,
		StartDate:          "15-01-2024",
	})

	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestLoanService_RecordDeduction_Twice(t *testing.T) {
	ctx := context.Background()
	store, svc, created := newTestLoanService(t)

	first, err := svc.RecordDeduction(ctx, deductionFor(created, 1, 2024))
	require.NoError(t, err)
	assert.True(t, first.PrincipalComponent.Equal(created.Schedule[0].PrincipalComponent))

	afterFirst := store.Loans[created.ID].OutstandingPrincipal
	assert.True(t, afterFirst.LessThan(created.OutstandingPrincipal))

	_, err = svc.RecordDeduction(ctx, deductionFor(created, 1, 2024))
	require.Error(t, err)
	assert.True(t, errors.Is(err, loan.ErrDeductionAlreadyExists))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.True(t, afterFirst.Equal(store.Loans[created.ID].OutstandingPrincipal), "second call leaves the balance alone")
}

func TestLoanService_RecordDeduction_BeforeDeductionStart(t *testing.T) {
	ctx := context.Background()
	store, svc, created := newTestLoanService(t)

	_, err := svc.RecordDeduction(ctx, deductionFor(created, 12, 2023))
	assert.True(t, errors.Is(err, loan.ErrPeriodOutsideSchedule))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, 0, store.Loans[created.ID].InstallmentsPaid)
}

func TestLoanService_RecordDeduction_SkippedMonthIsNotLost(t *testing.T) {
	ctx := context.Background()
	store, svc, created := newTestLoanService(t)

	_, err := svc.RecordDeduction(ctx, deductionFor(created, 1, 2024))
	require.NoError(t, err)

	// nothing booked for February and March
	second, err := svc.RecordDeduction(ctx, deductionFor(created, 4, 2024))
	require.NoError(t, err)
	assert.True(t, second.PrincipalComponent.Equal(created.Schedule[1].PrincipalComponent))
	assert.True(t, second.OutstandingAfter.Equal(created.Schedule[1].Outstanding))
	assert.Equal(t, 2, store.Loans[created.ID].InstallmentsPaid)

	for month := 5; month <= 12; month++ {
		_, err := svc.RecordDeduction(ctx, deductionFor(created, month, 2024))
		require.NoError(t, err, "month %d", month)
	}
	_, err = svc.RecordDeduction(ctx, deductionFor(created, 1, 2025))
	require.NoError(t, err)
	_, err = svc.RecordDeduction(ctx, deductionFor(created, 2, 2025))
	require.NoError(t, err)

	closed := store.Loans[created.ID]
	assert.Equal(t, loan.StatusClosed, closed.Status)
	assert.True(t, closed.OutstandingPrincipal.IsZero())
	assert.Equal(t, 12, closed.InstallmentsPaid)

	_, err = svc.RecordDeduction(ctx, deductionFor(created, 3, 2025))
	assert.True(t, errors.Is(err, loan.ErrLoanNotActive))
}

func TestLoanService_CreateLoan_DeferredDeductionStart(t *testing.T) {
	store := payrollfakes.NewStore()
	svc := NewLoanService(store.Transactor(), store.LoanRepository())

	created, err := svc.CreateLoan(context.Background(), loan.CreateLoanRequest{
		CompanyID:           testCompanyID,
		EmployeeID:          testEmployeeID,
		PrincipalAmount:     d("3000"),
		AnnualInterestRate:  d("0"),
		TenureMonths:        3,
		StartDate:           "2024-04-30",
		DeductionStartMonth: 6,
		DeductionStartYear:  2024,
	})
	require.NoError(t, err)
	require.Len(t, created.Schedule, 3)

	assert.Equal(t, "2024-06-30", created.Schedule[0].PaymentDate.Format("2006-01-02"))
	assert.Equal(t, "2024-07-30", created.Schedule[1].PaymentDate.Format("2006-01-02"))
	assert.Equal(t, "2024-08-30", created.Schedule[2].PaymentDate.Format("2006-01-02"))

	_, err = svc.RecordDeduction(context.Background(), deductionFor(created, 5, 2024))
	assert.True(t, errors.Is(err, loan.ErrPeriodOutsideSchedule))

	for month := 6; month <= 8; month++ {
		_, err := svc.RecordDeduction(context.Background(), deductionFor(created, month, 2024))
		require.NoError(t, err, "month %d", month)
	}
	assert.Equal(t, loan.StatusClosed, store.Loans[created.ID].Status)
}

func TestLoanService_RecordDeduction_NotFoundAndInactive(t *testing.T) {
	ctx := context.Background()
	_, svc, created := newTestLoanService(t)

	req := deductionFor(created, 1, 2024)
	req.LoanID = "missing"
	_, err := svc.RecordDeduction(ctx, req)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.UpdateLoanStatus(ctx, created.ID, testCompanyID, loan.StatusSuspended)
	require.NoError(t, err)

	_, err = svc.RecordDeduction(ctx, deductionFor(created, 1, 2024))
	assert.True(t, errors.Is(err, loan.ErrLoanNotActive))
}

func TestLoanService_RecordDeduction_ClosesLoan(t *testing.T) {
	ctx := context.Background()
	store, svc, created := newTestLoanService(t)

	for month := 1; month <= 12; month++ {
		_, err := svc.RecordDeduction(ctx, deductionFor(created, month, 2024))
		require.NoError(t, err, "month %d", month)
	}

	closed := store.Loans[created.ID]
	assert.Equal(t, loan.StatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
	assert.True(t, closed.OutstandingPrincipal.IsZero())

	interest := d("0")
	for _, e := range created.Schedule {
		interest = interest.Add(e.InterestComponent)
	}
	assert.True(t, closed.TotalInterestPaid.Equal(interest))
	assert.True(t, closed.TotalAmountPaid.Equal(d("120000").Add(interest)))

	_, err := svc.UpdateLoanStatus(ctx, created.ID, testCompanyID, loan.StatusActive)
	assert.True(t, errors.Is(err, loan.ErrInvalidStatusTransition), "closed is terminal")
}

func TestLoanService_RecordDeduction_Concurrent(t *testing.T) {
	ctx := context.Background()
	store, svc, created := newTestLoanService(t)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.RecordDeduction(ctx, deductionFor(created, 3, 2024))
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.True(t, d("120000").Sub(created.Schedule[0].PrincipalComponent).Equal(store.Loans[created.ID].OutstandingPrincipal))
	assert.Equal(t, 1, store.Loans[created.ID].InstallmentsPaid)
}

func TestLoanService_ListActiveLoansAndSchedule(t *testing.T) {
	ctx := context.Background()
	_, svc, created := newTestLoanService(t)

	loans, err := svc.ListActiveLoans(ctx, testEmployeeID, testCompanyID)
	require.NoError(t, err)
	require.Len(t, loans, 1)

	schedule, err := svc.GetRepaymentSchedule(ctx, created.ID, testCompanyID)
	require.NoError(t, err)
	assert.Len(t, schedule, 12)

	_, err = svc.GetLoan(ctx, created.ID, "other-company")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.UpdateLoanStatus(ctx, created.ID, testCompanyID, loan.StatusCancelled)
	require.NoError(t, err)
	loans, err = svc.ListActiveLoans(ctx, testEmployeeID, testCompanyID)
	require.NoError(t, err)
	assert.Empty(t, loans)
}
