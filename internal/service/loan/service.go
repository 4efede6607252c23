package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type LoanServiceImpl struct {
	*Amortizer
	tx       database.Transactor
	loanRepo loan.LoanRepository
}

func NewLoanService(tx database.Transactor, loanRepo loan.LoanRepository) loan.LoanService {
	return &LoanServiceImpl{
		Amortizer: NewAmortizer(),
		tx:        tx,
		loanRepo:  loanRepo,
	}
}

func (s *LoanServiceImpl) CreateLoan(ctx context.Context, req loan.CreateLoanRequest) (loan.Loan, error) {
	startDate, err := req.Validate()
	if err != nil {
		return loan.Loan{}, err
	}

	// installments fall due from the deduction start period, on the start date's day
	offset := (req.DeductionStartYear*12 + req.DeductionStartMonth) - (startDate.Year()*12 + int(startDate.Month()))
	schedule := s.generateSchedule(req.PrincipalAmount, req.AnnualInterestRate, req.TenureMonths, startDate, offset)
	newLoan := loan.Loan{
		EmployeeID:           req.EmployeeID,
		CompanyID:            req.CompanyID,
		PrincipalAmount:      req.PrincipalAmount,
		AnnualInterestRate:   req.AnnualInterestRate,
		TenureMonths:         req.TenureMonths,
		EMI:                  s.CalculateEMI(req.PrincipalAmount, req.AnnualInterestRate, req.TenureMonths),
		StartDate:            startDate,
		DeductionStartMonth:  req.DeductionStartMonth,
		DeductionStartYear:   req.DeductionStartYear,
		Schedule:             schedule,
		OutstandingPrincipal: req.PrincipalAmount,
		TotalAmountPaid:      decimal.Zero,
		TotalInterestPaid:    decimal.Zero,
		Status:               loan.StatusActive,
	}

	created, err := s.loanRepo.Create(ctx, newLoan)
	if err != nil {
		return loan.Loan{}, fmt.Errorf("failed to create loan: %w", err)
	}
	return created, nil
}

func (s *LoanServiceImpl) GetLoan(ctx context.Context, id, companyID string) (loan.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return loan.Loan{}, fmt.Errorf("failed to get loan: %w", err)
	}
	return l, nil
}

func (s *LoanServiceImpl) GetRepaymentSchedule(ctx context.Context, id, companyID string) ([]loan.ScheduleEntry, error) {
	l, err := s.GetLoan(ctx, id, companyID)
	if err != nil {
		return nil, err
	}
	return l.Schedule, nil
}

func (s *LoanServiceImpl) ListActiveLoans(ctx context.Context, employeeID, companyID string) ([]loan.Loan, error) {
	loans, err := s.loanRepo.ListActiveByEmployee(ctx, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active loans: %w", err)
	}
	return loans, nil
}

func (s *LoanServiceImpl) UpdateLoanStatus(ctx context.Context, id, companyID string, status loan.Status) (loan.Loan, error) {
	current, err := s.GetLoan(ctx, id, companyID)
	if err != nil {
		return loan.Loan{}, err
	}
	if !current.Status.CanTransitionTo(status) {
		return loan.Loan{}, loan.ErrInvalidStatusTransition
	}

	if err := s.loanRepo.UpdateStatus(ctx, id, companyID, current.Status, status); err != nil {
		return loan.Loan{}, fmt.Errorf("failed to update loan status: %w", err)
	}
	current.Status = status
	return current, nil
}

// RecordDeduction locks the loan row, books the period's schedule entry and writes the
// ledger row in one transaction.
func (s *LoanServiceImpl) RecordDeduction(ctx context.Context, req loan.DeductionRequest) (loan.Deduction, error) {
	var recorded loan.Deduction

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		l, err := s.loanRepo.GetForUpdate(ctx, req.LoanID)
		if err != nil {
			return err
		}
		if l.CompanyID != req.CompanyID || l.EmployeeID != req.EmployeeID {
			return loan.ErrLoanNotFound
		}
		if l.Status != loan.StatusActive {
			return loan.ErrLoanNotActive
		}

		exists, err := s.loanRepo.DeductionExists(ctx, l.ID, req.Month, req.Year)
		if err != nil {
			return err
		}
		if exists {
			return loan.ErrDeductionAlreadyExists
		}

		entry, ok := l.ScheduledEntry(req.Month, req.Year)
		if !ok {
			return loan.ErrPeriodOutsideSchedule
		}

		l.OutstandingPrincipal = money.ZeroFloor(l.OutstandingPrincipal.Sub(entry.PrincipalComponent))
		l.InstallmentsPaid++
		l.TotalAmountPaid = l.TotalAmountPaid.Add(entry.EMI)
		l.TotalInterestPaid = l.TotalInterestPaid.Add(entry.InterestComponent)
		if !l.OutstandingPrincipal.IsPositive() {
			now := time.Now()
			l.Status = loan.StatusClosed
			l.ClosedAt = &now
		}

		if err := s.loanRepo.UpdateBalances(ctx, l); err != nil {
			return err
		}

		recorded, err = s.loanRepo.CreateDeduction(ctx, loan.Deduction{
			LoanID:             l.ID,
			EmployeeID:         l.EmployeeID,
			CompanyID:          l.CompanyID,
			PayrollRunID:       req.PayrollRunID,
			PayslipID:          req.PayslipID,
			Month:              req.Month,
			Year:               req.Year,
			EMI:                entry.EMI,
			PrincipalComponent: entry.PrincipalComponent,
			InterestComponent:  entry.InterestComponent,
			OutstandingAfter:   l.OutstandingPrincipal,
		})
		return err
	})
	if err != nil {
		return loan.Deduction{}, fmt.Errorf("failed to record loan deduction: %w", err)
	}

	return recorded, nil
}
