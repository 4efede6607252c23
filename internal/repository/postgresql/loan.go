package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type loanRepository struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `
	id, employee_id, company_id, principal_amount, annual_interest_rate, tenure_months, emi,
	start_date, deduction_start_month, deduction_start_year, repayment_schedule,
	outstanding_principal, installments_paid, total_amount_paid, total_interest_paid, status, closed_at,
	created_at, updated_at
`

func scanLoan(row pgx.Row) (loan.Loan, error) {
	var l loan.Loan
	var scheduleJSON []byte
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.CompanyID, &l.PrincipalAmount, &l.AnnualInterestRate, &l.TenureMonths, &l.EMI,
		&l.StartDate, &l.DeductionStartMonth, &l.DeductionStartYear, &scheduleJSON,
		&l.OutstandingPrincipal, &l.InstallmentsPaid, &l.TotalAmountPaid, &l.TotalInterestPaid, &l.Status, &l.ClosedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return loan.Loan{}, err
	}
	if err := json.Unmarshal(scheduleJSON, &l.Schedule); err != nil {
		return loan.Loan{}, fmt.Errorf("decode repayment_schedule: %w", err)
	}
	return l, nil
}

func (r *loanRepository) Create(ctx context.Context, l loan.Loan) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	scheduleJSON, err := json.Marshal(nonNilSlice(l.Schedule))
	if err != nil {
		return loan.Loan{}, fmt.Errorf("failed to encode repayment schedule: %w", err)
	}

	query := `
		INSERT INTO employee_loans (
			id, employee_id, company_id, principal_amount, annual_interest_rate, tenure_months, emi,
			start_date, deduction_start_month, deduction_start_year, repayment_schedule,
			outstanding_principal, total_amount_paid, total_interest_paid, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		l.ID, l.EmployeeID, l.CompanyID, l.PrincipalAmount, l.AnnualInterestRate, l.TenureMonths, l.EMI,
		l.StartDate, l.DeductionStartMonth, l.DeductionStartYear, scheduleJSON,
		l.OutstandingPrincipal, l.TotalAmountPaid, l.TotalInterestPaid, l.Status,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return loan.Loan{}, fmt.Errorf("failed to create loan: %w", err)
	}

	return l, nil
}

func (r *loanRepository) GetByID(ctx context.Context, id, companyID string) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + loanColumns + ` FROM employee_loans WHERE id = $1 AND company_id = $2`

	l, err := scanLoan(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return loan.Loan{}, loan.ErrLoanNotFound
		}
		return loan.Loan{}, fmt.Errorf("failed to get loan: %w", err)
	}

	return l, nil
}

// GetForUpdate only locks when called inside a transaction.
func (r *loanRepository) GetForUpdate(ctx context.Context, id string) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + loanColumns + ` FROM employee_loans WHERE id = $1 FOR UPDATE`

	l, err := scanLoan(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return loan.Loan{}, loan.ErrLoanNotFound
		}
		return loan.Loan{}, fmt.Errorf("failed to lock loan: %w", err)
	}

	return l, nil
}

func (r *loanRepository) ListActiveByEmployee(ctx context.Context, employeeID, companyID string) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM employee_loans
		WHERE employee_id = $1 AND company_id = $2 AND status = $3
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, loan.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loans: %w", err)
	}

	return loans, nil
}

func (r *loanRepository) UpdateBalances(ctx context.Context, l loan.Loan) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_loans
		SET outstanding_principal = $2, installments_paid = $3, total_amount_paid = $4,
			total_interest_paid = $5, status = $6, closed_at = $7, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		l.ID, l.OutstandingPrincipal, l.InstallmentsPaid, l.TotalAmountPaid, l.TotalInterestPaid, l.Status, l.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan balances: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return loan.ErrLoanNotFound
	}

	return nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id, companyID string, from, to loan.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_loans
		SET status = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = $3
	`

	commandTag, err := q.Exec(ctx, query, id, companyID, from, to)
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return loan.ErrInvalidStatusTransition
	}

	return nil
}

func (r *loanRepository) DeductionExists(ctx context.Context, loanID string, month, year int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS(SELECT 1 FROM loan_deductions WHERE loan_id = $1 AND month = $2 AND year = $3)`

	var exists bool
	if err := q.QueryRow(ctx, query, loanID, month, year).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check loan deduction: %w", err)
	}

	return exists, nil
}

func (r *loanRepository) CreateDeduction(ctx context.Context, d loan.Deduction) (loan.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	query := `
		INSERT INTO loan_deductions (
			id, loan_id, employee_id, company_id, payroll_run_id, payslip_id, month, year,
			emi, principal_component, interest_component, outstanding_after
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		d.ID, d.LoanID, d.EmployeeID, d.CompanyID, d.PayrollRunID, d.PayslipID, d.Month, d.Year,
		d.EMI, d.PrincipalComponent, d.InterestComponent, d.OutstandingAfter,
	).Scan(&d.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_loan_deduction_period") {
			return loan.Deduction{}, loan.ErrDeductionConflict
		}
		return loan.Deduction{}, fmt.Errorf("failed to create loan deduction: %w", err)
	}

	return d, nil
}

func (r *loanRepository) ListDeductions(ctx context.Context, loanID string) ([]loan.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, loan_id, employee_id, company_id, payroll_run_id, payslip_id, month, year,
			   emi, principal_component, interest_component, outstanding_after, created_at
		FROM loan_deductions
		WHERE loan_id = $1
		ORDER BY year, month
	`

	rows, err := q.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan deductions: %w", err)
	}
	defer rows.Close()

	var deductions []loan.Deduction
	for rows.Next() {
		var d loan.Deduction
		if err := rows.Scan(
			&d.ID, &d.LoanID, &d.EmployeeID, &d.CompanyID, &d.PayrollRunID, &d.PayslipID, &d.Month, &d.Year,
			&d.EMI, &d.PrincipalComponent, &d.InterestComponent, &d.OutstandingAfter, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan deduction: %w", err)
		}
		deductions = append(deductions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loan deductions: %w", err)
	}

	return deductions, nil
}
