package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payslipRepository struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payroll.PayslipRepository {
	return &payslipRepository{db: db}
}

const payslipColumns = `
	id, payslip_number, employee_id, company_id, payroll_run_id, month, year, financial_year,
	employee_structure_id, ctc, basic_salary, gross_salary, earnings_breakdown, deductions_breakdown,
	working_days, present_days, absent_days, leave_days, lop_days, pro_rata_factor, lop_amount,
	variable_pay_total, arrears_total, reimbursement_total,
	variable_pay_breakdown, arrears_breakdown, reimbursement_breakdown,
	final_gross_salary, taxable_income, income_tax, local_tax,
	social_security_employee, social_security_employer, health_insurance_employee, health_insurance_employer,
	exemptions_breakdown, loan_deduction_total, loan_deductions_breakdown, total_deductions, net_salary,
	ytd, status, created_at, updated_at
`

// amountMaps lists the JSONB breakdown columns in payslipColumns order.
func amountMaps(p *payroll.Payslip) []*map[string]decimal.Decimal {
	return []*map[string]decimal.Decimal{
		&p.EarningsBreakdown,
		&p.DeductionsBreakdown,
		&p.VariablePayBreakdown,
		&p.ArrearsBreakdown,
		&p.ReimbursementBreakdown,
		&p.ExemptionsBreakdown,
		&p.LoanDeductionsBreakdown,
	}
}

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	raw := make([][]byte, 7)
	var ytdJSON []byte

	err := row.Scan(
		&p.ID, &p.PayslipNumber, &p.EmployeeID, &p.CompanyID, &p.PayrollRunID, &p.Month, &p.Year, &p.FinancialYear,
		&p.EmployeeStructureID, &p.CTC, &p.BasicSalary, &p.GrossSalary, &raw[0], &raw[1],
		&p.WorkingDays, &p.PresentDays, &p.AbsentDays, &p.LeaveDays, &p.LossOfPayDays, &p.ProRataFactor, &p.LossOfPayAmount,
		&p.VariablePayTotal, &p.ArrearsTotal, &p.ReimbursementTotal,
		&raw[2], &raw[3], &raw[4],
		&p.FinalGrossSalary, &p.TaxableIncome, &p.IncomeTax, &p.LocalTax,
		&p.SocialSecurityEmployee, &p.SocialSecurityEmployer, &p.HealthInsuranceEmployee, &p.HealthInsuranceEmployer,
		&raw[5], &p.LoanDeductionTotal, &raw[6], &p.TotalDeductions, &p.NetSalary,
		&ytdJSON, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return payroll.Payslip{}, err
	}

	for i, m := range amountMaps(&p) {
		if err := json.Unmarshal(raw[i], m); err != nil {
			return payroll.Payslip{}, fmt.Errorf("decode payslip breakdown: %w", err)
		}
	}
	if err := json.Unmarshal(ytdJSON, &p.YTD); err != nil {
		return payroll.Payslip{}, fmt.Errorf("decode payslip ytd: %w", err)
	}

	return p, nil
}

func (r *payslipRepository) Create(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	encoded := make([][]byte, 0, 7)
	for _, m := range amountMaps(&p) {
		if *m == nil {
			*m = map[string]decimal.Decimal{}
		}
		b, err := json.Marshal(*m)
		if err != nil {
			return payroll.Payslip{}, fmt.Errorf("failed to encode payslip breakdown: %w", err)
		}
		encoded = append(encoded, b)
	}
	ytdJSON, err := json.Marshal(p.YTD)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to encode payslip year to date: %w", err)
	}

	query := `
		INSERT INTO payslips (` + payslipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
				$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37, $38,
				$39, $40, $41, $42, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		p.ID, p.PayslipNumber, p.EmployeeID, p.CompanyID, p.PayrollRunID, p.Month, p.Year, p.FinancialYear,
		p.EmployeeStructureID, p.CTC, p.BasicSalary, p.GrossSalary, encoded[0], encoded[1],
		p.WorkingDays, p.PresentDays, p.AbsentDays, p.LeaveDays, p.LossOfPayDays, p.ProRataFactor, p.LossOfPayAmount,
		p.VariablePayTotal, p.ArrearsTotal, p.ReimbursementTotal,
		encoded[2], encoded[3], encoded[4],
		p.FinalGrossSalary, p.TaxableIncome, p.IncomeTax, p.LocalTax,
		p.SocialSecurityEmployee, p.SocialSecurityEmployer, p.HealthInsuranceEmployee, p.HealthInsuranceEmployer,
		encoded[5], p.LoanDeductionTotal, encoded[6], p.TotalDeductions, p.NetSalary,
		ytdJSON, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_payslip_employee_run") || isUniqueViolation(err, "uk_payslip_number") {
			return payroll.Payslip{}, payroll.ErrPayslipAlreadyExists
		}
		return payroll.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	return p, nil
}

func (r *payslipRepository) GetByID(ctx context.Context, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE id = $1`

	p, err := scanPayslip(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return p, nil
}

func (r *payslipRepository) GetByEmployeeAndRun(ctx context.Context, employeeID, runID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE employee_id = $1 AND payroll_run_id = $2`

	p, err := scanPayslip(q.QueryRow(ctx, query, employeeID, runID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return p, nil
}

func (r *payslipRepository) ListByEmployee(ctx context.Context, employeeID, companyID string, year *int) ([]payroll.Payslip, error) {
	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE employee_id = $1 AND company_id = $2`
	args := []interface{}{employeeID, companyID}
	if year != nil {
		query += " AND year = $3"
		args = append(args, *year)
	}
	query += " ORDER BY year DESC, month DESC"

	return r.list(ctx, query, args...)
}

func (r *payslipRepository) ListByRun(ctx context.Context, runID string) ([]payroll.Payslip, error) {
	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE payroll_run_id = $1 ORDER BY employee_id`
	return r.list(ctx, query, runID)
}

func (r *payslipRepository) list(ctx context.Context, query string, args ...interface{}) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payslips: %w", err)
	}

	return payslips, nil
}

func (r *payslipRepository) SumYearToDate(ctx context.Context, employeeID, companyID string, month, year int) (payroll.YearToDate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(final_gross_salary), 0), COALESCE(SUM(total_deductions), 0),
			   COALESCE(SUM(net_salary), 0), COALESCE(SUM(income_tax), 0)
		FROM payslips
		WHERE employee_id = $1 AND company_id = $2 AND year = $3 AND month < $4
	`

	var ytd payroll.YearToDate
	err := q.QueryRow(ctx, query, employeeID, companyID, year, month).Scan(
		&ytd.GrossSalary, &ytd.TotalDeductions, &ytd.NetSalary, &ytd.IncomeTax,
	)
	if err != nil {
		return payroll.YearToDate{}, fmt.Errorf("failed to sum year to date: %w", err)
	}

	return ytd, nil
}

func (r *payslipRepository) UpdateStatus(ctx context.Context, id string, from, to payroll.PayslipStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	commandTag, err := q.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update payslip status: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return payroll.ErrInvalidStatusTransition
	}

	return nil
}
