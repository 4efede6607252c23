package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type salaryStructureRepository struct {
	db *database.DB
}

func NewSalaryStructureRepository(db *database.DB) salary.SalaryStructureRepository {
	return &salaryStructureRepository{db: db}
}

func (r *salaryStructureRepository) GetActiveAssignment(ctx context.Context, employeeID, companyID string, asOf time.Time) (salary.EmployeeSalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, structure_id, ctc, effective_from, effective_to,
			   is_active, monthly_rent_paid, annual_travel_expense, created_at, updated_at
		FROM employee_salary_structures
		WHERE employee_id = $1 AND company_id = $2 AND is_active = true
		  AND effective_from <= $3
		  AND (effective_to IS NULL OR effective_to >= $3)
	`

	var a salary.EmployeeSalaryStructure
	err := q.QueryRow(ctx, query, employeeID, companyID, asOf).Scan(
		&a.ID, &a.EmployeeID, &a.CompanyID, &a.StructureID, &a.CTC, &a.EffectiveFrom, &a.EffectiveTo,
		&a.IsActive, &a.MonthlyRentPaid, &a.AnnualTravelExpense, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.EmployeeSalaryStructure{}, salary.ErrActiveStructureNotFound
		}
		return salary.EmployeeSalaryStructure{}, fmt.Errorf("failed to get active salary assignment: %w", err)
	}

	return a, nil
}

func (r *salaryStructureRepository) GetStructure(ctx context.Context, structureID, companyID string) (salary.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, description, is_active, created_at, updated_at
		FROM salary_structures
		WHERE id = $1 AND company_id = $2
	`

	var s salary.SalaryStructure
	err := q.QueryRow(ctx, query, structureID, companyID).Scan(
		&s.ID, &s.CompanyID, &s.Name, &s.Description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.SalaryStructure{}, salary.ErrStructureNotFound
		}
		return salary.SalaryStructure{}, fmt.Errorf("failed to get salary structure: %w", err)
	}

	components, err := r.listComponents(ctx, q, s.ID)
	if err != nil {
		return salary.SalaryStructure{}, err
	}
	s.Components = components

	return s, nil
}

func (r *salaryStructureRepository) listComponents(ctx context.Context, q database.Querier, structureID string) ([]salary.Component, error) {
	query := `
		SELECT id, structure_id, name, type, category, is_percentage, value,
			   COALESCE(percentage_of, ''), is_taxable, is_statutory, priority, is_active
		FROM salary_components
		WHERE structure_id = $1 AND is_active = true
		ORDER BY priority, name
	`

	rows, err := q.Query(ctx, query, structureID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary components: %w", err)
	}
	defer rows.Close()

	var components []salary.Component
	for rows.Next() {
		var c salary.Component
		if err := rows.Scan(
			&c.ID, &c.StructureID, &c.Name, &c.Type, &c.Category, &c.IsPercentage, &c.Value,
			&c.PercentageOf, &c.IsTaxable, &c.IsStatutory, &c.Priority, &c.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan salary component: %w", err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary components: %w", err)
	}

	return components, nil
}
