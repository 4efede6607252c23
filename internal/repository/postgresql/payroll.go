package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type payrollRunRepository struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payroll.RunRepository {
	return &payrollRunRepository{db: db}
}

// ========== RUNS ==========

func (r *payrollRunRepository) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	totalsJSON, err := json.Marshal(run.Totals)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to encode payroll run totals: %w", err)
	}

	query := `
		INSERT INTO payroll_runs (id, company_id, month, year, financial_year, status, totals)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		run.ID, run.CompanyID, run.Month, run.Year, run.FinancialYear, run.Status, totalsJSON,
	).Scan(&run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_payroll_run_period") {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRunRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, month, year, financial_year, status,
			   total_employees, processed_employees, failed_employees, totals, failure_details,
			   processed_by, processed_at, locked_by, locked_at, created_at, updated_at
		FROM payroll_runs
		WHERE id = $1
	`

	var run payroll.PayrollRun
	var totalsJSON, failuresJSON []byte
	err := q.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.CompanyID, &run.Month, &run.Year, &run.FinancialYear, &run.Status,
		&run.TotalEmployees, &run.ProcessedEmployees, &run.FailedEmployees, &totalsJSON, &failuresJSON,
		&run.ProcessedBy, &run.ProcessedAt, &run.LockedBy, &run.LockedAt, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	run.Totals = payroll.ZeroTotals()
	if err := json.Unmarshal(totalsJSON, &run.Totals); err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to decode payroll run totals: %w", err)
	}
	if err := json.Unmarshal(failuresJSON, &run.FailureDetails); err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to decode payroll run failures: %w", err)
	}

	return run, nil
}

func (r *payrollRunRepository) TransitionStatus(ctx context.Context, id string, from, to payroll.RunStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	commandTag, err := q.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to transition payroll run: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return payroll.ErrRunStatusChanged
	}

	return nil
}

// SaveOutcome only applies to a run that is still processing.
func (r *payrollRunRepository) SaveOutcome(ctx context.Context, run payroll.PayrollRun) error {
	q := GetQuerier(ctx, r.db)

	totalsJSON, err := json.Marshal(run.Totals)
	if err != nil {
		return fmt.Errorf("failed to encode payroll run totals: %w", err)
	}
	failuresJSON, err := json.Marshal(nonNilSlice(run.FailureDetails))
	if err != nil {
		return fmt.Errorf("failed to encode payroll run failures: %w", err)
	}

	query := `
		UPDATE payroll_runs
		SET status = $2, total_employees = $3, processed_employees = $4, failed_employees = $5,
			totals = $6, failure_details = $7, processed_by = $8, processed_at = $9, updated_at = NOW()
		WHERE id = $1 AND status = $10
	`

	commandTag, err := q.Exec(ctx, query,
		run.ID, run.Status, run.TotalEmployees, run.ProcessedEmployees, run.FailedEmployees,
		totalsJSON, failuresJSON, run.ProcessedBy, run.ProcessedAt, payroll.RunStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to save payroll run outcome: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return payroll.ErrRunStatusChanged
	}

	return nil
}

func (r *payrollRunRepository) Lock(ctx context.Context, id, lockedBy string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $2, locked_by = $3, locked_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`

	commandTag, err := q.Exec(ctx, query, id, payroll.RunStatusLocked, lockedBy, at, payroll.RunStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to lock payroll run: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return payroll.ErrRunStatusChanged
	}

	return nil
}

func (r *payrollRunRepository) FailStale(ctx context.Context, olderThan time.Time, reason payroll.EmployeeFailure) ([]payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	failuresJSON, err := json.Marshal([]payroll.EmployeeFailure{reason})
	if err != nil {
		return nil, fmt.Errorf("failed to encode stale run failure: %w", err)
	}

	query := `
		UPDATE payroll_runs
		SET status = $1, failure_details = failure_details || $2::jsonb, updated_at = NOW()
		WHERE status = $3 AND updated_at < $4
		RETURNING id, company_id, month, year, updated_at
	`

	rows, err := q.Query(ctx, query, payroll.RunStatusFailed, failuresJSON, payroll.RunStatusProcessing, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to fail stale payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run := payroll.PayrollRun{Status: payroll.RunStatusFailed}
		if err := rows.Scan(&run.ID, &run.CompanyID, &run.Month, &run.Year, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stale payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stale payroll runs: %w", err)
	}

	return runs, nil
}
