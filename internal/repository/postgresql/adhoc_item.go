package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/adhoc"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type adhocItemRepository struct {
	db *database.DB
}

func NewAdHocItemRepository(db *database.DB) adhoc.ItemRepository {
	return &adhocItemRepository{db: db}
}

const adhocItemColumns = `
	id, type, employee_id, company_id, month, year, description, claimed_amount, approved_amount,
	period_start, period_end, status, approved_by, approved_at, rejected_reason,
	payroll_run_id, payslip_id, processed_at, created_at, updated_at
`

func scanAdHocItem(row pgx.Row) (adhoc.Item, error) {
	var i adhoc.Item
	err := row.Scan(
		&i.ID, &i.Type, &i.EmployeeID, &i.CompanyID, &i.Month, &i.Year, &i.Description, &i.ClaimedAmount, &i.ApprovedAmount,
		&i.PeriodStart, &i.PeriodEnd, &i.Status, &i.ApprovedBy, &i.ApprovedAt, &i.RejectedReason,
		&i.PayrollRunID, &i.PayslipID, &i.ProcessedAt, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

func (r *adhocItemRepository) Create(ctx context.Context, item adhoc.Item) (adhoc.Item, error) {
	q := GetQuerier(ctx, r.db)

	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO adhoc_payroll_items (
			id, type, employee_id, company_id, month, year, description, claimed_amount,
			period_start, period_end, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		item.ID, item.Type, item.EmployeeID, item.CompanyID, item.Month, item.Year, item.Description, item.ClaimedAmount,
		item.PeriodStart, item.PeriodEnd, item.Status,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return adhoc.Item{}, fmt.Errorf("failed to create ad hoc item: %w", err)
	}

	return item, nil
}

func (r *adhocItemRepository) GetByID(ctx context.Context, id string) (adhoc.Item, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + adhocItemColumns + ` FROM adhoc_payroll_items WHERE id = $1`

	item, err := scanAdHocItem(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return adhoc.Item{}, adhoc.ErrItemNotFound
		}
		return adhoc.Item{}, fmt.Errorf("failed to get ad hoc item: %w", err)
	}

	return item, nil
}

func (r *adhocItemRepository) ListApproved(ctx context.Context, employeeID, companyID string, month, year int) ([]adhoc.Item, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + adhocItemColumns + `
		FROM adhoc_payroll_items
		WHERE employee_id = $1 AND company_id = $2 AND month = $3 AND year = $4 AND status = $5
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, month, year, adhoc.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved ad hoc items: %w", err)
	}
	defer rows.Close()

	var items []adhoc.Item
	for rows.Next() {
		item, err := scanAdHocItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ad hoc item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ad hoc items: %w", err)
	}

	return items, nil
}

func (r *adhocItemRepository) UpdateStatus(ctx context.Context, id string, from, to adhoc.Status, reason *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE adhoc_payroll_items
		SET status = $3, rejected_reason = COALESCE($4, rejected_reason), updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	commandTag, err := q.Exec(ctx, query, id, from, to, reason)
	if err != nil {
		return fmt.Errorf("failed to update ad hoc item status: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return adhoc.ErrInvalidTransition
	}

	return nil
}

func (r *adhocItemRepository) Approve(ctx context.Context, id string, from adhoc.Status, amount decimal.Decimal, approvedBy string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE adhoc_payroll_items
		SET status = $3, approved_amount = $4, approved_by = $5, approved_at = $6, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	commandTag, err := q.Exec(ctx, query, id, from, adhoc.StatusApproved, amount, approvedBy, at)
	if err != nil {
		return fmt.Errorf("failed to approve ad hoc item: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return adhoc.ErrInvalidTransition
	}

	return nil
}

// MarkProcessed only touches rows that are still approved; the caller compares the count.
func (r *adhocItemRepository) MarkProcessed(ctx context.Context, ids []string, payrollRunID, payslipID string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE adhoc_payroll_items
		SET status = $2, payroll_run_id = $3, payslip_id = $4, processed_at = $5, updated_at = NOW()
		WHERE id = ANY($1) AND status = $6
	`

	commandTag, err := q.Exec(ctx, query, ids, adhoc.StatusProcessed, payrollRunID, payslipID, at, adhoc.StatusApproved)
	if err != nil {
		return 0, fmt.Errorf("failed to mark ad hoc items processed: %w", err)
	}

	return commandTag.RowsAffected(), nil
}
