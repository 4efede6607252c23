package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type attendanceRecordRepository struct {
	db *database.DB
}

func NewAttendanceRecordRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRecordRepository{db: db}
}

func (r *attendanceRecordRepository) ListDailyRecords(ctx context.Context, employeeID, companyID string, from, to time.Time) ([]attendance.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT date, status
		FROM attendances
		WHERE employee_id = $1 AND company_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.DailyRecord
	for rows.Next() {
		var rec attendance.DailyRecord
		if err := rows.Scan(&rec.Date, &rec.Status); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, nil
}

// ListPaidLeaveDays expands approved paid leave requests into the calendar days they cover.
func (r *attendanceRecordRepository) ListPaidLeaveDays(ctx context.Context, employeeID, companyID string, from, to time.Time) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT d::date
		FROM leave_requests lr
		INNER JOIN employees e ON lr.employee_id = e.id
		INNER JOIN leave_types lt ON lr.leave_type_id = lt.id
		CROSS JOIN LATERAL generate_series(
			GREATEST(lr.start_date, $3::date), LEAST(lr.end_date, $4::date), INTERVAL '1 day'
		) AS d
		WHERE lr.employee_id = $1 AND e.company_id = $2
		  AND lr.status = 'approved' AND lt.is_paid = true
		  AND lr.start_date <= $4 AND lr.end_date >= $3
		ORDER BY 1
	`

	return r.listDates(ctx, q, "paid leave days", query, employeeID, companyID, from, to)
}

func (r *attendanceRecordRepository) ListHolidays(ctx context.Context, companyID string, from, to time.Time) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT date
		FROM company_holidays
		WHERE company_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	return r.listDates(ctx, q, "holidays", query, companyID, from, to)
}

func (r *attendanceRecordRepository) listDates(ctx context.Context, q database.Querier, what, query string, args ...interface{}) ([]time.Time, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", what, err)
	}

	return dates, nil
}
