package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

// TestDatabaseSetup wraps a connection to a migrated test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolOptions{MaxConns: 5})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	t.Cleanup(setup.Close)
	return setup
}

// TruncatePayrollTables empties every table the payroll engine writes.
func (s *TestDatabaseSetup) TruncatePayrollTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"adhoc_payroll_items",
		"loan_deductions",
		"payslips",
		"payroll_runs",
		"employee_loans",
		"tax_configurations",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// SeedEmployee returns the ID of an existing active employee and their company.
func (s *TestDatabaseSetup) SeedEmployee(ctx context.Context, t *testing.T) (employeeID, companyID string) {
	t.Helper()
	err := s.DB.QueryRow(ctx, `
		SELECT id, company_id FROM employees
		WHERE employment_status = 'active' AND deleted_at IS NULL
		LIMIT 1
	`).Scan(&employeeID, &companyID)
	if err != nil {
		t.Skipf("no active employee in test database: %v", err)
	}
	return employeeID, companyID
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
