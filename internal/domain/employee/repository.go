package employee

import "context"

// EmployeeRepository is the read-only employee directory.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id, companyID string) (Employee, error)
	// ListActive returns IDs of active, non-deleted employees ordered by employee code.
	ListActive(ctx context.Context, companyID string) ([]string, error)
}
