package salary

import (
	"context"
	"time"
)

// SalaryStructureRepository defines read access to compensation structures.
// All methods include companyID parameter to prevent cross-company data access.
type SalaryStructureRepository interface {
	// GetActiveAssignment returns the single active EmployeeSalaryStructure effective at asOf.
	GetActiveAssignment(ctx context.Context, employeeID, companyID string, asOf time.Time) (EmployeeSalaryStructure, error)

	// GetStructure returns the structure with its active components ordered by priority ascending.
	GetStructure(ctx context.Context, structureID, companyID string) (SalaryStructure, error)
}
