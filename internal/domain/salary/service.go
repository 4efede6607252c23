package salary

import (
	"context"
	"time"
)

// Resolver computes an employee's base monthly earnings and deductions.
type Resolver interface {
	Resolve(ctx context.Context, employeeID, companyID string, asOf time.Time) (Resolution, error)
}
