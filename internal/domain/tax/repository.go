package tax

import "context"

type ConfigurationRepository interface {
	// GetActive returns the active configuration for (company, country, financial year).
	GetActive(ctx context.Context, companyID, country, financialYear string) (Configuration, error)
	Create(ctx context.Context, cfg Configuration) (Configuration, error)
}
