package tax

import "context"

// TaxService resolves tax configurations and computes statutory amounts.
type TaxService interface {
	GetConfiguration(ctx context.Context, companyID, financialYear string) (Configuration, error)
	CreateConfiguration(ctx context.Context, req CreateConfigurationRequest) (Configuration, error)
	CalculateAll(cfg Configuration, in Input) Result
}
