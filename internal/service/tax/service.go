package tax

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
)

type TaxServiceImpl struct {
	*Engine
	configRepo tax.ConfigurationRepository
	country    string
}

// NewTaxService builds the service. country selects which configuration applies to a company.
func NewTaxService(configRepo tax.ConfigurationRepository, country string) tax.TaxService {
	return &TaxServiceImpl{
		Engine:     NewEngine(),
		configRepo: configRepo,
		country:    country,
	}
}

func (s *TaxServiceImpl) GetConfiguration(ctx context.Context, companyID, financialYear string) (tax.Configuration, error) {
	cfg, err := s.configRepo.GetActive(ctx, companyID, s.country, financialYear)
	if err != nil {
		return tax.Configuration{}, fmt.Errorf("failed to get tax configuration for %s: %w", financialYear, err)
	}
	return cfg, nil
}

func (s *TaxServiceImpl) CreateConfiguration(ctx context.Context, req tax.CreateConfigurationRequest) (tax.Configuration, error) {
	if err := req.Validate(); err != nil {
		return tax.Configuration{}, err
	}

	created, err := s.configRepo.Create(ctx, tax.Configuration{
		CompanyID:              req.CompanyID,
		Country:                req.Country,
		FinancialYear:          req.FinancialYear,
		IncomeTaxSlabs:         req.IncomeTaxSlabs,
		LocalTaxSlabs:          req.LocalTaxSlabs,
		ProfessionalTaxEnabled: req.ProfessionalTaxEnabled,
		ProfessionalTaxSlabs:   req.ProfessionalTaxSlabs,
		SocialSecurity:         req.SocialSecurity,
		HealthInsurance:        req.HealthInsurance,
		HousingExemption:       req.HousingExemption,
		TravelExemption:        req.TravelExemption,
		IsActive:               true,
	})
	if err != nil {
		return tax.Configuration{}, fmt.Errorf("failed to create tax configuration: %w", err)
	}
	return created, nil
}
