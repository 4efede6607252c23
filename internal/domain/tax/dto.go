package tax

import (
	"regexp"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

var financialYearRegex = regexp.MustCompile(`^\d{4}-\d{4}$`)

type CreateConfigurationRequest struct {
	CompanyID              string                 `json:"-"`
	Country                string                 `json:"country"`
	FinancialYear          string                 `json:"financial_year"`
	IncomeTaxSlabs         []Slab                 `json:"income_tax_slabs"`
	LocalTaxSlabs          []FlatSlab             `json:"local_tax_slabs"`
	ProfessionalTaxEnabled bool                   `json:"professional_tax_enabled"`
	ProfessionalTaxSlabs   []FlatSlab             `json:"professional_tax_slabs"`
	SocialSecurity         Contribution           `json:"social_security"`
	HealthInsurance        Contribution           `json:"health_insurance"`
	HousingExemption       *HousingExemptionRules `json:"housing_exemption,omitempty"`
	TravelExemption        *TravelExemptionRules  `json:"travel_exemption,omitempty"`
}

func (r *CreateConfigurationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Country) {
		errs.Add("country", "is required")
	}
	if !financialYearRegex.MatchString(r.FinancialYear) {
		errs.Add("financial_year", "must look like 2024-2025")
	}
	for _, s := range r.IncomeTaxSlabs {
		if s.From.IsNegative() || s.Rate.IsNegative() || (s.To != nil && !s.To.GreaterThan(s.From)) {
			errs.Add("income_tax_slabs", "each slab needs 0 <= from < to and a non-negative rate")
			break
		}
	}
	for _, c := range []Contribution{r.SocialSecurity, r.HealthInsurance} {
		if c.EmployeeRate.IsNegative() || c.EmployerRate.IsNegative() || c.Cap.IsNegative() {
			errs.Add("contributions", "rates and caps must be non-negative")
			break
		}
	}
	if r.HousingExemption != nil && !validator.IsInSlice(string(r.HousingExemption.Type), []string{
		string(PolicyPercentageOfBasic), string(PolicyFixedAmount), string(PolicyActualRent),
	}) {
		errs.Add("housing_exemption.type", ErrInvalidExemptionType.Error())
	}
	if r.TravelExemption != nil && !validator.IsInSlice(string(r.TravelExemption.Type), []string{
		string(PolicyActualExpense), string(PolicyFixedAmount), string(PolicyPercentageOfExpense),
	}) {
		errs.Add("travel_exemption.type", ErrInvalidExemptionType.Error())
	}

	return errs.Err()
}

type ConfigurationResponse struct {
	ID                     string                 `json:"id"`
	CompanyID              string                 `json:"company_id"`
	Country                string                 `json:"country"`
	FinancialYear          string                 `json:"financial_year"`
	IncomeTaxSlabs         []Slab                 `json:"income_tax_slabs"`
	LocalTaxSlabs          []FlatSlab             `json:"local_tax_slabs"`
	ProfessionalTaxEnabled bool                   `json:"professional_tax_enabled"`
	ProfessionalTaxSlabs   []FlatSlab             `json:"professional_tax_slabs"`
	SocialSecurity         Contribution           `json:"social_security"`
	HealthInsurance        Contribution           `json:"health_insurance"`
	HousingExemption       *HousingExemptionRules `json:"housing_exemption,omitempty"`
	TravelExemption        *TravelExemptionRules  `json:"travel_exemption,omitempty"`
	IsActive               bool                   `json:"is_active"`
}

func ToResponse(c Configuration) ConfigurationResponse {
	return ConfigurationResponse{
		ID:                     c.ID,
		CompanyID:              c.CompanyID,
		Country:                c.Country,
		FinancialYear:          c.FinancialYear,
		IncomeTaxSlabs:         c.IncomeTaxSlabs,
		LocalTaxSlabs:          c.LocalTaxSlabs,
		ProfessionalTaxEnabled: c.ProfessionalTaxEnabled,
		ProfessionalTaxSlabs:   c.ProfessionalTaxSlabs,
		SocialSecurity:         c.SocialSecurity,
		HealthInsurance:        c.HealthInsurance,
		HousingExemption:       c.HousingExemption,
		TravelExemption:        c.TravelExemption,
		IsActive:               c.IsActive,
	}
}
