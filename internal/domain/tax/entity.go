package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// Slab is a progressive income-tax band [From, To). A nil To means no upper bound.
type Slab struct {
	From decimal.Decimal  `json:"from"`
	To   *decimal.Decimal `json:"to,omitempty"`
	Rate decimal.Decimal  `json:"rate"`
}

// FlatSlab charges a flat Amount when the monthly gross falls in [From, To).
type FlatSlab struct {
	From   decimal.Decimal  `json:"from"`
	To     *decimal.Decimal `json:"to,omitempty"`
	Amount decimal.Decimal  `json:"amount"`
}

// Contribution holds statutory contribution rates (percent) and a wage cap. A zero cap disables capping.
type Contribution struct {
	EmployeeRate decimal.Decimal `json:"employee_rate"`
	EmployerRate decimal.Decimal `json:"employer_rate"`
	Cap          decimal.Decimal `json:"cap"`
}

// ExemptionPolicy selects how an allowance exemption is computed.
type ExemptionPolicy string

const (
	PolicyPercentageOfBasic   ExemptionPolicy = "percentage_of_basic"
	PolicyFixedAmount         ExemptionPolicy = "fixed_amount"
	PolicyActualRent          ExemptionPolicy = "actual_rent"
	PolicyActualExpense       ExemptionPolicy = "actual_expense"
	PolicyPercentageOfExpense ExemptionPolicy = "percentage_of_expense"
)

// HousingExemptionRules configures the housing allowance exemption.
type HousingExemptionRules struct {
	Type              ExemptionPolicy `json:"type"`
	MinRentPercentage decimal.Decimal `json:"min_rent_percentage"`
	MaxPercentage     decimal.Decimal `json:"max_percentage"`
	FixedAmount       decimal.Decimal `json:"fixed_amount"`
}

// TravelExemptionRules configures the travel allowance exemption.
type TravelExemptionRules struct {
	Type          ExemptionPolicy `json:"type"`
	FixedAmount   decimal.Decimal `json:"fixed_amount"`
	MaxPercentage decimal.Decimal `json:"max_percentage"`
}

// Configuration is unique per (CompanyID, Country, FinancialYear).
type Configuration struct {
	ID                     string
	CompanyID              string
	Country                string
	FinancialYear          string
	IncomeTaxSlabs         []Slab
	LocalTaxSlabs          []FlatSlab
	ProfessionalTaxEnabled bool
	ProfessionalTaxSlabs   []FlatSlab
	SocialSecurity         Contribution
	HealthInsurance        Contribution
	HousingExemption       *HousingExemptionRules
	TravelExemption        *TravelExemptionRules
	IsActive               bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Input carries the figures CalculateAll needs. Annual amounts are already annualized.
type Input struct {
	GrossSalary            decimal.Decimal // monthly
	SocialSecurityBase     decimal.Decimal // monthly, usually basic
	AnnualTaxableIncome    decimal.Decimal
	AnnualBasic            decimal.Decimal
	AnnualHousingAllowance decimal.Decimal
	AnnualRentPaid         decimal.Decimal
	AnnualTravelAllowance  decimal.Decimal
	AnnualTravelExpense    decimal.Decimal
}

// Exemptions is the exemption breakdown of a tax result (annual amounts).
type Exemptions struct {
	HousingAllowance decimal.Decimal
	TravelAllowance  decimal.Decimal
}

func (e Exemptions) Total() decimal.Decimal {
	return e.HousingAllowance.Add(e.TravelAllowance)
}

// Breakdown renders exemptions as a string-keyed amount map for storage.
func (e Exemptions) Breakdown() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"housing_allowance": e.HousingAllowance,
		"travel_allowance":  e.TravelAllowance,
	}
}

// Result carries all monthly tax and contribution figures for one payslip.
type Result struct {
	IncomeTax               decimal.Decimal
	LocalTax                decimal.Decimal
	SocialSecurityEmployee  decimal.Decimal
	SocialSecurityEmployer  decimal.Decimal
	HealthInsuranceEmployee decimal.Decimal
	HealthInsuranceEmployer decimal.Decimal
	TaxableIncome           decimal.Decimal // annual, after exemptions
	Exemptions              Exemptions
}

// EmployeeStatutory sums what is withheld from the employee.
func (r Result) EmployeeStatutory() decimal.Decimal {
	return r.IncomeTax.Add(r.LocalTax).Add(r.SocialSecurityEmployee).Add(r.HealthInsuranceEmployee)
}

// EmployerContributions sums what the employer pays on top of gross.
func (r Result) EmployerContributions() decimal.Decimal {
	return r.SocialSecurityEmployer.Add(r.HealthInsuranceEmployer)
}
