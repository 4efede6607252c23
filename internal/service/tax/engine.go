package tax

import (
	"sort"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// Engine is a stateless calculator over a tax.Configuration.
type Engine struct {
}

func NewEngine() *Engine {
	return &Engine{}
}

// CalculateIncomeTax taxes each [From, To) band at its rate and returns the monthly
// withholding: annual tax / 12, rounded.
func (e *Engine) CalculateIncomeTax(annualTaxableIncome decimal.Decimal, slabs []tax.Slab) decimal.Decimal {
	if len(slabs) == 0 || !annualTaxableIncome.IsPositive() {
		return decimal.Zero
	}

	sorted := make([]tax.Slab, len(slabs))
	copy(sorted, slabs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].From.LessThan(sorted[j].From)
	})

	annual := decimal.Zero
	for _, slab := range sorted {
		if annualTaxableIncome.LessThanOrEqual(slab.From) {
			break
		}
		upper := annualTaxableIncome
		if slab.To != nil && slab.To.LessThan(upper) {
			upper = *slab.To
		}
		annual = annual.Add(money.Percent(upper.Sub(slab.From), slab.Rate))
	}

	return money.Round(money.Monthly(annual))
}

// CalculateLocalTax returns the flat amount of the slab containing grossSalary. Professional
// slabs replace local slabs when enabled.
func (e *Engine) CalculateLocalTax(grossSalary decimal.Decimal, localSlabs []tax.FlatSlab, professionalTaxEnabled bool, professionalSlabs []tax.FlatSlab) decimal.Decimal {
	slabs := localSlabs
	if professionalTaxEnabled {
		slabs = professionalSlabs
	}

	for _, slab := range slabs {
		if grossSalary.LessThan(slab.From) {
			continue
		}
		if slab.To != nil && !grossSalary.LessThan(*slab.To) {
			continue
		}
		return money.Round(slab.Amount)
	}
	return decimal.Zero
}

// CalculateSocialSecurity applies each side's rate to base capped at c.Cap.
func (e *Engine) CalculateSocialSecurity(base decimal.Decimal, c tax.Contribution) (employee, employer decimal.Decimal) {
	if c.Cap.IsPositive() {
		base = money.Min(base, c.Cap)
	}
	return money.Round(money.Percent(base, c.EmployeeRate)), money.Round(money.Percent(base, c.EmployerRate))
}

// CalculateHealthInsurance applies each side's rate to grossSalary. Above a positive cap
// the employee is out of the scheme and both contributions are zero.
func (e *Engine) CalculateHealthInsurance(grossSalary decimal.Decimal, c tax.Contribution) (employee, employer decimal.Decimal) {
	if c.Cap.IsPositive() && grossSalary.GreaterThan(c.Cap) {
		return decimal.Zero, decimal.Zero
	}
	return money.Round(money.Percent(grossSalary, c.EmployeeRate)), money.Round(money.Percent(grossSalary, c.EmployerRate))
}

// CalculateHousingAllowanceExemption works on annual amounts. Unknown policies exempt nothing.
func (e *Engine) CalculateHousingAllowanceExemption(allowanceReceived, rentPaid, basic decimal.Decimal, rules *tax.HousingExemptionRules) decimal.Decimal {
	if rules == nil {
		return decimal.Zero
	}

	var exemption decimal.Decimal
	switch rules.Type {
	case tax.PolicyPercentageOfBasic:
		exemption = money.Min(
			rentPaid.Sub(money.Percent(basic, rules.MinRentPercentage)),
			allowanceReceived,
			money.Percent(basic, rules.MaxPercentage),
		)
	case tax.PolicyFixedAmount:
		exemption = money.Min(allowanceReceived, rules.FixedAmount)
	case tax.PolicyActualRent:
		exemption = money.Min(allowanceReceived, rentPaid)
	default:
		return decimal.Zero
	}

	return money.Round(money.ZeroFloor(exemption))
}

// CalculateTravelAllowanceExemption works on annual amounts. Unknown policies exempt nothing.
func (e *Engine) CalculateTravelAllowanceExemption(allowanceReceived, actualExpense decimal.Decimal, rules *tax.TravelExemptionRules) decimal.Decimal {
	if rules == nil {
		return decimal.Zero
	}

	var exemption decimal.Decimal
	switch rules.Type {
	case tax.PolicyActualExpense:
		exemption = money.Min(allowanceReceived, actualExpense)
	case tax.PolicyFixedAmount:
		exemption = money.Min(allowanceReceived, rules.FixedAmount)
	case tax.PolicyPercentageOfExpense:
		exemption = money.Min(allowanceReceived, money.Percent(actualExpense, rules.MaxPercentage))
	default:
		return decimal.Zero
	}

	return money.Round(money.ZeroFloor(exemption))
}

// CalculateAll subtracts exemptions from the annual taxable income and computes every
// statutory figure for one month.
func (e *Engine) CalculateAll(cfg tax.Configuration, in tax.Input) tax.Result {
	exemptions := tax.Exemptions{
		HousingAllowance: e.CalculateHousingAllowanceExemption(in.AnnualHousingAllowance, in.AnnualRentPaid, in.AnnualBasic, cfg.HousingExemption),
		TravelAllowance:  e.CalculateTravelAllowanceExemption(in.AnnualTravelAllowance, in.AnnualTravelExpense, cfg.TravelExemption),
	}
	taxable := money.ZeroFloor(in.AnnualTaxableIncome.Sub(exemptions.Total()))

	ssEmployee, ssEmployer := e.CalculateSocialSecurity(in.SocialSecurityBase, cfg.SocialSecurity)
	hiEmployee, hiEmployer := e.CalculateHealthInsurance(in.GrossSalary, cfg.HealthInsurance)

	return tax.Result{
		IncomeTax:               e.CalculateIncomeTax(taxable, cfg.IncomeTaxSlabs),
		LocalTax:                e.CalculateLocalTax(in.GrossSalary, cfg.LocalTaxSlabs, cfg.ProfessionalTaxEnabled, cfg.ProfessionalTaxSlabs),
		SocialSecurityEmployee:  ssEmployee,
		SocialSecurityEmployer:  ssEmployer,
		HealthInsuranceEmployee: hiEmployee,
		HealthInsuranceEmployer: hiEmployer,
		TaxableIncome:           taxable,
		Exemptions:              exemptions,
	}
}
