package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComponentType enum
type ComponentType string

const (
	ComponentTypeEarning   ComponentType = "earning"
	ComponentTypeDeduction ComponentType = "deduction"
)

func (t ComponentType) Valid() bool {
	switch t {
	case ComponentTypeEarning, ComponentTypeDeduction:
		return true
	}
	return false
}

// Category is the closed set of component categories. Each category belongs to exactly one ComponentType.
type Category string

const (
	CategoryBasic            Category = "basic"
	CategoryHousingAllowance Category = "housing_allowance"
	CategoryTravelAllowance  Category = "travel_allowance"
	CategorySpecialAllowance Category = "special_allowance"
	CategoryBonus            Category = "bonus"
	CategoryOtherEarning     Category = "other_earning"

	CategorySocialSecurity  Category = "social_security"
	CategoryHealthInsurance Category = "health_insurance"
	CategoryLocalTax        Category = "local_tax"
	CategoryIncomeTax       Category = "income_tax"
	CategoryLoanRepayment   Category = "loan_repayment"
	CategoryOtherDeduction  Category = "other_deduction"
)

// Type returns the component type the category belongs to and false for unknown categories.
func (c Category) Type() (ComponentType, bool) {
	switch c {
	case CategoryBasic, CategoryHousingAllowance, CategoryTravelAllowance,
		CategorySpecialAllowance, CategoryBonus, CategoryOtherEarning:
		return ComponentTypeEarning, true
	case CategorySocialSecurity, CategoryHealthInsurance, CategoryLocalTax,
		CategoryIncomeTax, CategoryLoanRepayment, CategoryOtherDeduction:
		return ComponentTypeDeduction, true
	}
	return "", false
}

// PercentageBase selects what a percentage component is computed from.
type PercentageBase string

const (
	PercentageOfCTC   PercentageBase = "ctc"
	PercentageOfBasic PercentageBase = "basic"
)

// SalaryStructure - company-scoped compensation template
type SalaryStructure struct {
	ID          string
	CompanyID   string
	Name        string
	Description *string
	IsActive    bool
	Components  []Component
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Component - one earning or deduction line of a structure
type Component struct {
	ID           string
	StructureID  string
	Name         string
	Type         ComponentType
	Category     Category
	IsPercentage bool
	Value        decimal.Decimal
	PercentageOf PercentageBase
	IsTaxable    bool
	IsStatutory  bool
	Priority     int
	IsActive     bool
}

// EmployeeSalaryStructure binds an employee to a structure for a date range.
// At most one row per employee has IsActive set.
type EmployeeSalaryStructure struct {
	ID                  string
	EmployeeID          string
	CompanyID           string
	StructureID         string
	CTC                 decimal.Decimal
	EffectiveFrom       time.Time
	EffectiveTo         *time.Time
	IsActive            bool
	MonthlyRentPaid     decimal.Decimal
	AnnualTravelExpense decimal.Decimal
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Resolution is the base monthly pay derived from an employee's active structure.
type Resolution struct {
	EmployeeStructureID string
	StructureID         string
	CTC                 decimal.Decimal
	MonthlyBase         decimal.Decimal
	BasicSalary         decimal.Decimal
	GrossSalary         decimal.Decimal
	NonTaxableEarnings  decimal.Decimal
	TotalDeductions     decimal.Decimal
	EarningsBreakdown   map[string]decimal.Decimal
	DeductionsBreakdown map[string]decimal.Decimal
	// CategoryTotals sums earnings per category; tax exemptions read housing/travel from here.
	CategoryTotals      map[Category]decimal.Decimal
	MonthlyRentPaid     decimal.Decimal
	AnnualTravelExpense decimal.Decimal
}
