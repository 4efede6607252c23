package salary

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type ResolverImpl struct {
	structureRepo salary.SalaryStructureRepository
}

func NewResolver(structureRepo salary.SalaryStructureRepository) salary.Resolver {
	return &ResolverImpl{structureRepo: structureRepo}
}

// Resolve walks the active components of the employee's structure by priority. Percentage
// components apply to the monthly CTC or to the basic accumulated so far. Statutory
// deductions are skipped; the tax engine computes them.
func (r *ResolverImpl) Resolve(ctx context.Context, employeeID, companyID string, asOf time.Time) (salary.Resolution, error) {
	assignment, err := r.structureRepo.GetActiveAssignment(ctx, employeeID, companyID, asOf)
	if err != nil {
		return salary.Resolution{}, fmt.Errorf("failed to get salary assignment for employee %s: %w", employeeID, err)
	}
	if !assignment.CTC.IsPositive() {
		return salary.Resolution{}, salary.ErrInvalidCTC
	}

	structure, err := r.structureRepo.GetStructure(ctx, assignment.StructureID, companyID)
	if err != nil {
		return salary.Resolution{}, fmt.Errorf("failed to get salary structure %s: %w", assignment.StructureID, err)
	}

	components := make([]salary.Component, 0, len(structure.Components))
	for _, c := range structure.Components {
		if c.IsActive {
			components = append(components, c)
		}
	}
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].Priority < components[j].Priority
	})

	res := salary.Resolution{
		EmployeeStructureID: assignment.ID,
		StructureID:         structure.ID,
		CTC:                 assignment.CTC,
		MonthlyBase:         money.Round(money.Monthly(assignment.CTC)),
		BasicSalary:         decimal.Zero,
		GrossSalary:         decimal.Zero,
		NonTaxableEarnings:  decimal.Zero,
		TotalDeductions:     decimal.Zero,
		EarningsBreakdown:   map[string]decimal.Decimal{},
		DeductionsBreakdown: map[string]decimal.Decimal{},
		CategoryTotals:      map[salary.Category]decimal.Decimal{},
		MonthlyRentPaid:     assignment.MonthlyRentPaid,
		AnnualTravelExpense: assignment.AnnualTravelExpense,
	}

	for _, c := range components {
		componentType, ok := c.Category.Type()
		if !ok || componentType != c.Type {
			return salary.Resolution{}, fmt.Errorf("component %q (%s/%s): %w", c.Name, c.Type, c.Category, salary.ErrInvalidComponent)
		}
		if c.Type == salary.ComponentTypeDeduction && c.IsStatutory {
			continue
		}

		amount := componentAmount(c, res.MonthlyBase, res.BasicSalary)

		switch c.Type {
		case salary.ComponentTypeEarning:
			res.EarningsBreakdown[c.Name] = res.EarningsBreakdown[c.Name].Add(amount)
			res.CategoryTotals[c.Category] = res.CategoryTotals[c.Category].Add(amount)
			res.GrossSalary = res.GrossSalary.Add(amount)
			if c.Category == salary.CategoryBasic {
				res.BasicSalary = res.BasicSalary.Add(amount)
			}
			if !c.IsTaxable {
				res.NonTaxableEarnings = res.NonTaxableEarnings.Add(amount)
			}
		case salary.ComponentTypeDeduction:
			res.DeductionsBreakdown[c.Name] = res.DeductionsBreakdown[c.Name].Add(amount)
			res.TotalDeductions = res.TotalDeductions.Add(amount)
		}
	}

	return res, nil
}

func componentAmount(c salary.Component, monthlyBase, basic decimal.Decimal) decimal.Decimal {
	if !c.IsPercentage {
		return money.Round(c.Value)
	}
	base := monthlyBase
	if c.PercentageOf == salary.PercentageOfBasic {
		base = basic
	}
	return money.Round(money.Percent(base, c.Value))
}
