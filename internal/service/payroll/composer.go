package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/adhoc"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// ComposeInput is one employee's slot in a run.
type ComposeInput struct {
	EmployeeID    string
	CompanyID     string
	RunID         string
	Month         int
	Year          int
	FinancialYear string
	TaxConfig     tax.Configuration
}

// Composer builds and persists one payslip together with its side effects.
type Composer struct {
	tx           database.Transactor
	resolver     salary.Resolver
	taxService   tax.TaxService
	attendance   attendance.Source
	adhocService adhoc.AdHocService
	loanService  loan.LoanService
	payslipRepo  payroll.PayslipRepository
	numberPrefix string
}

func NewComposer(
	tx database.Transactor,
	resolver salary.Resolver,
	taxService tax.TaxService,
	attendanceSource attendance.Source,
	adhocService adhoc.AdHocService,
	loanService loan.LoanService,
	payslipRepo payroll.PayslipRepository,
	numberPrefix string,
) *Composer {
	return &Composer{
		tx:           tx,
		resolver:     resolver,
		taxService:   taxService,
		attendance:   attendanceSource,
		adhocService: adhocService,
		loanService:  loanService,
		payslipRepo:  payslipRepo,
		numberPrefix: numberPrefix,
	}
}

type scheduledLoan struct {
	loan  loan.Loan
	entry loan.ScheduleEntry
}

// Compose runs the whole pipeline in one transaction: the payslip, consumed ad hoc items
// and loan ledger rows commit together or not at all.
func (c *Composer) Compose(ctx context.Context, in ComposeInput) (payroll.Payslip, error) {
	var created payroll.Payslip

	err := c.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		slip, consumed, loans, err := c.build(ctx, in)
		if err != nil {
			return err
		}

		created, err = c.payslipRepo.Create(ctx, slip)
		if err != nil {
			return fmt.Errorf("failed to create payslip: %w", err)
		}

		if err := c.adhocService.MarkProcessed(ctx, consumed, in.RunID, created.ID); err != nil {
			return err
		}

		for _, sl := range loans {
			_, err := c.loanService.RecordDeduction(ctx, loan.DeductionRequest{
				LoanID:       sl.loan.ID,
				EmployeeID:   in.EmployeeID,
				CompanyID:    in.CompanyID,
				PayrollRunID: in.RunID,
				PayslipID:    created.ID,
				Month:        in.Month,
				Year:         in.Year,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return payroll.Payslip{}, err
	}

	return created, nil
}

func (c *Composer) build(ctx context.Context, in ComposeInput) (payroll.Payslip, []string, []scheduledLoan, error) {
	_, periodEnd := attendance.Period(in.Month, in.Year)

	// 1. base pay
	res, err := c.resolver.Resolve(ctx, in.EmployeeID, in.CompanyID, periodEnd)
	if err != nil {
		return payroll.Payslip{}, nil, nil, err
	}

	// 2. attendance and loss of pay
	agg, err := c.attendance.GetMonthlyAggregate(ctx, in.EmployeeID, in.CompanyID, in.Month, in.Year)
	if err != nil {
		return payroll.Payslip{}, nil, nil, fmt.Errorf("failed to get attendance aggregate: %w", err)
	}
	proRata := decimal.NewFromInt(1)
	lopAmount := decimal.Zero
	lopDays := agg.LossOfPayDays()
	if agg.WorkingDays > 0 {
		workingDays := decimal.NewFromInt(int64(agg.WorkingDays))
		proRata = decimal.NewFromInt(int64(agg.PresentDays)).Div(workingDays)
		if lopDays > 0 {
			lopAmount = money.Round(res.GrossSalary.Div(workingDays).Mul(decimal.NewFromInt(int64(lopDays))))
		}
	}

	// 3. approved ad hoc items
	adhocTotals, err := c.adhocService.GetApprovedTotals(ctx, in.EmployeeID, in.CompanyID, in.Month, in.Year)
	if err != nil {
		return payroll.Payslip{}, nil, nil, err
	}

	// 4. final gross; attendance never takes base pay below zero
	attendanceAdjusted := money.ZeroFloor(money.Round(res.GrossSalary.Mul(proRata)).Sub(lopAmount))
	finalGross := attendanceAdjusted.Add(adhocTotals.Total())

	// 5. statutory amounts on the final gross
	nonTaxable := money.Round(res.NonTaxableEarnings.Mul(proRata))
	monthlyTaxable := money.ZeroFloor(finalGross.Sub(adhocTotals.Reimbursement).Sub(nonTaxable))
	taxResult := c.taxService.CalculateAll(in.TaxConfig, tax.Input{
		GrossSalary:            finalGross,
		SocialSecurityBase:     money.Round(res.BasicSalary.Mul(proRata)),
		AnnualTaxableIncome:    money.Annualize(monthlyTaxable),
		AnnualBasic:            money.Annualize(res.BasicSalary),
		AnnualHousingAllowance: money.Annualize(res.CategoryTotals[salary.CategoryHousingAllowance]),
		AnnualRentPaid:         money.Annualize(res.MonthlyRentPaid),
		AnnualTravelAllowance:  money.Annualize(res.CategoryTotals[salary.CategoryTravelAllowance]),
		AnnualTravelExpense:    res.AnnualTravelExpense,
	})

	// 6. loans due this period
	activeLoans, err := c.loanService.ListActiveLoans(ctx, in.EmployeeID, in.CompanyID)
	if err != nil {
		return payroll.Payslip{}, nil, nil, err
	}
	var due []scheduledLoan
	loanTotal := decimal.Zero
	loanBreakdown := map[string]decimal.Decimal{}
	for _, l := range activeLoans {
		entry, ok := l.ScheduledEntry(in.Month, in.Year)
		if !ok {
			continue
		}
		due = append(due, scheduledLoan{loan: l, entry: entry})
		loanBreakdown[l.ID] = entry.EMI
		loanTotal = loanTotal.Add(entry.EMI)
	}

	// 7. deductions and net
	deductions := make(map[string]decimal.Decimal, len(res.DeductionsBreakdown)+5)
	for name, amount := range res.DeductionsBreakdown {
		deductions[name] = amount
	}
	addNonZero(deductions, string(salary.CategoryIncomeTax), taxResult.IncomeTax)
	addNonZero(deductions, string(salary.CategoryLocalTax), taxResult.LocalTax)
	addNonZero(deductions, string(salary.CategorySocialSecurity), taxResult.SocialSecurityEmployee)
	addNonZero(deductions, string(salary.CategoryHealthInsurance), taxResult.HealthInsuranceEmployee)
	addNonZero(deductions, string(salary.CategoryLoanRepayment), loanTotal)

	totalDeductions := money.Sum(res.TotalDeductions, taxResult.EmployeeStatutory(), loanTotal)
	netSalary := finalGross.Sub(totalDeductions)

	slip := payroll.Payslip{
		PayslipNumber:           PayslipNumber(c.numberPrefix, in.CompanyID, in.EmployeeID, in.Year, in.Month),
		EmployeeID:              in.EmployeeID,
		CompanyID:               in.CompanyID,
		PayrollRunID:            in.RunID,
		Month:                   in.Month,
		Year:                    in.Year,
		FinancialYear:           in.FinancialYear,
		EmployeeStructureID:     res.EmployeeStructureID,
		CTC:                     res.CTC,
		BasicSalary:             res.BasicSalary,
		GrossSalary:             res.GrossSalary,
		EarningsBreakdown:       res.EarningsBreakdown,
		DeductionsBreakdown:     deductions,
		WorkingDays:             agg.WorkingDays,
		PresentDays:             agg.PresentDays,
		AbsentDays:              agg.AbsentDays,
		LeaveDays:               agg.LeaveDays,
		LossOfPayDays:           lopDays,
		ProRataFactor:           proRata.Round(4),
		LossOfPayAmount:         lopAmount,
		VariablePayTotal:        adhocTotals.VariablePay,
		ArrearsTotal:            adhocTotals.Arrears,
		ReimbursementTotal:      adhocTotals.Reimbursement,
		VariablePayBreakdown:    adhocTotals.VariablePayBreakdown,
		ArrearsBreakdown:        adhocTotals.ArrearsBreakdown,
		ReimbursementBreakdown:  adhocTotals.ReimbursementBreakdown,
		FinalGrossSalary:        finalGross,
		TaxableIncome:           taxResult.TaxableIncome,
		IncomeTax:               taxResult.IncomeTax,
		LocalTax:                taxResult.LocalTax,
		SocialSecurityEmployee:  taxResult.SocialSecurityEmployee,
		SocialSecurityEmployer:  taxResult.SocialSecurityEmployer,
		HealthInsuranceEmployee: taxResult.HealthInsuranceEmployee,
		HealthInsuranceEmployer: taxResult.HealthInsuranceEmployer,
		ExemptionsBreakdown:     taxResult.Exemptions.Breakdown(),
		LoanDeductionTotal:      loanTotal,
		LoanDeductionsBreakdown: loanBreakdown,
		TotalDeductions:         totalDeductions,
		NetSalary:               netSalary,
		Status:                  payroll.PayslipStatusGenerated,
	}

	// 8. year to date, including this month
	prior, err := c.payslipRepo.SumYearToDate(ctx, in.EmployeeID, in.CompanyID, in.Month, in.Year)
	if err != nil {
		return payroll.Payslip{}, nil, nil, fmt.Errorf("failed to sum year to date: %w", err)
	}
	slip.YTD = prior.Add(slip)

	return slip, adhocTotals.ItemIDs, due, nil
}

func addNonZero(m map[string]decimal.Decimal, key string, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	m[key] = m[key].Add(amount)
}
