package loan

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// compounding precision for (1+r)^n
const factorPrecision = 24

var twelveHundred = decimal.NewFromInt(1200)

// Amortizer computes reducing-balance installments.
type Amortizer struct {
}

func NewAmortizer() *Amortizer {
	return &Amortizer{}
}

func monthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(twelveHundred)
}

// CalculateEMI returns P·r·(1+r)^n / ((1+r)^n − 1) rounded to whole units, with r = rate/1200.
// Zero interest degrades to P/n; a non-positive tenure or negative rate yields zero.
func (a *Amortizer) CalculateEMI(principal, annualRatePercent decimal.Decimal, tenureMonths int) decimal.Decimal {
	if tenureMonths <= 0 || annualRatePercent.IsNegative() || !principal.IsPositive() {
		return decimal.Zero
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	if annualRatePercent.IsZero() {
		return money.Round(principal.Div(n))
	}

	r := monthlyRate(annualRatePercent)
	onePlusR := decimal.NewFromInt(1).Add(r)
	factor := decimal.NewFromInt(1)
	for i := 0; i < tenureMonths; i++ {
		factor = factor.Mul(onePlusR).Truncate(factorPrecision)
	}

	emi := principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
	return money.Round(emi)
}

// GenerateRepaymentSchedule emits one entry per month starting at startDate. Interest is
// rounded per month and the last entry takes whatever principal remains, so principal
// components sum to the principal and the schedule ends at zero.
func (a *Amortizer) GenerateRepaymentSchedule(principal, annualRatePercent decimal.Decimal, tenureMonths int, startDate time.Time) []loan.ScheduleEntry {
	return a.generateSchedule(principal, annualRatePercent, tenureMonths, startDate, 0)
}

// generateSchedule dates the first installment offset months after anchor.
func (a *Amortizer) generateSchedule(principal, annualRatePercent decimal.Decimal, tenureMonths int, anchor time.Time, offset int) []loan.ScheduleEntry {
	if tenureMonths <= 0 || annualRatePercent.IsNegative() || !principal.IsPositive() {
		return nil
	}
	emi := a.CalculateEMI(principal, annualRatePercent, tenureMonths)

	r := monthlyRate(annualRatePercent)
	outstanding := principal
	schedule := make([]loan.ScheduleEntry, 0, tenureMonths)

	for m := 1; m <= tenureMonths; m++ {
		interest := money.Round(outstanding.Mul(r))
		principalPart := money.ZeroFloor(emi.Sub(interest))
		if m == tenureMonths || principalPart.GreaterThan(outstanding) {
			principalPart = outstanding
		}
		outstanding = money.ZeroFloor(outstanding.Sub(principalPart))

		schedule = append(schedule, loan.ScheduleEntry{
			Month:              m,
			PaymentDate:        paymentDate(anchor, offset+m-1),
			EMI:                principalPart.Add(interest),
			PrincipalComponent: principalPart,
			InterestComponent:  interest,
			Outstanding:        outstanding,
		})
	}

	return schedule
}

// paymentDate moves start forward by months, clamping the day to the target month's length.
func paymentDate(start time.Time, months int) time.Time {
	first := time.Date(start.Year(), start.Month()+time.Month(months), 1, 0, 0, 0, 0, start.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	day := start.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, start.Location())
}
