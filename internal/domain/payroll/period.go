package payroll

import "fmt"

// FinancialYearLabel names the financial year a pay month falls in, e.g. "2024-2025" for
// 2025-03 when the year starts in April. A January start yields the plain calendar year.
func FinancialYearLabel(month, year, startMonth int) string {
	if startMonth <= 1 || startMonth > 12 {
		return fmt.Sprintf("%d", year)
	}
	if month >= startMonth {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}
