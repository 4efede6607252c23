package payroll

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// payslipNamespace scopes payslip number hashes.
var payslipNamespace = uuid.MustParse("6f1d3a9e-4b7c-5e2a-9c8d-0a1b2c3d4e5f")

// PayslipNumber is deterministic in (company, employee, year, month), so regenerating a
// payslip for the same period yields the same number.
func PayslipNumber(prefix, companyID, employeeID string, year, month int) string {
	key := fmt.Sprintf("%s:%s:%04d-%02d", companyID, employeeID, year, month)
	hash := uuid.NewSHA1(payslipNamespace, []byte(key)).String()
	return fmt.Sprintf("%s-%04d%02d-%s", prefix, year, month, strings.ToUpper(hash[24:]))
}
