package payroll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/adhoc"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	adhocservice "github.com/cmlabs-hris/payroll-engine/internal/service/adhoc"
	loanservice "github.com/cmlabs-hris/payroll-engine/internal/service/loan"
	salaryservice "github.com/cmlabs-hris/payroll-engine/internal/service/salary"
	taxservice "github.com/cmlabs-hris/payroll-engine/internal/service/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/testkit/payrollfakes"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID = "company-1"
	testFY        = "2024-2025"
)

var testEmployees = []string{"employee-1", "employee-2", "employee-3"}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type fixture struct {
	store    *payrollfakes.Store
	svc      payroll.PayrollService
	loans    loan.LoanService
	adhocs   adhoc.AdHocService
	taxRepo  tax.ConfigurationRepository
	progress *recordingProgress
}

type recordingProgress struct {
	mu     sync.Mutex
	topics []string
	names  []string
}

func (p *recordingProgress) Publish(topic, name string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.names = append(p.names, name)
}

func (p *recordingProgress) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, got := range p.names {
		if got == name {
			n++
		}
	}
	return n
}

// newFixture seeds three employees on a 600000 CTC structure: basic 25000, housing
// 10000, special 15000, gross 50000. With testTaxConfig each payslip nets 45292.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := payrollfakes.NewStore()

	store.Structures["structure-1"] = salary.SalaryStructure{
		ID:        "structure-1",
		CompanyID: testCompanyID,
		Name:      "Standard",
		IsActive:  true,
		Components: []salary.Component{
			{Name: "Basic", Type: salary.ComponentTypeEarning, Category: salary.CategoryBasic, IsPercentage: true, Value: d("50"), PercentageOf: salary.PercentageOfCTC, IsTaxable: true, Priority: 1, IsActive: true},
			{Name: "HRA", Type: salary.ComponentTypeEarning, Category: salary.CategoryHousingAllowance, IsPercentage: true, Value: d("40"), PercentageOf: salary.PercentageOfBasic, IsTaxable: true, Priority: 2, IsActive: true},
			{Name: "Special", Type: salary.ComponentTypeEarning, Category: salary.CategorySpecialAllowance, Value: d("15000"), IsTaxable: true, Priority: 3, IsActive: true},
			{Name: "PF", Type: salary.ComponentTypeDeduction, Category: salary.CategorySocialSecurity, IsPercentage: true, Value: d("12"), PercentageOf: salary.PercentageOfBasic, IsStatutory: true, Priority: 4, IsActive: true},
		},
	}

	for _, id := range testEmployees {
		store.Employees[id] = employee.Employee{
			ID:               id,
			CompanyID:        testCompanyID,
			EmployeeCode:     id,
			FullName:         id,
			EmploymentStatus: employee.EmploymentStatusActive,
		}
		store.Assignments["assignment-"+id] = salary.EmployeeSalaryStructure{
			ID:            "assignment-" + id,
			EmployeeID:    id,
			CompanyID:     testCompanyID,
			StructureID:   "structure-1",
			CTC:           d("600000"),
			EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			IsActive:      true,
		}
	}
	store.Employees["employee-resigned"] = employee.Employee{
		ID:               "employee-resigned",
		CompanyID:        testCompanyID,
		EmploymentStatus: employee.EmploymentStatusResigned,
	}

	progress := &recordingProgress{}
	tx := store.Transactor()
	taxSvc := taxservice.NewTaxService(store.TaxConfigRepository(), "IN")
	loanSvc := loanservice.NewLoanService(tx, store.LoanRepository())
	adhocSvc := adhocservice.NewAdHocService(store.ItemRepository())
	composer := NewComposer(
		tx,
		salaryservice.NewResolver(store.SalaryRepository()),
		taxSvc,
		store.AttendanceSource(),
		adhocSvc,
		loanSvc,
		store.PayslipRepository(),
		"PS",
	)
	svc := NewPayrollService(
		store.RunRepository(),
		store.PayslipRepository(),
		store.EmployeeRepository(),
		taxSvc,
		composer,
		Options{Workers: 4, EmployeeTimeout: 5 * time.Second, FYStartMonth: 4, Progress: progress},
	)

	return &fixture{
		store:    store,
		svc:      svc,
		loans:    loanSvc,
		adhocs:   adhocSvc,
		taxRepo:  store.TaxConfigRepository(),
		progress: progress,
	}
}

func testTaxConfig() tax.Configuration {
	return tax.Configuration{
		CompanyID:     testCompanyID,
		Country:       "IN",
		FinancialYear: testFY,
		IncomeTaxSlabs: []tax.Slab{
			{From: d("0"), To: dp("250000"), Rate: d("0")},
			{From: d("250000"), To: dp("500000"), Rate: d("5")},
			{From: d("500000"), Rate: d("20")},
		},
		LocalTaxSlabs:   []tax.FlatSlab{{From: d("0"), Amount: d("200")}},
		SocialSecurity:  tax.Contribution{EmployeeRate: d("12"), EmployerRate: d("12"), Cap: d("15000")},
		HealthInsurance: tax.Contribution{EmployeeRate: d("0.75"), EmployerRate: d("3.25"), Cap: d("21000")},
		IsActive:        true,
	}
}

func (f *fixture) seedTaxConfig(t *testing.T) {
	t.Helper()
	_, err := f.taxRepo.Create(context.Background(), testTaxConfig())
	require.NoError(t, err)
}

func (f *fixture) createRun(t *testing.T, month, year int) payroll.PayrollRun {
	t.Helper()
	run, err := f.svc.CreatePayrollRun(context.Background(), payroll.CreatePayrollRunRequest{
		CompanyID: testCompanyID,
		Month:     month,
		Year:      year,
	})
	require.NoError(t, err)
	return run
}

func (f *fixture) approvedItem(t *testing.T, employeeID string, itemType adhoc.ItemType, amount string, month, year int) adhoc.Item {
	t.Helper()
	ctx := context.Background()
	req := adhoc.CreateItemRequest{
		CompanyID:     testCompanyID,
		Type:          string(itemType),
		EmployeeID:    employeeID,
		Month:         month,
		Year:          year,
		Description:   "fixture",
		ClaimedAmount: d(amount),
	}
	if itemType == adhoc.ItemTypeArrears {
		start, end := "2024-01-01", "2024-01-31"
		req.PeriodStart, req.PeriodEnd = &start, &end
	}
	item, err := f.adhocs.CreateItem(ctx, req)
	require.NoError(t, err)
	item, err = f.adhocs.Approve(ctx, item.ID, adhoc.ApproveItemRequest{ApprovedAmount: d(amount), ApprovedBy: "manager-1"})
	require.NoError(t, err)
	return item
}

func (f *fixture) payslipFor(employeeID, runID string) (payroll.Payslip, bool) {
	for _, p := range f.store.Payslips {
		if p.EmployeeID == employeeID && p.PayrollRunID == runID {
			return p, true
		}
	}
	return payroll.Payslip{}, false
}
