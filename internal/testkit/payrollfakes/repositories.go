package payrollfakes

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/adhoc"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// ========== EMPLOYEES ==========

type EmployeeRepository struct{ *Store }

func (s *Store) EmployeeRepository() employee.EmployeeRepository { return EmployeeRepository{s} }

func (r EmployeeRepository) GetByID(_ context.Context, id, companyID string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.Employees[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r EmployeeRepository) ListActive(_ context.Context, companyID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, e := range r.Employees {
		if e.CompanyID == companyID && e.EmploymentStatus == employee.EmploymentStatusActive {
			ids = append(ids, e.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ========== SALARY ==========

type SalaryRepository struct{ *Store }

func (s *Store) SalaryRepository() salary.SalaryStructureRepository { return SalaryRepository{s} }

func (r SalaryRepository) GetActiveAssignment(_ context.Context, employeeID, companyID string, asOf time.Time) (salary.EmployeeSalaryStructure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailResolve[employeeID]; err != nil {
		return salary.EmployeeSalaryStructure{}, err
	}
	for _, a := range r.Assignments {
		if a.EmployeeID != employeeID || a.CompanyID != companyID || !a.IsActive {
			continue
		}
		if a.EffectiveFrom.After(asOf) || (a.EffectiveTo != nil && a.EffectiveTo.Before(asOf)) {
			continue
		}
		return a, nil
	}
	return salary.EmployeeSalaryStructure{}, salary.ErrActiveStructureNotFound
}

func (r SalaryRepository) GetStructure(_ context.Context, structureID, companyID string) (salary.SalaryStructure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.Structures[structureID]
	if !ok || st.CompanyID != companyID {
		return salary.SalaryStructure{}, salary.ErrStructureNotFound
	}
	return st, nil
}

// ========== TAX ==========

type TaxConfigRepository struct{ *Store }

func (s *Store) TaxConfigRepository() tax.ConfigurationRepository { return TaxConfigRepository{s} }

func taxKey(companyID, country, fy string) string {
	return companyID + "|" + country + "|" + fy
}

func (r TaxConfigRepository) GetActive(_ context.Context, companyID, country, financialYear string) (tax.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.TaxConfigs[taxKey(companyID, country, financialYear)]
	if !ok || !cfg.IsActive {
		return tax.Configuration{}, tax.ErrConfigurationNotFound
	}
	return cfg, nil
}

func (r TaxConfigRepository) Create(_ context.Context, cfg tax.Configuration) (tax.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := taxKey(cfg.CompanyID, cfg.Country, cfg.FinancialYear)
	if _, ok := r.TaxConfigs[key]; ok {
		return tax.Configuration{}, tax.ErrConfigurationExists
	}
	if cfg.ID == "" {
		cfg.ID = r.nextID("taxcfg")
	}
	r.TaxConfigs[key] = cfg
	return cfg, nil
}

// ========== LOANS ==========

type LoanRepository struct{ *Store }

func (s *Store) LoanRepository() loan.LoanRepository { return LoanRepository{s} }

func deductionKey(loanID string, month, year int) string {
	return fmt.Sprintf("%s|%04d-%02d", loanID, year, month)
}

func (r LoanRepository) Create(_ context.Context, l loan.Loan) (loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == "" {
		l.ID = r.nextID("loan")
	}
	r.Loans[l.ID] = l
	return l, nil
}

func (r LoanRepository) GetByID(_ context.Context, id, companyID string) (loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.Loans[id]
	if !ok || l.CompanyID != companyID {
		return loan.Loan{}, loan.ErrLoanNotFound
	}
	return l, nil
}

func (r LoanRepository) GetForUpdate(_ context.Context, id string) (loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.Loans[id]
	if !ok {
		return loan.Loan{}, loan.ErrLoanNotFound
	}
	return l, nil
}

func (r LoanRepository) ListActiveByEmployee(_ context.Context, employeeID, companyID string) ([]loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []loan.Loan
	for _, l := range r.Loans {
		if l.EmployeeID == employeeID && l.CompanyID == companyID && l.Status == loan.StatusActive {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r LoanRepository) UpdateBalances(_ context.Context, l loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.Loans[l.ID]
	if !ok {
		return loan.ErrLoanNotFound
	}
	current.OutstandingPrincipal = l.OutstandingPrincipal
	current.InstallmentsPaid = l.InstallmentsPaid
	current.TotalAmountPaid = l.TotalAmountPaid
	current.TotalInterestPaid = l.TotalInterestPaid
	current.Status = l.Status
	current.ClosedAt = l.ClosedAt
	r.Loans[l.ID] = current
	return nil
}

func (r LoanRepository) UpdateStatus(_ context.Context, id, companyID string, from, to loan.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.Loans[id]
	if !ok || l.CompanyID != companyID {
		return loan.ErrLoanNotFound
	}
	if l.Status != from {
		return loan.ErrInvalidStatusTransition
	}
	l.Status = to
	r.Loans[id] = l
	return nil
}

func (r LoanRepository) DeductionExists(_ context.Context, loanID string, month, year int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.Deductions[deductionKey(loanID, month, year)]
	return ok, nil
}

func (r LoanRepository) CreateDeduction(_ context.Context, d loan.Deduction) (loan.Deduction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailDeduction[d.LoanID]; err != nil {
		return loan.Deduction{}, err
	}
	key := deductionKey(d.LoanID, d.Month, d.Year)
	if _, ok := r.Deductions[key]; ok {
		return loan.Deduction{}, loan.ErrDeductionConflict
	}
	if d.ID == "" {
		d.ID = r.nextID("deduction")
	}
	r.Deductions[key] = d
	return d, nil
}

func (r LoanRepository) ListDeductions(_ context.Context, loanID string) ([]loan.Deduction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []loan.Deduction
	for _, d := range r.Deductions {
		if d.LoanID == loanID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year*12+out[i].Month < out[j].Year*12+out[j].Month })
	return out, nil
}

// ========== AD HOC ITEMS ==========

type ItemRepository struct{ *Store }

func (s *Store) ItemRepository() adhoc.ItemRepository { return ItemRepository{s} }

func (r ItemRepository) Create(_ context.Context, item adhoc.Item) (adhoc.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == "" {
		item.ID = r.nextID("item")
	}
	r.Items[item.ID] = item
	return item, nil
}

func (r ItemRepository) GetByID(_ context.Context, id string) (adhoc.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.Items[id]
	if !ok {
		return adhoc.Item{}, adhoc.ErrItemNotFound
	}
	return item, nil
}

func (r ItemRepository) ListApproved(_ context.Context, employeeID, companyID string, month, year int) ([]adhoc.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []adhoc.Item
	for _, item := range r.Items {
		if item.EmployeeID == employeeID && item.CompanyID == companyID &&
			item.Month == month && item.Year == year && item.Status == adhoc.StatusApproved {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ItemRepository) UpdateStatus(_ context.Context, id string, from, to adhoc.Status, reason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.Items[id]
	if !ok {
		return adhoc.ErrItemNotFound
	}
	if item.Status != from {
		return adhoc.ErrInvalidTransition
	}
	item.Status = to
	if reason != nil {
		item.RejectedReason = reason
	}
	r.Items[id] = item
	return nil
}

func (r ItemRepository) Approve(_ context.Context, id string, from adhoc.Status, amount decimal.Decimal, approvedBy string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.Items[id]
	if !ok {
		return adhoc.ErrItemNotFound
	}
	if item.Status != from {
		return adhoc.ErrInvalidTransition
	}
	item.Status = adhoc.StatusApproved
	item.ApprovedAmount = &amount
	item.ApprovedBy = &approvedBy
	item.ApprovedAt = &at
	r.Items[id] = item
	return nil
}

func (r ItemRepository) MarkProcessed(_ context.Context, ids []string, payrollRunID, payslipID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for _, id := range ids {
		item, ok := r.Items[id]
		if !ok || item.Status != adhoc.StatusApproved {
			continue
		}
		runID, slipID := payrollRunID, payslipID
		item.Status = adhoc.StatusProcessed
		item.PayrollRunID = &runID
		item.PayslipID = &slipID
		item.ProcessedAt = &at
		r.Items[id] = item
		affected++
	}
	return affected, nil
}

// ========== PAYROLL RUNS ==========

type RunRepository struct{ *Store }

func (s *Store) RunRepository() payroll.RunRepository { return RunRepository{s} }

func (r RunRepository) Create(_ context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Runs {
		if existing.CompanyID == run.CompanyID && existing.Month == run.Month && existing.Year == run.Year {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
	}
	if run.ID == "" {
		run.ID = r.nextID("run")
	}
	r.Runs[run.ID] = run
	return run, nil
}

func (r RunRepository) GetByID(_ context.Context, id string) (payroll.PayrollRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.Runs[id]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (r RunRepository) TransitionStatus(_ context.Context, id string, from, to payroll.RunStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.Runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	if run.Status != from {
		return payroll.ErrRunStatusChanged
	}
	run.Status = to
	run.UpdatedAt = time.Now()
	r.Runs[id] = run
	return nil
}

func (r RunRepository) SaveOutcome(_ context.Context, run payroll.PayrollRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.Runs[run.ID]
	if !ok {
		return payroll.ErrRunNotFound
	}
	if current.Status != payroll.RunStatusProcessing {
		return payroll.ErrRunStatusChanged
	}
	r.Runs[run.ID] = run
	return nil
}

func (r RunRepository) Lock(_ context.Context, id, lockedBy string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.Runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	if run.Status != payroll.RunStatusCompleted {
		return payroll.ErrRunStatusChanged
	}
	run.Status = payroll.RunStatusLocked
	run.LockedBy = &lockedBy
	run.LockedAt = &at
	r.Runs[id] = run
	return nil
}

func (r RunRepository) FailStale(_ context.Context, olderThan time.Time, reason payroll.EmployeeFailure) ([]payroll.PayrollRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var failed []payroll.PayrollRun
	for id, run := range r.Runs {
		if run.Status != payroll.RunStatusProcessing || !run.UpdatedAt.Before(olderThan) {
			continue
		}
		run.Status = payroll.RunStatusFailed
		run.FailureDetails = append(run.FailureDetails, reason)
		run.UpdatedAt = time.Now()
		r.Runs[id] = run
		failed = append(failed, run)
	}
	return failed, nil
}

// ========== PAYSLIPS ==========

type PayslipRepository struct{ *Store }

func (s *Store) PayslipRepository() payroll.PayslipRepository { return PayslipRepository{s} }

func (r PayslipRepository) Create(_ context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Payslips {
		if existing.EmployeeID == p.EmployeeID && existing.PayrollRunID == p.PayrollRunID {
			return payroll.Payslip{}, payroll.ErrPayslipAlreadyExists
		}
	}
	if p.ID == "" {
		p.ID = r.nextID("payslip")
	}
	r.Payslips[p.ID] = p
	return p, nil
}

func (r PayslipRepository) GetByID(_ context.Context, id string) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Payslips[id]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, nil
}

func (r PayslipRepository) GetByEmployeeAndRun(_ context.Context, employeeID, runID string) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Payslips {
		if p.EmployeeID == employeeID && p.PayrollRunID == runID {
			return p, nil
		}
	}
	return payroll.Payslip{}, payroll.ErrPayslipNotFound
}

func (r PayslipRepository) ListByEmployee(_ context.Context, employeeID, companyID string, year *int) ([]payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payslip
	for _, p := range r.Payslips {
		if p.EmployeeID != employeeID || p.CompanyID != companyID {
			continue
		}
		if year != nil && p.Year != *year {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year*12+out[i].Month > out[j].Year*12+out[j].Month })
	return out, nil
}

func (r PayslipRepository) ListByRun(_ context.Context, runID string) ([]payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payslip
	for _, p := range r.Payslips {
		if p.PayrollRunID == runID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (r PayslipRepository) SumYearToDate(_ context.Context, employeeID, companyID string, month, year int) (payroll.YearToDate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ytd := payroll.YearToDate{}
	for _, p := range r.Payslips {
		if p.EmployeeID == employeeID && p.CompanyID == companyID && p.Year == year && p.Month < month {
			ytd = ytd.Add(p)
		}
	}
	return ytd, nil
}

func (r PayslipRepository) UpdateStatus(_ context.Context, id string, from, to payroll.PayslipStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Payslips[id]
	if !ok {
		return payroll.ErrPayslipNotFound
	}
	if p.Status != from {
		return payroll.ErrInvalidStatusTransition
	}
	p.Status = to
	r.Payslips[id] = p
	return nil
}

// ========== ATTENDANCE ==========

type AttendanceSource struct{ *Store }

func (s *Store) AttendanceSource() attendance.Source { return AttendanceSource{s} }

func AttendanceKey(employeeID string, month, year int) string {
	return fmt.Sprintf("%s|%04d-%02d", employeeID, year, month)
}

// GetMonthlyAggregate falls back to full attendance over 22 working days.
func (a AttendanceSource) GetMonthlyAggregate(_ context.Context, employeeID, _ string, month, year int) (attendance.MonthlyAggregate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if agg, ok := a.Attendance[AttendanceKey(employeeID, month, year)]; ok {
		return agg, nil
	}
	return attendance.MonthlyAggregate{WorkingDays: 22, PresentDays: 22}, nil
}
