// Package payrollfakes provides in-memory repositories and a transactor for service tests.
package payrollfakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/adhoc"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

// Store holds every table in memory. Transactions are serialized and roll back by
// restoring a snapshot taken when they began.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	seq  int

	Employees   map[string]employee.Employee
	Assignments map[string]salary.EmployeeSalaryStructure
	Structures  map[string]salary.SalaryStructure
	TaxConfigs  map[string]tax.Configuration
	Loans       map[string]loan.Loan
	Deductions  map[string]loan.Deduction
	Items       map[string]adhoc.Item
	Runs        map[string]payroll.PayrollRun
	Payslips    map[string]payroll.Payslip
	Attendance  map[string]attendance.MonthlyAggregate

	// FailDeduction makes CreateDeduction fail for the given loan ID.
	FailDeduction map[string]error
	// FailResolve makes salary lookups fail for the given employee ID.
	FailResolve map[string]error
}

func NewStore() *Store {
	return &Store{
		Employees:     make(map[string]employee.Employee),
		Assignments:   make(map[string]salary.EmployeeSalaryStructure),
		Structures:    make(map[string]salary.SalaryStructure),
		TaxConfigs:    make(map[string]tax.Configuration),
		Loans:         make(map[string]loan.Loan),
		Deductions:    make(map[string]loan.Deduction),
		Items:         make(map[string]adhoc.Item),
		Runs:          make(map[string]payroll.PayrollRun),
		Payslips:      make(map[string]payroll.Payslip),
		Attendance:    make(map[string]attendance.MonthlyAggregate),
		FailDeduction: make(map[string]error),
		FailResolve:   make(map[string]error),
	}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type snapshot struct {
	employees   map[string]employee.Employee
	assignments map[string]salary.EmployeeSalaryStructure
	structures  map[string]salary.SalaryStructure
	taxConfigs  map[string]tax.Configuration
	loans       map[string]loan.Loan
	deductions  map[string]loan.Deduction
	items       map[string]adhoc.Item
	runs        map[string]payroll.PayrollRun
	payslips    map[string]payroll.Payslip
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		employees:   cloneMap(s.Employees),
		assignments: cloneMap(s.Assignments),
		structures:  cloneMap(s.Structures),
		taxConfigs:  cloneMap(s.TaxConfigs),
		loans:       cloneMap(s.Loans),
		deductions:  cloneMap(s.Deductions),
		items:       cloneMap(s.Items),
		runs:        cloneMap(s.Runs),
		payslips:    cloneMap(s.Payslips),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Employees = snap.employees
	s.Assignments = snap.assignments
	s.Structures = snap.structures
	s.TaxConfigs = snap.taxConfigs
	s.Loans = snap.loans
	s.Deductions = snap.deductions
	s.Items = snap.items
	s.Runs = snap.runs
	s.Payslips = snap.payslips
}

type txKey struct{}

// Transactor implements database.Transactor over the store.
type Transactor struct {
	store *Store
}

func (s *Store) Transactor() database.Transactor {
	return &Transactor{store: s}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	snap := t.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}
