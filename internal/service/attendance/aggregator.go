package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const dayKeyLayout = "2006-01-02"

type Aggregator struct {
	recordRepo attendance.RecordRepository
}

func NewAggregator(recordRepo attendance.RecordRepository) attendance.Source {
	return &Aggregator{recordRepo: recordRepo}
}

// GetMonthlyAggregate counts Monday-Friday non-holiday days as working days. A half day
// counts as 0.5 present, rounded down over the month. Leave only counts on working days
// the employee was not present.
func (a *Aggregator) GetMonthlyAggregate(ctx context.Context, employeeID, companyID string, month, year int) (attendance.MonthlyAggregate, error) {
	if !validator.IsValidMonth(month) || !validator.IsValidYear(year) {
		return attendance.MonthlyAggregate{}, attendance.ErrInvalidPeriod
	}
	from, to := attendance.Period(month, year)

	var (
		records   []attendance.DailyRecord
		leaveDays []time.Time
		holidays  []time.Time
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := a.recordRepo.ListDailyRecords(gCtx, employeeID, companyID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list attendance records: %w", err)
		}
		records = data
		return nil
	})

	g.Go(func() error {
		data, err := a.recordRepo.ListPaidLeaveDays(gCtx, employeeID, companyID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list leave days: %w", err)
		}
		leaveDays = data
		return nil
	})

	g.Go(func() error {
		data, err := a.recordRepo.ListHolidays(gCtx, companyID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list holidays: %w", err)
		}
		holidays = data
		return nil
	})

	if err := g.Wait(); err != nil {
		return attendance.MonthlyAggregate{}, err
	}

	return aggregate(from, to, records, leaveDays, holidays), nil
}

func aggregate(from, to time.Time, records []attendance.DailyRecord, leaveDays, holidays []time.Time) attendance.MonthlyAggregate {
	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Format(dayKeyLayout)] = struct{}{}
	}

	working := make(map[string]struct{})
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		if _, ok := holidaySet[day.Format(dayKeyLayout)]; ok {
			continue
		}
		working[day.Format(dayKeyLayout)] = struct{}{}
	}

	present := make(map[string]struct{})
	fullDays, halfDays := 0, 0
	for _, r := range records {
		key := r.Date.Format(dayKeyLayout)
		if _, ok := working[key]; !ok {
			continue
		}
		if _, seen := present[key]; seen {
			continue
		}
		switch r.Status {
		case attendance.StatusPresent, attendance.StatusLate:
			fullDays++
		case attendance.StatusHalfDay:
			halfDays++
		default:
			continue
		}
		present[key] = struct{}{}
	}

	leave := make(map[string]struct{})
	for _, l := range leaveDays {
		key := l.Format(dayKeyLayout)
		if _, ok := working[key]; !ok {
			continue
		}
		if _, ok := present[key]; ok {
			continue
		}
		leave[key] = struct{}{}
	}

	workingDays := len(working)
	presentDays := fullDays + halfDays/2
	if presentDays > workingDays {
		presentDays = workingDays
	}
	absentDays := workingDays - presentDays
	leaveCount := len(leave)
	if leaveCount > absentDays {
		leaveCount = absentDays
	}

	return attendance.MonthlyAggregate{
		WorkingDays: workingDays,
		PresentDays: presentDays,
		AbsentDays:  absentDays,
		LeaveDays:   leaveCount,
	}
}
