package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecordRepo struct {
	records  []attendance.DailyRecord
	leave    []time.Time
	holidays []time.Time
	err      error
}

func (f *fakeRecordRepo) ListDailyRecords(ctx context.Context, employeeID, companyID string, from, to time.Time) ([]attendance.DailyRecord, error) {
	return f.records, f.err
}

func (f *fakeRecordRepo) ListPaidLeaveDays(ctx context.Context, employeeID, companyID string, from, to time.Time) ([]time.Time, error) {
	return f.leave, nil
}

func (f *fakeRecordRepo) ListHolidays(ctx context.Context, companyID string, from, to time.Time) ([]time.Time, error) {
	return f.holidays, nil
}

func day(n int) time.Time {
	return time.Date(2024, time.June, n, 0, 0, 0, 0, time.UTC)
}

// June 2024 has 20 weekdays: 3-7, 10-14, 17-21, 24-28.
func weekdaysOfJune() []int {
	var days []int
	for n := 1; n <= 30; n++ {
		if wd := day(n).Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, n)
		}
	}
	return days
}

func TestAggregator_FullAttendance(t *testing.T) {
	repo := &fakeRecordRepo{}
	for _, n := range weekdaysOfJune() {
		repo.records = append(repo.records, attendance.DailyRecord{Date: day(n), Status: attendance.StatusPresent})
	}
	// weekend record is ignored
	repo.records = append(repo.records, attendance.DailyRecord{Date: day(1), Status: attendance.StatusPresent})

	agg, err := NewAggregator(repo).GetMonthlyAggregate(context.Background(), "employee-1", "company-1", 6, 2024)
	require.NoError(t, err)

	assert.Equal(t, attendance.MonthlyAggregate{WorkingDays: 20, PresentDays: 20, AbsentDays: 0, LeaveDays: 0}, agg)
	assert.Equal(t, 0, agg.LossOfPayDays())
}

func TestAggregator_AbsenceLeaveAndHolidays(t *testing.T) {
	weekdays := weekdaysOfJune()
	repo := &fakeRecordRepo{
		holidays: []time.Time{day(17)},
		// 18 is covered by leave, 19 is on leave but also present, 20 is not a leave day
		leave: []time.Time{day(18), day(19), day(22)},
	}
	for _, n := range weekdays {
		switch n {
		case 17, 18, 20:
			continue
		case 21, 24:
			repo.records = append(repo.records, attendance.DailyRecord{Date: day(n), Status: attendance.StatusHalfDay})
		case 25:
			repo.records = append(repo.records, attendance.DailyRecord{Date: day(n), Status: attendance.StatusLate})
		default:
			repo.records = append(repo.records, attendance.DailyRecord{Date: day(n), Status: attendance.StatusPresent})
		}
	}

	agg, err := NewAggregator(repo).GetMonthlyAggregate(context.Background(), "employee-1", "company-1", 6, 2024)
	require.NoError(t, err)

	// 19 working days; 15 full + 2 halves = 16 present; 3 absent; 22 is a Saturday
	assert.Equal(t, 19, agg.WorkingDays)
	assert.Equal(t, 16, agg.PresentDays)
	assert.Equal(t, 3, agg.AbsentDays)
	assert.Equal(t, 1, agg.LeaveDays)
	assert.Equal(t, 2, agg.LossOfPayDays())
}

func TestAggregator_InvalidPeriod(t *testing.T) {
	_, err := NewAggregator(&fakeRecordRepo{}).GetMonthlyAggregate(context.Background(), "employee-1", "company-1", 13, 2024)
	assert.True(t, errors.Is(err, attendance.ErrInvalidPeriod))
}

func TestAggregator_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewAggregator(&fakeRecordRepo{err: boom}).GetMonthlyAggregate(context.Background(), "employee-1", "company-1", 6, 2024)
	assert.True(t, errors.Is(err, boom))
}
