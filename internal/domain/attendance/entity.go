package attendance

import "time"

// RecordStatus is the status of a daily attendance record.
type RecordStatus string

const (
	StatusPresent         RecordStatus = "present"
	StatusLate            RecordStatus = "late"
	StatusHalfDay         RecordStatus = "half_day"
	StatusAbsent          RecordStatus = "absent"
	StatusOnLeave         RecordStatus = "on_leave"
	StatusHoliday         RecordStatus = "holiday"
	StatusWaitingApproval RecordStatus = "waiting_approval"
)

// DailyRecord is one attendance row reduced to what aggregation needs.
type DailyRecord struct {
	Date   time.Time
	Status RecordStatus
}

// MonthlyAggregate - attendance figures for one employee and month.
// AbsentDays includes leave days, so loss of pay is AbsentDays - LeaveDays.
type MonthlyAggregate struct {
	WorkingDays int
	PresentDays int
	AbsentDays  int
	LeaveDays   int
}

// LossOfPayDays is the number of absent working days not covered by paid leave.
func (a MonthlyAggregate) LossOfPayDays() int {
	if lop := a.AbsentDays - a.LeaveDays; lop > 0 {
		return lop
	}
	return 0
}

// Period returns the first and last calendar day of a month.
func Period(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}
