package payroll

// Progress events published on a run's topic while it is processed.
const (
	EventEmployeeProcessed = "employee_processed"
	EventEmployeeFailed    = "employee_failed"
	EventRunCompleted      = "run_completed"
	EventRunFailed         = "run_failed"
)

// ProgressPublisher receives run progress; the topic is the run ID.
type ProgressPublisher interface {
	Publish(topic, name string, data any)
}

type EmployeeProgress struct {
	EmployeeID string `json:"employee_id"`
	NetSalary  string `json:"net_salary,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Reason     string `json:"reason,omitempty"`
}
