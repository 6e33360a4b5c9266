package schedule

import "time"

// ScheduleEntry is one planned shift for an employee on a calendar date at a branch.
type ScheduleEntry struct {
	ID              string
	EmployeeName    string
	EmployeeAccount string // optional; empty when the source table had no account column
	Date            string // YYYY/MM/DD or YYYY-MM-DD
	Branch          string
	StartTime       string // HH:mm
	EndTime         string // HH:mm
	Hours           float64
	ShiftCode       string
	Remark          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ShiftCode maps a legend code such as "A" or "B1" to a canonical time range.
type ShiftCode struct {
	Code    string
	Start   string
	End     string
	Minutes int
	Hours   float64
}
