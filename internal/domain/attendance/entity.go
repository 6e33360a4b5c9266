package attendance

import (
	"time"
)

// AttendanceEntry is one clock-in/clock-out punch pair exported by the
// time clock of a branch.
type AttendanceEntry struct {
	ID              string
	Branch          string
	EmployeeNo      string
	EmployeeAccount string
	EmployeeName    string
	Date            string
	StartTime       string
	EndTime         string
	Hours           float64
	Status          string
	Remark          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
