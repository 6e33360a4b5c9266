package compare

import (
	"time"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
)

// Correction is the manually corrected clock range for one compared day.
// It is addressed by its correction key and overwritten on resubmission.
type Correction struct {
	Key              string
	Branch           string
	EmployeeAccount  string
	EmployeeName     string
	Date             string
	ScheduleStart    string
	ScheduleEnd      string
	ScheduleHours    *float64
	AttendanceStart  string
	AttendanceEnd    string
	AttendanceHours  *float64
	AttendanceStatus string
	CorrectedStart   string
	CorrectedEnd     string
	Remark           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Corrected reports whether both corrected times are filled in.
func (c *Correction) Corrected() bool {
	return c != nil && c.CorrectedStart != "" && c.CorrectedEnd != ""
}

// Confirmation records that a flagged attendance punch was reviewed.
// Unconfirming flips Confirmed back to false; rows are never removed.
type Confirmation struct {
	Key             string
	Branch          string
	EmployeeAccount string
	Date            string
	AttendanceStart string
	AttendanceEnd   string
	Confirmed       bool
	ConfirmedAt     *time.Time
	UpdatedAt       time.Time
}

// Item pairs the schedule and attendance of one employee on one date at one
// branch. Items are derived on every compare and never persisted.
type Item struct {
	Key             string
	DisplayName     string
	EmployeeAccount string
	Branch          string
	Date            string
	Schedule        *schedule.ScheduleEntry
	Attendance      *attendance.AttendanceEntry
	Correction      *Correction
	CorrectionKey   string
	ConfirmationKey string

	ScheduledMinutes *int
	WorkedMinutes    *int
	ExtraPunches     int

	OvertimeAlert   bool
	OverlapWarning  bool
	ConfirmedIgnore bool
	KeyedByName     bool
}

// Flagged reports whether the item carries an alert that has not been confirmed.
func (i Item) Flagged() bool {
	return (i.OvertimeAlert || i.OverlapWarning) && !i.ConfirmedIgnore
}

// Stats summarizes one compare run.
type Stats struct {
	Total          int `json:"total"`
	Matched        int `json:"matched"`
	ScheduleOnly   int `json:"schedule_only"`
	AttendanceOnly int `json:"attendance_only"`
	NameFallback   int `json:"name_fallback"`
	ExtraPunches   int `json:"extra_punches"`
	Overtime       int `json:"overtime"`
	Overlap        int `json:"overlap"`
	Confirmed      int `json:"confirmed"`
	Corrected      int `json:"corrected"`
}
