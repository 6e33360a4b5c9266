package compare

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/validator"
)

// ========================================
// COMPARE DTOs
// ========================================

type CompareFilter struct {
	Branch    string   `json:"branch"`
	YearMonth string   `json:"year_month"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Names     []string `json:"names"`
	// FlaggedOnly drops items without an unconfirmed alert.
	FlaggedOnly bool `json:"flagged_only"`
}

func (f *CompareFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.Branch) {
		errs = append(errs, validator.ValidationError{
			Field:   "branch",
			Message: "branch is required",
		})
	}

	if _, err := f.Period(); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "period",
			Message: "give year_month (YYYYMM) or both start_date and end_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (f *CompareFilter) Period() (timenorm.Period, error) {
	return timenorm.ResolvePeriod(f.YearMonth, f.StartDate, f.EndDate)
}

type CompareItemResponse struct {
	DisplayName      string                         `json:"display_name"`
	EmployeeAccount  string                         `json:"employee_account"`
	Branch           string                         `json:"branch"`
	Date             string                         `json:"date"`
	Schedule         *schedule.ScheduleResponse     `json:"schedule"`
	Attendance       *attendance.AttendanceResponse `json:"attendance"`
	Correction       *CorrectionResponse            `json:"correction"`
	ScheduledMinutes *int                           `json:"scheduled_minutes"`
	WorkedMinutes    *int                           `json:"worked_minutes"`
	ExtraPunches     int                            `json:"extra_punches"`
	OvertimeAlert    bool                           `json:"overtime_alert"`
	OverlapWarning   bool                           `json:"overlap_warning"`
	ConfirmedIgnore  bool                           `json:"confirmed_ignore"`
	KeyedByName      bool                           `json:"keyed_by_name"`
	CorrectionKey    string                         `json:"correction_key"`
	ConfirmationKey  string                         `json:"confirmation_key,omitempty"`
}

type CompareResponse struct {
	Branch        string                `json:"branch"`
	StartDate     string                `json:"start_date"`
	EndDate       string                `json:"end_date"`
	Items         []CompareItemResponse `json:"items"`
	Stats         Stats                 `json:"stats"`
	NameFallbacks []string              `json:"name_fallbacks"`
}

func NewCompareItemResponse(item Item) CompareItemResponse {
	resp := CompareItemResponse{
		DisplayName:      item.DisplayName,
		EmployeeAccount:  item.EmployeeAccount,
		Branch:           item.Branch,
		Date:             item.Date,
		ScheduledMinutes: item.ScheduledMinutes,
		WorkedMinutes:    item.WorkedMinutes,
		ExtraPunches:     item.ExtraPunches,
		OvertimeAlert:    item.OvertimeAlert,
		OverlapWarning:   item.OverlapWarning,
		ConfirmedIgnore:  item.ConfirmedIgnore,
		KeyedByName:      item.KeyedByName,
		CorrectionKey:    item.CorrectionKey,
		ConfirmationKey:  item.ConfirmationKey,
	}
	if item.Schedule != nil {
		s := schedule.NewScheduleResponse(*item.Schedule)
		resp.Schedule = &s
	}
	if item.Attendance != nil {
		a := attendance.NewAttendanceResponse(*item.Attendance)
		resp.Attendance = &a
	}
	if item.Correction != nil {
		c := NewCorrectionResponse(*item.Correction)
		resp.Correction = &c
	}
	return resp
}

// ========================================
// CORRECTION DTOs
// ========================================

// SubmitCorrectionRequest carries what the reviewer saw plus the corrected
// range. ScheduleStart and ScheduleEnd stay empty for days without a shift.
type SubmitCorrectionRequest struct {
	Branch           string   `json:"branch"`
	EmployeeAccount  string   `json:"employee_account"`
	EmployeeName     string   `json:"employee_name"`
	Date             string   `json:"date"`
	ScheduleStart    string   `json:"schedule_start"`
	ScheduleEnd      string   `json:"schedule_end"`
	ScheduleHours    *float64 `json:"schedule_hours"`
	AttendanceStart  string   `json:"attendance_start"`
	AttendanceEnd    string   `json:"attendance_end"`
	AttendanceHours  *float64 `json:"attendance_hours"`
	AttendanceStatus string   `json:"attendance_status"`
	CorrectedStart   string   `json:"corrected_start"`
	CorrectedEnd     string   `json:"corrected_end"`
	Remark           string   `json:"remark"`
}

func (r *SubmitCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Branch) {
		errs = append(errs, validator.ValidationError{Field: "branch", Message: "branch is required"})
	}
	if validator.IsEmpty(r.EmployeeAccount) {
		errs = append(errs, validator.ValidationError{Field: "employee_account", Message: "employee_account is required"})
	}
	if _, ok := validator.IsValidShiftDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be a valid date"})
	}
	if validator.IsEmpty(r.ScheduleStart) != validator.IsEmpty(r.ScheduleEnd) {
		errs = append(errs, validator.ValidationError{Field: "schedule_start", Message: "schedule_start and schedule_end go together"})
	}
	if !validator.IsValidClock(r.CorrectedStart) {
		errs = append(errs, validator.ValidationError{Field: "corrected_start", Message: "corrected_start must be HH:mm"})
	}
	if !validator.IsValidClock(r.CorrectedEnd) {
		errs = append(errs, validator.ValidationError{Field: "corrected_end", Message: "corrected_end must be HH:mm"})
	}
	if len(r.Remark) > 500 {
		errs = append(errs, validator.ValidationError{Field: "remark", Message: "remark must be at most 500 characters"})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CorrectionResponse struct {
	Key             string    `json:"key"`
	Branch          string    `json:"branch"`
	EmployeeAccount string    `json:"employee_account"`
	EmployeeName    string    `json:"employee_name,omitempty"`
	Date            string    `json:"date"`
	ScheduleStart   string    `json:"schedule_start"`
	ScheduleEnd     string    `json:"schedule_end"`
	AttendanceStart string    `json:"attendance_start,omitempty"`
	AttendanceEnd   string    `json:"attendance_end,omitempty"`
	CorrectedStart  string    `json:"corrected_start"`
	CorrectedEnd    string    `json:"corrected_end"`
	CorrectedHours  *float64  `json:"corrected_hours,omitempty"`
	Remark          string    `json:"remark"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewCorrectionResponse(c Correction) CorrectionResponse {
	resp := CorrectionResponse{
		Key:             c.Key,
		Branch:          c.Branch,
		EmployeeAccount: c.EmployeeAccount,
		EmployeeName:    c.EmployeeName,
		Date:            c.Date,
		ScheduleStart:   c.ScheduleStart,
		ScheduleEnd:     c.ScheduleEnd,
		AttendanceStart: c.AttendanceStart,
		AttendanceEnd:   c.AttendanceEnd,
		CorrectedStart:  c.CorrectedStart,
		CorrectedEnd:    c.CorrectedEnd,
		Remark:          c.Remark,
		UpdatedAt:       c.UpdatedAt,
	}
	if m, ok := timenorm.MinutesBetween(c.CorrectedStart, c.CorrectedEnd); ok {
		h := timenorm.RoundHours(m)
		resp.CorrectedHours = &h
	}
	return resp
}

// ========================================
// CONFIRMATION DTOs
// ========================================

// ConfirmRequest identifies the attendance punch being acknowledged.
type ConfirmRequest struct {
	Branch          string `json:"branch"`
	EmployeeAccount string `json:"employee_account"`
	Date            string `json:"date"`
	AttendanceStart string `json:"attendance_start"`
	AttendanceEnd   string `json:"attendance_end"`
}

func (r *ConfirmRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Branch) {
		errs = append(errs, validator.ValidationError{Field: "branch", Message: "branch is required"})
	}
	if validator.IsEmpty(r.EmployeeAccount) {
		errs = append(errs, validator.ValidationError{Field: "employee_account", Message: "employee_account is required"})
	}
	if _, ok := validator.IsValidShiftDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be a valid date"})
	}

	if len(errs) > 0 {
		return errs
	}

	if validator.IsEmpty(r.AttendanceStart) && validator.IsEmpty(r.AttendanceEnd) {
		return ErrNothingToConfirm
	}

	r.Branch = strings.TrimSpace(r.Branch)
	r.EmployeeAccount = strings.TrimSpace(r.EmployeeAccount)
	return nil
}

type ConfirmationResponse struct {
	Key         string     `json:"key"`
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewConfirmationResponse(c Confirmation) ConfirmationResponse {
	return ConfirmationResponse{
		Key:         c.Key,
		Confirmed:   c.Confirmed,
		ConfirmedAt: c.ConfirmedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
