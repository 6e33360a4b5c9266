package attendance

import (
	"mime/multipart"
	"strings"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/validator"
)

// ========================================
// IMPORT DTOs
// ========================================

var AllowedUploadExtensions = []string{".xlsx", ".xlsm", ".xls", ".csv"}

// ImportRequest uploads a time clock export laid out as
// branch, employee no, account, name, date, start, end, hours, status, remark.
// Branch, when given, replaces an empty branch column.
type ImportRequest struct {
	Branch     string                `json:"branch"`
	Sheet      string                `json:"sheet"`
	Overwrite  bool                  `json:"overwrite"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

// Validate checks the request. maxBytes <= 0 disables the size check.
func (r *ImportRequest) Validate(maxBytes int64) error {
	var errs validator.ValidationErrors

	if r.Overwrite && validator.IsEmpty(r.Branch) {
		errs = append(errs, validator.ValidationError{
			Field:   "branch",
			Message: "branch is required when overwrite is set",
		})
	}

	if r.FileHeader == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "attendance file is required",
		})
	} else if !validator.HasExtension(r.FileHeader.Filename, AllowedUploadExtensions...) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "invalid file type: only xlsx, xlsm, xls, csv allowed",
		})
	} else if maxBytes > 0 && r.FileHeader.Size > maxBytes {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "attendance file is too large",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ImportResponse struct {
	Sheet       string   `json:"sheet"`
	Rows        int      `json:"rows"`
	Inserted    int      `json:"inserted"`
	Duplicates  int      `json:"duplicates"`
	SkippedRows int      `json:"skipped_rows"`
	Replaced    int64    `json:"replaced"`
	Branches    []string `json:"branches"`
	ArchiveKey  string   `json:"archive_key,omitempty"`
}

// ========================================
// QUERY DTOs
// ========================================

type AttendanceFilter struct {
	Branch    string   `json:"branch"`
	YearMonth string   `json:"year_month"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Names     []string `json:"names"`
}

func (f *AttendanceFilter) Validate() error {
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

func (f *AttendanceFilter) Period() (timenorm.Period, error) {
	return timenorm.ResolvePeriod(f.YearMonth, f.StartDate, f.EndDate)
}

type AttendanceResponse struct {
	ID              string  `json:"id,omitempty"`
	Branch          string  `json:"branch"`
	EmployeeNo      string  `json:"employee_no,omitempty"`
	EmployeeAccount string  `json:"employee_account"`
	EmployeeName    string  `json:"employee_name"`
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	Hours           float64 `json:"hours"`
	Status          string  `json:"status,omitempty"`
	Remark          string  `json:"remark,omitempty"`
}

type ListAttendanceResponse struct {
	Items []AttendanceResponse `json:"items"`
	Total int                  `json:"total"`
}

func NewAttendanceResponse(e AttendanceEntry) AttendanceResponse {
	return AttendanceResponse{
		ID:              e.ID,
		Branch:          e.Branch,
		EmployeeNo:      e.EmployeeNo,
		EmployeeAccount: e.EmployeeAccount,
		EmployeeName:    e.EmployeeName,
		Date:            e.Date,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Hours:           e.Hours,
		Status:          e.Status,
		Remark:          e.Remark,
	}
}

// ========================================
// REMARK DTOs
// ========================================

// UpdateRemarkRequest addresses a punch by branch, account, date and times.
type UpdateRemarkRequest struct {
	Branch          string `json:"branch"`
	EmployeeAccount string `json:"employee_account"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Remark          string `json:"remark"`
}

func (r *UpdateRemarkRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Branch) {
		errs = append(errs, validator.ValidationError{Field: "branch", Message: "branch is required"})
	}
	if validator.IsEmpty(r.EmployeeAccount) {
		errs = append(errs, validator.ValidationError{Field: "employee_account", Message: "employee_account is required"})
	}
	if date, ok := validator.IsValidShiftDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be a valid date"})
	} else {
		r.Date = date
	}
	if !validator.IsValidClock(r.StartTime) {
		errs = append(errs, validator.ValidationError{Field: "start_time", Message: "start_time must be HH:mm"})
	}
	if !validator.IsEmpty(r.EndTime) && !validator.IsValidClock(r.EndTime) {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must be HH:mm"})
	}
	if len(r.Remark) > 500 {
		errs = append(errs, validator.ValidationError{Field: "remark", Message: "remark must be at most 500 characters"})
	}

	if len(errs) > 0 {
		return errs
	}

	r.Branch = strings.TrimSpace(r.Branch)
	r.EmployeeAccount = strings.TrimSpace(r.EmployeeAccount)
	r.StartTime, _ = timenorm.NormalizeTime(r.StartTime)
	if end, ok := timenorm.NormalizeTime(r.EndTime); ok {
		r.EndTime = end
	}
	return nil
}
