package schedule

import (
	"mime/multipart"
	"strings"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/validator"
)

// ========================================
// IMPORT DTOs
// ========================================

var AllowedUploadExtensions = []string{".xlsx", ".xlsm", ".xls"}

type ImportRequest struct {
	Branch           string                `json:"branch"`
	Sheet            string                `json:"sheet"`
	Overwrite        bool                  `json:"overwrite"`
	DefaultYearMonth string                `json:"default_year_month"`
	File             multipart.File        `json:"-"`
	FileHeader       *multipart.FileHeader `json:"-"`
}

// Validate checks the request. maxBytes <= 0 disables the size check.
func (r *ImportRequest) Validate(maxBytes int64) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Branch) {
		errs = append(errs, validator.ValidationError{
			Field:   "branch",
			Message: "branch is required",
		})
	}

	if !validator.IsEmpty(r.DefaultYearMonth) && !validator.IsValidYearMonth(r.DefaultYearMonth) {
		errs = append(errs, validator.ValidationError{
			Field:   "default_year_month",
			Message: "default_year_month must be YYYY/MM or YYYYMM",
		})
	}

	if r.FileHeader == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "shift table file is required",
		})
	} else if !validator.HasExtension(r.FileHeader.Filename, AllowedUploadExtensions...) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "invalid file type: only xlsx, xlsm, xls allowed",
		})
	} else if maxBytes > 0 && r.FileHeader.Size > maxBytes {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "shift table file is too large",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ShiftCodeResponse struct {
	Code  string  `json:"code"`
	Start string  `json:"start"`
	End   string  `json:"end"`
	Hours float64 `json:"hours"`
}

type LayoutResponse struct {
	DateRow  int `json:"date_row"`
	DateCol  int `json:"date_col"`
	StartRow int `json:"start_row"`
	MaxCol   int `json:"max_col"`
}

// ParseResponse is the dry-run result of reading a shift table.
type ParseResponse struct {
	Sheet         string              `json:"sheet"`
	Sheets        []string            `json:"sheets"`
	YearMonth     string              `json:"year_month"`
	EmployeeCount int                 `json:"employee_count"`
	SkippedCells  int                 `json:"skipped_cells"`
	Layout        LayoutResponse      `json:"layout"`
	ShiftCodes    []ShiftCodeResponse `json:"shift_codes"`
	Entries       []ScheduleResponse  `json:"entries"`
}

type ImportResponse struct {
	ParseResponse
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Replaced   int64  `json:"replaced"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

// ========================================
// QUERY DTOs
// ========================================

type ScheduleFilter struct {
	Branch    string   `json:"branch"`
	YearMonth string   `json:"year_month"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Names     []string `json:"names"`
}

func (f *ScheduleFilter) Validate() error {
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

func (f *ScheduleFilter) Period() (timenorm.Period, error) {
	return timenorm.ResolvePeriod(f.YearMonth, f.StartDate, f.EndDate)
}

type ScheduleResponse struct {
	ID              string  `json:"id,omitempty"`
	EmployeeName    string  `json:"employee_name"`
	EmployeeAccount string  `json:"employee_account,omitempty"`
	Date            string  `json:"date"`
	Branch          string  `json:"branch"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	Hours           float64 `json:"hours"`
	ShiftCode       string  `json:"shift_code,omitempty"`
	Remark          string  `json:"remark,omitempty"`
}

type ListScheduleResponse struct {
	Items []ScheduleResponse `json:"items"`
	Total int                `json:"total"`
}

func NewScheduleResponse(e ScheduleEntry) ScheduleResponse {
	return ScheduleResponse{
		ID:              e.ID,
		EmployeeName:    e.EmployeeName,
		EmployeeAccount: e.EmployeeAccount,
		Date:            e.Date,
		Branch:          e.Branch,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Hours:           e.Hours,
		ShiftCode:       e.ShiftCode,
		Remark:          e.Remark,
	}
}

// ========================================
// REMARK DTOs
// ========================================

// UpdateRemarkRequest addresses a schedule row by branch, name, date and times.
type UpdateRemarkRequest struct {
	Branch       string `json:"branch"`
	EmployeeName string `json:"employee_name"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Remark       string `json:"remark"`
}

func (r *UpdateRemarkRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Branch) {
		errs = append(errs, validator.ValidationError{Field: "branch", Message: "branch is required"})
	}
	if validator.IsEmpty(r.EmployeeName) {
		errs = append(errs, validator.ValidationError{Field: "employee_name", Message: "employee_name is required"})
	}
	if date, ok := validator.IsValidShiftDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be a valid date"})
	} else {
		r.Date = date
	}
	if !validator.IsValidClock(r.StartTime) {
		errs = append(errs, validator.ValidationError{Field: "start_time", Message: "start_time must be HH:mm"})
	}
	if !validator.IsValidClock(r.EndTime) {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must be HH:mm"})
	}
	if len(r.Remark) > 500 {
		errs = append(errs, validator.ValidationError{Field: "remark", Message: "remark must be at most 500 characters"})
	}

	if len(errs) > 0 {
		return errs
	}

	r.Branch = strings.TrimSpace(r.Branch)
	r.EmployeeName = strings.TrimSpace(r.EmployeeName)
	r.StartTime, _ = timenorm.NormalizeTime(r.StartTime)
	r.EndTime, _ = timenorm.NormalizeTime(r.EndTime)
	return nil
}

type PersonnelResponse struct {
	Branch string   `json:"branch"`
	Names  []string `json:"names"`
}
