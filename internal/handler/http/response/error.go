package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/compare"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Upload errors
	case errors.Is(err, schedule.ErrUnrecognizedTableFormat):
		UnprocessableEntity(w, "UNRECOGNIZED_TABLE_FORMAT", err.Error())
	case errors.Is(err, schedule.ErrUnsupportedFileType),
		errors.Is(err, attendance.ErrUnsupportedFileType):
		UnprocessableEntity(w, "UNSUPPORTED_FILE_TYPE", err.Error())
	case errors.Is(err, schedule.ErrUnreadableWorkbook),
		errors.Is(err, attendance.ErrUnreadableWorkbook):
		UnprocessableEntity(w, "UNREADABLE_WORKBOOK", err.Error())
	case errors.Is(err, schedule.ErrEmptyWorksheet),
		errors.Is(err, attendance.ErrNoAttendanceRows):
		UnprocessableEntity(w, "EMPTY_WORKSHEET", err.Error())
	case errors.Is(err, schedule.ErrSheetNotFound),
		errors.Is(err, attendance.ErrSheetNotFound):
		NotFound(w, err.Error())

	// Schedule domain errors
	case errors.Is(err, schedule.ErrScheduleNotFound):
		NotFound(w, "Schedule entry not found")
	case errors.Is(err, schedule.ErrBranchRequired):
		ValidationError(w, map[string]string{"branch": "branch is required"})

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Compare domain errors
	case errors.Is(err, compare.ErrNothingToConfirm):
		UnprocessableEntity(w, "NOTHING_TO_CONFIRM", err.Error())

	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid token")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
