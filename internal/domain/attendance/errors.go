package attendance

import "errors"

// Attendance domain errors
var (
	// Import errors
	ErrUnsupportedFileType = errors.New("unsupported file type: only .xlsx, .xls and .csv are allowed")
	ErrNoAttendanceRows    = errors.New("no attendance rows found in worksheet")
	ErrUnreadableWorkbook  = errors.New("uploaded file could not be read as a workbook")
	ErrSheetNotFound       = errors.New("worksheet not found")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
