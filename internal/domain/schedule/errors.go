package schedule

import "errors"

var (
	ErrScheduleNotFound        = errors.New("schedule entry not found")
	ErrUnrecognizedTableFormat = errors.New("unrecognized table format: day 1 header not found")
	ErrEmptyWorksheet          = errors.New("worksheet is empty")
	ErrSheetNotFound           = errors.New("worksheet not found")
	ErrUnsupportedFileType     = errors.New("unsupported file type: only .xlsx and .xls are allowed")
	ErrUnreadableWorkbook      = errors.New("uploaded file could not be read as a workbook")

	ErrBranchRequired = errors.New("branch is required")
)
