package attendance

import (
	"context"
)

// AttendanceService defines business logic for time clock exports
type AttendanceService interface {
	// Import reads an uploaded export and appends its punches
	Import(ctx context.Context, req ImportRequest) (ImportResponse, error)

	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	UpdateRemark(ctx context.Context, req UpdateRemarkRequest) (AttendanceResponse, error)
}
