package schedule

import (
	"context"
)

// ScheduleService defines business logic for shift table operations
type ScheduleService interface {
	// Parse reads an uploaded shift table without storing anything
	Parse(ctx context.Context, req ImportRequest) (ParseResponse, error)

	// Import parses an uploaded shift table, archives the file and appends the rows
	Import(ctx context.Context, req ImportRequest) (ImportResponse, error)

	List(ctx context.Context, filter ScheduleFilter) (ListScheduleResponse, error)

	UpdateRemark(ctx context.Context, req UpdateRemarkRequest) (ScheduleResponse, error)

	// ListPersonnel returns the distinct employee names scheduled at a branch
	ListPersonnel(ctx context.Context, branch string) (PersonnelResponse, error)
}
