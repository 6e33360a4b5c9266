package schedule

import (
	"context"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

// ScheduleRepository persists parsed shift rows. One row exists per
// employee name, date and branch.
type ScheduleRepository interface {
	// InsertMany appends entries and skips those that already exist.
	// It returns how many rows were actually inserted.
	InsertMany(ctx context.Context, entries []ScheduleEntry) (int, error)

	// DeleteRange removes a branch's rows inside the period.
	DeleteRange(ctx context.Context, branch string, period timenorm.Period) (int64, error)

	List(ctx context.Context, branch string, period timenorm.Period, names []string) ([]ScheduleEntry, error)

	// UpdateRemark returns ErrScheduleNotFound when no row matches.
	UpdateRemark(ctx context.Context, req UpdateRemarkRequest) (ScheduleEntry, error)

	// NameAccounts maps employee names to the accounts recorded on earlier imports.
	NameAccounts(ctx context.Context) (map[string]string, error)

	ListPersonnel(ctx context.Context, branch string) ([]string, error)
}
