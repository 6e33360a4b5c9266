package attendance

import (
	"context"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

// AttendanceRepository defines data access methods for clock punches.
// A punch is unique by branch, account, date and start/end time, so
// several punches per employee and day can coexist.
type AttendanceRepository interface {
	// InsertMany appends entries and skips exact duplicates.
	InsertMany(ctx context.Context, entries []AttendanceEntry) (int, error)

	// DeleteRange removes a branch's punches inside the period.
	DeleteRange(ctx context.Context, branch string, period timenorm.Period) (int64, error)

	List(ctx context.Context, branch string, period timenorm.Period, names []string) ([]AttendanceEntry, error)

	// ListByAccounts returns punches of the given accounts at every branch,
	// used to spot double clocking across branches.
	ListByAccounts(ctx context.Context, accounts []string, period timenorm.Period) ([]AttendanceEntry, error)

	// UpdateRemark returns ErrAttendanceNotFound when no row matches.
	UpdateRemark(ctx context.Context, req UpdateRemarkRequest) (AttendanceEntry, error)

	// NameAccounts maps employee names to their time clock accounts.
	NameAccounts(ctx context.Context) (map[string]string, error)
}
