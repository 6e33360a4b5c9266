// Package reconcile pairs planned shifts with clock punches and flags the
// days a reviewer should look at. Everything here is pure: callers load the
// rows, corrections and confirmations, and persist whatever comes back.
package reconcile

import (
	"strings"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

// KeySeparator joins the parts of every key built in this package.
const KeySeparator = "|"

// BuildMatchKey groups a schedule entry with the attendance entry of the same
// employee, date and branch. The date is normalized so "2025/02/07" and
// "2025-02-07" produce the same key.
func BuildMatchKey(account, date, branch string) string {
	return joinKey(account, timenorm.DateOrRaw(date), branch)
}

// CorrectionKey addresses a stored correction. Only the scheduled times take
// part; attendance-only days use empty start and end.
func CorrectionKey(account, date, scheduleStart, scheduleEnd, branch string) string {
	return joinKey(account, timenorm.DateOrRaw(date), timeOrRaw(scheduleStart), timeOrRaw(scheduleEnd), branch)
}

// BuildCorrectionKey derives the correction key for a compared day. The
// account is resolved through r the same way rows are grouped, so a shift
// table row without an account column keys on its mapped account or name.
// Date and branch come from the schedule when present, then from the
// attendance, then branch falls back to the given one.
func BuildCorrectionKey(r AccountResolver, s *schedule.ScheduleEntry, a *attendance.AttendanceEntry, branch string) string {
	var account, date, scheduleStart, scheduleEnd, rowBranch string
	if a != nil {
		account, _ = r.Resolve(a.EmployeeAccount, a.EmployeeName)
		date, rowBranch = a.Date, a.Branch
	}
	if s != nil {
		if acc, _ := r.Resolve(s.EmployeeAccount, s.EmployeeName); acc != "" {
			account = acc
		}
		date = firstNonEmpty(s.Date, date)
		rowBranch = firstNonEmpty(s.Branch, rowBranch)
		scheduleStart, scheduleEnd = s.StartTime, s.EndTime
	}
	return CorrectionKey(account, date, scheduleStart, scheduleEnd, firstNonEmpty(rowBranch, branch))
}

// ConfirmationKey addresses the acknowledgement of one attendance punch. A
// punch that later changes produces a new key and surfaces its alert again.
func ConfirmationKey(account, date, attendanceStart, attendanceEnd, branch string) string {
	return joinKey(account, timenorm.DateOrRaw(date), timeOrRaw(attendanceStart), timeOrRaw(attendanceEnd), branch)
}

func joinKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, KeySeparator)
}

func timeOrRaw(raw string) string {
	if t, ok := timenorm.NormalizeTime(raw); ok {
		return t
	}
	return strings.TrimSpace(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
