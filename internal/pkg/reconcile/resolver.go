package reconcile

import "strings"

// Resolution tells which rule produced an employee account.
type Resolution int

const (
	ResolvedExplicit Resolution = iota
	ResolvedAttendanceMapping
	ResolvedScheduleMapping
	ResolvedNameFallback
)

func (r Resolution) String() string {
	switch r {
	case ResolvedExplicit:
		return "explicit"
	case ResolvedAttendanceMapping:
		return "attendance-mapping"
	case ResolvedScheduleMapping:
		return "schedule-mapping"
	case ResolvedNameFallback:
		return "name-fallback"
	default:
		return "unknown"
	}
}

// AccountResolver maps employee names to accounts for rows that carry no
// account of their own. It is built once per compare and never modified.
type AccountResolver struct {
	attendanceNames map[string]string
	scheduleNames   map[string]string
}

// NewAccountResolver copies both mappings. Either may be nil.
func NewAccountResolver(attendanceNameToAccount, scheduleNameToAccount map[string]string) AccountResolver {
	return AccountResolver{
		attendanceNames: copyMapping(attendanceNameToAccount),
		scheduleNames:   copyMapping(scheduleNameToAccount),
	}
}

// Resolve returns the account to key a row on. An explicit account wins,
// then the attendance mapping, then the schedule mapping. With no match the
// trimmed name stands in for the account and ResolvedNameFallback is reported.
func (r AccountResolver) Resolve(account, name string) (string, Resolution) {
	if account = strings.TrimSpace(account); account != "" {
		return account, ResolvedExplicit
	}
	name = strings.TrimSpace(name)
	if acc, ok := r.attendanceNames[name]; ok {
		return acc, ResolvedAttendanceMapping
	}
	if acc, ok := r.scheduleNames[name]; ok {
		return acc, ResolvedScheduleMapping
	}
	return name, ResolvedNameFallback
}

func addMapping(m map[string]string, name, account string) {
	name, account = strings.TrimSpace(name), strings.TrimSpace(account)
	if name == "" || account == "" {
		return
	}
	if _, exists := m[name]; !exists {
		m[name] = account
	}
}

func copyMapping(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for name, account := range src {
		addMapping(dst, name, account)
	}
	return dst
}
