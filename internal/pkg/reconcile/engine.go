package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/compare"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

// PunchPolicy decides which attendance row represents a key when an
// employee clocked more than once on the same day at the same branch.
type PunchPolicy string

const (
	// PunchFirst keeps the first row in input order.
	PunchFirst PunchPolicy = "first"
	// PunchLast keeps the last row in input order.
	PunchLast PunchPolicy = "last"
	// PunchMerge spans the earliest start to the latest end.
	PunchMerge PunchPolicy = "merge"
)

const DefaultOvertimeThresholdMinutes = 60

// ParsePunchPolicy reads a policy name. An empty name means PunchFirst.
func ParsePunchPolicy(s string) (PunchPolicy, error) {
	switch p := PunchPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PunchFirst, nil
	case PunchFirst, PunchLast, PunchMerge:
		return p, nil
	default:
		return "", fmt.Errorf("unknown punch policy %q (want first, last or merge)", s)
	}
}

// Options configure an Engine. OvertimeThresholdMinutes is the number of
// worked minutes beyond the scheduled minutes that is still tolerated.
type Options struct {
	OvertimeThresholdMinutes int
	PunchPolicy              PunchPolicy
}

// DefaultOptions tolerates one hour and keeps the first punch.
func DefaultOptions() Options {
	return Options{
		OvertimeThresholdMinutes: DefaultOvertimeThresholdMinutes,
		PunchPolicy:              PunchFirst,
	}
}

// Input is an immutable snapshot of everything one compare needs.
// Corrections are keyed by CorrectionKey, Confirmations by ConfirmationKey.
// OtherPunches are rows from outside the compared scope, typically other
// branches; they only take part in overlap detection and never become items.
type Input struct {
	Schedules     []schedule.ScheduleEntry
	Attendances   []attendance.AttendanceEntry
	OtherPunches  []attendance.AttendanceEntry
	Resolver      AccountResolver
	Corrections   map[string]compare.Correction
	Confirmations map[string]bool
}

// Result holds the compared items and a summary. NameFallbacks lists the
// employee names that had to be keyed by name, sorted and without duplicates.
type Result struct {
	Items         []compare.Item
	Stats         compare.Stats
	NameFallbacks []string
}

// Engine compares schedules with attendance. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	if opts.PunchPolicy == "" {
		opts.PunchPolicy = PunchFirst
	}
	if opts.OvertimeThresholdMinutes < 0 {
		opts.OvertimeThresholdMinutes = 0
	}
	return &Engine{opts: opts}
}

func (e *Engine) Options() Options {
	return e.opts
}

// punch is one attendance row placed on a linear minute axis of its date.
// Overnight punches end past MinutesPerDay.
type punch struct {
	index    int
	start    int
	end      int
	hasRange bool
}

type group struct {
	key          string
	account      string
	date         string
	branch       string
	resolution   Resolution
	schedules    []*schedule.ScheduleEntry
	attendances  []*attendance.AttendanceEntry
	attIndexes   []int
	nameFallback string
}

// Compare emits exactly one item per match key found in either input.
func (e *Engine) Compare(in Input) Result {
	groups := make(map[string]*group)
	var order []string
	fallbackNames := make(map[string]struct{})

	lookup := func(account, date, branch string, res Resolution) *group {
		key := BuildMatchKey(account, date, branch)
		g, ok := groups[key]
		if !ok {
			g = &group{
				key:        key,
				account:    strings.TrimSpace(account),
				date:       timenorm.DateOrRaw(date),
				branch:     strings.TrimSpace(branch),
				resolution: res,
			}
			groups[key] = g
			order = append(order, key)
		}
		if res > g.resolution {
			g.resolution = res
		}
		return g
	}

	// Attendance first so that its row order decides the punch policy.
	punchesByDay := make(map[string][]punch)
	for i := range in.Attendances {
		a := &in.Attendances[i]
		account, res := in.Resolver.Resolve(a.EmployeeAccount, a.EmployeeName)
		g := lookup(account, a.Date, a.Branch, res)
		g.attendances = append(g.attendances, a)
		g.attIndexes = append(g.attIndexes, i)
		if res == ResolvedNameFallback {
			g.nameFallback = strings.TrimSpace(a.EmployeeName)
		}

		p := newPunch(i, a.StartTime, a.EndTime)
		day := dayKey(account, a.Date)
		punchesByDay[day] = append(punchesByDay[day], p)
	}
	for j, a := range in.OtherPunches {
		account, _ := in.Resolver.Resolve(a.EmployeeAccount, a.EmployeeName)
		p := newPunch(len(in.Attendances)+j, a.StartTime, a.EndTime)
		day := dayKey(account, a.Date)
		punchesByDay[day] = append(punchesByDay[day], p)
	}

	for i := range in.Schedules {
		s := &in.Schedules[i]
		account, res := in.Resolver.Resolve(s.EmployeeAccount, s.EmployeeName)
		g := lookup(account, s.Date, s.Branch, res)
		g.schedules = append(g.schedules, s)
		if res == ResolvedNameFallback {
			g.nameFallback = strings.TrimSpace(s.EmployeeName)
		}
	}

	overlapping := overlappingPunches(punchesByDay)

	result := Result{Items: make([]compare.Item, 0, len(order))}
	for _, key := range order {
		g := groups[key]
		item := e.buildItem(g, in, overlapping)

		if item.KeyedByName && g.nameFallback != "" {
			fallbackNames[g.nameFallback] = struct{}{}
		}
		addStats(&result.Stats, item)
		result.Items = append(result.Items, item)
	}

	sortItems(result.Items)
	for name := range fallbackNames {
		result.NameFallbacks = append(result.NameFallbacks, name)
	}
	sort.Strings(result.NameFallbacks)

	return result
}

func (e *Engine) buildItem(g *group, in Input, overlapping map[int]bool) compare.Item {
	item := compare.Item{
		Key:             g.key,
		EmployeeAccount: g.account,
		Branch:          g.branch,
		Date:            g.date,
		KeyedByName:     g.resolution == ResolvedNameFallback,
	}

	if len(g.schedules) > 0 {
		s := *g.schedules[0]
		item.Schedule = &s
		if m, ok := entryMinutes(s.StartTime, s.EndTime, s.Hours); ok {
			item.ScheduledMinutes = &m
		}
	}

	if len(g.attendances) > 0 {
		a := e.selectPunch(g.attendances)
		item.Attendance = &a
		item.ExtraPunches = len(g.attendances) - 1
		if m, ok := entryMinutes(a.StartTime, a.EndTime, a.Hours); ok {
			item.WorkedMinutes = &m
		}
		for _, idx := range g.attIndexes {
			if overlapping[idx] {
				item.OverlapWarning = true
				break
			}
		}

		item.ConfirmationKey = ConfirmationKey(g.account, g.date, a.StartTime, a.EndTime, g.branch)
		item.ConfirmedIgnore = in.Confirmations[item.ConfirmationKey]
	}

	if item.ScheduledMinutes != nil && item.WorkedMinutes != nil {
		item.OvertimeAlert = *item.WorkedMinutes-*item.ScheduledMinutes > e.opts.OvertimeThresholdMinutes
	}

	item.DisplayName = displayName(item)

	item.CorrectionKey = BuildCorrectionKey(in.Resolver, item.Schedule, item.Attendance, g.branch)
	if c, ok := in.Corrections[item.CorrectionKey]; ok {
		item.Correction = &c
	}

	return item
}

// selectPunch applies the punch policy. Rows are never modified in place.
func (e *Engine) selectPunch(rows []*attendance.AttendanceEntry) attendance.AttendanceEntry {
	switch e.opts.PunchPolicy {
	case PunchLast:
		return *rows[len(rows)-1]
	case PunchMerge:
		return mergePunches(rows)
	default:
		return *rows[0]
	}
}

func mergePunches(rows []*attendance.AttendanceEntry) attendance.AttendanceEntry {
	merged := *rows[0]
	if len(rows) == 1 {
		return merged
	}

	start, end := -1, -1
	var statuses []string
	for _, row := range rows {
		if row.Status != "" && !containsString(statuses, row.Status) {
			statuses = append(statuses, row.Status)
		}
		p := newPunch(0, row.StartTime, row.EndTime)
		if !p.hasRange {
			continue
		}
		if start < 0 || p.start < start {
			start = p.start
		}
		if p.end > end {
			end = p.end
		}
	}
	merged.Status = strings.Join(statuses, "/")
	if start < 0 {
		return merged
	}

	merged.StartTime = clock(start)
	merged.EndTime = clock(end)
	merged.Hours = timenorm.RoundHours(end - start)
	return merged
}

func addStats(st *compare.Stats, item compare.Item) {
	st.Total++
	switch {
	case item.Schedule != nil && item.Attendance != nil:
		st.Matched++
	case item.Schedule != nil:
		st.ScheduleOnly++
	default:
		st.AttendanceOnly++
	}
	if item.KeyedByName {
		st.NameFallback++
	}
	st.ExtraPunches += item.ExtraPunches
	if item.OvertimeAlert {
		st.Overtime++
	}
	if item.OverlapWarning {
		st.Overlap++
	}
	if item.ConfirmedIgnore {
		st.Confirmed++
	}
	if item.Correction.Corrected() {
		st.Corrected++
	}
}

func newPunch(index int, startTime, endTime string) punch {
	start, ok := timenorm.MinutesOfDay(startTime)
	if !ok {
		return punch{index: index}
	}
	length, ok := timenorm.MinutesBetween(startTime, endTime)
	if !ok || length == 0 {
		return punch{index: index}
	}
	return punch{index: index, start: start, end: start + length, hasRange: true}
}

// overlappingPunches returns the attendance indexes whose clock range
// intersects another row of the same employee on the same date, at any branch.
func overlappingPunches(byDay map[string][]punch) map[int]bool {
	out := make(map[int]bool)
	for _, punches := range byDay {
		for i := 0; i < len(punches); i++ {
			if !punches[i].hasRange {
				continue
			}
			for j := i + 1; j < len(punches); j++ {
				if !punches[j].hasRange {
					continue
				}
				if punches[i].start < punches[j].end && punches[j].start < punches[i].end {
					out[punches[i].index] = true
					out[punches[j].index] = true
				}
			}
		}
	}
	return out
}

// entryMinutes prefers the clock range and falls back to the recorded hours.
func entryMinutes(start, end string, hours float64) (int, bool) {
	if m, ok := timenorm.MinutesBetween(start, end); ok {
		return m, true
	}
	if hours > 0 {
		return int(hours*60 + 0.5), true
	}
	return 0, false
}

func dayKey(account, date string) string {
	return joinKey(account, timenorm.DateOrRaw(date))
}

func displayName(item compare.Item) string {
	if item.Attendance != nil && strings.TrimSpace(item.Attendance.EmployeeName) != "" {
		return strings.TrimSpace(item.Attendance.EmployeeName)
	}
	if item.Schedule != nil && strings.TrimSpace(item.Schedule.EmployeeName) != "" {
		return strings.TrimSpace(item.Schedule.EmployeeName)
	}
	return item.EmployeeAccount
}

func clock(minutes int) string {
	minutes %= timenorm.MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortItems(items []compare.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Branch != b.Branch {
			return a.Branch < b.Branch
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.EmployeeAccount < b.EmployeeAccount
	})
}
