package reconcile

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/compare"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
)

func shift(name, account, date, branch, start, end string) schedule.ScheduleEntry {
	return schedule.ScheduleEntry{EmployeeName: name, EmployeeAccount: account, Date: date, Branch: branch, StartTime: start, EndTime: end}
}

func clockRow(name, account, date, branch, start, end string) attendance.AttendanceEntry {
	return attendance.AttendanceEntry{EmployeeName: name, EmployeeAccount: account, Date: date, Branch: branch, StartTime: start, EndTime: end}
}

func findItem(t *testing.T, items []compare.Item, key string) compare.Item {
	t.Helper()
	for _, it := range items {
		if it.Key == key {
			return it
		}
	}
	require.Failf(t, "item not found", "key %q", key)
	return compare.Item{}
}

func TestCompare_SmallDriftIsNotOvertime(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	res := engine.Compare(Input{
		Schedules:   []schedule.ScheduleEntry{shift("王小明", "E01", "2025/02/07", "A", "09:00", "18:00")},
		Attendances: []attendance.AttendanceEntry{clockRow("王小明", "E01", "2025-02-07", "A", "08:55", "18:05")},
	})

	require.Len(t, res.Items, 1)
	item := res.Items[0]
	assert.Equal(t, "E01|2025-02-07|A", item.Key)
	require.NotNil(t, item.Schedule)
	require.NotNil(t, item.Attendance)
	assert.Equal(t, 540, *item.ScheduledMinutes)
	assert.Equal(t, 550, *item.WorkedMinutes)
	assert.False(t, item.OvertimeAlert)
	assert.False(t, item.OverlapWarning)
	assert.Equal(t, "王小明", item.DisplayName)
	assert.Equal(t, 1, res.Stats.Matched)
}

func TestCompare_OvertimeBeyondThreshold(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	res := engine.Compare(Input{
		Schedules:   []schedule.ScheduleEntry{shift("A", "E01", "2025-02-07", "A", "09:00", "18:00")},
		Attendances: []attendance.AttendanceEntry{clockRow("A", "E01", "2025-02-07", "A", "08:30", "19:31")},
	})

	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].OvertimeAlert)
	assert.Equal(t, 1, res.Stats.Overtime)

	strict := NewEngine(Options{OvertimeThresholdMinutes: 0})
	res = strict.Compare(Input{
		Schedules:   []schedule.ScheduleEntry{shift("A", "E01", "2025-02-07", "A", "09:00", "18:00")},
		Attendances: []attendance.AttendanceEntry{clockRow("A", "E01", "2025-02-07", "A", "08:55", "18:05")},
	})
	assert.True(t, res.Items[0].OvertimeAlert)
}

func TestCompare_OvernightShift(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	res := engine.Compare(Input{
		Schedules:   []schedule.ScheduleEntry{shift("A", "E01", "2025-02-07", "A", "22:00", "06:00")},
		Attendances: []attendance.AttendanceEntry{clockRow("A", "E01", "2025-02-07", "A", "21:50", "06:30")},
	})

	require.Len(t, res.Items, 1)
	assert.Equal(t, 480, *res.Items[0].ScheduledMinutes)
	assert.Equal(t, 520, *res.Items[0].WorkedMinutes)
	assert.False(t, res.Items[0].OvertimeAlert)
}

func TestCompare_OneItemPerKey(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	res := engine.Compare(Input{
		Schedules: []schedule.ScheduleEntry{
			shift("A", "E01", "2025-02-07", "A", "09:00", "18:00"),
			shift("B", "E02", "2025-02-07", "A", "09:00", "18:00"),
		},
		Attendances: []attendance.AttendanceEntry{
			clockRow("A", "E01", "2025/02/07", "A", "09:00", "18:00"),
			clockRow("C", "E03", "2025-02-07", "A", "12:00", "18:00"),
		},
	})

	require.Len(t, res.Items, 3)
	assert.Equal(t, compare.Stats{Total: 3, Matched: 1, ScheduleOnly: 1, AttendanceOnly: 1}, res.Stats)

	onlySchedule := findItem(t, res.Items, "E02|2025-02-07|A")
	assert.Nil(t, onlySchedule.Attendance)
	assert.Empty(t, onlySchedule.ConfirmationKey)
	assert.Equal(t, "E02|2025-02-07|09:00|18:00|A", onlySchedule.CorrectionKey)

	onlyAttendance := findItem(t, res.Items, "E03|2025-02-07|A")
	assert.Nil(t, onlyAttendance.Schedule)
	assert.False(t, onlyAttendance.OvertimeAlert, "no schedule, nothing to exceed")
	assert.Equal(t, "E03|2025-02-07|||A", onlyAttendance.CorrectionKey)
}

func TestCompare_CorrectionLookup(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	in := Input{
		Schedules: []schedule.ScheduleEntry{shift("A", "E01", "2025/02/07", "A店", "09:00", "18:00")},
		Attendances: []attendance.AttendanceEntry{
			clockRow("A", "E01", "2025-02-07", "A店", "08:55", "18:05"),
			clockRow("B", "E02", "2025-02-07", "A店", "08:55", "18:05"),
		},
		Corrections: map[string]compare.Correction{
			"E01|2025-02-07|09:00|18:00|A店": {CorrectedStart: "09:00", CorrectedEnd: "18:00", Remark: "forgot to clock"},
			"E02|2025-02-07|||A店":           {CorrectedStart: "09:00", CorrectedEnd: "17:00"},
			"E09|2025-02-07|||A店":           {CorrectedStart: "10:00", CorrectedEnd: "11:00"},
		},
	}

	res := engine.Compare(in)
	withSchedule := findItem(t, res.Items, "E01|2025-02-07|A店")
	require.NotNil(t, withSchedule.Correction)
	assert.Equal(t, "forgot to clock", withSchedule.Correction.Remark)

	attendanceOnly := findItem(t, res.Items, "E02|2025-02-07|A店")
	require.NotNil(t, attendanceOnly.Correction)
	assert.Equal(t, "17:00", attendanceOnly.Correction.CorrectedEnd)
	assert.Equal(t, 2, res.Stats.Corrected)

	in.Corrections = nil
	res = engine.Compare(in)
	for _, it := range res.Items {
		assert.Nil(t, it.Correction, "a missing correction is not an error")
	}
}

func TestCompare_OverlapAcrossBranches(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	res := engine.Compare(Input{
		Attendances: []attendance.AttendanceEntry{
			clockRow("A", "E01", "2025-02-07", "A店", "09:00", "14:00"),
			clockRow("A", "E01", "2025-02-07", "B店", "13:00", "18:00"),
			clockRow("B", "E02", "2025-02-07", "A店", "09:00", "14:00"),
			clockRow("B", "E02", "2025-02-07", "B店", "14:00", "18:00"),
		},
	})

	require.Len(t, res.Items, 4)
	assert.True(t, findItem(t, res.Items, "E01|2025-02-07|A店").OverlapWarning)
	assert.True(t, findItem(t, res.Items, "E01|2025-02-07|B店").OverlapWarning)
	assert.False(t, findItem(t, res.Items, "E02|2025-02-07|A店").OverlapWarning, "touching ranges do not overlap")
	assert.False(t, findItem(t, res.Items, "E02|2025-02-07|B店").OverlapWarning)
	assert.Equal(t, 2, res.Stats.Overlap)
}

func TestCompare_OtherPunchesOnlyFeedOverlap(t *testing.T) {
	res := NewEngine(DefaultOptions()).Compare(Input{
		Attendances: []attendance.AttendanceEntry{
			clockRow("A", "E01", "2025-02-07", "A店", "09:00", "14:00"),
			clockRow("B", "E02", "2025-02-07", "A店", "09:00", "14:00"),
		},
		OtherPunches: []attendance.AttendanceEntry{
			clockRow("A", "E01", "2025/02/07", "B店", "13:30", "18:00"),
			clockRow("B", "E02", "2025-02-08", "B店", "10:00", "12:00"),
		},
	})

	require.Len(t, res.Items, 2)
	assert.True(t, findItem(t, res.Items, "E01|2025-02-07|A店").OverlapWarning)
	assert.False(t, findItem(t, res.Items, "E02|2025-02-07|A店").OverlapWarning, "different date")
	assert.Equal(t, 2, res.Stats.AttendanceOnly)
}

func TestCompare_PunchPolicy(t *testing.T) {
	in := Input{
		Schedules: []schedule.ScheduleEntry{shift("A", "E01", "2025-02-07", "A", "09:00", "18:00")},
		Attendances: []attendance.AttendanceEntry{
			clockRow("A", "E01", "2025-02-07", "A", "09:00", "12:00"),
			clockRow("A", "E01", "2025-02-07", "A", "13:00", "18:00"),
		},
	}

	cases := []struct {
		policy     PunchPolicy
		start, end string
		worked     int
	}{
		{PunchFirst, "09:00", "12:00", 180},
		{PunchLast, "13:00", "18:00", 300},
		{PunchMerge, "09:00", "18:00", 540},
	}
	for _, tc := range cases {
		t.Run(string(tc.policy), func(t *testing.T) {
			res := NewEngine(Options{OvertimeThresholdMinutes: 60, PunchPolicy: tc.policy}).Compare(in)
			require.Len(t, res.Items, 1)

			item := res.Items[0]
			assert.Equal(t, tc.start, item.Attendance.StartTime)
			assert.Equal(t, tc.end, item.Attendance.EndTime)
			assert.Equal(t, tc.worked, *item.WorkedMinutes)
			assert.Equal(t, 1, item.ExtraPunches)
			assert.False(t, item.OverlapWarning, "a lunch break is not a double clock")
			assert.Equal(t, 1, res.Stats.ExtraPunches)
		})
	}

	// The input rows are left untouched.
	assert.Equal(t, "12:00", in.Attendances[0].EndTime)
}

func TestCompare_MergeAcrossMidnight(t *testing.T) {
	res := NewEngine(Options{PunchPolicy: PunchMerge}).Compare(Input{
		Attendances: []attendance.AttendanceEntry{
			clockRow("A", "E01", "2025-02-07", "A", "20:00", "23:00"),
			clockRow("A", "E01", "2025-02-07", "A", "23:30", "02:00"),
		},
	})

	require.Len(t, res.Items, 1)
	assert.Equal(t, "20:00", res.Items[0].Attendance.StartTime)
	assert.Equal(t, "02:00", res.Items[0].Attendance.EndTime)
	assert.Equal(t, 6.0, res.Items[0].Attendance.Hours)
}

func TestCompare_ConfirmationLifecycle(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	in := Input{
		Schedules:   []schedule.ScheduleEntry{shift("A", "E01", "2025-02-07", "A", "09:00", "18:00")},
		Attendances: []attendance.AttendanceEntry{clockRow("A", "E01", "2025-02-07", "A", "07:00", "20:00")},
	}

	item := engine.Compare(in).Items[0]
	assert.True(t, item.OvertimeAlert)
	assert.False(t, item.ConfirmedIgnore)
	assert.True(t, item.Flagged())

	in.Confirmations = map[string]bool{item.ConfirmationKey: true}
	item = engine.Compare(in).Items[0]
	assert.True(t, item.OvertimeAlert, "flags are recomputed every time")
	assert.True(t, item.ConfirmedIgnore)
	assert.False(t, item.Flagged())

	in.Confirmations[item.ConfirmationKey] = false
	item = engine.Compare(in).Items[0]
	assert.True(t, item.Flagged())

	// A changed punch surfaces again even with the old acknowledgement.
	in.Confirmations[item.ConfirmationKey] = true
	in.Attendances[0].EndTime = "21:00"
	item = engine.Compare(in).Items[0]
	assert.False(t, item.ConfirmedIgnore)
}

func TestCompare_NameFallbackIsObservable(t *testing.T) {
	schedules := []schedule.ScheduleEntry{
		shift("王小明", "", "2026-02-07", "A店", "09:00", "18:00"),
		shift("TiNg", "", "2026-02-07", "A店", "09:00", "18:00"),
		shift("TiNg", "", "2026-02-08", "A店", "09:00", "18:00"),
	}
	attendances := []attendance.AttendanceEntry{
		clockRow("王小明", "E01", "2026-02-07", "A店", "09:00", "18:00"),
	}

	res := NewEngine(DefaultOptions()).Compare(Input{
		Schedules:   schedules,
		Attendances: attendances,
		Resolver:    NewAccountResolver(map[string]string{"王小明": "E01"}, nil),
	})

	require.Len(t, res.Items, 3)
	mapped := findItem(t, res.Items, "E01|2026-02-07|A店")
	assert.NotNil(t, mapped.Schedule)
	assert.NotNil(t, mapped.Attendance)
	assert.False(t, mapped.KeyedByName)

	byName := findItem(t, res.Items, "TiNg|2026-02-07|A店")
	assert.True(t, byName.KeyedByName)
	assert.Equal(t, 2, res.Stats.NameFallback)
	assert.Equal(t, []string{"TiNg"}, res.NameFallbacks)
}

func TestCompare_SortedOutput(t *testing.T) {
	res := NewEngine(DefaultOptions()).Compare(Input{
		Schedules: []schedule.ScheduleEntry{
			shift("Zed", "E09", "2025-02-08", "A", "09:00", "18:00"),
			shift("Amy", "E02", "2025-02-07", "B", "09:00", "18:00"),
			shift("Bob", "E03", "2025-02-07", "A", "09:00", "18:00"),
			shift("Amy", "E01", "2025-02-07", "A", "09:00", "18:00"),
		},
	})

	var keys []string
	for _, it := range res.Items {
		keys = append(keys, it.Key)
	}
	assert.Equal(t, []string{
		"E01|2025-02-07|A",
		"E03|2025-02-07|A",
		"E02|2025-02-07|B",
		"E09|2025-02-08|A",
	}, keys)
}

func TestCompare_HoursFallback(t *testing.T) {
	s := shift("A", "E01", "2025-02-07", "A", "", "")
	s.Hours = 8
	a := clockRow("A", "E01", "2025-02-07", "A", "?", "")
	a.Hours = 9.5

	res := NewEngine(DefaultOptions()).Compare(Input{
		Schedules:   []schedule.ScheduleEntry{s},
		Attendances: []attendance.AttendanceEntry{a},
	})

	require.Len(t, res.Items, 1)
	assert.Equal(t, 480, *res.Items[0].ScheduledMinutes)
	assert.Equal(t, 570, *res.Items[0].WorkedMinutes)
	assert.True(t, res.Items[0].OvertimeAlert)
}

func TestCompare_ConcurrentUse(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	in := Input{
		Schedules:   []schedule.ScheduleEntry{shift("A", "E01", "2025-02-07", "A", "09:00", "18:00")},
		Attendances: []attendance.AttendanceEntry{clockRow("A", "E01", "2025-02-07", "A", "08:00", "20:00")},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := engine.Compare(in)
			assert.True(t, res.Items[0].OvertimeAlert)
		}()
	}
	wg.Wait()
}

func TestParsePunchPolicy(t *testing.T) {
	p, err := ParsePunchPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PunchFirst, p)

	p, err = ParsePunchPolicy(" Merge ")
	require.NoError(t, err)
	assert.Equal(t, PunchMerge, p)

	_, err = ParsePunchPolicy("list")
	assert.Error(t, err)
}
