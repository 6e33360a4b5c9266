package branch

// Branch is a store location known from imported schedules or attendance.
// Branches are not managed separately; they exist once a row mentions them.
type Branch struct {
	Name           string
	ScheduleRows   int64
	AttendanceRows int64
}
