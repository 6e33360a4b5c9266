package branch

// BranchResponse represents the response structure for a branch.
type BranchResponse struct {
	Name           string `json:"name"`
	ScheduleRows   int64  `json:"schedule_rows"`
	AttendanceRows int64  `json:"attendance_rows"`
}

type ListBranchResponse struct {
	Branches []BranchResponse `json:"branches"`
	Total    int              `json:"total"`
}

func NewBranchResponse(b Branch) BranchResponse {
	return BranchResponse{
		Name:           b.Name,
		ScheduleRows:   b.ScheduleRows,
		AttendanceRows: b.AttendanceRows,
	}
}
