package attendance

import (
	"bytes"
	"context"
	"mime/multipart"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/shifttable"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/validator"
)

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAttendanceRepo struct {
	rows []attendance.AttendanceEntry
}

func punchKey(e attendance.AttendanceEntry) string {
	return e.Branch + "|" + e.EmployeeAccount + "|" + e.EmployeeName + "|" + e.Date + "|" + e.StartTime + "|" + e.EndTime
}

func (f *fakeAttendanceRepo) InsertMany(ctx context.Context, entries []attendance.AttendanceEntry) (int, error) {
	seen := make(map[string]bool)
	for _, r := range f.rows {
		seen[punchKey(r)] = true
	}
	n := 0
	for _, e := range entries {
		if seen[punchKey(e)] {
			continue
		}
		seen[punchKey(e)] = true
		f.rows = append(f.rows, e)
		n++
	}
	return n, nil
}

func (f *fakeAttendanceRepo) DeleteRange(ctx context.Context, branch string, period timenorm.Period) (int64, error) {
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if r.Branch == branch && r.Date >= period.Start && r.Date <= period.End {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeAttendanceRepo) List(ctx context.Context, branch string, period timenorm.Period, names []string) ([]attendance.AttendanceEntry, error) {
	var out []attendance.AttendanceEntry
	for _, r := range f.rows {
		if r.Branch == branch && r.Date >= period.Start && r.Date <= period.End {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByAccounts(ctx context.Context, accounts []string, period timenorm.Period) ([]attendance.AttendanceEntry, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) UpdateRemark(ctx context.Context, req attendance.UpdateRemarkRequest) (attendance.AttendanceEntry, error) {
	for i, r := range f.rows {
		if r.Branch == req.Branch && r.EmployeeAccount == req.EmployeeAccount && r.Date == req.Date &&
			r.StartTime == req.StartTime && (req.EndTime == "" || r.EndTime == req.EndTime) {
			f.rows[i].Remark = req.Remark
			return f.rows[i], nil
		}
	}
	return attendance.AttendanceEntry{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) NameAccounts(ctx context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

func csvUpload(body string) (multipart.File, *multipart.FileHeader) {
	data := []byte(body)
	return memFile{bytes.NewReader(data)}, &multipart.FileHeader{Filename: "punches.csv", Size: int64(len(data))}
}

const punchesCSV = "分店,員編,帳號,姓名,日期,上班,下班,時數,狀態,備註\n" +
	"泉威,001,E01,TiNg,2026/02/01,09:55,17:05,7.2,正常,\n" +
	"泉威,002,E02,茶葉,2026/02/01,1000,1500,,正常,\n" +
	",003,E03,魚,2026-02-02,22:00,06:00,8,夜班,\n" +
	"泉威,004,,,2026-02-02,10:00,15:00,5,,\n" +
	"泉威,005,E05,鳥,not a date,10:00,15:00,5,,\n" +
	",,,,,,,,,\n"

func TestParseRows(t *testing.T) {
	grid := shifttable.Grid{
		{"分店", "員編", "帳號", "姓名", "日期", "上班", "下班", "時數", "狀態", "備註"},
		{"泉威", "001", "E01", "TiNg", "2026/02/01", "09:55", "17:05", "7.2", "正常", "遲到"},
		{"", "003", "E03", "魚", "2026-02-02", "22:00", "06:00", "", "夜班"},
		{"泉威", "004", "", "", "2026-02-02", "10:00", "15:00", "5"},
		{},
		{"泉威", "005", "E05", "鳥", "?", "10:00", "15:00", "5"},
	}

	entries, skipped := ParseRows(grid, "板橋")
	require.Len(t, entries, 2)
	assert.Equal(t, 2, skipped, "no employee, no date")

	assert.Equal(t, attendance.AttendanceEntry{
		Branch: "泉威", EmployeeNo: "001", EmployeeAccount: "E01", EmployeeName: "TiNg",
		Date: "2026-02-01", StartTime: "09:55", EndTime: "17:05", Hours: 7.2, Status: "正常", Remark: "遲到",
	}, entries[0])

	assert.Equal(t, "板橋", entries[1].Branch, "empty branch column takes the default")
	assert.Equal(t, 8.0, entries[1].Hours, "recomputed across midnight")
}

func TestParseRows_NoHeader(t *testing.T) {
	grid := shifttable.Grid{
		{"泉威", "001", "E01", "TiNg", "45688", "09:00", "18:00", "9"},
	}
	entries, skipped := ParseRows(grid, "")
	require.Len(t, entries, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, "2025-01-31", entries[0].Date, "Excel serial day")
}

func TestImport_CSV(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := NewAttendanceService(passthroughTx{}, repo, nil, 0)
	ctx := context.Background()

	file, header := csvUpload(punchesCSV)
	resp, err := svc.Import(ctx, attendance.ImportRequest{Branch: "板橋", File: file, FileHeader: header})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Rows)
	assert.Equal(t, 3, resp.Inserted)
	assert.Equal(t, 2, resp.SkippedRows)
	assert.Equal(t, []string{"板橋", "泉威"}, resp.Branches)

	sort.Slice(repo.rows, func(i, j int) bool { return repo.rows[i].EmployeeNo < repo.rows[j].EmployeeNo })
	assert.Equal(t, "10:00", repo.rows[1].StartTime)
	assert.Equal(t, 5.0, repo.rows[1].Hours)

	file, header = csvUpload(punchesCSV)
	resp, err = svc.Import(ctx, attendance.ImportRequest{Branch: "板橋", File: file, FileHeader: header})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Inserted)
	assert.Equal(t, 3, resp.Duplicates)
}

func TestImport_OverwriteOnlyTouchesBranchRange(t *testing.T) {
	repo := &fakeAttendanceRepo{rows: []attendance.AttendanceEntry{
		{Branch: "泉威", EmployeeAccount: "OLD", Date: "2026-02-01", StartTime: "08:00"},
		{Branch: "泉威", EmployeeAccount: "OLD", Date: "2026-03-01", StartTime: "08:00"},
		{Branch: "板橋", EmployeeAccount: "OLD", Date: "2026-02-01", StartTime: "08:00"},
	}}
	svc := NewAttendanceService(passthroughTx{}, repo, nil, 0)

	file, header := csvUpload(punchesCSV)
	resp, err := svc.Import(context.Background(), attendance.ImportRequest{
		Branch: "泉威", Overwrite: true, File: file, FileHeader: header,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Replaced)
	assert.Len(t, repo.rows, 5)
}

func TestImport_Errors(t *testing.T) {
	svc := NewAttendanceService(passthroughTx{}, &fakeAttendanceRepo{}, nil, 10)
	ctx := context.Background()

	file, header := csvUpload(punchesCSV)
	_, err := svc.Import(ctx, attendance.ImportRequest{File: file, FileHeader: header})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs, "file exceeds the limit")
	assert.Contains(t, verrs.ToMap(), "file")

	svc = NewAttendanceService(passthroughTx{}, &fakeAttendanceRepo{}, nil, 0)
	file, header = csvUpload("分店,員編,帳號,姓名,日期\n")
	_, err = svc.Import(ctx, attendance.ImportRequest{File: file, FileHeader: header})
	assert.ErrorIs(t, err, attendance.ErrNoAttendanceRows)
}

func TestUpdateRemark(t *testing.T) {
	repo := &fakeAttendanceRepo{rows: []attendance.AttendanceEntry{
		{Branch: "泉威", EmployeeAccount: "E01", Date: "2026-02-01", StartTime: "09:55", EndTime: "17:05"},
	}}
	svc := NewAttendanceService(passthroughTx{}, repo, nil, 0)
	ctx := context.Background()

	resp, err := svc.UpdateRemark(ctx, attendance.UpdateRemarkRequest{
		Branch: "泉威", EmployeeAccount: "E01", Date: "2026/02/01", StartTime: "0955", Remark: "forgot to clock out",
	})
	require.NoError(t, err)
	assert.Equal(t, "forgot to clock out", resp.Remark)
	assert.Equal(t, 7.2, resp.Hours)

	_, err = svc.UpdateRemark(ctx, attendance.UpdateRemarkRequest{
		Branch: "泉威", EmployeeAccount: "E02", Date: "2026-02-01", StartTime: "09:55",
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}
