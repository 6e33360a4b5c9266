package schedule

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/validator"
)

type passthroughTx struct{ calls int }

func (p *passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type fakeScheduleRepo struct {
	rows     map[string]schedule.ScheduleEntry
	accounts map[string]string
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{rows: make(map[string]schedule.ScheduleEntry), accounts: map[string]string{}}
}

func scheduleKey(e schedule.ScheduleEntry) string {
	return e.EmployeeName + "|" + e.Date + "|" + e.Branch
}

func (f *fakeScheduleRepo) InsertMany(ctx context.Context, entries []schedule.ScheduleEntry) (int, error) {
	n := 0
	for _, e := range entries {
		if _, ok := f.rows[scheduleKey(e)]; ok {
			continue
		}
		f.rows[scheduleKey(e)] = e
		n++
	}
	return n, nil
}

func (f *fakeScheduleRepo) DeleteRange(ctx context.Context, branch string, period timenorm.Period) (int64, error) {
	var n int64
	for k, e := range f.rows {
		if e.Branch == branch && e.Date >= period.Start && e.Date <= period.End {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeScheduleRepo) List(ctx context.Context, branch string, period timenorm.Period, names []string) ([]schedule.ScheduleEntry, error) {
	var out []schedule.ScheduleEntry
	for _, e := range f.rows {
		if e.Branch == branch && e.Date >= period.Start && e.Date <= period.End {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return scheduleKey(out[i]) < scheduleKey(out[j]) })
	return out, nil
}

func (f *fakeScheduleRepo) UpdateRemark(ctx context.Context, req schedule.UpdateRemarkRequest) (schedule.ScheduleEntry, error) {
	key := req.EmployeeName + "|" + req.Date + "|" + req.Branch
	e, ok := f.rows[key]
	if !ok || e.StartTime != req.StartTime || e.EndTime != req.EndTime {
		return schedule.ScheduleEntry{}, schedule.ErrScheduleNotFound
	}
	e.Remark = req.Remark
	f.rows[key] = e
	return e, nil
}

func (f *fakeScheduleRepo) NameAccounts(ctx context.Context) (map[string]string, error) {
	return f.accounts, nil
}

func (f *fakeScheduleRepo) ListPersonnel(ctx context.Context, branch string) ([]string, error) {
	seen := map[string]bool{}
	var names []string
	for _, e := range f.rows {
		if e.Branch == branch && !seen[e.EmployeeName] {
			seen[e.EmployeeName] = true
			names = append(names, e.EmployeeName)
		}
	}
	sort.Strings(names)
	return names, nil
}

// fakeAttendanceRepo only serves account mappings.
type fakeAttendanceRepo struct {
	attendance.AttendanceRepository
	accounts map[string]string
}

func (f *fakeAttendanceRepo) NameAccounts(ctx context.Context) (map[string]string, error) {
	return f.accounts, nil
}

type fakeArchive struct {
	keys []string
	err  error
}

func (f *fakeArchive) ArchiveUpload(ctx context.Context, file io.Reader, filename string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := "uploads/2026/01/" + filename
	f.keys = append(f.keys, key)
	return key, nil
}

func (f *fakeArchive) PurgeArchive(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

func rosterUpload(t *testing.T, rows [][]interface{}) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	data := buf.Bytes()
	return memFile{bytes.NewReader(data)}, &multipart.FileHeader{Filename: "roster.xlsx", Size: int64(len(data))}
}

func februaryRoster() [][]interface{} {
	return [][]interface{}{
		{"", "更新日"},
		{"2026/02"},
		{"姓名/星期", "", 1, 2, 3},
		{"", "", "週日", "週一", "週二"},
		{"TiNg", "", "A", "10:00-15:00", ""},
		{"茶葉", "", "", "A", "B"},
		{"合計", "", 1, 2, 1},
		{"* A 10:00-17:00"},
		{"* B 16:30-20:30"},
	}
}

type fixture struct {
	svc       *ScheduleServiceImpl
	tx        *passthroughTx
	schedules *fakeScheduleRepo
	archive   *fakeArchive
}

func newFixture(attendanceAccounts map[string]string) fixture {
	tx := &passthroughTx{}
	repo := newFakeScheduleRepo()
	archive := &fakeArchive{}
	svc := NewScheduleService(tx, repo, &fakeAttendanceRepo{accounts: attendanceAccounts}, archive, Config{
		DefaultYearMonth: "2026/01",
	}).(*ScheduleServiceImpl)
	return fixture{svc: svc, tx: tx, schedules: repo, archive: archive}
}

func importRequest(t *testing.T, rows [][]interface{}) schedule.ImportRequest {
	file, header := rosterUpload(t, rows)
	return schedule.ImportRequest{Branch: "泉威", File: file, FileHeader: header}
}

func TestParse_DoesNotStore(t *testing.T) {
	fx := newFixture(nil)

	resp, err := fx.svc.Parse(context.Background(), importRequest(t, februaryRoster()))
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", resp.Sheet)
	assert.Equal(t, "2026/02", resp.YearMonth)
	assert.Equal(t, 2, resp.EmployeeCount)
	require.Len(t, resp.Entries, 4)
	assert.Equal(t, "2026-02-01", resp.Entries[0].Date)
	assert.Equal(t, "A", resp.Entries[0].ShiftCode)
	assert.Equal(t, 7.0, resp.Entries[0].Hours)
	assert.Len(t, resp.ShiftCodes, 2)

	assert.Empty(t, fx.schedules.rows)
	assert.Zero(t, fx.tx.calls)
	assert.Empty(t, fx.archive.keys)
}

func TestImport_AppendsAndSkipsDuplicates(t *testing.T) {
	fx := newFixture(nil)
	ctx := context.Background()

	first, err := fx.svc.Import(ctx, importRequest(t, februaryRoster()))
	require.NoError(t, err)
	assert.Equal(t, 4, first.Inserted)
	assert.Equal(t, 0, first.Duplicates)
	assert.Equal(t, "uploads/2026/01/roster.xlsx", first.ArchiveKey)

	second, err := fx.svc.Import(ctx, importRequest(t, februaryRoster()))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 4, second.Duplicates)
	assert.Len(t, fx.schedules.rows, 4)
}

func TestImport_OverwriteReplacesMonth(t *testing.T) {
	fx := newFixture(nil)
	ctx := context.Background()

	fx.schedules.rows["離職|2026-02-10|泉威"] = schedule.ScheduleEntry{EmployeeName: "離職", Date: "2026-02-10", Branch: "泉威"}
	fx.schedules.rows["離職|2026-03-01|泉威"] = schedule.ScheduleEntry{EmployeeName: "離職", Date: "2026-03-01", Branch: "泉威"}

	req := importRequest(t, februaryRoster())
	req.Overwrite = true
	resp, err := fx.svc.Import(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Replaced)
	assert.Equal(t, 4, resp.Inserted)
	assert.Contains(t, fx.schedules.rows, "離職|2026-03-01|泉威", "rows outside the month stay")
	assert.NotContains(t, fx.schedules.rows, "離職|2026-02-10|泉威")
}

func TestImport_FillsAccountsFromTimeClock(t *testing.T) {
	fx := newFixture(map[string]string{"TiNg": "E01"})
	fx.schedules.accounts = map[string]string{"TiNg": "OLD", "茶葉": "E02"}

	resp, err := fx.svc.Import(context.Background(), importRequest(t, februaryRoster()))
	require.NoError(t, err)

	for _, e := range fx.schedules.rows {
		switch e.EmployeeName {
		case "TiNg":
			assert.Equal(t, "E01", e.EmployeeAccount)
		case "茶葉":
			assert.Equal(t, "E02", e.EmployeeAccount)
		}
	}
	assert.Equal(t, "E01", resp.Entries[0].EmployeeAccount)
}

func TestImport_ArchiveFailureDoesNotBlock(t *testing.T) {
	fx := newFixture(nil)
	fx.archive.err = errors.New("disk full")

	resp, err := fx.svc.Import(context.Background(), importRequest(t, februaryRoster()))
	require.NoError(t, err)
	assert.Empty(t, resp.ArchiveKey)
	assert.Equal(t, 4, resp.Inserted)
}

func TestImport_UnrecognizedTable(t *testing.T) {
	fx := newFixture(nil)

	_, err := fx.svc.Import(context.Background(), importRequest(t, [][]interface{}{
		{"name", "a", "b"},
		{"x", "2", "3"},
	}))
	assert.ErrorIs(t, err, schedule.ErrUnrecognizedTableFormat)
	assert.Empty(t, fx.schedules.rows)
}

func TestImport_ValidationAndSheetErrors(t *testing.T) {
	fx := newFixture(nil)
	ctx := context.Background()

	req := importRequest(t, februaryRoster())
	req.Branch = "  "
	_, err := fx.svc.Import(ctx, req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "branch")

	req = importRequest(t, februaryRoster())
	req.Sheet = "missing"
	_, err = fx.svc.Import(ctx, req)
	assert.ErrorIs(t, err, schedule.ErrSheetNotFound)

	req = importRequest(t, februaryRoster())
	req.FileHeader.Filename = "roster.pdf"
	_, err = fx.svc.Import(ctx, req)
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "file")
}

func TestList_RecomputesHours(t *testing.T) {
	fx := newFixture(nil)
	fx.schedules.rows["a"] = schedule.ScheduleEntry{
		EmployeeName: "魚", Date: "2026-02-03", Branch: "泉威", StartTime: "22:00", EndTime: "06:00", Hours: 0,
	}

	resp, err := fx.svc.List(context.Background(), schedule.ScheduleFilter{Branch: "泉威", YearMonth: "202602"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, 8.0, resp.Items[0].Hours)

	_, err = fx.svc.List(context.Background(), schedule.ScheduleFilter{Branch: "泉威"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestUpdateRemark(t *testing.T) {
	fx := newFixture(nil)
	ctx := context.Background()
	_, err := fx.svc.Import(ctx, importRequest(t, februaryRoster()))
	require.NoError(t, err)

	resp, err := fx.svc.UpdateRemark(ctx, schedule.UpdateRemarkRequest{
		Branch: "泉威", EmployeeName: "TiNg", Date: "2026/02/01", StartTime: "1000", EndTime: "17:00", Remark: "swap",
	})
	require.NoError(t, err)
	assert.Equal(t, "swap", resp.Remark)

	_, err = fx.svc.UpdateRemark(ctx, schedule.UpdateRemarkRequest{
		Branch: "泉威", EmployeeName: "TiNg", Date: "2026-02-01", StartTime: "09:00", EndTime: "17:00",
	})
	assert.ErrorIs(t, err, schedule.ErrScheduleNotFound)
}

func TestListPersonnel(t *testing.T) {
	fx := newFixture(nil)
	ctx := context.Background()

	_, err := fx.svc.ListPersonnel(ctx, " ")
	assert.ErrorIs(t, err, schedule.ErrBranchRequired)

	resp, err := fx.svc.ListPersonnel(ctx, "泉威")
	require.NoError(t, err)
	assert.NotNil(t, resp.Names)
	assert.Empty(t, resp.Names)

	_, err = fx.svc.Import(ctx, importRequest(t, februaryRoster()))
	require.NoError(t, err)
	resp, err = fx.svc.ListPersonnel(ctx, "泉威")
	require.NoError(t, err)
	assert.Equal(t, []string{"TiNg", "茶葉"}, resp.Names)
	assert.True(t, strings.Contains(resp.Branch, "泉威"))
}
