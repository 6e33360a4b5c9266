package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/shifttable"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/cmlabs-hris/shift-reconcile/internal/service/file"
)

// Column positions of a time clock export.
const (
	colBranch = iota
	colEmployeeNo
	colAccount
	colName
	colDate
	colStart
	colEnd
	colHours
	colStatus
	colRemark
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	fileService    file.FileService
	maxUploadBytes int64
}

// Import implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Import(ctx context.Context, req attendance.ImportRequest) (attendance.ImportResponse, error) {
	if err := req.Validate(a.maxUploadBytes); err != nil {
		return attendance.ImportResponse{}, err
	}
	if req.File == nil {
		return attendance.ImportResponse{}, attendance.ErrUnreadableWorkbook
	}

	data, err := io.ReadAll(req.File)
	if err != nil {
		return attendance.ImportResponse{}, fmt.Errorf("failed to read upload: %w", err)
	}

	wb, err := spreadsheet.Open(bytes.NewReader(data), req.FileHeader.Filename)
	if err != nil {
		return attendance.ImportResponse{}, workbookError(err)
	}
	sheetName := strings.TrimSpace(req.Sheet)
	if sheetName == "" {
		sheetName = wb.SheetNames()[0]
	}
	grid, err := wb.Sheet(sheetName)
	if err != nil {
		return attendance.ImportResponse{}, workbookError(err)
	}

	branch := strings.TrimSpace(req.Branch)
	entries, skipped := ParseRows(grid, branch)
	if len(entries) == 0 {
		return attendance.ImportResponse{}, attendance.ErrNoAttendanceRows
	}

	resp := attendance.ImportResponse{
		Sheet:       sheetName,
		Rows:        len(entries),
		SkippedRows: skipped,
		Branches:    branchesOf(entries),
	}

	if a.fileService != nil {
		key, err := a.fileService.ArchiveUpload(ctx, bytes.NewReader(data), req.FileHeader.Filename)
		if err != nil {
			slog.Warn("failed to archive attendance upload", "filename", req.FileHeader.Filename, "error", err)
		} else {
			resp.ArchiveKey = key
		}
	}

	err = a.tx.InTx(ctx, func(ctx context.Context) error {
		if req.Overwrite {
			if period, ok := branchPeriod(entries, branch); ok {
				replaced, err := a.AttendanceRepository.DeleteRange(ctx, branch, period)
				if err != nil {
					return err
				}
				resp.Replaced = replaced
			}
		}

		inserted, err := a.AttendanceRepository.InsertMany(ctx, entries)
		if err != nil {
			return err
		}
		resp.Inserted = inserted
		return nil
	})
	if err != nil {
		return attendance.ImportResponse{}, fmt.Errorf("failed to store attendances: %w", err)
	}
	resp.Duplicates = len(entries) - resp.Inserted

	slog.Info("attendance imported",
		"sheet", sheetName,
		"branches", resp.Branches,
		"rows", resp.Rows,
		"inserted", resp.Inserted,
		"duplicates", resp.Duplicates,
		"skipped_rows", resp.SkippedRows,
		"replaced", resp.Replaced,
	)

	return resp, nil
}

// List implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	period, _ := filter.Period()

	entries, err := a.AttendanceRepository.List(ctx, strings.TrimSpace(filter.Branch), period, filter.Names)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	items := make([]attendance.AttendanceResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toResponse(e))
	}
	return attendance.ListAttendanceResponse{Items: items, Total: len(items)}, nil
}

// UpdateRemark implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateRemark(ctx context.Context, req attendance.UpdateRemarkRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	updated, err := a.AttendanceRepository.UpdateRemark(ctx, req)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance remark: %w", err)
	}

	return toResponse(updated), nil
}

// ParseRows reads a time clock export. Blank rows are ignored, the first
// row is treated as a header when its date cell is not a date, and any
// other row without a date or an employee is counted as skipped.
// defaultBranch fills rows whose branch column is empty.
func ParseRows(grid shifttable.Grid, defaultBranch string) ([]attendance.AttendanceEntry, int) {
	var entries []attendance.AttendanceEntry
	skipped := 0
	seenData := false

	for i := range grid {
		if isBlankRow(grid[i]) {
			continue
		}
		first := !seenData
		seenData = true

		date, ok := timenorm.NormalizeDate(grid.Cell(i, colDate))
		if !ok {
			if !first {
				skipped++
			}
			continue
		}

		e := attendance.AttendanceEntry{
			Branch:          grid.Cell(i, colBranch),
			EmployeeNo:      grid.Cell(i, colEmployeeNo),
			EmployeeAccount: grid.Cell(i, colAccount),
			EmployeeName:    grid.Cell(i, colName),
			Date:            date,
			StartTime:       timeOrRaw(grid.Cell(i, colStart)),
			EndTime:         timeOrRaw(grid.Cell(i, colEnd)),
			Status:          grid.Cell(i, colStatus),
			Remark:          grid.Cell(i, colRemark),
		}
		if e.Branch == "" {
			e.Branch = defaultBranch
		}
		if e.Branch == "" || (e.EmployeeAccount == "" && e.EmployeeName == "") {
			skipped++
			continue
		}

		stored, _ := strconv.ParseFloat(grid.Cell(i, colHours), 64)
		e.Hours = timenorm.EntryHours(e.StartTime, e.EndTime, stored)

		entries = append(entries, e)
	}

	return entries, skipped
}

// branchPeriod spans the dates of the branch's rows.
func branchPeriod(entries []attendance.AttendanceEntry, branch string) (timenorm.Period, bool) {
	var p timenorm.Period
	found := false
	for _, e := range entries {
		if e.Branch != branch {
			continue
		}
		if !found || e.Date < p.Start {
			p.Start = e.Date
		}
		if !found || e.Date > p.End {
			p.End = e.Date
		}
		found = true
	}
	return p, found
}

func branchesOf(entries []attendance.AttendanceEntry) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		if _, ok := seen[e.Branch]; ok {
			continue
		}
		seen[e.Branch] = struct{}{}
		out = append(out, e.Branch)
	}
	sort.Strings(out)
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func timeOrRaw(raw string) string {
	if t, ok := timenorm.NormalizeTime(raw); ok {
		return t
	}
	return strings.TrimSpace(raw)
}

func workbookError(err error) error {
	switch {
	case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		return attendance.ErrUnsupportedFileType
	case errors.Is(err, spreadsheet.ErrSheetNotFound):
		return fmt.Errorf("%w: %v", attendance.ErrSheetNotFound, err)
	case errors.Is(err, spreadsheet.ErrEmptyWorksheet):
		return attendance.ErrNoAttendanceRows
	default:
		slog.Warn("unreadable attendance upload", "error", err)
		return attendance.ErrUnreadableWorkbook
	}
}

func toResponse(e attendance.AttendanceEntry) attendance.AttendanceResponse {
	resp := attendance.NewAttendanceResponse(e)
	resp.Hours = timenorm.EntryHours(e.StartTime, e.EndTime, e.Hours)
	return resp
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	fileService file.FileService,
	maxUploadBytes int64,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		fileService:          fileService,
		maxUploadBytes:       maxUploadBytes,
	}
}
