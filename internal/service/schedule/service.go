package schedule

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/shifttable"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/cmlabs-hris/shift-reconcile/internal/service/file"
)

// Config tunes shift table parsing and uploads.
type Config struct {
	DefaultYearMonth string
	Sentinels        []string
	MaxUploadBytes   int64
}

type ScheduleServiceImpl struct {
	tx database.Transactor
	schedule.ScheduleRepository
	attendance.AttendanceRepository
	fileService file.FileService
	cfg         Config
}

// parsedTable is a parse result ready to persist.
type parsedTable struct {
	resp    schedule.ParseResponse
	entries []schedule.ScheduleEntry
	period  timenorm.Period
}

// Parse implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) Parse(ctx context.Context, req schedule.ImportRequest) (schedule.ParseResponse, error) {
	if err := req.Validate(s.cfg.MaxUploadBytes); err != nil {
		return schedule.ParseResponse{}, err
	}

	data, err := readUpload(req.File)
	if err != nil {
		return schedule.ParseResponse{}, err
	}

	parsed, err := s.parse(data, req)
	if err != nil {
		return schedule.ParseResponse{}, err
	}

	return parsed.resp, nil
}

// Import implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) Import(ctx context.Context, req schedule.ImportRequest) (schedule.ImportResponse, error) {
	if err := req.Validate(s.cfg.MaxUploadBytes); err != nil {
		return schedule.ImportResponse{}, err
	}

	data, err := readUpload(req.File)
	if err != nil {
		return schedule.ImportResponse{}, err
	}

	parsed, err := s.parse(data, req)
	if err != nil {
		return schedule.ImportResponse{}, err
	}

	if err := s.fillAccounts(ctx, parsed.entries); err != nil {
		return schedule.ImportResponse{}, err
	}

	resp := schedule.ImportResponse{ParseResponse: parsed.resp}

	if s.fileService != nil {
		key, err := s.fileService.ArchiveUpload(ctx, bytes.NewReader(data), req.FileHeader.Filename)
		if err != nil {
			slog.Warn("failed to archive shift table upload", "filename", req.FileHeader.Filename, "error", err)
		} else {
			resp.ArchiveKey = key
		}
	}

	branch := strings.TrimSpace(req.Branch)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if req.Overwrite {
			replaced, err := s.ScheduleRepository.DeleteRange(ctx, branch, parsed.period)
			if err != nil {
				return err
			}
			resp.Replaced = replaced
		}

		inserted, err := s.ScheduleRepository.InsertMany(ctx, parsed.entries)
		if err != nil {
			return err
		}
		resp.Inserted = inserted
		return nil
	})
	if err != nil {
		return schedule.ImportResponse{}, fmt.Errorf("failed to store schedules: %w", err)
	}

	resp.Duplicates = len(parsed.entries) - resp.Inserted
	// Responses reflect the stored rows, accounts included.
	resp.Entries = toResponses(parsed.entries)

	slog.Info("shift table imported",
		"branch", branch,
		"sheet", resp.Sheet,
		"year_month", resp.YearMonth,
		"entries", len(parsed.entries),
		"inserted", resp.Inserted,
		"duplicates", resp.Duplicates,
		"replaced", resp.Replaced,
		"skipped_cells", resp.SkippedCells,
	)

	return resp, nil
}

// List implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) List(ctx context.Context, filter schedule.ScheduleFilter) (schedule.ListScheduleResponse, error) {
	if err := filter.Validate(); err != nil {
		return schedule.ListScheduleResponse{}, err
	}
	period, _ := filter.Period()

	entries, err := s.ScheduleRepository.List(ctx, strings.TrimSpace(filter.Branch), period, filter.Names)
	if err != nil {
		return schedule.ListScheduleResponse{}, fmt.Errorf("failed to list schedules: %w", err)
	}

	items := toResponses(entries)
	return schedule.ListScheduleResponse{Items: items, Total: len(items)}, nil
}

// UpdateRemark implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) UpdateRemark(ctx context.Context, req schedule.UpdateRemarkRequest) (schedule.ScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.ScheduleResponse{}, err
	}

	updated, err := s.ScheduleRepository.UpdateRemark(ctx, req)
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			return schedule.ScheduleResponse{}, err
		}
		return schedule.ScheduleResponse{}, fmt.Errorf("failed to update schedule remark: %w", err)
	}

	return toResponse(updated), nil
}

// ListPersonnel implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) ListPersonnel(ctx context.Context, branch string) (schedule.PersonnelResponse, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return schedule.PersonnelResponse{}, schedule.ErrBranchRequired
	}

	names, err := s.ScheduleRepository.ListPersonnel(ctx, branch)
	if err != nil {
		return schedule.PersonnelResponse{}, fmt.Errorf("failed to list personnel: %w", err)
	}
	if names == nil {
		names = []string{}
	}

	return schedule.PersonnelResponse{Branch: branch, Names: names}, nil
}

func (s *ScheduleServiceImpl) parse(data []byte, req schedule.ImportRequest) (parsedTable, error) {
	wb, err := spreadsheet.Open(bytes.NewReader(data), req.FileHeader.Filename)
	if err != nil {
		return parsedTable{}, workbookError(err)
	}

	sheetName := strings.TrimSpace(req.Sheet)
	if sheetName == "" {
		sheetName = wb.SheetNames()[0]
	}
	grid, err := wb.Sheet(sheetName)
	if err != nil {
		return parsedTable{}, workbookError(err)
	}

	yearMonth := req.DefaultYearMonth
	if strings.TrimSpace(yearMonth) == "" {
		yearMonth = s.cfg.DefaultYearMonth
	}

	res, err := shifttable.Parse(grid, shifttable.Options{
		DefaultYearMonth: yearMonth,
		Sentinels:        s.cfg.Sentinels,
		Branch:           strings.TrimSpace(req.Branch),
	})
	if err != nil {
		if errors.Is(err, shifttable.ErrTableStructureNotFound) {
			return parsedTable{}, schedule.ErrUnrecognizedTableFormat
		}
		return parsedTable{}, fmt.Errorf("failed to parse shift table: %w", err)
	}

	// Stored dates are always YYYY-MM-DD.
	for i := range res.Entries {
		res.Entries[i].Date = timenorm.DateOrRaw(res.Entries[i].Date)
	}

	year, month, _ := timenorm.ParseYearMonth(res.YearMonth)

	return parsedTable{
		resp: schedule.ParseResponse{
			Sheet:         sheetName,
			Sheets:        wb.SheetNames(),
			YearMonth:     res.YearMonth,
			EmployeeCount: res.EmployeeCount,
			SkippedCells:  res.SkippedCells,
			Layout: schedule.LayoutResponse{
				DateRow:  res.Layout.DateRow,
				DateCol:  res.Layout.DateCol,
				StartRow: res.Layout.StartRow,
				MaxCol:   res.Layout.MaxCol,
			},
			ShiftCodes: shiftCodeResponses(res.Dictionary),
			Entries:    toResponses(res.Entries),
		},
		entries: res.Entries,
		period:  timenorm.MonthPeriod(year, month),
	}, nil
}

// fillAccounts attaches known accounts to entries by employee name.
// Time clock mappings win over accounts seen on earlier schedule imports.
func (s *ScheduleServiceImpl) fillAccounts(ctx context.Context, entries []schedule.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}

	fromAttendance, err := s.AttendanceRepository.NameAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load attendance accounts: %w", err)
	}
	fromSchedules, err := s.ScheduleRepository.NameAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedule accounts: %w", err)
	}

	var unmapped []string
	for i := range entries {
		name := strings.TrimSpace(entries[i].EmployeeName)
		if account, ok := fromAttendance[name]; ok {
			entries[i].EmployeeAccount = account
		} else if account, ok := fromSchedules[name]; ok {
			entries[i].EmployeeAccount = account
		} else if !containsString(unmapped, name) {
			unmapped = append(unmapped, name)
		}
	}

	if len(unmapped) > 0 {
		slog.Warn("schedule keyed by name", "names", unmapped)
	}
	return nil
}

func readUpload(f multipart.File) ([]byte, error) {
	if f == nil {
		return nil, schedule.ErrUnreadableWorkbook
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

func workbookError(err error) error {
	switch {
	case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		return schedule.ErrUnsupportedFileType
	case errors.Is(err, spreadsheet.ErrSheetNotFound):
		return fmt.Errorf("%w: %v", schedule.ErrSheetNotFound, err)
	case errors.Is(err, spreadsheet.ErrEmptyWorksheet):
		return schedule.ErrEmptyWorksheet
	default:
		slog.Warn("unreadable shift table upload", "error", err)
		return schedule.ErrUnreadableWorkbook
	}
}

func shiftCodeResponses(dict shifttable.Dictionary) []schedule.ShiftCodeResponse {
	codes := dict.Codes()
	out := make([]schedule.ShiftCodeResponse, 0, len(codes))
	for _, c := range codes {
		out = append(out, schedule.ShiftCodeResponse{
			Code:  c.Code,
			Start: c.Start,
			End:   c.End,
			Hours: c.Hours,
		})
	}
	return out
}

func toResponse(e schedule.ScheduleEntry) schedule.ScheduleResponse {
	resp := schedule.NewScheduleResponse(e)
	resp.Hours = timenorm.EntryHours(e.StartTime, e.EndTime, e.Hours)
	return resp
}

func toResponses(entries []schedule.ScheduleEntry) []schedule.ScheduleResponse {
	out := make([]schedule.ScheduleResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toResponse(e))
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func NewScheduleService(
	tx database.Transactor,
	scheduleRepository schedule.ScheduleRepository,
	attendanceRepository attendance.AttendanceRepository,
	fileService file.FileService,
	cfg Config,
) schedule.ScheduleService {
	return &ScheduleServiceImpl{
		tx:                   tx,
		ScheduleRepository:   scheduleRepository,
		AttendanceRepository: attendanceRepository,
		fileService:          fileService,
		cfg:                  cfg,
	}
}
