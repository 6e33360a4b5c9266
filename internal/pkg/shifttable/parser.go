package shifttable

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

// ErrTableStructureNotFound is returned when no "day 1" header cell exists
// in the scanned corner of the grid.
var ErrTableStructureNotFound = errors.New("shift table structure not found")

const (
	headerScanRows = 10
	headerScanCols = 15

	yearMonthRow = 1
	yearMonthCol = 0
	nameCol      = 0

	DefaultYearMonth = "2026/01"
)

// DefaultSentinels are name-column labels that close the employee block:
// head count, totals, notes, part-time marker and closing comments.
var DefaultSentinels = []string{"上班人數", "合計", "備註", "P.T", "閉店評論"}

var yearMonthRegex = regexp.MustCompile(`(\d{4})\s*/\s*(\d{1,2})`)

// Options tune a parse. The zero value uses DefaultYearMonth and DefaultSentinels.
type Options struct {
	DefaultYearMonth string
	Sentinels        []string
	Branch           string
}

// Layout locates the date header and the employee block inside a grid.
type Layout struct {
	DateRow  int
	DateCol  int
	StartRow int
	MaxCol   int
}

// Result is everything a parse could extract. Cells that could not be read
// are counted in SkippedCells rather than failing the parse.
type Result struct {
	Entries       []schedule.ScheduleEntry
	Dictionary    Dictionary
	Layout        Layout
	YearMonth     string
	EmployeeCount int
	SkippedCells  int
}

// LocateLayout finds the first cell equal to 1 within the first rows and
// columns. Column 0 holds names and labels and is not scanned.
func LocateLayout(grid Grid) (Layout, error) {
	for r := 0; r < headerScanRows && r < len(grid); r++ {
		for c := 1; c < headerScanCols && c < grid.RowLen(r); c++ {
			if day, ok := cellInt(grid.Cell(r, c)); ok && day == 1 {
				return Layout{
					DateRow:  r,
					DateCol:  c,
					StartRow: r + 2,
					MaxCol:   grid.RowLen(r),
				}, nil
			}
		}
	}
	return Layout{}, ErrTableStructureNotFound
}

// Parse turns a shift table grid into one ScheduleEntry per employee and day.
func Parse(grid Grid, opts Options) (Result, error) {
	layout, err := LocateLayout(grid)
	if err != nil {
		return Result{}, err
	}

	year, month, err := resolveYearMonth(grid.Cell(yearMonthRow, yearMonthCol), opts.DefaultYearMonth)
	if err != nil {
		return Result{}, err
	}

	sentinels := opts.Sentinels
	if len(sentinels) == 0 {
		sentinels = DefaultSentinels
	}

	res := Result{
		Dictionary: BuildDictionary(grid),
		Layout:     layout,
		YearMonth:  fmt.Sprintf("%04d/%02d", year, month),
	}

	for i := layout.StartRow; i < len(grid); i++ {
		name := grid.Cell(i, nameCol)
		if name == "" || isSentinel(name, sentinels) {
			if res.EmployeeCount > 0 {
				break
			}
			continue
		}
		res.EmployeeCount++

		row := grid[i]
		for j := layout.DateCol; j < layout.MaxCol && j < len(row); j++ {
			value := cellValue(row, j)
			if value == "" || strings.EqualFold(value, "nan") {
				continue
			}

			day, ok := cellDay(grid.Cell(layout.DateRow, j))
			if !ok || !validDay(year, month, day) {
				res.SkippedCells++
				continue
			}

			entry, ok := res.resolveCell(value)
			if !ok {
				res.SkippedCells++
				continue
			}
			entry.EmployeeName = name
			entry.Branch = opts.Branch
			entry.Date = fmt.Sprintf("%04d/%02d/%02d", year, month, day)
			res.Entries = append(res.Entries, entry)
		}
	}

	return res, nil
}

// resolveCell maps a cell to shift times: dictionary code first, then a
// literal "start-end" range.
func (res *Result) resolveCell(value string) (schedule.ScheduleEntry, bool) {
	if sc, ok := res.Dictionary.Lookup(value); ok {
		return schedule.ScheduleEntry{
			StartTime: sc.Start,
			EndTime:   sc.End,
			Hours:     sc.Hours,
			ShiftCode: sc.Code,
		}, true
	}

	if !strings.ContainsAny(timenorm.Fold(value), "-~") {
		return schedule.ScheduleEntry{}, false
	}
	r, ok := timenorm.ParseTimeRange(value)
	if !ok || r.Start == "" {
		return schedule.ScheduleEntry{}, false
	}
	return schedule.ScheduleEntry{
		StartTime: r.Start,
		EndTime:   r.End,
		Hours:     r.Hours(),
	}, true
}

func resolveYearMonth(contextCell, fallback string) (int, int, error) {
	if strings.Contains(contextCell, "/") {
		if m := yearMonthRegex.FindStringSubmatch(timenorm.Fold(contextCell)); m != nil {
			year, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			if month >= 1 && month <= 12 {
				return year, month, nil
			}
		}
	}

	if fallback == "" {
		fallback = DefaultYearMonth
	}
	year, month, ok := timenorm.ParseYearMonth(fallback)
	if !ok {
		return 0, 0, fmt.Errorf("invalid default year/month %q", fallback)
	}
	return year, month, nil
}

func isSentinel(name string, sentinels []string) bool {
	for _, s := range sentinels {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

func validDay(year, month, day int) bool {
	if day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day
}
