// Package spreadsheet reads uploaded workbooks into plain cell grids.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/shifttable"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrNoWorksheet       = errors.New("no worksheet found")
	ErrSheetNotFound     = errors.New("worksheet not found")
	ErrEmptyWorksheet    = errors.New("worksheet is empty")
)

const (
	maxRows    = 100000
	maxXLSCols = 256
	xlsCharset = "utf-8"
)

// Format is the container type of an upload, derived from its file name.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// DetectFormat maps a file name extension to a Format.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Workbook is a fully loaded upload. Sheets keep their workbook order.
type Workbook struct {
	format Format
	names  []string
	sheets map[string]shifttable.Grid
}

// Open reads the whole upload and decodes every worksheet.
func Open(r io.Reader, filename string) (*Workbook, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	var wb *Workbook
	switch format {
	case FormatXLS:
		wb, err = openXLS(data)
	case FormatCSV:
		wb, err = openCSV(data, filename)
	default:
		wb, err = openXLSX(data)
	}
	if err != nil {
		return nil, err
	}
	if len(wb.names) == 0 {
		return nil, ErrNoWorksheet
	}
	wb.format = format
	return wb, nil
}

func (w *Workbook) Format() Format {
	return w.format
}

// SheetNames lists the worksheets in workbook order.
func (w *Workbook) SheetNames() []string {
	out := make([]string, len(w.names))
	copy(out, w.names)
	return out
}

// Sheet returns the named worksheet. An empty name selects the first one.
func (w *Workbook) Sheet(name string) (shifttable.Grid, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = w.names[0]
	}
	grid, ok := w.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	if isEmpty(grid) {
		return nil, fmt.Errorf("%w: %q", ErrEmptyWorksheet, name)
	}
	return grid, nil
}

func openXLSX(data []byte) (*Workbook, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = file.Close() }()

	wb := &Workbook{sheets: make(map[string]shifttable.Grid)}
	for _, name := range file.GetSheetList() {
		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		if len(rows) > maxRows {
			rows = rows[:maxRows]
		}
		wb.names = append(wb.names, name)
		wb.sheets[name] = shifttable.Grid(rows)
	}
	return wb, nil
}

func openXLS(data []byte) (*Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), xlsCharset)
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	wb := &Workbook{sheets: make(map[string]shifttable.Grid)}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		wb.names = append(wb.names, name)
		wb.sheets[name] = xlsGrid(sheet)
	}
	return wb, nil
}

func xlsGrid(sheet *xls.WorkSheet) shifttable.Grid {
	rowCount := int(sheet.MaxRow) + 1
	if rowCount > maxRows {
		rowCount = maxRows
	}

	grid := make(shifttable.Grid, rowCount)
	for r := 0; r < rowCount; r++ {
		row := xlsRow(sheet, r)
		if row == nil {
			continue
		}
		lastCol := row.LastCol()
		if lastCol <= 0 || lastCol > maxXLSCols {
			lastCol = maxXLSCols
		}
		cells := make([]string, lastCol)
		for c := 0; c < lastCol; c++ {
			cells[c] = row.Col(c)
		}
		grid[r] = trimTrailing(cells)
	}
	return grid
}

// xlsRow returns nil for rows the sheet never defined; the library panics on them.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func openCSV(data []byte, filename string) (*Workbook, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return &Workbook{
		names:  []string{name},
		sheets: map[string]shifttable.Grid{name: shifttable.Grid(rows)},
	}, nil
}

func trimTrailing(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}

func isEmpty(grid shifttable.Grid) bool {
	for _, row := range grid {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}
