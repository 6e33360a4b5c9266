package shifttable

import (
	"strconv"
	"strings"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

// Grid is a ragged two-dimensional table of cell text, as read from a
// worksheet. Numbers are carried as their display text.
type Grid [][]string

// Cell returns the trimmed value at (row, col), or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	return cellValue(g[row], col)
}

// RowLen returns the number of cells in a row.
func (g Grid) RowLen(row int) int {
	if row < 0 || row >= len(g) {
		return 0
	}
	return len(g[row])
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// cellInt reads an integral number from a cell. "7", "7.0" and "７" all read as 7.
func cellInt(value string) (int, bool) {
	s := timenorm.Fold(value)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// cellDay reads a day-number header. Besides plain numbers it accepts a
// leading number followed by a suffix, as in "2日" or "15(六)".
func cellDay(value string) (int, bool) {
	if n, ok := cellInt(value); ok {
		return n, true
	}
	s := timenorm.Fold(value)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
