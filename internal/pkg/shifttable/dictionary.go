package shifttable

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

const (
	legendMarker    = "*"
	maxShiftCodeLen = 3
)

// Dictionary is the immutable set of shift codes declared in a grid's legend rows.
type Dictionary struct {
	codes map[string]schedule.ShiftCode
	order []string
}

// Lookup returns the shift code definition for an exact code match.
func (d Dictionary) Lookup(code string) (schedule.ShiftCode, bool) {
	sc, ok := d.codes[timenorm.Fold(code)]
	return sc, ok
}

// Len returns the number of distinct codes.
func (d Dictionary) Len() int {
	return len(d.codes)
}

// Codes returns the definitions in the order their codes first appeared.
func (d Dictionary) Codes() []schedule.ShiftCode {
	out := make([]schedule.ShiftCode, 0, len(d.order))
	for _, code := range d.order {
		out = append(out, d.codes[code])
	}
	return out
}

// BuildDictionary scans every row for legend markers. Two layouts are read:
//
//	"*" | ... | "A" | ... | "10:00-17:00"   marker cell followed by code and range cells
//	"* A 10:00-17:00"                       marker, code and range packed in the first cell
//
// A code defined twice keeps its last definition. Rows that match neither
// layout, or whose range does not parse, are ignored.
func BuildDictionary(grid Grid) Dictionary {
	d := Dictionary{codes: make(map[string]schedule.ShiftCode)}

	for _, row := range grid {
		code, rawRange, ok := legendEntry(row)
		if !ok {
			continue
		}
		r, ok := timenorm.ParseTimeRange(rawRange)
		if !ok {
			continue
		}
		if _, seen := d.codes[code]; !seen {
			d.order = append(d.order, code)
		}
		d.codes[code] = schedule.ShiftCode{
			Code:    code,
			Start:   r.Start,
			End:     r.End,
			Minutes: r.Minutes,
			Hours:   r.Hours(),
		}
	}

	return d
}

func legendEntry(row []string) (code string, rawRange string, ok bool) {
	for i := range row {
		if cellValue(row, i) != legendMarker {
			continue
		}
		for j := i + 1; j < len(row); j++ {
			val := timenorm.Fold(row[j])
			if code == "" && isShiftCodeToken(val) {
				code = val
				continue
			}
			if rawRange == "" && isRangeToken(val) {
				rawRange = val
			}
		}
		if code != "" && rawRange != "" {
			return code, rawRange, true
		}
		return "", "", false
	}

	first := timenorm.Fold(cellValue(row, 0))
	if !strings.HasPrefix(first, legendMarker) {
		return "", "", false
	}
	parts := strings.Fields(strings.TrimPrefix(first, legendMarker))
	if len(parts) < 2 || !isShiftCodeToken(parts[0]) || !isRangeToken(parts[1]) {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func isShiftCodeToken(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > maxShiftCodeLen {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isRangeToken(s string) bool {
	return strings.ContainsAny(s, "-~") && strings.IndexFunc(s, unicode.IsDigit) >= 0
}
