// Package timenorm normalizes the clock and calendar text found in shift
// tables and attendance exports.
package timenorm

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"
)

const (
	MinutesPerDay = 24 * 60

	DateLayout = "2006-01-02"
)

var (
	fourDigitRegex  = regexp.MustCompile(`^\d{4}$`)
	colonTimeRegex  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	dashedDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Fold trims s and folds full-width digits and punctuation to ASCII.
func Fold(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// NormalizeTime converts "HHmm", "H:mm" or "HH:mm" into "HH:mm".
// The second return value is false when the text is not a valid clock time.
func NormalizeTime(raw string) (string, bool) {
	minutes, ok := MinutesOfDay(raw)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), true
}

// MinutesOfDay returns the minutes elapsed since midnight for a clock time.
func MinutesOfDay(raw string) (int, bool) {
	s := Fold(raw)

	var hourStr, minuteStr string
	switch {
	case fourDigitRegex.MatchString(s):
		hourStr, minuteStr = s[:2], s[2:]
	default:
		m := colonTimeRegex.FindStringSubmatch(s)
		if m == nil {
			return 0, false
		}
		hourStr, minuteStr = m[1], m[2]
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil {
		return 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}

	return hour*60 + minute, true
}

// MinutesBetween returns end - start in minutes. A negative difference is
// read as a range that crosses midnight and wraps by one day.
func MinutesBetween(start, end string) (int, bool) {
	startMinutes, ok := MinutesOfDay(start)
	if !ok {
		return 0, false
	}
	endMinutes, ok := MinutesOfDay(end)
	if !ok {
		return 0, false
	}

	diff := endMinutes - startMinutes
	if diff < 0 {
		diff += MinutesPerDay
	}
	return diff, true
}

// RoundHours converts minutes to hours rounded to one decimal place.
func RoundHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*10) / 10
}

// Range is a parsed "start-end" clock range.
type Range struct {
	Start   string
	End     string
	Minutes int
}

// Hours returns the range length in hours rounded to one decimal place.
func (r Range) Hours() float64 {
	return RoundHours(r.Minutes)
}

// ParseTimeRange parses literal ranges such as "10:00-17:00", "1000-1700" or
// "22:00~06:00". End before start spans midnight.
func ParseTimeRange(raw string) (Range, bool) {
	s := Fold(raw)
	s = strings.NewReplacer("~", "-", "–", "-", "—", "-").Replace(s)

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Range{}, false
	}

	start, ok := NormalizeTime(parts[0])
	if !ok {
		return Range{}, false
	}
	end, ok := NormalizeTime(parts[1])
	if !ok {
		return Range{}, false
	}
	minutes, _ := MinutesBetween(start, end)

	return Range{Start: start, End: end, Minutes: minutes}, true
}

var dateLayouts = []string{
	"2006-1-2",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006.1.2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// NormalizeDate converts a date to "YYYY-MM-DD". Slash-delimited dates are
// rewritten with dashes, already-dashed dates pass through, Excel serial day
// numbers are converted, and a handful of common layouts are tried last.
// NormalizeDate is idempotent.
func NormalizeDate(raw string) (string, bool) {
	s := Fold(raw)
	if s == "" {
		return "", false
	}
	s = strings.ReplaceAll(s, "/", "-")

	if dashedDateRegex.MatchString(s) {
		if _, err := time.Parse(DateLayout, s); err == nil {
			return s, true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if len(s) == 8 {
			if t, err := time.Parse("20060102", s); err == nil {
				return t.Format(DateLayout), true
			}
		}
		// Plain years and small counters are not dates.
		if serial >= 20000 && serial <= 80000 {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t.Format(DateLayout), true
			}
		}
		return "", false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), true
		}
	}

	return "", false
}

// DateOrRaw returns the normalized date, or the trimmed input when it cannot
// be parsed. Key builders use it so an odd date still yields a stable key.
func DateOrRaw(raw string) string {
	if d, ok := NormalizeDate(raw); ok {
		return d
	}
	return strings.TrimSpace(raw)
}

// ParseYearMonth reads "YYYY/MM", "YYYY-MM" or "YYYYMM".
func ParseYearMonth(raw string) (year int, month int, ok bool) {
	s := Fold(raw)
	s = strings.ReplaceAll(s, "-", "/")

	var t time.Time
	var err error
	switch {
	case strings.Contains(s, "/"):
		t, err = time.Parse("2006/1", s)
	case len(s) == 6:
		t, err = time.Parse("200601", s)
	default:
		return 0, 0, false
	}
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), int(t.Month()), true
}

// ErrInvalidPeriod is returned when neither a month nor a valid start/end
// pair describes a date range.
var ErrInvalidPeriod = errors.New("invalid period: give a month (YYYYMM) or a start and end date")

// Period is an inclusive date range in YYYY-MM-DD form.
type Period struct {
	Start string
	End   string
}

// MonthPeriod covers every day of the given month.
func MonthPeriod(year, month int) Period {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return Period{Start: first.Format(DateLayout), End: last.Format(DateLayout)}
}

// ResolvePeriod reads a query period. A month wins over start and end.
func ResolvePeriod(yearMonth, start, end string) (Period, error) {
	if strings.TrimSpace(yearMonth) != "" {
		year, month, ok := ParseYearMonth(yearMonth)
		if !ok {
			return Period{}, ErrInvalidPeriod
		}
		return MonthPeriod(year, month), nil
	}

	s, ok := NormalizeDate(start)
	if !ok {
		return Period{}, ErrInvalidPeriod
	}
	e, ok := NormalizeDate(end)
	if !ok {
		return Period{}, ErrInvalidPeriod
	}
	if e < s {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: s, End: e}, nil
}

// EntryHours recomputes hours from start and end when both parse, wrapping
// past midnight. Otherwise the stored hours are returned unchanged.
func EntryHours(start, end string, stored float64) float64 {
	if m, ok := MinutesBetween(start, end); ok {
		return RoundHours(m)
	}
	return stored
}
