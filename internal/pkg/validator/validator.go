package validator

import (
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidShiftDate accepts any date the import sheets use ("2025/02/07",
// "2025-2-7", Excel serials) and returns it as YYYY-MM-DD.
func IsValidShiftDate(s string) (string, bool) {
	return timenorm.NormalizeDate(s)
}

// IsValidClock accepts "HHmm", "H:mm" and "HH:mm".
func IsValidClock(s string) bool {
	_, ok := timenorm.NormalizeTime(s)
	return ok
}

// IsValidYearMonth accepts "YYYYMM", "YYYY/MM" and "YYYY-MM".
func IsValidYearMonth(s string) bool {
	_, _, ok := timenorm.ParseYearMonth(s)
	return ok
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// HasExtension reports whether filename ends with one of exts, ignoring case.
func HasExtension(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext != "" && IsInSlice(ext, exts)
}

// SplitList splits a comma separated query value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
