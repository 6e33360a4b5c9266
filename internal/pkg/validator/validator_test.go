package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidShiftDate(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2026/02/07", "2026-02-07", true},
		{"2026-2-7", "2026-02-07", true},
		{"2026-02-30", "", false},
		{"tomorrow", "", false},
	}
	for _, c := range cases {
		got, ok := IsValidShiftDate(c.input)
		if got != c.want || ok != c.ok {
			t.Errorf("IsValidShiftDate(%q) = (%q, %v), want (%q, %v)", c.input, got, ok, c.want, c.ok)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"09:00", "9:00", "0900", "23:59"}
	invalid := []string{"24:00", "9", "09:60", "", "nine"}
	for _, s := range valid {
		if !IsValidClock(s) {
			t.Errorf("IsValidClock(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidClock(s) {
			t.Errorf("IsValidClock(%q) = true, want false", s)
		}
	}
}

func TestIsValidYearMonth(t *testing.T) {
	valid := []string{"202602", "2026/02", "2026-2"}
	invalid := []string{"2026", "202613", "Feb 2026", ""}
	for _, s := range valid {
		if !IsValidYearMonth(s) {
			t.Errorf("IsValidYearMonth(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidYearMonth(s) {
			t.Errorf("IsValidYearMonth(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestHasExtension(t *testing.T) {
	if !HasExtension("Roster.XLSX", ".xlsx", ".xls") {
		t.Errorf("HasExtension(Roster.XLSX) = false, want true")
	}
	if HasExtension("roster", ".xlsx") {
		t.Errorf("HasExtension(roster) = true, want false")
	}
	if HasExtension("roster.pdf", ".xlsx", ".xls") {
		t.Errorf("HasExtension(roster.pdf) = true, want false")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" 王小明, ,TiNg,")
	if len(got) != 2 || got[0] != "王小明" || got[1] != "TiNg" {
		t.Errorf("SplitList() = %q, want [王小明 TiNg]", got)
	}
	if SplitList("") != nil {
		t.Errorf("SplitList(\"\") should be nil")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "branch", Message: "required"},
		{Field: "date", Message: "invalid"},
	}
	got := errs.Error()
	want := "branch: required; date: invalid"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "branch", Message: "required"},
		{Field: "date", Message: "invalid"},
	}
	got := errs.ToMap()
	want := map[string]string{"branch": "required", "date": "invalid"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
