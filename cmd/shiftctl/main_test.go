package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/jwt"
)

func writeRoster(t *testing.T) string {
	t.Helper()
	rows := [][]interface{}{
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

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParse_JSON(t *testing.T) {
	path := writeRoster(t)

	out, err := execute(t, "parse", path, "--branch", "泉威")
	require.NoError(t, err)

	var doc parseOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Sheet1", doc.Sheet)
	assert.Equal(t, "2026/02", doc.YearMonth)
	assert.Equal(t, 2, doc.EmployeeCount)
	assert.Len(t, doc.ShiftCodes, 2)
	require.Len(t, doc.Entries, 4)
	assert.Equal(t, "2026-02-01", doc.Entries[0].Date)
	assert.Equal(t, "泉威", doc.Entries[0].Branch)
}

func TestParse_CSV(t *testing.T) {
	path := writeRoster(t)

	out, err := execute(t, "parse", path, "--branch", "泉威", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "name,date,start,end,hours,shift_code,branch,remark,account", lines[0])
	assert.Equal(t, "TiNg,2026-02-01,10:00,17:00,7,A,泉威,,", lines[1])
}

func TestParse_Errors(t *testing.T) {
	path := writeRoster(t)

	_, err := execute(t, "parse", path, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "parse", path, "--sheet", "3月")
	assert.Error(t, err)

	_, err = execute(t, "parse", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	out, err := execute(t, "keys",
		"--name", "茶葉", "--date", "2026/02/01", "--branch", "泉威",
		"--schedule-start", "1000", "--schedule-end", "15:00",
		"--attendance-start", "10:00", "--attendance-end", "18:00",
	)
	require.NoError(t, err)

	var doc keysOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, keysOutput{
		Account:         "茶葉",
		Resolution:      "name-fallback",
		MatchKey:        "茶葉|2026-02-01|泉威",
		CorrectionKey:   "茶葉|2026-02-01|10:00|15:00|泉威",
		ConfirmationKey: "茶葉|2026-02-01|10:00|18:00|泉威",
	}, doc)

	_, err = execute(t, "keys", "--account", "E01")
	assert.Error(t, err, "date and branch are required")
}

func TestToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runToken(&out, "test-secret-key-for-jwt", "reviewer", time.Hour))

	token := strings.SplitN(out.String(), "\n", 2)[0]
	subject, err := jwt.NewJWTService("test-secret-key-for-jwt").ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "reviewer", subject)

	assert.Error(t, runToken(&out, "", "reviewer", time.Hour))
}
