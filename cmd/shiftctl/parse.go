package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/shifttable"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

type parseOptions struct {
	sheet     string
	branch    string
	yearMonth string
	format    string
}

// parseOutput is the JSON document printed by the parse command.
type parseOutput struct {
	File          string                       `json:"file"`
	Sheet         string                       `json:"sheet"`
	YearMonth     string                       `json:"year_month"`
	EmployeeCount int                          `json:"employee_count"`
	SkippedCells  int                          `json:"skipped_cells"`
	ShiftCodes    []schedule.ShiftCodeResponse `json:"shift_codes"`
	Entries       []schedule.ScheduleResponse  `json:"entries"`
}

var csvHeader = []string{"name", "date", "start", "end", "hours", "shift_code", "branch", "remark", "account"}

func newParseCmd() *cobra.Command {
	opts := parseOptions{}
	cmd := &cobra.Command{
		Use:   "parse <file.xlsx|file.xls>",
		Short: "Parse a shift table and print its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "worksheet name (default: first sheet)")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "branch written on every entry")
	cmd.Flags().StringVar(&opts.yearMonth, "year-month", shifttable.DefaultYearMonth, "month used when the sheet has none (YYYY/MM)")
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json or csv")
	return cmd
}

func runParse(out io.Writer, path string, opts parseOptions) error {
	if opts.format != "json" && opts.format != "csv" {
		return fmt.Errorf("unknown format %q (want json or csv)", opts.format)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	wb, err := spreadsheet.Open(f, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	sheet := opts.sheet
	if sheet == "" {
		sheet = wb.SheetNames()[0]
	}
	grid, err := wb.Sheet(sheet)
	if err != nil {
		return err
	}

	res, err := shifttable.Parse(grid, shifttable.Options{
		DefaultYearMonth: opts.yearMonth,
		Branch:           opts.branch,
	})
	if err != nil {
		return fmt.Errorf("failed to parse sheet %s: %w", sheet, err)
	}

	entries := make([]schedule.ScheduleResponse, 0, len(res.Entries))
	for _, e := range res.Entries {
		e.Date = timenorm.DateOrRaw(e.Date)
		resp := schedule.NewScheduleResponse(e)
		resp.Hours = timenorm.EntryHours(e.StartTime, e.EndTime, e.Hours)
		entries = append(entries, resp)
	}

	if opts.format == "csv" {
		return writeEntriesCSV(out, entries)
	}

	codes := make([]schedule.ShiftCodeResponse, 0, res.Dictionary.Len())
	for _, c := range res.Dictionary.Codes() {
		codes = append(codes, schedule.ShiftCodeResponse{Code: c.Code, Start: c.Start, End: c.End, Hours: c.Hours})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(parseOutput{
		File:          filepath.Base(path),
		Sheet:         sheet,
		YearMonth:     res.YearMonth,
		EmployeeCount: res.EmployeeCount,
		SkippedCells:  res.SkippedCells,
		ShiftCodes:    codes,
		Entries:       entries,
	})
}

func writeEntriesCSV(out io.Writer, entries []schedule.ScheduleResponse) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.EmployeeName,
			e.Date,
			e.StartTime,
			e.EndTime,
			strconv.FormatFloat(e.Hours, 'f', -1, 64),
			e.ShiftCode,
			e.Branch,
			e.Remark,
			e.EmployeeAccount,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
