package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/reconcile"
)

type keysOptions struct {
	account         string
	name            string
	date            string
	branch          string
	scheduleStart   string
	scheduleEnd     string
	attendanceStart string
	attendanceEnd   string
}

type keysOutput struct {
	Account         string `json:"account"`
	Resolution      string `json:"resolution"`
	MatchKey        string `json:"match_key"`
	CorrectionKey   string `json:"correction_key"`
	ConfirmationKey string `json:"confirmation_key,omitempty"`
}

func newKeysCmd() *cobra.Command {
	opts := keysOptions{}
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Print the match, correction and confirmation keys for one day",
		Long: "Print the keys the compare engine derives for one employee day. " +
			"Without --account the name stands in for the account.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.account, "account", "", "employee account")
	cmd.Flags().StringVar(&opts.name, "name", "", "employee name")
	cmd.Flags().StringVar(&opts.date, "date", "", "date (YYYY-MM-DD or YYYY/MM/DD)")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "branch")
	cmd.Flags().StringVar(&opts.scheduleStart, "schedule-start", "", "scheduled start")
	cmd.Flags().StringVar(&opts.scheduleEnd, "schedule-end", "", "scheduled end")
	cmd.Flags().StringVar(&opts.attendanceStart, "attendance-start", "", "punched start")
	cmd.Flags().StringVar(&opts.attendanceEnd, "attendance-end", "", "punched end")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("branch")
	return cmd
}

func runKeys(out io.Writer, opts keysOptions) error {
	resolver := reconcile.NewAccountResolver(nil, nil)
	account, res := resolver.Resolve(opts.account, opts.name)

	punch := &attendance.AttendanceEntry{
		EmployeeAccount: opts.account,
		EmployeeName:    opts.name,
		Date:            opts.date,
		Branch:          opts.branch,
		StartTime:       opts.attendanceStart,
		EndTime:         opts.attendanceEnd,
	}
	var shift *schedule.ScheduleEntry
	if opts.scheduleStart != "" || opts.scheduleEnd != "" {
		shift = &schedule.ScheduleEntry{
			EmployeeAccount: opts.account,
			EmployeeName:    opts.name,
			Date:            opts.date,
			Branch:          opts.branch,
			StartTime:       opts.scheduleStart,
			EndTime:         opts.scheduleEnd,
		}
	}

	result := keysOutput{
		Account:       account,
		Resolution:    res.String(),
		MatchKey:      reconcile.BuildMatchKey(account, opts.date, opts.branch),
		CorrectionKey: reconcile.BuildCorrectionKey(resolver, shift, punch, opts.branch),
	}
	if opts.attendanceStart != "" || opts.attendanceEnd != "" {
		result.ConfirmationKey = reconcile.ConfirmationKey(account, opts.date, opts.attendanceStart, opts.attendanceEnd, opts.branch)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
