package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/compare"
	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/reconcile"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

type CompareServiceImpl struct {
	tx database.Transactor
	schedule.ScheduleRepository
	attendance.AttendanceRepository
	compare.CorrectionRepository
	compare.ConfirmationRepository
	engine *reconcile.Engine
}

// Compare implements compare.CompareService.
func (s *CompareServiceImpl) Compare(ctx context.Context, filter compare.CompareFilter) (compare.CompareResponse, error) {
	if err := filter.Validate(); err != nil {
		return compare.CompareResponse{}, err
	}
	period, _ := filter.Period()
	branch := strings.TrimSpace(filter.Branch)

	schedules, err := s.ScheduleRepository.List(ctx, branch, period, filter.Names)
	if err != nil {
		return compare.CompareResponse{}, fmt.Errorf("failed to load schedules: %w", err)
	}
	attendances, err := s.AttendanceRepository.List(ctx, branch, period, filter.Names)
	if err != nil {
		return compare.CompareResponse{}, fmt.Errorf("failed to load attendances: %w", err)
	}

	resolver, err := s.resolver(ctx)
	if err != nil {
		return compare.CompareResponse{}, err
	}

	others, err := s.otherPunches(ctx, resolver, branch, period, schedules, attendances)
	if err != nil {
		return compare.CompareResponse{}, err
	}

	corrections, err := s.CorrectionRepository.ListByBranch(ctx, branch, period)
	if err != nil {
		return compare.CompareResponse{}, fmt.Errorf("failed to load corrections: %w", err)
	}
	correctionsByKey := make(map[string]compare.Correction, len(corrections))
	for _, c := range corrections {
		correctionsByKey[c.Key] = c
	}

	confirmations, err := s.ConfirmationRepository.ListConfirmed(ctx, branch, period)
	if err != nil {
		return compare.CompareResponse{}, fmt.Errorf("failed to load confirmations: %w", err)
	}
	confirmed := make(map[string]bool, len(confirmations))
	for _, c := range confirmations {
		confirmed[c.Key] = c.Confirmed
	}

	result := s.engine.Compare(reconcile.Input{
		Schedules:     schedules,
		Attendances:   attendances,
		OtherPunches:  others,
		Resolver:      resolver,
		Corrections:   correctionsByKey,
		Confirmations: confirmed,
	})

	if len(result.NameFallbacks) > 0 {
		slog.Warn("compare keyed by name",
			"branch", branch,
			"start_date", period.Start,
			"end_date", period.End,
			"names", result.NameFallbacks,
		)
	}

	items := make([]compare.CompareItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		if filter.FlaggedOnly && !item.Flagged() {
			continue
		}
		items = append(items, compare.NewCompareItemResponse(item))
	}

	nameFallbacks := result.NameFallbacks
	if nameFallbacks == nil {
		nameFallbacks = []string{}
	}

	return compare.CompareResponse{
		Branch:        branch,
		StartDate:     period.Start,
		EndDate:       period.End,
		Items:         items,
		Stats:         result.Stats,
		NameFallbacks: nameFallbacks,
	}, nil
}

// SubmitCorrection implements compare.CompareService.
func (s *CompareServiceImpl) SubmitCorrection(ctx context.Context, req compare.SubmitCorrectionRequest) (compare.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return compare.CorrectionResponse{}, err
	}

	c := correctionFromRequest(req)

	var saved compare.Correction
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.CorrectionRepository.GetForUpdate(ctx, c.Key)
		switch {
		case errors.Is(err, compare.ErrCorrectionNotFound):
		case err != nil:
			return err
		default:
			keepSnapshot(&c, existing)
		}

		saved, err = s.CorrectionRepository.Upsert(ctx, c)
		return err
	})
	if err != nil {
		return compare.CorrectionResponse{}, fmt.Errorf("failed to save correction: %w", err)
	}

	slog.Info("correction saved",
		"key", saved.Key,
		"corrected_start", saved.CorrectedStart,
		"corrected_end", saved.CorrectedEnd,
	)

	return compare.NewCorrectionResponse(saved), nil
}

// ConfirmIgnore implements compare.CompareService.
func (s *CompareServiceImpl) ConfirmIgnore(ctx context.Context, req compare.ConfirmRequest) (compare.ConfirmationResponse, error) {
	return s.setConfirmed(ctx, req, true)
}

// UnconfirmIgnore implements compare.CompareService.
func (s *CompareServiceImpl) UnconfirmIgnore(ctx context.Context, req compare.ConfirmRequest) (compare.ConfirmationResponse, error) {
	return s.setConfirmed(ctx, req, false)
}

func (s *CompareServiceImpl) setConfirmed(ctx context.Context, req compare.ConfirmRequest, confirmed bool) (compare.ConfirmationResponse, error) {
	if err := req.Validate(); err != nil {
		return compare.ConfirmationResponse{}, err
	}

	date := timenorm.DateOrRaw(req.Date)
	start := timeOrRaw(req.AttendanceStart)
	end := timeOrRaw(req.AttendanceEnd)

	saved, err := s.ConfirmationRepository.SetConfirmed(ctx, compare.Confirmation{
		Key:             reconcile.ConfirmationKey(req.EmployeeAccount, date, start, end, req.Branch),
		Branch:          req.Branch,
		EmployeeAccount: req.EmployeeAccount,
		Date:            date,
		AttendanceStart: start,
		AttendanceEnd:   end,
		Confirmed:       confirmed,
	})
	if err != nil {
		return compare.ConfirmationResponse{}, fmt.Errorf("failed to update confirmation: %w", err)
	}

	slog.Info("attendance confirmation updated", "key", saved.Key, "confirmed", saved.Confirmed)

	return compare.NewConfirmationResponse(saved), nil
}

// resolver builds the name to account mappings from every stored row.
func (s *CompareServiceImpl) resolver(ctx context.Context) (reconcile.AccountResolver, error) {
	fromAttendance, err := s.AttendanceRepository.NameAccounts(ctx)
	if err != nil {
		return reconcile.AccountResolver{}, fmt.Errorf("failed to load attendance accounts: %w", err)
	}
	fromSchedules, err := s.ScheduleRepository.NameAccounts(ctx)
	if err != nil {
		return reconcile.AccountResolver{}, fmt.Errorf("failed to load schedule accounts: %w", err)
	}
	return reconcile.NewAccountResolver(fromAttendance, fromSchedules), nil
}

// otherPunches loads the same employees' punches at other branches so that
// double clocking across branches raises an overlap warning.
func (s *CompareServiceImpl) otherPunches(
	ctx context.Context,
	resolver reconcile.AccountResolver,
	branch string,
	period timenorm.Period,
	schedules []schedule.ScheduleEntry,
	attendances []attendance.AttendanceEntry,
) ([]attendance.AttendanceEntry, error) {
	seen := make(map[string]struct{})
	var accounts []string
	add := func(account, name string) {
		resolved, res := resolver.Resolve(account, name)
		if res == reconcile.ResolvedNameFallback || resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		accounts = append(accounts, resolved)
	}
	for _, a := range attendances {
		add(a.EmployeeAccount, a.EmployeeName)
	}
	for _, sc := range schedules {
		add(sc.EmployeeAccount, sc.EmployeeName)
	}

	rows, err := s.AttendanceRepository.ListByAccounts(ctx, accounts, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load punches at other branches: %w", err)
	}

	others := rows[:0]
	for _, r := range rows {
		if r.Branch != branch {
			others = append(others, r)
		}
	}
	return others, nil
}

func correctionFromRequest(req compare.SubmitCorrectionRequest) compare.Correction {
	date := timenorm.DateOrRaw(req.Date)
	scheduleStart := timeOrRaw(req.ScheduleStart)
	scheduleEnd := timeOrRaw(req.ScheduleEnd)
	correctedStart, _ := timenorm.NormalizeTime(req.CorrectedStart)
	correctedEnd, _ := timenorm.NormalizeTime(req.CorrectedEnd)

	return compare.Correction{
		Key: reconcile.CorrectionKey(
			req.EmployeeAccount, date, scheduleStart, scheduleEnd, req.Branch,
		),
		Branch:           strings.TrimSpace(req.Branch),
		EmployeeAccount:  strings.TrimSpace(req.EmployeeAccount),
		EmployeeName:     strings.TrimSpace(req.EmployeeName),
		Date:             date,
		ScheduleStart:    scheduleStart,
		ScheduleEnd:      scheduleEnd,
		ScheduleHours:    req.ScheduleHours,
		AttendanceStart:  timeOrRaw(req.AttendanceStart),
		AttendanceEnd:    timeOrRaw(req.AttendanceEnd),
		AttendanceHours:  req.AttendanceHours,
		AttendanceStatus: strings.TrimSpace(req.AttendanceStatus),
		CorrectedStart:   correctedStart,
		CorrectedEnd:     correctedEnd,
		Remark:           req.Remark,
	}
}

// keepSnapshot fills fields a resubmission left empty from the stored row.
// The corrected range and remark always take the new values.
func keepSnapshot(c *compare.Correction, existing compare.Correction) {
	if c.EmployeeName == "" {
		c.EmployeeName = existing.EmployeeName
	}
	if c.ScheduleHours == nil {
		c.ScheduleHours = existing.ScheduleHours
	}
	if c.AttendanceStart == "" && c.AttendanceEnd == "" {
		c.AttendanceStart = existing.AttendanceStart
		c.AttendanceEnd = existing.AttendanceEnd
	}
	if c.AttendanceHours == nil {
		c.AttendanceHours = existing.AttendanceHours
	}
	if c.AttendanceStatus == "" {
		c.AttendanceStatus = existing.AttendanceStatus
	}
}

func timeOrRaw(raw string) string {
	if t, ok := timenorm.NormalizeTime(raw); ok {
		return t
	}
	return strings.TrimSpace(raw)
}

func NewCompareService(
	tx database.Transactor,
	scheduleRepository schedule.ScheduleRepository,
	attendanceRepository attendance.AttendanceRepository,
	correctionRepository compare.CorrectionRepository,
	confirmationRepository compare.ConfirmationRepository,
	engine *reconcile.Engine,
) compare.CompareService {
	return &CompareServiceImpl{
		tx:                     tx,
		ScheduleRepository:     scheduleRepository,
		AttendanceRepository:   attendanceRepository,
		CorrectionRepository:   correctionRepository,
		ConfirmationRepository: confirmationRepository,
		engine:                 engine,
	}
}
