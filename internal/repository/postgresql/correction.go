package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/compare"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/jackc/pgx/v5"
)

const correctionColumns = `
	correction_key, branch, employee_account, employee_name, to_char(date, 'YYYY-MM-DD'),
	schedule_start, schedule_end, schedule_hours,
	attendance_start, attendance_end, attendance_hours, attendance_status,
	corrected_start, corrected_end, remark, created_at, updated_at`

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) compare.CorrectionRepository {
	return &correctionRepository{db: db}
}

// Upsert implements compare.CorrectionRepository.
func (r *correctionRepository) Upsert(ctx context.Context, c compare.Correction) (compare.Correction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO corrections (
			correction_key, branch, employee_account, employee_name, date,
			schedule_start, schedule_end, schedule_hours,
			attendance_start, attendance_end, attendance_hours, attendance_status,
			corrected_start, corrected_end, remark
		) VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (correction_key) DO UPDATE SET
			employee_name     = EXCLUDED.employee_name,
			schedule_hours    = EXCLUDED.schedule_hours,
			attendance_start  = EXCLUDED.attendance_start,
			attendance_end    = EXCLUDED.attendance_end,
			attendance_hours  = EXCLUDED.attendance_hours,
			attendance_status = EXCLUDED.attendance_status,
			corrected_start   = EXCLUDED.corrected_start,
			corrected_end     = EXCLUDED.corrected_end,
			remark            = EXCLUDED.remark,
			updated_at        = NOW()
		RETURNING` + correctionColumns

	saved, err := scanCorrection(q.QueryRow(ctx, query,
		c.Key, c.Branch, c.EmployeeAccount, c.EmployeeName, c.Date,
		c.ScheduleStart, c.ScheduleEnd, c.ScheduleHours,
		c.AttendanceStart, c.AttendanceEnd, c.AttendanceHours, c.AttendanceStatus,
		c.CorrectedStart, c.CorrectedEnd, c.Remark,
	))
	if err != nil {
		return compare.Correction{}, fmt.Errorf("failed to upsert correction: %w", err)
	}

	return saved, nil
}

// GetForUpdate implements compare.CorrectionRepository.
func (r *correctionRepository) GetForUpdate(ctx context.Context, key string) (compare.Correction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + correctionColumns + `
		FROM corrections
		WHERE correction_key = $1
		FOR UPDATE
	`

	c, err := scanCorrection(q.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return compare.Correction{}, compare.ErrCorrectionNotFound
		}
		return compare.Correction{}, fmt.Errorf("failed to get correction: %w", err)
	}

	return c, nil
}

// ListByBranch implements compare.CorrectionRepository.
func (r *correctionRepository) ListByBranch(ctx context.Context, branch string, period timenorm.Period) ([]compare.Correction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + correctionColumns + `
		FROM corrections
		WHERE branch = $1 AND date BETWEEN $2::date AND $3::date
		ORDER BY date, employee_account
	`

	rows, err := q.Query(ctx, query, branch, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	defer rows.Close()

	var corrections []compare.Correction
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corrections: %w", err)
	}

	return corrections, nil
}

func scanCorrection(row pgx.Row) (compare.Correction, error) {
	var c compare.Correction
	err := row.Scan(
		&c.Key, &c.Branch, &c.EmployeeAccount, &c.EmployeeName, &c.Date,
		&c.ScheduleStart, &c.ScheduleEnd, &c.ScheduleHours,
		&c.AttendanceStart, &c.AttendanceEnd, &c.AttendanceHours, &c.AttendanceStatus,
		&c.CorrectedStart, &c.CorrectedEnd, &c.Remark, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}
