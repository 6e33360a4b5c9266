package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const scheduleColumns = `
	id, employee_name, employee_account, to_char(date, 'YYYY-MM-DD'), branch,
	start_time, end_time, hours, shift_code, remark, created_at, updated_at`

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// InsertMany implements schedule.ScheduleRepository.
func (r *scheduleRepository) InsertMany(ctx context.Context, entries []schedule.ScheduleEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO schedules (
			id, employee_name, employee_account, date, branch,
			start_time, end_time, hours, shift_code, remark
		) VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (employee_name, date, branch) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query,
			newID(), e.EmployeeName, e.EmployeeAccount, e.Date, e.Branch,
			e.StartTime, e.EndTime, e.Hours, e.ShiftCode, e.Remark,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range entries {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert schedule: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// DeleteRange implements schedule.ScheduleRepository.
func (r *scheduleRepository) DeleteRange(ctx context.Context, branch string, period timenorm.Period) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		DELETE FROM schedules
		WHERE branch = $1 AND date BETWEEN $2::date AND $3::date
	`, branch, period.Start, period.End)
	if err != nil {
		return 0, fmt.Errorf("failed to delete schedules: %w", err)
	}

	return tag.RowsAffected(), nil
}

// List implements schedule.ScheduleRepository.
func (r *scheduleRepository) List(ctx context.Context, branch string, period timenorm.Period, names []string) ([]schedule.ScheduleEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + scheduleColumns + `
		FROM schedules
		WHERE branch = $1
		  AND date BETWEEN $2::date AND $3::date
		  AND ($4::text[] IS NULL OR employee_name = ANY($4))
		ORDER BY date, employee_name
	`

	rows, err := q.Query(ctx, query, branch, period.Start, period.End, nullableList(names))
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var entries []schedule.ScheduleEntry
	for rows.Next() {
		e, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return entries, nil
}

// UpdateRemark implements schedule.ScheduleRepository.
func (r *scheduleRepository) UpdateRemark(ctx context.Context, req schedule.UpdateRemarkRequest) (schedule.ScheduleEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE schedules
		SET remark = $1, updated_at = NOW()
		WHERE branch = $2
		  AND employee_name = $3
		  AND date = $4::date
		  AND start_time = $5
		  AND end_time = $6
		RETURNING` + scheduleColumns

	e, err := scanSchedule(q.QueryRow(ctx, query,
		req.Remark, req.Branch, req.EmployeeName, req.Date, req.StartTime, req.EndTime,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ScheduleEntry{}, schedule.ErrScheduleNotFound
		}
		return schedule.ScheduleEntry{}, fmt.Errorf("failed to update schedule remark: %w", err)
	}

	return e, nil
}

// NameAccounts implements schedule.ScheduleRepository.
func (r *scheduleRepository) NameAccounts(ctx context.Context) (map[string]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT DISTINCT ON (employee_name) employee_name, employee_account
		FROM schedules
		WHERE employee_account <> ''
		ORDER BY employee_name, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule accounts: %w", err)
	}
	return collectNameAccounts(rows)
}

// ListPersonnel implements schedule.ScheduleRepository.
func (r *scheduleRepository) ListPersonnel(ctx context.Context, branch string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT DISTINCT employee_name
		FROM schedules
		WHERE branch = $1
		ORDER BY employee_name
	`, branch)
	if err != nil {
		return nil, fmt.Errorf("failed to list personnel: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan personnel: %w", err)
	}
	return names, nil
}

func scanSchedule(row pgx.Row) (schedule.ScheduleEntry, error) {
	var e schedule.ScheduleEntry
	err := row.Scan(
		&e.ID, &e.EmployeeName, &e.EmployeeAccount, &e.Date, &e.Branch,
		&e.StartTime, &e.EndTime, &e.Hours, &e.ShiftCode, &e.Remark,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// collectNameAccounts reads (name, account) rows and closes them.
func collectNameAccounts(rows pgx.Rows) (map[string]string, error) {
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, account string
		if err := rows.Scan(&name, &account); err != nil {
			return nil, fmt.Errorf("failed to scan account mapping: %w", err)
		}
		out[name] = account
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account mapping: %w", err)
	}

	return out, nil
}

// nullableList turns an empty filter into SQL NULL.
func nullableList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
