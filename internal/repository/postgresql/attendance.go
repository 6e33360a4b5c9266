package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, branch, employee_no, employee_account, employee_name, to_char(date, 'YYYY-MM-DD'),
	start_time, end_time, hours, status, remark, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// InsertMany implements attendance.AttendanceRepository.
func (a *attendanceRepository) InsertMany(ctx context.Context, entries []attendance.AttendanceEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			id, branch, employee_no, employee_account, employee_name, date,
			start_time, end_time, hours, status, remark
		) VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11)
		ON CONFLICT (branch, employee_account, employee_name, date, start_time, end_time) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query,
			newID(), e.Branch, e.EmployeeNo, e.EmployeeAccount, e.EmployeeName, e.Date,
			e.StartTime, e.EndTime, e.Hours, e.Status, e.Remark,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range entries {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert attendance: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// DeleteRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) DeleteRange(ctx context.Context, branch string, period timenorm.Period) (int64, error) {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `
		DELETE FROM attendances
		WHERE branch = $1 AND date BETWEEN $2::date AND $3::date
	`, branch, period.Start, period.End)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendances: %w", err)
	}

	return tag.RowsAffected(), nil
}

// List implements attendance.AttendanceRepository.
// The name filter matches either the employee name or the account.
func (a *attendanceRepository) List(ctx context.Context, branch string, period timenorm.Period, names []string) ([]attendance.AttendanceEntry, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT` + attendanceColumns + `
		FROM attendances
		WHERE branch = $1
		  AND date BETWEEN $2::date AND $3::date
		  AND ($4::text[] IS NULL OR employee_name = ANY($4) OR employee_account = ANY($4))
		ORDER BY date, employee_account, created_at
	`

	rows, err := q.Query(ctx, query, branch, period.Start, period.End, nullableList(names))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	return collectAttendances(rows)
}

// ListByAccounts implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByAccounts(ctx context.Context, accounts []string, period timenorm.Period) ([]attendance.AttendanceEntry, error) {
	if len(accounts) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT` + attendanceColumns + `
		FROM attendances
		WHERE employee_account = ANY($1)
		  AND date BETWEEN $2::date AND $3::date
		ORDER BY date, employee_account, created_at
	`

	rows, err := q.Query(ctx, query, accounts, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances by account: %w", err)
	}
	return collectAttendances(rows)
}

// UpdateRemark implements attendance.AttendanceRepository.
// An empty end time matches the earliest punch starting at the given time.
func (a *attendanceRepository) UpdateRemark(ctx context.Context, req attendance.UpdateRemarkRequest) (attendance.AttendanceEntry, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		WITH target AS (
			SELECT id AS target_id
			FROM attendances
			WHERE branch = $2
			  AND employee_account = $3
			  AND date = $4::date
			  AND start_time = $5
			  AND ($6 = '' OR end_time = $6)
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE
		)
		UPDATE attendances
		SET remark = $1, updated_at = NOW()
		FROM target
		WHERE attendances.id = target.target_id
		RETURNING` + attendanceColumns

	e, err := scanAttendance(q.QueryRow(ctx, query,
		req.Remark, req.Branch, req.EmployeeAccount, req.Date, req.StartTime, req.EndTime,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceEntry{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceEntry{}, fmt.Errorf("failed to update attendance remark: %w", err)
	}

	return e, nil
}

// NameAccounts implements attendance.AttendanceRepository.
func (a *attendanceRepository) NameAccounts(ctx context.Context) (map[string]string, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `
		SELECT DISTINCT ON (employee_name) employee_name, employee_account
		FROM attendances
		WHERE employee_name <> '' AND employee_account <> ''
		ORDER BY employee_name, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance accounts: %w", err)
	}
	return collectNameAccounts(rows)
}

func scanAttendance(row pgx.Row) (attendance.AttendanceEntry, error) {
	var e attendance.AttendanceEntry
	err := row.Scan(
		&e.ID, &e.Branch, &e.EmployeeNo, &e.EmployeeAccount, &e.EmployeeName, &e.Date,
		&e.StartTime, &e.EndTime, &e.Hours, &e.Status, &e.Remark,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.AttendanceEntry, error) {
	defer rows.Close()

	var entries []attendance.AttendanceEntry
	for rows.Next() {
		e, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendances: %w", err)
	}

	return entries, nil
}
