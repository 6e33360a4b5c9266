package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/compare"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
	"github.com/jackc/pgx/v5"
)

const confirmationColumns = `
	confirmation_key, branch, employee_account, to_char(date, 'YYYY-MM-DD'),
	attendance_start, attendance_end, confirmed, confirmed_at, updated_at`

type confirmationRepository struct {
	db *database.DB
}

func NewConfirmationRepository(db *database.DB) compare.ConfirmationRepository {
	return &confirmationRepository{db: db}
}

// SetConfirmed implements compare.ConfirmationRepository.
// confirmed_at keeps the last confirmation time after an unconfirm.
func (r *confirmationRepository) SetConfirmed(ctx context.Context, c compare.Confirmation) (compare.Confirmation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_confirmations (
			confirmation_key, branch, employee_account, date,
			attendance_start, attendance_end, confirmed, confirmed_at
		) VALUES ($1, $2, $3, $4::date, $5, $6, $7, CASE WHEN $7 THEN NOW() END)
		ON CONFLICT (confirmation_key) DO UPDATE SET
			confirmed    = EXCLUDED.confirmed,
			confirmed_at = COALESCE(EXCLUDED.confirmed_at, attendance_confirmations.confirmed_at),
			updated_at   = NOW()
		RETURNING` + confirmationColumns

	saved, err := scanConfirmation(q.QueryRow(ctx, query,
		c.Key, c.Branch, c.EmployeeAccount, c.Date,
		c.AttendanceStart, c.AttendanceEnd, c.Confirmed,
	))
	if err != nil {
		return compare.Confirmation{}, fmt.Errorf("failed to set confirmation: %w", err)
	}

	return saved, nil
}

// ListConfirmed implements compare.ConfirmationRepository.
func (r *confirmationRepository) ListConfirmed(ctx context.Context, branch string, period timenorm.Period) ([]compare.Confirmation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + confirmationColumns + `
		FROM attendance_confirmations
		WHERE branch = $1
		  AND date BETWEEN $2::date AND $3::date
		  AND confirmed
		ORDER BY date, employee_account
	`

	rows, err := q.Query(ctx, query, branch, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations: %w", err)
	}
	defer rows.Close()

	var confirmations []compare.Confirmation
	for rows.Next() {
		c, err := scanConfirmation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan confirmation: %w", err)
		}
		confirmations = append(confirmations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating confirmations: %w", err)
	}

	return confirmations, nil
}

func scanConfirmation(row pgx.Row) (compare.Confirmation, error) {
	var c compare.Confirmation
	err := row.Scan(
		&c.Key, &c.Branch, &c.EmployeeAccount, &c.Date,
		&c.AttendanceStart, &c.AttendanceEnd, &c.Confirmed, &c.ConfirmedAt, &c.UpdatedAt,
	)
	return c, err
}
