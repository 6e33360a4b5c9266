package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
)

// Dates are stored as DATE and read back with to_char so the domain keeps
// working with YYYY-MM-DD strings. Clock times stay text because imports may
// carry values that do not parse.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS schedules (
		id               UUID PRIMARY KEY,
		employee_name    TEXT NOT NULL,
		employee_account TEXT NOT NULL DEFAULT '',
		date             DATE NOT NULL,
		branch           TEXT NOT NULL,
		start_time       TEXT NOT NULL DEFAULT '',
		end_time         TEXT NOT NULL DEFAULT '',
		hours            DOUBLE PRECISION NOT NULL DEFAULT 0,
		shift_code       TEXT NOT NULL DEFAULT '',
		remark           TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (employee_name, date, branch)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_branch_date ON schedules (branch, date)`,

	`CREATE TABLE IF NOT EXISTS attendances (
		id               UUID PRIMARY KEY,
		branch           TEXT NOT NULL,
		employee_no      TEXT NOT NULL DEFAULT '',
		employee_account TEXT NOT NULL DEFAULT '',
		employee_name    TEXT NOT NULL DEFAULT '',
		date             DATE NOT NULL,
		start_time       TEXT NOT NULL DEFAULT '',
		end_time         TEXT NOT NULL DEFAULT '',
		hours            DOUBLE PRECISION NOT NULL DEFAULT 0,
		status           TEXT NOT NULL DEFAULT '',
		remark           TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (branch, employee_account, employee_name, date, start_time, end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendances_branch_date ON attendances (branch, date)`,
	`CREATE INDEX IF NOT EXISTS idx_attendances_account_date ON attendances (employee_account, date)`,

	`CREATE TABLE IF NOT EXISTS corrections (
		correction_key    TEXT PRIMARY KEY,
		branch            TEXT NOT NULL,
		employee_account  TEXT NOT NULL,
		employee_name     TEXT NOT NULL DEFAULT '',
		date              DATE NOT NULL,
		schedule_start    TEXT NOT NULL DEFAULT '',
		schedule_end      TEXT NOT NULL DEFAULT '',
		schedule_hours    DOUBLE PRECISION,
		attendance_start  TEXT NOT NULL DEFAULT '',
		attendance_end    TEXT NOT NULL DEFAULT '',
		attendance_hours  DOUBLE PRECISION,
		attendance_status TEXT NOT NULL DEFAULT '',
		corrected_start   TEXT NOT NULL DEFAULT '',
		corrected_end     TEXT NOT NULL DEFAULT '',
		remark            TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_corrections_branch_date ON corrections (branch, date)`,

	`CREATE TABLE IF NOT EXISTS attendance_confirmations (
		confirmation_key TEXT PRIMARY KEY,
		branch           TEXT NOT NULL,
		employee_account TEXT NOT NULL,
		date             DATE NOT NULL,
		attendance_start TEXT NOT NULL DEFAULT '',
		attendance_end   TEXT NOT NULL DEFAULT '',
		confirmed        BOOLEAN NOT NULL DEFAULT FALSE,
		confirmed_at     TIMESTAMPTZ,
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_confirmations_branch_date ON attendance_confirmations (branch, date)`,
}

// EnsureSchema creates the tables and indexes when they are missing.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SchemaTables lists the tables EnsureSchema manages.
var SchemaTables = []string{"schedules", "attendances", "corrections", "attendance_confirmations"}
