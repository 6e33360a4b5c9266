package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/branch"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
)

type branchRepositoryImpl struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.BranchRepository {
	return &branchRepositoryImpl{db: db}
}

// List implements branch.BranchRepository.
func (r *branchRepositoryImpl) List(ctx context.Context) ([]branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT branch, SUM(schedule_rows)::bigint, SUM(attendance_rows)::bigint
		FROM (
			SELECT branch, COUNT(*) AS schedule_rows, 0::bigint AS attendance_rows
			FROM schedules
			GROUP BY branch
			UNION ALL
			SELECT branch, 0::bigint, COUNT(*)
			FROM attendances
			GROUP BY branch
		) counts
		WHERE branch <> ''
		GROUP BY branch
		ORDER BY branch
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var branches []branch.Branch
	for rows.Next() {
		var b branch.Branch
		if err := rows.Scan(&b.Name, &b.ScheduleRows, &b.AttendanceRows); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branches: %w", err)
	}

	return branches, nil
}
