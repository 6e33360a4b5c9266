package branch

import "context"

type BranchRepository interface {
	// List returns every distinct branch across schedules and attendance, sorted by name.
	List(ctx context.Context) ([]Branch, error)
}
