package branch

import "context"

type BranchService interface {
	List(ctx context.Context) (ListBranchResponse, error)
}
