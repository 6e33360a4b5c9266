package branch

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/branch"
)

type BranchServiceImpl struct {
	branch.BranchRepository
}

// List implements branch.BranchService.
func (s *BranchServiceImpl) List(ctx context.Context) (branch.ListBranchResponse, error) {
	branches, err := s.BranchRepository.List(ctx)
	if err != nil {
		return branch.ListBranchResponse{}, fmt.Errorf("failed to list branches: %w", err)
	}

	resp := branch.ListBranchResponse{Branches: make([]branch.BranchResponse, 0, len(branches))}
	for _, b := range branches {
		resp.Branches = append(resp.Branches, branch.NewBranchResponse(b))
	}
	resp.Total = len(resp.Branches)

	return resp, nil
}

func NewBranchService(branchRepository branch.BranchRepository) branch.BranchService {
	return &BranchServiceImpl{BranchRepository: branchRepository}
}
