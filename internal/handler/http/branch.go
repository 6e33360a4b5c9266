package http

import (
	"net/http"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/branch"
	"github.com/cmlabs-hris/shift-reconcile/internal/handler/http/response"
)

type BranchHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type branchHandlerImpl struct {
	branchService branch.BranchService
}

func NewBranchHandler(branchService branch.BranchService) BranchHandler {
	return &branchHandlerImpl{branchService: branchService}
}

// List implements BranchHandler.
func (h *branchHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.branchService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
