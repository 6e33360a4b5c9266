package http

import (
	"net/http"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/compare"
	"github.com/cmlabs-hris/shift-reconcile/internal/handler/http/response"
)

type CompareHandler interface {
	Compare(w http.ResponseWriter, r *http.Request)
	SubmitCorrection(w http.ResponseWriter, r *http.Request)
	ConfirmIgnore(w http.ResponseWriter, r *http.Request)
	UnconfirmIgnore(w http.ResponseWriter, r *http.Request)
}

type compareHandlerImpl struct {
	compareService compare.CompareService
}

func NewCompareHandler(compareService compare.CompareService) CompareHandler {
	return &compareHandlerImpl{
		compareService: compareService,
	}
}

// Compare implements CompareHandler.
func (h *compareHandlerImpl) Compare(w http.ResponseWriter, r *http.Request) {
	q := readPeriodQuery(r)

	result, err := h.compareService.Compare(r.Context(), compare.CompareFilter{
		Branch:      q.Branch,
		YearMonth:   q.YearMonth,
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		Names:       q.Names,
		FlaggedOnly: queryBool(r, "flaggedOnly"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SubmitCorrection implements CompareHandler.
func (h *compareHandlerImpl) SubmitCorrection(w http.ResponseWriter, r *http.Request) {
	var req compare.SubmitCorrectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.compareService.SubmitCorrection(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Correction saved successfully", result)
}

// ConfirmIgnore implements CompareHandler.
func (h *compareHandlerImpl) ConfirmIgnore(w http.ResponseWriter, r *http.Request) {
	var req compare.ConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.compareService.ConfirmIgnore(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance confirmed", result)
}

// UnconfirmIgnore implements CompareHandler.
func (h *compareHandlerImpl) UnconfirmIgnore(w http.ResponseWriter, r *http.Request) {
	var req compare.ConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.compareService.UnconfirmIgnore(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance confirmation removed", result)
}
