package http

import (
	"net/http"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/schedule"
	"github.com/cmlabs-hris/shift-reconcile/internal/handler/http/response"
)

type ScheduleHandler interface {
	Import(w http.ResponseWriter, r *http.Request)
	Parse(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	UpdateRemark(w http.ResponseWriter, r *http.Request)
	ListPersonnel(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
	maxUploadBytes  int64
}

func NewScheduleHandler(scheduleService schedule.ScheduleService, maxUploadBytes int64) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Import implements ScheduleHandler.
func (h *scheduleHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	req, ok := h.importRequest(w, r)
	if !ok {
		return
	}
	defer req.File.Close()

	result, err := h.scheduleService.Import(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift table imported successfully", result)
}

// Parse implements ScheduleHandler.
func (h *scheduleHandlerImpl) Parse(w http.ResponseWriter, r *http.Request) {
	req, ok := h.importRequest(w, r)
	if !ok {
		return
	}
	defer req.File.Close()

	result, err := h.scheduleService.Parse(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements ScheduleHandler.
func (h *scheduleHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := readPeriodQuery(r)

	result, err := h.scheduleService.List(r.Context(), schedule.ScheduleFilter{
		Branch:    q.Branch,
		YearMonth: q.YearMonth,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Names:     q.Names,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateRemark implements ScheduleHandler.
func (h *scheduleHandlerImpl) UpdateRemark(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpdateRemarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.scheduleService.UpdateRemark(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Remark updated successfully", result)
}

// ListPersonnel implements ScheduleHandler.
func (h *scheduleHandlerImpl) ListPersonnel(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleService.ListPersonnel(r.Context(), r.URL.Query().Get("branch"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *scheduleHandlerImpl) importRequest(w http.ResponseWriter, r *http.Request) (schedule.ImportRequest, bool) {
	up, ok := readUpload(w, r, h.maxUploadBytes)
	if !ok {
		return schedule.ImportRequest{}, false
	}
	return schedule.ImportRequest{
		Branch:           up.Branch,
		Sheet:            up.Sheet,
		Overwrite:        up.Overwrite,
		DefaultYearMonth: up.DefaultYearMonth,
		File:             up.File,
		FileHeader:       up.FileHeader,
	}, true
}
