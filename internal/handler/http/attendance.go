package http

import (
	"net/http"

	"github.com/cmlabs-hris/shift-reconcile/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-reconcile/internal/handler/http/response"
)

type AttendanceHandler interface {
	Import(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	UpdateRemark(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	maxUploadBytes    int64
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, maxUploadBytes int64) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		maxUploadBytes:    maxUploadBytes,
	}
}

// Import implements AttendanceHandler.
func (h *attendanceHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	up, ok := readUpload(w, r, h.maxUploadBytes)
	if !ok {
		return
	}
	defer up.File.Close()

	result, err := h.attendanceService.Import(r.Context(), attendance.ImportRequest{
		Branch:     up.Branch,
		Sheet:      up.Sheet,
		Overwrite:  up.Overwrite,
		File:       up.File,
		FileHeader: up.FileHeader,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance imported successfully", result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := readPeriodQuery(r)

	result, err := h.attendanceService.List(r.Context(), attendance.AttendanceFilter{
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

// UpdateRemark implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdateRemark(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateRemarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.UpdateRemark(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Remark updated successfully", result)
}
