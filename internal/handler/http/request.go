package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/shift-reconcile/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/validator"
)

// multipartOverhead leaves room for form fields next to the file itself.
const multipartOverhead = 1 << 20

// periodQuery holds the filter parameters shared by the list endpoints.
type periodQuery struct {
	Branch    string
	YearMonth string
	StartDate string
	EndDate   string
	Names     []string
}

// readPeriodQuery reads branch, yearMonth or startDate/endDate and names.
// A missing endDate means a single day.
func readPeriodQuery(r *http.Request) periodQuery {
	q := r.URL.Query()
	pq := periodQuery{
		Branch:    strings.TrimSpace(q.Get("branch")),
		YearMonth: strings.TrimSpace(q.Get("yearMonth")),
		StartDate: strings.TrimSpace(q.Get("startDate")),
		EndDate:   strings.TrimSpace(q.Get("endDate")),
		Names:     validator.SplitList(q.Get("names")),
	}
	if pq.EndDate == "" {
		pq.EndDate = pq.StartDate
	}
	return pq
}

// upload is a multipart shift table or time clock export.
type upload struct {
	File             multipart.File
	FileHeader       *multipart.FileHeader
	Branch           string
	Sheet            string
	Overwrite        bool
	DefaultYearMonth string
}

// readUpload parses the multipart form and writes the error response itself
// when it returns false. The caller closes the file.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (upload, bool) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(w, "Uploaded file exceeds the size limit")
			return upload{}, false
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return upload{}, false
	}

	up := upload{
		Branch:           strings.TrimSpace(r.FormValue("branch")),
		Sheet:            strings.TrimSpace(r.FormValue("sheet")),
		DefaultYearMonth: strings.TrimSpace(r.FormValue("default_year_month")),
	}

	if raw := strings.TrimSpace(r.FormValue("overwrite")); raw != "" {
		overwrite, err := strconv.ParseBool(raw)
		if err != nil {
			response.ValidationError(w, map[string]string{"overwrite": "overwrite must be true or false"})
			return upload{}, false
		}
		up.Overwrite = overwrite
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.ValidationError(w, map[string]string{"file": "file is required"})
			return upload{}, false
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return upload{}, false
	}
	up.File = file
	up.FileHeader = fileHeader

	return up, true
}

// decodeJSON writes a 400 response and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}
