package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vidyalaya/hpc-service/internal/hpc"
)

type compileReq struct {
	StudentID  string `json:"student_id" validate:"required"`
	TermID     string `json:"term_id" validate:"required"`
	CompiledBy string `json:"compiled_by" validate:"required"`
}

// POST /reports/compile
func CompileReportHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req compileReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		report, err := svc.CompileReport(r.Context(), req.StudentID, req.TermID, req.CompiledBy)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, report)
	}
}

type bulkCompileReq struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1"`
	TermID     string   `json:"term_id" validate:"required"`
	CompiledBy string   `json:"compiled_by" validate:"required"`
}

// POST /reports/compile/bulk
func BulkCompileHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkCompileReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		res := svc.BulkCompile(r.Context(), req.StudentIDs, req.TermID, req.CompiledBy)
		writeJSON(w, http.StatusOK, res)
	}
}

type reportResp struct {
	Report hpc.Report         `json:"report"`
	Steps  []hpc.ApprovalStep `json:"workflow,omitempty"`
}

// GET /reports/{reportID}
func GetReportHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reportID := strings.TrimSpace(chi.URLParam(r, "reportID"))
		if reportID == "" {
			http.Error(w, "reportID required", http.StatusBadRequest)
			return
		}
		report, steps, err := svc.GetReport(r.Context(), reportID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reportResp{Report: report, Steps: steps})
	}
}

// GET /students/{studentID}/reports
func StudentReportsHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := strings.TrimSpace(chi.URLParam(r, "studentID"))
		if studentID == "" {
			http.Error(w, "studentID required", http.StatusBadRequest)
			return
		}
		reports, err := svc.StudentReports(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reports)
	}
}

// POST /reports/{reportID}/export?language=
func ExportReportHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reportID := strings.TrimSpace(chi.URLParam(r, "reportID"))
		if reportID == "" {
			http.Error(w, "reportID required", http.StatusBadRequest)
			return
		}
		language := r.URL.Query().Get("language")
		ref, err := svc.Export(r.Context(), reportID, language)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ref)
	}
}
