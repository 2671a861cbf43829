package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vidyalaya/hpc-service/internal/hpc"
)

// POST /reports/{reportID}/workflow
func InitiateWorkflowHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reportID := strings.TrimSpace(chi.URLParam(r, "reportID"))
		if reportID == "" {
			http.Error(w, "reportID required", http.StatusBadRequest)
			return
		}
		steps, err := svc.InitiateWorkflow(r.Context(), reportID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, steps)
	}
}

type approvalReq struct {
	ApproverID string `json:"approver_id" validate:"required"`
	Decision   string `json:"decision" validate:"required,oneof=approved rejected needs_revision"`
	Comments   string `json:"comments"`
}

// POST /workflow/steps/{stepID}
func ProcessApprovalHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stepID := strings.TrimSpace(chi.URLParam(r, "stepID"))
		if stepID == "" {
			http.Error(w, "stepID required", http.StatusBadRequest)
			return
		}
		var req approvalReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		step, err := svc.ProcessApproval(r.Context(), stepID, req.ApproverID, hpc.Decision(req.Decision), req.Comments)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, step)
	}
}
