package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vidyalaya/hpc-service/internal/hpc"
)

var validate = validator.New()

type submitEvaluationReq struct {
	StudentID     string  `json:"student_id" validate:"required"`
	ParameterID   string  `json:"parameter_id" validate:"required"`
	EvaluatorID   string  `json:"evaluator_id" validate:"required"`
	EvaluatorRole string  `json:"evaluator_role" validate:"required,oneof=teacher parent peer self counselor coach"`
	Score         float64 `json:"score" validate:"required"`
	Remark        string  `json:"qualitative_remark"`
	EvidenceNote  string  `json:"evidence_notes"`
	Confidence    float64 `json:"confidence_level" validate:"gte=0,lte=1"`
	TermID        string  `json:"term_id" validate:"required"`
}

type submitEvaluationResp struct {
	Evaluation hpc.Evaluation `json:"evaluation"`
	Warnings   []string       `json:"warnings,omitempty"`
}

// POST /evaluations
func SubmitEvaluationHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitEvaluationReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		ev, v, err := svc.SubmitEvaluation(r.Context(), hpc.Evaluation{
			StudentID:     req.StudentID,
			ParameterID:   req.ParameterID,
			EvaluatorID:   req.EvaluatorID,
			EvaluatorRole: hpc.EvaluatorRole(req.EvaluatorRole),
			Score:         req.Score,
			Remark:        req.Remark,
			EvidenceNote:  req.EvidenceNote,
			Confidence:    req.Confidence,
			TermID:        req.TermID,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, submitEvaluationResp{Evaluation: ev, Warnings: v.Warnings})
	}
}

// GET /students/{studentID}/evaluations?term=
func ListEvaluationsHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := strings.TrimSpace(chi.URLParam(r, "studentID"))
		termID := strings.TrimSpace(r.URL.Query().Get("term"))
		if studentID == "" || termID == "" {
			http.Error(w, "studentID and term required", http.StatusBadRequest)
			return
		}
		evals, err := svc.ListEvaluations(r.Context(), studentID, termID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, evals)
	}
}

type putAssignmentsReq struct {
	Assignments []struct {
		Role   string  `json:"evaluator_role" validate:"required"`
		Weight float64 `json:"weightage"`
	} `json:"assignments" validate:"required,min=1"`
}

// PUT /parameters/{parameterID}/assignments
func PutAssignmentsHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parameterID := strings.TrimSpace(chi.URLParam(r, "parameterID"))
		if parameterID == "" {
			http.Error(w, "parameterID required", http.StatusBadRequest)
			return
		}
		var req putAssignmentsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		assignments := make([]hpc.Assignment, 0, len(req.Assignments))
		for _, a := range req.Assignments {
			assignments = append(assignments, hpc.Assignment{Role: hpc.EvaluatorRole(a.Role), Weight: a.Weight})
		}
		if err := svc.PutAssignments(r.Context(), parameterID, assignments); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
