package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vidyalaya/hpc-service/internal/hpc"
)

type stubDirectory struct{}

func (stubDirectory) ClassTeacher(context.Context, string, string) (string, bool, error) {
	return "teacher-1", false, nil
}
func (stubDirectory) Principal(context.Context) (string, error) { return "principal-1", nil }
func (stubDirectory) DisplayNames(context.Context, []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func testRouter(store *hpc.MemoryStore) chi.Router {
	svc := hpc.NewService(store, hpc.WithDirectory(stubDirectory{}))
	r := chi.NewRouter()
	r.Post("/evaluations", SubmitEvaluationHandler(svc))
	r.Get("/students/{studentID}/evaluations", ListEvaluationsHandler(svc))
	r.Put("/parameters/{parameterID}/assignments", PutAssignmentsHandler(svc))
	r.Post("/reports/compile", CompileReportHandler(svc))
	r.Get("/reports/{reportID}", GetReportHandler(svc))
	r.Post("/workflow/steps/{stepID}", ProcessApprovalHandler(svc))
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitEvaluationEndpoint(t *testing.T) {
	store := hpc.NewMemoryStore()
	router := testRouter(store)

	rec := doJSON(t, router, http.MethodPost, "/evaluations", map[string]any{
		"student_id":         "s1",
		"parameter_id":       "p1",
		"evaluator_id":       "t1",
		"evaluator_role":     "teacher",
		"score":              4.0,
		"qualitative_remark": "works carefully and checks answers",
		"confidence_level":   0.9,
		"term_id":            "term-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp submitEvaluationResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Evaluation.Grade != "A" || resp.Evaluation.ID == "" {
		t.Errorf("evaluation = %+v", resp.Evaluation)
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("warnings = %v", resp.Warnings)
	}
}

func TestSubmitEvaluationEndpointErrors(t *testing.T) {
	store := hpc.NewMemoryStore()
	router := testRouter(store)

	// unknown role fails request validation
	rec := doJSON(t, router, http.MethodPost, "/evaluations", map[string]any{
		"student_id": "s1", "parameter_id": "p1", "evaluator_id": "x",
		"evaluator_role": "janitor", "score": 4.0, "term_id": "term-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown role: status = %d", rec.Code)
	}

	// out-of-range score passes request validation but fails domain validation
	rec = doJSON(t, router, http.MethodPost, "/evaluations", map[string]any{
		"student_id": "s1", "parameter_id": "p1", "evaluator_id": "t1",
		"evaluator_role": "teacher", "score": 9.0,
		"qualitative_remark": "impossibly high score", "confidence_level": 0.9, "term_id": "term-1",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad score: status = %d, body %s", rec.Code, rec.Body)
	}
	var body struct {
		Error    string   `json:"error"`
		Problems []string `json:"problems"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Problems) == 0 {
		t.Errorf("problems missing: %+v", body)
	}
}

func TestPutAssignmentsEndpoint(t *testing.T) {
	store := hpc.NewMemoryStore()
	router := testRouter(store)

	rec := doJSON(t, router, http.MethodPut, "/parameters/p1/assignments", map[string]any{
		"assignments": []map[string]any{
			{"evaluator_role": "teacher", "weightage": 0.6},
			{"evaluator_role": "parent", "weightage": 0.4},
		},
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodPut, "/parameters/p1/assignments", map[string]any{
		"assignments": []map[string]any{
			{"evaluator_role": "teacher", "weightage": 0.6},
		},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("short weights: status = %d", rec.Code)
	}
}

func TestGetReportEndpointNotFound(t *testing.T) {
	router := testRouter(hpc.NewMemoryStore())
	rec := doJSON(t, router, http.MethodGet, "/reports/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestProcessApprovalEndpointConflict(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	router := testRouter(store)

	if err := store.InsertSteps(ctx, []hpc.ApprovalStep{{
		ID: "step-1", ReportID: "r1", Round: 1, StepNumber: 1,
		ApproverRole: "class_teacher", ApproverID: "teacher-1", Status: hpc.StepApproved,
	}}); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, router, http.MethodPost, "/workflow/steps/step-1", map[string]any{
		"approver_id": "teacher-1",
		"decision":    "approved",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestCompileEndpointMissingStudent(t *testing.T) {
	router := testRouter(hpc.NewMemoryStore())
	rec := doJSON(t, router, http.MethodPost, "/reports/compile", map[string]any{
		"student_id": "ghost", "term_id": "term-1", "compiled_by": "admin-1",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}
