package hpc_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vidyalaya/hpc-service/internal/hpc"
)

func TestSubmitEvaluation(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	svc := newTestService(store)

	stored, v, err := svc.SubmitEvaluation(ctx, hpc.Evaluation{
		StudentID: studentID, ParameterID: paramMath, EvaluatorID: "t1", EvaluatorRole: hpc.RoleTeacher,
		Score: 4.2, Remark: "consistent and accurate work", Confidence: 0.9, TermID: termID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !v.Valid || len(v.Warnings) != 0 {
		t.Errorf("validation = %+v", v)
	}
	if stored.ID == "" {
		t.Error("id must be assigned")
	}
	if stored.Grade != "A" {
		t.Errorf("grade = %q, want A", stored.Grade)
	}
	if stored.Status != hpc.EvaluationSubmitted {
		t.Errorf("status = %s", stored.Status)
	}
	if stored.Date != fixedNow {
		t.Errorf("date = %v, want clock time", stored.Date)
	}
}

func TestSubmitEvaluationRejectsInvalidScore(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	svc := newTestService(store)

	_, v, err := svc.SubmitEvaluation(ctx, hpc.Evaluation{
		StudentID: studentID, ParameterID: paramMath, EvaluatorRole: hpc.RoleTeacher,
		Score: 7, Remark: "off the scale entirely", Confidence: 0.9, TermID: termID,
	})
	var verr *hpc.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if v.Valid {
		t.Error("validation must report invalid")
	}
	evals, _ := store.ListEvaluations(ctx, studentID, termID)
	if len(evals) != 0 {
		t.Fatalf("rejected evaluation must not be stored, found %d", len(evals))
	}
}

func TestSubmitEvaluationReturnsWarnings(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	svc := newTestService(store)

	stored, v, err := svc.SubmitEvaluation(ctx, hpc.Evaluation{
		StudentID: studentID, ParameterID: paramMath, EvaluatorRole: hpc.RoleParent,
		Score: 3, Remark: "fine", Confidence: 0.3, TermID: termID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Warnings) != 2 {
		t.Errorf("warnings = %v", v.Warnings)
	}
	if stored.Status != hpc.EvaluationSubmitted {
		t.Errorf("warnings must not block submission, status = %s", stored.Status)
	}
}

func TestListEvaluationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	svc := newTestService(store)

	for i, d := range []time.Time{fixedNow.AddDate(0, 0, -5), fixedNow, fixedNow.AddDate(0, 0, -1)} {
		if _, _, err := svc.SubmitEvaluation(ctx, hpc.Evaluation{
			ID: fmt.Sprintf("e%d", i), StudentID: studentID, ParameterID: paramMath,
			EvaluatorRole: hpc.RoleTeacher, Score: 3, Remark: "steady progress this term",
			Confidence: 0.8, Date: d, TermID: termID,
		}); err != nil {
			t.Fatal(err)
		}
	}
	evals, err := svc.ListEvaluations(ctx, studentID, termID)
	if err != nil {
		t.Fatal(err)
	}
	if len(evals) != 3 {
		t.Fatalf("got %d evaluations", len(evals))
	}
	for i := 1; i < len(evals); i++ {
		if evals[i].Date.After(evals[i-1].Date) {
			t.Fatalf("not newest first: %v after %v", evals[i].Date, evals[i-1].Date)
		}
	}
}

func TestPutAssignmentsEnforcesWeightSum(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	svc := newTestService(store)

	err := svc.PutAssignments(ctx, paramMath, []hpc.Assignment{
		{Role: hpc.RoleTeacher, Weight: 0.5},
		{Role: hpc.RoleParent, Weight: 0.3},
	})
	var verr *hpc.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}

	if err := svc.PutAssignments(ctx, paramMath, []hpc.Assignment{
		{Role: hpc.RoleTeacher, Weight: 0.7},
		{Role: hpc.RoleParent, Weight: 0.3},
	}); err != nil {
		t.Fatal(err)
	}
	stored, err := store.Assignments(ctx, []string{paramMath})
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 || stored[0].ParameterID != paramMath {
		t.Fatalf("stored assignments = %+v", stored)
	}
}

type fakeExporter struct {
	lastReport   string
	lastLanguage string
	err          error
}

func (e *fakeExporter) Render(_ context.Context, reportID, language string) (hpc.DocumentRef, error) {
	e.lastReport = reportID
	e.lastLanguage = language
	if e.err != nil {
		return hpc.DocumentRef{}, e.err
	}
	return hpc.DocumentRef{URL: "https://cdn.example/" + reportID + ".pdf", Filename: reportID + ".pdf"}, nil
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	seedCompileData(t, store)
	exp := &fakeExporter{}
	svc := newTestService(store, hpc.WithExporter(exp))
	report := compileDraft(t, svc)

	ref, err := svc.Export(ctx, report.ID, "hindi")
	if err != nil {
		t.Fatal(err)
	}
	if ref.URL == "" || exp.lastReport != report.ID || exp.lastLanguage != "hindi" {
		t.Errorf("ref = %+v, exporter saw (%s, %s)", ref, exp.lastReport, exp.lastLanguage)
	}

	if _, err := svc.Export(ctx, "missing", "english"); !errors.Is(err, hpc.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	exp.err = fmt.Errorf("renderer unavailable")
	if _, err := svc.Export(ctx, report.ID, "english"); err == nil {
		t.Fatal("render failure must surface")
	}
	got, _ := store.GetReport(ctx, report.ID)
	if got.Status != hpc.ReportDraft {
		t.Errorf("export failure must not change report state, status = %s", got.Status)
	}
}

func TestExportWithoutExporter(t *testing.T) {
	store := hpc.NewMemoryStore()
	seedCompileData(t, store)
	svc := newTestService(store)
	report := compileDraft(t, svc)

	if _, err := svc.Export(context.Background(), report.ID, "english"); err == nil {
		t.Fatal("expected error when no exporter is configured")
	}
}
