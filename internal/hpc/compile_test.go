package hpc_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vidyalaya/hpc-service/internal/hpc"
)

var fixedNow = time.Date(2025, time.November, 15, 9, 0, 0, 0, time.UTC)

const (
	studentID = "s1"
	termID    = "term-1"
	paramMath = "p-math"
	paramCre  = "p-create"
)

// seedCompileData loads one student with two evaluated parameters:
// Mathematics (weightage 2, teacher score 4.0) and Creativity & Innovation
// (weightage 1, teacher score 2.0).
func seedCompileData(t *testing.T, store *hpc.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	store.SeedProfile(hpc.StudentProfile{ID: studentID, FullName: "Anil Kumar", Grade: "5", Section: "A", AdmissionNumber: "2021-0042"})
	store.SeedParameter(hpc.Parameter{
		ID: paramMath, Name: "Mathematics", Category: hpc.CategoryScholastic,
		Weightage: 2, Grades: []string{"5"}, Active: true,
	})
	store.SeedParameter(hpc.Parameter{
		ID: paramCre, Name: "Creativity & Innovation", Category: hpc.CategoryCoScholastic,
		Weightage: 1, Grades: []string{"5"}, Active: true,
	})
	store.SeedRubric(hpc.Rubric{
		ID: "r-math-a", ParameterID: paramMath, Level: "A",
		Descriptor: "Solves multi-step problems independently", Active: true,
	})

	for _, p := range []string{paramMath, paramCre} {
		if err := store.PutAssignments(ctx, p, []hpc.Assignment{{ParameterID: p, Role: hpc.RoleTeacher, Weight: 1}}); err != nil {
			t.Fatal(err)
		}
	}

	evals := []hpc.Evaluation{
		{ID: "e1", StudentID: studentID, ParameterID: paramMath, EvaluatorID: "t1", EvaluatorRole: hpc.RoleTeacher,
			Score: 4, Remark: "strong conceptual grasp of fractions", EvidenceNote: "worksheet portfolio",
			Confidence: 0.9, Date: fixedNow.AddDate(0, -1, 0), TermID: termID, Status: hpc.EvaluationSubmitted},
		{ID: "e2", StudentID: studentID, ParameterID: paramCre, EvaluatorID: "t1", EvaluatorRole: hpc.RoleTeacher,
			Score: 2, Remark: "reluctant to try open-ended tasks",
			Confidence: 0.8, Date: fixedNow.AddDate(0, 0, -10), TermID: termID, Status: hpc.EvaluationSubmitted},
	}
	for _, e := range evals {
		if _, err := store.PutEvaluation(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	store.SeedAchievement(hpc.Achievement{StudentID: studentID, Title: "Math Olympiad - School Round", Category: "academic", Points: 10})
	store.SeedReflection(hpc.Reflection{StudentID: studentID, TermID: termID, Type: "term_end",
		Content: "I want to get better at drawing", Goals: []string{"Finish one sketch every week"}})
}

func newTestService(store *hpc.MemoryStore, opts ...hpc.Option) *hpc.Service {
	base := []hpc.Option{
		hpc.WithClock(func() time.Time { return fixedNow }),
		hpc.WithAcademicYear("2025-26"),
		hpc.WithDirectory(&fakeDirectory{
			teacherID:   "teacher-1",
			principalID: "principal-1",
			names:       map[string]string{"t1": "Ms. Rao"},
		}),
	}
	return hpc.NewService(store, append(base, opts...)...)
}

func TestCompileReport(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	seedCompileData(t, store)
	svc := newTestService(store)

	report, err := svc.CompileReport(ctx, studentID, termID, "admin-1")
	if err != nil {
		t.Fatal(err)
	}

	// (4.0*2 + 2.0*1) / 3
	if !almostEqual(report.OverallScore, 10.0/3.0) {
		t.Errorf("overall score = %v, want %v", report.OverallScore, 10.0/3.0)
	}
	if report.OverallGrade != "B" {
		t.Errorf("overall grade = %q, want B", report.OverallGrade)
	}
	if report.Status != hpc.ReportDraft {
		t.Errorf("status = %s, want draft", report.Status)
	}
	if report.Version != 1 {
		t.Errorf("version = %d, want 1", report.Version)
	}

	sum := report.Summary
	if sum.StudentInfo.Name != "Anil Kumar" || sum.StudentInfo.AcademicYear != "2025-26" {
		t.Errorf("student info = %+v", sum.StudentInfo)
	}
	if sum.Evaluation.ParametersEvaluated != 2 {
		t.Errorf("parameters evaluated = %d", sum.Evaluation.ParametersEvaluated)
	}
	if len(sum.Strengths) != 1 || sum.Strengths[0] != "Mathematics" {
		t.Errorf("strengths = %v", sum.Strengths)
	}
	if len(sum.GrowthAreas) != 1 || sum.GrowthAreas[0] != "Creativity & Innovation" {
		t.Errorf("growth areas = %v", sum.GrowthAreas)
	}

	math := sum.Parameters[paramMath]
	if math.Grade != "A" || math.RubricLevel == nil || math.RubricLevel.Descriptor != "Solves multi-step problems independently" {
		t.Errorf("math result = %+v", math)
	}
	if got := math.Stakeholders[hpc.RoleTeacher].Evaluations[0].EvaluatorName; got != "Ms. Rao" {
		t.Errorf("evaluator name = %q", got)
	}

	if len(sum.Recommendations) == 0 || !strings.Contains(sum.Recommendations[0], "mathematics") {
		t.Errorf("recommendations = %v", sum.Recommendations)
	}
	if len(sum.NextSteps) == 0 || sum.NextSteps[0] != "Finish one sketch every week" {
		t.Errorf("next steps = %v (reflection goals must come first)", sum.NextSteps)
	}
	if len(sum.Achievements) != 1 || len(sum.Reflections) != 1 {
		t.Errorf("achievements/reflections = %d/%d", len(sum.Achievements), len(sum.Reflections))
	}

	q := sum.Metadata.Quality
	if !almostEqual(q.Completeness, 100) {
		t.Errorf("completeness = %v", q.Completeness)
	}
	if !almostEqual(q.EvidenceRichness, 50) {
		t.Errorf("evidence richness = %v", q.EvidenceRichness)
	}
	if !almostEqual(q.AverageConfidence, 0.85) {
		t.Errorf("average confidence = %v", q.AverageConfidence)
	}
	if sum.Metadata.Sources.TotalEvaluations != 2 {
		t.Errorf("total evaluations = %d", sum.Metadata.Sources.TotalEvaluations)
	}
}

func TestCompileReportExcludesUnevaluatedParameter(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	seedCompileData(t, store)
	store.SeedParameter(hpc.Parameter{
		ID: "p-fit", Name: "Physical Fitness & Health", Category: hpc.CategoryCoScholastic,
		Weightage: 1, Grades: []string{"5"}, Active: true,
	})
	svc := newTestService(store)

	report, err := svc.CompileReport(ctx, studentID, termID, "admin-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := report.Summary.Parameters["p-fit"]; ok {
		t.Fatal("parameter without evaluations must be excluded, not scored 0")
	}
	// overall unchanged by the silent parameter
	if !almostEqual(report.OverallScore, 10.0/3.0) {
		t.Errorf("overall score = %v", report.OverallScore)
	}
	if got := report.Summary.Metadata.Quality.Completeness; !almostEqual(got, 200.0/3.0) {
		t.Errorf("completeness = %v, want 2 of 3", got)
	}
}

func TestCompileReportVersioning(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	seedCompileData(t, store)
	svc := newTestService(store)

	r1, err := svc.CompileReport(ctx, studentID, termID, "admin-1")
	if err != nil {
		t.Fatal(err)
	}
	r2, err := svc.CompileReport(ctx, studentID, termID, "admin-1")
	if err != nil {
		t.Fatal(err)
	}
	if r1.Version != 1 || r2.Version != 2 {
		t.Fatalf("versions = %d, %d", r1.Version, r2.Version)
	}
	if r1.ID == r2.ID {
		t.Fatal("recompile must create a new report")
	}
}

func TestCompileReportRefusesPublished(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	seedCompileData(t, store)
	svc := newTestService(store)

	r, err := svc.CompileReport(ctx, studentID, termID, "admin-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetReportStatus(ctx, r.ID, []hpc.ReportStatus{hpc.ReportDraft}, hpc.ReportPublished, "principal-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompileReport(ctx, studentID, termID, "admin-1"); !errors.Is(err, hpc.ErrReportPublished) {
		t.Fatalf("err = %v, want ErrReportPublished", err)
	}
}

// failingStore injects one read failure into an otherwise healthy store.
type failingStore struct {
	*hpc.MemoryStore
}

func (f *failingStore) Achievements(context.Context, string) ([]hpc.Achievement, error) {
	return nil, fmt.Errorf("connection reset")
}

func TestCompileReportAbortsOnReadFailure(t *testing.T) {
	ctx := context.Background()
	mem := hpc.NewMemoryStore()
	seedCompileData(t, mem)
	svc := hpc.NewService(&failingStore{mem}, hpc.WithClock(func() time.Time { return fixedNow }))

	if _, err := svc.CompileReport(ctx, studentID, termID, "admin-1"); err == nil {
		t.Fatal("expected compile failure")
	}
	reports, err := mem.StudentReports(ctx, studentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 0 {
		t.Fatalf("no partial report may be written, found %d", len(reports))
	}
}

func TestBulkCompile(t *testing.T) {
	ctx := context.Background()
	store := hpc.NewMemoryStore()
	seedCompileData(t, store)
	svc := newTestService(store)

	res := svc.BulkCompile(ctx, []string{studentID, "ghost"}, termID, "admin-1")
	if res.Successful != 1 || res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "ghost") {
		t.Fatalf("errors = %v", res.Errors)
	}
	reports, err := store.StudentReports(ctx, studentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("good student must still be compiled, got %d reports", len(reports))
	}
}
