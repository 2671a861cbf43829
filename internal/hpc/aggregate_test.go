package hpc_test

import (
	"math"
	"testing"

	"github.com/vidyalaya/hpc-service/internal/hpc"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAggregateParameterWeighted(t *testing.T) {
	evals := []hpc.Evaluation{
		{EvaluatorID: "t1", EvaluatorRole: hpc.RoleTeacher, Score: 4, Remark: "strong conceptual grasp", EvidenceNote: "worksheet portfolio"},
		{EvaluatorID: "p1", EvaluatorRole: hpc.RoleParent, Score: 3, Remark: "practices at home most days"},
		{EvaluatorID: "s1", EvaluatorRole: hpc.RoleSelf, Score: 5, Remark: "I enjoy solving puzzles"},
	}
	assignments := []hpc.Assignment{
		{Role: hpc.RoleTeacher, Weight: 0.5},
		{Role: hpc.RoleParent, Weight: 0.3},
		{Role: hpc.RoleSelf, Weight: 0.2},
	}
	names := map[string]string{"t1": "Ms. Rao", "p1": "Mr. Kumar", "s1": "Anil Kumar"}

	res := hpc.AggregateParameter(evals, assignments, names)
	if !almostEqual(res.Score, 3.9) {
		t.Fatalf("score = %v, want 3.9", res.Score)
	}
	if res.Grade != "A" {
		t.Fatalf("grade = %q, want A", res.Grade)
	}
	if len(res.Stakeholders) != 3 {
		t.Fatalf("stakeholders = %d, want 3", len(res.Stakeholders))
	}
	tb := res.Stakeholders[hpc.RoleTeacher]
	if tb.Score != 4 || tb.Grade != "A" || len(tb.Evaluations) != 1 {
		t.Errorf("teacher breakdown = %+v", tb)
	}
	if tb.Evaluations[0].EvaluatorName != "Ms. Rao" {
		t.Errorf("evaluator name = %q", tb.Evaluations[0].EvaluatorName)
	}
	if len(res.Evidence) != 1 || res.Evidence[0] != "teacher: worksheet portfolio" {
		t.Errorf("evidence = %v", res.Evidence)
	}
	if len(res.DroppedRoles) != 0 {
		t.Errorf("dropped roles = %v", res.DroppedRoles)
	}
}

func TestAggregateParameterRenormalizesMissingRole(t *testing.T) {
	// parent never evaluated: score is teacher-only, not dragged toward zero
	evals := []hpc.Evaluation{
		{EvaluatorID: "t1", EvaluatorRole: hpc.RoleTeacher, Score: 4},
	}
	assignments := []hpc.Assignment{
		{Role: hpc.RoleTeacher, Weight: 0.6},
		{Role: hpc.RoleParent, Weight: 0.4},
	}
	res := hpc.AggregateParameter(evals, assignments, nil)
	if !almostEqual(res.Score, 4) {
		t.Fatalf("score = %v, want 4", res.Score)
	}
	if _, ok := res.Stakeholders[hpc.RoleParent]; ok {
		t.Fatal("absent role must not appear in breakdown")
	}
}

func TestAggregateParameterAveragesSameRole(t *testing.T) {
	evals := []hpc.Evaluation{
		{EvaluatorID: "t1", EvaluatorRole: hpc.RoleTeacher, Score: 3},
		{EvaluatorID: "t2", EvaluatorRole: hpc.RoleTeacher, Score: 5},
	}
	assignments := []hpc.Assignment{{Role: hpc.RoleTeacher, Weight: 1}}
	res := hpc.AggregateParameter(evals, assignments, nil)
	if !almostEqual(res.Score, 4) {
		t.Fatalf("score = %v, want 4", res.Score)
	}
	if len(res.Stakeholders[hpc.RoleTeacher].Evaluations) != 2 {
		t.Fatalf("expected both teacher evaluations in breakdown")
	}
}

func TestAggregateParameterDropsUnweightedRoles(t *testing.T) {
	evals := []hpc.Evaluation{
		{EvaluatorID: "t1", EvaluatorRole: hpc.RoleTeacher, Score: 4},
		{EvaluatorID: "c1", EvaluatorRole: hpc.RoleCoach, Score: 1},
		{EvaluatorID: "x1", EvaluatorRole: hpc.RolePeer, Score: 1},
	}
	assignments := []hpc.Assignment{{Role: hpc.RoleTeacher, Weight: 1}}
	res := hpc.AggregateParameter(evals, assignments, nil)
	if !almostEqual(res.Score, 4) {
		t.Fatalf("score = %v, want 4 (unweighted roles must not contribute)", res.Score)
	}
	want := []hpc.EvaluatorRole{hpc.RoleCoach, hpc.RolePeer}
	if len(res.DroppedRoles) != 2 || res.DroppedRoles[0] != want[0] || res.DroppedRoles[1] != want[1] {
		t.Fatalf("dropped roles = %v, want %v", res.DroppedRoles, want)
	}
}

func TestAggregateParameterNoEvaluations(t *testing.T) {
	res := hpc.AggregateParameter(nil, []hpc.Assignment{{Role: hpc.RoleTeacher, Weight: 1}}, nil)
	if res.Score != 0 {
		t.Fatalf("score = %v, want 0", res.Score)
	}
	if res.Grade != "D" {
		t.Fatalf("grade = %q", res.Grade)
	}
}
