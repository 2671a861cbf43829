package hpc

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	strengthThreshold   = 4.0
	growthAreaThreshold = 3.0
)

// compileInputs is everything a compilation reads from the store. The reads
// are independent and fetched concurrently; aggregation starts only once all
// of them have landed.
type compileInputs struct {
	student      StudentProfile
	evaluations  []Evaluation
	parameters   []Parameter
	rubrics      []Rubric
	assignments  []Assignment
	achievements []Achievement
	reflections  []Reflection
}

// CompileReport builds a fresh draft report for one (student, term). Any
// store-read failure aborts the whole compilation; no partial report is
// written. Recompiling a student/term whose latest report is already
// published fails with ErrReportPublished; otherwise the new report
// supersedes the prior one with an incremented version.
func (s *Service) CompileReport(ctx context.Context, studentID, termID, compiledBy string) (Report, error) {
	prevVersion, prevStatus, err := s.store.LatestVersion(ctx, studentID, termID)
	if err != nil {
		return Report{}, err
	}
	if prevVersion > 0 && prevStatus == ReportPublished {
		return Report{}, ErrReportPublished
	}

	in, err := s.collect(ctx, studentID, termID)
	if err != nil {
		return Report{}, err
	}

	names, err := s.evaluatorNames(ctx, in.evaluations)
	if err != nil {
		return Report{}, err
	}

	assignmentsByParam := map[string][]Assignment{}
	for _, a := range in.assignments {
		assignmentsByParam[a.ParameterID] = append(assignmentsByParam[a.ParameterID], a)
	}
	evalsByParam := map[string][]Evaluation{}
	for _, e := range in.evaluations {
		evalsByParam[e.ParameterID] = append(evalsByParam[e.ParameterID], e)
	}

	// Aggregate every applicable parameter that has at least one submitted
	// evaluation. Parameters with none are excluded entirely, not scored 0.
	results := map[string]ParameterResult{}
	var totalWeighted, totalWeight float64
	for _, p := range in.parameters {
		evals := evalsByParam[p.ID]
		if len(evals) == 0 {
			continue
		}
		agg := AggregateParameter(evals, assignmentsByParam[p.ID], names)
		for _, role := range agg.DroppedRoles {
			log.Printf("hpc: parameter %s (%s): role %s has evaluations but no weight assignment; contribution dropped", p.ID, p.Name, role)
		}
		results[p.ID] = ParameterResult{
			ParameterName: p.Name,
			Category:      p.Category,
			Weightage:     p.Weightage,
			Score:         agg.Score,
			Grade:         agg.Grade,
			Stakeholders:  agg.Stakeholders,
			Evidence:      agg.Evidence,
			RubricLevel:   rubricDescriptor(agg.Score, p.ID, in.rubrics),
		}
		totalWeighted += agg.Score * p.Weightage
		totalWeight += p.Weightage
	}

	overall := 0.0
	if totalWeight > 0 {
		overall = totalWeighted / totalWeight
	}
	overallGrade, _ := NormalizeScore(overall)

	var strengths, growthAreas []string
	for _, id := range sortedKeys(results) {
		r := results[id]
		if r.Score >= strengthThreshold {
			strengths = append(strengths, r.ParameterName)
		}
		if r.Score < growthAreaThreshold {
			growthAreas = append(growthAreas, r.ParameterName)
		}
	}

	now := s.now().UTC()
	summary := ReportSummary{
		StudentInfo: StudentInfo{
			Name:            in.student.FullName,
			Grade:           in.student.Grade,
			Section:         in.student.Section,
			AdmissionNumber: in.student.AdmissionNumber,
			AcademicYear:    s.academicYear,
		},
		Evaluation: EvaluationSummary{
			OverallScore:        overall,
			OverallGrade:        overallGrade,
			ParametersEvaluated: len(results),
			Period:              now.Format("January 2006"),
		},
		Parameters:      results,
		Stakeholders:    stakeholderSummary(results),
		Achievements:    achievementEntries(in.achievements),
		Reflections:     reflectionEntries(in.reflections),
		Strengths:       strengths,
		GrowthAreas:     growthAreas,
		Recommendations: Recommendations(strengths, growthAreas),
		NextSteps:       NextSteps(growthAreas, in.reflections),
		Metadata: CompileMetadata{
			CompiledAt: now,
			CompiledBy: compiledBy,
			Sources:    dataSources(in.evaluations, now),
			Quality:    qualityIndicators(in.evaluations, in.parameters),
		},
	}

	report := Report{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		TermID:       termID,
		OverallScore: overall,
		OverallGrade: overallGrade,
		Summary:      summary,
		Status:       ReportDraft,
		CompiledAt:   now,
		CompiledBy:   compiledBy,
		Version:      prevVersion + 1,
	}
	return s.store.InsertReport(ctx, report)
}

// BulkResult tallies a batch compilation.
type BulkResult struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// BulkCompile compiles reports for many students in one term. Per-student
// failures are collected, not fatal to the batch.
func (s *Service) BulkCompile(ctx context.Context, studentIDs []string, termID, compiledBy string) BulkResult {
	var res BulkResult
	for _, id := range studentIDs {
		if _, err := s.CompileReport(ctx, id, termID, compiledBy); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		res.Successful++
	}
	return res
}

// collect fans out the independent compile reads and joins on all of them.
func (s *Service) collect(ctx context.Context, studentID, termID string) (compileInputs, error) {
	var in compileInputs

	student, err := s.store.StudentProfile(ctx, studentID)
	if err != nil {
		return in, fmt.Errorf("student profile: %w", err)
	}
	in.student = student

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		evals, err := s.store.SubmittedEvaluations(gctx, studentID, termID)
		if err != nil {
			return fmt.Errorf("evaluations: %w", err)
		}
		in.evaluations = evals
		return nil
	})
	g.Go(func() error {
		params, err := s.store.ActiveParameters(gctx, student.Grade)
		if err != nil {
			return fmt.Errorf("parameters: %w", err)
		}
		in.parameters = params
		return nil
	})
	g.Go(func() error {
		ach, err := s.store.Achievements(gctx, studentID)
		if err != nil {
			return fmt.Errorf("achievements: %w", err)
		}
		in.achievements = ach
		return nil
	})
	g.Go(func() error {
		refl, err := s.store.Reflections(gctx, studentID, termID)
		if err != nil {
			return fmt.Errorf("reflections: %w", err)
		}
		in.reflections = refl
		return nil
	})
	if err := g.Wait(); err != nil {
		return in, err
	}

	// Rubrics and assignments key off the parameter set, so they follow.
	ids := make([]string, 0, len(in.parameters))
	for _, p := range in.parameters {
		ids = append(ids, p.ID)
	}
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		rubrics, err := s.store.ActiveRubrics(gctx, ids)
		if err != nil {
			return fmt.Errorf("rubrics: %w", err)
		}
		in.rubrics = rubrics
		return nil
	})
	g.Go(func() error {
		assignments, err := s.store.Assignments(gctx, ids)
		if err != nil {
			return fmt.Errorf("assignments: %w", err)
		}
		in.assignments = assignments
		return nil
	})
	if err := g.Wait(); err != nil {
		return in, err
	}
	return in, nil
}

func (s *Service) evaluatorNames(ctx context.Context, evals []Evaluation) (map[string]string, error) {
	if s.dir == nil {
		return map[string]string{}, nil
	}
	seen := map[string]bool{}
	ids := make([]string, 0, len(evals))
	for _, e := range evals {
		if !seen[e.EvaluatorID] {
			seen[e.EvaluatorID] = true
			ids = append(ids, e.EvaluatorID)
		}
	}
	return s.dir.DisplayNames(ctx, ids)
}

func rubricDescriptor(score float64, parameterID string, rubrics []Rubric) *RubricDescriptor {
	grade, _ := NormalizeScore(score)
	for _, r := range rubrics {
		if r.ParameterID == parameterID && r.Level == grade {
			return &RubricDescriptor{
				Level:      r.Level,
				Descriptor: r.Descriptor,
				Detail:     r.Detail,
				Examples:   r.Examples,
			}
		}
	}
	return nil
}

func stakeholderSummary(results map[string]ParameterResult) StakeholderSummary {
	var sum StakeholderSummary
	for _, id := range sortedKeys(results) {
		r := results[id]
		for role, b := range r.Stakeholders {
			remarks := make([]string, 0, len(b.Evaluations))
			for _, e := range b.Evaluations {
				remarks = append(remarks, e.Remark)
			}
			fb := RoleFeedback{Parameter: r.ParameterName, Grade: b.Grade, Remarks: remarks}
			switch role {
			case RoleTeacher:
				sum.Teacher = append(sum.Teacher, fb)
			case RoleParent:
				sum.Parent = append(sum.Parent, fb)
			case RolePeer:
				sum.Peer = append(sum.Peer, fb)
			case RoleSelf:
				sum.Self = append(sum.Self, fb)
			case RoleCounselor, RoleCoach:
				// rendered in the parameter breakdown only
			}
		}
	}
	return sum
}

func achievementEntries(achs []Achievement) []AchievementEntry {
	out := make([]AchievementEntry, 0, len(achs))
	for _, a := range achs {
		out = append(out, AchievementEntry{Title: a.Title, Category: a.Category, Date: a.Date, Points: a.Points})
	}
	return out
}

func reflectionEntries(refls []Reflection) []ReflectionEntry {
	out := make([]ReflectionEntry, 0, len(refls))
	for _, r := range refls {
		out = append(out, ReflectionEntry{Type: r.Type, Content: r.Content, Goals: r.Goals})
	}
	return out
}

func dataSources(evals []Evaluation, now time.Time) DataSources {
	src := DataSources{TotalEvaluations: len(evals), ByRole: map[EvaluatorRole]int{}, PeriodStart: now, PeriodEnd: now}
	for i, e := range evals {
		src.ByRole[e.EvaluatorRole]++
		if i == 0 || e.Date.Before(src.PeriodStart) {
			src.PeriodStart = e.Date
		}
		if i == 0 || e.Date.After(src.PeriodEnd) {
			src.PeriodEnd = e.Date
		}
	}
	return src
}

func qualityIndicators(evals []Evaluation, params []Parameter) QualityIndicators {
	var q QualityIndicators
	if len(evals) > 0 {
		var confSum float64
		withEvidence := 0
		for _, e := range evals {
			confSum += e.Confidence
			if e.EvidenceNote != "" {
				withEvidence++
			}
		}
		q.AverageConfidence = confSum / float64(len(evals))
		q.EvidenceRichness = float64(withEvidence) / float64(len(evals)) * 100
	}
	if len(params) > 0 {
		evaluated := map[string]bool{}
		for _, e := range evals {
			evaluated[e.ParameterID] = true
		}
		q.Completeness = float64(len(evaluated)) / float64(len(params)) * 100
	}
	roles := map[EvaluatorRole]bool{}
	for _, e := range evals {
		roles[e.EvaluatorRole] = true
	}
	expected := []EvaluatorRole{RoleTeacher, RoleParent, RoleSelf}
	covered := 0
	for _, r := range expected {
		if roles[r] {
			covered++
		}
	}
	q.StakeholderCoverage = float64(covered) / float64(len(expected)) * 100
	return q
}

func sortedKeys(m map[string]ParameterResult) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
