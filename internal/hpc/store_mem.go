package hpc

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore backs tests and offline development, with seed hooks for the
// reference data the pipeline only reads. All slices returned are copies;
// callers never share the store's backing arrays.
type MemoryStore struct {
	mu           sync.RWMutex
	parameters   map[string]Parameter
	rubrics      map[string]Rubric
	evaluations  map[string]Evaluation
	assignments  map[string][]Assignment // parameter id -> weights
	achievements map[string][]Achievement
	reflections  map[string][]Reflection
	profiles     map[string]StudentProfile
	reports      map[string]Report
	steps        map[string]ApprovalStep
	analytics    map[string]AnalyticsRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		parameters:   map[string]Parameter{},
		rubrics:      map[string]Rubric{},
		evaluations:  map[string]Evaluation{},
		assignments:  map[string][]Assignment{},
		achievements: map[string][]Achievement{},
		reflections:  map[string][]Reflection{},
		profiles:     map[string]StudentProfile{},
		reports:      map[string]Report{},
		steps:        map[string]ApprovalStep{},
		analytics:    map[string]AnalyticsRecord{},
	}
}

// Seed helpers for reference data the pipeline itself never writes.

func (m *MemoryStore) SeedParameter(p Parameter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.parameters[p.ID] = p
}

func (m *MemoryStore) SeedRubric(r Rubric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.rubrics[r.ID] = r
}

func (m *MemoryStore) SeedProfile(p StudentProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

func (m *MemoryStore) SeedAchievement(a Achievement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.achievements[a.StudentID] = append(m.achievements[a.StudentID], a)
}

func (m *MemoryStore) SeedReflection(r Reflection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.reflections[r.StudentID] = append(m.reflections[r.StudentID], r)
}

func (m *MemoryStore) PutEvaluation(_ context.Context, e Evaluation) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.evaluations[e.ID] = e
	return e, nil
}

func (m *MemoryStore) SubmittedEvaluations(_ context.Context, studentID, termID string) ([]Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Evaluation
	for _, e := range m.evaluations {
		if e.StudentID == studentID && e.TermID == termID && e.Status == EvaluationSubmitted {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListEvaluations(_ context.Context, studentID, termID string) ([]Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Evaluation
	for _, e := range m.evaluations {
		if e.StudentID == studentID && e.TermID == termID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ActiveParameters(_ context.Context, grade string) ([]Parameter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Parameter
	for _, p := range m.parameters {
		if !p.Active {
			continue
		}
		for _, g := range p.Grades {
			if g == grade {
				out = append(out, p)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ActiveRubrics(_ context.Context, parameterIDs []string) ([]Rubric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := map[string]bool{}
	for _, id := range parameterIDs {
		want[id] = true
	}
	var out []Rubric
	for _, r := range m.rubrics {
		if r.Active && want[r.ParameterID] {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Assignments(_ context.Context, parameterIDs []string) ([]Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Assignment
	for _, id := range parameterIDs {
		out = append(out, m.assignments[id]...)
	}
	return out, nil
}

func (m *MemoryStore) PutAssignments(_ context.Context, parameterID string, assignments []Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[parameterID] = append([]Assignment(nil), assignments...)
	return nil
}

func (m *MemoryStore) Achievements(_ context.Context, studentID string) ([]Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Achievement(nil), m.achievements[studentID]...), nil
}

func (m *MemoryStore) Reflections(_ context.Context, studentID, termID string) ([]Reflection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Reflection
	for _, r := range m.reflections[studentID] {
		if r.TermID == termID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) StudentProfile(_ context.Context, studentID string) (StudentProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[studentID]
	if !ok {
		return StudentProfile{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) InsertReport(_ context.Context, r Report) (Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.reports[r.ID] = r
	return r, nil
}

func (m *MemoryStore) GetReport(_ context.Context, reportID string) (Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[reportID]
	if !ok {
		return Report{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) StudentReports(_ context.Context, studentID string) ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Report
	for _, r := range m.reports {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompiledAt.After(out[j].CompiledAt) })
	return out, nil
}

func (m *MemoryStore) HistoricalReports(_ context.Context, studentID string) ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Report
	for _, r := range m.reports {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompiledAt.Before(out[j].CompiledAt) })
	return out, nil
}

func (m *MemoryStore) LatestVersion(_ context.Context, studentID, termID string) (int, ReportStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	version := 0
	var status ReportStatus
	for _, r := range m.reports {
		if r.StudentID == studentID && r.TermID == termID && r.Version > version {
			version = r.Version
			status = r.Status
		}
	}
	return version, status, nil
}

func (m *MemoryStore) SetReportStatus(_ context.Context, reportID string, from []ReportStatus, to ReportStatus, by string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[reportID]
	if !ok {
		return ErrNotFound
	}
	matched := false
	for _, f := range from {
		if r.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return ErrNotFound
	}
	r.Status = to
	now := nowUTC()
	switch to {
	case ReportPublished:
		r.PublishedAt = &now
		r.ApprovedAt = &now
		if by != "" {
			r.ApprovedBy = by
		}
	case ReportApproved:
		r.ApprovedAt = &now
		if by != "" {
			r.ApprovedBy = by
		}
	}
	m.reports[reportID] = r
	return nil
}

func (m *MemoryStore) PeerScores(_ context.Context, termID, excludeStudentID, grade, section string) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []float64
	for _, r := range m.reports {
		if r.TermID != termID || r.StudentID == excludeStudentID || r.Status != ReportPublished {
			continue
		}
		p, ok := m.profiles[r.StudentID]
		if !ok {
			continue
		}
		if grade != "" && p.Grade != grade {
			continue
		}
		if section != "" && p.Section != section {
			continue
		}
		out = append(out, r.OverallScore)
	}
	return out, nil
}

func (m *MemoryStore) InsertSteps(_ context.Context, steps []ApprovalStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range steps {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		m.steps[s.ID] = s
	}
	return nil
}

func (m *MemoryStore) GetStep(_ context.Context, stepID string) (ApprovalStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.steps[stepID]
	if !ok {
		return ApprovalStep{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) ReportSteps(_ context.Context, reportID string, round int) ([]ApprovalStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ApprovalStep
	for _, s := range m.steps {
		if s.ReportID == reportID && s.Round == round {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StepNumber < out[j].StepNumber })
	return out, nil
}

func (m *MemoryStore) LatestRound(_ context.Context, reportID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	round := 0
	for _, s := range m.steps {
		if s.ReportID == reportID && s.Round > round {
			round = s.Round
		}
	}
	return round, nil
}

func (m *MemoryStore) ResolveStep(_ context.Context, stepID string, decision Decision, comments string) (ApprovalStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.steps[stepID]
	if !ok {
		return ApprovalStep{}, ErrNotFound
	}
	if s.Status != StepPending {
		return ApprovalStep{}, ErrStepResolved
	}
	s.Status = decision
	s.Comments = comments
	if decision == StepApproved {
		now := nowUTC()
		s.ApprovedAt = &now
	}
	m.steps[stepID] = s
	return s, nil
}

func (m *MemoryStore) ActivateStep(_ context.Context, stepID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.steps[stepID]
	if !ok {
		return ErrNotFound
	}
	if s.Status != StepWaiting {
		return ErrStepResolved
	}
	s.Status = StepPending
	now := nowUTC()
	s.AssignedAt = &now
	m.steps[stepID] = s
	return nil
}

func (m *MemoryStore) InsertAnalytics(_ context.Context, rec AnalyticsRecord) (AnalyticsRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.analytics[rec.ID] = rec
	return rec, nil
}

func (m *MemoryStore) StudentAnalytics(_ context.Context, studentID, termID string) ([]AnalyticsRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []AnalyticsRecord
	for _, rec := range m.analytics {
		if rec.StudentID != studentID {
			continue
		}
		if termID != "" && rec.TermID != termID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func nowUTC() time.Time { return time.Now().UTC() }
