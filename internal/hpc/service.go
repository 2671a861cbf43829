package hpc

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Service drives the progress-card pipeline: evaluation intake, report
// compilation, the approval workflow, publication and analytics.
type Service struct {
	store    Store
	dir      Directory
	notifier Notifier
	exporter Exporter

	now          func() time.Time
	stepDueDays  []int // due-date offset per workflow step, in days
	academicYear string
}

type Option func(*Service)

func WithDirectory(d Directory) Option      { return func(s *Service) { s.dir = d } }
func WithNotifier(n Notifier) Option        { return func(s *Service) { s.notifier = n } }
func WithExporter(e Exporter) Option        { return func(s *Service) { s.exporter = e } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithStepDueDays(days []int) Option     { return func(s *Service) { s.stepDueDays = days } }
func WithAcademicYear(y string) Option      { return func(s *Service) { s.academicYear = y } }

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		now:          time.Now,
		stepDueDays:  []int{3, 7},
		academicYear: defaultAcademicYear(time.Now()),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// defaultAcademicYear renders e.g. "2025-26" with the year rolling over in
// April, the usual Indian school-year boundary.
func defaultAcademicYear(now time.Time) string {
	y := now.Year()
	if now.Month() < time.April {
		y--
	}
	return fmt.Sprintf("%d-%02d", y, (y+1)%100)
}

// SubmitEvaluation validates and persists one evaluation as submitted.
// Validation errors reject the submission; warnings are returned with the
// stored record.
func (s *Service) SubmitEvaluation(ctx context.Context, e Evaluation) (Evaluation, Validation, error) {
	v := ValidateEvaluation(e)
	if !v.Valid {
		return Evaluation{}, v, NewValidationError("evaluation rejected", v.Errors...)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Date.IsZero() {
		e.Date = s.now().UTC()
	}
	e.Grade, _ = NormalizeScore(e.Score)
	e.Status = EvaluationSubmitted
	stored, err := s.store.PutEvaluation(ctx, e)
	if err != nil {
		return Evaluation{}, v, err
	}
	return stored, v, nil
}

// ListEvaluations returns all evaluations for a student/term, newest first.
func (s *Service) ListEvaluations(ctx context.Context, studentID, termID string) ([]Evaluation, error) {
	evals, err := s.store.ListEvaluations(ctx, studentID, termID)
	if err != nil {
		return nil, err
	}
	sort.Slice(evals, func(i, j int) bool { return evals[i].Date.After(evals[j].Date) })
	return evals, nil
}

// PutAssignments replaces a parameter's role weights after checking the
// sum-to-one invariant.
func (s *Service) PutAssignments(ctx context.Context, parameterID string, assignments []Assignment) error {
	for i := range assignments {
		assignments[i].ParameterID = parameterID
	}
	if err := ValidateAssignments(assignments); err != nil {
		return NewValidationError("invalid role weights", err.Error())
	}
	return s.store.PutAssignments(ctx, parameterID, assignments)
}

// GetReport returns a report together with the steps of its latest workflow
// round, if any.
func (s *Service) GetReport(ctx context.Context, reportID string) (Report, []ApprovalStep, error) {
	r, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return Report{}, nil, err
	}
	round, err := s.store.LatestRound(ctx, reportID)
	if err != nil {
		return Report{}, nil, err
	}
	if round == 0 {
		return r, nil, nil
	}
	steps, err := s.store.ReportSteps(ctx, reportID, round)
	if err != nil {
		return Report{}, nil, err
	}
	return r, steps, nil
}

// StudentReports returns a student's reports, newest first.
func (s *Service) StudentReports(ctx context.Context, studentID string) ([]Report, error) {
	return s.store.StudentReports(ctx, studentID)
}

// StudentAnalytics returns stored analytics records, newest first. Empty
// termID means all terms.
func (s *Service) StudentAnalytics(ctx context.Context, studentID, termID string) ([]AnalyticsRecord, error) {
	return s.store.StudentAnalytics(ctx, studentID, termID)
}

// Export asks the external exporter to render a report. A missing exporter
// or a render failure is reported to the caller but changes no state.
func (s *Service) Export(ctx context.Context, reportID, language string) (DocumentRef, error) {
	if s.exporter == nil {
		return DocumentRef{}, fmt.Errorf("no exporter configured")
	}
	if _, err := s.store.GetReport(ctx, reportID); err != nil {
		return DocumentRef{}, err
	}
	ref, err := s.exporter.Render(ctx, reportID, language)
	if err != nil {
		log.Printf("hpc: export of report %s failed: %v", reportID, err)
		return DocumentRef{}, err
	}
	return ref, nil
}
