package hpc

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrStepResolved    = errors.New("approval step already resolved")
	ErrNotDraft        = errors.New("report is not in draft")
	ErrReportPublished = errors.New("report already published")
)

// Store is the narrow contract the pipeline holds against the evaluation
// store. Reads are scoped exactly to what compilation and analytics need;
// writes cover reports, workflow steps and analytics records only — the
// pipeline never mutates evaluations.
type Store interface {
	// evaluation intake
	PutEvaluation(ctx context.Context, e Evaluation) (Evaluation, error)
	SubmittedEvaluations(ctx context.Context, studentID, termID string) ([]Evaluation, error)
	ListEvaluations(ctx context.Context, studentID, termID string) ([]Evaluation, error)

	// compile reads
	ActiveParameters(ctx context.Context, grade string) ([]Parameter, error)
	ActiveRubrics(ctx context.Context, parameterIDs []string) ([]Rubric, error)
	Assignments(ctx context.Context, parameterIDs []string) ([]Assignment, error)
	PutAssignments(ctx context.Context, parameterID string, assignments []Assignment) error
	Achievements(ctx context.Context, studentID string) ([]Achievement, error)
	Reflections(ctx context.Context, studentID, termID string) ([]Reflection, error)
	StudentProfile(ctx context.Context, studentID string) (StudentProfile, error)

	// reports
	InsertReport(ctx context.Context, r Report) (Report, error)
	GetReport(ctx context.Context, reportID string) (Report, error)
	StudentReports(ctx context.Context, studentID string) ([]Report, error)    // newest first
	HistoricalReports(ctx context.Context, studentID string) ([]Report, error) // oldest first, by compile time
	LatestVersion(ctx context.Context, studentID, termID string) (version int, status ReportStatus, err error)
	// SetReportStatus flips the report's status only if it currently has one
	// of the expected statuses; returns ErrNotFound when no row matches.
	SetReportStatus(ctx context.Context, reportID string, from []ReportStatus, to ReportStatus, by string) error
	// PeerScores returns the overall scores of published peer reports in a
	// term, excluding the student. Empty grade/section widen the pool.
	PeerScores(ctx context.Context, termID string, excludeStudentID string, grade, section string) ([]float64, error)

	// workflow
	InsertSteps(ctx context.Context, steps []ApprovalStep) error
	GetStep(ctx context.Context, stepID string) (ApprovalStep, error)
	ReportSteps(ctx context.Context, reportID string, round int) ([]ApprovalStep, error)
	LatestRound(ctx context.Context, reportID string) (int, error)
	// ResolveStep flips a step out of pending; it must fail with
	// ErrStepResolved when the step is no longer pending so concurrent
	// duplicate approvals lose cleanly.
	ResolveStep(ctx context.Context, stepID string, decision Decision, comments string) (ApprovalStep, error)
	ActivateStep(ctx context.Context, stepID string) error

	// analytics
	InsertAnalytics(ctx context.Context, rec AnalyticsRecord) (AnalyticsRecord, error)
	StudentAnalytics(ctx context.Context, studentID, termID string) ([]AnalyticsRecord, error)
}

// Directory resolves identities for workflow assignment and display.
type Directory interface {
	// ClassTeacher returns the class teacher for a grade/section, falling
	// back to any teacher when no explicit mapping exists. Implementations
	// report the fallback via the returned flag so callers can log it.
	ClassTeacher(ctx context.Context, grade, section string) (id string, fallback bool, err error)
	// Principal returns an admin/principal profile id.
	Principal(ctx context.Context) (string, error)
	// DisplayNames maps user ids to full names; unknown ids are omitted.
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Notifier delivers publish notifications to stakeholders. Best-effort:
// callers log failures and move on.
type Notifier interface {
	ReportPublished(ctx context.Context, reportID string) error
}

// Exporter renders a published report into a shareable document. Treated as
// an external collaborator; failures never affect report state.
type Exporter interface {
	Render(ctx context.Context, reportID, language string) (DocumentRef, error)
}
