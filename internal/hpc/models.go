package hpc

import "time"

// Category is the development area a parameter belongs to.
type Category string

const (
	CategoryScholastic   Category = "scholastic"
	CategoryCoScholastic Category = "co_scholastic"
	CategoryLifeSkills   Category = "life_skills"
	CategoryDiscipline   Category = "discipline"
)

// EvaluatorRole is the stakeholder perspective an evaluation comes from.
// Closed set: aggregation and weighting switch over these exhaustively.
type EvaluatorRole string

const (
	RoleTeacher   EvaluatorRole = "teacher"
	RoleParent    EvaluatorRole = "parent"
	RolePeer      EvaluatorRole = "peer"
	RoleSelf      EvaluatorRole = "self"
	RoleCounselor EvaluatorRole = "counselor"
	RoleCoach     EvaluatorRole = "coach"
)

// EvaluatorRoles lists every known role, in display order.
var EvaluatorRoles = []EvaluatorRole{RoleTeacher, RoleParent, RolePeer, RoleSelf, RoleCounselor, RoleCoach}

// KnownRole reports whether r is one of the closed role set.
func KnownRole(r EvaluatorRole) bool {
	switch r {
	case RoleTeacher, RoleParent, RolePeer, RoleSelf, RoleCounselor, RoleCoach:
		return true
	}
	return false
}

type EvaluationStatus string

const (
	EvaluationDraft     EvaluationStatus = "draft"
	EvaluationSubmitted EvaluationStatus = "submitted"
	EvaluationReviewed  EvaluationStatus = "reviewed"
	EvaluationApproved  EvaluationStatus = "approved"
)

type ReportStatus string

const (
	ReportDraft       ReportStatus = "draft"
	ReportUnderReview ReportStatus = "under_review"
	ReportApproved    ReportStatus = "approved"
	ReportPublished   ReportStatus = "published"
)

type StepStatus string

const (
	StepWaiting       StepStatus = "waiting"
	StepPending       StepStatus = "pending"
	StepApproved      StepStatus = "approved"
	StepRejected      StepStatus = "rejected"
	StepNeedsRevision StepStatus = "needs_revision"
)

// Decision is the subset of step statuses an approver may submit.
type Decision = StepStatus

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

type Frequency string

const (
	FrequencyContinuous Frequency = "continuous"
	FrequencyPeriodic   Frequency = "periodic"
	FrequencyAnnual     Frequency = "annual"
)

// Parameter is one scored dimension of student development.
// Immutable once referenced by submitted evaluations.
type Parameter struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	SubCategory string    `json:"sub_category"`
	Weightage   float64   `json:"weightage"` // relative contribution to the overall score
	Description string    `json:"description,omitempty"`
	Code        string    `json:"code,omitempty"` // board reference code (CBSE)
	Grades      []string  `json:"grade_applicability"`
	Frequency   Frequency `json:"evaluation_frequency"`
	Active      bool      `json:"active"`
}

// Rubric describes one grade level of a parameter. Only active rubrics are
// consulted; older versions are kept for history.
type Rubric struct {
	ID          string   `json:"id"`
	ParameterID string   `json:"parameter_id"`
	Level       string   `json:"level"` // grade letter: A+, A, B, C, D
	Descriptor  string   `json:"descriptor"`
	Detail      string   `json:"detailed_description,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	Indicators  []string `json:"indicators,omitempty"`
	Version     int      `json:"version"`
	Active      bool     `json:"active"`
}

// Evaluation is one stakeholder's scored observation of a student on one
// parameter in one term. The pipeline never mutates evaluations.
type Evaluation struct {
	ID            string           `json:"id"`
	StudentID     string           `json:"student_id"`
	ParameterID   string           `json:"parameter_id"`
	EvaluatorID   string           `json:"evaluator_id"`
	EvaluatorRole EvaluatorRole    `json:"evaluator_role"`
	Score         float64          `json:"score"` // 1..5
	Grade         string           `json:"grade"` // derived from Score
	Remark        string           `json:"qualitative_remark"`
	EvidenceNote  string           `json:"evidence_notes,omitempty"`
	Confidence    float64          `json:"confidence_level"` // 0..1
	Date          time.Time        `json:"evaluation_date"`
	TermID        string           `json:"term_id"`
	Status        EvaluationStatus `json:"status"`
}

// Assignment is the expected contribution weight of one evaluator role for
// one parameter. Weights for a parameter must sum to 1.
type Assignment struct {
	ParameterID string        `json:"parameter_id"`
	Role        EvaluatorRole `json:"evaluator_role"`
	Weight      float64       `json:"weightage"`
}

// Achievement is a recorded student accomplishment surfaced in the report.
type Achievement struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date_achieved"`
	Points    int       `json:"points_awarded"`
}

// Reflection is a student's own written reflection for a term, optionally
// with goals they set for themselves.
type Reflection struct {
	ID        string   `json:"id"`
	StudentID string   `json:"student_id"`
	TermID    string   `json:"term_id"`
	Type      string   `json:"reflection_type"`
	Content   string   `json:"content"`
	Goals     []string `json:"goals_set,omitempty"`
}

// StudentProfile is the slice of the directory the pipeline needs.
type StudentProfile struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	Grade           string `json:"current_standard"`
	Section         string `json:"section"`
	AdmissionNumber string `json:"admission_number,omitempty"`
}

// Report is the compiled progress card for one (student, term).
type Report struct {
	ID           string        `json:"id"`
	StudentID    string        `json:"student_id"`
	TermID       string        `json:"term_id"`
	OverallScore float64       `json:"overall_score"`
	OverallGrade string        `json:"overall_grade"`
	Summary      ReportSummary `json:"summary"`
	Status       ReportStatus  `json:"status"`
	CompiledAt   time.Time     `json:"compiled_at"`
	CompiledBy   string        `json:"compiled_by"`
	ApprovedAt   *time.Time    `json:"approved_at,omitempty"`
	ApprovedBy   string        `json:"approved_by,omitempty"`
	PublishedAt  *time.Time    `json:"published_at,omitempty"`
	Version      int           `json:"version"`
}

// ReportSummary is the structured body of a report, stored as JSON.
type ReportSummary struct {
	StudentInfo     StudentInfo                `json:"student_info"`
	Evaluation      EvaluationSummary          `json:"evaluation_summary"`
	Parameters      map[string]ParameterResult `json:"parameter_breakdown"` // keyed by parameter id
	Stakeholders    StakeholderSummary         `json:"stakeholder_summary"`
	Achievements    []AchievementEntry         `json:"achievements"`
	Reflections     []ReflectionEntry          `json:"student_reflections"`
	Strengths       []string                   `json:"strengths_identified"`
	GrowthAreas     []string                   `json:"growth_areas"`
	Recommendations []string                   `json:"recommendations"`
	NextSteps       []string                   `json:"next_steps"`
	Metadata        CompileMetadata            `json:"compiled_metadata"`
}

type StudentInfo struct {
	Name            string `json:"name"`
	Grade           string `json:"grade"`
	Section         string `json:"section"`
	AdmissionNumber string `json:"admission_number,omitempty"`
	AcademicYear    string `json:"academic_year"`
}

type EvaluationSummary struct {
	OverallScore        float64 `json:"overall_score"`
	OverallGrade        string  `json:"overall_grade"`
	ParametersEvaluated int     `json:"total_parameters_evaluated"`
	Period              string  `json:"evaluation_period"`
}

// ParameterResult is the aggregated outcome for one parameter.
type ParameterResult struct {
	ParameterName string                          `json:"parameter_name"`
	Category      Category                        `json:"category"`
	Weightage     float64                         `json:"weightage"`
	Score         float64                         `json:"score"`
	Grade         string                          `json:"grade"`
	Stakeholders  map[EvaluatorRole]RoleBreakdown `json:"stakeholder_feedback"`
	Evidence      []string                        `json:"evidence"`
	RubricLevel   *RubricDescriptor               `json:"rubric_level,omitempty"`
}

// RoleBreakdown is one role's contribution to a parameter result.
type RoleBreakdown struct {
	Score       float64           `json:"score"`
	Grade       string            `json:"grade"`
	Evaluations []EvaluationEntry `json:"evaluations"`
}

type EvaluationEntry struct {
	EvaluatorName string    `json:"evaluator_name"`
	Score         float64   `json:"score"`
	Remark        string    `json:"remark"`
	Confidence    float64   `json:"confidence"`
	Date          time.Time `json:"date"`
}

type RubricDescriptor struct {
	Level      string   `json:"level"`
	Descriptor string   `json:"descriptor"`
	Detail     string   `json:"detailed_description,omitempty"`
	Examples   []string `json:"examples,omitempty"`
}

// StakeholderSummary groups per-parameter feedback by the roles parents and
// teachers actually read in the rendered card.
type StakeholderSummary struct {
	Teacher []RoleFeedback `json:"teacher_feedback"`
	Parent  []RoleFeedback `json:"parent_feedback"`
	Peer    []RoleFeedback `json:"peer_feedback"`
	Self    []RoleFeedback `json:"self_reflections"`
}

type RoleFeedback struct {
	Parameter string   `json:"parameter"`
	Grade     string   `json:"grade"`
	Remarks   []string `json:"remarks"`
}

type AchievementEntry struct {
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Points   int       `json:"points"`
}

type ReflectionEntry struct {
	Type    string   `json:"type"`
	Content string   `json:"content"`
	Goals   []string `json:"goals,omitempty"`
}

type CompileMetadata struct {
	CompiledAt time.Time         `json:"compilation_date"`
	CompiledBy string            `json:"compiled_by"`
	Sources    DataSources       `json:"data_sources"`
	Quality    QualityIndicators `json:"quality_indicators"`
}

// DataSources records where the report's inputs came from.
type DataSources struct {
	TotalEvaluations int                   `json:"total_evaluations"`
	ByRole           map[EvaluatorRole]int `json:"by_role"`
	PeriodStart      time.Time             `json:"period_start"`
	PeriodEnd        time.Time             `json:"period_end"`
}

// QualityIndicators describe how trustworthy the compiled report is.
type QualityIndicators struct {
	AverageConfidence   float64 `json:"average_confidence"`
	Completeness        float64 `json:"completeness_percentage"`    // evaluated / applicable parameters, percent
	StakeholderCoverage float64 `json:"multi_stakeholder_coverage"` // of teacher/parent/self, percent
	EvidenceRichness    float64 `json:"evidence_richness"`          // evaluations with evidence, percent
}

// ApprovalStep is one ordered gate in a report's sign-off sequence.
// Exactly one step per round is pending at any time.
type ApprovalStep struct {
	ID           string     `json:"id"`
	ReportID     string     `json:"report_id"`
	Round        int        `json:"round"` // initiation round; re-initiation starts a new round
	StepNumber   int        `json:"step_number"`
	ApproverRole string     `json:"approver_role"` // class_teacher, principal
	ApproverID   string     `json:"approver_id"`
	DueDate      time.Time  `json:"due_date"`
	Status       StepStatus `json:"status"`
	AssignedAt   *time.Time `json:"assigned_at,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	Comments     string     `json:"comments,omitempty"`
}

// AnalyticsRecord captures comparative standing and growth for one published
// report.
type AnalyticsRecord struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"student_id"`
	TermID           string    `json:"term_id"`
	ReportID         string    `json:"report_id"`
	ClassPercentile  int       `json:"class_percentile"`
	GradePercentile  int       `json:"grade_percentile"`
	SchoolPercentile int       `json:"school_percentile"`
	Trend            Trend     `json:"growth_trajectory"`
	PredictedScore   float64   `json:"predicted_next_score"`
	IntervalLow      float64   `json:"confidence_low"`
	IntervalHigh     float64   `json:"confidence_high"`
	Strengths        []string  `json:"strengths_identified"`
	GrowthAreas      []string  `json:"improvement_areas"`
	CreatedAt        time.Time `json:"created_at"`
}

// DocumentRef points at a rendered export produced by the external exporter.
type DocumentRef struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
