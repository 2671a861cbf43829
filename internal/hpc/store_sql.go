package hpc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLStore implements Store over database/sql (sqlite or postgres).
// Structured report bodies and string lists ride in JSON columns, the same
// convention the rest of the platform uses for nested payloads.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutEvaluation(ctx context.Context, e Evaluation) (Evaluation, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO hpc_evaluations
		(id,student_id,parameter_id,evaluator_id,evaluator_role,score,grade,remark,evidence_note,confidence,evaluation_date,term_id,status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		e.ID, e.StudentID, e.ParameterID, e.EvaluatorID, string(e.EvaluatorRole), e.Score, e.Grade,
		e.Remark, e.EvidenceNote, e.Confidence, e.Date.Unix(), e.TermID, string(e.Status))
	if err != nil {
		return Evaluation{}, err
	}
	return e, nil
}

const evalCols = `id,student_id,parameter_id,evaluator_id,evaluator_role,score,grade,remark,evidence_note,confidence,evaluation_date,term_id,status`

func (s *SQLStore) SubmittedEvaluations(ctx context.Context, studentID, termID string) ([]Evaluation, error) {
	return s.queryEvaluations(ctx, `SELECT `+evalCols+` FROM hpc_evaluations
		WHERE student_id=$1 AND term_id=$2 AND status='submitted' ORDER BY evaluation_date`, studentID, termID)
}

func (s *SQLStore) ListEvaluations(ctx context.Context, studentID, termID string) ([]Evaluation, error) {
	return s.queryEvaluations(ctx, `SELECT `+evalCols+` FROM hpc_evaluations
		WHERE student_id=$1 AND term_id=$2 ORDER BY evaluation_date DESC`, studentID, termID)
}

func (s *SQLStore) queryEvaluations(ctx context.Context, query string, args ...any) ([]Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Evaluation
	for rows.Next() {
		var e Evaluation
		var role, status string
		var date int64
		if err := rows.Scan(&e.ID, &e.StudentID, &e.ParameterID, &e.EvaluatorID, &role, &e.Score, &e.Grade,
			&e.Remark, &e.EvidenceNote, &e.Confidence, &date, &e.TermID, &status); err != nil {
			return nil, err
		}
		e.EvaluatorRole = EvaluatorRole(role)
		e.Status = EvaluationStatus(status)
		e.Date = time.Unix(date, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) ActiveParameters(ctx context.Context, grade string) ([]Parameter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,category,sub_category,weightage,description,code,grades_json,evaluation_frequency,active
		FROM hpc_parameters WHERE active=`+boolLit(true)+` ORDER BY category, weightage DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Parameter
	for rows.Next() {
		var p Parameter
		var cat, freq, gradesJSON string
		if err := rows.Scan(&p.ID, &p.Name, &cat, &p.SubCategory, &p.Weightage, &p.Description, &p.Code, &gradesJSON, &freq, &p.Active); err != nil {
			return nil, err
		}
		p.Category = Category(cat)
		p.Frequency = Frequency(freq)
		if err := json.Unmarshal([]byte(gradesJSON), &p.Grades); err != nil {
			return nil, fmt.Errorf("parameter %s grades: %w", p.ID, err)
		}
		for _, g := range p.Grades {
			if g == grade {
				out = append(out, p)
				break
			}
		}
	}
	return out, rows.Err()
}

func (s *SQLStore) ActiveRubrics(ctx context.Context, parameterIDs []string) ([]Rubric, error) {
	if len(parameterIDs) == 0 {
		return nil, nil
	}
	query := `SELECT id,parameter_id,level,descriptor,detail,examples_json,indicators_json,version,active
		FROM hpc_rubrics WHERE active=` + boolLit(true) + ` AND parameter_id IN (` + placeholders(len(parameterIDs)) + `)`
	rows, err := s.db.QueryContext(ctx, query, anySlice(parameterIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Rubric
	for rows.Next() {
		var r Rubric
		var examplesJSON, indicatorsJSON string
		if err := rows.Scan(&r.ID, &r.ParameterID, &r.Level, &r.Descriptor, &r.Detail, &examplesJSON, &indicatorsJSON, &r.Version, &r.Active); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(examplesJSON), &r.Examples); err != nil {
			return nil, fmt.Errorf("rubric %s examples: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(indicatorsJSON), &r.Indicators); err != nil {
			return nil, fmt.Errorf("rubric %s indicators: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Assignments(ctx context.Context, parameterIDs []string) ([]Assignment, error) {
	if len(parameterIDs) == 0 {
		return nil, nil
	}
	query := `SELECT parameter_id,evaluator_role,weightage FROM hpc_parameter_assignments
		WHERE parameter_id IN (` + placeholders(len(parameterIDs)) + `)`
	rows, err := s.db.QueryContext(ctx, query, anySlice(parameterIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Assignment
	for rows.Next() {
		var a Assignment
		var role string
		if err := rows.Scan(&a.ParameterID, &role, &a.Weight); err != nil {
			return nil, err
		}
		a.Role = EvaluatorRole(role)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutAssignments(ctx context.Context, parameterID string, assignments []Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM hpc_parameter_assignments WHERE parameter_id=$1`, parameterID); err != nil {
		return err
	}
	for _, a := range assignments {
		if _, err := tx.ExecContext(ctx, `INSERT INTO hpc_parameter_assignments (parameter_id,evaluator_role,weightage) VALUES ($1,$2,$3)`,
			parameterID, string(a.Role), a.Weight); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Achievements(ctx context.Context, studentID string) ([]Achievement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,student_id,title,category,date_achieved,points_awarded
		FROM hpc_achievements WHERE student_id=$1 ORDER BY date_achieved DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Achievement
	for rows.Next() {
		var a Achievement
		var date int64
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Title, &a.Category, &date, &a.Points); err != nil {
			return nil, err
		}
		a.Date = time.Unix(date, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) Reflections(ctx context.Context, studentID, termID string) ([]Reflection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,student_id,term_id,reflection_type,content,goals_json
		FROM hpc_reflections WHERE student_id=$1 AND term_id=$2`, studentID, termID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Reflection
	for rows.Next() {
		var r Reflection
		var goalsJSON string
		if err := rows.Scan(&r.ID, &r.StudentID, &r.TermID, &r.Type, &r.Content, &goalsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(goalsJSON), &r.Goals); err != nil {
			return nil, fmt.Errorf("reflection %s goals: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) StudentProfile(ctx context.Context, studentID string) (StudentProfile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,full_name,current_standard,section,admission_number
		FROM user_profiles WHERE id=$1`, studentID)
	var p StudentProfile
	if err := row.Scan(&p.ID, &p.FullName, &p.Grade, &p.Section, &p.AdmissionNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StudentProfile{}, ErrNotFound
		}
		return StudentProfile{}, err
	}
	return p, nil
}

func (s *SQLStore) InsertReport(ctx context.Context, r Report) (Report, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	summaryJSON, err := json.Marshal(r.Summary)
	if err != nil {
		return Report{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO hpc_reports
		(id,student_id,term_id,overall_score,overall_grade,summary_json,status,compiled_at,compiled_by,approved_by,version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'',$10)`,
		r.ID, r.StudentID, r.TermID, r.OverallScore, r.OverallGrade, string(summaryJSON),
		string(r.Status), r.CompiledAt.Unix(), r.CompiledBy, r.Version)
	if err != nil {
		return Report{}, err
	}
	return r, nil
}

const reportCols = `id,student_id,term_id,overall_score,overall_grade,summary_json,status,compiled_at,compiled_by,approved_at,approved_by,published_at,version`

func (s *SQLStore) GetReport(ctx context.Context, reportID string) (Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportCols+` FROM hpc_reports WHERE id=$1`, reportID)
	r, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	return r, nil
}

func (s *SQLStore) StudentReports(ctx context.Context, studentID string) ([]Report, error) {
	return s.queryReports(ctx, `SELECT `+reportCols+` FROM hpc_reports WHERE student_id=$1 ORDER BY compiled_at DESC`, studentID)
}

func (s *SQLStore) HistoricalReports(ctx context.Context, studentID string) ([]Report, error) {
	return s.queryReports(ctx, `SELECT `+reportCols+` FROM hpc_reports WHERE student_id=$1 ORDER BY compiled_at`, studentID)
}

func (s *SQLStore) queryReports(ctx context.Context, query string, args ...any) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var r Report
	var summaryJSON, status string
	var compiledAt int64
	var approvedAt, publishedAt sql.NullInt64
	if err := row.Scan(&r.ID, &r.StudentID, &r.TermID, &r.OverallScore, &r.OverallGrade, &summaryJSON,
		&status, &compiledAt, &r.CompiledBy, &approvedAt, &r.ApprovedBy, &publishedAt, &r.Version); err != nil {
		return Report{}, err
	}
	r.Status = ReportStatus(status)
	r.CompiledAt = time.Unix(compiledAt, 0).UTC()
	if approvedAt.Valid {
		t := time.Unix(approvedAt.Int64, 0).UTC()
		r.ApprovedAt = &t
	}
	if publishedAt.Valid {
		t := time.Unix(publishedAt.Int64, 0).UTC()
		r.PublishedAt = &t
	}
	if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
		return Report{}, fmt.Errorf("report %s summary: %w", r.ID, err)
	}
	return r, nil
}

func (s *SQLStore) LatestVersion(ctx context.Context, studentID, termID string) (int, ReportStatus, error) {
	row := s.db.QueryRowContext(ctx, `SELECT version,status FROM hpc_reports
		WHERE student_id=$1 AND term_id=$2 ORDER BY version DESC LIMIT 1`, studentID, termID)
	var version int
	var status string
	if err := row.Scan(&version, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", nil
		}
		return 0, "", err
	}
	return version, ReportStatus(status), nil
}

// SetReportStatus is the conditional status flip: the WHERE clause pins the
// current status, so a lost race shows up as zero rows affected.
func (s *SQLStore) SetReportStatus(ctx context.Context, reportID string, from []ReportStatus, to ReportStatus, by string) error {
	if len(from) == 0 {
		return fmt.Errorf("no expected statuses given")
	}
	args := []any{string(to), reportID}
	in := make([]string, 0, len(from))
	for _, f := range from {
		args = append(args, string(f))
		in = append(in, fmt.Sprintf("$%d", len(args)))
	}
	var set string
	switch to {
	case ReportPublished:
		args = append(args, time.Now().Unix(), by)
		set = fmt.Sprintf(", published_at=$%d, approved_at=$%d, approved_by=$%d", len(args)-1, len(args)-1, len(args))
	case ReportApproved:
		args = append(args, time.Now().Unix(), by)
		set = fmt.Sprintf(", approved_at=$%d, approved_by=$%d", len(args)-1, len(args))
	}
	res, err := s.db.ExecContext(ctx, `UPDATE hpc_reports SET status=$1`+set+` WHERE id=$2 AND status IN (`+strings.Join(in, ",")+`)`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) PeerScores(ctx context.Context, termID, excludeStudentID, grade, section string) ([]float64, error) {
	query := `SELECT r.overall_score FROM hpc_reports r
		JOIN user_profiles u ON u.id = r.student_id
		WHERE r.term_id=$1 AND r.student_id<>$2 AND r.status='published'`
	args := []any{termID, excludeStudentID}
	if grade != "" {
		args = append(args, grade)
		query += fmt.Sprintf(" AND u.current_standard=$%d", len(args))
	}
	if section != "" {
		args = append(args, section)
		query += fmt.Sprintf(" AND u.section=$%d", len(args))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []float64
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return nil, err
		}
		out = append(out, score)
	}
	return out, rows.Err()
}

func (s *SQLStore) InsertSteps(ctx context.Context, steps []ApprovalStep) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, st := range steps {
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		var assignedAt any
		if st.AssignedAt != nil {
			assignedAt = st.AssignedAt.Unix()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO hpc_approval_steps
			(id,report_id,round,step_number,approver_role,approver_id,due_date,status,assigned_at,comments)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'')`,
			st.ID, st.ReportID, st.Round, st.StepNumber, st.ApproverRole, st.ApproverID,
			st.DueDate.Unix(), string(st.Status), assignedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const stepCols = `id,report_id,round,step_number,approver_role,approver_id,due_date,status,assigned_at,approved_at,comments`

func (s *SQLStore) GetStep(ctx context.Context, stepID string) (ApprovalStep, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+stepCols+` FROM hpc_approval_steps WHERE id=$1`, stepID)
	st, err := scanStep(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ApprovalStep{}, ErrNotFound
		}
		return ApprovalStep{}, err
	}
	return st, nil
}

func (s *SQLStore) ReportSteps(ctx context.Context, reportID string, round int) ([]ApprovalStep, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+stepCols+` FROM hpc_approval_steps
		WHERE report_id=$1 AND round=$2 ORDER BY step_number`, reportID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ApprovalStep
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func scanStep(row rowScanner) (ApprovalStep, error) {
	var st ApprovalStep
	var status string
	var due int64
	var assignedAt, approvedAt sql.NullInt64
	if err := row.Scan(&st.ID, &st.ReportID, &st.Round, &st.StepNumber, &st.ApproverRole, &st.ApproverID,
		&due, &status, &assignedAt, &approvedAt, &st.Comments); err != nil {
		return ApprovalStep{}, err
	}
	st.Status = StepStatus(status)
	st.DueDate = time.Unix(due, 0).UTC()
	if assignedAt.Valid {
		t := time.Unix(assignedAt.Int64, 0).UTC()
		st.AssignedAt = &t
	}
	if approvedAt.Valid {
		t := time.Unix(approvedAt.Int64, 0).UTC()
		st.ApprovedAt = &t
	}
	return st, nil
}

func (s *SQLStore) LatestRound(ctx context.Context, reportID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(round),0) FROM hpc_approval_steps WHERE report_id=$1`, reportID)
	var round int
	if err := row.Scan(&round); err != nil {
		return 0, err
	}
	return round, nil
}

// ResolveStep flips a step out of pending with a conditional update; a
// concurrent duplicate loses the race and gets ErrStepResolved.
func (s *SQLStore) ResolveStep(ctx context.Context, stepID string, decision Decision, comments string) (ApprovalStep, error) {
	var approvedAt any
	if decision == StepApproved {
		approvedAt = time.Now().Unix()
	}
	res, err := s.db.ExecContext(ctx, `UPDATE hpc_approval_steps
		SET status=$1, approved_at=$2, comments=$3 WHERE id=$4 AND status='pending'`,
		string(decision), approvedAt, comments, stepID)
	if err != nil {
		return ApprovalStep{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ApprovalStep{}, err
	}
	if n == 0 {
		if _, gerr := s.GetStep(ctx, stepID); gerr != nil {
			return ApprovalStep{}, gerr
		}
		return ApprovalStep{}, ErrStepResolved
	}
	return s.GetStep(ctx, stepID)
}

func (s *SQLStore) ActivateStep(ctx context.Context, stepID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE hpc_approval_steps
		SET status='pending', assigned_at=$1 WHERE id=$2 AND status='waiting'`, time.Now().Unix(), stepID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStepResolved
	}
	return nil
}

func (s *SQLStore) InsertAnalytics(ctx context.Context, rec AnalyticsRecord) (AnalyticsRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	strengthsJSON, err := json.Marshal(rec.Strengths)
	if err != nil {
		return AnalyticsRecord{}, err
	}
	growthJSON, err := json.Marshal(rec.GrowthAreas)
	if err != nil {
		return AnalyticsRecord{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO hpc_analytics
		(id,student_id,term_id,report_id,class_percentile,grade_percentile,school_percentile,growth_trajectory,predicted_next_score,confidence_low,confidence_high,strengths_json,growth_areas_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		rec.ID, rec.StudentID, rec.TermID, rec.ReportID, rec.ClassPercentile, rec.GradePercentile, rec.SchoolPercentile,
		string(rec.Trend), rec.PredictedScore, rec.IntervalLow, rec.IntervalHigh, string(strengthsJSON), string(growthJSON), rec.CreatedAt.Unix())
	if err != nil {
		return AnalyticsRecord{}, err
	}
	return rec, nil
}

func (s *SQLStore) StudentAnalytics(ctx context.Context, studentID, termID string) ([]AnalyticsRecord, error) {
	query := `SELECT id,student_id,term_id,report_id,class_percentile,grade_percentile,school_percentile,growth_trajectory,predicted_next_score,confidence_low,confidence_high,strengths_json,growth_areas_json,created_at
		FROM hpc_analytics WHERE student_id=$1`
	args := []any{studentID}
	if termID != "" {
		args = append(args, termID)
		query += " AND term_id=$2"
	}
	query += " ORDER BY created_at DESC"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AnalyticsRecord
	for rows.Next() {
		var rec AnalyticsRecord
		var trend, strengthsJSON, growthJSON string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.TermID, &rec.ReportID, &rec.ClassPercentile, &rec.GradePercentile,
			&rec.SchoolPercentile, &trend, &rec.PredictedScore, &rec.IntervalLow, &rec.IntervalHigh, &strengthsJSON, &growthJSON, &createdAt); err != nil {
			return nil, err
		}
		rec.Trend = Trend(trend)
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		if err := json.Unmarshal([]byte(strengthsJSON), &rec.Strengths); err != nil {
			return nil, fmt.Errorf("analytics %s strengths: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(growthJSON), &rec.GrowthAreas); err != nil {
			return nil, fmt.Errorf("analytics %s growth areas: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// placeholders renders "$1,$2,..." for IN clauses.
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ",")
}

func anySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// boolLit papers over sqlite storing booleans as integers while postgres has
// a real type; both accept these literals.
func boolLit(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}
