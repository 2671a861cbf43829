package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:hpc.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/hpc?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS user_profiles (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  role TEXT NOT NULL,
  current_standard TEXT NOT NULL DEFAULT '',
  section TEXT NOT NULL DEFAULT '',
  admission_number TEXT NOT NULL DEFAULT '',
  class_teacher_of TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS hpc_parameters (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  sub_category TEXT NOT NULL DEFAULT '',
  weightage REAL NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  code TEXT NOT NULL DEFAULT '',
  grades_json TEXT NOT NULL DEFAULT '[]',
  evaluation_frequency TEXT NOT NULL DEFAULT 'periodic',
  active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS hpc_rubrics (
  id TEXT PRIMARY KEY,
  parameter_id TEXT NOT NULL REFERENCES hpc_parameters(id),
  level TEXT NOT NULL,
  descriptor TEXT NOT NULL,
  detail TEXT NOT NULL DEFAULT '',
  examples_json TEXT NOT NULL DEFAULT '[]',
  indicators_json TEXT NOT NULL DEFAULT '[]',
  version INTEGER NOT NULL DEFAULT 1,
  active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS hpc_evaluations (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  parameter_id TEXT NOT NULL REFERENCES hpc_parameters(id),
  evaluator_id TEXT NOT NULL,
  evaluator_role TEXT NOT NULL,
  score REAL NOT NULL,
  grade TEXT NOT NULL,
  remark TEXT NOT NULL DEFAULT '',
  evidence_note TEXT NOT NULL DEFAULT '',
  confidence REAL NOT NULL DEFAULT 1,
  evaluation_date INTEGER NOT NULL,
  term_id TEXT NOT NULL,
  status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evals_student_term ON hpc_evaluations(student_id, term_id, status);

CREATE TABLE IF NOT EXISTS hpc_parameter_assignments (
  parameter_id TEXT NOT NULL REFERENCES hpc_parameters(id),
  evaluator_role TEXT NOT NULL,
  weightage REAL NOT NULL,
  PRIMARY KEY (parameter_id, evaluator_role)
);

CREATE TABLE IF NOT EXISTS hpc_achievements (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  title TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  date_achieved INTEGER NOT NULL,
  points_awarded INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS hpc_reflections (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  term_id TEXT NOT NULL,
  reflection_type TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL DEFAULT '',
  goals_json TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS hpc_reports (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  term_id TEXT NOT NULL,
  overall_score REAL NOT NULL,
  overall_grade TEXT NOT NULL,
  summary_json TEXT NOT NULL,
  status TEXT NOT NULL,
  compiled_at INTEGER NOT NULL,
  compiled_by TEXT NOT NULL,
  approved_at INTEGER,
  approved_by TEXT NOT NULL DEFAULT '',
  published_at INTEGER,
  version INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_reports_student_term ON hpc_reports(student_id, term_id);
CREATE INDEX IF NOT EXISTS idx_reports_term ON hpc_reports(term_id);

CREATE TABLE IF NOT EXISTS hpc_approval_steps (
  id TEXT PRIMARY KEY,
  report_id TEXT NOT NULL REFERENCES hpc_reports(id),
  round INTEGER NOT NULL DEFAULT 1,
  step_number INTEGER NOT NULL,
  approver_role TEXT NOT NULL,
  approver_id TEXT NOT NULL,
  due_date INTEGER NOT NULL,
  status TEXT NOT NULL,
  assigned_at INTEGER,
  approved_at INTEGER,
  comments TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_steps_report_round ON hpc_approval_steps(report_id, round);

CREATE TABLE IF NOT EXISTS hpc_analytics (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  term_id TEXT NOT NULL,
  report_id TEXT NOT NULL REFERENCES hpc_reports(id),
  class_percentile INTEGER NOT NULL,
  grade_percentile INTEGER NOT NULL,
  school_percentile INTEGER NOT NULL,
  growth_trajectory TEXT NOT NULL,
  predicted_next_score REAL NOT NULL,
  confidence_low REAL NOT NULL,
  confidence_high REAL NOT NULL,
  strengths_json TEXT NOT NULL DEFAULT '[]',
  growth_areas_json TEXT NOT NULL DEFAULT '[]',
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analytics_student ON hpc_analytics(student_id, term_id);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS user_profiles (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  role TEXT NOT NULL,
  current_standard TEXT NOT NULL DEFAULT '',
  section TEXT NOT NULL DEFAULT '',
  admission_number TEXT NOT NULL DEFAULT '',
  class_teacher_of TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS hpc_parameters (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  sub_category TEXT NOT NULL DEFAULT '',
  weightage DOUBLE PRECISION NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  code TEXT NOT NULL DEFAULT '',
  grades_json TEXT NOT NULL DEFAULT '[]',
  evaluation_frequency TEXT NOT NULL DEFAULT 'periodic',
  active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS hpc_rubrics (
  id TEXT PRIMARY KEY,
  parameter_id TEXT NOT NULL REFERENCES hpc_parameters(id),
  level TEXT NOT NULL,
  descriptor TEXT NOT NULL,
  detail TEXT NOT NULL DEFAULT '',
  examples_json TEXT NOT NULL DEFAULT '[]',
  indicators_json TEXT NOT NULL DEFAULT '[]',
  version INTEGER NOT NULL DEFAULT 1,
  active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS hpc_evaluations (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  parameter_id TEXT NOT NULL REFERENCES hpc_parameters(id),
  evaluator_id TEXT NOT NULL,
  evaluator_role TEXT NOT NULL,
  score DOUBLE PRECISION NOT NULL,
  grade TEXT NOT NULL,
  remark TEXT NOT NULL DEFAULT '',
  evidence_note TEXT NOT NULL DEFAULT '',
  confidence DOUBLE PRECISION NOT NULL DEFAULT 1,
  evaluation_date BIGINT NOT NULL,
  term_id TEXT NOT NULL,
  status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evals_student_term ON hpc_evaluations(student_id, term_id, status);

CREATE TABLE IF NOT EXISTS hpc_parameter_assignments (
  parameter_id TEXT NOT NULL REFERENCES hpc_parameters(id),
  evaluator_role TEXT NOT NULL,
  weightage DOUBLE PRECISION NOT NULL,
  PRIMARY KEY (parameter_id, evaluator_role)
);

CREATE TABLE IF NOT EXISTS hpc_achievements (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  title TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  date_achieved BIGINT NOT NULL,
  points_awarded INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS hpc_reflections (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  term_id TEXT NOT NULL,
  reflection_type TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL DEFAULT '',
  goals_json TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS hpc_reports (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  term_id TEXT NOT NULL,
  overall_score DOUBLE PRECISION NOT NULL,
  overall_grade TEXT NOT NULL,
  summary_json TEXT NOT NULL,
  status TEXT NOT NULL,
  compiled_at BIGINT NOT NULL,
  compiled_by TEXT NOT NULL,
  approved_at BIGINT,
  approved_by TEXT NOT NULL DEFAULT '',
  published_at BIGINT,
  version INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_reports_student_term ON hpc_reports(student_id, term_id);
CREATE INDEX IF NOT EXISTS idx_reports_term ON hpc_reports(term_id);

CREATE TABLE IF NOT EXISTS hpc_approval_steps (
  id TEXT PRIMARY KEY,
  report_id TEXT NOT NULL REFERENCES hpc_reports(id),
  round INTEGER NOT NULL DEFAULT 1,
  step_number INTEGER NOT NULL,
  approver_role TEXT NOT NULL,
  approver_id TEXT NOT NULL,
  due_date BIGINT NOT NULL,
  status TEXT NOT NULL,
  assigned_at BIGINT,
  approved_at BIGINT,
  comments TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_steps_report_round ON hpc_approval_steps(report_id, round);

CREATE TABLE IF NOT EXISTS hpc_analytics (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  term_id TEXT NOT NULL,
  report_id TEXT NOT NULL REFERENCES hpc_reports(id),
  class_percentile INTEGER NOT NULL,
  grade_percentile INTEGER NOT NULL,
  school_percentile INTEGER NOT NULL,
  growth_trajectory TEXT NOT NULL,
  predicted_next_score DOUBLE PRECISION NOT NULL,
  confidence_low DOUBLE PRECISION NOT NULL,
  confidence_high DOUBLE PRECISION NOT NULL,
  strengths_json TEXT NOT NULL DEFAULT '[]',
  growth_areas_json TEXT NOT NULL DEFAULT '[]',
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analytics_student ON hpc_analytics(student_id, term_id);
`
