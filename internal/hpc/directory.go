package hpc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLDirectory resolves approver and evaluator identities from the shared
// user_profiles table.
type SQLDirectory struct {
	db *sql.DB
}

func NewSQLDirectory(db *sql.DB) *SQLDirectory {
	return &SQLDirectory{db: db}
}

// ClassTeacher returns the teacher mapped as class teacher of grade-section.
// When no mapping exists it falls back to any teacher profile; the fallback
// flag lets callers log the soft-error path.
func (d *SQLDirectory) ClassTeacher(ctx context.Context, grade, section string) (string, bool, error) {
	var id string
	err := d.db.QueryRowContext(ctx, `SELECT id FROM user_profiles
		WHERE role='teacher' AND class_teacher_of=$1 LIMIT 1`, grade+"-"+section).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, err
	}
	err = d.db.QueryRowContext(ctx, `SELECT id FROM user_profiles WHERE role='teacher' LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("no teacher profile available")
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// Principal returns any admin profile; the platform does not model a
// dedicated principal role.
func (d *SQLDirectory) Principal(ctx context.Context) (string, error) {
	var id string
	err := d.db.QueryRowContext(ctx, `SELECT id FROM user_profiles WHERE role='admin' LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no admin profile available")
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (d *SQLDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT id,full_name FROM user_profiles WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := d.db.QueryContext(ctx, query, anySlice(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}
