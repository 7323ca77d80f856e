package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// CreateProject inserts a new project and returns its record
func CreateProject(name string) (*ProjectRecord, error) {
	p := &ProjectRecord{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: NowMilli(),
	}

	_, err := GetDB().Exec(
		"INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)",
		p.ID, p.Name, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// GetProject retrieves a project by ID, or nil if it does not exist
func GetProject(id string) (*ProjectRecord, error) {
	var p ProjectRecord
	err := GetDB().QueryRow(
		"SELECT id, name, created_at FROM projects WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns all projects, newest first
func ListProjects() ([]ProjectRecord, error) {
	rows, err := GetDB().Query(
		"SELECT id, name, created_at FROM projects ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []ProjectRecord
	for rows.Next() {
		var p ProjectRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetOnboardingRange returns a project's onboarding range.
// Defaults to {-1,-1} (whole sequence) when unset.
func GetOnboardingRange(projectID string) (*OnboardingRangeRecord, error) {
	r := &OnboardingRangeRecord{Start: -1, End: -1}
	err := GetDB().QueryRow(
		"SELECT start_idx, end_idx FROM onboarding_ranges WHERE project_id = ?",
		projectID,
	).Scan(&r.Start, &r.End)
	if err == sql.ErrNoRows {
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// SaveOnboardingRange upserts a project's onboarding range
func SaveOnboardingRange(projectID string, r OnboardingRangeRecord) error {
	_, err := GetDB().Exec(`
		INSERT INTO onboarding_ranges (project_id, start_idx, end_idx)
		VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			start_idx = excluded.start_idx,
			end_idx = excluded.end_idx
	`, projectID, r.Start, r.End)
	return err
}
