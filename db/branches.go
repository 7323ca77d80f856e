package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// GetForkPoints returns a project's fork points ordered by index
func GetForkPoints(projectID string) ([]ForkPointRecord, error) {
	rows, err := GetDB().Query(
		"SELECT idx, COALESCE(name, '') FROM fork_points WHERE project_id = ? ORDER BY idx",
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []ForkPointRecord
	for rows.Next() {
		var p ForkPointRecord
		if err := rows.Scan(&p.Index, &p.Name); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// UpsertForkPoint creates or renames a fork point at an index
func UpsertForkPoint(projectID string, index int, name string) error {
	_, err := GetDB().Exec(`
		INSERT INTO fork_points (project_id, idx, name) VALUES (?, ?, ?)
		ON CONFLICT(project_id, idx) DO UPDATE SET name = excluded.name
	`, projectID, index, name)
	return err
}

// DeleteForkPoint removes a fork point at an index
func DeleteForkPoint(projectID string, index int) error {
	_, err := GetDB().Exec(
		"DELETE FROM fork_points WHERE project_id = ? AND idx = ?",
		projectID, index,
	)
	return err
}

// GetMergePoints returns a project's merge point indices in ascending order
func GetMergePoints(projectID string) ([]int, error) {
	rows, err := GetDB().Query(
		"SELECT idx FROM merge_points WHERE project_id = ? ORDER BY idx",
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		points = append(points, idx)
	}
	return points, rows.Err()
}

// InsertMergePoint adds a merge point at an index (no-op if present)
func InsertMergePoint(projectID string, index int) error {
	_, err := GetDB().Exec(`
		INSERT INTO merge_points (project_id, idx) VALUES (?, ?)
		ON CONFLICT(project_id, idx) DO NOTHING
	`, projectID, index)
	return err
}

// DeleteMergePoint removes a merge point at an index
func DeleteMergePoint(projectID string, index int) error {
	_, err := GetDB().Exec(
		"DELETE FROM merge_points WHERE project_id = ? AND idx = ?",
		projectID, index,
	)
	return err
}

// GetBranches returns a project's branches, oldest first
func GetBranches(projectID string) ([]BranchRecord, error) {
	rows, err := GetDB().Query(`
		SELECT id, project_id, name, color, fork_from, merge_to, screens, created_at
		FROM branches
		WHERE project_id = ?
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []BranchRecord
	for rows.Next() {
		var b BranchRecord
		var mergeTo sql.NullInt64
		var screensJSON string
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Name, &b.Color, &b.ForkFrom, &mergeTo, &screensJSON, &b.CreatedAt); err != nil {
			return nil, err
		}
		if mergeTo.Valid {
			v := int(mergeTo.Int64)
			b.MergeTo = &v
		}
		if err := json.Unmarshal([]byte(screensJSON), &b.Screens); err != nil {
			return nil, fmt.Errorf("corrupt screens list for branch %s: %w", b.ID, err)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// InsertBranch materializes a new branch and returns its record
func InsertBranch(projectID, name, color string, forkFrom int, mergeTo *int, screens []int) (*BranchRecord, error) {
	b := &BranchRecord{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		Color:     color,
		ForkFrom:  forkFrom,
		MergeTo:   mergeTo,
		Screens:   screens,
		CreatedAt: NowMilli(),
	}

	screensJSON, err := json.Marshal(screens)
	if err != nil {
		return nil, err
	}

	var mergeVal interface{}
	if mergeTo != nil {
		mergeVal = *mergeTo
	}

	_, err = GetDB().Exec(`
		INSERT INTO branches (id, project_id, name, color, fork_from, merge_to, screens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.ProjectID, b.Name, b.Color, b.ForkFrom, mergeVal, string(screensJSON), b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert branch: %w", err)
	}
	return b, nil
}

// DeleteBranch removes a branch by ID
func DeleteBranch(projectID, branchID string) error {
	_, err := GetDB().Exec(
		"DELETE FROM branches WHERE project_id = ? AND id = ?",
		projectID, branchID,
	)
	return err
}

// ClearBranchData resets a project's fork points, merge points and branches
func ClearBranchData(projectID string) error {
	return Transaction(func(tx *sql.Tx) error {
		for _, table := range []string{"fork_points", "merge_points", "branches"} {
			if _, err := tx.Exec(
				fmt.Sprintf("DELETE FROM %s WHERE project_id = ?", table),
				projectID,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
