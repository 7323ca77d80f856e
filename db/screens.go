package db

import (
	"database/sql"
	"fmt"
)

// GetLiveScreens returns a project's live (non-deleted) screens in sequence order
func GetLiveScreens(projectID string) ([]ScreenRecord, error) {
	rows, err := GetDB().Query(`
		SELECT project_id, filename, position, created_at
		FROM screens
		WHERE project_id = ? AND deleted_at IS NULL
		ORDER BY position
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var screens []ScreenRecord
	for rows.Next() {
		var s ScreenRecord
		if err := rows.Scan(&s.ProjectID, &s.Filename, &s.Position, &s.CreatedAt); err != nil {
			return nil, err
		}
		screens = append(screens, s)
	}
	return screens, rows.Err()
}

// ScreenExists reports whether a filename is attached to a project (live or deleted)
func ScreenExists(projectID, filename string) (bool, error) {
	var n int
	err := GetDB().QueryRow(
		"SELECT COUNT(*) FROM screens WHERE project_id = ? AND filename = ?",
		projectID, filename,
	).Scan(&n)
	return n > 0, err
}

// AppendScreen inserts a screen at the tail of a project's live sequence
func AppendScreen(projectID, filename string) (*ScreenRecord, error) {
	s := &ScreenRecord{
		ProjectID: projectID,
		Filename:  filename,
		CreatedAt: NowMilli(),
	}

	err := Transaction(func(tx *sql.Tx) error {
		var maxPos sql.NullInt64
		if err := tx.QueryRow(
			"SELECT MAX(position) FROM screens WHERE project_id = ? AND deleted_at IS NULL",
			projectID,
		).Scan(&maxPos); err != nil {
			return err
		}
		s.Position = 0
		if maxPos.Valid {
			s.Position = int(maxPos.Int64) + 1
		}

		_, err := tx.Exec(`
			INSERT INTO screens (project_id, filename, position, created_at)
			VALUES (?, ?, ?, ?)
		`, projectID, filename, s.Position, s.CreatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append screen: %w", err)
	}
	return s, nil
}

// ParkedScreen pairs a soft-deleted screen's parked storage name with the
// name it was deleted under
type ParkedScreen struct {
	Parked   string
	Original string
	Position int
}

// SoftDeleteScreens moves the given screens into a deleted batch, parking
// each row under its batch-scoped name. Filenames are a unique key per
// project across live and deleted rows, so parking is what keeps a deleted
// screen's canonical slot free for a later renumbering.
func SoftDeleteScreens(projectID string, batchTS int64, parks []ParkedScreen) error {
	if len(parks) == 0 {
		return fmt.Errorf("no screens to delete")
	}

	err := Transaction(func(tx *sql.Tx) error {
		for _, p := range parks {
			res, err := tx.Exec(`
				UPDATE screens
				SET deleted_at = ?, batch_ts = ?, filename = ?, original_name = ?
				WHERE project_id = ? AND filename = ? AND deleted_at IS NULL
			`, batchTS, batchTS, p.Parked, p.Original, projectID, p.Original)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("screen %q not in live sequence", p.Original)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete screens: %w", err)
	}
	return nil
}

// GetDeletedBatches returns a project's deleted batches, newest first.
// Filenames are the names the screens were deleted under, in their
// original relative order.
func GetDeletedBatches(projectID string) ([]DeletedBatchRecord, error) {
	rows, err := GetDB().Query(`
		SELECT batch_ts, COALESCE(original_name, filename)
		FROM screens
		WHERE project_id = ? AND deleted_at IS NOT NULL
		ORDER BY batch_ts DESC, position
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []DeletedBatchRecord
	for rows.Next() {
		var ts int64
		var filename string
		if err := rows.Scan(&ts, &filename); err != nil {
			return nil, err
		}
		if len(batches) == 0 || batches[len(batches)-1].Timestamp != ts {
			batches = append(batches, DeletedBatchRecord{Timestamp: ts})
		}
		b := &batches[len(batches)-1]
		b.Filenames = append(b.Filenames, filename)
		b.Count++
	}
	return batches, rows.Err()
}

// GetBatchScreens returns a deleted batch's screens in their original
// relative order
func GetBatchScreens(projectID string, batchTS int64) ([]ParkedScreen, error) {
	rows, err := GetDB().Query(`
		SELECT filename, COALESCE(original_name, filename), position
		FROM screens
		WHERE project_id = ? AND batch_ts = ? AND deleted_at IS NOT NULL
		ORDER BY position
	`, projectID, batchTS)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var screens []ParkedScreen
	for rows.Next() {
		var p ParkedScreen
		if err := rows.Scan(&p.Parked, &p.Original, &p.Position); err != nil {
			return nil, err
		}
		screens = append(screens, p)
	}
	return screens, rows.Err()
}

// RestoreBatch returns a deleted batch's screens to the live sequence,
// appending them after the current tail in their original relative order.
// Each rename pairs a parked name with the name the screen comes back
// under; the caller decides those names, deduplicating against live
// screens where an original name has since been recycled.
func RestoreBatch(projectID string, batchTS int64, renames []RenameEntry) error {
	if len(renames) == 0 {
		return fmt.Errorf("batch %d not found", batchTS)
	}

	return Transaction(func(tx *sql.Tx) error {
		var maxPos sql.NullInt64
		if err := tx.QueryRow(
			"SELECT MAX(position) FROM screens WHERE project_id = ? AND deleted_at IS NULL",
			projectID,
		).Scan(&maxPos); err != nil {
			return err
		}
		next := 0
		if maxPos.Valid {
			next = int(maxPos.Int64) + 1
		}

		for i, r := range renames {
			res, err := tx.Exec(`
				UPDATE screens
				SET deleted_at = NULL, batch_ts = NULL, original_name = NULL,
				    filename = ?, position = ?
				WHERE project_id = ? AND filename = ? AND deleted_at IS NOT NULL
			`, r.NewFilename, next+i, projectID, r.OldFilename)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("parked screen %q not found", r.OldFilename)
			}
		}
		return nil
	})
}

// OrderEntry pairs an existing filename with its new 1-based position
type OrderEntry struct {
	OriginalFile string `json:"originalFile"`
	NewIndex     int    `json:"newIndex"`
}

// SaveScreenOrder persists new positions for a project's live screens
// without touching files on disk
func SaveScreenOrder(projectID string, entries []OrderEntry) error {
	return Transaction(func(tx *sql.Tx) error {
		for _, e := range entries {
			res, err := tx.Exec(`
				UPDATE screens SET position = ?
				WHERE project_id = ? AND filename = ? AND deleted_at IS NULL
			`, e.NewIndex, projectID, e.OriginalFile)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("screen %q not in live sequence", e.OriginalFile)
			}
		}
		return nil
	})
}

// RenameEntry records a physical file rename applied by apply-order
type RenameEntry struct {
	OldFilename string
	NewFilename string
	Position    int
}

// ApplyScreenRenames rewrites filenames and positions after a destructive
// apply-order renumbering. All rows update in a single transaction.
func ApplyScreenRenames(projectID string, renames []RenameEntry) error {
	return Transaction(func(tx *sql.Tx) error {
		// Two passes: filenames are a unique key per project, so move every
		// row to a temporary name first to avoid collisions with recycled names.
		for i, r := range renames {
			tmp := fmt.Sprintf(".applying-%d", i)
			if _, err := tx.Exec(`
				UPDATE screens SET filename = ?
				WHERE project_id = ? AND filename = ? AND deleted_at IS NULL
			`, tmp, projectID, r.OldFilename); err != nil {
				return err
			}
		}
		for i, r := range renames {
			tmp := fmt.Sprintf(".applying-%d", i)
			if _, err := tx.Exec(`
				UPDATE screens SET filename = ?, position = ?
				WHERE project_id = ? AND filename = ?
			`, r.NewFilename, r.Position, projectID, tmp); err != nil {
				return err
			}
		}
		return nil
	})
}
