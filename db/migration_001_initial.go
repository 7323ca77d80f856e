package db

import (
	"database/sql"
)

func init() {
	RegisterMigration(Migration{
		Version:     1,
		Description: "Initial schema - projects, screens, branch overlay, settings",
		Up:          migration001_initial,
	})
}

func migration001_initial(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	-- Live screens have deleted_at IS NULL and are ordered by position.
	-- Soft-deleted screens keep their row, grouped by batch_ts, parked
	-- under a batch-scoped filename with the display name in
	-- original_name. Parked names keep the canonical slots free for the
	-- live sequence.
	CREATE TABLE IF NOT EXISTS screens (
		project_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		position INTEGER NOT NULL,
		deleted_at INTEGER,
		batch_ts INTEGER,
		original_name TEXT,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (project_id, filename),
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_screens_order
		ON screens(project_id, position);
	CREATE INDEX IF NOT EXISTS idx_screens_batch
		ON screens(project_id, batch_ts);

	CREATE TABLE IF NOT EXISTS fork_points (
		project_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		name TEXT,
		PRIMARY KEY (project_id, idx),
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS merge_points (
		project_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		PRIMARY KEY (project_id, idx),
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS branches (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		fork_from INTEGER NOT NULL,
		merge_to INTEGER,
		screens TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_branches_project
		ON branches(project_id);

	CREATE TABLE IF NOT EXISTS onboarding_ranges (
		project_id TEXT PRIMARY KEY,
		start_idx INTEGER NOT NULL DEFAULT -1,
		end_idx INTEGER NOT NULL DEFAULT -1,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	_, err := db.Exec(schema)
	return err
}
