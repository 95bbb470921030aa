package db

import (
	"database/sql"
	"fmt"
	"strconv"
)

// CurrentSchemaVersion is the journal schema this build writes.
const CurrentSchemaVersion = 2

// schemaDDL contains the CREATE TABLE statements for the current schema.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);

CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	owner       TEXT NOT NULL,
	repository  TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	dry_run     INTEGER NOT NULL DEFAULT 0,
	planned     INTEGER NOT NULL DEFAULT 0,
	applied     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_changes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	kind        TEXT NOT NULL,
	name        TEXT NOT NULL,
	new_name    TEXT,
	color       TEXT,
	description TEXT,
	status      TEXT NOT NULL,
	error       TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_repository ON runs(owner, repository);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_changes_run_id ON run_changes(run_id);

CREATE TABLE IF NOT EXISTS run_snapshots (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	color       TEXT,
	description TEXT
);
CREATE INDEX IF NOT EXISTS idx_run_snapshots_run_id ON run_snapshots(run_id);
`

// Initialize creates all tables if they don't exist and sets the schema version.
func Initialize(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaDDL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	// Set schema version only if not already set.
	_, err = tx.Exec(
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(CurrentSchemaVersion),
	)
	if err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}

	return tx.Commit()
}

// SchemaVersion returns the current schema version from the meta table.
func SchemaVersion(db *sql.DB) (int, error) {
	var val string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&val)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", val, err)
	}

	return v, nil
}

// migrations maps a target version to the function that migrates to it from
// the previous version.
var migrations = map[int]func(tx *sql.Tx) error{
	// v2 records the label set each run started from.
	2: func(tx *sql.Tx) error {
		_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS run_snapshots (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	color       TEXT,
	description TEXT
);
CREATE INDEX IF NOT EXISTS idx_run_snapshots_run_id ON run_snapshots(run_id);
`)
		return err
	},
}

// Migrate applies any pending migrations in order. It is a no-op when
// already at the latest version.
func Migrate(db *sql.DB) error {
	version, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	if version == CurrentSchemaVersion {
		return nil
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("journal schema version %d is newer than supported version %d", version, CurrentSchemaVersion)
	}

	for v := version + 1; v <= CurrentSchemaVersion; v++ {
		migrateFn, ok := migrations[v]
		if !ok {
			return fmt.Errorf("missing migration for version %d", v)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d transaction: %w", v, err)
		}

		if err := migrateFn(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", v, err)
		}

		if _, err := tx.Exec(
			`UPDATE meta SET value = ? WHERE key = 'schema_version'`,
			strconv.Itoa(v),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("updating schema version to %d: %w", v, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", v, err)
		}
	}

	return nil
}
