package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

// execer abstracts *sql.DB and *sql.Tx for executing statements.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// RecordRun stores a run, its change records and the label set it started
// from in a single transaction. On success run.ID and every record's ID and
// RunID are filled in.
func RecordRun(db *sql.DB, run *model.Run, records []model.ChangeRecord, snapshot []model.ExistingLabel) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (owner, repository, started_at, finished_at, dry_run, planned, applied, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Owner, run.Repository,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.DryRun, run.Planned, run.Applied, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading run id: %w", err)
	}

	for i := range records {
		records[i].RunID = int(id)
		recID, err := insertChange(tx, &records[i])
		if err != nil {
			return err
		}
		records[i].ID = recID
	}

	for _, l := range snapshot {
		if err := insertSnapshot(tx, int(id), l); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	run.ID = int(id)
	return nil
}

func insertChange(ex execer, rec *model.ChangeRecord) (int, error) {
	res, err := ex.Exec(
		`INSERT INTO run_changes (run_id, kind, name, new_name, color, description, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, string(rec.Kind), rec.Name,
		nullString(rec.NewName), nullString(rec.Color), nullString(rec.Description),
		string(rec.Status), nullString(rec.Error),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting change for %q: %w", rec.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading change id: %w", err)
	}
	return int(id), nil
}

func insertSnapshot(ex execer, runID int, l model.ExistingLabel) error {
	var color, description sql.NullString
	if l.Color != nil {
		color = sql.NullString{String: *l.Color, Valid: true}
	}
	if l.Description != nil {
		description = sql.NullString{String: *l.Description, Valid: true}
	}
	_, err := ex.Exec(
		`INSERT INTO run_snapshots (run_id, name, color, description) VALUES (?, ?, ?, ?)`,
		runID, l.Name, color, description,
	)
	if err != nil {
		return fmt.Errorf("recording snapshot of %q: %w", l.Name, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

const runColumns = `id, owner, repository, started_at, finished_at, dry_run, planned, applied, failed`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*model.Run, error) {
	var r model.Run
	var startedAt, finishedAt string
	if err := s.Scan(&r.ID, &r.Owner, &r.Repository, &startedAt, &finishedAt,
		&r.DryRun, &r.Planned, &r.Applied, &r.Failed); err != nil {
		return nil, err
	}

	var err error
	if r.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("parsing run started_at: %w", err)
	}
	if r.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
		return nil, fmt.Errorf("parsing run finished_at: %w", err)
	}
	return &r, nil
}

// GetRun retrieves a single run by ID. Returns ErrNotFound if it does not
// exist.
func GetRun(db *sql.DB, id int) (*model.Run, error) {
	row := db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return r, nil
}

// ListRuns returns runs ordered by most recent first. Empty owner or repo
// match every repository; limit <= 0 means no limit.
func ListRuns(db *sql.DB, owner, repo string, limit int) ([]*model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	var args []any

	if owner != "" {
		query += " AND owner = ?"
		args = append(args, owner)
	}
	if repo != "" {
		query += " AND repository = ?"
		args = append(args, repo)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}

	return runs, nil
}

// GetRunChanges returns the change records of a run in the order they were
// planned.
func GetRunChanges(db *sql.DB, runID int) ([]model.ChangeRecord, error) {
	rows, err := db.Query(
		`SELECT id, run_id, kind, name, new_name, color, description, status, error
		 FROM run_changes
		 WHERE run_id = ?
		 ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying run changes: %w", err)
	}
	defer rows.Close()

	var records []model.ChangeRecord
	for rows.Next() {
		var rec model.ChangeRecord
		var kind, status string
		var newName, color, description, errText sql.NullString
		if err := rows.Scan(&rec.ID, &rec.RunID, &kind, &rec.Name,
			&newName, &color, &description, &status, &errText); err != nil {
			return nil, fmt.Errorf("scanning change row: %w", err)
		}
		rec.Kind = model.ChangeKind(kind)
		rec.Status = model.ChangeStatus(status)
		rec.NewName = newName.String
		rec.Color = color.String
		rec.Description = description.String
		rec.Error = errText.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change rows: %w", err)
	}

	return records, nil
}

// GetRunSnapshot returns the labels the repository had when the run
// started, in listing order.
func GetRunSnapshot(db *sql.DB, runID int) ([]model.ExistingLabel, error) {
	rows, err := db.Query(
		`SELECT name, color, description FROM run_snapshots WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying run snapshot: %w", err)
	}
	defer rows.Close()

	var labels []model.ExistingLabel
	for rows.Next() {
		var l model.ExistingLabel
		var color, description sql.NullString
		if err := rows.Scan(&l.Name, &color, &description); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		if color.Valid {
			l.Color = &color.String
		}
		if description.Valid {
			l.Description = &description.String
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot rows: %w", err)
	}

	return labels, nil
}

// DeleteRunsBefore removes runs that started before cutoff, along with
// their changes and snapshots. It returns the number of runs removed.
func DeleteRunsBefore(db *sql.DB, cutoff time.Time) (int, error) {
	res, err := db.Exec(`DELETE FROM runs WHERE started_at < ?`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned runs: %w", err)
	}
	return int(n), nil
}
