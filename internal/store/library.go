// Package store persists generated blueprints and their simulation traces in
// a local SQLite library so a user can revisit, re-simulate, and export past
// work.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"flowforge/internal/blueprint"
	"flowforge/internal/logging"
	"flowforge/internal/simulation"
)

// ErrNotFound reports a missing library entry.
var ErrNotFound = errors.New("library entry not found")

// Library is a SQLite-backed blueprint archive. Safe for use from a single
// process; SQLite's WAL mode handles concurrent readers.
type Library struct {
	db   *sql.DB
	path string
}

// SavedBlueprint is a library record.
type SavedBlueprint struct {
	ID        string
	Goal      string
	CreatedAt time.Time
	Blueprint *blueprint.Blueprint
}

// SavedTrace is a persisted simulation run.
type SavedTrace struct {
	ID          string
	BlueprintID string
	Payload     string
	CreatedAt   time.Time
	Trace       *simulation.Trace
}

// Open initializes the library database at path, creating directories and
// schema as needed.
func Open(path string) (*Library, error) {
	logging.Store("Opening blueprint library at %s", path)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	lib := &Library{db: db, path: path}
	if err := lib.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return lib, nil
}

func (l *Library) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS blueprints (
	id         TEXT PRIMARY KEY,
	goal       TEXT NOT NULL,
	platform   TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS traces (
	id           TEXT PRIMARY KEY,
	blueprint_id TEXT NOT NULL REFERENCES blueprints(id) ON DELETE CASCADE,
	payload      TEXT NOT NULL,
	body         TEXT NOT NULL,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_traces_blueprint ON traces(blueprint_id);
`
	_, err := l.db.Exec(ddl)
	return err
}

// SaveBlueprint stores a blueprint and returns its library id.
func (l *Library) SaveBlueprint(goal string, bp *blueprint.Blueprint) (string, error) {
	body, err := json.Marshal(bp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal blueprint: %w", err)
	}
	id := uuid.NewString()
	_, err = l.db.Exec(
		"INSERT INTO blueprints (id, goal, platform, body, created_at) VALUES (?, ?, ?, ?, ?)",
		id, goal, string(bp.Platform), string(body), time.Now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save blueprint: %w", err)
	}
	logging.Store("Saved blueprint %s (%d steps, platform %s)", id, len(bp.Steps), bp.Platform)
	return id, nil
}

// GetBlueprint loads one record by id.
func (l *Library) GetBlueprint(id string) (*SavedBlueprint, error) {
	row := l.db.QueryRow("SELECT id, goal, body, created_at FROM blueprints WHERE id = ?", id)

	var rec SavedBlueprint
	var body string
	var createdAt int64
	if err := row.Scan(&rec.ID, &rec.Goal, &body, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: blueprint %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load blueprint: %w", err)
	}
	rec.CreatedAt = time.UnixMilli(createdAt)

	var bp blueprint.Blueprint
	if err := json.Unmarshal([]byte(body), &bp); err != nil {
		return nil, fmt.Errorf("failed to decode stored blueprint %s: %w", id, err)
	}
	rec.Blueprint = &bp
	return &rec, nil
}

// ListBlueprints returns all records, newest first. Records whose stored
// body no longer decodes are skipped, not fatal.
func (l *Library) ListBlueprints() ([]*SavedBlueprint, error) {
	rows, err := l.db.Query("SELECT id, goal, body, created_at FROM blueprints ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list blueprints: %w", err)
	}
	defer rows.Close()

	var records []*SavedBlueprint
	for rows.Next() {
		var rec SavedBlueprint
		var body string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Goal, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan blueprint row: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdAt)
		var bp blueprint.Blueprint
		if err := json.Unmarshal([]byte(body), &bp); err != nil {
			logging.StoreDebug("ListBlueprints: skipping undecodable record %s: %v", rec.ID, err)
			continue
		}
		rec.Blueprint = &bp
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// DeleteBlueprint removes a blueprint and its traces.
func (l *Library) DeleteBlueprint(id string) error {
	res, err := l.db.Exec("DELETE FROM blueprints WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete blueprint: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: blueprint %s", ErrNotFound, id)
	}
	if _, err := l.db.Exec("DELETE FROM traces WHERE blueprint_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete traces: %w", err)
	}
	logging.Store("Deleted blueprint %s", id)
	return nil
}

// SaveTrace stores a simulation run for a saved blueprint.
func (l *Library) SaveTrace(blueprintID, payload string, tr *simulation.Trace) (string, error) {
	body, err := json.Marshal(tr)
	if err != nil {
		return "", fmt.Errorf("failed to marshal trace: %w", err)
	}
	id := uuid.NewString()
	_, err = l.db.Exec(
		"INSERT INTO traces (id, blueprint_id, payload, body, created_at) VALUES (?, ?, ?, ?, ?)",
		id, blueprintID, payload, string(body), time.Now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save trace: %w", err)
	}
	return id, nil
}

// ListTraces returns all simulation runs for a blueprint, newest first.
func (l *Library) ListTraces(blueprintID string) ([]*SavedTrace, error) {
	rows, err := l.db.Query(
		"SELECT id, blueprint_id, payload, body, created_at FROM traces WHERE blueprint_id = ? ORDER BY created_at DESC",
		blueprintID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}
	defer rows.Close()

	var records []*SavedTrace
	for rows.Next() {
		var rec SavedTrace
		var body string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.BlueprintID, &rec.Payload, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan trace row: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdAt)
		var tr simulation.Trace
		if err := json.Unmarshal([]byte(body), &tr); err != nil {
			logging.StoreDebug("ListTraces: skipping undecodable record %s: %v", rec.ID, err)
			continue
		}
		rec.Trace = &tr
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (l *Library) Close() error {
	return l.db.Close()
}
