// Package provenance persists one row per completed conversation turn:
// the question, the final answer, the exact execution path through the
// workflow graph, and the diagnostic flags. The log is the observable
// record of why the system answered (or refused) the way it did.
package provenance

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS turn_log (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    turn_id          TEXT NOT NULL,
    domain           TEXT NOT NULL,
    question         TEXT NOT NULL,
    answer           TEXT NOT NULL,
    sources_json     TEXT,
    calculation_note TEXT,
    path_json        TEXT NOT NULL,
    flags_json       TEXT,
    created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turn_log_turn ON turn_log(turn_id);
`

// #endregion schema

// #region types

// TurnEntry is a single row in the turn_log table.
type TurnEntry struct {
	TurnID          string
	Domain          string
	Question        string
	Answer          string
	Sources         []string
	CalculationNote string
	ExecutionPath   []string
	Flags           []string
	CreatedAt       time.Time
}

// Log writes and reads turn_log rows.
type Log struct {
	db *sql.DB
}

// #endregion types

// #region constructor

// NewLog creates the turn_log table and returns a Log.
func NewLog(db *sql.DB) (*Log, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("provenance schema: %w", err)
	}
	return &Log{db: db}, nil
}

// #endregion constructor

// #region record

// Record inserts a completed turn.
func (l *Log) Record(entry TurnEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	pathJSON, err := json.Marshal(entry.ExecutionPath)
	if err != nil {
		return fmt.Errorf("marshal path: %w", err)
	}
	sourcesJSON, err := json.Marshal(entry.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	flagsJSON, err := json.Marshal(entry.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}

	_, err = l.db.Exec(
		`INSERT INTO turn_log (turn_id, domain, question, answer, sources_json, calculation_note, path_json, flags_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TurnID,
		entry.Domain,
		entry.Question,
		entry.Answer,
		string(sourcesJSON),
		entry.CalculationNote,
		string(pathJSON),
		string(flagsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// #endregion record

// #region recent

// Recent returns the latest n turns, newest first.
func (l *Log) Recent(n int) ([]TurnEntry, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := l.db.Query(
		`SELECT turn_id, domain, question, answer, sources_json, calculation_note, path_json, flags_json, created_at
		 FROM turn_log ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var entries []TurnEntry
	for rows.Next() {
		var e TurnEntry
		var sourcesJSON, pathJSON, flagsJSON, createdAt string
		if err := rows.Scan(&e.TurnID, &e.Domain, &e.Question, &e.Answer,
			&sourcesJSON, &e.CalculationNote, &pathJSON, &flagsJSON, &createdAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(sourcesJSON), &e.Sources)
		_ = json.Unmarshal([]byte(pathJSON), &e.ExecutionPath)
		_ = json.Unmarshal([]byte(flagsJSON), &e.Flags)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion recent
