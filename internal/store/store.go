// Package store handles SQLite persistence of the break log.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/stretchy/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for completed cycles.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			target_seconds INTEGER NOT NULL,
			mode TEXT NOT NULL,
			voice TEXT NOT NULL,
			announced INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_completed_at ON cycles(completed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertCycle stores a completed cycle. An empty ID is replaced by a new UUID, which is
// returned.
func (s *Store) InsertCycle(ctx context.Context, rec model.CycleRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	announced := 0
	if rec.Announced {
		announced = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (id, started_at, completed_at, target_seconds, mode, voice, announced)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.CompletedAt.UTC().Format(timeLayout),
		rec.TargetSeconds,
		string(rec.Mode),
		rec.Voice,
		announced,
	)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ListCycles returns completed cycles filtered by cfg, oldest first.
func (s *Store) ListCycles(ctx context.Context, cfg model.HistoryConfig) ([]model.CycleRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "completed_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, started_at, completed_at, target_seconds, mode, voice, announced
		FROM cycles
		WHERE %s
		ORDER BY completed_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var cycles []model.CycleRecord
	for rows.Next() {
		var rec model.CycleRecord
		var startedAt, completedAt, mode string
		var announced int
		if err := rows.Scan(&rec.ID, &startedAt, &completedAt, &rec.TargetSeconds, &mode, &rec.Voice, &announced); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, err
		}
		if rec.CompletedAt, err = time.Parse(timeLayout, completedAt); err != nil {
			return nil, err
		}
		rec.Mode = model.Mode(mode)
		rec.Announced = announced != 0
		cycles = append(cycles, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(cycles) > cfg.Last {
		cycles = cycles[len(cycles)-cfg.Last:]
	}
	return cycles, nil
}
