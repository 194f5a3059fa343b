// Package history keeps finished puzzles in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kiliankoe/wordclue/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id        TEXT    NOT NULL,
	word           TEXT    NOT NULL,
	status         TEXT    NOT NULL,
	attempts       INTEGER NOT NULL,
	clues_revealed INTEGER NOT NULL,
	started_at     TEXT    NOT NULL,
	finished_at    TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_finished_at ON results(finished_at);`

type Stats struct {
	Played         int     `json:"played"`
	Won            int     `json:"won"`
	Lost           int     `json:"lost"`
	AvgWinAttempts float64 `json:"avgWinAttempts"`
	AvgCluesOnWins float64 `json:"avgCluesOnWins"`
}

type Store struct {
	db *sql.DB
}

// Open creates the database file and its parent directory if needed and
// applies the schema.
func Open(dsn string) (*Store, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Record(ctx context.Context, r game.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (game_id, word, status, attempts, clues_revealed, started_at, finished_at)
		 VALUES (?,?,?,?,?,?,?)`,
		r.GameID, r.Word, string(r.Status), r.Attempts, r.CluesRevealed,
		r.StartedAt.UTC().Format(time.RFC3339Nano), r.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Recent returns up to limit results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]game.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, word, status, attempts, clues_revealed, started_at, finished_at
		 FROM results ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []game.Result{}
	for rows.Next() {
		var r game.Result
		var status, started, finished string
		if err := rows.Scan(&r.GameID, &r.Word, &status, &r.Attempts, &r.CluesRevealed, &started, &finished); err != nil {
			return nil, err
		}
		r.Status = game.Status(status)
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1),
		       COALESCE(SUM(CASE WHEN status = 'won' THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(CASE WHEN status = 'won' THEN attempts END), 0),
		       COALESCE(AVG(CASE WHEN status = 'won' THEN clues_revealed END), 0)
		FROM results`).Scan(&st.Played, &st.Won, &st.AvgWinAttempts, &st.AvgCluesOnWins)
	if err != nil {
		return Stats{}, err
	}
	st.Lost = st.Played - st.Won
	return st, nil
}
