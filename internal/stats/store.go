// Package stats persists loop counts and stop events per ticker run.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"seamless/pkg/db"
	"seamless/pkg/migration"
)

// Kind is a recorded event type.
type Kind string

const (
	KindCount Kind = "count"
	KindStop  Kind = "stop"
)

// Store manages loop statistics persisted to sqlite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the store at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	conn, err := db.Open(path)
	if err != nil {
		return nil, err
	}

	if err := migration.NewRunner(conn).Run(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: conn, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartRun records the start of a ticker run and returns its id.
func (s *Store) StartRun(ctx context.Context, feed, direction string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(id, feed, direction, started_at) VALUES(?, ?, ?, ?)`,
		id, feed, direction, s.now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// EndRun stamps the run's end time.
func (s *Store) EndRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET ended_at = ? WHERE id = ?`, s.now().UnixMilli(), runID)
	return err
}

// Record stores one count or stop event.
func (s *Store) Record(ctx context.Context, runID string, kind Kind, loops int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO loop_events(run_id, kind, loops, at) VALUES(?, ?, ?, ?)`,
		runID, string(kind), loops, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", kind, err)
	}
	return nil
}

// FeedSummary aggregates every run of one feed.
type FeedSummary struct {
	Feed     string
	Runs     int
	Wraps    int
	Stops    int
	Uptime   time.Duration
	LastSeen time.Time
}

// Summary aggregates the runs per feed, most recently seen first. Runs that
// never ended count up to now.
func (s *Store) Summary(ctx context.Context) ([]FeedSummary, error) {
	now := s.now().UnixMilli()
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.feed,
		       COUNT(DISTINCT r.id),
		       COALESCE(SUM(e.kind = 'count'), 0),
		       COALESCE(SUM(e.kind = 'stop'), 0),
		       COALESCE(MAX(e.at), 0),
		       MAX(COALESCE(r.ended_at, r.started_at))
		FROM runs r
		LEFT JOIN loop_events e ON e.run_id = r.id
		GROUP BY r.feed`)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer rows.Close()

	var out []FeedSummary
	for rows.Next() {
		var fs FeedSummary
		var lastEvent, lastRun int64
		if err := rows.Scan(&fs.Feed, &fs.Runs, &fs.Wraps, &fs.Stops, &lastEvent, &lastRun); err != nil {
			return nil, err
		}
		fs.LastSeen = time.UnixMilli(max(lastEvent, lastRun))
		out = append(out, fs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		var ms sql.NullInt64
		err := s.db.QueryRowContext(ctx,
			`SELECT SUM(COALESCE(ended_at, ?) - started_at) FROM runs WHERE feed = ?`,
			now, out[i].Feed).Scan(&ms)
		if err != nil {
			return nil, err
		}
		out[i].Uptime = time.Duration(ms.Int64) * time.Millisecond
	}

	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out, nil
}
