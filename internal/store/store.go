// Package store persists scan runs and their findings in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ppiankov/tablespectre/internal/scanner"
)

// Store writes scan results to PostgreSQL.
type Store struct {
	pool    *pgxpool.Pool
	version string
}

// Open connects to PostgreSQL, retrying transient failures.
func Open(ctx context.Context, url string) (*Store, error) {
	return connectWithRetry(ctx, url)
}

func openOnce(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{pool: pool}, nil
}

// WithVersion sets the tool version stamped on runs saved through Record.
func (s *Store) WithVersion(v string) *Store {
	s.version = v
	return s
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the store tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SaveRun inserts the run and every finding of units in one transaction.
// A zero run ID is replaced by a fresh one; the stored ID is returned.
func (s *Store) SaveRun(ctx context.Context, run Run, units []scanner.CodeUnit) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Units = len(units)

	id := pgtype.UUID{Bytes: run.ID, Valid: true}
	var rows [][]any
	for _, u := range units {
		for _, f := range u.Findings {
			rows = append(rows, []any{
				id, f.Program, f.Include, f.Type, f.Block,
				f.StartLine, f.EndLine, f.Table, f.Replacement,
				f.IssueType, f.Severity, f.Message, f.Snippet,
			})
		}
	}
	run.Findings = len(rows)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO scan_runs (id, source, target, tool_version, started_at, units, findings)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, run.Source, run.Target, run.ToolVersion, run.StartedAt, run.Units, run.Findings)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"scan_findings"}, findingColumns, pgx.CopyFromRows(rows)); err != nil {
			return uuid.Nil, fmt.Errorf("insert findings: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return run.ID, nil
}

// Record saves units as a run from the given source.
func (s *Store) Record(ctx context.Context, source string, units []scanner.CodeUnit) error {
	_, err := s.SaveRun(ctx, Run{Source: source, ToolVersion: s.version}, units)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, source, target, tool_version, started_at, units, findings
		FROM scan_runs
		ORDER BY started_at DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r  Run
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &r.Source, &r.Target, &r.ToolVersion, &r.StartedAt, &r.Units, &r.Findings); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.ID = id.Bytes
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FindingsByTable counts stored findings per obsolete table across all runs.
func (s *Store) FindingsByTable(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT obsolete_table, count(*)
		FROM scan_findings
		GROUP BY obsolete_table`)
	if err != nil {
		return nil, fmt.Errorf("findings by table: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			table string
			n     int
		)
		if err := rows.Scan(&table, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[table] = n
	}
	return counts, rows.Err()
}
