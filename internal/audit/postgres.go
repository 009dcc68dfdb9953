package audit

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"devtomirror/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS fetch_runs (
    id BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL,
    source TEXT NOT NULL,
    success BOOLEAN NOT NULL,
    no_new_posts BOOLEAN NOT NULL,
    article_count INTEGER NOT NULL,
    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL
)`

// PostgresRecorder persists fetch-run outcomes into Postgres.
type PostgresRecorder struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RunRecorder = (*PostgresRecorder)(nil)

// Open connects to Postgres and prepares the recorder.
func Open(dsn string) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	return NewPostgresRecorder(db), nil
}

// NewPostgresRecorder wires a sql.DB implementation.
func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the fetch_runs table when it does not exist yet.
func (r *PostgresRecorder) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// RecordRun inserts one audited pipeline execution.
func (r *PostgresRecorder) RecordRun(ctx context.Context, run ports.FetchRun) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("fetch_runs").
		Columns("username", "source", "success", "no_new_posts", "article_count", "started_at", "finished_at").
		Values(run.Username, run.Source, run.Success, run.NoNewPosts, run.ArticleCount, run.StartedAt, run.FinishedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fetch run: %w", err)
	}

	return nil
}

// Close releases the underlying connection pool.
func (r *PostgresRecorder) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
