package history

import (
	"context"
	"fmt"

	"github.com/freitasmatheusrn/olist-helper/pkg/parser"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const createSplitJobsTable = `
CREATE TABLE IF NOT EXISTS split_jobs (
	id             UUID PRIMARY KEY,
	layout         TEXT NOT NULL,
	file_name      TEXT NOT NULL,
	total_rows     INTEGER NOT NULL,
	chunks         INTEGER NOT NULL,
	rows_per_chunk INTEGER NOT NULL,
	grouped        BOOLEAN NOT NULL DEFAULT FALSE,
	user_email     TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const insertSplitJob = `
INSERT INTO split_jobs (id, layout, file_name, total_rows, chunks, rows_per_chunk, grouped, user_email)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at`

const listRecentSplitJobs = `
SELECT id, layout, file_name, total_rows, chunks, rows_per_chunk, grouped, user_email, created_at
FROM split_jobs
ORDER BY created_at DESC
LIMIT $1`

// DBTX is satisfied by *pgx.Conn, pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type SplitJob struct {
	ID           pgtype.UUID
	Layout       string
	FileName     string
	TotalRows    int32
	Chunks       int32
	RowsPerChunk int32
	Grouped      bool
	UserEmail    pgtype.Text
	CreatedAt    pgtype.Timestamptz
}

// Recorder keeps an audit trail of split requests.
type Recorder interface {
	Record(ctx context.Context, job *SplitJob) error
	ListRecent(ctx context.Context, limit int) ([]SplitJob, error)
}

type repository struct {
	db DBTX
}

func NewRepository(db DBTX) *repository {
	return &repository{db: db}
}

func (r *repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createSplitJobsTable); err != nil {
		return fmt.Errorf("create split_jobs: %w", err)
	}
	return nil
}

func (r *repository) Record(ctx context.Context, job *SplitJob) error {
	if !job.ID.Valid {
		job.ID = parser.NewPgUUID()
	}

	err := r.db.QueryRow(ctx, insertSplitJob,
		job.ID,
		job.Layout,
		job.FileName,
		job.TotalRows,
		job.Chunks,
		job.RowsPerChunk,
		job.Grouped,
		job.UserEmail,
	).Scan(&job.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert split job: %w", err)
	}
	return nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]SplitJob, error) {
	rows, err := r.db.Query(ctx, listRecentSplitJobs, limit)
	if err != nil {
		return nil, fmt.Errorf("list split jobs: %w", err)
	}
	defer rows.Close()

	var items []SplitJob
	for rows.Next() {
		var i SplitJob
		if err := rows.Scan(
			&i.ID,
			&i.Layout,
			&i.FileName,
			&i.TotalRows,
			&i.Chunks,
			&i.RowsPerChunk,
			&i.Grouped,
			&i.UserEmail,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// NopRecorder is used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, job *SplitJob) error {
	return nil
}

func (NopRecorder) ListRecent(ctx context.Context, limit int) ([]SplitJob, error) {
	return []SplitJob{}, nil
}
