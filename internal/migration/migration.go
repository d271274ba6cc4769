package migration

import (
	"context"
	"log"

	"csvquery/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createQuestionLogTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create question_log table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	log.Printf("[Migration] schema version %s applied", r.version)
	return nil
}

func (r *MigrationRunner) createQuestionLogTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS question_log (
			id UUID PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL,
			question TEXT NOT NULL,
			answer TEXT,
			error_message TEXT,
			model VARCHAR(255) NOT NULL DEFAULT '',
			table_rows INTEGER NOT NULL DEFAULT 0,
			table_columns INTEGER NOT NULL DEFAULT 0,
			prompt_tokens BIGINT NOT NULL DEFAULT 0,
			completion_tokens BIGINT NOT NULL DEFAULT 0,
			total_tokens BIGINT NOT NULL DEFAULT 0,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_question_log_session_created
		ON question_log (session_id, created_at DESC)
	`)
	return err
}
