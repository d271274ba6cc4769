package postgres

import (
	"context"

	"csvquery/internal/errors"
	"csvquery/models"
	"csvquery/ports"

	"github.com/jmoiron/sqlx"
)

// QuestionLogRepositoryImpl implements QuestionLogRepository for PostgreSQL
type QuestionLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewQuestionLogRepository creates a new PostgreSQL question log repository
func NewQuestionLogRepository(db *sqlx.DB) ports.QuestionLogRepository {
	return &QuestionLogRepositoryImpl{db: db}
}

// Record stores one question attempt
func (r *QuestionLogRepositoryImpl) Record(ctx context.Context, entry *models.QuestionLog) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO question_log (
			id, session_id, question, answer, error_message, model,
			table_rows, table_columns,
			prompt_tokens, completion_tokens, total_tokens, latency_ms, created_at
		) VALUES (
			:id, :session_id, :question, :answer, :error_message, :model,
			:table_rows, :table_columns,
			:prompt_tokens, :completion_tokens, :total_tokens, :latency_ms, :created_at
		)
	`, entry)
	if err != nil {
		return errors.DatabaseError("failed to insert question log entry", err)
	}
	return nil
}

// ListBySession returns the most recent attempts of a session, newest first
func (r *QuestionLogRepositoryImpl) ListBySession(ctx context.Context, sessionID string, limit int) ([]*models.QuestionLog, error) {
	var entries []*models.QuestionLog
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, session_id, question, answer, error_message, model,
		       table_rows, table_columns,
		       prompt_tokens, completion_tokens, total_tokens, latency_ms, created_at
		FROM question_log
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list question log", err)
	}
	return entries, nil
}
