package ports

import (
	"context"

	"csvquery/models"
)

// QuestionLogRepository records every question attempt
type QuestionLogRepository interface {
	// Record stores one attempt, successful or not
	Record(ctx context.Context, entry *models.QuestionLog) error

	// ListBySession returns the most recent attempts of a session, newest first
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*models.QuestionLog, error)
}
