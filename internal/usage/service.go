package usage

import (
	"context"
	"log"
	"time"

	"csvquery/models"
	"csvquery/ports"
)

const recordTimeout = 5 * time.Second

// Service records question attempts and token usage
type Service struct {
	repo ports.QuestionLogRepository
}

// NewService creates a new usage service. A nil repository disables recording.
func NewService(repo ports.QuestionLogRepository) *Service {
	return &Service{repo: repo}
}

// Enabled reports whether attempts are persisted
func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record persists one question attempt. Failures are logged and never
// returned; the caller's request is not affected by the log.
func (s *Service) Record(ctx context.Context, entry *models.QuestionLog) {
	if !s.Enabled() || entry == nil {
		return
	}

	if entry.PromptTokens < 0 || entry.CompletionTokens < 0 || entry.TotalTokens < 0 {
		log.Printf("[UsageService] ERROR: invalid token counts: %+v", entry)
		entry.PromptTokens, entry.CompletionTokens, entry.TotalTokens = 0, 0, 0
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	// Detached from the request so a cancelled question is still logged.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.repo.Record(ctx, entry); err != nil {
		log.Printf("[UsageService] ERROR: failed to record question %s: %v", entry.ID, err)
	}
}

// History returns the most recent attempts of a session, newest first
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]*models.QuestionLog, error) {
	if !s.Enabled() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListBySession(ctx, sessionID, limit)
}
