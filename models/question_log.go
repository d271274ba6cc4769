package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionLog represents one question sent to the agent and its outcome
type QuestionLog struct {
	ID               uuid.UUID `json:"id" db:"id"`
	SessionID        string    `json:"session_id" db:"session_id"`
	Question         string    `json:"question" db:"question"`
	Answer           *string   `json:"answer,omitempty" db:"answer"`
	ErrorMessage     *string   `json:"error_message,omitempty" db:"error_message"`
	Model            string    `json:"model" db:"model"`
	TableRows        int       `json:"table_rows" db:"table_rows"`
	TableColumns     int       `json:"table_columns" db:"table_columns"`
	PromptTokens     int64     `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int64     `json:"total_tokens" db:"total_tokens"`
	LatencyMS        int64     `json:"latency_ms" db:"latency_ms"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Succeeded reports whether the attempt produced an answer
func (q *QuestionLog) Succeeded() bool {
	return q.ErrorMessage == nil
}
