package ports

import (
	"context"

	"csvquery/domain/dataset"
	"csvquery/internal/profiling"
)

// AgentRequest is everything the reasoning agent gets for one question
type AgentRequest struct {
	Question string
	Table    *dataset.Table
	Overview *profiling.OverviewReport
}

// AgentResponse is the agent's free-text answer plus token usage
type AgentResponse struct {
	Answer           string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Agent answers natural-language questions about a table. Implementations
// are external services; callers treat them as untrusted and bound every
// call with the context deadline.
type Agent interface {
	Ask(ctx context.Context, req AgentRequest) (*AgentResponse, error)
}
