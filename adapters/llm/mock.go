package llm

import (
	"context"
	"fmt"

	"csvquery/ports"
)

// MockAgent is a canned agent for tests and offline development
type MockAgent struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors
}

func (m *MockAgent) Ask(ctx context.Context, req ports.AgentRequest) (*ports.AgentResponse, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Response != "" {
		return &ports.AgentResponse{Answer: m.Response, Model: "mock"}, nil
	}
	// Default mock response
	answer := "No table was provided."
	if req.Table != nil {
		answer = fmt.Sprintf("The table has %d rows and %d columns.", req.Table.RowCount(), req.Table.ColumnCount())
	}
	return &ports.AgentResponse{Answer: answer, Model: "mock"}, nil
}
