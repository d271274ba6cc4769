package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ParseError("row 3 has 4 fields, header has 2", nil)
	wrapped := Wrap(base, "load failed")

	assert.Equal(t, CodeParseError, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))
	assert.Equal(t, "load failed: row 3 has 4 fields, header has 2", wrapped.Error())
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "ctx")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("handler: %w", AgentError("agent unavailable", fmt.Errorf("dial tcp: refused")))

	assert.True(t, HasCode(err, CodeAgentError))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestUserMessage(t *testing.T) {
	agentErr := AgentError("the agent did not answer in time", fmt.Errorf(`POST "https://x/chat/completions": context deadline exceeded`))
	assert.Equal(t, "the agent did not answer in time", UserMessage(agentErr))

	parseErr := ParseError("malformed row at line 3", fmt.Errorf("wrong number of fields"))
	assert.Equal(t, "malformed row at line 3: wrong number of fields", UserMessage(parseErr))

	assert.Equal(t, "an unexpected error occurred", UserMessage(fmt.Errorf("nil pointer")))
	assert.Empty(t, UserMessage(nil))
}
