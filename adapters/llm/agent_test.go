package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"csvquery/adapters/excel"
	"csvquery/internal/errors"
	"csvquery/internal/profiling"
	"csvquery/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "llama3-70b-8192",
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": "The mean age is 35."},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 120, "completion_tokens": 8, "total_tokens": 128}
}`

func newRequest(t *testing.T) ports.AgentRequest {
	t.Helper()
	table, err := excel.Load([]byte("name,age\nA,30\nB,\nC,40"))
	require.NoError(t, err)
	overview := profiling.Summarize(table, profiling.DefaultOptions())
	return ports.AgentRequest{Question: "What is the mean age?", Table: table, Overview: &overview}
}

func newTestAgent(t *testing.T, handler http.HandlerFunc) *GroqAgent {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	agent, err := NewGroqAgent(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		Limits:  DefaultLimits(),
	})
	require.NoError(t, err)
	return agent
}

func TestGroqAgentAsk(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	agent := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	})

	resp, err := agent.Ask(context.Background(), newRequest(t))
	require.NoError(t, err)

	assert.Equal(t, "The mean age is 35.", resp.Answer)
	assert.Equal(t, "llama3-70b-8192", resp.Model)
	assert.Equal(t, int64(128), resp.TotalTokens)
	assert.Equal(t, int64(120), resp.PromptTokens)

	assert.Equal(t, DefaultModel, captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Contains(t, captured.Messages[1].Content, "What is the mean age?")
	assert.Contains(t, captured.Messages[1].Content, "name,age")
}

func TestGroqAgentStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
	}{
		{"unauthorized", http.StatusUnauthorized, "API key"},
		{"rate limited", http.StatusTooManyRequests, "rate limiting"},
		{"server error", http.StatusBadGateway, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			agent := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"error"}}`))
			})

			resp, err := agent.Ask(context.Background(), newRequest(t))
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, errors.CodeAgentError, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, 1, calls, "no retries")
		})
	}
}

func TestGroqAgentEmptyAnswer(t *testing.T) {
	agent := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"message":{"role":"assistant","content":"   "},"finish_reason":"stop"}]}`))
	})

	_, err := agent.Ask(context.Background(), newRequest(t))
	require.Error(t, err)
	assert.Equal(t, errors.CodeAgentError, errors.GetCode(err))
}

func TestGroqAgentTimeout(t *testing.T) {
	agent := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := agent.Ask(ctx, newRequest(t))
	require.Error(t, err)
	assert.Equal(t, errors.CodeAgentError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "in time")
}

func TestNewGroqAgentRequiresKey(t *testing.T) {
	_, err := NewGroqAgent(Config{APIKey: "  "})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestMockAgent(t *testing.T) {
	req := newRequest(t)

	resp, err := (&MockAgent{}).Ask(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "The table has 3 rows and 2 columns.", resp.Answer)

	_, err = (&MockAgent{Error: errors.AgentError("down", nil)}).Ask(context.Background(), req)
	assert.Error(t, err)
}
