package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionLog_Succeeded(t *testing.T) {
	answer := "35"
	failure := "the agent did not answer in time"

	tests := []struct {
		name string
		log  QuestionLog
		want bool
	}{
		{"answered", QuestionLog{Answer: &answer}, true},
		{"failed", QuestionLog{ErrorMessage: &failure}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.log.Succeeded())
		})
	}
}

func TestQuestionLog_JSONOmitsEmptyOutcome(t *testing.T) {
	data, err := json.Marshal(QuestionLog{SessionID: "s1", Question: "how many rows?"})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "answer")
	assert.NotContains(t, fields, "error_message")
	assert.Equal(t, "s1", fields["session_id"])
}
