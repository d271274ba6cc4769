package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"time"

	"csvquery/internal/errors"
	"csvquery/ports"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama3-70b-8192"
)

// Config holds agent configuration
type Config struct {
	APIKey      string        // Groq API key
	BaseURL     string        // OpenAI-compatible endpoint (default: Groq)
	Model       string        // e.g., "llama3-70b-8192"
	MaxTokens   int           // Max tokens in response
	Temperature float64       // 0.0-1.0, lower = more deterministic
	Timeout     time.Duration // Request timeout
	Limits      Limits        // How much of the table is sent
}

// GroqAgent implements ports.Agent against an OpenAI-compatible chat completion endpoint
type GroqAgent struct {
	config Config
	client openai.Client
}

// NewGroqAgent creates an agent. Client retries are disabled; a failed call
// surfaces to the caller as an AgentError.
func NewGroqAgent(config Config) (*GroqAgent, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errors.ConfigInvalid("missing Groq API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(config.Model) == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/"),
		option.WithMaxRetries(0),
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	config.BaseURL = baseURL
	return &GroqAgent{
		config: config,
		client: openai.NewClient(opts...),
	}, nil
}

// Model returns the configured model name
func (a *GroqAgent) Model() string {
	return a.config.Model
}

// Ask sends the question and the table context as one chat completion
func (a *GroqAgent) Ask(ctx context.Context, req ports.AgentRequest) (*ports.AgentResponse, error) {
	prompt, err := BuildUserPrompt(req.Question, req.Table, req.Overview, a.config.Limits)
	if err != nil {
		return nil, errors.AgentError("could not prepare the question for the agent", err)
	}

	start := time.Now()
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(a.config.MaxTokens)),
		Temperature: openai.Float(a.config.Temperature),
	})
	if err != nil {
		log.Printf("[GroqAgent] chat completion failed after %v: %v", time.Since(start), err)
		return nil, errors.AgentError(describeFailure(ctx, err), err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.AgentError("the agent returned no answer", nil)
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return nil, errors.AgentError("the agent returned an empty answer", nil)
	}

	model := resp.Model
	if model == "" {
		model = a.config.Model
	}

	log.Printf("[GroqAgent] answered in %v (model=%s, tokens=%d)", time.Since(start), model, resp.Usage.TotalTokens)
	return &ports.AgentResponse{
		Answer:           answer,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// describeFailure turns a transport or status error into a message a user can act on
func describeFailure(ctx context.Context, err error) string {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "the agent did not answer in time"
	}
	if stderrors.Is(err, context.Canceled) {
		return "the question was cancelled"
	}

	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return "the agent rejected the API key"
		case apiErr.StatusCode == 429:
			return "the agent is rate limiting requests, try again shortly"
		case apiErr.StatusCode >= 500:
			return fmt.Sprintf("the agent service is unavailable (status %d)", apiErr.StatusCode)
		default:
			return fmt.Sprintf("the agent rejected the request (status %d)", apiErr.StatusCode)
		}
	}
	return "could not reach the agent service"
}
