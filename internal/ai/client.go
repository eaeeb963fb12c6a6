package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"matjip/apps/backend/internal/config"
	"matjip/apps/backend/internal/logging"
	"matjip/apps/backend/internal/metrics"
)

var (
	ErrNotConfigured = errors.New("OPENAI_API_KEY is not configured")
	ErrEmptyAnswer   = errors.New("openai response answer is empty")
)

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type AIModelRequest struct {
	// CallSite labels the call in metrics and logs, e.g. "refine" or "recommend".
	CallSite     string
	Model        string
	SystemPrompt string
	UserPrompt   string
	// MaxOutputTokens bounds the completion; zero leaves it to the provider.
	MaxOutputTokens int
}

type AIModelResponse struct {
	Answer string
	Model  string
	Usage  AIUsage
}

type AIClient interface {
	Query(ctx context.Context, req AIModelRequest) (AIModelResponse, error)
}

// Messages returns the role-tagged messages sent for req, system first.
func (req AIModelRequest) Messages() []ChatTurn {
	turns := make([]ChatTurn, 0, 2)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		turns = append(turns, ChatTurn{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	if user := strings.TrimSpace(req.UserPrompt); user != "" {
		turns = append(turns, ChatTurn{Role: openai.ChatMessageRoleUser, Content: user})
	}
	return turns
}

type OpenAIChatClient struct {
	apiKey string
	model  string
	client *openai.Client
}

func NewOpenAIChatClient(cfg config.Config) *OpenAIChatClient {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	apiKey := strings.TrimSpace(cfg.OpenAIAPIKey)
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.OpenAIBaseURL), "/"); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}
	return &OpenAIChatClient{
		apiKey: apiKey,
		model:  strings.TrimSpace(cfg.OpenAIModel),
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (c *OpenAIChatClient) Query(ctx context.Context, req AIModelRequest) (resp AIModelResponse, err error) {
	started := time.Now()
	callSite := req.CallSite
	if callSite == "" {
		callSite = "unknown"
	}
	defer func() {
		metrics.ObserveLLMCall(callSite, started, err)
	}()

	if c.apiKey == "" {
		return AIModelResponse{}, ErrNotConfigured
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	if model == "" {
		return AIModelResponse{}, errors.New("OPENAI_MODEL is not configured")
	}

	turns := req.Messages()
	if len(turns) == 0 {
		return AIModelResponse{}, errors.New("AI request input is empty")
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}

	completion, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: req.MaxOutputTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return AIModelResponse{}, fmt.Errorf("openai chat completion error (%d): %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return AIModelResponse{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return AIModelResponse{}, ErrEmptyAnswer
	}
	answer := strings.TrimSpace(completion.Choices[0].Message.Content)
	if answer == "" {
		if completion.Choices[0].FinishReason == openai.FinishReasonLength {
			return AIModelResponse{}, errors.New("openai response incomplete due max_tokens")
		}
		return AIModelResponse{}, ErrEmptyAnswer
	}

	modelName := strings.TrimSpace(completion.Model)
	if modelName == "" {
		modelName = model
	}
	logging.Debug().
		Str("call_site", callSite).
		Str("model", modelName).
		Int("total_tokens", completion.Usage.TotalTokens).
		Dur("elapsed", time.Since(started)).
		Msg("chat completion finished")

	return AIModelResponse{
		Answer: answer,
		Model:  modelName,
		Usage: AIUsage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
	}, nil
}
