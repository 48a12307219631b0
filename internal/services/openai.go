package services

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIService completes prompts against any OpenAI-compatible chat API
// (OpenAI, DeepSeek, Qwen, a local gateway). Like GeminiService, each call
// sends only the latest prompt.
type OpenAIService struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIService(apiKey, baseURL, model string, timeout time.Duration) *OpenAIService {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIService{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

func (s *OpenAIService) ModelName() string {
	return s.model
}

func (s *OpenAIService) Generate(ctx context.Context, prompt string) CompletionResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return CompletionResult{Err: normalizeCompletionError(err)}
	}

	return completionFromChoices(resp.Choices)
}

func completionFromChoices(choices []openai.ChatCompletionChoice) CompletionResult {
	var text strings.Builder
	for _, choice := range choices {
		text.WriteString(choice.Message.Content)
	}

	if strings.TrimSpace(text.String()) == "" {
		return CompletionResult{Err: errEmptyResponse}
	}
	return CompletionResult{Text: text.String()}
}
