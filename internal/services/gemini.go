package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"gemchat-backend/internal/models"
)

// ErrCompletionTimeout is reported when a completion exceeds its deadline.
var ErrCompletionTimeout = errors.New("timeout")

var errEmptyResponse = errors.New("model returned an empty response")

// CompletionResult is either a reply (Err == nil) or a failure description.
type CompletionResult struct {
	Text string
	Err  error
}

func (r CompletionResult) OK() bool { return r.Err == nil }

// Completer turns a single prompt into a reply. Implementations are stateless
// per call: no earlier turns are sent.
type Completer interface {
	Generate(ctx context.Context, prompt string) CompletionResult
}

type GeminiService struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	timeout   time.Duration
	rateChan  chan struct{} // Token bucket
}

func NewGeminiService(apiKey, modelName string, concurrentReqs int, timeout time.Duration) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if concurrentReqs < 1 {
		concurrentReqs = 1
	}

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:    client,
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
		timeout:   timeout,
		rateChan:  rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

func (s *GeminiService) ModelName() string {
	return s.modelName
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Generate sends prompt to Gemini. Every failure is returned in the result;
// the caller decides how to surface it.
func (s *GeminiService) Generate(ctx context.Context, prompt string) CompletionResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.acquireRate(ctx); err != nil {
		return CompletionResult{Err: normalizeCompletionError(err)}
	}
	defer s.releaseRate()

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return CompletionResult{Err: normalizeCompletionError(err)}
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return CompletionResult{Err: errEmptyResponse}
	}

	return CompletionResult{Text: text}
}

// ListModels enumerates the models visible to the configured API key.
func (s *GeminiService) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	var out []models.ModelInfo

	it := s.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}

		out = append(out, models.ModelInfo{
			Name:                       m.Name,
			DisplayName:                m.DisplayName,
			InputTokenLimit:            m.InputTokenLimit,
			OutputTokenLimit:           m.OutputTokenLimit,
			SupportedGenerationMethods: m.SupportedGenerationMethods,
		})
	}

	return out, nil
}

func normalizeCompletionError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCompletionTimeout
	}
	return err
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
