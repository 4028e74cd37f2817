package openai

import (
	"cmp"
	"context"
	"errors"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/metrics"
)

const providerName = "openai"

// Generator produces text through the chat completions endpoint of an
// OpenAI-compatible server.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// GeneratorConfig holds the chat model settings.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds one completion request; zero means DefaultGenerationTimeout.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewGenerator creates a chat-completions generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client: newClient(cfg.APIKey, cfg.BaseURL, cmp.Or(cfg.Timeout, DefaultGenerationTimeout)),
		model:  cfg.Model,
		logger: logger,
	}
}

// Generate implements domain.Generator with a single user message.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	temp := float32(temperature)
	if temp <= 0 {
		// the client drops a zero temperature from the request body
		temp = math.SmallestNonzeroFloat32
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: temp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.LLMRequestDuration.WithLabelValues(providerName, g.model, "error").Observe(elapsed)
		return "", generationError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestDuration.WithLabelValues(providerName, g.model, "error").Observe(elapsed)
		return "", &domain.GenerationError{Provider: providerName, Err: errors.New("no choices in response")}
	}

	metrics.LLMRequestDuration.WithLabelValues(providerName, g.model, "success").Observe(elapsed)
	g.logger.Debug("chat completion",
		zap.String("model", g.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Ping lists models to check the server is reachable.
func (g *Generator) Ping(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return generationError(err)
	}
	return nil
}

func generationError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.GenerationError{Provider: providerName, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.GenerationError{Provider: providerName, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	return &domain.GenerationError{Provider: providerName, Err: err}
}
