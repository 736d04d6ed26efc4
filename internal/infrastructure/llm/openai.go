package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
)

// OpenAIProvider sends single-turn chat completions.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int64
	timeout     time.Duration
	logger      *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI completion provider
func NewOpenAIProvider(cfg config.LLMConfig, logger *zap.Logger) *OpenAIProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIProvider{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
		logger:      logger,
	}
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete returns the raw message content of the first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(openai.ChatModel(p.model)),
		Temperature: openai.F(p.temperature),
		MaxTokens:   openai.F(p.maxTokens),
	})
	if err != nil {
		mapped := mapError(err)
		p.logger.Error("OpenAI completion failed",
			zap.String("model", p.model),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return "", mapped
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", domainErrors.ErrLLMInvalidResponse)
	}

	p.logger.Info("OpenAI completion received",
		zap.String("model", p.model),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int64("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domainErrors.ErrLLMTimeout, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", domainErrors.ErrLLMRateLimited, err)
		case apiErr.StatusCode == http.StatusRequestTimeout, apiErr.StatusCode == http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", domainErrors.ErrLLMTimeout, err)
		}
	}
	return fmt.Errorf("%w: %v", domainErrors.ErrLLMUnavailable, err)
}
