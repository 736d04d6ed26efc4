package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
)

// NewCompletionProvider returns the provider selected by cfg.Provider.
func NewCompletionProvider(cfg config.LLMConfig, production bool, logger *zap.Logger) (provider.CompletionProvider, error) {
	switch cfg.Provider {
	case config.LLMOpenAI, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key not configured")
		}
		return NewOpenAIProvider(cfg, logger), nil
	case config.LLMMock:
		if production {
			return nil, fmt.Errorf("mock LLM is not allowed in production")
		}
		logger.Warn("Using mock LLM provider")
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
