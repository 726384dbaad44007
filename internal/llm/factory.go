package llm

import (
	"context"
	"fmt"

	"github.com/iWorld-y/pine_pulse/internal/config"
)

// NewCompleter 根据配置创建补全客户端
func NewCompleter(ctx context.Context, cfg config.LLMConfig) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is missing")
	}

	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model)
	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
