package index

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/eino-ext/libs/acl/openai"
	"github.com/cloudwego/eino/components/embedding"

	"github.com/iWorld-y/pine_pulse/internal/config"
)

// NewEmbedder 创建 OpenAI 兼容的向量化客户端
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding api key is missing")
	}

	client, err := openai.NewEmbeddingClient(ctx, &openai.EmbeddingConfig{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding client init failed: %w", err)
	}
	return client, nil
}
