package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/pine_pulse/internal/logger"
	"github.com/iWorld-y/pine_pulse/internal/model"
)

// VectorStore 向量索引的写入接口
type VectorStore interface {
	UpsertVector(ctx context.Context, indexName, key string, vector []float64, metadata []byte) error
}

// Indexer 将商品上下文向量化后写入索引
type Indexer struct {
	embedder embedding.Embedder
	store    VectorStore
	name     string
	limiter  *rate.Limiter
}

// NewIndexer 创建索引器，limiter 可为 nil
func NewIndexer(embedder embedding.Embedder, store VectorStore, name string, limiter *rate.Limiter) *Indexer {
	return &Indexer{
		embedder: embedder,
		store:    store,
		name:     name,
		limiter:  limiter,
	}
}

// Index 逐条向量化并写入。单条失败不影响其他条目，已写入的不回滚，所有错误合并返回。
func (ix *Indexer) Index(ctx context.Context, items []model.ItemContext) error {
	var errs []error
	ok := 0
	for _, item := range items {
		if err := ix.indexOne(ctx, item); err != nil {
			logger.Log.Warnf("索引商品 [%s] 失败: %v", item.Item, err)
			errs = append(errs, err)
			continue
		}
		ok++
	}
	logger.Log.WithField("index", ix.name).Infof("向量索引完成: 成功 %d, 失败 %d", ok, len(errs))
	return errors.Join(errs...)
}

func (ix *Indexer) indexOne(ctx context.Context, item model.ItemContext) error {
	text, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", item.Item, err)
	}

	if ix.limiter != nil {
		if err := ix.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	vectors, err := ix.embedder.EmbedStrings(ctx, []string{string(text)})
	if err != nil {
		return fmt.Errorf("embed %s: %w", item.Item, err)
	}
	if len(vectors) != 1 {
		return fmt.Errorf("embed %s: expected 1 vector, got %d", item.Item, len(vectors))
	}

	return ix.store.UpsertVector(ctx, ix.name, item.Item, vectors[0], text)
}
