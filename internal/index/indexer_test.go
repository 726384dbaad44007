package index

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/pine_pulse/internal/config"
	"github.com/iWorld-y/pine_pulse/internal/model"
)

type fakeEmbedder struct {
	failOn map[string]bool
	inputs []string
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	f.inputs = append(f.inputs, texts...)
	for _, t := range texts {
		if f.failOn[t] {
			return nil, errors.New("embedding service unavailable")
		}
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t))}
	}
	return out, nil
}

type upsert struct {
	index, key string
	vector     []float64
	metadata   string
}

type fakeStore struct {
	upserts []upsert
}

func (f *fakeStore) UpsertVector(ctx context.Context, indexName, key string, vector []float64, metadata []byte) error {
	f.upserts = append(f.upserts, upsert{indexName, key, vector, string(metadata)})
	return nil
}

func TestIndexer_Index(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeStore{}
	ix := NewIndexer(emb, store, "pinepulse-sku-context", nil)

	items := []model.ItemContext{{Item: "SKU-1", Sales: 70, Velocity: 10}, {Item: "SKU-2", Sales: 7, Velocity: 1}}
	require.NoError(t, ix.Index(context.Background(), items))

	require.Len(t, emb.inputs, 2, "one embedding call per item")
	require.Len(t, store.upserts, 2)
	assert.Equal(t, "pinepulse-sku-context", store.upserts[0].index)
	assert.Equal(t, "SKU-1", store.upserts[0].key)
	assert.JSONEq(t, `{"name":"SKU-1","sales":70,"quantity":null,"velocity":10,"days_supply":null}`, store.upserts[0].metadata)
	assert.Equal(t, emb.inputs[0], store.upserts[0].metadata)
}

func TestIndexer_AttemptsEveryItem(t *testing.T) {
	bad := `{"name":"SKU-1","sales":70,"quantity":null,"velocity":10,"days_supply":null}`
	emb := &fakeEmbedder{failOn: map[string]bool{bad: true}}
	store := &fakeStore{}
	ix := NewIndexer(emb, store, "idx", nil)

	err := ix.Index(context.Background(), []model.ItemContext{
		{Item: "SKU-1", Sales: 70, Velocity: 10},
		{Item: "SKU-2", Sales: 7, Velocity: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SKU-1")
	assert.Len(t, emb.inputs, 2)
	require.Len(t, store.upserts, 1)
	assert.Equal(t, "SKU-2", store.upserts[0].key)
}

func TestNewEmbedder_MissingKey(t *testing.T) {
	_, err := NewEmbedder(context.Background(), config.EmbeddingConfig{Model: "text-embedding-3-small"})
	assert.EqualError(t, err, "embedding api key is missing")
}
