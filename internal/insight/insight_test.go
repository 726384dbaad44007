package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/pine_pulse/internal/config"
	"github.com/iWorld-y/pine_pulse/internal/llm"
	"github.com/iWorld-y/pine_pulse/internal/model"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
	req   *llm.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req *llm.Request) (string, error) {
	f.calls++
	f.req = req
	return f.reply, f.err
}

func (f *fakeCompleter) Close() error { return nil }

func TestParseInsights(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    model.InsightSet
		wantErr bool
	}{
		{
			name:  "prose around object",
			reply: `Here you go: {"insights":["a"]}`,
			want: model.InsightSet{
				CategoryTopInsights:    []string{},
				CategoryBottomInsights: []string{},
				ProductTopInsights:     []string{},
				ProductBottomInsights:  []string{},
				Insights:               []string{"a"},
			},
		},
		{
			name:  "all five keys after prose",
			reply: `Here you go: {"insights": ["a"], "category_top_insights": [], "category_bottom_insights": [], "product_top_insights": [], "product_bottom_insights": []}`,
			want: model.InsightSet{
				CategoryTopInsights:    []string{},
				CategoryBottomInsights: []string{},
				ProductTopInsights:     []string{},
				ProductBottomInsights:  []string{},
				Insights:               []string{"a"},
			},
		},
		{
			name:  "markdown fence",
			reply: "```json\n{\"product_top_insights\":[\"x\",\"y\"]}\n```",
			want: model.InsightSet{
				CategoryTopInsights:    []string{},
				CategoryBottomInsights: []string{},
				ProductTopInsights:     []string{"x", "y"},
				ProductBottomInsights:  []string{},
				Insights:               []string{},
			},
		},
		{name: "no braces", reply: "sorry, I cannot help", want: model.EmptyInsightSet(), wantErr: true},
		{name: "truncated", reply: `{"insights":["a"`, want: model.EmptyInsightSet(), wantErr: true},
		{name: "wrong type", reply: `{"insights":"a"}`, want: model.EmptyInsightSet(), wantErr: true},
		{name: "null", reply: "null", want: model.EmptyInsightSet(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInsights(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseInsights() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildMessages(t *testing.T) {
	q := 70.0
	ds := 7.0
	msgs, err := BuildMessages(context.Background(),
		[]model.AggregatedCategory{{Category: "Snacks", TotalSales: 490, PercentOfTotal: 49}},
		[]model.ItemContext{{Item: "SKU-1", Sales: 70, Quantity: &q, Velocity: 10, DaysSupply: &ds}},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, SystemInstruction, msgs[0].Content)

	user := msgs[1].Content
	assert.Equal(t, schema.User, msgs[1].Role)
	for _, key := range []string{
		`"category_top_insights"`,
		`"category_bottom_insights"`,
		`"product_top_insights"`,
		`"product_bottom_insights"`,
		`"insights"`,
		`"percent_of_total": 49`,
		`"days_supply": 7`,
	} {
		assert.Contains(t, user, key)
	}
	assert.True(t, strings.HasSuffix(strings.TrimSpace(user), "[]"), "empty bottom list should serialize as []")
}

func TestSchemaExampleShape(t *testing.T) {
	assert.Len(t, schemaExample.CategoryTopInsights, 3)
	assert.Len(t, schemaExample.CategoryBottomInsights, 3)
	assert.Len(t, schemaExample.ProductTopInsights, 3)
	assert.Len(t, schemaExample.ProductBottomInsights, 3)
	assert.Len(t, schemaExample.Insights, 5)
}

func TestGenerator_Generate(t *testing.T) {
	fc := &fakeCompleter{reply: `Sure! {"insights":["restock SKU-1"]}`}
	temp := float32(0.2)
	g := NewGenerator(fc, nil, config.LLMConfig{Temperature: &temp, MaxTokens: 1000})

	res, err := g.Generate(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.ParseError)
	assert.Equal(t, []string{"restock SKU-1"}, res.Insights.Insights)
	assert.Equal(t, 1, fc.calls)
	require.NotNil(t, fc.req.Temperature)
	assert.Equal(t, float32(0.2), *fc.req.Temperature)
	assert.Equal(t, 1000, fc.req.MaxTokens)
}

func TestGenerator_ParseFailureFallsBack(t *testing.T) {
	fc := &fakeCompleter{reply: "no json here"}
	g := NewGenerator(fc, nil, config.LLMConfig{})

	res, err := g.Generate(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ParseError)
	assert.Equal(t, model.EmptyInsightSet(), res.Insights)
	assert.Equal(t, 1, fc.calls, "parse failures are not retried")
}

func TestGenerator_CompletionErrorPropagates(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("connection refused")}
	g := NewGenerator(fc, nil, config.LLMConfig{})

	_, err := g.Generate(context.Background(), nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, fc.calls)
}
