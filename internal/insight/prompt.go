package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/pine_pulse/internal/model"
)

// SystemInstruction 约束模型只输出 JSON
const SystemInstruction = "Output only JSON."

const userTemplate = `You are a data-driven retail analyst. Output ONLY valid JSON matching exactly these keys:
  - category_top_insights: 3 bullet-point strings about the strongest categories
  - category_bottom_insights: 3 bullet-point strings about the weakest categories
  - product_top_insights: 3 bullet-point strings about the top SKUs
  - product_bottom_insights: 3 bullet-point strings about the cold SKUs
  - insights: 5 bullet-point strings with store-wide recommendations

Each bullet must:
  - Reference actual numbers from the data (sales, velocity, days_supply)
  - Include a one-sentence, actionable recommendation

Schema example:
{{.schema}}

Category summary (name, total_sales, percent_of_total):
{{.categories}}

Top SKUs (name, sales, quantity, velocity, days_supply):
{{.top}}

Cold SKUs (name, sales, quantity, velocity, days_supply):
{{.bottom}}
`

// schemaExample 输出格式示例，各分组条数即期望条数
var schemaExample = model.InsightSet{
	CategoryTopInsights: []string{
		"Name the category growing fastest, cite its share of sales, and suggest a 1-2 sentence action (e.g. 'extend shelf space').",
		"Highlight the top-performing category and recommend a cross-sell or bundle opportunity.",
		"Identify which top category depends on few SKUs and suggest how to broaden it.",
	},
	CategoryBottomInsights: []string{
		"Name the weakest category by share of sales and suggest a promotion (e.g. 'run a 10% off promo').",
		"Identify the category with the highest days_supply and suggest an inventory tactic.",
		"Recommend whether a low-share category should be shrunk, repositioned or bundled.",
	},
	ProductTopInsights: []string{
		"Identify one SKU at risk of stock-out and suggest reorder timing based on velocity and days_supply.",
		"Identify one emerging fast-mover and suggest a bundling or upsell opportunity.",
		"Recommend a price test for the best-selling SKU.",
	},
	ProductBottomInsights: []string{
		"Identify one SKU with excess days_supply and recommend a promotional tactic to clear stock.",
		"Recommend a placement change for the slowest-moving SKU.",
		"Recommend whether a cold SKU should be delisted or reordered in smaller batches.",
	},
	Insights: []string{
		"Recommend one pricing adjustment based on the sales mix.",
		"Recommend one marketing channel or discount strategy to boost performance of cold-movers.",
		"Recommend one inventory optimization tactic to reduce holding costs or improve turnover.",
		"Recommend one staffing or opening-hours change supported by the data.",
		"Recommend one metric the store should watch over the next window.",
	},
}

// newTemplate 构造 system + user 两段消息模板
func newTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(schema.GoTemplate,
		schema.SystemMessage(SystemInstruction),
		schema.UserMessage(userTemplate),
	)
}

// BuildMessages 将品类汇总与商品上下文序列化后填入模板
func BuildMessages(ctx context.Context, categories []model.AggregatedCategory, top, bottom []model.ItemContext) ([]*schema.Message, error) {
	vars := make(map[string]any, 4)
	for key, v := range map[string]any{
		"schema":     schemaExample,
		"categories": nonNil(categories),
		"top":        nonNil(top),
		"bottom":     nonNil(bottom),
	} {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", key, err)
		}
		vars[key] = string(b)
	}

	msgs, err := newTemplate().Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}
	return msgs, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
