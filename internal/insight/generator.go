package insight

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/pine_pulse/internal/config"
	"github.com/iWorld-y/pine_pulse/internal/llm"
	"github.com/iWorld-y/pine_pulse/internal/logger"
	"github.com/iWorld-y/pine_pulse/internal/model"
)

// Result 一次洞察生成的结果
type Result struct {
	Insights   model.InsightSet
	ParseError string // 解析失败时给用户展示的信息
	Raw        string
}

// Generator 洞察生成器
type Generator struct {
	completer   llm.Completer
	limiter     *rate.Limiter
	temperature *float32
	maxTokens   int
}

// NewGenerator 创建洞察生成器，limiter 可为 nil
func NewGenerator(completer llm.Completer, limiter *rate.Limiter, cfg config.LLMConfig) *Generator {
	return &Generator{
		completer:   completer,
		limiter:     limiter,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Generate 调用一次模型并解析回复。调用失败直接返回错误，解析失败降级为空洞察集，均不重试。
func (g *Generator) Generate(ctx context.Context, categories []model.AggregatedCategory, top, bottom []model.ItemContext) (*Result, error) {
	msgs, err := BuildMessages(ctx, categories, top, bottom)
	if err != nil {
		return nil, err
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reply, err := g.completer.Complete(ctx, &llm.Request{
		Messages:    msgs,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate insights: %w", err)
	}
	logger.Log.Debugf("模型回复: %s", reply)

	set, err := ParseInsights(reply)
	if err != nil {
		logger.Log.Warnf("解析模型回复失败: %v", err)
		return &Result{
			Insights:   set,
			ParseError: fmt.Sprintf("Failed to parse AI response: %v", err),
			Raw:        reply,
		}, nil
	}
	return &Result{Insights: set, Raw: reply}, nil
}
