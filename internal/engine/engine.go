package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/pine_pulse/internal/analysis"
	"github.com/iWorld-y/pine_pulse/internal/columns"
	"github.com/iWorld-y/pine_pulse/internal/config"
	"github.com/iWorld-y/pine_pulse/internal/dataset"
	"github.com/iWorld-y/pine_pulse/internal/index"
	"github.com/iWorld-y/pine_pulse/internal/insight"
	"github.com/iWorld-y/pine_pulse/internal/llm"
	"github.com/iWorld-y/pine_pulse/internal/logger"
	"github.com/iWorld-y/pine_pulse/internal/model"
	"github.com/iWorld-y/pine_pulse/internal/storage"
)

// InsightGenerator 根据汇总数据生成洞察
type InsightGenerator interface {
	Generate(ctx context.Context, categories []model.AggregatedCategory, top, bottom []model.ItemContext) (*insight.Result, error)
}

// ContextIndexer 将商品上下文写入向量索引
type ContextIndexer interface {
	Index(ctx context.Context, items []model.ItemContext) error
}

// ReportStore 保存报告历史
type ReportStore interface {
	SaveReport(ctx context.Context, report *model.Report) error
}

// Engine 报告生成引擎
type Engine struct {
	insights InsightGenerator
	indexer  ContextIndexer // 为 nil 时跳过向量索引
	store    ReportStore    // 为 nil 时不保存历史
}

// NewEngine 使用已创建好的服务句柄构造引擎，indexer 与 store 可为 nil
func NewEngine(insights InsightGenerator, indexer ContextIndexer, store ReportStore) *Engine {
	return &Engine{
		insights: insights,
		indexer:  indexer,
		store:    store,
	}
}

// Build 根据配置创建 LLM、向量化客户端与限流器，并组装引擎。
// store 为 nil 时既不保存历史也不写向量索引。返回的 Completer 需由调用方关闭。
func Build(ctx context.Context, cfg *config.Config, store *storage.Storage) (*Engine, llm.Completer, error) {
	limiter := newLimiter(cfg.Concurrency)

	completer, err := llm.NewCompleter(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	gen := insight.NewGenerator(completer, limiter, cfg.LLM)

	if store == nil {
		logger.Log.Warn("未配置数据库，跳过向量索引与报告历史")
		return NewEngine(gen, nil, nil), completer, nil
	}

	var indexer ContextIndexer
	embedder, err := index.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		logger.Log.Warnf("向量化客户端不可用，跳过向量索引: %v", err)
	} else {
		indexer = index.NewIndexer(embedder, store, cfg.VectorIndex.Name, limiter)
	}

	return NewEngine(gen, indexer, store), completer, nil
}

func newLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	limit := rate.Limit(float64(cfg.RPM) / 60.0)
	burst := cfg.QPS
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(limit, burst)
}

// Options 生成选项
type Options struct {
	Table      *model.Table
	WindowDays int
	Now        time.Time // 零值时使用当前时间
}

// Generate 执行一次完整的报告生成
func (e *Engine) Generate(ctx context.Context, opts Options) (*model.Report, error) {
	if opts.Table == nil {
		return nil, fmt.Errorf("no dataset provided")
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if err := analysis.ValidateWindow(opts.WindowDays); err != nil {
		return nil, err
	}

	log := logger.Log.WithField("dataset", opts.Table.Name).WithField("window", opts.WindowDays)
	log.Infof("开始生成报告，共 %d 行", len(opts.Table.Rows))

	// 1. 列解析
	mapping, err := columns.Resolve(opts.Table.Columns)
	if err != nil {
		return nil, err
	}
	if !mapping.HasQuantity() {
		log.Warn("quantity column not found")
	}

	// 2. 时间窗口过滤
	txs := dataset.ToTransactions(opts.Table, mapping)
	windowed, err := analysis.FilterWindow(txs, opts.WindowDays, now)
	if err != nil {
		return nil, err
	}
	if len(windowed) == 0 {
		log.Warn("时间窗口内没有交易记录")
	}

	// 3. 汇总
	items := analysis.AggregateItems(windowed)
	categories := analysis.AggregateCategories(windowed)
	n := analysis.TopN(len(items))
	top := analysis.TopItems(items, n)
	bottom := analysis.BottomItems(items, n)

	// 4. 库存上下文
	inventory := analysis.Inventory(windowed, mapping.HasQuantity())
	topCtx := analysis.BuildContext(top, inventory, opts.WindowDays)
	bottomCtx := analysis.BuildContext(bottom, inventory, opts.WindowDays)

	// 5. 向量索引
	if e.indexer != nil {
		combined := make([]model.ItemContext, 0, len(topCtx)+len(bottomCtx))
		combined = append(combined, topCtx...)
		combined = append(combined, bottomCtx...)
		if err := e.indexer.Index(ctx, combined); err != nil {
			return nil, fmt.Errorf("index item context: %w", err)
		}
	} else {
		log.Warn("未配置向量索引，跳过")
	}

	// 6. 洞察
	res, err := e.insights.Generate(ctx, categories, topCtx, bottomCtx)
	if err != nil {
		return nil, err
	}

	summary := analysis.Summarize(windowed, items)
	summary.WindowDays = opts.WindowDays
	summary.GeneratedAt = now

	report := &model.Report{
		RunID:      uuid.NewString(),
		Dataset:    opts.Table.Name,
		Summary:    summary,
		Categories: analysis.SortCategories(categories),
		Top:        topCtx,
		Bottom:     bottomCtx,
		Insights:   res.Insights,
		ParseError: res.ParseError,
	}

	if e.store != nil {
		if err := e.store.SaveReport(ctx, report); err != nil {
			log.Errorf("保存报告失败: %v", err)
		}
	}

	log.Infof("报告生成完毕: 总销售额 %.2f, 交易 %d 笔, 商品 %d 个", summary.TotalSales, summary.TransactionCount, summary.UniqueItems)
	return report, nil
}
