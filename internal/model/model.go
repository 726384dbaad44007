package model

import "time"

// Table 原始表格数据，列顺序与文件一致
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]string
}

// Transaction 单条交易记录，加载后不可修改
type Transaction struct {
	Timestamp   time.Time
	Amount      float64
	Quantity    *float64 // 未找到库存列时为 nil
	Item        string
	Category    string
	Passthrough map[string]string
}

// AggregatedItem 按商品汇总的销售额
type AggregatedItem struct {
	Item  string  `json:"name"`
	Sales float64 `json:"sales"`
}

// AggregatedCategory 按品类汇总的销售额
type AggregatedCategory struct {
	Category       string  `json:"name"`
	TotalSales     float64 `json:"total_sales"`
	PercentOfTotal float64 `json:"percent_of_total"`
}

// InventoryRecord 商品剩余库存
type InventoryRecord struct {
	Item     string
	Quantity *float64
}

// ItemContext 发送给 LLM 与向量索引的商品上下文
type ItemContext struct {
	Item       string   `json:"name"`
	Sales      float64  `json:"sales"`
	Quantity   *float64 `json:"quantity"`
	Velocity   float64  `json:"velocity"`
	DaysSupply *float64 `json:"days_supply"`
}

// InsightSet LLM 生成的五组洞察
type InsightSet struct {
	CategoryTopInsights    []string `json:"category_top_insights"`
	CategoryBottomInsights []string `json:"category_bottom_insights"`
	ProductTopInsights     []string `json:"product_top_insights"`
	ProductBottomInsights  []string `json:"product_bottom_insights"`
	Insights               []string `json:"insights"`
}

// EmptyInsightSet 返回所有分组均为空列表的洞察集
func EmptyInsightSet() InsightSet {
	return InsightSet{
		CategoryTopInsights:    []string{},
		CategoryBottomInsights: []string{},
		ProductTopInsights:     []string{},
		ProductBottomInsights:  []string{},
		Insights:               []string{},
	}
}

// Summary 报告顶部的汇总指标
type Summary struct {
	TotalSales       float64   `json:"total_sales"`
	TransactionCount int       `json:"transaction_count"`
	UniqueItems      int       `json:"unique_items"`
	WindowDays       int       `json:"window_days"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Report 一次完整的报告生成结果
type Report struct {
	RunID      string
	Dataset    string
	Summary    Summary
	Categories []AggregatedCategory // 已按销售额降序
	Top        []ItemContext
	Bottom     []ItemContext
	Insights   InsightSet
	ParseError string // 非空时报告降级渲染
}

// ReportRun 历史报告摘要
type ReportRun struct {
	ID               string    `json:"id"`
	Dataset          string    `json:"dataset"`
	WindowDays       int       `json:"window_days"`
	TotalSales       float64   `json:"total_sales"`
	TransactionCount int       `json:"transaction_count"`
	UniqueItems      int       `json:"unique_items"`
	ParseError       string    `json:"parse_error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
