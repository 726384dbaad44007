package analysis

import (
	"math"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/iWorld-y/pine_pulse/internal/model"
)

// TopShare 头部/尾部商品占比
const TopShare = 0.3

// AggregateItems 按商品汇总销售额，顺序为商品首次出现的顺序
func AggregateItems(txs []model.Transaction) []model.AggregatedItem {
	sums := orderedmap.New[string, float64]()
	for _, tx := range txs {
		v, _ := sums.Get(tx.Item)
		sums.Set(tx.Item, v+tx.Amount)
	}

	items := make([]model.AggregatedItem, 0, sums.Len())
	for p := sums.Oldest(); p != nil; p = p.Next() {
		items = append(items, model.AggregatedItem{Item: p.Key, Sales: p.Value})
	}
	return items
}

// AggregateCategories 按品类汇总销售额并计算占比，顺序为品类首次出现的顺序
func AggregateCategories(txs []model.Transaction) []model.AggregatedCategory {
	sums := orderedmap.New[string, float64]()
	var total float64
	for _, tx := range txs {
		v, _ := sums.Get(tx.Category)
		sums.Set(tx.Category, v+tx.Amount)
		total += tx.Amount
	}

	cats := make([]model.AggregatedCategory, 0, sums.Len())
	for p := sums.Oldest(); p != nil; p = p.Next() {
		c := model.AggregatedCategory{Category: p.Key, TotalSales: p.Value}
		if total != 0 {
			c.PercentOfTotal = Round1(p.Value / total * 100)
		}
		cats = append(cats, c)
	}
	return cats
}

// SortCategories 返回按销售额降序排列的副本，用于展示
func SortCategories(cats []model.AggregatedCategory) []model.AggregatedCategory {
	sorted := append([]model.AggregatedCategory(nil), cats...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalSales > sorted[j].TotalSales
	})
	return sorted
}

// TopN n = max(1, ceil(0.3 * distinct))
func TopN(distinct int) int {
	n := int(math.Ceil(TopShare * float64(distinct)))
	if n < 1 {
		n = 1
	}
	return n
}

// TopItems 销售额最高的 n 个商品，销售额相同时保持首次出现顺序
func TopItems(items []model.AggregatedItem, n int) []model.AggregatedItem {
	return selectItems(items, n, func(a, b float64) bool { return a > b })
}

// BottomItems 销售额最低的 n 个商品，与 TopItems 独立选择，数量少时可能重叠
func BottomItems(items []model.AggregatedItem, n int) []model.AggregatedItem {
	return selectItems(items, n, func(a, b float64) bool { return a < b })
}

func selectItems(items []model.AggregatedItem, n int, less func(a, b float64) bool) []model.AggregatedItem {
	sorted := append([]model.AggregatedItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i].Sales, sorted[j].Sales)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Summarize 计算报告顶部的三个指标
func Summarize(txs []model.Transaction, items []model.AggregatedItem) model.Summary {
	var total float64
	for _, tx := range txs {
		total += tx.Amount
	}
	return model.Summary{
		TotalSales:       total,
		TransactionCount: len(txs),
		UniqueItems:      len(items),
	}
}

// Round1 保留一位小数（四舍五入，远离零）
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
