package analysis

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/iWorld-y/pine_pulse/internal/model"
)

// Inventory 按商品汇总剩余库存；没有库存列时返回 nil，所有商品库存视为未知。
// 有库存列时空白单元格按 0 计入合计。
func Inventory(txs []model.Transaction, hasQuantity bool) []model.InventoryRecord {
	if !hasQuantity {
		return nil
	}

	sums := orderedmap.New[string, float64]()
	for _, tx := range txs {
		v, _ := sums.Get(tx.Item)
		if tx.Quantity != nil {
			v += *tx.Quantity
		}
		sums.Set(tx.Item, v)
	}

	records := make([]model.InventoryRecord, 0, sums.Len())
	for p := sums.Oldest(); p != nil; p = p.Next() {
		q := p.Value
		records = append(records, model.InventoryRecord{Item: p.Key, Quantity: &q})
	}
	return records
}

// BuildContext 将销售子集与库存左连接，计算日均销量与可售天数，保持子集顺序
func BuildContext(subset []model.AggregatedItem, inventory []model.InventoryRecord, windowDays int) []model.ItemContext {
	stock := make(map[string]*float64, len(inventory))
	for _, r := range inventory {
		stock[r.Item] = r.Quantity
	}

	ctx := make([]model.ItemContext, 0, len(subset))
	for _, it := range subset {
		c := model.ItemContext{
			Item:     it.Item,
			Sales:    it.Sales,
			Quantity: stock[it.Item],
		}
		if windowDays > 0 {
			c.Velocity = Round1(it.Sales / float64(windowDays))
		}
		// 库存或日均销量为 0/空 时可售天数为空，而不是 0
		if c.Quantity != nil && *c.Quantity != 0 && c.Velocity != 0 {
			ds := Round1(*c.Quantity / c.Velocity)
			c.DaysSupply = &ds
		}
		ctx = append(ctx, c)
	}
	return ctx
}
