package analysis

import (
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/pine_pulse/internal/model"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func tx(item, category string, amount float64, daysAgo int, qty *float64) model.Transaction {
	return model.Transaction{
		Timestamp: now.Add(-time.Duration(daysAgo) * 24 * time.Hour),
		Item:      item,
		Category:  category,
		Amount:    amount,
		Quantity:  qty,
	}
}

func TestFilterWindow_InclusiveBoundary(t *testing.T) {
	txs := []model.Transaction{
		tx("A", "X", 1, 7, nil),
		{Timestamp: now.Add(-7*24*time.Hour - time.Second), Item: "B", Amount: 1},
		tx("C", "X", 1, 0, nil),
	}

	kept, err := FilterWindow(txs, 7, now)
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, "A", kept[0].Item)
	assert.Equal(t, "C", kept[1].Item)
	assert.Len(t, txs, 3, "input is not mutated")
}

func TestFilterWindow_InvalidWindow(t *testing.T) {
	_, err := FilterWindow(nil, 10, now)
	require.Error(t, err)
	assert.Equal(t, ReasonInvalidWindow, errors.Reason(err))

	for _, w := range Windows {
		assert.NoError(t, ValidateWindow(w))
	}
}

func TestTopN(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 3: 1, 4: 2, 7: 3, 10: 3, 11: 4}
	for distinct, want := range cases {
		assert.Equal(t, want, TopN(distinct), "distinct=%d", distinct)
	}
}

func TestAggregate_SumsAgree(t *testing.T) {
	txs := []model.Transaction{
		tx("A", "Snacks", 10, 1, nil),
		tx("B", "Dairy", 5.5, 1, nil),
		tx("A", "Snacks", 2.25, 2, nil),
		tx("C", "Dairy", 7, 3, nil),
		tx("D", "Bakery", 0.25, 3, nil),
	}

	items := AggregateItems(txs)
	cats := AggregateCategories(txs)
	summary := Summarize(txs, items)

	var itemSum, catSum float64
	for _, it := range items {
		itemSum += it.Sales
	}
	for _, c := range cats {
		catSum += c.TotalSales
	}
	assert.InDelta(t, summary.TotalSales, itemSum, 1e-9)
	assert.InDelta(t, summary.TotalSales, catSum, 1e-9)
	assert.Equal(t, 5, summary.TransactionCount)
	assert.Equal(t, 4, summary.UniqueItems)

	want := []model.AggregatedItem{{Item: "A", Sales: 12.25}, {Item: "B", Sales: 5.5}, {Item: "C", Sales: 7}, {Item: "D", Sales: 0.25}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("AggregateItems() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Snacks", cats[0].Category)
	assert.Equal(t, 49.0, cats[0].PercentOfTotal)
}

func TestTopAndBottom_TiesKeepFirstAppearance(t *testing.T) {
	items := []model.AggregatedItem{
		{Item: "A", Sales: 10}, {Item: "B", Sales: 30}, {Item: "C", Sales: 10}, {Item: "D", Sales: 30}, {Item: "E", Sales: 5}, {Item: "F", Sales: 20}, {Item: "G", Sales: 5},
	}
	n := TopN(len(items))
	require.Equal(t, 3, n)

	top := TopItems(items, n)
	bottom := BottomItems(items, n)
	assert.Equal(t, []model.AggregatedItem{{Item: "B", Sales: 30}, {Item: "D", Sales: 30}, {Item: "F", Sales: 20}}, top)
	assert.Equal(t, []model.AggregatedItem{{Item: "E", Sales: 5}, {Item: "G", Sales: 5}, {Item: "A", Sales: 10}}, bottom)
	assert.Equal(t, []model.AggregatedItem{{Item: "A", Sales: 10}, {Item: "B", Sales: 30}, {Item: "C", Sales: 10}, {Item: "D", Sales: 30}, {Item: "E", Sales: 5}, {Item: "F", Sales: 20}, {Item: "G", Sales: 5}}, items, "input order unchanged")
}

func TestTopAndBottom_OverlapWithFewItems(t *testing.T) {
	items := []model.AggregatedItem{{Item: "A", Sales: 10}, {Item: "B", Sales: 3}}
	n := TopN(len(items))
	assert.Equal(t, []model.AggregatedItem{{Item: "A", Sales: 10}}, TopItems(items, n))
	assert.Equal(t, []model.AggregatedItem{{Item: "B", Sales: 3}}, BottomItems(items, n))

	single := []model.AggregatedItem{{Item: "A", Sales: 10}}
	assert.Equal(t, TopItems(single, 1), BottomItems(single, 1), "single item is both top and bottom")
}

func TestAggregate_Empty(t *testing.T) {
	items := AggregateItems(nil)
	assert.Empty(t, items)
	assert.Empty(t, AggregateCategories(nil))
	assert.Empty(t, TopItems(items, TopN(len(items))))
	assert.Empty(t, BottomItems(items, TopN(len(items))))

	s := Summarize(nil, items)
	assert.Zero(t, s.TotalSales)
	assert.Zero(t, s.TransactionCount)
	assert.Zero(t, s.UniqueItems)
}

func TestSortCategories(t *testing.T) {
	cats := []model.AggregatedCategory{{Category: "X", TotalSales: 1}, {Category: "Y", TotalSales: 3}, {Category: "Z", TotalSales: 2}}
	sorted := SortCategories(cats)
	assert.Equal(t, []string{"Y", "Z", "X"}, []string{sorted[0].Category, sorted[1].Category, sorted[2].Category})
	assert.Equal(t, "X", cats[0].Category)
}

func TestBuildContext(t *testing.T) {
	inv := []model.InventoryRecord{
		{Item: "A", Quantity: ptr(100)},
		{Item: "B", Quantity: ptr(0)},
		{Item: "C", Quantity: ptr(50)},
	}
	subset := []model.AggregatedItem{{Item: "A", Sales: 70}, {Item: "B", Sales: 35}, {Item: "C", Sales: 0}, {Item: "Z", Sales: 14}}

	ctx := BuildContext(subset, inv, 7)
	require.Len(t, ctx, 4)

	assert.Equal(t, "A", ctx[0].Item)
	assert.Equal(t, 10.0, ctx[0].Velocity)
	require.NotNil(t, ctx[0].DaysSupply)
	assert.Equal(t, 10.0, *ctx[0].DaysSupply)

	assert.Equal(t, 5.0, ctx[1].Velocity)
	assert.Nil(t, ctx[1].DaysSupply, "zero quantity gives null days_supply")

	assert.Equal(t, 0.0, ctx[2].Velocity)
	assert.Nil(t, ctx[2].DaysSupply, "zero velocity gives null days_supply")

	assert.Nil(t, ctx[3].Quantity, "item missing from inventory")
	assert.Nil(t, ctx[3].DaysSupply)
}

func TestBuildContext_NoQuantityColumn(t *testing.T) {
	txs := []model.Transaction{tx("A", "X", 70, 1, nil), tx("B", "X", 7, 1, nil)}
	inv := Inventory(txs, false)
	assert.Nil(t, inv)

	ctx := BuildContext(AggregateItems(txs), inv, 7)
	for _, c := range ctx {
		assert.Nil(t, c.Quantity)
		assert.Nil(t, c.DaysSupply)
	}
}

func TestInventory_SumsPerItem(t *testing.T) {
	txs := []model.Transaction{
		tx("A", "X", 1, 1, ptr(10)),
		tx("B", "X", 1, 1, nil),
		tx("A", "X", 1, 1, ptr(5)),
	}
	inv := Inventory(txs, true)
	require.Len(t, inv, 2)
	assert.Equal(t, "A", inv[0].Item)
	assert.Equal(t, 15.0, *inv[0].Quantity)
	assert.Equal(t, 0.0, *inv[1].Quantity)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 2.3, Round1(2.25))
	assert.Equal(t, 10.0, Round1(9.96))
	assert.Equal(t, -1.3, Round1(-1.25))
}
