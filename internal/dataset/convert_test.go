package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/pine_pulse/internal/columns"
	"github.com/iWorld-y/pine_pulse/internal/model"
)

func TestToTransactions(t *testing.T) {
	tbl := &model.Table{
		Name:    "downtown",
		Columns: []string{"Timestamp", "SKU", "Amount", "Category", "Stock", "Payment Method"},
		Rows: []map[string]string{
			{"Timestamp": "2025-03-01 10:00:00", "SKU": "A", "Amount": "₹1,250.50", "Category": "Snacks", "Stock": "12", "Payment Method": "UPI"},
			{"Timestamp": "03/02/2025 18:45", "SKU": "B", "Amount": "oops", "Category": "Dairy", "Stock": "", "Payment Method": "Card"},
			{"Timestamp": "not a date", "SKU": "C", "Amount": "5", "Category": "Dairy", "Stock": "1", "Payment Method": "Cash"},
		},
	}
	m := columns.Mapping{Timestamp: "Timestamp", Amount: "Amount", Quantity: "Stock", Item: "SKU", Category: "Category"}

	txs := ToTransactions(tbl, m)
	require.Len(t, txs, 2)

	assert.True(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local).Equal(txs[0].Timestamp), "naive timestamps are local wall-clock time")
	assert.InDelta(t, 1250.50, txs[0].Amount, 1e-9)
	require.NotNil(t, txs[0].Quantity)
	assert.InDelta(t, 12, *txs[0].Quantity, 1e-9)
	assert.Equal(t, map[string]string{"Payment Method": "UPI"}, txs[0].Passthrough)

	assert.Equal(t, time.March, txs[1].Timestamp.Month())
	assert.Equal(t, 2, txs[1].Timestamp.Day())
	assert.Zero(t, txs[1].Amount, "unparsable amount counts as zero")
	assert.Nil(t, txs[1].Quantity, "blank quantity is null")
}

func TestToTransactions_LocalZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	orig := time.Local
	time.Local = ist
	t.Cleanup(func() { time.Local = orig })

	tbl := &model.Table{
		Columns: []string{"Timestamp", "SKU", "Amount", "Category"},
		Rows: []map[string]string{
			{"Timestamp": "2025-03-08 12:00:00", "SKU": "A", "Amount": "1", "Category": "X"},
			{"Timestamp": "03/09/2025 06:30", "SKU": "B", "Amount": "1", "Category": "X"},
		},
	}
	m := columns.Mapping{Timestamp: "Timestamp", Amount: "Amount", Item: "SKU", Category: "Category"}

	txs := ToTransactions(tbl, m)
	require.Len(t, txs, 2)
	assert.True(t, time.Date(2025, 3, 8, 12, 0, 0, 0, ist).Equal(txs[0].Timestamp))
	assert.True(t, time.Date(2025, 3, 9, 6, 30, 0, 0, ist).Equal(txs[1].Timestamp))
}

func TestToTransactions_NoQuantityColumn(t *testing.T) {
	tbl := &model.Table{
		Columns: []string{"Date", "Item", "Amount", "Category"},
		Rows: []map[string]string{
			{"Date": "2025-03-01", "Item": "A", "Amount": "3", "Category": "X"},
		},
	}
	m := columns.Mapping{Timestamp: "Date", Amount: "Amount", Item: "Item", Category: "Category"}

	txs := ToTransactions(tbl, m)
	require.Len(t, txs, 1)
	assert.Nil(t, txs[0].Quantity)
	assert.Nil(t, txs[0].Passthrough)
}

func TestParseNumber(t *testing.T) {
	cases := map[string]struct {
		want float64
		ok   bool
	}{
		"42":        {42, true},
		" 1,234.5 ": {1234.5, true},
		"$9.99":     {9.99, true},
		"-3":        {-3, true},
		"":          {0, false},
		"n/a":       {0, false},
	}
	for in, c := range cases {
		got, ok := ParseNumber(in)
		assert.Equal(t, c.ok, ok, in)
		assert.InDelta(t, c.want, got, 1e-9, in)
	}
}
