package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/iWorld-y/pine_pulse/internal/columns"
	"github.com/iWorld-y/pine_pulse/internal/logger"
	"github.com/iWorld-y/pine_pulse/internal/model"
)

// ToTransactions 按列映射把表格行转换为交易记录，时间无法解析的行会被丢弃。
// 不带时区的时间按本地时区解析，与 time.Now() 比较时口径一致
func ToTransactions(t *model.Table, m columns.Mapping) []model.Transaction {
	used := map[string]bool{
		m.Timestamp: true,
		m.Amount:    true,
		m.Item:      true,
		m.Category:  true,
	}
	if m.HasQuantity() {
		used[m.Quantity] = true
	}

	txs := make([]model.Transaction, 0, len(t.Rows))
	dropped := 0
	for _, row := range t.Rows {
		ts, err := dateparse.ParseIn(row[m.Timestamp], time.Local)
		if err != nil {
			dropped++
			continue
		}

		tx := model.Transaction{
			Timestamp: ts,
			Item:      row[m.Item],
			Category:  row[m.Category],
		}
		if amount, ok := ParseNumber(row[m.Amount]); ok {
			tx.Amount = amount
		}
		if m.HasQuantity() {
			if q, ok := ParseNumber(row[m.Quantity]); ok {
				tx.Quantity = &q
			}
		}

		for col, v := range row {
			if used[col] {
				continue
			}
			if tx.Passthrough == nil {
				tx.Passthrough = make(map[string]string)
			}
			tx.Passthrough[col] = v
		}
		txs = append(txs, tx)
	}

	if dropped > 0 {
		logger.Log.Warnf("数据集 [%s] 有 %d 行时间无法解析，已丢弃", t.Name, dropped)
	}
	return txs
}

var numberReplacer = strings.NewReplacer(",", "", "₹", "", "$", "", "€", "", "£", "", "¥", "", " ", "")

// ParseNumber 解析带千分位或货币符号的数字
func ParseNumber(s string) (float64, bool) {
	s = numberReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
