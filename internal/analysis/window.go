package analysis

import (
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/errors"

	"github.com/iWorld-y/pine_pulse/internal/model"
)

// ReasonInvalidWindow 时间窗口不在允许范围内
const ReasonInvalidWindow = "INVALID_WINDOW"

// Windows 可选的时间窗口（天）
var Windows = []int{7, 14, 30}

// ValidateWindow 校验时间窗口
func ValidateWindow(days int) error {
	for _, w := range Windows {
		if w == days {
			return nil
		}
	}
	return errors.BadRequest(ReasonInvalidWindow, fmt.Sprintf("window must be one of %v days, got %d", Windows, days))
}

// FilterWindow 保留时间戳 >= now-days 的交易，边界包含在内
func FilterWindow(txs []model.Transaction, days int, now time.Time) ([]model.Transaction, error) {
	if err := ValidateWindow(days); err != nil {
		return nil, err
	}
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	kept := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Timestamp.Before(cutoff) {
			kept = append(kept, tx)
		}
	}
	return kept, nil
}
