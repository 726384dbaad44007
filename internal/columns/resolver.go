package columns

import (
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
)

// ReasonMissingColumn 必需列缺失的错误原因
const ReasonMissingColumn = "MISSING_COLUMN"

// CategoryColumn 品类列是固定列名，不参与关键字匹配
const CategoryColumn = "Category"

// 关键字按优先级排列，靠前的关键字优先
var (
	AmountKeywords    = []string{"total amount", "amount", "total", "sales", "revenue"}
	QuantityKeywords  = []string{"stock remaining", "quantity remaining", "stock", "inventory", "quantity", "qty"}
	ItemKeywords      = []string{"sku", "item", "product"}
	TimestampKeywords = []string{"timestamp", "date", "time"}
)

// Mapping 语义字段到实际列名的映射，Quantity 可能为空
type Mapping struct {
	Timestamp string
	Amount    string
	Quantity  string
	Item      string
	Category  string
}

// HasQuantity 数据集中是否存在库存列
func (m Mapping) HasQuantity() bool {
	return m.Quantity != ""
}

// Find 按关键字优先级查找第一个包含关键字的列，大小写不敏感
func Find(keywords []string, columns []string) (string, bool) {
	lowered := make([]string, len(columns))
	for i, c := range columns {
		lowered[i] = strings.ToLower(c)
	}
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		for i, c := range lowered {
			if strings.Contains(c, kw) {
				return columns[i], true
			}
		}
	}
	return "", false
}

// Resolve 解析数据集列名；金额、商品、品类、时间列缺失时返回 MISSING_COLUMN
func Resolve(columns []string) (Mapping, error) {
	var m Mapping
	var missing []string

	if c, ok := Find(TimestampKeywords, columns); ok {
		m.Timestamp = c
	} else {
		missing = append(missing, "timestamp")
	}
	if c, ok := Find(AmountKeywords, columns); ok {
		m.Amount = c
	} else {
		missing = append(missing, "amount")
	}
	if c, ok := Find(ItemKeywords, columns); ok {
		m.Item = c
	} else {
		missing = append(missing, "item")
	}
	if hasExact(columns, CategoryColumn) {
		m.Category = CategoryColumn
	} else {
		missing = append(missing, "category")
	}
	if c, ok := Find(QuantityKeywords, columns); ok {
		m.Quantity = c
	}

	if len(missing) > 0 {
		return m, errors.BadRequest(ReasonMissingColumn,
			"required columns not found: "+strings.Join(missing, ", ")).
			WithMetadata(map[string]string{"columns": strings.Join(columns, ",")})
	}
	return m, nil
}

func hasExact(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
