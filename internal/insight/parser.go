package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iWorld-y/pine_pulse/internal/model"
)

// extractJSON 截取第一个 "{" 到最后一个 "}" 之间的内容，找不到时返回原文
func extractJSON(reply string) string {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end <= start {
		return reply
	}
	return reply[start : end+1]
}

// ParseInsights 解析模型回复。失败时返回全空的洞察集与错误，缺失的分组为空列表。
func ParseInsights(reply string) (model.InsightSet, error) {
	candidate := strings.TrimSpace(extractJSON(reply))
	if candidate == "" || candidate == "null" {
		return model.EmptyInsightSet(), errors.New("reply does not contain a JSON object")
	}

	var set model.InsightSet
	if err := json.Unmarshal([]byte(candidate), &set); err != nil {
		return model.EmptyInsightSet(), fmt.Errorf("json unmarshal: %w", err)
	}

	for _, s := range []*[]string{
		&set.CategoryTopInsights,
		&set.CategoryBottomInsights,
		&set.ProductTopInsights,
		&set.ProductBottomInsights,
		&set.Insights,
	} {
		if *s == nil {
			*s = []string{}
		}
	}
	return set, nil
}
