package render

import "github.com/iWorld-y/pine_pulse/internal/model"

var defaultColors = []string{
	"#2563EB", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartConfig 前端 Chart.js 使用的图表配置
type ChartConfig struct {
	ID     string        `json:"id"`
	Type   string        `json:"type"`
	Title  string        `json:"title"`
	XAxis  string        `json:"xAxis"`
	YAxis  string        `json:"yAxis"`
	Series []ChartSeries `json:"series"`
	Colors []string      `json:"colors"`
}

// ChartSeries 一组数据
type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

// ChartPoint 单个数据点
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BuildCharts 生成品类、头部商品、冷门商品三张柱状图
func BuildCharts(r *model.Report) []ChartConfig {
	cats := make([]ChartPoint, 0, len(r.Categories))
	for _, c := range r.Categories {
		cats = append(cats, ChartPoint{Label: c.Category, Value: c.TotalSales})
	}

	return []ChartConfig{
		barChart("category-chart", "Sales by Category", "Category", cats),
		barChart("top-chart", "Top Items", "Item", itemPoints(r.Top)),
		barChart("cold-chart", "Cold Items", "Item", itemPoints(r.Bottom)),
	}
}

func itemPoints(items []model.ItemContext) []ChartPoint {
	points := make([]ChartPoint, 0, len(items))
	for _, it := range items {
		points = append(points, ChartPoint{Label: it.Item, Value: it.Sales})
	}
	return points
}

func barChart(id, title, xAxis string, points []ChartPoint) ChartConfig {
	return ChartConfig{
		ID:     id,
		Type:   "bar",
		Title:  title,
		XAxis:  xAxis,
		YAxis:  "Sales",
		Series: []ChartSeries{{Name: "Sales", Data: points}},
		Colors: assignColors(len(points)),
	}
}

func assignColors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
