package render

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/iWorld-y/pine_pulse/internal/model"
)

// Section 一组带标题的洞察
type Section struct {
	Title   string
	Bullets []string
}

// HTMLData 模板渲染数据
type HTMLData struct {
	Report   *model.Report
	Charts   []ChartConfig
	Sections []Section
}

// Sections 按固定顺序返回五组洞察
func Sections(set model.InsightSet) []Section {
	return []Section{
		{Title: "Top Category Insights", Bullets: set.CategoryTopInsights},
		{Title: "Cold Category Insights", Bullets: set.CategoryBottomInsights},
		{Title: "Top Product Insights", Bullets: set.ProductTopInsights},
		{Title: "Cold Product Insights", Bullets: set.ProductBottomInsights},
		{Title: "Recommendations", Bullets: set.Insights},
	}
}

var funcs = template.FuncMap{
	"money": money,
	"count": count,
	"opt": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return humanize.FormatFloat("#,###.#", *v)
	},
	"num":  func(v float64) string { return humanize.FormatFloat("#,###.#", v) },
	"date": func(r *model.Report) string { return r.Summary.GeneratedAt.Format("2006-01-02 15:04") },
}

var reportTpl = template.Must(template.New("report").Funcs(funcs).Parse(htmlTpl))

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

// HTML 渲染报告页面
func HTML(w io.Writer, r *model.Report) error {
	return reportTpl.Execute(w, HTMLData{
		Report:   r,
		Charts:   BuildCharts(r),
		Sections: Sections(r.Insights),
	})
}

// WriteHTMLFile 将报告写入 dir，返回文件路径
func WriteHTMLFile(dir string, r *model.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("pinepulse_%s_%dd_%s.html",
		safeName(r.Dataset), r.Summary.WindowDays, r.Summary.GeneratedAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := HTML(f, r); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return path, nil
}

func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "report"
	}
	return s
}

const htmlTpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>PinePulse | {{.Report.Dataset}}</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        :root {
            --primary-color: #2563eb;
            --bg-color: #f8fafc;
            --card-bg: #ffffff;
            --text-main: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            background-color: var(--bg-color);
            color: var(--text-main);
            line-height: 1.6;
            margin: 0;
            padding: 20px;
        }
        .container { max-width: 1000px; margin: 0 auto; }
        header { text-align: center; margin-bottom: 32px; }
        h1 { font-size: 2.2rem; margin: 0 0 8px 0; }
        .meta { color: var(--text-secondary); }
        .metrics { display: grid; gap: 16px; grid-template-columns: repeat(3, 1fr); margin-bottom: 32px; }
        .metric, .card {
            background: var(--card-bg);
            border: 1px solid var(--border-color);
            border-radius: 12px;
            padding: 20px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.05);
        }
        .metric .label { color: var(--text-secondary); font-size: 0.9rem; }
        .metric .value { font-size: 1.8rem; font-weight: 800; }
        .charts { display: grid; gap: 20px; grid-template-columns: 1fr; margin-bottom: 32px; }
        @media (min-width: 768px) { .charts { grid-template-columns: 1fr 1fr; } .charts .wide { grid-column: 1 / -1; } }
        .error { background: #fef2f2; border-left: 4px solid #ef4444; color: #991b1b; padding: 16px; border-radius: 8px; margin-bottom: 24px; }
        .insights { display: grid; gap: 20px; grid-template-columns: 1fr; }
        @media (min-width: 768px) { .insights { grid-template-columns: 1fr 1fr; } }
        .insights h3 { margin-top: 0; color: #334155; }
        .insights ul { padding-left: 20px; }
        .empty { color: var(--text-secondary); font-style: italic; }
        table { width: 100%; border-collapse: collapse; margin-top: 12px; }
        th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid var(--border-color); }
        td.num { text-align: right; }
    </style>
</head>
<body>
<div class="container">
    <header>
        <h1>PinePulse</h1>
        <div class="meta">{{.Report.Dataset}} · last {{.Report.Summary.WindowDays}} days · generated {{date .Report}}</div>
    </header>

    <section class="metrics">
        <div class="metric"><div class="label">Total Sales</div><div class="value">{{money .Report.Summary.TotalSales}}</div></div>
        <div class="metric"><div class="label">Transactions</div><div class="value">{{count .Report.Summary.TransactionCount}}</div></div>
        <div class="metric"><div class="label">Unique Items</div><div class="value">{{count .Report.Summary.UniqueItems}}</div></div>
    </section>

    <section class="charts">
        {{range $i, $c := .Charts}}
        <div class="card{{if eq $i 0}} wide{{end}}"><canvas id="{{$c.ID}}"></canvas></div>
        {{end}}
    </section>

    {{if .Report.ParseError}}
    <div class="error">{{.Report.ParseError}}</div>
    {{end}}

    <section class="insights">
        {{range .Sections}}
        <div class="card">
            <h3>{{.Title}}</h3>
            {{if .Bullets}}
            <ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>
            {{else}}
            <p class="empty">No insights available.</p>
            {{end}}
        </div>
        {{end}}
    </section>

    <section class="card" style="margin-top: 32px;">
        <h3>Item Context</h3>
        <table>
            <tr><th>Item</th><th>Group</th><th>Sales</th><th>Quantity</th><th>Velocity</th><th>Days Supply</th></tr>
            {{range .Report.Top}}<tr><td>{{.Item}}</td><td>top</td><td class="num">{{money .Sales}}</td><td class="num">{{opt .Quantity}}</td><td class="num">{{num .Velocity}}</td><td class="num">{{opt .DaysSupply}}</td></tr>{{end}}
            {{range .Report.Bottom}}<tr><td>{{.Item}}</td><td>cold</td><td class="num">{{money .Sales}}</td><td class="num">{{opt .Quantity}}</td><td class="num">{{num .Velocity}}</td><td class="num">{{opt .DaysSupply}}</td></tr>{{end}}
        </table>
    </section>
</div>

<script>
    const charts = {{.Charts}};
    charts.forEach(cfg => {
        const el = document.getElementById(cfg.id);
        if (!el) return;
        new Chart(el, {
            type: cfg.type,
            data: {
                labels: cfg.series[0].data.map(p => p.label),
                datasets: cfg.series.map(s => ({
                    label: s.name,
                    data: s.data.map(p => p.value),
                    backgroundColor: cfg.colors,
                })),
            },
            options: {
                plugins: { title: { display: true, text: cfg.title }, legend: { display: false } },
                scales: { x: { title: { display: true, text: cfg.xAxis } }, y: { title: { display: true, text: cfg.yAxis }, beginAtZero: true } },
            },
        });
    });
</script>
</body>
</html>
`
