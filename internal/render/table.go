package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/iWorld-y/pine_pulse/internal/model"
)

// Table 在终端输出报告摘要
func Table(w io.Writer, r *model.Report) {
	fmt.Fprintf(w, "PinePulse · %s · last %d days\n\n", r.Dataset, r.Summary.WindowDays)

	metrics := tablewriter.NewWriter(w)
	metrics.SetHeader([]string{"Total Sales", "Transactions", "Unique Items"})
	metrics.Append([]string{
		money(r.Summary.TotalSales),
		count(r.Summary.TransactionCount),
		count(r.Summary.UniqueItems),
	})
	metrics.Render()
	fmt.Fprintln(w)

	cats := tablewriter.NewWriter(w)
	cats.SetHeader([]string{"Category", "Sales", "% of Total"})
	for _, c := range r.Categories {
		cats.Append([]string{c.Category, money(c.TotalSales), fmt.Sprintf("%.1f", c.PercentOfTotal)})
	}
	cats.Render()
	fmt.Fprintln(w)

	items := tablewriter.NewWriter(w)
	items.SetHeader([]string{"Group", "Item", "Sales", "Quantity", "Velocity", "Days Supply"})
	appendItems := func(group string, list []model.ItemContext) {
		for _, it := range list {
			items.Append([]string{group, it.Item, money(it.Sales), optFloat(it.Quantity), fmt.Sprintf("%.1f", it.Velocity), optFloat(it.DaysSupply)})
		}
	}
	appendItems("top", r.Top)
	appendItems("cold", r.Bottom)
	items.Render()

	if r.ParseError != "" {
		fmt.Fprintf(w, "\n! %s\n", r.ParseError)
	}

	for _, s := range Sections(r.Insights) {
		fmt.Fprintf(w, "\n%s\n%s\n", s.Title, strings.Repeat("-", len(s.Title)))
		if len(s.Bullets) == 0 {
			fmt.Fprintln(w, "  (none)")
			continue
		}
		for _, b := range s.Bullets {
			fmt.Fprintf(w, "  • %s\n", b)
		}
	}
}

func optFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
