package service

import (
	"fmt"
	"html"
	"io"
	"strings"
	"text/tabwriter"

	"rates_go/internal/domain"
)

const tableHeader = `<table border="1"><tr><th>Date</th><th>Currency</th><th>Sale</th><th>Purchase</th></tr>`

// RenderHTML renders one table row per (date, currency) pair for the browser client.
func RenderHTML(result domain.AggregationResult) string {
	var b strings.Builder
	b.WriteString(tableHeader)
	for _, row := range result.Rows() {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			row.Date,
			html.EscapeString(row.Currency),
			domain.FormatRate(row.Rate.Sale),
			domain.FormatRate(row.Rate.Purchase),
		)
	}
	b.WriteString("</table>")
	return b.String()
}

// RenderText writes an aligned plain-text table, used by the CLI.
// Dates without any rate get a single placeholder row so gaps stay visible.
func RenderText(w io.Writer, result domain.AggregationResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCURRENCY\tSALE\tPURCHASE")
	for _, ds := range result.Snapshots {
		if len(ds.Rates) == 0 {
			fmt.Fprintf(tw, "%s\t-\t-\t-\n", ds.Date)
			continue
		}
		for _, code := range result.Currencies {
			rate, ok := ds.Rates[code]
			if !ok {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				ds.Date,
				code,
				domain.FormatRate(rate.Sale),
				domain.FormatRate(rate.Purchase),
			)
		}
	}
	return tw.Flush()
}
