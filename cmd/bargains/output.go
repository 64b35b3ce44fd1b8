package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aluiziolira/go-bargains/browse"
	"github.com/aluiziolira/go-bargains/display"
	"github.com/aluiziolira/go-bargains/models"
)

const separator = "--------------------------------------------------"

type printer struct {
	w   io.Writer
	fmt *display.Formatter
}

func newPrinter(w io.Writer, locale string) *printer {
	return &printer{w: w, fmt: display.NewFormatter(locale)}
}

func (p *printer) loadSummary(result *models.LoadResult) {
	fmt.Fprintln(p.w, separator)
	fmt.Fprintf(p.w, "Source:        %s\n", result.Source)
	fmt.Fprintf(p.w, "  Rows:        %d (skipped %d)\n", result.RowCount, result.SkippedRows)
	fmt.Fprintf(p.w, "  Attempts:    %d (retries %d)\n", result.Attempts, result.RetryCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Fprintf(p.w, "  Error types: %v\n", result.ErrorsByType)
	}
	fmt.Fprintf(p.w, "  Duration:    %v\n", result.EndTime.Sub(result.StartTime))
}

func (p *printer) overview(o browse.Overview) {
	fmt.Fprintln(p.w, separator)
	fmt.Fprintf(p.w, "Products:      %d\n", o.Summary.TotalProducts)
	fmt.Fprintf(p.w, "On sale:       %d\n", o.Summary.OnSale)
	fmt.Fprintf(p.w, "Avg discount:  %.0f%%\n", o.Summary.AvgDiscount)
	fmt.Fprintf(p.w, "Total savings: %s\n", p.fmt.Currency(o.Summary.TotalSavings, models.DefaultCurrency))

	if len(o.Categories) > 0 {
		fmt.Fprintln(p.w, "\nCategories")
		tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
		for _, c := range o.Categories {
			style := display.CategoryStyle(c.Name)
			fmt.Fprintf(tw, "  [%s]\t%s\t%d items\t%.0f%% avg off\t%s - %s\n",
				style.Icon, c.Name, c.ProductCount, c.AvgDiscount,
				p.fmt.Currency(c.MinPrice, models.DefaultCurrency), p.fmt.Currency(c.MaxPrice, models.DefaultCurrency))
		}
		tw.Flush()
	}

	p.products("Top deals", o.TopDeals)
	p.products("Biggest savings", o.BiggestSavings)
}

func (p *printer) page(s *browse.Session) {
	visible := s.Visible()
	fmt.Fprintln(p.w, separator)
	fmt.Fprintf(p.w, "Showing %d of %d products (%d active filters)\n",
		len(visible), len(s.Result()), s.ActiveFilterCount())
	p.products("", visible)
	if s.HasMore() {
		fmt.Fprintln(p.w, "  ... more available")
	}
}

func (p *printer) products(title string, products []models.Product) {
	if len(products) == 0 {
		return
	}
	if title != "" {
		fmt.Fprintf(p.w, "\n%s\n", title)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	for _, prod := range products {
		price := p.fmt.Currency(prod.Price, prod.Currency)
		was := ""
		if prod.OriginalPrice != nil {
			was = "was " + p.fmt.Currency(*prod.OriginalPrice, prod.Currency)
		}
		var badges []string
		if d := display.Discount(prod.Discount); d != "" {
			badges = append(badges, d)
		}
		if prod.HasLimit() {
			badges = append(badges, "limit "+prod.Limit)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			prod.Name, prod.Category, price, was, strings.Join(badges, ", "))
	}
	tw.Flush()
}
