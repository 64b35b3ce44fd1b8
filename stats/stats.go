// Package stats summarises a whole catalog independently of any active filter.
package stats

import (
	"cmp"
	"slices"

	"github.com/aluiziolira/go-bargains/models"
)

type group struct {
	name        string
	count       int
	priceSum    float64
	minPrice    float64
	maxPrice    float64
	discountSum int
	discounted  int
}

// CategoryStats groups products by their exact category string and returns
// one entry per group, largest group first. Groups of equal size keep the
// order in which their category was first seen.
func CategoryStats(products []models.Product) []models.CategoryStats {
	index := make(map[string]int)
	groups := make([]*group, 0)

	for _, p := range products {
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, &group{name: p.Category, minPrice: p.Price, maxPrice: p.Price})
		}
		g := groups[i]
		g.count++
		g.priceSum += p.Price
		g.minPrice = min(g.minPrice, p.Price)
		g.maxPrice = max(g.maxPrice, p.Price)
		if p.Discount != nil {
			g.discountSum += *p.Discount
			g.discounted++
		}
	}

	out := make([]models.CategoryStats, 0, len(groups))
	for _, g := range groups {
		avgDiscount := 0.0
		if g.discounted > 0 {
			avgDiscount = float64(g.discountSum) / float64(g.discounted)
		}
		out = append(out, models.CategoryStats{
			Name:         g.name,
			ProductCount: g.count,
			AvgPrice:     g.priceSum / float64(g.count),
			AvgDiscount:  avgDiscount,
			MinPrice:     g.minPrice,
			MaxPrice:     g.maxPrice,
		})
	}

	slices.SortStableFunc(out, func(a, b models.CategoryStats) int {
		return cmp.Compare(b.ProductCount, a.ProductCount)
	})
	return out
}

// Summarize computes the catalog headline numbers. Zero discounts and zero
// original prices count as absent here, as on the dashboard.
func Summarize(products []models.Product) models.Summary {
	s := models.Summary{TotalProducts: len(products)}

	discountSum := 0
	for _, p := range products {
		if p.Discount != nil && *p.Discount != 0 {
			s.OnSale++
			discountSum += *p.Discount
		}
		if p.OriginalPrice != nil && *p.OriginalPrice != 0 {
			s.TotalSavings += models.Savings(p)
		}
	}
	if s.OnSale > 0 {
		s.AvgDiscount = float64(discountSum) / float64(s.OnSale)
	}
	return s
}
