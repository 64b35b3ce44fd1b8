// Package pipeline turns a catalog and a FilterSpec into an ordered result,
// and exports results through pluggable writers.
package pipeline

import (
	"slices"

	"github.com/aluiziolira/go-bargains/models"
	"golang.org/x/text/language"
)

// DefaultPriceCeiling is the placeholder upper bound used until the dataset's
// real maximum price is known.
const DefaultPriceCeiling = 1000

// DefaultSpec returns the spec a browsing session starts with.
func DefaultSpec() models.FilterSpec {
	return models.FilterSpec{
		PriceRange: [2]float64{0, DefaultPriceCeiling},
		SortKey:    models.SortDiscount,
	}
}

// Run filters products with spec in a single pass and sorts the survivors by
// spec.SortKey. The input slice is never modified.
func Run(products []models.Product, spec models.FilterSpec) []models.Product {
	return RunLocale(products, spec, language.Und)
}

// RunLocale is Run with an explicit collation language for name sorting.
func RunLocale(products []models.Product, spec models.FilterSpec, lang language.Tag) []models.Product {
	m := compile(spec)
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if m.match(p) {
			out = append(out, p)
		}
	}
	SortLocale(out, spec.SortKey, lang)
	return out
}

// Categories returns the distinct category names in ascending order.
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{}, 32)
	out := make([]string, 0, 32)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}

// MaxPrice returns the highest price in products, or 0 when empty.
func MaxPrice(products []models.Product) float64 {
	highest := 0.0
	for i, p := range products {
		if i == 0 || p.Price > highest {
			highest = p.Price
		}
	}
	return highest
}

// ActiveFilterCount counts the dimensions of spec that differ from the
// defaults. Each selected category counts separately.
func ActiveFilterCount(spec models.FilterSpec, maxPrice float64) int {
	count := len(spec.Categories)
	if spec.SearchQuery != "" {
		count++
	}
	if spec.MinDiscount > 0 {
		count++
	}
	if spec.HasLimit != nil {
		count++
	}
	if spec.PriceRange[0] > 0 || spec.PriceRange[1] < maxPrice {
		count++
	}
	if spec.SortKey != models.SortDiscount {
		count++
	}
	return count
}
