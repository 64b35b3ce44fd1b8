package pipeline

import (
	"strings"

	"github.com/aluiziolira/go-bargains/models"
)

// matcher is a FilterSpec compiled for repeated evaluation: the category set
// and the lowered query are built once per run instead of once per product.
type matcher struct {
	categories  map[string]struct{}
	low, high   float64
	minDiscount int
	query       string
	hasLimit    *bool
}

func compile(spec models.FilterSpec) matcher {
	m := matcher{
		low:         spec.PriceRange[0],
		high:        spec.PriceRange[1],
		minDiscount: spec.MinDiscount,
		query:       strings.ToLower(spec.SearchQuery),
		hasLimit:    spec.HasLimit,
	}
	if len(spec.Categories) > 0 {
		m.categories = make(map[string]struct{}, len(spec.Categories))
		for _, c := range spec.Categories {
			m.categories[c] = struct{}{}
		}
	}
	return m
}

// Predicates run cheapest first; each one is vacuously true when its
// criterion is unset, except the price range which always applies.
func (m matcher) match(p models.Product) bool {
	if m.categories != nil {
		if _, ok := m.categories[p.Category]; !ok {
			return false
		}
	}
	if p.Price < m.low || p.Price > m.high {
		return false
	}
	if m.minDiscount > 0 && p.DiscountOrZero() < m.minDiscount {
		return false
	}
	if m.query != "" &&
		!strings.Contains(strings.ToLower(p.Name), m.query) &&
		!strings.Contains(strings.ToLower(p.Category), m.query) {
		return false
	}
	if m.hasLimit != nil && *m.hasLimit != p.HasLimit() {
		return false
	}
	return true
}

// Matches reports whether p satisfies every criterion in spec.
func Matches(p models.Product, spec models.FilterSpec) bool {
	return compile(spec).match(p)
}
