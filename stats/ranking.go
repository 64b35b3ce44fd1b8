package stats

import (
	"cmp"
	"slices"

	"github.com/aluiziolira/go-bargains/models"
)

// TopDeals returns up to n discounted products, highest discount first.
// Equal discounts keep their catalog order.
func TopDeals(products []models.Product, n int) []models.Product {
	if n <= 0 {
		return []models.Product{}
	}

	deals := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Discount != nil {
			deals = append(deals, p)
		}
	}
	slices.SortStableFunc(deals, func(a, b models.Product) int {
		return cmp.Compare(*b.Discount, *a.Discount)
	})
	return truncate(deals, n)
}

// BiggestSavings returns up to n products with an original price, largest
// saving first. Savings are not clamped, so inconsistent rows where the
// original price is below the current price sort last.
func BiggestSavings(products []models.Product, n int) []models.Product {
	if n <= 0 {
		return []models.Product{}
	}

	type ranked struct {
		product models.Product
		savings float64
	}
	candidates := make([]ranked, 0, len(products))
	for _, p := range products {
		if p.OriginalPrice != nil {
			candidates = append(candidates, ranked{product: p, savings: models.Savings(p)})
		}
	}
	slices.SortStableFunc(candidates, func(a, b ranked) int {
		return cmp.Compare(b.savings, a.savings)
	})

	limit := min(n, len(candidates))
	out := make([]models.Product, limit)
	for i := 0; i < limit; i++ {
		out[i] = candidates[i].product
	}
	return out
}

func truncate(products []models.Product, n int) []models.Product {
	if len(products) > n {
		return products[:n:n]
	}
	return products
}
