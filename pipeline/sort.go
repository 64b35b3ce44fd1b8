package pipeline

import (
	"cmp"
	"slices"

	"github.com/aluiziolira/go-bargains/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort orders products in place by key. The sort is stable, so products that
// compare equal keep their relative order. Unknown keys leave the slice as is.
func Sort(products []models.Product, key models.SortKey) {
	SortLocale(products, key, language.Und)
}

// SortLocale is Sort with an explicit collation language for the name key.
func SortLocale(products []models.Product, key models.SortKey, lang language.Tag) {
	var compare func(a, b models.Product) int

	switch key {
	case models.SortDiscount:
		compare = func(a, b models.Product) int {
			return cmp.Compare(b.DiscountOrZero(), a.DiscountOrZero())
		}
	case models.SortSavings:
		compare = func(a, b models.Product) int {
			return cmp.Compare(models.Savings(b), models.Savings(a))
		}
	case models.SortPriceLow:
		compare = func(a, b models.Product) int {
			return cmp.Compare(a.Price, b.Price)
		}
	case models.SortPriceHigh:
		compare = func(a, b models.Product) int {
			return cmp.Compare(b.Price, a.Price)
		}
	case models.SortName:
		// Collators keep internal buffers and are not safe to share.
		c := collate.New(lang)
		compare = func(a, b models.Product) int {
			return c.CompareString(a.Name, b.Name)
		}
	default:
		return
	}

	slices.SortStableFunc(products, compare)
}
