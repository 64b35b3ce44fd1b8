package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscount(t *testing.T) {
	d := 25
	zero := 0
	assert.Equal(t, "25% OFF", Discount(&d))
	assert.Equal(t, "", Discount(&zero))
	assert.Equal(t, "", Discount(nil))
}

func TestCurrencyIncludesAmount(t *testing.T) {
	f := NewFormatter("en-NZ")
	assert.Contains(t, f.Currency(12.5, "NZD"), "12.50")
	assert.Contains(t, f.Currency(3, "usd"), "3.00")
}

func TestCurrencyUnknownCodeFallsBack(t *testing.T) {
	f := NewFormatter("not a locale")
	assert.Equal(t, f.Currency(4.2, "NZD"), f.Currency(4.2, "???"))
}

func TestCategoryStyle(t *testing.T) {
	assert.Equal(t, CategoryStyle("dairy"), CategoryStyle("diary"))
	assert.Equal(t, "milk", CategoryStyle("  DAIRY ").Icon)
	assert.Equal(t, DefaultStyle, CategoryStyle("garden"))
	assert.Equal(t, DefaultStyle, CategoryStyle(""))
	assert.False(t, strings.Contains(CategoryStyle("meat").Icon, " "))
}
