package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogCSV = "\ufeffCategory,ID,Name,Price,Original Price,Discount %,Currency,Display Price,Store ID,Store Name,Item MSID,Stock Level,Limit,Image URL\n" +
	"dairy,101,Trim Milk 2L,4.20,5.00,16,NZD,$4.20,s1,Central,m-101,high,,http://img.test/101.png\n" +
	"meat,102,Scotch Fillet,32,40,20,,$32.00,s1,Central,m-102,low,2,\n" +
	"\n" +
	",,,,,,,,,,,,,\n" +
	"bakery,103,Sourdough,abc,,,AUD,,s2,North,m-103,,,\n" +
	"frozen,104,Peas,NaN,-3,25.7,NZD,,s2,North,m-104,,6,\n"

func TestParseProducts(t *testing.T) {
	result, err := ParseProducts(strings.NewReader(catalogCSV))
	require.NoError(t, err)

	require.Len(t, result.Products, 4)
	assert.Equal(t, 1, result.Skipped)

	milk := result.Products[0]
	assert.Equal(t, "dairy", milk.Category)
	assert.Equal(t, "101", milk.ID)
	assert.Equal(t, "Trim Milk 2L", milk.Name)
	assert.Equal(t, 4.2, milk.Price)
	require.NotNil(t, milk.OriginalPrice)
	assert.Equal(t, 5.0, *milk.OriginalPrice)
	require.NotNil(t, milk.Discount)
	assert.Equal(t, 16, *milk.Discount)
	assert.Equal(t, "$4.20", milk.DisplayPrice)
	assert.Equal(t, "Central", milk.StoreName)
	assert.Equal(t, "http://img.test/101.png", milk.ImageURL)
	assert.Empty(t, milk.Limit)

	steak := result.Products[1]
	assert.Equal(t, "NZD", steak.Currency, "blank currency defaults")
	assert.Equal(t, "2", steak.Limit)

	bread := result.Products[2]
	assert.Zero(t, bread.Price, "unparsable price")
	assert.Nil(t, bread.OriginalPrice)
	assert.Nil(t, bread.Discount)
	assert.Equal(t, "AUD", bread.Currency)

	peas := result.Products[3]
	assert.Zero(t, peas.Price, "NaN price")
	assert.Nil(t, peas.OriginalPrice, "negative original price")
	require.NotNil(t, peas.Discount)
	assert.Equal(t, 25, *peas.Discount)
}

func TestParseProductsKeepsTextCellsVerbatim(t *testing.T) {
	input := "Category,Name,Price,Limit\n" +
		" dairy,  Trim Milk ,  4.20, 2\n"

	result, err := ParseProducts(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	p := result.Products[0]
	assert.Equal(t, " dairy", p.Category)
	assert.Equal(t, "  Trim Milk ", p.Name)
	assert.Equal(t, " 2", p.Limit)
	assert.Equal(t, 4.2, p.Price)
}

func TestParseProductsMissingColumns(t *testing.T) {
	result, err := ParseProducts(strings.NewReader("Name,Price\nLoose Carrots,1.99\n"))
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	p := result.Products[0]
	assert.Equal(t, "Loose Carrots", p.Name)
	assert.Equal(t, 1.99, p.Price)
	assert.Empty(t, p.Category)
	assert.Empty(t, p.Limit)
	assert.Equal(t, "NZD", p.Currency)
}

func TestParseProductsEmptyInput(t *testing.T) {
	_, err := ParseProducts(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	result, err := ParseProducts(strings.NewReader("Category,ID,Name,Price\n"))
	require.NoError(t, err)
	assert.Empty(t, result.Products)
}

func TestParseDiscount(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{raw: "", want: nil},
		{raw: "  ", want: nil},
		{raw: "30", want: intPtr(30)},
		{raw: "30%", want: intPtr(30)},
		{raw: "12.9", want: intPtr(12)},
		{raw: "half", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDiscount(tt.raw))
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{raw: "4.20", want: 4.2},
		{raw: " $1,299.00 ", want: 1299},
		{raw: "", want: 0},
		{raw: "free", want: 0},
		{raw: "-1", want: 0},
		{raw: "Inf", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice(tt.raw))
		})
	}
}

func intPtr(v int) *int {
	return &v
}
