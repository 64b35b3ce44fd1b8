// Package parser turns the tabular catalog export into product records.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-bargains/models"
)

// Column names as they appear in the catalog header row.
const (
	ColCategory      = "Category"
	ColID            = "ID"
	ColName          = "Name"
	ColPrice         = "Price"
	ColOriginalPrice = "Original Price"
	ColDiscount      = "Discount %"
	ColCurrency      = "Currency"
	ColDisplayPrice  = "Display Price"
	ColStoreID       = "Store ID"
	ColStoreName     = "Store Name"
	ColItemMSID      = "Item MSID"
	ColStockLevel    = "Stock Level"
	ColLimit         = "Limit"
	ColImageURL      = "Image URL"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("parser: missing header row")

// Result reports what ParseProducts did with the input rows.
type Result struct {
	Products []models.Product
	Rows     int
	Skipped  int
}

// ParseProducts reads a catalog CSV with a header row. Cells that are missing
// or cannot be parsed fall back to safe defaults; only structurally broken
// CSV is an error. Rows whose cells are all blank are skipped.
func ParseProducts(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := indexColumns(header)

	result := &Result{Products: make([]models.Product, 0, 256)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", result.Rows+1, err)
		}
		result.Rows++
		if blank(record) {
			result.Skipped++
			continue
		}
		result.Products = append(result.Products, productFromRecord(columns, record))
	}
	return result, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return columns
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func productFromRecord(columns map[string]int, record []string) models.Product {
	get := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	currency := strings.TrimSpace(get(ColCurrency))
	if currency == "" {
		currency = models.DefaultCurrency
	}

	return models.Product{
		Category:      get(ColCategory),
		ID:            get(ColID),
		Name:          get(ColName),
		Price:         ParsePrice(get(ColPrice)),
		OriginalPrice: ParseOptionalPrice(get(ColOriginalPrice)),
		Discount:      ParseDiscount(get(ColDiscount)),
		Currency:      currency,
		DisplayPrice:  get(ColDisplayPrice),
		StoreID:       get(ColStoreID),
		StoreName:     get(ColStoreName),
		ItemMSID:      get(ColItemMSID),
		StockLevel:    get(ColStockLevel),
		Limit:         get(ColLimit),
		ImageURL:      get(ColImageURL),
	}
}

// ParsePrice parses a price cell. Unparsable, negative or non-finite values
// become 0.
func ParsePrice(raw string) float64 {
	v, ok := parseAmount(raw)
	if !ok {
		return 0
	}
	return v
}

// ParseOptionalPrice parses an optional price cell; blank or unparsable
// cells are absent.
func ParseOptionalPrice(raw string) *float64 {
	v, ok := parseAmount(raw)
	if !ok {
		return nil
	}
	return &v
}

// ParseDiscount parses a whole-percent cell. Fractional input such as "25.0"
// is truncated; blank or unparsable cells are absent.
func ParseDiscount(raw string) *int {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return nil
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	v := int(f)
	return &v
}

func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
