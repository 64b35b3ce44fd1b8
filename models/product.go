// Package models defines the catalog records shared by every other package.
package models

import "time"

// DefaultCurrency is applied when a record carries no currency code.
const DefaultCurrency = "NZD"

// Product represents one catalog entry as loaded from the dataset.
type Product struct {
	Category      string   `csv:"Category" json:"category"`
	ID            string   `csv:"ID" json:"id"`
	Name          string   `csv:"Name" json:"name"`
	Price         float64  `csv:"Price" json:"price"`
	OriginalPrice *float64 `csv:"Original Price" json:"original_price"`
	Discount      *int     `csv:"Discount %" json:"discount"`
	Currency      string   `csv:"Currency" json:"currency"`
	DisplayPrice  string   `csv:"Display Price" json:"display_price"`
	StoreID       string   `csv:"Store ID" json:"store_id"`
	StoreName     string   `csv:"Store Name" json:"store_name"`
	ItemMSID      string   `csv:"Item MSID" json:"item_msid"`
	StockLevel    string   `csv:"Stock Level" json:"stock_level"`
	Limit         string   `csv:"Limit" json:"limit"`
	ImageURL      string   `csv:"Image URL" json:"image_url"`
}

// HasLimit reports whether the product carries a purchase cap.
func (p Product) HasLimit() bool {
	return p.Limit != ""
}

// DiscountOrZero returns the discount percent, treating an absent value as 0.
func (p Product) DiscountOrZero() int {
	if p.Discount == nil {
		return 0
	}
	return *p.Discount
}

// Savings is OriginalPrice - Price, or 0 when there is no original price.
// The result is not clamped and may be negative for inconsistent data.
func Savings(p Product) float64 {
	if p.OriginalPrice == nil {
		return 0
	}
	return *p.OriginalPrice - p.Price
}

// CategoryStats aggregates the products sharing one category string.
type CategoryStats struct {
	Name         string  `json:"name"`
	ProductCount int     `json:"product_count"`
	AvgPrice     float64 `json:"avg_price"`
	AvgDiscount  float64 `json:"avg_discount"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

// Summary holds the headline numbers for a whole catalog.
type Summary struct {
	TotalProducts int     `json:"total_products"`
	OnSale        int     `json:"on_sale"`
	AvgDiscount   float64 `json:"avg_discount"`
	TotalSavings  float64 `json:"total_savings"`
}

// LoadResult describes a single dataset load.
type LoadResult struct {
	Source       string
	StartTime    time.Time
	EndTime      time.Time
	RowCount     int
	SkippedRows  int
	Attempts     int
	RetryCount   int
	ErrorsByType map[string]int
}
