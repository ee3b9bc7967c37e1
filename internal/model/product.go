package model

import "strings"

// StockUnlimited is the sentinel stock value that legacy catalog records use
// to mean "no stock control". Records carrying it without an explicit
// hasStockControl flag are treated as uncontrolled.
const StockUnlimited = 999999

// Product is a catalog record. Category and subcategory are always stored
// and compared upper-cased.
type Product struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Price           float64 `json:"price"` // Bolivianos
	ImageURL        string  `json:"imageUrl,omitempty"`
	Category        string  `json:"category"`
	Subcategory     string  `json:"subcategory,omitempty"`
	Description     string  `json:"description,omitempty"`
	Stock           int     `json:"stock"`
	HasStockControl bool    `json:"hasStockControl"`
	CreatedAt       string  `json:"createdAt,omitempty"` // ISO-8601, set at the docstore boundary
}

// NormalizeCategory upper-cases a category or subcategory value.
func NormalizeCategory(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
