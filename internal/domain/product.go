package domain

import (
	"time"

	"github.com/google/uuid"
)

// Known garment sizes. Listings zero-fill these so the size map is stable
// for clients even when no stock row exists yet.
var KnownSizes = []string{"XS", "S", "M", "L", "XL"}

// Product stock statuses derived from total stock.
const (
	StockStatusActive = "active"
	StockStatusLow    = "low"
	StockStatusOut    = "out"

	// LowStockThreshold is the total below which a product reads "low".
	LowStockThreshold = 10
)

// Product is a catalog entry. Per-size inventory lives in the stock table;
// SizeStock, TotalStock and Status are derived on read, never persisted.
type Product struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Category    string         `json:"category" db:"category"`
	Description string         `json:"description" db:"description"`
	Brand       string         `json:"brand" db:"brand"`
	Colors      []string       `json:"colors" db:"colors"`
	Price       float64        `json:"price" db:"price"`
	ImageURL    string         `json:"image_url" db:"image_url"`
	Images      []string       `json:"images" db:"images"`
	Gender      string         `json:"gender" db:"gender"`
	Materials   string         `json:"materials" db:"materials"`
	SizeStock   map[string]int `json:"size_stock"`
	TotalStock  int            `json:"total_stock"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// DeriveStockStatus computes the catalog status for a total stock count.
func DeriveStockStatus(total int) string {
	switch {
	case total == 0:
		return StockStatusOut
	case total < LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusActive
	}
}
