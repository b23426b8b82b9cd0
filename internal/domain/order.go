package domain

import (
	"time"

	"github.com/google/uuid"
)

// Purchase statuses. The wire values are the ones the original storefront
// persisted, so existing data and clients keep working.
const (
	StatusPending   = "pendiente"
	StatusShipped   = "enviado"
	StatusDelivered = "entregado"
	StatusCancelled = "cancelado"
)

// ValidStatus reports whether s is a known purchase status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Purchase is one order line: an order with N distinct (product, size)
// lines produces N rows sharing OrderNumber and TransactionID.
type Purchase struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        *uuid.UUID `json:"user_id" db:"user_id"`
	ProductID     uuid.UUID  `json:"product_id" db:"product_id"`
	Quantity      int        `json:"quantity" db:"quantity"`
	Total         float64    `json:"total" db:"total"`
	Shipping      float64    `json:"shipping" db:"shipping"`
	PurchasedAt   time.Time  `json:"purchased_at" db:"purchased_at"`
	OrderNumber   string     `json:"order_number" db:"order_number"`
	TransactionID string     `json:"transaction_id" db:"transaction_id"`
	Status        string     `json:"status" db:"status"`
	Size          string     `json:"size" db:"size"`
}

// OrderLine is a cart line as submitted at checkout.
type OrderLine struct {
	ProductID uuid.UUID
	Size      string
	Quantity  int
	Price     float64
}

// OrderDraft is a fully resolved order ready to be written atomically:
// shipping and numbers already computed, user already resolved.
type OrderDraft struct {
	UserID         uuid.UUID
	Lines          []OrderLine
	Shipping       float64
	OrderNumber    string
	TransactionID  string
	PointsRedeemed int
	PointsEarned   int
	FinalTotal     float64
	PurchasedAt    time.Time

	// Guest is a new account to insert inside the order transaction, so a
	// rejected order leaves no account behind. Nil for known users.
	Guest *User
	// Contact syncs the stored address inside the same transaction.
	Contact *ContactInfo
}

// OrderReceipt describes a committed order for the caller and the
// confirmation email.
type OrderReceipt struct {
	OrderNumber   string             `json:"order_number"`
	TransactionID string             `json:"transaction_id"`
	PurchasedAt   time.Time          `json:"purchased_at"`
	Shipping      float64            `json:"shipping"`
	Total         float64            `json:"total"`
	PointsEarned  int                `json:"points_earned"`
	Items         []OrderReceiptItem `json:"items"`
}

// OrderReceiptItem is a resolved line with the product name attached.
type OrderReceiptItem struct {
	ProductName string  `json:"product_name"`
	Size        string  `json:"size"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// OrderSummary is a purchase line joined with its product for listings.
type OrderSummary struct {
	ID           uuid.UUID `json:"id"`
	OrderNumber  string    `json:"order_number"`
	ProductName  string    `json:"product_name"`
	ProductImage string    `json:"product_image"`
	Size         string    `json:"size"`
	Quantity     int       `json:"quantity"`
	Date         time.Time `json:"date"`
	Total        float64   `json:"total"`
	Shipping     float64   `json:"shipping"`
	Status       string    `json:"status"`
}

// Favorite is a (user, product) bookmark pair.
type Favorite struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
}
