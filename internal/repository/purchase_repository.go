package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modaix-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// MonthlyCount is a month bucket for the sales rollups.
type MonthlyCount struct {
	Month string  `json:"month"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// ProductCount pairs a product name with a units-sold count.
type ProductCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PurchaseRepository defines the interface for order data access. Order
// placement and status transitions run inside single transactions so a
// failed validation leaves no partial writes.
type PurchaseRepository interface {
	PlaceOrder(ctx context.Context, draft *domain.OrderDraft) (*domain.OrderReceipt, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (stockReturned bool, err error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.OrderSummary, error)
	ListAll(ctx context.Context) ([]*domain.OrderSummary, error)
	SalesByMonth(ctx context.Context, months int) ([]MonthlyCount, error)
	RevenueByMonth(ctx context.Context, months int) ([]MonthlyCount, error)
	TopProducts(ctx context.Context, limit int) ([]ProductCount, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type purchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new instance of PurchaseRepository
func NewPurchaseRepository(db *sql.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// PlaceOrder writes a resolved order atomically: guest-account creation,
// address sync, per-line stock validation, one purchase row per line,
// guarded stock decrement, points redemption and award. Any failure rolls
// back every write, including the guest account.
func (r *purchaseRepository) PlaceOrder(ctx context.Context, draft *domain.OrderDraft) (*domain.OrderReceipt, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if draft.Guest != nil {
		if err := insertUser(ctx, tx, draft.Guest); err != nil {
			return nil, err
		}
	}
	if draft.Contact != nil {
		if err := updateUserProfile(ctx, tx, draft.UserID, "", *draft.Contact); err != nil {
			return nil, fmt.Errorf("failed to sync address: %w", err)
		}
	}

	// Validate every line before writing anything, collecting product
	// names for the receipt
	items := make([]domain.OrderReceiptItem, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		var available int
		var productName string
		err := tx.QueryRowContext(ctx, `
			SELECT s.quantity, p.name
			FROM stock s
			JOIN products p ON p.id = s.product_id
			WHERE s.product_id = $1 AND s.size = $2
		`, line.ProductID, line.Size).Scan(&available, &productName)

		if err != nil {
			if err == sql.ErrNoRows {
				return nil, domain.Ef(domain.KindNotFound,
					"product %s size %s not found", line.ProductID, line.Size)
			}
			return nil, fmt.Errorf("failed to check stock: %w", err)
		}

		if available < line.Quantity {
			return nil, domain.Ef(domain.KindInsufficientStock,
				"insufficient stock for size %s: available %d, requested %d",
				line.Size, available, line.Quantity)
		}

		items = append(items, domain.OrderReceiptItem{
			ProductName: productName,
			Size:        line.Size,
			Quantity:    line.Quantity,
			Price:       line.Price,
		})
	}

	insertLine := `
		INSERT INTO purchases (id, user_id, product_id, quantity, total, shipping, purchased_at, order_number, transaction_id, status, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	// Floored at zero, and guarded so a concurrent decrement of the same
	// row since the check above aborts the order instead of overselling
	decrementStock := `
		UPDATE stock
		SET quantity = GREATEST(0, quantity - $1)
		WHERE product_id = $2 AND size = $3 AND quantity >= $1
	`

	for _, line := range draft.Lines {
		_, err := tx.ExecContext(
			ctx,
			insertLine,
			uuid.New(),
			draft.UserID,
			line.ProductID,
			line.Quantity,
			line.Price*float64(line.Quantity),
			draft.Shipping,
			draft.PurchasedAt,
			draft.OrderNumber,
			draft.TransactionID,
			domain.StatusPending,
			line.Size,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert purchase line: %w", err)
		}

		result, err := tx.ExecContext(ctx, decrementStock, line.Quantity, line.ProductID, line.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil, domain.Ef(domain.KindInsufficientStock,
				"insufficient stock for size %s", line.Size)
		}
	}

	if draft.PointsRedeemed > 0 {
		var points int
		err := tx.QueryRowContext(ctx,
			`SELECT points FROM users WHERE id = $1 FOR UPDATE`, draft.UserID,
		).Scan(&points)
		if err != nil {
			return nil, fmt.Errorf("failed to read points balance: %w", err)
		}

		if points < draft.PointsRedeemed {
			return nil, domain.Ef(domain.KindInsufficientPoints,
				"insufficient points: available %d, requested %d", points, draft.PointsRedeemed)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE users SET points = points - $2 WHERE id = $1`,
			draft.UserID, draft.PointsRedeemed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to redeem points: %w", err)
		}
	}

	if draft.PointsEarned > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET points = points + $2 WHERE id = $1`,
			draft.UserID, draft.PointsEarned,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to award points: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return &domain.OrderReceipt{
		OrderNumber:   draft.OrderNumber,
		TransactionID: draft.TransactionID,
		PurchasedAt:   draft.PurchasedAt,
		Shipping:      draft.Shipping,
		Total:         draft.FinalTotal,
		PointsEarned:  draft.PointsEarned,
		Items:         items,
	}, nil
}

// UpdateStatus transitions one purchase line. The first transition into
// cancelled restores the line's stock; leaving cancelled never re-deducts.
func (r *purchaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldStatus, size string
	var productID uuid.UUID
	var quantity int
	err = tx.QueryRowContext(ctx, `
		SELECT status, product_id, size, quantity
		FROM purchases
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&oldStatus, &productID, &size, &quantity)

	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrOrderNotFound
		}
		return false, fmt.Errorf("failed to load order: %w", err)
	}

	stockReturned := false
	if status == domain.StatusCancelled && oldStatus != domain.StatusCancelled {
		_, err := tx.ExecContext(ctx, `
			UPDATE stock SET quantity = quantity + $1
			WHERE product_id = $2 AND size = $3
		`, quantity, productID, size)
		if err != nil {
			return false, fmt.Errorf("failed to restore stock: %w", err)
		}
		stockReturned = true
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE purchases SET status = $2 WHERE id = $1`, id, status,
	); err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit status update: %w", err)
	}

	return stockReturned, nil
}

const summaryQuery = `
	SELECT c.id, c.order_number, p.name, p.image_url, c.size, c.quantity,
	       c.purchased_at, c.total, c.shipping, c.status
	FROM purchases c
	JOIN products p ON p.id = c.product_id
`

func (r *purchaseRepository) listSummaries(ctx context.Context, query string, args ...interface{}) ([]*domain.OrderSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.OrderSummary{}
	for rows.Next() {
		o := &domain.OrderSummary{}
		err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&o.ProductName,
			&o.ProductImage,
			&o.Size,
			&o.Quantity,
			&o.Date,
			&o.Total,
			&o.Shipping,
			&o.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// ListByUser returns the user's order lines, newest first
func (r *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.OrderSummary, error) {
	return r.listSummaries(ctx, summaryQuery+` WHERE c.user_id = $1 ORDER BY c.purchased_at DESC`, userID)
}

// ListAll returns every order line, newest first (admin listing)
func (r *purchaseRepository) ListAll(ctx context.Context) ([]*domain.OrderSummary, error) {
	return r.listSummaries(ctx, summaryQuery+` ORDER BY c.purchased_at DESC`)
}

// SalesByMonth counts units sold per month over the trailing window,
// excluding cancelled lines
func (r *purchaseRepository) SalesByMonth(ctx context.Context, months int) ([]MonthlyCount, error) {
	return r.monthlyRollup(ctx, `
		SELECT to_char(purchased_at, 'YYYY-MM') AS month, SUM(quantity), 0
		FROM purchases
		WHERE purchased_at >= NOW() - ($1 || ' months')::interval
		AND status != $2
		GROUP BY month
		ORDER BY month ASC
	`, months, domain.StatusCancelled)
}

// RevenueByMonth sums line totals per month over the trailing window,
// excluding cancelled lines
func (r *purchaseRepository) RevenueByMonth(ctx context.Context, months int) ([]MonthlyCount, error) {
	return r.monthlyRollup(ctx, `
		SELECT to_char(purchased_at, 'YYYY-MM') AS month, 0, SUM(total)
		FROM purchases
		WHERE purchased_at >= NOW() - ($1 || ' months')::interval
		AND status != $2
		GROUP BY month
		ORDER BY month ASC
	`, months, domain.StatusCancelled)
}

func (r *purchaseRepository) monthlyRollup(ctx context.Context, query string, args ...interface{}) ([]MonthlyCount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly rollup: %w", err)
	}
	defer rows.Close()

	buckets := []MonthlyCount{}
	for rows.Next() {
		var b MonthlyCount
		if err := rows.Scan(&b.Month, &b.Count, &b.Value); err != nil {
			return nil, fmt.Errorf("failed to scan rollup bucket: %w", err)
		}
		if t, err := time.Parse("2006-01", b.Month); err == nil {
			b.Month = t.Format("Jan 2006")
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

// TopProducts returns the best-selling products by units, excluding
// cancelled lines
func (r *purchaseRepository) TopProducts(ctx context.Context, limit int) ([]ProductCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.name, SUM(c.quantity) AS units
		FROM purchases c
		JOIN products p ON p.id = c.product_id
		WHERE c.status != $2
		GROUP BY p.name
		ORDER BY units DESC
		LIMIT $1
	`, limit, domain.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}
	defer rows.Close()

	top := []ProductCount{}
	for rows.Next() {
		var p ProductCount
		if err := rows.Scan(&p.Name, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		top = append(top, p)
	}

	return top, rows.Err()
}

// CountByStatus groups order lines by status
func (r *purchaseRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM purchases GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
