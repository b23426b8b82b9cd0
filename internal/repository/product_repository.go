package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"modaix-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSizeNotFound    = errors.New("size not found for product")
)

// ProductFilter narrows a catalog listing. Zero values mean no filter.
// Gender filtering also matches unisex products.
type ProductFilter struct {
	Gender   string
	Category string
}

// ProductRepository defines the interface for product and per-size stock
// data access. The stock table is the single source of truth for
// inventory; totals are always derived from it.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product, sizeStock map[string]int) error
	Update(ctx context.Context, product *domain.Product, sizeStock map[string]int) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	SizeStock(ctx context.Context, productID uuid.UUID) (map[string]int, error)
	StockFor(ctx context.Context, productID uuid.UUID, size string) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, category, description, brand, colors, price, image_url, images, gender, materials, created_at, updated_at`

func scanProduct(scanner interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	product := &domain.Product{}
	var colors string
	var images []byte

	err := scanner.Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Description,
		&product.Brand,
		&colors,
		&product.Price,
		&product.ImageURL,
		&images,
		&product.Gender,
		&product.Materials,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if colors != "" {
		product.Colors = strings.Split(colors, ",")
	} else {
		product.Colors = []string{}
	}

	product.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to decode product images: %w", err)
		}
	}

	return product, nil
}

// Create inserts a product and its per-size stock rows in one transaction
func (r *productRepository) Create(ctx context.Context, product *domain.Product, sizeStock map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode product images: %w", err)
	}

	query := `
		INSERT INTO products (id, name, category, description, brand, colors, price, image_url, images, gender, materials, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Category,
		product.Description,
		product.Brand,
		strings.Join(product.Colors, ","),
		product.Price,
		product.ImageURL,
		images,
		product.Gender,
		product.Materials,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := insertStockRows(ctx, tx, product.ID, sizeStock); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product create: %w", err)
	}

	return nil
}

// Update rewrites the product row and replaces its stock rows in one
// transaction, as the admin inventory form submits the full size map
func (r *productRepository) Update(ctx context.Context, product *domain.Product, sizeStock map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode product images: %w", err)
	}

	query := `
		UPDATE products
		SET name = $2, category = $3, description = $4, brand = $5, colors = $6,
		    price = $7, image_url = $8, images = $9, gender = $10, materials = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Category,
		product.Description,
		product.Brand,
		strings.Join(product.Colors, ","),
		product.Price,
		product.ImageURL,
		images,
		product.Gender,
		product.Materials,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	if sizeStock != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM stock WHERE product_id = $1`, product.ID); err != nil {
			return fmt.Errorf("failed to clear stock rows: %w", err)
		}
		if err := insertStockRows(ctx, tx, product.ID, sizeStock); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product update: %w", err)
	}

	return nil
}

func insertStockRows(ctx context.Context, tx *sql.Tx, productID uuid.UUID, sizeStock map[string]int) error {
	query := `INSERT INTO stock (product_id, size, quantity) VALUES ($1, $2, $3)`
	for size, qty := range sizeStock {
		if qty < 0 {
			qty = 0
		}
		if _, err := tx.ExecContext(ctx, query, productID, size, qty); err != nil {
			return fmt.Errorf("failed to insert stock row: %w", err)
		}
	}
	return nil
}

// Delete removes a product; stock and favorites rows cascade
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product with its size-stock map
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	sizeStock, err := r.SizeStock(ctx, id)
	if err != nil {
		return nil, err
	}
	attachStock(product, sizeStock)

	return product, nil
}

// List retrieves products newest first, optionally filtered by gender
// (unisex always matches) and category, each with its size-stock map
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if filter.Gender != "" {
		query += fmt.Sprintf(" AND (gender = $%d OR gender = 'unisex')", argIndex)
		args = append(args, filter.Gender)
		argIndex++
	}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.attachStockBulk(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// attachStockBulk loads all stock rows for the listed products in one query
func (r *productRepository) attachStockBulk(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, 0, len(products))
	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID.String())
		byID[p.ID] = p
		attachStock(p, map[string]int{})
	}

	query := `SELECT product_id, size, quantity FROM stock WHERE product_id = ANY($1::uuid[])`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load stock rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID uuid.UUID
		var size string
		var qty int
		if err := rows.Scan(&productID, &size, &qty); err != nil {
			return fmt.Errorf("failed to scan stock row: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.SizeStock[size] = qty
			p.TotalStock += qty
			p.Status = domain.DeriveStockStatus(p.TotalStock)
		}
	}

	return rows.Err()
}

// attachStock fills the product's derived stock fields, zero-filling the
// known sizes so the map shape is stable for clients
func attachStock(product *domain.Product, sizeStock map[string]int) {
	filled := make(map[string]int, len(domain.KnownSizes))
	for _, size := range domain.KnownSizes {
		filled[size] = 0
	}
	total := 0
	for size, qty := range sizeStock {
		filled[size] = qty
		total += qty
	}
	product.SizeStock = filled
	product.TotalStock = total
	product.Status = domain.DeriveStockStatus(total)
}

// SizeStock returns the per-size quantities for a product
func (r *productRepository) SizeStock(ctx context.Context, productID uuid.UUID) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT size, quantity FROM stock WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load size stock: %w", err)
	}
	defer rows.Close()

	sizeStock := map[string]int{}
	for rows.Next() {
		var size string
		var qty int
		if err := rows.Scan(&size, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan size stock: %w", err)
		}
		sizeStock[size] = qty
	}

	return sizeStock, rows.Err()
}

// StockFor returns the available quantity for one (product, size) pair
func (r *productRepository) StockFor(ctx context.Context, productID uuid.UUID, size string) (int, error) {
	var qty int
	err := r.db.QueryRowContext(
		ctx,
		`SELECT quantity FROM stock WHERE product_id = $1 AND size = $2`,
		productID, size,
	).Scan(&qty)

	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrSizeNotFound
		}
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}

	return qty, nil
}
