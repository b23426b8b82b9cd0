package service

import (
	"context"
	"fmt"
	"time"

	"modaix-api/internal/domain"
	"modaix-api/internal/repository"

	"github.com/google/uuid"
)

// ProductInput is an admin create/update submission after DTO validation.
type ProductInput struct {
	Name        string
	Category    string
	Description string
	Brand       string
	Colors      []string
	Price       float64
	ImageURL    string
	Images      []string
	Gender      string
	Materials   string
	SizeStock   map[string]int
}

// CatalogService defines the interface for product catalog business logic
type CatalogService interface {
	List(ctx context.Context, gender, category string) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CheckStock(ctx context.Context, productID uuid.UUID, size string) (int, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

// List returns the catalog, optionally filtered by gender and category
func (s *catalogService) List(ctx context.Context, gender, category string) ([]*domain.Product, error) {
	return s.productRepo.List(ctx, repository.ProductFilter{
		Gender:   gender,
		Category: category,
	})
}

// Get returns one product with its size-stock map
func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, domain.E(domain.KindNotFound, "product not found")
		}
		return nil, err
	}
	return product, nil
}

// Create adds a product and its stock rows
func (s *catalogService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	product := productFromInput(uuid.New(), input)
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	sizeStock := input.SizeStock
	if sizeStock == nil {
		sizeStock = map[string]int{}
	}

	if err := s.productRepo.Create(ctx, product, sizeStock); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.Get(ctx, product.ID)
}

// Update rewrites a product; a supplied size map replaces the stock rows
func (s *catalogService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product := productFromInput(id, input)
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product, input.SizeStock); err != nil {
		if err == repository.ErrProductNotFound {
			return nil, domain.E(domain.KindNotFound, "product not found")
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a product; stock and favorites cascade
func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if err == repository.ErrProductNotFound {
			return domain.E(domain.KindNotFound, "product not found")
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// CheckStock returns the available quantity for one (product, size) pair
func (s *catalogService) CheckStock(ctx context.Context, productID uuid.UUID, size string) (int, error) {
	qty, err := s.productRepo.StockFor(ctx, productID, size)
	if err != nil {
		if err == repository.ErrSizeNotFound {
			return 0, domain.E(domain.KindNotFound, "product or size not found")
		}
		return 0, err
	}
	return qty, nil
}

func productFromInput(id uuid.UUID, input ProductInput) *domain.Product {
	colors := input.Colors
	if colors == nil {
		colors = []string{}
	}
	images := input.Images
	if len(images) == 0 && input.ImageURL != "" {
		images = []string{input.ImageURL}
	}
	gender := input.Gender
	if gender == "" {
		gender = "unisex"
	}

	return &domain.Product{
		ID:          id,
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		Brand:       input.Brand,
		Colors:      colors,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Images:      images,
		Gender:      gender,
		Materials:   input.Materials,
	}
}
