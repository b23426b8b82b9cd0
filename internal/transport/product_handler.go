package transport

import (
	"net/http"

	"modaix-api/internal/domain"
	"modaix-api/internal/middleware"
	"modaix-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest represents an admin create/update payload
type ProductRequest struct {
	Name        string         `json:"name" validate:"required"`
	Category    string         `json:"category" validate:"required"`
	Description string         `json:"description"`
	Brand       string         `json:"brand"`
	Colors      []string       `json:"colors"`
	Price       float64        `json:"price" validate:"required,gt=0"`
	ImageURL    string         `json:"image_url"`
	Images      []string       `json:"images"`
	Gender      string         `json:"gender" validate:"omitempty,oneof=hombre mujer unisex"`
	Materials   string         `json:"materials"`
	SizeStock   map[string]int `json:"size_stock"`
}

// StockResponse reports availability for one (product, size) pair
type StockResponse struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Available bool   `json:"available"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/stock/{size}", h.CheckStock)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin())
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns the catalog. Accepts gender and category query filters;
// a gender filter always includes unisex items.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	gender := r.URL.Query().Get("gender")
	category := r.URL.Query().Get("category")

	products, err := h.catalogService.List(r.Context(), gender, category)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns one product with its size-stock map
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, domain.KindValidation, "invalid product id")
		return
	}

	product, err := h.catalogService.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CheckStock reports availability for one size before checkout
func (h *ProductHandler) CheckStock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, domain.KindValidation, "invalid product id")
		return
	}
	size := chi.URLParam(r, "size")

	qty, err := h.catalogService.CheckStock(r.Context(), id, size)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, StockResponse{
		ProductID: id.String(),
		Size:      size,
		Quantity:  qty,
		Available: qty > 0,
	})
}

// Create adds a catalog entry
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, domain.KindValidation, "invalid request body")
		return
	}

	if err := validateSizeKeys(req.SizeStock); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	product, err := h.catalogService.Create(r.Context(), productInput(req))
	if err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update rewrites a catalog entry; a supplied size map replaces all stock
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, domain.KindValidation, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, domain.KindValidation, "invalid request body")
		return
	}

	if err := validateSizeKeys(req.SizeStock); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	product, err := h.catalogService.Update(r.Context(), id, productInput(req))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a catalog entry
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, domain.KindValidation, "invalid product id")
		return
	}

	if err := h.catalogService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func validateSizeKeys(sizeStock map[string]int) error {
	for size, qty := range sizeStock {
		if !knownSize(size) {
			return domain.Ef(domain.KindValidation, "unknown size %q", size)
		}
		if qty < 0 {
			return domain.Ef(domain.KindValidation, "negative stock for size %q", size)
		}
	}
	return nil
}

func knownSize(size string) bool {
	for _, known := range domain.KnownSizes {
		if size == known {
			return true
		}
	}
	return false
}

func productInput(req ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Brand:       req.Brand,
		Colors:      req.Colors,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Images:      req.Images,
		Gender:      req.Gender,
		Materials:   req.Materials,
		SizeStock:   req.SizeStock,
	}
}
