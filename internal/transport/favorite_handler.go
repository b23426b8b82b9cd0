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

// AddFavoriteRequest bookmarks a product
type AddFavoriteRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// FavoriteHandler handles HTTP requests for the favorites list
type FavoriteHandler struct {
	favoriteService service.FavoriteService
	logger          *zap.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteService service.FavoriteService, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		logger:          logger,
	}
}

// RegisterRoutes registers all favorite routes. Everything requires auth.
func (h *FavoriteHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/favorites", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Delete("/{productID}", h.Remove)
		r.Delete("/", h.RemoveByQuery)
	})
}

// List returns the user's favorited product IDs
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, domain.KindUnauthorized, "authentication required")
		return
	}

	ids, err := h.favoriteService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list favorites", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	if ids == nil {
		ids = []uuid.UUID{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"product_ids": ids})
}

// Add bookmarks a product. Re-adding an existing favorite is a no-op.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, domain.KindUnauthorized, "authentication required")
		return
	}

	var req AddFavoriteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, domain.KindValidation, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, domain.KindValidation, "invalid product id")
		return
	}

	if err := h.favoriteService.Add(r.Context(), userID, productID); err != nil {
		h.logger.Error("Failed to add favorite", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "favorite added"})
}

// Remove deletes a bookmark by path parameter
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, chi.URLParam(r, "productID"))
}

// RemoveByQuery deletes a bookmark by ?product_id= query parameter. Kept
// for clients that cannot issue DELETE with a path segment.
func (h *FavoriteHandler) RemoveByQuery(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, r.URL.Query().Get("product_id"))
}

func (h *FavoriteHandler) remove(w http.ResponseWriter, r *http.Request, rawProductID string) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, domain.KindUnauthorized, "authentication required")
		return
	}

	productID, err := uuid.Parse(rawProductID)
	if err != nil {
		middleware.RespondWithError(w, domain.KindValidation, "invalid product id")
		return
	}

	if err := h.favoriteService.Remove(r.Context(), userID, productID); err != nil {
		h.logger.Error("Failed to remove favorite", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "favorite removed"})
}
