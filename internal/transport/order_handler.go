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

// OrderLineRequest is one cart line at checkout
type OrderLineRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	Size      string  `json:"size" validate:"required,clothingsize"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"required,gt=0"`
}

// CustomerInfoRequest is the checkout contact block. Guests must supply an
// email; for signed-in users it only syncs the stored address.
type CustomerInfoRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Zip       *string `json:"zip"`
}

// PlaceOrderRequest represents a checkout submission
type PlaceOrderRequest struct {
	Items          []OrderLineRequest   `json:"items" validate:"required,min=1,dive"`
	Customer       *CustomerInfoRequest `json:"customer"`
	PointsRedeemed int                  `json:"points_redeemed" validate:"gte=0"`
}

// UpdateStatusRequest changes an order line's fulfillment status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,orderstatus"`
}

// OrderHandler handles HTTP requests for checkout and order administration
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes. Checkout takes optional auth
// so guests can order; listings and admin operations require a session.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, optionalAuth func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Post("/", h.PlaceOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", h.ListMine)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin())
			r.Get("/all", h.ListAll)
			r.Put("/{id}/status", h.UpdateStatus)
			r.Get("/analytics", h.Analytics)
		})
	})
}

// PlaceOrder runs checkout: stock validation, totals, loyalty points and
// the purchase rows all commit atomically.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, domain.KindValidation, "invalid request body")
		return
	}

	lines := make([]domain.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, domain.KindValidation, "invalid product id")
			return
		}
		lines = append(lines, domain.OrderLine{
			ProductID: productID,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	input := service.PlaceOrderInput{
		Lines:          lines,
		PointsRedeemed: req.PointsRedeemed,
	}
	if req.Customer != nil {
		input.Customer = &service.CustomerInfo{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
			Address:   req.Customer.Address,
			City:      req.Customer.City,
			State:     req.Customer.State,
			Zip:       req.Customer.Zip,
		}
	}

	var authUserID *uuid.UUID
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		authUserID = &userID
	}

	receipt, err := h.orderService.PlaceOrder(r.Context(), authUserID, input)
	if err != nil {
		h.logger.Warn("Checkout rejected", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_number", receipt.OrderNumber),
		zap.Int("items", len(receipt.Items)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, receipt)
}

// ListMine returns the authenticated user's order history
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, domain.KindUnauthorized, "authentication required")
		return
	}

	orders, err := h.orderService.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// ListAll returns every order line for the admin dashboard
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list all orders", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateStatus moves an order line through its lifecycle. Cancelling
// returns the line's stock exactly once.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, domain.KindValidation, "invalid order id")
		return
	}

	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, domain.KindValidation, "invalid request body")
		return
	}

	stockReturned, err := h.orderService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", req.Status),
		zap.Bool("stock_returned", stockReturned),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "status updated",
		"status":         req.Status,
		"stock_returned": stockReturned,
	})
}

// Analytics returns the admin dashboard rollups
func (h *OrderHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.orderService.Analytics(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute analytics", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, analytics)
}
