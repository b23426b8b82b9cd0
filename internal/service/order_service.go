package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"modaix-api/internal/config"
	"modaix-api/internal/domain"
	"modaix-api/internal/mailer"
	"modaix-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerInfo is the checkout contact block. For guests the email is
// mandatory; for signed-in users it only syncs the stored address.
type CustomerInfo struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Address   *string
	City      *string
	State     *string
	Zip       *string
}

// PlaceOrderInput is a checkout submission after DTO validation.
type PlaceOrderInput struct {
	Lines          []domain.OrderLine
	Customer       *CustomerInfo
	PointsRedeemed int
}

// Analytics is the admin dashboard rollup bundle.
type Analytics struct {
	SalesByMonth   []repository.MonthlyCount `json:"sales_by_month"`
	RevenueByMonth []repository.MonthlyCount `json:"revenue_by_month"`
	TopProducts    []repository.ProductCount `json:"top_products"`
	OrdersByStatus map[string]int            `json:"orders_by_status"`
}

// OrderService defines the interface for checkout and order administration
type OrderService interface {
	PlaceOrder(ctx context.Context, authUserID *uuid.UUID, input PlaceOrderInput) (*domain.OrderReceipt, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.OrderSummary, error)
	ListAll(ctx context.Context) ([]*domain.OrderSummary, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (stockReturned bool, err error)
	Analytics(ctx context.Context) (*Analytics, error)
}

type orderService struct {
	purchaseRepo repository.PurchaseRepository
	userRepo     repository.UserRepository
	mailer       mailer.Mailer
	checkout     config.CheckoutConfig
	logger       *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	purchaseRepo repository.PurchaseRepository,
	userRepo repository.UserRepository,
	m mailer.Mailer,
	checkout config.CheckoutConfig,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		purchaseRepo: purchaseRepo,
		userRepo:     userRepo,
		mailer:       m,
		checkout:     checkout,
		logger:       logger,
	}
}

// PlaceOrder resolves the purchasing user, prices the cart server-side and
// writes the order atomically. The confirmation email is sent after the
// commit and is best-effort only.
func (s *orderService) PlaceOrder(ctx context.Context, authUserID *uuid.UUID, input PlaceOrderInput) (*domain.OrderReceipt, error) {
	if len(input.Lines) == 0 {
		return nil, domain.E(domain.KindValidation, "no items in order")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, domain.E(domain.KindValidation, "line quantity must be positive")
		}
		if line.Price < 0 {
			return nil, domain.E(domain.KindValidation, "line price must not be negative")
		}
	}
	if input.PointsRedeemed < 0 {
		return nil, domain.E(domain.KindValidation, "points redeemed must not be negative")
	}

	user, isNewGuest, err := s.resolveUser(ctx, authUserID, input.Customer)
	if err != nil {
		return nil, err
	}

	subtotal := 0.0
	for _, line := range input.Lines {
		subtotal += line.Price * float64(line.Quantity)
	}

	shipping := s.checkout.ShippingFee
	if subtotal >= s.checkout.FreeShippingThreshold {
		shipping = 0
	}

	discounted := subtotal - float64(input.PointsRedeemed)
	if discounted < 0 {
		discounted = 0
	}
	finalTotal := discounted + shipping
	pointsEarned := int(math.Floor(finalTotal * s.checkout.PointsEarnRate))

	now := time.Now()
	draft := &domain.OrderDraft{
		UserID:         user.ID,
		Lines:          input.Lines,
		Shipping:       shipping,
		OrderNumber:    fmt.Sprintf("ORD-%d-%d", now.Unix(), 100+rand.Intn(900)),
		TransactionID:  fmt.Sprintf("TR-%d-%d", now.Unix(), 1000+rand.Intn(9000)),
		PointsRedeemed: input.PointsRedeemed,
		PointsEarned:   pointsEarned,
		FinalTotal:     finalTotal,
		PurchasedAt:    now,
	}

	// User writes ride in the draft so they commit or roll back with the
	// order: a rejected order must not leave a guest account or a mutated
	// address behind
	if isNewGuest {
		draft.Guest = user
	} else if input.Customer != nil {
		draft.Contact = &domain.ContactInfo{
			Phone:   input.Customer.Phone,
			Address: input.Customer.Address,
			City:    input.Customer.City,
			State:   input.Customer.State,
			Zip:     input.Customer.Zip,
		}
	}

	receipt, err := s.purchaseRepo.PlaceOrder(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, user, input.Customer, receipt)

	return receipt, nil
}

// resolveUser returns the authenticated user, or finds a guest account
// keyed by the checkout email. A guest with no account gets one prepared
// here but not persisted: the insert happens inside the order transaction.
func (s *orderService) resolveUser(ctx context.Context, authUserID *uuid.UUID, customer *CustomerInfo) (*domain.User, bool, error) {
	if authUserID != nil {
		user, err := s.userRepo.FindByID(ctx, *authUserID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load user: %w", err)
		}
		return user, false, nil
	}

	if customer == nil || customer.Email == "" {
		return nil, false, domain.E(domain.KindValidation, "email is required for guest checkout")
	}

	user, err := s.userRepo.FindByEmail(ctx, customer.Email)
	if err == nil {
		return user, false, nil
	}
	if err != repository.ErrUserNotFound {
		return nil, false, fmt.Errorf("failed to find guest user: %w", err)
	}

	// Guest accounts get a throwaway password so they can never be signed
	// into until the customer registers properly
	hash, err := HashPassword(RandomPassword())
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash guest password: %w", err)
	}

	guest := &domain.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(customer.FirstName + " " + customer.LastName),
		Email:        customer.Email,
		PasswordHash: &hash,
		Role:         domain.RoleCustomer,
		Phone:        customer.Phone,
		Address:      customer.Address,
		City:         customer.City,
		State:        customer.State,
		Zip:          customer.Zip,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	return guest, true, nil
}

// sendConfirmation emails the receipt. Failures are logged and swallowed;
// the order is already committed.
func (s *orderService) sendConfirmation(ctx context.Context, user *domain.User, customer *CustomerInfo, receipt *domain.OrderReceipt) {
	email := user.Email
	name := user.Name
	if customer != nil && customer.Email != "" {
		email = customer.Email
		name = strings.TrimSpace(customer.FirstName + " " + customer.LastName)
	}
	if email == "" {
		return
	}

	if err := s.mailer.SendOrderConfirmation(ctx, email, name, receipt); err != nil {
		s.logger.Error("Failed to send confirmation email",
			zap.String("order_number", receipt.OrderNumber),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Confirmation email sent",
		zap.String("order_number", receipt.OrderNumber),
	)
}

// ListForUser returns the user's order lines
func (s *orderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.OrderSummary, error) {
	return s.purchaseRepo.ListByUser(ctx, userID)
}

// ListAll returns every order line (admin)
func (s *orderService) ListAll(ctx context.Context) ([]*domain.OrderSummary, error) {
	return s.purchaseRepo.ListAll(ctx)
}

// UpdateStatus transitions an order line, restoring stock on the first
// transition into cancelled
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	if !domain.ValidStatus(status) {
		return false, domain.Ef(domain.KindValidation, "unknown order status %q", status)
	}

	stockReturned, err := s.purchaseRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			return false, domain.E(domain.KindNotFound, "order not found")
		}
		return false, err
	}

	return stockReturned, nil
}

// Analytics assembles the admin dashboard rollups
func (s *orderService) Analytics(ctx context.Context) (*Analytics, error) {
	sales, err := s.purchaseRepo.SalesByMonth(ctx, 6)
	if err != nil {
		return nil, err
	}
	revenue, err := s.purchaseRepo.RevenueByMonth(ctx, 6)
	if err != nil {
		return nil, err
	}
	top, err := s.purchaseRepo.TopProducts(ctx, 5)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.purchaseRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		SalesByMonth:   sales,
		RevenueByMonth: revenue,
		TopProducts:    top,
		OrdersByStatus: byStatus,
	}, nil
}
