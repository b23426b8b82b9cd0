package service

import (
	"context"
	"sync"

	"modaix-api/internal/domain"
	"modaix-api/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	cp := *user
	m.users[user.Email] = &cp
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByProviderUID(ctx context.Context, providerUID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ProviderUID != nil && *user.ProviderUID == providerUID {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) LinkProvider(ctx context.Context, id uuid.UUID, providerUID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			user.ProviderUID = &providerUID
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name string, contact domain.ContactInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID != id {
			continue
		}
		if name != "" {
			user.Name = name
		}
		if contact.Phone != nil {
			user.Phone = contact.Phone
		}
		if contact.Address != nil {
			user.Address = contact.Address
		}
		if contact.City != nil {
			user.City = contact.City
		}
		if contact.State != nil {
			user.State = contact.State
		}
		if contact.Zip != nil {
			user.Zip = contact.Zip
		}
		return nil
	}
	return repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

// mockPurchaseRepository records the draft it was handed and returns a
// canned receipt, so tests can assert on the pricing the service computed.
// Like the real repository it persists the draft's guest account only when
// the order goes through; a failed order writes nothing.
type mockPurchaseRepository struct {
	users     *mockUserRepository
	lastDraft *domain.OrderDraft
	placeErr  error

	updateStatusArg    string
	updateStatusResult bool
	updateStatusErr    error
}

func newMockPurchaseRepository() *mockPurchaseRepository {
	return &mockPurchaseRepository{}
}

func (m *mockPurchaseRepository) PlaceOrder(ctx context.Context, draft *domain.OrderDraft) (*domain.OrderReceipt, error) {
	if m.placeErr != nil {
		return nil, m.placeErr
	}
	if draft.Guest != nil && m.users != nil {
		if err := m.users.Create(ctx, draft.Guest); err != nil {
			return nil, err
		}
	}
	m.lastDraft = draft

	items := make([]domain.OrderReceiptItem, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		items = append(items, domain.OrderReceiptItem{
			ProductName: "test product",
			Size:        line.Size,
			Quantity:    line.Quantity,
			Price:       line.Price,
		})
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

func (m *mockPurchaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	m.updateStatusArg = status
	return m.updateStatusResult, m.updateStatusErr
}

func (m *mockPurchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.OrderSummary, error) {
	return nil, nil
}

func (m *mockPurchaseRepository) ListAll(ctx context.Context) ([]*domain.OrderSummary, error) {
	return nil, nil
}

func (m *mockPurchaseRepository) SalesByMonth(ctx context.Context, months int) ([]repository.MonthlyCount, error) {
	return []repository.MonthlyCount{}, nil
}

func (m *mockPurchaseRepository) RevenueByMonth(ctx context.Context, months int) ([]repository.MonthlyCount, error) {
	return []repository.MonthlyCount{}, nil
}

func (m *mockPurchaseRepository) TopProducts(ctx context.Context, limit int) ([]repository.ProductCount, error) {
	return []repository.ProductCount{}, nil
}

func (m *mockPurchaseRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

// mockProductRepository keeps products and size maps in memory
type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
	stock    map[uuid.UUID]map[string]int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
		stock:    make(map[uuid.UUID]map[string]int),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product, sizeStock map[string]int) error {
	cp := *product
	m.products[product.ID] = &cp
	m.stock[product.ID] = sizeStock
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product, sizeStock map[string]int) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	cp := *product
	m.products[product.ID] = &cp
	if sizeStock != nil {
		m.stock[product.ID] = sizeStock
	}
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	delete(m.stock, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *product
	cp.SizeStock = make(map[string]int, len(domain.KnownSizes))
	total := 0
	for _, size := range domain.KnownSizes {
		qty := m.stock[id][size]
		cp.SizeStock[size] = qty
		total += qty
	}
	cp.TotalStock = total
	cp.Status = domain.DeriveStockStatus(total)
	return &cp, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	var out []*domain.Product
	for id, product := range m.products {
		if filter.Gender != "" && product.Gender != filter.Gender && product.Gender != "unisex" {
			continue
		}
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		p, _ := m.FindByID(ctx, id)
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductRepository) SizeStock(ctx context.Context, productID uuid.UUID) (map[string]int, error) {
	if _, ok := m.products[productID]; !ok {
		return nil, repository.ErrProductNotFound
	}
	return m.stock[productID], nil
}

func (m *mockProductRepository) StockFor(ctx context.Context, productID uuid.UUID, size string) (int, error) {
	sizes, ok := m.stock[productID]
	if !ok {
		return 0, repository.ErrSizeNotFound
	}
	qty, ok := sizes[size]
	if !ok {
		return 0, repository.ErrSizeNotFound
	}
	return qty, nil
}

// mockMailer records sends
type mockMailer struct {
	sent []string
}

func (m *mockMailer) SendOrderConfirmation(ctx context.Context, to, customerName string, receipt *domain.OrderReceipt) error {
	m.sent = append(m.sent, to)
	return nil
}
