package service

import (
	"context"
	"io"
	"time"

	"opt-shop/internal/config"
	"opt-shop/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil && u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepository) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[primitive.ObjectID]*model.User), args.Error(1)
}

func (m *mockUserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *mockUserRepository) RotateRefreshToken(ctx context.Context, id primitive.ObjectID, current, next string) (bool, error) {
	args := m.Called(ctx, id, current, next)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, p *model.Profile) (*model.User, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepository) ListSuppliers(ctx context.Context, search string, p model.Pagination) ([]*model.User, int64, error) {
	args := m.Called(ctx, search, p)
	return args.Get(0).([]*model.User), args.Get(1).(int64), args.Error(2)
}

type mockGoodRepository struct {
	mock.Mock
}

func (m *mockGoodRepository) Create(ctx context.Context, g *model.Good) error {
	args := m.Called(ctx, g)
	if args.Error(0) == nil && g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockGoodRepository) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*model.Good, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Good), args.Error(1)
}

func (m *mockGoodRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Good, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[primitive.ObjectID]*model.Good), args.Error(1)
}

func (m *mockGoodRepository) List(ctx context.Context, f model.GoodFilter) ([]*model.Good, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]*model.Good), args.Get(1).(int64), args.Error(2)
}

func (m *mockGoodRepository) Update(ctx context.Context, id, supplierID primitive.ObjectID, u *model.GoodUpdate) (*model.Good, error) {
	args := m.Called(ctx, id, supplierID, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Good), args.Error(1)
}

func (m *mockGoodRepository) SoftDelete(ctx context.Context, id, supplierID primitive.ObjectID) error {
	args := m.Called(ctx, id, supplierID)
	return args.Error(0)
}

func (m *mockGoodRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *mockGoodRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *mockGoodRepository) SetStock(ctx context.Context, id, supplierID primitive.ObjectID, stockQuantity *int, inStock *bool) error {
	args := m.Called(ctx, id, supplierID, stockQuantity, inStock)
	return args.Error(0)
}

func (m *mockGoodRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockGoodRepository) Subcategories(ctx context.Context, category string) ([]string, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, o *model.Order) error {
	args := m.Called(ctx, o)
	if args.Error(0) == nil && o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from model.OrderStatus, record model.StatusRecord, supplierNotes *string) (*model.Order, error) {
	args := m.Called(ctx, id, from, record, supplierNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event model.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// mapCache is an in-memory CategoryCache.
type mapCache struct {
	values      map[string][]string
	invalidated int
}

func newMapCache() *mapCache {
	return &mapCache{values: map[string][]string{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]string, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, values []string) {
	c.values[key] = values
}

func (c *mapCache) Invalidate(context.Context) {
	c.values = map[string][]string{}
	c.invalidated++
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testTokenIssuer() *TokenIssuer {
	return NewTokenIssuer(config.JWTConfig{
		AccessSecret:  "test-access",
		RefreshSecret: "test-refresh",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func newSupplier() *model.User {
	u := &model.User{ID: primitive.NewObjectID(), Email: "supplier@x.com", IsActive: true}
	u.CompanyName = "Kyiv Mill"
	u.Phone = "+380441234567"
	return u
}

func newGood(supplierID primitive.ObjectID) *model.Good {
	g := &model.Good{
		ID:                   primitive.NewObjectID(),
		Supplier:             model.RefTo[model.UserSummary](supplierID),
		Name:                 "Flour",
		Category:             "Food",
		Price:                100,
		Currency:             model.CurrencyUAH,
		MinimumOrderQuantity: 5,
		InStock:              true,
		StockQuantity:        intPtr(10),
		IsActive:             true,
	}
	g.ApplyDefaults()
	return g
}
