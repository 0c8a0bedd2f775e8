package controller

import (
	"context"
	"io"
	"testing"
	"time"

	"opt-shop/internal/apperror"
	"opt-shop/internal/config"
	"opt-shop/internal/dto"
	"opt-shop/internal/model"
	"opt-shop/internal/service"
	"opt-shop/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAuthService struct {
	mock.Mock
	tokens map[string]*service.Claims
}

func (m *mockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*service.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req dto.LoginRequest) (*service.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, token string) (*service.AuthResult, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *mockAuthService) LogoutWithToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthService) VerifyAccessToken(token string) (*service.Claims, error) {
	if c, ok := m.tokens[token]; ok {
		return c, nil
	}
	return nil, apperror.ErrInvalidAccessToken
}

func (m *mockAuthService) RefreshMaxAge() int {
	return 7 * 24 * 3600
}

type mockGoodService struct {
	mock.Mock
}

func (m *mockGoodService) CreateGood(ctx context.Context, supplierID string, req dto.CreateGoodRequest) (*model.Good, error) {
	args := m.Called(ctx, supplierID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Good), args.Error(1)
}

func (m *mockGoodService) GetGoods(ctx context.Context, q dto.GoodsQuery) (*service.GoodList, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GoodList), args.Error(1)
}

func (m *mockGoodService) GetGoodByID(ctx context.Context, id string) (*model.Good, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Good), args.Error(1)
}

func (m *mockGoodService) UpdateGood(ctx context.Context, id, supplierID string, req dto.UpdateGoodRequest) (*model.Good, error) {
	args := m.Called(ctx, id, supplierID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Good), args.Error(1)
}

func (m *mockGoodService) DeleteGood(ctx context.Context, id, supplierID string) error {
	return m.Called(ctx, id, supplierID).Error(0)
}

func (m *mockGoodService) GetCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockGoodService) GetSubcategories(ctx context.Context, category string) ([]string, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]string), args.Error(1)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) CreateOrder(ctx context.Context, buyerID string, req dto.CreateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, buyerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockOrderService) GetOrderByID(ctx context.Context, id, requesterID string) (*model.Order, error) {
	args := m.Called(ctx, id, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockOrderService) GetBuyerOrders(ctx context.Context, buyerID, status string) ([]*model.Order, error) {
	args := m.Called(ctx, buyerID, status)
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *mockOrderService) GetSupplierOrders(ctx context.Context, supplierID, status string) ([]*model.Order, error) {
	args := m.Called(ctx, supplierID, status)
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *mockOrderService) UpdateOrderStatus(ctx context.Context, orderID, supplierID string, req dto.UpdateStatusRequest) (*model.Order, error) {
	args := m.Called(ctx, orderID, supplierID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) ListSuppliers(ctx context.Context, q dto.SupplierQuery) (*service.SupplierList, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SupplierList), args.Error(1)
}

func (m *mockUserService) GetSupplier(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*model.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// ============================================================================
// Test harness
// ============================================================================

const (
	buyerID    = "65f000000000000000000001"
	supplierID = "65f000000000000000000002"

	buyerToken    = "buyer-token"
	supplierToken = "supplier-token"
)

type harness struct {
	router   *gin.Engine
	auth     *mockAuthService
	goods    *mockGoodService
	orders   *mockOrderService
	users    *mockUserService
	dbErr    error
	imageDir string
}

func newHarness(t *testing.T, environment string) *harness {
	t.Helper()
	h := &harness{
		auth: &mockAuthService{tokens: map[string]*service.Claims{
			buyerToken:    {UserID: buyerID, Email: "buyer@x.com"},
			supplierToken: {UserID: supplierID, Email: "supplier@x.com"},
		}},
		goods:    new(mockGoodService),
		orders:   new(mockOrderService),
		users:    new(mockUserService),
		imageDir: t.TempDir(),
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	h.router = NewRouter(Dependencies{
		Config: &config.Config{
			Environment:    environment,
			CORSOrigins:    []string{"http://localhost:3000"},
			RequestTimeout: 5 * time.Second,
		},
		Log:      log,
		Auth:     h.auth,
		Goods:    h.goods,
		Orders:   h.orders,
		Users:    h.users,
		Uploads:  storage.NewUploader(storage.NewLocalStorage(h.imageDir)),
		DB:       pingerFunc(func(context.Context) error { return h.dbErr }),
		ImageDir: h.imageDir,
	})
	return h
}

var _ Uploader = (*storage.Uploader)(nil)
