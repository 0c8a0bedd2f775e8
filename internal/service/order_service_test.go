package service

import (
	"context"
	"errors"
	"testing"

	"opt-shop/internal/apperror"
	"opt-shop/internal/dto"
	"opt-shop/internal/model"
	"opt-shop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type orderFixture struct {
	orders    *mockOrderRepository
	goods     *mockGoodRepository
	users     *mockUserRepository
	publisher *mockPublisher
	svc       *OrderService

	supplier *model.User
	buyer    *model.User
	good     *model.Good
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(mockOrderRepository),
		goods:     new(mockGoodRepository),
		users:     new(mockUserRepository),
		publisher: new(mockPublisher),
	}
	f.svc = NewOrderService(f.orders, f.goods, f.users, f.publisher, testLogger())

	f.supplier = newSupplier()
	f.buyer = &model.User{ID: primitive.NewObjectID(), Email: "buyer@x.com", IsActive: true}
	f.good = newGood(f.supplier.ID)

	f.goods.On("FindActiveByID", mock.Anything, f.good.ID).Return(f.good, nil).Maybe()
	f.users.On("FindByID", mock.Anything, f.supplier.ID).Return(f.supplier, nil).Maybe()
	f.users.On("FindByID", mock.Anything, f.buyer.ID).Return(f.buyer, nil).Maybe()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func (f *orderFixture) request(qty int) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{GoodID: f.good.ID.Hex(), Quantity: qty}
}

// The worked scenario: price 100 UAH, minimum 5, stock 10.
func TestCreateOrder_Scenario(t *testing.T) {
	t.Run("minimum quantity succeeds with snapshot price", func(t *testing.T) {
		f := newOrderFixture()
		f.goods.On("ReserveStock", mock.Anything, f.good.ID, 5).Return(true, nil)
		f.orders.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).Return(nil)

		order, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(5))
		require.NoError(t, err)

		assert.Equal(t, model.StatusPending, order.Status)
		assert.Equal(t, 500.0, order.TotalPrice)
		assert.Equal(t, 100.0, order.UnitPrice)
		assert.Equal(t, model.CurrencyUAH, order.Currency)
		assert.Equal(t, f.supplier.ID, order.Supplier.ID)
		assert.True(t, order.StockReserved)
		assert.True(t, order.Good.IsExpanded())
		assert.Equal(t, "Kyiv Mill", order.Supplier.Expanded.CompanyName)
		f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e model.OrderEvent) bool {
			return e.Type == model.EventOrderCreated && e.OrderID == order.ID.Hex()
		}))
	})

	t.Run("below minimum", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(3))
		assert.ErrorIs(t, err, apperror.ErrBelowMinimum)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("more than stock", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(11))
		assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
		f.goods.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("supplier orders own good", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.CreateOrder(context.Background(), f.supplier.ID.Hex(), f.request(5))
		assert.ErrorIs(t, err, apperror.ErrSelfOrder)
	})
}

func TestOrder_PriceSnapshotSurvivesGoodRepricing(t *testing.T) {
	f := newOrderFixture()
	var created *model.Order
	f.goods.On("ReserveStock", mock.Anything, f.good.ID, 5).Return(true, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Order)
			created.ID = primitive.NewObjectID()
		}).
		Return(nil)

	_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(5))
	require.NoError(t, err)
	require.NotNil(t, created)

	f.good.Price = 250
	f.good.Currency = model.CurrencyUSD
	stored := *created
	f.orders.On("FindByID", mock.Anything, stored.ID).Return(&stored, nil)
	f.expectExpansion()

	got, err := f.svc.GetOrderByID(context.Background(), stored.ID.Hex(), f.buyer.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, 100.0, got.UnitPrice)
	assert.Equal(t, 500.0, got.TotalPrice)
	assert.Equal(t, model.CurrencyUAH, got.Currency)
	// the expanded good shows the live price
	assert.Equal(t, 250.0, got.Good.Expanded.Price)
}

func TestCreateOrder_OutOfStock(t *testing.T) {
	f := newOrderFixture()
	f.good.InStock = false

	_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(5))
	assert.ErrorIs(t, err, apperror.ErrOutOfStock)
}

func TestCreateOrder_UntrackedStockSkipsReservation(t *testing.T) {
	f := newOrderFixture()
	f.good.StockQuantity = nil
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).Return(nil)

	order, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(500))
	require.NoError(t, err)

	assert.False(t, order.StockReserved)
	assert.Equal(t, 50000.0, order.TotalPrice)
	f.goods.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_LostReservationRace(t *testing.T) {
	f := newOrderFixture()
	f.goods.On("ReserveStock", mock.Anything, f.good.ID, 8).Return(false, nil)

	_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(8))
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_ReleasesStockWhenInsertFails(t *testing.T) {
	f := newOrderFixture()
	insertErr := apperror.Unavailable(errors.New("connection reset"))
	f.goods.On("ReserveStock", mock.Anything, f.good.ID, 6).Return(true, nil)
	f.goods.On("ReleaseStock", mock.Anything, f.good.ID, 6).Return(nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(insertErr)

	_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(6))
	assert.ErrorIs(t, err, insertErr)
	f.goods.AssertCalled(t, "ReleaseStock", mock.Anything, f.good.ID, 6)
}

func TestCreateOrder_GoodNotFound(t *testing.T) {
	f := newOrderFixture()
	missing := primitive.NewObjectID()
	f.goods.On("FindActiveByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), dto.CreateOrderRequest{GoodID: missing.Hex(), Quantity: 5})
	assert.ErrorIs(t, err, apperror.ErrGoodNotFound)

	_, err = f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), dto.CreateOrderRequest{GoodID: "nope", Quantity: 5})
	assert.ErrorIs(t, err, apperror.ErrGoodNotFound)
}

func TestCreateOrder_SupplierMissing(t *testing.T) {
	f := newOrderFixture()
	orphan := newGood(primitive.NewObjectID())
	f.goods.On("FindActiveByID", mock.Anything, orphan.ID).Return(orphan, nil)
	f.users.On("FindByID", mock.Anything, orphan.Supplier.ID).Return(nil, repository.ErrNotFound)

	_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), dto.CreateOrderRequest{GoodID: orphan.ID.Hex(), Quantity: 5})
	assert.ErrorIs(t, err, apperror.ErrSupplierNotFound)
}

func TestCreateOrder_BodyUserMustBeCaller(t *testing.T) {
	f := newOrderFixture()
	req := f.request(5)
	req.UserID = primitive.NewObjectID().Hex()

	_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), req)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

// Every combination of stock flag, quantity and ownership obeys the rule
// that an order is accepted iff all four conditions hold.
func TestCreateOrder_AcceptanceRule(t *testing.T) {
	for _, inStock := range []bool{true, false} {
		for _, stock := range []*int{nil, intPtr(4), intPtr(10)} {
			for _, qty := range []int{1, 5, 7, 12} {
				for _, self := range []bool{true, false} {
					f := newOrderFixture()
					f.good.InStock = inStock
					f.good.StockQuantity = stock
					f.goods.On("ReserveStock", mock.Anything, f.good.ID, qty).Return(true, nil).Maybe()
					f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

					buyer := f.buyer.ID.Hex()
					if self {
						buyer = f.supplier.ID.Hex()
					}
					want := inStock && qty >= f.good.MinimumOrderQuantity && (stock == nil || qty <= *stock) && !self

					_, err := f.svc.CreateOrder(context.Background(), buyer, f.request(qty))
					assert.Equal(t, want, err == nil, "inStock=%v stock=%v qty=%d self=%v err=%v", inStock, stock, qty, self, err)
				}
			}
		}
	}
}

func TestCanTransition(t *testing.T) {
	all := []model.OrderStatus{
		model.StatusPending, model.StatusConfirmed, model.StatusProcessing,
		model.StatusShipped, model.StatusDelivered, model.StatusCancelled,
	}
	allowed := map[[2]model.OrderStatus]bool{
		{model.StatusPending, model.StatusConfirmed}:    true,
		{model.StatusPending, model.StatusCancelled}:    true,
		{model.StatusConfirmed, model.StatusProcessing}: true,
		{model.StatusConfirmed, model.StatusCancelled}:  true,
		{model.StatusProcessing, model.StatusShipped}:   true,
		{model.StatusProcessing, model.StatusCancelled}: true,
		{model.StatusShipped, model.StatusDelivered}:    true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]model.OrderStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func newStoredOrder(f *orderFixture, status model.OrderStatus) *model.Order {
	return &model.Order{
		ID:            primitive.NewObjectID(),
		Buyer:         model.RefTo[model.UserSummary](f.buyer.ID),
		Supplier:      model.RefTo[model.UserSummary](f.supplier.ID),
		Good:          model.RefTo[model.GoodSummary](f.good.ID),
		Quantity:      5,
		UnitPrice:     100,
		TotalPrice:    500,
		Currency:      model.CurrencyUAH,
		Status:        status,
		StockReserved: true,
	}
}

func (f *orderFixture) expectExpansion() {
	f.users.On("FindByIDs", mock.Anything, mock.Anything).Return(map[primitive.ObjectID]*model.User{
		f.buyer.ID:    f.buyer,
		f.supplier.ID: f.supplier,
	}, nil)
	f.goods.On("FindByIDs", mock.Anything, mock.Anything).Return(map[primitive.ObjectID]*model.Good{f.good.ID: f.good}, nil)
}

func TestUpdateOrderStatus_SupplierAdvances(t *testing.T) {
	f := newOrderFixture()
	stored := newStoredOrder(f, model.StatusPending)
	f.orders.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)

	confirmed := *stored
	confirmed.Status = model.StatusConfirmed
	confirmed.SupplierNotes = "ships Monday"
	f.orders.On("UpdateStatus", mock.Anything, stored.ID, model.StatusPending,
		mock.MatchedBy(func(r model.StatusRecord) bool {
			return r.Status == model.StatusConfirmed && r.ChangedBy == f.supplier.ID && r.Notes == "ships Monday"
		}), mock.Anything).Return(&confirmed, nil)
	f.expectExpansion()

	got, err := f.svc.UpdateOrderStatus(context.Background(), stored.ID.Hex(), f.supplier.ID.Hex(), dto.UpdateStatusRequest{
		Status:        "confirmed",
		SupplierNotes: strPtr("ships Monday"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	assert.True(t, got.Buyer.IsExpanded())
	f.goods.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e model.OrderEvent) bool {
		return e.Type == model.EventOrderStatusChanged && e.PreviousStatus == model.StatusPending
	}))
}

func TestUpdateOrderStatus_OnlySupplier(t *testing.T) {
	f := newOrderFixture()
	stored := newStoredOrder(f, model.StatusPending)
	f.orders.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)

	for _, caller := range []string{f.buyer.ID.Hex(), primitive.NewObjectID().Hex()} {
		_, err := f.svc.UpdateOrderStatus(context.Background(), stored.ID.Hex(), caller, dto.UpdateStatusRequest{Status: "confirmed"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	}
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_RejectsInvalidMoves(t *testing.T) {
	cases := []struct {
		name    string
		from    model.OrderStatus
		to      string
		wantErr error
	}{
		{"skip ahead", model.StatusPending, "shipped", apperror.ErrInvalidTransition},
		{"same state", model.StatusConfirmed, "confirmed", apperror.ErrInvalidTransition},
		{"delivered is final", model.StatusDelivered, "cancelled", apperror.ErrInvalidTransition},
		{"cancelled is final", model.StatusCancelled, "pending", apperror.ErrInvalidTransition},
		{"shipped cannot cancel", model.StatusShipped, "cancelled", apperror.ErrInvalidTransition},
		{"unknown status", model.StatusPending, "lost", apperror.ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newOrderFixture()
			stored := newStoredOrder(f, tc.from)
			f.orders.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)

			_, err := f.svc.UpdateOrderStatus(context.Background(), stored.ID.Hex(), f.supplier.ID.Hex(), dto.UpdateStatusRequest{Status: tc.to})
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestUpdateOrderStatus_CancelReleasesReservedStock(t *testing.T) {
	f := newOrderFixture()
	stored := newStoredOrder(f, model.StatusProcessing)
	f.orders.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)

	cancelled := *stored
	cancelled.Status = model.StatusCancelled
	f.orders.On("UpdateStatus", mock.Anything, stored.ID, model.StatusProcessing, mock.Anything, (*string)(nil)).Return(&cancelled, nil)
	f.goods.On("ReleaseStock", mock.Anything, f.good.ID, 5).Return(nil)
	f.expectExpansion()

	_, err := f.svc.UpdateOrderStatus(context.Background(), stored.ID.Hex(), f.supplier.ID.Hex(), dto.UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	f.goods.AssertCalled(t, "ReleaseStock", mock.Anything, f.good.ID, 5)
}

func TestUpdateOrderStatus_ConcurrentChange(t *testing.T) {
	f := newOrderFixture()
	stored := newStoredOrder(f, model.StatusPending)
	f.orders.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)
	f.orders.On("UpdateStatus", mock.Anything, stored.ID, model.StatusPending, mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	_, err := f.svc.UpdateOrderStatus(context.Background(), stored.ID.Hex(), f.supplier.ID.Hex(), dto.UpdateStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, apperror.ErrConcurrentUpdate)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestUpdateOrderStatus_BodySupplierMustBeCaller(t *testing.T) {
	f := newOrderFixture()
	_, err := f.svc.UpdateOrderStatus(context.Background(), primitive.NewObjectID().Hex(), f.supplier.ID.Hex(), dto.UpdateStatusRequest{
		SupplierID: f.buyer.ID.Hex(),
		Status:     "confirmed",
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestGetOrderByID_BuyerAndSupplierOnly(t *testing.T) {
	f := newOrderFixture()
	stored := newStoredOrder(f, model.StatusPending)
	f.orders.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)
	f.expectExpansion()

	for _, caller := range []string{f.buyer.ID.Hex(), f.supplier.ID.Hex()} {
		got, err := f.svc.GetOrderByID(context.Background(), stored.ID.Hex(), caller)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, got.ID)
	}

	_, err := f.svc.GetOrderByID(context.Background(), stored.ID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	f := newOrderFixture()
	missing := primitive.NewObjectID()
	f.orders.On("FindByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	_, err := f.svc.GetOrderByID(context.Background(), missing.Hex(), f.buyer.ID.Hex())
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
}

func TestGetBuyerOrders_StatusFilter(t *testing.T) {
	f := newOrderFixture()
	stored := newStoredOrder(f, model.StatusShipped)
	f.orders.On("List", mock.Anything, model.OrderFilter{BuyerID: &f.buyer.ID, Status: model.StatusShipped}).Return([]*model.Order{stored}, nil)
	f.expectExpansion()

	orders, err := f.svc.GetBuyerOrders(context.Background(), f.buyer.ID.Hex(), "shipped")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Flour", orders[0].Good.Expanded.Name)

	_, err = f.svc.GetBuyerOrders(context.Background(), f.buyer.ID.Hex(), "teleported")
	assert.ErrorIs(t, err, apperror.ErrInvalidStatus)
}

func TestGetSupplierOrders_Empty(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("List", mock.Anything, model.OrderFilter{SupplierID: &f.supplier.ID}).Return([]*model.Order{}, nil)

	orders, err := f.svc.GetSupplierOrders(context.Background(), f.supplier.ID.Hex(), "")
	require.NoError(t, err)
	assert.Empty(t, orders)
	f.users.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}
