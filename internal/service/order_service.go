// order_service.go
package service

import (
	"context"
	"errors"
	"time"

	"opt-shop/internal/apperror"
	"opt-shop/internal/dto"
	"opt-shop/internal/model"
	"opt-shop/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventPublisher announces order changes to other systems. A failed publish
// never fails the request that caused it.
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// Allowed status transitions. Only the order's supplier moves an order along
// this graph; delivered and cancelled have no way out.
var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPending:    {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed:  {model.StatusProcessing, model.StatusCancelled},
	model.StatusProcessing: {model.StatusShipped, model.StatusCancelled},
	model.StatusShipped:    {model.StatusDelivered},
}

// CanTransition reports whether an order may go from one status to another.
func CanTransition(from, to model.OrderStatus) bool {
	return contains(orderTransitions[from], to)
}

func contains(arr []model.OrderStatus, s model.OrderStatus) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}

type OrderService struct {
	orders OrderRepository
	goods  GoodRepository
	users  UserRepository
	events EventPublisher
	log    *logrus.Logger
}

func NewOrderService(orders OrderRepository, goods GoodRepository, users UserRepository, events EventPublisher, log *logrus.Logger) *OrderService {
	return &OrderService{orders: orders, goods: goods, users: users, events: events, log: log}
}

// CreateOrder places a pending order for buyerID. Stock is reserved with a
// conditional decrement when the good tracks it, and released again if the
// order cannot be stored.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID string, req dto.CreateOrderRequest) (*model.Order, error) {
	if req.UserID != "" && req.UserID != buyerID {
		return nil, apperror.ErrForbidden
	}
	bid, err := parseID(buyerID, apperror.ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	// 1. Good
	gid, err := parseID(req.GoodID, apperror.ErrGoodNotFound)
	if err != nil {
		return nil, err
	}
	good, err := s.goods.FindActiveByID(ctx, gid)
	if err != nil {
		return nil, mapNotFound(err, apperror.ErrGoodNotFound)
	}

	// 2. Its supplier
	supplier, err := s.users.FindByID(ctx, good.Supplier.ID)
	if err != nil {
		return nil, mapNotFound(err, apperror.ErrSupplierNotFound)
	}

	// 3-6. Business rules
	if err := checkOrderable(good, req.Quantity); err != nil {
		return nil, err
	}
	if supplier.ID == bid {
		return nil, apperror.ErrSelfOrder
	}

	// 7. Price snapshot
	order := &model.Order{
		Buyer:           model.RefTo[model.UserSummary](bid),
		Supplier:        model.RefTo[model.UserSummary](supplier.ID),
		Good:            model.RefTo[model.GoodSummary](good.ID),
		Quantity:        req.Quantity,
		UnitPrice:       good.Price,
		TotalPrice:      float64(req.Quantity) * good.Price,
		Currency:        good.Currency,
		Status:          model.StatusPending,
		DeliveryAddress: req.DeliveryAddress.ToModel(),
		ContactPerson:   req.ContactPerson.ToModel(),
		Notes:           req.Notes,
	}

	if good.StockQuantity != nil {
		reserved, err := s.goods.ReserveStock(ctx, good.ID, req.Quantity)
		if err != nil {
			return nil, err
		}
		if !reserved {
			// Another order took the stock between the read and the reservation.
			return nil, apperror.ErrInsufficientStock
		}
		order.StockReserved = true
	}

	// 8. Persist
	if err := s.orders.Create(ctx, order); err != nil {
		if order.StockReserved {
			s.releaseStock(order)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"orderId":    order.ID.Hex(),
		"buyerId":    buyerID,
		"supplierId": supplier.ID.Hex(),
		"goodId":     good.ID.Hex(),
		"quantity":   order.Quantity,
		"totalPrice": order.TotalPrice,
	}).Info("order created")
	s.publish(ctx, model.NewOrderEvent(model.EventOrderCreated, order, ""))

	buyer, err := s.users.FindByID(ctx, bid)
	if err == nil {
		order.Buyer.Expand(buyer.Summary())
	}
	order.Supplier.Expand(supplier.Summary())
	order.Good.Expand(good.Summary())
	return order, nil
}

// checkOrderable applies the stock and minimum-quantity rules in order.
func checkOrderable(g *model.Good, quantity int) error {
	if !g.InStock {
		return apperror.ErrOutOfStock
	}
	if quantity < g.MinimumOrderQuantity {
		return apperror.ErrBelowMinimum.Withf("minimum order quantity: %d %s", g.MinimumOrderQuantity, g.Unit)
	}
	if g.StockQuantity != nil && quantity > *g.StockQuantity {
		return apperror.ErrInsufficientStock.Withf("insufficient stock, available: %d %s", *g.StockQuantity, g.Unit)
	}
	return nil
}

// releaseStock runs detached from the request so a cancelled request still
// gives the units back.
func (s *OrderService) releaseStock(o *model.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := s.log.WithFields(logrus.Fields{"goodId": o.Good.ID.Hex(), "quantity": o.Quantity})
	if err := s.goods.ReleaseStock(ctx, o.Good.ID, o.Quantity); err != nil {
		entry.WithError(err).Error("release stock failed")
		return
	}
	entry.Info("stock released")
}

// GetOrderByID is visible to the order's buyer and supplier only.
func (s *OrderService) GetOrderByID(ctx context.Context, id, requesterID string) (*model.Order, error) {
	oid, err := parseID(id, apperror.ErrOrderNotFound)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, mapNotFound(err, apperror.ErrOrderNotFound)
	}
	if o.Buyer.ID.Hex() != requesterID && o.Supplier.ID.Hex() != requesterID {
		return nil, apperror.ErrForbidden
	}
	if err := s.expand(ctx, []*model.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) GetBuyerOrders(ctx context.Context, buyerID, status string) ([]*model.Order, error) {
	bid, err := parseID(buyerID, apperror.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, model.OrderFilter{BuyerID: &bid}, status)
}

func (s *OrderService) GetSupplierOrders(ctx context.Context, supplierID, status string) ([]*model.Order, error) {
	sid, err := parseID(supplierID, apperror.ErrSupplierNotFound)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, model.OrderFilter{SupplierID: &sid}, status)
}

func (s *OrderService) list(ctx context.Context, f model.OrderFilter, status string) ([]*model.Order, error) {
	if status != "" {
		f.Status = model.OrderStatus(status)
		if !f.Status.Valid() {
			return nil, apperror.ErrInvalidStatus
		}
	}
	orders, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.expand(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus moves an order one step along the transition graph. The
// write is conditional on the status that was read, so two suppliers' tabs
// racing on the same order cannot both succeed.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, supplierID string, req dto.UpdateStatusRequest) (*model.Order, error) {
	if req.SupplierID != "" && req.SupplierID != supplierID {
		return nil, apperror.ErrForbidden
	}
	oid, err := parseID(orderID, apperror.ErrOrderNotFound)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, mapNotFound(err, apperror.ErrOrderNotFound)
	}
	if o.Supplier.ID.Hex() != supplierID {
		return nil, apperror.ErrForbidden
	}

	next := model.OrderStatus(req.Status)
	if !next.Valid() {
		return nil, apperror.ErrInvalidStatus
	}
	current := o.Status
	if !CanTransition(current, next) {
		return nil, apperror.ErrInvalidTransition.Withf("cannot change status from %s to %s", current, next)
	}

	record := model.StatusRecord{
		Status:    next,
		ChangedBy: o.Supplier.ID,
		Timestamp: time.Now().UTC(),
	}
	if req.SupplierNotes != nil {
		record.Notes = *req.SupplierNotes
	}

	updated, err := s.orders.UpdateStatus(ctx, oid, current, record, req.SupplierNotes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrConcurrentUpdate
		}
		return nil, err
	}

	if next == model.StatusCancelled && updated.StockReserved {
		s.releaseStock(updated)
	}

	s.log.WithFields(logrus.Fields{
		"orderId": orderID,
		"from":    current,
		"to":      next,
	}).Info("order status changed")
	s.publish(ctx, model.NewOrderEvent(model.EventOrderStatusChanged, updated, current))

	if err := s.expand(ctx, []*model.Order{updated}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *OrderService) publish(ctx context.Context, event model.OrderEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"orderId": event.OrderID,
			"type":    event.Type,
		}).Warn("publish order event failed")
	}
}

// expand fills buyer, supplier and good summaries with two batched reads.
func (s *OrderService) expand(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	userIDs := make([]primitive.ObjectID, 0, 2*len(orders))
	goodIDs := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		userIDs = append(userIDs, o.Buyer.ID, o.Supplier.ID)
		goodIDs = append(goodIDs, o.Good.ID)
	}

	users, err := s.users.FindByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		return err
	}
	goods, err := s.goods.FindByIDs(ctx, uniqueIDs(goodIDs))
	if err != nil {
		return err
	}

	for _, o := range orders {
		if u, ok := users[o.Buyer.ID]; ok {
			o.Buyer.Expand(u.Summary())
		}
		if u, ok := users[o.Supplier.ID]; ok {
			o.Supplier.Expand(u.Summary())
		}
		if g, ok := goods[o.Good.ID]; ok {
			o.Good.Expand(g.Summary())
		}
	}
	return nil
}
