// order.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsFinal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type OrderContact struct {
	FullName string `bson:"full_name" json:"fullName"`
	Phone    string `bson:"phone" json:"phone"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
}

// StatusRecord is one entry of an order's status history.
type StatusRecord struct {
	Status    OrderStatus        `bson:"status" json:"status"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	ChangedBy primitive.ObjectID `bson:"changed_by" json:"changedBy"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Order snapshots the good's price and currency at creation. Supplier is
// copied from the good so supplier queries stay stable.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Buyer           Ref[UserSummary]   `bson:"buyer" json:"buyer"`
	Supplier        Ref[UserSummary]   `bson:"supplier" json:"supplier"`
	Good            Ref[GoodSummary]   `bson:"good" json:"good"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	UnitPrice       float64            `bson:"unit_price" json:"unitPrice"`
	TotalPrice      float64            `bson:"total_price" json:"totalPrice"`
	Currency        Currency           `bson:"currency" json:"currency"`
	Status          OrderStatus        `bson:"status" json:"status"`
	DeliveryAddress *Address           `bson:"delivery_address,omitempty" json:"deliveryAddress,omitempty"`
	ContactPerson   *OrderContact      `bson:"contact_person,omitempty" json:"contactPerson,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	SupplierNotes   string             `bson:"supplier_notes,omitempty" json:"supplierNotes,omitempty"`
	History         []StatusRecord     `bson:"history" json:"history"`

	// StockReserved is set when stock was decremented for this order, so
	// cancelling knows whether to give it back.
	StockReserved bool `bson:"stock_reserved" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

type OrderFilter struct {
	BuyerID    *primitive.ObjectID
	SupplierID *primitive.ObjectID
	Status     OrderStatus
}

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published after an order is created or changes status.
type OrderEvent struct {
	Type           string      `json:"type"`
	OrderID        string      `json:"orderId"`
	BuyerID        string      `json:"buyerId"`
	SupplierID     string      `json:"supplierId"`
	GoodID         string      `json:"goodId"`
	Status         OrderStatus `json:"status"`
	PreviousStatus OrderStatus `json:"previousStatus,omitempty"`
	Quantity       int         `json:"quantity"`
	TotalPrice     float64     `json:"totalPrice"`
	Currency       Currency    `json:"currency"`
	OccurredAt     time.Time   `json:"occurredAt"`
}

func NewOrderEvent(eventType string, o *Order, previous OrderStatus) OrderEvent {
	return OrderEvent{
		Type:           eventType,
		OrderID:        o.ID.Hex(),
		BuyerID:        o.Buyer.ID.Hex(),
		SupplierID:     o.Supplier.ID.Hex(),
		GoodID:         o.Good.ID.Hex(),
		Status:         o.Status,
		PreviousStatus: previous,
		Quantity:       o.Quantity,
		TotalPrice:     o.TotalPrice,
		Currency:       o.Currency,
		OccurredAt:     time.Now().UTC(),
	}
}
