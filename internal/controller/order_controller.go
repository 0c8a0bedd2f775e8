// order_controller.go
package controller

import (
	"context"
	"net/http"

	"opt-shop/internal/dto"
	"opt-shop/internal/model"

	"github.com/gin-gonic/gin"
)

type OrderService interface {
	CreateOrder(ctx context.Context, buyerID string, req dto.CreateOrderRequest) (*model.Order, error)
	GetOrderByID(ctx context.Context, id, requesterID string) (*model.Order, error)
	GetBuyerOrders(ctx context.Context, buyerID, status string) ([]*model.Order, error)
	GetSupplierOrders(ctx context.Context, supplierID, status string) ([]*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, supplierID string, req dto.UpdateStatusRequest) (*model.Order, error)
}

type OrderController struct {
	Service OrderService
}

func NewOrderController(s OrderService) *OrderController {
	return &OrderController{Service: s}
}

// POST /orders
func (ctl *OrderController) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctl.Service.CreateOrder(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "order created", "order": order})
}

// GET /orders/:id, visible to the order's buyer and supplier.
func (ctl *OrderController) Get(c *gin.Context) {
	order, err := ctl.Service.GetOrderByID(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GET /orders/buyer/:buyerId
func (ctl *OrderController) ListByBuyer(c *gin.Context) {
	ctl.list(c, ctl.Service.GetBuyerOrders)
}

// GET /orders/supplier/:supplierId
func (ctl *OrderController) ListBySupplier(c *gin.Context) {
	ctl.list(c, ctl.Service.GetSupplierOrders)
}

func (ctl *OrderController) list(c *gin.Context, fetch func(ctx context.Context, userID, status string) ([]*model.Order, error)) {
	var q dto.OrderListQuery
	if !bindQuery(c, &q) {
		return
	}

	orders, err := fetch(c.Request.Context(), currentUser(c), q.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// PATCH /orders/:id/status
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctl.Service.UpdateOrderStatus(c.Request.Context(), c.Param("id"), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order status updated", "order": order})
}
