// order.go
package dto

import "opt-shop/internal/model"

// CreateOrderRequest. UserID is accepted for compatibility with older clients
// and must match the authenticated buyer when present.
type CreateOrderRequest struct {
	UserID          string           `json:"userId"`
	GoodID          string           `json:"goodId" binding:"required"`
	Quantity        int              `json:"quantity" binding:"required,gte=1"`
	DeliveryAddress *AddressDTO      `json:"deliveryAddress"`
	ContactPerson   *OrderContactDTO `json:"contactPerson"`
	Notes           string           `json:"notes" binding:"max=1000"`
}

type OrderContactDTO struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
}

func (c *OrderContactDTO) ToModel() *model.OrderContact {
	if c == nil {
		return nil
	}
	return &model.OrderContact{FullName: c.FullName, Phone: c.Phone, Email: NormalizeEmail(c.Email)}
}

type UpdateStatusRequest struct {
	SupplierID    string  `json:"supplierId"`
	Status        string  `json:"status" binding:"required"`
	SupplierNotes *string `json:"supplierNotes" binding:"omitempty,max=1000"`
}

type OrderListQuery struct {
	Status string `form:"status"`
}
