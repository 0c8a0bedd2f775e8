// user_controller.go
package controller

import (
	"context"
	"net/http"

	"opt-shop/internal/dto"
	"opt-shop/internal/model"
	"opt-shop/internal/service"

	"github.com/gin-gonic/gin"
)

type UserService interface {
	ListSuppliers(ctx context.Context, q dto.SupplierQuery) (*service.SupplierList, error)
	GetSupplier(ctx context.Context, id string) (*model.User, error)
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*model.User, error)
}

type UserController struct {
	Service UserService
}

func NewUserController(s UserService) *UserController {
	return &UserController{Service: s}
}

// GET /users/suppliers
func (ctl *UserController) ListSuppliers(c *gin.Context) {
	var q dto.SupplierQuery
	if !bindQuery(c, &q) {
		return
	}

	list, err := ctl.Service.ListSuppliers(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /users/suppliers/:id
func (ctl *UserController) GetSupplier(c *gin.Context) {
	supplier, err := ctl.Service.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supplier": supplier})
}

// GET /users/me
func (ctl *UserController) Me(c *gin.Context) {
	user, err := ctl.Service.GetProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// PUT /users/me
func (ctl *UserController) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctl.Service.UpdateProfile(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "user": user})
}
