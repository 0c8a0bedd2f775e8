// good_controller.go
package controller

import (
	"context"
	"net/http"

	"opt-shop/internal/dto"
	"opt-shop/internal/model"
	"opt-shop/internal/service"

	"github.com/gin-gonic/gin"
)

type GoodService interface {
	CreateGood(ctx context.Context, supplierID string, req dto.CreateGoodRequest) (*model.Good, error)
	GetGoods(ctx context.Context, q dto.GoodsQuery) (*service.GoodList, error)
	GetGoodByID(ctx context.Context, id string) (*model.Good, error)
	UpdateGood(ctx context.Context, id, supplierID string, req dto.UpdateGoodRequest) (*model.Good, error)
	DeleteGood(ctx context.Context, id, supplierID string) error
	GetCategories(ctx context.Context) ([]string, error)
	GetSubcategories(ctx context.Context, category string) ([]string, error)
}

type GoodController struct {
	Service GoodService
}

func NewGoodController(s GoodService) *GoodController {
	return &GoodController{Service: s}
}

// GET /goods
func (ctl *GoodController) List(c *gin.Context) {
	var q dto.GoodsQuery
	if !bindQuery(c, &q) {
		return
	}

	list, err := ctl.Service.GetGoods(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /goods/:id
func (ctl *GoodController) Get(c *gin.Context) {
	good, err := ctl.Service.GetGoodByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"good": good})
}

// POST /goods
func (ctl *GoodController) Create(c *gin.Context) {
	var req dto.CreateGoodRequest
	if !bindJSON(c, &req) {
		return
	}

	good, err := ctl.Service.CreateGood(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "good created", "good": good})
}

// PUT /goods/:id
func (ctl *GoodController) Update(c *gin.Context) {
	var req dto.UpdateGoodRequest
	if !bindJSON(c, &req) {
		return
	}

	good, err := ctl.Service.UpdateGood(c.Request.Context(), c.Param("id"), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "good updated", "good": good})
}

// DELETE /goods/:id deactivates the good.
func (ctl *GoodController) Delete(c *gin.Context) {
	if err := ctl.Service.DeleteGood(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("good deleted"))
}

// GET /goods/categories/list
func (ctl *GoodController) Categories(c *gin.Context) {
	categories, err := ctl.Service.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GET /goods/categories/:category/subcategories
func (ctl *GoodController) Subcategories(c *gin.Context) {
	subcategories, err := ctl.Service.GetSubcategories(c.Request.Context(), c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subcategories": subcategories})
}
