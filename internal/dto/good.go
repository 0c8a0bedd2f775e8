// good.go
package dto

import (
	"time"

	"opt-shop/internal/model"
)

type LicenseDTO struct {
	Type              string     `json:"type" binding:"required"`
	Description       string     `json:"description"`
	ValidUntil        *time.Time `json:"validUntil"`
	CertificateNumber string     `json:"certificateNumber"`
	Issuer            string     `json:"issuer"`
}

func licensesToModel(in []LicenseDTO) []model.License {
	if in == nil {
		return nil
	}
	out := make([]model.License, 0, len(in))
	for _, l := range in {
		out = append(out, model.License{
			Type:              l.Type,
			Description:       l.Description,
			ValidUntil:        l.ValidUntil,
			CertificateNumber: l.CertificateNumber,
			Issuer:            l.Issuer,
		})
	}
	return out
}

// CreateGoodRequest. Supplier is optional and, when sent, must be the caller.
type CreateGoodRequest struct {
	Supplier             string            `json:"supplier"`
	Name                 string            `json:"name" binding:"required,max=200"`
	NameEn               string            `json:"nameEn" binding:"max=200"`
	Description          string            `json:"description" binding:"max=5000"`
	Category             string            `json:"category" binding:"required"`
	Subcategory          string            `json:"subcategory"`
	Price                *float64          `json:"price" binding:"required,gte=0"`
	Currency             string            `json:"currency" binding:"omitempty,oneof=UAH USD EUR"`
	Unit                 string            `json:"unit"`
	MinimumOrderQuantity *int              `json:"minimumOrderQuantity" binding:"omitempty,gte=1"`
	InStock              *bool             `json:"inStock"`
	StockQuantity        *int              `json:"stockQuantity" binding:"omitempty,gte=0"`
	Photos               []string          `json:"photos" binding:"max=10"`
	Specifications       map[string]string `json:"specifications"`
	Licenses             []LicenseDTO      `json:"licenses" binding:"omitempty,dive"`
}

func (r *CreateGoodRequest) ToModel() *model.Good {
	g := &model.Good{
		Name:           r.Name,
		NameEn:         r.NameEn,
		Description:    r.Description,
		Category:       r.Category,
		Subcategory:    r.Subcategory,
		Price:          *r.Price,
		Currency:       model.Currency(r.Currency),
		Unit:           r.Unit,
		InStock:        true,
		StockQuantity:  r.StockQuantity,
		Photos:         r.Photos,
		Specifications: r.Specifications,
		Licenses:       licensesToModel(r.Licenses),
		IsActive:       true,
	}
	if r.MinimumOrderQuantity != nil {
		g.MinimumOrderQuantity = *r.MinimumOrderQuantity
	}
	if r.InStock != nil {
		g.InStock = *r.InStock
	}
	g.ApplyDefaults()
	return g
}

// UpdateGoodRequest is a partial update; the owner and active flag cannot be
// changed through it.
type UpdateGoodRequest struct {
	Name                 *string           `json:"name" binding:"omitempty,min=1,max=200"`
	NameEn               *string           `json:"nameEn" binding:"omitempty,max=200"`
	Description          *string           `json:"description" binding:"omitempty,max=5000"`
	Category             *string           `json:"category" binding:"omitempty,min=1"`
	Subcategory          *string           `json:"subcategory"`
	Price                *float64          `json:"price" binding:"omitempty,gte=0"`
	Currency             *string           `json:"currency" binding:"omitempty,oneof=UAH USD EUR"`
	Unit                 *string           `json:"unit" binding:"omitempty,min=1"`
	MinimumOrderQuantity *int              `json:"minimumOrderQuantity" binding:"omitempty,gte=1"`
	InStock              *bool             `json:"inStock"`
	StockQuantity        *int              `json:"stockQuantity" binding:"omitempty,gte=0"`
	Photos               []string          `json:"photos" binding:"omitempty,max=10"`
	Specifications       map[string]string `json:"specifications"`
	Licenses             []LicenseDTO      `json:"licenses" binding:"omitempty,dive"`
}

func (r *UpdateGoodRequest) ToModel() *model.GoodUpdate {
	u := &model.GoodUpdate{
		Name:                 r.Name,
		NameEn:               r.NameEn,
		Description:          r.Description,
		Category:             r.Category,
		Subcategory:          r.Subcategory,
		Price:                r.Price,
		Unit:                 r.Unit,
		MinimumOrderQuantity: r.MinimumOrderQuantity,
		InStock:              r.InStock,
		StockQuantity:        r.StockQuantity,
		Photos:               r.Photos,
		Specifications:       r.Specifications,
		Licenses:             licensesToModel(r.Licenses),
	}
	if r.Currency != nil {
		c := model.Currency(*r.Currency)
		u.Currency = &c
	}
	return u
}

// GoodsQuery is bound from the query string of GET /goods.
type GoodsQuery struct {
	Search      string   `form:"search"`
	Category    string   `form:"category"`
	Subcategory string   `form:"subcategory"`
	MinPrice    *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice    *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	InStock     *bool    `form:"inStock"`
	Supplier    string   `form:"supplier"`
	SortBy      string   `form:"sortBy" binding:"omitempty,oneof=price createdAt name"`
	SortOrder   string   `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Page        int      `form:"page" binding:"omitempty,gte=1"`
	Limit       int      `form:"limit" binding:"omitempty,gte=1"`
}

// StockSyncMessage arrives on the stock_sync queue from supplier systems.
type StockSyncMessage struct {
	SupplierID    string `json:"supplierId" binding:"required,mongodb"`
	GoodID        string `json:"goodId" binding:"required,mongodb"`
	StockQuantity *int   `json:"stockQuantity" binding:"omitempty,gte=0"`
	InStock       *bool  `json:"inStock"`
}
