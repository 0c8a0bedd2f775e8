// good.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Currency string

const (
	CurrencyUAH Currency = "UAH"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUAH, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

const (
	DefaultCurrency             = CurrencyUAH
	DefaultUnit                 = "шт"
	DefaultMinimumOrderQuantity = 1
)

type License struct {
	Type              string     `bson:"type" json:"type"`
	Description       string     `bson:"description,omitempty" json:"description,omitempty"`
	ValidUntil        *time.Time `bson:"valid_until,omitempty" json:"validUntil,omitempty"`
	CertificateNumber string     `bson:"certificate_number,omitempty" json:"certificateNumber,omitempty"`
	Issuer            string     `bson:"issuer,omitempty" json:"issuer,omitempty"`
}

// Good is a catalog entry. A nil StockQuantity means stock is not tracked
// and only InStock gates ordering.
type Good struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Supplier             Ref[UserSummary]   `bson:"supplier" json:"supplier"`
	Name                 string             `bson:"name" json:"name"`
	NameEn               string             `bson:"name_en,omitempty" json:"nameEn,omitempty"`
	Description          string             `bson:"description,omitempty" json:"description,omitempty"`
	Category             string             `bson:"category" json:"category"`
	Subcategory          string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Price                float64            `bson:"price" json:"price"`
	Currency             Currency           `bson:"currency" json:"currency"`
	Unit                 string             `bson:"unit" json:"unit"`
	MinimumOrderQuantity int                `bson:"minimum_order_quantity" json:"minimumOrderQuantity"`
	InStock              bool               `bson:"in_stock" json:"inStock"`
	StockQuantity        *int               `bson:"stock_quantity,omitempty" json:"stockQuantity,omitempty"`
	Photos               []string           `bson:"photos" json:"photos"`
	Specifications       map[string]string  `bson:"specifications,omitempty" json:"specifications,omitempty"`
	Licenses             []License          `bson:"licenses,omitempty" json:"licenses,omitempty"`
	IsActive             bool               `bson:"is_active" json:"isActive"`
	CreatedAt            time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (g *Good) ApplyDefaults() {
	if g.Currency == "" {
		g.Currency = DefaultCurrency
	}
	if g.Unit == "" {
		g.Unit = DefaultUnit
	}
	if g.MinimumOrderQuantity < 1 {
		g.MinimumOrderQuantity = DefaultMinimumOrderQuantity
	}
	if g.Photos == nil {
		g.Photos = []string{}
	}
}

type GoodSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Name     string             `json:"name"`
	Photos   []string           `json:"photos"`
	Price    float64            `json:"price"`
	Currency Currency           `json:"currency"`
	Unit     string             `json:"unit"`
}

func (g *Good) Summary() *GoodSummary {
	return &GoodSummary{
		ID:       g.ID,
		Name:     g.Name,
		Photos:   g.Photos,
		Price:    g.Price,
		Currency: g.Currency,
		Unit:     g.Unit,
	}
}

// GoodUpdate carries the fields a supplier may change. Nil means unchanged.
type GoodUpdate struct {
	Name                 *string
	NameEn               *string
	Description          *string
	Category             *string
	Subcategory          *string
	Price                *float64
	Currency             *Currency
	Unit                 *string
	MinimumOrderQuantity *int
	InStock              *bool
	StockQuantity        *int
	Photos               []string
	Specifications       map[string]string
	Licenses             []License
}

type GoodSortField string

const (
	SortByCreatedAt GoodSortField = "createdAt"
	SortByPrice     GoodSortField = "price"
	SortByName      GoodSortField = "name"
)

type GoodFilter struct {
	Search      string
	Category    string
	Subcategory string
	MinPrice    *float64
	MaxPrice    *float64
	InStock     *bool
	SupplierID  *primitive.ObjectID
	SortBy      GoodSortField
	Ascending   bool
	Pagination
}
