// user.go
package dto

import "opt-shop/internal/model"

type SupplierQuery struct {
	Search string `form:"search"`
	Page   int    `form:"page" binding:"omitempty,gte=1"`
	Limit  int    `form:"limit" binding:"omitempty,gte=1"`
}

func (q SupplierQuery) Pagination() model.Pagination {
	return model.Pagination{Page: q.Page, Limit: q.Limit}.Normalize()
}

// UpdateProfileRequest is the body of PUT /users/me.
type UpdateProfileRequest struct {
	BusinessProfile
	Logo   *string  `json:"logo"`
	Photos []string `json:"photos" binding:"omitempty,max=10"`
}

func (r *UpdateProfileRequest) ApplyTo(p *model.Profile) {
	r.BusinessProfile.ApplyTo(p)
	if r.Logo != nil {
		p.Logo = *r.Logo
	}
	if r.Photos != nil {
		p.Photos = r.Photos
	}
}
