// auth.go
package dto

import (
	"strings"
	"time"

	"opt-shop/internal/model"
)

type RegisterRequest struct {
	Email           string           `json:"email" binding:"required,email"`
	Password        string           `json:"password" binding:"required"`
	BusinessProfile *BusinessProfile `json:"businessProfile"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// NormalizeEmail trims and lower-cases an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type AddressDTO struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	Region     string `json:"region" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country"`
}

func (a *AddressDTO) ToModel() *model.Address {
	if a == nil {
		return nil
	}
	country := a.Country
	if country == "" {
		country = "Україна"
	}
	return &model.Address{
		Street:     a.Street,
		City:       a.City,
		Region:     a.Region,
		PostalCode: a.PostalCode,
		Country:    country,
	}
}

type ContactPersonDTO struct {
	FullName string `json:"fullName" binding:"required"`
	Position string `json:"position" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type BusinessTermsDTO struct {
	MinimumOrderAmount *float64 `json:"minimumOrderAmount" binding:"omitempty,gte=0"`
	PaymentTerms       []string `json:"paymentTerms"`
	DeliveryTerms      []string `json:"deliveryTerms"`
	DeliveryRegions    []string `json:"deliveryRegions"`
	WorkingHours       string   `json:"workingHours"`
}

type ProductCategoryDTO struct {
	Name          string   `json:"name" binding:"required"`
	Subcategories []string `json:"subcategories"`
}

// BusinessProfile is the nested company description accepted at registration
// and on profile edits. Only these keys are ever copied onto a user.
type BusinessProfile struct {
	CompanyName       *string              `json:"companyName" binding:"omitempty,min=1,max=200"`
	CompanyNameEn     *string              `json:"companyNameEn" binding:"omitempty,max=200"`
	Description       *string              `json:"description" binding:"omitempty,max=2000"`
	Website           *string              `json:"website" binding:"omitempty,max=300"`
	Phone             *string              `json:"phone"`
	AdditionalPhones  []string             `json:"additionalPhones"`
	ContactPerson     *ContactPersonDTO    `json:"contactPerson"`
	LegalAddress      *AddressDTO          `json:"legalAddress"`
	ActualAddress     *AddressDTO          `json:"actualAddress"`
	EDRPOU            *string              `json:"edrpou" binding:"omitempty,numeric,len=8"`
	TaxID             *string              `json:"taxId"`
	RegistrationDate  *time.Time           `json:"registrationDate"`
	LegalForm         *string              `json:"legalForm" binding:"omitempty,oneof=ТОВ ПП ФОП АТ Інше"`
	BusinessTerms     *BusinessTermsDTO    `json:"businessTerms"`
	ProductCategories []ProductCategoryDTO `json:"productCategories" binding:"omitempty,dive"`
	Specialization    []string             `json:"specialization"`

	// Accepted only at registration.
	IsVerified   *bool    `json:"isVerified"`
	Rating       *float64 `json:"rating" binding:"omitempty,gte=0,lte=5"`
	ReviewsCount *int     `json:"reviewsCount" binding:"omitempty,gte=0"`
}

// ApplyTo merges every provided key onto p. Absent keys leave p unchanged.
func (b *BusinessProfile) ApplyTo(p *model.Profile) {
	if b == nil {
		return
	}
	if b.CompanyName != nil {
		p.CompanyName = strings.TrimSpace(*b.CompanyName)
	}
	if b.CompanyNameEn != nil {
		p.CompanyNameEn = strings.TrimSpace(*b.CompanyNameEn)
	}
	if b.Description != nil {
		p.Description = *b.Description
	}
	if b.Website != nil {
		p.Website = strings.TrimSpace(*b.Website)
	}
	if b.Phone != nil {
		p.Phone = strings.TrimSpace(*b.Phone)
	}
	if b.AdditionalPhones != nil {
		p.AdditionalPhones = b.AdditionalPhones
	}
	if b.ContactPerson != nil {
		p.ContactPerson = &model.ContactPerson{
			FullName: b.ContactPerson.FullName,
			Position: b.ContactPerson.Position,
			Phone:    b.ContactPerson.Phone,
			Email:    NormalizeEmail(b.ContactPerson.Email),
		}
	}
	if b.LegalAddress != nil {
		p.LegalAddress = b.LegalAddress.ToModel()
	}
	if b.ActualAddress != nil {
		p.ActualAddress = b.ActualAddress.ToModel()
	}
	if b.EDRPOU != nil {
		p.EDRPOU = *b.EDRPOU
	}
	if b.TaxID != nil {
		p.TaxID = *b.TaxID
	}
	if b.RegistrationDate != nil {
		p.RegistrationDate = b.RegistrationDate
	}
	if b.LegalForm != nil {
		p.LegalForm = model.LegalForm(*b.LegalForm)
	}
	if b.BusinessTerms != nil {
		p.BusinessTerms = &model.BusinessTerms{
			MinimumOrderAmount: b.BusinessTerms.MinimumOrderAmount,
			PaymentTerms:       b.BusinessTerms.PaymentTerms,
			DeliveryTerms:      b.BusinessTerms.DeliveryTerms,
			DeliveryRegions:    b.BusinessTerms.DeliveryRegions,
			WorkingHours:       b.BusinessTerms.WorkingHours,
		}
	}
	if b.ProductCategories != nil {
		cats := make([]model.ProductCategory, 0, len(b.ProductCategories))
		for _, c := range b.ProductCategories {
			cats = append(cats, model.ProductCategory{Name: c.Name, Subcategories: c.Subcategories})
		}
		p.ProductCategories = cats
	}
	if b.Specialization != nil {
		p.Specialization = b.Specialization
	}
}

// ApplyStatusTo copies the verification and rating keys. Registration is the
// only caller.
func (b *BusinessProfile) ApplyStatusTo(u *model.User) {
	if b == nil {
		return
	}
	if b.IsVerified != nil {
		u.IsVerified = *b.IsVerified
	}
	if b.Rating != nil {
		u.Rating = *b.Rating
	}
	if b.ReviewsCount != nil {
		u.ReviewsCount = *b.ReviewsCount
	}
}

type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type AuthResponse struct {
	Message     string  `json:"message"`
	User        UserRef `json:"user"`
	AccessToken string  `json:"accessToken"`
}

type TokenResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}
