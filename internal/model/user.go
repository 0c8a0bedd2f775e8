// user.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const PasswordCost = 10

type LegalForm string

const (
	LegalFormLLC        LegalForm = "ТОВ"
	LegalFormPrivate    LegalForm = "ПП"
	LegalFormSoleTrader LegalForm = "ФОП"
	LegalFormJSC        LegalForm = "АТ"
	LegalFormOther      LegalForm = "Інше"
)

type Address struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	Region     string `bson:"region" json:"region"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

type ContactPerson struct {
	FullName string `bson:"full_name" json:"fullName"`
	Position string `bson:"position" json:"position"`
	Phone    string `bson:"phone" json:"phone"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
}

type BusinessTerms struct {
	MinimumOrderAmount *float64 `bson:"minimum_order_amount,omitempty" json:"minimumOrderAmount,omitempty"`
	PaymentTerms       []string `bson:"payment_terms,omitempty" json:"paymentTerms,omitempty"`
	DeliveryTerms      []string `bson:"delivery_terms,omitempty" json:"deliveryTerms,omitempty"`
	DeliveryRegions    []string `bson:"delivery_regions,omitempty" json:"deliveryRegions,omitempty"`
	WorkingHours       string   `bson:"working_hours,omitempty" json:"workingHours,omitempty"`
}

type ProductCategory struct {
	Name          string   `bson:"name" json:"name"`
	Subcategories []string `bson:"subcategories,omitempty" json:"subcategories,omitempty"`
}

// Profile is the editable business part of a user. It is stored inline in
// the user document.
type Profile struct {
	CompanyName       string            `bson:"company_name" json:"companyName"`
	CompanyNameEn     string            `bson:"company_name_en,omitempty" json:"companyNameEn,omitempty"`
	Description       string            `bson:"description,omitempty" json:"description,omitempty"`
	Website           string            `bson:"website,omitempty" json:"website,omitempty"`
	Logo              string            `bson:"logo,omitempty" json:"logo,omitempty"`
	Photos            []string          `bson:"photos,omitempty" json:"photos,omitempty"`
	Phone             string            `bson:"phone" json:"phone"`
	AdditionalPhones  []string          `bson:"additional_phones,omitempty" json:"additionalPhones,omitempty"`
	ContactPerson     *ContactPerson    `bson:"contact_person,omitempty" json:"contactPerson,omitempty"`
	LegalAddress      *Address          `bson:"legal_address,omitempty" json:"legalAddress,omitempty"`
	ActualAddress     *Address          `bson:"actual_address,omitempty" json:"actualAddress,omitempty"`
	EDRPOU            string            `bson:"edrpou,omitempty" json:"edrpou,omitempty"`
	TaxID             string            `bson:"tax_id,omitempty" json:"taxId,omitempty"`
	RegistrationDate  *time.Time        `bson:"registration_date,omitempty" json:"registrationDate,omitempty"`
	LegalForm         LegalForm         `bson:"legal_form,omitempty" json:"legalForm,omitempty"`
	BusinessTerms     *BusinessTerms    `bson:"business_terms,omitempty" json:"businessTerms,omitempty"`
	ProductCategories []ProductCategory `bson:"product_categories,omitempty" json:"productCategories,omitempty"`
	Specialization    []string          `bson:"specialization,omitempty" json:"specialization,omitempty"`
}

// User is both buyer and supplier. Password and RefreshToken never leave the
// service in JSON.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`

	Profile `bson:",inline"`

	IsVerified   bool    `bson:"is_verified" json:"isVerified"`
	IsActive     bool    `bson:"is_active" json:"isActive"`
	Rating       float64 `bson:"rating" json:"rating"`
	ReviewsCount int     `bson:"reviews_count" json:"reviewsCount"`

	RefreshToken string `bson:"refresh_token,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// UserSummary is what other records embed when they expand a user reference.
type UserSummary struct {
	ID          primitive.ObjectID `json:"id"`
	CompanyName string             `json:"companyName"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	Logo        string             `json:"logo,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		CompanyName: u.CompanyName,
		Email:       u.Email,
		Phone:       u.Phone,
		Logo:        u.Logo,
	}
}
