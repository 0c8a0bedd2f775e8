package dto

import (
	"errors"
	"testing"

	"opt-shop/internal/apperror"
	"opt-shop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidate_StockSyncMessage(t *testing.T) {
	qty := -1
	msg := StockSyncMessage{
		SupplierID:    primitive.NewObjectID().Hex(),
		GoodID:        "not-an-id",
		StockQuantity: &qty,
	}

	err := Validate(msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.Validation(""))
	assert.Contains(t, err.Error(), "goodId")

	msg.GoodID = primitive.NewObjectID().Hex()
	err = Validate(msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stockQuantity must be at least 0")

	qty = 7
	assert.NoError(t, Validate(msg))
}

func TestBindError_NonValidationError(t *testing.T) {
	err := BindError(errors.New("unexpected EOF"))
	assert.Equal(t, apperror.KindValidation, err.Kind)
	assert.Equal(t, "invalid request body", err.Message)
}

func TestCreateGoodRequest_ToModelAppliesDefaults(t *testing.T) {
	price := 100.0
	req := CreateGoodRequest{Name: "Sugar", Category: "Food", Price: &price}

	g := req.ToModel()

	assert.Equal(t, model.CurrencyUAH, g.Currency)
	assert.Equal(t, "шт", g.Unit)
	assert.Equal(t, 1, g.MinimumOrderQuantity)
	assert.True(t, g.InStock)
	assert.True(t, g.IsActive)
	assert.Nil(t, g.StockQuantity)
}

func TestBusinessProfile_ApplyToMergesProvidedKeysOnly(t *testing.T) {
	name := "  Acme  "
	form := "ФОП"
	p := model.Profile{CompanyName: "Old", Phone: "+380000", Website: "https://old.example"}

	bp := &BusinessProfile{
		CompanyName:  &name,
		LegalForm:    &form,
		LegalAddress: &AddressDTO{Street: "Khreshchatyk 1", City: "Kyiv", Region: "Kyiv", PostalCode: "01001"},
	}
	bp.ApplyTo(&p)

	assert.Equal(t, "Acme", p.CompanyName)
	assert.Equal(t, "+380000", p.Phone)
	assert.Equal(t, "https://old.example", p.Website)
	assert.Equal(t, model.LegalFormSoleTrader, p.LegalForm)
	require.NotNil(t, p.LegalAddress)
	assert.Equal(t, "Україна", p.LegalAddress.Country)
}

func TestUpdateProfileRequest_IgnoresStatusKeys(t *testing.T) {
	verified := true
	logo := "/images/logo.png"
	req := UpdateProfileRequest{Logo: &logo}
	req.IsVerified = &verified

	p := model.Profile{}
	req.ApplyTo(&p)

	assert.Equal(t, "/images/logo.png", p.Logo)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}
