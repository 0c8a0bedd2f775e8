package service

import (
	"context"
	"errors"

	"opt-shop/internal/apperror"
	"opt-shop/internal/model"
	"opt-shop/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interfaces the repository package implements.

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindActiveByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	RotateRefreshToken(ctx context.Context, id primitive.ObjectID, current, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, p *model.Profile) (*model.User, error)
	ListSuppliers(ctx context.Context, search string, p model.Pagination) ([]*model.User, int64, error)
}

type GoodRepository interface {
	Create(ctx context.Context, g *model.Good) error
	FindActiveByID(ctx context.Context, id primitive.ObjectID) (*model.Good, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Good, error)
	List(ctx context.Context, f model.GoodFilter) ([]*model.Good, int64, error)
	Update(ctx context.Context, id, supplierID primitive.ObjectID, u *model.GoodUpdate) (*model.Good, error)
	SoftDelete(ctx context.Context, id, supplierID primitive.ObjectID) error
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
	SetStock(ctx context.Context, id, supplierID primitive.ObjectID, stockQuantity *int, inStock *bool) error
	Categories(ctx context.Context) ([]string, error)
	Subcategories(ctx context.Context, category string) ([]string, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from model.OrderStatus, record model.StatusRecord, supplierNotes *string) (*model.Order, error)
}

// parseID turns a hex id into an ObjectID. A malformed id can never match a
// record, so it is reported as notFound.
func parseID(hex string, notFound *apperror.Error) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return id, nil
}

// mapNotFound swaps the repository's ErrNotFound for a domain error and
// passes everything else through.
func mapNotFound(err error, notFound *apperror.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return err
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
