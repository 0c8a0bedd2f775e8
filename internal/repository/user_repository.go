// user_repository.go
package repository

import (
	"context"
	"regexp"
	"time"

	"opt-shop/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// publicUserProjection strips credentials from every read that can reach a
// client.
var publicUserProjection = bson.M{"password": 0, "refresh_token": 0}

type MongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection(usersCollection)}
}

func (m *MongoUserRepository) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, u)
	return classify(err)
}

func (m *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return m.findOne(ctx, bson.M{"_id": id}, options.FindOne())
}

// FindActiveByID returns a user visible in the supplier directory.
func (m *MongoUserRepository) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return m.findOne(ctx, bson.M{"_id": id, "is_active": true}, options.FindOne().SetProjection(publicUserProjection))
}

// FindByEmail includes the password hash and stored refresh token; only the
// auth flow uses it.
func (m *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findOne(ctx, bson.M{"email": email}, options.FindOne())
}

func (m *MongoUserRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*model.User, error) {
	return read(ctx, func() (*model.User, error) {
		var u model.User
		if err := m.col.FindOne(ctx, filter, opts).Decode(&u); err != nil {
			return nil, err
		}
		return &u, nil
	})
}

// FindByIDs loads users for reference expansion, keyed by id.
func (m *MongoUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	out := make(map[primitive.ObjectID]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := read(ctx, func() ([]*model.User, error) {
		cur, err := m.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(publicUserProjection))
		if err != nil {
			return nil, err
		}
		return decodeAll[model.User](ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (m *MongoUserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"refresh_token": token, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateRefreshToken replaces current with next only if current is still the
// stored token. It reports whether the swap happened.
func (m *MongoUserRepository) RotateRefreshToken(ctx context.Context, id primitive.ObjectID, current, next string) (bool, error) {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": id, "refresh_token": current},
		bson.M{"$set": bson.M{"refresh_token": next, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, classify(err)
	}
	return res.MatchedCount == 1, nil
}

func (m *MongoUserRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := m.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$unset": bson.M{"refresh_token": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return classify(err)
}

// UpdateProfile overwrites the stored profile with p and returns the result.
func (m *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, p *model.Profile) (*model.User, error) {
	set, err := bson.Marshal(p)
	if err != nil {
		return nil, err
	}
	var fields bson.M
	if err := bson.Unmarshal(set, &fields); err != nil {
		return nil, err
	}
	fields["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(publicUserProjection)

	var u model.User
	err = m.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&u)
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

// ListSuppliers pages through active users, newest first, optionally
// narrowed by a case-insensitive substring of company name or email.
func (m *MongoUserRepository) ListSuppliers(ctx context.Context, search string, p model.Pagination) ([]*model.User, int64, error) {
	filter := bson.M{"is_active": true}
	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"company_name": pattern},
			bson.M{"email": pattern},
		}
	}

	total, err := read(ctx, func() (int64, error) {
		return m.col.CountDocuments(ctx, filter)
	})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetProjection(publicUserProjection).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))

	users, err := read(ctx, func() ([]*model.User, error) {
		cur, err := m.col.Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		return decodeAll[model.User](ctx, cur)
	})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
