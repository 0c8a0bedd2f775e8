// good_repository.go
package repository

import (
	"context"
	"time"

	"opt-shop/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var goodSortFields = map[model.GoodSortField]string{
	model.SortByCreatedAt: "created_at",
	model.SortByPrice:     "price",
	model.SortByName:      "name",
}

type MongoGoodRepository struct {
	col *mongo.Collection
}

func NewMongoGoodRepository(db *mongo.Database) *MongoGoodRepository {
	return &MongoGoodRepository{col: db.Collection(goodsCollection)}
}

func (m *MongoGoodRepository) Create(ctx context.Context, g *model.Good) error {
	now := time.Now().UTC()
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, g)
	return classify(err)
}

// FindActiveByID ignores soft-deleted goods.
func (m *MongoGoodRepository) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*model.Good, error) {
	return read(ctx, func() (*model.Good, error) {
		var g model.Good
		if err := m.col.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&g); err != nil {
			return nil, err
		}
		return &g, nil
	})
}

// FindByIDs loads goods for reference expansion, including soft-deleted ones,
// so old orders still show what was bought.
func (m *MongoGoodRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Good, error) {
	out := make(map[primitive.ObjectID]*model.Good, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	goods, err := read(ctx, func() ([]*model.Good, error) {
		cur, err := m.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		return decodeAll[model.Good](ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	for _, g := range goods {
		out[g.ID] = g
	}
	return out, nil
}

func goodFilter(f model.GoodFilter) bson.M {
	filter := bson.M{"is_active": true}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Subcategory != "" {
		filter["subcategory"] = f.Subcategory
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	if f.InStock != nil {
		filter["in_stock"] = *f.InStock
	}
	if f.SupplierID != nil {
		filter["supplier"] = *f.SupplierID
	}
	return filter
}

func goodSort(f model.GoodFilter) bson.D {
	field, ok := goodSortFields[f.SortBy]
	if !ok {
		field = "created_at"
	}
	dir := -1
	if f.Ascending {
		dir = 1
	}
	sort := bson.D{{Key: field, Value: dir}}
	if field != "created_at" {
		sort = append(sort, bson.E{Key: "created_at", Value: -1})
	}
	return sort
}

// List returns one page of active goods and the total number matching f.
func (m *MongoGoodRepository) List(ctx context.Context, f model.GoodFilter) ([]*model.Good, int64, error) {
	filter := goodFilter(f)
	p := f.Pagination.Normalize()

	total, err := read(ctx, func() (int64, error) {
		return m.col.CountDocuments(ctx, filter)
	})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(goodSort(f)).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))

	goods, err := read(ctx, func() ([]*model.Good, error) {
		cur, err := m.col.Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		return decodeAll[model.Good](ctx, cur)
	})
	if err != nil {
		return nil, 0, err
	}
	return goods, total, nil
}

func goodUpdateSet(u *model.GoodUpdate) bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	put := func(key string, ok bool, v any) {
		if ok {
			set[key] = v
		}
	}
	put("name", u.Name != nil, u.Name)
	put("name_en", u.NameEn != nil, u.NameEn)
	put("description", u.Description != nil, u.Description)
	put("category", u.Category != nil, u.Category)
	put("subcategory", u.Subcategory != nil, u.Subcategory)
	put("price", u.Price != nil, u.Price)
	put("currency", u.Currency != nil, u.Currency)
	put("unit", u.Unit != nil, u.Unit)
	put("minimum_order_quantity", u.MinimumOrderQuantity != nil, u.MinimumOrderQuantity)
	put("in_stock", u.InStock != nil, u.InStock)
	put("stock_quantity", u.StockQuantity != nil, u.StockQuantity)
	put("photos", u.Photos != nil, u.Photos)
	put("specifications", u.Specifications != nil, u.Specifications)
	put("licenses", u.Licenses != nil, u.Licenses)
	return set
}

// Update applies u to an active good owned by supplierID.
func (m *MongoGoodRepository) Update(ctx context.Context, id, supplierID primitive.ObjectID, u *model.GoodUpdate) (*model.Good, error) {
	filter := bson.M{"_id": id, "supplier": supplierID, "is_active": true}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var g model.Good
	if err := m.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": goodUpdateSet(u)}, opts).Decode(&g); err != nil {
		return nil, classify(err)
	}
	return &g, nil
}

// SoftDelete marks the good inactive. Deleting twice reports ErrNotFound.
func (m *MongoGoodRepository) SoftDelete(ctx context.Context, id, supplierID primitive.ObjectID) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": id, "supplier": supplierID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReserveStock decrements stock_quantity by qty in a single conditional
// update. It reports false when the good is gone, out of stock or has fewer
// than qty units left.
func (m *MongoGoodRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	res, err := m.col.UpdateOne(ctx,
		bson.M{
			"_id":            id,
			"is_active":      true,
			"in_stock":       true,
			"stock_quantity": bson.M{"$gte": qty},
		},
		bson.M{
			"$inc": bson.M{"stock_quantity": -qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, classify(err)
	}
	return res.ModifiedCount == 1, nil
}

// ReleaseStock gives qty units back to a good that tracks stock.
func (m *MongoGoodRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := m.col.UpdateOne(ctx,
		bson.M{"_id": id, "stock_quantity": bson.M{"$exists": true}},
		bson.M{
			"$inc": bson.M{"stock_quantity": qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return classify(err)
}

// SetStock overwrites the stock fields of an active good owned by supplierID.
func (m *MongoGoodRepository) SetStock(ctx context.Context, id, supplierID primitive.ObjectID, stockQuantity *int, inStock *bool) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if stockQuantity != nil {
		set["stock_quantity"] = *stockQuantity
	}
	if inStock != nil {
		set["in_stock"] = *inStock
	}
	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": id, "supplier": supplierID, "is_active": true},
		bson.M{"$set": set},
	)
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoGoodRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := read(ctx, func() ([]interface{}, error) {
		return m.col.Distinct(ctx, "category", bson.M{"is_active": true})
	})
	if err != nil {
		return nil, err
	}
	return stringsOf(values), nil
}

func (m *MongoGoodRepository) Subcategories(ctx context.Context, category string) ([]string, error) {
	filter := bson.M{
		"is_active":   true,
		"category":    category,
		"subcategory": bson.M{"$exists": true, "$nin": bson.A{nil, ""}},
	}
	values, err := read(ctx, func() ([]interface{}, error) {
		return m.col.Distinct(ctx, "subcategory", filter)
	})
	if err != nil {
		return nil, err
	}
	return stringsOf(values), nil
}
