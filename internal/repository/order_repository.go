// order_repository.go
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

type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection(ordersCollection)}
}

// Create stores a new order with its first history record.
func (m *MongoOrderRepository) Create(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	if len(o.History) == 0 {
		o.History = []model.StatusRecord{{
			Status:    o.Status,
			Notes:     o.Notes,
			ChangedBy: o.Buyer.ID,
			Timestamp: now,
		}}
	}

	_, err := m.col.InsertOne(ctx, o)
	return classify(err)
}

func (m *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	return read(ctx, func() (*model.Order, error) {
		var o model.Order
		if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
			return nil, err
		}
		return &o, nil
	})
}

// List returns matching orders, newest first.
func (m *MongoOrderRepository) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, error) {
	filter := bson.M{}
	if f.BuyerID != nil {
		filter["buyer"] = *f.BuyerID
	}
	if f.SupplierID != nil {
		filter["supplier"] = *f.SupplierID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return read(ctx, func() ([]*model.Order, error) {
		cur, err := m.col.Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		return decodeAll[model.Order](ctx, cur)
	})
}

// UpdateStatus moves the order from one status to another only if it is still
// in from, appending record to the history. ErrNotFound means the order
// changed underneath the caller or does not exist.
func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from model.OrderStatus, record model.StatusRecord, supplierNotes *string) (*model.Order, error) {
	set := bson.M{
		"status":     record.Status,
		"updated_at": record.Timestamp,
	}
	if supplierNotes != nil {
		set["supplier_notes"] = *supplierNotes
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"history": record},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o model.Order
	err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, update, opts).Decode(&o)
	if err != nil {
		return nil, classify(err)
	}
	return &o, nil
}
