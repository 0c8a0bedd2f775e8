// ref.go
package model

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ref points at another document. In storage it is only the ObjectID; in
// API responses it is either the hex id or, once Expand has been called,
// the embedded summary of the referenced record.
type Ref[T any] struct {
	ID       primitive.ObjectID
	Expanded *T
}

func RefTo[T any](id primitive.ObjectID) Ref[T] {
	return Ref[T]{ID: id}
}

func (r *Ref[T]) Expand(v *T) {
	r.Expanded = v
}

func (r Ref[T]) IsExpanded() bool {
	return r.Expanded != nil
}

func (r Ref[T]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(r.ID)
}

func (r *Ref[T]) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t != bson.TypeObjectID {
		return fmt.Errorf("reference must be an ObjectID, got %s", t)
	}
	var id primitive.ObjectID
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&id); err != nil {
		return err
	}
	r.ID = id
	r.Expanded = nil
	return nil
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Expanded != nil {
		return json.Marshal(r.Expanded)
	}
	return json.Marshal(r.ID.Hex())
}
