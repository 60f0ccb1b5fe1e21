package uniqueness

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Mongo stores taken values as documents {field, value} in one collection.
type Mongo struct {
	coll   *mongo.Collection
	fields map[string]struct{}
}

var (
	_ Store = (*Mongo)(nil)
	_ Adder = (*Mongo)(nil)
)

// NewMongo returns a store over coll tracking fields.
func NewMongo(coll *mongo.Collection, fields ...string) *Mongo {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return &Mongo{coll: coll, fields: set}
}

// EnsureIndex creates the unique {field, value} index backing Add.
func (s *Mongo) EnsureIndex(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "field", Value: 1}, {Key: "value", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return nil
}

func (s *Mongo) Exists(ctx context.Context, field, value string) (bool, error) {
	if _, ok := s.fields[field]; !ok {
		return false, ErrUnknownField
	}
	n, err := s.coll.CountDocuments(ctx, filter(field, value), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return n > 0, nil
}

func (s *Mongo) Add(ctx context.Context, field, value string) error {
	if _, ok := s.fields[field]; !ok {
		return ErrUnknownField
	}
	f := filter(field, value)
	_, err := s.coll.UpdateOne(ctx, f, bson.D{{Key: "$set", Value: f}}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return nil
}

func filter(field, value string) bson.D {
	return bson.D{{Key: "field", Value: field}, {Key: "value", Value: Normalize(value)}}
}
