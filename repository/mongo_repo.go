package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoRepo[T Entity] struct {
	collection *mongo.Collection
	sortField  string
}

// NewMongoRepository returns a Repository over collection. Documents are
// keyed by _id; ListAll sorts by sortField descending.
func NewMongoRepository[T Entity](collection *mongo.Collection, sortField string) Repository[T] {
	return &mongoRepo[T]{
		collection: collection,
		sortField:  sortField,
	}
}

func (r *mongoRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *mongoRepo[T]) Create(ctx context.Context, entity *T) error {
	_, err := r.collection.InsertOne(ctx, entity)
	return err
}

func (r *mongoRepo[T]) Update(ctx context.Context, entity *T) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": (*entity).GetID()}, entity)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepo[T]) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepo[T]) ListAll(ctx context.Context, limit int) ([]*T, error) {
	opts := options.Find()
	if r.sortField != "" {
		opts.SetSort(bson.D{{Key: r.sortField, Value: -1}})
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entities := make([]*T, 0)
	for cursor.Next(ctx) {
		var entity T
		if err := cursor.Decode(&entity); err != nil {
			return nil, err
		}
		entities = append(entities, &entity)
	}
	return entities, cursor.Err()
}
