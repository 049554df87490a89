package repository

import (
	"context"
	"errors"

	"github.com/tieubaoca/pdfqa-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/gorm"
)

const DocumentCollection = "documents"

type gormDocumentRepo struct {
	Repository[types.Document]
	db *gorm.DB
}

func NewGormDocumentRepo(db *gorm.DB) DocumentRepository {
	return &gormDocumentRepo{
		Repository: NewGormRepository[types.Document](db, "upload_date DESC"),
		db:         db,
	}
}

func (r *gormDocumentRepo) UpdateStatus(ctx context.Context, id string, status types.DocumentStatus, errorMessage *string) error {
	result := r.db.WithContext(ctx).
		Model(&types.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormDocumentRepo) FirstID(ctx context.Context) (string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&types.Document{}).
		Order("upload_date ASC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrNotFound
	}
	return ids[0], nil
}

type mongoDocumentRepo struct {
	Repository[types.Document]
	collection *mongo.Collection
}

func NewMongoDocumentRepo(db *mongo.Database) DocumentRepository {
	collection := db.Collection(DocumentCollection)
	return &mongoDocumentRepo{
		Repository: NewMongoRepository[types.Document](collection, "upload_date"),
		collection: collection,
	}
}

func (r *mongoDocumentRepo) UpdateStatus(ctx context.Context, id string, status types.DocumentStatus, errorMessage *string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":        status,
			"error_message": errorMessage,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoDocumentRepo) FirstID(ctx context.Context) (string, error) {
	var doc struct {
		ID string `bson:"_id"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "upload_date", Value: 1}}).
		SetProjection(bson.M{"_id": 1})
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.ID, nil
}
