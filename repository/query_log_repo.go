package repository

import (
	"github.com/tieubaoca/pdfqa-be/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

const QueryLogCollection = "query_logs"

type queryLogRepo struct {
	Repository[types.QueryLog]
}

func NewGormQueryLogRepo(db *gorm.DB) QueryLogRepository {
	return &queryLogRepo{
		Repository: NewGormRepository[types.QueryLog](db, "created_at DESC"),
	}
}

func NewMongoQueryLogRepo(db *mongo.Database) QueryLogRepository {
	return &queryLogRepo{
		Repository: NewMongoRepository[types.QueryLog](db.Collection(QueryLogCollection), "created_at"),
	}
}
