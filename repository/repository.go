package repository

import (
	"context"
	"errors"

	"github.com/tieubaoca/pdfqa-be/types"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type Entity interface {
	GetID() string
}

// Repository is the storage-agnostic CRUD contract shared by the gorm and
// mongo backends.
type Repository[T Entity] interface {
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
	// ListAll returns at most limit entities, newest first. limit <= 0
	// returns everything.
	ListAll(ctx context.Context, limit int) ([]*T, error)
}

type DocumentRepository interface {
	Repository[types.Document]
	UpdateStatus(ctx context.Context, id string, status types.DocumentStatus, errorMessage *string) error
	// FirstID returns the id of the oldest document, or ErrNotFound when
	// there are none.
	FirstID(ctx context.Context) (string, error)
}

type QueryLogRepository interface {
	Repository[types.QueryLog]
}

// AutoMigrate creates the relational tables used by the gorm repositories.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&types.Document{}, &types.QueryLog{})
}
