package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type gormRepo[T Entity] struct {
	db      *gorm.DB
	orderBy string
}

// NewGormRepository returns a Repository over T's table. orderBy is the
// ORDER BY clause used by ListAll.
func NewGormRepository[T Entity](db *gorm.DB, orderBy string) Repository[T] {
	return &gormRepo[T]{
		db:      db,
		orderBy: orderBy,
	}
}

func (r *gormRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *gormRepo[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *gormRepo[T]) Update(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

func (r *gormRepo[T]) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepo[T]) ListAll(ctx context.Context, limit int) ([]*T, error) {
	query := r.db.WithContext(ctx)
	if r.orderBy != "" {
		query = query.Order(r.orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	entities := make([]*T, 0)
	if err := query.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}
