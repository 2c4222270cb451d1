package repository

import (
	"context"
	"errors"

	"autotasking/pkg/db/option"

	"gorm.io/gorm"
)

type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
	Create(ctx context.Context, resource *T) error
	BatchCreate(ctx context.Context, resources []*T) error
	Update(ctx context.Context, id string, resource any) error
	Delete(ctx context.Context, query *T) (int64, error)
}

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return s
	}
	return &store[T]{db: tx}
}

func (s *store[T]) scoped(ctx context.Context, query *T, opts []option.QueryOption) *gorm.DB {
	db := s.db.WithContext(ctx).Model(new(T))
	if query != nil {
		db = db.Where(query)
	}
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

func (s *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	resources := make([]*T, 0)
	if err := s.scoped(ctx, query, opts).Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

// FindOne returns nil, nil when no row matches.
func (s *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var resource T
	err := s.scoped(ctx, query, opts).First(&resource).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (s *store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	var count int64
	if err := s.scoped(ctx, query, opts).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *store[T]) Create(ctx context.Context, resource *T) error {
	return s.db.WithContext(ctx).Create(resource).Error
}

func (s *store[T]) BatchCreate(ctx context.Context, resources []*T) error {
	if len(resources) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(resources).Error
}

func (s *store[T]) Update(ctx context.Context, id string, resource any) error {
	return s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(resource).Error
}

// Delete removes every row matching query and reports how many went.
// An empty query fails with gorm.ErrMissingWhereClause.
func (s *store[T]) Delete(ctx context.Context, query *T) (int64, error) {
	if query == nil {
		return 0, gorm.ErrMissingWhereClause
	}
	res := s.db.WithContext(ctx).Where(query).Delete(new(T))
	return res.RowsAffected, res.Error
}
