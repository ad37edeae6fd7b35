package venues

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, layout *Layout) error
	GetByID(ctx context.Context, id string) (*Layout, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, layout *Layout) error {
	return r.db.WithContext(ctx).Create(layout).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Layout, error) {
	var layout Layout
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&layout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLayoutNotFound
		}
		return nil, err
	}
	return &layout, nil
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Layout{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
