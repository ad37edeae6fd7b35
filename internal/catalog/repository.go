package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	CreateBatch(ctx context.Context, types []TicketType) error
	ListBySession(ctx context.Context, sessionID string) ([]TicketType, error)
	GetBySection(ctx context.Context, sessionID, sectionName string) (*TicketType, error)
	UpdatePrice(ctx context.Context, sessionID, sectionName string, price float64) (*TicketType, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository bound to tx
func WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateBatch(ctx context.Context, types []TicketType) error {
	if len(types) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&types).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateTicketType
	}
	return err
}

func (r *repository) ListBySession(ctx context.Context, sessionID string) ([]TicketType, error) {
	var types []TicketType
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("section_name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) GetBySection(ctx context.Context, sessionID, sectionName string) (*TicketType, error) {
	var t TicketType
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND section_name = ?", sessionID, sectionName).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) UpdatePrice(ctx context.Context, sessionID, sectionName string, price float64) (*TicketType, error) {
	result := r.db.WithContext(ctx).Model(&TicketType{}).
		Where("session_id = ? AND section_name = ?", sessionID, sectionName).
		Update("price", price)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTicketTypeNotFound
	}
	return r.GetBySection(ctx, sessionID, sectionName)
}
