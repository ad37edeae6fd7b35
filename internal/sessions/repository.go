package sessions

import (
	"context"
	"errors"
	"fmt"

	"ticketcore/internal/catalog"

	"gorm.io/gorm"
)

type Repository interface {
	CreateWithTicketTypes(ctx context.Context, session *Session, types []catalog.TicketType) error
	GetByID(ctx context.Context, id string) (*Session, error)
	ListByEvent(ctx context.Context, eventID string) ([]Session, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateWithTicketTypes stores a session and its price book in one transaction
func (r *repository) CreateWithTicketTypes(ctx context.Context, session *Session, types []catalog.TicketType) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		if err := catalog.WithTx(tx).CreateBatch(ctx, types); err != nil {
			return fmt.Errorf("failed to create ticket types: %w", err)
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id string) (*Session, error) {
	var session Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID string) ([]Session, error) {
	var sessions []Session
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("start_time ASC, id ASC").
		Find(&sessions).Error
	return sessions, err
}
