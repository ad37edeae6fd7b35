package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByHolder(ctx context.Context, holderToken string, query ListQuery) ([]Booking, int64, error)
	UpdateState(ctx context.Context, id string, state State) error
	// Confirm marks the booking and its seats confirmed in one transaction
	Confirm(ctx context.Context, id string) error
	// Finish moves a booking that is not failed or cancelled yet to a terminal status and frees its
	// seat rows. It reports false when the booking had already failed.
	Finish(ctx context.Context, id string, status Status, state State, reason string) (bool, error)
	// ClaimRefund marks the refund requested and reports whether this caller set the mark
	ClaimRefund(ctx context.Context, id string) (bool, error)
	ListStale(ctx context.Context, status Status, before time.Time) ([]Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("section_name ASC, seat_id ASC")
		}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListByHolder(ctx context.Context, holderToken string, query ListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var total int64

	db := r.db.WithContext(ctx).Model(&Booking{}).Where("holder_token = ?", holderToken)
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Seats").
		Order("created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&bookings).Error
	return bookings, total, err
}

func (r *repository) UpdateState(ctx context.Context, id string, state State) error {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{"state": state, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: no pending booking %s", ErrBookingNotFound, id)
	}
	return nil
}

func (r *repository) Confirm(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ?", id, StatusPending).
			Updates(map[string]interface{}{
				"status":     StatusConfirmed,
				"state":      StateSucceeded,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: no pending booking %s", ErrBookingNotFound, id)
		}

		// the partial unique index rejects a seat confirmed by another booking
		err := tx.Model(&BookingSeat{}).Where("booking_id = ?", id).Update("confirmed", true).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: seat already confirmed for another booking", ErrCommitFailed)
		}
		return err
	})
}

func (r *repository) Finish(ctx context.Context, id string, status Status, state State, reason string) (bool, error) {
	moved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Booking{}).
			Where("id = ? AND status NOT IN ?", id, []Status{StatusFailed, StatusCancelled}).
			Updates(map[string]interface{}{
				"status":         status,
				"state":          state,
				"failure_reason": reason,
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		moved = true
		if status == StatusConfirmed {
			return nil
		}
		return tx.Model(&BookingSeat{}).Where("booking_id = ?", id).Update("confirmed", false).Error
	})
	return moved, err
}

func (r *repository) ClaimRefund(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND refund_requested = ?", id, false).
		Updates(map[string]interface{}{"refund_requested": true, "updated_at": time.Now()})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) ListStale(ctx context.Context, status Status, before time.Time) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", status, before).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}
