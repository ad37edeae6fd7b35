package seats

import (
	"context"
	"fmt"

	"ticketcore/internal/sessions"
	"ticketcore/internal/venues"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LayoutResolver finds the venue layout a session is played in
type LayoutResolver interface {
	LayoutFor(ctx context.Context, sessionID string) (*sessions.Session, *venues.Layout, error)
}

// Store reads and writes the durable part of seat state
type Store struct {
	db      *gorm.DB
	layouts LayoutResolver
}

func NewStore(db *gorm.DB, layouts LayoutResolver) *Store {
	return &Store{db: db, layouts: layouts}
}

type bookedSeatRow struct {
	SectionName string
	SeatID      string
	BookingID   string
}

// LoadSession replays blocks and confirmed bookings on top of the layout
func (s *Store) LoadSession(ctx context.Context, sessionID string) (*SessionData, error) {
	_, layout, err := s.layouts.LayoutFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var blocks []SeatBlock
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("failed to load seat blocks: %w", err)
	}

	var booked []bookedSeatRow
	err = s.db.WithContext(ctx).Table("booking_seats").
		Select("section_name, seat_id, booking_id").
		Where("session_id = ? AND confirmed = ?", sessionID, true).
		Scan(&booked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load booked seats: %w", err)
	}

	data := &SessionData{
		SessionID: sessionID,
		Layout:    layout,
		Blocked:   make([]SeatRef, 0, len(blocks)),
		Booked:    make(map[SeatRef]string, len(booked)),
	}
	for _, b := range blocks {
		data.Blocked = append(data.Blocked, SeatRef{Section: b.SectionName, SeatID: b.SeatID})
	}
	for _, row := range booked {
		data.Booked[SeatRef{Section: row.SectionName, SeatID: row.SeatID}] = row.BookingID
	}
	return data, nil
}

func (s *Store) SaveBlocks(ctx context.Context, sessionID string, refs []SeatRef, reason string) error {
	rows := make([]SeatBlock, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, SeatBlock{SessionID: sessionID, SectionName: ref.Section, SeatID: ref.SeatID, Reason: reason})
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (s *Store) DeleteBlocks(ctx context.Context, sessionID string, refs []SeatRef) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ref := range refs {
			err := tx.Where("session_id = ? AND section_name = ? AND seat_id = ?", sessionID, ref.Section, ref.SeatID).
				Delete(&SeatBlock{}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
