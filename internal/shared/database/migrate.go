package database

import (
	"ticketcore/internal/bookings"
	"ticketcore/internal/catalog"
	"ticketcore/internal/seats"
	"ticketcore/internal/sessions"
	"ticketcore/internal/venues"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&venues.Layout{},
		&sessions.Session{},
		&catalog.TicketType{},
		&seats.SeatBlock{},
		&bookings.Booking{},
		&bookings.BookingSeat{},
	)
}
