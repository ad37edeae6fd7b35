package bookings

import (
	"time"

	"ticketcore/internal/seats"
)

// Booking is the persisted record of one checkout
type Booking struct {
	ID              string        `gorm:"type:varchar(64);primaryKey" json:"id"`
	BookingRef      string        `gorm:"type:varchar(32);uniqueIndex;not null" json:"booking_ref"`
	SessionID       string        `gorm:"type:varchar(64);index;not null" json:"session_id"`
	HolderToken     string        `gorm:"type:varchar(128);index;not null" json:"-"`
	HoldID          string        `gorm:"type:varchar(64);not null" json:"hold_id"`
	Status          Status        `gorm:"type:varchar(20);index;not null;check:status IN ('pending','confirmed','failed','cancelled');default:'pending'" json:"status"`
	State           State         `gorm:"type:varchar(20);not null" json:"state"`
	FailureReason   string        `gorm:"type:text" json:"failure_reason,omitempty"`
	// RefundRequested is claimed once so only one instance asks for the money back
	RefundRequested bool          `gorm:"not null;default:false" json:"refund_requested"`
	Subtotal        float64       `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	ConvenienceFee  float64       `gorm:"type:decimal(10,2);not null" json:"convenience_fee"`
	TotalAmount     float64       `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Currency        string        `gorm:"type:varchar(3);not null" json:"currency"`
	Seats           []BookingSeat `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;" json:"seats"`
	CreatedAt       time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// Refs lists the booked seats
func (b *Booking) Refs() []seats.SeatRef {
	refs := make([]seats.SeatRef, 0, len(b.Seats))
	for _, s := range b.Seats {
		refs = append(refs, seats.SeatRef{Section: s.SectionName, SeatID: s.SeatID})
	}
	seats.SortRefs(refs)
	return refs
}

// BookingSeat is one seat of a booking. Confirmed rows are unique per seat, which is the
// durable guarantee against double booking.
type BookingSeat struct {
	ID          string    `gorm:"type:varchar(64);primaryKey" json:"-"`
	BookingID   string    `gorm:"type:varchar(64);index;not null" json:"-"`
	SessionID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_booking_seats_confirmed,where:confirmed = true" json:"-"`
	SectionName string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_booking_seats_confirmed,where:confirmed = true" json:"section"`
	SeatID      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_booking_seats_confirmed,where:confirmed = true" json:"seat_id"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Confirmed   bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt   time.Time `json:"-"`
}

func (BookingSeat) TableName() string {
	return "booking_seats"
}
