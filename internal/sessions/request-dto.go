package sessions

import (
	"time"

	"ticketcore/internal/catalog"
)

type RegisterSessionRequest struct {
	SessionID   string                   `json:"session_id" validate:"omitempty,max=64"`
	EventID     string                   `json:"event_id" validate:"required,max=64"`
	VenueID     string                   `json:"venue_id" validate:"required,max=64"`
	StartTime   time.Time                `json:"start_time" validate:"required"`
	EndTime     time.Time                `json:"end_time" validate:"required"`
	TicketTypes []catalog.TicketTypeSpec `json:"ticket_types" validate:"required,min=1,dive"`
}
