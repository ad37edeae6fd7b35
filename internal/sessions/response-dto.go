package sessions

import (
	"time"

	"ticketcore/internal/catalog"
)

type SessionResponse struct {
	SessionID   string               `json:"session_id"`
	EventID     string               `json:"event_id"`
	VenueID     string               `json:"venue_id"`
	Date        string               `json:"date"`
	StartTime   time.Time            `json:"start_time"`
	EndTime     time.Time            `json:"end_time"`
	TicketTypes []catalog.TicketType `json:"ticket_types,omitempty"`
}

func ToSessionResponse(s *Session, types []catalog.TicketType) SessionResponse {
	return SessionResponse{
		SessionID:   s.ID,
		EventID:     s.EventID,
		VenueID:     s.VenueID,
		Date:        s.Date(),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		TicketTypes: types,
	}
}
