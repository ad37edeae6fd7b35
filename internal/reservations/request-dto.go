package reservations

import (
	"ticketcore/internal/seats"
)

type ToggleSeatRequest struct {
	Section string `json:"section" validate:"required,max=100"`
	SeatID  string `json:"seat_id" validate:"required,max=20"`
}

type SelectSeatsRequest struct {
	Seats []seats.SeatRefRequest `json:"seats" validate:"required,min=1,max=100,dive"`
}
