package reservations

import (
	"time"

	"ticketcore/internal/seats"
)

// SelectionSet is what a holder currently has on hold in a session
type SelectionSet struct {
	SessionID   string          `json:"session_id"`
	HolderToken string          `json:"-"`
	HoldID      string          `json:"hold_id,omitempty"`
	Seats       []seats.SeatRef `json:"seats"`
	HeldUntil   *time.Time      `json:"held_until,omitempty"`
	TTLSeconds  int             `json:"ttl_seconds"`
	Locked      bool            `json:"locked"`
}

// Empty reports whether nothing is selected
func (s SelectionSet) Empty() bool {
	return len(s.Seats) == 0
}

func selectionOf(tx *seats.Tx, holderToken string) SelectionSet {
	set := SelectionSet{
		SessionID:   tx.SessionID(),
		HolderToken: holderToken,
		Seats:       []seats.SeatRef{},
	}
	h, ok := tx.HoldOf(holderToken)
	if !ok {
		return set
	}
	until := h.HeldUntil
	set.HoldID = h.ID
	set.Seats = h.Seats
	set.HeldUntil = &until
	set.Locked = h.Locked
	if ttl := until.Sub(tx.Now()); ttl > 0 {
		set.TTLSeconds = int(ttl.Seconds())
	}
	return set
}
