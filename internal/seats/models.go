package seats

import (
	"sort"
	"time"

	"ticketcore/internal/venues"
)

// Status is the state of one seat in one session
type Status string

const (
	StatusAvailable Status = "available"
	StatusHeld      Status = "held"
	StatusBooked    Status = "booked"
	StatusBlocked   Status = "blocked"
)

// SeatRef addresses a seat inside a session's venue. Seat ids are only unique within a section.
type SeatRef struct {
	Section string `json:"section"`
	SeatID  string `json:"seat_id"`
}

func (r SeatRef) String() string {
	return r.Section + "/" + r.SeatID
}

// Less orders refs by section, then seat id
func (r SeatRef) Less(o SeatRef) bool {
	if r.Section != o.Section {
		return r.Section < o.Section
	}
	return r.SeatID < o.SeatID
}

// SortRefs sorts refs in place
func SortRefs(refs []SeatRef) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
}

// UniqueRefs returns refs without duplicates, sorted
func UniqueRefs(refs []SeatRef) []SeatRef {
	seen := make(map[SeatRef]bool, len(refs))
	out := make([]SeatRef, 0, len(refs))
	for _, r := range refs {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	SortRefs(out)
	return out
}

// SeatState is the externally visible state of a seat
type SeatState struct {
	SeatRef
	Row         string     `json:"row"`
	Status      Status     `json:"status"`
	HolderToken string     `json:"-"`
	HoldID      string     `json:"-"`
	HeldUntil   *time.Time `json:"held_until,omitempty"`
	BookingID   string     `json:"-"`
}

// HeldBy reports whether the seat is currently held by holderToken
func (s SeatState) HeldBy(holderToken string) bool {
	return s.Status == StatusHeld && s.HolderToken == holderToken
}

// HoldState is the lifecycle of a hold
type HoldState string

const (
	HoldActive    HoldState = "active"
	HoldReleased  HoldState = "released"
	HoldExpired   HoldState = "expired"
	HoldCommitted HoldState = "committed"
)

// Hold is a copy of a hold record, safe to keep after the ledger moves on
type Hold struct {
	ID          string    `json:"hold_id"`
	SessionID   string    `json:"session_id"`
	HolderToken string    `json:"-"`
	Seats       []SeatRef `json:"seats"`
	HeldUntil   time.Time `json:"held_until"`
	State       HoldState `json:"state"`
	BookingID   string    `json:"booking_id,omitempty"`
	Locked      bool      `json:"locked"`
}

// Counts summarises a seat map
type Counts struct {
	Capacity  int `json:"capacity"`
	Available int `json:"available"`
	Held      int `json:"held"`
	Booked    int `json:"booked"`
	Blocked   int `json:"blocked"`
}

// SeatMap is a consistent view of every seat of a session at AsOf
type SeatMap struct {
	SessionID string      `json:"session_id"`
	VenueID   string      `json:"venue_id"`
	Version   uint64      `json:"version"`
	AsOf      time.Time   `json:"as_of"`
	Seats     []SeatState `json:"seats"`
	Counts    Counts      `json:"counts"`
}

// SessionData is what the ledger needs to rebuild a session after a restart
type SessionData struct {
	SessionID string
	Layout    *venues.Layout
	Blocked   []SeatRef
	Booked    map[SeatRef]string // seat -> booking id
}

// SeatBlock is an administrative block persisted across restarts
type SeatBlock struct {
	SessionID   string    `gorm:"type:varchar(64);primaryKey" json:"session_id"`
	SectionName string    `gorm:"type:varchar(100);primaryKey" json:"section"`
	SeatID      string    `gorm:"type:varchar(20);primaryKey" json:"seat_id"`
	Reason      string    `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for SeatBlock
func (SeatBlock) TableName() string {
	return "seat_blocks"
}
