package seats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type seat struct {
	ref       SeatRef
	row       string
	status    Status
	holdID    string
	bookingID string
}

type hold struct {
	id        string
	sessionID string
	holder    string
	seats     map[SeatRef]bool
	heldUntil time.Time
	state     HoldState
	bookingID string
	locked    bool
	closedAt  time.Time
}

func (h *hold) refs() []SeatRef {
	refs := make([]SeatRef, 0, len(h.seats))
	for r := range h.seats {
		refs = append(refs, r)
	}
	SortRefs(refs)
	return refs
}

func (h *hold) view() Hold {
	return Hold{
		ID:          h.id,
		SessionID:   h.sessionID,
		HolderToken: h.holder,
		Seats:       h.refs(),
		HeldUntil:   h.heldUntil,
		State:       h.state,
		BookingID:   h.bookingID,
		Locked:      h.locked,
	}
}

// snapshot is immutable once published
type snapshot struct {
	version uint64
	takenAt time.Time
	seats   []SeatState
}

// sessionBook is the in-memory seat state of one session. Every field below mu is guarded by it,
// readers go through snap instead.
type sessionBook struct {
	id      string
	venueID string
	index   map[SeatRef]int // immutable after construction

	mu      sync.Mutex
	order   []*seat
	seats   map[SeatRef]*seat
	holds   map[string]*hold
	active  map[string]*hold
	version uint64
	evicted bool

	snap atomic.Pointer[snapshot]
}

func newSessionBook(data *SessionData, now time.Time) (*sessionBook, error) {
	if data == nil || data.Layout == nil {
		return nil, fmt.Errorf("session data without layout")
	}

	b := &sessionBook{
		id:      data.SessionID,
		venueID: data.Layout.ID,
		index:   make(map[SeatRef]int, data.Layout.Capacity),
		seats:   make(map[SeatRef]*seat, data.Layout.Capacity),
		holds:   make(map[string]*hold),
		active:  make(map[string]*hold),
	}

	for _, section := range data.Layout.Sections {
		for _, row := range section.Rows {
			for _, seatID := range row.SeatIDs {
				ref := SeatRef{Section: section.Name, SeatID: seatID}
				if _, dup := b.seats[ref]; dup {
					return nil, fmt.Errorf("duplicate seat %s in layout %s", ref, data.Layout.ID)
				}
				s := &seat{ref: ref, row: row.Label, status: StatusAvailable}
				b.index[ref] = len(b.order)
				b.order = append(b.order, s)
				b.seats[ref] = s
			}
		}
	}

	for _, ref := range data.Blocked {
		if s, ok := b.seats[ref]; ok {
			s.status = StatusBlocked
		}
	}
	for ref, bookingID := range data.Booked {
		if s, ok := b.seats[ref]; ok {
			s.status = StatusBooked
			s.bookingID = bookingID
		}
	}

	b.publish(now)
	return b, nil
}

// expire closes every active hold whose deadline has passed
func (b *sessionBook) expire(now time.Time) []*hold {
	var expired []*hold
	for _, h := range b.active {
		if !now.Before(h.heldUntil) {
			expired = append(expired, h)
		}
	}
	for _, h := range expired {
		b.closeHold(h, HoldExpired, now)
	}
	return expired
}

func (b *sessionBook) closeHold(h *hold, state HoldState, now time.Time) {
	for ref := range h.seats {
		s := b.seats[ref]
		if s.status == StatusHeld && s.holdID == h.id {
			s.status = StatusAvailable
			s.holdID = ""
		}
	}
	h.state = state
	h.closedAt = now
	h.locked = false
	delete(b.active, h.id)
	b.version++
}

// reopen undoes closeHold within the same critical section
func (b *sessionBook) reopen(h *hold) {
	h.state = HoldActive
	h.closedAt = time.Time{}
	b.active[h.id] = h
	b.version++
}

// checkAvailable validates that every ref can be newly held. Refs must be unique.
func (b *sessionBook) checkAvailable(refs []SeatRef) error {
	if len(refs) == 0 {
		return ErrEmptySeatSet
	}
	for _, ref := range refs {
		s, ok := b.seats[ref]
		if !ok {
			return seatErr(ErrUnknownSeat, ref)
		}
		switch s.status {
		case StatusAvailable:
		case StatusBlocked:
			return seatErr(ErrSeatBlocked, ref)
		default:
			return seatErr(ErrSeatUnavailable, ref)
		}
	}
	return nil
}

func (b *sessionBook) place(id string, refs []SeatRef, holder string, until time.Time) *hold {
	h := &hold{
		id:        id,
		sessionID: b.id,
		holder:    holder,
		seats:     make(map[SeatRef]bool, len(refs)),
		heldUntil: until,
		state:     HoldActive,
	}
	for _, ref := range refs {
		s := b.seats[ref]
		s.status = StatusHeld
		s.holdID = id
		h.seats[ref] = true
	}
	b.holds[id] = h
	b.active[id] = h
	b.version++
	return h
}

func (b *sessionBook) extend(h *hold, refs []SeatRef, until time.Time) {
	for _, ref := range refs {
		s := b.seats[ref]
		s.status = StatusHeld
		s.holdID = h.id
		h.seats[ref] = true
	}
	if until.After(h.heldUntil) {
		h.heldUntil = until
	}
	b.version++
}

// shrink drops refs from the hold, closing it when nothing is left
func (b *sessionBook) shrink(h *hold, refs []SeatRef, now time.Time) {
	for _, ref := range refs {
		if !h.seats[ref] {
			continue
		}
		delete(h.seats, ref)
		s := b.seats[ref]
		if s.holdID == h.id {
			s.status = StatusAvailable
			s.holdID = ""
		}
	}
	b.version++
	if len(h.seats) == 0 {
		b.closeHold(h, HoldReleased, now)
	}
}

func (b *sessionBook) commit(h *hold, bookingID string, now time.Time) {
	for ref := range h.seats {
		s := b.seats[ref]
		s.status = StatusBooked
		s.holdID = ""
		s.bookingID = bookingID
	}
	h.state = HoldCommitted
	h.bookingID = bookingID
	h.closedAt = now
	h.locked = false
	delete(b.active, h.id)
	b.version++
}

// holdOf returns the newest active hold of holder
func (b *sessionBook) holdOf(holder string) *hold {
	var newest *hold
	for _, h := range b.active {
		if h.holder != holder {
			continue
		}
		if newest == nil || h.heldUntil.After(newest.heldUntil) {
			newest = h
		}
	}
	return newest
}

func (b *sessionBook) seatsHeldBy(holder string) int {
	total := 0
	for _, h := range b.active {
		if h.holder == holder {
			total += len(h.seats)
		}
	}
	return total
}

func (b *sessionBook) stateOf(s *seat) SeatState {
	st := SeatState{SeatRef: s.ref, Row: s.row, Status: s.status, BookingID: s.bookingID}
	if s.status == StatusHeld {
		if h, ok := b.active[s.holdID]; ok {
			until := h.heldUntil
			st.HolderToken = h.holder
			st.HoldID = h.id
			st.HeldUntil = &until
		}
	}
	return st
}

// pruneClosed forgets released and expired holds that closed before cutoff and returns their ids.
// Committed holds stay while the book is loaded so a repeated Commit still resolves.
func (b *sessionBook) pruneClosed(cutoff time.Time) []string {
	var pruned []string
	for id, h := range b.holds {
		if h.state == HoldActive || h.state == HoldCommitted {
			continue
		}
		if h.closedAt.Before(cutoff) {
			delete(b.holds, id)
			pruned = append(pruned, id)
		}
	}
	return pruned
}

// publish swaps in a fresh snapshot if anything changed since the last one
func (b *sessionBook) publish(now time.Time) {
	if cur := b.snap.Load(); cur != nil && cur.version == b.version {
		return
	}
	states := make([]SeatState, len(b.order))
	for i, s := range b.order {
		states[i] = b.stateOf(s)
	}
	b.snap.Store(&snapshot{version: b.version, takenAt: now, seats: states})
}

// effective applies lazy expiry to a published seat state
func effective(st SeatState, now time.Time) SeatState {
	if st.Status == StatusHeld && st.HeldUntil != nil && !now.Before(*st.HeldUntil) {
		st.Status = StatusAvailable
		st.HolderToken = ""
		st.HoldID = ""
		st.HeldUntil = nil
	}
	return st
}
