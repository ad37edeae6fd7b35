package seats

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Tx is a view of one session inside its critical section. It is only valid during the
// Mutate callback that received it. Every mutator records how to undo itself, and log lines
// are only written once the callback succeeds.
type Tx struct {
	ctx    context.Context
	ledger *Ledger
	book   *sessionBook
	now    time.Time

	undo  []func()
	after []func()
}

func (tx *Tx) Now() time.Time {
	return tx.now
}

func (tx *Tx) SessionID() string {
	return tx.book.id
}

// Seat returns the current state of ref
func (tx *Tx) Seat(ref SeatRef) (SeatState, error) {
	s, ok := tx.book.seats[ref]
	if !ok {
		return SeatState{}, seatErr(ErrUnknownSeat, ref)
	}
	return tx.book.stateOf(s), nil
}

// HoldOf returns the holder's active hold in this session
func (tx *Tx) HoldOf(holderToken string) (Hold, bool) {
	h := tx.book.holdOf(holderToken)
	if h == nil {
		return Hold{}, false
	}
	return h.view(), true
}

// SeatsHeldBy counts the seats the holder has on hold in this session
func (tx *Tx) SeatsHeldBy(holderToken string) int {
	return tx.book.seatsHeldBy(holderToken)
}

// Place creates a new hold over refs, all or nothing
func (tx *Tx) Place(refs []SeatRef, holderToken string, holdDuration time.Duration) (Hold, error) {
	if strings.TrimSpace(holderToken) == "" {
		return Hold{}, ErrMissingHolder
	}
	if holdDuration <= 0 {
		return Hold{}, ErrInvalidHoldTTL
	}
	refs = UniqueRefs(refs)
	if err := tx.book.checkAvailable(refs); err != nil {
		return Hold{}, err
	}

	b := tx.book
	h := b.place(newHoldID(), refs, holderToken, tx.now.Add(holdDuration))
	tx.ledger.indexHold(h.id, b.id)
	tx.undo = append(tx.undo, func() {
		for ref := range h.seats {
			b.seats[ref].status = StatusAvailable
			b.seats[ref].holdID = ""
		}
		delete(b.holds, h.id)
		delete(b.active, h.id)
		tx.ledger.unindexHolds(h.id)
	})
	tx.after = append(tx.after, func() {
		tx.ledger.log.LogHoldPlaced(tx.ctx, b.id, h.id, holderToken, len(h.seats), h.heldUntil)
	})
	return h.view(), nil
}

// Extend adds refs to an active hold and pushes its deadline to at least now+holdDuration
func (tx *Tx) Extend(holdID string, refs []SeatRef, holdDuration time.Duration) (Hold, error) {
	h, err := tx.activeHold(holdID)
	if err != nil {
		return Hold{}, err
	}
	if holdDuration <= 0 {
		return Hold{}, ErrInvalidHoldTTL
	}

	var fresh []SeatRef
	for _, ref := range UniqueRefs(refs) {
		if !h.seats[ref] {
			fresh = append(fresh, ref)
		}
	}
	if len(fresh) == 0 {
		return h.view(), nil
	}
	if err := tx.book.checkAvailable(fresh); err != nil {
		return Hold{}, err
	}

	b := tx.book
	prevUntil := h.heldUntil
	b.extend(h, fresh, tx.now.Add(holdDuration))
	tx.undo = append(tx.undo, func() {
		for _, ref := range fresh {
			delete(h.seats, ref)
			b.seats[ref].status = StatusAvailable
			b.seats[ref].holdID = ""
		}
		h.heldUntil = prevUntil
	})
	return h.view(), nil
}

// Shrink removes refs from an active hold. Removing the last seat releases the hold.
func (tx *Tx) Shrink(holdID string, refs []SeatRef) (Hold, error) {
	h, err := tx.activeHold(holdID)
	if err != nil {
		return Hold{}, err
	}
	refs = UniqueRefs(refs)
	for _, ref := range refs {
		if !h.seats[ref] {
			return Hold{}, seatErr(fmt.Errorf("%w: not part of hold %s", ErrSeatUnavailable, holdID), ref)
		}
	}

	b := tx.book
	b.shrink(h, refs, tx.now)
	tx.undo = append(tx.undo, func() {
		if h.state != HoldActive {
			b.reopen(h)
		}
		for _, ref := range refs {
			h.seats[ref] = true
			b.seats[ref].status = StatusHeld
			b.seats[ref].holdID = h.id
		}
	})
	if h.state == HoldReleased {
		tx.after = append(tx.after, func() {
			tx.ledger.log.LogHoldReleased(tx.ctx, b.id, h.id, "emptied", 0)
		})
	}
	return h.view(), nil
}

// ReleaseHold closes an active hold. Closed holds are left as they are.
func (tx *Tx) ReleaseHold(holdID string) error {
	h, ok := tx.book.holds[holdID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
	}
	if h.state != HoldActive {
		return nil
	}
	if h.locked {
		return fmt.Errorf("%w: %s", ErrCheckoutLocked, holdID)
	}

	b := tx.book
	seats := len(h.seats)
	b.closeHold(h, HoldReleased, tx.now)
	tx.undo = append(tx.undo, func() {
		b.reopen(h)
		for ref := range h.seats {
			b.seats[ref].status = StatusHeld
			b.seats[ref].holdID = h.id
		}
	})
	tx.after = append(tx.after, func() {
		tx.ledger.log.LogHoldReleased(tx.ctx, b.id, h.id, string(HoldReleased), seats)
	})
	return nil
}

// rollback undoes every change made through tx, newest first
func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo, tx.after = nil, nil
	tx.book.version++
}

func (tx *Tx) finish() {
	for _, fn := range tx.after {
		fn()
	}
}

func (tx *Tx) activeHold(holdID string) (*hold, error) {
	h, ok := tx.book.holds[holdID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
	}
	if h.state != HoldActive {
		return nil, fmt.Errorf("%w: hold %s is %s", ErrHoldExpired, holdID, h.state)
	}
	if h.locked {
		return nil, fmt.Errorf("%w: %s", ErrCheckoutLocked, holdID)
	}
	return h, nil
}
