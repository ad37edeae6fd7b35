package reservations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ticketcore/internal/seats"
)

// Coordinator applies the holder-facing selection rules on top of the ledger. Every decision is
// taken inside the ledger's session critical section.
type Coordinator struct {
	ledger  *seats.Ledger
	limit   int
	holdTTL time.Duration
}

func NewCoordinator(ledger *seats.Ledger, limit int, holdTTL time.Duration) (*Coordinator, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if holdTTL <= 0 {
		return nil, seats.ErrInvalidHoldTTL
	}
	return &Coordinator{ledger: ledger, limit: limit, holdTTL: holdTTL}, nil
}

func (c *Coordinator) Limit() int {
	return c.limit
}

func (c *Coordinator) HoldTTL() time.Duration {
	return c.holdTTL
}

// ToggleSeat adds an available seat to the holder's selection or removes one the holder already has
func (c *Coordinator) ToggleSeat(ctx context.Context, sessionID string, ref seats.SeatRef, holderToken string) (SelectionSet, error) {
	if strings.TrimSpace(holderToken) == "" {
		return SelectionSet{}, seats.ErrMissingHolder
	}

	var set SelectionSet
	err := c.ledger.Mutate(ctx, sessionID, func(tx *seats.Tx) error {
		st, err := tx.Seat(ref)
		if err != nil {
			return err
		}
		current, hasHold := tx.HoldOf(holderToken)
		if hasHold && current.Locked {
			return fmt.Errorf("%w: %s", ErrCheckoutInProgress, current.ID)
		}

		switch st.Status {
		case seats.StatusHeld:
			if st.HolderToken != holderToken {
				return &seats.SeatError{Err: ErrSeatTaken, Ref: ref}
			}
			if _, err := tx.Shrink(st.HoldID, []seats.SeatRef{ref}); err != nil {
				return err
			}
		case seats.StatusBooked:
			return &seats.SeatError{Err: seats.ErrSeatUnavailable, Ref: ref}
		case seats.StatusBlocked:
			return &seats.SeatError{Err: seats.ErrSeatBlocked, Ref: ref}
		default:
			if tx.SeatsHeldBy(holderToken)+1 > c.limit {
				return fmt.Errorf("%w: at most %d seats per holder", ErrInvalidHolderLimit, c.limit)
			}
			if hasHold {
				_, err = tx.Extend(current.ID, []seats.SeatRef{ref}, c.holdTTL)
			} else {
				_, err = tx.Place([]seats.SeatRef{ref}, holderToken, c.holdTTL)
			}
			if err != nil {
				return err
			}
		}

		set = selectionOf(tx, holderToken)
		return nil
	})
	return set, err
}

// SelectSeats adds a set of seats to the selection, all or nothing. Seats the holder already has are kept.
func (c *Coordinator) SelectSeats(ctx context.Context, sessionID string, refs []seats.SeatRef, holderToken string) (SelectionSet, error) {
	if strings.TrimSpace(holderToken) == "" {
		return SelectionSet{}, seats.ErrMissingHolder
	}
	refs = seats.UniqueRefs(refs)
	if len(refs) == 0 {
		return SelectionSet{}, seats.ErrEmptySeatSet
	}

	var set SelectionSet
	err := c.ledger.Mutate(ctx, sessionID, func(tx *seats.Tx) error {
		current, hasHold := tx.HoldOf(holderToken)
		if hasHold && current.Locked {
			return fmt.Errorf("%w: %s", ErrCheckoutInProgress, current.ID)
		}

		var fresh []seats.SeatRef
		for _, ref := range refs {
			st, err := tx.Seat(ref)
			if err != nil {
				return err
			}
			switch st.Status {
			case seats.StatusHeld:
				if st.HolderToken != holderToken {
					return &seats.SeatError{Err: ErrSeatTaken, Ref: ref}
				}
			case seats.StatusBooked:
				return &seats.SeatError{Err: seats.ErrSeatUnavailable, Ref: ref}
			case seats.StatusBlocked:
				return &seats.SeatError{Err: seats.ErrSeatBlocked, Ref: ref}
			default:
				fresh = append(fresh, ref)
			}
		}

		if tx.SeatsHeldBy(holderToken)+len(fresh) > c.limit {
			return fmt.Errorf("%w: at most %d seats per holder", ErrInvalidHolderLimit, c.limit)
		}

		if len(fresh) > 0 {
			var err error
			if hasHold {
				_, err = tx.Extend(current.ID, fresh, c.holdTTL)
			} else {
				_, err = tx.Place(fresh, holderToken, c.holdTTL)
			}
			if err != nil {
				return err
			}
		}

		set = selectionOf(tx, holderToken)
		return nil
	})
	return set, err
}

// Selection returns the holder's current selection
func (c *Coordinator) Selection(ctx context.Context, sessionID, holderToken string) (SelectionSet, error) {
	var set SelectionSet
	err := c.ledger.Mutate(ctx, sessionID, func(tx *seats.Tx) error {
		set = selectionOf(tx, holderToken)
		return nil
	})
	return set, err
}

// ClearSelection releases the holder's hold. A selection locked in checkout cannot be cleared here.
func (c *Coordinator) ClearSelection(ctx context.Context, sessionID, holderToken string) error {
	return c.ledger.Mutate(ctx, sessionID, func(tx *seats.Tx) error {
		current, ok := tx.HoldOf(holderToken)
		if !ok {
			return nil
		}
		if current.Locked {
			return fmt.Errorf("%w: %s", ErrCheckoutInProgress, current.ID)
		}
		return tx.ReleaseHold(current.ID)
	})
}
