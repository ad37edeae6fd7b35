package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketcore/internal/payments"
	"ticketcore/internal/seats"
)

// Timeouts bounds how long a transaction may wait in each non-terminal state
type Timeouts struct {
	Initializing time.Duration
	Processing   time.Duration
	Verifying    time.Duration
}

func (t Timeouts) For(state State) time.Duration {
	switch state {
	case StateCreated, StateInitializing:
		return t.Initializing
	case StateProcessing:
		return t.Processing
	case StateVerifying:
		return t.Verifying
	}
	return 0
}

// transaction drives one booking from submit to a terminal state. booking is owned by the
// run goroutine until done is closed. events is unbuffered so an event is either applied or
// seen after done, never left in a queue.
type transaction struct {
	id        string
	holder    string
	booking   *Booking
	heldUntil time.Time
	charged   bool

	events chan payments.Event
	abort  chan error
	done   chan struct{}
}

func newTransaction(b *Booking, heldUntil time.Time) *transaction {
	return &transaction{
		id:        b.ID,
		holder:    b.HolderToken,
		booking:   b,
		heldUntil: heldUntil,
		events:    make(chan payments.Event),
		abort:     make(chan error, 1),
		done:      make(chan struct{}),
	}
}

// wait is the time left in the current state, never past the hold deadline
func (s *Service) wait(t *transaction) time.Duration {
	wait := s.timeouts.For(t.booking.State)
	if left := t.heldUntil.Sub(s.ledger.Now()); left < wait {
		wait = left
	}
	return wait
}

func (s *Service) run(t *transaction) {
	defer s.wg.Done()
	defer func() {
		s.forget(t.id)
		close(t.done)
	}()

	ctx := context.Background()
	for {
		wait := s.wait(t)
		if wait <= 0 {
			s.fail(ctx, t, fmt.Errorf("%w: hold deadline reached in %s state", ErrTimeout, t.booking.State))
			return
		}

		timer := time.NewTimer(wait)
		select {
		case event := <-t.events:
			timer.Stop()
			if s.apply(ctx, t, event) {
				return
			}
		case cause := <-t.abort:
			timer.Stop()
			s.fail(ctx, t, cause)
			return
		case <-timer.C:
			s.fail(ctx, t, fmt.Errorf("%w: no progress in %s state after %s", ErrTimeout, t.booking.State, wait))
			return
		case <-s.stop:
			timer.Stop()
			s.fail(ctx, t, ErrShuttingDown)
			return
		}
	}
}

// apply moves the transaction on a payment event and reports whether it finished.
// Events may skip states but never move backwards.
func (s *Service) apply(ctx context.Context, t *transaction, event payments.Event) bool {
	target := targetState(event.Kind)
	switch target {
	case StateFailed:
		reason := event.Reason
		if reason == "" {
			reason = "declined"
		}
		s.fail(ctx, t, fmt.Errorf("%w: %s", ErrPaymentFailed, reason))
		return true
	case StateSucceeded:
		t.charged = true
		s.confirm(ctx, t)
		return true
	}

	if target.rank() <= t.booking.State.rank() {
		s.log.DebugWithContext(ctx, "stale payment event ignored", map[string]interface{}{
			"booking_id": t.id,
			"kind":       event.Kind,
			"state":      t.booking.State,
		})
		return false
	}

	from := t.booking.State
	t.booking.State = target
	if target.MayHaveCharged() {
		t.charged = true
	}
	if err := s.repo.UpdateState(ctx, t.id, target); err != nil {
		s.log.WithError(err).Warn("failed to persist booking state", "booking_id", t.id, "state", target)
	}
	s.log.LogBookingTransition(ctx, t.id, string(from), string(target), string(event.Kind))
	return false
}

// confirm stores the booking as confirmed before committing the hold. A failed commit
// reverts the row through the failure path.
func (s *Service) confirm(ctx context.Context, t *transaction) {
	if err := s.repo.Confirm(ctx, t.id); err != nil {
		s.fail(ctx, t, fmt.Errorf("%w: %w", ErrCommitFailed, err))
		return
	}
	if err := s.ledger.Commit(ctx, t.booking.HoldID, t.id); err != nil {
		s.fail(ctx, t, fmt.Errorf("%w: %w", ErrCommitFailed, err))
		return
	}

	from := t.booking.State
	t.booking.Status = StatusConfirmed
	t.booking.State = StateSucceeded
	t.booking.FailureReason = ""
	s.log.LogBookingTransition(ctx, t.id, string(from), string(StateSucceeded), string(payments.ChargeConfirmed))
	s.publish(ctx, t.booking)
}

func (s *Service) fail(ctx context.Context, t *transaction, cause error) {
	s.finishFailed(ctx, t.booking, cause, t.charged || t.booking.State.MayHaveCharged())
}

// finishFailed releases the hold before the failure is stored or published. A booking already
// failed or cancelled elsewhere keeps its status; b is refreshed from the repository.
func (s *Service) finishFailed(ctx context.Context, b *Booking, cause error, charged bool) {
	if err := s.ledger.Release(ctx, b.HoldID); err != nil && !errors.Is(err, seats.ErrHoldNotFound) {
		s.log.WithError(err).Error("failed to release hold of failed booking", "booking_id", b.ID, "hold_id", b.HoldID)
	}

	status := StatusFailed
	if errors.Is(cause, ErrUserCancelled) {
		status = StatusCancelled
	}
	moved, err := s.repo.Finish(ctx, b.ID, status, StateFailed, cause.Error())
	if err != nil {
		s.log.WithError(err).Error("failed to persist failed booking", "booking_id", b.ID)
		moved = true
	}

	if charged {
		s.refund(ctx, b, cause.Error())
	}

	if !moved {
		if current, err := s.repo.GetByID(ctx, b.ID); err == nil {
			*b = *current
		}
		s.log.Warn("booking already finished", "booking_id", b.ID, "status", b.Status, "cause", cause.Error())
		return
	}

	from := b.State
	b.Status = status
	b.State = StateFailed
	b.FailureReason = cause.Error()
	s.log.LogBookingTransition(ctx, b.ID, string(from), string(StateFailed), b.FailureReason)
	s.publish(ctx, b)
}

// refund asks for the booking's money back once, whichever instance gets there first
func (s *Service) refund(ctx context.Context, b *Booking, reason string) {
	claimed, err := s.repo.ClaimRefund(ctx, b.ID)
	if err != nil {
		s.log.WithError(err).Warn("failed to mark refund requested", "booking_id", b.ID)
		claimed = true
	}
	if !claimed {
		return
	}
	b.RefundRequested = true

	req := payments.RefundRequest{
		BookingID: b.ID,
		Amount:    b.TotalAmount,
		Currency:  b.Currency,
		Reason:    reason,
	}
	if err := s.gateway.RequestRefund(ctx, req); err != nil {
		s.log.ErrorWithContext(ctx, "failed to request refund", err, map[string]interface{}{
			"booking_id": b.ID,
			"amount":     b.TotalAmount,
		})
	}
}

func (s *Service) publish(ctx context.Context, b *Booking) {
	if err := s.outcomes.PublishOutcome(ctx, outcomeOf(b, s.ledger.Now())); err != nil {
		s.log.WithError(err).Warn("failed to publish booking outcome", "booking_id", b.ID)
	}
}
