package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ticketcore/internal/catalog"
	"ticketcore/internal/payments"
	"ticketcore/internal/pricing"
	"ticketcore/internal/reservations"
	"ticketcore/internal/seats"
	"ticketcore/pkg/logger"

	"github.com/google/uuid"
)

// SelectionReader is satisfied by reservations.Coordinator
type SelectionReader interface {
	Selection(ctx context.Context, sessionID, holderToken string) (reservations.SelectionSet, error)
}

// PriceSource is satisfied by catalog.Service
type PriceSource interface {
	PriceBook(ctx context.Context, sessionID string) (catalog.PriceBook, error)
}

type Dependencies struct {
	Repo       Repository
	Ledger     *seats.Ledger
	Selections SelectionReader
	Prices     PriceSource
	Calculator *pricing.Calculator
	Gateway    payments.Gateway
	Outcomes   OutcomePublisher
	Logger     *logger.Logger
}

// Service runs booking transactions. Each submitted booking gets its own goroutine that reacts
// to payment events and timeouts.
type Service struct {
	repo       Repository
	ledger     *seats.Ledger
	selections SelectionReader
	prices     PriceSource
	calculator *pricing.Calculator
	gateway    payments.Gateway
	outcomes   OutcomePublisher
	timeouts   Timeouts
	log        *logger.Logger

	mu       sync.Mutex
	live     map[string]*transaction
	closing  bool
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

func NewService(deps Dependencies, timeouts Timeouts) (*Service, error) {
	for state, d := range map[State]time.Duration{
		StateInitializing: timeouts.Initializing,
		StateProcessing:   timeouts.Processing,
		StateVerifying:    timeouts.Verifying,
	} {
		if d <= 0 {
			return nil, fmt.Errorf("timeout for %s state must be positive, got %s", state, d)
		}
	}
	if deps.Outcomes == nil {
		deps.Outcomes = LogOutcomePublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.GetDefault()
	}

	return &Service{
		repo:       deps.Repo,
		ledger:     deps.Ledger,
		selections: deps.Selections,
		prices:     deps.Prices,
		calculator: deps.Calculator,
		gateway:    deps.Gateway,
		outcomes:   deps.Outcomes,
		timeouts:   timeouts,
		log:        deps.Logger,
		live:       make(map[string]*transaction),
		stop:       make(chan struct{}),
	}, nil
}

// Quote prices the holder's current selection against the current catalog
func (s *Service) Quote(ctx context.Context, sessionID, holderToken string) (*pricing.Quote, error) {
	set, err := s.selections.Selection(ctx, sessionID, holderToken)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, sessionID, set.Seats)
}

func (s *Service) price(ctx context.Context, sessionID string, refs []seats.SeatRef) (*pricing.Quote, error) {
	book, err := s.prices.PriceBook(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for session %s: %w", sessionID, err)
	}
	items := make([]pricing.Item, 0, len(refs))
	for _, ref := range refs {
		items = append(items, pricing.Item{Section: ref.Section, SeatID: ref.SeatID})
	}
	return s.calculator.Calculate(items, book)
}

// Submit checks out the holder's selection: the hold is locked, priced, stored as a pending
// booking and a charge is requested. The returned booking is a copy taken at submit time.
func (s *Service) Submit(ctx context.Context, sessionID, holderToken string) (*Booking, error) {
	if strings.TrimSpace(holderToken) == "" {
		return nil, seats.ErrMissingHolder
	}
	if s.isClosing() {
		return nil, ErrShuttingDown
	}

	set, err := s.selections.Selection(ctx, sessionID, holderToken)
	if err != nil {
		return nil, err
	}
	if set.Empty() {
		return nil, ErrEmptySelection
	}

	hold, err := s.ledger.Lock(ctx, set.HoldID)
	if err != nil {
		return nil, err
	}

	booking, err := s.create(ctx, sessionID, holderToken, hold)
	if err != nil {
		if uerr := s.ledger.Unlock(context.WithoutCancel(ctx), hold.ID); uerr != nil {
			s.log.WithError(uerr).Warn("failed to unlock hold after submit error", "hold_id", hold.ID)
		}
		return nil, err
	}
	view := booking.clone()

	t, err := s.start(booking, hold.HeldUntil)
	if err != nil {
		s.finishFailed(context.WithoutCancel(ctx), booking, err, false)
		return nil, err
	}

	charge := payments.ChargeRequest{
		BookingID:  booking.ID,
		BookingRef: booking.BookingRef,
		Amount:     view.TotalAmount,
		Currency:   view.Currency,
	}
	if err := s.gateway.RequestCharge(ctx, charge); err != nil {
		t.abort <- fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		<-t.done
		return nil, fmt.Errorf("%w: could not request charge: %v", ErrPaymentFailed, err)
	}

	return view, nil
}

func (s *Service) create(ctx context.Context, sessionID, holderToken string, hold seats.Hold) (*Booking, error) {
	quote, err := s.price(ctx, sessionID, hold.Seats)
	if err != nil {
		return nil, err
	}
	if err := quote.RequireSeats(); err != nil {
		return nil, err
	}

	now := s.ledger.Now()
	booking := &Booking{
		ID:             uuid.NewString(),
		BookingRef:     generateBookingReference(now),
		SessionID:      sessionID,
		HolderToken:    holderToken,
		HoldID:         hold.ID,
		Status:         StatusPending,
		State:          StateInitializing,
		Subtotal:       quote.Subtotal,
		ConvenienceFee: quote.ConvenienceFee,
		TotalAmount:    quote.Total,
		Currency:       quote.Currency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, line := range quote.Lines {
		for _, seatID := range line.SeatIDs {
			booking.Seats = append(booking.Seats, BookingSeat{
				ID:          uuid.NewString(),
				BookingID:   booking.ID,
				SessionID:   sessionID,
				SectionName: line.Section,
				SeatID:      seatID,
				Price:       line.UnitPrice,
				CreatedAt:   now,
			})
		}
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.log.LogBookingCreated(ctx, booking.ID, sessionID, holderToken, booking.TotalAmount)
	s.log.LogBookingTransition(ctx, booking.ID, string(StateCreated), string(StateInitializing), "submitted")
	return booking, nil
}

func (s *Service) start(b *Booking, heldUntil time.Time) (*transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return nil, ErrShuttingDown
	}
	t := newTransaction(b, heldUntil)
	s.live[t.id] = t
	s.wg.Add(1)
	go s.run(t)
	return t, nil
}

func (s *Service) lookup(id string) *transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live[id]
}

func (s *Service) forget(id string) {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()
}

func (s *Service) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// HandlePaymentEvent routes an event to its running transaction. A booking pending on another
// instance yields payments.ErrHandledElsewhere. Money taken for a booking that already failed is
// refunded; other events for finished bookings are logged and dropped.
func (s *Service) HandlePaymentEvent(ctx context.Context, event payments.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	if t := s.lookup(event.BookingID); t != nil {
		select {
		case t.events <- event:
			return nil
		case <-t.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	b, err := s.repo.GetByID(ctx, event.BookingID)
	if err != nil {
		return err
	}

	switch {
	case b.Status == StatusPending:
		// no transaction here: either another instance owns the session or the owner is gone
		if err := s.ledger.Open(ctx, b.SessionID); err != nil {
			if errors.Is(err, seats.ErrSessionOwnedElsewhere) {
				return fmt.Errorf("%w: booking %s", payments.ErrHandledElsewhere, b.ID)
			}
			return err
		}
		s.finishFailed(ctx, b, ErrAbandoned, event.Kind.Charged() || b.State.MayHaveCharged())
		return nil
	case event.Kind.Charged() && (b.Status == StatusFailed || b.Status == StatusCancelled):
		s.refund(ctx, b, fmt.Sprintf("payment taken after booking %s: %s", b.Status, b.FailureReason))
		return nil
	}

	s.log.InfoWithContext(ctx, "payment event ignored", map[string]interface{}{
		"booking_id": b.ID,
		"event_id":   event.EventID,
		"kind":       event.Kind,
		"status":     b.Status,
		"state":      b.State,
	})
	return nil
}

// Cancel fails a pending booking on behalf of its holder and releases the seats
func (s *Service) Cancel(ctx context.Context, bookingID, holderToken string) (*Booking, error) {
	if t := s.lookup(bookingID); t != nil {
		if t.holder != holderToken {
			return nil, ErrNotOwner
		}
		select {
		case t.abort <- ErrUserCancelled:
		case <-t.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		select {
		case <-t.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		final := t.booking.clone()
		if final.Status != StatusCancelled {
			return final, fmt.Errorf("%w: booking is %s", ErrNotCancellable, final.Status)
		}
		return final, nil
	}

	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.HolderToken != holderToken {
		return nil, ErrNotOwner
	}
	if b.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: booking is %s", ErrNotCancellable, b.Status)
	}

	// pending without a running transaction here: cancel only when no other instance owns it
	if err := s.ledger.Open(ctx, b.SessionID); err != nil {
		return nil, err
	}
	s.finishFailed(ctx, b, ErrUserCancelled, b.State.MayHaveCharged())
	if b.Status != StatusCancelled {
		return b, fmt.Errorf("%w: booking is %s", ErrNotCancellable, b.Status)
	}
	return b, nil
}

// Await blocks until the booking's transaction has finished and returns the final booking
func (s *Service) Await(ctx context.Context, bookingID string) (*Booking, error) {
	if t := s.lookup(bookingID); t != nil {
		select {
		case <-t.done:
			return t.booking.clone(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.repo.GetByID(ctx, bookingID)
}

func (s *Service) GetBooking(ctx context.Context, bookingID, holderToken string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.HolderToken != holderToken {
		return nil, ErrNotOwner
	}
	return b, nil
}

func (s *Service) ListBookings(ctx context.Context, holderToken string, query ListQuery) ([]Booking, int64, error) {
	query.SetDefaults()
	bookings, total, err := s.repo.ListByHolder(ctx, holderToken, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

// RecoverPending fails bookings left pending for longer than olderThan by a process that is gone.
// Their holds died with that process.
func (s *Service) RecoverPending(ctx context.Context, olderThan time.Duration) (int, error) {
	before := s.ledger.Now().Add(-olderThan)
	stale, err := s.repo.ListStale(ctx, StatusPending, before)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending bookings: %w", err)
	}

	recovered := 0
	for i := range stale {
		b := &stale[i]
		if s.lookup(b.ID) != nil {
			continue
		}
		s.finishFailed(ctx, b, ErrAbandoned, b.State.MayHaveCharged())
		recovered++
	}
	if recovered > 0 {
		s.log.Warn("abandoned bookings marked failed", "count", recovered, "older_than", olderThan)
	}
	return recovered, nil
}

// Shutdown fails every running transaction and waits for them to finish
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.stopOnce.Do(func() { close(s.stop) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports how many transactions are in flight
func (s *Service) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

func (b *Booking) clone() *Booking {
	c := *b
	c.Seats = append([]BookingSeat(nil), b.Seats...)
	return &c
}
