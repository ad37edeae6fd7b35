package bookings

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"ticketcore/internal/catalog"
	"ticketcore/internal/payments"
	"ticketcore/internal/pricing"
	"ticketcore/internal/reservations"
	"ticketcore/internal/seats"
	"ticketcore/internal/venues"
	"ticketcore/pkg/logger"
)

type memoryRepository struct {
	mu         sync.Mutex
	bookings   map[string]*Booking
	confirmErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{bookings: make(map[string]*Booking)}
}

func (r *memoryRepository) Create(ctx context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID] = booking.clone()
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b.clone(), nil
}

func (r *memoryRepository) ListByHolder(ctx context.Context, holderToken string, query ListQuery) ([]Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []Booking
	for _, b := range r.bookings {
		if b.HolderToken != holderToken {
			continue
		}
		if query.Status != "" && b.Status != query.Status {
			continue
		}
		matched = append(matched, *b.clone())
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	start := (query.Page - 1) * query.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int64(len(matched)), nil
}

func (r *memoryRepository) UpdateState(ctx context.Context, id string, state State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != StatusPending {
		return fmt.Errorf("%w: no pending booking %s", ErrBookingNotFound, id)
	}
	b.State = state
	return nil
}

func (r *memoryRepository) Confirm(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.confirmErr != nil {
		return r.confirmErr
	}
	b, ok := r.bookings[id]
	if !ok || b.Status != StatusPending {
		return fmt.Errorf("%w: no pending booking %s", ErrBookingNotFound, id)
	}
	b.Status = StatusConfirmed
	b.State = StateSucceeded
	for i := range b.Seats {
		b.Seats[i].Confirmed = true
	}
	return nil
}

func (r *memoryRepository) Finish(ctx context.Context, id string, status Status, state State, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return false, ErrBookingNotFound
	}
	if b.Status == StatusFailed || b.Status == StatusCancelled {
		return false, nil
	}
	b.Status = status
	b.State = state
	b.FailureReason = reason
	if status != StatusConfirmed {
		for i := range b.Seats {
			b.Seats[i].Confirmed = false
		}
	}
	return true, nil
}

func (r *memoryRepository) ClaimRefund(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return false, ErrBookingNotFound
	}
	if b.RefundRequested {
		return false, nil
	}
	b.RefundRequested = true
	return true, nil
}

func (r *memoryRepository) ListStale(ctx context.Context, status Status, before time.Time) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.Status == status && b.CreatedAt.Before(before) {
			out = append(out, *b.clone())
		}
	}
	return out, nil
}

type recordingGateway struct {
	mu        sync.Mutex
	chargeErr error
	charges   []payments.ChargeRequest
	refunds   []payments.RefundRequest
}

func (g *recordingGateway) RequestCharge(ctx context.Context, req payments.ChargeRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chargeErr != nil {
		return g.chargeErr
	}
	g.charges = append(g.charges, req)
	return nil
}

func (g *recordingGateway) RequestRefund(ctx context.Context, req payments.RefundRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds = append(g.refunds, req)
	return nil
}

func (g *recordingGateway) Refunds() []payments.RefundRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payments.RefundRequest(nil), g.refunds...)
}

func (g *recordingGateway) Charges() []payments.ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payments.ChargeRequest(nil), g.charges...)
}

type recordingOutcomes struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (p *recordingOutcomes) PublishOutcome(ctx context.Context, outcome Outcome) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes = append(p.outcomes, outcome)
	return nil
}

func (p *recordingOutcomes) All() []Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Outcome(nil), p.outcomes...)
}

type staticPrices catalog.PriceBook

func (p staticPrices) PriceBook(ctx context.Context, sessionID string) (catalog.PriceBook, error) {
	return catalog.PriceBook(p), nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	service     *Service
	ledger      *seats.Ledger
	coordinator *reservations.Coordinator
	repo        *memoryRepository
	gateway     *recordingGateway
	outcomes    *recordingOutcomes
	clock       *testClock
}

var slowTimeouts = Timeouts{Initializing: 5 * time.Second, Processing: 5 * time.Second, Verifying: 5 * time.Second}

type harnessOption func(h *harness, ledgerOpts *[]seats.Option)

// withRepository shares one booking table between harnesses, as instances share a database
func withRepository(repo *memoryRepository) harnessOption {
	return func(h *harness, _ *[]seats.Option) { h.repo = repo }
}

func withLease(lease seats.Lease) harnessOption {
	return func(_ *harness, ledgerOpts *[]seats.Option) {
		*ledgerOpts = append(*ledgerOpts, seats.WithLease(lease))
	}
}

// clusterLease lets one named instance at a time write a session
type clusterLease struct {
	mu     sync.Mutex
	owners map[string]string
}

func newClusterLease() *clusterLease {
	return &clusterLease{owners: make(map[string]string)}
}

func (c *clusterLease) instance(name string) seats.Lease {
	return &instanceLease{cluster: c, name: name}
}

type instanceLease struct {
	cluster *clusterLease
	name    string
}

func (l *instanceLease) Acquire(ctx context.Context, sessionID string) error {
	l.cluster.mu.Lock()
	defer l.cluster.mu.Unlock()
	if owner, ok := l.cluster.owners[sessionID]; ok && owner != l.name {
		return fmt.Errorf("%w: %s", seats.ErrSessionOwnedElsewhere, sessionID)
	}
	l.cluster.owners[sessionID] = l.name
	return nil
}

func (l *instanceLease) Renew(ctx context.Context, sessionID string) error {
	l.cluster.mu.Lock()
	defer l.cluster.mu.Unlock()
	if l.cluster.owners[sessionID] != l.name {
		return fmt.Errorf("%w: %s", seats.ErrSessionOwnedElsewhere, sessionID)
	}
	return nil
}

func (l *instanceLease) Release(ctx context.Context, sessionID string) error {
	l.cluster.mu.Lock()
	defer l.cluster.mu.Unlock()
	if l.cluster.owners[sessionID] == l.name {
		delete(l.cluster.owners, sessionID)
	}
	return nil
}

func newHarness(t *testing.T, timeouts Timeouts, opts ...harnessOption) *harness {
	t.Helper()
	layout := &venues.Layout{
		ID:   "arena",
		Name: "Arena",
		Sections: []venues.Section{
			venues.GenerateSection("VIP", []string{"A"}, 10, true),
			venues.GenerateSection("General", []string{"B", "C", "D", "E", "F", "G", "H", "I", "J"}, 10, true),
		},
	}
	layout.Capacity = layout.SeatCount()

	h := &harness{
		repo:     newMemoryRepository(),
		gateway:  &recordingGateway{},
		outcomes: &recordingOutcomes{},
		clock:    &testClock{now: time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC)},
	}
	ledgerOpts := []seats.Option{seats.WithClock(h.clock.Now), seats.WithLogger(logger.Discard())}
	for _, opt := range opts {
		opt(h, &ledgerOpts)
	}
	loader := seats.NewMemoryLoader(&seats.SessionData{SessionID: "s1", Layout: layout})
	h.ledger = seats.NewLedger(loader, ledgerOpts...)

	var err error
	h.coordinator, err = reservations.NewCoordinator(h.ledger, 8, 10*time.Minute)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	calculator, err := pricing.NewCalculator(20, "INR")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	prices := staticPrices(catalog.NewPriceBook([]catalog.TicketType{
		{SessionID: "s1", SectionName: "VIP", Price: 500},
		{SessionID: "s1", SectionName: "General", Price: 100},
	}))

	h.service, err = NewService(Dependencies{
		Repo:       h.repo,
		Ledger:     h.ledger,
		Selections: h.coordinator,
		Prices:     prices,
		Calculator: calculator,
		Gateway:    h.gateway,
		Outcomes:   h.outcomes,
		Logger:     logger.Discard(),
	}, timeouts)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.service.Shutdown(ctx)
	})
	return h
}

func (h *harness) selectSeats(t *testing.T, holder string, refs ...seats.SeatRef) reservations.SelectionSet {
	t.Helper()
	set, err := h.coordinator.SelectSeats(context.Background(), "s1", refs, holder)
	if err != nil {
		t.Fatalf("expected nil error selecting seats, got %v", err)
	}
	return set
}

func (h *harness) submit(t *testing.T, holder string) *Booking {
	t.Helper()
	b, err := h.service.Submit(context.Background(), "s1", holder)
	if err != nil {
		t.Fatalf("expected nil error submitting, got %v", err)
	}
	return b
}

func (h *harness) send(t *testing.T, bookingID string, kind payments.EventKind) {
	t.Helper()
	event := payments.Event{EventID: string(kind) + "-" + bookingID, BookingID: bookingID, Kind: kind}
	if err := h.service.HandlePaymentEvent(context.Background(), event); err != nil {
		t.Fatalf("expected nil error handling %s, got %v", kind, err)
	}
}

func (h *harness) await(t *testing.T, bookingID string) *Booking {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b, err := h.service.Await(ctx, bookingID)
	if err != nil {
		t.Fatalf("expected booking %s to finish, got %v", bookingID, err)
	}
	return b
}

func (h *harness) seatStatus(t *testing.T, ref seats.SeatRef) seats.Status {
	t.Helper()
	st, err := h.ledger.Status(context.Background(), "s1", []seats.SeatRef{ref})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	return st[ref].Status
}

func vip(id string) seats.SeatRef     { return seats.SeatRef{Section: "VIP", SeatID: id} }
func general(id string) seats.SeatRef { return seats.SeatRef{Section: "General", SeatID: id} }
