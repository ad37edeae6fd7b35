package seats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ticketcore/pkg/logger"

	"github.com/google/uuid"
)

const defaultTombstoneRetention = time.Hour

// Loader rebuilds a session's durable seat state: layout, blocks and confirmed bookings
type Loader interface {
	LoadSession(ctx context.Context, sessionID string) (*SessionData, error)
}

// BlockStore persists administrative blocks
type BlockStore interface {
	SaveBlocks(ctx context.Context, sessionID string, refs []SeatRef, reason string) error
	DeleteBlocks(ctx context.Context, sessionID string, refs []SeatRef) error
}

type Option func(*Ledger)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLease makes the ledger acquire a write lease before loading a session
func WithLease(lease Lease) Option {
	return func(l *Ledger) { l.lease = lease }
}

func WithBlockStore(store BlockStore) Option {
	return func(l *Ledger) { l.blocks = store }
}

func WithLogger(log *logger.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithTombstoneRetention sets how long closed holds stay queryable by id
func WithTombstoneRetention(d time.Duration) Option {
	return func(l *Ledger) { l.retention = d }
}

type loadCall struct {
	done chan struct{}
	book *sessionBook
	err  error
}

// Ledger is the only owner of seat state. Each session is guarded by its own mutex and
// publishes an immutable snapshot after every change, so reads never wait on writers.
type Ledger struct {
	loader    Loader
	lease     Lease
	blocks    BlockStore
	now       func() time.Time
	log       *logger.Logger
	retention time.Duration

	mu        sync.RWMutex
	books     map[string]*sessionBook
	loading   map[string]*loadCall
	holdIndex map[string]string // hold id -> session id
}

func NewLedger(loader Loader, opts ...Option) *Ledger {
	l := &Ledger{
		loader:    loader,
		lease:     LocalLease{},
		now:       time.Now,
		log:       logger.GetDefault(),
		retention: defaultTombstoneRetention,
		books:     make(map[string]*sessionBook),
		loading:   make(map[string]*loadCall),
		holdIndex: make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the ledger clock
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Open loads the session and takes its write lease. It fails with ErrSessionOwnedElsewhere
// while another instance writes the session.
func (l *Ledger) Open(ctx context.Context, sessionID string) error {
	b, err := l.book(ctx, sessionID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.evicted {
		return ErrSessionOwnedElsewhere
	}
	return nil
}

func (l *Ledger) book(ctx context.Context, sessionID string) (*sessionBook, error) {
	l.mu.RLock()
	b := l.books[sessionID]
	l.mu.RUnlock()
	if b != nil {
		return b, nil
	}

	l.mu.Lock()
	if b := l.books[sessionID]; b != nil {
		l.mu.Unlock()
		return b, nil
	}
	if call, ok := l.loading[sessionID]; ok {
		l.mu.Unlock()
		select {
		case <-call.done:
			return call.book, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &loadCall{done: make(chan struct{})}
	l.loading[sessionID] = call
	l.mu.Unlock()

	call.book, call.err = l.load(ctx, sessionID)

	l.mu.Lock()
	delete(l.loading, sessionID)
	if call.err == nil {
		l.books[sessionID] = call.book
	}
	l.mu.Unlock()
	close(call.done)

	return call.book, call.err
}

func (l *Ledger) load(ctx context.Context, sessionID string) (*sessionBook, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	if err := l.lease.Acquire(ctx, sessionID); err != nil {
		return nil, err
	}

	data, err := l.loader.LoadSession(ctx, sessionID)
	if err == nil {
		var b *sessionBook
		if b, err = newSessionBook(data, l.now()); err == nil {
			l.log.Info("session loaded into ledger",
				"session_id", sessionID, "venue_id", b.venueID, "seats", len(b.order),
				"blocked", len(data.Blocked), "booked", len(data.Booked))
			return b, nil
		}
	}

	if relErr := l.lease.Release(context.Background(), sessionID); relErr != nil {
		l.log.WithError(relErr).Warn("failed to release session lease after load error", "session_id", sessionID)
	}
	return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
}

// update runs fn under the session mutex after lazily expiring stale holds, then publishes.
func (l *Ledger) update(ctx context.Context, sessionID string, fn func(b *sessionBook, now time.Time) error) error {
	b, err := l.book(ctx, sessionID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.evicted {
		return ErrSessionOwnedElsewhere
	}

	now := l.now()
	for _, h := range b.expire(now) {
		l.log.LogHoldReleased(ctx, b.id, h.id, string(HoldExpired), len(h.seats))
	}

	err = fn(b, now)
	b.publish(now)
	return err
}

func (l *Ledger) sessionOfHold(holdID string) (string, error) {
	l.mu.RLock()
	sessionID, ok := l.holdIndex[holdID]
	l.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
	}
	return sessionID, nil
}

func (l *Ledger) indexHold(holdID, sessionID string) {
	l.mu.Lock()
	l.holdIndex[holdID] = sessionID
	l.mu.Unlock()
}

func (l *Ledger) unindexHolds(holdIDs ...string) {
	l.mu.Lock()
	for _, id := range holdIDs {
		delete(l.holdIndex, id)
	}
	l.mu.Unlock()
}

// TryHold holds every ref for holderToken or none of them
func (l *Ledger) TryHold(ctx context.Context, sessionID string, refs []SeatRef, holderToken string, holdDuration time.Duration) (Hold, error) {
	var placed Hold
	err := l.Mutate(ctx, sessionID, func(tx *Tx) error {
		h, err := tx.Place(refs, holderToken, holdDuration)
		placed = h
		return err
	})
	return placed, err
}

// Release gives the hold's seats back. Releasing a closed hold, including a committed one, is a no-op.
func (l *Ledger) Release(ctx context.Context, holdID string) error {
	sessionID, err := l.sessionOfHold(holdID)
	if err != nil {
		return err
	}
	return l.update(ctx, sessionID, func(b *sessionBook, now time.Time) error {
		h, ok := b.holds[holdID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
		}
		if h.state != HoldActive {
			return nil
		}
		seats := len(h.seats)
		b.closeHold(h, HoldReleased, now)
		l.log.LogHoldReleased(ctx, b.id, h.id, string(HoldReleased), seats)
		return nil
	})
}

// Commit turns every seat of the hold into a booked seat
func (l *Ledger) Commit(ctx context.Context, holdID, bookingID string) error {
	if strings.TrimSpace(bookingID) == "" {
		return ErrMissingBookingID
	}
	sessionID, err := l.sessionOfHold(holdID)
	if err != nil {
		return err
	}
	return l.update(ctx, sessionID, func(b *sessionBook, now time.Time) error {
		h, ok := b.holds[holdID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
		}
		switch h.state {
		case HoldCommitted:
			if h.bookingID == bookingID {
				return nil
			}
			return fmt.Errorf("%w: hold %s belongs to booking %s", ErrAlreadyCommitted, holdID, h.bookingID)
		case HoldReleased, HoldExpired:
			return fmt.Errorf("%w: hold %s is %s", ErrHoldExpired, holdID, h.state)
		}
		b.commit(h, bookingID, now)
		l.log.LogHoldCommitted(ctx, b.id, h.id, bookingID, len(h.seats))
		return nil
	})
}

// Status reports the current state of refs from the latest snapshot without taking the session lock
func (l *Ledger) Status(ctx context.Context, sessionID string, refs []SeatRef) (map[SeatRef]SeatState, error) {
	b, err := l.book(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snap := b.snap.Load()
	now := l.now()

	out := make(map[SeatRef]SeatState, len(refs))
	for _, ref := range refs {
		i, ok := b.index[ref]
		if !ok {
			return nil, seatErr(ErrUnknownSeat, ref)
		}
		out[ref] = effective(snap.seats[i], now)
	}
	return out, nil
}

// Snapshot returns the whole seat map of a session in layout order
func (l *Ledger) Snapshot(ctx context.Context, sessionID string) (*SeatMap, error) {
	b, err := l.book(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snap := b.snap.Load()
	now := l.now()

	m := &SeatMap{
		SessionID: b.id,
		VenueID:   b.venueID,
		Version:   snap.version,
		AsOf:      now,
		Seats:     make([]SeatState, len(snap.seats)),
	}
	for i, st := range snap.seats {
		st = effective(st, now)
		m.Seats[i] = st
		m.Counts.Capacity++
		switch st.Status {
		case StatusAvailable:
			m.Counts.Available++
		case StatusHeld:
			m.Counts.Held++
		case StatusBooked:
			m.Counts.Booked++
		case StatusBlocked:
			m.Counts.Blocked++
		}
	}
	return m, nil
}

// GetHold returns a copy of the hold, including closed ones still within retention
func (l *Ledger) GetHold(ctx context.Context, holdID string) (Hold, error) {
	sessionID, err := l.sessionOfHold(holdID)
	if err != nil {
		return Hold{}, err
	}
	var out Hold
	err = l.update(ctx, sessionID, func(b *sessionBook, now time.Time) error {
		h, ok := b.holds[holdID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
		}
		out = h.view()
		return nil
	})
	return out, err
}

// Mutate runs fn inside the session critical section, all or nothing: when fn returns an
// error every change it made through tx is rolled back before the lock is released.
func (l *Ledger) Mutate(ctx context.Context, sessionID string, fn func(tx *Tx) error) error {
	return l.update(ctx, sessionID, func(b *sessionBook, now time.Time) error {
		tx := &Tx{ctx: ctx, ledger: l, book: b, now: now}
		if err := fn(tx); err != nil {
			tx.rollback()
			return err
		}
		tx.finish()
		return nil
	})
}

// Lock pins a hold for checkout: toggling can no longer change it. It still expires.
func (l *Ledger) Lock(ctx context.Context, holdID string) (Hold, error) {
	return l.setLocked(ctx, holdID, true)
}

func (l *Ledger) Unlock(ctx context.Context, holdID string) error {
	_, err := l.setLocked(ctx, holdID, false)
	if errors.Is(err, ErrHoldExpired) {
		return nil
	}
	return err
}

func (l *Ledger) setLocked(ctx context.Context, holdID string, locked bool) (Hold, error) {
	sessionID, err := l.sessionOfHold(holdID)
	if err != nil {
		return Hold{}, err
	}
	var out Hold
	err = l.update(ctx, sessionID, func(b *sessionBook, now time.Time) error {
		h, ok := b.holds[holdID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
		}
		if h.state != HoldActive {
			return fmt.Errorf("%w: hold %s is %s", ErrHoldExpired, holdID, h.state)
		}
		if locked && h.locked {
			return fmt.Errorf("%w: %s", ErrCheckoutLocked, holdID)
		}
		h.locked = locked
		b.version++
		out = h.view()
		return nil
	})
	return out, err
}

// Block takes seats out of sale. Held or booked seats cannot be blocked; already blocked seats are ignored.
func (l *Ledger) Block(ctx context.Context, sessionID string, refs []SeatRef, reason string) error {
	refs = UniqueRefs(refs)
	if len(refs) == 0 {
		return ErrEmptySeatSet
	}
	return l.update(ctx, sessionID, func(b *sessionBook, now time.Time) error {
		for _, ref := range refs {
			s, ok := b.seats[ref]
			if !ok {
				return seatErr(ErrUnknownSeat, ref)
			}
			if s.status == StatusHeld || s.status == StatusBooked {
				return seatErr(ErrSeatUnavailable, ref)
			}
		}
		if l.blocks != nil {
			if err := l.blocks.SaveBlocks(ctx, b.id, refs, reason); err != nil {
				return fmt.Errorf("failed to persist seat blocks: %w", err)
			}
		}
		for _, ref := range refs {
			b.seats[ref].status = StatusBlocked
		}
		b.version++
		l.log.Info("seats blocked", "session_id", b.id, "seats", len(refs), "reason", reason)
		return nil
	})
}

// Unblock returns blocked seats to sale. Seats that are not blocked are left alone.
func (l *Ledger) Unblock(ctx context.Context, sessionID string, refs []SeatRef) error {
	refs = UniqueRefs(refs)
	if len(refs) == 0 {
		return ErrEmptySeatSet
	}
	return l.update(ctx, sessionID, func(b *sessionBook, now time.Time) error {
		var blocked []SeatRef
		for _, ref := range refs {
			s, ok := b.seats[ref]
			if !ok {
				return seatErr(ErrUnknownSeat, ref)
			}
			if s.status == StatusBlocked {
				blocked = append(blocked, ref)
			}
		}
		if len(blocked) == 0 {
			return nil
		}
		if l.blocks != nil {
			if err := l.blocks.DeleteBlocks(ctx, b.id, blocked); err != nil {
				return fmt.Errorf("failed to delete seat blocks: %w", err)
			}
		}
		for _, ref := range blocked {
			b.seats[ref].status = StatusAvailable
		}
		b.version++
		l.log.Info("seats unblocked", "session_id", b.id, "seats", len(blocked))
		return nil
	})
}

// Sweep expires overdue holds in every loaded session and forgets old closed holds.
// It returns the number of holds expired.
func (l *Ledger) Sweep(now time.Time) int {
	ctx := context.Background()
	expired := 0
	var pruned []string

	for _, b := range l.loadedBooks() {
		b.mu.Lock()
		if b.evicted {
			b.mu.Unlock()
			continue
		}
		for _, h := range b.expire(now) {
			expired++
			l.log.LogHoldReleased(ctx, b.id, h.id, string(HoldExpired), len(h.seats))
		}
		pruned = append(pruned, b.pruneClosed(now.Add(-l.retention))...)
		b.publish(now)
		b.mu.Unlock()
	}

	if len(pruned) > 0 {
		l.unindexHolds(pruned...)
	}
	return expired
}

// RenewLeases extends the write lease of every loaded session. A session whose lease was
// taken over is evicted; its holds die with it.
func (l *Ledger) RenewLeases(ctx context.Context) {
	for _, b := range l.loadedBooks() {
		err := l.lease.Renew(ctx, b.id)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrSessionOwnedElsewhere) {
			l.log.WithError(err).Error("session lease lost, evicting session", "session_id", b.id)
			l.evict(b)
			continue
		}
		l.log.WithError(err).Warn("failed to renew session lease", "session_id", b.id)
	}
}

func (l *Ledger) evict(b *sessionBook) {
	b.mu.Lock()
	b.evicted = true
	holdIDs := make([]string, 0, len(b.holds))
	for id := range b.holds {
		holdIDs = append(holdIDs, id)
	}
	b.mu.Unlock()

	l.mu.Lock()
	if l.books[b.id] == b {
		delete(l.books, b.id)
	}
	l.mu.Unlock()
	l.unindexHolds(holdIDs...)
}

// Close releases every lease held by this ledger
func (l *Ledger) Close(ctx context.Context) {
	for _, b := range l.loadedBooks() {
		if err := l.lease.Release(ctx, b.id); err != nil {
			l.log.WithError(err).Warn("failed to release session lease", "session_id", b.id)
		}
	}
}

// LoadedSessions lists the sessions currently held in memory
func (l *Ledger) LoadedSessions() []string {
	books := l.loadedBooks()
	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.id)
	}
	return ids
}

func (l *Ledger) loadedBooks() []*sessionBook {
	l.mu.RLock()
	defer l.mu.RUnlock()
	books := make([]*sessionBook, 0, len(l.books))
	for _, b := range l.books {
		books = append(books, b)
	}
	return books
}

func newHoldID() string {
	return "hold_" + uuid.NewString()
}
