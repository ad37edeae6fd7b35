package bookings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ticketcore/internal/payments"
	"ticketcore/internal/reservations"
	"ticketcore/internal/seats"
)

func TestSubmit_ConfirmsVIPAndGeneralSeats(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.selectSeats(t, "alice", vip("A1"), vip("A2"), general("B1"))

	b := h.submit(t, "alice")
	if b.Status != StatusPending || b.State != StateInitializing {
		t.Fatalf("expected pending/initializing, got %s/%s", b.Status, b.State)
	}
	if b.Subtotal != 1100 || b.ConvenienceFee != 20 || b.TotalAmount != 1120 || b.Currency != "INR" {
		t.Fatalf("unexpected amounts %+v", b)
	}
	if !strings.HasPrefix(b.BookingRef, "BKG-20260912-") {
		t.Fatalf("unexpected booking reference %s", b.BookingRef)
	}
	if charges := h.gateway.Charges(); len(charges) != 1 || charges[0].Amount != 1120 || charges[0].BookingID != b.ID {
		t.Fatalf("expected one charge of 1120, got %+v", charges)
	}

	h.send(t, b.ID, payments.ChargeInitiated)
	h.send(t, b.ID, payments.ChargeSucceeded)
	h.send(t, b.ID, payments.ChargeConfirmed)

	final := h.await(t, b.ID)
	if final.Status != StatusConfirmed || final.State != StateSucceeded {
		t.Fatalf("expected confirmed/succeeded, got %s/%s (%s)", final.Status, final.State, final.FailureReason)
	}
	for _, ref := range []seats.SeatRef{vip("A1"), vip("A2"), general("B1")} {
		if got := h.seatStatus(t, ref); got != seats.StatusBooked {
			t.Fatalf("expected %s booked, got %s", ref, got)
		}
	}
	if _, err := h.coordinator.ToggleSeat(context.Background(), "s1", vip("A1"), "bob"); !errors.Is(err, seats.ErrSeatUnavailable) {
		t.Fatalf("expected ErrSeatUnavailable for a booked seat, got %v", err)
	}

	stored, err := h.repo.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	for _, seat := range stored.Seats {
		if !seat.Confirmed {
			t.Fatalf("expected seat %s to be confirmed in the store", seat.SeatID)
		}
	}

	outcomes := h.outcomes.All()
	if len(outcomes) != 1 || outcomes[0].Status != StatusConfirmed || len(outcomes[0].Seats) != 3 {
		t.Fatalf("expected one confirmed outcome with 3 seats, got %+v", outcomes)
	}
	if len(h.gateway.Refunds()) != 0 {
		t.Fatalf("expected no refunds, got %+v", h.gateway.Refunds())
	}
	if h.service.Running() != 0 {
		t.Fatalf("expected no running transactions, got %d", h.service.Running())
	}
}

func TestSubmit_ForwardJumpToConfirmed(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.selectSeats(t, "alice", general("C5"))
	b := h.submit(t, "alice")

	h.send(t, b.ID, payments.ChargeConfirmed)

	final := h.await(t, b.ID)
	if final.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s (%s)", final.Status, final.FailureReason)
	}
}

func TestSubmit_StaleEventIgnored(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.selectSeats(t, "alice", general("C6"))
	b := h.submit(t, "alice")

	h.send(t, b.ID, payments.ChargeSucceeded)
	h.send(t, b.ID, payments.ChargeInitiated)
	h.send(t, b.ID, payments.ChargeConfirmed)

	final := h.await(t, b.ID)
	if final.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s (%s)", final.Status, final.FailureReason)
	}
}

func TestSubmit_PaymentFailureReleasesSeats(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.selectSeats(t, "alice", vip("A3"), vip("A4"))
	b := h.submit(t, "alice")

	if got := h.seatStatus(t, vip("A3")); got != seats.StatusHeld {
		t.Fatalf("expected held during checkout, got %s", got)
	}

	h.send(t, b.ID, payments.ChargeFailed)

	final := h.await(t, b.ID)
	if final.Status != StatusFailed || final.State != StateFailed {
		t.Fatalf("expected failed/failed, got %s/%s", final.Status, final.State)
	}
	if !strings.Contains(final.FailureReason, ErrPaymentFailed.Error()) {
		t.Fatalf("expected payment failure reason, got %q", final.FailureReason)
	}
	for _, ref := range []seats.SeatRef{vip("A3"), vip("A4")} {
		if got := h.seatStatus(t, ref); got != seats.StatusAvailable {
			t.Fatalf("expected %s available after failure, got %s", ref, got)
		}
	}
	if len(h.gateway.Refunds()) != 0 {
		t.Fatalf("expected no refund before processing, got %+v", h.gateway.Refunds())
	}
	outcomes := h.outcomes.All()
	if len(outcomes) != 1 || outcomes[0].Status != StatusFailed {
		t.Fatalf("expected one failed outcome, got %+v", outcomes)
	}

	// the seats can be selected again
	h.selectSeats(t, "bob", vip("A3"))
}

func TestSubmit_FailureAfterProcessingRequestsRefund(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.selectSeats(t, "alice", general("D1"))
	b := h.submit(t, "alice")

	h.send(t, b.ID, payments.ChargeInitiated)
	h.send(t, b.ID, payments.ChargeFailed)

	final := h.await(t, b.ID)
	if final.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	refunds := h.gateway.Refunds()
	if len(refunds) != 1 || refunds[0].BookingID != b.ID || refunds[0].Amount != 120 {
		t.Fatalf("expected one refund of 120, got %+v", refunds)
	}
}

func TestSubmit_TimeoutReleasesSeats(t *testing.T) {
	h := newHarness(t, Timeouts{Initializing: 30 * time.Millisecond, Processing: time.Second, Verifying: time.Second})
	h.selectSeats(t, "alice", general("E1"))
	b := h.submit(t, "alice")

	final := h.await(t, b.ID)
	if final.Status != StatusFailed || !strings.Contains(final.FailureReason, ErrTimeout.Error()) {
		t.Fatalf("expected timeout failure, got %s (%q)", final.Status, final.FailureReason)
	}
	if got := h.seatStatus(t, general("E1")); got != seats.StatusAvailable {
		t.Fatalf("expected seat available after timeout, got %s", got)
	}
}

func TestSubmit_HoldDeadlineBoundsTransaction(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.selectSeats(t, "alice", general("E2"))
	b := h.submit(t, "alice")

	h.clock.Advance(11 * time.Minute)
	h.send(t, b.ID, payments.ChargeInitiated)

	final := h.await(t, b.ID)
	if final.Status != StatusFailed || !strings.Contains(final.FailureReason, "hold deadline") {
		t.Fatalf("expected hold deadline failure, got %s (%q)", final.Status, final.FailureReason)
	}
	if len(h.gateway.Refunds()) != 1 {
		t.Fatalf("expected a refund once processing started, got %+v", h.gateway.Refunds())
	}
}

func TestSubmit_CommitFailureRefunds(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.repo.confirmErr = errors.New("duplicate key value violates unique constraint")
	h.selectSeats(t, "alice", general("F1"))
	b := h.submit(t, "alice")

	h.send(t, b.ID, payments.ChargeConfirmed)

	final := h.await(t, b.ID)
	if final.Status != StatusFailed || !strings.Contains(final.FailureReason, ErrCommitFailed.Error()) {
		t.Fatalf("expected commit failure, got %s (%q)", final.Status, final.FailureReason)
	}
	if got := h.seatStatus(t, general("F1")); got != seats.StatusAvailable {
		t.Fatalf("expected seat released, got %s", got)
	}
	if len(h.gateway.Refunds()) != 1 {
		t.Fatalf("expected refund after a confirmed charge, got %+v", h.gateway.Refunds())
	}
}

func TestSubmit_EventsAfterTerminalAreIgnored(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.selectSeats(t, "alice", general("F2"))
	b := h.submit(t, "alice")

	h.send(t, b.ID, payments.ChargeConfirmed)
	h.await(t, b.ID)

	h.send(t, b.ID, payments.ChargeFailed)
	final := h.await(t, b.ID)
	if final.Status != StatusConfirmed {
		t.Fatalf("expected booking to stay confirmed, got %s", final.Status)
	}
	if got := h.seatStatus(t, general("F2")); got != seats.StatusBooked {
		t.Fatalf("expected seat to stay booked, got %s", got)
	}
}

func TestHandlePaymentEvent_OtherInstanceLeavesBookingToOwner(t *testing.T) {
	ctx := context.Background()
	cluster := newClusterLease()
	repo := newMemoryRepository()
	owner := newHarness(t, slowTimeouts, withRepository(repo), withLease(cluster.instance("a")))
	other := newHarness(t, slowTimeouts, withRepository(repo), withLease(cluster.instance("b")))

	owner.selectSeats(t, "alice", vip("A4"))
	b := owner.submit(t, "alice")

	event := payments.Event{EventID: "e-1", BookingID: b.ID, Kind: payments.ChargeConfirmed}
	if err := other.service.HandlePaymentEvent(ctx, event); !errors.Is(err, payments.ErrHandledElsewhere) {
		t.Fatalf("expected ErrHandledElsewhere, got %v", err)
	}
	if _, err := other.service.Cancel(ctx, b.ID, "alice"); !errors.Is(err, seats.ErrSessionOwnedElsewhere) {
		t.Fatalf("expected ErrSessionOwnedElsewhere, got %v", err)
	}
	if got, _ := repo.GetByID(ctx, b.ID); got.Status != StatusPending {
		t.Fatalf("expected booking still pending, got %s", got.Status)
	}

	// the owner reads the same event through its own consumer group
	if err := owner.service.HandlePaymentEvent(ctx, event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	final := owner.await(t, b.ID)
	if final.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s (%q)", final.Status, final.FailureReason)
	}
	if got := owner.seatStatus(t, vip("A4")); got != seats.StatusBooked {
		t.Fatalf("expected seat booked, got %s", got)
	}
	if n := len(owner.gateway.Refunds()) + len(other.gateway.Refunds()); n != 0 {
		t.Fatalf("expected no refunds, got %d", n)
	}

	// once finished, a late duplicate on either instance changes nothing
	if err := other.service.HandlePaymentEvent(ctx, event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestHandlePaymentEvent_ChargeAfterFailureIsRefundedOnce(t *testing.T) {
	h := newHarness(t, Timeouts{Initializing: 30 * time.Millisecond, Processing: 5 * time.Second, Verifying: 5 * time.Second})
	h.selectSeats(t, "alice", general("J1"))
	b := h.submit(t, "alice")

	failed := h.await(t, b.ID)
	if failed.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}
	if refunds := h.gateway.Refunds(); len(refunds) != 0 {
		t.Fatalf("expected no refund before any charge, got %+v", refunds)
	}

	h.send(t, b.ID, payments.ChargeSucceeded)
	h.send(t, b.ID, payments.ChargeConfirmed)
	h.send(t, b.ID, payments.ChargeFailed)

	refunds := h.gateway.Refunds()
	if len(refunds) != 1 || refunds[0].BookingID != b.ID || refunds[0].Amount != 120 {
		t.Fatalf("expected one refund of 120, got %+v", refunds)
	}
	got, _ := h.repo.GetByID(context.Background(), b.ID)
	if got.Status != StatusFailed || !got.RefundRequested {
		t.Fatalf("expected failed booking with refund requested, got %+v", got)
	}
	if st := h.seatStatus(t, general("J1")); st != seats.StatusAvailable {
		t.Fatalf("expected seat available, got %s", st)
	}
}

func TestHandlePaymentEvent_RefundedFailureNotRefundedAgain(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.selectSeats(t, "alice", general("J2"))
	b := h.submit(t, "alice")

	h.send(t, b.ID, payments.ChargeInitiated)
	h.send(t, b.ID, payments.ChargeFailed)
	h.await(t, b.ID)
	h.send(t, b.ID, payments.ChargeConfirmed)

	if refunds := h.gateway.Refunds(); len(refunds) != 1 {
		t.Fatalf("expected a single refund, got %+v", refunds)
	}
}

func TestHandlePaymentEvent_AbandonedBookingFailsOnOwner(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	ctx := context.Background()

	orphan := &Booking{ID: "orphan", HolderToken: "erin", HoldID: "gone", SessionID: "s1",
		Status: StatusPending, State: StateInitializing, TotalAmount: 520, Currency: "INR", CreatedAt: h.clock.Now()}
	if err := h.repo.Create(ctx, orphan); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	h.send(t, "orphan", payments.ChargeConfirmed)

	got, _ := h.repo.GetByID(ctx, "orphan")
	if got.Status != StatusFailed || !strings.Contains(got.FailureReason, ErrAbandoned.Error()) {
		t.Fatalf("expected abandoned failure, got %s (%q)", got.Status, got.FailureReason)
	}
	if refunds := h.gateway.Refunds(); len(refunds) != 1 || refunds[0].Amount != 520 {
		t.Fatalf("expected refund of the taken charge, got %+v", refunds)
	}
}

func TestHandlePaymentEvent_Validation(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	ctx := context.Background()

	if err := h.service.HandlePaymentEvent(ctx, payments.Event{Kind: payments.ChargeConfirmed}); !errors.Is(err, payments.ErrMissingBookingID) {
		t.Fatalf("expected ErrMissingBookingID, got %v", err)
	}
	if err := h.service.HandlePaymentEvent(ctx, payments.Event{BookingID: "x", Kind: "charge.bounced"}); !errors.Is(err, payments.ErrUnknownEventKind) {
		t.Fatalf("expected ErrUnknownEventKind, got %v", err)
	}
	if err := h.service.HandlePaymentEvent(ctx, payments.Event{BookingID: "missing", Kind: payments.ChargeConfirmed}); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestSubmit_Errors(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	ctx := context.Background()

	if _, err := h.service.Submit(ctx, "s1", "alice"); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if _, err := h.service.Submit(ctx, "s1", ""); !errors.Is(err, seats.ErrMissingHolder) {
		t.Fatalf("expected ErrMissingHolder, got %v", err)
	}

	h.selectSeats(t, "alice", general("G1"))
	h.submit(t, "alice")
	if _, err := h.service.Submit(ctx, "s1", "alice"); !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}
	if _, err := h.coordinator.ToggleSeat(ctx, "s1", general("G2"), "alice"); !errors.Is(err, reservations.ErrCheckoutInProgress) {
		t.Fatalf("expected selection to be frozen during checkout, got %v", err)
	}
}

func TestSubmit_ChargeRequestFailure(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.gateway.chargeErr = errors.New("broker unavailable")
	h.selectSeats(t, "alice", general("G3"))

	_, err := h.service.Submit(context.Background(), "s1", "alice")
	if !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got %v", err)
	}
	if HTTPStatus(err) != 402 {
		t.Fatalf("expected 402, got %d", HTTPStatus(err))
	}
	if got := h.seatStatus(t, general("G3")); got != seats.StatusAvailable {
		t.Fatalf("expected seat released, got %s", got)
	}

	list, total, err := h.service.ListBookings(context.Background(), "alice", ListQuery{Status: StatusFailed})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("expected one failed booking, got %d", total)
	}
}

func TestCancel(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	ctx := context.Background()
	h.selectSeats(t, "alice", general("H1"), general("H2"))
	b := h.submit(t, "alice")

	if _, err := h.service.Cancel(ctx, b.ID, "bob"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	cancelled, err := h.service.Cancel(ctx, b.ID, "alice")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if got := h.seatStatus(t, general("H1")); got != seats.StatusAvailable {
		t.Fatalf("expected seat released, got %s", got)
	}

	if _, err := h.service.Cancel(ctx, b.ID, "alice"); !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
	if _, err := h.service.GetBooking(ctx, b.ID, "bob"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestRecoverPending(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	ctx := context.Background()
	now := h.clock.Now()

	stale := &Booking{ID: "stale", HolderToken: "carol", HoldID: "gone", SessionID: "s1",
		Status: StatusPending, State: StateProcessing, TotalAmount: 100, CreatedAt: now.Add(-time.Hour)}
	fresh := &Booking{ID: "fresh", HolderToken: "dave", HoldID: "gone-too", SessionID: "s1",
		Status: StatusPending, State: StateInitializing, CreatedAt: now.Add(-time.Minute)}
	for _, b := range []*Booking{stale, fresh} {
		if err := h.repo.Create(ctx, b); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}

	n, err := h.service.RecoverPending(ctx, 15*time.Minute)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 recovered booking, got %d", n)
	}

	got, _ := h.repo.GetByID(ctx, "stale")
	if got.Status != StatusFailed || !strings.Contains(got.FailureReason, ErrAbandoned.Error()) {
		t.Fatalf("expected abandoned failure, got %s (%q)", got.Status, got.FailureReason)
	}
	if refunds := h.gateway.Refunds(); len(refunds) != 1 || refunds[0].BookingID != "stale" {
		t.Fatalf("expected refund for the processing booking, got %+v", refunds)
	}
	if got, _ := h.repo.GetByID(ctx, "fresh"); got.Status != StatusPending {
		t.Fatalf("expected fresh booking untouched, got %s", got.Status)
	}
}

func TestShutdown_FailsRunningTransactions(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	h.selectSeats(t, "alice", general("I1"))
	b := h.submit(t, "alice")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.service.Shutdown(ctx); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	final, err := h.repo.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if final.Status != StatusFailed || !strings.Contains(final.FailureReason, ErrShuttingDown.Error()) {
		t.Fatalf("expected shutdown failure, got %s (%q)", final.Status, final.FailureReason)
	}
	if _, err := h.service.Submit(context.Background(), "s1", "bob"); !errors.Is(err, ErrShuttingDown) {
		t.Fatalf("expected ErrShuttingDown, got %v", err)
	}
}

func TestSubmit_ConcurrentHoldersNeverShareSeats(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	ctx := context.Background()
	holders := []string{"h1", "h2", "h3", "h4", "h5", "h6"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var submitted []string
	for _, holder := range holders {
		wg.Add(1)
		go func(holder string) {
			defer wg.Done()
			if _, err := h.coordinator.SelectSeats(ctx, "s1", []seats.SeatRef{vip("A9"), vip("A10")}, holder); err != nil {
				return
			}
			b, err := h.service.Submit(ctx, "s1", holder)
			if err != nil {
				return
			}
			mu.Lock()
			submitted = append(submitted, b.ID)
			mu.Unlock()
			_ = h.service.HandlePaymentEvent(ctx, payments.Event{BookingID: b.ID, Kind: payments.ChargeConfirmed})
		}(holder)
	}
	wg.Wait()

	if len(submitted) != 1 {
		t.Fatalf("expected exactly one submitted booking, got %d", len(submitted))
	}
	final := h.await(t, submitted[0])
	if final.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s (%s)", final.Status, final.FailureReason)
	}
	if got := h.seatStatus(t, vip("A10")); got != seats.StatusBooked {
		t.Fatalf("expected VIP/A10 booked, got %s", got)
	}
}

func TestScenario_VIPAndGeneralCompetingHolders(t *testing.T) {
	h := newHarness(t, slowTimeouts)
	ctx := context.Background()

	h.selectSeats(t, "x", vip("A1"), vip("A2"))
	quote, err := h.service.Quote(ctx, "s1", "x")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if quote.Subtotal != 1000 || quote.Total != 1020 {
		t.Fatalf("expected 1000 + 20 fee, got %+v", quote)
	}

	_, err = h.coordinator.SelectSeats(ctx, "s1", []seats.SeatRef{vip("A2"), general("B5")}, "y")
	if !errors.Is(err, reservations.ErrSeatTaken) {
		t.Fatalf("expected ErrSeatTaken, got %v", err)
	}
	if ref, ok := seats.OffendingSeat(err); !ok || ref != vip("A2") {
		t.Fatalf("expected VIP/A2 named, got %v", err)
	}
	if got := h.seatStatus(t, general("B5")); got != seats.StatusAvailable {
		t.Fatalf("expected B5 to stay available, got %s", got)
	}

	bx := h.submit(t, "x")
	h.send(t, bx.ID, payments.ChargeConfirmed)
	if final := h.await(t, bx.ID); final.Status != StatusConfirmed || final.TotalAmount != 1020 {
		t.Fatalf("expected x confirmed for 1020, got %s %.2f", final.Status, final.TotalAmount)
	}

	h.selectSeats(t, "y", vip("A3"), general("B5"))
	by := h.submit(t, "y")
	if by.TotalAmount != 620 {
		t.Fatalf("expected 500 + 100 + 20, got %.2f", by.TotalAmount)
	}
	h.send(t, by.ID, payments.ChargeConfirmed)
	if final := h.await(t, by.ID); final.Status != StatusConfirmed {
		t.Fatalf("expected y confirmed, got %s (%q)", final.Status, final.FailureReason)
	}

	for _, ref := range []seats.SeatRef{vip("A1"), vip("A2"), vip("A3"), general("B5")} {
		if got := h.seatStatus(t, ref); got != seats.StatusBooked {
			t.Fatalf("expected %s booked, got %s", ref, got)
		}
	}
}
