package occupancy

import (
	"context"
	"fmt"
	"sort"

	"ticketcore/internal/seats"
	"ticketcore/internal/sessions"
)

// SnapshotSource is the read side of the seat ledger
type SnapshotSource interface {
	Snapshot(ctx context.Context, sessionID string) (*seats.SeatMap, error)
}

// SessionDirectory lists sessions
type SessionDirectory interface {
	GetSession(ctx context.Context, sessionID string) (*sessions.Session, error)
	ListByEvent(ctx context.Context, eventID string) ([]sessions.Session, error)
}

// Reporter derives occupancy from ledger snapshots on every read, so it never lags the ledger
type Reporter struct {
	ledger     SnapshotSource
	sessions   SessionDirectory
	thresholds Thresholds
}

func NewReporter(ledger SnapshotSource, sessions SessionDirectory, thresholds Thresholds) (*Reporter, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Reporter{ledger: ledger, sessions: sessions, thresholds: thresholds}, nil
}

func (r *Reporter) Thresholds() Thresholds {
	return r.thresholds
}

// Occupancy reports one session
func (r *Reporter) Occupancy(ctx context.Context, sessionID string) (*SessionOccupancy, error) {
	session, err := r.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return r.report(ctx, session)
}

// ListSessions reports every session of an event ordered by start time
func (r *Reporter) ListSessions(ctx context.Context, eventID string) ([]SessionOccupancy, error) {
	list, err := r.sessions.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].StartTime.Before(list[j].StartTime)
	})

	out := make([]SessionOccupancy, 0, len(list))
	for i := range list {
		occ, err := r.report(ctx, &list[i])
		if err != nil {
			return nil, fmt.Errorf("occupancy for session %s: %w", list[i].ID, err)
		}
		out = append(out, *occ)
	}
	return out, nil
}

func (r *Reporter) report(ctx context.Context, session *sessions.Session) (*SessionOccupancy, error) {
	m, err := r.ledger.Snapshot(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	rate := Rate(m.Counts.Booked, m.Counts.Capacity)
	return &SessionOccupancy{
		SessionID:     session.ID,
		EventID:       session.EventID,
		VenueID:       session.VenueID,
		Date:          session.Date(),
		StartTime:     session.StartTime,
		EndTime:       session.EndTime,
		Capacity:      m.Counts.Capacity,
		Booked:        m.Counts.Booked,
		Held:          m.Counts.Held,
		Available:     m.Counts.Available,
		Blocked:       m.Counts.Blocked,
		OccupancyRate: rate,
		Band:          r.thresholds.Classify(rate),
	}, nil
}
