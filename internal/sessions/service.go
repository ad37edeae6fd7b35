package sessions

import (
	"context"
	"fmt"
	"strings"

	"ticketcore/internal/catalog"
	"ticketcore/internal/venues"
	"ticketcore/pkg/logger"

	"github.com/google/uuid"
)

// LayoutProvider resolves venue layouts
type LayoutProvider interface {
	GetLayout(ctx context.Context, venueID string) (*venues.Layout, error)
}

type Service interface {
	Register(ctx context.Context, req RegisterSessionRequest) (*Session, []catalog.TicketType, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	ListByEvent(ctx context.Context, eventID string) ([]Session, error)
	// LayoutFor returns the session together with its venue layout
	LayoutFor(ctx context.Context, sessionID string) (*Session, *venues.Layout, error)
}

type service struct {
	repo    Repository
	layouts LayoutProvider
}

func NewService(repo Repository, layouts LayoutProvider) Service {
	return &service{repo: repo, layouts: layouts}
}

func (s *service) Register(ctx context.Context, req RegisterSessionRequest) (*Session, []catalog.TicketType, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, nil, ErrInvalidSchedule
	}
	if len(req.TicketTypes) == 0 {
		return nil, nil, ErrMissingTicketing
	}

	layout, err := s.layouts.GetLayout(ctx, req.VenueID)
	if err != nil {
		return nil, nil, err
	}

	session := &Session{
		ID:        strings.TrimSpace(req.SessionID),
		EventID:   strings.TrimSpace(req.EventID),
		VenueID:   layout.ID,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	types, err := catalog.BuildTicketTypes(session.ID, layout, req.TicketTypes)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.CreateWithTicketTypes(ctx, session, types); err != nil {
		return nil, nil, err
	}

	logger.GetDefault().Info("session registered",
		"session_id", session.ID, "event_id", session.EventID, "venue_id", session.VenueID, "ticket_types", len(types))
	return session, types, nil
}

func (s *service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return s.repo.GetByID(ctx, sessionID)
}

func (s *service) ListByEvent(ctx context.Context, eventID string) ([]Session, error) {
	list, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for event %s: %w", eventID, err)
	}
	return list, nil
}

func (s *service) LayoutFor(ctx context.Context, sessionID string) (*Session, *venues.Layout, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	layout, err := s.layouts.GetLayout(ctx, session.VenueID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load layout for session %s: %w", sessionID, err)
	}
	return session, layout, nil
}
