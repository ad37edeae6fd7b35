package catalog

import (
	"context"
	"fmt"
	"strings"

	"ticketcore/pkg/logger"
)

type Service interface {
	ListTicketTypes(ctx context.Context, sessionID string) ([]TicketType, error)
	PriceBook(ctx context.Context, sessionID string) (PriceBook, error)
	UpdatePrice(ctx context.Context, sessionID, sectionName string, price float64) (*TicketType, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListTicketTypes(ctx context.Context, sessionID string) ([]TicketType, error) {
	types, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket types for session %s: %w", sessionID, err)
	}
	return types, nil
}

// PriceBook always reads the store, a quote must reflect price changes made after seats were held
func (s *service) PriceBook(ctx context.Context, sessionID string) (PriceBook, error) {
	types, err := s.ListTicketTypes(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewPriceBook(types), nil
}

// UpdatePrice changes the catalog only; seat state is untouched
func (s *service) UpdatePrice(ctx context.Context, sessionID, sectionName string, price float64) (*TicketType, error) {
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}

	t, err := s.repo.UpdatePrice(ctx, sessionID, strings.TrimSpace(sectionName), price)
	if err != nil {
		return nil, err
	}

	logger.GetDefault().Info("ticket type price updated",
		"session_id", sessionID, "section", t.SectionName, "price", t.Price)
	return t, nil
}
