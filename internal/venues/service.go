package venues

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ticketcore/internal/shared/constants"
	"ticketcore/pkg/cache"
	"ticketcore/pkg/logger"
)

type Service interface {
	Register(ctx context.Context, req RegisterLayoutRequest) (*Layout, error)
	GetLayout(ctx context.Context, venueID string) (*Layout, error)
}

type service struct {
	repo  Repository
	cache cache.Service
}

// NewService builds the layout service. cacheService may be nil when Redis is disabled.
func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{repo: repo, cache: cacheService}
}

func (s *service) Register(ctx context.Context, req RegisterLayoutRequest) (*Layout, error) {
	layout := req.ToLayout()
	if err := ValidateLayout(layout); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, layout.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check venue %s: %w", layout.ID, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrLayoutExists, layout.ID)
	}

	if err := s.repo.Create(ctx, layout); err != nil {
		return nil, fmt.Errorf("failed to create venue layout: %w", err)
	}

	logger.GetDefault().Info("venue layout registered",
		"venue_id", layout.ID, "sections", len(layout.Sections), "capacity", layout.Capacity)
	return layout, nil
}

// GetLayout reads through the cache; layouts never change after registration so no invalidation is needed.
func (s *service) GetLayout(ctx context.Context, venueID string) (*Layout, error) {
	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		return nil, ErrLayoutNotFound
	}

	if s.cache == nil {
		return s.repo.GetByID(ctx, venueID)
	}

	var layout Layout
	err := s.cache.GetOrSet(ctx, constants.BuildVenueLayoutKey(venueID), constants.TTL_VENUE_LAYOUT,
		func() (interface{}, error) {
			return s.repo.GetByID(ctx, venueID)
		}, &layout)
	if err != nil {
		if errors.Is(err, ErrLayoutNotFound) {
			return nil, ErrLayoutNotFound
		}
		return nil, err
	}
	return &layout, nil
}
