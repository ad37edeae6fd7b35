package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketcore/internal/catalog"
	"ticketcore/internal/sessions"
	"ticketcore/internal/venues"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var venueID, eventID, sessionID, start string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo venue with a VIP and a General section and one session",
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
			if start != "" {
				parsed, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				startTime = parsed
			}

			_, db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			venueService := venues.NewService(venues.NewRepository(db.PostgreSQL), nil)
			sessionService := sessions.NewService(sessions.NewRepository(db.PostgreSQL), venueService)

			layout, err := seedVenue(ctx, venueService, venueID)
			if err != nil {
				return err
			}
			fmt.Printf("venue %s ready: %d seats\n", layout.ID, layout.Capacity)

			session, types, err := sessionService.Register(ctx, sessions.RegisterSessionRequest{
				SessionID: sessionID,
				EventID:   eventID,
				VenueID:   layout.ID,
				StartTime: startTime,
				EndTime:   startTime.Add(3 * time.Hour),
				TicketTypes: []catalog.TicketTypeSpec{
					{SectionName: "VIP", Price: 500},
					{SectionName: "General", Price: 100},
				},
			})
			if err != nil {
				return fmt.Errorf("failed to register session: %w", err)
			}

			fmt.Printf("session %s of event %s starts %s\n", session.ID, session.EventID, session.StartTime.Format(time.RFC1123))
			for _, t := range types {
				fmt.Printf("  %-8s %3d seats at %.2f\n", t.SectionName, t.TotalCapacity, t.Price)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&venueID, "venue-id", "demo-arena", "venue id")
	cmd.Flags().StringVar(&eventID, "event-id", "demo-concert", "event id")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "session id (generated when empty)")
	cmd.Flags().StringVar(&start, "start", "", "session start time, RFC3339 (default: tomorrow)")
	return cmd
}

func seedVenue(ctx context.Context, service venues.Service, venueID string) (*venues.Layout, error) {
	vip := venues.GenerateSection("VIP", []string{"A"}, 10, true)
	general := venues.GenerateSection("General", []string{"B", "C", "D", "E", "F", "G", "H", "I", "J"}, 10, true)

	req := venues.RegisterLayoutRequest{VenueID: venueID, Name: "Demo Arena"}
	for _, section := range []venues.Section{vip, general} {
		sr := venues.SectionRequest{Name: section.Name}
		for _, row := range section.Rows {
			sr.Rows = append(sr.Rows, venues.RowRequest{Label: row.Label, SeatIDs: row.SeatIDs})
		}
		req.Sections = append(req.Sections, sr)
	}

	layout, err := service.Register(ctx, req)
	if errors.Is(err, venues.ErrLayoutExists) {
		return service.GetLayout(ctx, venueID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register venue: %w", err)
	}
	return layout, nil
}
