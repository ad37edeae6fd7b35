package main

import (
	"fmt"
	"os"

	"ticketcore/internal/occupancy"
	"ticketcore/internal/seats"
	"ticketcore/internal/sessions"
	"ticketcore/internal/venues"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newOccupancyCmd() *cobra.Command {
	var eventID string

	cmd := &cobra.Command{
		Use:   "occupancy",
		Short: "Show the sessions of an event with their occupancy band",
		Long:  `Booked and blocked seats come from the database. Holds live in the serving processes and are not shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			venueService := venues.NewService(venues.NewRepository(db.PostgreSQL), nil)
			sessionService := sessions.NewService(sessions.NewRepository(db.PostgreSQL), venueService)
			// read only: no lease
			ledger := seats.NewLedger(seats.NewStore(db.PostgreSQL, sessionService))

			reporter, err := occupancy.NewReporter(ledger, sessionService, occupancy.Thresholds{
				FastFilling: cfg.Occupancy.FastFillingThreshold,
				SoldOutRisk: cfg.Occupancy.SoldOutRiskThreshold,
			})
			if err != nil {
				return err
			}

			list, err := reporter.ListSessions(cmd.Context(), eventID)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Printf("no sessions for event %s\n", eventID)
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Session", "Date", "Start", "Capacity", "Booked", "Blocked", "Rate", "Band"})
			t.SetColumnConfigs([]table.ColumnConfig{
				{Number: 1, WidthMax: 36},
				{Number: 2, AutoMerge: true},
			})
			for _, s := range list {
				t.AppendRow(table.Row{
					s.SessionID,
					s.Date,
					s.StartTime.Format("15:04"),
					s.Capacity,
					s.Booked,
					s.Blocked,
					fmt.Sprintf("%.0f%%", s.OccupancyRate*100),
					s.Band,
				})
			}
			t.Style().Options.SeparateRows = true
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&eventID, "event-id", "", "event id")
	_ = cmd.MarkFlagRequired("event-id")
	return cmd
}
