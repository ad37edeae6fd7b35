package main

import (
	"fmt"
	"time"

	"ticketcore/internal/bookings"
	"ticketcore/internal/catalog"
	"ticketcore/internal/payments"
	"ticketcore/internal/pricing"
	"ticketcore/internal/reservations"
	"ticketcore/internal/seats"
	"ticketcore/internal/sessions"
	"ticketcore/internal/venues"
	"ticketcore/pkg/kafka"
	"ticketcore/pkg/logger"

	"github.com/spf13/cobra"
)

func newFailPendingCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "fail-pending",
		Short: "Mark bookings pending for longer than --older-than as failed",
		Long: `Bookings whose serving process died stay pending in the database. This marks them failed,
requests a refund for those that may have been charged and publishes their outcome.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()
			if olderThan < cfg.Ledger.HoldTTL {
				return fmt.Errorf("--older-than (%s) must be at least LEDGER_HOLD_TTL (%s)", olderThan, cfg.Ledger.HoldTTL)
			}

			venueService := venues.NewService(venues.NewRepository(db.PostgreSQL), nil)
			sessionService := sessions.NewService(sessions.NewRepository(db.PostgreSQL), venueService)
			ledger := seats.NewLedger(seats.NewStore(db.PostgreSQL, sessionService))
			coordinator, err := reservations.NewCoordinator(ledger, cfg.Ledger.MaxSeatsPerHolder, cfg.Ledger.HoldTTL)
			if err != nil {
				return err
			}
			calculator, err := pricing.NewCalculator(cfg.Pricing.ConvenienceFee, cfg.Pricing.Currency)
			if err != nil {
				return err
			}

			deps := bookings.Dependencies{
				Repo:       bookings.NewRepository(db.PostgreSQL),
				Ledger:     ledger,
				Selections: coordinator,
				Prices:     catalog.NewService(catalog.NewRepository(db.PostgreSQL)),
				Calculator: calculator,
				Gateway:    payments.NewLoggingGateway(logger.GetDefault()),
				Outcomes:   bookings.LogOutcomePublisher{},
			}
			if cfg.Kafka.Enabled {
				producer, err := kafka.NewSyncProducer(kafka.DefaultProducerConfig(cfg.Kafka.Brokers))
				if err != nil {
					return err
				}
				publisher := kafka.NewPublisher(producer, "seatctl")
				defer publisher.Close()
				deps.Gateway = payments.NewKafkaGateway(publisher, cfg.Kafka.PaymentRequestTopic)
				deps.Outcomes = bookings.NewKafkaOutcomePublisher(publisher, cfg.Kafka.BookingEventTopic)
			}

			service, err := bookings.NewService(deps, bookings.Timeouts{
				Initializing: cfg.Booking.InitializingTimeout,
				Processing:   cfg.Booking.ProcessingTimeout,
				Verifying:    cfg.Booking.VerifyingTimeout,
			})
			if err != nil {
				return err
			}

			n, err := service.RecoverPending(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Printf("%d pending bookings marked failed\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 15*time.Minute, "only bookings created before now minus this duration")
	return cmd
}
