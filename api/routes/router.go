// api/routes/router.go
package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ticketcore/internal/bookings"
	"ticketcore/internal/catalog"
	"ticketcore/internal/occupancy"
	"ticketcore/internal/payments"
	"ticketcore/internal/pricing"
	"ticketcore/internal/reservations"
	"ticketcore/internal/seats"
	"ticketcore/internal/sessions"
	"ticketcore/internal/shared/config"
	"ticketcore/internal/shared/database"
	"ticketcore/internal/shared/middleware"
	"ticketcore/internal/venues"
	"ticketcore/pkg/cache"
	"ticketcore/pkg/kafka"
	"ticketcore/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher *kafka.Publisher

	venueService   venues.Service
	sessionService sessions.Service
	catalogService catalog.Service

	Ledger      *seats.Ledger
	Coordinator *reservations.Coordinator
	Reporter    *occupancy.Reporter
	Bookings    *bookings.Service
}

// NewRouter wires every feature. publisher is nil when Kafka is disabled.
func NewRouter(cfg *config.Config, db *database.DB, publisher *kafka.Publisher) (*Router, error) {
	r := &Router{config: cfg, db: db, publisher: publisher}
	pg := db.PostgreSQL

	var cacheService cache.Service
	if db.Redis != nil {
		cacheService = cache.NewService(db.Redis)
	}
	r.venueService = venues.NewService(venues.NewRepository(pg), cacheService)
	r.sessionService = sessions.NewService(sessions.NewRepository(pg), r.venueService)
	r.catalogService = catalog.NewService(catalog.NewRepository(pg))

	ledger, err := r.newLedger()
	if err != nil {
		return nil, err
	}
	r.Ledger = ledger

	r.Coordinator, err = reservations.NewCoordinator(ledger, cfg.Ledger.MaxSeatsPerHolder, cfg.Ledger.HoldTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation coordinator: %w", err)
	}

	thresholds := occupancy.Thresholds{
		FastFilling: cfg.Occupancy.FastFillingThreshold,
		SoldOutRisk: cfg.Occupancy.SoldOutRiskThreshold,
	}
	r.Reporter, err = occupancy.NewReporter(ledger, r.sessionService, thresholds)
	if err != nil {
		return nil, fmt.Errorf("failed to create occupancy reporter: %w", err)
	}

	calculator, err := pricing.NewCalculator(cfg.Pricing.ConvenienceFee, cfg.Pricing.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to create price calculator: %w", err)
	}

	deps := bookings.Dependencies{
		Repo:       bookings.NewRepository(pg),
		Ledger:     ledger,
		Selections: r.Coordinator,
		Prices:     r.catalogService,
		Calculator: calculator,
		Gateway:    payments.NewLoggingGateway(logger.GetDefault()),
		Outcomes:   bookings.LogOutcomePublisher{},
	}
	if publisher != nil {
		deps.Gateway = payments.NewKafkaGateway(publisher, cfg.Kafka.PaymentRequestTopic)
		deps.Outcomes = bookings.NewKafkaOutcomePublisher(publisher, cfg.Kafka.BookingEventTopic)
	}
	r.Bookings, err = bookings.NewService(deps, bookings.Timeouts{
		Initializing: cfg.Booking.InitializingTimeout,
		Processing:   cfg.Booking.ProcessingTimeout,
		Verifying:    cfg.Booking.VerifyingTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking service: %w", err)
	}

	return r, nil
}

func (r *Router) newLedger() (*seats.Ledger, error) {
	store := seats.NewStore(r.db.PostgreSQL, r.sessionService)
	opts := []seats.Option{seats.WithBlockStore(store)}

	if r.db.Redis != nil {
		lease := seats.NewRedisLease(r.db.Redis, r.config.Ledger.InstanceID, r.config.Redis.SessionLeaseTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := lease.Preload(ctx); err != nil {
			return nil, err
		}
		opts = append(opts, seats.WithLease(lease))
		logger.GetDefault().Info("session leases enabled", "instance_id", r.config.Ledger.InstanceID)
	}

	return seats.NewLedger(store, opts...), nil
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	organizerAuth := []gin.HandlerFunc{middleware.JWTAuthWithConfig(r.config), middleware.RequireOrganizer()}
	holder := middleware.HolderToken()

	api := engine.Group(r.config.GetAPIBasePath())
	{
		venues.SetupVenueRoutes(api, venues.NewController(r.venueService), organizerAuth...)
		sessions.SetupSessionRoutes(api, sessions.NewController(r.sessionService), organizerAuth...)
		catalog.SetupCatalogRoutes(api, catalog.NewController(r.catalogService), organizerAuth...)
		seats.SetupSeatRoutes(api, seats.NewController(r.Ledger), organizerAuth...)
		occupancy.SetupOccupancyRoutes(api, occupancy.NewController(r.Reporter))
		reservations.SetupReservationRoutes(api, reservations.NewController(r.Coordinator), holder)
		bookings.SetupBookingRoutes(api, bookings.NewController(r.Bookings), holder)
		webhook := payments.NewController(r.Bookings, r.config.Payments.WebhookSecret, bookings.HTTPStatus)
		if r.publisher != nil {
			webhook.ForwardTo(payments.NewKafkaForwarder(r.publisher, r.config.Kafka.PaymentEventTopic))
		}
		payments.SetupPaymentRoutes(api, webhook)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ticketcore",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ticketcore",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":              "operational",
			"api_version":         r.config.APIVersion,
			"timestamp":           time.Now(),
			"loaded_sessions":     len(r.Ledger.LoadedSessions()),
			"active_transactions": r.Bookings.Running(),
		})
	})
}
