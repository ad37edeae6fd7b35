package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration (organizer/admin surface)
	JWT JWTConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Kafka (payment collaborator + booking outcomes)
	Kafka KafkaConfig

	// Seat ledger
	Ledger LedgerConfig

	// Booking transaction timeouts
	Booking BookingConfig

	// Occupancy banding
	Occupancy OccupancyConfig

	// Pricing
	Pricing PricingConfig

	// Payment webhook
	Payments PaymentsConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
	PoolSize int

	SessionLeaseTTL time.Duration
	CacheTTL        time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled                 bool          `json:"enabled"`
	WindowDuration          time.Duration `json:"window_duration"`
	DefaultRequests         int           `json:"default_requests"`
	PublicRequests          int           `json:"public_requests"`
	BookingRequests         int           `json:"booking_requests"`
	BookingCriticalRequests int           `json:"booking_critical_requests"`
	AdminRequests           int           `json:"admin_requests"`
	HealthRequests          int           `json:"health_requests"`
	WhitelistedIPs          []string      `json:"whitelisted_ips"`
}

// KafkaConfig holds broker addresses and topic names
type KafkaConfig struct {
	Enabled             bool
	Brokers             []string
	PaymentRequestTopic string
	PaymentEventTopic   string
	BookingEventTopic   string
	ConsumerGroupID     string
	ConsumerWorkers     int
}

// LedgerConfig controls seat holds
type LedgerConfig struct {
	HoldTTL           time.Duration
	SweepInterval     time.Duration
	MaxSeatsPerHolder int
	InstanceID        string
}

// BookingConfig bounds the time a booking transaction may spend in each non-terminal state
type BookingConfig struct {
	InitializingTimeout time.Duration
	ProcessingTimeout   time.Duration
	VerifyingTimeout    time.Duration
}

// OccupancyConfig holds the banding thresholds
type OccupancyConfig struct {
	FastFillingThreshold float64
	SoldOutRiskThreshold float64
}

// PricingConfig holds the checkout fee settings
type PricingConfig struct {
	ConvenienceFee float64
	Currency       string
}

// PaymentsConfig holds the inbound payment webhook settings
type PaymentsConfig struct {
	WebhookSecret string
}

// Load loads configuration from environment variables
func Load() *Config {
	hostname, _ := os.Hostname()

	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "ticketcore_db"),
			User:     getEnv("DB_USER", "ticketcore_user"),
			Password: getEnv("DB_PASSWORD", "ticketcore_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},

		// Redis configuration
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			PoolSize: getIntEnv("REDIS_POOL_SIZE", 20),

			SessionLeaseTTL: getDurationEnv("REDIS_SESSION_LEASE_TTL", 30*time.Second),
			CacheTTL:        getDurationEnv("REDIS_CACHE_TTL", 1*time.Hour),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:                 getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:          getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:         getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:          getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			BookingRequests:         getIntEnv("RATE_LIMIT_BOOKING_REQUESTS", 20),
			BookingCriticalRequests: getIntEnv("RATE_LIMIT_BOOKING_CRITICAL_REQUESTS", 60),
			AdminRequests:           getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			HealthRequests:          getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:          getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Enabled:             getBoolEnv("KAFKA_ENABLED", true),
			Brokers:             getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			PaymentRequestTopic: getEnv("KAFKA_PAYMENT_REQUEST_TOPIC", "payments.requests"),
			PaymentEventTopic:   getEnv("KAFKA_PAYMENT_EVENT_TOPIC", "payments.events"),
			BookingEventTopic:   getEnv("KAFKA_BOOKING_EVENT_TOPIC", "bookings.events"),
			ConsumerGroupID:     getEnv("KAFKA_CONSUMER_GROUP_ID", "ticketcore-payment-events"),
			ConsumerWorkers:     getIntEnv("KAFKA_CONSUMER_WORKERS", 1),
		},

		// Seat ledger
		Ledger: LedgerConfig{
			HoldTTL:           getDurationEnv("LEDGER_HOLD_TTL", 10*time.Minute),
			SweepInterval:     getDurationEnv("LEDGER_SWEEP_INTERVAL", 5*time.Second),
			MaxSeatsPerHolder: getIntEnv("LEDGER_MAX_SEATS_PER_HOLDER", 10),
			InstanceID:        getEnv("LEDGER_INSTANCE_ID", hostname),
		},

		// Booking transaction
		Booking: BookingConfig{
			InitializingTimeout: getDurationEnv("BOOKING_INITIALIZING_TIMEOUT", 20*time.Second),
			ProcessingTimeout:   getDurationEnv("BOOKING_PROCESSING_TIMEOUT", 45*time.Second),
			VerifyingTimeout:    getDurationEnv("BOOKING_VERIFYING_TIMEOUT", 30*time.Second),
		},

		// Occupancy
		Occupancy: OccupancyConfig{
			FastFillingThreshold: getFloatEnv("OCCUPANCY_FAST_FILLING_THRESHOLD", 0.4),
			SoldOutRiskThreshold: getFloatEnv("OCCUPANCY_SOLD_OUT_RISK_THRESHOLD", 0.7),
		},

		// Pricing
		Pricing: PricingConfig{
			ConvenienceFee: getFloatEnv("PRICING_CONVENIENCE_FEE", 2.5),
			Currency:       getEnv("PRICING_CURRENCY", "USD"),
		},

		// Payments
		Payments: PaymentsConfig{
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// Validate checks the cross-field constraints of the configuration
func (c *Config) Validate() error {
	if c.Ledger.HoldTTL <= 0 {
		return fmt.Errorf("LEDGER_HOLD_TTL must be positive, got %s", c.Ledger.HoldTTL)
	}
	if c.Ledger.SweepInterval <= 0 {
		return fmt.Errorf("LEDGER_SWEEP_INTERVAL must be positive, got %s", c.Ledger.SweepInterval)
	}
	if c.Ledger.MaxSeatsPerHolder <= 0 {
		return fmt.Errorf("LEDGER_MAX_SEATS_PER_HOLDER must be positive, got %d", c.Ledger.MaxSeatsPerHolder)
	}

	// A booking transaction must never outlive the hold it is paying for.
	timeouts := map[string]time.Duration{
		"BOOKING_INITIALIZING_TIMEOUT": c.Booking.InitializingTimeout,
		"BOOKING_PROCESSING_TIMEOUT":   c.Booking.ProcessingTimeout,
		"BOOKING_VERIFYING_TIMEOUT":    c.Booking.VerifyingTimeout,
	}
	for name, timeout := range timeouts {
		if timeout <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, timeout)
		}
		if timeout > c.Ledger.HoldTTL {
			return fmt.Errorf("%s (%s) exceeds LEDGER_HOLD_TTL (%s)", name, timeout, c.Ledger.HoldTTL)
		}
	}

	fast, soldOut := c.Occupancy.FastFillingThreshold, c.Occupancy.SoldOutRiskThreshold
	if fast < 0 || soldOut > 1 || fast > soldOut {
		return fmt.Errorf("occupancy thresholds must satisfy 0 <= fast-filling (%.2f) <= sold-out-risk (%.2f) <= 1", fast, soldOut)
	}

	if c.Pricing.ConvenienceFee < 0 {
		return fmt.Errorf("PRICING_CONVENIENCE_FEE must not be negative, got %.2f", c.Pricing.ConvenienceFee)
	}

	// The sweeper renews session leases, so a lease must survive at least two sweeps.
	if c.Redis.Enabled && c.Redis.SessionLeaseTTL < 2*c.Ledger.SweepInterval {
		return fmt.Errorf("REDIS_SESSION_LEASE_TTL (%s) must be at least twice LEDGER_SWEEP_INTERVAL (%s)",
			c.Redis.SessionLeaseTTL, c.Ledger.SweepInterval)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}

	return nil
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getFloatEnv gets a float environment variable with a fallback value
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
// PaymentEventGroupID is unique per instance so every instance sees every payment event and
// acts on the ones whose session it owns
func (c *Config) PaymentEventGroupID() string {
	return c.Kafka.ConsumerGroupID + "-" + c.Ledger.InstanceID
}

func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
