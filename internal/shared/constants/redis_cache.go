package constants

import (
	"time"
)

// Redis key layout for ticketcore.
// Pattern: ticketcore:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG   = 24 * time.Hour // venue layouts never change once referenced
	TTL_STATIC_MEDIUM = 12 * time.Hour
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "ticketcore"
)

// ================== VENUES MODULE ==================

const (
	CACHE_KEY_VENUE_LAYOUT = CACHE_PREFIX + ":venues:layout:" // + venue-id
)

const (
	TTL_VENUE_LAYOUT = TTL_STATIC_LONG
)

// ================== SEATS MODULE ==================

const (
	// Single-writer lease per session, value is the owning instance id
	KEY_SESSION_LEASE = CACHE_PREFIX + ":seats:lease:" // + session-id
)

// ================== RATE LIMIT ==================

const (
	KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + ip:type
)

// ================== KEY BUILDERS ==================

func BuildVenueLayoutKey(venueID string) string {
	return CACHE_KEY_VENUE_LAYOUT + venueID
}

func BuildSessionLeaseKey(sessionID string) string {
	return KEY_SESSION_LEASE + sessionID
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return KEY_RATE_LIMIT + clientIP + ":" + limitType
}
