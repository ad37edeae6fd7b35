package occupancy

import (
	"errors"
	"fmt"
	"time"
)

// Band is the demand signal shown next to a session
type Band string

const (
	BandAvailable   Band = "available"
	BandFastFilling Band = "fast-filling"
	BandSoldOutRisk Band = "sold-out-risk"
)

var ErrInvalidThresholds = errors.New("invalid occupancy thresholds")

// Thresholds are inclusive upper bounds: a rate equal to FastFilling is still available
type Thresholds struct {
	FastFilling float64
	SoldOutRisk float64
}

func (t Thresholds) Validate() error {
	if t.FastFilling < 0 || t.SoldOutRisk > 1 || t.FastFilling > t.SoldOutRisk {
		return fmt.Errorf("%w: need 0 <= %.2f <= %.2f <= 1", ErrInvalidThresholds, t.FastFilling, t.SoldOutRisk)
	}
	return nil
}

// Classify bands an occupancy rate
func (t Thresholds) Classify(rate float64) Band {
	switch {
	case rate > t.SoldOutRisk:
		return BandSoldOutRisk
	case rate > t.FastFilling:
		return BandFastFilling
	default:
		return BandAvailable
	}
}

// Rate is booked seats over capacity; held seats do not count
func Rate(booked, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(booked) / float64(capacity)
}

type SessionOccupancy struct {
	SessionID     string    `json:"session_id"`
	EventID       string    `json:"event_id"`
	VenueID       string    `json:"venue_id"`
	Date          string    `json:"date"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Capacity      int       `json:"capacity"`
	Booked        int       `json:"booked"`
	Held          int       `json:"held"`
	Available     int       `json:"available"`
	Blocked       int       `json:"blocked"`
	OccupancyRate float64   `json:"occupancy_rate"`
	Band          Band      `json:"band"`
}
