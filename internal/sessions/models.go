package sessions

import (
	"time"
)

// Session is one performance of an event in a venue. Its identity never changes after creation.
type Session struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"session_id"`
	EventID   string    `gorm:"type:varchar(64);not null;index:idx_sessions_event_start,priority:1" json:"event_id"`
	VenueID   string    `gorm:"type:varchar(64);not null;index" json:"venue_id"`
	StartTime time.Time `gorm:"not null;index:idx_sessions_event_start,priority:2" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for Session
func (Session) TableName() string {
	return "sessions"
}

// Date is the calendar day the session starts on
func (s *Session) Date() string {
	return s.StartTime.Format("2006-01-02")
}
