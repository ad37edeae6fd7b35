package catalog

import (
	"time"
)

// TicketType prices one section of one session
type TicketType struct {
	ID            string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	SessionID     string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_ticket_types_session_section" json:"session_id"`
	SectionName   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_ticket_types_session_section" json:"section_name"`
	Price         float64   `gorm:"not null;check:price >= 0" json:"price"`
	TotalCapacity int       `gorm:"not null;check:total_capacity > 0" json:"total_capacity"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for TicketType
func (TicketType) TableName() string {
	return "ticket_types"
}

// PriceBook maps section name to its ticket type. A section missing from the book is not yet priced.
type PriceBook map[string]TicketType

// NewPriceBook indexes ticket types by section
func NewPriceBook(types []TicketType) PriceBook {
	book := make(PriceBook, len(types))
	for _, t := range types {
		book[t.SectionName] = t
	}
	return book
}

// PriceOf returns the price of a section
func (b PriceBook) PriceOf(section string) (float64, bool) {
	t, ok := b[section]
	if !ok {
		return 0, false
	}
	return t.Price, true
}
