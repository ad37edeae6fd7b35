package venues

import (
	"time"
)

// Layout is the physical seating of a venue. It is immutable once a session references it.
type Layout struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"venue_id"`
	Name      string    `gorm:"not null" json:"name"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	Sections  []Section `gorm:"type:jsonb;serializer:json;not null" json:"sections"`
	CreatedAt time.Time `json:"created_at"`
}

// Section is a named subdivision of the venue, the unit tickets are priced at
type Section struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// Row is an ordered run of seat identifiers
type Row struct {
	Label   string   `json:"label"`
	SeatIDs []string `json:"seat_ids"`
}

// TableName sets the table name for Layout
func (Layout) TableName() string {
	return "venue_layouts"
}

// Section returns the named section
func (l *Layout) Section(name string) (*Section, bool) {
	for i := range l.Sections {
		if l.Sections[i].Name == name {
			return &l.Sections[i], true
		}
	}
	return nil, false
}

// HasSeat reports whether seatID exists in the named section
func (l *Layout) HasSeat(section, seatID string) bool {
	s, ok := l.Section(section)
	if !ok {
		return false
	}
	return s.HasSeat(seatID)
}

// SectionNames returns section names in layout order
func (l *Layout) SectionNames() []string {
	names := make([]string, 0, len(l.Sections))
	for _, s := range l.Sections {
		names = append(names, s.Name)
	}
	return names
}

// SeatCount returns the number of seats across all sections
func (l *Layout) SeatCount() int {
	total := 0
	for _, s := range l.Sections {
		total += s.SeatCount()
	}
	return total
}

// SeatCount returns the number of seats in the section
func (s *Section) SeatCount() int {
	total := 0
	for _, r := range s.Rows {
		total += len(r.SeatIDs)
	}
	return total
}

// HasSeat reports whether seatID is one of the section's seats
func (s *Section) HasSeat(seatID string) bool {
	for _, r := range s.Rows {
		for _, id := range r.SeatIDs {
			if id == seatID {
				return true
			}
		}
	}
	return false
}

// RowOf returns the row label holding seatID
func (s *Section) RowOf(seatID string) (string, bool) {
	for _, r := range s.Rows {
		for _, id := range r.SeatIDs {
			if id == seatID {
				return r.Label, true
			}
		}
	}
	return "", false
}
