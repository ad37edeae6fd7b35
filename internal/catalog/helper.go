package catalog

import (
	"fmt"
	"math"
	"strings"

	"ticketcore/internal/venues"

	"github.com/google/uuid"
)

// TicketTypeSpec is the organizer input for one section
type TicketTypeSpec struct {
	SectionName string  `json:"section_name" validate:"required,max=100"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// BuildTicketTypes validates specs against the layout and derives each capacity from the section seat count.
func BuildTicketTypes(sessionID string, layout *venues.Layout, specs []TicketTypeSpec) ([]TicketType, error) {
	seen := make(map[string]bool, len(specs))
	types := make([]TicketType, 0, len(specs))

	for _, spec := range specs {
		name := strings.TrimSpace(spec.SectionName)
		section, ok := layout.Section(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTicketType, name)
		}
		seen[name] = true

		if err := ValidatePrice(spec.Price); err != nil {
			return nil, err
		}

		types = append(types, TicketType{
			ID:            uuid.NewString(),
			SessionID:     sessionID,
			SectionName:   name,
			Price:         spec.Price,
			TotalCapacity: section.SeatCount(),
		})
	}

	return types, nil
}

func ValidatePrice(price float64) error {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	return nil
}
