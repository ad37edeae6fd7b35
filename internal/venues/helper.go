package venues

import (
	"fmt"
	"strings"
)

// ValidateLayout checks the structural invariants of a layout: at least one section, unique
// section names, unique seat ids within a section and a capacity equal to the seat count.
func ValidateLayout(l *Layout) error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("%w: venue id is required", ErrInvalidLayout)
	}
	if len(l.Sections) == 0 {
		return fmt.Errorf("%w: at least one section is required", ErrInvalidLayout)
	}

	sectionNames := make(map[string]bool, len(l.Sections))
	for _, section := range l.Sections {
		name := strings.TrimSpace(section.Name)
		if name == "" {
			return fmt.Errorf("%w: section name is required", ErrInvalidLayout)
		}
		if sectionNames[name] {
			return fmt.Errorf("%w: duplicate section %q", ErrInvalidLayout, name)
		}
		sectionNames[name] = true

		if section.SeatCount() == 0 {
			return fmt.Errorf("%w: section %q has no seats", ErrInvalidLayout, name)
		}

		seatIDs := make(map[string]bool, section.SeatCount())
		for _, row := range section.Rows {
			for _, seatID := range row.SeatIDs {
				if strings.TrimSpace(seatID) == "" {
					return fmt.Errorf("%w: empty seat id in section %q row %q", ErrInvalidLayout, name, row.Label)
				}
				if seatIDs[seatID] {
					return fmt.Errorf("%w: duplicate seat %q in section %q", ErrInvalidLayout, seatID, name)
				}
				seatIDs[seatID] = true
			}
		}
	}

	if l.Capacity != l.SeatCount() {
		return fmt.Errorf("%w: capacity %d does not match seat count %d", ErrInvalidLayout, l.Capacity, l.SeatCount())
	}

	return nil
}

// GenerateSection builds a section of rows×seatsPerRow seats, seat ids are "<row><n>"
// when prefixRows is set and plain running numbers otherwise.
func GenerateSection(name string, rowLabels []string, seatsPerRow int, prefixRows bool) Section {
	section := Section{Name: name}
	next := 1
	for _, label := range rowLabels {
		row := Row{Label: label, SeatIDs: make([]string, 0, seatsPerRow)}
		for i := 1; i <= seatsPerRow; i++ {
			if prefixRows {
				row.SeatIDs = append(row.SeatIDs, fmt.Sprintf("%s%d", label, i))
			} else {
				row.SeatIDs = append(row.SeatIDs, fmt.Sprintf("%d", next))
				next++
			}
		}
		section.Rows = append(section.Rows, row)
	}
	return section
}
