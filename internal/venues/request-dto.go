package venues

import "strings"

type RegisterLayoutRequest struct {
	VenueID  string           `json:"venue_id" validate:"required,max=64"`
	Name     string           `json:"name" validate:"required,min=1,max=200"`
	Sections []SectionRequest `json:"sections" validate:"required,min=1,dive"`
}

type SectionRequest struct {
	Name string       `json:"name" validate:"required,max=100"`
	Rows []RowRequest `json:"rows" validate:"required,min=1,dive"`
}

type RowRequest struct {
	Label   string   `json:"label" validate:"max=20"`
	SeatIDs []string `json:"seat_ids" validate:"required,min=1,dive,required,max=20"`
}

// ToLayout converts the request, capacity is derived from the seats
func (r RegisterLayoutRequest) ToLayout() *Layout {
	layout := &Layout{
		ID:   strings.TrimSpace(r.VenueID),
		Name: strings.TrimSpace(r.Name),
	}
	for _, s := range r.Sections {
		section := Section{Name: strings.TrimSpace(s.Name)}
		for _, row := range s.Rows {
			section.Rows = append(section.Rows, Row{
				Label:   strings.TrimSpace(row.Label),
				SeatIDs: append([]string(nil), row.SeatIDs...),
			})
		}
		layout.Sections = append(layout.Sections, section)
	}
	layout.Capacity = layout.SeatCount()
	return layout
}
