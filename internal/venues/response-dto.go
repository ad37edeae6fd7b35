package venues

type LayoutResponse struct {
	VenueID  string            `json:"venue_id"`
	Name     string            `json:"name"`
	Capacity int               `json:"capacity"`
	Sections []SectionResponse `json:"sections"`
}

type SectionResponse struct {
	Name      string `json:"name"`
	SeatCount int    `json:"seat_count"`
	Rows      []Row  `json:"rows"`
}

func ToLayoutResponse(l *Layout) LayoutResponse {
	resp := LayoutResponse{
		VenueID:  l.ID,
		Name:     l.Name,
		Capacity: l.Capacity,
		Sections: make([]SectionResponse, 0, len(l.Sections)),
	}
	for i := range l.Sections {
		resp.Sections = append(resp.Sections, SectionResponse{
			Name:      l.Sections[i].Name,
			SeatCount: l.Sections[i].SeatCount(),
			Rows:      l.Sections[i].Rows,
		})
	}
	return resp
}
