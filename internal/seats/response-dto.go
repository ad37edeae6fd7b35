package seats

import (
	"time"
)

// StatusSelected is how a seat held by the viewing holder is shown to that holder
const StatusSelected Status = "selected"

type SeatView struct {
	Section   string     `json:"section"`
	Row       string     `json:"row"`
	SeatID    string     `json:"seat_id"`
	Status    Status     `json:"status"`
	HeldUntil *time.Time `json:"held_until,omitempty"`
}

type SectionView struct {
	Name      string     `json:"name"`
	Available int        `json:"available"`
	Seats     []SeatView `json:"seats"`
}

type SeatMapResponse struct {
	SessionID string        `json:"session_id"`
	VenueID   string        `json:"venue_id"`
	Version   uint64        `json:"version"`
	AsOf      time.Time     `json:"as_of"`
	Counts    Counts        `json:"counts"`
	Sections  []SectionView `json:"sections"`
}

// viewOf hides other holders: a seat held by someone else is just held, a seat held by the viewer is selected
func viewOf(st SeatState, viewer string) SeatView {
	v := SeatView{Section: st.Section, Row: st.Row, SeatID: st.SeatID, Status: st.Status}
	if viewer != "" && st.HeldBy(viewer) {
		v.Status = StatusSelected
		v.HeldUntil = st.HeldUntil
	}
	return v
}

// ToSeatMapResponse groups the seat map by section, keeping layout order
func ToSeatMapResponse(m *SeatMap, viewer string) SeatMapResponse {
	resp := SeatMapResponse{
		SessionID: m.SessionID,
		VenueID:   m.VenueID,
		Version:   m.Version,
		AsOf:      m.AsOf,
		Counts:    m.Counts,
	}

	pos := make(map[string]int)
	for _, st := range m.Seats {
		i, ok := pos[st.Section]
		if !ok {
			i = len(resp.Sections)
			pos[st.Section] = i
			resp.Sections = append(resp.Sections, SectionView{Name: st.Section})
		}
		if st.Status == StatusAvailable {
			resp.Sections[i].Available++
		}
		resp.Sections[i].Seats = append(resp.Sections[i].Seats, viewOf(st, viewer))
	}
	return resp
}

// ToStatusResponse lists the requested seats in request order
func ToStatusResponse(refs []SeatRef, states map[SeatRef]SeatState, viewer string) []SeatView {
	out := make([]SeatView, 0, len(states))
	seen := make(map[SeatRef]bool, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, viewOf(states[ref], viewer))
	}
	return out
}
