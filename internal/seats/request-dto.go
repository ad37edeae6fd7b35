package seats

type SeatRefRequest struct {
	Section string `json:"section" validate:"required,max=100"`
	SeatID  string `json:"seat_id" validate:"required,max=20"`
}

type SeatStatusRequest struct {
	Seats []SeatRefRequest `json:"seats" validate:"required,min=1,max=500,dive"`
}

type BlockSeatsRequest struct {
	Seats  []SeatRefRequest `json:"seats" validate:"required,min=1,max=500,dive"`
	Reason string           `json:"reason" validate:"max=255"`
}

// ToRefs converts request seats to ledger refs
func ToRefs(in []SeatRefRequest) []SeatRef {
	refs := make([]SeatRef, 0, len(in))
	for _, r := range in {
		refs = append(refs, SeatRef{Section: r.Section, SeatID: r.SeatID})
	}
	return refs
}
