package bookings

// ListQuery pages a holder's booking history
type ListQuery struct {
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Status Status `form:"status" validate:"omitempty,oneof=pending confirmed failed cancelled"`
}

func (q *ListQuery) SetDefaults() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
