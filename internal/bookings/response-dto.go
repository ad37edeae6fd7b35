package bookings

import (
	"time"
)

type BookingSeatResponse struct {
	Section string  `json:"section"`
	SeatID  string  `json:"seat_id"`
	Price   float64 `json:"price"`
}

type BookingResponse struct {
	ID             string                `json:"id"`
	BookingRef     string                `json:"booking_ref"`
	SessionID      string                `json:"session_id"`
	Status         Status                `json:"status"`
	State          State                 `json:"state"`
	FailureReason  string                `json:"failure_reason,omitempty"`
	Seats          []BookingSeatResponse `json:"seats"`
	Subtotal       float64               `json:"subtotal"`
	ConvenienceFee float64               `json:"convenience_fee"`
	TotalAmount    float64               `json:"total_amount"`
	Currency       string                `json:"currency"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

func ToBookingResponse(b *Booking) BookingResponse {
	resp := BookingResponse{
		ID:             b.ID,
		BookingRef:     b.BookingRef,
		SessionID:      b.SessionID,
		Status:         b.Status,
		State:          b.State,
		FailureReason:  b.FailureReason,
		Seats:          make([]BookingSeatResponse, 0, len(b.Seats)),
		Subtotal:       b.Subtotal,
		ConvenienceFee: b.ConvenienceFee,
		TotalAmount:    b.TotalAmount,
		Currency:       b.Currency,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	for _, s := range b.Seats {
		resp.Seats = append(resp.Seats, BookingSeatResponse{Section: s.SectionName, SeatID: s.SeatID, Price: s.Price})
	}
	return resp
}

func ToBookingListResponse(bookings []Booking, total int64, query ListQuery) BookingListResponse {
	resp := BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
		Total:    total,
		Page:     query.Page,
		Limit:    query.Limit,
	}
	for i := range bookings {
		resp.Bookings = append(resp.Bookings, ToBookingResponse(&bookings[i]))
	}
	if query.Limit > 0 {
		resp.TotalPages = int((total + int64(query.Limit) - 1) / int64(query.Limit))
	}
	return resp
}
