package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"ticketcore/internal/catalog"
)

var (
	ErrEmptySelection = errors.New("no seats selected")
	ErrNotPriced      = errors.New("section is not priced yet")
	ErrNegativeFee    = errors.New("convenience fee must not be negative")
)

// Item is one seat to price
type Item struct {
	Section string `json:"section"`
	SeatID  string `json:"seat_id"`
}

// Line aggregates the seats of one section
type Line struct {
	Section   string   `json:"section"`
	SeatIDs   []string `json:"seat_ids"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unit_price"`
	Amount    float64  `json:"amount"`
}

// Quote is the price breakdown of a selection
type Quote struct {
	Lines          []Line  `json:"lines"`
	SeatCount      int     `json:"seat_count"`
	Subtotal       float64 `json:"subtotal"`
	ConvenienceFee float64 `json:"convenience_fee"`
	Total          float64 `json:"total"`
	Currency       string  `json:"currency"`
}

// RequireSeats rejects quotes that would lead to a zero-seat charge
func (q *Quote) RequireSeats() error {
	if q == nil || q.SeatCount == 0 {
		return ErrEmptySelection
	}
	return nil
}

// Calculator turns a selection and a price book into a quote
type Calculator struct {
	convenienceFee float64
	currency       string
}

func NewCalculator(convenienceFee float64, currency string) (*Calculator, error) {
	if convenienceFee < 0 || math.IsNaN(convenienceFee) {
		return nil, ErrNegativeFee
	}
	return &Calculator{convenienceFee: convenienceFee, currency: currency}, nil
}

// Calculate is pure: the same items and book always produce the same quote.
// An empty selection yields a zero quote with no fee.
func (c *Calculator) Calculate(items []Item, book catalog.PriceBook) (*Quote, error) {
	quote := &Quote{Lines: []Line{}, Currency: c.currency}
	if len(items) == 0 {
		return quote, nil
	}

	bySection := make(map[string][]string)
	seen := make(map[Item]bool, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		bySection[item.Section] = append(bySection[item.Section], item.SeatID)
	}

	sections := make([]string, 0, len(bySection))
	for section := range bySection {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	for _, section := range sections {
		price, ok := book.PriceOf(section)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotPriced, section)
		}

		seatIDs := bySection[section]
		sort.Strings(seatIDs)
		amount := Round(price * float64(len(seatIDs)))

		quote.Lines = append(quote.Lines, Line{
			Section:   section,
			SeatIDs:   seatIDs,
			Quantity:  len(seatIDs),
			UnitPrice: price,
			Amount:    amount,
		})
		quote.SeatCount += len(seatIDs)
		quote.Subtotal += amount
	}

	quote.Subtotal = Round(quote.Subtotal)
	quote.ConvenienceFee = Round(c.convenienceFee)
	quote.Total = Round(quote.Subtotal + quote.ConvenienceFee)
	return quote, nil
}

// Round rounds half away from zero to cents
func Round(amount float64) float64 {
	return math.Round(amount*100) / 100
}
