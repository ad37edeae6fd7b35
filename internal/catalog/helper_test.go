package catalog

import (
	"errors"
	"math"
	"testing"

	"ticketcore/internal/venues"
)

func testLayout() *venues.Layout {
	layout := &venues.Layout{
		ID:   "arena",
		Name: "Arena",
		Sections: []venues.Section{
			venues.GenerateSection("VIP", []string{"A"}, 10, true),
			venues.GenerateSection("General", []string{"B", "C"}, 10, true),
		},
	}
	layout.Capacity = layout.SeatCount()
	return layout
}

func TestBuildTicketTypes(t *testing.T) {
	types, err := BuildTicketTypes("s1", testLayout(), []TicketTypeSpec{
		{SectionName: "VIP", Price: 500},
		{SectionName: " General ", Price: 100},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("expected 2 ticket types, got %d", len(types))
	}
	if types[0].TotalCapacity != 10 || types[1].TotalCapacity != 20 || types[1].SectionName != "General" {
		t.Fatalf("unexpected ticket types %+v", types)
	}
	if types[0].ID == "" || types[0].ID == types[1].ID {
		t.Fatalf("expected distinct ids, got %q and %q", types[0].ID, types[1].ID)
	}
}

func TestBuildTicketTypes_Errors(t *testing.T) {
	tests := []struct {
		name  string
		specs []TicketTypeSpec
		want  error
	}{
		{"unknown section", []TicketTypeSpec{{SectionName: "Balcony", Price: 10}}, ErrUnknownSection},
		{"duplicate", []TicketTypeSpec{{SectionName: "VIP", Price: 10}, {SectionName: "VIP", Price: 20}}, ErrDuplicateTicketType},
		{"negative price", []TicketTypeSpec{{SectionName: "VIP", Price: -1}}, ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildTicketTypes("s1", testLayout(), tt.specs); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidatePrice(t *testing.T) {
	for _, p := range []float64{-0.01, math.NaN(), math.Inf(1)} {
		if err := ValidatePrice(p); !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("expected ErrInvalidPrice for %v, got %v", p, err)
		}
	}
	if err := ValidatePrice(0); err != nil {
		t.Fatalf("expected free tickets to be valid, got %v", err)
	}
}

func TestPriceBook(t *testing.T) {
	book := NewPriceBook([]TicketType{{SectionName: "VIP", Price: 500}})
	if p, ok := book.PriceOf("VIP"); !ok || p != 500 {
		t.Fatalf("expected 500, got %v (%v)", p, ok)
	}
	if _, ok := book.PriceOf("General"); ok {
		t.Fatalf("expected General to be unpriced")
	}
}
