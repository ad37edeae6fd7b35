package venues

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type memoryRepository struct {
	mu      sync.Mutex
	layouts map[string]*Layout
	reads   int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{layouts: make(map[string]*Layout)}
}

func (r *memoryRepository) Create(ctx context.Context, layout *Layout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[layout.ID] = layout
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Layout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	l, ok := r.layouts[id]
	if !ok {
		return nil, ErrLayoutNotFound
	}
	return l, nil
}

func (r *memoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.layouts[id]
	return ok, nil
}

func arenaRequest() RegisterLayoutRequest {
	return RegisterLayoutRequest{
		VenueID: " arena ",
		Name:    "Arena",
		Sections: []SectionRequest{
			{Name: "VIP", Rows: []RowRequest{{Label: "A", SeatIDs: []string{"A1", "A2", "A3"}}}},
			{Name: "General", Rows: []RowRequest{
				{Label: "B", SeatIDs: []string{"B1", "B2"}},
				{Label: "C", SeatIDs: []string{"C1", "C2"}},
			}},
		},
	}
}

func TestRegister_DerivesCapacity(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)

	layout, err := svc.Register(context.Background(), arenaRequest())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if layout.ID != "arena" || layout.Capacity != 7 {
		t.Fatalf("unexpected layout %+v", layout)
	}

	_, err = svc.Register(context.Background(), arenaRequest())
	if !errors.Is(err, ErrLayoutExists) {
		t.Fatalf("expected ErrLayoutExists, got %v", err)
	}
}

func TestGetLayout(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)
	if _, err := svc.Register(context.Background(), arenaRequest()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	layout, err := svc.GetLayout(context.Background(), "arena")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !layout.HasSeat("General", "C2") || layout.HasSeat("VIP", "C2") {
		t.Fatalf("unexpected seat lookup on %+v", layout.Sections)
	}
	if row, ok := layout.Sections[1].RowOf("C2"); !ok || row != "C" {
		t.Fatalf("expected row C, got %q", row)
	}

	if _, err := svc.GetLayout(context.Background(), " "); !errors.Is(err, ErrLayoutNotFound) {
		t.Fatalf("expected ErrLayoutNotFound, got %v", err)
	}
	if _, err := svc.GetLayout(context.Background(), "stadium"); !errors.Is(err, ErrLayoutNotFound) {
		t.Fatalf("expected ErrLayoutNotFound, got %v", err)
	}
}

func TestValidateLayout(t *testing.T) {
	valid := func() *Layout { return arenaRequest().ToLayout() }

	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"missing id", func(l *Layout) { l.ID = "" }},
		{"no sections", func(l *Layout) { l.Sections = nil; l.Capacity = 0 }},
		{"duplicate section", func(l *Layout) { l.Sections[1].Name = "VIP" }},
		{"empty section", func(l *Layout) { l.Sections[0].Rows = nil; l.Capacity = 4 }},
		{"duplicate seat", func(l *Layout) { l.Sections[1].Rows[1].SeatIDs[0] = "B1" }},
		{"blank seat", func(l *Layout) { l.Sections[0].Rows[0].SeatIDs[2] = " " }},
		{"capacity mismatch", func(l *Layout) { l.Capacity = 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid()
			tt.mutate(l)
			if err := ValidateLayout(l); !errors.Is(err, ErrInvalidLayout) {
				t.Fatalf("expected ErrInvalidLayout, got %v", err)
			}
		})
	}

	if err := ValidateLayout(valid()); err != nil {
		t.Fatalf("expected valid layout, got %v", err)
	}
}

func TestGenerateSection(t *testing.T) {
	prefixed := GenerateSection("VIP", []string{"A", "B"}, 3, true)
	if prefixed.SeatCount() != 6 || prefixed.Rows[1].SeatIDs[2] != "B3" {
		t.Fatalf("unexpected prefixed section %+v", prefixed)
	}

	numbered := GenerateSection("Floor", []string{"1", "2"}, 2, false)
	if numbered.Rows[1].SeatIDs[1] != "4" {
		t.Fatalf("expected running seat numbers, got %+v", numbered.Rows)
	}
}
