package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync/atomic"
)

type Category string

const (
	Standard Category = "Standard"
	Premium  Category = "Premium"
	VIP      Category = "VIP"
)

type SeatStatus int32

const (
	Available SeatStatus = iota
	Held
	Booked
)

func (s SeatStatus) String() string {
	switch s {
	case Available:
		return "Available"
	case Held:
		return "Held"
	case Booked:
		return "Booked"
	default:
		return "Unknown"
	}
}

// Seat identity and category are fixed at generation time. Status is the only
// mutable field and is owned by the reservation engine, which mutates it
// exclusively through SeatMap.TrySetStatus.
type Seat struct {
	Row      string
	Number   int
	Category Category

	status atomic.Int32
}

func (s *Seat) ID() string {
	return s.Row + strconv.Itoa(s.Number)
}

func (s *Seat) Status() SeatStatus {
	return SeatStatus(s.status.Load())
}

type RowLayout struct {
	Label    string
	Seats    int
	Category Category
}

type Layout struct {
	Rows []RowLayout
}

// DefaultLayout mirrors the standard auditorium: rows A-H, eight seats in the
// first three rows and ten in the rest, rows A-B premium, rows G-H VIP.
func DefaultLayout() Layout {
	labels := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	rows := make([]RowLayout, len(labels))

	for i, label := range labels {
		seats := 10
		if i < 3 {
			seats = 8
		}

		category := Standard
		switch {
		case i < 2:
			category = Premium
		case i >= 6:
			category = VIP
		}

		rows[i] = RowLayout{Label: label, Seats: seats, Category: category}
	}

	return Layout{Rows: rows}
}

// BookedFn decides which seats start out booked when a seat map is generated.
type BookedFn func(seatID string) bool

// NoneBooked generates a fully available seat map.
func NoneBooked(string) bool { return false }

// SeatsBooked marks exactly the given seat ids as booked.
func SeatsBooked(seatIDs ...string) BookedFn {
	booked := make(map[string]bool, len(seatIDs))
	for _, id := range seatIDs {
		booked[id] = true
	}

	return func(seatID string) bool { return booked[seatID] }
}

// RatioBooked books roughly the given fraction of seats, deterministically for
// a given seed. It reproduces the classic "some seats are already taken"
// fixture without depending on global randomness.
func RatioBooked(ratio float64, seed int64) BookedFn {
	rng := rand.New(rand.NewSource(seed))

	return func(string) bool { return rng.Float64() < ratio }
}

// SeatMap is the canonical seat state for one showtime. Rows and seats keep
// generation order; the index gives O(1) lookup by seat id.
type SeatMap struct {
	rows  []RowLayout
	order []*Seat
	index map[string]*Seat
}

// Generate builds the seat grid from the layout. It is deterministic apart
// from whatever the booked predicate decides. Seat ids must be unique, so
// duplicate row labels are rejected.
func Generate(layout Layout, booked BookedFn) (*SeatMap, error) {
	if len(layout.Rows) == 0 {
		return nil, fmt.Errorf("layout must contain at least one row")
	}

	if booked == nil {
		booked = NoneBooked
	}

	sm := &SeatMap{
		rows:  layout.Rows,
		index: make(map[string]*Seat),
	}

	for _, row := range layout.Rows {
		if row.Label == "" {
			return nil, fmt.Errorf("row label must not be empty")
		}

		if row.Seats < 1 {
			return nil, fmt.Errorf("row %s must contain at least one seat", row.Label)
		}

		switch row.Category {
		case Standard, Premium, VIP:
		default:
			return nil, fmt.Errorf("row %s: %w: %q", row.Label, ErrUnknownCategory, row.Category)
		}

		for number := 1; number <= row.Seats; number++ {
			seat := &Seat{
				Row:      row.Label,
				Number:   number,
				Category: row.Category,
			}

			if _, exists := sm.index[seat.ID()]; exists {
				return nil, fmt.Errorf("duplicate seat id %s", seat.ID())
			}

			if booked(seat.ID()) {
				seat.status.Store(int32(Booked))
			}

			sm.order = append(sm.order, seat)
			sm.index[seat.ID()] = seat
		}
	}

	return sm, nil
}

func (sm *SeatMap) Get(seatID string) (*Seat, error) {
	seat, ok := sm.index[seatID]
	if !ok {
		return nil, fmt.Errorf("%w: seat %s", ErrSeatNotFound, seatID)
	}

	return seat, nil
}

// TrySetStatus atomically moves a seat from one status to another. It reports
// false without mutating anything when the seat is absent or its current
// status differs from the expected one. Two concurrent callers racing the
// same transition see exactly one winner.
func (sm *SeatMap) TrySetStatus(seatID string, from, to SeatStatus) bool {
	seat, ok := sm.index[seatID]
	if !ok {
		return false
	}

	return seat.status.CompareAndSwap(int32(from), int32(to))
}

// Rows returns the seat grid in generation order, grouped by row. The
// returned seats are live: their status reflects the current state.
func (sm *SeatMap) Rows() [][]*Seat {
	grid := make([][]*Seat, 0, len(sm.rows))

	i := 0
	for _, row := range sm.rows {
		grid = append(grid, sm.order[i:i+row.Seats])
		i += row.Seats
	}

	return grid
}

// Size returns the total number of seats in the map.
func (sm *SeatMap) Size() int {
	return len(sm.order)
}
