package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType enumerates the reservation events consumed by UI layers and
// downstream systems.
type EventType string

const (
	EventSeatSelected     EventType = "seat.selected"
	EventSeatDeselected   EventType = "seat.deselected"
	EventHoldExpired      EventType = "hold.expired"
	EventBookingConfirmed EventType = "booking.confirmed"
)

// Event carries enough information for consumers to update their view or
// notify the booker without querying the engine again.
type Event struct {
	Type       EventType       `json:"type"`
	ShowtimeID string          `json:"showtime_id"`
	SessionID  string          `json:"session_id"`
	SeatID     string          `json:"seat_id,omitempty"`
	SeatIDs    []string        `json:"seat_ids,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}
