// Package api defines the request and response types of the reservation API.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Env     string `json:"env"`
}

type RowConfig struct {
	Label    string `json:"label" validate:"required,max=2"`
	Seats    int    `json:"seats" validate:"required,min=1,max=50"`
	Category string `json:"category" validate:"required,category"`
}

type PriceConfig struct {
	Standard float64 `json:"standard" validate:"gte=0"`
	Premium  float64 `json:"premium" validate:"gte=0"`
	// Vip is optional; when omitted it defaults to 1.5x the premium price.
	Vip float64 `json:"vip,omitempty" validate:"gte=0"`
}

type CreateShowtimeRequest struct {
	ShowtimeId string      `json:"showtimeId" validate:"required,max=64"`
	Prices     PriceConfig `json:"prices" validate:"required"`
	// Rows is optional; the default auditorium layout is used when empty.
	Rows []RowConfig `json:"rows,omitempty" validate:"omitempty,dive"`
	// BookedSeatIds pre-books specific seats.
	BookedSeatIds []string `json:"bookedSeatIds,omitempty" validate:"omitempty,dive,seat_id"`
	// BookedRatio pre-books a deterministic fraction of seats using
	// BookedSeed. Ignored when BookedSeatIds is set.
	BookedRatio float64 `json:"bookedRatio,omitempty" validate:"gte=0,lte=1"`
	BookedSeed  int64   `json:"bookedSeed,omitempty"`
}

type ShowtimeResponse struct {
	ShowtimeId string `json:"showtimeId"`
	SeatCount  int    `json:"seatCount"`
}

type Seat struct {
	Id       string `json:"id"`
	Row      string `json:"row"`
	Number   int    `json:"number"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	ShowtimeId string    `json:"showtimeId"`
	SeatRows   []SeatRow `json:"seatRows"`
}

type Hold struct {
	SeatIds       []string        `json:"seatIds"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	TimeRemaining int             `json:"timeRemaining"`
	State         string          `json:"state"`
	FlowState     string          `json:"flowState"`
}

type HoldResponse struct {
	Hold Hold `json:"hold"`
}

type ToggleSeatResponse struct {
	Result string `json:"result"`
	Hold   Hold   `json:"hold"`
}

type ConfirmBookingRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type Booking struct {
	Reference   string          `json:"reference"`
	ShowtimeId  string          `json:"showtimeId"`
	SeatIds     []string        `json:"seatIds"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
	Status      string          `json:"status"`
}

type BookingResponse struct {
	Booking Booking `json:"booking"`
}
