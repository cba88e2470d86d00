package domain

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
)

// Booking is the immutable record produced by a successful confirm. Once a
// booking exists, its seats stay Booked for the lifetime of the showtime;
// re-opening them is an external operation outside this engine.
type Booking struct {
	ID          string
	Reference   string
	ShowtimeID  string
	SeatIDs     []string
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	Status      BookingStatus
}

func NewBooking(showtimeID string, seatIDs []string, total decimal.Decimal, now time.Time) Booking {
	ids := make([]string, len(seatIDs))
	copy(ids, seatIDs)

	return Booking{
		ID:          uuid.New().String(),
		Reference:   newBookingReference(),
		ShowtimeID:  showtimeID,
		SeatIDs:     ids,
		TotalAmount: total,
		CreatedAt:   now,
		Status:      BookingConfirmed,
	}
}

const referenceChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newBookingReference builds a short human-readable reference like RT-4K7PQ2,
// printed on tickets and confirmation emails. Uniqueness is anchored by the
// booking id, not the reference.
func newBookingReference() string {
	ref := make([]byte, 0, 9)
	ref = append(ref, "RT-"...)

	for i := 0; i < 6; i++ {
		ref = append(ref, referenceChars[rand.Intn(len(referenceChars))])
	}

	return string(ref)
}
