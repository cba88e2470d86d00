package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// HoldDuration is how long a booker can keep seats held without
	// confirming. The countdown starts when the first seat is added.
	HoldDuration = 300 * time.Second

	// MaxSeatsPerHold caps how many seats a single session can hold.
	MaxSeatsPerHold = 8
)

type HoldState string

const (
	HoldStateEmpty   HoldState = "Empty"
	HoldStateActive  HoldState = "Active"
	HoldStateExpired HoldState = "Expired"
)

type heldSeat struct {
	id        string
	unitPrice decimal.Decimal
}

// HoldSession is a single booker's in-progress seat selection. It is owned by
// exactly one session and is not safe for concurrent use on its own; the
// reservation engine serializes access to it.
type HoldSession struct {
	id        string
	held      []heldSeat
	total     decimal.Decimal
	expiresAt time.Time
	state     HoldState
	duration  time.Duration
}

// NewHoldSession starts an empty session. A non-positive duration falls back
// to HoldDuration.
func NewHoldSession(id string, duration time.Duration) *HoldSession {
	if duration <= 0 {
		duration = HoldDuration
	}

	return &HoldSession{
		id:       id,
		total:    decimal.Zero,
		state:    HoldStateEmpty,
		duration: duration,
	}
}

func (h *HoldSession) ID() string {
	return h.id
}

func (h *HoldSession) State() HoldState {
	return h.state
}

// SeatIDs returns the held seat ids in insertion order.
func (h *HoldSession) SeatIDs() []string {
	ids := make([]string, len(h.held))
	for i, s := range h.held {
		ids[i] = s.id
	}

	return ids
}

func (h *HoldSession) Holds(seatID string) bool {
	for _, s := range h.held {
		if s.id == seatID {
			return true
		}
	}

	return false
}

// TotalPrice is always the sum of the unit prices of the currently held
// seats. It is recomputed on every mutation and never drifts.
func (h *HoldSession) TotalPrice() decimal.Decimal {
	return h.total
}

func (h *HoldSession) Size() int {
	return len(h.held)
}

// AddSeat inserts a seat into the selection. Adding the first seat (re)arms
// the expiry deadline; adding further seats never extends it.
func (h *HoldSession) AddSeat(seatID string, unitPrice decimal.Decimal, now time.Time) error {
	if len(h.held) >= MaxSeatsPerHold {
		return ErrCapacityExceeded
	}

	if h.Holds(seatID) {
		return fmt.Errorf("%w: %s", ErrSeatAlreadyHeld, seatID)
	}

	if len(h.held) == 0 {
		h.expiresAt = now.Add(h.duration)
	}

	h.held = append(h.held, heldSeat{id: seatID, unitPrice: unitPrice})
	h.state = HoldStateActive
	h.recompute()

	return nil
}

// RemoveSeat drops a seat from the selection. Removing a seat that is not
// held is a no-op. When the last seat is removed the session returns to Empty
// and the deadline is cleared, so the next selection starts a fresh window.
func (h *HoldSession) RemoveSeat(seatID string) {
	for i, s := range h.held {
		if s.id == seatID {
			h.held = append(h.held[:i], h.held[i+1:]...)
			break
		}
	}

	h.recompute()

	if len(h.held) == 0 {
		h.state = HoldStateEmpty
		h.expiresAt = time.Time{}
	}
}

func (h *HoldSession) recompute() {
	total := decimal.Zero
	for _, s := range h.held {
		total = total.Add(s.unitPrice)
	}

	h.total = total
}

func (h *HoldSession) ExpiresAt() time.Time {
	return h.expiresAt
}

// TimeRemaining reports how long the hold is still valid, clamped to zero.
func (h *HoldSession) TimeRemaining(now time.Time) time.Duration {
	if h.state != HoldStateActive {
		return 0
	}

	remaining := h.expiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}

	return remaining
}

func (h *HoldSession) IsExpired(now time.Time) bool {
	return h.state == HoldStateActive && !now.Before(h.expiresAt)
}

// Expire marks an active session as expired. The held seats are kept so the
// caller can release them before clearing the session.
func (h *HoldSession) Expire() {
	if h.state == HoldStateActive {
		h.state = HoldStateExpired
	}
}

// Clear forces the session back to Empty regardless of its contents. Used on
// expiry, cancel and confirm, after the seats have been dealt with.
func (h *HoldSession) Clear() {
	h.held = nil
	h.total = decimal.Zero
	h.expiresAt = time.Time{}
	h.state = HoldStateEmpty
}
