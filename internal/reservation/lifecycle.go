package reservation

import "github.com/reeltime/seat-reservation/internal/domain"

// FlowState tracks a single booking attempt through the one-directional
// lifecycle: SeatSelection -> Payment -> Confirmed, with Expired and
// Cancelled as terminal alternatives. There is no path back from Payment to
// SeatSelection other than abandoning the attempt and starting a new one.
type FlowState string

const (
	FlowSeatSelection FlowState = "SeatSelection"
	FlowPayment       FlowState = "Payment"
	FlowConfirmed     FlowState = "Confirmed"
	FlowExpired       FlowState = "Expired"
	FlowCancelled     FlowState = "Cancelled"
)

func (s FlowState) Terminal() bool {
	switch s {
	case FlowConfirmed, FlowExpired, FlowCancelled:
		return true
	default:
		return false
	}
}

// flow is one booking attempt: the lifecycle state plus the hold session it
// owns. A confirmed flow additionally carries its booking.
type flow struct {
	state   FlowState
	hold    *domain.HoldSession
	booking *domain.Booking
}

// canMutateSeats reports whether seat selection changes are allowed. Toggling
// is only legal while picking seats; once the booker proceeded to payment the
// selection is fixed.
func (f *flow) canMutateSeats() bool {
	return f.state == FlowSeatSelection
}

// toPayment advances from SeatSelection once at least one seat is held.
func (f *flow) toPayment() error {
	if f.state != FlowSeatSelection {
		return domain.ErrInvalidState
	}

	if f.hold.State() != domain.HoldStateActive {
		return domain.ErrEmptySelection
	}

	f.state = FlowPayment

	return nil
}

// toConfirmed finishes the attempt with its booking. Only reachable from
// Payment.
func (f *flow) toConfirmed(booking *domain.Booking) error {
	if f.state != FlowPayment {
		return domain.ErrInvalidState
	}

	f.state = FlowConfirmed
	f.booking = booking

	return nil
}

func (f *flow) toExpired() {
	if !f.state.Terminal() {
		f.state = FlowExpired
	}
}

func (f *flow) toCancelled() {
	if !f.state.Terminal() {
		f.state = FlowCancelled
	}
}
