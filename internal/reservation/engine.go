package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reeltime/seat-reservation/internal/clock"
	"github.com/reeltime/seat-reservation/internal/domain"
	"github.com/reeltime/seat-reservation/internal/event"
)

type ToggleResult string

const (
	Selected   ToggleResult = "Selected"
	Deselected ToggleResult = "Deselected"
)

// Engine serializes every hold, release and confirm against one showtime's
// seat map. It is the only component that calls SeatMap.TrySetStatus, so for
// any seat the sequence of successful status transitions is totally ordered.
// Contended selects fail fast with ErrSeatUnavailable; the engine never
// queues a booker waiting for a seat to free up.
type Engine struct {
	showtimeID string
	seatMap    *domain.SeatMap
	prices     domain.PriceTable

	mu    sync.Mutex
	flows map[string]*flow

	bookings sync.Map // booking reference -> *domain.Booking

	clock        clock.Clock
	events       event.Publisher
	logger       *slog.Logger
	holdDuration time.Duration
}

type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithPublisher(p event.Publisher) Option {
	return func(e *Engine) { e.events = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithHoldDuration(d time.Duration) Option {
	return func(e *Engine) { e.holdDuration = d }
}

func NewEngine(showtimeID string, seatMap *domain.SeatMap, prices domain.PriceTable, opts ...Option) *Engine {
	e := &Engine{
		showtimeID:   showtimeID,
		seatMap:      seatMap,
		prices:       prices,
		flows:        make(map[string]*flow),
		clock:        clock.NewSystem(),
		events:       event.NewLogPublisher(slog.Default()),
		logger:       slog.Default(),
		holdDuration: domain.HoldDuration,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) ShowtimeID() string {
	return e.showtimeID
}

// flowFor returns the caller's current booking attempt, starting a fresh one
// when none exists yet or the previous attempt reached a terminal state.
// Callers must hold e.mu.
func (e *Engine) flowFor(sessionID string) *flow {
	f, ok := e.flows[sessionID]
	if !ok || f.state.Terminal() {
		f = &flow{
			state: FlowSeatSelection,
			hold:  domain.NewHoldSession(sessionID, e.holdDuration),
		}
		e.flows[sessionID] = f
	}

	return f
}

// ToggleSeat selects an available seat into the session's hold, or releases a
// seat the session already holds. A seat that is booked, or held by another
// session, fails with ErrSeatUnavailable without mutating anything; losing
// the compare-and-set race counts as unavailable too, there is no retry or
// seat-stealing.
func (e *Engine) ToggleSeat(ctx context.Context, sessionID, seatID string) (ToggleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seat, err := e.seatMap.Get(seatID)
	if err != nil {
		return "", err
	}

	f := e.flowFor(sessionID)
	if !f.canMutateSeats() {
		return "", domain.ErrInvalidState
	}

	now := e.clock.Now()

	if f.hold.Holds(seatID) {
		f.hold.RemoveSeat(seatID)

		if !e.seatMap.TrySetStatus(seatID, domain.Held, domain.Available) {
			// The session believed it held the seat but the map disagrees.
			e.logger.Error("seat release mismatch on deselect",
				"showtime_id", e.showtimeID, "seat_id", seatID, "session_id", sessionID)
		}

		e.publish(ctx, domain.Event{
			Type:       domain.EventSeatDeselected,
			ShowtimeID: e.showtimeID,
			SessionID:  sessionID,
			SeatID:     seatID,
			Total:      f.hold.TotalPrice(),
			OccurredAt: now,
		})

		return Deselected, nil
	}

	switch seat.Status() {
	case domain.Booked:
		return "", fmt.Errorf("%w: seat %s", domain.ErrSeatUnavailable, seatID)
	case domain.Held:
		return "", fmt.Errorf("%w: seat %s", domain.ErrSeatUnavailable, seatID)
	}

	if f.hold.Size() >= domain.MaxSeatsPerHold {
		return "", domain.ErrCapacityExceeded
	}

	unitPrice, err := e.prices.UnitPrice(seat.Category)
	if err != nil {
		return "", err
	}

	if !e.seatMap.TrySetStatus(seatID, domain.Available, domain.Held) {
		// Another caller won the race between the status read and the CAS.
		return "", fmt.Errorf("%w: seat %s", domain.ErrSeatUnavailable, seatID)
	}

	if err := f.hold.AddSeat(seatID, unitPrice, now); err != nil {
		e.seatMap.TrySetStatus(seatID, domain.Held, domain.Available)
		return "", err
	}

	e.publish(ctx, domain.Event{
		Type:       domain.EventSeatSelected,
		ShowtimeID: e.showtimeID,
		SessionID:  sessionID,
		SeatID:     seatID,
		Total:      f.hold.TotalPrice(),
		OccurredAt: now,
	})

	return Selected, nil
}

// ProceedToPayment fixes the selection and moves the flow into Payment. The
// hold timer keeps running; expiry during payment ends the attempt.
func (e *Engine) ProceedToPayment(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.flowFor(sessionID)

	if f.hold.IsExpired(e.clock.Now()) {
		e.expireLocked(ctx, sessionID, f)
		return domain.ErrHoldExpired
	}

	return f.toPayment()
}

// Confirm turns the session's hold into an immutable booking. Every held seat
// moves Held -> Booked; if any transition fails the whole confirm aborts, the
// session is forcibly released and ErrInternalInconsistency surfaces rather
// than a partial booking.
func (e *Engine) Confirm(ctx context.Context, sessionID string) (*domain.Booking, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.flows[sessionID]
	if !ok {
		return nil, domain.ErrEmptySelection
	}

	if f.state != FlowPayment {
		return nil, domain.ErrInvalidState
	}

	now := e.clock.Now()

	if f.hold.State() != domain.HoldStateActive {
		return nil, domain.ErrEmptySelection
	}

	if f.hold.IsExpired(now) {
		e.expireLocked(ctx, sessionID, f)
		return nil, domain.ErrHoldExpired
	}

	seatIDs := f.hold.SeatIDs()

	var booked []string
	for _, seatID := range seatIDs {
		if !e.seatMap.TrySetStatus(seatID, domain.Held, domain.Booked) {
			e.rollbackConfirmLocked(ctx, sessionID, f, booked)
			return nil, fmt.Errorf("%w: seat %s was not held by this session", domain.ErrInternalInconsistency, seatID)
		}

		booked = append(booked, seatID)
	}

	booking := domain.NewBooking(e.showtimeID, seatIDs, f.hold.TotalPrice(), now)
	e.bookings.Store(booking.Reference, &booking)

	f.hold.Clear()
	if err := f.toConfirmed(&booking); err != nil {
		return nil, err
	}

	e.publish(ctx, domain.Event{
		Type:       domain.EventBookingConfirmed,
		ShowtimeID: e.showtimeID,
		SessionID:  sessionID,
		SeatIDs:    booking.SeatIDs,
		Reference:  booking.Reference,
		Total:      booking.TotalAmount,
		OccurredAt: now,
	})

	return &booking, nil
}

// rollbackConfirmLocked undoes a partially applied confirm: seats already
// moved to Booked go straight back to Available along with the rest of the
// hold, and the session ends so no seat is left in an indeterminate state.
func (e *Engine) rollbackConfirmLocked(ctx context.Context, sessionID string, f *flow, booked []string) {
	for _, seatID := range booked {
		e.seatMap.TrySetStatus(seatID, domain.Booked, domain.Available)
	}

	e.logger.Error("confirm aborted, selection released",
		"showtime_id", e.showtimeID, "session_id", sessionID, "rolled_back", len(booked))

	e.expireLocked(ctx, sessionID, f)
}

// Cancel releases the session's seats immediately. It is the expiry path
// without the deadline check: the booker abandoned the attempt.
func (e *Engine) Cancel(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.flows[sessionID]
	if !ok || f.state.Terminal() {
		return domain.ErrEmptySelection
	}

	e.releaseSeatsLocked(f)
	f.hold.Clear()
	f.toCancelled()

	return nil
}

// ExpireIfDue releases the session's hold when its deadline has passed and
// reports whether it did. Expiry is driven by the sweeper, never implicitly
// by reads.
func (e *Engine) ExpireIfDue(ctx context.Context, sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.flows[sessionID]
	if !ok || !f.hold.IsExpired(e.clock.Now()) {
		return false
	}

	e.expireLocked(ctx, sessionID, f)

	return true
}

// ExpireDue runs the expiry check across every session and returns how many
// holds lapsed.
func (e *Engine) ExpireDue(ctx context.Context) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	expired := 0

	for sessionID, f := range e.flows {
		if f.hold.IsExpired(now) {
			e.expireLocked(ctx, sessionID, f)
			expired++
		}
	}

	return expired
}

// expireLocked releases every seat in the hold, tolerating seats that were
// already moved elsewhere, then ends the attempt and announces the expiry.
// Callers must hold e.mu.
func (e *Engine) expireLocked(ctx context.Context, sessionID string, f *flow) {
	seatIDs := f.hold.SeatIDs()

	f.hold.Expire()
	e.releaseSeatsLocked(f)
	f.hold.Clear()
	f.toExpired()

	e.publish(ctx, domain.Event{
		Type:       domain.EventHoldExpired,
		ShowtimeID: e.showtimeID,
		SessionID:  sessionID,
		SeatIDs:    seatIDs,
		OccurredAt: e.clock.Now(),
	})
}

func (e *Engine) releaseSeatsLocked(f *flow) {
	for _, seatID := range f.hold.SeatIDs() {
		// A failed transition means the seat already moved elsewhere;
		// treat it as already released.
		e.seatMap.TrySetStatus(seatID, domain.Held, domain.Available)
	}
}

func (e *Engine) publish(ctx context.Context, ev domain.Event) {
	if err := e.events.Publish(ctx, ev); err != nil {
		e.logger.Error("failed to publish reservation event", "type", ev.Type, "error", err)
	}
}

// Grid returns the live seat rows for rendering a seat map. Status reads are
// lock-free.
func (e *Engine) Grid() [][]*domain.Seat {
	return e.seatMap.Rows()
}

// HoldView is a point-in-time snapshot of one session's booking attempt.
type HoldView struct {
	SeatIDs       []string
	TotalPrice    decimal.Decimal
	TimeRemaining time.Duration
	HoldState     domain.HoldState
	FlowState     FlowState
}

// Hold snapshots the caller's current attempt. A session that never selected
// anything reads as an empty SeatSelection attempt.
func (e *Engine) Hold(sessionID string) HoldView {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.flows[sessionID]
	if !ok {
		return HoldView{
			TotalPrice: decimal.Zero,
			HoldState:  domain.HoldStateEmpty,
			FlowState:  FlowSeatSelection,
		}
	}

	return HoldView{
		SeatIDs:       f.hold.SeatIDs(),
		TotalPrice:    f.hold.TotalPrice(),
		TimeRemaining: f.hold.TimeRemaining(e.clock.Now()),
		HoldState:     f.hold.State(),
		FlowState:     f.state,
	}
}

// BookingByReference looks up a confirmed booking, for ticket retrieval.
func (e *Engine) BookingByReference(reference string) (*domain.Booking, error) {
	v, ok := e.bookings.Load(reference)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBookingNotFound, reference)
	}

	return v.(*domain.Booking), nil
}
