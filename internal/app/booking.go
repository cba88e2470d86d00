package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/reeltime/seat-reservation/api"
	"github.com/reeltime/seat-reservation/internal/domain"
	"github.com/reeltime/seat-reservation/internal/ticket"
)

func (app *application) GetHoldHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID := chi.URLParam(r, "showtimeID")

	engine, err := app.registry.Get(showtimeID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	sessionID := app.sessionManager.Token(r.Context())

	resp := api.HoldResponse{
		Hold: toApiHold(engine.Hold(sessionID)),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ProceedToPaymentHandler fixes the current selection and moves the booking
// attempt into payment. The hold timer keeps running; taking too long to pay
// expires the attempt.
func (app *application) ProceedToPaymentHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID := chi.URLParam(r, "showtimeID")

	engine, err := app.registry.Get(showtimeID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	sessionID := app.sessionManager.Token(r.Context())

	err = engine.ProceedToPayment(r.Context(), sessionID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	resp := api.HoldResponse{
		Hold: toApiHold(engine.Hold(sessionID)),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ConfirmBookingHandler turns the held seats into a permanent booking and
// emails the booker their reference.
func (app *application) ConfirmBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeID := chi.URLParam(r, "showtimeID")

	engine, err := app.registry.Get(showtimeID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	var input api.ConfirmBookingRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	sessionID := app.sessionManager.Token(r.Context())

	booking, err := engine.Confirm(r.Context(), sessionID)
	if err != nil {
		logger.Warn("booking confirmation rejected", "showtime_id", showtimeID, "error", err)
		app.reservationErrorResponse(w, r, err)
		return
	}

	app.background(func() {
		data := map[string]any{
			"Reference": booking.Reference,
			"Seats":     strings.Join(booking.SeatIDs, ", "),
			"Total":     booking.TotalAmount.StringFixed(2),
		}

		err := app.mailer.Send(input.Email, "booking_confirmation.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send booking confirmation email",
				"reference", booking.Reference, "error", err)
		}
	})

	resp := api.BookingResponse{
		Booking: toApiBooking(booking),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CancelHoldHandler abandons the current booking attempt and releases its
// seats immediately.
func (app *application) CancelHoldHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID := chi.URLParam(r, "showtimeID")

	engine, err := app.registry.Get(showtimeID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	sessionID := app.sessionManager.Token(r.Context())

	err = engine.Cancel(r.Context(), sessionID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTicketHandler serves the PDF ticket for a confirmed booking.
func (app *application) GetTicketHandler(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	var booking *domain.Booking
	for _, engine := range app.registry.All() {
		b, err := engine.BookingByReference(reference)
		if err == nil {
			booking = b
			break
		}
	}

	if booking == nil {
		app.notFoundResponseWithErr(w, r, fmt.Errorf("%w: %s", domain.ErrBookingNotFound, reference))
		return
	}

	pdf, err := ticket.GeneratePDF(booking)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ticket-"+reference+".pdf"))
	w.Write(pdf)
}

func toApiBooking(booking *domain.Booking) api.Booking {
	return api.Booking{
		Reference:   booking.Reference,
		ShowtimeId:  booking.ShowtimeID,
		SeatIds:     booking.SeatIDs,
		TotalAmount: booking.TotalAmount,
		CreatedAt:   booking.CreatedAt,
		Status:      string(booking.Status),
	}
}
