package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reeltime/seat-reservation/api"
	"github.com/reeltime/seat-reservation/internal/domain"
	"github.com/reeltime/seat-reservation/internal/reservation"
)

func (app *application) GetSeatMapByShowtime(w http.ResponseWriter, r *http.Request) {
	showtimeID := chi.URLParam(r, "showtimeID")

	engine, err := app.registry.Get(showtimeID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(showtimeID, engine.Grid())

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ToggleSeatHandler selects an available seat into the caller's hold, or
// releases one the caller already holds. Contended seats fail fast; the
// booker picks another seat.
func (app *application) ToggleSeatHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeID := chi.URLParam(r, "showtimeID")
	seatID := chi.URLParam(r, "seatID")

	engine, err := app.registry.Get(showtimeID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	sessionID := app.sessionManager.Token(r.Context())

	result, err := engine.ToggleSeat(r.Context(), sessionID, seatID)
	if err != nil {
		logger.Warn("seat toggle rejected", "showtime_id", showtimeID, "seat_id", seatID, "error", err)
		app.reservationErrorResponse(w, r, err)
		return
	}

	resp := api.ToggleSeatResponse{
		Result: string(result),
		Hold:   toApiHold(engine.Hold(sessionID)),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(showtimeID string, grid [][]*domain.Seat) api.SeatMapResponse {
	seatRows := make([]api.SeatRow, len(grid))

	for i, row := range grid {
		seatRow := api.SeatRow{Row: row[0].Row, Seats: make([]api.Seat, len(row))}

		for j, seat := range row {
			seatRow.Seats[j] = api.Seat{
				Id:       seat.ID(),
				Row:      seat.Row,
				Number:   seat.Number,
				Category: string(seat.Category),
				Status:   seat.Status().String(),
			}
		}

		seatRows[i] = seatRow
	}

	return api.SeatMapResponse{
		ShowtimeId: showtimeID,
		SeatRows:   seatRows,
	}
}

func toApiHold(view reservation.HoldView) api.Hold {
	seatIds := view.SeatIDs
	if seatIds == nil {
		seatIds = []string{}
	}

	return api.Hold{
		SeatIds:       seatIds,
		TotalPrice:    view.TotalPrice,
		TimeRemaining: int(view.TimeRemaining.Seconds()),
		State:         string(view.HoldState),
		FlowState:     string(view.FlowState),
	}
}
