package app

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/reeltime/seat-reservation/api"
	"github.com/reeltime/seat-reservation/internal/domain"
	"github.com/reeltime/seat-reservation/internal/reservation"
)

// CreateShowtimeHandler registers a showtime: its seat layout, its price
// table and which seats start out booked. Seat generation is deterministic,
// so the same request always produces the same grid.
func (app *application) CreateShowtimeHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateShowtimeRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	prices, err := domain.NewPriceTable(
		decimal.NewFromFloat(input.Prices.Standard),
		decimal.NewFromFloat(input.Prices.Premium),
		decimal.NewFromFloat(input.Prices.Vip),
	)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	layout := domain.DefaultLayout()
	if len(input.Rows) > 0 {
		layout = toLayout(input.Rows)
	}

	booked := domain.NoneBooked
	switch {
	case len(input.BookedSeatIds) > 0:
		booked = domain.SeatsBooked(input.BookedSeatIds...)
	case input.BookedRatio > 0:
		booked = domain.RatioBooked(input.BookedRatio, input.BookedSeed)
	}

	seatMap, err := domain.Generate(layout, booked)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	engine := reservation.NewEngine(input.ShowtimeId, seatMap, prices, app.engineOptions()...)

	err = app.registry.Add(engine)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	logger.Info("showtime registered", "showtime_id", input.ShowtimeId, "seats", seatMap.Size())

	resp := api.ShowtimeResponse{
		ShowtimeId: input.ShowtimeId,
		SeatCount:  seatMap.Size(),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toLayout(rows []api.RowConfig) domain.Layout {
	layout := domain.Layout{Rows: make([]domain.RowLayout, len(rows))}

	for i, row := range rows {
		layout.Rows[i] = domain.RowLayout{
			Label:    row.Label,
			Seats:    row.Seats,
			Category: domain.Category(row.Category),
		}
	}

	return layout
}
