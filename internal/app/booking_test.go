package app

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/reeltime/seat-reservation/api"
	"github.com/reeltime/seat-reservation/internal/clock"
	"github.com/reeltime/seat-reservation/internal/mailer"
)

type BookingTestSuite struct {
	suite.Suite
	app    *application
	client *testClient
	clk    *clock.Fixed
	mails  *mailer.MockMailer
}

func TestBookingSuite(t *testing.T) {
	suite.Run(t, new(BookingTestSuite))
}

func (s *BookingTestSuite) SetupTest() {
	s.app = newTestApplication()
	s.client = newTestClient(s.T(), s.app)
	s.clk = s.app.clock.(*clock.Fixed)
	s.mails = s.app.mailer.(*mailer.MockMailer)

	w := s.client.do(http.MethodPost, "/showtimes", defaultShowtimeRequest("matrix-2100"))
	s.Require().Equal(http.StatusCreated, w.Code)
}

func (s *BookingTestSuite) selectSeats(seatIDs ...string) {
	s.T().Helper()

	for _, seatID := range seatIDs {
		w := s.client.do(http.MethodPost, "/showtimes/matrix-2100/seats/"+seatID, nil)
		s.Require().Equal(http.StatusOK, w.Code)
	}
}

func (s *BookingTestSuite) TestFullBookingFlow() {
	s.selectSeats("A1", "A2")

	w := s.client.do(http.MethodGet, "/showtimes/matrix-2100/hold", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	hold := decodeJSON[api.HoldResponse](s.T(), w).Hold
	s.Equal([]string{"A1", "A2"}, hold.SeatIds)
	s.Equal("30", hold.TotalPrice.String())
	s.Equal("SeatSelection", hold.FlowState)

	w = s.client.do(http.MethodPost, "/showtimes/matrix-2100/checkout", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	hold = decodeJSON[api.HoldResponse](s.T(), w).Hold
	s.Equal("Payment", hold.FlowState)

	w = s.client.do(http.MethodPost, "/showtimes/matrix-2100/confirmation",
		api.ConfirmBookingRequest{Email: "alice@example.com"})
	s.Require().Equal(http.StatusCreated, w.Code)

	booking := decodeJSON[api.BookingResponse](s.T(), w).Booking
	s.Regexp(`^RT-[A-Z0-9]{6}$`, booking.Reference)
	s.Equal("matrix-2100", booking.ShowtimeId)
	s.Equal([]string{"A1", "A2"}, booking.SeatIds)
	s.Equal("30", booking.TotalAmount.String())
	s.Equal("Confirmed", booking.Status)

	// The confirmation email is sent in the background.
	s.Require().Eventually(func() bool {
		return len(s.mails.GetSentEmails()) == 1
	}, time.Second, 10*time.Millisecond)

	sent := s.mails.GetSentEmails()[0]
	s.Equal("alice@example.com", sent.Recipient)
	s.Equal("booking_confirmation.tmpl", sent.TemplateFile)

	// Confirmed seats are gone for everyone.
	rival := newTestClient(s.T(), s.app)
	w = rival.do(http.MethodPost, "/showtimes/matrix-2100/seats/A1", nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *BookingTestSuite) TestConfirmationRequiresValidEmail() {
	s.selectSeats("A1")

	w := s.client.do(http.MethodPost, "/showtimes/matrix-2100/checkout", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.client.do(http.MethodPost, "/showtimes/matrix-2100/confirmation",
		api.ConfirmBookingRequest{Email: "not-an-email"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	resp := decodeJSON[api.ValidationErrorResponse](s.T(), w)
	s.Require().Len(resp.ValidationErrors, 1)
	s.Equal("Email", resp.ValidationErrors[0].Field)
}

func (s *BookingTestSuite) TestConfirmationRequiresCheckoutFirst() {
	s.selectSeats("A1")

	w := s.client.do(http.MethodPost, "/showtimes/matrix-2100/confirmation",
		api.ConfirmBookingRequest{Email: "alice@example.com"})
	s.Equal(http.StatusConflict, w.Code)
	s.Empty(s.mails.GetSentEmails())
}

func (s *BookingTestSuite) TestCheckoutWithEmptySelection() {
	w := s.client.do(http.MethodPost, "/showtimes/matrix-2100/checkout", nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *BookingTestSuite) TestCancelReleasesSeats() {
	s.selectSeats("F1")

	w := s.client.do(http.MethodDelete, "/showtimes/matrix-2100/hold", nil)
	s.Require().Equal(http.StatusNoContent, w.Code)

	// Another booker can grab the released seat straight away.
	rival := newTestClient(s.T(), s.app)
	w = rival.do(http.MethodPost, "/showtimes/matrix-2100/seats/F1", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *BookingTestSuite) TestCancelWithoutHold() {
	w := s.client.do(http.MethodDelete, "/showtimes/matrix-2100/hold", nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *BookingTestSuite) TestExpiredHoldCannotBeConfirmed() {
	s.selectSeats("A1")

	w := s.client.do(http.MethodPost, "/showtimes/matrix-2100/checkout", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	s.clk.Advance(301 * time.Second)

	w = s.client.do(http.MethodPost, "/showtimes/matrix-2100/confirmation",
		api.ConfirmBookingRequest{Email: "alice@example.com"})
	s.Equal(http.StatusConflict, w.Code)

	// The seat went back on sale.
	rival := newTestClient(s.T(), s.app)
	w = rival.do(http.MethodPost, "/showtimes/matrix-2100/seats/A1", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *BookingTestSuite) TestHoldCountdown() {
	s.selectSeats("A1")

	s.clk.Advance(120 * time.Second)

	w := s.client.do(http.MethodGet, "/showtimes/matrix-2100/hold", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	hold := decodeJSON[api.HoldResponse](s.T(), w).Hold
	s.Equal(180, hold.TimeRemaining)
}

func (s *BookingTestSuite) TestGetTicket() {
	s.selectSeats("A1")

	w := s.client.do(http.MethodPost, "/showtimes/matrix-2100/checkout", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.client.do(http.MethodPost, "/showtimes/matrix-2100/confirmation",
		api.ConfirmBookingRequest{Email: "alice@example.com"})
	s.Require().Equal(http.StatusCreated, w.Code)

	reference := decodeJSON[api.BookingResponse](s.T(), w).Booking.Reference

	w = s.client.do(http.MethodGet, "/bookings/"+reference+"/ticket", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("application/pdf", w.Header().Get("Content-Type"))
	s.True(len(w.Body.Bytes()) > 4 && string(w.Body.Bytes()[:5]) == "%PDF-", "body is not a PDF")
}

func (s *BookingTestSuite) TestGetTicketForUnknownReference() {
	w := s.client.do(http.MethodGet, "/bookings/RT-ZZZZZZ/ticket", nil)
	s.Equal(http.StatusNotFound, w.Code)
}
