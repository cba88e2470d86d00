package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/reeltime/seat-reservation/api"
	"github.com/reeltime/seat-reservation/internal/clock"
	"github.com/reeltime/seat-reservation/internal/event"
	"github.com/reeltime/seat-reservation/internal/mailer"
	"github.com/reeltime/seat-reservation/internal/reservation"
	appvalidator "github.com/reeltime/seat-reservation/internal/validator"
)

func newTestApplication(opts ...func(*application)) *application {
	sessionManager := scs.New()
	sessionManager.Cookie.Name = "session_id"

	app := &application{
		config: config{
			env:           "test",
			holdDuration:  300 * time.Second,
			sweepInterval: reservation.DefaultSweepInterval,
		},
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator:      appvalidator.NewValidator(),
		mailer:         mailer.NewMockMailer(),
		sessionManager: sessionManager,
		clock:          clock.NewFixed(time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)),
		events:         event.NewRecorder(),
		registry:       reservation.NewRegistry(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// testClient sends requests through the full middleware chain and carries the
// session cookie between calls, so consecutive requests act as one booker.
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newTestClient(t *testing.T, app *application) *testClient {
	return &testClient{t: t, handler: app.routes()}
}

func (c *testClient) do(method, url string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")

	for _, cookie := range c.cookies {
		r.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, r)

	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}

	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}

	return v
}

func decodeErrorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	return decodeJSON[api.ErrorResponse](t, w).Message
}

func defaultShowtimeRequest(showtimeID string) api.CreateShowtimeRequest {
	return api.CreateShowtimeRequest{
		ShowtimeId: showtimeID,
		Prices:     api.PriceConfig{Standard: 10, Premium: 15},
	}
}
