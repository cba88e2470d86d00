package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/reeltime/seat-reservation/internal/clock"
	"github.com/reeltime/seat-reservation/internal/event"
	"github.com/reeltime/seat-reservation/internal/mailer"
	"github.com/reeltime/seat-reservation/internal/reservation"
	appvalidator "github.com/reeltime/seat-reservation/internal/validator"
	"github.com/reeltime/seat-reservation/internal/vcs"
)

var (
	version = vcs.Version()
)

type application struct {
	config         config
	logger         *slog.Logger
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	clock          clock.Clock
	events         event.Publisher
	registry       *reservation.Registry
}

type config struct {
	port          int
	env           string
	holdDuration  time.Duration
	sweepInterval time.Duration
	redis         struct {
		url          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}
	amqp struct {
		url string
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
}

func Run() error {
	// Optional; flags still win over the environment.
	_ = godotenv.Load()

	var cfg config

	flag.IntVar(&cfg.port, "port", 3000, "server port")
	flag.StringVar(&cfg.env, "env", "dev", "Environment (dev|staging|prod)")

	flag.DurationVar(&cfg.holdDuration, "hold-duration", 300*time.Second, "How long a seat hold lasts without confirmation")
	flag.DurationVar(&cfg.sweepInterval, "sweep-interval", reservation.DefaultSweepInterval, "How often expired holds are released")

	flag.StringVar(&cfg.redis.url, "redis-url", os.Getenv("REDIS_URL"), "Redis URL for the session store (in-memory store when empty)")
	flag.IntVar(&cfg.redis.maxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.redis.maxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.redis.maxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.amqp.url, "amqp-url", os.Getenv("AMQP_URL"), "RabbitMQ URL for the event stream (log-only when empty)")

	flag.StringVar(&cfg.smtp.host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", "ReelTime <no-reply@reeltime.example>", "SMTP sender")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	events := event.Publisher(event.NewLogPublisher(logger))
	if cfg.amqp.url != "" {
		amqpPublisher, err := event.NewAMQPPublisher(cfg.amqp.url)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()

		events = event.NewFanout(event.NewLogPublisher(logger), amqpPublisher)
	}

	sessionManager := scs.New()
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	if cfg.redis.url != "" {
		redisClient, err := newRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		sessionManager.Store = goredisstore.New(redisClient)
	}

	app := &application{
		config:         cfg,
		logger:         logger,
		validator:      appvalidator.NewValidator(),
		mailer:         mailer.NewSMTPMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender),
		sessionManager: sessionManager,
		clock:          clock.NewSystem(),
		events:         events,
		registry:       reservation.NewRegistry(),
	}

	return app.run()
}

func newRedisClient(cfg config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.redis.url)
	if err != nil {
		return nil, err
	}

	opts.MaxIdleConns = cfg.redis.maxIdleConns
	opts.MaxActiveConns = cfg.redis.maxOpenConns
	opts.ConnMaxIdleTime = cfg.redis.maxIdleTime

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func (app *application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := reservation.NewSweeper(app.registry, app.config.sweepInterval, app.logger)
	go sweeper.Start(sweeperCtx)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		stopSweeper()
		sweeper.Wait()

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		stopSweeper()
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestUserSession)

	r.Get("/health", app.GetHealth)

	r.Post("/showtimes", app.CreateShowtimeHandler)

	r.Route("/showtimes/{showtimeID}", func(r chi.Router) {
		r.Get("/seats", app.GetSeatMapByShowtime)
		r.Post("/seats/{seatID}", app.ToggleSeatHandler)

		r.Get("/hold", app.GetHoldHandler)
		r.Delete("/hold", app.CancelHoldHandler)

		r.Post("/checkout", app.ProceedToPaymentHandler)
		r.Post("/confirmation", app.ConfirmBookingHandler)
	})

	r.Get("/bookings/{reference}/ticket", app.GetTicketHandler)

	return r
}

func (app *application) engineOptions() []reservation.Option {
	return []reservation.Option{
		reservation.WithClock(app.clock),
		reservation.WithPublisher(app.events),
		reservation.WithLogger(app.logger),
		reservation.WithHoldDuration(app.config.holdDuration),
	}
}
