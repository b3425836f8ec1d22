package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/config"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/db"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/logger"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/metrics"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/migrations"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/seed"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/store"
)

const (
	requestTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 1 << 20
)

// quoteStore is the persistence the handlers need.
type quoteStore interface {
	Save(ctx context.Context, sub store.Submission, req pricing.Request, res pricing.Result) (store.Record, error)
	Get(ctx context.Context, id string) (store.Record, error)
	List(ctx context.Context, query string) ([]store.Summary, error)
	UpdateStatus(ctx context.Context, id string, status store.Status) error
	Stats(ctx context.Context) (store.Stats, error)
}

type server struct {
	log          *zap.Logger
	quotes       quoteStore
	rates        pricing.RateTable
	now          func() time.Time
	contactEmail string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		_, _ = os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	rates, err := pricing.LoadRateTable(cfg.RatesPath)
	if err != nil {
		log.Fatal("failed to load rate table", zap.String("path", cfg.RatesPath), zap.Error(err))
	}

	database, err := db.Open(context.Background(), cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		applied, err := migrations.Up(context.Background(), database)
		if err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
		log.Info("database migrations applied", zap.Int("count", applied))

		if cfg.SeedDemo {
			stats, err := seed.Run(context.Background(), database, rates, time.Now)
			if err != nil {
				log.Fatal("failed to seed demo quotes", zap.Error(err))
			}
			log.Info("demo quotes seeded", zap.Int("inserts", stats.Inserts), zap.Int("skipped", stats.Skipped))
		}
	}

	srv := &server{
		log:          log,
		quotes:       store.New(database, time.Now),
		rates:        rates,
		now:          time.Now,
		contactEmail: cfg.AdminEmail,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/rates", s.handleRates)
		r.Post("/quotes/estimate", s.handleEstimate)
		r.Post("/quotes", s.handleCreateQuote)
		r.Get("/quotes", s.handleQuotesList)
		r.Get("/quotes/{id}", s.handleQuoteDetail)
		r.Patch("/quotes/{id}/status", s.handleQuoteStatus)
		r.Get("/admin/stats", s.handleStats)
	})
	r.Get("/quotes/{id}/text", s.handleQuoteText)

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
