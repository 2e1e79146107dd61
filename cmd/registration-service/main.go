package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ywel/mrz/internal/registration/events"
	"github.com/ywel/mrz/internal/registration/handler"
	"github.com/ywel/mrz/internal/registration/mrz"
	"github.com/ywel/mrz/internal/registration/ocr"
	"github.com/ywel/mrz/internal/registration/repository"
	"github.com/ywel/mrz/internal/registration/service"
	"github.com/ywel/mrz/internal/registration/storage"
	"github.com/ywel/mrz/pkg/config"
	"github.com/ywel/mrz/pkg/database"
	"github.com/ywel/mrz/pkg/httputil"
	"github.com/ywel/mrz/pkg/logger"
	"github.com/ywel/mrz/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("registration-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("registration-service", cfg.Server.Environment)
	log.Info().Msg("starting Registration Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewRegistrationEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Assemble OCR engines in configured fallback order
	engines := buildEngines(&cfg.OCR, log)
	if len(engines) == 0 {
		log.Fatal().Msg("no OCR engine configured")
	}

	// Initialize MRZ decoder, job store, repository, service
	decoder := mrz.NewDecoder()
	jobs := storage.NewJobStore(cfg.Scan.JobTTL)
	repo := repository.NewRegistrationRepository(db)
	svc := service.NewService(engines, decoder, jobs, repo, publisher, log)
	h := handler.NewHandler(svc, cfg.Scan.MaxUploadBytes, log)

	// Create router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "registration-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API endpoints
	r.Route("/api/v1", func(r chi.Router) {
		h.Routes(r)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// buildEngines constructs OCR engines in the configured fallback order.
// Unknown engine names are skipped with a warning so a typo in config
// degrades instead of crashing.
func buildEngines(cfg *config.OCRConfig, log *logger.Logger) []ocr.Engine {
	var engines []ocr.Engine
	for _, name := range cfg.Engines {
		switch name {
		case "remote":
			if cfg.RemoteURL == "" {
				log.Warn().Msg("remote OCR engine configured without MRZ_OCR_REMOTE_URL, skipping")
				continue
			}
			engines = append(engines, ocr.NewRemoteEngine(cfg.RemoteURL))
		case "tesseract":
			engines = append(engines, ocr.NewTesseractEngine(cfg.Language))
		case "text":
			engines = append(engines, ocr.NewTextEngine())
		default:
			log.Warn().Str("engine", name).Msg("unknown OCR engine, skipping")
		}
	}
	return engines
}
