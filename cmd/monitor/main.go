package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skyvela-monitor/internal/domain/repository"
	"skyvela-monitor/internal/infrastructure/config"
	"skyvela-monitor/internal/infrastructure/oauth"
	"skyvela-monitor/internal/infrastructure/persistence"
	"skyvela-monitor/internal/interface/httpapi"
	"skyvela-monitor/internal/interface/mailer"
	gormRepo "skyvela-monitor/internal/interface/repository"
	"skyvela-monitor/internal/usecase"
	"skyvela-monitor/pkg/logger"
	"skyvela-monitor/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	continuous := flag.Bool("continuous", false, "keep monitoring on an interval instead of running one cycle")
	flag.Parse()

	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Skyvela budget monitor")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up MongoDB connection for the price-check audit trail
	log.Info("Connecting to MongoDB")
	mongoClient, mongoDB, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Set up repositories
	requestRepo := gormRepo.NewGormBudgetRequestRepository(gormDB)
	userRepo := gormRepo.NewGormUserRepository(gormDB)
	passportRepo := gormRepo.NewGormPassportRepository(gormDB)
	bookingRepo := gormRepo.NewGormBookingRepository(gormDB)
	priceCheckRepo := gormRepo.NewMongoPriceCheckRepository(mongoDB, log)

	// Set up Amadeus OAuth and the flight-offers client
	amadeusOAuth := oauth.NewAmadeusOAuth(
		cfg.AmadeusClientID,
		cfg.AmadeusClientSecret,
		cfg.AmadeusBaseURL,
		log,
	)
	flightSearch := gormRepo.NewAmadeusRepository(
		cfg.AmadeusBaseURL,
		amadeusOAuth.GetTokenSource(ctx),
		cfg.SearchTimeout,
		cfg.MaxOffers,
		log,
	)

	// Prefer the Gmail API when credentials are present, SMTP otherwise
	var notifier repository.MailerRepository
	if cfg.GmailClientID != "" && cfg.GmailRefreshToken != "" {
		gmailOAuth := oauth.NewGmailOAuth(
			cfg.GmailClientID,
			cfg.GmailClientSecret,
			cfg.GmailRefreshToken,
			log,
		)
		notifier, err = mailer.NewGmailMailer(ctx, gmailOAuth.GetTokenSource(ctx), cfg.FromEmail, log)
		if err != nil {
			log.Fatal("Failed to create Gmail mailer", "error", err)
		}
	} else {
		notifier = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail, log)
	}

	m := metrics.NewMetrics("skyvela")

	autoBooker := usecase.NewAutoBooker(bookingRepo, log)
	monitor := usecase.NewPriceMonitor(
		requestRepo,
		userRepo,
		passportRepo,
		flightSearch,
		notifier,
		priceCheckRepo,
		autoBooker,
		m,
		log,
		usecase.MonitorConfig{
			CheckInterval: cfg.CheckInterval,
			RequestDelay:  cfg.RequestDelay,
			ErrorBackoff:  cfg.ErrorBackoff,
			SearchTimeout: cfg.SearchTimeout,
			MaxOffers:     cfg.MaxOffers,
		},
	)

	// Set up HTTP server for metrics, health and manual checks
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	mux.Handle("/api/v1/budget-requests/check", httpapi.NewCheckHandler(monitor, log))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Run the monitor in a goroutine so signals stay responsive
	done := make(chan struct{})
	go func() {
		defer close(done)
		if *continuous {
			monitor.Run(ctx)
			return
		}
		if err := monitor.RunOnce(ctx); err != nil {
			log.Error("Monitoring cycle failed", "error", err)
		}
	}()

	// Wait for interrupt signal or, in one-shot mode, cycle completion
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		log.Info("Received signal", "signal", sig)
		cancel()
		<-done
	case <-done:
		if *continuous {
			log.Info("Monitor exited")
		} else {
			log.Info("One-shot cycle finished")
		}
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Skyvela budget monitor stopped")
}
