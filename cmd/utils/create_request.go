package main

import (
	"context"
	"flag"
	"time"

	"skyvela-monitor/internal/domain/entity"
	"skyvela-monitor/internal/infrastructure/config"
	gormRepo "skyvela-monitor/internal/interface/repository"
	"skyvela-monitor/pkg/logger"
	"skyvela-monitor/pkg/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Seeds a budget request for a user so the monitor has something to chew on.
// Example:
//
//	go run ./cmd/utils -user 1 -origin JFK -destination LAX -min 100 -max 500 -mode auto_book
func main() {
	userID := flag.Uint("user", 1, "user id owning the request")
	origin := flag.String("origin", "JFK", "origin airport code")
	destination := flag.String("destination", "LAX", "destination airport code")
	minBudget := flag.Float64("min", 100, "minimum budget")
	maxBudget := flag.Float64("max", 500, "maximum budget")
	mode := flag.String("mode", entity.ModeAutoBook, "auto_book or alert_only")
	departure := flag.String("departure", "", "departure date (2006-01-02), defaults to 30 days out")
	flag.Parse()

	log := logger.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	departureDate := time.Now().AddDate(0, 0, 30).Truncate(24 * time.Hour)
	if *departure != "" {
		departureDate, err = time.Parse(utils.DATE_LAYOUT, *departure)
		if err != nil {
			log.Fatal("Invalid departure date", "value", *departure, "error", err)
		}
	}

	request := &entity.BudgetRequest{
		UserID:        *userID,
		Origin:        *origin,
		Destination:   *destination,
		DepartureDate: &departureDate,
		MinBudget:     *minBudget,
		MaxBudget:     *maxBudget,
		Mode:          *mode,
		Status:        entity.StatusPending,
		Currency:      utils.DefaultCurrency,
	}

	requestRepo := gormRepo.NewGormBudgetRequestRepository(gormDB)
	if err := requestRepo.Create(context.Background(), request); err != nil {
		log.Fatal("Failed to create budget request", "error", err)
	}

	log.Info("Budget request created",
		"id", request.ID,
		"route", request.Origin+"-"+request.Destination,
		"budget", request.MaxBudget,
		"mode", request.Mode)
}
