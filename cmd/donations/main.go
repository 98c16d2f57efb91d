package main

import (
	donationhandler "bloodbank/internal/donations/handler"
	donationrepository "bloodbank/internal/donations/repository"
	donationservice "bloodbank/internal/donations/service"
	donationvalidator "bloodbank/internal/donations/validator"
	"bloodbank/internal/events"
	inventoryhandler "bloodbank/internal/inventory/handler"
	inventoryrepository "bloodbank/internal/inventory/repository"
	inventoryservice "bloodbank/internal/inventory/service"
	inventoryvalidator "bloodbank/internal/inventory/validator"
	"bloodbank/pkg/app"
	"bloodbank/pkg/config"
	"bloodbank/pkg/contracts"
)

const ServiceName = "donations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Donations service")

	publisher, err := events.NewPublisher(cfg, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	handlers := initHandlers(cfg, publisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers, publisher)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, publisher events.Publisher) []contracts.Handler {
	hospitalRepo := inventoryrepository.NewMongoHospitalRepository(cfg)
	inventory := inventoryservice.NewInventoryService(hospitalRepo, publisher, cfg)
	cfg.Log.Info("Inventory service initialized", "database", cfg.MongoDatabaseName)

	donations := donationservice.NewDonationService(
		donationrepository.NewMongoBookingRepository(cfg),
		donationrepository.NewMongoUnitRepository(cfg),
		donationrepository.NewMongoEventRepository(cfg),
		hospitalRepo,
		inventory,
		donationvalidator.NewTransitionValidator(cfg),
		publisher,
		cfg,
	)
	cfg.Log.Info("Donation service initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		donationhandler.NewDonationHandler(donations, cfg.Log),
		inventoryhandler.NewStockHandler(inventory, inventoryvalidator.NewStockValidator(cfg.Log), cfg.Log),
	}
}
