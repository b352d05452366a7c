package main

import (
	"custodia/internal/schedules/events"
	"custodia/internal/schedules/handler"
	"custodia/internal/schedules/repository"
	"custodia/internal/schedules/service"
	"custodia/internal/schedules/validator"
	"custodia/pkg/app"
	"custodia/pkg/client"
	"custodia/pkg/config"
	kafka_config "custodia/pkg/kafka/config"
	"custodia/pkg/middleware"
)

const ServiceName = "schedules"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Schedules service")

	rooms := client.NewRoomDirectoryClient(cfg.RoomDirectoryURL)
	cleaners := client.NewCleanerRosterClient(cfg.CleanerRosterURL)

	// The service skips publishing when the interface itself is nil, so a
	// disabled publisher must stay an untyped nil here.
	var publisher service.EventPublisher
	if cfg.EventsEnabled {
		eventPublisher := initPublisher(cfg)
		defer func() {
			if err := eventPublisher.Close(); err != nil {
				cfg.Log.Error("Failed to close event publisher", "error", err)
			}
		}()
		publisher = eventPublisher
	} else {
		cfg.Log.Info("Schedule event publishing disabled")
	}

	scheduleService := initServices(cfg, rooms, cleaners, publisher)

	var verifier middleware.TokenVerifier
	if cfg.IdentityURL != "" {
		verifier = client.NewIdentityClient(cfg.IdentityURL)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewScheduleHandler(scheduleService, rooms, cleaners, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		verifier,
	)
	serverApp.Run()
}

func initServices(
	cfg *config.Config,
	rooms service.RoomDirectory,
	cleaners service.CleanerRoster,
	publisher service.EventPublisher,
) service.ScheduleService {
	scheduleValidator := validator.NewScheduleValidator(cfg.Log)
	scheduleRepo := repository.NewMongoScheduleRepository(cfg)
	lockRepo := repository.NewScheduleLockRepository(cfg)
	scheduleService := service.NewScheduleService(
		scheduleRepo,
		lockRepo,
		scheduleValidator,
		rooms,
		cleaners,
		publisher,
		cfg,
	)

	cfg.Log.Info("Schedules service initialized", "database", cfg.MongoDatabaseName)
	return scheduleService
}

func initPublisher(cfg *config.Config) *events.Publisher {
	publisher, err := events.NewPublisher(kafka_config.Load(), ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}
	return publisher
}
