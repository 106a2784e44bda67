package main

import (
	"qota/internal/properties/repository"
	"qota/internal/reservations/handler"
	reservationsrepo "qota/internal/reservations/repository"
	"qota/internal/reservations/service"
	"qota/internal/reservations/validator"
	"qota/pkg/app"
	"qota/pkg/config"
	"qota/pkg/kafka"
	kafka_config "qota/pkg/kafka/config"
	"qota/pkg/kafka/middleware"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Reservations service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	reservationService, closeProducers := initServices(cfg)
	defer closeProducers()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.ReservationService, func()) {
	kafkaCfg := kafka_config.Load()

	reservationsProducer, err := kafka.NewProducer(kafkaCfg, kafka.TopicReservations, kafka.TopicReservationsDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create reservations producer", "error", err)
	}
	reservationsProducer.Use(middleware.LoggingProducerMiddleware())

	penaltiesProducer, err := kafka.NewProducer(kafkaCfg, kafka.TopicPenalties, kafka.TopicPenaltiesDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create penalties producer", "error", err)
	}
	penaltiesProducer.Use(middleware.LoggingProducerMiddleware())

	reservationRepo := reservationsrepo.NewMongoReservationRepository(cfg)
	lockRepo := reservationsrepo.NewReservationLockRepository(cfg)
	propertyRepo := repository.NewMongoPropertyRepository(cfg)
	membershipRepo := repository.NewMongoMembershipRepository(cfg)

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		propertyRepo,
		membershipRepo,
		validator.NewReservationValidator(cfg.Log),
		service.NewKafkaEventPublisher(reservationsProducer, penaltiesProducer, ServiceName, cfg.Log),
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)

	closeProducers := func() {
		if err := reservationsProducer.Close(); err != nil {
			cfg.Log.Error("Failed to close reservations producer", "error", err)
		}
		if err := penaltiesProducer.Close(); err != nil {
			cfg.Log.Error("Failed to close penalties producer", "error", err)
		}
	}
	return reservationService, closeProducers
}
