package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"qota/internal/penalties/consumer"
	"qota/internal/penalties/repository"
	"qota/internal/penalties/service"
	reservationsrepo "qota/internal/reservations/repository"
	reservationsservice "qota/internal/reservations/service"
	"qota/pkg/config"
	"qota/pkg/kafka"
	kafka_config "qota/pkg/kafka/config"
	"qota/pkg/kafka/middleware"
)

const (
	ServiceName     = "penalties"
	ConsumerGroupID = "qota.penalties.worker"

	// SweepInterval is how often elapsed stays are completed and
	// no-shows assessed.
	SweepInterval = time.Hour
)

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Penalties worker")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	penaltyRepo := repository.NewMongoPenaltyRepository(cfg)
	penaltyService := service.NewPenaltyService(penaltyRepo, cfg)

	kafkaCfg := kafka_config.Load()
	penaltyConsumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafka.TopicPenalties,
		ConsumerGroupID,
		kafka.TopicPenaltiesDLQ,
		consumer.NewPenaltyEventHandler(penaltyService, cfg.Log),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create penalties consumer", "error", err)
	}
	penaltyConsumer.Use(middleware.LoggingConsumerMiddleware())

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

	defer func() {
		if err := reservationsProducer.Close(); err != nil {
			cfg.Log.Error("Failed to close reservations producer", "error", err)
		}
		if err := penaltiesProducer.Close(); err != nil {
			cfg.Log.Error("Failed to close penalties producer", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := reservationsservice.NewSweeper(
		reservationsrepo.NewMongoReservationRepository(cfg),
		reservationsservice.NewKafkaEventPublisher(reservationsProducer, penaltiesProducer, ServiceName, cfg.Log),
		cfg,
	)
	go sweeper.Run(ctx, SweepInterval)

	cfg.Log.Info("Penalties worker consuming",
		"topic", kafka.TopicPenalties,
		"group_id", ConsumerGroupID,
	)

	if err := penaltyConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := penaltyConsumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Penalties worker stopped")
}
