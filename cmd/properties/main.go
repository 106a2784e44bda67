package main

import (
	"qota/internal/properties/handler"
	"qota/internal/properties/repository"
	"qota/internal/properties/service"
	"qota/internal/properties/validator"
	"qota/pkg/app"
	"qota/pkg/config"
)

const ServiceName = "properties"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Properties service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	propertiesHandler := initHandlers(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		propertiesHandler,
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initHandlers(cfg *config.Config) *handler.PropertiesHandler {
	propertyRepo := repository.NewMongoPropertyRepository(cfg)
	membershipRepo := repository.NewMongoMembershipRepository(cfg)

	propertyService := service.NewPropertyService(
		propertyRepo,
		validator.NewPropertyValidator(cfg.Log),
		cfg,
	)
	membershipService := service.NewMembershipService(
		membershipRepo,
		propertyRepo,
		validator.NewMembershipValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Properties service initialized", "database", cfg.MongoDatabaseName)

	return handler.NewPropertiesHandler(
		handler.NewPropertyHandler(propertyService, cfg.Log),
		handler.NewMembershipHandler(membershipService, cfg.Log),
	)
}
