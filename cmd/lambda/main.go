package main

import (
	"context"
	"log"
	"os"

	"ridebooking/internal/api"
	"ridebooking/internal/app"
	"ridebooking/internal/config"
	"ridebooking/internal/logging"

	"github.com/aws/aws-lambda-go/lambda"
)

// Clients are built once per cold start and reused across invocations.
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	baseLogger, _, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger := baseLogger.With().Str("component", "lambda-main").Logger()

	// Доставку уведомлений выполняет cmd/api, здесь только очередь в redis.
	application, err := app.New(context.Background(), cfg, &logger, app.Options{})
	if err != nil {
		log.Fatalf("init app: %v", err)
	}
	if application.Redis != nil {
		application.SubscribeDispatcher()
	}

	lambda.Start(api.LambdaHandler(application.Router()))
}
