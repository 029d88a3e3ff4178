package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/marketplace-verify/internal/config"
	"github.com/marketplace-verify/internal/infrastructure/dynamo"
	"github.com/marketplace-verify/internal/infrastructure/psn"
	"github.com/marketplace-verify/internal/infrastructure/reddit"
	snsinfra "github.com/marketplace-verify/internal/infrastructure/sns"
	"github.com/marketplace-verify/internal/infrastructure/trello"
	"github.com/marketplace-verify/internal/infrastructure/webhook"
	"github.com/marketplace-verify/internal/infrastructure/xbox"
	"github.com/marketplace-verify/internal/observability/metrics"
	transporthttp "github.com/marketplace-verify/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	metrics.MustRegister()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	notifier := webhook.NewNotifier(cfg)

	// Operator alerts go out by SMS when SNS is available, otherwise over
	// the moderator webhook.
	var operatorAlerts operatorAlerter = notifier
	if cfg.OperatorPhone != "" {
		if sender, err := snsinfra.NewSender(cfg); err == nil {
			operatorAlerts = &smsAlerter{sender: sender, to: cfg.OperatorPhone}
		} else {
			log.Printf("WARN: SNS sender not available: %v", err)
		}
	}

	deps := &transporthttp.Deps{
		RecordRepo:     dynamo.NewRecordRepo(dynamoClient, cfg.DynamoTables.Records),
		SessionRepo:    dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		Reddit:         reddit.NewClient(cfg),
		Xbox:           xbox.NewClient(cfg),
		PSN:            psn.NewClient(cfg),
		Trello:         trello.NewClient(cfg),
		Notifier:       notifier,
		OperatorAlerts: operatorAlerts,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

type operatorAlerter interface {
	Notify(ctx context.Context, message string) error
}

// smsAlerter adapts the SNS sender to the alert interface.
type smsAlerter struct {
	sender snsinfra.SMSSender
	to     string
}

func (a *smsAlerter) Notify(ctx context.Context, message string) error {
	return a.sender.SendSMS(ctx, a.to, message)
}
