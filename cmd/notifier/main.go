package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/store/postgres"
	"github.com/example/storefront/internal/notification"
	"github.com/example/storefront/internal/tracing"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(false)
	if err != nil {
		log.Fatalf("[Notifier] %v", err)
	}
	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("[Notifier] DATABASE_URL environment variable is required")
	}

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Storefront - Email Notification Service")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[Notifier] Topic: %s", cfg.KafkaTopic)
	log.Printf("[Notifier] Group: %s", cfg.KafkaGroupID)
	log.Printf("[Notifier] SMTP: %s:%s", cfg.SMTPHost, cfg.SMTPPort)
	log.Printf("[Notifier] From: %s", cfg.MailFrom)

	shutdownTracing, err := tracing.Setup(ctx, cfg.ServiceName+"-notifier", cfg.TracingExporter, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("[Notifier] Failed to set up tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Purchaser emails are read from the user table
	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Notifier] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[Notifier] Connected to PostgreSQL")

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.MailFrom)
	handler := notification.NewHandler(emailSvc, postgres.NewUserStore(db))

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	// Start consuming
	go func() {
		log.Println("[Notifier] Starting event consumer...")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			log.Printf("[Notifier] Consumer error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()
}
