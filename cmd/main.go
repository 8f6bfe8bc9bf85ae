package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqpAdapter "github.com/EV081/Proyecto-de-200-millas-websocket/internal/adapter/amqp"
	httpAdapter "github.com/EV081/Proyecto-de-200-millas-websocket/internal/adapter/http"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/adapter/logger"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/adapter/postgres"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/adapter/rabbitmq"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/app/fulfillment"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/app/tracking"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/config"
)

func main() {
	mode := flag.String("mode", "", "Service mode: stage-service, notification-subscriber")
	configPath := flag.String("config", "config.yml", "Path to config file")
	port := flag.Int("port", 0, "HTTP port override (stage-service)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	lgr := logger.New("fulfillment-" + *mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch *mode {
	case "stage-service":
		runStageService(ctx, cfg, lgr)

	case "notification-subscriber":
		runNotificationSubscriber(ctx, cfg, lgr)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runStageService(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	orderRepo := postgres.NewOrderRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	publisher := rabbitmq.NewPublisher(mqConn)

	policy := fulfillment.Policy{
		BlockOnShortage: cfg.Fulfillment.BlockOnShortage,
		MaxRetries:      cfg.Fulfillment.MaxRetries,
	}
	fulfillmentService := fulfillment.NewService(orderRepo, historyRepo, inventoryRepo, publisher, publisher, lgr, policy)
	trackingService := tracking.NewService(orderRepo, historyRepo, lgr)

	stageHandler := httpAdapter.NewStageHandler(fulfillmentService, lgr)
	trackingHandler := httpAdapter.NewTrackingHandler(trackingService, lgr)

	mux := http.NewServeMux()
	stageHandler.Register(mux)
	mux.HandleFunc("/orders/", trackingHandler.HandleOrders)

	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Stage Service started on port %d", cfg.HTTP.Port), "startup", map[string]interface{}{
		"port":              cfg.HTTP.Port,
		"block_on_shortage": cfg.Fulfillment.BlockOnShortage,
		"max_retries":       cfg.Fulfillment.MaxRetries,
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down Stage Service", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn)
	completionHandler := amqpAdapter.NewCompletionHandler(lgr)

	lgr.Info("service_started", "Notification Subscriber started", "startup", nil)

	go func() {
		if err := consumer.ConsumeCompletions(ctx, completionHandler.HandleCompletion); err != nil {
			lgr.Error("consumer_error", "Error consuming completion events", "runtime", nil, err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
}
