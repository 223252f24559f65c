package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harxxhilgg/univent/internal/api"
	"github.com/harxxhilgg/univent/internal/api/websocket"
	"github.com/harxxhilgg/univent/internal/config"
	"github.com/harxxhilgg/univent/internal/handler"
	"github.com/harxxhilgg/univent/internal/infrastructure/auth"
	"github.com/harxxhilgg/univent/internal/infrastructure/imgbb"
	"github.com/harxxhilgg/univent/internal/infrastructure/kafka"
	"github.com/harxxhilgg/univent/internal/infrastructure/observability"
	"github.com/harxxhilgg/univent/internal/infrastructure/redis"
	core "github.com/harxxhilgg/univent/internal/repository/postgres"
	service "github.com/harxxhilgg/univent/internal/services"
	_ "github.com/lib/pq"
)

func main() {
	shutdown, metricsHandler := observability.Setup("univent")
	defer shutdown(context.Background())

	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisAddr)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	producer := kafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	userRepo := core.NewPostgresUserRepository(db)
	eventRepo := core.NewPostgresEventRepository(db)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, auth.DefaultTokenTTL)
	uploader := imgbb.NewClient(cfg.ImgBBAPIKey)
	feed := websocket.NewHub()

	authSvc := service.NewAuthService(userRepo, redisClient, producer, issuer)
	eventSvc := service.NewEventService(eventRepo, redisClient, producer, uploader, feed)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	eventConsumer := kafka.NewConsumer(cfg.KafkaBrokers, "events", "univent-cache-invalidation", redisClient)
	go eventConsumer.Consume(consumerCtx)
	defer eventConsumer.Close()
	defer stopConsumer()

	h := handler.NewHandler(authSvc, eventSvc)
	router := api.SetupRouter(h, feed, redisClient, issuer, metricsHandler)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}
	go func() {
		log.Printf("Starting server on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
