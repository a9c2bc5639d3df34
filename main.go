package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/config"
	"github.com/7FIl/freepass-2026/database"
	"github.com/7FIl/freepass-2026/events"
	"github.com/7FIl/freepass-2026/kds"
	"github.com/7FIl/freepass-2026/router"
	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Error().Fatalf("Failed to load config: %v", err)
	}
	utils.InitLogger(cfg.Log.Level, cfg.Log.Format)
	log := utils.InfoLogger

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg.Database, log)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	log.Info("AutoMigrate completed.")
	if err := database.SeedDomains(db, log); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed email domains: %v", err)
	}
	if err := database.SeedAdmin(db, database.AdminAccount{
		Email:    cfg.Admin.Email,
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	}, log); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed admin: %v", err)
	}

	redisClient, err := config.InitRedis(cfg.Redis)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
	}
	var (
		store  cache.Cache
		shared cache.Cache
	)
	if redisClient != nil {
		shared = cache.NewRedisCache(redisClient)
		store = shared
		log.WithField("addr", cfg.Redis.Addr).Info("using redis cache")
	} else {
		store = cache.NewMemoryCache()
		log.Warn("REDIS_ADDR not set, using in-process cache")
	}

	publisher, err := newPublisher(cfg.Events, log)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to set up event publisher: %v", err)
	}

	hub := kds.NewHub(log)
	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	domains := services.NewEmailDomainService(db, store, log)

	r := router.SetupRouter(router.Deps{
		DB:       db,
		Log:      log,
		Tokens:   tokens,
		Auth:     services.NewAuthService(db, tokens, domains, store, log),
		Canteens: services.NewCanteenService(db, store, log),
		Orders:   services.NewOrderService(db, store, publisher, hub, log),
		Admin:    services.NewAdminService(db, domains, store, log),
		Domains:  domains,
		Hub:      hub,
		Health:   shared,
		Server:   cfg.Server,
		Limits:   cfg.Limits,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("Listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}
	closeAll(log, publisher, redisClient)
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server exited")
}

func newPublisher(cfg config.Events, log *logrus.Logger) (events.Publisher, error) {
	switch cfg.Broker {
	case "kafka":
		log.WithField("topic", cfg.KafkaTopic).Info("publishing events to kafka")
		return events.NewKafkaPublisher(config.NewKafkaWriter(cfg)), nil
	case "amqp":
		conn, err := config.DialAMQP(cfg)
		if err != nil {
			return nil, err
		}
		publisher, err := events.NewAMQPPublisher(conn, cfg.AMQPExchange)
		if err != nil {
			conn.Close()
			return nil, err
		}
		log.WithField("exchange", cfg.AMQPExchange).Info("publishing events to amqp")
		return publisher, nil
	default:
		return events.NopPublisher{}, nil
	}
}

func closeAll(log *logrus.Logger, publisher events.Publisher, redisClient *redis.Client) {
	if err := publisher.Close(); err != nil {
		log.WithError(err).Warn("closing event publisher")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Warn("closing redis client")
		}
	}
}
