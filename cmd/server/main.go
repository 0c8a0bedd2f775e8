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
	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"opt-shop/internal/cache"
	"opt-shop/internal/config"
	"opt-shop/internal/controller"
	"opt-shop/internal/logger"
	"opt-shop/internal/middleware"
	"opt-shop/internal/rabbit"
	"opt-shop/internal/repository"
	"opt-shop/internal/service"
	"opt-shop/internal/storage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// MongoDB
	client, err := repository.Connect(context.Background(), cfg.MongoURI, cfg.DBConnectTimeout)
	if err != nil {
		log.WithError(err).Fatal("mongo unavailable")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()
	db := client.Database(cfg.MongoDBName)

	idxCtx, cancel := context.WithTimeout(context.Background(), cfg.DBConnectTimeout)
	if err := repository.EnsureIndexes(idxCtx, db); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}
	cancel()

	users := repository.NewMongoUserRepository(db)
	goods := repository.NewMongoGoodRepository(db)
	orders := repository.NewMongoOrderRepository(db)

	// Redis category cache, optional
	var categoryCache service.CategoryCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		cancel()
		if err != nil {
			log.WithError(err).Warn("redis unavailable, category cache disabled")
		} else {
			defer rc.Close()
			categoryCache = cache.NewRedisCategoryCache(rc, cfg.CategoryCacheTTL, log)
		}
	}

	// RabbitMQ, optional
	var events service.EventPublisher = rabbit.NoopPublisher{}
	var amqpConn *amqp091.Connection
	if cfg.RabbitURL != "" {
		conn, ch, err := rabbit.Dial(cfg.RabbitURL)
		if err == nil {
			err = rabbit.DeclareTopology(ch)
		}
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, order events disabled")
		} else {
			amqpConn = conn
			defer conn.Close()
			events = rabbit.NewPublisher(ch)
		}
	}

	tokens := service.NewTokenIssuer(cfg.JWT)
	authService := service.NewAuthService(users, tokens, log)
	goodService := service.NewGoodService(goods, users, categoryCache, log)
	orderService := service.NewOrderService(orders, goods, users, events, log)
	userService := service.NewUserService(users, log)

	if amqpConn != nil {
		ch, err := amqpConn.Channel()
		if err == nil {
			err = rabbit.SetupConsumers(ch, rabbit.NewStockSyncConsumer(goodService, log), log)
		}
		if err != nil {
			log.WithError(err).Warn("stock sync consumer not started")
		}
	}

	// Uploads
	backend, err := storage.NewBackend(cfg.Upload)
	if err != nil {
		log.WithError(err).Fatal("failed to init upload storage")
	}
	imageDir := ""
	if local, ok := backend.(*storage.LocalStorage); ok {
		imageDir = local.Dir()
	}

	limiter := middleware.NewPerMinuteLimiter(cfg.AuthRatePerMinute)
	defer limiter.Stop()

	router := controller.NewRouter(controller.Dependencies{
		Config:   cfg,
		Log:      log,
		Auth:     authService,
		Goods:    goodService,
		Orders:   orderService,
		Users:    userService,
		Uploads:  storage.NewUploader(backend),
		DB:       repository.Health{Client: client},
		Limiter:  limiter,
		ImageDir: imageDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "environment": cfg.Environment}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	log.Info("server exited")
}
