// @title Matchfund API
// @version 1.0
// @description Cost splitting, payOS checkout, push notifications and live stats for a weekly football group.
// @BasePath /api
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matchfund/matchfund-backend/config"
	"github.com/matchfund/matchfund-backend/db"
	"github.com/matchfund/matchfund-backend/handlers"
	"github.com/matchfund/matchfund-backend/internal/events"
	"github.com/matchfund/matchfund-backend/internal/payos"
	"github.com/matchfund/matchfund-backend/internal/storage"
	"github.com/matchfund/matchfund-backend/internal/store/postgres"
	"github.com/matchfund/matchfund-backend/internal/websocket"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/router"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	if cfg.Redis.UseTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warnw("Error closing redis client", "error", err)
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnw("Redis unreachable at startup; live feed and rate limiting degraded", "error", err)
	}

	// Stores
	members := postgres.NewMemberStore(pool)
	matches := postgres.NewMatchStore(pool)
	liveEvents := postgres.NewLiveEventStore(pool)
	payments := postgres.NewPaymentStore(pool)
	pushTokens := postgres.NewPushTokenStore(pool)
	notifications := postgres.NewNotificationStore(pool)
	configs := postgres.NewConfigStore(pool)

	// Background work
	workerPool := services.NewWorkerPool(cfg.WorkerPool)
	workerPool.Start()

	feed := events.NewFeed(redisClient, events.Config{
		PublishTimeout:   time.Duration(cfg.EventService.PublishTimeoutSeconds) * time.Second,
		SubscribeTimeout: time.Duration(cfg.EventService.SubscribeTimeoutSeconds) * time.Second,
		EventBufferSize:  cfg.EventService.EventBufferSize,
	})

	var files storage.FileStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Storage(storage.Options{
			AccountID:       cfg.Storage.AccountID,
			Endpoint:        cfg.Storage.Endpoint,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize avatar storage: %v", err)
		}
		files = s3
	}

	var receipts services.ReceiptSender
	if cfg.Email.Enabled {
		receipts = services.NewEmailService(&cfg.Email)
	}

	// Services
	gateway := payos.NewClient(payos.Config{
		ClientID:    cfg.PayOS.ClientID,
		APIKey:      cfg.PayOS.APIKey,
		ChecksumKey: cfg.PayOS.ChecksumKey,
		BaseURL:     cfg.PayOS.BaseURL,
		Timeout:     time.Duration(cfg.PayOS.TimeoutSeconds) * time.Second,
	}, nil)

	pushService := services.NewExpoPushService(pushTokens, cfg.Push, nil)
	notificationService := services.NewNotificationService(pushService, notifications, matches)
	matchService := services.NewMatchService(matches, members, configs, notificationService, workerPool)
	liveEventService := services.NewLiveEventService(liveEvents, matches, configs, feed)
	memberService := services.NewMemberService(members, files, cfg.Storage.MaxAvatarBytes)
	tokenService := services.NewTokenService(pushTokens, members)
	configService := services.NewConfigService(configs)
	rateLimitService := services.NewRateLimitService(redisClient)
	paymentService := services.NewPaymentService(services.PaymentServiceDeps{
		Gateway:  gateway,
		Payments: payments,
		Matches:  matches,
		Members:  members,
		Receipts: receipts,
		Jobs:     workerPool,
	}, cfg.Server, cfg.PayOS)

	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version)
	healthService.SetPoolStat(func() *pgxpool.Stat { return pool.Stat() })
	healthService.SetActiveConnectionsGetter(feed.ActiveSubscriptions)

	r := router.SetupRouter(router.Dependencies{
		Config:              cfg,
		RateLimiter:         rateLimitService,
		HealthHandler:       handlers.NewHealthHandler(healthService),
		PaymentHandler:      handlers.NewPaymentHandler(paymentService),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		PushTokenHandler:    handlers.NewPushTokenHandler(tokenService),
		MatchHandler:        handlers.NewMatchHandler(matchService),
		LiveEventHandler:    handlers.NewLiveEventHandler(liveEventService),
		LiveFeedHandler:     websocket.NewHandler(feed, matchService, &cfg.Server),
		MemberHandler:       handlers.NewMemberHandler(memberService, cfg.Storage.MaxAvatarBytes),
		ConfigHandler:       handlers.NewConfigHandler(configService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.WorkerPool.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	// Spectator sockets are hijacked and ignored by srv.Shutdown, so the feed
	// goes first to release them.
	if err := feed.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Live feed shutdown incomplete", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Worker pool shutdown incomplete", "error", err)
	}
	log.Info("Server exited")
}
