package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/api/routes"
	"github.com/ArowuTest/winwai-raffle-backend/internal/config"
	"github.com/ArowuTest/winwai-raffle-backend/internal/currency"
	"github.com/ArowuTest/winwai-raffle-backend/internal/events"
	"github.com/ArowuTest/winwai-raffle-backend/internal/handlers"
	"github.com/ArowuTest/winwai-raffle-backend/internal/lock"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
	mongorepo "github.com/ArowuTest/winwai-raffle-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/winwai-raffle-backend/internal/scheduler"
	"github.com/ArowuTest/winwai-raffle-backend/internal/services"
	"github.com/ArowuTest/winwai-raffle-backend/pkg/jwt"
	"github.com/ArowuTest/winwai-raffle-backend/pkg/mongodb"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments inject the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)
	if cfg.JWT.Secret == "" {
		slog.Error("JWT.Secret is not configured")
		os.Exit(1)
	}

	ctx := context.Background()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Repositories
	var raffleRepo repositories.RaffleRepository = mongorepo.NewRaffleRepository(db)
	var entryRepo repositories.EntryRepository = mongorepo.NewEntryRepository(db)
	var voucherRepo repositories.VoucherRepository = mongorepo.NewVoucherRepository(db)
	var winnerRepo repositories.WinnerRepository = mongorepo.NewWinnerRepository(db)
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var partnerRepo repositories.PartnerRepository = mongorepo.NewPartnerRepository(db)

	normalizer := currency.NewNormalizer(cfg.Currency.Rates, cfg.Currency.Default)

	locker, closeLocker := newLocker(ctx, cfg)
	defer closeLocker()

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("Error closing event publisher", "error", err)
		}
	}()

	// Services
	drawService := services.NewDrawService(
		raffleRepo, entryRepo, voucherRepo, winnerRepo, userRepo, partnerRepo, normalizer,
		services.WithLocker(locker),
		services.WithPublisher(publisher),
		services.WithDefaultValidityMonths(cfg.Draw.DefaultValidityMonths),
	)
	raffleService := services.NewRaffleService(raffleRepo, entryRepo, partnerRepo, normalizer, cfg.Draw.DefaultValidityMonths)
	entryService := services.NewEntryService(raffleRepo, entryRepo, userRepo)
	voucherService := services.NewVoucherService(voucherRepo, winnerRepo)
	userService := services.NewUserService(userRepo)

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		RaffleHandler: handlers.NewRaffleHandler(raffleService, voucherService),
		EntryHandler:  handlers.NewEntryHandler(entryService),
		UserHandler:   handlers.NewUserHandler(userService, voucherService),
		DrawHandler:   handlers.NewDrawHandler(drawService),
	}

	tokens := jwt.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
	if strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(cfg, tokens, handlerDeps)

	var drawScheduler *scheduler.DrawScheduler
	if cfg.Draw.Enabled {
		drawScheduler, err = scheduler.New(drawService, cfg.Draw.Schedule, cfg.Draw.Location())
		if err != nil {
			slog.Error("Failed to create draw scheduler", "error", err)
			os.Exit(1)
		}
		drawScheduler.Start()
	} else {
		slog.Warn("Draw scheduler disabled; draws run only when triggered by an admin")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Server starting", "port", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if drawScheduler != nil {
		select {
		case <-drawScheduler.Stop().Done():
		case <-shutdownCtx.Done():
			slog.Warn("Draw batch still running at shutdown")
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

// newLocker returns the Redis-backed lease when Redis is enabled, else an in-process one
func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func()) {
	if !cfg.Redis.Enabled {
		slog.Info("Using in-process draw locks")
		return lock.NewLocalLocker(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err, "addr", cfg.Redis.Addr)
		os.Exit(1)
	}
	slog.Info("Using Redis draw locks", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.LockTTL)
	return lock.NewRedisLocker(client, cfg.Redis.LockTTL), func() {
		if err := client.Close(); err != nil {
			slog.Error("Error closing Redis client", "error", err)
		}
	}
}

func newPublisher(cfg *config.Config) events.Publisher {
	if !cfg.Kafka.Enabled {
		return events.NopPublisher{}
	}
	slog.Info("Publishing voucher events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
}
