package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/event-planner-api/internal/application/auth"
	"github.com/event-planner-api/internal/config"
	"github.com/event-planner-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/event-planner-api/internal/infrastructure/jwt"
	"github.com/event-planner-api/internal/infrastructure/memory"
	"github.com/event-planner-api/internal/infrastructure/notify"
	redisinfra "github.com/event-planner-api/internal/infrastructure/redis"
	"github.com/event-planner-api/internal/infrastructure/smtp"
	"github.com/event-planner-api/internal/infrastructure/sns"
	transporthttp "github.com/event-planner-api/internal/transport/http"
	"github.com/event-planner-api/internal/transport/http/handler"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		logger.Error("dynamodb client", "err", err)
		os.Exit(1)
	}
	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, cfg.OTPStore == config.OTPStoreDynamo)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		logger.Error("jwt provider", "err", err)
		os.Exit(1)
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		EventRepo:   dynamo.NewEventRepo(dynamoClient, cfg.DynamoTables.Events),
		JWTProvider: jwtProvider,
		Logger:      logger,
		HealthChecks: []handler.Check{{
			Name: "dynamodb",
			Fn:   func(ctx context.Context) error { return dynamo.Ping(ctx, dynamoClient, cfg.DynamoTables.Users) },
		}},
	}
	if cfg.RegistrationOTP {
		store, check, err := pendingStore(ctx, cfg, dynamoClient)
		if err != nil {
			logger.Error("pending registration store", "backend", cfg.OTPStore, "err", err)
			os.Exit(1)
		}
		deps.PendingRepo = store
		if check != nil {
			deps.HealthChecks = append(deps.HealthChecks, *check)
		}
		deps.OTPSender = otpDispatcher(ctx, cfg, logger)
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
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "otp_registration", cfg.RegistrationOTP)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.AppEnv == config.EnvLocal {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// pendingStore opens the OTP_STORE backend. The returned Check is set for
// backends with their own connection.
func pendingStore(ctx context.Context, cfg *config.Config, client *dynamodb.Client) (auth.PendingStore, *handler.Check, error) {
	switch cfg.OTPStore {
	case config.OTPStoreDynamo:
		return dynamo.NewRegistrationRepo(client, cfg.DynamoTables.PendingRegistrations), nil, nil
	case config.OTPStoreRedis:
		rdb, err := redisinfra.Connect(ctx, cfg.RedisURL, redisinfra.DefaultConnectOptions)
		if err != nil {
			return nil, nil, err
		}
		check := &handler.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }}
		return redisinfra.NewRegistrationStore(rdb), check, nil
	default:
		return memory.NewRegistrationStore(), nil, nil
	}
}

// otpDispatcher sends codes by email and, when enabled, by SMS. A failing SNS
// setup only disables the SMS channel.
func otpDispatcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) *notify.OTPDispatcher {
	var smsSender sns.SMSSender
	if cfg.OTPSMSEnabled {
		if sender, err := sns.NewSender(ctx, cfg); err == nil {
			smsSender = sender
		} else {
			logger.Warn("SNS sender not available", "err", err)
		}
	}
	return notify.NewOTPDispatcher(smtp.NewMailer(cfg), smsSender, cfg.OTPTTL, logger)
}
