package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/onxpoint/internal/container"
	"github.com/serroba/onxpoint/internal/messaging"
	"github.com/serroba/onxpoint/internal/review"
	"go.uber.org/zap"
)

func main() {
	opts := &container.Options{
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		LogFormat:   getEnv("LOG_FORMAT", "console"),
		ReviewTopic: getEnv("REVIEW_TOPIC", review.TopicSubmitted),
	}

	debug, _ := strconv.ParseBool(getEnv("MASTODON_DEBUG", "false"))

	worker := &container.WorkerOptions{
		ConsumerGroup:       getEnv("CONSUMER_GROUP", "publisher"),
		MastodonHost:        getEnv("MASTODON_HOST", ""),
		MastodonAccessToken: getEnv("MASTODON_ACCESS_TOKEN", ""),
		MastodonDebug:       debug,
		DatabaseURL:         getEnv("DATABASE_URL", ""),
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	do.ProvideValue(injector, worker)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PublishingPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)

	if err := worker.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	client := do.MustInvoke[*redis.Client](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("publisher started",
		zap.String("topic", opts.ReviewTopic),
		zap.String("mastodon_host", worker.MastodonHost),
		zap.Bool("private", worker.MastodonDebug),
		zap.Bool("publication_log", worker.DatabaseURL != ""),
	)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		logger.Error("redis close error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}
