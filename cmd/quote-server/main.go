// cmd/quote-server/main.go
package main

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"property-quote/internal/api"
	"property-quote/internal/backend"
	"property-quote/internal/common/aws"
	"property-quote/internal/common/camunda"
	"property-quote/internal/common/config"
	"property-quote/internal/common/database"
	"property-quote/internal/common/logger"
	"property-quote/internal/common/observability"
	"property-quote/internal/quote/catalog"
	"property-quote/internal/quote/scheduler"
	"property-quote/internal/quote/session"
	"property-quote/internal/quote/submission"
	"property-quote/internal/referencedata"
	pricequote "property-quote/internal/workers/quote/price-quote"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting quote server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, observability.WithJaegerEndpoint(cfg.Tracing.JaegerEndpoint))
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		// Reference data falls back to the built-in lists.
		zapLog.Warn("postgres unavailable, serving fallback reference data", zap.Error(err))
		if pg != nil {
			pg.Close()
			pg = nil
		}
	} else {
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Reference data & catalog ---
	refdata := referencedata.NewService(dbOf(pg), redis.Client,
		time.Duration(cfg.Quote.ReferenceTTL)*time.Second, log)

	loadCtx, cancelLoad := context.WithTimeout(ctx, 10*time.Second)
	cat := catalog.New(refdata.CatalogOptions(loadCtx)...)
	cancelLoad()
	if err := cat.Check(); err != nil {
		zapLog.Fatal("question catalog is inconsistent", zap.Error(err))
	}

	sessions := session.NewRegistry(cat,
		time.Duration(cfg.Quote.SessionIdleTTL)*time.Second,
		scheduler.WithWindow(config.GetDuration(cfg.Quote.ThrottleWindow)),
		scheduler.WithMinAnswers(cfg.Quote.MinAnswers),
	)

	// --- Submission ---
	backendClient := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: config.GetDuration(cfg.Backend.Timeout),
	}, log)

	var events submission.EventPublisher
	if cfg.Notifications.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.SNS.Region, cfg.Notifications.SNS.TopicARN)
		if err != nil {
			zapLog.Fatal("failed to create SNS client", zap.Error(err))
		}
		events = submission.NewSNSEventPublisher(snsClient, log)
		zapLog.Info("quote events enabled", zap.String("topicArn", cfg.Notifications.SNS.TopicARN))
	}

	orchestrator := submission.NewOrchestrator(
		submission.Config{CallbackURL: cfg.Backend.CallbackURL},
		cat,
		backendClient,
		backendClient,
		submission.NewRedisDraftStore(redis.Client, time.Duration(cfg.Quote.DraftTTL)*time.Second),
		events,
		obs,
		log,
	)

	checks := map[string]api.HealthCheck{
		"redis": redis.Ping,
	}
	if pg != nil {
		checks["postgres"] = pg.Ping
	}

	// --- Optional pricing worker ---
	var (
		zeebe       *camunda.Client
		priceWorker *camunda.CamundaWorker
	)
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClient(ctx, cfg.Camunda.BrokerAddress)
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		checks["zeebe"] = zeebe.HealthCheck

		handler := pricequote.NewHandler(pricequote.LoadConfig(), cat, obs, log)
		priceWorker = camunda.NewWorker(zeebe.GetClient(), camunda.WorkerConfig{
			TaskType:      pricequote.TaskType,
			MaxJobsActive: cfg.Camunda.MaxJobsActive,
			Timeout:       config.GetDuration(cfg.Camunda.Timeout),
		}, handler.Handle, log)
	}

	// --- HTTP server ---
	handler := api.NewHandler(sessions, orchestrator, refdata, checks, log)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      api.NewRouter(handler, log),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go sweepSessions(sweepCtx, sessions, time.Minute, log)
	if cfg.Quote.ReferenceTTL > 0 {
		go refreshReference(sweepCtx, refdata, sessions, time.Duration(cfg.Quote.ReferenceTTL)*time.Second, log)
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if priceWorker != nil {
		priceWorker.Stop(shutdownCtx)
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Quote server stopped gracefully")
}

func dbOf(pg *database.PostgresClient) *sql.DB {
	if pg == nil {
		return nil
	}
	return pg.DB
}

func sweepSessions(ctx context.Context, sessions *session.Registry, every time.Duration, log logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				log.Info("expired idle sessions", map[string]interface{}{"count": n, "active": sessions.Len()})
			}
		}
	}
}

// refreshReference rebuilds the catalog for new sessions once per reference TTL.
func refreshReference(ctx context.Context, refdata *referencedata.Service, sessions *session.Registry,
	every time.Duration, log logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c, err := refdata.Refresh(ctx)
			if err != nil {
				log.Warn("reference refresh failed, keeping current catalog", map[string]interface{}{"error": err})
				continue
			}
			sessions.SetCatalog(c)
		}
	}
}
