package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cohortforge/platform/pkg/common/config"
	"github.com/cohortforge/platform/pkg/common/database"
	"github.com/cohortforge/platform/pkg/common/kafka"
	"github.com/cohortforge/platform/pkg/common/logger"
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/derive"
	"github.com/cohortforge/platform/pkg/extract"
	"github.com/cohortforge/platform/pkg/observability/metrics"
	"github.com/cohortforge/platform/pkg/recode"
	"github.com/cohortforge/platform/pkg/storage"
	"github.com/gorilla/mux"
)

const (
	runEventsTopic      = "derive.runs"
	extractEventsTopic  = "extracts.delivered"
	extractServiceGroup = "derive-service"
)

func main() {
	logger.Init()
	metrics.Init()
	cfg := config.Load()

	dicts, err := recode.Load(cfg.DictionaryFile)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to load recoding dictionaries, using defaults")
		dicts = recode.Defaults()
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}
	repo := storage.NewRunRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate run tables")
	}

	featureStore := storage.NewFeatureStore(database.GetRedis(), cfg.FeatureStoreCacheTTL)
	producer := kafka.NewProducer(runEventsTopic)
	defer producer.Close()

	service := derive.NewService(extract.NewLoader(cfg), dicts)
	runner := derive.NewRunner(repo, service, featureStore, producer, cfg.MaxRunWorkers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumeExtractEvents(ctx, cfg, runner)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1/derive").Subrouter()
	derive.NewHandler(runner, featureStore).Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Derive Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Derive Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}
	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Error("Failed to close PostgreSQL")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Error("Failed to close Redis")
	}

	logger.Log.Info("Derive Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// consumeExtractEvents triggers a derivation run whenever the delivery
// pipeline announces that a fresh extract snapshot landed. The event
// payload carries the same options the HTTP API accepts.
func consumeExtractEvents(ctx context.Context, cfg *config.Config, runner *derive.Runner) {
	consumer := kafka.NewConsumer(extractEventsTopic, extractServiceGroup)
	defer consumer.Close()

	defaults := models.RunOptions{
		EcogDaysBefore:  cfg.EcogDaysBefore,
		EcogDaysAfter:   cfg.EcogDaysAfter,
		EcogDaysFurther: cfg.EcogDaysFurther,
		BiomarkerAfter:  cfg.BiomarkerAfter,
		DictionaryFile:  cfg.DictionaryFile,
	}

	err := consumer.Consume(ctx, func(ctx context.Context, event models.Event) error {
		opts, err := derive.OptionsFromEvent(event.Data, defaults)
		if err != nil {
			return err
		}
		run, err := runner.Enqueue(ctx, opts)
		if err != nil {
			logger.Log.WithError(err).Error("failed to enqueue run from extract event")
			// Bad options in an event are not retryable; drop it.
			return nil
		}
		logger.Log.WithField("run_id", run.ID.String()).Info("run enqueued from extract event")
		return nil
	})
	if err != nil && ctx.Err() == nil {
		logger.Log.WithError(err).Error("extract event consumer stopped")
	}
}
