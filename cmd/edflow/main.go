package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edflow/edflow/config"
	"github.com/edflow/edflow/internal/domain/alert"
	"github.com/edflow/edflow/internal/domain/bed"
	v1 "github.com/edflow/edflow/internal/handler/v1"
	"github.com/edflow/edflow/internal/notify"
	"github.com/edflow/edflow/internal/registry"
	"github.com/edflow/edflow/internal/service"
	"github.com/edflow/edflow/internal/snapshot"
	"github.com/edflow/edflow/pkg/logger"
	"github.com/edflow/edflow/pkg/metrics"
	"github.com/edflow/edflow/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("engine exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	collector := metrics.NewCollector("edflow")

	patients := registry.NewPatients()
	beds := registry.NewBeds()
	seedBeds(beds, cfg.Engine.BedNumbers, log)

	var notifier alert.Notifier
	if cfg.Alerts.Enabled {
		publisher, err := notify.NewAMQPPublisher(cfg.Alerts.URL, cfg.Alerts.Exchange, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifier = publisher
	}

	var recorder service.Recorder
	if cfg.Snapshot.Enabled {
		db, err := snapshot.Connect(cfg.Snapshot)
		if err != nil {
			return err
		}
		if err := snapshot.Migrate(db, log); err != nil {
			return err
		}
		recorder = snapshot.NewStore(db)
	}

	alerts := service.NewAlertService(notifier, cfg.Alerts.BufferSize, log)
	defer alerts.Shutdown()

	flow := service.NewFlowService(patients, beds, alerts, recorder, collector, cfg.Engine.DefaultAcuityLevel, log)

	refresher := service.NewWaitRefresher(patients, cfg.Engine.WaitRefreshInterval, collector, log)
	refresher.Start()
	defer refresher.Stop()

	router := v1.NewRouter(cfg, v1.NewFlowHandler(flow), collector, log)
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("engine listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.Int("beds", beds.Len()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func seedBeds(beds *registry.Beds, numbers []string, log *zap.Logger) {
	for _, number := range numbers {
		b := &bed.Bed{
			ID:     uuid.New(),
			Number: number,
			Status: bed.StatusAvailable,
		}
		if err := beds.Insert(b); err != nil {
			log.Warn("skipping duplicate bed number", zap.String("number", number))
		}
	}
}
