package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frontofhouse/internal/cms"
	"frontofhouse/internal/config"
	"frontofhouse/internal/database"
	"frontofhouse/internal/handler"
	"frontofhouse/internal/logging"
	"frontofhouse/internal/notify"
	"frontofhouse/internal/service"
	"frontofhouse/internal/worker"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(db)

	if err := database.InitSchema(ctx, db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	var publisher notify.Publisher = notify.Nop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := notify.DialAMQP(cfg.AMQPURL)
		if err != nil {
			slog.Error("failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer amqpPub.Close()
		publisher = amqpPub
		slog.Info("publishing events", "exchange", notify.Exchange)
	}

	// Services
	cmsClient := cms.NewClient(cfg.CMSHost, cfg.CMSToken, cfg.CMSTimeout)
	catalogSvc := service.NewCatalogService(cmsClient)
	floorSvc := service.NewFloorService(cmsClient, catalogSvc, publisher)
	liquidationSvc := service.NewLiquidationService(db, floorSvc, publisher)
	authSvc := service.NewAuthService(db)

	// Worker
	syncWorker := worker.NewSyncWorker(floorSvc, catalogSvc, cfg.SyncInterval)

	srv := &http.Server{
		Addr: cfg.RunAddress,
		Handler: handler.NewRouter(handler.Services{
			Auth:        authSvc,
			Floor:       floorSvc,
			Catalog:     catalogSvc,
			Liquidation: liquidationSvc,
			DB:          db,
		}, cfg.JWTSecret),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		syncWorker.Start(workerCtx)
		close(workerDone)
	}()

	slog.Info("starting server", "addr", cfg.RunAddress, "cms", cfg.CMSHost)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	cancelWorker()
	<-workerDone

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
