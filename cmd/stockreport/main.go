package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finstrategist/stockreport/internal/app"
	"github.com/finstrategist/stockreport/internal/generator"
	"github.com/finstrategist/stockreport/internal/pdf"
	"github.com/finstrategist/stockreport/internal/settings"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := cfg.EnsureDirs(); err != nil {
		logger.Error("prepare directories", slog.Any("error", err))
		os.Exit(1)
	}

	store := settings.NewStore(cfg.DataDir, cfg.ImagesDir, cfg.ReportsDir, logger)
	settingsHandler := settings.NewHandler(store, logger)

	pdfClient := pdf.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("pdf service ping", slog.Any("error", err))
	}

	generatorService := generator.NewService(store, pdfClient, cfg.DataDir, cfg.ImagesDir, cfg.ReportsDir, logger)
	generatorHandler := generator.NewHandler(generatorService, store, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SettingsHandler:  settingsHandler,
		GeneratorHandler: generatorHandler,
		PDFService:       pdfClient,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
