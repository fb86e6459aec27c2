package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/garyjia/ar-reminder/internal/clock"
	"github.com/garyjia/ar-reminder/internal/config"
	httpapi "github.com/garyjia/ar-reminder/internal/interfaces/http"
	"github.com/garyjia/ar-reminder/internal/reminder"
	"github.com/garyjia/ar-reminder/internal/report"
	"github.com/garyjia/ar-reminder/internal/storage"
	"github.com/garyjia/ar-reminder/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults and environment when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting AR reminder service",
		zap.String("brand", cfg.Reminder.Brand),
		zap.Int("port", cfg.Server.Port),
		zap.String("export_dir", cfg.Export.Dir))

	c := clock.New()
	handlers := httpapi.NewHandlers(httpapi.Dependencies{
		Clock: c,
		Reminders: reminder.NewPipeline(c, reminder.Options{
			Brand:       cfg.Reminder.Brand,
			Signature:   cfg.Reminder.Signature,
			SenderEmail: cfg.Reminder.SenderEmail,
		}, logger.Named("reminder")),
		Aggregator: report.NewAggregator(c, cfg.Report.TopCustomers, logger.Named("report")),
		Exports:    storage.NewExportStore(cfg.Export.Dir, logger.Named("storage")),
		MaxHistory: cfg.Report.MaxHistory,
	}, logger.Named("http"))

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exited successfully")
}
