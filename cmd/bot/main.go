package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hirebot-backend/internal/bot"
	"hirebot-backend/internal/config"
	"hirebot-backend/internal/flow"
	"hirebot-backend/internal/jobs"
	"hirebot-backend/internal/logger"
	"hirebot-backend/internal/repository/sheetdb"
	"hirebot-backend/internal/scheduler"
	"hirebot-backend/internal/service"
	"hirebot-backend/internal/session"
	"hirebot-backend/internal/sheets"
	"hirebot-backend/internal/telegram"
	"hirebot-backend/internal/utils"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var fileCfg *logger.FileConfig
	if cfg.Log.File != "" {
		fileCfg = &logger.FileConfig{
			Filename:   cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			MaxBackups: cfg.Log.MaxBackups,
			Compress:   cfg.Log.Compress,
		}
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format, fileCfg)
	logger.Info("Starting Hirebot...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Record store configuration", "spreadsheet_id", cfg.Sheets.SpreadsheetID,
		"candidates_sheet", cfg.Sheets.CandidatesSheet, "attendance_sheet", cfg.Sheets.AttendanceSheet)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize record store gateway
	gateway, err := sheets.NewGateway(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile)
	if err != nil {
		logger.Error("Failed to initialize record store", "error", err)
		log.Fatalf("Failed to initialize record store: %v", err)
	}
	logger.Info("Record store gateway initialized")

	// Initialize Repositories
	candidateRepo := sheetdb.NewCandidateRepository(gateway, cfg.Sheets.CandidatesSheet)
	attendanceRepo := sheetdb.NewAttendanceRepository(gateway, cfg.Sheets.AttendanceSheet)

	// Initialize session store and background sweeper
	sessions := session.NewMemoryStore(
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		time.Duration(cfg.Session.SweepEveryMinutes)*time.Minute,
		cfg.Session.MaxEntries,
	)
	go sessions.Run(ctx)

	// Initialize messaging client
	client := telegram.NewClient(cfg.Telegram.Token)
	messenger := bot.NewMessenger(client)

	// Initialize admin escalation notifier
	var notifier service.AdminNotifier = service.NopNotifier{}
	if cfg.Notifier.SendGridAPIKey != "" {
		notifier = service.NewSendGridNotifier(
			cfg.Notifier.SendGridAPIKey,
			cfg.Notifier.FromEmail,
			cfg.Notifier.FromName,
			cfg.Notifier.AdminEmail,
		)
	}

	// Initialize Services
	lifecycleSvc := service.NewLifecycleService(candidateRepo, sessions, messenger, notifier, service.LifecycleConfig{
		AdminChatID: cfg.Telegram.AdminChatID,
		SendHour:    cfg.Reminders.SendHour,
	})
	attendanceSvc := service.NewAttendanceService(attendanceRepo, utils.Point{
		Latitude:  cfg.Geofence.Latitude,
		Longitude: cfg.Geofence.Longitude,
	}, cfg.Geofence.RadiusMeters)

	// Initialize flow engine and dispatcher
	engine := flow.NewEngine(flow.Registration(), flow.Evaluation())
	dispatcher := bot.NewDispatcher(sessions, engine, lifecycleSvc, attendanceSvc, candidateRepo, messenger, client, bot.Config{
		AdminChatID:  cfg.Telegram.AdminChatID,
		RadiusMeters: cfg.Geofence.RadiusMeters,
	})

	// Initialize reminder scheduler
	jobRunner := jobs.NewJobRunner(lifecycleSvc, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	if cfg.Telegram.WebhookURL != "" {
		runWebhook(ctx, cfg, client, dispatcher)
	} else {
		runPolling(ctx, cfg, client, dispatcher)
	}

	logger.Info("Hirebot stopped")
}

// runWebhook registers the webhook with the platform and serves pushed
// updates until shutdown.
func runWebhook(ctx context.Context, cfg *config.Config, client *telegram.Client, dispatcher *bot.Dispatcher) {
	if err := client.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret, false); err != nil {
		logger.Error("Failed to register webhook", "error", err)
		log.Fatalf("Failed to register webhook: %v", err)
	}

	server := &http.Server{
		Addr:    cfg.Telegram.ListenAddr,
		Handler: bot.NewWebhookServer(dispatcher, cfg.Telegram.WebhookSecret).Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
	}()

	logger.Info("Webhook server listening", "address", cfg.Telegram.ListenAddr, "url", cfg.Telegram.WebhookURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("HTTP server error: %v", err)
	}
}

// runPolling drains any stale webhook and long-polls for updates until
// shutdown.
func runPolling(ctx context.Context, cfg *config.Config, client *telegram.Client, dispatcher *bot.Dispatcher) {
	if err := client.DeleteWebhook(ctx, false); err != nil {
		logger.Warn("Failed to clear webhook before polling", "error", err)
	}

	logger.Info("Long polling for updates", "timeout_seconds", cfg.Telegram.PollTimeoutS)
	bot.NewPoller(client, dispatcher, cfg.Telegram.PollTimeoutS).Run(ctx)
}
