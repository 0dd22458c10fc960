package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hirebot-backend/internal/bot"
	"hirebot-backend/internal/config"
	"hirebot-backend/internal/jobs"
	"hirebot-backend/internal/logger"
	"hirebot-backend/internal/repository/sheetdb"
	"hirebot-backend/internal/scheduler"
	"hirebot-backend/internal/service"
	"hirebot-backend/internal/session"
	"hirebot-backend/internal/sheets"
	"hirebot-backend/internal/telegram"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit ('pre-course', 'course-day', 'all')")
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
	logger.Info("Starting Hirebot Cronjob Runner...", "log_level", cfg.Log.Level)

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

	// Reminder sweeps never start conversations; replies to a reminder land
	// on the bot process. The runner still needs a store to satisfy the
	// lifecycle wiring.
	sessions := session.NewMemoryStore(
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		time.Duration(cfg.Session.SweepEveryMinutes)*time.Minute,
		cfg.Session.MaxEntries,
	)

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

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(lifecycleSvc, cfg)

	// Handle run-once mode
	if *runOnce != "" {
		runJobOnce(jobRunner, *runOnce)
		return
	}

	// Start scheduler in daemon mode
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	logger.Info("Cronjob runner started in daemon mode. Press Ctrl+C to stop.")
	<-ctx.Done()

	logger.Info("Shutting down cronjob runner...")
	sched.Stop()
	logger.Info("Cronjob runner stopped")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	logger.Info("Running job once", "job", jobName)

	switch jobName {
	case "pre-course":
		jobRunner.SendPreCourseReminders()
	case "course-day":
		jobRunner.SendCourseDayReminders()
	case "all":
		jobRunner.RunAllReminderJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		log.Fatalf("Unknown job: %s (valid: 'pre-course', 'course-day', 'all')", jobName)
	}

	logger.Info("Job execution completed", "job", jobName)
}
