package jobs

import (
	"context"
	"time"

	"hirebot-backend/internal/config"
	"hirebot-backend/internal/logger"
	"hirebot-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	lifecycle service.LifecycleService
	config    *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(lifecycle service.LifecycleService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		lifecycle: lifecycle,
		config:    cfg,
	}
}

// Config returns the loaded configuration shared with the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// SendPreCourseReminders sweeps the candidate table and sends the
// day-before confirmation to everyone whose reminder is due and unmarked
func (jr *JobRunner) SendPreCourseReminders() {
	jr.runWithRecovery("SendPreCourseReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		sent, err := jr.lifecycle.SendPreCourseReminders(ctx, time.Now())
		if err != nil {
			logger.Error("Pre-course reminder sweep failed", "error", err, "sent", sent)
			return
		}
		logger.Info("Pre-course reminder sweep finished", "sent", sent)
	})
}

// SendCourseDayReminders sweeps working candidates and sends the course-day
// location request to everyone whose reminder is due and unmarked
func (jr *JobRunner) SendCourseDayReminders() {
	jr.runWithRecovery("SendCourseDayReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		sent, err := jr.lifecycle.SendCourseDayReminders(ctx, time.Now())
		if err != nil {
			logger.Error("Course-day reminder sweep failed", "error", err, "sent", sent)
			return
		}
		logger.Info("Course-day reminder sweep finished", "sent", sent)
	})
}

// RunAllReminderJobs runs every reminder sweep once (for manual execution)
func (jr *JobRunner) RunAllReminderJobs() {
	jr.SendPreCourseReminders()
	jr.SendCourseDayReminders()
}
