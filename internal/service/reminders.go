package service

import (
	"context"
	"fmt"
	"time"

	"hirebot-backend/internal/domain"
	"hirebot-backend/internal/logger"
	"hirebot-backend/internal/utils"
)

// dueAt returns the moment a reminder for courseDate becomes due, offset
// days before the course at the configured send hour.
func (s *lifecycleService) dueAt(courseDate time.Time, daysBefore int) time.Time {
	d := courseDate.AddDate(0, 0, -daysBefore)
	return time.Date(d.Year(), d.Month(), d.Day(), s.cfg.SendHour, 0, 0, 0, d.Location())
}

// SendPreCourseReminders sends the day-before confirmation prompt to every
// waiting candidate whose course is tomorrow or closer and whose pre-course
// marker is still empty. The marker write is the sole idempotency guard:
// it happens only after a successful send, so a failed send is retried on
// the next tick, while a failed marker write risks one duplicate and is
// escalated.
func (s *lifecycleService) SendPreCourseReminders(ctx context.Context, now time.Time) (int, error) {
	all, err := s.candidates.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list candidates for pre-course sweep: %w", err)
	}

	today := utils.Midnight(now)
	sent := 0
	for i := range all {
		c := all[i]
		if c.Status != domain.StatusWaiting || !c.HasConcreteCourseDate() || c.PreCourseMarker != "" {
			continue
		}
		// Parsed in now's location so the day-boundary checks below compare
		// calendar days, not instants offset by the zone.
		course, err := utils.ParseISODateIn(c.CourseDate, now.Location())
		if err != nil {
			logger.Warn("Skipping record with unparsable course date", "row", c.Row, "course_date", c.CourseDate)
			continue
		}
		if today.After(course.AddDate(0, 0, -1)) {
			// The day-before window has passed; too late to confirm.
			logger.Warn("Pre-course window missed", "row", c.Row, "course_date", c.CourseDate)
			continue
		}
		if now.Before(s.dueAt(course, 1)) {
			continue
		}

		rows := [][]Choice{{
			{Label: Msg(c.Language, "yes"), Tag: TagPreCourseYes},
			{Label: Msg(c.Language, "no"), Tag: TagPreCourseNo},
		}}
		if _, err := s.messenger.SendChoices(ctx, candidateChat(&c), Msg(c.Language, "precourse_prompt", c.CourseDate), rows); err != nil {
			// Unmarked, so the next tick retries.
			logger.Error("Failed to send pre-course reminder", "row", c.Row, "actor_id", c.ActorID, "error", err)
			continue
		}
		sent++
		if err := s.candidates.SetReminderMarker(ctx, c.Row, domain.ReminderPreCourse, today.Format(utils.DateLayout)); err != nil {
			logger.Error("Pre-course reminder sent but marker write failed, duplicate possible on next tick",
				"row", c.Row, "actor_id", c.ActorID, "error", err)
			if escErr := s.notifier.Escalate(ctx, "Reminder marker write failed",
				fmt.Sprintf("Pre-course reminder for row %d was sent but could not be marked; a duplicate may follow.", c.Row)); escErr != nil {
				logger.Error("Failed to escalate marker write failure", "error", escErr)
			}
		}
	}
	return sent, nil
}

// SendCourseDayReminders sends the check-in prompt to every confirmed worker
// on the morning of their course, keyed off the day-of marker.
func (s *lifecycleService) SendCourseDayReminders(ctx context.Context, now time.Time) (int, error) {
	all, err := s.candidates.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list candidates for course-day sweep: %w", err)
	}

	today := utils.Midnight(now)
	sent := 0
	for i := range all {
		c := all[i]
		if c.Status != domain.StatusWorking || !c.HasConcreteCourseDate() || c.CourseDayMarker != "" {
			continue
		}
		course, err := utils.ParseISODateIn(c.CourseDate, now.Location())
		if err != nil {
			logger.Warn("Skipping record with unparsable course date", "row", c.Row, "course_date", c.CourseDate)
			continue
		}
		if today.After(course) {
			continue // course already happened
		}
		if now.Before(s.dueAt(course, 0)) {
			continue
		}

		if err := s.messenger.RequestLocation(ctx, candidateChat(&c),
			Msg(c.Language, "courseday_prompt"), Msg(c.Language, "share_location")); err != nil {
			logger.Error("Failed to send course-day prompt", "row", c.Row, "actor_id", c.ActorID, "error", err)
			continue
		}
		sent++
		if err := s.candidates.SetReminderMarker(ctx, c.Row, domain.ReminderCourseDay, today.Format(utils.DateLayout)); err != nil {
			logger.Error("Course-day prompt sent but marker write failed, duplicate possible on next tick",
				"row", c.Row, "actor_id", c.ActorID, "error", err)
		}
	}
	return sent, nil
}
