package service

import (
	"context"
	"time"

	"hirebot-backend/internal/domain"
)

// Choice is one labelled button; Tag is the opaque string returned by the
// messaging channel when the button is pressed.
type Choice struct {
	Label string
	Tag   string
}

// Messenger is the narrow outbound interface to the messaging channel.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) (int64, error)
	SendChoices(ctx context.Context, chatID int64, text string, rows [][]Choice) (int64, error)
	RequestLocation(ctx context.Context, chatID int64, text, buttonLabel string) error
	EditText(ctx context.Context, chatID, messageID int64, text string) error
}

// AdminNotifier escalates events that need out-of-band admin attention.
type AdminNotifier interface {
	Escalate(ctx context.Context, subject, body string) error
}

// LifecycleService owns candidate status transitions, the mini-flows the
// form engine does not cover, and reminder dispatch.
type LifecycleService interface {
	// Form completions
	RegisterCandidate(ctx context.Context, s *domain.Session, answers domain.AnswerSet) error
	OnEvaluationFinished(ctx context.Context, s *domain.Session, answers domain.AnswerSet) error

	// Evaluation mini-flows layered over the form engine
	OnPositionChosen(ctx context.Context, s *domain.Session, position string) error
	OnCourseDateChosen(ctx context.Context, s *domain.Session, isoDate string) error
	OnCustomDateRequested(ctx context.Context, s *domain.Session) error

	// Free-form input routed to whatever the session is awaiting. Returns
	// false when the session was not awaiting anything.
	OnFreeText(ctx context.Context, s *domain.Session, text string) (bool, error)

	// Candidate replies to reminder prompts (no form session involved)
	OnPreCourseReply(ctx context.Context, actorID, chatID, messageID int64, yes bool) error
	OnPreCourseDecline(ctx context.Context, actorID, chatID int64, reschedule bool) error
	OnAlternateReply(ctx context.Context, actorID, chatID int64, accept bool) error

	// Admin operations
	ListPending(ctx context.Context) ([]domain.Candidate, error)
	OfferAlternatePosition(ctx context.Context, actorID int64, position string) error

	// Reminder sweeps; each returns the number of messages dispatched
	SendPreCourseReminders(ctx context.Context, now time.Time) (int, error)
	SendCourseDayReminders(ctx context.Context, now time.Time) (int, error)
}

// AttendanceAction selects check-in or check-out.
type AttendanceAction string

const (
	ActionCheckIn  AttendanceAction = "check-in"
	ActionCheckOut AttendanceAction = "check-out"
)

// AttendanceResult reports the outcome of a check-in/check-out attempt.
// InRange false means nothing was written and DistanceMeters explains why.
// Updated false with InRange true means the cell already reflected the
// action (e.g. a repeated check-in).
type AttendanceResult struct {
	InRange        bool
	DistanceMeters float64
	CellValue      string
	Updated        bool
}

// AttendanceService validates a reported position against the geofence and
// records timestamped check-in/check-out pairs.
type AttendanceService interface {
	ValidateAndRecord(ctx context.Context, worker string, lat, lng float64, action AttendanceAction) (*AttendanceResult, error)
}
