package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlowKind tags the conversation flow a session belongs to. An actor holds at
// most one live session, whatever its kind.
type FlowKind string

const (
	FlowRegistration   FlowKind = "registration"
	FlowEvaluation     FlowKind = "evaluation"
	FlowCourseResponse FlowKind = "course-response"
	FlowAttendance     FlowKind = "attendance"
)

// Free-form input tags. While one is set, the next plain text message from
// the actor is consumed by the owning flow instead of the form engine.
const (
	AwaitingCustomDate       = "custom-date"
	AwaitingRescheduleDate   = "reschedule-date"
	AwaitingRescheduleReason = "reschedule-reason"
)

// Session is the transient, in-memory conversation state for one actor
// within one flow. It is never persisted; restarts drop all sessions.
type Session struct {
	ID       string
	ActorID  int64
	ChatID   int64
	Kind     FlowKind
	Language string

	// Form engine state
	Step       int
	Answers    map[string]string
	EditingKey string
	Reviewing  bool

	// Free-form input state layered over the form engine
	AwaitingInput string

	// Evaluation payload: the candidate under review
	SubjectActorID int64
	SubjectRow     int
	Decision       string
	Position       string

	// Attendance payload: the pending check-in/check-out action while the
	// actor's location share is awaited
	AttendanceAction string

	CreatedAt    time.Time
	LastActivity time.Time
}

// NewSession creates a session at step 0 for the given actor and flow.
func NewSession(actorID, chatID int64, kind FlowKind, language string) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.NewString(),
		ActorID:      actorID,
		ChatID:       chatID,
		Kind:         kind,
		Language:     language,
		Answers:      make(map[string]string),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Touch updates the last-activity timestamp.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}

// ExpiredAt reports whether the session has been inactive for at least ttl.
func (s *Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) >= ttl
}

// AnswerSet is the finished key→value answer set a completed flow emits.
type AnswerSet map[string]string
