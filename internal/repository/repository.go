package repository

import (
	"context"
	"errors"

	"hirebot-backend/internal/domain"
)

// ErrNotFound means no candidate record matched the lookup.
var ErrNotFound = errors.New("candidate record not found")

// ErrNoPeriodColumn means the attendance sheet has no column for the
// requested day. The operation fails instead of guessing a column.
var ErrNoPeriodColumn = errors.New("no attendance column for the requested day")

// CandidateRepository persists candidate records in the external store.
// Rows are addressed by row number; columns always by header name.
type CandidateRepository interface {
	// Append creates a new record row and fills in c.Row.
	Append(ctx context.Context, c *domain.Candidate) error
	// FindByActorID returns the most recent record for the actor. Duplicate
	// rows can exist after reschedule re-entry; the highest row wins.
	FindByActorID(ctx context.Context, actorID int64) (*domain.Candidate, error)
	ListAll(ctx context.Context) ([]domain.Candidate, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Candidate, error)
	// ApplyDecision writes status, position and course date in one step and
	// clears both reminder markers. An empty position leaves it unchanged.
	ApplyDecision(ctx context.Context, row int, status domain.Status, position, courseDate string) error
	UpdateStatus(ctx context.Context, row int, status domain.Status) error
	SetReminderMarker(ctx context.Context, row int, kind domain.ReminderKind, date string) error
	AppendNote(ctx context.Context, row int, note string) error
}

// AttendanceRepository records check-in/check-out times in per-day cells of
// the attendance sheet.
type AttendanceRepository interface {
	// DayCell returns the current value of the worker's cell for the given
	// day (empty string when the worker has a row but the cell is blank, or
	// when the worker has no row yet).
	DayCell(ctx context.Context, worker, day string) (string, error)
	// SetDayCell writes the worker's cell for the given day, inserting a
	// row for the worker when none exists.
	SetDayCell(ctx context.Context, worker, day, value string) error
}
