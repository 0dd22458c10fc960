package service

import (
	"context"
	"errors"
	"fmt"

	"hirebot-backend/internal/domain"
	"hirebot-backend/internal/repository"
)

// fakeCandidateRepo is an in-memory CandidateRepository with per-method
// error injection.
type fakeCandidateRepo struct {
	records []*domain.Candidate

	appendErr error
	applyErr  error
	markerErr error
	statusErr error
}

func (f *fakeCandidateRepo) byRow(row int) (*domain.Candidate, error) {
	for _, c := range f.records {
		if c.Row == row {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no record at row %d", row)
}

func (f *fakeCandidateRepo) Append(ctx context.Context, c *domain.Candidate) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	c.Row = len(f.records) + 2
	cp := *c
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeCandidateRepo) FindByActorID(ctx context.Context, actorID int64) (*domain.Candidate, error) {
	var found *domain.Candidate
	for _, c := range f.records {
		if c.ActorID == actorID {
			found = c
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (f *fakeCandidateRepo) ListAll(ctx context.Context) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, 0, len(f.records))
	for _, c := range f.records {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCandidateRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, 0)
	for _, c := range f.records {
		if c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCandidateRepo) ApplyDecision(ctx context.Context, row int, status domain.Status, position, courseDate string) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	c, err := f.byRow(row)
	if err != nil {
		return err
	}
	c.Status = status
	if position != "" {
		c.Position = position
	}
	c.CourseDate = courseDate
	c.PreCourseMarker = ""
	c.CourseDayMarker = ""
	return nil
}

func (f *fakeCandidateRepo) UpdateStatus(ctx context.Context, row int, status domain.Status) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	c, err := f.byRow(row)
	if err != nil {
		return err
	}
	c.Status = status
	return nil
}

func (f *fakeCandidateRepo) SetReminderMarker(ctx context.Context, row int, kind domain.ReminderKind, date string) error {
	if f.markerErr != nil {
		return f.markerErr
	}
	c, err := f.byRow(row)
	if err != nil {
		return err
	}
	if kind == domain.ReminderPreCourse {
		c.PreCourseMarker = date
	} else {
		c.CourseDayMarker = date
	}
	return nil
}

func (f *fakeCandidateRepo) AppendNote(ctx context.Context, row int, note string) error {
	c, err := f.byRow(row)
	if err != nil {
		return err
	}
	if c.Notes != "" {
		c.Notes += "; "
	}
	c.Notes += note
	return nil
}

// sentMessage is one outbound message captured by fakeMessenger.
type sentMessage struct {
	ChatID int64
	Text   string
	Rows   [][]Choice
}

type fakeMessenger struct {
	texts     []sentMessage
	choices   []sentMessage
	locations []sentMessage
	edits     []sentMessage

	sendErr error
	editErr error
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) (int64, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.texts = append(f.texts, sentMessage{ChatID: chatID, Text: text})
	return int64(len(f.texts)), nil
}

func (f *fakeMessenger) SendChoices(ctx context.Context, chatID int64, text string, rows [][]Choice) (int64, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.choices = append(f.choices, sentMessage{ChatID: chatID, Text: text, Rows: rows})
	return int64(len(f.choices)), nil
}

func (f *fakeMessenger) RequestLocation(ctx context.Context, chatID int64, text, buttonLabel string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.locations = append(f.locations, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeMessenger) EditText(ctx context.Context, chatID, messageID int64, text string) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, sentMessage{ChatID: chatID, Text: text})
	return nil
}

// lastChoiceTags flattens the buttons of the last choice message.
func (f *fakeMessenger) lastChoiceTags() []string {
	if len(f.choices) == 0 {
		return nil
	}
	var tags []string
	for _, row := range f.choices[len(f.choices)-1].Rows {
		for _, c := range row {
			tags = append(tags, c.Tag)
		}
	}
	return tags
}

type fakeNotifier struct {
	subjects []string
}

func (f *fakeNotifier) Escalate(ctx context.Context, subject, body string) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

var errSendFailed = errors.New("send failed")
