package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"hirebot-backend/internal/domain"
	"hirebot-backend/internal/flow"
	"hirebot-backend/internal/logger"
	"hirebot-backend/internal/repository"
	"hirebot-backend/internal/service"
	"hirebot-backend/internal/session"
	"hirebot-backend/internal/telegram"
)

// Acker acknowledges button presses on the messaging channel.
type Acker interface {
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Config carries dispatcher settings.
type Config struct {
	AdminChatID  int64
	RadiusMeters float64
}

// Dispatcher is the session store & flow router: every inbound update is
// mapped to the flow that owns the actor, or to a start trigger, or dropped.
// Updates for one actor are handled strictly in arrival order; updates for
// different actors run in parallel.
type Dispatcher struct {
	sessions   session.Store
	engine     *flow.Engine
	lifecycle  service.LifecycleService
	attendance service.AttendanceService
	candidates repository.CandidateRepository
	messenger  service.Messenger
	acker      Acker
	cfg        Config

	mu    sync.Mutex
	lanes map[int64]*actorLane
}

// actorLane serializes one actor's updates. Entries are reference counted so
// the map does not grow with every actor ever seen.
type actorLane struct {
	mu   sync.Mutex
	refs int
}

func NewDispatcher(
	sessions session.Store,
	engine *flow.Engine,
	lifecycle service.LifecycleService,
	attendance service.AttendanceService,
	candidates repository.CandidateRepository,
	messenger service.Messenger,
	acker Acker,
	cfg Config,
) *Dispatcher {
	return &Dispatcher{
		sessions:   sessions,
		engine:     engine,
		lifecycle:  lifecycle,
		attendance: attendance,
		candidates: candidates,
		messenger:  messenger,
		acker:      acker,
		cfg:        cfg,
		lanes:      make(map[int64]*actorLane),
	}
}

// lockActor takes the actor's lane for the duration of one update. Webhook
// deliveries arrive on concurrent handler goroutines, and two interleaved
// updates for one actor would race on its session.
func (d *Dispatcher) lockActor(actorID int64) func() {
	d.mu.Lock()
	lane, ok := d.lanes[actorID]
	if !ok {
		lane = &actorLane{}
		d.lanes[actorID] = lane
	}
	lane.refs++
	d.mu.Unlock()

	lane.mu.Lock()
	return func() {
		lane.mu.Unlock()
		d.mu.Lock()
		lane.refs--
		if lane.refs == 0 {
			delete(d.lanes, actorID)
		}
		d.mu.Unlock()
	}
}

func updateActor(u telegram.Update) (int64, bool) {
	switch {
	case u.CallbackQuery != nil:
		return u.CallbackQuery.From.ID, true
	case u.Message != nil:
		return u.Message.From.ID, true
	}
	return 0, false
}

func normalizeLang(code string) string {
	if code == "ru" {
		return "ru"
	}
	return "en"
}

// HandleUpdate routes one inbound update. It never returns an error: every
// failure is scoped to this one actor's operation, reported to the actor and
// logged.
func (d *Dispatcher) HandleUpdate(ctx context.Context, u telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Update handler panicked", "update_id", u.UpdateID, "panic", r)
		}
	}()

	if actorID, ok := updateActor(u); ok {
		unlock := d.lockActor(actorID)
		defer unlock()
	}

	switch {
	case u.CallbackQuery != nil:
		d.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.Location != nil:
		d.handleLocation(ctx, u.Message)
	case u.Message != nil:
		d.handleText(ctx, u.Message)
	}
}

// fail reports a generic retry message. The session, if any, is preserved so
// the actor's place in the flow is not lost.
func (d *Dispatcher) fail(ctx context.Context, chatID int64, lang string, err error) {
	logger.Error("Handler failed", "chat_id", chatID, "error", err)
	if _, sendErr := d.messenger.SendText(ctx, chatID, service.Msg(lang, "try_again")); sendErr != nil {
		logger.Error("Failed to send retry message", "chat_id", chatID, "error", sendErr)
	}
}

func (d *Dispatcher) handleText(ctx context.Context, m *telegram.Message) {
	actorID := m.From.ID
	chatID := m.Chat.ID
	lang := normalizeLang(m.From.LanguageCode)
	text := strings.TrimSpace(m.Text)

	switch {
	case text == "/start":
		d.startRegistration(ctx, actorID, chatID, lang)
		return
	case text == "/pending" && chatID == d.cfg.AdminChatID:
		d.listPending(ctx, chatID, lang)
		return
	case strings.HasPrefix(text, "/offer ") && chatID == d.cfg.AdminChatID:
		d.offerAlternate(ctx, chatID, lang, text)
		return
	case text == "/checkin" || text == "/checkout":
		d.startAttendance(ctx, actorID, chatID, lang, text)
		return
	}

	s, ok := d.sessions.Get(actorID)
	if !ok {
		// No session and no start trigger: generic fallback, out of scope.
		logger.WithActor(actorID).Debug("Text from actor without session")
		return
	}
	s.Touch()

	if s.AwaitingInput != "" {
		if handled, err := d.lifecycle.OnFreeText(ctx, s, text); err != nil {
			d.fail(ctx, chatID, s.Language, err)
		} else if handled {
			return
		}
		return
	}

	// Free-text answer for the current form question. A fixed-choice
	// question also accepts a typed reply naming one of its options.
	q, err := d.engine.CurrentQuestion(s)
	if err != nil {
		logger.WithFlow(string(s.Kind), s.ID).Warn("Text with no answerable question", "actor_id", actorID, "error", err)
		return
	}
	value := text
	if len(q.Choices) > 0 {
		v, ok := q.MatchChoice(text)
		if !ok {
			logger.WithFlow(string(s.Kind), s.ID).Warn("Typed reply matches no option, re-asking", "actor_id", actorID)
			d.askCurrent(ctx, s)
			return
		}
		value = v
	}
	outcome, err := d.engine.SubmitAnswer(s, q.Key, value)
	if err != nil {
		d.fail(ctx, chatID, s.Language, err)
		return
	}
	d.afterAnswer(ctx, s, outcome)
}

func (d *Dispatcher) startRegistration(ctx context.Context, actorID, chatID int64, lang string) {
	s := domain.NewSession(actorID, chatID, domain.FlowRegistration, lang)
	if err := d.sessions.Put(s); err != nil {
		d.fail(ctx, chatID, lang, err)
		return
	}
	logger.WithFlow(string(s.Kind), s.ID).Info("Registration started", "actor_id", actorID)
	d.askCurrent(ctx, s)
}

func (d *Dispatcher) startAttendance(ctx context.Context, actorID, chatID int64, lang, command string) {
	c, err := d.candidates.FindByActorID(ctx, actorID)
	if err != nil || c.Status != domain.StatusWorking {
		logger.WithActor(actorID).Warn("Attendance command from non-working actor", "error", err)
		return
	}
	action := string(service.ActionCheckIn)
	if command == "/checkout" {
		action = string(service.ActionCheckOut)
	}
	s := domain.NewSession(actorID, chatID, domain.FlowAttendance, c.Language)
	s.AttendanceAction = action
	if err := d.sessions.Put(s); err != nil {
		d.fail(ctx, chatID, lang, err)
		return
	}
	if err := d.messenger.RequestLocation(ctx, chatID,
		service.Msg(c.Language, "courseday_prompt"), service.Msg(c.Language, "share_location")); err != nil {
		d.fail(ctx, chatID, c.Language, err)
	}
}

func (d *Dispatcher) listPending(ctx context.Context, chatID int64, lang string) {
	pending, err := d.lifecycle.ListPending(ctx)
	if err != nil {
		d.fail(ctx, chatID, lang, err)
		return
	}
	if len(pending) == 0 {
		if _, err := d.messenger.SendText(ctx, chatID, "No candidates pending evaluation."); err != nil {
			logger.Error("Failed to send pending list", "error", err)
		}
		return
	}
	rows := make([][]service.Choice, 0, len(pending))
	for _, c := range pending {
		label := fmt.Sprintf("%s — %s (%s)", c.Name, c.Position, string(c.Status))
		rows = append(rows, []service.Choice{{Label: label, Tag: service.TagEvalPrefix + strconv.FormatInt(c.ActorID, 10)}})
	}
	if _, err := d.messenger.SendChoices(ctx, chatID, "Candidates pending evaluation:", rows); err != nil {
		d.fail(ctx, chatID, lang, err)
	}
}

func (d *Dispatcher) offerAlternate(ctx context.Context, chatID int64, lang, text string) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		if _, err := d.messenger.SendText(ctx, chatID, "Usage: /offer <actor id> <position>"); err != nil {
			logger.Error("Failed to send usage hint", "error", err)
		}
		return
	}
	actorID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		d.fail(ctx, chatID, lang, fmt.Errorf("invalid actor id %q: %w", fields[1], err))
		return
	}
	if err := d.lifecycle.OfferAlternatePosition(ctx, actorID, fields[2]); err != nil {
		d.fail(ctx, chatID, lang, err)
		return
	}
	if _, err := d.messenger.SendText(ctx, chatID, "Alternate position offered."); err != nil {
		logger.Error("Failed to confirm alternate offer", "error", err)
	}
}

func (d *Dispatcher) handleLocation(ctx context.Context, m *telegram.Message) {
	actorID := m.From.ID
	chatID := m.Chat.ID

	c, err := d.candidates.FindByActorID(ctx, actorID)
	if err != nil || c.Status != domain.StatusWorking {
		logger.Warn("Location from actor not in working stage", "actor_id", actorID, "error", err)
		return
	}

	action := service.ActionCheckIn
	if s, ok := d.sessions.Get(actorID); ok && s.Kind == domain.FlowAttendance {
		if s.AttendanceAction == string(service.ActionCheckOut) {
			action = service.ActionCheckOut
		}
		d.sessions.Delete(actorID)
	}

	result, err := d.attendance.ValidateAndRecord(ctx, c.Name, m.Location.Latitude, m.Location.Longitude, action)
	if err != nil {
		d.fail(ctx, chatID, c.Language, err)
		return
	}

	switch {
	case !result.InRange:
		if _, err := d.messenger.SendText(ctx, chatID,
			service.Msg(c.Language, "out_of_range", result.DistanceMeters, d.cfg.RadiusMeters)); err != nil {
			logger.Error("Failed to send out-of-range message", "error", err)
		}
	case !result.Updated && action == service.ActionCheckIn:
		if _, err := d.messenger.SendText(ctx, chatID,
			service.Msg(c.Language, "already_checked_in", result.CellValue)); err != nil {
			logger.Error("Failed to send attendance message", "error", err)
		}
	case action == service.ActionCheckOut:
		if _, err := d.messenger.SendText(ctx, chatID,
			service.Msg(c.Language, "checked_out", result.CellValue)); err != nil {
			logger.Error("Failed to send attendance message", "error", err)
		}
	default:
		if _, err := d.messenger.SendText(ctx, chatID,
			service.Msg(c.Language, "checked_in", result.CellValue)); err != nil {
			logger.Error("Failed to send attendance message", "error", err)
		}
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	actorID := cb.From.ID
	chatID := actorID
	var messageID int64
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
		messageID = cb.Message.MessageID
	}
	lang := normalizeLang(cb.From.LanguageCode)

	if err := d.acker.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		logger.Warn("Failed to ack callback", "error", err)
	}

	tag := cb.Data
	switch {
	case strings.HasPrefix(tag, service.TagAnswerPrefix):
		d.onAnswerTag(ctx, actorID, chatID, lang, strings.TrimPrefix(tag, service.TagAnswerPrefix))

	case strings.HasPrefix(tag, service.TagEditPrefix):
		d.onEditTag(ctx, actorID, chatID, lang, strings.TrimPrefix(tag, service.TagEditPrefix))

	case tag == service.TagConfirm:
		d.onConfirmTag(ctx, actorID, chatID, lang)

	case strings.HasPrefix(tag, service.TagEvalPrefix):
		d.onEvalTag(ctx, actorID, chatID, lang, strings.TrimPrefix(tag, service.TagEvalPrefix))

	case strings.HasPrefix(tag, service.TagPosPrefix):
		d.withSession(ctx, actorID, chatID, lang, func(s *domain.Session) error {
			return d.lifecycle.OnPositionChosen(ctx, s, strings.TrimPrefix(tag, service.TagPosPrefix))
		})

	case tag == service.TagDateCustom:
		d.withSession(ctx, actorID, chatID, lang, func(s *domain.Session) error {
			return d.lifecycle.OnCustomDateRequested(ctx, s)
		})

	case strings.HasPrefix(tag, service.TagDatePrefix):
		d.withSession(ctx, actorID, chatID, lang, func(s *domain.Session) error {
			return d.lifecycle.OnCourseDateChosen(ctx, s, strings.TrimPrefix(tag, service.TagDatePrefix))
		})

	case tag == service.TagPreCourseYes || tag == service.TagPreCourseNo:
		if err := d.lifecycle.OnPreCourseReply(ctx, actorID, chatID, messageID, tag == service.TagPreCourseYes); err != nil {
			d.fail(ctx, chatID, lang, err)
		}

	case tag == service.TagNoReschedule || tag == service.TagNoDecline:
		if err := d.lifecycle.OnPreCourseDecline(ctx, actorID, chatID, tag == service.TagNoReschedule); err != nil {
			d.fail(ctx, chatID, lang, err)
		}

	case tag == service.TagAltAccept || tag == service.TagAltDecline:
		if err := d.lifecycle.OnAlternateReply(ctx, actorID, chatID, tag == service.TagAltAccept); err != nil {
			d.fail(ctx, chatID, lang, err)
		}

	default:
		logger.Warn("Unknown callback tag dropped", "actor_id", actorID, "tag", tag)
	}
}

// withSession runs fn under the actor's live session; a stale callback with
// no session is dropped with a warning.
func (d *Dispatcher) withSession(ctx context.Context, actorID, chatID int64, lang string, fn func(*domain.Session) error) {
	s, ok := d.sessions.Get(actorID)
	if !ok {
		logger.Warn("Callback for actor without session dropped", "actor_id", actorID)
		return
	}
	s.Touch()
	if err := fn(s); err != nil {
		d.fail(ctx, chatID, s.Language, err)
	}
}

func (d *Dispatcher) onAnswerTag(ctx context.Context, actorID, chatID int64, lang, rest string) {
	key, value, found := strings.Cut(rest, ":")
	if !found {
		logger.Warn("Malformed answer tag dropped", "actor_id", actorID, "tag", rest)
		return
	}
	d.withSession(ctx, actorID, chatID, lang, func(s *domain.Session) error {
		outcome, err := d.engine.SubmitAnswer(s, key, value)
		if err != nil {
			return err
		}
		d.afterAnswer(ctx, s, outcome)
		return nil
	})
}

func (d *Dispatcher) onEditTag(ctx context.Context, actorID, chatID int64, lang, key string) {
	d.withSession(ctx, actorID, chatID, lang, func(s *domain.Session) error {
		prompt, err := d.engine.BeginEdit(s, key)
		if err != nil {
			return err
		}
		return d.sendPrompt(ctx, s, prompt)
	})
}

func (d *Dispatcher) onConfirmTag(ctx context.Context, actorID, chatID int64, lang string) {
	d.withSession(ctx, actorID, chatID, lang, func(s *domain.Session) error {
		answers, err := d.engine.ConfirmReview(s)
		if err != nil {
			return err
		}
		switch s.Kind {
		case domain.FlowRegistration:
			return d.lifecycle.RegisterCandidate(ctx, s, answers)
		case domain.FlowEvaluation:
			return d.lifecycle.OnEvaluationFinished(ctx, s, answers)
		default:
			return fmt.Errorf("flow %s has no confirm handler", s.Kind)
		}
	})
}

func (d *Dispatcher) onEvalTag(ctx context.Context, actorID, chatID int64, lang, rest string) {
	if chatID != d.cfg.AdminChatID {
		logger.Warn("Evaluation trigger outside admin chat dropped", "actor_id", actorID)
		return
	}
	subjectID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		logger.Warn("Malformed evaluation tag dropped", "tag", rest, "error", err)
		return
	}
	s := domain.NewSession(actorID, chatID, domain.FlowEvaluation, lang)
	s.SubjectActorID = subjectID
	if err := d.sessions.Put(s); err != nil {
		d.fail(ctx, chatID, lang, err)
		return
	}
	logger.WithFlow(string(s.Kind), s.ID).Info("Evaluation started", "admin_id", actorID, "candidate_id", subjectID)
	d.askCurrent(ctx, s)
}

// afterAnswer continues the flow after a recorded answer: either the next
// question or the review screen.
func (d *Dispatcher) afterAnswer(ctx context.Context, s *domain.Session, outcome flow.Outcome) {
	switch outcome {
	case flow.OutcomeAdvanced:
		d.askCurrent(ctx, s)
	case flow.OutcomeReview:
		d.sendReview(ctx, s)
	}
}

func (d *Dispatcher) askCurrent(ctx context.Context, s *domain.Session) {
	prompt, err := d.engine.AskNext(s)
	if err != nil {
		d.fail(ctx, s.ChatID, s.Language, err)
		return
	}
	if err := d.sendPrompt(ctx, s, prompt); err != nil {
		d.fail(ctx, s.ChatID, s.Language, err)
	}
}

func (d *Dispatcher) sendPrompt(ctx context.Context, s *domain.Session, prompt *flow.Prompt) error {
	if len(prompt.Choices) == 0 {
		_, err := d.messenger.SendText(ctx, s.ChatID, prompt.Text)
		return err
	}
	key := s.EditingKey
	if key == "" {
		lines, err := d.engine.Review(s)
		if err != nil {
			return err
		}
		key = lines[s.Step].Key
	}
	rows := make([][]service.Choice, 0, len(prompt.Choices))
	for _, c := range prompt.Choices {
		rows = append(rows, []service.Choice{{
			Label: c.Label(s.Language),
			Tag:   service.TagAnswerPrefix + key + ":" + c.Value,
		}})
	}
	_, err := d.messenger.SendChoices(ctx, s.ChatID, prompt.Text, rows)
	return err
}

// sendReview renders one line per question, an edit button per question and
// one confirm button.
func (d *Dispatcher) sendReview(ctx context.Context, s *domain.Session) {
	lines, err := d.engine.Review(s)
	if err != nil {
		d.fail(ctx, s.ChatID, s.Language, err)
		return
	}

	var b strings.Builder
	b.WriteString(service.Msg(s.Language, "review_header"))
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(line.Prompt)
		b.WriteString(" — ")
		b.WriteString(line.Answer)
	}

	rows := make([][]service.Choice, 0, len(lines)+1)
	for _, line := range lines {
		rows = append(rows, []service.Choice{{
			Label: service.Msg(s.Language, "edit_btn", line.Prompt),
			Tag:   service.TagEditPrefix + line.Key,
		}})
	}
	rows = append(rows, []service.Choice{{
		Label: service.Msg(s.Language, "confirm_btn"),
		Tag:   service.TagConfirm,
	}})

	if _, err := d.messenger.SendChoices(ctx, s.ChatID, b.String(), rows); err != nil {
		d.fail(ctx, s.ChatID, s.Language, err)
	}
}
