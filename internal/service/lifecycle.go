package service

import (
	"context"
	"fmt"
	"time"

	"hirebot-backend/internal/domain"
	"hirebot-backend/internal/flow"
	"hirebot-backend/internal/logger"
	"hirebot-backend/internal/repository"
	"hirebot-backend/internal/session"
	"hirebot-backend/internal/utils"
)

// courseWeekdays maps a position to the weekday its course runs on.
var courseWeekdays = map[string]time.Weekday{
	"waiter":    time.Tuesday,
	"bartender": time.Thursday,
	"kitchen":   time.Monday,
}

func courseWeekday(position string) time.Weekday {
	if wd, ok := courseWeekdays[position]; ok {
		return wd
	}
	return time.Monday
}

// LifecycleConfig carries the lifecycle service settings.
type LifecycleConfig struct {
	AdminChatID   int64
	AdminLanguage string
	SendHour      int // local hour at which a reminder becomes due
}

type lifecycleService struct {
	candidates repository.CandidateRepository
	sessions   session.Store
	messenger  Messenger
	notifier   AdminNotifier
	cfg        LifecycleConfig
	now        func() time.Time
}

// NewLifecycleService builds the candidate status state machine.
func NewLifecycleService(
	candidates repository.CandidateRepository,
	sessions session.Store,
	messenger Messenger,
	notifier AdminNotifier,
	cfg LifecycleConfig,
) LifecycleService {
	if cfg.AdminLanguage == "" {
		cfg.AdminLanguage = "en"
	}
	return &lifecycleService{
		candidates: candidates,
		sessions:   sessions,
		messenger:  messenger,
		notifier:   notifier,
		cfg:        cfg,
		now:        time.Now,
	}
}

// candidateChat returns the chat id used to reach a candidate. Private chats
// share the actor's id on the messaging platform.
func candidateChat(c *domain.Candidate) int64 {
	return c.ActorID
}

func (s *lifecycleService) RegisterCandidate(ctx context.Context, sess *domain.Session, answers domain.AnswerSet) error {
	c := &domain.Candidate{
		ActorID:    sess.ActorID,
		Name:       answers[flow.KeyName],
		Phone:      answers[flow.KeyPhone],
		Age:        answers[flow.KeyAge],
		City:       answers[flow.KeyCity],
		Position:   answers[flow.KeyPosition],
		Language:   sess.Language,
		Status:     domain.StatusWaiting,
		CourseDate: domain.CourseDateTBA,
	}
	if err := s.candidates.Append(ctx, c); err != nil {
		return fmt.Errorf("failed to register candidate: %w", err)
	}

	s.sessions.Delete(sess.ActorID)
	if _, err := s.messenger.SendText(ctx, sess.ChatID, Msg(sess.Language, "registered", c.Name)); err != nil {
		logger.Error("Failed to send registration confirmation", "actor_id", sess.ActorID, "error", err)
	}
	if _, err := s.messenger.SendText(ctx, s.cfg.AdminChatID,
		fmt.Sprintf("New candidate: %s (%s, %s)", c.Name, c.Position, c.City)); err != nil {
		logger.Error("Failed to notify admin about new candidate", "error", err)
	}
	logger.Info("Candidate registered", "actor_id", c.ActorID, "row", c.Row, "position", c.Position)
	return nil
}

func (s *lifecycleService) ListPending(ctx context.Context) ([]domain.Candidate, error) {
	waiting, err := s.candidates.ListByStatus(ctx, domain.StatusWaiting)
	if err != nil {
		return nil, err
	}
	pending := make([]domain.Candidate, 0, len(waiting))
	for _, c := range waiting {
		// Waiting with a concrete course date means already approved.
		if !c.HasConcreteCourseDate() {
			pending = append(pending, c)
		}
	}
	rescheduled, err := s.candidates.ListByStatus(ctx, domain.StatusReschedule)
	if err != nil {
		return nil, err
	}
	return append(pending, rescheduled...), nil
}

func (s *lifecycleService) OnEvaluationFinished(ctx context.Context, sess *domain.Session, answers domain.AnswerSet) error {
	c, err := s.candidates.FindByActorID(ctx, sess.SubjectActorID)
	if err != nil {
		return fmt.Errorf("failed to load candidate under evaluation: %w", err)
	}
	sess.SubjectRow = c.Row

	switch answers[flow.KeyDecision] {
	case flow.DecisionReject:
		status, err := domain.ApplyTransition(c.Status, domain.EventReject)
		if err != nil {
			return err
		}
		if err := s.candidates.ApplyDecision(ctx, c.Row, status, "", domain.CourseDateTBA); err != nil {
			return fmt.Errorf("failed to store rejection: %w", err)
		}
		s.sessions.Delete(sess.ActorID)
		if _, err := s.messenger.SendText(ctx, candidateChat(c), Msg(c.Language, "rejected")); err != nil {
			logger.Error("Failed to send rejection message", "actor_id", c.ActorID, "error", err)
		}
		if _, err := s.messenger.SendText(ctx, sess.ChatID, Msg(sess.Language, "eval_done")); err != nil {
			logger.Error("Failed to confirm decision to admin", "error", err)
		}
		logger.Info("Candidate rejected", "actor_id", c.ActorID, "row", c.Row)
		return nil

	case flow.DecisionReschedule:
		if domain.CanTransition(c.Status, domain.EventReschedule) {
			status, err := domain.ApplyTransition(c.Status, domain.EventReschedule)
			if err != nil {
				return err
			}
			if err := s.candidates.ApplyDecision(ctx, c.Row, status, "", domain.CourseDateReschedule); err != nil {
				return fmt.Errorf("failed to store reschedule: %w", err)
			}
		}
		sess.AwaitingInput = domain.AwaitingRescheduleDate
		_, err := s.messenger.SendText(ctx, sess.ChatID, Msg(sess.Language, "ask_resched_date"))
		return err

	case flow.DecisionApprove:
		sess.Decision = flow.DecisionApprove
		rows := make([][]Choice, 0, len(flow.PositionChoices()))
		for _, p := range flow.PositionChoices() {
			rows = append(rows, []Choice{{Label: p.Label(sess.Language), Tag: TagPosPrefix + p.Value}})
		}
		_, err := s.messenger.SendChoices(ctx, sess.ChatID, Msg(sess.Language, "choose_position"), rows)
		return err

	default:
		return fmt.Errorf("unknown evaluation decision %q", answers[flow.KeyDecision])
	}
}

func (s *lifecycleService) OnPositionChosen(ctx context.Context, sess *domain.Session, position string) error {
	sess.Position = position

	first := utils.NextWeekday(s.now(), courseWeekday(position))
	second := first.AddDate(0, 0, 7)

	rows := [][]Choice{
		{{Label: first.Format(utils.DateLayout), Tag: TagDatePrefix + first.Format(utils.DateLayout)}},
		{{Label: second.Format(utils.DateLayout), Tag: TagDatePrefix + second.Format(utils.DateLayout)}},
		{{Label: Msg(sess.Language, "custom_date"), Tag: TagDateCustom}},
	}
	_, err := s.messenger.SendChoices(ctx, sess.ChatID, Msg(sess.Language, "choose_date"), rows)
	return err
}

func (s *lifecycleService) OnCustomDateRequested(ctx context.Context, sess *domain.Session) error {
	sess.AwaitingInput = domain.AwaitingCustomDate
	_, err := s.messenger.SendText(ctx, sess.ChatID, Msg(sess.Language, "ask_custom_date"))
	return err
}

func (s *lifecycleService) OnCourseDateChosen(ctx context.Context, sess *domain.Session, isoDate string) error {
	c, err := s.candidates.FindByActorID(ctx, sess.SubjectActorID)
	if err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}

	status := c.Status
	if c.Status == domain.StatusReschedule {
		status, err = domain.ApplyTransition(c.Status, domain.EventRedate)
		if err != nil {
			return err
		}
	} else if c.Status != domain.StatusWaiting {
		return fmt.Errorf("cannot set course date for candidate in status %s", c.Status)
	}

	// Status, position and course date land in one repository step; the
	// cleared markers re-arm both reminders for the new date.
	if err := s.candidates.ApplyDecision(ctx, c.Row, status, sess.Position, isoDate); err != nil {
		return fmt.Errorf("failed to store course date: %w", err)
	}

	s.sessions.Delete(sess.ActorID)

	position := sess.Position
	if position == "" {
		position = c.Position
	}
	if _, err := s.messenger.SendText(ctx, candidateChat(c), Msg(c.Language, "approved", position, isoDate)); err != nil {
		logger.Error("Failed to send approval message", "actor_id", c.ActorID, "error", err)
	}
	adminMsg := Msg(sess.Language, "eval_done")
	if sess.AwaitingInput == domain.AwaitingRescheduleDate {
		adminMsg = Msg(sess.Language, "resched_date_set", isoDate)
	}
	if _, err := s.messenger.SendText(ctx, sess.ChatID, adminMsg); err != nil {
		logger.Error("Failed to confirm course date to admin", "error", err)
	}
	logger.Info("Course date set", "actor_id", c.ActorID, "row", c.Row, "date", isoDate, "status", string(status))
	return nil
}

func (s *lifecycleService) OnFreeText(ctx context.Context, sess *domain.Session, text string) (bool, error) {
	switch sess.AwaitingInput {
	case domain.AwaitingCustomDate, domain.AwaitingRescheduleDate:
		t, err := utils.ParseFutureDate(text, s.now())
		if err != nil {
			// Validation error: re-prompt the same step, nothing changes.
			logger.Warn("Invalid course date input", "actor_id", sess.ActorID, "input", text, "error", err)
			_, sendErr := s.messenger.SendText(ctx, sess.ChatID, Msg(sess.Language, "bad_date"))
			return true, sendErr
		}
		return true, s.OnCourseDateChosen(ctx, sess, t.Format(utils.DateLayout))

	case domain.AwaitingRescheduleReason:
		return true, s.recordRescheduleReason(ctx, sess, text)

	default:
		return false, nil
	}
}

func (s *lifecycleService) recordRescheduleReason(ctx context.Context, sess *domain.Session, reason string) error {
	c, err := s.candidates.FindByActorID(ctx, sess.ActorID)
	if err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}

	status := c.Status
	if domain.CanTransition(c.Status, domain.EventReschedule) {
		status, err = domain.ApplyTransition(c.Status, domain.EventReschedule)
		if err != nil {
			return err
		}
	}
	if err := s.candidates.ApplyDecision(ctx, c.Row, status, "", domain.CourseDateReschedule); err != nil {
		return fmt.Errorf("failed to store reschedule: %w", err)
	}
	if err := s.candidates.AppendNote(ctx, c.Row, "reschedule reason: "+reason); err != nil {
		logger.Error("Failed to record reschedule reason", "row", c.Row, "error", err)
	}

	s.sessions.Delete(sess.ActorID)
	if _, err := s.messenger.SendText(ctx, sess.ChatID, Msg(c.Language, "resched_ack")); err != nil {
		logger.Error("Failed to acknowledge reschedule", "actor_id", c.ActorID, "error", err)
	}

	body := fmt.Sprintf("Candidate %s (row %d) asked to reschedule the course. Reason: %s", c.Name, c.Row, reason)
	if _, err := s.messenger.SendText(ctx, s.cfg.AdminChatID, body); err != nil {
		logger.Error("Failed to notify admin chat about reschedule", "error", err)
	}
	if err := s.notifier.Escalate(ctx, "Course reschedule requested", body); err != nil {
		logger.Error("Failed to escalate reschedule to admin email", "error", err)
	}
	logger.Info("Candidate asked to reschedule", "actor_id", c.ActorID, "row", c.Row)
	return nil
}

func (s *lifecycleService) OnPreCourseReply(ctx context.Context, actorID, chatID, messageID int64, yes bool) error {
	c, err := s.candidates.FindByActorID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}

	if !yes {
		rows := [][]Choice{{
			{Label: Msg(c.Language, "opt_reschedule"), Tag: TagNoReschedule},
			{Label: Msg(c.Language, "opt_decline"), Tag: TagNoDecline},
		}}
		_, err := s.messenger.SendChoices(ctx, chatID, Msg(c.Language, "secondary_choice"), rows)
		return err
	}

	if c.Status == domain.StatusWorking {
		// Duplicate tap on the same prompt; just refresh it.
		return s.messenger.EditText(ctx, chatID, messageID, Msg(c.Language, "precourse_confirmed"))
	}
	status, err := domain.ApplyTransition(c.Status, domain.EventConfirm)
	if err != nil {
		return err
	}
	if err := s.candidates.UpdateStatus(ctx, c.Row, status); err != nil {
		return fmt.Errorf("failed to confirm attendance: %w", err)
	}
	// Turn the prompt into the confirmation in place; the day-of marker is
	// already empty, so tomorrow's sweep picks the record up.
	if err := s.messenger.EditText(ctx, chatID, messageID, Msg(c.Language, "precourse_confirmed")); err != nil {
		logger.Warn("Failed to edit pre-course prompt, sending fresh message", "error", err)
		if _, err := s.messenger.SendText(ctx, chatID, Msg(c.Language, "precourse_confirmed")); err != nil {
			return err
		}
	}
	logger.Info("Candidate confirmed course attendance", "actor_id", c.ActorID, "row", c.Row)
	return nil
}

func (s *lifecycleService) OnPreCourseDecline(ctx context.Context, actorID, chatID int64, reschedule bool) error {
	c, err := s.candidates.FindByActorID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}

	if !reschedule {
		status, err := domain.ApplyTransition(c.Status, domain.EventDecline)
		if err != nil {
			return err
		}
		if err := s.candidates.UpdateStatus(ctx, c.Row, status); err != nil {
			return fmt.Errorf("failed to store decline: %w", err)
		}
		if _, err := s.messenger.SendText(ctx, chatID, Msg(c.Language, "declined")); err != nil {
			logger.Error("Failed to confirm decline", "actor_id", c.ActorID, "error", err)
		}
		logger.Info("Candidate declined the offer", "actor_id", c.ActorID, "row", c.Row)
		return nil
	}

	sess := domain.NewSession(actorID, chatID, domain.FlowCourseResponse, c.Language)
	sess.AwaitingInput = domain.AwaitingRescheduleReason
	sess.SubjectActorID = actorID
	sess.SubjectRow = c.Row
	if err := s.sessions.Put(sess); err != nil {
		return fmt.Errorf("failed to open reschedule session: %w", err)
	}
	_, err = s.messenger.SendText(ctx, chatID, Msg(c.Language, "ask_resched_reason"))
	return err
}

func (s *lifecycleService) OnAlternateReply(ctx context.Context, actorID, chatID int64, accept bool) error {
	c, err := s.candidates.FindByActorID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}

	event := domain.EventOfferDecline
	if accept {
		event = domain.EventOfferAccept
	}
	status, err := domain.ApplyTransition(c.Status, event)
	if err != nil {
		return err
	}
	if err := s.candidates.UpdateStatus(ctx, c.Row, status); err != nil {
		return fmt.Errorf("failed to store alternate-offer reply: %w", err)
	}

	reply := Msg(c.Language, "alt_declined")
	if accept {
		reply = Msg(c.Language, "alt_accepted", c.Position)
	}
	if _, err := s.messenger.SendText(ctx, chatID, reply); err != nil {
		logger.Error("Failed to confirm alternate reply", "actor_id", c.ActorID, "error", err)
	}
	if _, err := s.messenger.SendText(ctx, s.cfg.AdminChatID,
		fmt.Sprintf("Candidate %s replied to the alternate offer: %s", c.Name, string(status))); err != nil {
		logger.Error("Failed to notify admin about alternate reply", "error", err)
	}
	logger.Info("Alternate-offer reply recorded", "actor_id", c.ActorID, "status", string(status))
	return nil
}

func (s *lifecycleService) OfferAlternatePosition(ctx context.Context, actorID int64, position string) error {
	c, err := s.candidates.FindByActorID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}
	if c.Status != domain.StatusStop {
		return fmt.Errorf("alternate position can only be offered to a rejected candidate, status is %s", c.Status)
	}
	if err := s.candidates.ApplyDecision(ctx, c.Row, c.Status, position, domain.CourseDateTBA); err != nil {
		return fmt.Errorf("failed to store alternate offer: %w", err)
	}
	rows := [][]Choice{{
		{Label: Msg(c.Language, "yes"), Tag: TagAltAccept},
		{Label: Msg(c.Language, "no"), Tag: TagAltDecline},
	}}
	_, err = s.messenger.SendChoices(ctx, candidateChat(c), Msg(c.Language, "alt_offer", position), rows)
	return err
}
