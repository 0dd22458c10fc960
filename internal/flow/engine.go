package flow

import (
	"fmt"
	"strings"

	"hirebot-backend/internal/domain"
	"hirebot-backend/internal/logger"
)

// Choice is one fixed answer option. Value is the stable machine value
// persisted and matched on; labels are what the actor sees.
type Choice struct {
	Value  string
	Labels map[string]string
}

func (c Choice) Label(lang string) string {
	if l, ok := c.Labels[lang]; ok {
		return l
	}
	return c.Labels["en"]
}

// Question is one step of a flow: a key, a localized prompt and an optional
// fixed choice set. No choices means free text.
type Question struct {
	Key     string
	Prompts map[string]string
	Choices []Choice
}

func (q Question) Prompt(lang string) string {
	if p, ok := q.Prompts[lang]; ok {
		return p
	}
	return q.Prompts["en"]
}

// MatchChoice maps typed text onto one of the question's fixed choices,
// comparing against the stable value and every localized label.
func (q Question) MatchChoice(text string) (string, bool) {
	t := strings.TrimSpace(text)
	for _, c := range q.Choices {
		if strings.EqualFold(c.Value, t) {
			return c.Value, true
		}
		for _, label := range c.Labels {
			if strings.EqualFold(label, t) {
				return c.Value, true
			}
		}
	}
	return "", false
}

func (q Question) validChoice(value string) bool {
	if len(q.Choices) == 0 {
		return true
	}
	for _, c := range q.Choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

// Definition is the ordered question list of one flow kind.
type Definition struct {
	Kind      domain.FlowKind
	Questions []Question
}

func (d *Definition) questionByKey(key string) (Question, bool) {
	for _, q := range d.Questions {
		if q.Key == key {
			return q, true
		}
	}
	return Question{}, false
}

// Outcome is the result of submitting one answer.
type Outcome int

const (
	// OutcomeIgnored means the answer did not match the expected step and
	// had no effect (stale or replayed client interaction).
	OutcomeIgnored Outcome = iota
	// OutcomeAdvanced means the flow moved on to the next question.
	OutcomeAdvanced
	// OutcomeReview means the flow is now at the review screen.
	OutcomeReview
)

// Prompt is a rendered ask: localized text plus choice buttons, if any.
type Prompt struct {
	Text    string
	Choices []Choice
}

// ReviewLine is one row of the review screen.
type ReviewLine struct {
	Key    string
	Prompt string
	Answer string
}

// Engine drives the step-by-step form of each registered flow definition.
type Engine struct {
	defs map[domain.FlowKind]*Definition
}

func NewEngine(defs ...*Definition) *Engine {
	m := make(map[domain.FlowKind]*Definition, len(defs))
	for _, d := range defs {
		m[d.Kind] = d
	}
	return &Engine{defs: m}
}

func (e *Engine) definition(kind domain.FlowKind) (*Definition, error) {
	d, ok := e.defs[kind]
	if !ok {
		return nil, fmt.Errorf("no flow definition for kind %q", kind)
	}
	return d, nil
}

// QuestionCount returns the number of questions of a flow kind.
func (e *Engine) QuestionCount(kind domain.FlowKind) int {
	if d, ok := e.defs[kind]; ok {
		return len(d.Questions)
	}
	return 0
}

// AskNext returns the prompt for the session's current step, or for the
// question being edited.
func (e *Engine) AskNext(s *domain.Session) (*Prompt, error) {
	d, err := e.definition(s.Kind)
	if err != nil {
		return nil, err
	}

	var q Question
	if s.EditingKey != "" {
		var ok bool
		q, ok = d.questionByKey(s.EditingKey)
		if !ok {
			return nil, fmt.Errorf("flow %s has no question %q", s.Kind, s.EditingKey)
		}
	} else {
		if s.Step < 0 || s.Step >= len(d.Questions) {
			return nil, fmt.Errorf("flow %s step %d out of range", s.Kind, s.Step)
		}
		q = d.Questions[s.Step]
	}

	return &Prompt{Text: q.Prompt(s.Language), Choices: q.Choices}, nil
}

// CurrentQuestion returns the question a free-form reply answers: the one
// being edited, or the one at the session's current step. There is none at
// the review screen.
func (e *Engine) CurrentQuestion(s *domain.Session) (Question, error) {
	d, err := e.definition(s.Kind)
	if err != nil {
		return Question{}, err
	}
	if s.EditingKey != "" {
		q, ok := d.questionByKey(s.EditingKey)
		if !ok {
			return Question{}, fmt.Errorf("flow %s has no question %q", s.Kind, s.EditingKey)
		}
		return q, nil
	}
	if s.Reviewing {
		return Question{}, fmt.Errorf("flow %s is at the review screen", s.Kind)
	}
	if s.Step < 0 || s.Step >= len(d.Questions) {
		return Question{}, fmt.Errorf("flow %s step %d out of range", s.Kind, s.Step)
	}
	return d.Questions[s.Step], nil
}

// SubmitAnswer records an answer for key. Answers whose key does not match
// the expected question are ignored, guarding against stale interactions.
func (e *Engine) SubmitAnswer(s *domain.Session, key, value string) (Outcome, error) {
	d, err := e.definition(s.Kind)
	if err != nil {
		return OutcomeIgnored, err
	}

	// Revising one answer from the review screen: the next answer for that
	// key returns straight to review without touching the step counter.
	if s.EditingKey != "" {
		if key != s.EditingKey {
			logger.Warn("Ignoring answer for unexpected key during edit",
				"flow", string(s.Kind), "expected", s.EditingKey, "got", key)
			return OutcomeIgnored, nil
		}
		q, _ := d.questionByKey(key)
		if !q.validChoice(value) {
			return OutcomeIgnored, fmt.Errorf("invalid choice %q for question %q", value, key)
		}
		s.Answers[key] = value
		s.EditingKey = ""
		s.Reviewing = true
		return OutcomeReview, nil
	}

	if s.Reviewing {
		logger.Warn("Ignoring answer while reviewing", "flow", string(s.Kind), "key", key)
		return OutcomeIgnored, nil
	}
	if s.Step < 0 || s.Step >= len(d.Questions) {
		return OutcomeIgnored, fmt.Errorf("flow %s step %d out of range", s.Kind, s.Step)
	}

	q := d.Questions[s.Step]
	if q.Key != key {
		logger.Warn("Ignoring answer for unexpected key",
			"flow", string(s.Kind), "expected", q.Key, "got", key)
		return OutcomeIgnored, nil
	}
	if !q.validChoice(value) {
		return OutcomeIgnored, fmt.Errorf("invalid choice %q for question %q", value, key)
	}

	s.Answers[key] = value
	s.Step++
	if s.Step >= len(d.Questions) {
		s.Reviewing = true
		return OutcomeReview, nil
	}
	return OutcomeAdvanced, nil
}

// BeginEdit re-opens one question from the review screen.
func (e *Engine) BeginEdit(s *domain.Session, key string) (*Prompt, error) {
	d, err := e.definition(s.Kind)
	if err != nil {
		return nil, err
	}
	if !s.Reviewing {
		return nil, fmt.Errorf("flow %s is not at the review screen", s.Kind)
	}
	q, ok := d.questionByKey(key)
	if !ok {
		return nil, fmt.Errorf("flow %s has no question %q", s.Kind, key)
	}
	s.EditingKey = key
	s.Reviewing = false
	return &Prompt{Text: q.Prompt(s.Language), Choices: q.Choices}, nil
}

// Review returns one line per question with its current answer, rendered in
// the session language. Choice answers show their label, not the raw value.
func (e *Engine) Review(s *domain.Session) ([]ReviewLine, error) {
	d, err := e.definition(s.Kind)
	if err != nil {
		return nil, err
	}
	lines := make([]ReviewLine, 0, len(d.Questions))
	for _, q := range d.Questions {
		answer := s.Answers[q.Key]
		for _, c := range q.Choices {
			if c.Value == answer {
				answer = c.Label(s.Language)
				break
			}
		}
		lines = append(lines, ReviewLine{Key: q.Key, Prompt: q.Prompt(s.Language), Answer: answer})
	}
	return lines, nil
}

// ConfirmReview finishes the flow and returns the full answer set. The
// caller is responsible for deleting the session.
func (e *Engine) ConfirmReview(s *domain.Session) (domain.AnswerSet, error) {
	if !s.Reviewing || s.EditingKey != "" {
		return nil, fmt.Errorf("flow %s is not ready for confirmation", s.Kind)
	}
	out := make(domain.AnswerSet, len(s.Answers))
	for k, v := range s.Answers {
		out[k] = v
	}
	return out, nil
}
