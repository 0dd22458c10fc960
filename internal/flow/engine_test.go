package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirebot-backend/internal/domain"
)

func newTestSession(kind domain.FlowKind) *domain.Session {
	return domain.NewSession(100, 100, kind, "en")
}

func TestRegistrationFlowAdvance(t *testing.T) {
	e := NewEngine(Registration())
	s := newTestSession(domain.FlowRegistration)

	p, err := e.AskNext(s)
	require.NoError(t, err)
	assert.Empty(t, p.Choices, "name question is free text")

	answers := []struct {
		key   string
		value string
	}{
		{KeyName, "Nino"},
		{KeyPhone, "+995555123456"},
		{KeyAge, "24"},
		{KeyCity, "Tbilisi"},
	}
	for _, a := range answers {
		outcome, err := e.SubmitAnswer(s, a.key, a.value)
		require.NoError(t, err)
		assert.Equal(t, OutcomeAdvanced, outcome)
	}

	// Last question is a fixed choice set.
	p, err = e.AskNext(s)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Choices)

	outcome, err := e.SubmitAnswer(s, KeyPosition, "waiter")
	require.NoError(t, err)
	assert.Equal(t, OutcomeReview, outcome)
	assert.True(t, s.Reviewing)
}

func TestSubmitAnswerStaleKeyIgnored(t *testing.T) {
	e := NewEngine(Registration())
	s := newTestSession(domain.FlowRegistration)

	_, err := e.SubmitAnswer(s, KeyName, "Nino")
	require.NoError(t, err)

	// A replayed button press for the already-answered question changes nothing.
	outcome, err := e.SubmitAnswer(s, KeyName, "Giorgi")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	assert.Equal(t, "Nino", s.Answers[KeyName])
	assert.Equal(t, 1, s.Step)
}

func TestSubmitAnswerInvalidChoice(t *testing.T) {
	e := NewEngine(Evaluation())
	s := newTestSession(domain.FlowEvaluation)

	_, err := e.SubmitAnswer(s, KeyDecision, "promote")
	assert.Error(t, err)
	assert.NotContains(t, s.Answers, KeyDecision)
}

func TestEditRoundTrip(t *testing.T) {
	e := NewEngine(Registration())
	s := newTestSession(domain.FlowRegistration)

	for _, a := range []struct{ k, v string }{
		{KeyName, "Nino"}, {KeyPhone, "555"}, {KeyAge, "24"}, {KeyCity, "Tbilisi"}, {KeyPosition, "waiter"},
	} {
		_, err := e.SubmitAnswer(s, a.k, a.v)
		require.NoError(t, err)
	}
	require.True(t, s.Reviewing)

	p, err := e.BeginEdit(s, KeyCity)
	require.NoError(t, err)
	assert.Empty(t, p.Choices)
	assert.False(t, s.Reviewing)

	// An answer for a different key during the edit is ignored.
	outcome, err := e.SubmitAnswer(s, KeyName, "Giorgi")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	assert.Equal(t, "Nino", s.Answers[KeyName])

	outcome, err = e.SubmitAnswer(s, KeyCity, "Batumi")
	require.NoError(t, err)
	assert.Equal(t, OutcomeReview, outcome)
	assert.Equal(t, "Batumi", s.Answers[KeyCity])
	assert.True(t, s.Reviewing)

	// Every earlier answer survived the revision.
	answers, err := e.ConfirmReview(s)
	require.NoError(t, err)
	assert.Equal(t, "Nino", answers[KeyName])
	assert.Equal(t, "555", answers[KeyPhone])
	assert.Equal(t, "waiter", answers[KeyPosition])
}

func TestReviewShowsChoiceLabels(t *testing.T) {
	e := NewEngine(Registration())
	s := newTestSession(domain.FlowRegistration)
	s.Language = "ru"

	for _, a := range []struct{ k, v string }{
		{KeyName, "Nino"}, {KeyPhone, "555"}, {KeyAge, "24"}, {KeyCity, "Tbilisi"}, {KeyPosition, "waiter"},
	} {
		_, err := e.SubmitAnswer(s, a.k, a.v)
		require.NoError(t, err)
	}

	lines, err := e.Review(s)
	require.NoError(t, err)
	require.Len(t, lines, 5)

	var position string
	for _, l := range lines {
		if l.Key == KeyPosition {
			position = l.Answer
		}
	}
	assert.NotEqual(t, "waiter", position, "review shows the localized label, not the raw value")
}

func TestConfirmRequiresReview(t *testing.T) {
	e := NewEngine(Registration())
	s := newTestSession(domain.FlowRegistration)

	_, err := e.ConfirmReview(s)
	assert.Error(t, err)

	_, err = e.BeginEdit(s, KeyName)
	assert.Error(t, err, "editing is only reachable from the review screen")
}

func TestEvaluationFlowHasOnlyDecision(t *testing.T) {
	e := NewEngine(Evaluation())
	assert.Equal(t, 1, e.QuestionCount(domain.FlowEvaluation))

	s := newTestSession(domain.FlowEvaluation)
	outcome, err := e.SubmitAnswer(s, KeyDecision, DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, OutcomeReview, outcome, "a rejection never asks for position or date")
}

func TestMatchChoice(t *testing.T) {
	q := Question{Key: KeyPosition, Choices: PositionChoices()}

	tests := []struct {
		name  string
		text  string
		value string
		found bool
	}{
		{"stable value", "waiter", "waiter", true},
		{"value case-insensitive", "BARTENDER", "bartender", true},
		{"english label", "Kitchen staff", "kitchen", true},
		{"russian label", "Официант", "waiter", true},
		{"surrounding whitespace", "  Waiter  ", "waiter", true},
		{"no match", "astronaut", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, found := q.MatchChoice(tt.text)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestCurrentQuestion(t *testing.T) {
	e := NewEngine(Registration())
	s := newTestSession(domain.FlowRegistration)

	q, err := e.CurrentQuestion(s)
	require.NoError(t, err)
	assert.Equal(t, KeyName, q.Key)

	for _, a := range []struct{ key, value string }{
		{KeyName, "Nino"}, {KeyPhone, "+995555"}, {KeyAge, "24"}, {KeyCity, "Tbilisi"},
	} {
		_, err := e.SubmitAnswer(s, a.key, a.value)
		require.NoError(t, err)
	}

	q, err = e.CurrentQuestion(s)
	require.NoError(t, err)
	assert.Equal(t, KeyPosition, q.Key)

	_, err = e.SubmitAnswer(s, KeyPosition, "waiter")
	require.NoError(t, err)
	_, err = e.CurrentQuestion(s)
	assert.Error(t, err, "no answerable question at the review screen")

	_, err = e.BeginEdit(s, KeyCity)
	require.NoError(t, err)
	q, err = e.CurrentQuestion(s)
	require.NoError(t, err)
	assert.Equal(t, KeyCity, q.Key, "edit target wins over the step counter")
}
