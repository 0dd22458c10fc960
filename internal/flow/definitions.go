package flow

import "hirebot-backend/internal/domain"

// Answer keys shared with the lifecycle service.
const (
	KeyName     = "name"
	KeyPhone    = "phone"
	KeyAge      = "age"
	KeyCity     = "city"
	KeyPosition = "position"
	KeyDecision = "decision"
)

// Decision values of the evaluation flow.
const (
	DecisionApprove    = "approve"
	DecisionReject     = "reject"
	DecisionReschedule = "reschedule"
)

// PositionChoices is the fixed position list offered during registration and
// after an approval.
func PositionChoices() []Choice {
	return []Choice{
		{Value: "waiter", Labels: map[string]string{"en": "Waiter", "ru": "Официант"}},
		{Value: "bartender", Labels: map[string]string{"en": "Bartender", "ru": "Бармен"}},
		{Value: "kitchen", Labels: map[string]string{"en": "Kitchen staff", "ru": "Работник кухни"}},
	}
}

// Registration is the candidate self-registration form.
func Registration() *Definition {
	return &Definition{
		Kind: domain.FlowRegistration,
		Questions: []Question{
			{
				Key:     KeyName,
				Prompts: map[string]string{"en": "What is your full name?", "ru": "Как вас зовут (полное имя)?"},
			},
			{
				Key:     KeyPhone,
				Prompts: map[string]string{"en": "What is your phone number?", "ru": "Ваш номер телефона?"},
			},
			{
				Key:     KeyAge,
				Prompts: map[string]string{"en": "How old are you?", "ru": "Сколько вам лет?"},
			},
			{
				Key:     KeyCity,
				Prompts: map[string]string{"en": "Which city do you live in?", "ru": "В каком городе вы живете?"},
			},
			{
				Key:     KeyPosition,
				Prompts: map[string]string{"en": "Which position are you applying for?", "ru": "На какую позицию вы претендуете?"},
				Choices: PositionChoices(),
			},
		},
	}
}

// Evaluation is the admin review form for one pending candidate. Position
// and course date are asked by the lifecycle service only after an approval,
// so a rejection never requests them.
func Evaluation() *Definition {
	return &Definition{
		Kind: domain.FlowEvaluation,
		Questions: []Question{
			{
				Key:     KeyDecision,
				Prompts: map[string]string{"en": "Your decision for this candidate?", "ru": "Ваше решение по кандидату?"},
				Choices: []Choice{
					{Value: DecisionApprove, Labels: map[string]string{"en": "Approve", "ru": "Принять"}},
					{Value: DecisionReject, Labels: map[string]string{"en": "Reject", "ru": "Отклонить"}},
					{Value: DecisionReschedule, Labels: map[string]string{"en": "Reschedule", "ru": "Перенести"}},
				},
			},
		},
	}
}
