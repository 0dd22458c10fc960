package bot

import (
	"context"

	"hirebot-backend/internal/service"
	"hirebot-backend/internal/telegram"
)

// telegramMessenger adapts the Bot API client to the service layer's
// messaging port.
type telegramMessenger struct {
	client *telegram.Client
}

func NewMessenger(client *telegram.Client) service.Messenger {
	return &telegramMessenger{client: client}
}

func (m *telegramMessenger) SendText(ctx context.Context, chatID int64, text string) (int64, error) {
	return m.client.SendMessage(ctx, chatID, text)
}

func (m *telegramMessenger) SendChoices(ctx context.Context, chatID int64, text string, rows [][]service.Choice) (int64, error) {
	buttons := make([][]telegram.InlineButton, 0, len(rows))
	for _, row := range rows {
		out := make([]telegram.InlineButton, 0, len(row))
		for _, c := range row {
			out = append(out, telegram.InlineButton{Text: c.Label, Data: c.Tag})
		}
		buttons = append(buttons, out)
	}
	return m.client.SendInlineKeyboard(ctx, chatID, text, buttons)
}

func (m *telegramMessenger) RequestLocation(ctx context.Context, chatID int64, text, buttonLabel string) error {
	return m.client.RequestLocation(ctx, chatID, text, buttonLabel)
}

func (m *telegramMessenger) EditText(ctx context.Context, chatID, messageID int64, text string) error {
	return m.client.EditMessageText(ctx, chatID, messageID, text)
}
