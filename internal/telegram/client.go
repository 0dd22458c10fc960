package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// APIError is a non-2xx response from the Bot API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api status %d: %s", e.StatusCode, e.Body)
}

// Client is a minimal Bot API HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
}

func NewClient(botToken string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 65 * time.Second},
		baseURL:    defaultBaseURL,
		botToken:   botToken,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s encode: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("telegram %s decode: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram %s error: %s", method, parsed.Description)
	}
	if result != nil && len(parsed.Result) > 0 {
		if err := json.Unmarshal(parsed.Result, result); err != nil {
			return fmt.Errorf("telegram %s result decode: %w", method, err)
		}
	}
	return nil
}

// SendMessage sends plain text and returns the sent message id.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	var sent Message
	err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, &sent)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendInlineKeyboard sends text with inline choice buttons and returns the
// sent message id.
func (c *Client) SendInlineKeyboard(ctx context.Context, chatID int64, text string, rows [][]InlineButton) (int64, error) {
	var sent Message
	err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id":      chatID,
		"text":         text,
		"reply_markup": inlineKeyboardMarkup{InlineKeyboard: rows},
	}, &sent)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// RequestLocation sends text with a one-time reply keyboard asking the actor
// to share their location.
func (c *Client) RequestLocation(ctx context.Context, chatID int64, text, buttonLabel string) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
		"reply_markup": replyKeyboardMarkup{
			Keyboard:        [][]keyboardButton{{{Text: buttonLabel, RequestLocation: true}}},
			ResizeKeyboard:  true,
			OneTimeKeyboard: true,
		},
	}, nil)
}

// EditMessageText replaces the text of a previously sent message in place.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	return c.call(ctx, "editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}, nil)
}

// AnswerCallbackQuery acknowledges a button press so the client stops showing
// a progress indicator.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	}, nil)
}

// GetUpdates long-polls the Bot API for new updates.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration, limit int) ([]Update, error) {
	payload := map[string]any{
		"allowed_updates": []string{"message", "callback_query"},
	}
	if offset > 0 {
		payload["offset"] = offset
	}
	if timeout > 0 {
		seconds := int(timeout.Round(time.Second).Seconds())
		if seconds < 0 {
			seconds = 0
		}
		if seconds > 50 {
			seconds = 50
		}
		payload["timeout"] = seconds
	}
	if limit > 0 {
		if limit > 100 {
			limit = 100
		}
		payload["limit"] = limit
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SetWebhook registers a webhook endpoint for update delivery.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string, dropPending bool) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("telegram set webhook: url is required")
	}
	payload := map[string]any{
		"url":             url,
		"allowed_updates": []string{"message", "callback_query"},
	}
	if secretToken != "" {
		payload["secret_token"] = secretToken
	}
	if dropPending {
		payload["drop_pending_updates"] = true
	}
	return c.call(ctx, "setWebhook", payload, nil)
}

// DeleteWebhook removes a previously registered webhook.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	payload := map[string]any{}
	if dropPending {
		payload["drop_pending_updates"] = true
	}
	return c.call(ctx, "deleteWebhook", payload, nil)
}
