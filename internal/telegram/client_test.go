package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient("test-token")
	c.baseURL = srv.URL
	return c, srv
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":77}}`))
	})
	defer srv.Close()

	id, err := c.SendMessage(context.Background(), 42, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, float64(42), gotPayload["chat_id"])
	assert.Equal(t, "hello", gotPayload["text"])
}

func TestSendInlineKeyboard(t *testing.T) {
	var gotPayload map[string]any
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	})
	defer srv.Close()

	_, err := c.SendInlineKeyboard(context.Background(), 42, "pick one", [][]InlineButton{
		{{Text: "Yes", Data: "precourse:yes"}},
	})
	require.NoError(t, err)

	markup := gotPayload["reply_markup"].(map[string]any)
	rows := markup["inline_keyboard"].([]any)
	button := rows[0].([]any)[0].(map[string]any)
	assert.Equal(t, "Yes", button["text"])
	assert.Equal(t, "precourse:yes", button["callback_data"])
}

func TestCallReportsAPIFailure(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	})
	defer srv.Close()

	_, err := c.SendMessage(context.Background(), 42, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestCallReportsHTTPFailure(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream broken"))
	})
	defer srv.Close()

	_, err := c.SendMessage(context.Background(), 42, "hello")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestGetUpdatesClampsParameters(t *testing.T) {
	var gotPayload map[string]any
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":5}]}`))
	})
	defer srv.Close()

	updates, err := c.GetUpdates(context.Background(), 3, 2*time.Minute, 500)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(5), updates[0].UpdateID)

	assert.Equal(t, float64(3), gotPayload["offset"])
	assert.Equal(t, float64(50), gotPayload["timeout"], "poll timeout is capped at the API limit")
	assert.Equal(t, float64(100), gotPayload["limit"])
}

func TestSetWebhookRequiresURL(t *testing.T) {
	c := NewClient("test-token")
	err := c.SetWebhook(context.Background(), "  ", "secret", false)
	assert.Error(t, err)
}
