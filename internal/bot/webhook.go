package bot

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"hirebot-backend/internal/logger"
	"hirebot-backend/internal/telegram"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookServer receives pushed updates over HTTP and hands them to the
// dispatcher.
type WebhookServer struct {
	dispatcher  *Dispatcher
	secretToken string
}

func NewWebhookServer(dispatcher *Dispatcher, secretToken string) *WebhookServer {
	return &WebhookServer{dispatcher: dispatcher, secretToken: secretToken}
}

// Router builds the HTTP routes for the webhook endpoint plus a liveness
// probe.
func (s *WebhookServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/telegram/webhook", s.handleUpdate).Methods(http.MethodPost)
	return r
}

func (s *WebhookServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Warn("Failed to write health response", "error", err)
	}
}

func (s *WebhookServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.secretToken != "" && r.Header.Get(secretTokenHeader) != s.secretToken {
		logger.Warn("Rejected webhook call with bad secret token", "remote", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logger.Warn("Failed to decode webhook payload", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Always ack: the platform retries non-2xx responses, and a poison
	// update must not wedge delivery.
	s.dispatcher.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}
