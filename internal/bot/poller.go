package bot

import (
	"context"
	"errors"
	"time"

	"hirebot-backend/internal/logger"
	"hirebot-backend/internal/telegram"
)

// Poller pulls updates over long polling. Used in development and in
// deployments without a public HTTPS endpoint.
type Poller struct {
	client     *telegram.Client
	dispatcher *Dispatcher
	timeout    time.Duration
}

func NewPoller(client *telegram.Client, dispatcher *Dispatcher, timeoutSeconds int) *Poller {
	return &Poller{
		client:     client,
		dispatcher: dispatcher,
		timeout:    time.Duration(timeoutSeconds) * time.Second,
	}
}

// Run blocks until ctx is cancelled, dispatching each received update in
// order. Errors from the API back off briefly rather than terminating the
// loop.
func (p *Poller) Run(ctx context.Context) {
	var offset int64
	for {
		updates, err := p.client.GetUpdates(ctx, offset, p.timeout, 100)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			logger.Error("Polling for updates failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			p.dispatcher.HandleUpdate(ctx, u)
		}
	}
}
