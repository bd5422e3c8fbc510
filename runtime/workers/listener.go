package workers

import (
	"context"
	"fmt"
	"log/slog"

	"notify-lab/domain/event"
	"notify-lab/observability"

	"github.com/jackc/pgx/v5"
)

// ListenerWorker holds one long-lived LISTEN connection to the chat store
// and forwards every raw notification, in arrival order, to the engine's
// raw channel. It performs no decoding and no business logic.
//
// Any connection failure makes Run return an error; the supervisor then
// restarts the worker, which reconnects and re-issues its LISTENs.
// Notifications emitted while disconnected are lost, consistent with the
// engine's best-effort delivery model.
type ListenerWorker struct {
	log      *slog.Logger
	dsn      string
	channels []string
	out      chan<- event.Raw
	stats    *observability.MonitoringManager
}

func NewListenerWorker(log *slog.Logger, dsn string, channels []string,
	out chan<- event.Raw, stats *observability.MonitoringManager) *ListenerWorker {
	return &ListenerWorker{log: log, dsn: dsn, channels: channels, out: out, stats: stats}
}

func (w *ListenerWorker) Run(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, w.dsn)
	if err != nil {
		return fmt.Errorf("listener connect: %w", err)
	}
	defer conn.Close(context.Background())

	for _, channel := range w.channels {
		if _, err := conn.Exec(ctx, "listen "+pgx.Identifier{channel}.Sanitize()); err != nil {
			return fmt.Errorf("listen %s: %w", channel, err)
		}
	}
	w.log.Info("Listening for store notifications", "channels", w.channels)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		w.stats.IncrNotificationsReceived()
		select {
		case w.out <- event.Raw{Channel: notification.Channel, Payload: notification.Payload}:
		case <-ctx.Done():
			return nil
		}
	}
}
