package workers

import (
	"context"
	"log/slog"

	"notify-lab/contract"
	"notify-lab/domain/event"
	"notify-lab/observability"
)

// DispatcherWorker drains the raw channel sequentially: decode, then fan
// out to every affected user through the registry. One loop, one
// notification at a time, so a single user's stream always observes events
// in arrival order.
//
// Decode failures are contained here: the notification is logged, counted
// and dropped, and the loop moves on. Nothing surfaces to clients.
type DispatcherWorker struct {
	log      *slog.Logger
	in       <-chan event.Raw
	registry contract.IRegistry
	stats    *observability.MonitoringManager
}

func NewDispatcherWorker(log *slog.Logger, in <-chan event.Raw,
	registry contract.IRegistry, stats *observability.MonitoringManager) *DispatcherWorker {
	return &DispatcherWorker{log: log, in: in, registry: registry, stats: stats}
}

func (w *DispatcherWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping dispatcher")
			return nil
		case raw := <-w.in:
			w.dispatch(raw)
		}
	}
}

func (w *DispatcherWorker) dispatch(raw event.Raw) {
	notification, err := event.Decode(raw.Channel, raw.Payload)
	if err != nil {
		w.stats.IncrDecodeFailures()
		w.log.Warn("Dropping undecodable notification", "channel", raw.Channel, "error", err)
		return
	}
	if notification == nil {
		// Membership unchanged, nothing to tell anyone.
		return
	}

	// One immutable event instance is shared across every publish call.
	for userID := range notification.Users {
		w.registry.Publish(userID, notification.Event)
		w.stats.IncrEventsPublished()
	}
}
