package runtime

import (
	"context"
	"log/slog"
	"time"

	"notify-lab/contract"
	"notify-lab/domain/event"
	"notify-lab/observability"
	"notify-lab/runtime/workers"
)

// Engine wires the listener -> dispatcher pipeline to the registry and runs
// it under supervision. It owns the raw notification channel; the listener
// task is its only producer.
type Engine struct {
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       *Registry
	stats          *observability.MonitoringManager
	raw            chan event.Raw
	dsn            string
	metricInterval time.Duration
	done           chan struct{}
}

func NewEngine(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry,
	stats *observability.MonitoringManager, dsn string, bufferSize int,
	metricInterval time.Duration) *Engine {
	return &Engine{
		log:            log,
		supervisor:     supervisor,
		registry:       registry,
		stats:          stats,
		raw:            make(chan event.Raw, bufferSize),
		dsn:            dsn,
		metricInterval: metricInterval,
	}
}

func (e *Engine) Registry() *Registry { return e.registry }

// Start registers all workers and launches the supervisor. It returns
// immediately; the pipeline keeps running until ctx is canceled or Stop is
// called.
func (e *Engine) Start(ctx context.Context) {
	e.supervisor.Add(
		workers.NewListenerWorker(e.log, e.dsn, event.Channels(), e.raw, e.stats),
		workers.NewDispatcherWorker(e.log, e.raw, e.registry, e.stats),
		workers.NewChannelCapacityWorker(e.log, []workers.NamedChannel{
			{Name: "raw_notifications", Channel: e.raw},
		}, e.metricInterval),
		workers.NewHealthMonitoringWorker(e.log, e.stats, e.metricInterval),
	)

	e.done = make(chan struct{})
	e.log.Info("Starting notification engine")
	go func() {
		defer close(e.done)
		e.supervisor.Run(ctx)
	}()
}

// Stop cancels the supervised workers and waits for them to finish.
func (e *Engine) Stop() {
	e.log.Info("Requesting engine shutdown")
	e.supervisor.Stop()
	if e.done != nil {
		<-e.done
	}
}
