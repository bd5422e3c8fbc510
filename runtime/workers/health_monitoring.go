package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"notify-lab/observability"

	"github.com/shirou/gopsutil/process"
)

// HealthMonitoringWorker samples this process's CPU, RAM and Go heap usage
// on a fixed interval and pushes the numbers into the monitoring manager,
// where the stats endpoint picks them up.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	stats          *observability.MonitoringManager
	metricInterval time.Duration
}

func NewHealthMonitoringWorker(log *slog.Logger, stats *observability.MonitoringManager,
	metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{log: log, stats: stats, metricInterval: metricInterval}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := p.MemoryPercent()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}

			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)
			w.stats.SetProcessStats(cpu, ram, mem.Alloc/1024/1024, mem.NumGC)
		}
	}
}
