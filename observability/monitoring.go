package observability

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// MonitoringManager aggregates engine counters for logs and the /statsz
// endpoint. Counters are atomic so the hot paths (dispatch, publish) never
// take a lock; the mutex only guards the sampled system metrics.
type MonitoringManager struct {
	log *slog.Logger
	// instanceID tells replicas apart when several engines sit behind one
	// load balancer.
	instanceID string

	NotificationsReceived uint64
	DecodeFailures        uint64
	EventsPublished       uint64
	EventsDropped         uint64
	ActiveReceivers       int64
	UserChannels          int64

	mu        sync.RWMutex
	cpuPct    float64
	ramPct    float32
	allocMb   uint64
	numGC     uint32
	startedAt time.Time
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, instanceID: uuid.NewString(), startedAt: time.Now()}
}

func (mm *MonitoringManager) IncrNotificationsReceived() {
	atomic.AddUint64(&mm.NotificationsReceived, 1)
}

func (mm *MonitoringManager) IncrDecodeFailures() {
	atomic.AddUint64(&mm.DecodeFailures, 1)
}

func (mm *MonitoringManager) IncrEventsPublished() {
	atomic.AddUint64(&mm.EventsPublished, 1)
}

func (mm *MonitoringManager) IncrEventsDropped() {
	atomic.AddUint64(&mm.EventsDropped, 1)
}

func (mm *MonitoringManager) ReceiverAttached() {
	atomic.AddInt64(&mm.ActiveReceivers, 1)
}

func (mm *MonitoringManager) ReceiverDetached() {
	atomic.AddInt64(&mm.ActiveReceivers, -1)
}

func (mm *MonitoringManager) ChannelCreated() {
	atomic.AddInt64(&mm.UserChannels, 1)
}

// SetProcessStats stores the latest sampled system metrics.
// Called by the health monitoring worker.
func (mm *MonitoringManager) SetProcessStats(cpuPct float64, ramPct float32, allocMb uint64, numGC uint32) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.cpuPct = cpuPct
	mm.ramPct = ramPct
	mm.allocMb = allocMb
	mm.numGC = numGC
}

// Snapshot returns a point-in-time view of every metric, ready for JSON
// rendering by the stats endpoint.
func (mm *MonitoringManager) Snapshot() map[string]any {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return map[string]any{
		"instance_id":            mm.instanceID,
		"uptime":                 time.Since(mm.startedAt).Round(time.Second).String(),
		"notifications_received": atomic.LoadUint64(&mm.NotificationsReceived),
		"decode_failures":        atomic.LoadUint64(&mm.DecodeFailures),
		"events_published":       atomic.LoadUint64(&mm.EventsPublished),
		"events_dropped":         atomic.LoadUint64(&mm.EventsDropped),
		"active_receivers":       atomic.LoadInt64(&mm.ActiveReceivers),
		"user_channels":          atomic.LoadInt64(&mm.UserChannels),
		"cpu_percent":            mm.cpuPct,
		"ram_percent":            mm.ramPct,
		"alloc_mem_mb":           mm.allocMb,
		"num_gc":                 mm.numGC,
	}
}
