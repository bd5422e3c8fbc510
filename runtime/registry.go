// Package runtime assembles the notification engine: the subscriber
// registry and the supervised listener/dispatcher pipeline. It contains no
// business rules beyond event routing.
package runtime

import (
	"log/slog"
	"sync"

	"notify-lab/contract"
	"notify-lab/domain"
	"notify-lab/domain/event"
	"notify-lab/observability"
)

const shardCount = 16

// Registry maps each user to the multicast channel feeding that user's open
// streams. The map is sharded by user id so subscribe/publish calls for
// unrelated users never contend on the same lock.
//
// A user's channel is created lazily on first subscribe and kept for the
// life of the process, even once every receiver has detached.
type Registry struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	capacity   int
	shards     [shardCount]registryShard
}

type registryShard struct {
	mu       sync.RWMutex
	channels map[domain.UserID]*UserChannel
}

// NewRegistry builds an empty registry. capacity is the buffer size given
// to each receiver attached through Subscribe.
func NewRegistry(log *slog.Logger, monitoring *observability.MonitoringManager, capacity int) *Registry {
	r := &Registry{log: log, monitoring: monitoring, capacity: capacity}
	for i := range r.shards {
		r.shards[i].channels = make(map[domain.UserID]*UserChannel)
	}
	return r
}

func (r *Registry) shard(userID domain.UserID) *registryShard {
	return &r.shards[uint64(userID)%shardCount]
}

// Subscribe attaches a new receiver to the user's channel, creating the
// channel on first use. Every receiver is independent: each sees all events
// published after its own attach point.
func (r *Registry) Subscribe(userID domain.UserID) contract.Receiver {
	return r.channel(userID, true).attach()
}

// Publish delivers the event to every receiver currently attached for the
// user. An unknown user is not an error: offline users are simply
// unreachable, and no channel is created for them.
func (r *Registry) Publish(userID domain.UserID, e event.ChangeEvent) {
	ch := r.channel(userID, false)
	if ch == nil {
		return
	}
	ch.send(e)
}

func (r *Registry) channel(userID domain.UserID, create bool) *UserChannel {
	s := r.shard(userID)

	s.mu.RLock()
	ch := s.channels[userID]
	s.mu.RUnlock()
	if ch != nil || !create {
		return ch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ch = s.channels[userID]; ch == nil {
		ch = newUserChannel(r.log, r.monitoring, r.capacity)
		s.channels[userID] = ch
		r.monitoring.ChannelCreated()
	}
	return ch
}

// UserChannel multicasts events to every attached receiver of one user.
type UserChannel struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	capacity   int

	mu        sync.Mutex
	receivers map[*Receiver]struct{}
}

func newUserChannel(log *slog.Logger, monitoring *observability.MonitoringManager, capacity int) *UserChannel {
	return &UserChannel{
		log:        log,
		monitoring: monitoring,
		capacity:   capacity,
		receivers:  make(map[*Receiver]struct{}),
	}
}

func (c *UserChannel) attach() *Receiver {
	rcv := &Receiver{parent: c, ch: make(chan event.ChangeEvent, c.capacity)}
	c.mu.Lock()
	c.receivers[rcv] = struct{}{}
	c.mu.Unlock()
	c.monitoring.ReceiverAttached()
	return rcv
}

func (c *UserChannel) detach(rcv *Receiver) {
	c.mu.Lock()
	delete(c.receivers, rcv)
	c.mu.Unlock()
	c.monitoring.ReceiverDetached()
}

// send never blocks. A receiver whose buffer is full loses its oldest
// buffered event to make room for the new one; other receivers of the same
// user are unaffected. Sending with zero receivers is a silent no-op.
func (c *UserChannel) send(e event.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for rcv := range c.receivers {
		select {
		case rcv.ch <- e:
			continue
		default:
		}
		select {
		case <-rcv.ch:
			c.monitoring.IncrEventsDropped()
			c.log.Debug("Receiver buffer full, oldest event dropped")
		default:
		}
		select {
		case rcv.ch <- e:
		default:
		}
	}
}

// Receiver is one attached consumer of a user's channel.
type Receiver struct {
	parent *UserChannel
	ch     chan event.ChangeEvent
	once   sync.Once
}

func (r *Receiver) Events() <-chan event.ChangeEvent { return r.ch }

// Close detaches the receiver. The user's channel is deliberately left in
// place for future subscribers.
func (r *Receiver) Close() {
	r.once.Do(func() { r.parent.detach(r) })
}
