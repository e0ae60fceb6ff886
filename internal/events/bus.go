package events

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Subscriber is one live client connection from the bus's point of view.
// Deliver must not block: implementations enqueue to a bounded outbound
// buffer and report false when the event had to be dropped.
type Subscriber interface {
	// ID returns the connection's unique identifier.
	ID() string

	// Deliver offers an event to the subscriber. It returns false if the
	// subscriber could not accept it (full buffer, closing connection);
	// the event is then lost to that subscriber.
	Deliver(event *ChangeEvent) bool
}

// subscriberSet holds the subscribers of a single channel. Each channel has
// its own locks so traffic on unrelated channels never serializes.
type subscriberSet struct {
	mu   sync.RWMutex
	subs map[string]Subscriber

	// pub serializes deliveries on this channel so that any one subscriber
	// sees events in publish order (FIFO per channel-subscriber pair).
	pub sync.Mutex
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{subs: make(map[string]Subscriber)}
}

func (s *subscriberSet) add(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.ID()] = sub
}

func (s *subscriberSet) remove(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	return len(s.subs)
}

func (s *subscriberSet) snapshot() []Subscriber {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	return subs
}

// Bus routes ChangeEvents to the connections subscribed to their channel.
// Delivery is best-effort and fire-and-forget: no persistence, no replay,
// no acknowledgment. A slow or gone subscriber never blocks a publisher;
// undeliverable events are counted and dropped.
//
// Consumers merge pushed events into their local cache last-write-wins by
// entity id: an Updated payload replaces the cached entity wholesale, a
// Created payload inserts unless the id is already present (duplicate
// delivery via both a project and a user channel is expected), and a Deleted
// event removes. Deletion is terminal for updates: a late Updated for a
// deleted id is ignored, and only an explicit Created revives the id.
// TaskView implements these rules.
type Bus struct {
	mu       sync.RWMutex
	channels map[Channel]*subscriberSet
	all      *subscriberSet
	logger   *slog.Logger
	dropped  atomic.Int64
}

// NewBus creates an empty Bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		channels: make(map[Channel]*subscriberSet),
		all:      newSubscriberSet(),
		logger:   logger.With("component", "change_event_bus"),
	}
}

// Register adds a connection to the bus. Registered connections receive
// global-channel events immediately; scoped channels require an explicit
// Subscribe.
func (b *Bus) Register(sub Subscriber) {
	b.all.add(sub)
	b.logger.Debug("connection registered", "connection_id", sub.ID())
}

// Unregister removes a connection from the global audience and from every
// channel it subscribed to. Safe to call for unknown connections.
func (b *Bus) Unregister(id string) {
	b.all.remove(id)

	b.mu.RLock()
	sets := make(map[Channel]*subscriberSet, len(b.channels))
	for ch, set := range b.channels {
		sets[ch] = set
	}
	b.mu.RUnlock()

	var empty []Channel
	for ch, set := range sets {
		if set.remove(id) == 0 {
			empty = append(empty, ch)
		}
	}
	b.pruneEmpty(empty)

	b.logger.Debug("connection unregistered", "connection_id", id)
}

// Subscribe adds a connection to a channel's audience. The connection must
// already be registered.
func (b *Bus) Subscribe(sub Subscriber, channel Channel) {
	if channel == ChannelGlobal {
		return // every registered connection is already in the global audience
	}

	// The add must land while b.mu is held: released between lookup and add,
	// a concurrent unsubscribe of the channel's last member could prune the
	// channel and strand this subscriber in an orphaned set.
	b.mu.Lock()
	set, ok := b.channels[channel]
	if !ok {
		set = newSubscriberSet()
		b.channels[channel] = set
	}
	set.add(sub)
	b.mu.Unlock()

	b.logger.Debug("subscribed", "connection_id", sub.ID(), "channel", channel)
}

// Unsubscribe removes a connection from a channel's audience.
func (b *Bus) Unsubscribe(id string, channel Channel) {
	b.mu.RLock()
	set, ok := b.channels[channel]
	b.mu.RUnlock()
	if !ok {
		return
	}

	if set.remove(id) == 0 {
		b.pruneEmpty([]Channel{channel})
	}
}

// Publish delivers the event to every subscriber of its channel, or to every
// registered connection for the global channel. It never fails and never
// blocks on a subscriber: events a subscriber cannot accept are dropped
// silently and only counted.
func (b *Bus) Publish(event *ChangeEvent) {
	var set *subscriberSet
	if event.Channel == ChannelGlobal {
		set = b.all
	} else {
		b.mu.RLock()
		set = b.channels[event.Channel]
		b.mu.RUnlock()
		if set == nil {
			return // nobody listening
		}
	}

	set.pub.Lock()
	defer set.pub.Unlock()

	for _, sub := range set.snapshot() {
		if !sub.Deliver(event) {
			b.dropped.Add(1)
			b.logger.Debug("event dropped",
				"connection_id", sub.ID(),
				"channel", event.Channel,
				"kind", event.Kind)
		}
	}
}

// Dropped returns the number of delivery attempts dropped since start.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// pruneEmpty removes channels whose audience emptied, re-checking under the
// write lock since a subscriber may have joined in between.
func (b *Bus) pruneEmpty(channels []Channel) {
	if len(channels) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range channels {
		set, ok := b.channels[ch]
		if !ok {
			continue
		}
		set.mu.RLock()
		n := len(set.subs)
		set.mu.RUnlock()
		if n == 0 {
			delete(b.channels, ch)
		}
	}
}
