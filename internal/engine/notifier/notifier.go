// Package notifier fans change events out to subscribers with backpressure.
package notifier

import (
	"context"
	"maps"
	"sync"

	"go.trai.ch/normcache/internal/core/domain"
)

// Notifier delivers every published change set to every live subscription,
// in publication order. Publishers block while the slowest subscription is
// capacity events behind; events are never dropped.
type Notifier struct {
	mu       sync.Mutex
	capacity int
	// events[i] has sequence number head+i.
	events []domain.ChangedKeys
	head   uint64
	next   uint64
	subs   map[*Subscription]struct{}
	// changed is closed and replaced whenever the state changes.
	changed chan struct{}
	closed  bool
}

// New creates a notifier buffering up to capacity events per subscription.
// A non-positive capacity selects the default.
func New(capacity int) *Notifier {
	if capacity <= 0 {
		capacity = domain.DefaultNotifierCapacity
	}
	return &Notifier{
		capacity: capacity,
		subs:     make(map[*Subscription]struct{}),
		changed:  make(chan struct{}),
	}
}

// Capacity returns the number of events a subscription may lag behind.
func (n *Notifier) Capacity() int {
	return n.capacity
}

// Publish emits keys to every subscription. It blocks until the slowest one
// has room, ctx is done or the notifier is closed. Empty sets are not
// published, and with no subscriptions Publish returns immediately.
func (n *Notifier) Publish(ctx context.Context, keys domain.ChangedKeys) error {
	n.mu.Lock()
	for {
		if n.closed {
			n.mu.Unlock()
			return domain.ErrNotifierClosed
		}
		if len(keys) == 0 || len(n.subs) == 0 {
			n.mu.Unlock()
			return nil
		}
		if n.next-n.slowest() < uint64(n.capacity) {
			break
		}
		wait := n.changed
		n.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
		n.mu.Lock()
	}

	n.events = append(n.events, maps.Clone(keys))
	n.next++
	n.broadcast()
	n.mu.Unlock()
	return nil
}

// Subscribe returns a subscription receiving the events published from now on.
// A subscription taken after Close starts drained.
func (n *Notifier) Subscribe() *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := &Subscription{n: n, cursor: n.next}
	if !n.closed {
		n.subs[s] = struct{}{}
	}
	return s
}

// Close stops the notifier. Blocked and later publishers get
// domain.ErrNotifierClosed; subscriptions drain what is buffered first.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	n.broadcast()
}

// slowest returns the smallest cursor of the live subscriptions, or next if
// there are none. It expects n.mu held.
func (n *Notifier) slowest() uint64 {
	low := n.next
	for s := range n.subs {
		low = min(low, s.cursor)
	}
	return low
}

// trim drops the events every subscription has read. It expects n.mu held.
func (n *Notifier) trim() {
	low := n.slowest()
	if low <= n.head {
		return
	}
	drop := int(low - n.head)
	clear(n.events[:drop])
	n.events = n.events[drop:]
	n.head = low
}

func (n *Notifier) broadcast() {
	close(n.changed)
	n.changed = make(chan struct{})
}

// Subscription is one consumer of a Notifier. It is not safe for use by
// several goroutines at once.
type Subscription struct {
	n      *Notifier
	cursor uint64
	closed bool
}

// Next returns the next change set, waiting until one is published. The set
// is shared with other subscriptions and must not be modified. Once the
// notifier is closed and the buffer drained it returns domain.ErrNotifierClosed.
// After the subscription's own Close it returns domain.ErrSubscriptionClosed.
func (s *Subscription) Next(ctx context.Context) (domain.ChangedKeys, error) {
	n := s.n
	n.mu.Lock()
	for {
		if s.closed {
			n.mu.Unlock()
			return nil, domain.ErrSubscriptionClosed
		}
		if s.cursor < n.next {
			keys := n.events[s.cursor-n.head]
			s.cursor++
			n.trim()
			n.broadcast()
			n.mu.Unlock()
			return keys, nil
		}
		if n.closed {
			n.mu.Unlock()
			return nil, domain.ErrNotifierClosed
		}
		wait := n.changed
		n.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		n.mu.Lock()
	}
}

// Close ends the subscription and releases the backpressure it exerted.
func (s *Subscription) Close() {
	n := s.n
	n.mu.Lock()
	defer n.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	delete(n.subs, s)
	n.trim()
	n.broadcast()
}
