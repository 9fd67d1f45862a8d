// Package event provides a locator-keyed, synchronous change-notification
// bus.
//
// Observers subscribe to a URI. Publishing a change on a URI reaches:
//
//   - observers of that exact URI,
//   - observers of an ancestor URI that asked for descendant changes,
//   - observers of descendant URIs, when the publisher sweeps descendants.
//
// So with descendants enabled, a watcher of content://a/products hears about
// content://a/products/7, and a sweeping publish on content://a/products
// reaches the watcher of content://a/products/7.
package event

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Observer receives the URI that changed.
type Observer func(uri string)

type subscriber struct {
	id          uuid.UUID
	seq         uint64
	uri         string
	descendants bool
	fn          Observer
}

// Bus routes change notifications to subscribed observers.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[uuid.UUID]*subscriber
	seq  uint64
	log  *slog.Logger
}

// NewBus creates an empty bus. A nil logger discards panic reports.
func NewBus(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Bus{subs: map[string]map[uuid.UUID]*subscriber{}, log: log}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus  *Bus
	id   uuid.UUID
	uri  string
	once sync.Once
}

// ID returns the subscription's unique id.
func (s *Subscription) ID() string { return s.id.String() }

// URI returns the URI the subscription watches.
func (s *Subscription) URI() string { return s.uri }

// Close removes the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.bus.remove(s.uri, s.id) })
}

// Subscribe registers fn for changes on uri. With descendants set, changes on
// any URI below uri are delivered too.
func (b *Bus) Subscribe(uri string, descendants bool, fn Observer) *Subscription {
	key := normalize(uri)
	id := uuid.New()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	if b.subs[key] == nil {
		b.subs[key] = map[uuid.UUID]*subscriber{}
	}
	b.subs[key][id] = &subscriber{id: id, seq: b.seq, uri: key, descendants: descendants, fn: fn}

	return &Subscription{bus: b, id: id, uri: key}
}

func (b *Bus) remove(key string, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs[key], id)
	if len(b.subs[key]) == 0 {
		delete(b.subs, key)
	}
}

// Publish notifies every matching observer synchronously, on the calling
// goroutine, in subscription order. sweep extends delivery to observers of
// descendant URIs. It returns the number of observers called.
func (b *Bus) Publish(uri string, sweep bool) int {
	changed := normalize(uri)

	b.mu.RLock()
	var targets []*subscriber
	for key, set := range b.subs {
		switch {
		case key == changed:
		case isAncestor(key, changed):
			// only watchers that asked for descendant changes
		case sweep && isAncestor(changed, key):
		default:
			continue
		}
		for _, s := range set {
			if key != changed && isAncestor(key, changed) && !s.descendants {
				continue
			}
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	sort.Slice(targets, func(i, j int) bool { return targets[i].seq < targets[j].seq })

	for _, s := range targets {
		b.deliver(s, changed)
	}
	return len(targets)
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, set := range b.subs {
		n += len(set)
	}
	return n
}

// deliver runs one observer, recovering from panics so a bad observer does
// not stop the fan-out.
func (b *Bus) deliver(s *subscriber, uri string) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("observer panicked", "subscription", s.id.String(), "uri", uri, "panic", r)
		}
	}()
	s.fn(uri)
}

func normalize(uri string) string {
	return strings.TrimRight(uri, "/")
}

func isAncestor(parent, child string) bool {
	return strings.HasPrefix(child, parent+"/")
}
