package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Feed is the push channel for change events. Publish delivers an event to
// every live subscription of the matching collection; Subscribe opens a new
// subscription filtered by collection and, optionally, event types.
type Feed interface {
	Publish(ctx context.Context, ev ChangeEvent) error
	Subscribe(collection string, types ...EventType) (*Subscription, error)
}

// Subscription is a live listener on the feed. C is closed after Cancel.
// The subscription is not responsible for teardown timing; the opener
// decides when to cancel.
type Subscription struct {
	C      <-chan ChangeEvent
	cancel func()
	once   sync.Once
}

// Cancel stops delivery and releases the underlying listener. Safe to call
// more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

const channelPrefix = "changes."

// RedisFeed broadcasts change events over Redis pub/sub, one channel per
// collection. Multiple service instances subscribed to the same Redis see
// each other's mutations, which is what keeps every terminal's store in
// sync with concurrent writes.
type RedisFeed struct {
	rdb *redis.Client
}

// NewRedisFeed returns a Feed backed by the given Redis client.
func NewRedisFeed(rdb *redis.Client) *RedisFeed {
	return &RedisFeed{rdb: rdb}
}

// Publish marshals the event and publishes it on changes.<collection>.
func (f *RedisFeed) Publish(ctx context.Context, ev ChangeEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, channelPrefix+ev.Collection, body).Err()
}

// Subscribe opens a Redis subscription on the collection channel and pumps
// decoded events into the returned Subscription. Events a slow consumer
// cannot keep up with are dropped rather than blocking the pump; the
// periodic reconcile fetch in the stores papers over any gap.
func (f *RedisFeed) Subscribe(collection string, types ...EventType) (*Subscription, error) {
	ps := f.rdb.Subscribe(context.Background(), channelPrefix+collection)
	// Force the subscription to be established before returning so callers
	// do not miss events published right after Subscribe.
	if _, err := ps.Receive(context.Background()); err != nil {
		_ = ps.Close()
		return nil, err
	}

	out := make(chan ChangeEvent, 64)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("realtime: bad payload on %s: %v", msg.Channel, err)
				continue
			}
			if !ev.Matches(types) {
				continue
			}
			select {
			case out <- ev:
			default:
				log.Printf("realtime: dropping %s event for slow subscriber", ev.Collection)
			}
		}
	}()

	return &Subscription{C: out, cancel: func() { _ = ps.Close() }}, nil
}

// MemoryFeed is an in-process Feed. It serves two purposes: tests, and
// single-node deployments running without Redis.
type MemoryFeed struct {
	mu   sync.Mutex
	next int
	subs map[int]*memorySub
}

type memorySub struct {
	collection string
	types      []EventType
	ch         chan ChangeEvent
}

// NewMemoryFeed returns an empty in-process feed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[int]*memorySub)}
}

// Publish delivers the event to every matching subscription. Delivery is
// non-blocking; a full subscriber buffer drops the event.
func (f *MemoryFeed) Publish(_ context.Context, ev ChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.collection != ev.Collection || !ev.Matches(s.types) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe registers a new in-process subscription.
func (f *MemoryFeed) Subscribe(collection string, types ...EventType) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	s := &memorySub{collection: collection, types: types, ch: make(chan ChangeEvent, 64)}
	f.subs[id] = s
	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if cur, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(cur.ch)
		}
	}
	return &Subscription{C: s.ch, cancel: cancel}, nil
}

// Marshal encodes a row for use as the Old/New payload of a ChangeEvent.
// Marshal failures are programming errors (all row types are plain structs),
// so the error is logged and nil returned instead of propagated.
func Marshal(row any) json.RawMessage {
	if row == nil {
		return nil
	}
	b, err := json.Marshal(row)
	if err != nil {
		log.Printf("realtime: marshal row: %v", err)
		return nil
	}
	return b
}
