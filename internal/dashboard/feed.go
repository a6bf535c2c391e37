package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

// FeedConfig tunes the live event feed.
type FeedConfig struct {
	HeartbeatInterval time.Duration
	BufferSize        int
	MaxSubscribers    int
}

// Subscriber is one connected SSE consumer.
type Subscriber struct {
	ID       string
	Messages chan []byte
	Levels   []monitor.Level // levels to receive (empty = all)
	Done     chan struct{}
	mu       sync.Mutex
	closed   bool
}

// Feed fans monitor events out to SSE subscribers.
type Feed struct {
	subscribers map[string]*Subscriber
	mu          sync.RWMutex
	config      FeedConfig
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	queue       chan monitor.Event
}

// NewFeed creates an event feed with sane defaults for zero-value config
// fields.
func NewFeed(config FeedConfig, logger *log.Logger) *Feed {
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = 30 * time.Second
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 100
	}
	if config.MaxSubscribers <= 0 {
		config.MaxSubscribers = 100
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Feed{
		subscribers: make(map[string]*Subscriber),
		config:      config,
		logger:      logger,
		queue:       make(chan monitor.Event, config.BufferSize),
	}
}

// Start launches the dispatch and heartbeat loops.
func (f *Feed) Start(ctx context.Context) {
	f.ctx, f.cancel = context.WithCancel(ctx)
	go f.dispatchLoop()
	go f.heartbeatLoop()
}

// Stop closes all subscribers and halts the loops.
func (f *Feed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subscribers {
		closeSubscriber(sub)
	}
	f.subscribers = make(map[string]*Subscriber)
}

// Subscribe registers an SSE consumer. levels limits which event levels the
// consumer receives; empty means all.
func (f *Feed) Subscribe(id string, levels []monitor.Level) (*Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.subscribers) >= f.config.MaxSubscribers {
		return nil, fmt.Errorf("maximum number of feed subscribers reached")
	}

	sub := &Subscriber{
		ID:       id,
		Messages: make(chan []byte, f.config.BufferSize),
		Levels:   levels,
		Done:     make(chan struct{}),
	}
	f.subscribers[id] = sub
	f.logger.Printf("feed subscriber added: %s (total: %d)", id, len(f.subscribers))
	return sub, nil
}

// Unsubscribe removes a consumer and closes its channels.
func (f *Feed) Unsubscribe(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sub, ok := f.subscribers[id]; ok {
		closeSubscriber(sub)
		delete(f.subscribers, id)
		f.logger.Printf("feed subscriber removed: %s (remaining: %d)", id, len(f.subscribers))
	}
}

// Publish queues a monitor event for broadcast. Full queues drop events
// rather than block the publisher.
func (f *Feed) Publish(ev monitor.Event) {
	select {
	case f.queue <- ev:
	default:
		f.logger.Printf("feed queue full, dropping %s event", ev.Type)
	}
}

// SubscriberCount returns the number of connected consumers.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

func (f *Feed) dispatchLoop() {
	for {
		select {
		case <-f.ctx.Done():
			return
		case ev := <-f.queue:
			f.broadcast(ev)
		}
	}
}

func (f *Feed) heartbeatLoop() {
	ticker := time.NewTicker(f.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			message := formatSSEMessage("heartbeat", []byte(fmt.Sprintf(`{"timestamp":%q}`, time.Now().UTC().Format(time.RFC3339))))
			f.mu.RLock()
			for _, sub := range f.subscribers {
				deliver(sub, message, f.logger)
			}
			f.mu.RUnlock()
		}
	}
}

func (f *Feed) broadcast(ev monitor.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		f.logger.Printf("failed to marshal event %s: %v", ev.ID, err)
		return
	}
	message := formatSSEMessage(string(ev.Type), data)

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, sub := range f.subscribers {
		if wantsLevel(sub, ev.Level) {
			deliver(sub, message, f.logger)
		}
	}
}

func deliver(sub *Subscriber, message []byte, logger *log.Logger) {
	select {
	case sub.Messages <- message:
	default:
		logger.Printf("subscriber %s buffer full, dropping event", sub.ID)
	}
}

func wantsLevel(sub *Subscriber, level monitor.Level) bool {
	if len(sub.Levels) == 0 {
		return true
	}
	for _, want := range sub.Levels {
		if want == level {
			return true
		}
	}
	return false
}

func closeSubscriber(sub *Subscriber) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.closed {
		sub.closed = true
		close(sub.Done)
		close(sub.Messages)
	}
}

func formatSSEMessage(event string, data []byte) []byte {
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, data))
}
